package config

import (
	"encoding/json"
	"os"
	"time"

	"livedraw/internal/flagx"
	"livedraw/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "30s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr      string         `json:"endpoint_addr"`
	DatabaseDSN       string         `json:"database_dsn"`
	AllowedOrigin     string         `json:"allowed_origin"`
	SeedRooms         []string       `json:"seed_rooms"`
	HeartbeatInterval timex.Duration `json:"heartbeat_interval"`
	ShutdownTimeout   timex.Duration `json:"shutdown_timeout"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags; if neither
// is set, no JSON file is loaded. If the file cannot be read or contains
// invalid JSON, the function panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.AllowedOrigin = c.AllowedOrigin
	config.SeedRooms = c.SeedRooms
	config.HeartbeatInterval = time.Duration(c.HeartbeatInterval.Duration)
	config.ShutdownTimeout = time.Duration(c.ShutdownTimeout.Duration)
}
