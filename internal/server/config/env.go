package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables, loading an
// optional .env file from the working directory first. A missing .env file is
// not an error; explicitly exported variables always win over file values.
//
// Recognized variables:
//
//	RELAY_ADDRESS       websocket bind address
//	DATABASE_DSN        PostgreSQL DSN
//	ALLOWED_ORIGIN      accepted Origin header value
//	SEED_ROOMS          comma-separated room ids to provision at startup
//	HEARTBEAT_INTERVAL  probe interval, Go duration string
//	SHUTDOWN_TIMEOUT    drain timeout, Go duration string
func parseEnv(config *Config) {
	_ = godotenv.Load()

	if v, ok := os.LookupEnv("RELAY_ADDRESS"); ok {
		config.EndpointAddr = v
	}
	if v, ok := os.LookupEnv("DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("ALLOWED_ORIGIN"); ok {
		config.AllowedOrigin = v
	}
	if v, ok := os.LookupEnv("SEED_ROOMS"); ok {
		config.SeedRooms = splitRoomIDs(v)
	}
	if v, ok := os.LookupEnv("HEARTBEAT_INTERVAL"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.HeartbeatInterval = d
		}
	}
	if v, ok := os.LookupEnv("SHUTDOWN_TIMEOUT"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.ShutdownTimeout = d
		}
	}
}
