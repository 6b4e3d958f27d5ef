// Package config handles configuration for the relay server,
// including defaults, environment, JSON overlay, and command-line flags.
package config

import (
	"strings"
	"time"
)

// Config holds runtime settings for the relay server.
//
// Fields:
//   - EndpointAddr: bind address for the public websocket endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty means rooms are kept in memory only.
//   - AllowedOrigin: value the Origin header must match; "*" disables the check.
//   - SeedRooms: room ids provisioned at startup, mainly for development and
//     testing. Rooms are normally provisioned externally.
//   - HeartbeatInterval: how often idle connections are probed; a connection
//     that misses a probe is evicted on the next sweep.
//   - ShutdownTimeout: grace period for draining connections on shutdown.
type Config struct {
	EndpointAddr      string
	DatabaseDSN       string
	AllowedOrigin     string
	SeedRooms         []string
	HeartbeatInterval time.Duration
	ShutdownTimeout   time.Duration
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8085"
	c.DatabaseDSN = ""
	c.AllowedOrigin = "*"
	c.SeedRooms = nil
	c.HeartbeatInterval = 30 * time.Second
	c.ShutdownTimeout = 5 * time.Second
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment, an optional JSON file and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// splitRoomIDs parses a comma-separated room id list, dropping empty entries.
func splitRoomIDs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
