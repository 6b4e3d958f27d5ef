package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"livedraw/internal/flagx"
)

// parseFlags populates selected relay Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   websocket bind address (e.g., ":8085")
//	-d string   PostgreSQL DSN
//	-o string   accepted Origin header value ("*" disables the check)
//	-r string   comma-separated room ids to provision at startup
//	-i int      heartbeat probe interval, seconds
//	-t int      shutdown drain timeout, seconds
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers in seconds and then converted
//     to time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-o", "-r", "-i", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.AllowedOrigin, "o", config.AllowedOrigin, "allowed origin")

	seedRooms := fs.String("r", strings.Join(config.SeedRooms, ","), "comma-separated room ids to provision at startup")

	heartbeatInterval := fs.Int("i", int(config.HeartbeatInterval.Seconds()), "heartbeat_interval (in seconds)")
	shutdownTimeout := fs.Int("t", int(config.ShutdownTimeout.Seconds()), "shutdown_timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SeedRooms = splitRoomIDs(*seedRooms)
	config.HeartbeatInterval = time.Duration(*heartbeatInterval) * time.Second
	config.ShutdownTimeout = time.Duration(*shutdownTimeout) * time.Second
}
