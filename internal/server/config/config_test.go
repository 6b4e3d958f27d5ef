package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, c.EndpointAddr, ":8085")
	assert.Equal(t, c.DatabaseDSN, "")
	assert.Equal(t, c.AllowedOrigin, "*")
	assert.Equal(t, c.HeartbeatInterval, 30*time.Second)
	assert.Equal(t, c.ShutdownTimeout, 5*time.Second)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	c := LoadConfig()

	require.NotNil(t, c, "LoadConfig must not return nil")

	assert.Equal(t, c.EndpointAddr, ":8085")
	assert.Equal(t, c.DatabaseDSN, "")
	assert.Equal(t, c.AllowedOrigin, "*")
	assert.Equal(t, c.HeartbeatInterval, 30*time.Second)
	assert.Equal(t, c.ShutdownTimeout, 5*time.Second)
}
