package server

import (
	"time"

	"github.com/maxbolgarin/lang"
)

const (
	defaultAddress = ":8080"
	defaultTimeout = 30 * time.Second
)

// Config represents HTTP API server configuration.
type Config struct {
	Enabled bool          `yaml:"enabled" env:"SERVER_ENABLED"`
	Address string        `yaml:"address" env:"SERVER_ADDRESS"`
	Timeout time.Duration `yaml:"timeout" env:"SERVER_TIMEOUT"`
	// AuthToken, when set, is required as a bearer token on diff requests.
	AuthToken string `yaml:"auth_token" env:"SERVER_AUTH_TOKEN"`
}

func (c *Config) PrepareAndValidate() error {
	c.Address = lang.Check(c.Address, defaultAddress)
	c.Timeout = lang.Check(c.Timeout, defaultTimeout)
	return nil
}
