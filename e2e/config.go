package e2e

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_SERVER_ADDR is the base URL of a running chat-room server; the suite is skipped when empty
	ServerAddr string `envconfig:"E2E_SERVER_ADDR"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
	// E2E_INACTIVITY_WAIT must exceed the server's inactivity threshold plus one sweep interval
	InactivityWait time.Duration `envconfig:"E2E_INACTIVITY_WAIT" default:"30s"`
	RequestTimeout time.Duration `envconfig:"E2E_REQUEST_TIMEOUT" default:"10s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
