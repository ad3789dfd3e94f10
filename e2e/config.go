package e2e

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is read from E2E_* variables, HOST_ADDR excepted.
type Config struct {
	HostAddr  string        `envconfig:"HOST_ADDR"`
	Name      string        `envconfig:"E2E_NAME" default:"e2e"`
	Timeout   time.Duration `envconfig:"E2E_TIMEOUT" default:"30s"`
	EventWait time.Duration `envconfig:"E2E_EVENT_WAIT" default:"10s"`
	DebugJSON bool          `envconfig:"E2E_DEBUG_JSON" default:"false"`
	Colours   bool          `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	if cfg.EventWait > cfg.Timeout {
		return Config{}, fmt.Errorf("E2E_EVENT_WAIT (%s) exceeds E2E_TIMEOUT (%s)", cfg.EventWait, cfg.Timeout)
	}
	return cfg, nil
}
