package authz

import (
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/fieldops/pkg/configuration"
)

// Config captures the inputs necessary to initialize the Casbin enforcer.
type Config struct {
	Logger       *logrus.Logger
	FlagProvider FlagProvider
}

func (c Config) normalized() Config {
	if c.FlagProvider == nil {
		c.FlagProvider = StaticMode(ModeEnforce)
	}
	return c
}

// DefaultConfig builds a Config using the global configuration singleton.
func DefaultConfig() Config {
	cfg := configuration.Use()
	return Config{
		Logger:       cfg.Logger(),
		FlagProvider: StaticMode(Mode(cfg.Authz.Mode)),
	}
}
