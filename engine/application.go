package engine

import (
	"github.com/spaghettifunk/prism/engine/config"
)

type ApplicationConfig struct {
	// TOML file read at Initialize. Takes precedence over Config.
	ConfigPath string
	// Used when ConfigPath is empty. Nil means config.Default().
	Config *config.Config
	// Stops the loop after this many presented frames, 0 runs until quit.
	MaxFrames uint64
}

func (a *ApplicationConfig) load() (*config.Config, error) {
	if a.ConfigPath != "" {
		return config.Load(a.ConfigPath)
	}
	if a.Config != nil {
		if err := a.Config.Validate(); err != nil {
			return nil, err
		}
		return a.Config, nil
	}
	return config.Default(), nil
}
