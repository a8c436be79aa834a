package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config interface {
	EnvConfig
	ClientConfig
	TokenStoreConfig
}

type EnvConfig interface {
	GetAPIBaseURL() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetMetricsAddr() string
}

type mainConfig struct {
	EnvVars
	Client
	TokenStore
}

var dotenvOnce sync.Once

// New returns the environment backed configuration. A .env file in the working
// directory is loaded once, without overriding variables that are already set.
func New() Config {
	dotenvOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Debug().Err(err).Msg("no .env file loaded")
		}
	})
	return mainConfig{}
}
