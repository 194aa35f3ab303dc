package config

import "time"

type Config interface {
	GetAPIBaseURL() string
	GetHTTPTimeout() time.Duration
	GetSessionFile() string
	GetAppName() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
