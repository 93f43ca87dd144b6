package config

type Config interface {
	EnvConfig
	APIConfig
	StorageConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type APIConfig interface {
	GetAPIBaseURL() string
	GetHTTPTimeoutSeconds() int
	GetHTTPRetryMax() int
}

type StorageConfig interface {
	GetTokenFilePath() string
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
