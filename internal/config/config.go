package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "SALES"

type Config interface {
	EnvConfig
	APIConfig
	StorageConfig
	SessionConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetDataFolder() string
	GetRoutesFile() string
}

type APIConfig interface {
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
}

type StorageConfig interface {
	GetStorageBackend() StorageBackend
	GetSQLitePath() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisPrefix() string
}

type SessionConfig interface {
	GetResolveTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
	API
	Storage
	Session
}

// New returns a Config backed by defaults and SALES_* environment variables.
func New() Config {
	c, _ := Load("")
	return c
}

// Load reads configFile (YAML) when given, then layers SALES_* environment
// variables over it. A missing configFile is an error; an empty name is not.
func Load(configFile string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return newConfig(v), fmt.Errorf("[config Load] read %s: %w", configFile, err)
		}
	}
	return newConfig(v), nil
}

func newConfig(v *viper.Viper) Config {
	return mainConfig{
		EnvVars: EnvVars{v: v},
		API:     API{v: v},
		Storage: Storage{v: v},
		Session: Session{v: v},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyAppName, "Sales Client")
	v.SetDefault(keyEnv, "DEV")
	v.SetDefault(keyDataFolder, "./data")
	v.SetDefault(keyRoutesFile, "")

	v.SetDefault(keyAPIURL, "http://localhost:8000")
	v.SetDefault(keyRequestTimeout, 10*time.Second)

	v.SetDefault(keyStorageBackend, string(StorageSQLite))
	v.SetDefault(keySQLitePath, "")
	v.SetDefault(keyRedisAddr, "localhost:6379")
	v.SetDefault(keyRedisPassword, "")
	v.SetDefault(keyRedisDB, 0)
	v.SetDefault(keyRedisPrefix, "sales:")

	v.SetDefault(keyResolveTimeout, 10*time.Second)
}
