package config

import (
	"strings"

	"github.com/spf13/viper"
)

const (
	keyAppName    = "app_name"
	keyEnv        = "env"
	keyDataFolder = "data_folder"
	keyRoutesFile = "routes_file"
)

type EnvVars struct {
	v *viper.Viper
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return e.v.GetString(keyAppName)
}

func (e EnvVars) GetEnv() string {
	env := strings.ToUpper(e.v.GetString(keyEnv))
	if env == "" {
		return "DEV"
	}
	return env
}

func (e EnvVars) GetDataFolder() string {
	return e.v.GetString(keyDataFolder)
}

// GetRoutesFile returns an optional YAML route table overriding the built-in one
func (e EnvVars) GetRoutesFile() string {
	return e.v.GetString(keyRoutesFile)
}
