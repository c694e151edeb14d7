package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	keyAPIURL         = "api_url"
	keyRequestTimeout = "request_timeout"
)

type API struct {
	v *viper.Viper
}

var _ APIConfig = API{}

// GetAPIBaseURL returns the backend base URL without a trailing slash (e.g., "http://localhost:8000")
func (a API) GetAPIBaseURL() string {
	return strings.TrimRight(a.v.GetString(keyAPIURL), "/")
}

func (a API) GetRequestTimeout() time.Duration {
	return a.v.GetDuration(keyRequestTimeout)
}
