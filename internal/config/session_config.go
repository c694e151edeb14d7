package config

import (
	"time"

	"github.com/spf13/viper"
)

const keyResolveTimeout = "resolve_timeout"

type Session struct {
	v *viper.Viper
}

var _ SessionConfig = Session{}

// GetResolveTimeout bounds the startup /auth/me call
func (s Session) GetResolveTimeout() time.Duration {
	return s.v.GetDuration(keyResolveTimeout)
}
