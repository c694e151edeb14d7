package config

import (
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type StorageBackend string

const (
	StorageMemory StorageBackend = "memory"
	StorageSQLite StorageBackend = "sqlite"
	StorageRedis  StorageBackend = "redis"
)

const (
	keyStorageBackend = "storage.backend"
	keySQLitePath     = "storage.sqlite_path"
	keyRedisAddr      = "storage.redis_addr"
	keyRedisPassword  = "storage.redis_password"
	keyRedisDB        = "storage.redis_db"
	keyRedisPrefix    = "storage.redis_prefix"
)

type Storage struct {
	v *viper.Viper
}

var _ StorageConfig = Storage{}

func (s Storage) GetStorageBackend() StorageBackend {
	return StorageBackend(strings.ToLower(s.v.GetString(keyStorageBackend)))
}

// GetSQLitePath defaults to session.db inside the data folder
func (s Storage) GetSQLitePath() string {
	if p := s.v.GetString(keySQLitePath); p != "" {
		return p
	}
	return filepath.Join(EnvVars{v: s.v}.GetDataFolder(), "session.db")
}

func (s Storage) GetRedisAddr() string {
	return s.v.GetString(keyRedisAddr)
}

func (s Storage) GetRedisPassword() string {
	return s.v.GetString(keyRedisPassword)
}

func (s Storage) GetRedisDB() int {
	return s.v.GetInt(keyRedisDB)
}

func (s Storage) GetRedisPrefix() string {
	return s.v.GetString(keyRedisPrefix)
}
