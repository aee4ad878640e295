package util

import (
	"os"
	"strings"

	"github.com/hetianyi/gox/logger"
)

const (
	ENV_TRACKERS   = "FDFS_TRACKERS"
	ENV_SECRET_KEY = "FDFS_SECRET_KEY"
	ENV_LOG_LEVEL  = "FDFS_LOG_LEVEL"
)

func GetEnv(key string) string {
	return os.Getenv(key)
}

// if these param exist in system env , then replace it with system env
func ExchangeEnvValue(key string, then func(envValue string)) {
	envVal := strings.TrimSpace(GetEnv(key))
	if envVal != "" {
		logger.Warn("config property \"", key, "\" load from environment")
		then(envVal)
	}
}
