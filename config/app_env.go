package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/akeren/welcome-form/internal/log"
	"github.com/akeren/welcome-form/pkg/utils"
	"github.com/joho/godotenv"
)

const (
	AppEnvKey = "APP_ENV"
	// EnvFileKey lists the dotenv files to load, comma-separated. Default ".env".
	EnvFileKey = "ENV_FILE"
)

// InitializeEnvFile loads dotenv files unless SKIP_DOTENV is true. Variables
// already set in the process win over file values.
func InitializeEnvFile(logger *log.Logger) {
	if utils.GetEnvBool("SKIP_DOTENV", false) {
		logger.Info("Skipping .env file load (SKIP_DOTENV=true)")
		return
	}

	files := envFiles()
	err := godotenv.Load(files...)
	switch {
	case err == nil:
		logger.Info("Environment variables loaded", "files", files)
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("No env file found; using process environment only", "files", files)
	default:
		logger.Warn("Failed to parse env file", "files", files, "error", err.Error())
	}
}

func envFiles() []string {
	var files []string
	for _, f := range strings.Split(utils.GetEnvTrimmedOrDefault(EnvFileKey, ".env"), ",") {
		if f = strings.TrimSpace(f); f != "" {
			files = append(files, f)
		}
	}
	return files
}

// GetValueFromEnvironmentVariable distinguishes set-but-empty from unset.
func GetValueFromEnvironmentVariable(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func GetAppEnv() string {
	return strings.ToLower(utils.GetEnvTrimmed(AppEnvKey))
}

func IsProduction(appEnv string) bool {
	switch strings.ToLower(strings.TrimSpace(appEnv)) {
	case "production", "prod":
		return true
	}
	return false
}
