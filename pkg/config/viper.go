package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvProduction disables .env loading when APP_ENV or NODE_ENV is set to it.
const EnvProduction = "production"

// EnvVars name the variables checked for EnvProduction.
var EnvVars = []string{"APP_ENV", "NODE_ENV"}

// Load reads configuration from file and environment variables.
// configPath is the directory containing config files.
// configName is the name of the config file (without extension).
//
// Outside production a .env file in the working directory is loaded
// first; variables already present in the environment win.
func Load(configPath, configName string) (*viper.Viper, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variable support
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil // Config file not found, rely on env vars
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return v, nil
}

// IsProduction reports whether any of EnvVars is set to EnvProduction.
func IsProduction() bool {
	for _, key := range EnvVars {
		if strings.EqualFold(strings.TrimSpace(os.Getenv(key)), EnvProduction) {
			return true
		}
	}
	return false
}

// LoadDotEnv loads the given env files unless APP_ENV or NODE_ENV is
// production. Missing files are not an error.
func LoadDotEnv(files ...string) error {
	if IsProduction() {
		return nil
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}
