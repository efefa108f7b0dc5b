// Package appconfig loads the application settings of the command line
// tool: $HOME/.config/switch/config.yaml overlaid with SWITCH_* environment
// variables.
package appconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	KeyLogLevel   = "log_level"
	KeySettingsDB = "settings_db"
	KeyConfigsDir = "configs_dir"

	EnvPrefix = "SWITCH"
)

// Config is the resolved application configuration.
type Config struct {
	LogLevel   string
	SettingsDB string
	ConfigsDir string
	// File is the config file that was read, if any.
	File string
}

// Dir returns the default configuration directory, $HOME/.config/switch.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "switch"), nil
}

// Load reads the configuration. An explicit file must exist; the default
// file is optional.
func Load(file string) (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix(EnvPrefix)

	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeySettingsDB, filepath.Join(dir, "settings.db"))
	v.SetDefault(KeyConfigsDir, filepath.Join(dir, "configs"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read app config: %w", err)
		}
	}

	return &Config{
		LogLevel:   v.GetString(KeyLogLevel),
		SettingsDB: v.GetString(KeySettingsDB),
		ConfigsDir: v.GetString(KeyConfigsDir),
		File:       v.ConfigFileUsed(),
	}, nil
}
