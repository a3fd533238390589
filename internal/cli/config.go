// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Configuration keys. Each one can also be set through ANIMETRACK_<KEY>.
const (
	KeyAPIURL       = "api_url"
	KeyToken        = "token"
	KeyUsername     = "username"
	KeyDeviceSecret = "device_secret"
	KeyTimeout      = "timeout"
)

const (
	configName = ".animetrack"
	configType = "yaml"
	envPrefix  = "ANIMETRACK"
)

// Settings is the resolved CLI configuration.
type Settings struct {
	APIURL       string        `mapstructure:"api_url"`
	Token        string        `mapstructure:"token"`
	Username     string        `mapstructure:"username"`
	DeviceSecret string        `mapstructure:"device_secret"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// NewViper returns a viper instance with the CLI defaults and environment
// binding applied.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyAPIURL, "http://localhost:8080")
	v.SetDefault(KeyTimeout, 10*time.Second)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

/*
ReadConfig loads the config file into v.

Parameters:
  - v: *viper.Viper
  - path: explicit file, or "" for ~/.animetrack.yaml

Returns:
  - error: only for a file that exists but cannot be parsed
*/
func ReadConfig(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}
		v.AddConfigPath(home)
		v.SetConfigName(configName)
		v.SetConfigType(configType)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// LoadSettings decodes v into [Settings].
func LoadSettings(v *viper.Viper) (Settings, error) {
	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return Settings{}, fmt.Errorf("decode config: %w", err)
	}
	return settings, nil
}

// SaveSession persists the identity returned by setup so later commands are
// authenticated.
func SaveSession(v *viper.Viper, username, deviceSecret, token string) error {
	v.Set(KeyUsername, username)
	v.Set(KeyDeviceSecret, deviceSecret)
	v.Set(KeyToken, token)

	path := v.ConfigFileUsed()
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, configName+"."+configType)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return os.Chmod(path, 0o600)
}

// newDeviceSecret returns a random secret identifying this device.
func newDeviceSecret() (string, error) {
	buffer := make([]byte, 24)
	if _, err := rand.Read(buffer); err != nil {
		return "", err
	}
	return hex.EncodeToString(buffer), nil
}
