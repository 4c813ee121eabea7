// Package config loads framereview settings with viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "framereview"

// EnvPrefix prefixes environment overrides, e.g. FRAMEREVIEW_API_BASEURL.
const EnvPrefix = "FRAMEREVIEW"

// Backend names accepted by the "backend" key.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Load sets defaults, reads framereview.yaml from configDir when present and
// applies FRAMEREVIEW_* environment overrides. A missing file is not an
// error; a malformed one is.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", filepath.Join(DefaultDir(), "logs"))

	viper.SetDefault("backend", BackendLocal)
	viper.SetDefault("api.baseUrl", "http://localhost:8080")
	viper.SetDefault("store.path", "")

	viper.SetDefault("mpv.socket", "")
	viper.SetDefault("user.name", defaultUser())
	viper.SetDefault("server.addr", "127.0.0.1:8080")

	viper.SetConfigName(FileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return validate()
}

func validate() error {
	switch b := GetString("backend"); b {
	case BackendLocal, BackendRemote:
	default:
		return fmt.Errorf("backend %q: must be %q or %q", b, BackendLocal, BackendRemote)
	}
	return nil
}

// DefaultDir is ~/.config/framereview, or the working directory when the
// home directory is unknown.
func DefaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "framereview")
	}
	return "."
}

func defaultUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "reviewer"
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// Set overrides a value, as command-line flags do.
func Set(key string, value any) {
	viper.Set(key, value)
}
