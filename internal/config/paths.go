package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// AppDir is the directory name under the XDG config home.
	AppDir = "session-context"

	// FileName is the configuration file name.
	FileName = "config.json"

	// DataDir is the directory under the user's home that holds state.
	DataDir = ".session-context"

	envPrefix = "SESSION_CONTEXT"
)

// Env holds the environment overrides. It is read fresh on every call.
//
//	SESSION_CONTEXT_CONFIG     replaces the config file path
//	SESSION_CONTEXT_DIR        replaces the storage directory
//	SESSION_CONTEXT_LOG_LEVEL  log level used when --debug is set
type Env struct {
	ConfigPath string `envconfig:"CONFIG"`
	StorageDir string `envconfig:"DIR"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"debug"`
}

// LoadEnv reads the SESSION_CONTEXT_* variables.
func LoadEnv() Env {
	var env Env
	if err := envconfig.Process(envPrefix, &env); err != nil {
		// only string fields, so Process cannot fail on parsing
		return Env{LogLevel: "debug"}
	}
	if env.LogLevel == "" {
		env.LogLevel = "debug"
	}
	return env
}

// Path returns the config file location, honouring SESSION_CONTEXT_CONFIG.
func Path() string {
	if p := LoadEnv().ConfigPath; p != "" {
		return p
	}
	return DefaultPath()
}

// DefaultPath returns the XDG config file location.
func DefaultPath() string {
	return filepath.Join(configHome(), AppDir, FileName)
}

func configHome() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config")
	}
	return filepath.Join(home, ".config")
}

// StorageDir returns where checkpoints and handoffs are kept.
func StorageDir() string {
	if d := LoadEnv().StorageDir; d != "" {
		return d
	}
	return filepath.Join(dataHome(), "handoffs")
}

// LogDir returns where log files are written.
func LogDir() string {
	return filepath.Join(dataHome(), "logs")
}

func dataHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DataDir
	}
	return filepath.Join(home, DataDir)
}

// ParseDuration parses a Go duration with an additional "d" (days) suffix.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if len(s) > 1 && s[len(s)-1] == 'd' {
		days, err := strconv.Atoi(s[:len(s)-1])
		if err != nil || days < 0 {
			return 0, fmt.Errorf("invalid day format: %q", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration: %q", s)
	}
	return d, nil
}
