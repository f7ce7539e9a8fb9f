// Package config handles configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "github.com/zorak1103/dockdeck/internal/errors"
)

// EnvPrefix prefixes every environment variable override (DOCKDECK_RELAY_BUFFER_SIZE).
const EnvPrefix = "DOCKDECK"

// Limits of relay.buffer_size.
const (
	MinBufferSize     = 1
	MaxBufferSize     = 10000
	DefaultBufferSize = 100
)

const sourceDefaults = "(defaults/environment)"

// Config represents the application configuration
type Config struct {
	Runtime      RuntimeConfig      `mapstructure:"runtime"`
	Directory    DirectoryConfig    `mapstructure:"directory"`
	Relay        RelayConfig        `mapstructure:"relay"`
	Launcher     LauncherConfig     `mapstructure:"launcher"`
	Server       ServerConfig       `mapstructure:"server"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Notification NotificationConfig `mapstructure:"notification"`

	// ConfigFilePath stores the path to the loaded config file (not marshaled from YAML)
	ConfigFilePath string `mapstructure:"-"`
}

// RuntimeConfig selects the container runtime and its control socket
type RuntimeConfig struct {
	Backend    string `mapstructure:"backend"`
	SocketPath string `mapstructure:"socket_path"`
}

// DirectoryConfig controls container discovery
type DirectoryConfig struct {
	SnapshotTTL time.Duration `mapstructure:"snapshot_ttl"` // 0 refreshes on every request
	NamePattern string        `mapstructure:"name_pattern"`
}

// RelayConfig controls log streaming
type RelayConfig struct {
	BufferSize int `mapstructure:"buffer_size"`
}

// LauncherConfig controls the host programs started by open-web and open-shell
type LauncherConfig struct {
	WebHost      string   `mapstructure:"web_host"`
	Terminal     string   `mapstructure:"terminal"`
	TerminalArgs []string `mapstructure:"terminal_args"`
	Shell        string   `mapstructure:"shell"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	Devel bool `mapstructure:"devel"`
}

// NotificationConfig contains notification settings
type NotificationConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	ShoutrrrURL  string `mapstructure:"shoutrrr_url"` // Shoutrrr URL format
	FailuresOnly bool   `mapstructure:"failures_only"`
}

// RuntimeCLI returns the command line tool matching the configured backend.
func (c *Config) RuntimeCLI() string {
	if c.Runtime.Backend == "podman" {
		return "podman"
	}
	return "docker"
}

// autoDetectSocket determines the runtime socket based on environment and platform.
func autoDetectSocket(backend string) string {
	if backend == "podman" {
		if host := os.Getenv("CONTAINER_HOST"); host != "" {
			return host
		}
		if _, err := os.Stat("/run/podman/podman.sock"); err == nil {
			return "unix:///run/podman/podman.sock"
		}
		if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
			return "unix://" + filepath.Join(dir, "podman", "podman.sock")
		}
		return "unix:///run/podman/podman.sock"
	}

	if host := os.Getenv("DOCKER_HOST"); host != "" {
		return host
	}
	// Check for Unix socket
	if _, err := os.Stat("/var/run/docker.sock"); err == nil {
		return "unix:///var/run/docker.sock"
	}
	// Default to Windows named pipe if Unix socket not found
	return "npipe:////./pipe/docker_engine"
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load() // nolint:errcheck // .env file is optional

	v := viper.New()

	// Set config file path
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/dockdeck")
		v.AddConfigPath("/etc/dockdeck")
	}

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			configFile := v.ConfigFileUsed()
			if configFile == "" {
				configFile = configPath
			}
			return nil, &apperrors.ConfigurationError{ConfigPath: configFile, Err: fmt.Errorf("error reading config file: %w", err)}
		}
		// Config file not found; using defaults and env vars
	}

	// Environment variable support
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &apperrors.ConfigurationError{ConfigPath: source(v.ConfigFileUsed()), Err: err}
	}

	cfg.ConfigFilePath = v.ConfigFileUsed()
	cfg.Runtime.Backend = strings.ToLower(strings.TrimSpace(cfg.Runtime.Backend))

	// Auto-detect the socket if not specified
	if cfg.Runtime.SocketPath == "" {
		cfg.Runtime.SocketPath = autoDetectSocket(cfg.Runtime.Backend)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Empty defaults are required for AutomaticEnv to see the key
	v.SetDefault("runtime.backend", "docker")
	v.SetDefault("runtime.socket_path", "")

	v.SetDefault("directory.snapshot_ttl", "0s")
	v.SetDefault("directory.name_pattern", "")

	v.SetDefault("relay.buffer_size", DefaultBufferSize)

	v.SetDefault("launcher.web_host", "0.0.0.0")
	v.SetDefault("launcher.terminal", "")
	v.SetDefault("launcher.terminal_args", []string{})
	v.SetDefault("launcher.shell", "sh")

	v.SetDefault("server.listen", "127.0.0.1:3000")

	v.SetDefault("logging.devel", false)

	v.SetDefault("notification.enabled", false)
	v.SetDefault("notification.shoutrrr_url", "")
	v.SetDefault("notification.failures_only", true)
}

func source(configPath string) string {
	if configPath == "" {
		return sourceDefaults
	}
	return configPath
}

// Validate ensures all required fields are set and values are within valid ranges.
func (c *Config) Validate() error {
	configSource := source(c.ConfigFilePath)

	invalid := func(key, format string, args ...any) error {
		return &apperrors.ConfigurationError{ConfigPath: configSource, Key: key, Err: fmt.Errorf(format, args...)}
	}

	switch c.Runtime.Backend {
	case "docker", "podman":
	default:
		return invalid("runtime.backend", "must be docker or podman, got %q", c.Runtime.Backend)
	}

	requiredFields := []struct {
		key   string
		value string
	}{
		{"runtime.socket_path", c.Runtime.SocketPath},
		{"launcher.shell", c.Launcher.Shell},
		{"server.listen", c.Server.Listen},
	}
	for _, field := range requiredFields {
		if strings.TrimSpace(field.value) == "" {
			return invalid(field.key, "is required")
		}
	}

	if c.Relay.BufferSize < MinBufferSize || c.Relay.BufferSize > MaxBufferSize {
		return invalid("relay.buffer_size", "must be between %d and %d, got %d", MinBufferSize, MaxBufferSize, c.Relay.BufferSize)
	}

	if c.Directory.SnapshotTTL < 0 {
		return invalid("directory.snapshot_ttl", "must not be negative, got %s", c.Directory.SnapshotTTL)
	}

	if c.Directory.NamePattern != "" {
		if _, err := regexp.Compile(c.Directory.NamePattern); err != nil {
			return invalid("directory.name_pattern", "invalid regexp %q: %w", c.Directory.NamePattern, err)
		}
	}

	if _, _, err := net.SplitHostPort(c.Server.Listen); err != nil {
		return invalid("server.listen", "%w", err)
	}

	if c.Notification.Enabled && strings.TrimSpace(c.Notification.ShoutrrrURL) == "" {
		return invalid("notification.shoutrrr_url", "is required when notification.enabled is true (set %s_NOTIFICATION_SHOUTRRR_URL)", EnvPrefix)
	}

	return nil
}
