package shared

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Project struct {
		Namespace       string   `yaml:"namespace" toml:"namespace" env:"MINEPACK_NAMESPACE"`
		AllowNamespaces []string `yaml:"allow_namespaces" toml:"allow_namespaces" env:"MINEPACK_ALLOW_NAMESPACES" envSeparator:","`
	} `yaml:"project" toml:"project"`

	Validate struct {
		Behavior string `yaml:"behavior" toml:"behavior" env:"MINEPACK_BEHAVIOR"`
		Resource string `yaml:"resource" toml:"resource" env:"MINEPACK_RESOURCE"`
		Report   string `yaml:"report" toml:"report" env:"MINEPACK_REPORT"`
		Jobs     int    `yaml:"jobs" toml:"jobs" env:"MINEPACK_JOBS"`
	} `yaml:"validate" toml:"validate"`

	Rules struct {
		Disabled       []string            `yaml:"disabled" toml:"disabled" env:"MINEPACK_RULES_DISABLED" envSeparator:","`
		Packs          []string            `yaml:"packs" toml:"packs" env:"MINEPACK_RULES_PACKS" envSeparator:","`
		FormatVersions map[string][]string `yaml:"format_versions" toml:"format_versions"`
	} `yaml:"rules" toml:"rules"`

	Database struct {
		DSN string `yaml:"dsn" toml:"dsn" env:"MINEPACK_DB_DSN"` // "" disables run history
	} `yaml:"database" toml:"database"`

	Reporting struct {
		OutDir string `yaml:"out_dir" toml:"out_dir" env:"MINEPACK_OUT_DIR"`
	} `yaml:"reporting" toml:"reporting"`

	Logging struct {
		Format string `yaml:"format" toml:"format" env:"MINEPACK_LOG_FORMAT"` // "json"|"text"
		Level  string `yaml:"level" toml:"level" env:"MINEPACK_LOG_LEVEL"`    // "info"|"debug"|"warn"|"error"
	} `yaml:"logging" toml:"logging"`

	Server struct {
		Addr           string   `yaml:"addr" toml:"addr" env:"MINEPACK_ADDR"`
		SessionHours   int      `yaml:"session_hours" toml:"session_hours" env:"MINEPACK_SESSION_HOURS"`
		AllowedOrigins []string `yaml:"allowed_origins" toml:"allowed_origins" env:"MINEPACK_ALLOWED_ORIGINS" envSeparator:","`
	} `yaml:"server" toml:"server"`
}

// DefaultConfigFiles are tried in order when no config path is given.
var DefaultConfigFiles = []string{"minepack.yaml", "minepack.yml", "minepack.toml"}

func DefaultConfig() Config {
	var c Config
	c.Project.AllowNamespaces = []string{"minecraft"}
	c.Database.DSN = DefaultDSN()
	c.Reporting.OutDir = "./reports"
	c.Logging.Format = "text"
	c.Logging.Level = "warn"
	c.Server.Addr = "127.0.0.1:8080"
	c.Server.SessionHours = 12
	return c
}

// DefaultDSN places run history in the user cache directory, away from any
// package tree being inspected. It is empty when no cache directory exists.
func DefaultDSN() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "minepack", "history.db")
}

// LoadConfig applies defaults, then the config file, then MINEPACK_*
// environment variables. An empty path looks for DefaultConfigFiles in
// the working directory; a named file that does not exist is an error.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if path == "" {
		path = findDefaultConfig()
	} else if _, err := os.Stat(path); err != nil {
		return c, fmt.Errorf("config: %w", err)
	}
	if path != "" {
		if err := decodeFile(path, &c); err != nil {
			return c, err
		}
	}
	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}

func findDefaultConfig() string {
	for _, name := range DefaultConfigFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func decodeFile(path string, c *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, c); err != nil {
			return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
		return nil
	case ".yaml", ".yml", "":
		b, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
		return nil
	default:
		return fmt.Errorf("%s: unsupported config format (use .yaml, .yml or .toml)", path)
	}
}
