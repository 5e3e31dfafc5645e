package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Digital-Shane/tvshelf/internal/kodi"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Supported catalogs.
const (
	CatalogTVDB = "tvdb"
	CatalogTMDB = "tmdb"
)

// EnvPrefix prefixes environment overrides, e.g. TVSHELF_TVDB_API_KEY.
const EnvPrefix = "TVSHELF"

// ErrMissingAPIKey is returned by Validate when the selected catalog has no key.
var ErrMissingAPIKey = errors.New("missing API key")

// ValidationError describes an invalid configuration value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Config holds every setting tvshelf reads at startup.
type Config struct {
	Catalog        string `mapstructure:"catalog" yaml:"catalog"`
	TVDBAPIKey     string `mapstructure:"tvdb_api_key" yaml:"tvdb_api_key"`
	TVDBAPIKeyFile string `mapstructure:"tvdb_api_key_file" yaml:"tvdb_api_key_file"`
	TMDBAPIKey     string `mapstructure:"tmdb_api_key" yaml:"tmdb_api_key"`
	Language       string `mapstructure:"language" yaml:"language"`

	ShowsFile       string `mapstructure:"shows_file" yaml:"shows_file"`
	MinimumFileSize int64  `mapstructure:"minimum_file_size" yaml:"minimum_file_size"`
	MinimumDuration int    `mapstructure:"minimum_duration" yaml:"minimum_duration"`

	Kodi string `mapstructure:"kodi" yaml:"kodi"`

	EnableLogging    bool `mapstructure:"enable_logging" yaml:"enable_logging"`
	LogRetentionDays int  `mapstructure:"log_retention_days" yaml:"log_retention_days"`

	LogFile       string `mapstructure:"log_file" yaml:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb" yaml:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups" yaml:"log_max_backups"`

	WatchSettle time.Duration `mapstructure:"watch_settle" yaml:"-"`
}

// Dir returns ~/.tvshelf.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".tvshelf"), nil
}

// ConfigPath returns the path to the default config file.
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultConfig returns the default configuration. Paths live under ~/.tvshelf
// when the home directory is known.
func DefaultConfig() *Config {
	dir, err := Dir()
	if err != nil {
		dir = ".tvshelf"
	}
	return &Config{
		Catalog:          CatalogTVDB,
		TVDBAPIKeyFile:   filepath.Join(dir, "thetvdb.apikey"),
		Language:         "en",
		ShowsFile:        filepath.Join(dir, "shows.yml"),
		MinimumFileSize:  10 * 1024 * 1024,
		EnableLogging:    true,
		LogRetentionDays: 30,
		LogMaxSizeMB:     10,
		LogMaxBackups:    5,
		WatchSettle:      30 * time.Second,
	}
}

// Load reads the config file at path, or the default location when path is
// empty. A missing file yields the defaults. TVSHELF_* environment variables
// override file values.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, fmt.Errorf("unable to get config path: %w", err)
		}
		path = p
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultConfig()
	for key, value := range defaults.values() {
		v.SetDefault(key, value)
	}

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}

	cfg.TVDBAPIKeyFile = expandHome(cfg.TVDBAPIKeyFile)
	cfg.ShowsFile = expandHome(cfg.ShowsFile)
	cfg.LogFile = expandHome(cfg.LogFile)

	if err := cfg.readAPIKeyFile(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// values lists every key with its current value, used to seed viper defaults
// so that environment overrides apply to keys absent from the file.
func (c *Config) values() map[string]any {
	return map[string]any{
		"catalog":            c.Catalog,
		"tvdb_api_key":       c.TVDBAPIKey,
		"tvdb_api_key_file":  c.TVDBAPIKeyFile,
		"tmdb_api_key":       c.TMDBAPIKey,
		"language":           c.Language,
		"shows_file":         c.ShowsFile,
		"minimum_file_size":  c.MinimumFileSize,
		"minimum_duration":   c.MinimumDuration,
		"kodi":               c.Kodi,
		"enable_logging":     c.EnableLogging,
		"log_retention_days": c.LogRetentionDays,
		"log_file":           c.LogFile,
		"log_max_size_mb":    c.LogMaxSizeMB,
		"log_max_backups":    c.LogMaxBackups,
		"watch_settle":       c.WatchSettle,
	}
}

func (c *Config) readAPIKeyFile() error {
	if c.TVDBAPIKey != "" || c.TVDBAPIKeyFile == "" {
		return nil
	}
	data, err := os.ReadFile(c.TVDBAPIKeyFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read API key file: %w", err)
	}
	c.TVDBAPIKey = strings.TrimSpace(string(data))
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Validate reports the first problem that makes the configuration unusable.
func (c *Config) Validate() error {
	switch c.Catalog {
	case CatalogTVDB:
		if c.TVDBAPIKey == "" {
			return fmt.Errorf("%w for %s (set tvdb_api_key or write it to %s)", ErrMissingAPIKey, c.Catalog, c.TVDBAPIKeyFile)
		}
	case CatalogTMDB:
		if c.TMDBAPIKey == "" {
			return fmt.Errorf("%w for %s (set tmdb_api_key)", ErrMissingAPIKey, c.Catalog)
		}
	default:
		return &ValidationError{Field: "catalog", Message: fmt.Sprintf("%q is not one of %s, %s", c.Catalog, CatalogTVDB, CatalogTMDB)}
	}
	if c.ShowsFile == "" {
		return &ValidationError{Field: "shows_file", Message: "must not be empty"}
	}
	if c.MinimumFileSize < 0 {
		return &ValidationError{Field: "minimum_file_size", Message: "must not be negative"}
	}
	if c.MinimumDuration < 0 {
		return &ValidationError{Field: "minimum_duration", Message: "must not be negative"}
	}
	if c.Kodi != "" {
		if _, err := kodi.ParseTarget(c.Kodi); err != nil {
			return &ValidationError{Field: "kodi", Message: err.Error()}
		}
	}
	return nil
}

// Masked returns a copy safe to print, with secrets hidden.
func (c *Config) Masked() *Config {
	out := *c
	out.TVDBAPIKey = mask(c.TVDBAPIKey)
	out.TMDBAPIKey = mask(c.TMDBAPIKey)
	if c.Kodi != "" {
		if target, err := kodi.ParseTarget(c.Kodi); err == nil {
			out.Kodi = target.String()
		}
	}
	return &out
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	// Durations are written in their string form, e.g. "30s".
	out := struct {
		Config      `yaml:",inline"`
		WatchSettle string `yaml:"watch_settle"`
	}{Config: *c, WatchSettle: c.WatchSettle.String()}
	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Save writes the configuration to path, creating its directory.
func (c *Config) Save(path string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
