package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSQLite   = "sqlite3"
	DriverMemory   = "memory"
)

type Config struct {
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Log      LogConfig      `yaml:"log" toml:"log"`
	Firebase FirebaseConfig `yaml:"firebase" toml:"firebase"`

	// Timezone is used to interpret submitted deadlines that carry no offset.
	Timezone string `yaml:"timezone" toml:"timezone"`
}

type ServerConfig struct {
	Port            string        `yaml:"port" toml:"port"`
	AllowedOrigins  []string      `yaml:"allowed_origins" toml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver      string `yaml:"driver" toml:"driver"`
	Host        string `yaml:"host" toml:"host"`
	Port        int    `yaml:"port" toml:"port"`
	User        string `yaml:"user" toml:"user"`
	Password    string `yaml:"password" toml:"password"`
	DBName      string `yaml:"dbname" toml:"dbname"`
	SSLMode     string `yaml:"sslmode" toml:"sslmode"`
	Path        string `yaml:"path" toml:"path"`
	AutoMigrate bool   `yaml:"auto_migrate" toml:"auto_migrate"`
}

type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

type FirebaseConfig struct {
	CredentialsPath    string `yaml:"credentials_path" toml:"credentials_path"`
	AuthRequired       bool   `yaml:"auth_required" toml:"auth_required"`
	ActivityCollection string `yaml:"activity_collection" toml:"activity_collection"`
}

// Enabled reports whether a Firebase app should be built.
func (f FirebaseConfig) Enabled() bool {
	return f.CredentialsPath != ""
}

// Default returns the configuration used when nothing else is provided.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			AllowedOrigins:  []string{"*"},
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:      DriverSQLite,
			Host:        "localhost",
			Port:        5432,
			SSLMode:     "disable",
			Path:        "todo.db",
			AutoMigrate: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Firebase: FirebaseConfig{
			ActivityCollection: "activity",
		},
		Timezone: "UTC",
	}
}

// Load builds the configuration from defaults, the optional file at path
// (YAML or TOML, chosen by extension) and the process environment.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	content := expandEnv(string(data))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(content, cfg); err != nil {
			return fmt.Errorf("error parsing config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
			return fmt.Errorf("error parsing config %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config file extension %q", filepath.Ext(path))
	}
	return nil
}

// expandEnv replaces ${NAME} placeholders with values from the environment.
func expandEnv(content string) string {
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}
		placeholder := "${" + pair[0] + "}"
		content = strings.ReplaceAll(content, placeholder, pair[1])
	}
	return content
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Server.Port, "SERVER_PORT")
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.AllowedOrigins = splitList(origins)
	}
	if v := os.Getenv("SERVER_SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SERVER_SHUTDOWN_TIMEOUT value: %w", err)
		}
		cfg.Server.ShutdownTimeout = d
	}

	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.Host, "DB_HOST")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.DBName, "DB_NAME")
	setString(&cfg.Database.SSLMode, "DB_SSLMODE")
	setString(&cfg.Database.Path, "DB_PATH")
	if portStr := os.Getenv("DB_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid DB_PORT value: %w", err)
		}
		cfg.Database.Port = port
	}
	if err := setBool(&cfg.Database.AutoMigrate, "DB_AUTO_MIGRATE"); err != nil {
		return err
	}

	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")
	setString(&cfg.Timezone, "TIMEZONE")

	setString(&cfg.Firebase.CredentialsPath, "FIREBASE_CREDENTIALS_PATH")
	setString(&cfg.Firebase.ActivityCollection, "ACTIVITY_COLLECTION")
	return setBool(&cfg.Firebase.AuthRequired, "AUTH_REQUIRED")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s value: %w", key, err)
	}
	*dst = b
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate checks that the configuration can be used to start the server.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverPgx:
		if c.Database.Host == "" || c.Database.DBName == "" {
			return fmt.Errorf("database host and name are required for driver %q", c.Database.Driver)
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database path is required for driver %q", c.Database.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Firebase.AuthRequired && !c.Firebase.Enabled() {
		return fmt.Errorf("auth_required needs firebase credentials_path")
	}
	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
