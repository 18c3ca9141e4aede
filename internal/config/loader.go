package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/rpattn/catalogql/internal/db"
)

// Config is the full server configuration.
type Config struct {
	Server     ServerConfig
	Pagination PaginationConfig
	Cursor     CursorConfig
	Storage    StorageConfig
}

type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

type PaginationConfig struct {
	DefaultLimit int
	MaxLimit     int
}

type CursorConfig struct {
	// Secret signs pagination tokens. Empty means a process-local random
	// key, which invalidates outstanding cursors on restart.
	Secret string
}

type StorageConfig struct {
	// Driver selects the entity store: "memory" or "postgres".
	Driver   string
	Database db.Config
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Pagination: PaginationConfig{
			DefaultLimit: 20,
			MaxLimit:     1000,
		},
		Storage: StorageConfig{
			Driver:   "memory",
			Database: db.DefaultConfig(),
		},
	}
}

// Load reads config.yaml from the given path, with environment overrides
// like CATALOG_SERVER_ADDR and CATALOG_DATABASE_HOST. A missing file is not
// an error; defaults and env vars apply.
func Load(configPath string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("CATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("server.addr")
	v.BindEnv("cursor.secret")
	v.BindEnv("storage.driver")
	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	if v.IsSet("server.addr") {
		cfg.Server.Addr = v.GetString("server.addr")
	}
	if v.IsSet("server.allowed_origins") {
		cfg.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}
	if v.IsSet("pagination.default_limit") {
		cfg.Pagination.DefaultLimit = v.GetInt("pagination.default_limit")
	}
	if v.IsSet("pagination.max_limit") {
		cfg.Pagination.MaxLimit = v.GetInt("pagination.max_limit")
	}
	if v.IsSet("cursor.secret") {
		cfg.Cursor.Secret = v.GetString("cursor.secret")
	}
	if v.IsSet("storage.driver") {
		cfg.Storage.Driver = v.GetString("storage.driver")
	}
	if v.IsSet("database.host") {
		cfg.Storage.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Storage.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Storage.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Storage.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Storage.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Storage.Database.SSLMode = v.GetString("database.sslmode")
	}

	return cfg, nil
}
