// Package config loads server configuration from an optional .env file,
// an optional config.yaml and BW_-prefixed environment variables, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mcoot/brettonwoods/internal/model"
)

// EnvPrefix prefixes every environment variable, e.g. BW_SERVER_ADDR
const EnvPrefix = "BW"

// Storage backends
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Game     GameConfig     `mapstructure:"game"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type StorageConfig struct {
	Type         string        `mapstructure:"type"`
	FilePath     string        `mapstructure:"file_path"`
	SaveInterval time.Duration `mapstructure:"save_interval"`
}

type RedisConfig struct {
	URL          string `mapstructure:"url"`
	KeyPrefix    string `mapstructure:"key_prefix"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type AuthConfig struct {
	SuperadminUsername string        `mapstructure:"superadmin_username"`
	SessionDuration    time.Duration `mapstructure:"session_duration"`
	// CleanupInterval is how often expired sessions are swept
	CleanupInterval    time.Duration `mapstructure:"cleanup_interval"`
}

// GameConfig holds the defaults new rooms are created with
type GameConfig struct {
	MaxPlayers          int    `mapstructure:"max_players"`
	VoteMode            string `mapstructure:"vote_mode"`
	StartYear           int    `mapstructure:"start_year"`
	MaxYears            int    `mapstructure:"max_years"`
	RequireAdminToStart bool   `mapstructure:"require_admin_to_start"`
	RequireAllReady     bool   `mapstructure:"require_all_ready"`
	// Seed makes the economic model's random draws reproducible. Zero
	// uses a crypto-backed source.
	Seed uint64 `mapstructure:"seed"`
}

// LoadOptions says where to look for optional config files
type LoadOptions struct {
	// DotEnvPath is loaded into the environment if it exists
	DotEnvPath string
	// ConfigFile must exist when set; otherwise ./config.yaml is read if present
	ConfigFile string
}

func setDefaults(v *viper.Viper) {
	room := model.DefaultRoomConfig()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("log.level", "info")

	v.SetDefault("storage.type", StorageMemory)
	v.SetDefault("storage.file_path", "data/state.json")
	v.SetDefault("storage.save_interval", 2*time.Minute)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.key_prefix", "bwgame")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("auth.superadmin_username", "")
	v.SetDefault("auth.session_duration", 24*time.Hour)
	v.SetDefault("auth.cleanup_interval", 10*time.Minute)

	v.SetDefault("game.max_players", room.MaxPlayers)
	v.SetDefault("game.vote_mode", string(room.VoteMode))
	v.SetDefault("game.start_year", room.StartYear)
	v.SetDefault("game.max_years", room.MaxYears)
	v.SetDefault("game.require_admin_to_start", false)
	v.SetDefault("game.require_all_ready", false)
	v.SetDefault("game.seed", 0)
}

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// Default returns the built-in defaults without reading the environment
// or any file
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config defaults do not decode: %v", err))
	}
	return &cfg
}

// Load builds the configuration and validates it
func Load(opts LoadOptions) (*Config, error) {
	if err := LoadDotEnv(opts.DotEnvPath); err != nil {
		return nil, fmt.Errorf("loading %s: %w", opts.DotEnvPath, err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case StorageMemory:
	case StorageFile:
		if c.Storage.FilePath == "" {
			return errors.New("storage.file_path required when storage.type is file")
		}
	case StorageRedis:
		if c.Redis.URL == "" {
			return errors.New("redis.url required when storage.type is redis")
		}
	case StoragePostgres:
		if c.Postgres.DSN == "" {
			return errors.New("postgres.dsn required when storage.type is postgres")
		}
	default:
		return fmt.Errorf("invalid storage.type %q: must be memory, file, redis or postgres", c.Storage.Type)
	}
	if c.Storage.SaveInterval <= 0 {
		return errors.New("storage.save_interval must be positive")
	}
	if err := c.RoomDefaults().Validate(); err != nil {
		return fmt.Errorf("game: %w", err)
	}
	return nil
}

// RoomDefaults converts the game section into a room config
func (c *Config) RoomDefaults() model.RoomConfig {
	return model.RoomConfig{
		MaxPlayers:          c.Game.MaxPlayers,
		VoteMode:            model.VoteMode(c.Game.VoteMode),
		StartYear:           c.Game.StartYear,
		MaxYears:            c.Game.MaxYears,
		RequireAdminToStart: c.Game.RequireAdminToStart,
		RequireAllReady:     c.Game.RequireAllReady,
	}
}

// LogLevel parses the configured level, defaulting to info
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
