package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Map    MapConfig    `yaml:"map" mapstructure:"map"`
	Tiles  TilesConfig  `yaml:"tiles" mapstructure:"tiles"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	CSV    CSVConfig    `yaml:"csv" mapstructure:"csv"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// MapConfig configures canvases and where documents are written.
type MapConfig struct {
	Zoom      int    `yaml:"zoom" mapstructure:"zoom"`
	Tiles     string `yaml:"tiles" mapstructure:"tiles"`
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
}

// TilesConfig holds API keys for the keyed base layers.
type TilesConfig struct {
	ThunderforestKey string `yaml:"thunderforest_key" mapstructure:"thunderforest_key"`
	MapboxToken      string `yaml:"mapbox_token" mapstructure:"mapbox_token"`
}

// FetchConfig configures remote dataset downloads.
type FetchConfig struct {
	UserAgent     string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs   int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries    int     `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	TempDir       string  `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// CSVConfig configures how delimited text inputs are parsed.
type CSVConfig struct {
	Comment   string `yaml:"comment" mapstructure:"comment"` // first rune starts a comment line
	TrimSpace bool   `yaml:"trim_space" mapstructure:"trim_space"`
}

// CommentRune returns the comment character, or 0 when none is set.
func (c CSVConfig) CommentRune() rune {
	for _, r := range c.Comment {
		return r
	}
	return 0
}

// StoreConfig configures the database the --query flag reads from.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the preview server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// Load reads configuration from .env, config.yaml and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("QUICKMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("map.zoom", 3)
	v.SetDefault("map.tiles", "OpenStreetMap")
	v.SetDefault("map.output_dir", "output")
	v.SetDefault("tiles.thunderforest_key", "")
	v.SetDefault("tiles.mapbox_token", "")
	v.SetDefault("fetch.user_agent", "quickmap/1.0")
	v.SetDefault("fetch.timeout_secs", 60)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.rate_per_second", 5.0)
	v.SetDefault("fetch.temp_dir", "")
	v.SetDefault("csv.comment", "")
	v.SetDefault("csv.trim_space", true)
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("store.min_conns", 0)
	v.SetDefault("server.port", 8080)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Modes are "map", "query" and "serve".
func (c *Config) Validate(mode string) error {
	var missing []string

	switch mode {
	case "map":
		if c.Map.Zoom < 0 || c.Map.Zoom > 22 {
			return eris.Errorf("config: map.zoom %d out of range [0, 22]", c.Map.Zoom)
		}
		if c.Map.OutputDir == "" {
			missing = append(missing, "map.output_dir")
		}
		if err := c.Fetch.validate(); err != nil {
			return err
		}
	case "query":
		if c.Store.DatabaseURL == "" {
			missing = append(missing, "store.database_url")
		}
		if c.Store.Driver == "" {
			missing = append(missing, "store.driver")
		}
		if c.Store.MinConns < 0 || c.Store.MaxConns < 0 || (c.Store.MaxConns > 0 && c.Store.MinConns > c.Store.MaxConns) {
			return eris.Errorf("config: store.min_conns %d and store.max_conns %d are inconsistent",
				c.Store.MinConns, c.Store.MaxConns)
		}
	case "serve":
		if c.Server.Port < 1 || c.Server.Port > 65535 {
			return eris.Errorf("config: server.port %d out of range", c.Server.Port)
		}
		if c.Map.OutputDir == "" {
			missing = append(missing, "map.output_dir")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(missing) > 0 {
		return eris.Errorf("config: missing required fields for %s: %s", mode, strings.Join(missing, ", "))
	}
	return nil
}

func (f FetchConfig) validate() error {
	switch {
	case f.MaxRetries < 0:
		return eris.Errorf("config: fetch.max_retries %d must not be negative", f.MaxRetries)
	case f.TimeoutSecs < 0:
		return eris.Errorf("config: fetch.timeout_secs %d must not be negative", f.TimeoutSecs)
	case f.RatePerSecond < 0:
		return eris.Errorf("config: fetch.rate_per_second %g must not be negative", f.RatePerSecond)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
