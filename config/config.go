// Package config loads settings shared by every fourstones command.
// Values come from, in increasing priority: built-in defaults, a
// fourstones.yaml file, FOURSTONES_* environment variables, and
// finally command-line flags bound by the individual commands.
package config

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/nelhage/fourstones/bitboard"
)

const EnvPrefix = "FOURSTONES"

type Config struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
	// Depth selects a cube board when it is greater than zero.
	Depth int `mapstructure:"depth"`

	TableBits int `mapstructure:"table_bits"`
	Threads   int `mapstructure:"threads"`

	// BookPath is the opening book database; empty disables the book.
	BookPath  string `mapstructure:"book_path"`
	BookPlies int    `mapstructure:"book_plies"`
	// LogPath is the solve log database; empty disables logging.
	LogPath string `mapstructure:"log_path"`

	Port  int `mapstructure:"port"`
	Debug int `mapstructure:"debug"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("width", 7)
	v.SetDefault("height", 6)
	v.SetDefault("depth", 0)
	v.SetDefault("table_bits", 20)
	v.SetDefault("threads", runtime.NumCPU())
	v.SetDefault("book_path", "")
	v.SetDefault("book_plies", 8)
	v.SetDefault("log_path", "")
	v.SetDefault("port", 55430)
	v.SetDefault("debug", 0)
}

// Load reads the configuration. If file is empty, fourstones.yaml is
// looked for in the working directory and is optional.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("fourstones")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &c, nil
}

// Board returns the board the configuration describes.
func (c *Config) Board() bitboard.Config {
	cfg := bitboard.Config{Width: c.Width, Height: c.Height}
	if c.Depth > 0 {
		cfg.Depth = c.Depth
		cfg.Shape = bitboard.Cube
	}
	return cfg
}

// Level maps the integer debug setting onto a log level.
func (c *Config) Level() zerolog.Level {
	switch {
	case c.Debug <= 0:
		return zerolog.WarnLevel
	case c.Debug == 1:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}
