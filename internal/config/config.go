package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type WSConfig struct {
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	// PongWait must exceed PingPeriod or idle clients time out between pings.
	PongWait   time.Duration `mapstructure:"pong_wait"`
	WriteWait  time.Duration `mapstructure:"write_wait"`
	SendBuffer int           `mapstructure:"send_buffer"`
}

// RateConfig limits commands per connection: Limit per Interval.
type RateConfig struct {
	Limit    int           `mapstructure:"limit"`
	Interval time.Duration `mapstructure:"interval"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type GameConfig struct {
	Name    string `mapstructure:"name"`
	Options int    `mapstructure:"options"`
}

type Config struct {
	Mode        string       `mapstructure:"mode"`
	Port        int          `mapstructure:"port"`
	Secret      string       `mapstructure:"secret"`
	WakeWorkers int          `mapstructure:"wake_workers"`
	WS          WSConfig     `mapstructure:"ws"`
	Rate        RateConfig   `mapstructure:"rate"`
	Log         LogConfig    `mapstructure:"log"`
	Games       []GameConfig `mapstructure:"games"`
}

// Load reads config/config.<CONFIG_ENV>.yaml (dev by default).
func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

// LoadFile reads fileName on top of the defaults. A missing file is not an
// error. GAMEGATE_* environment variables override both, e.g. GAMEGATE_WS_PING_PERIOD.
func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)

	v.SetEnvPrefix("GAMEGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", fileName, err)
		}
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Int("games", len(cfg.Games)).Msg("config ready")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("secret", "change-me")
	v.SetDefault("wake_workers", 8)
	v.SetDefault("ws.read_limit", 32768)
	v.SetDefault("ws.ping_period", "54s")
	v.SetDefault("ws.pong_wait", "60s")
	v.SetDefault("ws.write_wait", "5s")
	v.SetDefault("ws.send_buffer", 32)
	v.SetDefault("rate.limit", 20)
	v.SetDefault("rate.interval", "1s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("games", []map[string]any{
		{"name": "rock-paper-scissors", "options": 3},
		{"name": "coin-flip", "options": 2},
	})
}

// Validate reports every violation at once.
func (c Config) Validate() error {
	var errs []string
	validModes := map[string]bool{"release": true, "debug": true, "test": true}
	if !validModes[c.Mode] {
		errs = append(errs, fmt.Sprintf("mode must be one of [release, debug, test], got %q", c.Mode))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("port must be 1-65535, got %d", c.Port))
	}
	if c.Secret == "" {
		errs = append(errs, "secret must not be empty")
	}
	if c.WS.ReadLimit < 1 {
		errs = append(errs, "ws.read_limit must be positive")
	}
	if c.WS.PingPeriod <= 0 {
		errs = append(errs, "ws.ping_period must be positive")
	}
	if c.WS.PongWait <= c.WS.PingPeriod {
		errs = append(errs, "ws.pong_wait must exceed ws.ping_period")
	}
	if c.WS.WriteWait <= 0 {
		errs = append(errs, "ws.write_wait must be positive")
	}
	if c.WS.SendBuffer < 1 {
		errs = append(errs, "ws.send_buffer must be >= 1")
	}
	if c.Rate.Limit < 1 || c.Rate.Interval <= 0 {
		errs = append(errs, "rate.limit and rate.interval must be positive")
	}
	seen := make(map[string]bool, len(c.Games))
	for i, g := range c.Games {
		if g.Name == "" {
			errs = append(errs, fmt.Sprintf("games[%d].name must not be empty", i))
		}
		if seen[g.Name] {
			errs = append(errs, fmt.Sprintf("games[%d].name %q is duplicated", i, g.Name))
		}
		seen[g.Name] = true
		if g.Options < 1 {
			errs = append(errs, fmt.Sprintf("games[%d].options must be >= 1", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
