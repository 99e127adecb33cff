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

type Config struct {
	Mode       string `mapstructure:"mode"`
	Port       int    `mapstructure:"port"`
	StaticPath string `mapstructure:"static_path"`
	Secret     string `mapstructure:"secret"`

	Log   LogConfig   `mapstructure:"log"`
	WS    WSConfig    `mapstructure:"ws"`
	Call  CallConfig  `mapstructure:"call"`
	Rooms RoomsConfig `mapstructure:"rooms"`
	ICE   ICEConfig   `mapstructure:"ice"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type WSConfig struct {
	ReadLimit       int64         `mapstructure:"read_limit"`
	SendBuffer      int           `mapstructure:"send_buffer"`
	WriteWait       time.Duration `mapstructure:"write_wait"`
	PongWait        time.Duration `mapstructure:"pong_wait"`
	PingPeriod      time.Duration `mapstructure:"ping_period"`
	EventsPerSecond float64       `mapstructure:"events_per_second"`
	EventsBurst     int           `mapstructure:"events_burst"`
}

type CallConfig struct {
	RingTimeout time.Duration `mapstructure:"ring_timeout"`
}

type RoomsConfig struct {
	CreateLimit  int           `mapstructure:"create_limit"`
	CreateWindow time.Duration `mapstructure:"create_window"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("CALLBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	cfg, err := FromViper(v)
	if err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("static", cfg.StaticPath).Msg("config ready")
	return cfg, nil
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8000)
	v.SetDefault("static_path", "./web")
	v.SetDefault("secret", "change-me")
	v.SetDefault("log.level", "info")

	v.SetDefault("ws.read_limit", 65536)
	v.SetDefault("ws.send_buffer", 64)
	v.SetDefault("ws.write_wait", "5s")
	v.SetDefault("ws.pong_wait", "60s")
	v.SetDefault("ws.ping_period", "54s")
	v.SetDefault("ws.events_per_second", 50)
	v.SetDefault("ws.events_burst", 100)

	v.SetDefault("call.ring_timeout", "0s")

	v.SetDefault("rooms.create_limit", 5)
	v.SetDefault("rooms.create_window", "1m")

	v.SetDefault("ice.servers", []map[string]any{
		{"urls": []string{"stun:stun.l.google.com:19302", "stun:stun1.l.google.com:19302"}},
	})
	v.SetDefault("ice.turn_ttl", "1h")
}

// FromViper decodes and validates a prepared viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var ErrInvalid = errors.New("invalid config")

func (c *Config) Validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("%w: port %d", ErrInvalid, c.Port)
	case c.WS.SendBuffer <= 0:
		return fmt.Errorf("%w: ws.send_buffer must be > 0", ErrInvalid)
	case c.WS.ReadLimit <= 0:
		return fmt.Errorf("%w: ws.read_limit must be > 0", ErrInvalid)
	case c.WS.PingPeriod <= 0 || c.WS.PingPeriod >= c.WS.PongWait:
		return fmt.Errorf("%w: ws.ping_period must be > 0 and below ws.pong_wait", ErrInvalid)
	case c.WS.EventsPerSecond <= 0 || c.WS.EventsBurst <= 0:
		return fmt.Errorf("%w: ws.events_per_second and ws.events_burst must be > 0", ErrInvalid)
	case c.Call.RingTimeout < 0:
		return fmt.Errorf("%w: call.ring_timeout must not be negative", ErrInvalid)
	case c.Rooms.CreateLimit <= 0 || c.Rooms.CreateWindow <= 0:
		return fmt.Errorf("%w: rooms.create_limit and rooms.create_window must be > 0", ErrInvalid)
	}
	return c.ICE.Validate()
}
