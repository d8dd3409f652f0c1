package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode     string `mapstructure:"mode" validate:"oneof=debug release test"`
	Port     int    `mapstructure:"port" validate:"min=1,max=65535"`
	LogLevel string `mapstructure:"log_level" validate:"oneof=trace debug info warn error"`
	Secret   string `mapstructure:"secret" validate:"required"`
	// IntakeToken is the bearer token the course watcher presents.
	IntakeToken string `mapstructure:"intake_token" validate:"required,min=16"`

	ReadLimit        int64         `mapstructure:"read_limit" validate:"gt=0"`
	PingPeriod       time.Duration `mapstructure:"ping_period" validate:"gt=0"`
	SendBuffer       int           `mapstructure:"send_buffer" validate:"gt=0"`
	BroadcastTimeout time.Duration `mapstructure:"broadcast_timeout" validate:"gt=0"`

	VerifyTimeout   time.Duration `mapstructure:"verify_timeout" validate:"gt=0"`
	SignatureScheme string        `mapstructure:"signature_scheme" validate:"oneof=sr25519 ed25519"`

	Workers            int    `mapstructure:"workers" validate:"gte=1"`
	BackpressurePolicy string `mapstructure:"backpressure_policy" validate:"oneof=skip kick"`

	ChatRateLimit    int           `mapstructure:"chat_rate_limit" validate:"gte=0"`
	ChatRateInterval time.Duration `mapstructure:"chat_rate_interval" validate:"gt=0"`

	STUNURLs   []string `mapstructure:"stun_urls"`
	UDPPortMin uint16   `mapstructure:"udp_port_min"`
	UDPPortMax uint16   `mapstructure:"udp_port_max" validate:"omitempty,gtefield=UDPPortMin"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("secret", "classroom-dev-secret")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("send_buffer", 32)
	v.SetDefault("broadcast_timeout", "5s")
	v.SetDefault("verify_timeout", "3s")
	v.SetDefault("signature_scheme", "sr25519")
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("backpressure_policy", "skip")
	v.SetDefault("chat_rate_limit", 10)
	v.SetDefault("chat_rate_interval", "10s")
	v.SetDefault("stun_urls", []string{"stun:stun.l.google.com:19302"})
	v.SetDefault("udp_port_min", 0)
	v.SetDefault("udp_port_max", 0)
}

// Load reads config/config.<CONFIG_ENV>.yaml over the defaults, then applies
// CLASSROOM_* environment overrides.
func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	v.SetEnvPrefix("CLASSROOM")
	v.AutomaticEnv()
	// no default, so AutomaticEnv alone would not surface it to Unmarshal
	if err := v.BindEnv("intake_token"); err != nil {
		return nil, fmt.Errorf("bind intake_token: %w", err)
	}
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", fileName, err)
		}
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Int("workers", cfg.Workers).Msg("config ready")
	return &cfg, nil
}
