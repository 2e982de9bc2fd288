package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
}

type PaymentsConfig struct {
	FeePercent      decimal.Decimal
	MinFeeCents     int64
	MaxRetries      int
	SideEffectTries int
}

type AddOnConfig struct {
	ExtraDay  decimal.Decimal
	NonHunter decimal.Decimal
	Observer  decimal.Decimal
}

type RabbitMQConfig struct {
	URL      string
	Exchange string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Payments    PaymentsConfig
	AddOns      AddOnConfig
	RabbitMQ    RabbitMQConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	v.SetDefault("PAYMENT_FEE_PERCENT", "5")
	v.SetDefault("PAYMENT_MIN_FEE_CENTS", 50)
	v.SetDefault("RECONCILE_MAX_RETRIES", 3)
	v.SetDefault("SIDE_EFFECT_ATTEMPTS", 2)
	v.SetDefault("ADDON_DEFAULT_EXTRA_DAY", "100.00")
	v.SetDefault("ADDON_DEFAULT_NON_HUNTER", "75.00")
	v.SetDefault("ADDON_DEFAULT_OBSERVER", "50.00")
	v.SetDefault("RABBITMQ_EXCHANGE", "hunt-contracts")

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host:        v.GetString("HTTP_HOST"),
			Port:        v.GetInt("HTTP_PORT"),
			CORSOrigins: parseList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Payments: PaymentsConfig{
			MinFeeCents:     v.GetInt64("PAYMENT_MIN_FEE_CENTS"),
			MaxRetries:      v.GetInt("RECONCILE_MAX_RETRIES"),
			SideEffectTries: v.GetInt("SIDE_EFFECT_ATTEMPTS"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      v.GetString("RABBITMQ_URL"),
			Exchange: v.GetString("RABBITMQ_EXCHANGE"),
		},
	}

	var err error
	if cfg.Payments.FeePercent, err = parseDecimal(v, "PAYMENT_FEE_PERCENT"); err != nil {
		return nil, err
	}
	if cfg.AddOns.ExtraDay, err = parseDecimal(v, "ADDON_DEFAULT_EXTRA_DAY"); err != nil {
		return nil, err
	}
	if cfg.AddOns.NonHunter, err = parseDecimal(v, "ADDON_DEFAULT_NON_HUNTER"); err != nil {
		return nil, err
	}
	if cfg.AddOns.Observer, err = parseDecimal(v, "ADDON_DEFAULT_OBSERVER"); err != nil {
		return nil, err
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7091
	}
	if cfg.Payments.MaxRetries <= 0 {
		cfg.Payments.MaxRetries = 3
	}
	if cfg.Payments.SideEffectTries <= 0 {
		cfg.Payments.SideEffectTries = 1
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Payments.FeePercent.IsNegative() {
		return fmt.Errorf("PAYMENT_FEE_PERCENT must not be negative")
	}
	if cfg.Payments.MinFeeCents < 0 {
		return fmt.Errorf("PAYMENT_MIN_FEE_CENTS must not be negative")
	}
	return nil
}

func parseDecimal(v *viper.Viper, key string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(v.GetString(key))
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid decimal %q", key, raw)
	}
	return value, nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
