package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/hunts")
	t.Setenv("JWT_ACCESS_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 7091, cfg.HTTP.Port)
	assert.Equal(t, "5", cfg.Payments.FeePercent.String())
	assert.Equal(t, int64(50), cfg.Payments.MinFeeCents)
	assert.Equal(t, 3, cfg.Payments.MaxRetries)
	assert.Equal(t, "100", cfg.AddOns.ExtraDay.String())
	assert.Equal(t, "75", cfg.AddOns.NonHunter.String())
	assert.Equal(t, "50", cfg.AddOns.Observer.String())
	assert.Empty(t, cfg.RabbitMQ.URL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/hunts")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("PAYMENT_FEE_PERCENT", "3.5")
	t.Setenv("PAYMENT_MIN_FEE_CENTS", "99")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3.5", cfg.Payments.FeePercent.String())
	assert.Equal(t, int64(99), cfg.Payments.MinFeeCents)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
}

func TestLoad_RequiresDSNAndSecret(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_ACCESS_SECRET", "secret")

	_, err := Load()
	assert.EqualError(t, err, "DB_DSN is required")
}

func TestLoad_RejectsInvalidFee(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/hunts")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("PAYMENT_FEE_PERCENT", "five")

	_, err := Load()
	assert.Error(t, err)
}

func TestParseList(t *testing.T) {
	assert.Nil(t, parseList("  "))
	assert.Equal(t, []string{"a", "b"}, parseList("a, ,b"))
}
