package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv(EnvStripeSecretKey, "sk_test_123")
	t.Setenv(EnvStripePriceMonthly, "price_monthly")
	t.Setenv(EnvStripePriceAnnual, "price_annual")
	t.Setenv(EnvStripeWebhookSecret, "whsec_stripe")
	t.Setenv(EnvClerkWebhookSecret, "whsec_clerk")
	t.Setenv(EnvClerkJWKSURL, "https://clerk.example.com/.well-known/jwks.json")
}

func TestLoad(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk_test_123", cfg.Billing.SecretKey)
	assert.Equal(t, "price_monthly", cfg.Billing.PriceMonthly)
	assert.Equal(t, "price_annual", cfg.Billing.PriceAnnual)
	assert.Equal(t, 3001, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.False(t, cfg.Archive.Enabled())
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		unset   string
		wantVar string
	}{
		{name: "missing secret key", unset: EnvStripeSecretKey, wantVar: EnvStripeSecretKey},
		{name: "missing monthly price", unset: EnvStripePriceMonthly, wantVar: EnvStripePriceMonthly},
		{name: "missing annual price", unset: EnvStripePriceAnnual, wantVar: EnvStripePriceAnnual},
		{name: "missing clerk jwks url", unset: EnvClerkJWKSURL, wantVar: EnvClerkJWKSURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.unset, "")

			cfg, err := Load()
			require.Error(t, err)
			assert.Nil(t, cfg)

			var missing *MissingEnvError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, tt.wantVar, missing.Name)
			assert.Contains(t, err.Error(), tt.wantVar)
		})
	}
}

func TestLoad_InvalidDriver(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_DRIVER", "mysql")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestBillingConfig_PriceID(t *testing.T) {
	tests := []struct {
		name        string
		cfg         BillingConfig
		interval    Interval
		want        string
		wantMissing string
		wantErr     error
	}{
		{
			name:     "annual configured",
			cfg:      BillingConfig{PriceAnnual: "price_123"},
			interval: IntervalAnnual,
			want:     "price_123",
		},
		{
			name:     "monthly configured",
			cfg:      BillingConfig{PriceMonthly: "price_m", PriceAnnual: "price_a"},
			interval: IntervalMonthly,
			want:     "price_m",
		},
		{
			name:        "monthly not configured",
			cfg:         BillingConfig{PriceAnnual: "price_123"},
			interval:    IntervalMonthly,
			wantMissing: EnvStripePriceMonthly,
		},
		{
			name:        "annual not configured",
			cfg:         BillingConfig{PriceMonthly: "price_m"},
			interval:    IntervalAnnual,
			wantMissing: EnvStripePriceAnnual,
		},
		{
			name:     "unknown interval",
			cfg:      BillingConfig{PriceMonthly: "price_m", PriceAnnual: "price_a"},
			interval: Interval("weekly"),
			wantErr:  ErrUnknownInterval,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.PriceID(tt.interval)

			switch {
			case tt.wantMissing != "":
				var missing *MissingEnvError
				require.True(t, errors.As(err, &missing))
				assert.Equal(t, tt.wantMissing, missing.Name)
				assert.Empty(t, got)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestLoadDatabase_NoProviderSecrets(t *testing.T) {
	t.Setenv(EnvStripeSecretKey, "")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_PORT", "6543")

	db := LoadDatabase()
	assert.Equal(t, "postgres", db.Driver)
	assert.Equal(t, 6543, db.Port)
	assert.Equal(t, "sitevoice", db.Name)
}

func TestLoad_AllowedOrigins(t *testing.T) {
	setRequired(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, ,https://b.example.com ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
}
