package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.DB.Driver)
	assert.Equal(t, "UTC", cfg.Ledger.Timezone)
	assert.Equal(t, 5, cfg.Ledger.LowStockPreview)
	assert.Equal(t, 5*time.Second, cfg.DB.Timeout())
	assert.Equal(t, 15*time.Second, cfg.IdempotencyLockTTL())

	loc, err := cfg.Ledger.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_LeeVariablesDeEntorno(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("LEDGER_TIMEZONE", "America/Sao_Paulo")
	t.Setenv("LEDGER_LOW_STOCK_PREVIEW", "8")
	t.Setenv("STORE_TIMEOUT_SECONDS", "2")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "America/Sao_Paulo", cfg.Ledger.Timezone)
	assert.Equal(t, 8, cfg.Ledger.LowStockPreview)
	assert.Equal(t, 2*time.Second, cfg.DB.Timeout())
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.Equal(t, 6*time.Second, cfg.IdempotencyLockTTL(), "la reserva sigue al timeout del almacenamiento")

	t.Setenv("IDEMPOTENCY_LOCK_SECONDS", "40")
	cfg, err = config.Load()
	require.NoError(t, err)
	assert.Equal(t, 40*time.Second, cfg.IdempotencyLockTTL())
}

func TestLoad_ZonaHorariaInvalida(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("LEDGER_TIMEZONE", "Marte/Olympus")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_DriverInvalido(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSN_EscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/word", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/ledger?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
