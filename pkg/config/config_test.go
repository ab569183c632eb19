package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, StoragePostgres, cfg.App.StorageDriver)
	assert.Equal(t, "0.12", cfg.Settlement.TaxRate.StringFixed(2))
	assert.Equal(t, "1.00", cfg.Settlement.LateFeePerMinute.StringFixed(2))
	assert.Equal(t, "GTQ", cfg.Settlement.Currency)
	assert.Equal(t, 5, cfg.Settlement.MaxAttempts)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.True(t, cfg.DB.AutoMigrate)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "memory")
	v.Set("LATE_FEE_PER_MINUTE", "0.25")
	v.Set("LEDGER_MAX_ATTEMPTS", "0")
	v.Set("HTTP_PORT", "9090")
	v.Set("DB_AUTO_MIGRATE", "false")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.App.StorageDriver)
	assert.Equal(t, "0.25", cfg.Settlement.LateFeePerMinute.StringFixed(2))
	assert.Equal(t, 1, cfg.Settlement.MaxAttempts, "al menos un intento")
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.False(t, cfg.DB.AutoMigrate)
}

func TestFromViper_MontoInvalido(t *testing.T) {
	v := viper.New()
	v.Set("SETTLEMENT_TAX_RATE", "doce")

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestFromViper_DriverDesconocido(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "dynamodb")

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "peajes", Password: "p@ss:w/rd", DBName: "peajes", SSLMode: "disable"}
	assert.Equal(t, "postgres://peajes:p%40ss%3Aw%2Frd@db:5432/peajes?sslmode=disable", c.ConnectionString())
}
