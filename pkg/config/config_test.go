package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/factoring-api/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("PAYMENTS_MODE", "dev")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 7, cfg.Proposals.DefaultExpiryDays)
	assert.Equal(t, 300*time.Second, cfg.Payments.SweepLockTTL)
}

func TestLoad_EnvTienePrioridad(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("PROPOSALS_DEFAULT_EXPIRY_DAYS", "3")
	t.Setenv("REDIS_ADDRESS", "redis:6379")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 3, cfg.Proposals.DefaultExpiryDays)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
}

func TestLoad_ModoLiveSinPasarela_Error(t *testing.T) {
	t.Setenv("PAYMENTS_MODE", "live")
	t.Setenv("PAYMENTS_GATEWAY_URL", "")

	_, err := config.Load()
	assert.Error(t, err, "live sin URL de pasarela no debe arrancar")
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "factoring", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/factoring?sslmode=disable", c.ConnectionString())
}
