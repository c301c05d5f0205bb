package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvFallback(t *testing.T) {
	os.Unsetenv("WEWEAR_UNSET_KEY")
	assert.Equal(t, "fallback", GetEnv("WEWEAR_UNSET_KEY", "fallback"))

	os.Setenv("WEWEAR_SET_KEY", "value")
	defer os.Unsetenv("WEWEAR_SET_KEY")
	assert.Equal(t, "value", GetEnv("WEWEAR_SET_KEY", "fallback"))
}

func TestJWTSecretFollowsEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "first")
	assert.Equal(t, []byte("first"), JWTSecret())
	t.Setenv("JWT_SECRET", "second")
	assert.Equal(t, []byte("second"), JWTSecret())
}

func TestColorTablesFromEnvironment(t *testing.T) {
	t.Setenv("COLOR_WHEEL", "red, green ,blue,")
	t.Setenv("COLOR_ALIASES", "navy=blue, teal = green, broken")
	cfg := Load()
	assert.Equal(t, []string{"red", "green", "blue"}, cfg.ColorWheel)
	assert.Equal(t, map[string]string{"navy": "blue", "teal": "green"}, cfg.ColorAliases)
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.NotEmpty(t, cfg.HTTPAddr)
	assert.Equal(t, 30, cfg.OverdueAfterDays)
	assert.Equal(t, 7, cfg.HistoryWindowDays)
	assert.Equal(t, 20*time.Second, cfg.GeneratorTimeout)
}
