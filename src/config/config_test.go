package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type settingsMap map[string]string

func (m settingsMap) Get(name string) string { return m[name] }

var envKeys = []string{
	"CONTRACT_ADDRESS", "CHAIN", "RPC_URL", "PORT", "REDIS_URL", "JWT_SECRET",
	"CACHE_TTL_SECONDS", "REFRESH_INTERVAL_SECONDS", "FETCH_CONCURRENCY", "MAX_RETRIES",
	"RETRY_BASE_DELAY_MS", "VOTING_SITE_URL", "ALLOWED_ORIGINS", "LOG_LEVEL", "RPC_TIMEOUT_SECONDS",
}

func clearEnv(t *testing.T) {
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultContract, cfg.Contract)
	assert.Equal(t, "base", cfg.Chain.Name)
	assert.Equal(t, cfg.Chain.DefaultRPC, cfg.RPCURL)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 300*time.Second, cfg.CacheTTL)
	assert.Equal(t, 300*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 5, cfg.FetchConcurrency)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.RetryBaseDelay)
	assert.Equal(t, 30*time.Second, cfg.RPCTimeout)
	assert.Equal(t, "https://jokerace.io/contest", cfg.VotingSiteURL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.JWTSecret)
}

func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHAIN", "sepolia")
	t.Setenv("CONTRACT_ADDRESS", "0x0000000000000000000000000000000000000001")
	t.Setenv("FETCH_CONCURRENCY", "8")
	t.Setenv("MAX_RETRIES", "0")
	t.Setenv("RETRY_BASE_DELAY_MS", "250")
	t.Setenv("CACHE_TTL_SECONDS", "nope")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("VOTING_SITE_URL", "https://vote.example/contest/")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "sepolia", cfg.Chain.Name)
	assert.Equal(t, "0x0000000000000000000000000000000000000001", cfg.Contract)
	assert.Equal(t, 8, cfg.FetchConcurrency)
	assert.Equal(t, 0, cfg.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryBaseDelay)
	assert.Equal(t, 300*time.Second, cfg.CacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "https://vote.example/contest", cfg.VotingSiteURL)

	p := cfg.RetryPolicy()
	assert.Equal(t, 0, p.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, p.BaseDelay)
}

func TestLoad_SettingsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("RPC_URL", "https://env.example")

	cfg, err := Load(settingsMap{"port": "7000", "rpc_url": "  "})
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "https://env.example", cfg.RPCURL)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHAIN", "dogechain")
	_, err := Load(nil)
	assert.Error(t, err)

	t.Setenv("CHAIN", "base")
	t.Setenv("CONTRACT_ADDRESS", "0x1234")
	_, err = Load(nil)
	assert.Error(t, err)
}

func TestGetSetting(t *testing.T) {
	t.Setenv("SOME_KEY", "from-env")
	assert.Equal(t, "from-db", GetSetting(settingsMap{"some": "from-db"}, "some", "SOME_KEY", "def"))
	assert.Equal(t, "from-env", GetSetting(settingsMap{}, "some", "SOME_KEY", "def"))
	assert.Equal(t, "def", GetSetting(nil, "other", "OTHER_KEY_UNSET", "def"))
}
