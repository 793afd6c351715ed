package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stake-plus/contest-radar/src/contest"
	"github.com/stake-plus/contest-radar/src/webclient"
)

const DefaultContract = "0x7f4e1f8d7b626d5120008daedcea921060ebfb68"

// Lookup resolves a named setting, returning "" when unset.
type Lookup interface {
	Get(name string) string
}

type Config struct {
	Contract         string
	Chain            contest.Chain
	RPCURL           string
	Port             string
	RedisURL         string
	JWTSecret        string
	CacheTTL         time.Duration
	RefreshInterval  time.Duration
	FetchConcurrency int
	MaxRetries       int
	RetryBaseDelay   time.Duration
	RPCTimeout       time.Duration
	VotingSiteURL    string
	AllowedOrigins   []string
	LogLevel         string
}

// Load reads the configuration. Values from settings win over the
// environment, which wins over defaults. settings may be nil.
func Load(settings Lookup) (Config, error) {
	get := func(name, envKey, def string) string {
		return GetSetting(settings, name, envKey, def)
	}

	chain, err := contest.LookupChain(get("chain", "CHAIN", "base"))
	if err != nil {
		return Config{}, err
	}
	contract := strings.TrimSpace(get("contract_address", "CONTRACT_ADDRESS", DefaultContract))
	if !common.IsHexAddress(contract) {
		return Config{}, fmt.Errorf("invalid contract address %q", contract)
	}

	cfg := Config{
		Contract:         contract,
		Chain:            chain,
		RPCURL:           get("rpc_url", "RPC_URL", chain.DefaultRPC),
		Port:             get("port", "PORT", "8080"),
		RedisURL:         get("redis_url", "REDIS_URL", ""),
		JWTSecret:        get("jwt_secret", "JWT_SECRET", ""),
		CacheTTL:         seconds(get("cache_ttl_seconds", "CACHE_TTL_SECONDS", ""), 300),
		RefreshInterval:  seconds(get("refresh_interval_seconds", "REFRESH_INTERVAL_SECONDS", ""), 300),
		FetchConcurrency: positive(get("fetch_concurrency", "FETCH_CONCURRENCY", ""), 5),
		MaxRetries:       nonNegative(get("max_retries", "MAX_RETRIES", ""), webclient.DefaultMaxRetries),
		RetryBaseDelay:   time.Duration(positive(get("retry_base_delay_ms", "RETRY_BASE_DELAY_MS", ""), 1000)) * time.Millisecond,
		RPCTimeout:       seconds(get("rpc_timeout_seconds", "RPC_TIMEOUT_SECONDS", ""), 30),
		VotingSiteURL:    strings.TrimRight(get("voting_site_url", "VOTING_SITE_URL", "https://jokerace.io/contest"), "/"),
		AllowedOrigins:   splitList(get("allowed_origins", "ALLOWED_ORIGINS", "http://localhost:3000")),
		LogLevel:         get("log_level", "LOG_LEVEL", "info"),
	}
	return cfg, nil
}

// GetSetting retrieves a setting with env fallback.
func GetSetting(settings Lookup, name, envKey, defaultValue string) string {
	var val string
	if settings != nil {
		val = strings.TrimSpace(settings.Get(name))
	}
	if val == "" {
		val = strings.TrimSpace(os.Getenv(envKey))
	}
	if val == "" {
		val = defaultValue
	}
	return val
}

// RetryPolicy is the policy applied to every contract read.
func (c Config) RetryPolicy() webclient.Policy {
	p := webclient.DefaultPolicy()
	p.MaxRetries = c.MaxRetries
	p.BaseDelay = c.RetryBaseDelay
	return p
}

func positive(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func nonNegative(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func seconds(s string, def int) time.Duration {
	return time.Duration(positive(s, def)) * time.Second
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
