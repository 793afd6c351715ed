package main

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/redis/go-redis/v9"
	"github.com/stake-plus/contest-radar/src/cache"
	"github.com/stake-plus/contest-radar/src/config"
	"github.com/stake-plus/contest-radar/src/contest"
	"github.com/stake-plus/contest-radar/src/data"
	"github.com/stake-plus/contest-radar/src/gallery"
	"github.com/stake-plus/contest-radar/src/logging"
	"github.com/stake-plus/contest-radar/src/webclient"
	"go.uber.org/zap"
)

// env is everything a command needs once configuration is resolved.
type env struct {
	cfg      config.Config
	client   *ethclient.Client
	rdb      *redis.Client
	memory   *cache.MemoryStore
	pipeline *gallery.Pipeline
}

func (e *env) Close() {
	if e.client != nil {
		e.client.Close()
	}
	if e.rdb != nil {
		_ = e.rdb.Close()
	}
}

func bootstrap(ctx context.Context) (*env, error) {
	cfg, err := config.Load(loadSettings())
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if !verbose {
		if l, err := logging.New(cfg.LogLevel); err == nil {
			logger = l
		}
	}
	if contractFlag != "" {
		if !common.IsHexAddress(contractFlag) {
			return nil, fmt.Errorf("invalid contract address %q", contractFlag)
		}
		cfg.Contract = contractFlag
	}

	e := &env{cfg: cfg}
	e.client, err = contest.Dial(ctx, cfg.RPCURL, webclient.NewDefault(cfg.RPCTimeout), cfg.Chain, logger)
	if err != nil {
		return nil, err
	}

	var store cache.Store
	if cfg.RedisURL != "" {
		rdb, err := data.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, using in-memory cache", zap.Error(err))
		} else {
			e.rdb = rdb
			store = cache.NewRedisStore(rdb, "radar:")
		}
	}
	if store == nil {
		e.memory = cache.NewMemoryStore(nil)
		store = e.memory
	}

	e.pipeline = &gallery.Pipeline{
		Caller:      e.client,
		Chain:       cfg.Chain,
		Cache:       cache.New(store, cfg.CacheTTL),
		Retry:       cfg.RetryPolicy(),
		Concurrency: cfg.FetchConcurrency,
		Logger:      logger,
	}
	logger.Info("configured",
		zap.String("chain", cfg.Chain.Name),
		zap.String("contract", cfg.Contract),
		zap.Bool("redis", e.rdb != nil))
	return e, nil
}

// loadSettings reads the settings table when MYSQL_DSN is set. Failures only
// cost the overlay; env and defaults still apply.
func loadSettings() config.Lookup {
	dsn, ok := data.MySQLDSN()
	if !ok {
		return nil
	}
	db, err := data.ConnectMySQL(dsn, logger)
	if err != nil {
		logger.Warn("settings database unavailable", zap.Error(err))
		return nil
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	settings, err := data.LoadSettings(db)
	if err != nil {
		logger.Warn("loading settings failed", zap.Error(err))
		return nil
	}
	return settings
}
