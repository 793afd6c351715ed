package webserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stake-plus/contest-radar/src/contest"
	"github.com/stake-plus/contest-radar/src/gallery"
	"github.com/stake-plus/contest-radar/src/logging"
	"github.com/stake-plus/contest-radar/src/normalize"
	"go.uber.org/zap"
)

// Gallery is the presentation state served by the API.
type Gallery interface {
	Snapshot() gallery.Snapshot
	Find(id string) (normalize.CryptoApp, bool)
	Contract() string
	Switch(ctx context.Context, contract string) uint64
}

// MetadataSource reads scalar contest fields.
type MetadataSource interface {
	Metadata(ctx context.Context, contract string) (contest.Metadata, error)
}

type Config struct {
	Gallery        Gallery
	Metadata       MetadataSource
	Chain          contest.Chain
	VotingSiteURL  string
	JWTSecret      string
	AllowedOrigins []string
	// SwitchRate bounds contract switches per client per minute.
	SwitchRate int
	Logger     *zap.Logger
	// BaseContext outlives single requests and scopes background reloads.
	BaseContext context.Context
	Now         func() time.Time
}

func New(cfg Config) *gin.Engine {
	if cfg.BaseContext == nil {
		cfg.BaseContext = context.Background()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.SwitchRate <= 0 {
		cfg.SwitchRate = 10
	}
	cfg.Logger = logging.OrNop(cfg.Logger)

	g := gin.New()
	g.Use(RequestID(), AccessLog(cfg.Logger), gin.Recovery())
	attachRoutes(g, cfg)
	return g
}
