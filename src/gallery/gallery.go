package gallery

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stake-plus/contest-radar/src/logging"
	"github.com/stake-plus/contest-radar/src/normalize"
	"go.uber.org/zap"
)

// ErrLoading is the user visible state of a failed top-level fetch.
const ErrLoading = "error loading data"

// Source loads the display models of one contract.
type Source interface {
	Load(ctx context.Context, contract string) ([]normalize.CryptoApp, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, contract string) ([]normalize.CryptoApp, error)

func (f SourceFunc) Load(ctx context.Context, contract string) ([]normalize.CryptoApp, error) {
	return f(ctx, contract)
}

// Snapshot is the result of one load cycle.
type Snapshot struct {
	Contract   string                `json:"contract"`
	Chain      string                `json:"chain"`
	Apps       []normalize.CryptoApp `json:"apps"`
	Err        string                `json:"err,omitempty"`
	LoadedAt   time.Time             `json:"loadedAt"`
	Generation uint64                `json:"generation"`
}

type Config struct {
	Source   Source
	Chain    string
	Contract string
	Logger   *zap.Logger
	Now      func() time.Time
}

// Gallery holds the latest applied snapshot. Every load is stamped with a
// generation; a load finishing after a newer one started is discarded.
type Gallery struct {
	src    Source
	chain  string
	logger *zap.Logger
	now    func() time.Time

	generation atomic.Uint64

	mu       sync.RWMutex
	contract string
	current  Snapshot
	running  bool
}

func New(cfg Config) *Gallery {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Gallery{
		src:      cfg.Source,
		chain:    cfg.Chain,
		logger:   logging.OrNop(cfg.Logger),
		now:      cfg.Now,
		contract: cfg.Contract,
		current:  Snapshot{Contract: cfg.Contract, Chain: cfg.Chain, Apps: []normalize.CryptoApp{}},
	}
}

// Contract returns the current target contract.
func (g *Gallery) Contract() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.contract
}

// SetContract changes the target used by Refresh and Run.
func (g *Gallery) SetContract(contract string) {
	g.mu.Lock()
	g.contract = contract
	g.mu.Unlock()
}

// Snapshot returns the latest applied snapshot.
func (g *Gallery) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current
}

// Find returns the app with id from the latest snapshot.
func (g *Gallery) Find(id string) (normalize.CryptoApp, bool) {
	return g.Snapshot().Find(id)
}

// Find returns the app with id from this snapshot.
func (s Snapshot) Find(id string) (normalize.CryptoApp, bool) {
	for _, app := range s.Apps {
		if app.ID == id {
			return app, true
		}
	}
	return normalize.CryptoApp{}, false
}

// Reload loads contract and applies the result unless a newer load started
// in the meantime. The bool reports whether the snapshot was applied.
func (g *Gallery) Reload(ctx context.Context, contract string) (Snapshot, bool) {
	return g.load(ctx, contract, g.generation.Add(1))
}

// Refresh reloads the current target contract.
func (g *Gallery) Refresh(ctx context.Context) (Snapshot, bool) {
	return g.Reload(ctx, g.Contract())
}

// Switch retargets the gallery and reloads in the background. It returns the
// generation of the new load.
func (g *Gallery) Switch(ctx context.Context, contract string) uint64 {
	g.SetContract(contract)
	gen := g.generation.Add(1)
	go g.load(ctx, contract, gen)
	return gen
}

func (g *Gallery) load(ctx context.Context, contract string, gen uint64) (Snapshot, bool) {
	log := g.logger.With(zap.String("contract", contract), zap.Uint64("generation", gen))
	start := g.now()

	apps, err := g.src.Load(ctx, contract)
	if apps == nil {
		apps = []normalize.CryptoApp{}
	}
	snap := Snapshot{
		Contract:   contract,
		Chain:      g.chain,
		Apps:       apps,
		LoadedAt:   g.now(),
		Generation: gen,
	}
	if err != nil {
		log.Error("loading gallery failed", zap.Error(err))
		snap.Err = ErrLoading
		snap.Apps = []normalize.CryptoApp{}
	}
	if ctx.Err() != nil {
		return snap, false
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if gen != g.generation.Load() {
		log.Info("discarding stale gallery load", zap.Uint64("latest", g.generation.Load()))
		return snap, false
	}
	g.current = snap
	log.Info("gallery loaded", zap.Int("apps", len(snap.Apps)), zap.Duration("took", snap.LoadedAt.Sub(start)))
	return snap, true
}

// Run refreshes immediately and then every interval until ctx is done.
func (g *Gallery) Run(ctx context.Context, interval time.Duration) {
	g.mu.Lock()
	if g.running {
		g.mu.Unlock()
		return
	}
	g.running = true
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.running = false
		g.mu.Unlock()
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	g.Refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			g.logger.Info("stopping gallery refresh")
			return
		case <-ticker.C:
			g.Refresh(ctx)
		}
	}
}
