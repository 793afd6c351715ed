package gallery

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stake-plus/contest-radar/src/cache"
	"github.com/stake-plus/contest-radar/src/contest"
	"github.com/stake-plus/contest-radar/src/fetcher"
	"github.com/stake-plus/contest-radar/src/normalize"
	"github.com/stake-plus/contest-radar/src/webclient"
	"go.uber.org/zap"
)

// Pipeline runs fetch and normalization for any contract on one chain.
// Each contract gets its own cache namespace.
type Pipeline struct {
	Caller             ethereum.ContractCaller
	Chain              contest.Chain
	Cache              *cache.Cache
	Retry              webclient.Policy
	Concurrency        int
	CommentConcurrency int
	Logger             *zap.Logger
}

// Load implements Source.
func (p *Pipeline) Load(ctx context.Context, contract string) ([]normalize.CryptoApp, error) {
	f, err := p.fetcher(contract)
	if err != nil {
		return []normalize.CryptoApp{}, err
	}
	bundles, err := f.FetchAll(ctx)
	return normalize.Apps(bundles), err
}

// Metadata reads the scalar contest fields of contract.
func (p *Pipeline) Metadata(ctx context.Context, contract string) (contest.Metadata, error) {
	f, err := p.fetcher(contract)
	if err != nil {
		return contest.Metadata{}, err
	}
	return f.FetchMetadata(ctx)
}

func (p *Pipeline) fetcher(contract string) (*fetcher.Fetcher, error) {
	if !common.IsHexAddress(contract) {
		return nil, fmt.Errorf("invalid contract address %q", contract)
	}
	var c *cache.Cache
	if p.Cache != nil {
		c = p.Cache.For(cache.Namespace(p.Chain.Name, contract))
	}
	return fetcher.New(fetcher.Config{
		Reader:             contest.NewReader(p.Caller, common.HexToAddress(contract)),
		Cache:              c,
		Retry:              p.Retry,
		Concurrency:        p.Concurrency,
		CommentConcurrency: p.CommentConcurrency,
		Contract:           contract,
		Logger:             p.Logger,
	})
}
