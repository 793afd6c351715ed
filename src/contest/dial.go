package contest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// Dial connects to an EVM JSON-RPC endpoint over the given HTTP client and
// checks that it serves the expected chain. A mismatch is logged, not fatal.
func Dial(ctx context.Context, rpcURL string, httpClient *http.Client, chain Chain, logger *zap.Logger) (*ethclient.Client, error) {
	opts := []rpc.ClientOption{}
	if httpClient != nil {
		opts = append(opts, rpc.WithHTTPClient(httpClient))
	}
	rc, err := rpc.DialOptions(ctx, rpcURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rpcURL, err)
	}
	client := ethclient.NewClient(rc)

	if logger != nil && chain.ID != 0 {
		id, err := client.ChainID(ctx)
		switch {
		case err != nil:
			logger.Warn("chain id check failed", zap.String("rpc", rpcURL), zap.Error(err))
		case id.Int64() != chain.ID:
			logger.Warn("rpc serves a different chain",
				zap.String("rpc", rpcURL),
				zap.String("chain", chain.Name),
				zap.Int64("expected", chain.ID),
				zap.String("got", id.String()))
		default:
			logger.Info("connected to rpc", zap.String("chain", chain.Name), zap.Int64("chain_id", chain.ID))
		}
	}
	return client, nil
}
