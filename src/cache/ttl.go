package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/OneOfOne/xxhash"
)

// DefaultTTL is how long a fetched snapshot stays fresh.
const DefaultTTL = 5 * time.Minute

// Well-known keys.
const (
	ContractDataKey = "contractData"
	MetadataKey     = "metadata"
)

// ProposalKey is the key of one proposal bundle.
func ProposalKey(id *big.Int) string {
	return "proposal_" + id.String()
}

// CommentsKey is the key of a proposal's comment set.
func CommentsKey(proposalID *big.Int) string {
	return "comments_" + proposalID.String()
}

// Namespace derives a short stable key prefix for one chain/contract pair so
// that switching the target contract never serves another contract's data.
func Namespace(chain, address string) string {
	key := strings.ToLower(strings.TrimSpace(chain)) + ":" + strings.ToLower(strings.TrimSpace(address))
	return strconv.FormatUint(xxhash.ChecksumString64(key), 16)
}

// Cache is a JSON-encoding TTL cache over a Store.
type Cache struct {
	store     Store
	ttl       time.Duration
	namespace string
}

// New creates a cache. A non-positive ttl uses DefaultTTL.
func New(store Store, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{store: store, ttl: ttl}
}

// For returns a cache that shares the store but scopes keys to namespace.
func (c *Cache) For(namespace string) *Cache {
	return &Cache{store: c.store, ttl: c.ttl, namespace: namespace}
}

// TTL returns the entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

func (c *Cache) key(k string) string {
	if c.namespace == "" {
		return k
	}
	return c.namespace + ":" + k
}

// Get decodes the entry under key into dst. A miss returns false and no error.
func (c *Cache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, ok, err := c.store.Get(ctx, c.key(key))
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return true, nil
}

// Set encodes v and stores it under key for the cache TTL.
func (c *Cache) Set(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	return c.store.Set(ctx, c.key(key), raw, c.ttl)
}
