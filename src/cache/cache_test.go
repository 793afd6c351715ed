package cache

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type snapshot struct {
	Name  string   `json:"name"`
	Likes *big.Int `json:"likes"`
}

func TestCache_TTLBoundary(t *testing.T) {
	clk := &clock{now: time.Unix(1700000000, 0)}
	c := New(NewMemoryStore(clk.Now), 0)
	require.Equal(t, DefaultTTL, c.TTL())
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, ContractDataKey, snapshot{Name: "a", Likes: big.NewInt(5)}))

	clk.Advance(299 * time.Second)
	var got snapshot
	ok, err := c.Get(ctx, ContractDataKey, &got)
	require.NoError(t, err)
	require.True(t, ok, "entry younger than the ttl is served")
	assert.Equal(t, "a", got.Name)
	assert.Equal(t, "5", got.Likes.String())

	clk.Advance(2 * time.Second)
	ok, err = c.Get(ctx, ContractDataKey, &got)
	require.NoError(t, err)
	assert.False(t, ok, "entry older than the ttl is a miss")
}

func TestCache_MissIsNotAnError(t *testing.T) {
	c := New(NewMemoryStore(nil), time.Minute)
	var v snapshot
	ok, err := c.Get(context.Background(), "nothing", &v)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_NamespacesAreIsolated(t *testing.T) {
	store := NewMemoryStore(nil)
	root := New(store, time.Minute)
	a := root.For(Namespace("base", "0xAAA"))
	b := root.For(Namespace("base", "0xBBB"))
	ctx := context.Background()

	require.NoError(t, a.Set(ctx, ProposalKey(big.NewInt(1)), snapshot{Name: "from a"}))

	var v snapshot
	ok, err := b.Get(ctx, ProposalKey(big.NewInt(1)), &v)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = a.Get(ctx, ProposalKey(big.NewInt(1)), &v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "from a", v.Name)
}

func TestNamespace(t *testing.T) {
	assert.Equal(t, Namespace("base", "0xAbC"), Namespace(" BASE ", "0xabc"))
	assert.NotEqual(t, Namespace("base", "0xabc"), Namespace("mainnet", "0xabc"))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "proposal_12", ProposalKey(big.NewInt(12)))
	assert.Equal(t, "comments_12", CommentsKey(big.NewInt(12)))
}

func TestMemoryStore_PurgeAndLen(t *testing.T) {
	clk := &clock{now: time.Unix(0, 0)}
	s := NewMemoryStore(clk.Now)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "short", []byte("1"), time.Second))
	require.NoError(t, s.Set(ctx, "long", []byte("2"), time.Hour))
	require.NoError(t, s.Set(ctx, "forever", []byte("3"), 0))

	clk.Advance(time.Minute)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 1, s.Purge())
	assert.Equal(t, 2, s.Len())

	v, ok, err := s.Get(ctx, "forever")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("3"), v)
}

func TestMemoryStore_PurgeEveryReclaimsUnreadKeys(t *testing.T) {
	clk := &clock{now: time.Unix(0, 0)}
	s := NewMemoryStore(clk.Now)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Set(ctx, "old-contract", []byte("1"), time.Second))
	require.NoError(t, s.Set(ctx, "kept", []byte("2"), time.Hour))
	clk.Advance(2 * time.Second)

	done := make(chan struct{})
	go func() {
		s.PurgeEvery(ctx, 5*time.Millisecond)
		close(done)
	}()
	assert.Eventually(t, func() bool { return s.Len() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PurgeEvery did not stop on cancel")
	}
}

func TestMemoryStore_LastWriterWins(t *testing.T) {
	s := NewMemoryStore(nil)
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Set(ctx, "k", []byte("same"), time.Minute)
			_, _, _ = s.Get(ctx, "k")
		}()
	}
	wg.Wait()
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "same", string(v))
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	c := New(NewRedisStore(rdb, "radar:"), 300*time.Second)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, CommentsKey(big.NewInt(4)), []string{"hi"}))
	assert.True(t, mr.Exists("radar:comments_4"))

	var got []string
	ok, err := c.Get(ctx, CommentsKey(big.NewInt(4)), &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"hi"}, got)

	mr.FastForward(301 * time.Second)
	ok, err = c.Get(ctx, CommentsKey(big.NewInt(4)), &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_ErrorsSurface(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	s := NewRedisStore(rdb, "")
	_, _, err := s.Get(context.Background(), "k")
	assert.Error(t, err)
}
