package fetcher

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stake-plus/contest-radar/src/cache"
	"github.com/stake-plus/contest-radar/src/contest"
	"github.com/stake-plus/contest-radar/src/webclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	mu       sync.Mutex
	ids      []*big.Int
	idsErr   error
	comments map[int64][]*big.Int
	delay    func(id int64) time.Duration

	failProposal map[int64]error
	failComment  map[int64]error
	failList     map[int64]error

	calls       map[string]int
	inFlight    int32
	maxInFlight int32
}

func newFakeReader(n int) *fakeReader {
	r := &fakeReader{
		comments:     map[int64][]*big.Int{},
		failProposal: map[int64]error{},
		failComment:  map[int64]error{},
		failList:     map[int64]error{},
		calls:        map[string]int{},
	}
	for i := 1; i <= n; i++ {
		r.ids = append(r.ids, big.NewInt(int64(i)))
	}
	return r
}

func (r *fakeReader) count(name string) {
	r.mu.Lock()
	r.calls[name]++
	r.mu.Unlock()
}

func (r *fakeReader) callCount(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[name]
}

func (r *fakeReader) ProposalIDs(context.Context) ([]*big.Int, error) {
	r.count("ids")
	if r.idsErr != nil {
		return nil, r.idsErr
	}
	return r.ids, nil
}

func (r *fakeReader) Proposal(ctx context.Context, id *big.Int) (contest.RawProposal, error) {
	r.count("proposal")
	cur := atomic.AddInt32(&r.inFlight, 1)
	defer atomic.AddInt32(&r.inFlight, -1)
	for {
		prev := atomic.LoadInt32(&r.maxInFlight)
		if cur <= prev || atomic.CompareAndSwapInt32(&r.maxInFlight, prev, cur) {
			break
		}
	}
	if r.delay != nil {
		time.Sleep(r.delay(id.Int64()))
	}
	if err := r.failProposal[id.Int64()]; err != nil {
		return contest.RawProposal{}, err
	}
	return contest.RawProposal{
		ID:          id,
		Author:      common.HexToAddress("0x01"),
		Exists:      true,
		Description: fmt.Sprintf("<h1>Proposal %d</h1>", id.Int64()),
	}, nil
}

func (r *fakeReader) Votes(_ context.Context, id *big.Int) (contest.VoteTally, error) {
	r.count("votes")
	return contest.VoteTally{For: new(big.Int).Mul(id, big.NewInt(1e18)), Against: big.NewInt(0)}, nil
}

func (r *fakeReader) CommentIDs(_ context.Context, proposalID *big.Int) ([]*big.Int, error) {
	r.count("commentIDs")
	if err := r.failList[proposalID.Int64()]; err != nil {
		return nil, err
	}
	return r.comments[proposalID.Int64()], nil
}

func (r *fakeReader) Comment(_ context.Context, id, parent *big.Int) (contest.RawComment, error) {
	r.count("comment")
	if err := r.failComment[id.Int64()]; err != nil {
		return contest.RawComment{}, err
	}
	return contest.RawComment{ID: id, ProposalID: parent, Content: "nice", Timestamp: 1700000000}, nil
}

func (r *fakeReader) String(_ context.Context, method string) (string, error) {
	r.count(method)
	return method + " value", nil
}

func (r *fakeReader) Uint(_ context.Context, method string) (*big.Int, error) {
	r.count(method)
	return big.NewInt(42), nil
}

func (r *fakeReader) State(context.Context) (contest.State, error) {
	r.count(contest.MethodState)
	return contest.StateActive, nil
}

func noSleep(context.Context, time.Duration) error { return nil }

func newFetcher(t *testing.T, r Reader, c *cache.Cache) *Fetcher {
	t.Helper()
	p := webclient.DefaultPolicy()
	p.Sleep = noSleep
	f, err := New(Config{Reader: r, Cache: c, Retry: p, Concurrency: 5})
	require.NoError(t, err)
	return f
}

func ids(bundles []Bundle) []int64 {
	out := make([]int64, 0, len(bundles))
	for _, b := range bundles {
		out = append(out, b.Proposal.ID.Int64())
	}
	return out
}

func TestNew_RequiresReader(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestFetchAll_BoundsConcurrency(t *testing.T) {
	r := newFakeReader(20)
	r.delay = func(int64) time.Duration { return 5 * time.Millisecond }
	f := newFetcher(t, r, nil)

	bundles, err := f.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, bundles, 20)
	assert.LessOrEqual(t, atomic.LoadInt32(&r.maxInFlight), int32(5))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&r.maxInFlight), int32(2))
}

func TestFetchAll_KeepsIdentifierOrder(t *testing.T) {
	r := newFakeReader(6)
	r.delay = func(id int64) time.Duration { return time.Duration(7-id) * time.Millisecond }
	f := newFetcher(t, r, nil)

	bundles, err := f.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, ids(bundles))
	assert.Equal(t, "6000000000000000000", bundles[5].Votes.For.String())
}

func TestFetchAll_DropsFailedProposals(t *testing.T) {
	r := newFakeReader(4)
	r.failProposal[2] = errors.New("execution reverted")
	f := newFetcher(t, r, nil)

	bundles, err := f.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 4}, ids(bundles))
	// one attempt plus five retries for the failing proposal
	assert.Equal(t, 4-1+6, r.callCount("proposal"))
}

func TestFetchAll_MalformedIsNotRetried(t *testing.T) {
	r := newFakeReader(2)
	r.failProposal[1] = fmt.Errorf("%w: bad tuple", contest.ErrMalformed)
	f := newFetcher(t, r, nil)

	bundles, err := f.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(bundles))
	assert.Equal(t, 2, r.callCount("proposal"))
}

func TestFetchAll_IdentifierFailure(t *testing.T) {
	r := newFakeReader(3)
	r.idsErr = errors.New("429 too many requests")
	f := newFetcher(t, r, nil)

	bundles, err := f.FetchAll(context.Background())
	require.ErrorIs(t, err, ErrIdentifiers)
	assert.NotNil(t, bundles)
	assert.Empty(t, bundles)
	assert.Equal(t, 6, r.callCount("ids"))
}

func TestFetchAll_DeduplicatesIdentifiers(t *testing.T) {
	r := newFakeReader(0)
	r.ids = []*big.Int{big.NewInt(3), nil, big.NewInt(1), big.NewInt(3)}
	f := newFetcher(t, r, nil)

	bundles, err := f.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, ids(bundles))
}

func TestFetchAll_Comments(t *testing.T) {
	r := newFakeReader(2)
	r.comments[1] = []*big.Int{big.NewInt(10), big.NewInt(11), big.NewInt(12)}
	r.failComment[11] = errors.New("reverted")
	r.failList[2] = errors.New("timeout")
	store := cache.NewMemoryStore(nil)
	f := newFetcher(t, r, cache.New(store, time.Minute))

	bundles, err := f.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, bundles, 2)

	require.Len(t, bundles[0].Comments, 2)
	assert.Equal(t, int64(10), bundles[0].Comments[0].ID.Int64())
	assert.Equal(t, int64(12), bundles[0].Comments[1].ID.Int64())
	assert.Equal(t, int64(1), bundles[0].Comments[0].ProposalID.Int64())
	assert.NotNil(t, bundles[1].Comments)
	assert.Empty(t, bundles[1].Comments)

	// incomplete comment sets are not cached
	_, ok, _ := store.Get(context.Background(), cache.CommentsKey(big.NewInt(1)))
	assert.False(t, ok)
	_, ok, _ = store.Get(context.Background(), cache.CommentsKey(big.NewInt(2)))
	assert.False(t, ok)
	_, ok, _ = store.Get(context.Background(), cache.ContractDataKey)
	assert.False(t, ok)
}

func TestFetchAll_CacheHitSkipsReader(t *testing.T) {
	now := time.Unix(1700000000, 0)
	store := cache.NewMemoryStore(func() time.Time { return now })
	c := cache.New(store, 300*time.Second)
	r := newFakeReader(3)
	r.comments[1] = []*big.Int{big.NewInt(7)}
	f := newFetcher(t, r, c)

	first, err := f.FetchAll(context.Background())
	require.NoError(t, err)
	proposals := r.callCount("proposal")

	now = now.Add(299 * time.Second)
	second, err := f.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, proposals, r.callCount("proposal"))
	assert.Equal(t, 1, r.callCount("ids"))
	assert.Equal(t, ids(first), ids(second))
	assert.Equal(t, first[0].Comments[0].Content, second[0].Comments[0].Content)

	now = now.Add(2 * time.Second)
	_, err = f.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, r.callCount("ids"))
	assert.Equal(t, 2*proposals, r.callCount("proposal"))
}

func TestFetchAll_ProposalCacheServesPartialRefresh(t *testing.T) {
	store := cache.NewMemoryStore(nil)
	c := cache.New(store, time.Minute)
	r := newFakeReader(2)
	f := newFetcher(t, r, c)

	_, err := f.FetchAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, r.callCount("proposal"))

	// a new proposal appears; only it is fetched
	r.ids = append(r.ids, big.NewInt(3))
	require.NoError(t, store.Set(context.Background(), cache.ContractDataKey, nil, time.Nanosecond))
	time.Sleep(time.Millisecond)

	bundles, err := f.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids(bundles))
	assert.Equal(t, 3, r.callCount("proposal"))
}

func TestFetchAll_CancelledContext(t *testing.T) {
	r := newFakeReader(3)
	f := newFetcher(t, r, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bundles, err := f.FetchAll(ctx)
	require.Error(t, err)
	assert.Empty(t, bundles)
}

func TestFetchMetadata(t *testing.T) {
	r := newFakeReader(0)
	c := cache.New(cache.NewMemoryStore(nil), time.Minute)
	f := newFetcher(t, r, c)

	md, err := f.FetchMetadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "name value", md.Name)
	assert.Equal(t, "prompt value", md.Prompt)
	assert.Equal(t, int64(42), md.ContestDeadline.Int64())
	assert.Equal(t, contest.StateActive, md.State)

	_, err = f.FetchMetadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, r.callCount(contest.MethodName))
}
