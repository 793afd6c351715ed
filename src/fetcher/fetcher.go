package fetcher

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/stake-plus/contest-radar/src/cache"
	"github.com/stake-plus/contest-radar/src/contest"
	"github.com/stake-plus/contest-radar/src/logging"
	"github.com/stake-plus/contest-radar/src/webclient"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultConcurrency        = 5
	DefaultCommentConcurrency = 5
)

// ErrIdentifiers marks a failure of the top-level identifier read.
var ErrIdentifiers = errors.New("fetch proposal identifiers")

// Reader is the contract surface the pipeline consumes.
type Reader interface {
	ProposalIDs(ctx context.Context) ([]*big.Int, error)
	Proposal(ctx context.Context, id *big.Int) (contest.RawProposal, error)
	Votes(ctx context.Context, id *big.Int) (contest.VoteTally, error)
	CommentIDs(ctx context.Context, proposalID *big.Int) ([]*big.Int, error)
	Comment(ctx context.Context, id, parent *big.Int) (contest.RawComment, error)
	String(ctx context.Context, method string) (string, error)
	Uint(ctx context.Context, method string) (*big.Int, error)
	State(ctx context.Context) (contest.State, error)
}

// Bundle is everything fetched for one proposal.
type Bundle struct {
	Proposal contest.RawProposal  `json:"proposal"`
	Votes    contest.VoteTally    `json:"votes"`
	Comments []contest.RawComment `json:"comments"`
}

// Config configures a Fetcher.
type Config struct {
	Reader Reader
	// Cache may be nil, which disables caching.
	Cache              *cache.Cache
	Retry              webclient.Policy
	Concurrency        int
	CommentConcurrency int
	// Contract is only used to label log lines.
	Contract string
	Logger   *zap.Logger
}

// Fetcher retrieves every proposal of one contract with bounded concurrency,
// per-call retries and a TTL cache.
type Fetcher struct {
	reader      Reader
	cache       *cache.Cache
	retry       webclient.Policy
	concurrency int
	comments    *semaphore.Weighted
	logger      *zap.Logger
}

// New validates cfg and builds a Fetcher.
func New(cfg Config) (*Fetcher, error) {
	if cfg.Reader == nil {
		return nil, fmt.Errorf("fetcher: reader is required")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.CommentConcurrency <= 0 {
		cfg.CommentConcurrency = DefaultCommentConcurrency
	}
	logger := logging.OrNop(cfg.Logger)
	if cfg.Contract != "" {
		logger = logger.With(zap.String("contract", cfg.Contract))
	}
	f := &Fetcher{
		reader:      cfg.Reader,
		cache:       cfg.Cache,
		retry:       cfg.Retry,
		concurrency: cfg.Concurrency,
		comments:    semaphore.NewWeighted(int64(cfg.CommentConcurrency)),
		logger:      logger,
	}
	f.retry.Retryable = func(err error) bool { return !contest.IsMalformed(err) }
	return f, nil
}

// FetchAll returns one bundle per proposal that could be fetched, in
// identifier order. Proposals that fail after retries are dropped and
// logged. When the identifier list itself cannot be read the result is
// empty and the error wraps ErrIdentifiers.
func (f *Fetcher) FetchAll(ctx context.Context) ([]Bundle, error) {
	var cached []Bundle
	if f.cacheGet(ctx, cache.ContractDataKey, &cached) {
		return cached, nil
	}

	ids, err := retryCall(ctx, f, "proposal ids", f.reader.ProposalIDs)
	if err != nil {
		f.logger.Error("fetching proposal ids failed", zap.Error(err))
		return []Bundle{}, fmt.Errorf("%w: %w", ErrIdentifiers, err)
	}
	ids = uniqueIDs(ids)

	results := make([]*Bundle, len(ids))
	complete := make([]bool, len(ids))
	g := new(errgroup.Group)
	g.SetLimit(f.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			b, full, err := f.fetchProposal(ctx, id)
			if err != nil {
				f.logger.Error("dropping proposal", zap.String("proposal_id", id.String()), zap.Error(err))
				return nil
			}
			results[i] = &b
			complete[i] = full
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Bundle, 0, len(ids))
	whole := true
	for i, b := range results {
		if b == nil {
			whole = false
			continue
		}
		whole = whole && complete[i]
		out = append(out, *b)
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}
	if whole {
		f.cacheSet(ctx, cache.ContractDataKey, out)
	}
	f.logger.Info("fetched proposals", zap.Int("ids", len(ids)), zap.Int("proposals", len(out)))
	return out, nil
}

// fetchProposal reads body, tally and comments of one proposal concurrently.
// full is false when some comments could not be read; such bundles are
// returned but not cached.
func (f *Fetcher) fetchProposal(ctx context.Context, id *big.Int) (Bundle, bool, error) {
	key := cache.ProposalKey(id)
	var b Bundle
	if f.cacheGet(ctx, key, &b) {
		return b, true, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := retryCall(gctx, f, "proposal", func(ctx context.Context) (contest.RawProposal, error) {
			return f.reader.Proposal(ctx, id)
		})
		b.Proposal = p
		return err
	})
	g.Go(func() error {
		v, err := retryCall(gctx, f, "votes", func(ctx context.Context) (contest.VoteTally, error) {
			return f.reader.Votes(ctx, id)
		})
		b.Votes = v
		return err
	})
	var full bool
	g.Go(func() error {
		b.Comments, full = f.fetchComments(gctx, id)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Bundle{}, false, err
	}
	if full {
		f.cacheSet(ctx, key, b)
	}
	return b, full, nil
}

// fetchComments reads the comment ids of a proposal, then every comment.
// Failed comments are dropped; the second result reports whether none were.
func (f *Fetcher) fetchComments(ctx context.Context, proposalID *big.Int) ([]contest.RawComment, bool) {
	key := cache.CommentsKey(proposalID)
	var cached []contest.RawComment
	if f.cacheGet(ctx, key, &cached) {
		return cached, true
	}

	ids, err := retryCall(ctx, f, "comment ids", func(ctx context.Context) ([]*big.Int, error) {
		return f.reader.CommentIDs(ctx, proposalID)
	})
	if err != nil {
		f.logger.Warn("fetching comment ids failed", zap.String("proposal_id", proposalID.String()), zap.Error(err))
		return []contest.RawComment{}, false
	}
	ids = uniqueIDs(ids)

	results := make([]*contest.RawComment, len(ids))
	var wg sync.WaitGroup
	acquired := 0
	for i, id := range ids {
		if err := f.comments.Acquire(ctx, 1); err != nil {
			break
		}
		acquired++
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer f.comments.Release(1)
			c, err := retryCall(ctx, f, "comment", func(ctx context.Context) (contest.RawComment, error) {
				return f.reader.Comment(ctx, id, proposalID)
			})
			if err != nil {
				f.logger.Warn("dropping comment",
					zap.String("proposal_id", proposalID.String()),
					zap.String("comment_id", id.String()),
					zap.Error(err))
				return
			}
			results[i] = &c
		}()
	}
	wg.Wait()

	out := make([]contest.RawComment, 0, len(ids))
	for _, c := range results {
		if c != nil {
			out = append(out, *c)
		}
	}
	full := acquired == len(ids) && len(out) == len(ids)
	if full {
		f.cacheSet(ctx, key, out)
	}
	return out, full
}

// FetchMetadata reads the scalar contest fields.
func (f *Fetcher) FetchMetadata(ctx context.Context) (contest.Metadata, error) {
	var md contest.Metadata
	if f.cacheGet(ctx, cache.MetadataKey, &md) {
		return md, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	text := func(method string, dst *string) {
		g.Go(func() error {
			v, err := retryCall(gctx, f, method, func(ctx context.Context) (string, error) {
				return f.reader.String(ctx, method)
			})
			*dst = v
			return err
		})
	}
	number := func(method string, dst **big.Int) {
		g.Go(func() error {
			v, err := retryCall(gctx, f, method, func(ctx context.Context) (*big.Int, error) {
				return f.reader.Uint(ctx, method)
			})
			*dst = v
			return err
		})
	}
	text(contest.MethodName, &md.Name)
	text(contest.MethodPrompt, &md.Prompt)
	number(contest.MethodCostToPropose, &md.CostToPropose)
	number(contest.MethodCostToVote, &md.CostToVote)
	number(contest.MethodVotingPeriod, &md.VotingPeriod)
	number(contest.MethodContestStart, &md.ContestStart)
	number(contest.MethodContestDeadline, &md.ContestDeadline)
	number(contest.MethodTotalVotesCast, &md.TotalVotesCast)
	g.Go(func() error {
		v, err := retryCall(gctx, f, contest.MethodState, f.reader.State)
		md.State = v
		return err
	})
	if err := g.Wait(); err != nil {
		return contest.Metadata{}, fmt.Errorf("fetch contest metadata: %w", err)
	}
	f.cacheSet(ctx, cache.MetadataKey, md)
	return md, nil
}

func retryCall[T any](ctx context.Context, f *Fetcher, what string, fn func(context.Context) (T, error)) (T, error) {
	p := f.retry
	p.OnRetry = func(attempt int, delay time.Duration, err error) {
		f.logger.Warn("retrying contract read",
			zap.String("call", what),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Bool("rate_limited", logging.IsRateLimit(err)),
			zap.Error(err))
	}
	return webclient.Retry(ctx, p, fn)
}

func (f *Fetcher) cacheGet(ctx context.Context, key string, dst interface{}) bool {
	if f.cache == nil {
		return false
	}
	ok, err := f.cache.Get(ctx, key, dst)
	if err != nil {
		f.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return ok
}

func (f *Fetcher) cacheSet(ctx context.Context, key string, v interface{}) {
	if f.cache == nil {
		return
	}
	if err := f.cache.Set(ctx, key, v); err != nil {
		f.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// uniqueIDs drops nil and repeated identifiers, keeping first occurrences.
func uniqueIDs(ids []*big.Int) []*big.Int {
	seen := make(map[string]struct{}, len(ids))
	out := make([]*big.Int, 0, len(ids))
	for _, id := range ids {
		if id == nil {
			continue
		}
		k := id.String()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, id)
	}
	return out
}
