package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/supermal/mallpass/internal/telemetry"
)

// Source tags where a CacheEntry value came from.
type Source string

const (
	SourceNetwork  Source = "network"
	SourceFallback Source = "fallback"
)

// CacheEntry is a value with its freshness tag. Entries read from the cache are copies;
// the cached record itself is never mutated.
type CacheEntry[T any] struct {
	Value     T
	FetchedAt time.Time
	Source    Source
}

// IsFallback reports whether the value is a substitute for a failed fetch.
func (e CacheEntry[T]) IsFallback() bool { return e.Source == SourceFallback }

// Request describes one read.
type Request[T any] struct {
	Resource Resource
	// Token is attached to Member backend calls.
	Token AuthToken
	// Scope partitions member data per member (the CIF). Ignored for public resources.
	Scope string
	// Fallback is the seeded value served when neither the network nor the cache can answer.
	Fallback T
}

const (
	persistPrefix = "cache:"
	memberPrefix  = "member:"
)

type cacheRecord struct {
	value     any
	raw       json.RawMessage
	fetchedAt time.Time
	source    Source
}

type persistedRecord struct {
	Value     json.RawMessage `json:"value"`
	FetchedAt time.Time       `json:"fetchedAt"`
	Source    Source          `json:"source"`
}

// Fetcher executes backend reads with a timeout, coalescing, caching and fallback.
type Fetcher struct {
	router   *BackendRouter
	backends map[BackendKind]*httpBackend

	mu     sync.Mutex // serializes cache writes so put can compare-and-set
	cache  *lru.Cache[string, cacheRecord]
	// purges counts PurgeMember calls; a member read started before a purge is not cached.
	purges uint64
	group  singleflight.Group
	bg     sync.WaitGroup

	storage Storage // nil disables persistence
	now     func() time.Time
	logger  *slog.Logger
	metrics *telemetry.FetchMetrics

	// onUnauthorized is told about a 401 on a member read.
	onUnauthorized func(AuthToken)
}

// FetcherOptions configures NewFetcher.
type FetcherOptions struct {
	Router    *BackendRouter
	Public    *httpBackend
	Member    *httpBackend
	CacheSize int
	// Persist is the storage public entries are written through to; nil keeps the cache in memory.
	Persist Storage
	Now     func() time.Time
	Logger  *slog.Logger
	Metrics *telemetry.FetchMetrics
}

// NewFetcher builds a Fetcher.
func NewFetcher(opts FetcherOptions) (*Fetcher, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = 256
	}
	cache, err := lru.New[string, cacheRecord](size)
	if err != nil {
		return nil, fmt.Errorf("create fetch cache: %w", err)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Fetcher{
		router:   opts.Router,
		backends: map[BackendKind]*httpBackend{BackendPublic: opts.Public, BackendMember: opts.Member},
		cache:    cache,
		storage:  opts.Persist,
		now:      now,
		logger:   logger,
		metrics:  opts.Metrics,
	}, nil
}

// Fetch reads req.Resource according to its route's cache policy.
//
// Backend failures never surface as errors: the caller gets the cached value or the
// seeded fallback tagged SourceFallback. The only error is the caller's own context
// ending before the value is available; a shared in-flight call keeps running for the
// other callers.
func Fetch[T any](ctx context.Context, f *Fetcher, req Request[T]) (CacheEntry[T], error) {
	route := f.router.Route(req.Resource)
	key := f.cacheKey(route, req)

	if route.Policy.Mode == CacheFirst {
		if hit, ok := lookup[T](f, key); ok && within(f.now().Sub(hit.FetchedAt), route.Policy.MaxStale) {
			if f.now().Sub(hit.FetchedAt) >= route.Policy.RefreshAfter {
				f.refreshInBackground(key, route, req, decodeAs[T])
			}
			f.metrics.RecordRead(ctx, req.Resource.Key, string(route.Backend), string(hit.Source))
			return hit, nil
		}
	}

	ch := f.group.DoChan(key, f.call(context.WithoutCancel(ctx), key, route, req, decodeAs[T]))

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return CacheEntry[T]{}, ctx.Err()
	}
	if res.Shared {
		f.metrics.RecordCoalesced(ctx, req.Resource.Key)
	}

	if res.Err == nil {
		rec := res.Val.(cacheRecord)
		if v, err := valueAs[T](rec); err == nil {
			f.metrics.RecordRead(ctx, req.Resource.Key, string(route.Backend), string(SourceNetwork))
			return CacheEntry[T]{Value: v, FetchedAt: rec.fetchedAt, Source: SourceNetwork}, nil
		}
	}

	entry := fallbackFor(f, key, route, req)
	f.metrics.RecordRead(ctx, req.Resource.Key, string(route.Backend), string(SourceFallback))
	return entry, nil
}

// fallbackFor picks the cached value (within the policy window) or the seed.
func fallbackFor[T any](f *Fetcher, key string, route Route, req Request[T]) CacheEntry[T] {
	window := route.Policy.FallbackWindow
	if route.Policy.Mode == CacheFirst {
		// Any cached copy beats the seed for guest browsing.
		window = 0
	}
	if hit, ok := lookup[T](f, key); ok && within(f.now().Sub(hit.FetchedAt), window) {
		hit.Source = SourceFallback
		return hit
	}
	return CacheEntry[T]{Value: req.Fallback, FetchedAt: f.now(), Source: SourceFallback}
}

// call returns the shared network call for key. ctx must already be detached from the
// initiating caller so that one caller leaving does not cancel the others.
func (f *Fetcher) call(ctx context.Context, key string, route Route, req requestInfo, decode func(json.RawMessage) (any, error)) func() (any, error) {
	return func() (any, error) {
		backend := f.backends[route.Backend]
		if backend == nil {
			return nil, fmt.Errorf("%w: no %s backend configured", ErrDataUnavailable, route.Backend)
		}

		callCtx, cancel := ensureTimeout(ctx, route.Policy.Timeout)
		defer cancel()

		token := req.token()
		f.mu.Lock()
		epoch := f.purges
		f.mu.Unlock()

		started := f.now()
		raw, err := backend.Get(callCtx, req.resource().Path, token)
		if err == nil {
			var value any
			if value, err = decode(raw); err == nil {
				rec := cacheRecord{value: value, raw: raw, fetchedAt: f.now(), source: SourceNetwork}
				if route.Backend == BackendPublic {
					f.put(key, rec, true)
				} else if !f.putSince(key, rec, epoch) {
					f.logger.Debug("member read not cached", slog.String("key", key))
				}
				f.metrics.RecordCall(ctx, req.resource().Key, string(route.Backend), msSince(f.now(), started), nil)
				return rec, nil
			}
		}

		f.metrics.RecordCall(ctx, req.resource().Key, string(route.Backend), msSince(f.now(), started), err)
		f.logger.Warn("backend read failed, serving fallback",
			slog.String("resource", req.resource().Key),
			slog.String("backend", string(route.Backend)),
			slog.Any("error", err))

		if token != "" && isUnauthorized(err) && f.onUnauthorized != nil {
			f.onUnauthorized(token)
		}
		return nil, err
	}
}

func (f *Fetcher) refreshInBackground(key string, route Route, req requestInfo, decode func(json.RawMessage) (any, error)) {
	f.bg.Add(1)
	go func() {
		defer f.bg.Done()
		// Joins an in-flight call for key if there is one.
		<-f.group.DoChan(key, f.call(context.Background(), key, route, req, decode))
	}()
}

// Wait blocks until background refreshes started so far have finished.
func (f *Fetcher) Wait() {
	f.bg.Wait()
}

// put stores rec unless it would replace a newer network entry, or replace any network
// entry with a fallback.
func (f *Fetcher) put(key string, rec cacheRecord, persist bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.putLocked(key, rec, persist)
}

// putSince stores a member entry only if no purge happened since epoch was read.
func (f *Fetcher) putSince(key string, rec cacheRecord, epoch uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.purges != epoch {
		return false
	}
	return f.putLocked(key, rec, false)
}

func (f *Fetcher) putLocked(key string, rec cacheRecord, persist bool) bool {
	if existing, ok := f.cache.Peek(key); ok && existing.source == SourceNetwork {
		if rec.source == SourceFallback || existing.fetchedAt.After(rec.fetchedAt) {
			return false
		}
	}
	f.cache.Add(key, rec)

	if persist && f.storage != nil && rec.source == SourceNetwork {
		blob, err := json.Marshal(persistedRecord{Value: rec.raw, FetchedAt: rec.fetchedAt, Source: rec.source})
		if err == nil {
			err = f.storage.Set(persistPrefix+key, string(blob))
		}
		if err != nil {
			f.logger.Warn("persist cache entry", slog.String("key", key), slog.Any("error", err))
		}
	}
	return true
}

// PurgeMember drops every member-scoped entry. Called when the member signs out.
func (f *Fetcher) PurgeMember() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purges++
	for _, key := range f.cache.Keys() {
		if strings.HasPrefix(key, memberPrefix) {
			f.cache.Remove(key)
		}
	}
}

func (f *Fetcher) cacheKey(route Route, req requestInfo) string {
	if route.Backend == BackendMember {
		return memberPrefix + req.scope() + ":" + req.resource().Key
	}
	return req.resource().Key
}

// lookup reads key from memory, then from persisted storage.
func lookup[T any](f *Fetcher, key string) (CacheEntry[T], bool) {
	rec, ok := f.cache.Get(key)
	if !ok {
		if rec, ok = f.restore(key); !ok {
			return CacheEntry[T]{}, false
		}
	}
	v, err := valueAs[T](rec)
	if err != nil {
		return CacheEntry[T]{}, false
	}
	return CacheEntry[T]{Value: v, FetchedAt: rec.fetchedAt, Source: rec.source}, true
}

func (f *Fetcher) restore(key string) (cacheRecord, bool) {
	if f.storage == nil || strings.HasPrefix(key, memberPrefix) {
		return cacheRecord{}, false
	}
	blob, ok := f.storage.Get(persistPrefix + key)
	if !ok {
		return cacheRecord{}, false
	}
	var p persistedRecord
	if err := json.Unmarshal([]byte(blob), &p); err != nil || len(p.Value) == 0 {
		return cacheRecord{}, false
	}
	rec := cacheRecord{raw: p.Value, fetchedAt: p.FetchedAt, source: p.Source}
	if !f.put(key, rec, false) {
		return cacheRecord{}, false
	}
	return rec, true
}

// valueAs returns the decoded value, decoding the raw payload when the record was
// restored from storage or decoded for another type.
func valueAs[T any](rec cacheRecord) (T, error) {
	if v, ok := rec.value.(T); ok {
		return v, nil
	}
	var v T
	if err := json.Unmarshal(rec.raw, &v); err != nil {
		return v, err
	}
	return v, nil
}

type validator interface {
	Validate() error
}

// decodeAs decodes and validates a payload as T.
func decodeAs[T any](raw json.RawMessage) (any, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: decode payload: %v", ErrDataUnavailable, err)
	}
	if val, ok := any(v).(validator); ok {
		if err := val.Validate(); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// requestInfo is the untyped view of a Request used by the shared call.
type requestInfo interface {
	resource() Resource
	token() AuthToken
	scope() string
}

func (r Request[T]) resource() Resource { return r.Resource }
func (r Request[T]) token() AuthToken   { return r.Token }
func (r Request[T]) scope() string      { return r.Scope }

func within(age, limit time.Duration) bool {
	return limit <= 0 || age <= limit
}

func msSince(now, started time.Time) float64 {
	return float64(now.Sub(started)) / float64(time.Millisecond)
}
