package sdk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func writeEnvelope(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": v})
}

func newTestFetcher(t *testing.T, handler http.HandlerFunc, clock *fakeClock, persist Storage) *Fetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	f, err := NewFetcher(FetcherOptions{
		Router:  NewBackendRouter(DefaultPublicPolicy(), DefaultMemberPolicy()),
		Public:  newHTTPBackend(BackendPublic, srv.URL, srv.Client(), 0),
		Member:  newHTTPBackend(BackendMember, srv.URL, srv.Client(), 0),
		Persist: persist,
		Now:     clock.Now,
	})
	require.NoError(t, err)
	return f
}

func storesReq() Request[[]Store] {
	return Request[[]Store]{Resource: ResourceStores, Fallback: SeedStores()}
}

func balanceReq(cif string) Request[PointsBalance] {
	return Request[PointsBalance]{
		Resource: ResourcePointsBalance,
		Token:    "tok-" + AuthToken(cif),
		Scope:    cif,
		Fallback: SeedPointsBalance(),
	}
}

func TestFetchNetworkSuccess(t *testing.T) {
	clock := newFakeClock()
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stores", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		writeEnvelope(w, []Store{{ID: "s1", Name: "Alpha"}})
	}, clock, nil)

	entry, err := Fetch(context.Background(), f, storesReq())
	require.NoError(t, err)
	assert.Equal(t, SourceNetwork, entry.Source)
	assert.False(t, entry.IsFallback())
	assert.Equal(t, clock.Now(), entry.FetchedAt)
	require.Len(t, entry.Value, 1)
	assert.Equal(t, "Alpha", entry.Value[0].Name)
}

func TestFetchPublicFailureServesSeed(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, newFakeClock(), nil)

	entry, err := Fetch(context.Background(), f, storesReq())
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, entry.Source)
	assert.Equal(t, SeedStores(), entry.Value)
}

func TestFetchMissingDataFallsBack(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":null}`))
	}, newFakeClock(), nil)

	entry, err := Fetch(context.Background(), f, storesReq())
	require.NoError(t, err)
	assert.True(t, entry.IsFallback())
}

func TestFetchCacheFirstServesCachedWithoutNetwork(t *testing.T) {
	var hits atomic.Int32
	f := newTestFetcher(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		writeEnvelope(w, []Store{{ID: "s1"}})
	}, newFakeClock(), nil)

	first, err := Fetch(context.Background(), f, storesReq())
	require.NoError(t, err)
	second, err := Fetch(context.Background(), f, storesReq())
	require.NoError(t, err)
	f.Wait()

	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, first, second)
}

func TestFetchCacheFirstRefreshesInBackground(t *testing.T) {
	clock := newFakeClock()
	var hits atomic.Int32
	f := newTestFetcher(t, func(w http.ResponseWriter, _ *http.Request) {
		n := hits.Add(1)
		if n == 1 {
			writeEnvelope(w, []Store{{ID: "s1", Name: "old"}})
			return
		}
		writeEnvelope(w, []Store{{ID: "s1", Name: "new"}})
	}, clock, nil)

	_, err := Fetch(context.Background(), f, storesReq())
	require.NoError(t, err)

	clock.Advance(6 * time.Minute)
	stale, err := Fetch(context.Background(), f, storesReq())
	require.NoError(t, err)
	assert.Equal(t, "old", stale.Value[0].Name, "stale entry is served before the refresh lands")

	f.Wait()
	fresh, err := Fetch(context.Background(), f, storesReq())
	require.NoError(t, err)
	assert.Equal(t, "new", fresh.Value[0].Name)
	assert.Equal(t, clock.Now(), fresh.FetchedAt)
	assert.Equal(t, int32(2), hits.Load())
}

func TestFetchCacheFirstTooStaleGoesToNetwork(t *testing.T) {
	clock := newFakeClock()
	var fail atomic.Bool
	f := newTestFetcher(t, func(w http.ResponseWriter, _ *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeEnvelope(w, []Store{{ID: "s1", Name: "cached"}})
	}, clock, nil)

	first, err := Fetch(context.Background(), f, storesReq())
	require.NoError(t, err)

	fail.Store(true)
	clock.Advance(25 * time.Hour)
	entry, err := Fetch(context.Background(), f, storesReq())
	require.NoError(t, err)

	assert.Equal(t, SourceFallback, entry.Source)
	assert.Equal(t, "cached", entry.Value[0].Name, "an old copy beats the seed for public data")
	assert.Equal(t, first.FetchedAt, entry.FetchedAt)
}

func TestFetchMemberNetworkFirstFallbackWindow(t *testing.T) {
	clock := newFakeClock()
	var fail atomic.Bool
	var hits atomic.Int32
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "Bearer tok-100200", r.Header.Get("Authorization"))
		if fail.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeEnvelope(w, PointsBalance{CurrentBalance: 900})
	}, clock, nil)

	first, err := Fetch(context.Background(), f, balanceReq("100200"))
	require.NoError(t, err)
	assert.Equal(t, 900, first.Value.CurrentBalance)

	// Network-first: a fresh cache entry does not skip the call.
	second, err := Fetch(context.Background(), f, balanceReq("100200"))
	require.NoError(t, err)
	assert.Equal(t, SourceNetwork, second.Source)
	assert.Equal(t, int32(2), hits.Load())

	fail.Store(true)
	clock.Advance(10 * time.Minute)
	cached, err := Fetch(context.Background(), f, balanceReq("100200"))
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, cached.Source)
	assert.Equal(t, 900, cached.Value.CurrentBalance)

	clock.Advance(10 * time.Minute)
	seeded, err := Fetch(context.Background(), f, balanceReq("100200"))
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, seeded.Source)
	assert.Equal(t, SeedPointsBalance().CurrentBalance, seeded.Value.CurrentBalance)
}

func TestFetchMemberEntriesAreScopedPerMember(t *testing.T) {
	var fail atomic.Bool
	f := newTestFetcher(t, func(w http.ResponseWriter, _ *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeEnvelope(w, PointsBalance{CurrentBalance: 1})
	}, newFakeClock(), nil)

	_, err := Fetch(context.Background(), f, balanceReq("100200"))
	require.NoError(t, err)

	fail.Store(true)
	other, err := Fetch(context.Background(), f, balanceReq("300400"))
	require.NoError(t, err)
	assert.Equal(t, SeedPointsBalance(), other.Value)
}

func TestFetchInvalidPayloadFallsBack(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, PointsBalance{CurrentBalance: -5})
	}, newFakeClock(), nil)

	entry, err := Fetch(context.Background(), f, balanceReq("100200"))
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, entry.Source)
	assert.Equal(t, SeedPointsBalance(), entry.Value)
}

func TestFetchCoalescesConcurrentCalls(t *testing.T) {
	var hits atomic.Int32
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	f := newTestFetcher(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		writeEnvelope(w, []Store{{ID: "s1"}})
	}, newFakeClock(), nil)

	results := make(chan CacheEntry[[]Store], 2)
	go func() {
		entry, _ := Fetch(context.Background(), f, storesReq())
		results <- entry
	}()
	<-started
	go func() {
		entry, _ := Fetch(context.Background(), f, storesReq())
		results <- entry
	}()

	time.Sleep(50 * time.Millisecond)
	close(release)

	a, b := <-results, <-results
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, SourceNetwork, a.Source)
	assert.Equal(t, a, b)
}

func TestFetchCallerCancellationIsLocal(t *testing.T) {
	var hits atomic.Int32
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	f := newTestFetcher(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		writeEnvelope(w, []Store{{ID: "s1", Name: "shared"}})
	}, newFakeClock(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := Fetch(ctx, f, storesReq())
		errA <- err
	}()
	<-started

	resultB := make(chan CacheEntry[[]Store], 1)
	go func() {
		entry, _ := Fetch(context.Background(), f, storesReq())
		resultB <- entry
	}()

	cancel()
	assert.True(t, errors.Is(<-errA, context.Canceled))

	time.Sleep(50 * time.Millisecond)
	close(release)

	b := <-resultB
	assert.Equal(t, SourceNetwork, b.Source)
	assert.Equal(t, "shared", b.Value[0].Name)
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetchUnauthorizedReportsToken(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, newFakeClock(), nil)

	var reported []AuthToken
	f.onUnauthorized = func(tok AuthToken) { reported = append(reported, tok) }

	entry, err := Fetch(context.Background(), f, balanceReq("100200"))
	require.NoError(t, err)
	assert.True(t, entry.IsFallback())
	assert.Equal(t, []AuthToken{"tok-100200"}, reported)
}

func TestPutKeepsNewerNetworkEntry(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, _ *http.Request) {}, newFakeClock(), nil)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.True(t, f.put("k", cacheRecord{raw: json.RawMessage(`1`), fetchedAt: t0.Add(time.Minute), source: SourceNetwork}, false))

	assert.False(t, f.put("k", cacheRecord{raw: json.RawMessage(`2`), fetchedAt: t0.Add(time.Hour), source: SourceFallback}, false),
		"a fallback never replaces network data")
	assert.False(t, f.put("k", cacheRecord{raw: json.RawMessage(`3`), fetchedAt: t0, source: SourceNetwork}, false),
		"older network data never replaces newer")
	assert.True(t, f.put("k", cacheRecord{raw: json.RawMessage(`4`), fetchedAt: t0.Add(2 * time.Minute), source: SourceNetwork}, false))

	rec, ok := f.cache.Peek("k")
	require.True(t, ok)
	assert.JSONEq(t, `4`, string(rec.raw))
}

func TestFetchPersistsPublicEntriesOnly(t *testing.T) {
	clock := newFakeClock()
	storage := NewMemoryStorage()
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/points/balance" {
			writeEnvelope(w, PointsBalance{CurrentBalance: 10})
			return
		}
		writeEnvelope(w, []Store{{ID: "s1", Name: "persisted"}})
	}, clock, storage)

	_, err := Fetch(context.Background(), f, storesReq())
	require.NoError(t, err)
	_, err = Fetch(context.Background(), f, balanceReq("100200"))
	require.NoError(t, err)

	snapshot := storage.Snapshot()
	assert.Contains(t, snapshot, "cache:stores.all")
	for key := range snapshot {
		assert.NotContains(t, key, "points.balance")
	}

	// A new process with the backend down still serves the persisted copy.
	var hits atomic.Int32
	restarted := newTestFetcher(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, clock, storage)

	entry, err := Fetch(context.Background(), restarted, storesReq())
	require.NoError(t, err)
	assert.Equal(t, "persisted", entry.Value[0].Name)
	assert.Zero(t, hits.Load())
}

func TestPurgeMemberDropsOnlyMemberEntries(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/points/balance" {
			writeEnvelope(w, PointsBalance{CurrentBalance: 10})
			return
		}
		writeEnvelope(w, []Store{{ID: "s1"}})
	}, newFakeClock(), nil)

	_, err := Fetch(context.Background(), f, storesReq())
	require.NoError(t, err)
	_, err = Fetch(context.Background(), f, balanceReq("100200"))
	require.NoError(t, err)

	f.PurgeMember()

	assert.True(t, f.cache.Contains(ResourceStores.Key))
	assert.False(t, f.cache.Contains("member:100200:points.balance"))
}

func TestPurgeDuringMemberReadDropsItsResult(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	f := newTestFetcher(t, func(w http.ResponseWriter, _ *http.Request) {
		close(entered)
		<-release
		writeEnvelope(w, PointsBalance{CurrentBalance: 10})
	}, newFakeClock(), nil)

	done := make(chan CacheEntry[PointsBalance], 1)
	go func() {
		entry, _ := Fetch(context.Background(), f, balanceReq("100200"))
		done <- entry
	}()

	<-entered
	f.PurgeMember()
	close(release)

	entry := <-done
	assert.Equal(t, SourceNetwork, entry.Source)
	assert.Equal(t, 10, entry.Value.CurrentBalance)
	assert.False(t, f.cache.Contains("member:100200:points.balance"))
}
