package sdk

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/supermal/mallpass/internal/telemetry"
)

// Config selects the backends and their cache policies.
type Config struct {
	PublicURL    string
	MemberURL    string
	PublicPolicy CachePolicy
	MemberPolicy CachePolicy
	// CacheSize bounds the number of cached resources.
	CacheSize int
	// PersistCache writes public responses through to Storage so they survive restarts.
	PersistCache bool
}

// DefaultConfig points at the production backends.
func DefaultConfig() Config {
	return Config{
		PublicURL:    "https://supermal-api.vercel.app",
		MemberURL:    "https://salamun-crm.supermal.com",
		PublicPolicy: DefaultPublicPolicy(),
		MemberPolicy: DefaultMemberPolicy(),
		CacheSize:    256,
		PersistCache: true,
	}
}

// Client wires the identity, session, routing, fetching and gating layers together.
// Everything a screen needs goes through one Client; there is no package-level state.
type Client struct {
	cfg      Config
	identity *IdentityStore
	session  *SessionController
	fetcher  *Fetcher
}

// ClientOptions configures SDK client construction.
type ClientOptions struct {
	HTTPClient     *http.Client
	Storage        Storage
	Logger         *slog.Logger
	Now            func() time.Time
	FetchMetrics   *telemetry.FetchMetrics
	SessionMetrics *telemetry.SessionMetrics
}

// ClientOption mutates ClientOptions.
type ClientOption func(*ClientOptions)

// WithHTTPClient overrides the HTTP client used for both backends.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(opts *ClientOptions) {
		opts.HTTPClient = client
	}
}

// WithStorage sets the persistent store. Defaults to an in-memory store.
func WithStorage(storage Storage) ClientOption {
	return func(opts *ClientOptions) {
		opts.Storage = storage
	}
}

// WithLogger sets the structured logger. Defaults to discarding output.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(opts *ClientOptions) {
		opts.Logger = logger
	}
}

// WithClock overrides time.Now for cache ages.
func WithClock(now func() time.Time) ClientOption {
	return func(opts *ClientOptions) {
		opts.Now = now
	}
}

// WithMetrics records fetch and session metrics. Either may be nil.
func WithMetrics(fetch *telemetry.FetchMetrics, session *telemetry.SessionMetrics) ClientOption {
	return func(opts *ClientOptions) {
		opts.FetchMetrics = fetch
		opts.SessionMetrics = session
	}
}

// NewClient builds a Client. Call Initialize before reading.
func NewClient(cfg Config, optFns ...ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.PublicURL) == "" {
		return nil, &ValidationError{Field: "public_url", Reason: "is required"}
	}
	if strings.TrimSpace(cfg.MemberURL) == "" {
		return nil, &ValidationError{Field: "member_url", Reason: "is required"}
	}

	opts := ClientOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Storage == nil {
		opts.Storage = NewMemoryStorage()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	public := newHTTPBackend(BackendPublic, cfg.PublicURL, opts.HTTPClient, cfg.PublicPolicy.Timeout)
	member := newHTTPBackend(BackendMember, cfg.MemberURL, opts.HTTPClient, cfg.MemberPolicy.Timeout)
	router := NewBackendRouter(cfg.PublicPolicy, cfg.MemberPolicy)

	var persist Storage
	if cfg.PersistCache {
		persist = opts.Storage
	}
	fetcher, err := NewFetcher(FetcherOptions{
		Router:    router,
		Public:    public,
		Member:    member,
		CacheSize: cfg.CacheSize,
		Persist:   persist,
		Now:       opts.Now,
		Logger:    opts.Logger.With(slog.String("component", "fetcher")),
		Metrics:   opts.FetchMetrics,
	})
	if err != nil {
		return nil, err
	}

	identity := NewIdentityStore(opts.Storage)
	session := NewSessionController(identity, memberBackend{member},
		opts.Logger.With(slog.String("component", "session")), opts.SessionMetrics)

	fetcher.onUnauthorized = session.HandleAuthInvalid
	session.onDemote = fetcher.PurgeMember

	return &Client{
		cfg:      cfg,
		identity: identity,
		session:  session,
		fetcher:  fetcher,
	}, nil
}

// Initialize resolves the startup principal. See SessionController.Initialize.
func (c *Client) Initialize(ctx context.Context) Principal {
	return c.session.Initialize(ctx)
}

// Login signs a member in.
func (c *Client) Login(ctx context.Context, creds LoginCredentials) (Principal, error) {
	return c.session.Login(ctx, creds)
}

// Logout signs the member out and drops their cached data.
func (c *Client) Logout() error {
	return c.session.Logout()
}

// Config returns the configuration the client was built with.
func (c *Client) Config() Config {
	return c.cfg
}

// Session exposes the session controller for subscriptions and state queries.
func (c *Client) Session() *SessionController {
	return c.session
}

// Principal is the current principal, nil before Initialize.
func (c *Client) Principal() Principal {
	return c.session.Principal()
}

// GuestID returns the device guest id.
func (c *Client) GuestID() (GuestID, error) {
	return c.identity.GuestID()
}

// CanAccess evaluates the gate for the current principal.
func (c *Client) CanAccess(capability Capability, teaser bool) Decision {
	return CanAccess(c.session.Principal(), capability, teaser)
}

// Wait blocks until background cache refreshes have finished.
func (c *Client) Wait() {
	c.fetcher.Wait()
}

func (c *Client) FeaturedStores(ctx context.Context) (CacheEntry[[]Store], error) {
	return Fetch(ctx, c.fetcher, Request[[]Store]{Resource: ResourceFeaturedStores, Fallback: SeedStores()})
}

func (c *Client) Stores(ctx context.Context) (CacheEntry[[]Store], error) {
	return Fetch(ctx, c.fetcher, Request[[]Store]{Resource: ResourceStores, Fallback: SeedStores()})
}

// Store looks up one store. The fallback is the seeded store with the same id, or nil.
func (c *Client) Store(ctx context.Context, id string) (CacheEntry[*Store], error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return CacheEntry[*Store]{}, &ValidationError{Field: "id", Reason: "is required"}
	}
	return Fetch(ctx, c.fetcher, Request[*Store]{Resource: ResourceStore(id), Fallback: SeedStore(id)})
}

func (c *Client) PublicPromotions(ctx context.Context) (CacheEntry[[]Promotion], error) {
	return Fetch(ctx, c.fetcher, Request[[]Promotion]{Resource: ResourcePublicPromotions, Fallback: SeedPromotions()})
}

func (c *Client) UpcomingEvents(ctx context.Context) (CacheEntry[[]Event], error) {
	return Fetch(ctx, c.fetcher, Request[[]Event]{Resource: ResourceUpcomingEvents, Fallback: SeedEvents()})
}

func (c *Client) PointsBalance(ctx context.Context) (CacheEntry[PointsBalance], error) {
	return memberRead(ctx, c, ResourcePointsBalance, SeedPointsBalance)
}

func (c *Client) RecentTransactions(ctx context.Context) (CacheEntry[[]PointsTransaction], error) {
	return memberRead(ctx, c, ResourceRecentTransactions, SeedTransactions)
}

func (c *Client) RecommendedRewards(ctx context.Context) (CacheEntry[[]Reward], error) {
	return memberRead(ctx, c, ResourceRecommendedRewards, SeedRewards)
}

func (c *Client) Rewards(ctx context.Context) (CacheEntry[[]Reward], error) {
	return memberRead(ctx, c, ResourceRewards, SeedRewards)
}

func (c *Client) Notifications(ctx context.Context) (CacheEntry[[]Notification], error) {
	return memberRead(ctx, c, ResourceNotifications, SeedNotifications)
}

// memberRead gates a restricted resource before any network call. A guest gets an
// *AccessError carrying the decision the default view would render.
func memberRead[T any](ctx context.Context, c *Client, res Resource, seed func() T) (CacheEntry[T], error) {
	principal := c.session.Principal()
	if principal == nil {
		return CacheEntry[T]{}, fmt.Errorf("read %s: %w", res.Key, ErrNotInitialized)
	}

	member, ok := AsMember(principal)
	if !ok || CanAccess(principal, res.Capability, false) != Allow {
		return CacheEntry[T]{}, &AccessError{
			Capability: res.Capability,
			Decision:   CanAccess(principal, res.Capability, DefaultTeaser(res.Capability)),
		}
	}

	return Fetch(ctx, c.fetcher, Request[T]{
		Resource: res,
		Token:    member.Token,
		Scope:    member.Profile.CIF,
		Fallback: seed(),
	})
}
