package sdk

import (
	"net/url"
	"time"
)

// Resource is a readable collection or item on one of the backends.
type Resource struct {
	// Key identifies the resource in the cache and for coalescing.
	Key string
	// Path is the backend path, relative to the backend base URL.
	Path string
	// Restricted marks member-only data.
	Restricted bool
	// Capability gates restricted resources.
	Capability Capability
}

var (
	ResourceFeaturedStores     = Resource{Key: "stores.featured", Path: "/stores/featured"}
	ResourceStores             = Resource{Key: "stores.all", Path: "/stores"}
	ResourcePublicPromotions   = Resource{Key: "promotions.public", Path: "/promotions/public"}
	ResourceUpcomingEvents     = Resource{Key: "events.upcoming", Path: "/events/upcoming"}
	ResourcePointsBalance      = Resource{Key: "points.balance", Path: "/points/balance", Restricted: true, Capability: CapViewProfile}
	ResourceRecentTransactions = Resource{Key: "points.transactions", Path: "/points/transactions/recent", Restricted: true, Capability: CapViewProfile}
	ResourceRecommendedRewards = Resource{Key: "rewards.recommended", Path: "/rewards/recommended", Restricted: true, Capability: CapRedeemReward}
	ResourceRewards            = Resource{Key: "rewards.all", Path: "/rewards", Restricted: true, Capability: CapRedeemReward}
	ResourceNotifications      = Resource{Key: "notifications", Path: "/notifications", Restricted: true, Capability: CapViewNotifications}
)

// ResourceStore is the single-store lookup for id.
func ResourceStore(id string) Resource {
	return Resource{Key: "stores/" + id, Path: "/stores/" + url.PathEscape(id)}
}

// CacheMode is the cache discipline applied to a backend.
type CacheMode string

const (
	// CacheFirst serves a cached value immediately and refreshes in the background.
	CacheFirst CacheMode = "cache-first"
	// NetworkFirst always calls the network and uses the cache only when it fails.
	NetworkFirst CacheMode = "network-first"
)

// CachePolicy configures one backend's cache discipline.
type CachePolicy struct {
	Mode CacheMode
	// Timeout bounds each network call.
	Timeout time.Duration
	// RefreshAfter is the age after which a cache-first hit triggers a background refresh.
	RefreshAfter time.Duration
	// MaxStale is the age after which a cache-first entry is too stale to serve before
	// the network answers.
	MaxStale time.Duration
	// FallbackWindow is the oldest cached entry a network-first read may fall back to.
	FallbackWindow time.Duration
}

// Route is the backend and policy chosen for a resource.
type Route struct {
	Backend BackendKind
	Policy  CachePolicy
}

// BackendRouter picks the backend for a resource from the resource alone.
type BackendRouter struct {
	public CachePolicy
	member CachePolicy
}

// NewBackendRouter builds a router with the given per-backend policies.
func NewBackendRouter(public, member CachePolicy) *BackendRouter {
	return &BackendRouter{public: public, member: member}
}

// Route never looks at the principal: gating happens before the call is attempted.
func (r *BackendRouter) Route(res Resource) Route {
	if res.Restricted {
		return Route{Backend: BackendMember, Policy: r.member}
	}
	return Route{Backend: BackendPublic, Policy: r.public}
}

// DefaultPublicPolicy is tuned for guest browsing, where staleness is cheap.
func DefaultPublicPolicy() CachePolicy {
	return CachePolicy{
		Mode:         CacheFirst,
		Timeout:      10 * time.Second,
		RefreshAfter: 5 * time.Minute,
		MaxStale:     24 * time.Hour,
	}
}

// DefaultMemberPolicy favours a correct points balance over latency.
func DefaultMemberPolicy() CachePolicy {
	return CachePolicy{
		Mode:           NetworkFirst,
		Timeout:        15 * time.Second,
		FallbackWindow: 15 * time.Minute,
	}
}
