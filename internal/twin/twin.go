// Package twin serves a local stand-in for the Public and Member backends. It is used
// by tests and by malltwin for offline development.
package twin

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/supermal/mallpass/pkg/sdk"
)

// Demo credentials seeded by default.
const (
	DemoCIF      = "12345678"
	DemoPassword = "demo123"
)

// Options configures a Twin. The zero value is usable.
type Options struct {
	// Secret signs member tokens. A fixed development secret is used when empty.
	Secret []byte
	// TokenTTL is the lifetime of issued tokens. Defaults to 24h.
	TokenTTL time.Duration
	// BcryptCost for seeded members. Tests lower it to bcrypt.MinCost.
	BcryptCost int
	// SkipDemoMember leaves the member table empty.
	SkipDemoMember bool
	Logger         *slog.Logger
	CORSOptions    *cors.Options
	Now            func() time.Time
}

// Twin is the HTTP handler for both backends.
type Twin struct {
	router   chi.Router
	controls *Controls
	logger   *slog.Logger
	secret   []byte
	ttl      time.Duration
	cost     int
	now      func() time.Time

	mu      sync.RWMutex
	members map[string]member
	revoked map[string]struct{}
}

type member struct {
	passwordHash []byte
	profile      sdk.MemberProfile
}

// DefaultCORSOptions allows the local web client dev servers.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
			"capacitor://localhost",
		},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

// New builds a Twin with the demo member unless opts.SkipDemoMember is set.
func New(opts Options) (*Twin, error) {
	t := &Twin{
		controls: NewControls(),
		logger:   opts.Logger,
		secret:   opts.Secret,
		ttl:      opts.TokenTTL,
		cost:     opts.BcryptCost,
		now:      opts.Now,
		members:  make(map[string]member),
		revoked:  make(map[string]struct{}),
	}
	if t.logger == nil {
		t.logger = slog.New(slog.DiscardHandler)
	}
	if len(t.secret) == 0 {
		t.secret = []byte("mallpass-twin-development-secret")
	}
	if t.ttl <= 0 {
		t.ttl = 24 * time.Hour
	}
	if t.cost == 0 {
		t.cost = bcrypt.DefaultCost
	}
	if t.now == nil {
		t.now = time.Now
	}

	if !opts.SkipDemoMember {
		if err := t.AddMember(DemoCIF, DemoPassword, sdk.DemoProfile(DemoCIF)); err != nil {
			return nil, fmt.Errorf("seed demo member: %w", err)
		}
	}

	corsCfg := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	t.router = t.routes(corsCfg)
	return t, nil
}

// Controls returns the fault and hit-count controls.
func (t *Twin) Controls() *Controls {
	return t.controls
}

// ServeHTTP implements http.Handler so a Twin can back an httptest.Server directly.
func (t *Twin) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	t.router.ServeHTTP(w, r)
}

// AddMember registers a member who can log in with password.
func (t *Twin) AddMember(cif, password string, profile sdk.MemberProfile) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), t.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	profile.CIF = cif

	t.mu.Lock()
	defer t.mu.Unlock()
	t.members[cif] = member{passwordHash: hash, profile: profile}
	return nil
}

// SetProfile replaces a member's profile, e.g. after a tier upgrade.
func (t *Twin) SetProfile(cif string, profile sdk.MemberProfile) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.members[cif]
	if !ok {
		return false
	}
	profile.CIF = cif
	m.profile = profile
	t.members[cif] = m
	return true
}

// Revoke makes token fail authentication from now on.
func (t *Twin) Revoke(token sdk.AuthToken) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.revoked[string(token)] = struct{}{}
}

// IssueToken signs a token for cif without a password check.
func (t *Twin) IssueToken(cif string) (sdk.AuthToken, error) {
	now := t.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   cif,
		Issuer:    "mallpass-twin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return sdk.AuthToken(signed), nil
}

var errUnknownMember = errors.New("unknown member")

// authenticate resolves the member behind a bearer token.
func (t *Twin) authenticate(raw string) (sdk.MemberProfile, error) {
	t.mu.RLock()
	_, revoked := t.revoked[raw]
	t.mu.RUnlock()
	if revoked {
		return sdk.MemberProfile{}, errors.New("token revoked")
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return sdk.MemberProfile{}, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	m, ok := t.members[claims.Subject]
	if !ok {
		return sdk.MemberProfile{}, errUnknownMember
	}
	return m.profile, nil
}

func (t *Twin) checkPassword(cif, password string) (sdk.MemberProfile, bool) {
	t.mu.RLock()
	m, ok := t.members[cif]
	t.mu.RUnlock()
	if !ok {
		return sdk.MemberProfile{}, false
	}
	if err := bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password)); err != nil {
		return sdk.MemberProfile{}, false
	}
	return m.profile, true
}

// writeData wraps v in the {"data": ...} envelope both backends use.
func writeData(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, map[string]any{"data": v})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": message,
			"type":    http.StatusText(status),
			"code":    status,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (t *Twin) routes(corsCfg cors.Options) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(corsCfg))
	r.Use(t.requestLog)

	r.Route("/admin", t.adminRoutes)

	r.Group(func(r chi.Router) {
		r.Use(t.controls.inject)

		r.Get("/stores/featured", t.handleStores)
		r.Get("/stores", t.handleStores)
		r.Get("/stores/{id}", t.handleStore)
		r.Get("/promotions/public", t.handlePromotions)
		r.Get("/events/upcoming", t.handleEvents)

		r.Post("/auth/login", t.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(t.requireMember)
			r.Get("/auth/profile", t.handleProfile)
			r.Get("/points/balance", t.handleBalance)
			r.Get("/points/transactions/recent", t.handleTransactions)
			r.Get("/rewards/recommended", t.handleRewards)
			r.Get("/rewards", t.handleRewards)
			r.Get("/notifications", t.handleNotifications)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return r
}

func (t *Twin) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		t.logger.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	})
}
