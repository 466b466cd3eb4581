package sdk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/supermal/mallpass/internal/telemetry"
)

// SessionState is the lifecycle state of a SessionController.
type SessionState int

const (
	StateUninitialized SessionState = iota
	StateGuest
	StateMember
)

func (s SessionState) String() string {
	switch s {
	case StateGuest:
		return "guest"
	case StateMember:
		return "member"
	default:
		return "uninitialized"
	}
}

// SessionController owns the current Principal and every transition between Guest and
// Member. The principal is replaced, never mutated, and only after persistence is done.
type SessionController struct {
	store   *IdentityStore
	auth    AuthBackend
	logger  *slog.Logger
	metrics *telemetry.SessionMetrics

	mu         sync.Mutex
	state      SessionState
	principal  Principal
	generation uint64
	observers  []observer
	nextObs    int

	// onDemote runs after a Member becomes a Guest, outside the lock.
	onDemote func()
}

type observer struct {
	id int
	fn func(Principal)
}

// NewSessionController builds an uninitialized controller. logger and metrics may be nil.
func NewSessionController(store *IdentityStore, auth AuthBackend, logger *slog.Logger, metrics *telemetry.SessionMetrics) *SessionController {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SessionController{store: store, auth: auth, logger: logger, metrics: metrics}
}

// Initialize resolves the startup principal. A stored token is always re-validated with
// the Member backend; any failure discards it and the session starts as a Guest.
// Initialize never fails and may be called again. On a live member session it behaves
// like RefreshProfile, so only a rejected token demotes.
func (s *SessionController) Initialize(ctx context.Context) Principal {
	if IsMember(s.Principal()) {
		if err := s.RefreshProfile(ctx); err != nil {
			s.logger.Info("member session not re-validated", slog.Any("error", err))
		}
		return s.Principal()
	}

	guestID, err := s.store.GuestID()
	if err != nil {
		s.logger.Warn("guest id not persisted", slog.Any("error", err))
	}

	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	token, ok := s.store.Token()
	if !ok {
		return s.commit(gen, Guest{ID: guestID}, "initialize")
	}

	profile, err := s.auth.Profile(ctx, token)
	if err != nil {
		s.logger.Info("stored session not restored, continuing as guest",
			slog.String("class", errorClass(classifyAuthError(err))),
			slog.Any("error", err))

		s.mu.Lock()
		if current, ok := s.store.Token(); ok && current == token {
			if err := s.store.ClearSession(); err != nil {
				s.logger.Warn("clear stale session", slog.Any("error", err))
			}
		}
		s.mu.Unlock()
		return s.commit(gen, Guest{ID: guestID}, "initialize")
	}

	if err := s.store.SaveProfile(profile); err != nil {
		s.logger.Warn("persist refreshed profile", slog.Any("error", err))
	}
	return s.commit(gen, Member{Profile: profile, Token: token, Device: guestID}, "initialize")
}

// Login exchanges credentials for a Member principal. On any failure nothing is persisted
// and the current principal is returned unchanged alongside the error.
func (s *SessionController) Login(ctx context.Context, creds LoginCredentials) (Principal, error) {
	current := s.Principal()
	if current == nil {
		return nil, ErrNotInitialized
	}

	if err := creds.Validate(); err != nil {
		s.metrics.RecordLoginFailure(ctx, "validation")
		return current, err
	}

	result, err := s.auth.Login(ctx, creds)
	if err != nil {
		err = classifyAuthError(err)
		s.metrics.RecordLoginFailure(ctx, errorClass(err))
		s.logger.Info("login failed", slog.String("class", errorClass(err)), slog.Any("error", err))
		return current, fmt.Errorf("login: %w", err)
	}

	s.mu.Lock()
	if err := s.store.SaveSession(result.Token, result.Profile); err != nil {
		s.mu.Unlock()
		s.metrics.RecordLoginFailure(ctx, "storage")
		return current, fmt.Errorf("persist session: %w", err)
	}
	next := Member{Profile: result.Profile, Token: result.Token, Device: s.principal.GuestID()}
	notify := s.swapLocked(ctx, next, "login")
	s.mu.Unlock()

	s.logger.Info("member logged in", slog.String("tier", string(result.Profile.Tier)))
	s.notify(notify, next)
	return next, nil
}

// Logout clears the persisted session and reverts to the device Guest. No-op for guests.
func (s *SessionController) Logout() error {
	return s.demote(context.Background(), "", "logout")
}

// HandleAuthInvalid demotes the session when token is still the current member token.
// Data layers call it when the Member backend answers 401.
func (s *SessionController) HandleAuthInvalid(token AuthToken) {
	if err := s.demote(context.Background(), token, "token-rejected"); err != nil {
		s.logger.Warn("clear rejected session", slog.Any("error", err))
	}
}

// RefreshProfile re-reads the member profile. Only a 401-class response demotes; other
// failures leave the principal alone and are returned. A response that arrives after the
// principal changed is dropped.
func (s *SessionController) RefreshProfile(ctx context.Context) error {
	s.mu.Lock()
	member, ok := AsMember(s.principal)
	gen := s.generation
	s.mu.Unlock()
	if !ok {
		return nil
	}

	profile, err := s.auth.Profile(ctx, member.Token)
	if err != nil {
		if isUnauthorized(err) {
			if derr := s.demote(ctx, member.Token, "refresh-rejected"); derr != nil {
				s.logger.Warn("clear rejected session", slog.Any("error", derr))
			}
		}
		return fmt.Errorf("refresh profile: %w", classifyAuthError(err))
	}

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		s.logger.Debug("discarding profile refresh for a replaced principal")
		return nil
	}
	if err := s.store.SaveProfile(profile); err != nil {
		s.logger.Warn("persist refreshed profile", slog.Any("error", err))
	}
	member.Profile = profile
	notify := s.swapLocked(ctx, member, "refresh")
	s.mu.Unlock()

	s.notify(notify, member)
	return nil
}

// Principal returns the current principal, or nil before Initialize.
func (s *SessionController) Principal() Principal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.principal
}

// State returns the lifecycle state.
func (s *SessionController) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Token returns the current member token.
func (s *SessionController) Token() (AuthToken, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := AsMember(s.principal); ok {
		return m.Token, true
	}
	return "", false
}

// Subscribe registers fn to run after every principal change. The returned func
// unregisters it.
func (s *SessionController) Subscribe(fn func(Principal)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextObs++
	id := s.nextObs
	s.observers = append(s.observers, observer{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// demote reverts a Member to the device Guest. An empty token matches any member.
func (s *SessionController) demote(ctx context.Context, token AuthToken, reason string) error {
	s.mu.Lock()
	member, ok := AsMember(s.principal)
	if !ok || (token != "" && member.Token != token) {
		s.mu.Unlock()
		return nil
	}
	err := s.store.ClearSession()
	next := Guest{ID: member.Device}
	notify := s.swapLocked(ctx, next, reason)
	purge := s.onDemote
	s.mu.Unlock()

	if purge != nil {
		purge()
	}
	s.notify(notify, next)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// commit installs next unless another transition won the race since gen was read.
func (s *SessionController) commit(gen uint64, next Principal, reason string) Principal {
	s.mu.Lock()
	if s.generation != gen {
		current := s.principal
		s.mu.Unlock()
		return current
	}
	notify := s.swapLocked(context.Background(), next, reason)
	s.mu.Unlock()

	s.notify(notify, next)
	return next
}

// swapLocked replaces the principal and returns the observers to notify. s.mu must be held.
func (s *SessionController) swapLocked(ctx context.Context, next Principal, reason string) []func(Principal) {
	from := s.state
	s.principal = next
	s.generation++
	if IsMember(next) {
		s.state = StateMember
	} else {
		s.state = StateGuest
	}

	s.metrics.RecordTransition(ctx, from.String(), s.state.String(), reason)
	s.logger.Debug("session transition",
		slog.String("from", from.String()),
		slog.String("to", s.state.String()),
		slog.String("reason", reason))

	fns := make([]func(Principal), 0, len(s.observers))
	for _, o := range s.observers {
		fns = append(fns, o.fn)
	}
	return fns
}

func (s *SessionController) notify(fns []func(Principal), p Principal) {
	for _, fn := range fns {
		fn(p)
	}
}

// errorClass names the taxonomy bucket of err for logs and metrics.
func errorClass(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrAuthInvalid):
		return "auth_invalid"
	case errors.Is(err, ErrAuthTransient):
		return "auth_transient"
	case errors.Is(err, ErrDataUnavailable):
		return "data_unavailable"
	default:
		return "unknown"
	}
}
