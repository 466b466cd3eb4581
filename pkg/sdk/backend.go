package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
)

// BackendKind names one of the two logical backends.
type BackendKind string

const (
	// BackendPublic is read-only and guest-servable.
	BackendPublic BackendKind = "public"
	// BackendMember requires the current auth token on every request.
	BackendMember BackendKind = "member"
)

const maxPayloadBytes = 4 << 20

// AuthBackend exchanges credentials and resolves profiles.
type AuthBackend interface {
	Login(ctx context.Context, creds LoginCredentials) (LoginResult, error)
	Profile(ctx context.Context, token AuthToken) (MemberProfile, error)
}

// httpBackend talks JSON to one backend. Payloads are wrapped in {"data": ...}.
type httpBackend struct {
	kind    BackendKind
	baseURL string
	client  *http.Client
	timeout time.Duration
}

func newHTTPBackend(kind BackendKind, baseURL string, client *http.Client, timeout time.Duration) *httpBackend {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpBackend{kind: kind, baseURL: baseURL, client: client, timeout: timeout}
}

// Get issues an unauthenticated GET, or a bearer-authenticated one when token is set.
func (b *httpBackend) Get(ctx context.Context, path string, token AuthToken) (json.RawMessage, error) {
	return b.do(ctx, http.MethodGet, path, token, nil)
}

func (b *httpBackend) do(ctx context.Context, method, path string, token AuthToken, body any) (json.RawMessage, error) {
	ctx, cancel := ensureTimeout(ctx, b.timeout)
	defer cancel()

	endpoint, err := url.JoinPath(b.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("invalid %s backend URL: %w", b.kind, err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", b.kind, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.clientFor(token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPayloadBytes))
		return nil, &StatusError{Backend: b.kind, Path: path, StatusCode: resp.StatusCode}
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxPayloadBytes)).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: decode %s envelope: %v", ErrDataUnavailable, path, err)
	}
	if len(envelope.Data) == 0 || bytes.Equal(envelope.Data, []byte("null")) {
		return nil, fmt.Errorf("%w: %s returned no data", ErrDataUnavailable, path)
	}
	return envelope.Data, nil
}

// clientFor attaches the bearer token through an oauth2 transport, keeping the
// configured base transport and timeout.
func (b *httpBackend) clientFor(token AuthToken) *http.Client {
	if token == "" {
		return b.client
	}
	source := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: string(token),
		TokenType:   "Bearer",
	})
	return &http.Client{
		Transport:     &oauth2.Transport{Source: source, Base: b.client.Transport},
		CheckRedirect: b.client.CheckRedirect,
		Jar:           b.client.Jar,
		Timeout:       b.client.Timeout,
	}
}

// memberBackend adds the auth endpoints on top of the Member backend.
type memberBackend struct {
	*httpBackend
}

var _ AuthBackend = memberBackend{}

// Login POSTs credentials and validates the {token, profile} payload.
func (m memberBackend) Login(ctx context.Context, creds LoginCredentials) (LoginResult, error) {
	raw, err := m.do(ctx, http.MethodPost, "/auth/login", "", creds)
	if err != nil {
		return LoginResult{}, err
	}
	return decodeLogin(raw)
}

// Profile resolves the profile owned by token.
func (m memberBackend) Profile(ctx context.Context, token AuthToken) (MemberProfile, error) {
	raw, err := m.Get(ctx, "/auth/profile", token)
	if err != nil {
		return MemberProfile{}, err
	}
	return decodeProfile(raw)
}

func ensureTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}

	if timeout <= 0 {
		return ctx, func() {}
	}

	// WithTimeout keeps an earlier caller deadline.
	return context.WithTimeout(ctx, timeout)
}
