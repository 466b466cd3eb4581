package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/pterm/pterm"

	"github.com/supermal/mallpass/cmd/mallctl/internal/storage"
	"github.com/supermal/mallpass/internal/telemetry"
	"github.com/supermal/mallpass/pkg/sdk"
)

// initTimeout bounds session restoration at startup, on top of the per-backend timeouts.
const initTimeout = 30 * time.Second

// Provider lazily builds the SDK client and its persistent storage. Commands share
// one Provider through the GlobalConfig.
type Provider struct {
	cfg       sdk.Config
	statePath string
	logger    *slog.Logger
	extra     []sdk.ClientOption

	storeOnce sync.Once
	store     *storage.FileStore
	storeErr  error

	sdkOnce   sync.Once
	sdkClient *sdk.Client
	sdkErr    error
}

// NewProvider binds a Provider to the SDK config and state file. An empty statePath
// selects ~/.mallpass/state.json.
func NewProvider(cfg sdk.Config, statePath string, logger *slog.Logger, opts ...sdk.ClientOption) *Provider {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Provider{cfg: cfg, statePath: statePath, logger: logger, extra: opts}
}

// Storage returns the file-backed store, warning once if the file was unreadable.
func (p *Provider) Storage() (*storage.FileStore, error) {
	p.storeOnce.Do(func() {
		store, err := storage.NewFileStore(p.statePath)
		if err != nil {
			p.storeErr = fmt.Errorf("failed to open state store: %w", err)
			return
		}
		if err := store.LoadError(); err != nil {
			pterm.Warning.Printf("Ignoring unreadable local state: %v\n", err)
		}
		p.store = store
	})
	return p.store, p.storeErr
}

// SDKClient returns the SDK client with its session already initialized.
func (p *Provider) SDKClient(ctx context.Context) (*sdk.Client, error) {
	p.sdkOnce.Do(func() {
		store, err := p.Storage()
		if err != nil {
			p.sdkErr = err
			return
		}

		fetchMetrics, err := telemetry.NewFetchMetrics()
		if err != nil {
			p.logger.Warn("fetch metrics disabled", "error", err)
		}
		sessionMetrics, err := telemetry.NewSessionMetrics()
		if err != nil {
			p.logger.Warn("session metrics disabled", "error", err)
		}

		opts := []sdk.ClientOption{
			sdk.WithHTTPClient(&http.Client{}),
			sdk.WithStorage(store),
			sdk.WithLogger(p.logger),
			sdk.WithMetrics(fetchMetrics, sessionMetrics),
		}
		opts = append(opts, p.extra...)

		c, err := sdk.NewClient(p.cfg, opts...)
		if err != nil {
			p.sdkErr = fmt.Errorf("failed to create client: %w", err)
			return
		}

		initCtx, cancel := ensureTimeout(ctx, initTimeout)
		defer cancel()
		c.Initialize(initCtx)
		p.sdkClient = c
	})
	return p.sdkClient, p.sdkErr
}

// Close waits for background cache refreshes so they can land in the state file.
func (p *Provider) Close() {
	if p.sdkClient != nil {
		p.sdkClient.Wait()
	}
}

func ensureTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
