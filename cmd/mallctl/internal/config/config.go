package config

import (
	"context"
	"log/slog"

	"github.com/supermal/mallpass/cmd/mallctl/internal/client"
)

type ctxKey struct{}

// GlobalConfig is what every mallctl command needs: resolved settings, the logger and
// the lazily built SDK client. The root command attaches it before any RunE runs.
type GlobalConfig struct {
	Settings       *Settings
	NonInteractive bool
	Logger         *slog.Logger
	ClientProvider *client.Provider
}

// InjectConfig returns ctx carrying cfg.
func InjectConfig(ctx context.Context, cfg *GlobalConfig) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext returns the GlobalConfig attached to ctx, if any.
func FromContext(ctx context.Context) (*GlobalConfig, bool) {
	cfg, ok := ctx.Value(ctxKey{}).(*GlobalConfig)
	return cfg, ok
}

// MustFromContext is FromContext for command bodies, where a missing config means the
// root hook did not run.
func MustFromContext(ctx context.Context) *GlobalConfig {
	if cfg, ok := FromContext(ctx); ok {
		return cfg
	}
	panic("mallctl: command ran without the root PersistentPreRunE")
}
