package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supermal/mallpass/pkg/sdk"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoadDefaults(t *testing.T) {
	isolateHome(t)

	s, err := Load(NewViper(), "")
	require.NoError(t, err)

	def := sdk.DefaultConfig()
	assert.Equal(t, def, s.SDKConfig())
	assert.Equal(t, "warn", s.LogLevel)
	assert.Empty(t, s.ConfigFile)
}

func TestLoadFromConfigFile(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "mallctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
public_url: http://localhost:9000
member_url: http://localhost:9001
log_level: debug
cache:
  size: 32
  persist: false
public:
  refresh_after: 1m
member:
  fallback_window: 30s
`), 0600))

	s, err := Load(NewViper(), path)
	require.NoError(t, err)

	assert.Equal(t, path, s.ConfigFile)
	cfg := s.SDKConfig()
	assert.Equal(t, "http://localhost:9000", cfg.PublicURL)
	assert.Equal(t, "http://localhost:9001", cfg.MemberURL)
	assert.Equal(t, 32, cfg.CacheSize)
	assert.False(t, cfg.PersistCache)
	assert.Equal(t, time.Minute, cfg.PublicPolicy.RefreshAfter)
	assert.Equal(t, 30*time.Second, cfg.MemberPolicy.FallbackWindow)
	assert.Equal(t, sdk.DefaultMemberPolicy().Timeout, cfg.MemberPolicy.Timeout)
}

func TestLoadPicksUpDefaultConfigFile(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, ".mallpass")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("public_url: http://twin.local\n"), 0600))

	s, err := Load(NewViper(), "")
	require.NoError(t, err)
	assert.Equal(t, "http://twin.local", s.PublicURL)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), s.ConfigFile)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "mallctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("member_url: http://from-file\n"), 0600))
	t.Setenv("MALLPASS_MEMBER_URL", "http://from-env")
	t.Setenv("MALLPASS_MEMBER_TIMEOUT", "2s")

	s, err := Load(NewViper(), path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env", s.MemberURL)
	assert.Equal(t, 2*time.Second, s.MemberTimeout)
}

func TestLoadErrors(t *testing.T) {
	isolateHome(t)

	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	v := NewViper()
	v.Set(KeyPublicURL, "not a url")
	_, err = Load(v, "")
	var verr *sdk.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, KeyPublicURL, verr.Field)

	v = NewViper()
	v.Set(KeyCacheSize, 0)
	_, err = Load(v, "")
	assert.ErrorIs(t, err, sdk.ErrValidation)
}

func TestConfigContextRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)
	assert.Panics(t, func() { MustFromContext(context.Background()) })

	cfg := &GlobalConfig{NonInteractive: true}
	ctx := InjectConfig(context.Background(), cfg)
	assert.Same(t, cfg, MustFromContext(ctx))
}
