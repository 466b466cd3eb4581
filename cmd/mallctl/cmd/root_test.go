package cmd

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/supermal/mallpass/cmd/mallctl/internal/storage"
	"github.com/supermal/mallpass/internal/twin"
)

type cliEnv struct {
	twin      *twin.Twin
	url       string
	statePath string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MALLPASS_CIF", "")
	t.Setenv("MALLPASS_PASSWORD", "")

	tw, err := twin.New(twin.Options{BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)
	srv := httptest.NewServer(tw)
	t.Cleanup(srv.Close)

	return &cliEnv{twin: tw, url: srv.URL, statePath: filepath.Join(t.TempDir(), "state.json")}
}

func (e *cliEnv) run(args ...string) error {
	base := []string{"--public-url", e.url, "--member-url", e.url, "--state-file", e.statePath, "--non-interactive"}
	rootCmd.SetArgs(append(args, base...))
	return rootCmd.ExecuteContext(context.Background())
}

func (e *cliEnv) state(t *testing.T) *storage.FileStore {
	t.Helper()
	store, err := storage.NewFileStore(e.statePath)
	require.NoError(t, err)
	return store
}

func TestGuestCommands(t *testing.T) {
	e := newCLIEnv(t)

	require.NoError(t, e.run("stores", "list", "--featured"))
	require.NoError(t, e.run("stores", "get", "1"))
	require.NoError(t, e.run("promotions"))
	require.NoError(t, e.run("events"))
	require.NoError(t, e.run("auth", "status"))

	assert.Error(t, e.run("stores", "get", "999"))

	_, ok := e.state(t).Get("guest_id")
	assert.True(t, ok)
}

func TestMemberCommandsAreGatedForGuests(t *testing.T) {
	e := newCLIEnv(t)

	require.NoError(t, e.run("points", "balance"), "a teaser is not an error")
	assert.Zero(t, e.twin.Controls().Hits("/points/balance"))

	require.NoError(t, e.run("access", "redeem-reward"))
	require.NoError(t, e.run("access", "redeem-reward", "--no-teaser"))
	assert.Error(t, e.run("access", "teleport"))
}

func TestLoginSessionAcrossInvocations(t *testing.T) {
	e := newCLIEnv(t)

	require.Error(t, e.run("auth", "login", "--cif", twin.DemoCIF, "--password", "wrong"))
	_, ok := e.state(t).Get("auth_token")
	require.False(t, ok)

	require.NoError(t, e.run("auth", "login", "--cif", twin.DemoCIF, "--password", twin.DemoPassword))
	_, ok = e.state(t).Get("auth_token")
	require.True(t, ok)

	require.NoError(t, e.run("points", "balance"))
	require.NoError(t, e.run("points", "transactions"))
	require.NoError(t, e.run("rewards", "list", "--recommended"))
	require.NoError(t, e.run("notifications", "--unread"))
	assert.Equal(t, 1, e.twin.Controls().Hits("/points/balance"))

	require.NoError(t, e.run("auth", "logout"))
	_, ok = e.state(t).Get("auth_token")
	assert.False(t, ok)
}

func TestLoginNonInteractiveNeedsCredentials(t *testing.T) {
	e := newCLIEnv(t)
	assert.Error(t, e.run("auth", "login", "--cif", "", "--password", ""))
}
