package session_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promoping/promoping-client/internal/session"
)

func newStore(t *testing.T, dir string) *session.Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := session.New(dir, logger)
	require.NoError(t, err)
	return store
}

func TestSaveThenWatch_FirstEmissionIsSavedToken(t *testing.T) {
	store := newStore(t, t.TempDir())
	require.NoError(t, store.Save("token-1", false))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := store.Watch(ctx)
	select {
	case got := <-ch:
		assert.Equal(t, "token-1", got)
	case <-time.After(time.Second):
		t.Fatal("no initial emission")
	}
}

func TestWatch_SeesWritesInOrder(t *testing.T) {
	store := newStore(t, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := store.Watch(ctx)

	assert.Equal(t, "", <-ch, "initial emission reflects empty storage")

	require.NoError(t, store.Save("a", false))
	require.NoError(t, store.Save("b", true))
	require.NoError(t, store.Clear())

	assert.Equal(t, "a", <-ch)
	assert.Equal(t, "b", <-ch)
	assert.Equal(t, "", <-ch, "clear emits exactly one empty value after pending saves")
}

func TestSave_DurableAcrossRestart(t *testing.T) {
	dir := t.TempDir()

	store := newStore(t, dir)
	require.NoError(t, store.Save("persisted-token", true))

	reopened := newStore(t, dir)
	assert.Equal(t, "persisted-token", reopened.Token())
	assert.True(t, reopened.RememberMe())
}

func TestClear_SurvivesRestartAndIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	store := newStore(t, dir)
	require.NoError(t, store.Save("tok", false))
	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())

	reopened := newStore(t, dir)
	assert.Equal(t, "", reopened.Token())
	assert.False(t, reopened.RememberMe())
}

func TestNew_DropsExpiredToken(t *testing.T) {
	dir := t.TempDir()

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	store := newStore(t, dir)
	require.NoError(t, store.Save(expired, false))

	reopened := newStore(t, dir)
	assert.Equal(t, "", reopened.Token(), "expired token must not boot an authenticated session")
}

func TestTokenFileIsNotPlaintext(t *testing.T) {
	dir := t.TempDir()
	store := newStore(t, dir)
	require.NoError(t, store.Save("very-secret-token", false))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "very-secret-token", "token must be sealed at rest in %s", entry.Name())
	}
}
