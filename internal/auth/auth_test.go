package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayplan/dayplan-cli/internal/output"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	t.Setenv("DAYPLAN_TOKEN", "")
	return &Manager{
		tokenFile:      filepath.Join(t.TempDir(), "token"),
		disableKeyring: true,
	}
}

func TestTokenFromEnv(t *testing.T) {
	m := testManager(t)
	t.Setenv("DAYPLAN_TOKEN", "env-token")

	tok, err := m.Token()
	require.NoError(t, err)
	assert.Equal(t, "env-token", tok)
}

func TestTokenNotLoggedIn(t *testing.T) {
	m := testManager(t)

	_, err := m.Token()
	require.Error(t, err)

	e := output.AsError(err)
	assert.Equal(t, output.CodeAuth, e.Code)
	assert.Contains(t, e.Hint, "auth login")
}

func TestSetTokenFileFallback(t *testing.T) {
	m := testManager(t)

	require.NoError(t, m.SetToken("file-token"))

	data, err := os.ReadFile(m.tokenFile)
	require.NoError(t, err)
	assert.Equal(t, "file-token\n", string(data))

	info, err := os.Stat(m.tokenFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	tok, err := m.Token()
	require.NoError(t, err)
	assert.Equal(t, "file-token", tok)
}

func TestSetTokenEmpty(t *testing.T) {
	m := testManager(t)

	err := m.SetToken("")
	require.Error(t, err)
	assert.Equal(t, output.CodeUsage, output.AsError(err).Code)
}

func TestClear(t *testing.T) {
	m := testManager(t)
	require.NoError(t, m.SetToken("tok"))
	require.True(t, m.LoggedIn())

	require.NoError(t, m.Clear())
	assert.False(t, m.LoggedIn())

	// Clearing again is a no-op, not an error.
	require.NoError(t, m.Clear())
}

func TestEnvWinsOverFile(t *testing.T) {
	m := testManager(t)
	require.NoError(t, m.SetToken("file-token"))
	t.Setenv("DAYPLAN_TOKEN", "env-token")

	tok, err := m.Token()
	require.NoError(t, err)
	assert.Equal(t, "env-token", tok)
}
