package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whh34/CryptoFinal/internal/state"
	"github.com/whh34/CryptoFinal/internal/types"
)

func run(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--home", home, "--seed", "cli-" + t.Name(), "--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func requireFullDeck(t *testing.T, line string) {
	t.Helper()
	fields := strings.Fields(line)
	require.Len(t, fields, types.DeckSize)
	seen := map[string]bool{}
	for _, f := range fields {
		require.NotEqual(t, "??", f)
		require.False(t, seen[f], "card %s twice", f)
		seen[f] = true
	}
}

func TestSetupThenShuffle(t *testing.T) {
	home := t.TempDir()
	out, err := run(t, home, "setup")
	require.NoError(t, err)
	require.Contains(t, out, "field: ")
	require.Contains(t, out, "fingerprint: ")

	f, err := state.Load(home)
	require.NoError(t, err)
	require.Contains(t, out, f.Fingerprint)

	out, err = run(t, home, "shuffle", "--players", "4")
	require.NoError(t, err)
	requireFullDeck(t, out)
}

func TestShuffle_NeedsSetup(t *testing.T) {
	_, err := run(t, t.TempDir(), "shuffle")
	require.ErrorContains(t, err, "setup first")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestPractical(t *testing.T) {
	out, err := run(t, t.TempDir(), "practical", "--transforms", "2")
	require.NoError(t, err)
	requireFullDeck(t, out)

	out, err = run(t, t.TempDir(), "practical", "--transforms", "1", "--encrypted")
	require.NoError(t, err)
	requireFullDeck(t, out)
}

func TestEncrypt_SumsPlaintexts(t *testing.T) {
	out, err := run(t, t.TempDir(), "encrypt", "5", "7", "11")
	require.NoError(t, err)
	require.Contains(t, out, "sum: 23\n")

	_, err = run(t, t.TempDir(), "encrypt", "--", "-1")
	require.ErrorIs(t, err, types.ErrInvalidRange)

	_, err = run(t, t.TempDir(), "encrypt", "twelve")
	require.ErrorContains(t, err, "invalid integer")
}

func TestCommitThenVerify(t *testing.T) {
	home := t.TempDir()
	out, err := run(t, home, "commit", "42")
	require.NoError(t, err)
	c := strings.TrimSpace(out)

	out, err = run(t, home, "verify", c, "42")
	require.NoError(t, err)
	require.Equal(t, "ok\n", out)

	_, err = run(t, home, "verify", c, "43")
	require.ErrorContains(t, err, "does not open")
}

func TestBench(t *testing.T) {
	out, err := run(t, t.TempDir(), "bench", "--reps", "2", "--ops", "commit,encrypt")
	require.NoError(t, err)
	require.Contains(t, out, "commit: reps=2")
	require.Contains(t, out, "encrypt: reps=2")

	_, err = run(t, t.TempDir(), "bench", "--ops", "deal")
	require.ErrorContains(t, err, "unknown op")
}

func TestConfig_EnvAndFlagPrecedence(t *testing.T) {
	t.Setenv("MENTALPOKER_FIELD_BYTES", "9")
	_, err := run(t, t.TempDir(), "setup")
	require.ErrorContains(t, err, "field_bytes")

	_, err = run(t, t.TempDir(), "--field-bytes", "2", "setup")
	require.NoError(t, err)

	// Above six bytes factoring p-1 is no longer bounded, so the flag is refused.
	_, err = run(t, t.TempDir(), "--field-bytes", "7", "setup")
	require.ErrorContains(t, err, "field_bytes")
}

func TestConfig_FileInHome(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("max-setup-attempts: 0\n"), 0o644))
	_, err := run(t, home, "setup")
	require.ErrorContains(t, err, "max_setup_attempts")
}

func TestConfig_BadLogFormat(t *testing.T) {
	_, err := run(t, t.TempDir(), "--log-format", "xml", "commit", "1")
	require.ErrorContains(t, err, "log-format")
}
