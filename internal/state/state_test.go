package state

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/whh34/CryptoFinal/internal/numtheory"
	"github.com/whh34/CryptoFinal/internal/sra"
	"github.com/whh34/CryptoFinal/internal/types"
)

func encodedSession(t *testing.T, seed string) *sra.Session {
	t.Helper()
	src, err := numtheory.NewHashSource([]byte(seed))
	require.NoError(t, err)
	s, err := sra.Setup(src, 3, types.DefaultParams())
	require.NoError(t, err)
	return s
}

func TestSessionFile_SaveLoadRestore(t *testing.T) {
	s := encodedSession(t, "persist")
	f, err := FromSession(s)
	require.NoError(t, err)

	home := t.TempDir()
	require.NoError(t, f.Save(home))

	loaded, err := Load(home)
	require.NoError(t, err)
	require.Equal(t, f.Fingerprint, loaded.Fingerprint)

	r, err := loaded.Restore(types.DefaultParams())
	require.NoError(t, err)
	require.Zero(t, r.Field().Cmp(s.Field()))
	require.Equal(t, s.Encoding(), r.Encoding())
}

func TestSessionFile_BigIntsAreJSONStrings(t *testing.T) {
	f, err := FromSession(encodedSession(t, "json"))
	require.NoError(t, err)
	home := t.TempDir()
	require.NoError(t, f.Save(home))

	raw, err := os.ReadFile(filepath.Join(home, FileName))
	require.NoError(t, err)
	require.Contains(t, string(raw), `"field": "`+f.Field.String()+`"`)
}

func TestHash_StableAndSensitive(t *testing.T) {
	s := encodedSession(t, "hash")
	f1, err := FromSession(s)
	require.NoError(t, err)
	f2, err := FromSession(s)
	require.NoError(t, err)
	require.True(t, bytes.Equal(f1.Hash(), f2.Hash()))

	// Swapping two card encodings changes the agreed deck.
	f2.Encoding[0], f2.Encoding[1] = f2.Encoding[1], f2.Encoding[0]
	require.False(t, bytes.Equal(f1.Hash(), f2.Hash()))
}

func TestLoad_DetectsTampering(t *testing.T) {
	f, err := FromSession(encodedSession(t, "tamper"))
	require.NoError(t, err)
	home := t.TempDir()
	require.NoError(t, f.Save(home))

	path := filepath.Join(home, FileName)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	first := f.Encoding[0].String()
	tampered := strings.Replace(string(raw), `"`+first+`"`, `"`+f.Encoding[0].Add(math.OneInt()).String()+`"`, 1)
	require.NoError(t, os.WriteFile(path, []byte(tampered), 0o644))

	_, err = Load(home)
	require.ErrorContains(t, err, "fingerprint mismatch")
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(t.TempDir())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRestore_Rejects(t *testing.T) {
	f, err := FromSession(encodedSession(t, "reject"))
	require.NoError(t, err)

	bad := *f
	bad.Version = 2
	_, err = bad.Restore(types.DefaultParams())
	require.ErrorContains(t, err, "unsupported session version")

	bad = *f
	bad.Encoding = f.Encoding[:10]
	_, err = bad.Restore(types.DefaultParams())
	require.ErrorIs(t, err, types.ErrInvalidRequest)
}

func TestFromSession_RequiresEncodedDeck(t *testing.T) {
	s, err := sra.NewSession(types.DefaultParams())
	require.NoError(t, err)
	_, err = FromSession(s)
	require.Error(t, err)
}
