package commit

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whh34/CryptoFinal/internal/numtheory"
	"github.com/whh34/CryptoFinal/internal/types"
)

func TestCommit_Verifies(t *testing.T) {
	src, err := numtheory.NewHashSource([]byte("commit"))
	require.NoError(t, err)
	params := types.DefaultParams()

	for _, s := range []int64{0, 1, 2, 42, 1 << 20, 123456789} {
		secret := big.NewInt(s)
		c, err := Commit(src, secret, params.CommitFieldBytes, params)
		require.NoError(t, err)

		require.True(t, numtheory.IsPrime(c.P))
		factors, err := numtheory.PrimeFactorization(new(big.Int).Sub(c.P, big.NewInt(1)))
		require.NoError(t, err)
		require.True(t, numtheory.IsPrimitiveRoot(c.G, c.P, factors))

		require.Zero(t, new(big.Int).Exp(c.G, secret, c.P).Cmp(c.C))
		require.True(t, Verify(c, secret))
	}
}

func TestVerify_RejectsWrongSecret(t *testing.T) {
	src, err := numtheory.NewHashSource([]byte("wrong"))
	require.NoError(t, err)
	params := types.DefaultParams()

	c, err := Commit(src, big.NewInt(1000), 3, params)
	require.NoError(t, err)
	// g generates the group, so only secrets congruent mod p-1 open it.
	require.False(t, Verify(c, big.NewInt(1001)))
	require.True(t, Verify(c, new(big.Int).Add(big.NewInt(1000), new(big.Int).Sub(c.P, big.NewInt(1)))))

	require.False(t, Verify(Commitment{}, big.NewInt(1)))
	require.False(t, Verify(c, big.NewInt(-1)))
}

func TestCommit_RejectsBadInput(t *testing.T) {
	src, err := numtheory.NewHashSource([]byte("bad"))
	require.NoError(t, err)
	params := types.DefaultParams()

	_, err = Commit(src, big.NewInt(-5), 4, params)
	require.ErrorIs(t, err, types.ErrInvalidRange)

	_, err = Commit(src, big.NewInt(5), 0, params)
	require.ErrorIs(t, err, types.ErrDegenerateInput)

	_, err = Commit(src, big.NewInt(5), types.MaxFieldBytes+1, params)
	require.ErrorIs(t, err, types.ErrInvalidRange)
}
