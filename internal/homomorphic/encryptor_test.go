package homomorphic

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whh34/CryptoFinal/internal/numtheory"
	"github.com/whh34/CryptoFinal/internal/types"
)

func newTestEncryptor(t testing.TB, seed string) (*Encryptor, *numtheory.HashSource) {
	t.Helper()
	src, err := numtheory.NewHashSource([]byte(seed))
	require.NoError(t, err)
	enc, err := NewEncryptor(src, types.DefaultParams())
	require.NoError(t, err)
	return enc, src
}

func TestGenerateParams_Bounds(t *testing.T) {
	src, err := numtheory.NewHashSource([]byte("params"))
	require.NoError(t, err)
	p, err := GenerateParams(src, 100)
	require.NoError(t, err)
	require.NoError(t, p.Validate())

	require.Equal(t, 1, p.M.Cmp(modulusLowerBound))
	require.Equal(t, -1, p.M.Cmp(modulusUpperBound))
	// Three 2-byte factors.
	require.LessOrEqual(t, p.MPrime.BitLen(), 48)
	require.Zero(t, new(big.Int).Mod(p.M, p.MPrime).Sign(), "MPrime divides M")
	require.Zero(t, new(big.Int).GCD(nil, nil, p.R, p.M).Cmp(big.NewInt(1)))
}

func TestParamsValidate_Rejects(t *testing.T) {
	enc, _ := newTestEncryptor(t, "validate")
	good := enc.params

	bad := good
	bad.RInv = new(big.Int).Add(good.RInv, big.NewInt(1))
	require.ErrorContains(t, bad.Validate(), "R*RInv")

	bad = good
	bad.MPrime = new(big.Int).Set(good.M)
	require.Error(t, bad.Validate())

	require.Error(t, Params{}.Validate())

	_, err := NewEncryptorWithParams(nil, Params{})
	require.ErrorIs(t, err, types.ErrInvalidRequest)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	enc, src := newTestEncryptor(t, "roundtrip")
	mPrime := enc.MessageSpace()

	fixed := []*big.Int{
		big.NewInt(0), big.NewInt(1), big.NewInt(255), big.NewInt(256),
		big.NewInt(65535), big.NewInt(65536), new(big.Int).Sub(mPrime, big.NewInt(1)),
	}
	for _, a := range fixed {
		if a.Cmp(mPrime) >= 0 {
			continue
		}
		ct, err := enc.Encrypt(a)
		require.NoError(t, err)
		got, err := enc.Decrypt(ct)
		require.NoError(t, err)
		require.Zero(t, got.Cmp(a), "a=%s got=%s", a, got)
	}

	for i := 0; i < 200; i++ {
		a, err := numtheory.Intn(src, mPrime)
		require.NoError(t, err)
		ct, err := enc.Encrypt(a)
		require.NoError(t, err)
		for _, share := range ct {
			require.True(t, share.Sign() >= 0 && share.Cmp(enc.Modulus()) < 0)
		}
		got, err := enc.Decrypt(ct)
		require.NoError(t, err)
		require.Zero(t, got.Cmp(a), "a=%s got=%s", a, got)
	}
}

func TestEncrypt_IsRandomized(t *testing.T) {
	enc, _ := newTestEncryptor(t, "randomized")
	a := big.NewInt(42)
	c1, err := enc.Encrypt(a)
	require.NoError(t, err)
	c2, err := enc.Encrypt(a)
	require.NoError(t, err)
	require.NotEqual(t, c1, c2)
}

func TestEncrypt_OutOfRange(t *testing.T) {
	enc, _ := newTestEncryptor(t, "range")
	_, err := enc.Encrypt(enc.MessageSpace())
	require.ErrorIs(t, err, types.ErrInvalidRange)

	_, err = enc.Encrypt(new(big.Int).Add(enc.MessageSpace(), big.NewInt(7)))
	require.ErrorIs(t, err, types.ErrInvalidRange)

	_, err = enc.Encrypt(big.NewInt(-1))
	require.ErrorIs(t, err, types.ErrInvalidRange)
}

func TestAdd_IsHomomorphic(t *testing.T) {
	enc, src := newTestEncryptor(t, "additive")
	mPrime := enc.MessageSpace()
	half := new(big.Int).Rsh(mPrime, 1)

	for i := 0; i < 100; i++ {
		a, err := numtheory.Intn(src, half)
		require.NoError(t, err)
		b, err := numtheory.Intn(src, half)
		require.NoError(t, err)

		ca, err := enc.Encrypt(a)
		require.NoError(t, err)
		cb, err := enc.Encrypt(b)
		require.NoError(t, err)
		sum, err := enc.Add(ca, cb)
		require.NoError(t, err)

		got, err := enc.Decrypt(sum)
		require.NoError(t, err)
		require.Zero(t, got.Cmp(new(big.Int).Add(a, b)), "a=%s b=%s", a, b)
	}
}

func TestAdd_WrapsModMessageSpace(t *testing.T) {
	enc, _ := newTestEncryptor(t, "wrap")
	mPrime := enc.MessageSpace()
	a := new(big.Int).Sub(mPrime, big.NewInt(3))
	b := big.NewInt(10)

	ca, err := enc.Encrypt(a)
	require.NoError(t, err)
	cb, err := enc.Encrypt(b)
	require.NoError(t, err)
	sum, err := enc.Add(ca, cb)
	require.NoError(t, err)

	got, err := enc.Decrypt(sum)
	require.NoError(t, err)
	require.Equal(t, int64(7), got.Int64())
}

func TestSum_ManyCiphertexts(t *testing.T) {
	enc, _ := newTestEncryptor(t, "sum")
	var cts []Ciphertext
	want := int64(0)
	for v := int64(0); v < 52; v++ {
		ct, err := enc.Encrypt(big.NewInt(v * 1000))
		require.NoError(t, err)
		cts = append(cts, ct)
		want += v * 1000
	}
	sum, err := enc.Sum(cts...)
	require.NoError(t, err)
	got, err := enc.Decrypt(sum)
	require.NoError(t, err)
	require.Equal(t, want, got.Int64())

	empty, err := enc.Sum()
	require.NoError(t, err)
	got, err = enc.Decrypt(empty)
	require.NoError(t, err)
	require.Zero(t, got.Sign())

	_, err = enc.Add(Ciphertext{}, sum)
	require.ErrorIs(t, err, types.ErrInvalidRequest)
}

func TestNewEncryptorWithParams_SharesKey(t *testing.T) {
	enc, src := newTestEncryptor(t, "shared")
	other, err := NewEncryptorWithParams(src, enc.params)
	require.NoError(t, err)

	ct, err := enc.Encrypt(big.NewInt(123456))
	require.NoError(t, err)
	got, err := other.Decrypt(ct)
	require.NoError(t, err)
	require.Equal(t, int64(123456), got.Int64())

	_, err = enc.Decrypt(Ciphertext{})
	require.ErrorIs(t, err, types.ErrInvalidRequest)
}

func FuzzAdditivity(f *testing.F) {
	enc, _ := newTestEncryptor(f, "fuzz")
	mPrime := enc.MessageSpace()

	f.Add(uint64(0), uint64(0))
	f.Add(uint64(1), uint64(65535))
	f.Add(uint64(65536), uint64(1<<40))
	f.Add(^uint64(0), ^uint64(0))

	f.Fuzz(func(t *testing.T, x, y uint64) {
		a := new(big.Int).Mod(new(big.Int).SetUint64(x), mPrime)
		b := new(big.Int).Mod(new(big.Int).SetUint64(y), mPrime)

		ca, err := enc.Encrypt(a)
		if err != nil {
			t.Fatalf("encrypt a: %v", err)
		}
		cb, err := enc.Encrypt(b)
		if err != nil {
			t.Fatalf("encrypt b: %v", err)
		}
		sum, err := enc.Add(ca, cb)
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		got, err := enc.Decrypt(sum)
		if err != nil {
			t.Fatalf("decrypt: %v", err)
		}

		want := new(big.Int).Add(a, b)
		want.Mod(want, mPrime)
		if got.Cmp(want) != 0 {
			t.Errorf("(%s + %s) mod %s: got %s, want %s", a, b, mPrime, got, want)
		}
	})
}
