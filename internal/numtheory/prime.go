// Package numtheory is the number-theoretic engine shared by the card schemes:
// primality, extended Euclid, factorization, primitive roots and secure
// permutations over math/big integers.
package numtheory

import (
	"io"
	"math/big"

	errorsmod "cosmossdk.io/errors"

	"github.com/whh34/CryptoFinal/internal/types"
)

const (
	// millerRabinWitnesses gives roughly a 10^-60 false positive rate.
	millerRabinWitnesses = 100

	// smallPrimeLimit is 256^3; below it trial division is exact and cheap.
	smallPrimeLimit = 1 << 24
)

var (
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
)

// IsPrime reports whether n is prime, drawing Miller-Rabin witnesses from the
// secure source.
func IsPrime(n *big.Int) bool {
	ok, err := IsPrimeWith(SecureSource(), n)
	if err != nil {
		// crypto/rand does not return errors on supported platforms.
		panic(err)
	}
	return ok
}

// IsPrimeWith is IsPrime with an explicit witness source.
func IsPrimeWith(src io.Reader, n *big.Int) (bool, error) {
	if n.Sign() <= 0 {
		return false, nil
	}
	if n.Cmp(big.NewInt(smallPrimeLimit)) < 0 {
		return isSmallPrime(n.Uint64()), nil
	}

	// Witnesses in [2, n-2].
	hi := new(big.Int).Sub(n, one)
	for i := 0; i < millerRabinWitnesses; i++ {
		a, err := IntRange(src, two, hi)
		if err != nil {
			return false, err
		}
		if isCompositeWitness(n, a) {
			return false, nil
		}
	}
	return true, nil
}

// isSmallPrime is trial division with a 6k±1 wheel.
func isSmallPrime(n uint64) bool {
	switch {
	case n < 2:
		return false
	case n < 4:
		return true
	case n%2 == 0 || n%3 == 0:
		return false
	}
	for f := uint64(5); f*f <= n; f += 6 {
		if n%f == 0 || n%(f+2) == 0 {
			return false
		}
	}
	return true
}

// isCompositeWitness reports whether a proves n composite.
func isCompositeWitness(n, a *big.Int) bool {
	if n.Bit(0) == 0 {
		return true
	}
	g := new(big.Int).GCD(nil, nil, n, a)
	if g.Cmp(one) > 0 && g.Cmp(n) < 0 {
		return true
	}

	nm1 := new(big.Int).Sub(n, one)
	q := new(big.Int).Set(nm1)
	k := 0
	for q.Bit(0) == 0 {
		q.Rsh(q, 1)
		k++
	}

	x := new(big.Int).Exp(a, q, n)
	if x.Cmp(one) == 0 {
		return false
	}
	for i := 0; i < k; i++ {
		if x.Cmp(nm1) == 0 {
			return false
		}
		x.Mul(x, x).Mod(x, n)
	}
	return true
}

// NextPrime returns the first prime >= start, testing at most maxCandidates
// odd candidates.
func NextPrime(src io.Reader, start *big.Int, maxCandidates int) (*big.Int, error) {
	if start.Cmp(two) <= 0 {
		return big.NewInt(2), nil
	}
	c := new(big.Int).Set(start)
	c.SetBit(c, 0, 1)
	for i := 0; i < maxCandidates; i++ {
		ok, err := IsPrimeWith(src, c)
		if err != nil {
			return nil, err
		}
		if ok {
			return c, nil
		}
		c.Add(c, two)
	}
	return nil, errorsmod.Wrapf(types.ErrRetryExhausted, "no prime within %d candidates of %s", maxCandidates, start)
}

// RandomPrime samples byteSize random bytes and increments to the next prime.
func RandomPrime(src io.Reader, byteSize, maxCandidates int) (*big.Int, error) {
	if byteSize < 1 {
		return nil, errorsmod.Wrapf(types.ErrDegenerateInput, "prime byte size %d", byteSize)
	}
	b, err := Bytes(src, byteSize)
	if err != nil {
		return nil, err
	}
	start := new(big.Int).SetBytes(b)
	start.SetBit(start, 0, 1)
	if start.Cmp(three) < 0 {
		start.Set(three)
	}
	return NextPrime(src, start, maxCandidates)
}
