// Package commit produces discrete-log bit commitments c = g^secret mod p.
// Binding and hiding rest entirely on discrete-log hardness in the chosen
// field; the small default field sizes are for timing experiments.
package commit

import (
	"io"
	"math/big"

	errorsmod "cosmossdk.io/errors"

	"github.com/whh34/CryptoFinal/internal/numtheory"
	"github.com/whh34/CryptoFinal/internal/types"
)

type Commitment struct {
	P *big.Int `json:"p"`
	G *big.Int `json:"g"`
	C *big.Int `json:"c"`
}

// Commit picks a random prime of fieldBytes bytes (at most
// types.MaxFieldBytes), its smallest primitive root g, and returns
// (p, g, g^secret mod p).
func Commit(src io.Reader, secret *big.Int, fieldBytes int, params types.Params) (Commitment, error) {
	if secret == nil || secret.Sign() < 0 {
		return Commitment{}, errorsmod.Wrapf(types.ErrInvalidRange, "secret must be >= 0")
	}
	if err := types.CheckFieldBytes(fieldBytes); err != nil {
		return Commitment{}, err
	}
	p, err := numtheory.RandomPrime(src, fieldBytes, params.MaxPrimeCandidates)
	if err != nil {
		return Commitment{}, err
	}
	factors, err := numtheory.PrimeFactorization(new(big.Int).Sub(p, big.NewInt(1)))
	if err != nil {
		return Commitment{}, err
	}
	roots, err := numtheory.PrimitiveRoots(p, factors, 1)
	if err != nil {
		return Commitment{}, err
	}
	g := roots[0]
	return Commitment{P: p, G: g, C: new(big.Int).Exp(g, secret, p)}, nil
}

// Verify opens the commitment against secret.
func Verify(c Commitment, secret *big.Int) bool {
	if c.P == nil || c.G == nil || c.C == nil || secret == nil || secret.Sign() < 0 || c.P.Sign() <= 0 {
		return false
	}
	return new(big.Int).Exp(c.G, secret, c.P).Cmp(c.C) == 0
}
