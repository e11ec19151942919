package numtheory

import (
	"math/big"

	errorsmod "cosmossdk.io/errors"

	"github.com/whh34/CryptoFinal/internal/types"
)

// Factor is a prime power p^e dividing some integer.
type Factor struct {
	Prime    *big.Int `json:"prime"`
	Exponent int      `json:"exponent"`
}

// PrimeFactorization factors n by trial division below
// 10^(floor(log10 n)/2 + 1). The search also ends once the divisor squared
// passes the unfactored part, which is then prime. It is only practical for
// n up to about 2^48 (see types.MaxFieldBytes).
func PrimeFactorization(n *big.Int) ([]Factor, error) {
	if n.Cmp(two) < 0 {
		return nil, errorsmod.Wrapf(types.ErrDegenerateInput, "cannot factor %s", n)
	}
	if IsPrime(n) {
		return []Factor{{Prime: new(big.Int).Set(n), Exponent: 1}}, nil
	}

	digits := len(n.String()) - 1 // floor(log10 n)
	bound := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits/2+1)), nil)

	rest := new(big.Int).Set(n)
	var factors []Factor
	q, r, sq := new(big.Int), new(big.Int), new(big.Int)
	// Composite divisors never divide rest: their prime factors are gone by
	// the time they are reached.
	for i := big.NewInt(2); i.Cmp(bound) < 0 && rest.Cmp(one) > 0; i.Add(i, one) {
		if sq.Mul(i, i).Cmp(rest) > 0 {
			break
		}
		e := 0
		for {
			q.QuoRem(rest, i, r)
			if r.Sign() != 0 {
				break
			}
			rest.Set(q)
			e++
		}
		if e > 0 {
			factors = append(factors, Factor{Prime: new(big.Int).Set(i), Exponent: e})
		}
	}
	if rest.Cmp(one) > 0 {
		factors = append(factors, Factor{Prime: rest, Exponent: 1})
	}
	return factors, nil
}

// Product multiplies the factors back together.
func Product(factors []Factor) *big.Int {
	out := big.NewInt(1)
	pe := new(big.Int)
	for _, f := range factors {
		pe.Exp(f.Prime, big.NewInt(int64(f.Exponent)), nil)
		out.Mul(out, pe)
	}
	return out
}
