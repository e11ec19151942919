package numtheory

import (
	"math/big"

	errorsmod "cosmossdk.io/errors"

	"github.com/whh34/CryptoFinal/internal/types"
)

// ExtendedGCD returns (x, y, g) with a*x + b*y = g = gcd(a, b), using the
// iterative Bezout coefficient update.
func ExtendedGCD(a, b *big.Int) (x, y, g *big.Int) {
	oldS, s := big.NewInt(1), big.NewInt(0)
	oldT, t := big.NewInt(0), big.NewInt(1)
	oldR, r := new(big.Int).Set(a), new(big.Int).Set(b)

	q := new(big.Int)
	tmp := new(big.Int)
	for r.Sign() != 0 {
		q.Quo(oldR, r)

		tmp.Mul(q, r)
		oldR, r = r, new(big.Int).Sub(oldR, tmp)

		tmp.Mul(q, s)
		oldS, s = s, new(big.Int).Sub(oldS, tmp)

		tmp.Mul(q, t)
		oldT, t = t, new(big.Int).Sub(oldT, tmp)
	}
	return oldS, oldT, oldR
}

// ModInverse returns r^-1 mod m in [0, m).
func ModInverse(r, m *big.Int) (*big.Int, error) {
	if m.Sign() <= 0 {
		return nil, errorsmod.Wrapf(types.ErrInvalidRequest, "modulus must be > 0: %s", m)
	}
	x, _, g := ExtendedGCD(r, m)
	if g.CmpAbs(one) != 0 {
		return nil, errorsmod.Wrapf(types.ErrInvalidRequest, "%s is not invertible mod %s", r, m)
	}
	if g.Sign() < 0 {
		x.Neg(x)
	}
	return x.Mod(x, m), nil
}
