package numtheory

import (
	"math/big"

	errorsmod "cosmossdk.io/errors"

	"github.com/whh34/CryptoFinal/internal/types"
)

// IsPrimitiveRoot applies the Lucas criterion: g generates Z_field^* iff
// g^((field-1)/q) != 1 mod field for every prime q dividing field-1.
func IsPrimitiveRoot(g, field *big.Int, factors []Factor) bool {
	if g.Cmp(two) < 0 || g.Cmp(field) >= 0 {
		return false
	}
	order := new(big.Int).Sub(field, one)
	e := new(big.Int)
	v := new(big.Int)
	for _, f := range factors {
		e.Quo(order, f.Prime)
		if v.Exp(g, e, field).Cmp(one) == 0 {
			return false
		}
	}
	return true
}

// PrimitiveRoots returns the first count primitive roots of field in
// ascending order. factors must be the full factorization of field-1.
func PrimitiveRoots(field *big.Int, factors []Factor, count int) ([]*big.Int, error) {
	if count <= 0 {
		return nil, nil
	}
	if field.Cmp(three) < 0 {
		return nil, errorsmod.Wrapf(types.ErrDegenerateInput, "field %s has no primitive roots >= 2", field)
	}
	order := new(big.Int).Sub(field, one)
	if Product(factors).Cmp(order) != 0 {
		return nil, errorsmod.Wrapf(types.ErrInvalidRequest, "factors do not multiply to %s", order)
	}

	roots := make([]*big.Int, 0, count)
	for g := big.NewInt(2); g.Cmp(field) < 0; g.Add(g, one) {
		if !IsPrimitiveRoot(g, field, factors) {
			continue
		}
		roots = append(roots, new(big.Int).Set(g))
		if len(roots) == count {
			return roots, nil
		}
	}
	return roots, errorsmod.Wrapf(types.ErrDegenerateInput, "field %s has only %d primitive roots, need %d", field, len(roots), count)
}
