package sra

import (
	"fmt"
	"io"
	"math/big"

	errorsmod "cosmossdk.io/errors"
	"github.com/cronokirby/saferith"

	"github.com/whh34/CryptoFinal/internal/numtheory"
	"github.com/whh34/CryptoFinal/internal/types"
)

// Secret is one player's private exponent for one shuffle round. It is never
// serialized; call Destroy once the round is over.
type Secret struct {
	field *big.Int
	x     *big.Int
	xInv  *big.Int // x^-1 mod (field-1)

	modulus *saferith.Modulus
	enc     *saferith.Nat
	dec     *saferith.Nat
}

// NewPlayerSecret draws x in [1, field) with gcd(x, field-1) = 1, so the layer
// it adds can later be removed with x^-1 mod (field-1).
func NewPlayerSecret(src io.Reader, field *big.Int, maxRetries int) (*Secret, error) {
	if field == nil || field.Cmp(big.NewInt(3)) < 0 {
		return nil, errorsmod.Wrapf(types.ErrDegenerateInput, "field %v", field)
	}
	order := new(big.Int).Sub(field, big.NewInt(1))
	for i := 0; i < maxRetries; i++ {
		x, err := numtheory.IntRange(src, big.NewInt(1), field)
		if err != nil {
			return nil, err
		}
		xInv, err := numtheory.ModInverse(x, order)
		if err != nil {
			continue
		}
		m := modulusOf(field)
		return &Secret{
			field:   new(big.Int).Set(field),
			x:       x,
			xInv:    xInv,
			modulus: m,
			enc:     new(saferith.Nat).SetBig(x, m.BitLen()),
			dec:     new(saferith.Nat).SetBig(xInv, m.BitLen()),
		}, nil
	}
	return nil, errorsmod.Wrapf(types.ErrRetryExhausted, "no exponent coprime to %s in %d draws", order, maxRetries)
}

// Encrypt returns v^x mod field.
func (s *Secret) Encrypt(v *big.Int) (*big.Int, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	return expMod(v, s.enc, s.modulus, s.field), nil
}

// Decrypt returns v^(x^-1) mod field, undoing Encrypt regardless of which
// other layers were applied before or after it.
func (s *Secret) Decrypt(v *big.Int) (*big.Int, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	return expMod(v, s.dec, s.modulus, s.field), nil
}

// Field returns the prime this secret was drawn for.
func (s *Secret) Field() *big.Int {
	return new(big.Int).Set(s.field)
}

// Destroy wipes the exponent. The secret is unusable afterwards.
func (s *Secret) Destroy() {
	if s == nil {
		return
	}
	wipe(s.x)
	wipe(s.xInv)
	// Fields fit one limb (types.MaxFieldBytes), so this overwrites the
	// whole exponent.
	if s.enc != nil {
		s.enc.SetUint64(0)
	}
	if s.dec != nil {
		s.dec.SetUint64(0)
	}
	s.x, s.xInv = nil, nil
	s.enc, s.dec = nil, nil
}

func (s *Secret) usable() error {
	if s == nil || s.x == nil {
		return fmt.Errorf("secret destroyed")
	}
	return nil
}

func wipe(v *big.Int) {
	if v == nil {
		return
	}
	clear(v.Bits())
	v.SetInt64(0)
}

func modulusOf(field *big.Int) *saferith.Modulus {
	return saferith.ModulusFromNat(new(saferith.Nat).SetBig(field, field.BitLen()))
}

// expMod runs in time independent of the exponent's value.
func expMod(v *big.Int, e *saferith.Nat, m *saferith.Modulus, field *big.Int) *big.Int {
	base := new(big.Int).Mod(v, field)
	b := new(saferith.Nat).SetBig(base, m.BitLen())
	return new(saferith.Nat).Exp(b, e, m).Big()
}
