// Package cardmatrix implements the masked card matrix of the "Practical"
// Mental Poker variant. Each of the 52 rows holds one card value at a random
// column; every entry is padded with a random multiple of a prime so that only
// a holder of the prime can read which entry is the card.
package cardmatrix

import (
	"io"
	"math/big"

	errorsmod "cosmossdk.io/errors"

	"github.com/whh34/CryptoFinal/internal/cards"
	"github.com/whh34/CryptoFinal/internal/numtheory"
	"github.com/whh34/CryptoFinal/internal/types"
)

// minPrime is the smallest modulus that keeps every card value 1..52 nonzero.
const minPrime = types.DeckSize + 1

// Matrix is a 52x52 masked card matrix under modulus Prime.
type Matrix struct {
	prime   *big.Int
	entries [types.DeckSize][types.DeckSize]*big.Int
}

// Build shuffles the 52 card values into rows, places each at a random column
// and masks every entry with p*random[0,p). Primes below 53 are raised to 53.
func Build(src io.Reader, p *big.Int) (*Matrix, error) {
	prime := new(big.Int).Set(p)
	if prime.Cmp(big.NewInt(minPrime)) < 0 {
		prime.SetInt64(minPrime)
	}

	deck := cards.NewDeck()
	if err := numtheory.Permute(src, len(deck), deck); err != nil {
		return nil, err
	}

	m := &Matrix{prime: prime}
	for row := range m.entries {
		for col := range m.entries[row] {
			m.entries[row][col] = new(big.Int)
		}
		col, err := numtheory.Index(src, types.DeckSize)
		if err != nil {
			return nil, err
		}
		m.entries[row][col].SetInt64(deck[row].Value())
	}
	if err := m.mask(src); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Matrix) mask(src io.Reader) error {
	pad := new(big.Int)
	for row := range m.entries {
		for _, e := range m.entries[row] {
			k, err := numtheory.Intn(src, m.prime)
			if err != nil {
				return err
			}
			e.Add(e, pad.Mul(m.prime, k))
		}
	}
	return nil
}

// GetCard returns the card in row: the unique entry with a nonzero residue.
func (m *Matrix) GetCard(row int) (cards.Card, error) {
	v, err := m.residue(row)
	if err != nil {
		return 0, err
	}
	if v.IsInt64() {
		if c, ok := cards.FromValue(v.Int64()); ok {
			return c, nil
		}
	}
	return 0, errorsmod.Wrapf(types.ErrInvalidRequest, "row %d holds non-card value %s", row, v)
}

func (m *Matrix) residue(row int) (*big.Int, error) {
	if row < 0 || row >= types.DeckSize {
		return nil, errorsmod.Wrapf(types.ErrInvalidRequest, "row %d out of range", row)
	}
	var found *big.Int
	r := new(big.Int)
	for col, e := range m.entries[row] {
		if r.Mod(e, m.prime).Sign() == 0 {
			continue
		}
		if found != nil {
			return nil, errorsmod.Wrapf(types.ErrInvalidRequest, "row %d has a second nonzero residue at column %d", row, col)
		}
		found = new(big.Int).Set(r)
	}
	if found == nil {
		return nil, errorsmod.Wrapf(types.ErrInvalidRequest, "row %d has no nonzero residue", row)
	}
	return found, nil
}

// Transform strips the current masking and re-masks under newPrime. The card
// in every row is unchanged.
func (m *Matrix) Transform(src io.Reader, newPrime *big.Int) error {
	if newPrime.Cmp(big.NewInt(minPrime)) < 0 {
		return errorsmod.Wrapf(types.ErrDegenerateInput, "prime %s cannot hold %d card values", newPrime, types.DeckSize)
	}
	for row := range m.entries {
		for _, e := range m.entries[row] {
			e.Mod(e, m.prime)
		}
	}
	m.prime = new(big.Int).Set(newPrime)
	return m.mask(src)
}

// Cards returns the card of every row, in row order.
func (m *Matrix) Cards() ([]cards.Card, error) {
	out := make([]cards.Card, types.DeckSize)
	for row := range out {
		c, err := m.GetCard(row)
		if err != nil {
			return nil, err
		}
		out[row] = c
	}
	return out, nil
}

// Equal reports whether a and b hold the same card in every row, ignoring
// masking randomness.
func Equal(a, b *Matrix) bool {
	for row := 0; row < types.DeckSize; row++ {
		ca, errA := a.GetCard(row)
		cb, errB := b.GetCard(row)
		if errA != nil || errB != nil || ca != cb {
			return false
		}
	}
	return true
}

// Prime returns the current masking modulus.
func (m *Matrix) Prime() *big.Int {
	return new(big.Int).Set(m.prime)
}

// Entry returns a copy of the raw masked entry.
func (m *Matrix) Entry(row, col int) *big.Int {
	return new(big.Int).Set(m.entries[row][col])
}
