package cardmatrix

import (
	"math/big"

	errorsmod "cosmossdk.io/errors"

	"github.com/whh34/CryptoFinal/internal/cards"
	"github.com/whh34/CryptoFinal/internal/homomorphic"
	"github.com/whh34/CryptoFinal/internal/types"
)

// Encrypted is a card matrix with every masked entry encrypted under one
// homomorphic encryptor.
type Encrypted struct {
	prime *big.Int
	cells [types.DeckSize][types.DeckSize]homomorphic.Ciphertext
}

// EncryptEntries encrypts every masked entry of m. The masked entries are
// below prime^2, so the encryptor's message space must exceed 52*prime^2 for
// row sums to stay exact.
func (m *Matrix) EncryptEntries(enc *homomorphic.Encryptor) (*Encrypted, error) {
	if need := rowSumBound(m.prime); need.Cmp(enc.MessageSpace()) > 0 {
		return nil, errorsmod.Wrapf(types.ErrInvalidRange, "row sums reach %s, message space is %s", need, enc.MessageSpace())
	}
	out := &Encrypted{prime: new(big.Int).Set(m.prime)}
	for row := range m.entries {
		for col, e := range m.entries[row] {
			ct, err := enc.Encrypt(e)
			if err != nil {
				return nil, err
			}
			out.cells[row][col] = ct
		}
	}
	return out, nil
}

// rowSumBound is 52*prime^2, above any sum of one row's masked entries.
func rowSumBound(prime *big.Int) *big.Int {
	b := new(big.Int).Mul(prime, prime)
	return b.Mul(b, big.NewInt(types.DeckSize))
}

// Cell returns the ciphertext at (row, col).
func (x *Encrypted) Cell(row, col int) homomorphic.Ciphertext {
	return x.cells[row][col]
}

// RowCard adds a row's ciphertexts homomorphically and decrypts only the sum.
// Every non-card entry is a multiple of the prime, so the sum reduces to the
// card value.
func (x *Encrypted) RowCard(enc *homomorphic.Encryptor, row int) (cards.Card, error) {
	if row < 0 || row >= types.DeckSize {
		return 0, errorsmod.Wrapf(types.ErrInvalidRequest, "row %d out of range", row)
	}
	sum, err := enc.Sum(x.cells[row][:]...)
	if err != nil {
		return 0, err
	}
	v, err := enc.Decrypt(sum)
	if err != nil {
		return 0, err
	}
	v.Mod(v, x.prime)
	if v.IsInt64() {
		if c, ok := cards.FromValue(v.Int64()); ok {
			return c, nil
		}
	}
	return 0, errorsmod.Wrapf(types.ErrInvalidRequest, "row %d sums to non-card value %s", row, v)
}

// Decrypt recovers the masked plaintext matrix.
func (x *Encrypted) Decrypt(enc *homomorphic.Encryptor) (*Matrix, error) {
	m := &Matrix{prime: new(big.Int).Set(x.prime)}
	for row := range x.cells {
		for col, ct := range x.cells[row] {
			v, err := enc.Decrypt(ct)
			if err != nil {
				return nil, err
			}
			m.entries[row][col] = v
		}
	}
	return m, nil
}
