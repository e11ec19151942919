package numtheory

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	errorsmod "cosmossdk.io/errors"

	"github.com/whh34/CryptoFinal/internal/types"
)

// maxSampleTries caps redraws in Intn. Each draw is accepted with probability
// above 1/2, so hitting the cap means the source is broken.
const maxSampleTries = 1_000_000

// SecureSource returns the cryptographically secure source used for all
// security-relevant randomness: primes, secrets, permutations and masking.
func SecureSource() io.Reader {
	return rand.Reader
}

// HashSource expands a seed into a reproducible byte stream: block k is
// sha256(sha256(seed) || k). Tests and benchmarks use it to replay a run; it
// must never back a real game.
type HashSource struct {
	key   [sha256.Size]byte
	block uint64
	out   [sha256.Size]byte
	used  int
}

func NewHashSource(seed []byte) (*HashSource, error) {
	if len(seed) == 0 {
		return nil, fmt.Errorf("HashSource: empty seed")
	}
	return &HashSource{key: sha256.Sum256(seed), used: sha256.Size}, nil
}

// Read always fills p.
func (r *HashSource) Read(p []byte) (int, error) {
	total := len(p)
	for len(p) > 0 {
		if r.used == len(r.out) {
			r.nextBlock()
		}
		n := copy(p, r.out[r.used:])
		r.used += n
		p = p[n:]
	}
	return total, nil
}

func (r *HashSource) nextBlock() {
	var msg [sha256.Size + 8]byte
	copy(msg[:], r.key[:])
	binary.LittleEndian.PutUint64(msg[sha256.Size:], r.block)
	r.out = sha256.Sum256(msg[:])
	r.used = 0
	r.block++
}

// Bytes reads n bytes from src.
func Bytes(src io.Reader, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("Bytes: invalid length %d", n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(src, b); err != nil {
		return nil, fmt.Errorf("read random bytes: %w", err)
	}
	return b, nil
}

// Intn draws uniformly from [0, max). A draw takes just enough bytes to cover
// max, clears the high bits above max's bit length and is redrawn while it is
// still >= max.
func Intn(src io.Reader, max *big.Int) (*big.Int, error) {
	if max == nil || max.Sign() <= 0 {
		return nil, fmt.Errorf("Intn: max must be positive, got %v", max)
	}
	if max.Cmp(one) == 0 {
		return new(big.Int), nil
	}

	bits := max.BitLen()
	buf := make([]byte, (bits+7)/8)
	top := byte(0xff) >> uint(len(buf)*8-bits)
	v := new(big.Int)
	for i := 0; i < maxSampleTries; i++ {
		if _, err := io.ReadFull(src, buf); err != nil {
			return nil, fmt.Errorf("read random bytes: %w", err)
		}
		buf[0] &= top
		if v.SetBytes(buf).Cmp(max) < 0 {
			return v, nil
		}
	}
	return nil, errorsmod.Wrapf(types.ErrRetryExhausted, "Intn: no draw below %s in %d tries", max, maxSampleTries)
}

// IntRange draws uniformly from [lo, hi).
func IntRange(src io.Reader, lo, hi *big.Int) (*big.Int, error) {
	if hi.Cmp(lo) <= 0 {
		return nil, fmt.Errorf("empty range [%s,%s)", lo, hi)
	}
	v, err := Intn(src, new(big.Int).Sub(hi, lo))
	if err != nil {
		return nil, err
	}
	return v.Add(v, lo), nil
}

// Index draws uniformly from [0, n).
func Index(src io.Reader, n int) (int, error) {
	v, err := Intn(src, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
