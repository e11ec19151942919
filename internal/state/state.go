package state

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"math/big"
	"os"
	"path/filepath"

	"cosmossdk.io/math"
	"golang.org/x/crypto/sha3"

	"github.com/whh34/CryptoFinal/internal/numtheory"
	"github.com/whh34/CryptoFinal/internal/sra"
	"github.com/whh34/CryptoFinal/internal/types"
)

const (
	FileName       = "session.json"
	CurrentVersion = 1
)

var fingerprintPrefix = []byte("mentalpoker|session|v1|")

// SessionFile is the agreed setup of a Fast variant session: the field, the
// factorization of field-1 and the canonical card encodings. Player secrets
// are never part of it.
type SessionFile struct {
	Version     int        `json:"version"`
	Field       math.Int   `json:"field"`
	Factors     []FactorKV `json:"factors"`
	Encoding    []math.Int `json:"encoding"`
	Fingerprint string     `json:"fingerprint,omitempty"`
}

type FactorKV struct {
	Prime    math.Int `json:"prime"`
	Exponent int      `json:"exponent"`
}

// FromSession captures the setup of an encoded session.
func FromSession(s *sra.Session) (*SessionFile, error) {
	if s.Phase() < sra.PhaseDeckEncoded {
		return nil, fmt.Errorf("session not encoded (phase %s)", s.Phase())
	}
	f := &SessionFile{
		Version: CurrentVersion,
		Field:   math.NewIntFromBigInt(s.Field()),
	}
	for _, fac := range s.Factors() {
		f.Factors = append(f.Factors, FactorKV{Prime: math.NewIntFromBigInt(fac.Prime), Exponent: fac.Exponent})
	}
	for _, g := range s.Encoding() {
		f.Encoding = append(f.Encoding, math.NewIntFromBigInt(g))
	}
	f.Fingerprint = hex.EncodeToString(f.Hash())
	return f, nil
}

// Restore validates the file and rebuilds an encoded session from it.
func (f *SessionFile) Restore(params types.Params) (*sra.Session, error) {
	if f.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported session version %d", f.Version)
	}
	if f.Field.IsNil() {
		return nil, fmt.Errorf("session has no field")
	}
	factors := make([]numtheory.Factor, 0, len(f.Factors))
	for i, kv := range f.Factors {
		if kv.Prime.IsNil() {
			return nil, fmt.Errorf("factor %d is empty", i)
		}
		factors = append(factors, numtheory.Factor{Prime: kv.Prime.BigInt(), Exponent: kv.Exponent})
	}
	encoding := make([]*big.Int, 0, len(f.Encoding))
	for i, g := range f.Encoding {
		if g.IsNil() {
			return nil, fmt.Errorf("encoding %d is empty", i)
		}
		encoding = append(encoding, g.BigInt())
	}
	return sra.Restore(params, f.Field.BigInt(), factors, encoding)
}

// Hash is a sha3-256 digest over a length-prefixed, ordered view of the
// setup, so two players can compare setups by fingerprint.
func (f *SessionFile) Hash() []byte {
	h := sha3.New256()
	h.Write(fingerprintPrefix)
	writeInt(h, f.Field)
	writeLen(h, len(f.Factors))
	for _, kv := range f.Factors {
		writeInt(h, kv.Prime)
		writeLen(h, kv.Exponent)
	}
	writeLen(h, len(f.Encoding))
	for _, g := range f.Encoding {
		writeInt(h, g)
	}
	return h.Sum(nil)
}

func writeLen(h hash.Hash, n int) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(n))
	h.Write(b[:])
}

func writeInt(h hash.Hash, v math.Int) {
	var b []byte
	if !v.IsNil() {
		b = v.BigInt().Bytes()
	}
	writeLen(h, len(b))
	h.Write(b)
}

func Load(home string) (*SessionFile, error) {
	path := filepath.Join(home, FileName)
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var f SessionFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if f.Fingerprint != "" {
		if want := hex.EncodeToString(f.Hash()); want != f.Fingerprint {
			return nil, fmt.Errorf("session fingerprint mismatch: file %s, computed %s", f.Fingerprint, want)
		}
	}
	return &f, nil
}

func (f *SessionFile) Save(home string) error {
	if err := os.MkdirAll(home, 0o755); err != nil {
		return fmt.Errorf("mkdir home: %w", err)
	}
	f.Fingerprint = hex.EncodeToString(f.Hash())
	path := filepath.Join(home, FileName)
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}
