// Package homomorphic implements an additive secret-splitting encryptor. A
// plaintext a < m' is split into three randomized shares, each hidden by a
// random multiple of m' and scaled by a power of a secret unit r mod m.
// Component-wise addition of ciphertexts decrypts to the sum of plaintexts
// mod m'.
package homomorphic

import (
	"fmt"
	"io"
	"math/big"

	errorsmod "cosmossdk.io/errors"

	"github.com/whh34/CryptoFinal/internal/numtheory"
	"github.com/whh34/CryptoFinal/internal/types"
)

// Shares is the number of components in a ciphertext.
const Shares = 3

var (
	modulusLowerBound = new(big.Int).Exp(big.NewInt(10), big.NewInt(100), nil)
	modulusUpperBound = new(big.Int).Exp(big.NewInt(10), big.NewInt(200), nil)

	// tinyBound is 256^2; smaller plaintexts take the small split path.
	tinyBound = big.NewInt(1 << 16)

	minMultiplier = big.NewInt(2)
	maxMultiplier = big.NewInt(1 << 16)
	hideBound     = big.NewInt(256)
)

const rBytes = 5

// Params are the parameters of one encryptor instance: the ciphertext modulus
// M, the plaintext bound MPrime and the secret unit R with RInv = R^-1 mod M.
type Params struct {
	M      *big.Int
	MPrime *big.Int
	R      *big.Int
	RInv   *big.Int
}

// Ciphertext holds Shares residues mod M.
type Ciphertext [Shares]*big.Int

// GenerateParams multiplies random 2-byte factors into M until it exceeds
// 10^100, keeps the product of the last three factors as MPrime, and draws R
// until it is invertible mod M (at most maxRetries draws).
func GenerateParams(src io.Reader, maxRetries int) (Params, error) {
	m := big.NewInt(1)
	var last [Shares]*big.Int
	for m.Cmp(modulusLowerBound) <= 0 {
		f, err := numtheory.IntRange(src, minMultiplier, maxMultiplier)
		if err != nil {
			return Params{}, err
		}
		m.Mul(m, f)
		last[2], last[1], last[0] = last[1], last[0], f
	}
	if m.Cmp(modulusUpperBound) >= 0 {
		return Params{}, fmt.Errorf("modulus overshot 10^200")
	}
	mPrime := new(big.Int).Mul(last[0], last[1])
	mPrime.Mul(mPrime, last[2])

	for i := 0; i < maxRetries; i++ {
		b, err := numtheory.Bytes(src, rBytes)
		if err != nil {
			return Params{}, err
		}
		r := new(big.Int).SetBytes(b)
		x, _, g := numtheory.ExtendedGCD(r, m)
		if g.Cmp(big.NewInt(1)) != 0 {
			continue
		}
		return Params{M: m, MPrime: mPrime, R: r, RInv: x.Mod(x, m)}, nil
	}
	return Params{}, errorsmod.Wrapf(types.ErrRetryExhausted, "no unit mod M in %d draws", maxRetries)
}

// Validate checks the parameter invariants an encryptor relies on.
func (p Params) Validate() error {
	if p.M == nil || p.MPrime == nil || p.R == nil || p.RInv == nil {
		return fmt.Errorf("params: missing value")
	}
	if p.MPrime.Sign() <= 0 || p.M.Cmp(p.MPrime) <= 0 {
		return fmt.Errorf("params: need 0 < MPrime < M")
	}
	check := new(big.Int).Mul(p.R, p.RInv)
	if check.Mod(check, p.M).Cmp(big.NewInt(1)) != 0 {
		return fmt.Errorf("params: R*RInv != 1 mod M")
	}
	return nil
}

// Encryptor encrypts and decrypts under one fixed Params.
type Encryptor struct {
	src    io.Reader
	params Params

	rPow    [Shares]*big.Int // r^(t+1) mod m
	rInvPow [Shares]*big.Int // r^-(t+1) mod m
}

// NewEncryptor generates fresh parameters.
func NewEncryptor(src io.Reader, params types.Params) (*Encryptor, error) {
	p, err := GenerateParams(src, params.MaxInverseRetries)
	if err != nil {
		return nil, err
	}
	return NewEncryptorWithParams(src, p)
}

// NewEncryptorWithParams builds an encryptor over existing parameters, for
// example to decrypt ciphertexts produced by another instance.
func NewEncryptorWithParams(src io.Reader, p Params) (*Encryptor, error) {
	if err := p.Validate(); err != nil {
		return nil, errorsmod.Wrap(types.ErrInvalidRequest, err.Error())
	}
	e := &Encryptor{
		src: src,
		params: Params{
			M:      new(big.Int).Set(p.M),
			MPrime: new(big.Int).Set(p.MPrime),
			R:      new(big.Int).Set(p.R),
			RInv:   new(big.Int).Set(p.RInv),
		},
	}
	for t := 0; t < Shares; t++ {
		exp := big.NewInt(int64(t + 1))
		e.rPow[t] = new(big.Int).Exp(p.R, exp, p.M)
		e.rInvPow[t] = new(big.Int).Exp(p.RInv, exp, p.M)
	}
	return e, nil
}

// Modulus returns M.
func (e *Encryptor) Modulus() *big.Int {
	return new(big.Int).Set(e.params.M)
}

// MessageSpace returns MPrime; plaintexts must lie in [0, MPrime).
func (e *Encryptor) MessageSpace() *big.Int {
	return new(big.Int).Set(e.params.MPrime)
}

// Encrypt splits a into three shares, hides each with a random multiple of
// MPrime and scales share t by r^(t+1) mod M.
func (e *Encryptor) Encrypt(a *big.Int) (Ciphertext, error) {
	if a.Sign() < 0 || a.Cmp(e.params.MPrime) >= 0 {
		return Ciphertext{}, errorsmod.Wrapf(types.ErrInvalidRange, "plaintext %s not in [0,%s)", a, e.params.MPrime)
	}
	parts, err := e.split(a)
	if err != nil {
		return Ciphertext{}, err
	}
	var ct Ciphertext
	hide := new(big.Int)
	for t, v := range parts {
		k, err := numtheory.Intn(e.src, hideBound)
		if err != nil {
			return Ciphertext{}, err
		}
		v.Add(v, hide.Mul(k, e.params.MPrime))
		ct[t] = v.Mul(v, e.rPow[t]).Mod(v, e.params.M)
	}
	return ct, nil
}

// split returns nonnegative (i, j, k) with i+j+k = a.
func (e *Encryptor) split(a *big.Int) ([Shares]*big.Int, error) {
	if a.Cmp(tinyBound) < 0 {
		return e.tinySplit(a)
	}

	// i < 256^(size-1) <= a/256 and j < 256^size' <= a-i keep every part
	// nonnegative.
	size := (a.BitLen() - 1) / 8
	b, err := numtheory.Bytes(e.src, size-1)
	if err != nil {
		return [Shares]*big.Int{}, err
	}
	i := new(big.Int).SetBytes(b)
	rest := new(big.Int).Sub(a, i)

	b, err = numtheory.Bytes(e.src, (rest.BitLen()-1)/8)
	if err != nil {
		return [Shares]*big.Int{}, err
	}
	j := new(big.Int).SetBytes(b)
	k := rest.Sub(rest, j)
	return [Shares]*big.Int{i, j, k}, nil
}

// tinySplit cuts a < 256^2 at two uniform points.
func (e *Encryptor) tinySplit(a *big.Int) ([Shares]*big.Int, error) {
	c1, err := numtheory.Intn(e.src, new(big.Int).Add(a, big.NewInt(1)))
	if err != nil {
		return [Shares]*big.Int{}, err
	}
	i := new(big.Int).Sub(a, c1)
	c2, err := numtheory.Intn(e.src, new(big.Int).Add(c1, big.NewInt(1)))
	if err != nil {
		return [Shares]*big.Int{}, err
	}
	j := new(big.Int).Sub(c1, c2)
	return [Shares]*big.Int{i, j, c2}, nil
}

// Decrypt unscales every share, sums them and reduces mod MPrime.
func (e *Encryptor) Decrypt(ct Ciphertext) (*big.Int, error) {
	sum := new(big.Int)
	v := new(big.Int)
	for t, share := range ct {
		if share == nil {
			return nil, errorsmod.Wrapf(types.ErrInvalidRequest, "ciphertext share %d missing", t)
		}
		v.Mul(share, e.rInvPow[t]).Mod(v, e.params.M)
		sum.Add(sum, v)
	}
	return sum.Mod(sum, e.params.MPrime), nil
}

// Add combines two ciphertexts component-wise mod M. Both must come from
// encryptors sharing the same Params.
func (e *Encryptor) Add(a, b Ciphertext) (Ciphertext, error) {
	var out Ciphertext
	for t := range out {
		if a[t] == nil || b[t] == nil {
			return Ciphertext{}, errorsmod.Wrapf(types.ErrInvalidRequest, "ciphertext share %d missing", t)
		}
		out[t] = new(big.Int).Add(a[t], b[t])
		out[t].Mod(out[t], e.params.M)
	}
	return out, nil
}

// Sum folds Add over cts. The empty sum is the all-zero ciphertext, which
// decrypts to 0.
func (e *Encryptor) Sum(cts ...Ciphertext) (Ciphertext, error) {
	acc := Ciphertext{new(big.Int), new(big.Int), new(big.Int)}
	for _, ct := range cts {
		var err error
		if acc, err = e.Add(acc, ct); err != nil {
			return Ciphertext{}, err
		}
	}
	return acc, nil
}
