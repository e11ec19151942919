package cmd

import (
	"fmt"
	"io"
	"math/big"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/whh34/CryptoFinal/internal/cardmatrix"
	"github.com/whh34/CryptoFinal/internal/cards"
	"github.com/whh34/CryptoFinal/internal/homomorphic"
	"github.com/whh34/CryptoFinal/internal/numtheory"
	"github.com/whh34/CryptoFinal/internal/types"
)

// minMatrixPrime is the smallest prime that can carry all 52 card values.
var minMatrixPrime = big.NewInt(types.DeckSize + 1)

func newPracticalCmd(cfg *appConfig) *cobra.Command {
	var (
		transforms int
		encrypted  bool
	)
	c := &cobra.Command{
		Use:   "practical",
		Short: "Build a masked card matrix, re-mask it under fresh primes and read the cards back",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if transforms < 0 {
				return fmt.Errorf("--transforms must be >= 0, got %d", transforms)
			}
			src, err := cfg.Source()
			if err != nil {
				return err
			}
			dealt, err := practicalRound(src, cfg.Params, transforms, encrypted)
			if err != nil {
				return err
			}
			cfg.Logger.Info("matrix verified", "transforms", transforms, "encrypted", encrypted)

			names := make([]string, len(dealt))
			for i, c := range dealt {
				names[i] = c.String()
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, " "))
			return nil
		},
	}
	c.Flags().IntVar(&transforms, "transforms", 3, "number of re-maskings under fresh primes")
	c.Flags().BoolVar(&encrypted, "encrypted", false, "also encrypt the entries and read each row through a homomorphic sum")
	return c
}

// practicalRound builds a matrix, applies the transforms and checks that the
// card order survives every step.
func practicalRound(src io.Reader, params types.Params, transforms int, encrypted bool) ([]cards.Card, error) {
	p, err := matrixPrime(src, params)
	if err != nil {
		return nil, err
	}
	m, err := cardmatrix.Build(src, p)
	if err != nil {
		return nil, err
	}
	want, err := m.Cards()
	if err != nil {
		return nil, err
	}

	for i := 0; i < transforms; i++ {
		q, err := matrixPrime(src, params)
		if err != nil {
			return nil, err
		}
		if err := m.Transform(src, q); err != nil {
			return nil, fmt.Errorf("transform %d: %w", i, err)
		}
		got, err := m.Cards()
		if err != nil {
			return nil, err
		}
		if !slices.Equal(want, got) {
			return nil, fmt.Errorf("transform %d changed the card order", i)
		}
	}

	if encrypted {
		enc, err := homomorphic.NewEncryptor(src, params)
		if err != nil {
			return nil, err
		}
		// Row sums of masked entries reach 52*p^2, so re-mask under a prime
		// small enough for the encryptor's message space first.
		q, err := encryptablePrime(src, enc.MessageSpace(), params)
		if err != nil {
			return nil, err
		}
		if err := m.Transform(src, q); err != nil {
			return nil, err
		}
		x, err := m.EncryptEntries(enc)
		if err != nil {
			return nil, err
		}
		for row, c := range want {
			got, err := x.RowCard(enc, row)
			if err != nil {
				return nil, err
			}
			if got != c {
				return nil, fmt.Errorf("row %d decrypted to %s, expected %s", row, got, c)
			}
		}
	}
	return want, nil
}

// matrixPrime draws a random prime of params.FieldBytes bytes, raised to at
// least 53.
func matrixPrime(src io.Reader, params types.Params) (*big.Int, error) {
	p, err := numtheory.RandomPrime(src, params.FieldBytes, params.MaxPrimeCandidates)
	if err != nil {
		return nil, err
	}
	if p.Cmp(minMatrixPrime) < 0 {
		return numtheory.NextPrime(src, minMatrixPrime, params.MaxPrimeCandidates)
	}
	return p, nil
}

// encryptablePrime draws a prime p >= 53 from the lower half of the range
// where 52*p^2 stays below space.
func encryptablePrime(src io.Reader, space *big.Int, params types.Params) (*big.Int, error) {
	limit := new(big.Int).Div(space, big.NewInt(types.DeckSize))
	limit.Sqrt(limit).Rsh(limit, 1)
	start := new(big.Int).Set(minMatrixPrime)
	if limit.Cmp(minMatrixPrime) > 0 {
		off, err := numtheory.Intn(src, new(big.Int).Sub(limit, minMatrixPrime))
		if err != nil {
			return nil, err
		}
		start.Add(start, off)
	}
	return numtheory.NextPrime(src, start, params.MaxPrimeCandidates)
}
