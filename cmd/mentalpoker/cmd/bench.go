package cmd

import (
	"fmt"
	"io"
	"math/big"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/whh34/CryptoFinal/internal/bench"
	"github.com/whh34/CryptoFinal/internal/commit"
	"github.com/whh34/CryptoFinal/internal/homomorphic"
	"github.com/whh34/CryptoFinal/internal/numtheory"
	"github.com/whh34/CryptoFinal/internal/sra"
	"github.com/whh34/CryptoFinal/internal/types"
)

var benchOps = []string{"setup", "shuffle", "practical", "encrypt", "commit"}

func newBenchCmd(cfg *appConfig) *cobra.Command {
	var (
		reps    int
		ops     []string
		players int
	)
	c := &cobra.Command{
		Use:   "bench",
		Short: "Time each scheme over repeated runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, op := range ops {
				if !slices.Contains(benchOps, op) {
					return fmt.Errorf("unknown op %q (want one of %s)", op, strings.Join(benchOps, ","))
				}
			}
			src, err := cfg.Source()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, op := range ops {
				fn, err := benchOp(src, cfg.Params, op, players)
				if err != nil {
					return err
				}
				st, err := bench.Run(cmd.Context(), cfg.Logger, op, reps, fn)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, st)
			}
			return nil
		},
	}
	c.Flags().IntVar(&reps, "reps", 10, "repetitions per op")
	c.Flags().StringSliceVar(&ops, "ops", benchOps, "ops to time")
	c.Flags().IntVar(&players, "players", 3, "players per shuffle round")
	return c
}

func benchOp(src io.Reader, params types.Params, op string, players int) (func() error, error) {
	switch op {
	case "setup":
		return func() error {
			_, err := sra.Setup(src, params.FieldBytes, params)
			return err
		}, nil
	case "shuffle":
		s, err := sra.Setup(src, params.FieldBytes, params)
		if err != nil {
			return nil, err
		}
		f := func() error {
			fresh, err := sra.Restore(params, s.Field(), s.Factors(), s.Encoding())
			if err != nil {
				return err
			}
			_, err = playRound(src, fresh, players)
			return err
		}
		return f, nil
	case "practical":
		return func() error {
			_, err := practicalRound(src, params, 1, false)
			return err
		}, nil
	case "encrypt":
		enc, err := homomorphic.NewEncryptor(src, params)
		if err != nil {
			return nil, err
		}
		return func() error {
			a, err := numtheory.Intn(src, enc.MessageSpace())
			if err != nil {
				return err
			}
			ct, err := enc.Encrypt(a)
			if err != nil {
				return err
			}
			got, err := enc.Decrypt(ct)
			if err != nil {
				return err
			}
			if got.Cmp(a) != 0 {
				return fmt.Errorf("decrypted %s, want %s", got, a)
			}
			return nil
		}, nil
	case "commit":
		return func() error {
			secret, err := numtheory.Intn(src, big.NewInt(1<<32))
			if err != nil {
				return err
			}
			c, err := commit.Commit(src, secret, params.CommitFieldBytes, params)
			if err != nil {
				return err
			}
			if !commit.Verify(c, secret) {
				return fmt.Errorf("commitment to %s does not verify", secret)
			}
			return nil
		}, nil
	}
	return nil, fmt.Errorf("unknown op %q", op)
}
