package cmd

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/whh34/CryptoFinal/internal/commit"
	"github.com/whh34/CryptoFinal/internal/homomorphic"
)

func parseInt(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return v, nil
}

func newEncryptCmd(cfg *appConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt <a> [b ...]",
		Short: "Encrypt plaintexts, add the ciphertexts and decrypt only the sum",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := cfg.Source()
			if err != nil {
				return err
			}
			enc, err := homomorphic.NewEncryptor(src, cfg.Params)
			if err != nil {
				return err
			}
			cts := make([]homomorphic.Ciphertext, 0, len(args))
			for _, a := range args {
				v, err := parseInt(a)
				if err != nil {
					return err
				}
				ct, err := enc.Encrypt(v)
				if err != nil {
					return err
				}
				cts = append(cts, ct)
			}
			sum, err := enc.Sum(cts...)
			if err != nil {
				return err
			}
			plain, err := enc.Decrypt(sum)
			if err != nil {
				return err
			}
			cfg.Logger.Info("homomorphic sum", "terms", len(cts), "message_space", enc.MessageSpace().String())

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "message space: %s\n", enc.MessageSpace())
			fmt.Fprintf(out, "sum: %s\n", plain)
			return nil
		},
	}
}

func newCommitCmd(cfg *appConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "commit <secret>",
		Short: "Commit to a nonnegative integer as g^secret mod p",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := parseInt(args[0])
			if err != nil {
				return err
			}
			src, err := cfg.Source()
			if err != nil {
				return err
			}
			c, err := commit.Commit(src, secret, cfg.Params.CommitFieldBytes, cfg.Params)
			if err != nil {
				return err
			}
			cfg.Logger.Debug("commitment", "p", c.P.String(), "g", c.G.String())

			b, err := json.Marshal(c)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
}

func newVerifyCmd(cfg *appConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <commitment-json> <secret>",
		Short: "Open a commitment printed by commit against a secret",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var c commit.Commitment
			if err := json.Unmarshal([]byte(args[0]), &c); err != nil {
				return fmt.Errorf("decode commitment: %w", err)
			}
			secret, err := parseInt(args[1])
			if err != nil {
				return err
			}
			if !commit.Verify(c, secret) {
				cfg.Logger.Warn("commitment rejected")
				return fmt.Errorf("commitment does not open to %s", secret)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}
