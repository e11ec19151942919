package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/whh34/CryptoFinal/internal/cards"
	"github.com/whh34/CryptoFinal/internal/sra"
	"github.com/whh34/CryptoFinal/internal/state"
	"github.com/whh34/CryptoFinal/internal/types"
)

func newSetupCmd(cfg *appConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Choose a prime field, encode the deck and save the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, err := cfg.Source()
			if err != nil {
				return err
			}
			s, err := sra.Setup(src, cfg.Params.FieldBytes, cfg.Params)
			if err != nil {
				return err
			}
			f, err := state.FromSession(s)
			if err != nil {
				return err
			}
			if err := f.Save(cfg.Home); err != nil {
				return err
			}
			cfg.Logger.Info("session saved", "home", cfg.Home, "field", f.Field.String(), "fingerprint", f.Fingerprint)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "field: %s\n", f.Field)
			fmt.Fprintf(out, "fingerprint: %s\n", f.Fingerprint)
			return nil
		},
	}
}

func newShuffleCmd(cfg *appConfig) *cobra.Command {
	var players int
	c := &cobra.Command{
		Use:   "shuffle",
		Short: "Run one shuffle round over the saved session and reveal the dealt order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if players < 1 {
				return fmt.Errorf("--players must be >= 1, got %d", players)
			}
			s, err := loadSession(cfg)
			if err != nil {
				return err
			}
			src, err := cfg.Source()
			if err != nil {
				return err
			}
			dealt, err := playRound(src, s, players)
			if err != nil {
				return err
			}
			cfg.Logger.Info("round revealed", "players", players, "turns", s.Turns())

			names := make([]string, len(dealt))
			for i, c := range dealt {
				names[i] = c.String()
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, " "))
			return nil
		},
	}
	c.Flags().IntVar(&players, "players", 3, "number of players shuffling in turn")
	return c
}

func loadSession(cfg *appConfig) (*sra.Session, error) {
	f, err := state.Load(cfg.Home)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("no session under %s, run %s setup first: %w", cfg.Home, BinaryName, err)
	}
	if err != nil {
		return nil, err
	}
	cfg.Logger.Debug("session loaded", "fingerprint", f.Fingerprint)
	return f.Restore(cfg.Params)
}

// playRound has every player shuffle in turn, then reveals each position with
// all secrets applied in reverse turn order and cross-checks the result
// against the tracked permutation.
func playRound(src io.Reader, s *sra.Session, players int) ([]cards.Card, error) {
	secrets := make([]*sra.Secret, 0, players)
	defer func() {
		for _, sec := range secrets {
			sec.Destroy()
		}
	}()
	for i := 0; i < players; i++ {
		sec, err := s.NewPlayerSecret(src)
		if err != nil {
			return nil, err
		}
		secrets = append(secrets, sec)
		if err := s.Turn(src, sec); err != nil {
			return nil, fmt.Errorf("player %d turn: %w", i, err)
		}
	}

	reversed := slices.Clone(secrets)
	slices.Reverse(reversed)
	dealt := make([]cards.Card, types.DeckSize)
	for pos := range dealt {
		c, err := s.Reveal(pos, reversed...)
		if err != nil {
			return nil, err
		}
		origin, err := s.Origin(pos)
		if err != nil {
			return nil, err
		}
		if c != origin {
			return nil, fmt.Errorf("position %d revealed %s, expected %s", pos, c, origin)
		}
		dealt[pos] = c
	}
	return dealt, nil
}
