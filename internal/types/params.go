package types

import (
	"fmt"

	errorsmod "cosmossdk.io/errors"
)

const (
	// DeckSize is the number of card identities in a deck.
	DeckSize = 52

	// MaxFieldBytes bounds every prime whose p-1 gets factored by trial
	// division. At 6 bytes the divisor search stays near 10^7 steps; at 8
	// bytes it can run for hours.
	MaxFieldBytes = 6
)

// Params bounds the randomized search loops and selects toy field sizes.
type Params struct {
	// FieldBytes is the byte length of the random starting point for the
	// Fast variant's prime field.
	FieldBytes int `json:"fieldBytes" mapstructure:"field-bytes"`

	// CommitFieldBytes is the byte length of bit commitment primes.
	CommitFieldBytes int `json:"commitFieldBytes" mapstructure:"commit-field-bytes"`

	// MaxPrimeCandidates caps "increment until prime" searches.
	MaxPrimeCandidates int `json:"maxPrimeCandidates" mapstructure:"max-prime-candidates"`

	// MaxInverseRetries caps "redraw until invertible" searches.
	MaxInverseRetries int `json:"maxInverseRetries" mapstructure:"max-inverse-retries"`

	// MaxSetupAttempts caps how many fresh fields Setup tries before giving up.
	MaxSetupAttempts int `json:"maxSetupAttempts" mapstructure:"max-setup-attempts"`
}

func DefaultParams() Params {
	return Params{
		FieldBytes:       3,
		CommitFieldBytes: 4,

		MaxPrimeCandidates: 100_000,
		MaxInverseRetries:  1_000,
		MaxSetupAttempts:   8,
	}
}

func (p Params) Validate() error {
	if p.FieldBytes < 1 || p.FieldBytes > MaxFieldBytes {
		return fmt.Errorf("field_bytes must be in [1,%d]: %d", MaxFieldBytes, p.FieldBytes)
	}
	if p.CommitFieldBytes < 1 || p.CommitFieldBytes > MaxFieldBytes {
		return fmt.Errorf("commit_field_bytes must be in [1,%d]: %d", MaxFieldBytes, p.CommitFieldBytes)
	}
	if p.MaxPrimeCandidates <= 0 {
		return fmt.Errorf("max_prime_candidates must be > 0")
	}
	if p.MaxInverseRetries <= 0 {
		return fmt.Errorf("max_inverse_retries must be > 0")
	}
	if p.MaxSetupAttempts <= 0 {
		return fmt.Errorf("max_setup_attempts must be > 0")
	}
	return nil
}

// CheckFieldBytes rejects prime sizes above MaxFieldBytes. Entry points that
// take a byte size directly call it, since they do not go through Validate.
func CheckFieldBytes(n int) error {
	if n > MaxFieldBytes {
		return errorsmod.Wrapf(ErrInvalidRange, "field of %d bytes exceeds the %d byte limit", n, MaxFieldBytes)
	}
	return nil
}
