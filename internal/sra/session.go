// Package sra implements the commutative ("Fast") Mental Poker shuffle: cards
// are encoded as primitive roots of a prime field, and every player permutes
// the deck and raises each entry to a private exponent.
//
// Exponentiation under a fixed modulus commutes, so the final values do not
// depend on the order in which players applied their exponents. The
// positional permutation does depend on turn order and is composed as turns
// happen.
package sra

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	errorsmod "cosmossdk.io/errors"

	"github.com/whh34/CryptoFinal/internal/cards"
	"github.com/whh34/CryptoFinal/internal/numtheory"
	"github.com/whh34/CryptoFinal/internal/types"
)

type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseFieldChosen
	PhaseDeckEncoded
	PhaseShuffling
	PhaseRevealed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFieldChosen:
		return "field_chosen"
	case PhaseDeckEncoded:
		return "deck_encoded"
	case PhaseShuffling:
		return "shuffling"
	case PhaseRevealed:
		return "revealed"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// Deck is an ordered sequence of (possibly encrypted) card encodings.
type Deck []*big.Int

// Clone deep-copies the deck.
func (d Deck) Clone() Deck {
	out := make(Deck, len(d))
	for i, v := range d {
		out[i] = new(big.Int).Set(v)
	}
	return out
}

// Session owns one round's field, canonical encoding and working deck. It
// must be driven by a single caller; concurrent rounds use separate sessions.
type Session struct {
	params types.Params
	phase  Phase

	field   *big.Int
	factors []numtheory.Factor

	encoding []*big.Int // indexed by cards.Card
	lookup   map[string]cards.Card

	deck      Deck
	positions []cards.Card // canonical card currently at each deck position
	turns     int
}

func NewSession(params types.Params) (*Session, error) {
	if err := params.Validate(); err != nil {
		return nil, errorsmod.Wrap(types.ErrInvalidRequest, err.Error())
	}
	return &Session{params: params}, nil
}

// Setup picks a random prime field of fieldByteSize bytes and encodes the
// deck. Fields with fewer than 52 primitive roots are replaced by a fresh
// prime, up to params.MaxSetupAttempts times.
func Setup(src io.Reader, fieldByteSize int, params types.Params) (*Session, error) {
	if err := params.Validate(); err != nil {
		return nil, errorsmod.Wrap(types.ErrInvalidRequest, err.Error())
	}
	var lastErr error
	for attempt := 0; attempt < params.MaxSetupAttempts; attempt++ {
		s, err := NewSession(params)
		if err != nil {
			return nil, err
		}
		if err := s.ChooseField(src, fieldByteSize); err != nil {
			return nil, err
		}
		err = s.EncodeDeck()
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, types.ErrDegenerateInput) {
			return nil, err
		}
		lastErr = err
	}
	return nil, errorsmod.Wrapf(types.ErrRetryExhausted, "setup: %d fields tried, last: %v", params.MaxSetupAttempts, lastErr)
}

// ChooseField samples a random prime of fieldByteSize bytes, at most
// types.MaxFieldBytes.
func (s *Session) ChooseField(src io.Reader, fieldByteSize int) error {
	if err := s.expect(PhaseIdle); err != nil {
		return err
	}
	if err := types.CheckFieldBytes(fieldByteSize); err != nil {
		return err
	}
	p, err := numtheory.RandomPrime(src, fieldByteSize, s.params.MaxPrimeCandidates)
	if err != nil {
		return err
	}
	s.field = p
	s.phase = PhaseFieldChosen
	return nil
}

// UseField adopts an externally agreed prime.
func (s *Session) UseField(p *big.Int) error {
	if err := s.expect(PhaseIdle); err != nil {
		return err
	}
	if p == nil || !numtheory.IsPrime(p) {
		return errorsmod.Wrapf(types.ErrInvalidRequest, "field %v is not prime", p)
	}
	s.field = new(big.Int).Set(p)
	s.phase = PhaseFieldChosen
	return nil
}

// EncodeDeck binds card i to the i-th smallest primitive root of the field.
func (s *Session) EncodeDeck() error {
	if err := s.expect(PhaseFieldChosen); err != nil {
		return err
	}
	factors, err := numtheory.PrimeFactorization(new(big.Int).Sub(s.field, big.NewInt(1)))
	if err != nil {
		return err
	}
	roots, err := numtheory.PrimitiveRoots(s.field, factors, types.DeckSize)
	if err != nil {
		return err
	}
	s.factors = factors
	s.bind(roots)
	return nil
}

// Restore rebuilds a session in PhaseDeckEncoded from a previously agreed
// field and encoding, checking every encoding is a distinct primitive root.
func Restore(params types.Params, field *big.Int, factors []numtheory.Factor, encoding []*big.Int) (*Session, error) {
	s, err := NewSession(params)
	if err != nil {
		return nil, err
	}
	if err := s.UseField(field); err != nil {
		return nil, err
	}
	if numtheory.Product(factors).Cmp(new(big.Int).Sub(field, big.NewInt(1))) != 0 {
		return nil, errorsmod.Wrap(types.ErrInvalidRequest, "factorization does not match field-1")
	}
	for _, f := range factors {
		if !numtheory.IsPrime(f.Prime) {
			return nil, errorsmod.Wrapf(types.ErrInvalidRequest, "factor %s is not prime", f.Prime)
		}
	}
	if len(encoding) != types.DeckSize {
		return nil, errorsmod.Wrapf(types.ErrInvalidRequest, "expected %d encodings, got %d", types.DeckSize, len(encoding))
	}
	seen := map[string]bool{}
	for i, g := range encoding {
		if !numtheory.IsPrimitiveRoot(g, field, factors) {
			return nil, errorsmod.Wrapf(types.ErrInvalidRequest, "encoding %d (%s) is not a generator", i, g)
		}
		if seen[g.String()] {
			return nil, errorsmod.Wrapf(types.ErrInvalidRequest, "encoding %d (%s) is duplicated", i, g)
		}
		seen[g.String()] = true
	}
	s.factors = factors
	s.bind(encoding)
	return s, nil
}

func (s *Session) bind(roots []*big.Int) {
	s.encoding = make([]*big.Int, types.DeckSize)
	s.lookup = make(map[string]cards.Card, types.DeckSize)
	for i, g := range roots {
		s.encoding[i] = new(big.Int).Set(g)
		s.lookup[g.String()] = cards.Card(i)
	}
	s.deck = Deck(s.encoding).Clone()
	s.positions = cards.NewDeck()
	s.phase = PhaseDeckEncoded
}

// NewPlayerSecret draws a secret exponent for this session's field.
func (s *Session) NewPlayerSecret(src io.Reader) (*Secret, error) {
	if s.phase < PhaseFieldChosen {
		return nil, errorsmod.Wrapf(types.ErrInvalidRequest, "no field chosen (phase %s)", s.phase)
	}
	return NewPlayerSecret(src, s.field, s.params.MaxInverseRetries)
}

// Shuffle permutes a copy of deck and raises every entry to the secret
// exponent.
func Shuffle(src io.Reader, deck Deck, secret *Secret) (Deck, error) {
	out, _, err := shuffle(src, deck, secret)
	return out, err
}

func shuffle(src io.Reader, deck Deck, secret *Secret) (Deck, []int, error) {
	if err := secret.usable(); err != nil {
		return nil, nil, err
	}
	perm, err := numtheory.Permutation(src, len(deck))
	if err != nil {
		return nil, nil, err
	}
	out := make(Deck, len(deck))
	for i, from := range perm {
		v, err := secret.Encrypt(deck[from])
		if err != nil {
			return nil, nil, err
		}
		out[i] = v
	}
	return out, perm, nil
}

// Turn applies one player's shuffle to the session deck.
func (s *Session) Turn(src io.Reader, secret *Secret) error {
	if s.phase != PhaseDeckEncoded && s.phase != PhaseShuffling {
		return errorsmod.Wrapf(types.ErrInvalidRequest, "turn not allowed in phase %s", s.phase)
	}
	if err := s.checkSecret(secret); err != nil {
		return err
	}
	out, perm, err := shuffle(src, s.deck, secret)
	if err != nil {
		return err
	}
	positions := make([]cards.Card, len(perm))
	for i, from := range perm {
		positions[i] = s.positions[from]
	}
	s.deck = out
	s.positions = positions
	s.turns++
	s.phase = PhaseShuffling
	return nil
}

// Reveal strips every player's layer from the card at position and
// identifies it. Secrets may be supplied in any order.
func (s *Session) Reveal(position int, secrets ...*Secret) (cards.Card, error) {
	if s.phase != PhaseShuffling && s.phase != PhaseRevealed {
		return 0, errorsmod.Wrapf(types.ErrInvalidRequest, "reveal not allowed in phase %s", s.phase)
	}
	if position < 0 || position >= len(s.deck) {
		return 0, errorsmod.Wrapf(types.ErrInvalidRequest, "position %d out of range", position)
	}
	v := new(big.Int).Set(s.deck[position])
	for _, sec := range secrets {
		if err := s.checkSecret(sec); err != nil {
			return 0, err
		}
		var err error
		if v, err = sec.Decrypt(v); err != nil {
			return 0, err
		}
	}
	c, err := s.Identify(v)
	if err != nil {
		return 0, err
	}
	s.phase = PhaseRevealed
	return c, nil
}

// RemoveLayer strips one player's exponent from the card at position in the
// session deck and returns the remaining value. Once every player has removed
// their layer the value can be passed to Identify. Reveal on the same position
// afterwards would strip the layer twice.
func (s *Session) RemoveLayer(position int, secret *Secret) (*big.Int, error) {
	if s.phase != PhaseShuffling && s.phase != PhaseRevealed {
		return nil, errorsmod.Wrapf(types.ErrInvalidRequest, "layer removal not allowed in phase %s", s.phase)
	}
	if position < 0 || position >= len(s.deck) {
		return nil, errorsmod.Wrapf(types.ErrInvalidRequest, "position %d out of range", position)
	}
	if err := s.checkSecret(secret); err != nil {
		return nil, err
	}
	v, err := secret.Decrypt(s.deck[position])
	if err != nil {
		return nil, err
	}
	s.deck[position] = v
	return new(big.Int).Set(v), nil
}

// Identify maps a fully decrypted value back to its card.
func (s *Session) Identify(v *big.Int) (cards.Card, error) {
	c, ok := s.lookup[v.String()]
	if !ok {
		return 0, errorsmod.Wrapf(types.ErrInvalidRequest, "%s is not a card encoding", v)
	}
	return c, nil
}

// Origin returns the canonical card that the composed permutation moved to
// position. Only the owner of every turn's permutation can know this.
func (s *Session) Origin(position int) (cards.Card, error) {
	if position < 0 || position >= len(s.positions) {
		return 0, errorsmod.Wrapf(types.ErrInvalidRequest, "position %d out of range", position)
	}
	return s.positions[position], nil
}

func (s *Session) checkSecret(secret *Secret) error {
	if err := secret.usable(); err != nil {
		return err
	}
	if secret.field.Cmp(s.field) != 0 {
		return errorsmod.Wrapf(types.ErrInvalidRequest, "secret drawn for field %s, session uses %s", secret.field, s.field)
	}
	return nil
}

func (s *Session) expect(p Phase) error {
	if s.phase != p {
		return errorsmod.Wrapf(types.ErrInvalidRequest, "expected phase %s, got %s", p, s.phase)
	}
	return nil
}

func (s *Session) Phase() Phase { return s.phase }

func (s *Session) Turns() int { return s.turns }

func (s *Session) Field() *big.Int {
	if s.field == nil {
		return nil
	}
	return new(big.Int).Set(s.field)
}

func (s *Session) Factors() []numtheory.Factor {
	out := make([]numtheory.Factor, len(s.factors))
	for i, f := range s.factors {
		out[i] = numtheory.Factor{Prime: new(big.Int).Set(f.Prime), Exponent: f.Exponent}
	}
	return out
}

// Encoding returns the canonical card encodings, indexed by card.
func (s *Session) Encoding() Deck {
	return Deck(s.encoding).Clone()
}

// Deck returns the current working deck.
func (s *Session) Deck() Deck {
	return s.deck.Clone()
}
