package cards

import "github.com/whh34/CryptoFinal/internal/types"

// Card is a 0..51 id, where:
// - rank = (id % 13) + 2  (2..14)
// - suit = (id / 13)      (0..3)
type Card uint8

func (c Card) Rank() uint8 { // 2..14
	return uint8(c%13) + 2
}

func (c Card) Suit() uint8 { // 0..3
	return uint8(c / 13)
}

// Value is the 1..52 integer a card takes inside a masked card matrix, where
// zero is reserved for empty positions.
func (c Card) Value() int64 {
	return int64(c) + 1
}

// FromValue inverts Value.
func FromValue(v int64) (Card, bool) {
	if v < 1 || v > types.DeckSize {
		return 0, false
	}
	return Card(v - 1), true
}

func (c Card) Valid() bool {
	return int(c) < types.DeckSize
}

func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	var rch byte
	switch r := c.Rank(); r {
	case 14:
		rch = 'A'
	case 13:
		rch = 'K'
	case 12:
		rch = 'Q'
	case 11:
		rch = 'J'
	case 10:
		rch = 'T'
	default:
		rch = byte('0' + r)
	}
	var sch byte
	switch c.Suit() {
	case 0:
		sch = 'c'
	case 1:
		sch = 'd'
	case 2:
		sch = 'h'
	default:
		sch = 's'
	}
	return string([]byte{rch, sch})
}

// NewDeck returns the 52 card identities in canonical order.
func NewDeck() []Card {
	deck := make([]Card, types.DeckSize)
	for i := range deck {
		deck[i] = Card(i)
	}
	return deck
}
