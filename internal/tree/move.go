package tree

// Move encoding (uint32):
//   bits 0-5:   from square (0-63)
//   bits 6-11:  to square (0-63)
//   bits 12-14: promotion piece (0=none, 1=Q, 2=R, 3=B, 4=N)
//
// The zero Move (a1a1) is not a legal move and marks the synthetic root.

const (
	moveFromMask   = 0x3F   // bits 0-5
	moveToMask     = 0xFC0  // bits 6-11
	movePromoMask  = 0x7000 // bits 12-14
	movePromoShift = 12
	moveToShift    = 6
)

// Promotion piece types
const (
	PromoNone   = 0
	PromoQueen  = 1
	PromoRook   = 2
	PromoBishop = 3
	PromoKnight = 4
)

// Move identifies a ply independently of how it was written in SAN.
// Sibling nodes with equal Moves are the same move.
type Move uint32

// NoMove is the move of a root node.
const NoMove Move = 0

// EncodeMove creates a Move from square indices and optional promotion.
// from, to: square indices 0-63 (A1=0, B1=1, ..., H8=63)
func EncodeMove(from, to int, promo byte) Move {
	if from < 0 || from > 63 || to < 0 || to > 63 || promo > PromoKnight {
		return NoMove
	}
	return Move(uint32(from) | (uint32(to) << moveToShift) | (uint32(promo) << movePromoShift))
}

// FromSquare returns the source square index (0-63).
func (m Move) FromSquare() int {
	return int(m & moveFromMask)
}

// ToSquare returns the destination square index (0-63).
func (m Move) ToSquare() int {
	return int((m & moveToMask) >> moveToShift)
}

// Promotion returns the promotion piece (0=none, 1=Q, 2=R, 3=B, 4=N).
func (m Move) Promotion() byte {
	return byte((m & movePromoMask) >> movePromoShift)
}

// ToUCI converts a Move to UCI notation (e.g., "e2e4", "e7e8q").
func (m Move) ToUCI() string {
	from := m.FromSquare()
	to := m.ToSquare()

	uci := []byte{
		byte('a' + from%8), byte('1' + from/8),
		byte('a' + to%8), byte('1' + to/8),
	}
	if p := m.Promotion(); p > PromoNone && p <= PromoKnight {
		uci = append(uci, "qrbn"[p-1])
	}
	return string(uci)
}

// String implements fmt.Stringer.
func (m Move) String() string {
	if m == NoMove {
		return "root"
	}
	return m.ToUCI()
}
