package notation

import (
	"strconv"
	"strings"

	"github.com/freeeve/pgn/v3"

	"github.com/olleeriksson/merge-pgn/internal/tree"
)

// Traditional suffix annotations and their NAG codes.
var suffixNAGs = map[string]int{
	"!":  1,
	"?":  2,
	"!!": 3,
	"??": 4,
	"!?": 5,
	"?!": 6,
}

// suffixNAG reports whether s is a standalone glyph such as "!?".
func suffixNAG(s string) (string, bool) {
	nag, ok := suffixNAGs[s]
	if !ok {
		return "", false
	}
	return strconv.Itoa(nag), true
}

// splitSAN strips check marks and trailing glyphs from a SAN token.
func splitSAN(tok string) (san string, nag int) {
	san = tok
	if i := strings.IndexAny(san, "!?"); i > 0 {
		nag = suffixNAGs[san[i:]]
		san = san[:i]
	}
	san = strings.TrimRight(san, "+#")
	switch san {
	case "0-0":
		san = "O-O"
	case "0-0-0":
		san = "O-O-O"
	}
	return san, nag
}

// moveID converts a resolved move to its tree identity.
func moveID(mv pgn.Mv) tree.Move {
	var promo byte
	switch mv.Promo {
	case pgn.PromoQueen:
		promo = tree.PromoQueen
	case pgn.PromoRook:
		promo = tree.PromoRook
	case pgn.PromoBishop:
		promo = tree.PromoBishop
	case pgn.PromoKnight:
		promo = tree.PromoKnight
	}
	return tree.EncodeMove(int(mv.From), int(mv.To), promo)
}

// canonicalSAN renders mv in standard SAN from pos, so that "Ngf3", "Nf3"
// and "Nf3+" written by different sources print the same way.
// pos is not modified.
func canonicalSAN(pos *pgn.GameState, mv pgn.Mv) string {
	// Castling
	if mv.Flags == 4 {
		san := "O-O-O"
		if mv.To > mv.From {
			san = "O-O"
		}
		return san + checkSuffix(pos, mv)
	}

	fromSq := int(mv.From)
	toSq := int(mv.To)
	fromFile := fromSq % 8
	toFile := toSq % 8
	toRank := toSq / 8

	files := "abcdefgh"
	ranks := "12345678"

	// 'P', 'N', 'B', 'R', 'Q', 'K' for white, lowercase for black
	piece := pos.PieceAt(mv.From)
	isPawn := piece == 'P' || piece == 'p'
	isCapture := pos.PieceAt(mv.To) != 0 || (isPawn && mv.Flags == 2) // en passant

	var san string

	if isPawn {
		if isCapture {
			san = string(files[fromFile]) + "x" + string(files[toFile]) + string(ranks[toRank])
		} else {
			san = string(files[toFile]) + string(ranks[toRank])
		}
		switch mv.Promo {
		case pgn.PromoQueen:
			san += "=Q"
		case pgn.PromoRook:
			san += "=R"
		case pgn.PromoBishop:
			san += "=B"
		case pgn.PromoKnight:
			san += "=N"
		}
	} else {
		pieceChar := piece
		if piece >= 'a' && piece <= 'z' {
			pieceChar = piece - 32
		}
		san = string(pieceChar)

		// Disambiguate against other pieces of the same kind reaching toSq.
		sameFile, sameRank, ambiguous := false, false, false
		for _, other := range pgn.GenerateLegalMoves(pos) {
			if other.To != mv.To || other.From == mv.From {
				continue
			}
			otherPiece := pos.PieceAt(other.From)
			if otherPiece >= 'a' && otherPiece <= 'z' {
				otherPiece -= 32
			}
			if otherPiece != pieceChar {
				continue
			}
			ambiguous = true
			if int(other.From)%8 == fromFile {
				sameFile = true
			}
			if int(other.From)/8 == fromSq/8 {
				sameRank = true
			}
		}
		switch {
		case !ambiguous:
		case !sameFile:
			san += string(files[fromFile])
		case !sameRank:
			san += string(ranks[fromSq/8])
		default:
			san += string(files[fromFile]) + string(ranks[fromSq/8])
		}

		if isCapture {
			san += "x"
		}
		san += string(files[toFile]) + string(ranks[toRank])
	}

	return san + checkSuffix(pos, mv)
}

func checkSuffix(pos *pgn.GameState, mv pgn.Mv) string {
	posCopy := pos.Pack().Unpack()
	if posCopy == nil {
		return ""
	}
	if err := pgn.ApplyMove(posCopy, mv); err != nil || !posCopy.IsInCheck() {
		return ""
	}
	if len(pgn.GenerateLegalMoves(posCopy)) == 0 {
		return "#"
	}
	return "+"
}
