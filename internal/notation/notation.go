// Package notation reads and writes PGN movetext as tree.Game values.
//
// Moves are resolved against the board with github.com/freeeve/pgn/v3 so
// each node carries a position-independent identity (from, to, promotion)
// and a canonical SAN spelling.
package notation

import (
	"errors"
	"fmt"
	"io"

	"github.com/olleeriksson/merge-pgn/internal/tree"
)

var (
	// ErrSyntax indicates movetext that does not follow PGN grammar.
	ErrSyntax = errors.New("pgn syntax error")

	// ErrIllegalMove indicates a SAN token that does not resolve to a legal move.
	ErrIllegalMove = errors.New("illegal move")

	// ErrEncoding indicates input that is not valid UTF-8.
	ErrEncoding = errors.New("input is not valid UTF-8")
)

// ParseError locates a parse failure.
type ParseError struct {
	Game  int // 1-based index within the input
	Line  int
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Game > 0 {
		return fmt.Sprintf("game %d, line %d, near %q: %v", e.Game, e.Line, e.Token, e.Err)
	}
	return fmt.Sprintf("line %d, near %q: %v", e.Line, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func wrapKind(kind error, msg string) error {
	return fmt.Errorf("%w: %s", kind, msg)
}

// Codec parses movetext into games and renders games back to movetext.
type Codec interface {
	Parse(r io.Reader) ([]*tree.Game, error)
	Render(g *tree.Game) string
}

// PGN is the Codec for standard PGN.
type PGN struct{}

var _ Codec = PGN{}

// Parse reads every game in r. Read failures are returned as they are;
// only grammar and move errors come back as *ParseError.
func (PGN) Parse(r io.Reader) ([]*tree.Game, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return ParseString(string(data))
}

// Render writes g as PGN.
func (PGN) Render(g *tree.Game) string {
	return Render(g)
}
