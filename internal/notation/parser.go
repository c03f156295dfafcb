package notation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/freeeve/pgn/v3"

	"github.com/olleeriksson/merge-pgn/internal/tree"
)

const bom = "\uFEFF"

// ParseString parses every game in src. A leading byte order mark is ignored.
// src must be valid UTF-8.
func ParseString(src string) ([]*tree.Game, error) {
	if !utf8.ValidString(src) {
		return nil, ErrEncoding
	}
	lx := newLexer(strings.TrimPrefix(src, bom))

	var games []*tree.Game
	for {
		g, err := readGame(lx, len(games)+1)
		if err != nil {
			return nil, err
		}
		if g == nil {
			return games, nil
		}
		games = append(games, g)
	}
}

// readGame reads tags and movetext up to a result token, the tags of the
// next game, or EOF. It returns nil at EOF when nothing was read.
func readGame(lx *lexer, index int) (*tree.Game, error) {
	g := tree.NewGame()
	var b *builder
	empty := true

	for {
		tok, err := lx.next()
		if err != nil {
			return nil, gameError(err, index)
		}

		switch tok.kind {
		case tokEOF:
			if empty {
				return nil, nil
			}
			return g, b.finish(tok)

		case tokTag:
			if b != nil {
				lx.backup(tok)
				return g, b.finish(tok)
			}
			g.SetTag(tok.text, tok.value)

		case tokResult:
			if b == nil {
				if b, err = newBuilder(g, index); err != nil {
					return nil, err
				}
			}
			g.Result = tok.text
			return g, b.finish(tok)

		default:
			if b == nil {
				if b, err = newBuilder(g, index); err != nil {
					return nil, err
				}
			}
			if err := b.handle(tok); err != nil {
				return nil, err
			}
		}
		empty = false
	}
}

func gameError(err error, index int) error {
	if pe, ok := err.(*ParseError); ok && pe.Game == 0 {
		pe.Game = index
	}
	return err
}

// builder grows one game's tree while tracking the board after every node.
type builder struct {
	game      *tree.Game
	index     int
	cur       *tree.Node
	parent    map[*tree.Node]*tree.Node
	positions map[*tree.Node]pgn.PackedPosition
	stack     []*tree.Node // nodes to return to at ')'
	varStart  bool         // inside '(' with no move yet
	prelude   []string     // comments before the first move of a variation
}

func newBuilder(g *tree.Game, index int) (*builder, error) {
	start := pgn.NewStartingPosition()
	if fen, ok := g.Tag("FEN"); ok {
		pos, err := pgn.NewGame(fen)
		if err != nil {
			return nil, &ParseError{Game: index, Token: fen, Err: fmt.Errorf("%w: bad FEN: %v", ErrSyntax, err)}
		}
		start = pos
	}
	return &builder{
		game:      g,
		index:     index,
		cur:       g.Root,
		parent:    make(map[*tree.Node]*tree.Node),
		positions: map[*tree.Node]pgn.PackedPosition{g.Root: start.Pack()},
	}, nil
}

func (b *builder) fail(tok token, kind error, msg string) error {
	return &ParseError{Game: b.index, Line: tok.line, Token: tok.text, Err: wrapKind(kind, msg)}
}

func (b *builder) handle(tok token) error {
	switch tok.kind {
	case tokSAN:
		return b.move(tok)

	case tokNAG:
		nag, err := strconv.Atoi(tok.text)
		if err != nil || nag > 255 {
			return b.fail(tok, ErrSyntax, "NAG out of range")
		}
		if b.cur != b.game.Root && !b.varStart {
			b.cur.AddNAG(nag)
		}

	case tokComment:
		text := strings.TrimSpace(tok.text)
		switch {
		case text == "":
		case b.varStart:
			b.prelude = append(b.prelude, text)
		case b.cur == b.game.Root:
			b.game.Root.Comment = joinComment(b.game.Root.Comment, text)
		default:
			b.cur.Comment = joinComment(b.cur.Comment, text)
		}

	case tokOpen:
		if b.cur == b.game.Root || b.varStart {
			return b.fail(tok, ErrSyntax, "variation has no move to replace")
		}
		b.stack = append(b.stack, b.cur)
		b.cur = b.parent[b.cur]
		b.varStart = true

	case tokClose:
		if len(b.stack) == 0 {
			return b.fail(tok, ErrSyntax, "unbalanced ')'")
		}
		b.cur = b.stack[len(b.stack)-1]
		b.stack = b.stack[:len(b.stack)-1]
		if b.varStart {
			// Empty variation; keep its comments on the move it hung from.
			for _, c := range b.prelude {
				b.cur.Comment = joinComment(b.cur.Comment, c)
			}
			b.prelude = nil
			b.varStart = false
		}
	}
	return nil
}

func (b *builder) move(tok token) error {
	san, glyph := splitSAN(tok.text)

	pos := b.positions[b.cur].Unpack()
	if pos == nil {
		return b.fail(tok, ErrIllegalMove, "no position to play from")
	}
	mv, err := pgn.ParseSAN(pos, san)
	if err != nil {
		return b.fail(tok, ErrIllegalMove, err.Error())
	}
	display := canonicalSAN(pos, mv)
	if err := pgn.ApplyMove(pos, mv); err != nil {
		return b.fail(tok, ErrIllegalMove, err.Error())
	}

	child := b.cur.AddChild(moveID(mv), display)
	if glyph > 0 {
		child.AddNAG(glyph)
	}
	if len(b.prelude) > 0 {
		child.Comment = strings.Join(b.prelude, " ")
		b.prelude = nil
	}

	b.parent[child] = b.cur
	b.positions[child] = pos.Pack()
	b.cur = child
	b.varStart = false
	return nil
}

func (b *builder) finish(tok token) error {
	if b != nil && len(b.stack) > 0 {
		return b.fail(tok, ErrSyntax, "unterminated variation")
	}
	return nil
}

func joinComment(existing, text string) string {
	if existing == "" {
		return text
	}
	return existing + " " + text
}
