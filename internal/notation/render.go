package notation

import (
	"strconv"
	"strings"

	"github.com/olleeriksson/merge-pgn/internal/tree"
)

// Render writes g as PGN: tag pairs, a blank line, then the movetext on a
// single line ending with the result. Comments are written as "{ text }".
func Render(g *tree.Game) string {
	var sb strings.Builder
	for _, t := range g.Tags {
		sb.WriteByte('[')
		sb.WriteString(t.Name)
		sb.WriteString(` "`)
		sb.WriteString(escapeTagValue(t.Value))
		sb.WriteString("\"]\n")
	}
	if len(g.Tags) > 0 {
		sb.WriteByte('\n')
	}

	e := &exporter{force: true}
	e.comment(g.Root.Comment)
	e.line(g.Root, startPly(g))

	result := g.Result
	if result == "" {
		result = "*"
	}
	e.tokens = append(e.tokens, result)

	sb.WriteString(strings.Join(e.tokens, " "))
	return sb.String()
}

type exporter struct {
	tokens []string
	force  bool // next black move needs "N..."
}

// line writes the main continuation of parent, each alternative in
// parentheses right after the main move it replaces.
func (e *exporter) line(parent *tree.Node, ply int) {
	for len(parent.Children) > 0 {
		main := parent.Children[0]
		e.move(main, ply)

		for _, side := range parent.Children[1:] {
			e.tokens = append(e.tokens, "(")
			e.force = true
			e.move(side, ply)
			e.line(side, ply+1)
			e.tokens = append(e.tokens, ")")
			e.force = true
		}

		parent = main
		ply++
	}
}

func (e *exporter) move(n *tree.Node, ply int) {
	number := ply/2 + 1
	if ply%2 == 0 {
		e.tokens = append(e.tokens, strconv.Itoa(number)+".")
	} else if e.force {
		e.tokens = append(e.tokens, strconv.Itoa(number)+"...")
	}
	e.force = false

	e.tokens = append(e.tokens, n.SAN)
	for _, nag := range n.NAGs {
		e.tokens = append(e.tokens, "$"+strconv.Itoa(nag))
	}
	e.comment(n.Comment)
}

func (e *exporter) comment(c string) {
	c = strings.TrimSpace(strings.ReplaceAll(c, "}", ""))
	if c == "" {
		return
	}
	e.tokens = append(e.tokens, "{ "+c+" }")
	e.force = true
}

func escapeTagValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `"`, `\"`)
}

// startPly derives the ply of the first move from the FEN tag:
// 0 is white's first move.
func startPly(g *tree.Game) int {
	fen, ok := g.Tag("FEN")
	if !ok {
		return 0
	}
	fields := strings.Fields(fen)
	ply := 0
	if len(fields) >= 6 {
		if n, err := strconv.Atoi(fields[5]); err == nil && n > 0 {
			ply = (n - 1) * 2
		}
	}
	if len(fields) >= 2 && fields[1] == "b" {
		ply++
	}
	return ply
}
