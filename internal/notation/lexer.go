package notation

import (
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokTag
	tokComment
	tokNAG
	tokOpen
	tokClose
	tokResult
	tokSAN
)

type token struct {
	kind  tokenKind
	text  string // SAN, comment body, result, NAG digits, tag name
	value string // tag value
	line  int
}

// lexer splits PGN text into tokens. Move numbers and escape lines are
// dropped here.
type lexer struct {
	src    string
	pos    int
	line   int
	peeked *token
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1}
}

func (l *lexer) backup(t token) {
	l.peeked = &t
}

func (l *lexer) next() (token, error) {
	if l.peeked != nil {
		t := *l.peeked
		l.peeked = nil
		return t, nil
	}

	for {
		l.skipSpace()
		if l.pos >= len(l.src) {
			return token{kind: tokEOF, line: l.line}, nil
		}

		c := l.src[l.pos]
		switch {
		case c == '%' && l.atLineStart():
			l.skipLine()
			continue
		case c == '[':
			return l.tag()
		case c == '{':
			return l.braceComment()
		case c == ';':
			line, start := l.line, l.pos+1
			l.skipLine()
			return token{kind: tokComment, text: strings.TrimRight(l.src[start:l.pos], "\r\n"), line: line}, nil
		case c == '(':
			l.pos++
			return token{kind: tokOpen, text: "(", line: l.line}, nil
		case c == ')':
			l.pos++
			return token{kind: tokClose, text: ")", line: l.line}, nil
		case c == '$':
			l.pos++
			digits := l.take(func(b byte) bool { return b >= '0' && b <= '9' })
			if digits == "" {
				return token{}, l.errorf("$", ErrSyntax, "NAG without number")
			}
			return token{kind: tokNAG, text: digits, line: l.line}, nil
		}

		sym := l.take(isSymbolByte)
		if sym == "" {
			// Stray delimiter such as ']' or '}'.
			l.pos++
			return token{}, l.errorf(string(c), ErrSyntax, "unexpected character")
		}
		if t, ok := l.classify(sym); ok {
			return t, nil
		}
	}
}

// classify turns a bare symbol into a token. Pure move numbers report false.
func (l *lexer) classify(sym string) (token, bool) {
	switch sym {
	case "1-0", "0-1", "1/2-1/2", "*":
		return token{kind: tokResult, text: sym, line: l.line}, true
	}

	rest := stripMoveNumber(sym)
	if strings.Trim(rest, ".") == "" {
		return token{}, false
	}
	if nag, ok := suffixNAG(rest); ok {
		return token{kind: tokNAG, text: nag, line: l.line}, true
	}
	return token{kind: tokSAN, text: rest, line: l.line}, true
}

func (l *lexer) tag() (token, error) {
	line := l.line
	l.pos++ // [
	l.skipSpace()
	name := l.take(func(b byte) bool { return isSymbolByte(b) && b != '"' })
	if name == "" {
		return token{}, l.errorf("[", ErrSyntax, "tag without name")
	}
	l.skipSpace()
	if l.pos >= len(l.src) || l.src[l.pos] != '"' {
		return token{}, l.errorf(name, ErrSyntax, "tag value must be quoted")
	}
	l.pos++

	var value strings.Builder
	for {
		if l.pos >= len(l.src) {
			return token{}, l.errorf(name, ErrSyntax, "unterminated tag value")
		}
		c := l.src[l.pos]
		l.pos++
		if c == '\\' && l.pos < len(l.src) {
			value.WriteByte(l.src[l.pos])
			l.pos++
			continue
		}
		if c == '"' {
			break
		}
		if c == '\n' {
			l.line++
		}
		value.WriteByte(c)
	}

	l.skipSpace()
	if l.pos >= len(l.src) || l.src[l.pos] != ']' {
		return token{}, l.errorf(name, ErrSyntax, "tag not closed")
	}
	l.pos++
	return token{kind: tokTag, text: name, value: value.String(), line: line}, nil
}

func (l *lexer) braceComment() (token, error) {
	line := l.line
	end := strings.IndexByte(l.src[l.pos+1:], '}')
	if end < 0 {
		return token{}, l.errorf("{", ErrSyntax, "unterminated comment")
	}
	body := l.src[l.pos+1 : l.pos+1+end]
	l.line += strings.Count(body, "\n")
	l.pos += end + 2
	return token{kind: tokComment, text: body, line: line}, nil
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\n':
			l.line++
		case ' ', '\t', '\r', '\v', '\f':
		default:
			return
		}
		l.pos++
	}
}

func (l *lexer) skipLine() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		l.pos++
		if c == '\n' {
			l.line++
			return
		}
	}
}

func (l *lexer) atLineStart() bool {
	return l.pos == 0 || l.src[l.pos-1] == '\n'
}

func (l *lexer) take(ok func(byte) bool) string {
	start := l.pos
	for l.pos < len(l.src) && ok(l.src[l.pos]) {
		l.pos++
	}
	return l.src[start:l.pos]
}

func (l *lexer) errorf(tok string, kind error, msg string) error {
	return &ParseError{Line: l.line, Token: tok, Err: wrapKind(kind, msg)}
}

func isSymbolByte(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '\v', '\f', '{', '}', '(', ')', '[', ']', ';', '$':
		return false
	}
	return true
}

// stripMoveNumber removes a leading "12." or "12..." from sym.
func stripMoveNumber(sym string) string {
	i := 0
	for i < len(sym) && sym[i] >= '0' && sym[i] <= '9' {
		i++
	}
	if i == 0 {
		return sym
	}
	j := i
	for j < len(sym) && sym[j] == '.' {
		j++
	}
	if j == i {
		// Digits without a dot: not a move number.
		return sym
	}
	return sym[j:]
}
