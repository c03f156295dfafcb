// Package postproc rewrites rendered PGN so that merged annotations sit in
// their own comment: "{ text [%cal Ge2e4] }" becomes
// "{ text } { [%cal Ge2e4] }".
package postproc

import (
	"regexp"
	"strings"
)

// commentSpan matches one brace comment. Braces do not nest in PGN.
var commentSpan = regexp.MustCompile(`(?s)\{(.*?)\}`)

// directiveOpen starts an annotation token inside a comment.
const directiveOpen = "[%"

// SplitAnnotations separates prose from annotation tokens in every comment
// that has both. Annotation-only comments are left as they are.
func SplitAnnotations(text string) string {
	spans := commentSpan.FindAllStringSubmatchIndex(text, -1)

	// Walk spans from last to first so each insertion offset refers to
	// the unmodified input.
	var inserts []int
	for i := len(spans) - 1; i >= 0; i-- {
		open, bodyStart, bodyEnd := spans[i][0], spans[i][2], spans[i][3]

		at := strings.Index(text[bodyStart:bodyEnd], directiveOpen)
		if at < 0 {
			continue
		}
		at += bodyStart

		if strings.TrimSpace(text[open+1:at]) == "" {
			continue
		}
		inserts = append(inserts, at)
	}
	if len(inserts) == 0 {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text) + 5*len(inserts))
	prev := 0
	for i := len(inserts) - 1; i >= 0; i-- {
		at := inserts[i]
		sb.WriteString(text[prev:at])
		if !isSpace(text[at-1]) {
			sb.WriteByte(' ')
		}
		sb.WriteString("} { ")
		prev = at
	}
	sb.WriteString(text[prev:])
	return sb.String()
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
