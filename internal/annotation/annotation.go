// Package annotation splits PGN comments into prose and bracketed
// directives such as [%cal Ge2e4] or [%clk 0:03:00], and merges them.
package annotation

import (
	"errors"
	"fmt"
	"strings"
)

// Sigil marks a bracketed segment as a directive rather than prose.
const Sigil = '%'

// ErrMalformedAnnotation is returned when a directive has no key/value separator.
var ErrMalformedAnnotation = errors.New("malformed annotation")

// MalformedAnnotationError carries the segment that could not be split.
type MalformedAnnotationError struct {
	Segment string
}

func (e *MalformedAnnotationError) Error() string {
	return fmt.Sprintf("%v: [%s] has no space between key and values", ErrMalformedAnnotation, e.Segment)
}

func (e *MalformedAnnotationError) Unwrap() error {
	return ErrMalformedAnnotation
}

// Annotations is an insertion-ordered map from directive key to an
// insertion-ordered set of values.
type Annotations struct {
	keys   []string
	values map[string][]string
	seen   map[string]map[string]struct{}
}

// NewAnnotations returns an empty mapping.
func NewAnnotations() *Annotations {
	return &Annotations{
		values: make(map[string][]string),
		seen:   make(map[string]map[string]struct{}),
	}
}

// Add appends value to key, creating the key if needed. Duplicate values are ignored.
func (a *Annotations) Add(key, value string) {
	set, ok := a.seen[key]
	if !ok {
		set = make(map[string]struct{})
		a.seen[key] = set
		a.keys = append(a.keys, key)
	}
	if _, dup := set[value]; dup {
		return
	}
	set[value] = struct{}{}
	a.values[key] = append(a.values[key], value)
}

// MergeFrom adds every key and value of other, in other's order.
func (a *Annotations) MergeFrom(other *Annotations) {
	if other == nil {
		return
	}
	for _, key := range other.keys {
		for _, v := range other.values[key] {
			a.Add(key, v)
		}
	}
}

// Keys returns the keys in first-insertion order.
func (a *Annotations) Keys() []string {
	return append([]string(nil), a.keys...)
}

// Values returns the values of key in first-insertion order.
func (a *Annotations) Values(key string) []string {
	return append([]string(nil), a.values[key]...)
}

// Len reports the number of keys.
func (a *Annotations) Len() int {
	return len(a.keys)
}

// String serializes the mapping as concatenated tokens: [k1 v1,v2][k2 v3].
func (a *Annotations) String() string {
	var sb strings.Builder
	for _, key := range a.keys {
		sb.WriteByte('[')
		sb.WriteString(key)
		sb.WriteByte(' ')
		sb.WriteString(strings.Join(a.values[key], ","))
		sb.WriteByte(']')
	}
	return sb.String()
}

// Comment is a raw comment split into prose and directives.
type Comment struct {
	Text        string
	Annotations *Annotations
}

// String reassembles the comment with all directives trailing the prose.
func (c Comment) String() string {
	if c.Annotations == nil {
		return c.Text
	}
	return c.Text + c.Annotations.String()
}

// Extract splits raw on bracket delimiters. Segments starting with the sigil
// become directives; everything else is kept, in order, as free text.
// Brackets themselves are not kept.
func Extract(raw string) (Comment, error) {
	c := Comment{Annotations: NewAnnotations()}
	var text strings.Builder

	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == '[' || r == ']' })
	for _, part := range parts {
		if part[0] != Sigil {
			text.WriteString(part)
			continue
		}
		sep := strings.IndexAny(part, " \t\r\n\v\f")
		if sep < 0 {
			return Comment{}, &MalformedAnnotationError{Segment: part}
		}
		key := part[:sep]
		for _, v := range strings.Split(part[sep+1:], ",") {
			c.Annotations.Add(key, strings.TrimSpace(v))
		}
	}

	c.Text = text.String()
	return c, nil
}
