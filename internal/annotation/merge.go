package annotation

import (
	"fmt"
	"strings"
)

// FreeTextOverlap reports textual containment between two comments.
type FreeTextOverlap struct {
	AInB bool // a is a substring of b
	BInA bool // b is a substring of a
}

// Duplicate reports whether either text contains the other.
func (o FreeTextOverlap) Duplicate() bool {
	return o.AInB || o.BInA
}

// Overlap computes containment between two non-empty texts. Empty texts
// never overlap.
func Overlap(a, b string) FreeTextOverlap {
	if a == "" || b == "" {
		return FreeTextOverlap{}
	}
	return FreeTextOverlap{
		AInB: strings.Contains(b, a),
		BInA: strings.Contains(a, b),
	}
}

// Codec merges comments. The zero value concatenates free text unconditionally.
type Codec struct {
	// DedupeFreeText drops a text already contained in the other one
	// instead of concatenating both.
	DedupeFreeText bool
}

// MergeFreeText joins a and b with a blank line when both are non-empty.
// Overlap is always computed; it only changes the result when
// DedupeFreeText is set.
func (c Codec) MergeFreeText(a, b string) string {
	overlap := Overlap(a, b)
	if c.DedupeFreeText && overlap.Duplicate() {
		if overlap.BInA {
			return a
		}
		return b
	}

	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + "\n\n" + b
}

// Merge combines two raw comments. It returns the merged free text and the
// serialized directives separately; callers concatenate them.
func (c Codec) Merge(a, b string) (text, suffix string, err error) {
	ca, err := Extract(a)
	if err != nil {
		return "", "", fmt.Errorf("extract first comment: %w", err)
	}
	cb, err := Extract(b)
	if err != nil {
		return "", "", fmt.Errorf("extract second comment: %w", err)
	}

	ca.Annotations.MergeFrom(cb.Annotations)
	return c.MergeFreeText(ca.Text, cb.Text), ca.Annotations.String(), nil
}

// MergeRaw is Merge with the two halves already concatenated.
func (c Codec) MergeRaw(a, b string) (string, error) {
	text, suffix, err := c.Merge(a, b)
	if err != nil {
		return "", err
	}
	return text + suffix, nil
}

var defaultCodec Codec

// Merge is Codec{}.Merge.
func Merge(a, b string) (text, suffix string, err error) {
	return defaultCodec.Merge(a, b)
}
