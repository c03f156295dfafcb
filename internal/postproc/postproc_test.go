package postproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitAnnotations(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"prose and annotations",
			"1. e4 { Good move[%cal Ge2e4] } *",
			"1. e4 { Good move } { [%cal Ge2e4] } *",
		},
		{
			"prose ends with space",
			"1. e4 { Good move [%cal Ge2e4] } *",
			"1. e4 { Good move } { [%cal Ge2e4] } *",
		},
		{
			"annotations only, tight",
			"1. e4 {[%cal Ge2e4]} *",
			"1. e4 {[%cal Ge2e4]} *",
		},
		{
			"annotations only, padded",
			"1. e4 { [%cal Ge2e4][%csl Re4] } *",
			"1. e4 { [%cal Ge2e4][%csl Re4] } *",
		},
		{
			"no annotations",
			"1. e4 { Good move } e5 { [ref] } *",
			"1. e4 { Good move } e5 { [ref] } *",
		},
		{
			"no comments",
			"1. e4 e5 *",
			"1. e4 e5 *",
		},
		{
			"several spans keep their offsets",
			"{ Intro[%clk 0:05:00] } 1. e4 { A[%cal Ge2e4] } e5 { [%csl Re5] } 2. Nf3 { B\n\nC[%cal Gg1f3,Gb1c3] } *",
			"{ Intro } { [%clk 0:05:00] } 1. e4 { A } { [%cal Ge2e4] } e5 { [%csl Re5] } 2. Nf3 { B\n\nC } { [%cal Gg1f3,Gb1c3] } *",
		},
		{
			"only first token position counts",
			"1. e4 { x[%cal Ge2e4] y [%csl Re4] } *",
			"1. e4 { x } { [%cal Ge2e4] y [%csl Re4] } *",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitAnnotations(tt.in))
		})
	}
}

func TestSplitAnnotationsIsStable(t *testing.T) {
	in := "1. e4 { Good move[%cal Ge2e4] } e5 { Fine[%csl Re5] } *"
	once := SplitAnnotations(in)
	assert.Equal(t, once, SplitAnnotations(once))
}
