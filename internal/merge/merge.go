// Package merge unifies several games into one tree of variations.
//
// Moves are unified by identity only: two siblings fuse when they play the
// same move from the same tree depth under an already fused parent. Board
// positions are never compared, so transpositions stay separate lines.
package merge

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/olleeriksson/merge-pgn/internal/annotation"
	"github.com/olleeriksson/merge-pgn/internal/tree"
)

// Config configures a Merger.
type Config struct {
	Codec  annotation.Codec
	Logger zerolog.Logger
}

// Stats describes one merge run.
type Stats struct {
	Games  int // input games
	Passes int // breadth-first passes
	Input  int // move nodes across all inputs
	Nodes  int // move nodes in the merged tree
}

// Merger merges games. It keeps no state between calls.
type Merger struct {
	codec annotation.Codec
	log   zerolog.Logger
}

// New creates a Merger.
func New(cfg Config) *Merger {
	return &Merger{
		codec: cfg.Codec,
		log:   cfg.Logger,
	}
}

// pending pairs a merged node with the source nodes still to be fused
// into its children.
type pending struct {
	target  *tree.Node
	sources []*tree.Node
}

// Merge builds a new game from games. Input games are not modified and no
// node of the result is shared with them.
func (m *Merger) Merge(games []*tree.Game) (*tree.Game, Stats, error) {
	stats := Stats{Games: len(games)}
	out := tree.NewGame()
	out.Tags = mergeTags(games)
	if v, ok := out.Tag("Result"); ok {
		out.Result = v
	}

	var top []*tree.Node
	for i, g := range games {
		text, suffix, err := m.codec.Merge(out.Root.Comment, g.Root.Comment)
		if err != nil {
			return nil, stats, fmt.Errorf("game %d comment: %w", i+1, err)
		}
		out.Root.Comment = text + suffix
		top = append(top, g.Root.Children...)
		stats.Input += g.CountNodes()
	}

	frontier := []pending{{target: out.Root, sources: top}}
	for len(frontier) > 0 {
		stats.Passes++
		next, grew, err := m.pass(frontier)
		if err != nil {
			return nil, stats, err
		}
		m.log.Debug().
			Int("pass", stats.Passes).
			Int("branches", len(frontier)).
			Int("next_branches", len(next)).
			Msg("merge pass complete")
		if !grew {
			break
		}
		frontier = next
	}

	stats.Nodes = out.CountNodes()
	m.log.Debug().
		Int("games", stats.Games).
		Int("passes", stats.Passes).
		Int("input_nodes", stats.Input).
		Int("merged_nodes", stats.Nodes).
		Msg("merge complete")

	return out, stats, nil
}

// pass fuses one depth level. grew reports whether any fused source node
// had children, i.e. whether another pass is needed.
func (m *Merger) pass(frontier []pending) (next []pending, grew bool, err error) {
	for _, p := range frontier {
		// Index into next for each move already created under p.target.
		seen := make(map[tree.Move]int, len(p.sources))

		for _, src := range p.sources {
			if src.Move == tree.NoMove {
				continue
			}
			if len(src.Children) > 0 {
				grew = true
			}

			idx, ok := seen[src.Move]
			if !ok {
				comment, err := m.codec.MergeRaw(src.Comment, "")
				if err != nil {
					return nil, false, fmt.Errorf("comment on %s (%s): %w", src.SAN, src.Move, err)
				}
				child := p.target.AddChild(src.Move, src.SAN)
				child.Comment = comment
				child.UnionNAGs(src.NAGs)

				seen[src.Move] = len(next)
				next = append(next, pending{
					target:  child,
					sources: append([]*tree.Node(nil), src.Children...),
				})
				continue
			}

			merged := &next[idx]
			comment, err := m.codec.MergeRaw(merged.target.Comment, src.Comment)
			if err != nil {
				return nil, false, fmt.Errorf("comment on %s (%s): %w", src.SAN, src.Move, err)
			}
			merged.target.Comment = comment
			merged.target.UnionNAGs(src.NAGs)
			merged.sources = append(merged.sources, src.Children...)
		}
	}
	return next, grew, nil
}
