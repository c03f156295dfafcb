// Package tree holds the move-tree model shared by the PGN adapter and the
// merger: games made of a synthetic root and nested variations.
package tree

import "sort"

// Tag is one PGN tag pair.
type Tag struct {
	Name  string
	Value string
}

// Node is one ply. Children[0] is the main continuation, the rest are
// alternatives to it.
type Node struct {
	Move     Move
	SAN      string
	NAGs     []int // sorted, unique
	Comment  string
	Children []*Node
}

// AddChild appends a new child for move and returns it.
func (n *Node) AddChild(move Move, san string) *Node {
	child := &Node{Move: move, SAN: san}
	n.Children = append(n.Children, child)
	return child
}

// AddNAG inserts nag keeping NAGs sorted and unique.
func (n *Node) AddNAG(nag int) {
	i := sort.SearchInts(n.NAGs, nag)
	if i < len(n.NAGs) && n.NAGs[i] == nag {
		return
	}
	n.NAGs = append(n.NAGs, 0)
	copy(n.NAGs[i+1:], n.NAGs[i:])
	n.NAGs[i] = nag
}

// UnionNAGs adds every NAG of other.
func (n *Node) UnionNAGs(other []int) {
	for _, nag := range other {
		n.AddNAG(nag)
	}
}

// Game is a parsed or merged game.
type Game struct {
	Tags   []Tag
	Root   *Node
	Result string
}

// NewGame returns a game with an empty root and an unknown result.
func NewGame() *Game {
	return &Game{Root: &Node{}, Result: "*"}
}

// Tag returns the value of the named tag.
func (g *Game) Tag(name string) (string, bool) {
	for _, t := range g.Tags {
		if t.Name == name {
			return t.Value, true
		}
	}
	return "", false
}

// SetTag replaces the named tag or appends it.
func (g *Game) SetTag(name, value string) {
	for i := range g.Tags {
		if g.Tags[i].Name == name {
			g.Tags[i].Value = value
			return
		}
	}
	g.Tags = append(g.Tags, Tag{Name: name, Value: value})
}

// CountNodes returns the number of move nodes below the root.
func (g *Game) CountNodes() int {
	count := 0
	stack := append([]*Node(nil), g.Root.Children...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		stack = append(stack, n.Children...)
	}
	return count
}
