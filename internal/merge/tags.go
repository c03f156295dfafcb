package merge

import "github.com/olleeriksson/merge-pgn/internal/tree"

// sevenTagRoster lists the mandatory PGN tags with their unknown values.
var sevenTagRoster = []tree.Tag{
	{Name: "Event", Value: "?"},
	{Name: "Site", Value: "?"},
	{Name: "Date", Value: "????.??.??"},
	{Name: "Round", Value: "?"},
	{Name: "White", Value: "?"},
	{Name: "Black", Value: "?"},
	{Name: "Result", Value: "*"},
}

// mergeTags keeps a tag only when every game agrees on its value. Roster
// tags are always present and fall back to their unknown value.
func mergeTags(games []*tree.Game) []tree.Tag {
	tags := make([]tree.Tag, 0, len(sevenTagRoster))
	roster := make(map[string]bool, len(sevenTagRoster))
	for _, t := range sevenTagRoster {
		roster[t.Name] = true
		if v, ok := commonTag(games, t.Name); ok {
			t.Value = v
		}
		tags = append(tags, t)
	}

	if len(games) == 0 {
		return tags
	}
	for _, t := range games[0].Tags {
		if roster[t.Name] {
			continue
		}
		if v, ok := commonTag(games, t.Name); ok {
			tags = append(tags, tree.Tag{Name: t.Name, Value: v})
			roster[t.Name] = true
		}
	}
	return tags
}

func commonTag(games []*tree.Game, name string) (string, bool) {
	if len(games) == 0 {
		return "", false
	}
	first, ok := games[0].Tag(name)
	if !ok {
		return "", false
	}
	for _, g := range games[1:] {
		if v, ok := g.Tag(name); !ok || v != first {
			return "", false
		}
	}
	return first, true
}
