// Package ranking orders players by level.
//
// Players are ranked by level descending. Players on the same level are
// ordered by player ID ascending, so the order never depends on the order the
// store happens to return documents in.
package ranking

import "sort"

// Entry is one player's position in the global ranking.
type Entry struct {
	Rank       int    `json:"rank"`
	PlayerID   string `json:"player_id"`
	Name       string `json:"name"`
	Level      int    `json:"level"`
	Experience int64  `json:"experience"`
}

// Compute returns a ranked copy of entries. The input is not modified and
// its Rank fields are ignored.
func Compute(entries []Entry) []Entry {
	ranked := make([]Entry, len(entries))
	copy(ranked, entries)
	sort.Slice(ranked, func(i, j int) bool {
		return Less(ranked[i], ranked[j])
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// Less reports whether a ranks ahead of b.
func Less(a, b Entry) bool {
	if a.Level != b.Level {
		return a.Level > b.Level
	}
	return a.PlayerID < b.PlayerID
}

// Positions maps player ID to rank.
func Positions(ranked []Entry) map[string]int {
	positions := make(map[string]int, len(ranked))
	for _, e := range ranked {
		positions[e.PlayerID] = e.Rank
	}
	return positions
}
