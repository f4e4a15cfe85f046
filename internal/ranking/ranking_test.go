package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeOrdersByLevelThenID(t *testing.T) {
	entries := []Entry{
		{PlayerID: "c", Level: 3},
		{PlayerID: "a", Level: 3},
		{PlayerID: "d", Level: 1},
		{PlayerID: "b", Level: 7},
	}

	ranked := Compute(entries)

	var ids []string
	for i, e := range ranked {
		ids = append(ids, e.PlayerID)
		assert.Equal(t, i+1, e.Rank)
	}
	assert.Equal(t, []string{"b", "a", "c", "d"}, ids)
	assert.Equal(t, "c", entries[0].PlayerID, "input must not be reordered")
	assert.Zero(t, entries[0].Rank)
}

func TestComputeIsDeterministic(t *testing.T) {
	a := Compute([]Entry{{PlayerID: "x", Level: 2}, {PlayerID: "y", Level: 2}, {PlayerID: "z", Level: 2}})
	b := Compute([]Entry{{PlayerID: "z", Level: 2}, {PlayerID: "x", Level: 2}, {PlayerID: "y", Level: 2}})
	assert.Equal(t, a, b)
}

func TestComputeEmpty(t *testing.T) {
	assert.Empty(t, Compute(nil))
}

func TestPositions(t *testing.T) {
	positions := Positions(Compute([]Entry{{PlayerID: "a", Level: 1}, {PlayerID: "b", Level: 2}}))
	assert.Equal(t, map[string]int{"b": 1, "a": 2}, positions)
}
