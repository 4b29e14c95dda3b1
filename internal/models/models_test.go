package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecencyList_RecordDedupesIgnoringCase(t *testing.T) {
	var list RecencyList
	for _, name := range []string{"Ramen", "ramen", "Sushi"} {
		list = list.Record(name, 8)
	}

	assert.Equal(t, RecencyList{"Sushi", "Ramen"}, list)
}

func TestRecencyList_RecordDropsOldestPastLimit(t *testing.T) {
	var list RecencyList
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"}
	for _, name := range names {
		list = list.Record(name, 8)
	}

	assert.Len(t, list, 8)
	assert.Equal(t, "i", list[0])
	assert.NotContains(t, list, "a")
	assert.Equal(t, "b", list[7])
}

func TestRecencyList_RecordDoesNotMutateReceiver(t *testing.T) {
	list := RecencyList{"Tacos", "Pho"}
	moved := list.Record("pho", 8)

	assert.Equal(t, RecencyList{"Pho", "Tacos"}, moved)
	assert.Equal(t, RecencyList{"Tacos", "Pho"}, list)
}

func TestStats_Bump(t *testing.T) {
	s := Stats{}
	s = s.Bump(3)
	s = s.Bump(3)
	assert.Equal(t, Stats{TotalDecisions: 2, TimeSaved: 6}, s)

	s = s.Bump(-10)
	assert.Equal(t, Stats{TotalDecisions: 3, TimeSaved: 6}, s)
}

func TestPreferences_ToggleDiet(t *testing.T) {
	p := Preferences{Mood: "tired"}

	p = p.ToggleDiet("vegan")
	assert.True(t, p.HasDiet("vegan"))
	assert.Equal(t, "tired", p.Mood)

	p = p.ToggleDiet("halal")
	p = p.ToggleDiet("vegan")
	assert.False(t, p.HasDiet("vegan"))
	assert.Equal(t, []string{"halal"}, p.Dietary)
}
