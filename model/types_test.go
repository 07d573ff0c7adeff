package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotKeyLabel(t *testing.T) {
	assert.Equal(t, "Model A", SlotA.Label())
	assert.Equal(t, "Model D", SlotD.Label())
	assert.Equal(t, "Model X", SlotKey("modelX").Label())
}

func TestParseSlotKey(t *testing.T) {
	cases := map[string]SlotKey{
		"modelA": SlotA,
		"b":      SlotB,
		"C":      SlotC,
		"d":      SlotD,
	}
	for in, want := range cases {
		got, ok := ParseSlotKey(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseSlotKey("e")
	assert.False(t, ok)
	_, ok = ParseSlotKey("modelE")
	assert.False(t, ok)
}

func TestDefaultState(t *testing.T) {
	s := DefaultState()
	assert.Equal(t, 3, s.SlotCount)
	assert.Len(t, s.ModelResponses, 4)
	assert.Equal(t, 0, s.CurrentComparisonIndex)
	assert.False(t, s.HasCurrentComparison())
	assert.NotNil(t, s.Snippets)
	assert.NotNil(t, s.ComparisonHistory)
}

func TestStateCloneIsDeep(t *testing.T) {
	s := DefaultState()
	s.ModelResponses[SlotA] = "one"
	s.Snippets = append(s.Snippets, Snippet{ID: "s1"})
	s.ComparisonHistory = append(s.ComparisonHistory, HistoryRecord{ID: "h1", ModelResponses: Responses{SlotA: "one"}})

	c := s.Clone()
	c.ModelResponses[SlotA] = "two"
	c.Snippets[0].ID = "changed"
	c.ComparisonHistory[0].ModelResponses[SlotA] = "two"

	assert.Equal(t, "one", s.ModelResponses[SlotA])
	assert.Equal(t, "s1", s.Snippets[0].ID)
	assert.Equal(t, "one", s.ComparisonHistory[0].ModelResponses[SlotA])
}

func TestNewSnippet(t *testing.T) {
	fixed := time.Date(2025, 3, 4, 5, 6, 7, 891234567, time.UTC)
	defer SetClock(func() time.Time { return fixed })()
	defer SetIDGenerator(func() string { return "id-1" })()

	s, err := NewSnippet("  quoted ", "Model B", SnippetMetadata{CardID: "card-b", SelectionRange: "3-10"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", s.ID)
	assert.Equal(t, "  quoted ", s.Text, "factory must not trim")
	assert.Equal(t, "Model B", s.ModelLabel)
	assert.Equal(t, "card-b", s.Metadata.CardID)
	assert.Equal(t, "3-10", s.Metadata.SelectionRange)
	assert.True(t, s.Timestamp.Equal(fixed.Truncate(time.Millisecond)))
}

func TestNewSnippetRejectsEmptyText(t *testing.T) {
	_, err := NewSnippet("", "Model A", SnippetMetadata{})
	assert.ErrorIs(t, err, ErrEmptySnippetText)
}

func TestNewSnippetIDsDiffer(t *testing.T) {
	a, err := NewSnippet("a", "Model A", SnippetMetadata{})
	require.NoError(t, err)
	b, err := NewSnippet("b", "Model A", SnippetMetadata{})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestNewHistoryRecordCopiesResponses(t *testing.T) {
	r := Responses{SlotA: "x"}
	h := NewHistoryRecord(r)
	r[SlotA] = "y"
	assert.Equal(t, "x", h.ModelResponses[SlotA])
	assert.NotEmpty(t, h.ID)
}
