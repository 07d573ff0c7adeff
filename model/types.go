// Package model provides domain types shared across packages.
package model

import (
	"maps"
	"time"
)

// SlotKey identifies one of the four fixed response slots.
type SlotKey string

const (
	SlotA SlotKey = "modelA"
	SlotB SlotKey = "modelB"
	SlotC SlotKey = "modelC"
	SlotD SlotKey = "modelD"
)

// Slot count bounds.
const (
	MinSlots     = 2
	MaxSlots     = 4
	DefaultSlots = 3
)

// SlotKeys lists the fixed slots in display order.
var SlotKeys = [MaxSlots]SlotKey{SlotA, SlotB, SlotC, SlotD}

// SlotLabels lists the human-readable slot names in display order.
var SlotLabels = [MaxSlots]string{"Model A", "Model B", "Model C", "Model D"}

// Label names a slot after its trailing letter ("modelC" -> "Model C").
func (k SlotKey) Label() string {
	if k == "" {
		return "Model"
	}
	return "Model " + string(k[len(k)-1:])
}

// ParseSlotKey accepts "modelB", "b" or "B".
func ParseSlotKey(s string) (SlotKey, bool) {
	for _, k := range SlotKeys {
		if s == string(k) {
			return k, true
		}
	}
	if len(s) == 1 {
		c := s[0] | 0x20
		if c >= 'a' && c <= 'd' {
			return SlotKeys[c-'a'], true
		}
	}
	return "", false
}

// Responses maps slot keys to response text. Unknown keys are tolerated.
type Responses map[SlotKey]string

// Clone returns a deep copy.
func (r Responses) Clone() Responses {
	if r == nil {
		return Responses{}
	}
	return maps.Clone(r)
}

// EmptyResponses returns a map with all four slot keys set to "".
func EmptyResponses() Responses {
	r := make(Responses, MaxSlots)
	for _, k := range SlotKeys {
		r[k] = ""
	}
	return r
}

// SnippetMetadata carries caller-owned attribution for a snippet.
type SnippetMetadata struct {
	// CardID identifies the UI region the quote came from.
	CardID string `json:"cardId"`
	// SelectionRange describes the selection position; format owned by the caller.
	SelectionRange string `json:"selectionRange"`
}

// Snippet is an immutable quoted excerpt.
type Snippet struct {
	ID         string          `json:"id"`
	Text       string          `json:"text"`
	ModelLabel string          `json:"modelLabel"`
	Timestamp  time.Time       `json:"timestamp"`
	Metadata   SnippetMetadata `json:"metadata"`
}

// HistoryRecord is a saved snapshot of all slot responses.
type HistoryRecord struct {
	ID             string    `json:"id"`
	ModelResponses Responses `json:"modelResponses"`
	Timestamp      time.Time `json:"timestamp"`
}

// Clone returns a copy whose response map is not shared.
func (h HistoryRecord) Clone() HistoryRecord {
	h.ModelResponses = h.ModelResponses.Clone()
	return h
}

// State is the root aggregate owned by the comparison store.
type State struct {
	SlotCount              int
	ModelResponses         Responses
	Snippets               []Snippet
	ArbitrationNotes       string
	SelectedSnippetID      string // empty means no selection
	IsArbitrationModalOpen bool
	CurrentComparisonIndex int // out of range while history is empty
	ComparisonHistory      []HistoryRecord
}

// DefaultState returns the built-in defaults.
func DefaultState() State {
	return State{
		SlotCount:              DefaultSlots,
		ModelResponses:         EmptyResponses(),
		Snippets:               []Snippet{},
		CurrentComparisonIndex: 0,
		ComparisonHistory:      []HistoryRecord{},
	}
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	s.ModelResponses = s.ModelResponses.Clone()
	s.Snippets = append([]Snippet{}, s.Snippets...)
	history := make([]HistoryRecord, len(s.ComparisonHistory))
	for i, h := range s.ComparisonHistory {
		history[i] = h.Clone()
	}
	s.ComparisonHistory = history
	return s
}

// HasCurrentComparison reports whether CurrentComparisonIndex points into history.
func (s State) HasCurrentComparison() bool {
	return s.CurrentComparisonIndex >= 0 && s.CurrentComparisonIndex < len(s.ComparisonHistory)
}
