package comparison

import (
	"github.com/richinex/arbiter/model"
)

// SlotCount returns the number of active slots.
func (s *Store) SlotCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SlotCount
}

// ModelLabels returns the labels of the active slots.
func (s *Store) ModelLabels() []string {
	n := s.SlotCount()
	return append([]string{}, model.SlotLabels[:n]...)
}

// ActiveModelKeys returns the keys of the active slots, a prefix of model.SlotKeys.
func (s *Store) ActiveModelKeys() []model.SlotKey {
	n := s.SlotCount()
	return append([]model.SlotKey{}, model.SlotKeys[:n]...)
}

// CurrentModelResponses returns key, label and content for each active slot.
func (s *Store) CurrentModelResponses() []SlotResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SlotResponse, 0, s.state.SlotCount)
	for _, key := range model.SlotKeys[:s.state.SlotCount] {
		out = append(out, SlotResponse{
			Key:     key,
			Label:   key.Label(),
			Content: s.state.ModelResponses[key],
		})
	}
	return out
}

// Snippets returns the snippets in display order.
func (s *Store) Snippets() []model.Snippet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Snippet{}, s.state.Snippets...)
}

// SelectedSnippet looks up the selected snippet. ok is false when nothing is
// selected or the selected snippet no longer exists.
func (s *Store) SelectedSnippet() (snippet model.Snippet, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.SelectedSnippetID == "" {
		return model.Snippet{}, false
	}
	for _, sn := range s.state.Snippets {
		if sn.ID == s.state.SelectedSnippetID {
			return sn, true
		}
	}
	return model.Snippet{}, false
}

// CurrentComparison returns the history record at the current index.
func (s *Store) CurrentComparison() (model.HistoryRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.HasCurrentComparison() {
		return model.HistoryRecord{}, false
	}
	return s.state.ComparisonHistory[s.state.CurrentComparisonIndex].Clone(), true
}

// ArbitrationTemplate builds the arbitration request from the current notes
// and snippets. It is recomputed on every call.
func (s *Store) ArbitrationTemplate() string {
	s.mu.Lock()
	notes := s.state.ArbitrationNotes
	snippets := append([]model.Snippet{}, s.state.Snippets...)
	s.mu.Unlock()

	return BuildArbitrationTemplate(notes, snippets, s.loc)
}
