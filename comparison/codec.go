package comparison

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/richinex/arbiter/model"
)

// timeLayout matches JavaScript's Date.prototype.toISOString.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

type recordMetadata struct {
	CardID         string `json:"cardId"`
	SelectionRange string `json:"selectionRange"`
}

type recordSnippet struct {
	ID         string         `json:"id"`
	Text       string         `json:"text"`
	ModelLabel string         `json:"modelLabel"`
	Timestamp  string         `json:"timestamp"`
	Metadata   recordMetadata `json:"metadata"`
}

type recordHistory struct {
	ID             string            `json:"id"`
	ModelResponses map[string]string `json:"modelResponses"`
	Timestamp      string            `json:"timestamp"`
}

// record is the persisted JSON shape of model.State.
type record struct {
	SlotCount              int               `json:"slotCount"`
	ModelResponses         map[string]string `json:"modelResponses"`
	Snippets               []recordSnippet   `json:"snippets"`
	ArbitrationNotes       string            `json:"arbitrationNotes"`
	SelectedSnippetID      *string           `json:"selectedSnippetId"`
	IsArbitrationModalOpen bool              `json:"isArbitrationModalOpen"`
	CurrentComparisonIndex int               `json:"currentComparisonIndex"`
	ComparisonHistory      []recordHistory   `json:"comparisonHistory"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return model.Instant(t), nil
}

func encodeResponses(r model.Responses) map[string]string {
	out := make(map[string]string, len(r))
	for k, v := range r {
		out[string(k)] = v
	}
	return out
}

func decodeResponses(m map[string]string) model.Responses {
	out := make(model.Responses, len(m))
	for k, v := range m {
		out[model.SlotKey(k)] = v
	}
	return out
}

// Encode serializes the full state, timestamps as ISO-8601 strings.
func Encode(s model.State) ([]byte, error) {
	rec := record{
		SlotCount:              s.SlotCount,
		ModelResponses:         encodeResponses(s.ModelResponses),
		Snippets:               make([]recordSnippet, 0, len(s.Snippets)),
		ArbitrationNotes:       s.ArbitrationNotes,
		IsArbitrationModalOpen: s.IsArbitrationModalOpen,
		CurrentComparisonIndex: s.CurrentComparisonIndex,
		ComparisonHistory:      make([]recordHistory, 0, len(s.ComparisonHistory)),
	}
	if s.SelectedSnippetID != "" {
		id := s.SelectedSnippetID
		rec.SelectedSnippetID = &id
	}
	for _, sn := range s.Snippets {
		rec.Snippets = append(rec.Snippets, recordSnippet{
			ID:         sn.ID,
			Text:       sn.Text,
			ModelLabel: sn.ModelLabel,
			Timestamp:  formatTime(sn.Timestamp),
			Metadata: recordMetadata{
				CardID:         sn.Metadata.CardID,
				SelectionRange: sn.Metadata.SelectionRange,
			},
		})
	}
	for _, h := range s.ComparisonHistory {
		rec.ComparisonHistory = append(rec.ComparisonHistory, recordHistory{
			ID:             h.ID,
			ModelResponses: encodeResponses(h.ModelResponses),
			Timestamp:      formatTime(h.Timestamp),
		})
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode comparison state: %w", err)
	}
	return data, nil
}

// FieldError reports a persisted field that could not be restored.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Decode restores a state from a persisted record by shallow-merging every
// top-level field present in data over model.DefaultState. Fields that are
// absent, null or undecodable keep their default; the latter two are reported
// as warnings. A non-object payload is an error.
func Decode(data []byte) (model.State, []error, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return model.State{}, nil, fmt.Errorf("decode comparison state: %w", err)
	}
	if fields == nil {
		return model.State{}, nil, fmt.Errorf("decode comparison state: record is null")
	}

	state := model.DefaultState()
	var warnings []error
	warn := func(field string, err error) {
		warnings = append(warnings, &FieldError{Field: field, Err: err})
	}

	// take decodes one field into dst. It reports false when the field is
	// absent, null or malformed.
	take := func(field string, dst any) bool {
		raw, ok := fields[field]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return false
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			warn(field, err)
			return false
		}
		return true
	}

	var slotCount int
	if take("slotCount", &slotCount) {
		if slotCount < model.MinSlots || slotCount > model.MaxSlots {
			warn("slotCount", fmt.Errorf("out of range: %d", slotCount))
		} else {
			state.SlotCount = slotCount
		}
	}

	var responses map[string]string
	if take("modelResponses", &responses) {
		state.ModelResponses = decodeResponses(responses)
	}
	for _, k := range model.SlotKeys {
		if _, ok := state.ModelResponses[k]; !ok {
			state.ModelResponses[k] = ""
		}
	}

	var snippets []recordSnippet
	if take("snippets", &snippets) {
		state.Snippets = make([]model.Snippet, 0, len(snippets))
		for i, rs := range snippets {
			ts, err := parseTime(rs.Timestamp)
			if err != nil {
				warn(fmt.Sprintf("snippets[%d].timestamp", i), err)
			}
			state.Snippets = append(state.Snippets, model.Snippet{
				ID:         rs.ID,
				Text:       rs.Text,
				ModelLabel: rs.ModelLabel,
				Timestamp:  ts,
				Metadata: model.SnippetMetadata{
					CardID:         rs.Metadata.CardID,
					SelectionRange: rs.Metadata.SelectionRange,
				},
			})
		}
	}

	take("arbitrationNotes", &state.ArbitrationNotes)

	var selected string
	if take("selectedSnippetId", &selected) {
		state.SelectedSnippetID = selected
	}

	take("isArbitrationModalOpen", &state.IsArbitrationModalOpen)
	take("currentComparisonIndex", &state.CurrentComparisonIndex)

	var history []recordHistory
	if take("comparisonHistory", &history) {
		state.ComparisonHistory = make([]model.HistoryRecord, 0, len(history))
		for i, rh := range history {
			ts, err := parseTime(rh.Timestamp)
			if err != nil {
				warn(fmt.Sprintf("comparisonHistory[%d].timestamp", i), err)
			}
			state.ComparisonHistory = append(state.ComparisonHistory, model.HistoryRecord{
				ID:             rh.ID,
				ModelResponses: decodeResponses(rh.ModelResponses),
				Timestamp:      ts,
			})
		}
	}

	return state, warnings, nil
}
