// Command execution for CLI commands.
//
// Information Hiding:
// - Argument parsing for slots, ranges and indexes
// - Output formatting

package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/richinex/arbiter/comparison"
	"github.com/richinex/arbiter/model"
)

// ErrInvalidRange is returned when a quote range cannot be applied to a slot.
var ErrInvalidRange = errors.New("invalid range")

const previewLen = 72

func parseSlot(arg string) (model.SlotKey, error) {
	key, ok := model.ParseSlotKey(arg)
	if !ok {
		return "", fmt.Errorf("unknown slot %q (use A-D)", arg)
	}
	return key, nil
}

// Slots sets the number of active slots.
func (s *Session) Slots(arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("invalid slot count %q: %w", arg, err)
	}
	if n < model.MinSlots || n > model.MaxSlots {
		return fmt.Errorf("slot count must be between %d and %d", model.MinSlots, model.MaxSlots)
	}
	s.Store.SetSlotCount(n)
	s.printf("%d slots active: %s\n", n, strings.Join(s.Store.ModelLabels(), ", "))
	return nil
}

// SetResponse stores text in a slot. "-" reads the text from the session input.
func (s *Session) SetResponse(slotArg, text string) error {
	key, err := parseSlot(slotArg)
	if err != nil {
		return err
	}
	if text == "-" {
		data, err := io.ReadAll(s.in)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		text = string(data)
	}
	s.Store.SetModelResponse(key, text)
	s.printf("%s: %d characters\n", key.Label(), len([]rune(text)))
	return nil
}

// Show prints the active slots, quotes, notes and history position.
func (s *Session) Show() error {
	st := s.Store.Snapshot()

	for _, r := range s.Store.CurrentModelResponses() {
		s.printf("== %s (%s) ==\n", r.Label, r.Key)
		if r.Content == "" {
			s.printf("(empty)\n\n")
			continue
		}
		s.printf("%s\n\n", r.Content)
	}

	s.printf("Quotes: %d\n", len(st.Snippets))
	for i, sn := range st.Snippets {
		marker := " "
		if sn.ID == st.SelectedSnippetID {
			marker = "*"
		}
		s.printf("%s %d. [%s] %s (%s)\n", marker, i+1, sn.ID, preview(sn.Text), sn.ModelLabel)
	}

	if st.ArbitrationNotes != "" {
		s.printf("Notes: %s\n", preview(st.ArbitrationNotes))
	}
	if st.HasCurrentComparison() {
		s.printf("History: %d/%d\n", st.CurrentComparisonIndex+1, len(st.ComparisonHistory))
	} else {
		s.printf("History: %d saved\n", len(st.ComparisonHistory))
	}
	return nil
}

// Quote adds a snippet cut from a slot's content. rng is "start-end" in
// characters, end exclusive; an empty rng quotes the whole response.
func (s *Session) Quote(slotArg, rng, label string) error {
	key, err := parseSlot(slotArg)
	if err != nil {
		return err
	}
	content := []rune(s.Store.Snapshot().ModelResponses[key])

	start, end := 0, len(content)
	if rng != "" {
		start, end, err = parseRange(rng)
		if err != nil {
			return err
		}
		if end > len(content) {
			return fmt.Errorf("%w: %s ends past %d characters", ErrInvalidRange, rng, len(content))
		}
	}

	text := strings.TrimSpace(string(content[start:end]))
	if text == "" {
		return fmt.Errorf("nothing to quote in %s", key.Label())
	}
	if label == "" {
		label = key.Label()
	}

	sn, ok := s.Store.AddSnippet(text, label, model.SnippetMetadata{
		CardID:         string(key),
		SelectionRange: fmt.Sprintf("%d-%d", start, end),
	})
	if !ok {
		return model.ErrEmptySnippetText
	}
	s.printf("Quote %d added [%s]: %s\n", len(s.Store.Snippets()), sn.ID, preview(sn.Text))
	return nil
}

func parseRange(rng string) (int, int, error) {
	a, b, ok := strings.Cut(rng, "-")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q (want start-end)", ErrInvalidRange, rng)
	}
	start, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q: %v", ErrInvalidRange, rng, err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q: %v", ErrInvalidRange, rng, err)
	}
	if start < 0 || end <= start {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidRange, rng)
	}
	return start, end, nil
}

// Unquote removes a snippet by id.
func (s *Session) Unquote(id string) error {
	before := len(s.Store.Snippets())
	s.Store.RemoveSnippet(id)
	if len(s.Store.Snippets()) == before {
		return fmt.Errorf("no quote with id %q", id)
	}
	s.printf("Removed %s\n", id)
	return nil
}

// ClearQuotes removes every snippet.
func (s *Session) ClearQuotes() error {
	n := len(s.Store.Snippets())
	s.Store.ClearSnippets()
	s.printf("Removed %d quotes\n", n)
	return nil
}

// Notes replaces the arbitration notes.
func (s *Session) Notes(text string) error {
	s.Store.SetArbitrationNotes(text)
	return nil
}

// Select marks a snippet as selected; "" clears the selection.
func (s *Session) Select(id string) error {
	s.Store.SelectSnippet(id)
	if id == "" {
		return nil
	}
	if _, ok := s.Store.SelectedSnippet(); !ok {
		s.printf("warning: no quote with id %q\n", id)
	}
	return nil
}

// Save records the current responses in history.
func (s *Session) Save() error {
	rec := s.Store.SaveCurrentComparison()
	s.printf("Saved comparison %d [%s]\n", len(s.Store.Snapshot().ComparisonHistory), rec.ID)
	return nil
}

// Nav moves through history ("prev" or "next").
func (s *Session) Nav(dir string) error {
	d := comparison.Direction(strings.ToLower(dir))
	if d != comparison.Prev && d != comparison.Next {
		return fmt.Errorf("direction must be prev or next, got %q", dir)
	}
	before := s.Store.Snapshot().CurrentComparisonIndex
	s.Store.NavigateComparison(d)
	after := s.Store.Snapshot()
	if after.CurrentComparisonIndex == before {
		edge := "last"
		if d == comparison.Prev {
			edge = "first"
		}
		s.printf("Already at the %s comparison\n", edge)
		return nil
	}
	s.printf("Comparison %d/%d\n", after.CurrentComparisonIndex+1, len(after.ComparisonHistory))
	return nil
}

// Load restores history record i (1-based, as printed by History).
func (s *Session) Load(arg string) error {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("invalid index %q: %w", arg, err)
	}
	n := len(s.Store.Snapshot().ComparisonHistory)
	if i < 1 || i > n {
		return fmt.Errorf("index %d out of range (1-%d)", i, n)
	}
	s.Store.LoadComparison(i - 1)
	s.printf("Comparison %d/%d\n", i, n)
	return nil
}

// History lists saved comparisons.
func (s *Session) History() error {
	st := s.Store.Snapshot()
	if len(st.ComparisonHistory) == 0 {
		s.printf("No saved comparisons\n")
		return nil
	}
	for i, rec := range st.ComparisonHistory {
		marker := " "
		if i == st.CurrentComparisonIndex {
			marker = "*"
		}
		s.printf("%s %d. %s  %s  %s\n", marker, i+1,
			rec.Timestamp.Local().Format(time.DateTime), rec.ID, preview(rec.ModelResponses[model.SlotA]))
	}
	return nil
}

// Template prints the arbitration request as markdown or HTML.
func (s *Session) Template(html bool) error {
	tmpl := s.Store.ArbitrationTemplate()
	if !html {
		s.printf("%s", tmpl)
		if !strings.HasSuffix(tmpl, "\n") {
			s.printf("\n")
		}
		return nil
	}
	out, err := comparison.RenderHTML(tmpl)
	if err != nil {
		return err
	}
	s.printf("%s", out)
	return nil
}

// Reset clears all data and removes the persisted record.
func (s *Session) Reset() error {
	s.Store.ClearAllData()
	s.printf("All comparison data cleared\n")
	return nil
}

// preview collapses whitespace and truncates to previewLen runes.
func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= previewLen {
		return text
	}
	return string(runes[:previewLen]) + "..."
}
