// Package comparison owns the comparison state: model responses per slot,
// quoted snippets, arbitration notes and the saved comparison history.
//
// A Store is constructed explicitly with a persistence adapter and key. On
// construction it hydrates from the adapter (falling back to defaults), after
// which every persisting action writes the full state back. Persistence is
// best effort: read and write failures are logged and never surface to the
// caller, and the in-memory state stays authoritative.
package comparison

import (
	"context"
	"sync"
	"time"

	"github.com/richinex/arbiter/internal/observable"
	"github.com/richinex/arbiter/model"
	"github.com/richinex/arbiter/storage"
	"go.uber.org/zap"
)

// DefaultKey is the persistence key used when none is configured.
const DefaultKey = "ai-comparison-state"

const defaultTimeout = 5 * time.Second

// Direction selects a neighbouring history record.
type Direction string

const (
	Prev Direction = "prev"
	Next Direction = "next"
)

// SlotResponse is one active slot with its label and content.
type SlotResponse struct {
	Key     model.SlotKey `json:"key"`
	Label   string        `json:"label"`
	Content string        `json:"content"`
}

type versioned struct {
	version uint64
	state   model.State
}

// Store is the comparison state manager. It is safe for concurrent use;
// mutations run one at a time.
type Store struct {
	kv      storage.KeyValue
	key     string
	log     *zap.Logger
	loc     *time.Location
	timeout time.Duration

	mu      sync.Mutex
	state   model.State
	version uint64

	changes *observable.Value[versioned]
}

// Option configures a Store.
type Option func(*Store)

// WithKey sets the persistence key.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithLocation sets the zone used for template timestamps. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithTimeout bounds each adapter call.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a store and hydrates it from kv. It never fails: a missing or
// unreadable record yields the default state.
func New(ctx context.Context, kv storage.KeyValue, opts ...Option) *Store {
	s := &Store{
		kv:      kv,
		key:     DefaultKey,
		log:     zap.NewNop(),
		loc:     time.Local,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(zap.String("key", s.key))

	s.state = s.hydrate(ctx)
	s.changes = observable.New(versioned{state: s.state.Clone()})
	return s
}

func (s *Store) hydrate(ctx context.Context) model.State {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.log.Warn("failed to read persisted comparison state, using defaults", zap.Error(err))
		return model.DefaultState()
	}
	if !ok {
		s.log.Debug("no persisted comparison state, using defaults")
		return model.DefaultState()
	}

	state, warnings, err := Decode(data)
	if err != nil {
		s.log.Warn("failed to parse persisted comparison state, using defaults", zap.Error(err))
		return model.DefaultState()
	}
	for _, w := range warnings {
		s.log.Warn("ignored persisted field", zap.Error(w))
	}
	s.log.Debug("restored comparison state",
		zap.Int("snippets", len(state.Snippets)),
		zap.Int("history", len(state.ComparisonHistory)),
	)
	return state
}

// mutate applies fn under the lock. fn reports whether it changed anything;
// changes are persisted when persist is true and always announced.
func (s *Store) mutate(persist bool, fn func(st *model.State) bool) {
	s.mu.Lock()
	if !fn(&s.state) {
		s.mu.Unlock()
		return
	}
	if persist {
		s.saveLocked()
	}
	s.version++
	next := versioned{version: s.version, state: s.state.Clone()}
	s.mu.Unlock()

	s.changes.Update(func(cur versioned) (versioned, bool) {
		if next.version <= cur.version {
			return cur, false
		}
		return next, true
	})
}

func (s *Store) saveLocked() {
	data, err := Encode(s.state)
	if err != nil {
		s.log.Error("failed to encode comparison state", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		s.log.Error("failed to persist comparison state", zap.Error(err))
	}
}

// SetSlotCount sets the number of active slots. Values outside [2,4] are ignored.
func (s *Store) SetSlotCount(count int) {
	if count < model.MinSlots || count > model.MaxSlots {
		return
	}
	s.mutate(true, func(st *model.State) bool {
		st.SlotCount = count
		return true
	})
}

// SetModelResponse stores content under key. Keys outside the four fixed
// slots are accepted as-is.
func (s *Store) SetModelResponse(key model.SlotKey, content string) {
	s.mutate(true, func(st *model.State) bool {
		if st.ModelResponses == nil {
			st.ModelResponses = model.EmptyResponses()
		}
		st.ModelResponses[key] = content
		return true
	})
}

// AddSnippet creates a snippet and appends it. Empty text is ignored and
// reported through ok.
func (s *Store) AddSnippet(text, modelLabel string, meta model.SnippetMetadata) (snippet model.Snippet, ok bool) {
	sn, err := model.NewSnippet(text, modelLabel, meta)
	if err != nil {
		s.log.Debug("snippet not added", zap.Error(err))
		return model.Snippet{}, false
	}
	s.mutate(true, func(st *model.State) bool {
		st.Snippets = append(st.Snippets, sn)
		return true
	})
	return sn, true
}

// RemoveSnippet removes the snippet with id and clears the selection if it
// pointed at it.
func (s *Store) RemoveSnippet(id string) {
	s.mutate(true, func(st *model.State) bool {
		idx := -1
		for i, sn := range st.Snippets {
			if sn.ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return false
		}
		st.Snippets = append(st.Snippets[:idx:idx], st.Snippets[idx+1:]...)
		if st.SelectedSnippetID == id {
			st.SelectedSnippetID = ""
		}
		return true
	})
}

// ClearSnippets removes every snippet and the selection.
func (s *Store) ClearSnippets() {
	s.mutate(true, func(st *model.State) bool {
		st.Snippets = []model.Snippet{}
		st.SelectedSnippetID = ""
		return true
	})
}

// SetArbitrationNotes replaces the notes.
func (s *Store) SetArbitrationNotes(notes string) {
	s.mutate(true, func(st *model.State) bool {
		st.ArbitrationNotes = notes
		return true
	})
}

// SelectSnippet marks id as selected; "" clears the selection. The id is not
// validated. This is transient UI state and is not persisted on its own.
func (s *Store) SelectSnippet(id string) {
	s.mutate(false, func(st *model.State) bool {
		if st.SelectedSnippetID == id {
			return false
		}
		st.SelectedSnippetID = id
		return true
	})
}

// SetArbitrationModalOpen sets the modal flag. Not persisted on its own.
func (s *Store) SetArbitrationModalOpen(open bool) {
	s.mutate(false, func(st *model.State) bool {
		if st.IsArbitrationModalOpen == open {
			return false
		}
		st.IsArbitrationModalOpen = open
		return true
	})
}

// SaveCurrentComparison appends a snapshot of the current responses to the
// history and makes it current.
func (s *Store) SaveCurrentComparison() model.HistoryRecord {
	var rec model.HistoryRecord
	s.mutate(true, func(st *model.State) bool {
		rec = model.NewHistoryRecord(st.ModelResponses)
		st.ComparisonHistory = append(st.ComparisonHistory, rec)
		st.CurrentComparisonIndex = len(st.ComparisonHistory) - 1
		return true
	})
	return rec.Clone()
}

// NavigateComparison loads the previous or next history record. It does
// nothing at either end or for an unknown direction.
func (s *Store) NavigateComparison(dir Direction) {
	s.mutate(true, func(st *model.State) bool {
		idx := st.CurrentComparisonIndex
		switch dir {
		case Prev:
			if idx <= 0 {
				return false
			}
			idx--
		case Next:
			if idx >= len(st.ComparisonHistory)-1 {
				return false
			}
			idx++
		default:
			return false
		}
		// An index left out of range by a persisted record steps toward the
		// history until a record loads.
		if !loadInto(st, idx) {
			st.CurrentComparisonIndex = idx
		}
		return true
	})
}

// LoadComparison replaces the responses with a copy of history record index.
// Out-of-range indexes are ignored.
func (s *Store) LoadComparison(index int) {
	s.mutate(true, func(st *model.State) bool {
		return loadInto(st, index)
	})
}

func loadInto(st *model.State, index int) bool {
	if index < 0 || index >= len(st.ComparisonHistory) {
		return false
	}
	st.ModelResponses = st.ComparisonHistory[index].ModelResponses.Clone()
	st.CurrentComparisonIndex = index
	return true
}

// ClearAllData resets the state to defaults and deletes the persisted record.
func (s *Store) ClearAllData() {
	s.mutate(false, func(st *model.State) bool {
		*st = model.DefaultState()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.kv.Remove(ctx, s.key); err != nil {
			s.log.Error("failed to remove persisted comparison state", zap.Error(err))
		}
		return true
	})
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() model.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers fn to receive a copy of the state after every change.
// Deliveries to one subscriber are serialized and never go back in time: a
// notification older than one already delivered is dropped. fn must not
// mutate the store synchronously.
func (s *Store) Subscribe(fn func(model.State)) (unsubscribe func()) {
	var (
		mu   sync.Mutex
		last uint64
	)
	return s.changes.Subscribe(func(v versioned) {
		mu.Lock()
		defer mu.Unlock()
		if v.version <= last {
			return
		}
		last = v.version
		fn(v.state.Clone())
	})
}

// Key returns the persistence key.
func (s *Store) Key() string {
	return s.key
}
