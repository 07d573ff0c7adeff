package selection

import (
	"sync"
	"time"

	"github.com/richinex/arbiter/internal/observable"
)

// DocumentTracker reports every selection change in a document. Each change
// sets IsSelecting and (re)arms a single deselection timer; when the timer
// fires only IsSelecting is reset, text and rect keep their last values.
type DocumentTracker struct {
	doc   Document
	clock Clock
	delay time.Duration
	state *observable.Value[State]

	mu     sync.Mutex
	timer  Timer
	gen    uint64
	closed bool
	remove func()
	once   sync.Once
}

// NewDocumentTracker subscribes to doc's selection-change notifications.
func NewDocumentTracker(doc Document, opts ...Option) *DocumentTracker {
	o := options{clock: SystemClock{}, delay: DefaultDeselectDelay}
	for _, opt := range opts {
		opt(&o)
	}

	t := &DocumentTracker{
		doc:   doc,
		clock: o.clock,
		delay: o.delay,
		state: observable.New(State{}),
	}
	remove := doc.OnSelectionChange(t.handleSelectionChange)

	t.mu.Lock()
	t.remove = remove
	t.mu.Unlock()
	return t
}

// State returns the current tracker output.
func (t *DocumentTracker) State() State {
	if t.state == nil {
		return State{}
	}
	return t.state.Get()
}

// Subscribe registers fn for state changes.
func (t *DocumentTracker) Subscribe(fn func(State)) func() {
	if t.state == nil {
		return func() {}
	}
	return t.state.Subscribe(fn)
}

func (t *DocumentTracker) handleSelectionChange() {
	next := State{IsSelecting: true}
	if sel := t.doc.Selection(); sel != nil {
		next.Text = sel.Text()
		if sel.RangeCount() > 0 {
			r := sel.FirstRangeRect()
			next.Rect = &r
		}
	}

	// The timer is armed inside the update so its callback is always
	// ordered after the state it expires.
	t.state.Update(func(State) (State, bool) {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.closed {
			return State{}, false
		}
		t.stopTimerLocked()
		t.gen++
		gen := t.gen
		t.timer = t.clock.AfterFunc(t.delay, func() { t.expire(gen) })
		return next, true
	})
}

func (t *DocumentTracker) expire(gen uint64) {
	t.state.Update(func(s State) (State, bool) {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.closed || gen != t.gen {
			return s, false
		}
		t.timer = nil
		s.IsSelecting = false
		return s, true
	})
}

// ClearSelection clears the document selection and resets the output.
func (t *DocumentTracker) ClearSelection() {
	if t.doc != nil {
		t.doc.ClearSelection()
	}
	if t.state == nil {
		return
	}
	t.state.Update(func(State) (State, bool) {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.stopTimerLocked()
		t.gen++
		return State{}, true
	})
}

// Close removes the listener and cancels any pending timer. It is safe to
// call more than once and on a tracker that was never constructed.
func (t *DocumentTracker) Close() error {
	t.once.Do(func() {
		t.mu.Lock()
		t.closed = true
		t.stopTimerLocked()
		remove := t.remove
		t.remove = nil
		t.mu.Unlock()

		if remove != nil {
			remove()
		}
	})
	return nil
}

func (t *DocumentTracker) stopTimerLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
