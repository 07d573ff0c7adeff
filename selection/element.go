package selection

import (
	"strings"
	"sync"

	"github.com/richinex/arbiter/internal/observable"
)

// ElementTracker reports selections made inside one element. It reacts to
// pointer release (commit a selection) and clicks outside the element
// (drop the active flag). No timers are involved.
type ElementTracker struct {
	doc   Document
	el    Element
	state *observable.Value[State]

	mu      sync.Mutex
	closed  bool
	removes []func()
	once    sync.Once
}

// NewElementTracker subscribes to doc's pointer-up and click notifications,
// scoped to el.
func NewElementTracker(doc Document, el Element) *ElementTracker {
	t := &ElementTracker{
		doc:   doc,
		el:    el,
		state: observable.New(State{}),
	}
	removes := []func(){
		doc.OnPointerUp(t.handlePointerUp),
		doc.OnClick(t.handleClick),
	}

	t.mu.Lock()
	t.removes = removes
	t.mu.Unlock()
	return t
}

// State returns the current tracker output.
func (t *ElementTracker) State() State {
	if t.state == nil {
		return State{}
	}
	return t.state.Get()
}

// Subscribe registers fn for state changes.
func (t *ElementTracker) Subscribe(fn func(State)) func() {
	if t.state == nil {
		return func() {}
	}
	return t.state.Subscribe(fn)
}

func (t *ElementTracker) handlePointerUp() {
	sel := t.doc.Selection()
	if sel == nil || sel.IsCollapsed() || sel.RangeCount() == 0 {
		t.deactivate()
		return
	}
	if !t.el.Contains(sel.CommonAncestor()) {
		t.deactivate()
		return
	}
	text := strings.TrimSpace(sel.Text())
	if text == "" {
		t.deactivate()
		return
	}

	rect := sel.FirstRangeRect()
	t.emit(State{Text: text, Rect: &rect, IsSelecting: true})
}

func (t *ElementTracker) handleClick(target Node) {
	if t.el.Contains(target) {
		return
	}
	t.deactivate()
}

// deactivate drops IsSelecting and keeps the last text and rect.
func (t *ElementTracker) deactivate() {
	t.state.Update(func(s State) (State, bool) {
		if t.isClosed() {
			return s, false
		}
		s.IsSelecting = false
		return s, true
	})
}

func (t *ElementTracker) emit(next State) {
	t.state.Update(func(State) (State, bool) {
		if t.isClosed() {
			return State{}, false
		}
		return next, true
	})
}

func (t *ElementTracker) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// ClearSelection clears the document selection and resets the output.
func (t *ElementTracker) ClearSelection() {
	if t.doc != nil {
		t.doc.ClearSelection()
	}
	if t.state != nil {
		t.state.Set(State{})
	}
}

// Close removes both listeners. Safe to call more than once.
func (t *ElementTracker) Close() error {
	t.once.Do(func() {
		t.mu.Lock()
		t.closed = true
		removes := t.removes
		t.removes = nil
		t.mu.Unlock()

		for _, remove := range removes {
			if remove != nil {
				remove()
			}
		}
	})
	return nil
}
