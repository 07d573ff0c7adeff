// Package selection tracks user text selections and reports the selected
// text, its on-screen geometry and whether a selection gesture is active.
//
// Two trackers share one output shape:
// - DocumentTracker follows selection-change notifications for the whole
//   document and drops the active flag after a quiet period.
// - ElementTracker follows pointer-release and click notifications and only
//   reports selections that live inside one element.
//
// The platform (a browser DOM, a terminal, a test fake) is reached through the
// Document, Selection and Element interfaces.
package selection

import (
	"time"
)

// DefaultDeselectDelay is how long DocumentTracker waits after the last
// selection change before reporting IsSelecting = false.
const DefaultDeselectDelay = 3000 * time.Millisecond

// Rect is a bounding rectangle in viewport coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// State is the tracker output.
type State struct {
	Text        string `json:"text"`
	Rect        *Rect  `json:"rect"`
	IsSelecting bool   `json:"isSelecting"`
}

// Node is an opaque platform node handle.
type Node any

// Selection is a view of the platform's active text selection.
type Selection interface {
	// Text returns the selected text as the platform renders it.
	Text() string
	// RangeCount returns the number of selection fragments.
	RangeCount() int
	// IsCollapsed reports whether the selection is a caret with no extent.
	IsCollapsed() bool
	// FirstRangeRect returns the bounding rectangle of the first fragment.
	// Only called when RangeCount() > 0.
	FirstRangeRect() Rect
	// CommonAncestor returns the deepest node containing the whole selection.
	CommonAncestor() Node
}

// Document is the platform surface the trackers subscribe to. Each On*
// method returns a function that removes the listener.
type Document interface {
	// Selection returns the active selection, or nil when there is none.
	Selection() Selection
	// ClearSelection removes every range from the active selection.
	ClearSelection()

	OnSelectionChange(fn func()) (remove func())
	OnPointerUp(fn func()) (remove func())
	OnClick(fn func(target Node)) (remove func())
}

// Element scopes an ElementTracker.
type Element interface {
	Contains(n Node) bool
}

// Tracker is implemented by DocumentTracker and ElementTracker.
type Tracker interface {
	State() State
	Subscribe(fn func(State)) (unsubscribe func())
	ClearSelection()
	Close() error
}

// Timer is a pending one-shot callback.
type Timer interface {
	Stop() bool
}

// Clock schedules one-shot callbacks.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// SystemClock schedules callbacks with time.AfterFunc.
type SystemClock struct{}

// AfterFunc implements Clock.
func (SystemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

type options struct {
	clock Clock
	delay time.Duration
}

// Option configures a DocumentTracker.
type Option func(*options)

// WithClock sets the clock used for the deselection timer.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithDeselectDelay overrides DefaultDeselectDelay. Non-positive values are ignored.
func WithDeselectDelay(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.delay = d
		}
	}
}

// Verify trackers implement Tracker
var (
	_ Tracker = (*DocumentTracker)(nil)
	_ Tracker = (*ElementTracker)(nil)
)
