package selection

import (
	"sort"
	"sync"
	"time"
)

type fakeNode string

type fakeSelection struct {
	text      string
	ranges    int
	collapsed bool
	rect      Rect
	ancestor  Node
}

func (s *fakeSelection) Text() string         { return s.text }
func (s *fakeSelection) RangeCount() int      { return s.ranges }
func (s *fakeSelection) IsCollapsed() bool    { return s.collapsed }
func (s *fakeSelection) FirstRangeRect() Rect { return s.rect }
func (s *fakeSelection) CommonAncestor() Node { return s.ancestor }

// fakeDocument records listeners so tests can fire events and check removal.
type fakeDocument struct {
	sel     *fakeSelection
	cleared int

	change  map[int]func()
	pointer map[int]func()
	click   map[int]func(Node)
	next    int
}

func newFakeDocument() *fakeDocument {
	return &fakeDocument{
		change:  map[int]func(){},
		pointer: map[int]func(){},
		click:   map[int]func(Node){},
	}
}

func (d *fakeDocument) Selection() Selection {
	if d.sel == nil {
		return nil
	}
	return d.sel
}

func (d *fakeDocument) ClearSelection() {
	d.cleared++
	d.sel = nil
}

func (d *fakeDocument) OnSelectionChange(fn func()) func() {
	id := d.next
	d.next++
	d.change[id] = fn
	return func() { delete(d.change, id) }
}

func (d *fakeDocument) OnPointerUp(fn func()) func() {
	id := d.next
	d.next++
	d.pointer[id] = fn
	return func() { delete(d.pointer, id) }
}

func (d *fakeDocument) OnClick(fn func(Node)) func() {
	id := d.next
	d.next++
	d.click[id] = fn
	return func() { delete(d.click, id) }
}

func (d *fakeDocument) fireSelectionChange() {
	for _, fn := range d.change {
		fn()
	}
}

func (d *fakeDocument) firePointerUp() {
	for _, fn := range d.pointer {
		fn()
	}
}

func (d *fakeDocument) fireClick(target Node) {
	for _, fn := range d.click {
		fn(target)
	}
}

func (d *fakeDocument) listeners() int {
	return len(d.change) + len(d.pointer) + len(d.click)
}

// fakeElement contains a fixed set of nodes.
type fakeElement map[Node]bool

func (e fakeElement) Contains(n Node) bool { return e[n] }

// fakeClock fires timers when Advance moves past their deadline.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.fn()
	}
}

func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}
