//go:build js && wasm

// Package domjs binds the selection platform interfaces to the browser DOM
// through syscall/js.
package domjs

import (
	"sync"
	"syscall/js"

	"github.com/richinex/arbiter/selection"
)

// Document wraps window.document and window.getSelection.
type Document struct {
	window js.Value
	doc    js.Value
}

// NewDocument returns the page document.
func NewDocument() *Document {
	return &Document{
		window: js.Global(),
		doc:    js.Global().Get("document"),
	}
}

// Selection returns the active selection or nil.
func (d *Document) Selection() selection.Selection {
	sel := d.window.Call("getSelection")
	if sel.IsNull() || sel.IsUndefined() {
		return nil
	}
	return jsSelection{v: sel}
}

// ClearSelection removes every range from the window selection.
func (d *Document) ClearSelection() {
	sel := d.window.Call("getSelection")
	if sel.IsNull() || sel.IsUndefined() {
		return
	}
	sel.Call("removeAllRanges")
}

// OnSelectionChange listens for "selectionchange" on the document.
func (d *Document) OnSelectionChange(fn func()) func() {
	return d.listen("selectionchange", func(js.Value) { fn() })
}

// OnPointerUp listens for "mouseup" on the document.
func (d *Document) OnPointerUp(fn func()) func() {
	return d.listen("mouseup", func(js.Value) { fn() })
}

// OnClick listens for "click" on the document and passes the event target.
func (d *Document) OnClick(fn func(target selection.Node)) func() {
	return d.listen("click", func(ev js.Value) { fn(ev.Get("target")) })
}

// listen registers a JS callback and returns a remover that releases it once.
func (d *Document) listen(event string, handler func(ev js.Value)) func() {
	cb := js.FuncOf(func(this js.Value, args []js.Value) any {
		ev := js.Undefined()
		if len(args) > 0 {
			ev = args[0]
		}
		handler(ev)
		return nil
	})
	d.doc.Call("addEventListener", event, cb)

	var once sync.Once
	return func() {
		once.Do(func() {
			d.doc.Call("removeEventListener", event, cb)
			cb.Release()
		})
	}
}

type jsSelection struct {
	v js.Value
}

func (s jsSelection) Text() string {
	return s.v.Call("toString").String()
}

func (s jsSelection) RangeCount() int {
	return s.v.Get("rangeCount").Int()
}

func (s jsSelection) IsCollapsed() bool {
	return s.v.Get("isCollapsed").Bool()
}

func (s jsSelection) FirstRangeRect() selection.Rect {
	r := s.v.Call("getRangeAt", 0).Call("getBoundingClientRect")
	return selection.Rect{
		X:      r.Get("x").Float(),
		Y:      r.Get("y").Float(),
		Width:  r.Get("width").Float(),
		Height: r.Get("height").Float(),
	}
}

func (s jsSelection) CommonAncestor() selection.Node {
	return s.v.Call("getRangeAt", 0).Get("commonAncestorContainer")
}

// Element wraps a DOM element for scoped tracking.
type Element struct {
	v js.Value
}

// NewElement wraps v.
func NewElement(v js.Value) Element {
	return Element{v: v}
}

// ElementByID looks up an element by id. ok is false when it does not exist.
func ElementByID(id string) (Element, bool) {
	v := js.Global().Get("document").Call("getElementById", id)
	if v.IsNull() || v.IsUndefined() {
		return Element{}, false
	}
	return Element{v: v}, true
}

// Contains reports whether n is the element or one of its descendants.
func (e Element) Contains(n selection.Node) bool {
	node, ok := n.(js.Value)
	if !ok || node.IsNull() || node.IsUndefined() {
		return false
	}
	return e.v.Call("contains", node).Bool()
}

// Verify the DOM types implement the platform interfaces
var (
	_ selection.Document = (*Document)(nil)
	_ selection.Element  = Element{}
)
