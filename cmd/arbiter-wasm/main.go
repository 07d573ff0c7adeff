//go:build js && wasm

// Package main exposes the comparison store and selection trackers to a web
// page as the global "Arbiter" object.
package main

import (
	"context"
	"encoding/json"
	"syscall/js"
	"time"

	"github.com/richinex/arbiter/comparison"
	"github.com/richinex/arbiter/internal/idgen"
	"github.com/richinex/arbiter/model"
	"github.com/richinex/arbiter/selection"
	"github.com/richinex/arbiter/selection/domjs"
	"github.com/richinex/arbiter/storage"
	"go.uber.org/zap"
)

// Version info
const Version = "0.1.0"

// Global state
var (
	store *comparison.Store
	doc   *domjs.Document
	log   *zap.Logger
)

func main() {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	var err error
	if log, err = cfg.Build(); err != nil {
		log = zap.NewNop()
	}

	// The page may set window.ARBITER_ID_STRATEGY before loading the module.
	strategy := ""
	if v := js.Global().Get("ARBITER_ID_STRATEGY"); v.Type() == js.TypeString {
		strategy = v.String()
	}
	if gen, err := idgen.ByName(strategy); err != nil {
		log.Warn("ignoring id strategy", zap.String("strategy", strategy), zap.Error(err))
	} else {
		model.SetIDGenerator(gen)
	}

	var kv storage.KeyValue
	ls, err := storage.NewLocalStorage()
	if err != nil {
		log.Warn("localStorage unavailable, state will not survive reloads", zap.Error(err))
		kv = storage.NewInMemoryStorage()
	} else {
		kv = ls
	}

	store = comparison.New(context.Background(), kv, comparison.WithLogger(log))
	doc = domjs.NewDocument()
	log.Info("arbiter wasm ready", zap.String("version", Version))

	// Register exports
	js.Global().Set("Arbiter", js.ValueOf(map[string]any{
		"version":        js.FuncOf(getVersion),
		"state":          js.FuncOf(getState),
		"subscribe":      js.FuncOf(subscribe),
		"setSlotCount":   js.FuncOf(setSlotCount),
		"setResponse":    js.FuncOf(setResponse),
		"responses":      js.FuncOf(responses),
		"addSnippet":     js.FuncOf(addSnippet),
		"removeSnippet":  js.FuncOf(removeSnippet),
		"clearSnippets":  js.FuncOf(clearSnippets),
		"setNotes":       js.FuncOf(setNotes),
		"selectSnippet":  js.FuncOf(selectSnippet),
		"setModalOpen":   js.FuncOf(setModalOpen),
		"save":           js.FuncOf(save),
		"navigate":       js.FuncOf(navigate),
		"load":           js.FuncOf(load),
		"clearAll":       js.FuncOf(clearAll),
		"template":       js.FuncOf(template),
		"templateHTML":   js.FuncOf(templateHTML),
		"trackSelection": js.FuncOf(trackSelection),
		"trackElement":   js.FuncOf(trackElement),
		"clearSelection": js.FuncOf(clearSelection),
	}))

	select {}
}

func getVersion(this js.Value, args []js.Value) any {
	return Version
}

// getState returns the persisted JSON form of the state.
func getState(this js.Value, args []js.Value) any {
	data, err := comparison.Encode(store.Snapshot())
	if err != nil {
		return errorResult(err.Error())
	}
	return string(data)
}

// subscribe: [callback(stateJSON string)] returns an unsubscribe function.
func subscribe(this js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeFunction {
		return errorResult("subscribe requires a callback")
	}
	cb := args[0]
	unsubscribe := store.Subscribe(func(st model.State) {
		data, err := comparison.Encode(st)
		if err != nil {
			log.Error("failed to encode state", zap.Error(err))
			return
		}
		cb.Invoke(string(data))
	})
	return releaser(unsubscribe)
}

// setSlotCount: [count int]
func setSlotCount(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorResult("requires 1 arg: count")
	}
	store.SetSlotCount(args[0].Int())
	return successResult("ok")
}

// setResponse: [key string, content string]
func setResponse(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return errorResult("requires 2 args: key, content")
	}
	key, ok := model.ParseSlotKey(args[0].String())
	if !ok {
		key = model.SlotKey(args[0].String())
	}
	store.SetModelResponse(key, args[1].String())
	return successResult("ok")
}

func responses(this js.Value, args []js.Value) any {
	return toJSON(store.CurrentModelResponses())
}

// addSnippet: [text string, modelLabel string, cardId string, selectionRange string]
func addSnippet(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return errorResult("requires at least 2 args: text, modelLabel")
	}
	meta := model.SnippetMetadata{}
	if len(args) > 2 {
		meta.CardID = args[2].String()
	}
	if len(args) > 3 {
		meta.SelectionRange = args[3].String()
	}
	sn, ok := store.AddSnippet(args[0].String(), args[1].String(), meta)
	if !ok {
		return errorResult(model.ErrEmptySnippetText.Error())
	}
	return toJSON(sn)
}

// removeSnippet: [id string]
func removeSnippet(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorResult("requires 1 arg: id")
	}
	store.RemoveSnippet(args[0].String())
	return successResult("ok")
}

func clearSnippets(this js.Value, args []js.Value) any {
	store.ClearSnippets()
	return successResult("ok")
}

// setNotes: [notes string]
func setNotes(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorResult("requires 1 arg: notes")
	}
	store.SetArbitrationNotes(args[0].String())
	return successResult("ok")
}

// selectSnippet: [id string|null]
func selectSnippet(this js.Value, args []js.Value) any {
	id := ""
	if len(args) > 0 && args[0].Type() == js.TypeString {
		id = args[0].String()
	}
	store.SelectSnippet(id)
	return successResult("ok")
}

// setModalOpen: [open bool]
func setModalOpen(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorResult("requires 1 arg: open")
	}
	store.SetArbitrationModalOpen(args[0].Truthy())
	return successResult("ok")
}

func save(this js.Value, args []js.Value) any {
	return toJSON(store.SaveCurrentComparison())
}

// navigate: ["prev"|"next"]
func navigate(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorResult("requires 1 arg: direction")
	}
	store.NavigateComparison(comparison.Direction(args[0].String()))
	return successResult("ok")
}

// load: [index int]
func load(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorResult("requires 1 arg: index")
	}
	store.LoadComparison(args[0].Int())
	return successResult("ok")
}

func clearAll(this js.Value, args []js.Value) any {
	store.ClearAllData()
	return successResult("ok")
}

func template(this js.Value, args []js.Value) any {
	return store.ArbitrationTemplate()
}

func templateHTML(this js.Value, args []js.Value) any {
	html, err := comparison.RenderHTML(store.ArbitrationTemplate())
	if err != nil {
		return errorResult(err.Error())
	}
	return html
}

// trackSelection: [callback(stateJSON string), delayMs int?] tracks the whole
// document and returns a stop function.
func trackSelection(this js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeFunction {
		return errorResult("trackSelection requires a callback")
	}
	var opts []selection.Option
	if len(args) > 1 && args[1].Type() == js.TypeNumber {
		opts = append(opts, selection.WithDeselectDelay(msDuration(args[1].Int())))
	}
	return track(selection.NewDocumentTracker(doc, opts...), args[0])
}

// trackElement: [elementId string, callback(stateJSON string)] tracks
// selections inside one element and returns a stop function.
func trackElement(this js.Value, args []js.Value) any {
	if len(args) < 2 || args[1].Type() != js.TypeFunction {
		return errorResult("requires 2 args: elementId, callback")
	}
	el, ok := domjs.ElementByID(args[0].String())
	if !ok {
		return errorResult("no element with id " + args[0].String())
	}
	return track(selection.NewElementTracker(doc, el), args[1])
}

func clearSelection(this js.Value, args []js.Value) any {
	doc.ClearSelection()
	return successResult("ok")
}

func track(t selection.Tracker, cb js.Value) js.Func {
	unsubscribe := t.Subscribe(func(st selection.State) {
		cb.Invoke(toJSON(st))
	})
	return releaser(func() {
		unsubscribe()
		if err := t.Close(); err != nil {
			log.Warn("failed to close selection tracker", zap.Error(err))
		}
	})
}

// releaser wraps stop in a JS function that also releases itself.
func releaser(stop func()) js.Func {
	var fn js.Func
	fn = js.FuncOf(func(this js.Value, args []js.Value) any {
		stop()
		fn.Release()
		return nil
	})
	return fn
}

func toJSON(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResult(err.Error())
	}
	return string(data)
}

func successResult(msg string) any {
	return map[string]any{"ok": true, "message": msg}
}

func errorResult(msg string) any {
	return map[string]any{"ok": false, "error": msg}
}

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
