//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/inamate/shapekit/internal/document"
	"github.com/inamate/shapekit/internal/engine"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine()

	api := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	api.Set("loadDocument", js.FuncOf(loadDocument))
	api.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	api.Set("play", js.FuncOf(play))
	api.Set("stop", js.FuncOf(stop))
	api.Set("setSelection", js.FuncOf(setSelection))
	api.Set("tick", js.FuncOf(tick))

	// --- Queries (frontend ← engine) ---
	api.Set("render", js.FuncOf(render))
	api.Set("hitTest", js.FuncOf(hitTest))
	api.Set("getBounds", js.FuncOf(getBounds))
	api.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	api.Set("getScene", js.FuncOf(getScene))
	api.Set("getPlaybackState", js.FuncOf(getPlaybackState))
	api.Set("getDocument", js.FuncOf(getDocument))
	api.Set("getSelection", js.FuncOf(getSelection))
	api.Set("getTimelines", js.FuncOf(getTimelines))

	js.Global().Set("shapekitEngine", api)
	js.Global().Set("shapekitWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorResult(err error) any {
	return js.ValueOf(map[string]any{"error": err.Error()})
}

func okResult() any {
	return js.ValueOf(map[string]any{"ok": true})
}

// toJSON returns v as a JSON string, the way frame data crosses into JS.
func toJSON(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(string(data))
}

// --- Command Handlers ---

// loadDocument(text, format?) loads a JSON or YAML document.
func loadDocument(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf(map[string]any{"error": "missing document"})
	}
	format := document.FormatJSON
	if len(args) > 1 && args[1].Type() == js.TypeString {
		format = document.FormatFor(args[1].String())
	}
	if err := eng.LoadDocumentData([]byte(args[0].String()), format); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func loadSampleDocument(this js.Value, args []js.Value) any {
	if err := eng.LoadSampleDocument(); err != nil {
		return errorResult(err)
	}
	return okResult()
}

// play(timelineId, shapeId, runCount?)
func play(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf(map[string]any{"error": "play needs a timeline and a shape"})
	}
	runCount := 0.0
	if len(args) > 2 && args[2].Type() == js.TypeNumber {
		runCount = args[2].Float()
	}
	if err := eng.Play(args[0].String(), args[1].String(), runCount); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func stop(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf(map[string]any{"error": "stop needs a timeline and a shape"})
	}
	if err := eng.Stop(args[0].String(), args[1].String()); err != nil {
		return errorResult(err)
	}
	return okResult()
}

// setSelection(idsJSON)
func setSelection(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(args[0].String()), &ids); err != nil {
		return errorResult(err)
	}
	eng.SetSelection(ids)
	return nil
}

// tick advances one frame and returns its draw commands as JSON.
func tick(this js.Value, args []js.Value) any {
	_, cmds := eng.Tick()
	return toJSON(cmds)
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) any {
	return toJSON(eng.Frame())
}

func hitTest(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.Null()
	}
	id := eng.HitTest(args[0].Float(), args[1].Float())
	if id == "" {
		return js.Null()
	}
	return js.ValueOf(id)
}

func getBounds(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.Null()
	}
	var ids []string
	if err := json.Unmarshal([]byte(args[0].String()), &ids); err != nil {
		return errorResult(err)
	}
	return toJSON(eng.Bounds(ids))
}

func getSelectionBounds(this js.Value, args []js.Value) any {
	bounds := eng.SelectionBounds()
	if bounds.IsEmpty() {
		return js.Null()
	}
	return toJSON(bounds)
}

func getScene(this js.Value, args []js.Value) any {
	scene, err := eng.Scene()
	if err != nil {
		return js.Null()
	}
	return toJSON(scene)
}

func getPlaybackState(this js.Value, args []js.Value) any {
	return toJSON(eng.State())
}

func getDocument(this js.Value, args []js.Value) any {
	doc := eng.Document()
	if doc == nil {
		return js.Null()
	}
	data, err := document.Encode(doc, document.FormatJSON)
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(string(data))
}

func getSelection(this js.Value, args []js.Value) any {
	return toJSON(eng.Selection())
}

func getTimelines(this js.Value, args []js.Value) any {
	return toJSON(eng.Timelines())
}
