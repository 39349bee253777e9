// SPDX-License-Identifier: Unlicense OR MIT

// Package ui defines the boundary to the immediate-mode UI engine.
// The engine is a black box: given accumulated input and time for one
// viewport it produces a frame output. The shell never inspects
// engine internals beyond this contract.
package ui

import (
	"image"
	"image/color"
	"time"

	"github.com/vektorui/shell/viewport"
)

// Context is the engine's per-frame handle, opaque to the shell. It
// is only forwarded to render callbacks and the hosted application.
type Context interface{}

// Render paints a synchronous child viewport inline as part of its
// parent's frame.
type Render func(ctx Context)

// Input is the accumulated input for one viewport frame.
type Input struct {
	Pair           viewport.IDPair
	Time           float64
	ScreenRect     image.Rectangle
	PixelsPerPoint float32
	Events         []InputEvent
	Focused        bool
}

// InputEvent is one translated input event. The concrete event
// vocabulary belongs to the engine; the shell treats it as opaque.
type InputEvent interface{}

// TextureID names one engine-managed texture.
type TextureID uint64

// ImageDelta is a full or partial texture update. A nil Pos replaces
// the whole texture.
type ImageDelta struct {
	Image *image.RGBA
	Pos   *image.Point
}

// TexturesDelta is the per-frame texture atlas change set.
type TexturesDelta struct {
	Set  map[TextureID]ImageDelta
	Free []TextureID
}

// Vertex is one tessellated vertex.
type Vertex struct {
	Pos   [2]float32
	UV    [2]float32
	Color color.NRGBA
}

// Mesh is a textured triangle list.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Texture  TextureID
}

// ClippedMesh is a mesh with its clip rectangle in physical pixels.
type ClippedMesh struct {
	Clip image.Rectangle
	Mesh Mesh
}

// PlatformOutput is the non-paint output of a frame.
type PlatformOutput struct {
	CursorIcon             string
	CopiedText             string
	OpenURL                string
	IMERect                *image.Rectangle
	MutableTextUnderCursor bool
}

// ViewportOutput declares one desired viewport for the next frame.
type ViewportOutput struct {
	Builder viewport.Builder
	Pair    viewport.IDPair

	// Render, when set, marks the viewport as a synchronous child:
	// it is painted inline during its parent's frame and never
	// independently scheduled.
	Render Render
}

// FullOutput is everything one engine frame produced.
type FullOutput struct {
	Platform      PlatformOutput
	Shapes        []ClippedMesh
	TexturesDelta TexturesDelta

	// RepaintAfter requests a repaint of each listed viewport after
	// the given delay. A zero delay means "next idle pass".
	RepaintAfter map[viewport.ID]time.Duration

	// Viewports is the complete declared viewport set. Viewports
	// absent from it are closed by the reconciler.
	Viewports []ViewportOutput

	// Commands are window commands to apply to live viewports.
	Commands []viewport.CommandSet
}

// RepaintInfo accompanies an engine-issued repaint request delivered
// outside the frame cycle (e.g. from a background timer).
type RepaintInfo struct {
	ID      viewport.ID
	After   time.Duration
	FrameNr uint64
}

// Engine runs the immediate-mode UI.
type Engine interface {
	// Run executes one frame for the viewport named by input.Pair,
	// calling run to build the UI, and returns the frame output.
	Run(input Input, run func(Context)) FullOutput

	// FrameNr is the number of completed frames.
	FrameNr() uint64

	// PixelsPerPoint is the engine's current scale.
	PixelsPerPoint() float32

	// OnRequestRepaint registers the callback invoked when the
	// engine wants a repaint outside the frame cycle. The shell
	// forwards these to the event loop as user events.
	OnRequestRepaint(fn func(RepaintInfo))

	// OnRenderSync registers the callback invoked when UI code
	// declares an immediate (synchronous) child viewport mid-frame.
	// The shell must create the window, if needed, and paint the
	// viewport before returning.
	OnRenderSync(fn func(b viewport.Builder, pair viewport.IDPair, render Render))
}

// Store persists application state across runs.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, val []byte)
	Flush() error
}

// App is the hosted application.
type App interface {
	// Update builds the UI for one frame.
	Update(ctx Context)

	// ClearColor is the backdrop color painted under the frame.
	ClearColor() color.NRGBA

	// Save persists application state. Called on autosave and at
	// shutdown.
	Save(store Store)

	// CloseConfirmed reports whether a close request on the main
	// viewport should shut the application down. Applications that
	// want a confirmation dialog return false and close later.
	CloseConfirmed() bool

	// OnExit is called exactly once during shutdown.
	OnExit()
}

// AppCreator builds the hosted application once the engine and the
// first window exist. It is invoked exactly once per run.
type AppCreator func(ctx Context, store Store) (App, error)
