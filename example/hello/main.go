// SPDX-License-Identifier: Unlicense OR MIT

// Command hello opens a window and paints a colored quad with a tiny
// built-in engine. It exists to show the shell's wiring; real
// programs plug in a full immediate-mode engine instead.
package main

import (
	"image/color"
	"log"
	"log/slog"
	"os"

	"github.com/vektorui/shell/app"
	"github.com/vektorui/shell/platform"
	"github.com/vektorui/shell/platform/x11"
	"github.com/vektorui/shell/ui"
	"github.com/vektorui/shell/viewport"
)

// quadEngine is a minimal ui.Engine: every frame is one colored quad
// covering the window.
type quadEngine struct {
	frame uint64
	main  viewport.Builder
}

func (e *quadEngine) Run(in ui.Input, run func(ui.Context)) ui.FullOutput {
	e.frame++
	run(nil)

	w := float32(in.ScreenRect.Dx())
	h := float32(in.ScreenRect.Dy())
	col := color.NRGBA{R: 0x40, G: 0x80, B: 0xc0, A: 0xff}
	mesh := ui.Mesh{
		Vertices: []ui.Vertex{
			{Pos: [2]float32{0, 0}, Color: col},
			{Pos: [2]float32{w, 0}, Color: col},
			{Pos: [2]float32{w, h}, Color: col},
			{Pos: [2]float32{0, h}, Color: col},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
	return ui.FullOutput{
		Shapes: []ui.ClippedMesh{{Clip: in.ScreenRect, Mesh: mesh}},
		Viewports: []ui.ViewportOutput{
			{Builder: e.main, Pair: viewport.MainPair},
		},
	}
}

func (e *quadEngine) FrameNr() uint64                       { return e.frame }
func (e *quadEngine) PixelsPerPoint() float32               { return 1 }
func (e *quadEngine) OnRequestRepaint(func(ui.RepaintInfo)) {}
func (e *quadEngine) OnRenderSync(func(viewport.Builder, viewport.IDPair, ui.Render)) {
}

type helloApp struct{}

func (helloApp) Update(ui.Context)       {}
func (helloApp) ClearColor() color.NRGBA { return color.NRGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff} }
func (helloApp) Save(ui.Store)           {}
func (helloApp) CloseConfirmed() bool    { return true }
func (helloApp) OnExit()                 {}

func main() {
	app.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	main := viewport.NewBuilder("Hello").WithInnerSize(640, 480)
	err := app.Run("hello",
		func() (platform.EventLoop, error) { return x11.NewEventLoop() },
		&quadEngine{main: main},
		func(ui.Context, ui.Store) (ui.App, error) { return helloApp{}, nil },
		app.WithWindow(main),
	)
	if err != nil {
		log.Fatal(err)
	}
}
