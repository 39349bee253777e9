// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/vektorui/shell/platform"
	"github.com/vektorui/shell/ui"
	"github.com/vektorui/shell/viewport"
)

type fakeWindow struct {
	id       platform.WindowID
	size     image.Point
	icon     *viewport.IconData
	title    string
	redraws  int
	commands int
	released bool
}

func (w *fakeWindow) SetTitle(title string)        { w.title = title; w.commands++ }
func (w *fakeWindow) SetInnerSize(s image.Point)   { w.size = s; w.commands++ }
func (w *fakeWindow) SetOuterPosition(image.Point) { w.commands++ }
func (w *fakeWindow) SetMinInnerSize(image.Point)  { w.commands++ }
func (w *fakeWindow) SetMaxInnerSize(image.Point)  { w.commands++ }
func (w *fakeWindow) SetFullscreen(bool)           { w.commands++ }
func (w *fakeWindow) SetMaximized(bool)            { w.commands++ }
func (w *fakeWindow) SetMinimized(bool)            { w.commands++ }
func (w *fakeWindow) SetResizable(bool)            { w.commands++ }
func (w *fakeWindow) SetAlwaysOnTop(bool)          { w.commands++ }
func (w *fakeWindow) SetVisible(bool)              { w.commands++ }
func (w *fakeWindow) SetIcon(i *viewport.IconData) { w.icon = i; w.commands++ }
func (w *fakeWindow) SetCursorPos(image.Point)     { w.commands++ }
func (w *fakeWindow) Focus()                       { w.commands++ }
func (w *fakeWindow) Close()                       { w.commands++ }
func (w *fakeWindow) StartDrag()                   { w.commands++ }
func (w *fakeWindow) ID() platform.WindowID        { return w.id }
func (w *fakeWindow) InnerSize() image.Point       { return w.size }
func (w *fakeWindow) OuterPosition() image.Point   { return image.Point{} }
func (w *fakeWindow) ScaleFactor() float32         { return 1 }
func (w *fakeWindow) IsMinimized() bool            { return false }
func (w *fakeWindow) IsMaximized() bool            { return false }
func (w *fakeWindow) IsFullscreen() bool           { return false }
func (w *fakeWindow) RequestRedraw()               { w.redraws++ }
func (w *fakeWindow) SetCursorHitTest(bool) error  { return nil }
func (w *fakeWindow) Present(*image.RGBA) error    { return nil }
func (w *fakeWindow) Release()                     { w.released = true }
func (w *fakeWindow) RawHandles() (platform.DisplayHandle, platform.WindowHandle) {
	return 0, 1
}

type fakeLoop struct {
	nextID  platform.WindowID
	windows []*fakeWindow
	icons   []*viewport.IconData
	posted  []any
	batches [][]platform.Event
	modes   []platform.WaitMode
	err     error
}

func (l *fakeLoop) Next(mode platform.WaitMode) ([]platform.Event, error) {
	l.modes = append(l.modes, mode)
	if l.err != nil {
		return nil, l.err
	}
	if len(l.batches) == 0 {
		return []platform.Event{platform.DestroyedEvent{}}, nil
	}
	batch := l.batches[0]
	l.batches = l.batches[1:]
	return batch, nil
}

func (l *fakeLoop) CreateWindow(b viewport.Builder) (platform.Window, error) {
	l.nextID++
	size := image.Point{X: 800, Y: 600}
	if b.InnerSize != nil {
		size = *b.InnerSize
	}
	w := &fakeWindow{id: l.nextID, size: size, icon: b.Icon, title: b.Title}
	l.windows = append(l.windows, w)
	l.icons = append(l.icons, b.Icon)
	return w, nil
}

func (l *fakeLoop) Post(value any) error { l.posted = append(l.posted, value); return nil }
func (l *fakeLoop) Destroy()             {}

type fakeEngine struct {
	frame     uint64
	out       ui.FullOutput
	outFn     func(ui.Input) ui.FullOutput
	onRepaint func(ui.RepaintInfo)
	onSync    func(viewport.Builder, viewport.IDPair, ui.Render)
}

func (e *fakeEngine) Run(in ui.Input, run func(ui.Context)) ui.FullOutput {
	e.frame++
	run(nil)
	if e.outFn != nil {
		return e.outFn(in)
	}
	return e.out
}

func (e *fakeEngine) FrameNr() uint64                          { return e.frame }
func (e *fakeEngine) PixelsPerPoint() float32                  { return 1 }
func (e *fakeEngine) OnRequestRepaint(fn func(ui.RepaintInfo)) { e.onRepaint = fn }
func (e *fakeEngine) OnRenderSync(fn func(viewport.Builder, viewport.IDPair, ui.Render)) {
	e.onSync = fn
}

type fakeApp struct {
	closeOK bool
	updates int
	saves   int
	exits   int
}

func (a *fakeApp) Update(ui.Context)       { a.updates++ }
func (a *fakeApp) ClearColor() color.NRGBA { return color.NRGBA{A: 0xff} }
func (a *fakeApp) Save(ui.Store)           { a.saves++ }
func (a *fakeApp) CloseConfirmed() bool    { return a.closeOK }
func (a *fakeApp) OnExit()                 { a.exits++ }

type fakePainter struct {
	attached map[viewport.ID]int
	detached map[viewport.ID]int
	painted  []viewport.ID
	released int
}

func newFakePainter() *fakePainter {
	return &fakePainter{
		attached: make(map[viewport.ID]int),
		detached: make(map[viewport.ID]int),
	}
}

func (p *fakePainter) attach(id viewport.ID, _ platform.Window) error {
	p.attached[id]++
	return nil
}
func (p *fakePainter) detach(id viewport.ID) { p.detached[id]++ }
func (p *fakePainter) paint(id viewport.ID, _ platform.Window, _ color.NRGBA, _ []ui.ClippedMesh, _ ui.TexturesDelta) error {
	p.painted = append(p.painted, id)
	return nil
}
func (p *fakePainter) clean(func(viewport.ID) bool) {}
func (p *fakePainter) release()                     { p.released++ }

// newTestShell builds an initialized shell over fakes: the Resumed
// event has been handled and the main window exists.
func newTestShell(t *testing.T, app *fakeApp, engine *fakeEngine) (*backendShell, *fakeLoop, *fakePainter) {
	t.Helper()
	o := defaultOptions("test")
	o.persist = false
	p := newFakePainter()
	creator := func(ui.Context, ui.Store) (ui.App, error) { return app, nil }
	sh := newBackendShell(o, engine, creator, p)
	loop := &fakeLoop{}
	res, err := sh.OnEvent(loop, platform.ResumedEvent{})
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if res.Kind != ResultRepaintNow {
		t.Fatalf("resume result = %v, want RepaintNow", res.Kind)
	}
	return sh, loop, p
}

func mainWindowID(t *testing.T, sh *backendShell) platform.WindowID {
	t.Helper()
	w, ok := sh.WindowID(viewport.MainID)
	if !ok {
		t.Fatal("main viewport has no window")
	}
	return w
}

func TestMainCloseConfirmedExits(t *testing.T) {
	app := &fakeApp{closeOK: true}
	sh, loop, _ := newTestShell(t, app, &fakeEngine{})
	w := mainWindowID(t, sh)
	res, err := sh.OnEvent(loop, platform.WindowEvent{Window: w, Inner: platform.CloseRequestedEvent{}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != ResultExit {
		t.Errorf("close on main = %v, want Exit", res.Kind)
	}
}

func TestMainCloseVetoedRepaints(t *testing.T) {
	app := &fakeApp{closeOK: false}
	sh, loop, _ := newTestShell(t, app, &fakeEngine{})
	w := mainWindowID(t, sh)
	res, err := sh.OnEvent(loop, platform.WindowEvent{Window: w, Inner: platform.CloseRequestedEvent{}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != ResultRepaintNow {
		t.Errorf("vetoed close = %v, want RepaintNow", res.Kind)
	}
	if app.exits != 0 {
		t.Error("OnExit called on vetoed close")
	}
}

func TestSaveAndDestroyIdempotent(t *testing.T) {
	app := &fakeApp{}
	sh, _, p := newTestShell(t, app, &fakeEngine{})
	sh.SaveAndDestroy()
	sh.SaveAndDestroy()
	if app.exits != 1 {
		t.Errorf("OnExit called %d times, want 1", app.exits)
	}
	if app.saves != 1 {
		t.Errorf("Save called %d times, want 1", app.saves)
	}
	if p.released != 1 {
		t.Errorf("painter released %d times, want 1", p.released)
	}
}

func TestZeroSizeResizeIgnored(t *testing.T) {
	sh, loop, _ := newTestShell(t, &fakeApp{}, &fakeEngine{})
	w := mainWindowID(t, sh)
	res, err := sh.OnEvent(loop, platform.WindowEvent{
		Window: w,
		Inner:  platform.ResizedEvent{Size: image.Point{}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != ResultWait {
		t.Errorf("zero-size resize = %v, want Wait", res.Kind)
	}
	res, err = sh.OnEvent(loop, platform.WindowEvent{
		Window: w,
		Inner:  platform.ResizedEvent{Size: image.Point{X: 640, Y: 480}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != ResultRepaintNow {
		t.Errorf("resize = %v, want RepaintNow", res.Kind)
	}
}

// A resize must repaint synchronously so the surface follows the
// window without flicker, not on the next idle pass.
func TestResizePaintsSynchronously(t *testing.T) {
	engine := &fakeEngine{}
	sh, loop, p := newTestShell(t, &fakeApp{}, engine)
	w := mainWindowID(t, sh)

	res, err := sh.OnEvent(loop, platform.WindowEvent{
		Window: w,
		Inner:  platform.ResizedEvent{Size: image.Point{X: 1024, Y: 768}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != ResultRepaintNow {
		t.Fatalf("resize result = %v, want RepaintNow", res.Kind)
	}

	sched := newSchedule()
	applyResults(loop, sh, sched, []EventResult{res})
	if len(p.painted) != 1 {
		t.Errorf("painted %d times after resize, want 1", len(p.painted))
	}
	if _, pending := sched.next[w]; pending {
		t.Error("synchronous resize paint left a schedule entry")
	}
}

func TestScaleFactorChangePaintsSynchronously(t *testing.T) {
	sh, loop, _ := newTestShell(t, &fakeApp{}, &fakeEngine{})
	w := mainWindowID(t, sh)

	res, err := sh.OnEvent(loop, platform.WindowEvent{
		Window: w,
		Inner:  platform.ScaleFactorChangedEvent{Scale: 2, Size: image.Point{X: 1280, Y: 960}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != ResultRepaintNow {
		t.Fatalf("scale change result = %v, want RepaintNow", res.Kind)
	}

	rec, _ := sh.running.mgr.record(viewport.MainID)
	in := rec.input.TakeInput(rec.win)
	if in.PixelsPerPoint != 2 {
		t.Errorf("pixels per point = %v, want 2", in.PixelsPerPoint)
	}
}

func TestSecondViewportInheritsIcon(t *testing.T) {
	icon := &viewport.IconData{RGBA: []byte{1, 2, 3, 4}, Width: 1, Height: 1}
	engine := &fakeEngine{}
	app := &fakeApp{}

	o := defaultOptions("test")
	o.persist = false
	o.main.Icon = icon
	p := newFakePainter()
	creator := func(ui.Context, ui.Store) (ui.App, error) { return app, nil }
	sh := newBackendShell(o, engine, creator, p)
	loop := &fakeLoop{}
	if _, err := sh.OnEvent(loop, platform.ResumedEvent{}); err != nil {
		t.Fatal(err)
	}

	child := viewport.NewID("settings")
	childOut := ui.ViewportOutput{
		Builder: viewport.NewBuilder("Settings"),
		Pair:    viewport.NewPair(child, viewport.MainID),
	}
	engine.out = ui.FullOutput{Viewports: []ui.ViewportOutput{
		{Builder: o.main, Pair: viewport.MainPair},
		childOut,
	}}

	w := mainWindowID(t, sh)
	sh.RunUIAndPaint(loop, w)

	if _, ok := sh.WindowID(child); !ok {
		t.Fatal("child viewport has no window after the frame that declared it")
	}
	if len(loop.windows) != 2 {
		t.Fatalf("created %d windows, want 2", len(loop.windows))
	}
	if loop.windows[1].icon != icon {
		t.Error("child window did not inherit the main icon")
	}
}

func TestUnchangedBuilderSendsNoCommands(t *testing.T) {
	engine := &fakeEngine{}
	sh, loop, _ := newTestShell(t, &fakeApp{}, engine)
	w := mainWindowID(t, sh)

	engine.out = ui.FullOutput{Viewports: []ui.ViewportOutput{
		{Builder: sh.opts.main, Pair: viewport.MainPair},
	}}
	sh.RunUIAndPaint(loop, w)
	before := loop.windows[0].commands
	sh.RunUIAndPaint(loop, w)
	if got := loop.windows[0].commands; got != before {
		t.Errorf("unchanged builder sent %d commands", got-before)
	}
}

func TestUndeclaredChildViewportClosed(t *testing.T) {
	engine := &fakeEngine{}
	sh, loop, p := newTestShell(t, &fakeApp{}, engine)
	w := mainWindowID(t, sh)
	child := viewport.NewID("tool")

	engine.out = ui.FullOutput{Viewports: []ui.ViewportOutput{
		{Builder: sh.opts.main, Pair: viewport.MainPair},
		{Builder: viewport.NewBuilder("Tool"), Pair: viewport.NewPair(child, viewport.MainID)},
	}}
	sh.RunUIAndPaint(loop, w)
	if _, ok := sh.WindowID(child); !ok {
		t.Fatal("child window missing")
	}

	// Next frame no longer declares the child.
	engine.out = ui.FullOutput{Viewports: []ui.ViewportOutput{
		{Builder: sh.opts.main, Pair: viewport.MainPair},
	}}
	sh.RunUIAndPaint(loop, w)
	if _, ok := sh.WindowID(child); ok {
		t.Error("undeclared child still has a window")
	}
	if p.detached[child] == 0 {
		t.Error("child surface never detached")
	}
	if !loop.windows[1].released {
		t.Error("child window not released")
	}
	if _, ok := sh.WindowID(viewport.MainID); !ok {
		t.Error("main window was reaped with the child")
	}
}

func TestRepaintAfterZeroFiresNextIdlePass(t *testing.T) {
	engine := &fakeEngine{}
	sh, loop, _ := newTestShell(t, &fakeApp{}, engine)
	w := mainWindowID(t, sh)

	engine.out = ui.FullOutput{RepaintAfter: map[viewport.ID]time.Duration{
		viewport.MainID: 0,
	}}
	results := sh.RunUIAndPaint(loop, w)
	if len(results) != 1 || results[0].Kind != ResultRepaintNext {
		t.Fatalf("results = %+v, want one RepaintNext", results)
	}

	sched := newSchedule()
	applyResults(loop, sh, sched, results)
	var requested []platform.WindowID
	mode := sched.idle(time.Now(), func(id platform.WindowID) bool {
		requested = append(requested, id)
		return true
	})
	if len(requested) != 1 || requested[0] != w {
		t.Errorf("requested redraws %v, want [%v]", requested, w)
	}
	if mode.Kind != platform.Poll {
		t.Errorf("idle mode = %v, want Poll", mode.Kind)
	}
}

func TestStaleRepaintRequestDropped(t *testing.T) {
	engine := &fakeEngine{frame: 6}
	sh, _, _ := newTestShell(t, &fakeApp{}, engine)

	results := handleRequestRepaint(sh, RequestRepaintEvent{
		ID:      viewport.MainID,
		When:    time.Now(),
		FrameNr: 5,
	})
	if len(results) != 0 {
		t.Errorf("stale request produced %+v, want nothing", results)
	}

	results = handleRequestRepaint(sh, RequestRepaintEvent{
		ID:      viewport.MainID,
		When:    time.Now(),
		FrameNr: 6,
	})
	if len(results) != 1 || results[0].Kind != ResultRepaintAt {
		t.Errorf("fresh request produced %+v, want one RepaintAt", results)
	}
}

func TestSyncChildWithMissingParentDropped(t *testing.T) {
	engine := &fakeEngine{}
	sh, loop, p := newTestShell(t, &fakeApp{}, engine)

	orphan := viewport.NewPair(viewport.NewID("popup"), viewport.NewID("gone"))
	sh.renderSyncViewport(viewport.NewBuilder("Popup"), orphan, func(ui.Context) {})

	if len(p.painted) != 0 {
		t.Error("orphan sync child was painted")
	}
	if len(loop.windows) != 1 {
		t.Error("orphan sync child got a window")
	}
}

func TestSyncChildPaintedInline(t *testing.T) {
	engine := &fakeEngine{}
	sh, loop, p := newTestShell(t, &fakeApp{}, engine)

	pair := viewport.NewPair(viewport.NewID("popup"), viewport.MainID)
	called := false
	sh.renderSyncViewport(viewport.NewBuilder("Popup"), pair, func(ui.Context) { called = true })

	if !called {
		t.Error("render callback not invoked")
	}
	if len(p.painted) != 1 || p.painted[0] != pair.This {
		t.Errorf("painted %v, want [%v]", p.painted, pair.This)
	}
	if len(loop.windows) != 2 {
		t.Errorf("created %d windows, want 2", len(loop.windows))
	}
}

func TestEngineRepaintRequestPosted(t *testing.T) {
	engine := &fakeEngine{}
	sh, loop, _ := newTestShell(t, &fakeApp{}, engine)
	_ = sh

	engine.onRepaint(ui.RepaintInfo{ID: viewport.MainID, After: time.Second, FrameNr: 1})
	if len(loop.posted) != 1 {
		t.Fatalf("posted %d values, want 1", len(loop.posted))
	}
	if _, ok := loop.posted[0].(RequestRepaintEvent); !ok {
		t.Errorf("posted %T, want RequestRepaintEvent", loop.posted[0])
	}
}
