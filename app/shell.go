// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"errors"
	"image/color"
	"log/slog"
	"time"

	"github.com/vektorui/shell/platform"
	"github.com/vektorui/shell/ui"
	"github.com/vektorui/shell/viewport"
)

// ErrAccelerationUnavailable is returned when hardware acceleration is
// required but no accelerator is registered or usable.
var ErrAccelerationUnavailable = errors.New("app: hardware acceleration unavailable")

// errOutOfDate marks a transient paint failure: the surface no longer
// matches the window and the frame should simply be retried.
var errOutOfDate = errors.New("app: surface out of date")

// Shell is what the event pump drives. One implementation exists per
// graphics backend.
type Shell interface {
	// FrameNr is the engine's completed frame count.
	FrameNr() uint64
	// IsFocused reports whether the window has input focus.
	IsFocused(w platform.WindowID) bool
	// Window returns the live window, or nil.
	Window(w platform.WindowID) platform.Window
	// WindowID resolves a viewport to its live window.
	WindowID(id viewport.ID) (platform.WindowID, bool)
	// ViewportID resolves a window back to its viewport.
	ViewportID(w platform.WindowID) (viewport.ID, bool)
	// RunUIAndPaint runs one frame for the window's viewport, paints
	// it and returns follow-up repaint requests.
	RunUIAndPaint(loop platform.EventLoop, w platform.WindowID) []EventResult
	// OnEvent folds one non-redraw platform event.
	OnEvent(loop platform.EventLoop, e platform.Event) (EventResult, error)
	// SaveAndDestroy persists state and releases every window and
	// graphics resource. It is idempotent.
	SaveAndDestroy()
}

// painter is the backend-specific half of a shell: it owns graphics
// surfaces keyed by viewport and turns frame meshes into pixels.
type painter interface {
	// attach binds a surface to a freshly created window.
	attach(id viewport.ID, win platform.Window) error
	// detach drops the surface for a viewport, keeping the painter
	// usable for others.
	detach(id viewport.ID)
	// paint renders one frame into the window. It may return
	// errOutOfDate to request a retry on the next pass.
	paint(id viewport.ID, win platform.Window, clear color.NRGBA, shapes []ui.ClippedMesh, delta ui.TexturesDelta) error
	// clean drops surfaces whose viewport is no longer live.
	clean(live func(viewport.ID) bool)
	// release frees everything the painter holds.
	release()
}

// backendShell is the Shell implementation shared by both backends,
// with the graphics specifics behind the painter.
type backendShell struct {
	log     *slog.Logger
	opts    *Options
	engine  ui.Engine
	creator ui.AppCreator
	painter painter

	running   *runningState
	destroyed bool
}

// runningState exists between the first Resumed event and shutdown.
type runningState struct {
	loop platform.EventLoop
	mgr  *windowManager
	intg *integration
}

func newBackendShell(opts *Options, engine ui.Engine, creator ui.AppCreator, p painter) *backendShell {
	return &backendShell{
		log:     Logger(),
		opts:    opts,
		engine:  engine,
		creator: creator,
		painter: p,
	}
}

func (s *backendShell) FrameNr() uint64 {
	return s.engine.FrameNr()
}

func (s *backendShell) IsFocused(w platform.WindowID) bool {
	if s.running == nil {
		return false
	}
	return s.running.mgr.isFocused(w)
}

func (s *backendShell) Window(w platform.WindowID) platform.Window {
	if s.running == nil {
		return nil
	}
	return s.running.mgr.window(w)
}

func (s *backendShell) WindowID(id viewport.ID) (platform.WindowID, bool) {
	if s.running == nil {
		return 0, false
	}
	return s.running.mgr.windowFor(id)
}

func (s *backendShell) ViewportID(w platform.WindowID) (viewport.ID, bool) {
	if s.running == nil {
		return 0, false
	}
	return s.running.mgr.viewportFor(w)
}

func (s *backendShell) OnEvent(loop platform.EventLoop, e platform.Event) (EventResult, error) {
	switch e := e.(type) {
	case platform.ResumedEvent:
		return s.onResumed(loop)
	case platform.SuspendedEvent:
		s.onSuspended()
		return resultWait(), nil
	case platform.WindowEvent:
		return s.onWindowEvent(e), nil
	case platform.UserEvent:
		return s.onUserEvent(e), nil
	default:
		return resultWait(), nil
	}
}

// onResumed initializes everything on the first resume and reattaches
// surfaces to surviving windows on later ones.
func (s *backendShell) onResumed(loop platform.EventLoop) (EventResult, error) {
	if s.running == nil {
		if err := s.initRun(loop); err != nil {
			return resultExit(), err
		}
		w, ok := s.running.mgr.windowFor(viewport.MainID)
		if !ok {
			return resultExit(), errors.New("app: main window missing after init")
		}
		return repaintNow(w), nil
	}
	r := s.running
	r.loop = loop
	for id, rec := range r.mgr.viewports {
		if rec.win == nil {
			continue
		}
		if err := s.painter.attach(id, rec.win); err != nil {
			s.log.Error("reattaching surface failed", "viewport", id, "err", err)
		}
	}
	if err := r.mgr.buildWindows(loop, s.painter.attach); err != nil {
		return resultExit(), err
	}
	w, _ := r.mgr.windowFor(viewport.MainID)
	return repaintNext(w), nil
}

func (s *backendShell) initRun(loop platform.EventLoop) error {
	intg := newIntegration(s.log, s.opts, s.engine)
	intg.restoreWindowSettings(s.opts)
	mgr := newWindowManager(s.log, s.opts.main)
	if err := mgr.buildWindows(loop, s.painter.attach); err != nil {
		return err
	}
	s.running = &runningState{loop: loop, mgr: mgr, intg: intg}

	s.engine.OnRequestRepaint(func(info ui.RepaintInfo) {
		err := loop.Post(RequestRepaintEvent{
			ID:      info.ID,
			When:    time.Now().Add(info.After),
			FrameNr: info.FrameNr,
		})
		if err != nil {
			s.log.Debug("posting repaint request failed", "err", err)
		}
	})
	s.engine.OnRenderSync(s.renderSyncViewport)

	// The engine context only exists inside a frame; applications
	// needing it defer to their first Update.
	if err := intg.createApp(nil, s.creator); err != nil {
		return err
	}
	s.log.Info("shell initialized", "app", s.opts.appID)
	return nil
}

// onSuspended drops window-bound graphics resources. Windows and all
// other state survive until the next resume.
func (s *backendShell) onSuspended() {
	r := s.running
	if r == nil {
		return
	}
	s.log.Debug("suspending, dropping surfaces")
	for id := range r.mgr.viewports {
		s.painter.detach(id)
	}
}

func (s *backendShell) onWindowEvent(e platform.WindowEvent) EventResult {
	r := s.running
	if r == nil {
		return resultWait()
	}
	vp, ok := r.mgr.viewportFor(e.Window)
	if !ok {
		return repaintNext(e.Window)
	}
	rec, _ := r.mgr.record(vp)

	switch inner := e.Inner.(type) {
	case platform.CloseRequestedEvent:
		if vp == viewport.MainID {
			if r.intg.closeConfirmed() {
				return resultExit()
			}
			// The application vetoed; repaint so it can show its
			// confirmation UI.
			s.log.Debug("close request deferred by application")
			return repaintNow(e.Window)
		}
		parent := rec.pair.Parent
		r.mgr.remove(vp, func(id viewport.ID, _ platform.Window) { s.painter.detach(id) })
		if pw, ok := r.mgr.windowFor(parent); ok {
			return repaintNext(pw)
		}
		return resultWait()
	case platform.ResizedEvent:
		// A zero size means the window is minimized; resizing the
		// surface to zero would only break it.
		if inner.Size.X <= 0 || inner.Size.Y <= 0 {
			return resultWait()
		}
		rec.input.OnEvent(inner)
		// Paint before the pump continues: the paint resizes the
		// surface to the new window size, so the content tracks the
		// resize without flicker.
		return repaintNow(e.Window)
	case platform.ScaleFactorChangedEvent:
		rec.input.OnEvent(inner)
		return repaintNow(e.Window)
	case platform.FocusedEvent:
		r.mgr.setFocus(e.Window, inner.Focused)
	}

	resp := rec.input.OnEvent(e.Inner)
	if resp.Repaint {
		return repaintNext(e.Window)
	}
	return resultWait()
}

func (s *backendShell) onUserEvent(e platform.UserEvent) EventResult {
	r := s.running
	if r == nil {
		return resultWait()
	}
	switch v := e.Value.(type) {
	case AccessibilityEvent:
		vp, ok := r.mgr.viewportFor(v.Window)
		if !ok {
			return resultWait()
		}
		rec, _ := r.mgr.record(vp)
		rec.input.OnAccessibilityAction(v.Action)
		return repaintNext(v.Window)
	default:
		return resultWait()
	}
}

func (s *backendShell) RunUIAndPaint(loop platform.EventLoop, w platform.WindowID) []EventResult {
	r := s.running
	if r == nil {
		return []EventResult{resultWait()}
	}
	vp, ok := r.mgr.viewportFor(w)
	if !ok {
		return []EventResult{resultWait()}
	}
	rec, _ := r.mgr.record(vp)
	if rec.win == nil {
		return []EventResult{resultWait()}
	}

	in := rec.input.TakeInput(rec.win)
	out := r.intg.update(in, rec.render)

	clear := color.NRGBA{A: 0xff}
	if r.intg.app != nil {
		clear = r.intg.app.ClearColor()
	}
	if err := s.painter.paint(vp, rec.win, clear, out.Shapes, out.TexturesDelta); err != nil {
		if errors.Is(err, errOutOfDate) {
			return []EventResult{repaintNext(w)}
		}
		s.log.Error("painting frame failed", "viewport", vp, "err", err)
	}

	r.intg.handlePlatformOutput(rec.win, out.Platform)
	r.mgr.applyCommands(out.Commands)
	r.mgr.reconcile(out.Viewports, func(id viewport.ID, _ platform.Window) { s.painter.detach(id) })
	if err := r.mgr.buildWindows(loop, s.painter.attach); err != nil {
		s.log.Error("rebuilding windows failed", "err", err)
		return []EventResult{resultExit()}
	}
	s.painter.clean(r.mgr.live)

	now := time.Now()
	var results []EventResult
	for id, after := range out.RepaintAfter {
		wid, ok := r.mgr.windowFor(id)
		if !ok {
			continue
		}
		if after <= 0 {
			results = append(results, repaintNext(wid))
			continue
		}
		results = append(results, repaintAt(wid, now.Add(after)))
	}
	r.intg.maybeAutosave(now, r.mgr.mainWindow())
	if len(results) == 0 {
		results = append(results, resultWait())
	}
	return results
}

// renderSyncViewport paints an immediate child viewport inline during
// its parent's frame. The engine invokes this from inside Run.
func (s *backendShell) renderSyncViewport(b viewport.Builder, pair viewport.IDPair, render ui.Render) {
	r := s.running
	if r == nil {
		return
	}
	parent, ok := r.mgr.record(pair.Parent)
	if !ok || parent.win == nil {
		// Without a parent window there is nothing to paint relative
		// to; the next parent frame will declare the viewport again.
		s.log.Error("dropping sync viewport render, parent window missing",
			"viewport", pair.This, "parent", pair.Parent)
		return
	}
	rec := r.mgr.declare(ui.ViewportOutput{Builder: b, Pair: pair, Render: render})
	if rec.win == nil {
		if err := r.mgr.buildWindow(r.loop, pair.This, rec, s.painter.attach); err != nil {
			s.log.Error("creating sync viewport window failed", "viewport", pair.This, "err", err)
			return
		}
	}

	in := rec.input.TakeInput(rec.win)
	out := r.intg.update(in, render)
	clear := color.NRGBA{A: 0xff}
	if r.intg.app != nil {
		clear = r.intg.app.ClearColor()
	}
	if err := s.painter.paint(pair.This, rec.win, clear, out.Shapes, out.TexturesDelta); err != nil && !errors.Is(err, errOutOfDate) {
		s.log.Error("painting sync viewport failed", "viewport", pair.This, "err", err)
	}
	r.mgr.applyCommands(out.Commands)
}

func (s *backendShell) SaveAndDestroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	if r := s.running; r != nil {
		r.intg.shutdown(r.mgr.mainWindow())
		r.mgr.detachAll(func(id viewport.ID, _ platform.Window) { s.painter.detach(id) })
		s.running = nil
	}
	s.painter.release()
	s.log.Debug("shell destroyed")
}
