// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"fmt"
	"log/slog"

	"github.com/vektorui/shell/platform"
	"github.com/vektorui/shell/ui"
	"github.com/vektorui/shell/viewport"
)

// windowRecord tracks one declared viewport. win is nil until the next
// window build pass (and between a suspend and the following resume).
type windowRecord struct {
	win    platform.Window
	input  *ui.InputState
	render ui.Render
	pair   viewport.IDPair
}

// windowManager is the registry of declared viewports and their live
// windows, shared by both backends. It is driven from the pump
// goroutine only.
type windowManager struct {
	log       *slog.Logger
	viewports map[viewport.ID]*windowRecord
	byWindow  map[platform.WindowID]viewport.ID
	// builders holds the last applied builder per viewport, the
	// baseline future frames are diffed against.
	builders map[viewport.ID]viewport.Builder

	focusedWindow platform.WindowID
	hasFocus      bool
}

func newWindowManager(log *slog.Logger, main viewport.Builder) *windowManager {
	m := &windowManager{
		log:       log,
		viewports: make(map[viewport.ID]*windowRecord),
		byWindow:  make(map[platform.WindowID]viewport.ID),
		builders:  make(map[viewport.ID]viewport.Builder),
	}
	m.viewports[viewport.MainID] = &windowRecord{
		input: ui.NewInputState(viewport.MainPair),
		pair:  viewport.MainPair,
	}
	m.builders[viewport.MainID] = main
	return m
}

func (m *windowManager) record(id viewport.ID) (*windowRecord, bool) {
	rec, ok := m.viewports[id]
	return rec, ok
}

func (m *windowManager) viewportFor(w platform.WindowID) (viewport.ID, bool) {
	id, ok := m.byWindow[w]
	return id, ok
}

func (m *windowManager) windowFor(id viewport.ID) (platform.WindowID, bool) {
	rec, ok := m.viewports[id]
	if !ok || rec.win == nil {
		return 0, false
	}
	return rec.win.ID(), true
}

func (m *windowManager) window(w platform.WindowID) platform.Window {
	id, ok := m.byWindow[w]
	if !ok {
		return nil
	}
	rec := m.viewports[id]
	if rec == nil {
		return nil
	}
	return rec.win
}

func (m *windowManager) mainWindow() platform.Window {
	rec := m.viewports[viewport.MainID]
	if rec == nil {
		return nil
	}
	return rec.win
}

func (m *windowManager) setFocus(w platform.WindowID, focused bool) {
	if focused {
		m.focusedWindow = w
		m.hasFocus = true
		return
	}
	if m.focusedWindow == w {
		m.hasFocus = false
	}
}

func (m *windowManager) isFocused(w platform.WindowID) bool {
	return m.hasFocus && m.focusedWindow == w
}

// declare upserts the record for a viewport seen for the first time in
// a frame output. A missing icon is inherited from the parent so child
// windows match the application identity by default.
func (m *windowManager) declare(out ui.ViewportOutput) *windowRecord {
	id := out.Pair.This
	if rec, ok := m.viewports[id]; ok {
		rec.pair = out.Pair
		rec.render = out.Render
		if rec.input != nil {
			rec.input.SetPair(out.Pair)
		}
		return rec
	}
	b := out.Builder
	if b.Icon == nil {
		if parent, ok := m.builders[out.Pair.Parent]; ok {
			b.Icon = parent.Icon
		}
	}
	rec := &windowRecord{
		input:  ui.NewInputState(out.Pair),
		render: out.Render,
		pair:   out.Pair,
	}
	m.viewports[id] = rec
	m.builders[id] = b
	return rec
}

// reconcile folds one frame's declared viewport set into the registry.
// onDetach is called before a live window is torn down so the backend
// can release its surface.
func (m *windowManager) reconcile(outputs []ui.ViewportOutput, onDetach func(viewport.ID, platform.Window)) {
	active := map[viewport.ID]bool{viewport.MainID: true}
	for _, out := range outputs {
		id := out.Pair.This
		active[id] = true
		rec, ok := m.viewports[id]
		if !ok {
			m.declare(out)
			continue
		}
		rec.pair = out.Pair
		rec.render = out.Render
		if rec.input != nil {
			rec.input.SetPair(out.Pair)
		}
		last := m.builders[id]
		cmds, recreate := viewport.Diff(&out.Builder, &last)
		m.builders[id] = out.Builder
		switch {
		case recreate && rec.win != nil:
			m.log.Debug("recreating viewport window", "viewport", id)
			m.detachWindow(id, rec, onDetach)
		case len(cmds) > 0 && rec.win != nil:
			viewport.Process(rec.win, m.isFocused(rec.win.ID()), cmds)
		}
	}
	// The main viewport always survives, even when a frame forgets to
	// declare it.
	for id, rec := range m.viewports {
		if active[id] {
			continue
		}
		m.log.Debug("closing undeclared viewport", "viewport", id)
		m.detachWindow(id, rec, onDetach)
		delete(m.viewports, id)
		delete(m.builders, id)
	}
}

// remove drops one viewport entirely, e.g. after a close request on a
// child window.
func (m *windowManager) remove(id viewport.ID, onDetach func(viewport.ID, platform.Window)) {
	rec, ok := m.viewports[id]
	if !ok {
		return
	}
	m.detachWindow(id, rec, onDetach)
	delete(m.viewports, id)
	delete(m.builders, id)
}

func (m *windowManager) detachWindow(id viewport.ID, rec *windowRecord, onDetach func(viewport.ID, platform.Window)) {
	if rec.win == nil {
		return
	}
	if onDetach != nil {
		onDetach(id, rec.win)
	}
	delete(m.byWindow, rec.win.ID())
	rec.win.Release()
	rec.win = nil
}

// detachAll tears down every live window, keeping the records so a
// later resume can rebuild them.
func (m *windowManager) detachAll(onDetach func(viewport.ID, platform.Window)) {
	for id, rec := range m.viewports {
		m.detachWindow(id, rec, onDetach)
	}
}

// buildWindows creates OS windows for records that lack one. The main
// window is built first; a failure there is fatal while child window
// failures are logged and retried on the next pass.
func (m *windowManager) buildWindows(loop platform.EventLoop, onAttach func(viewport.ID, platform.Window) error) error {
	if rec, ok := m.viewports[viewport.MainID]; ok && rec.win == nil {
		if err := m.buildWindow(loop, viewport.MainID, rec, onAttach); err != nil {
			return fmt.Errorf("app: create main window: %w", err)
		}
	}
	for id, rec := range m.viewports {
		if id == viewport.MainID || rec.win != nil {
			continue
		}
		if err := m.buildWindow(loop, id, rec, onAttach); err != nil {
			m.log.Error("creating viewport window failed", "viewport", id, "err", err)
		}
	}
	return nil
}

func (m *windowManager) buildWindow(loop platform.EventLoop, id viewport.ID, rec *windowRecord, onAttach func(viewport.ID, platform.Window) error) error {
	win, err := loop.CreateWindow(m.builders[id])
	if err != nil {
		return err
	}
	if onAttach != nil {
		if err := onAttach(id, win); err != nil {
			win.Release()
			return err
		}
	}
	rec.win = win
	m.byWindow[win.ID()] = id
	return nil
}

// applyCommands applies engine-issued window commands to live windows.
// Commands addressed to unknown or windowless viewports are dropped.
func (m *windowManager) applyCommands(sets []viewport.CommandSet) {
	for _, set := range sets {
		rec, ok := m.viewports[set.ID]
		if !ok || rec.win == nil {
			m.log.Debug("dropping commands for dead viewport", "viewport", set.ID)
			continue
		}
		viewport.Process(rec.win, m.isFocused(rec.win.ID()), set.Cmds)
	}
}

// live reports whether a viewport is still declared.
func (m *windowManager) live(id viewport.ID) bool {
	_, ok := m.viewports[id]
	return ok
}
