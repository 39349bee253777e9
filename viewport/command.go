// SPDX-License-Identifier: Unlicense OR MIT

package viewport

import "image"

// Window is the subset of a platform window that viewport commands
// drive. The platform package's window type satisfies it.
type Window interface {
	SetTitle(title string)
	SetInnerSize(size image.Point)
	SetOuterPosition(pos image.Point)
	SetMinInnerSize(size image.Point)
	SetMaxInnerSize(size image.Point)
	SetFullscreen(enable bool)
	SetMaximized(enable bool)
	SetMinimized(enable bool)
	SetResizable(enable bool)
	SetAlwaysOnTop(enable bool)
	SetVisible(visible bool)
	SetIcon(icon *IconData)
	SetCursorPos(pos image.Point)
	Focus()
	Close()
	StartDrag()
}

// Command is one incremental change to a live window.
type Command interface {
	apply(w Window, focused bool)
}

type (
	// SetTitle retitles the window.
	SetTitle string
	// InnerSize resizes the window content area.
	InnerSize image.Point
	// OuterPosition moves the window.
	OuterPosition image.Point
	// MinInnerSize constrains the minimum content size.
	MinInnerSize image.Point
	// MaxInnerSize constrains the maximum content size.
	MaxInnerSize image.Point
	// SetFullscreen toggles fullscreen mode.
	SetFullscreen bool
	// SetMaximized toggles the maximized state.
	SetMaximized bool
	// SetMinimized toggles the minimized state.
	SetMinimized bool
	// SetResizable toggles user resizability.
	SetResizable bool
	// SetAlwaysOnTop toggles the above-others hint.
	SetAlwaysOnTop bool
	// SetVisible shows or hides the window.
	SetVisible bool
	// SetIcon replaces the window icon.
	SetIcon struct{ Icon *IconData }
	// Focus raises and focuses the window.
	Focus struct{}
	// Close requests the window be closed.
	Close struct{}
	// StartDrag begins an interactive window move. Only honored on
	// the focused viewport.
	StartDrag struct{}
	// SetCursorPos warps the pointer. Only honored on the focused
	// viewport.
	SetCursorPos image.Point
)

func (c SetTitle) apply(w Window, _ bool)       { w.SetTitle(string(c)) }
func (c InnerSize) apply(w Window, _ bool)      { w.SetInnerSize(image.Point(c)) }
func (c OuterPosition) apply(w Window, _ bool)  { w.SetOuterPosition(image.Point(c)) }
func (c MinInnerSize) apply(w Window, _ bool)   { w.SetMinInnerSize(image.Point(c)) }
func (c MaxInnerSize) apply(w Window, _ bool)   { w.SetMaxInnerSize(image.Point(c)) }
func (c SetFullscreen) apply(w Window, _ bool)  { w.SetFullscreen(bool(c)) }
func (c SetMaximized) apply(w Window, _ bool)   { w.SetMaximized(bool(c)) }
func (c SetMinimized) apply(w Window, _ bool)   { w.SetMinimized(bool(c)) }
func (c SetResizable) apply(w Window, _ bool)   { w.SetResizable(bool(c)) }
func (c SetAlwaysOnTop) apply(w Window, _ bool) { w.SetAlwaysOnTop(bool(c)) }
func (c SetVisible) apply(w Window, _ bool)     { w.SetVisible(bool(c)) }
func (c SetIcon) apply(w Window, _ bool)        { w.SetIcon(c.Icon) }
func (Focus) apply(w Window, _ bool)            { w.Focus() }
func (Close) apply(w Window, _ bool)            { w.Close() }

func (StartDrag) apply(w Window, focused bool) {
	if focused {
		w.StartDrag()
	}
}

func (c SetCursorPos) apply(w Window, focused bool) {
	if focused {
		w.SetCursorPos(image.Point(c))
	}
}

// Process applies commands to a live window. focused reports whether
// the window's viewport currently has input focus; focus-dependent
// commands are dropped otherwise.
func Process(w Window, focused bool, cmds []Command) {
	if w == nil {
		return
	}
	for _, c := range cmds {
		c.apply(w, focused)
	}
}

// CommandSet addresses a batch of commands to one viewport.
type CommandSet struct {
	ID   ID
	Cmds []Command
}
