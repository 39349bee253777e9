// SPDX-License-Identifier: Unlicense OR MIT

package viewport

import "image"

// IconData is a window icon in unencoded RGBA form.
type IconData struct {
	RGBA   []byte
	Width  int
	Height int
}

// Builder is the desired state of a window, as declared by the UI
// engine. Builders are compared structurally between frames: most
// changes translate to incremental commands on the live window, but
// some attributes can only be applied by recreating it.
//
// Not every backend honors every attribute. The x11 backend creates
// windows on the root visual, so Transparent windows are composited
// opaque there (changing it still recreates the window, for backends
// that can honor it), and DragAndDrop file drops are not wired to the
// XDND protocol yet.
type Builder struct {
	Title          string
	Position       *image.Point
	InnerSize      *image.Point
	MinInnerSize   *image.Point
	MaxInnerSize   *image.Point
	Fullscreen     bool
	Maximized      bool
	Minimized      bool
	Resizable      bool
	Decorations    bool
	Transparent    bool
	AlwaysOnTop    bool
	Visible        bool
	Icon           *IconData
	CloseButton    bool
	DragAndDrop    bool
	ActiveViewport bool
}

// NewBuilder returns a builder with the defaults of a plain
// decorated, resizable, visible window.
func NewBuilder(title string) Builder {
	return Builder{
		Title:       title,
		Resizable:   true,
		Decorations: true,
		Visible:     true,
		CloseButton: true,
		DragAndDrop: true,
	}
}

// WithInnerSize sets the desired inner size.
func (b Builder) WithInnerSize(w, h int) Builder {
	b.InnerSize = &image.Point{X: w, Y: h}
	return b
}

// WithPosition sets the desired outer position.
func (b Builder) WithPosition(x, y int) Builder {
	b.Position = &image.Point{X: x, Y: y}
	return b
}

// Diff compares a newly declared builder against the last-seen one.
// It returns the incremental commands needed to patch a live window,
// and whether the change requires destroying and recreating the
// window instead. An unchanged builder yields no commands.
func Diff(new, old *Builder) (cmds []Command, recreate bool) {
	if new.Decorations != old.Decorations || new.Transparent != old.Transparent ||
		new.CloseButton != old.CloseButton {
		return nil, true
	}
	if new.Title != old.Title {
		cmds = append(cmds, SetTitle(new.Title))
	}
	if p := new.Position; p != nil && !eqPoint(p, old.Position) {
		cmds = append(cmds, OuterPosition(*p))
	}
	if s := new.InnerSize; s != nil && !eqPoint(s, old.InnerSize) {
		cmds = append(cmds, InnerSize(*s))
	}
	if s := new.MinInnerSize; s != nil && !eqPoint(s, old.MinInnerSize) {
		cmds = append(cmds, MinInnerSize(*s))
	}
	if s := new.MaxInnerSize; s != nil && !eqPoint(s, old.MaxInnerSize) {
		cmds = append(cmds, MaxInnerSize(*s))
	}
	if new.Fullscreen != old.Fullscreen {
		cmds = append(cmds, SetFullscreen(new.Fullscreen))
	}
	if new.Maximized != old.Maximized {
		cmds = append(cmds, SetMaximized(new.Maximized))
	}
	if new.Minimized != old.Minimized {
		cmds = append(cmds, SetMinimized(new.Minimized))
	}
	if new.Resizable != old.Resizable {
		cmds = append(cmds, SetResizable(new.Resizable))
	}
	if new.AlwaysOnTop != old.AlwaysOnTop {
		cmds = append(cmds, SetAlwaysOnTop(new.AlwaysOnTop))
	}
	if new.Visible != old.Visible {
		cmds = append(cmds, SetVisible(new.Visible))
	}
	if new.Icon != old.Icon && new.Icon != nil {
		cmds = append(cmds, SetIcon{Icon: new.Icon})
	}
	return cmds, false
}

func eqPoint(a, b *image.Point) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
