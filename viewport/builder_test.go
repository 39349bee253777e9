// SPDX-License-Identifier: Unlicense OR MIT

package viewport

import (
	"image"
	"testing"
)

func TestNewIDStable(t *testing.T) {
	if NewID("settings") != NewID("settings") {
		t.Error("same label produced different IDs")
	}
	if NewID("settings") == NewID("about") {
		t.Error("distinct labels collided")
	}
	if MainID != NewID("main") {
		t.Error("MainID is not derived from the main label")
	}
}

func TestDiffUnchanged(t *testing.T) {
	b := NewBuilder("tool").WithInnerSize(320, 240)
	same := b
	cmds, recreate := Diff(&same, &b)
	if recreate {
		t.Error("unchanged builder requested recreation")
	}
	if len(cmds) != 0 {
		t.Errorf("unchanged builder produced %d commands", len(cmds))
	}
}

func TestDiffIncremental(t *testing.T) {
	old := NewBuilder("tool").WithInnerSize(320, 240)
	new := old
	new.Title = "tool - modified"
	new.InnerSize = &image.Point{X: 640, Y: 480}
	new.AlwaysOnTop = true

	cmds, recreate := Diff(&new, &old)
	if recreate {
		t.Fatal("incremental change requested recreation")
	}
	if len(cmds) != 3 {
		t.Fatalf("got %d commands, want 3", len(cmds))
	}
	if title, ok := cmds[0].(SetTitle); !ok || string(title) != "tool - modified" {
		t.Errorf("first command = %#v, want SetTitle", cmds[0])
	}
}

func TestDiffRecreate(t *testing.T) {
	old := NewBuilder("tool")
	for _, mutate := range []func(*Builder){
		func(b *Builder) { b.Decorations = false },
		func(b *Builder) { b.Transparent = true },
	} {
		new := old
		mutate(&new)
		if _, recreate := Diff(&new, &old); !recreate {
			t.Errorf("structural change %+v did not request recreation", new)
		}
	}
}

// Toggling DragAndDrop has no live-window equivalent: it is neither a
// command nor a reason to recreate.
func TestDiffIgnoresDragAndDrop(t *testing.T) {
	old := NewBuilder("tool")
	new := old
	new.DragAndDrop = false
	cmds, recreate := Diff(&new, &old)
	if recreate {
		t.Error("drag-and-drop change requested recreation")
	}
	if len(cmds) != 0 {
		t.Errorf("drag-and-drop change produced %d commands", len(cmds))
	}
}

type recordWindow struct {
	titles  []string
	sizes   []image.Point
	dragged bool
	warped  bool
}

func (w *recordWindow) SetTitle(t string)            { w.titles = append(w.titles, t) }
func (w *recordWindow) SetInnerSize(s image.Point)   { w.sizes = append(w.sizes, s) }
func (w *recordWindow) SetOuterPosition(image.Point) {}
func (w *recordWindow) SetMinInnerSize(image.Point)  {}
func (w *recordWindow) SetMaxInnerSize(image.Point)  {}
func (w *recordWindow) SetFullscreen(bool)           {}
func (w *recordWindow) SetMaximized(bool)            {}
func (w *recordWindow) SetMinimized(bool)            {}
func (w *recordWindow) SetResizable(bool)            {}
func (w *recordWindow) SetAlwaysOnTop(bool)          {}
func (w *recordWindow) SetVisible(bool)              {}
func (w *recordWindow) SetIcon(*IconData)            {}
func (w *recordWindow) SetCursorPos(image.Point)     { w.warped = true }
func (w *recordWindow) Focus()                       {}
func (w *recordWindow) Close()                       {}
func (w *recordWindow) StartDrag()                   { w.dragged = true }

func TestProcessFocusGating(t *testing.T) {
	w := new(recordWindow)
	cmds := []Command{SetTitle("x"), StartDrag{}, SetCursorPos{X: 1, Y: 2}}

	Process(w, false, cmds)
	if w.dragged || w.warped {
		t.Error("focus-dependent commands ran on unfocused window")
	}
	if len(w.titles) != 1 {
		t.Error("plain command dropped on unfocused window")
	}

	Process(w, true, cmds)
	if !w.dragged || !w.warped {
		t.Error("focus-dependent commands dropped on focused window")
	}
}
