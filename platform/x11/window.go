// SPDX-License-Identifier: Unlicense OR MIT

package x11

import (
	"fmt"
	"image"

	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"
	"github.com/BurntSushi/xgbutil/xcursor"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xgraphics"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/vektorui/shell/platform"
	"github.com/vektorui/shell/viewport"
)

// _NET_WM_MOVERESIZE direction for an interactive move.
const netWMMoveResizeMove = 8

// IconicState per ICCCM 4.1.4.
const iconicState = 3

// Window is one X11 window.
type Window struct {
	loop *EventLoop
	xu   *xgbutil.XUtil
	id   xproto.Window

	// size and pos are caches updated from ConfigureNotify.
	size image.Point
	pos  image.Point

	resizable bool
	minSize   *image.Point
	maxSize   *image.Point

	ximg     *xgraphics.Image
	cursors  map[uint16]xproto.Cursor
	released bool
}

func createWindow(l *EventLoop, b viewport.Builder) (*Window, error) {
	conn := l.xu.Conn()
	screen := l.xu.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, fmt.Errorf("x11: allocate window id: %w", err)
	}

	size := image.Point{X: 800, Y: 600}
	if b.InnerSize != nil && b.InnerSize.X > 0 && b.InnerSize.Y > 0 {
		size = *b.InnerSize
	}
	var pos image.Point
	if b.Position != nil {
		pos = *b.Position
	}

	const eventMask = xproto.EventMaskKeyPress |
		xproto.EventMaskKeyRelease |
		xproto.EventMaskButtonPress |
		xproto.EventMaskButtonRelease |
		xproto.EventMaskPointerMotion |
		xproto.EventMaskEnterWindow |
		xproto.EventMaskLeaveWindow |
		xproto.EventMaskExposure |
		xproto.EventMaskStructureNotify |
		xproto.EventMaskFocusChange

	// Value list order follows the bit positions of the mask:
	// CwBackPixel before CwEventMask.
	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		l.xu.RootWin(),
		int16(pos.X), int16(pos.Y),
		uint16(size.X), uint16(size.Y),
		0,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwEventMask,
		[]uint32{0x000000, eventMask},
	).Check()
	if err != nil {
		return nil, fmt.Errorf("x11: create window: %w", err)
	}

	w := &Window{
		loop:      l,
		xu:        l.xu,
		id:        wid,
		size:      size,
		pos:       pos,
		resizable: b.Resizable,
		minSize:   b.MinInnerSize,
		maxSize:   b.MaxInnerSize,
		cursors:   make(map[uint16]xproto.Cursor),
	}

	if err := icccm.WmProtocolsSet(l.xu, wid, []string{"WM_DELETE_WINDOW"}); err != nil {
		return nil, fmt.Errorf("x11: set protocols: %w", err)
	}
	w.SetTitle(b.Title)
	w.applyNormalHints()
	if !b.Decorations {
		w.setDecorated(false)
	}
	if b.Icon != nil {
		w.SetIcon(b.Icon)
	}
	if b.Visible {
		xproto.MapWindow(conn, wid)
	}
	// State hints only stick once the window manager manages the
	// window, so they go out after mapping.
	if b.Fullscreen {
		w.SetFullscreen(true)
	}
	if b.Maximized {
		w.SetMaximized(true)
	}
	if b.AlwaysOnTop {
		w.SetAlwaysOnTop(true)
	}
	if b.Minimized {
		w.SetMinimized(true)
	}
	return w, nil
}

func (w *Window) ID() platform.WindowID { return platform.WindowID(w.id) }

func (w *Window) InnerSize() image.Point {
	if w.size.X > 0 && w.size.Y > 0 {
		return w.size
	}
	geom, err := xproto.GetGeometry(w.xu.Conn(), xproto.Drawable(w.id)).Reply()
	if err != nil {
		return w.size
	}
	w.size = image.Point{X: int(geom.Width), Y: int(geom.Height)}
	return w.size
}

func (w *Window) OuterPosition() image.Point {
	tr, err := xproto.TranslateCoordinates(
		w.xu.Conn(), w.id, w.xu.RootWin(), 0, 0,
	).Reply()
	if err != nil {
		return w.pos
	}
	w.pos = image.Point{X: int(tr.DstX), Y: int(tr.DstY)}
	return w.pos
}

// ScaleFactor derives the scale from the screen's physical DPI.
func (w *Window) ScaleFactor() float32 {
	screen := w.xu.Screen()
	if screen.WidthInMillimeters == 0 {
		return 1
	}
	dpi := float32(screen.WidthInPixels) * 25.4 / float32(screen.WidthInMillimeters)
	scale := dpi / 96
	if scale < 0.5 {
		return 1
	}
	return scale
}

func (w *Window) hasState(state string) bool {
	states, err := ewmh.WmStateGet(w.xu, w.id)
	if err != nil {
		return false
	}
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}

func (w *Window) IsMinimized() bool  { return w.hasState("_NET_WM_STATE_HIDDEN") }
func (w *Window) IsFullscreen() bool { return w.hasState("_NET_WM_STATE_FULLSCREEN") }

func (w *Window) IsMaximized() bool {
	return w.hasState("_NET_WM_STATE_MAXIMIZED_VERT") &&
		w.hasState("_NET_WM_STATE_MAXIMIZED_HORZ")
}

func (w *Window) SetTitle(title string) {
	// Both properties: EWMH for modern window managers, ICCCM for the
	// rest.
	if err := ewmh.WmNameSet(w.xu, w.id, title); err != nil {
		icccm.WmNameSet(w.xu, w.id, title)
		return
	}
	icccm.WmNameSet(w.xu, w.id, title)
}

func (w *Window) SetInnerSize(size image.Point) {
	if size.X <= 0 || size.Y <= 0 {
		return
	}
	xproto.ConfigureWindow(w.xu.Conn(), w.id,
		xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(size.X), uint32(size.Y)})
}

func (w *Window) SetOuterPosition(pos image.Point) {
	xproto.ConfigureWindow(w.xu.Conn(), w.id,
		xproto.ConfigWindowX|xproto.ConfigWindowY,
		[]uint32{uint32(pos.X), uint32(pos.Y)})
}

func (w *Window) SetMinInnerSize(size image.Point) {
	w.minSize = &size
	w.applyNormalHints()
}

func (w *Window) SetMaxInnerSize(size image.Point) {
	w.maxSize = &size
	w.applyNormalHints()
}

func (w *Window) SetResizable(enable bool) {
	w.resizable = enable
	w.applyNormalHints()
}

// applyNormalHints publishes WM_NORMAL_HINTS. A non-resizable window
// pins min and max to the current size.
func (w *Window) applyNormalHints() {
	hints := icccm.NormalHints{}
	if !w.resizable {
		size := w.InnerSize()
		hints.Flags = icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize
		hints.MinWidth, hints.MinHeight = uint(size.X), uint(size.Y)
		hints.MaxWidth, hints.MaxHeight = uint(size.X), uint(size.Y)
	} else {
		if w.minSize != nil {
			hints.Flags |= icccm.SizeHintPMinSize
			hints.MinWidth, hints.MinHeight = uint(w.minSize.X), uint(w.minSize.Y)
		}
		if w.maxSize != nil {
			hints.Flags |= icccm.SizeHintPMaxSize
			hints.MaxWidth, hints.MaxHeight = uint(w.maxSize.X), uint(w.maxSize.Y)
		}
	}
	icccm.WmNormalHintsSet(w.xu, w.id, &hints)
}

func (w *Window) setDecorated(decorated bool) {
	hints := motif.Hints{Flags: motif.HintDecorations}
	if decorated {
		hints.Decoration = motif.DecorationAll
	} else {
		hints.Decoration = motif.DecorationNone
	}
	motif.WmHintsSet(w.xu, w.id, &hints)
}

func (w *Window) stateReq(enable bool, atoms ...string) {
	action := 0
	if enable {
		action = 1
	}
	if len(atoms) == 2 {
		ewmh.WmStateReqExtra(w.xu, w.id, action, atoms[0], atoms[1], 1)
		return
	}
	ewmh.WmStateReq(w.xu, w.id, action, atoms[0])
}

func (w *Window) SetFullscreen(enable bool) {
	w.stateReq(enable, "_NET_WM_STATE_FULLSCREEN")
}

func (w *Window) SetMaximized(enable bool) {
	w.stateReq(enable, "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT")
}

func (w *Window) SetAlwaysOnTop(enable bool) {
	w.stateReq(enable, "_NET_WM_STATE_ABOVE")
}

func (w *Window) SetMinimized(enable bool) {
	if !enable {
		xproto.MapWindow(w.xu.Conn(), w.id)
		return
	}
	atm, err := xprop.Atm(w.xu, "WM_CHANGE_STATE")
	if err != nil {
		return
	}
	cm, err := xevent.NewClientMessage(32, w.id, atm, iconicState)
	if err != nil {
		return
	}
	xproto.SendEvent(w.xu.Conn(), false, w.xu.RootWin(),
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(cm.Bytes()))
}

func (w *Window) SetVisible(visible bool) {
	if visible {
		xproto.MapWindow(w.xu.Conn(), w.id)
		return
	}
	xproto.UnmapWindow(w.xu.Conn(), w.id)
}

// SetIcon publishes _NET_WM_ICON in packed ARGB.
func (w *Window) SetIcon(icon *viewport.IconData) {
	if icon == nil || icon.Width <= 0 || icon.Height <= 0 {
		return
	}
	n := icon.Width * icon.Height
	if len(icon.RGBA) < n*4 {
		return
	}
	data := make([]uint, n)
	for i := 0; i < n; i++ {
		r := uint(icon.RGBA[i*4])
		g := uint(icon.RGBA[i*4+1])
		b := uint(icon.RGBA[i*4+2])
		a := uint(icon.RGBA[i*4+3])
		data[i] = a<<24 | r<<16 | g<<8 | b
	}
	ewmh.WmIconSet(w.xu, w.id, []ewmh.WmIcon{{
		Width:  uint(icon.Width),
		Height: uint(icon.Height),
		Data:   data,
	}})
}

func (w *Window) SetCursorPos(pos image.Point) {
	xproto.WarpPointer(w.xu.Conn(), xproto.WindowNone, w.id,
		0, 0, 0, 0, int16(pos.X), int16(pos.Y))
}

// SetCursorIcon maps engine cursor names onto the X cursor font.
func (w *Window) SetCursorIcon(name string) {
	glyph := cursorGlyph(name)
	cur, ok := w.cursors[glyph]
	if !ok {
		var err error
		cur, err = xcursor.CreateCursor(w.xu, glyph)
		if err != nil {
			return
		}
		w.cursors[glyph] = cur
	}
	xproto.ChangeWindowAttributes(w.xu.Conn(), w.id,
		xproto.CwCursor, []uint32{uint32(cur)})
}

func cursorGlyph(name string) uint16 {
	switch name {
	case "pointer", "pointing_hand":
		return xcursor.Hand2
	case "text":
		return xcursor.XTerm
	case "crosshair":
		return xcursor.Crosshair
	case "move", "grab", "grabbing", "all_scroll":
		return xcursor.Fleur
	case "ew_resize", "col_resize":
		return xcursor.SBHDoubleArrow
	case "ns_resize", "row_resize":
		return xcursor.SBVDoubleArrow
	case "wait", "progress":
		return xcursor.Watch
	default:
		return xcursor.LeftPtr
	}
}

func (w *Window) Focus() {
	ewmh.ActiveWindowReq(w.xu, w.id)
}

func (w *Window) Close() {
	ewmh.CloseWindow(w.xu, w.id)
}

func (w *Window) StartDrag() {
	ptr, err := xproto.QueryPointer(w.xu.Conn(), w.xu.RootWin()).Reply()
	if err != nil {
		return
	}
	atm, err := xprop.Atm(w.xu, "_NET_WM_MOVERESIZE")
	if err != nil {
		return
	}
	cm, err := xevent.NewClientMessage(32, w.id, atm,
		int(ptr.RootX), int(ptr.RootY), netWMMoveResizeMove, 1, 1)
	if err != nil {
		return
	}
	xproto.SendEvent(w.xu.Conn(), false, w.xu.RootWin(),
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(cm.Bytes()))
}

func (w *Window) RequestRedraw() {
	w.loop.Post(redrawRequest{window: w.ID()})
}

// SetCursorHitTest uses the Shape extension to let pointer input pass
// through the window.
func (w *Window) SetCursorHitTest(accept bool) error {
	if !w.loop.hasShape {
		return fmt.Errorf("x11: shape extension unavailable")
	}
	conn := w.xu.Conn()
	if accept {
		return shape.MaskChecked(conn, shape.SoSet, shape.SkInput,
			w.id, 0, 0, xproto.PixmapNone).Check()
	}
	return shape.RectanglesChecked(conn, shape.SoSet, shape.SkInput, 0,
		w.id, 0, 0, nil).Check()
}

// Present blits a finished CPU frame into the window.
func (w *Window) Present(img *image.RGBA) error {
	if img == nil {
		return nil
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil
	}
	if w.ximg == nil || !w.ximg.Bounds().Eq(bounds) {
		if w.ximg != nil {
			w.ximg.Destroy()
		}
		w.ximg = xgraphics.New(w.xu, bounds)
		if err := w.ximg.XSurfaceSet(w.id); err != nil {
			w.ximg.Destroy()
			w.ximg = nil
			return fmt.Errorf("x11: bind surface: %w", err)
		}
	}
	// xgraphics wants BGRA.
	dst := w.ximg.Pix
	src := img.Pix
	for i := 0; i+3 < len(src) && i+3 < len(dst); i += 4 {
		dst[i] = src[i+2]
		dst[i+1] = src[i+1]
		dst[i+2] = src[i]
		dst[i+3] = src[i+3]
	}
	w.ximg.XDraw()
	w.ximg.XPaint(w.id)
	return nil
}

// RawHandles exposes the window handle for graphics surface creation.
// xgb holds no native display pointer, so the display handle is zero.
func (w *Window) RawHandles() (platform.DisplayHandle, platform.WindowHandle) {
	return 0, platform.WindowHandle(w.id)
}

func (w *Window) Release() {
	if w.released {
		return
	}
	w.released = true
	if w.ximg != nil {
		w.ximg.Destroy()
		w.ximg = nil
	}
	for _, cur := range w.cursors {
		xproto.FreeCursor(w.xu.Conn(), cur)
	}
	xproto.DestroyWindow(w.xu.Conn(), w.id)
	w.loop.forgetWindow(w.id)
}
