// SPDX-License-Identifier: Unlicense OR MIT

package x11

import (
	"image"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/vektorui/shell/platform"
)

// translate converts one raw X event into platform events, appending
// to batch. Events for unknown windows are dropped here; races around
// window teardown are handled above the platform layer.
func (l *EventLoop) translate(batch []platform.Event, ev xgb.Event) []platform.Event {
	push := func(id xproto.Window, kind platform.WindowEventKind) {
		batch = append(batch, platform.WindowEvent{
			Window: platform.WindowID(id),
			Inner:  kind,
		})
	}

	switch e := ev.(type) {
	case xproto.ExposeEvent:
		if e.Count == 0 {
			batch = append(batch, platform.RedrawRequestedEvent{
				Window: platform.WindowID(e.Window),
			})
		}

	case xproto.ConfigureNotifyEvent:
		w, ok := l.windows[e.Window]
		if !ok {
			break
		}
		size := image.Point{X: int(e.Width), Y: int(e.Height)}
		w.pos = image.Point{X: int(e.X), Y: int(e.Y)}
		if size != w.size {
			w.size = size
			push(e.Window, platform.ResizedEvent{Size: size})
		}

	case xproto.ClientMessageEvent:
		if l.isDeleteMessage(e) {
			push(e.Window, platform.CloseRequestedEvent{})
		}

	case xproto.FocusInEvent:
		push(e.Event, platform.FocusedEvent{Focused: true})
	case xproto.FocusOutEvent:
		push(e.Event, platform.FocusedEvent{Focused: false})

	case xproto.MotionNotifyEvent:
		push(e.Event, platform.PointerEvent{
			Position: image.Point{X: int(e.EventX), Y: int(e.EventY)},
			Buttons:  buttonMask(e.State),
			Kind:     platform.PointerMove,
		})

	case xproto.ButtonPressEvent:
		pos := image.Point{X: int(e.EventX), Y: int(e.EventY)}
		if scroll, ok := scrollDelta(e.Detail); ok {
			push(e.Event, platform.PointerEvent{
				Position: pos,
				Scroll:   scroll,
				Kind:     platform.PointerScroll,
			})
			break
		}
		push(e.Event, platform.PointerEvent{
			Position: pos,
			Buttons:  buttonMask(e.State) | buttonBit(e.Detail),
			Kind:     platform.PointerPress,
		})

	case xproto.ButtonReleaseEvent:
		if _, ok := scrollDelta(e.Detail); ok {
			break
		}
		push(e.Event, platform.PointerEvent{
			Position: image.Point{X: int(e.EventX), Y: int(e.EventY)},
			Buttons:  buttonMask(e.State) &^ buttonBit(e.Detail),
			Kind:     platform.PointerRelease,
		})

	case xproto.EnterNotifyEvent:
		push(e.Event, platform.PointerEvent{
			Position: image.Point{X: int(e.EventX), Y: int(e.EventY)},
			Kind:     platform.PointerEnter,
		})
	case xproto.LeaveNotifyEvent:
		push(e.Event, platform.PointerEvent{
			Position: image.Point{X: int(e.EventX), Y: int(e.EventY)},
			Kind:     platform.PointerLeave,
		})

	case xproto.KeyPressEvent:
		push(e.Event, platform.KeyEvent{
			Code:      uint32(e.Detail),
			Rune:      keyRune(l, e.State, e.Detail),
			Pressed:   true,
			Modifiers: modifiers(e.State),
		})
	case xproto.KeyReleaseEvent:
		push(e.Event, platform.KeyEvent{
			Code:      uint32(e.Detail),
			Pressed:   false,
			Modifiers: modifiers(e.State),
		})

	case xproto.DestroyNotifyEvent:
		l.forgetWindow(e.Window)
	}
	return batch
}

func (l *EventLoop) isDeleteMessage(e xproto.ClientMessageEvent) bool {
	protocols, err := xprop.Atm(l.xu, "WM_PROTOCOLS")
	if err != nil || e.Type != protocols || e.Format != 32 {
		return false
	}
	del, err := xprop.Atm(l.xu, "WM_DELETE_WINDOW")
	if err != nil {
		return false
	}
	return xproto.Atom(e.Data.Data32[0]) == del
}

// scrollDelta maps X scroll buttons (4-7) to a scroll step.
func scrollDelta(button xproto.Button) (image.Point, bool) {
	switch button {
	case 4:
		return image.Point{Y: 1}, true
	case 5:
		return image.Point{Y: -1}, true
	case 6:
		return image.Point{X: 1}, true
	case 7:
		return image.Point{X: -1}, true
	}
	return image.Point{}, false
}

func buttonBit(button xproto.Button) uint32 {
	switch button {
	case 1:
		return 1
	case 2:
		return 2
	case 3:
		return 4
	}
	return 0
}

// buttonMask extracts pressed buttons from an event state mask.
func buttonMask(state uint16) uint32 {
	var m uint32
	if state&xproto.ButtonMask1 != 0 {
		m |= 1
	}
	if state&xproto.ButtonMask2 != 0 {
		m |= 2
	}
	if state&xproto.ButtonMask3 != 0 {
		m |= 4
	}
	return m
}

func modifiers(state uint16) uint32 {
	var m uint32
	if state&xproto.ModMaskShift != 0 {
		m |= platform.ModShift
	}
	if state&xproto.ModMaskControl != 0 {
		m |= platform.ModCtrl
	}
	if state&xproto.ModMask1 != 0 {
		m |= platform.ModAlt
	}
	if state&xproto.ModMask4 != 0 {
		m |= platform.ModSuper
	}
	return m
}

func keyRune(l *EventLoop, state uint16, code xproto.Keycode) rune {
	s := keybind.LookupString(l.xu, state, code)
	for _, r := range s {
		return r
	}
	return 0
}
