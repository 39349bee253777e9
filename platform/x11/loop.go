// SPDX-License-Identifier: Unlicense OR MIT

// Package x11 implements the platform contract over an X11
// connection using xgb and xgbutil.
package x11

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"

	"github.com/vektorui/shell/platform"
	"github.com/vektorui/shell/viewport"
)

// ErrDestroyed is returned by Next after the loop was torn down.
var ErrDestroyed = errors.New("x11: event loop destroyed")

// redrawRequest is posted internally by Window.RequestRedraw.
type redrawRequest struct {
	window platform.WindowID
}

// EventLoop is the X11 event pump. Next, CreateWindow and Destroy must
// be called from one goroutine; Post is safe from any.
type EventLoop struct {
	xu       *xgbutil.XUtil
	hasShape bool

	windows map[xproto.Window]*Window

	// xEvents is fed by a dedicated reader goroutine so Next can wait
	// with a deadline, which xgb itself cannot.
	xEvents chan xgb.Event
	xErrors chan error

	mu     sync.Mutex
	posted []any
	wake   chan struct{}

	pending   []platform.Event
	destroyed bool
}

// NewEventLoop connects to the X server named by $DISPLAY.
func NewEventLoop() (*EventLoop, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("x11: connect: %w", err)
	}
	keybind.Initialize(xu)

	l := &EventLoop{
		xu:      xu,
		windows: make(map[xproto.Window]*Window),
		xEvents: make(chan xgb.Event, 64),
		xErrors: make(chan error, 1),
		wake:    make(chan struct{}, 1),
	}
	if err := shape.Init(xu.Conn()); err == nil {
		l.hasShape = true
	}
	// The first iteration delivers Resumed, matching platforms where
	// applications start backgrounded.
	l.pending = append(l.pending, platform.ResumedEvent{})

	go l.readX()
	return l, nil
}

// readX pulls raw events off the connection until it closes.
func (l *EventLoop) readX() {
	for {
		ev, err := l.xu.Conn().WaitForEvent()
		if ev == nil && err == nil {
			close(l.xEvents)
			return
		}
		if err != nil {
			select {
			case l.xErrors <- err:
			default:
			}
			continue
		}
		l.xEvents <- ev
	}
}

// Post implements platform.EventLoop.
func (l *EventLoop) Post(value any) error {
	l.mu.Lock()
	if l.destroyed {
		l.mu.Unlock()
		return ErrDestroyed
	}
	l.posted = append(l.posted, value)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Next implements platform.EventLoop.
func (l *EventLoop) Next(mode platform.WaitMode) ([]platform.Event, error) {
	if l.destroyed {
		if l.pending != nil {
			batch := l.pending
			l.pending = nil
			return batch, nil
		}
		return nil, ErrDestroyed
	}

	batch := l.pending
	l.pending = nil
	batch = append(batch, l.drainPosted()...)
	batch = l.drainX(batch)

	if len(batch) > 0 || mode.Kind == platform.Poll {
		return batch, nil
	}

	var deadline <-chan time.Time
	if mode.Kind == platform.WaitUntil {
		wait := time.Until(mode.Deadline)
		if wait <= 0 {
			return []platform.Event{platform.WakeReachedEvent{}}, nil
		}
		t := time.NewTimer(wait)
		defer t.Stop()
		deadline = t.C
	}

	select {
	case ev, ok := <-l.xEvents:
		if !ok {
			return []platform.Event{platform.DestroyedEvent{}}, nil
		}
		batch = l.translate(batch, ev)
		batch = l.drainX(batch)
		batch = append(batch, l.drainPosted()...)
	case err := <-l.xErrors:
		return nil, fmt.Errorf("x11: connection: %w", err)
	case <-l.wake:
		batch = append(batch, l.drainPosted()...)
	case <-deadline:
		return []platform.Event{platform.WakeReachedEvent{}}, nil
	}
	if len(batch) == 0 {
		// A wake with nothing behind it, e.g. a posted value drained
		// by an earlier batch.
		batch = append(batch, platform.WakeReachedEvent{})
	}
	return batch, nil
}

func (l *EventLoop) drainPosted() []platform.Event {
	l.mu.Lock()
	posted := l.posted
	l.posted = nil
	l.mu.Unlock()
	var out []platform.Event
	for _, v := range posted {
		if rr, ok := v.(redrawRequest); ok {
			out = append(out, platform.RedrawRequestedEvent{Window: rr.window})
			continue
		}
		out = append(out, platform.UserEvent{Value: v})
	}
	return out
}

func (l *EventLoop) drainX(batch []platform.Event) []platform.Event {
	for {
		select {
		case ev, ok := <-l.xEvents:
			if !ok {
				return append(batch, platform.DestroyedEvent{})
			}
			batch = l.translate(batch, ev)
		default:
			return batch
		}
	}
}

// CreateWindow implements platform.EventLoop.
func (l *EventLoop) CreateWindow(b viewport.Builder) (platform.Window, error) {
	w, err := createWindow(l, b)
	if err != nil {
		return nil, err
	}
	l.windows[w.id] = w
	return w, nil
}

// Destroy implements platform.EventLoop.
func (l *EventLoop) Destroy() {
	l.mu.Lock()
	if l.destroyed {
		l.mu.Unlock()
		return
	}
	l.destroyed = true
	l.mu.Unlock()

	for _, w := range l.windows {
		w.Release()
	}
	l.windows = make(map[xproto.Window]*Window)
	l.pending = append(l.pending, platform.DestroyedEvent{})
	l.xu.Conn().Close()
}

func (l *EventLoop) forgetWindow(id xproto.Window) {
	delete(l.windows, id)
}
