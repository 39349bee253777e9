// SPDX-License-Identifier: Unlicense OR MIT

// Package app drives an immediate-mode UI engine against a native
// event loop: it pumps OS events, schedules repaints, reconciles the
// engine's declared viewports with live windows and persists state
// across runs.
package app

import (
	"os"

	"github.com/vektorui/shell/config"
	"github.com/vektorui/shell/platform"
	"github.com/vektorui/shell/ui"
)

// LoopFactory creates the platform event loop, e.g. x11.NewEventLoop.
type LoopFactory func() (platform.EventLoop, error)

// Run drives the engine and the hosted application until exit. It
// must be called from the program's main goroutine.
//
// By default Run takes over the process and terminates it on exit;
// fatal errors panic, matching the expectations of a program whose
// sole purpose is the UI. With WithRunAndReturn the call instead
// returns the error (nil on a clean exit) and keeps the event loop
// cached, so a second Run works.
func Run(appID string, newLoop LoopFactory, engine ui.Engine, creator ui.AppCreator, opts ...Option) error {
	o := defaultOptions(appID)
	if cfg, err := config.Load(appID); err != nil {
		Logger().Warn("loading config failed, using defaults", "err", err)
	} else {
		o.mergeConfig(cfg)
	}
	for _, opt := range opts {
		opt(o)
	}

	sh, err := newShell(o, engine, creator)
	if err != nil {
		return err
	}
	if o.runAndReturn {
		loop, err := cachedEventLoop(newLoop)
		if err != nil {
			return err
		}
		return runAndReturn(loop, sh)
	}
	loop, err := newLoop()
	if err != nil {
		return err
	}
	runAndExit(loop, sh)
	return nil
}

func newShell(o *Options, engine ui.Engine, creator ui.AppCreator) (Shell, error) {
	switch o.backend {
	case BackendGPU:
		return newGPUShell(o, engine, creator)
	default:
		return newRasterShell(o, engine, creator)
	}
}

func exitProcess(code int) { os.Exit(code) }
