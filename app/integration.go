// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"log/slog"
	"os/exec"
	"time"

	"github.com/vektorui/shell/platform"
	"github.com/vektorui/shell/storage"
	"github.com/vektorui/shell/ui"
)

// memStore is the in-memory fallback used when the on-disk store
// cannot be opened or persistence is disabled.
type memStore map[string][]byte

func (s memStore) Get(key string) ([]byte, bool) { v, ok := s[key]; return v, ok }
func (s memStore) Set(key string, val []byte)    { s[key] = val }
func (memStore) Flush() error                    { return nil }

// integration glues the engine and the hosted application to the
// shell: it runs frames, persists state and answers close requests.
type integration struct {
	log    *slog.Logger
	opts   *Options
	engine ui.Engine
	app    ui.App
	store  ui.Store

	lastSave time.Time
	shutDown bool
}

func newIntegration(log *slog.Logger, opts *Options, engine ui.Engine) *integration {
	i := &integration{
		log:      log,
		opts:     opts,
		engine:   engine,
		lastSave: time.Now(),
	}
	if !opts.persist {
		i.store = memStore{}
		return i
	}
	st, err := storage.Open(opts.appID)
	if err != nil {
		log.Warn("opening state store failed, state will not persist", "err", err)
		i.store = memStore{}
		return i
	}
	i.store = st
	return i
}

// restoreWindowSettings merges remembered geometry into the main
// window builder before it is first created.
func (i *integration) restoreWindowSettings(opts *Options) {
	ws, ok := loadWindowSettings(i.store)
	if !ok {
		return
	}
	ws.applyTo(&opts.main)
	if ws.Theme != "" && opts.theme == "system" {
		opts.theme = ws.Theme
	}
}

// createApp invokes the one-shot application factory.
func (i *integration) createApp(ctx ui.Context, creator ui.AppCreator) error {
	app, err := creator(ctx, i.store)
	if err != nil {
		return err
	}
	i.app = app
	return nil
}

func (i *integration) frameNr() uint64 {
	return i.engine.FrameNr()
}

// update runs one engine frame. render overrides the application
// update for synchronous child viewports.
func (i *integration) update(in ui.Input, render ui.Render) ui.FullOutput {
	run := func(ctx ui.Context) {
		if render != nil {
			render(ctx)
			return
		}
		i.app.Update(ctx)
	}
	return i.engine.Run(in, run)
}

// handlePlatformOutput applies the non-paint frame output. Cursor and
// clipboard support are optional window capabilities.
func (i *integration) handlePlatformOutput(win platform.Window, out ui.PlatformOutput) {
	if out.CursorIcon != "" {
		if cs, ok := win.(interface{ SetCursorIcon(name string) }); ok {
			cs.SetCursorIcon(out.CursorIcon)
		}
	}
	if out.CopiedText != "" {
		if cw, ok := win.(interface{ WriteClipboard(text string) error }); ok {
			if err := cw.WriteClipboard(out.CopiedText); err != nil {
				i.log.Warn("clipboard write failed", "err", err)
			}
		} else {
			i.log.Debug("dropping copied text, no clipboard support")
		}
	}
	if out.OpenURL != "" {
		if err := exec.Command("xdg-open", out.OpenURL).Start(); err != nil {
			i.log.Warn("opening url failed", "url", out.OpenURL, "err", err)
		}
	}
}

// closeConfirmed asks the application whether a main window close
// request should shut the shell down.
func (i *integration) closeConfirmed() bool {
	return i.app.CloseConfirmed()
}

// maybeAutosave persists state when the autosave interval elapsed.
func (i *integration) maybeAutosave(now time.Time, mainWin platform.Window) {
	if i.opts.autosave <= 0 || now.Sub(i.lastSave) < i.opts.autosave {
		return
	}
	i.save(mainWin)
	i.lastSave = now
}

// save persists window settings and application state.
func (i *integration) save(mainWin platform.Window) {
	if mainWin != nil {
		windowSettingsFrom(mainWin, i.opts.theme).save(i.store)
	}
	if i.app != nil {
		i.app.Save(i.store)
	}
	if err := i.store.Flush(); err != nil {
		i.log.Error("persisting state failed", "err", err)
	}
}

// shutdown saves once and notifies the application. Safe to call more
// than once.
func (i *integration) shutdown(mainWin platform.Window) {
	if i.shutDown {
		return
	}
	i.shutDown = true
	i.save(mainWin)
	if i.app != nil {
		i.app.OnExit()
	}
	if c, ok := i.store.(*storage.Store); ok {
		if err := c.Close(); err != nil {
			i.log.Error("closing state store failed", "err", err)
		}
	}
}
