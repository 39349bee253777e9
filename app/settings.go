// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"encoding/json"
	"image"

	"github.com/vektorui/shell/platform"
	"github.com/vektorui/shell/ui"
	"github.com/vektorui/shell/viewport"
)

// settingsKey is the store key holding the main window settings.
const settingsKey = "window"

// WindowSettings is the persisted geometry and appearance of the main
// window, restored on the next run.
type WindowSettings struct {
	Position   *image.Point `json:"position,omitempty"`
	InnerSize  image.Point  `json:"inner_size"`
	Maximized  bool         `json:"maximized"`
	Fullscreen bool         `json:"fullscreen"`
	Theme      string       `json:"theme,omitempty"`
}

// windowSettingsFrom captures the current state of a live window.
func windowSettingsFrom(win platform.Window, theme string) WindowSettings {
	pos := win.OuterPosition()
	return WindowSettings{
		Position:   &pos,
		InnerSize:  win.InnerSize(),
		Maximized:  win.IsMaximized(),
		Fullscreen: win.IsFullscreen(),
		Theme:      theme,
	}
}

// loadWindowSettings reads persisted settings, reporting whether any
// were stored. Corrupt data is treated as absent.
func loadWindowSettings(store ui.Store) (WindowSettings, bool) {
	raw, ok := store.Get(settingsKey)
	if !ok {
		return WindowSettings{}, false
	}
	var ws WindowSettings
	if err := json.Unmarshal(raw, &ws); err != nil {
		Logger().Warn("discarding corrupt window settings", "err", err)
		return WindowSettings{}, false
	}
	return ws, true
}

// save writes the settings to the store. Persistence to disk happens
// on the store's next Flush.
func (ws WindowSettings) save(store ui.Store) {
	raw, err := json.Marshal(ws)
	if err != nil {
		Logger().Warn("encoding window settings failed", "err", err)
		return
	}
	store.Set(settingsKey, raw)
}

// applyTo merges the settings into the initial main window builder.
// Explicit builder values win over remembered ones.
func (ws WindowSettings) applyTo(b *viewport.Builder) {
	if b.Position == nil && ws.Position != nil {
		pos := *ws.Position
		b.Position = &pos
	}
	if b.InnerSize == nil && ws.InnerSize.X > 0 && ws.InnerSize.Y > 0 {
		size := ws.InnerSize
		b.InnerSize = &size
	}
	if ws.Maximized {
		b.Maximized = true
	}
	if ws.Fullscreen {
		b.Fullscreen = true
	}
}
