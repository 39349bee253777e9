// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"image"
	"testing"

	"github.com/vektorui/shell/viewport"
)

func TestWindowSettingsRoundTrip(t *testing.T) {
	store := memStore{}
	ws := WindowSettings{
		Position:  &image.Point{X: 40, Y: 60},
		InnerSize: image.Point{X: 1024, Y: 768},
		Maximized: true,
		Theme:     "dark",
	}
	ws.save(store)

	got, ok := loadWindowSettings(store)
	if !ok {
		t.Fatal("settings not found after save")
	}
	if got.InnerSize != ws.InnerSize || !got.Maximized || got.Theme != "dark" {
		t.Errorf("got %+v, want %+v", got, ws)
	}
	if got.Position == nil || *got.Position != *ws.Position {
		t.Errorf("position = %v, want %v", got.Position, ws.Position)
	}
}

func TestLoadWindowSettingsCorrupt(t *testing.T) {
	store := memStore{settingsKey: []byte("{not json")}
	if _, ok := loadWindowSettings(store); ok {
		t.Error("corrupt settings reported as present")
	}
}

func TestWindowSettingsApplyToRespectsExplicitValues(t *testing.T) {
	ws := WindowSettings{
		Position:  &image.Point{X: 1, Y: 2},
		InnerSize: image.Point{X: 640, Y: 480},
	}

	b := viewport.NewBuilder("t").WithInnerSize(800, 600)
	ws.applyTo(&b)
	if b.InnerSize == nil || *b.InnerSize != (image.Point{X: 800, Y: 600}) {
		t.Errorf("explicit size overridden: %v", b.InnerSize)
	}
	if b.Position == nil || *b.Position != (image.Point{X: 1, Y: 2}) {
		t.Errorf("remembered position not applied: %v", b.Position)
	}

	empty := viewport.NewBuilder("t")
	ws.applyTo(&empty)
	if empty.InnerSize == nil || *empty.InnerSize != (image.Point{X: 640, Y: 480}) {
		t.Errorf("remembered size not applied: %v", empty.InnerSize)
	}
}
