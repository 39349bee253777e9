// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"log/slog"
	"time"

	"github.com/vektorui/shell/config"
	"github.com/vektorui/shell/viewport"
)

// Backend selects the graphics backend.
type Backend uint8

const (
	// BackendRaster renders frames on the CPU and blits them to the
	// window. It is the stock backend and works everywhere.
	BackendRaster Backend = iota
	// BackendGPU renders through wgpu.
	BackendGPU
)

// HardwareAcceleration states how hard to try for GPU acceleration.
type HardwareAcceleration uint8

const (
	// AccelPreferred uses acceleration when available and falls back
	// to software otherwise.
	AccelPreferred HardwareAcceleration = iota
	// AccelRequired fails startup when acceleration is unavailable.
	AccelRequired
	// AccelOff never uses acceleration.
	AccelOff
)

// Options configures a Run. Use the With... functions.
type Options struct {
	appID        string
	backend      Backend
	vsync        bool
	msaa         int
	accel        HardwareAcceleration
	theme        string
	autosave     time.Duration
	runAndReturn bool
	persist      bool
	main         viewport.Builder
}

// Option mutates Options.
type Option func(*Options)

func defaultOptions(appID string) *Options {
	return &Options{
		appID:    appID,
		backend:  BackendRaster,
		vsync:    true,
		accel:    AccelPreferred,
		theme:    "system",
		autosave: 30 * time.Second,
		persist:  true,
		main:     viewport.NewBuilder(appID),
	}
}

// mergeConfig folds file defaults into the options. Callers apply the
// explicit Option functions afterwards, so those always win.
func (o *Options) mergeConfig(f config.File) {
	switch f.Backend {
	case "gpu":
		o.backend = BackendGPU
	case "raster":
		o.backend = BackendRaster
	}
	if f.VSync != nil {
		o.vsync = *f.VSync
	}
	if f.Multisampling != nil {
		o.msaa = *f.Multisampling
	}
	switch f.HardwareAcceleration {
	case "required":
		o.accel = AccelRequired
	case "off":
		o.accel = AccelOff
	case "preferred":
		o.accel = AccelPreferred
	}
	if f.Theme != "" {
		o.theme = f.Theme
	}
}

// WithBackend selects the graphics backend.
func WithBackend(b Backend) Option { return func(o *Options) { o.backend = b } }

// WithVSync enables presentation synchronization where supported.
func WithVSync(enabled bool) Option { return func(o *Options) { o.vsync = enabled } }

// WithMultisampling sets the MSAA sample count, 0 to disable.
func WithMultisampling(samples int) Option { return func(o *Options) { o.msaa = samples } }

// WithHardwareAcceleration sets the acceleration policy.
func WithHardwareAcceleration(a HardwareAcceleration) Option {
	return func(o *Options) { o.accel = a }
}

// WithTheme sets the preferred theme: "light", "dark" or "system".
func WithTheme(theme string) Option { return func(o *Options) { o.theme = theme } }

// WithAutosaveInterval overrides the 30 second autosave interval.
func WithAutosaveInterval(d time.Duration) Option {
	return func(o *Options) { o.autosave = d }
}

// WithRunAndReturn makes Run return to the caller on exit instead of
// terminating the process. The event loop is cached so a later Run in
// the same process works.
func WithRunAndReturn() Option { return func(o *Options) { o.runAndReturn = true } }

// WithPersistence controls whether state is saved across runs.
func WithPersistence(enabled bool) Option { return func(o *Options) { o.persist = enabled } }

// WithWindow replaces the main viewport builder.
func WithWindow(b viewport.Builder) Option { return func(o *Options) { o.main = b } }

// WithTransparent requests a transparent main window.
func WithTransparent() Option {
	return func(o *Options) { o.main.Transparent = true }
}

// WithDecorated controls main window decorations.
func WithDecorated(decorated bool) Option {
	return func(o *Options) { o.main.Decorations = decorated }
}

// WithLogger enables shell logging. Equivalent to SetLogger.
func WithLogger(l *slog.Logger) Option {
	return func(*Options) { SetLogger(l) }
}
