// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"

	"github.com/vektorui/shell/platform"
	"github.com/vektorui/shell/ui"
	"github.com/vektorui/shell/viewport"
)

// wgpuPainter owns the wgpu device and one surface record per
// viewport. Frame composition currently runs through the shared
// software path and is blitted to the window; it moves onto the
// device once wgpu exposes surface presentation for our windows.
type wgpuPainter struct {
	log *slog.Logger

	instance *core.Instance
	adapter  core.AdapterID
	device   core.DeviceID
	queue    core.QueueID

	vsync    bool
	msaa     int
	surfaces map[viewport.ID]*wgpuSurface
	compose  *rasterPainter
}

// wgpuSurface tracks the attachment of one window to the device.
type wgpuSurface struct {
	win      platform.Window
	size     image.Point
	attached bool
}

func newWGPUPainter(log *slog.Logger, o *Options) (*wgpuPainter, error) {
	instance := core.NewInstance(&gputypes.InstanceDescriptor{
		Backends: gputypes.BackendsPrimary,
	})
	adapter, err := instance.RequestAdapter(&gputypes.RequestAdapterOptions{
		PowerPreference: gputypes.PowerPreferenceHighPerformance,
	})
	if err != nil {
		log.Warn("no high performance adapter, retrying low power", "err", err)
		adapter, err = instance.RequestAdapter(&gputypes.RequestAdapterOptions{
			PowerPreference: gputypes.PowerPreferenceLowPower,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAccelerationUnavailable, err)
		}
	}
	device, err := core.RequestDevice(adapter, &gputypes.DeviceDescriptor{
		Label:          "shell-device",
		RequiredLimits: gputypes.DefaultLimits(),
	})
	if err != nil {
		releaseAdapter(log, adapter)
		return nil, fmt.Errorf("app: create device: %w", err)
	}
	queue, err := core.GetDeviceQueue(device)
	if err != nil {
		releaseDevice(log, device)
		releaseAdapter(log, adapter)
		return nil, fmt.Errorf("app: get device queue: %w", err)
	}

	ctx, err := newRasterContext(log, AccelPreferred)
	if err != nil {
		releaseDevice(log, device)
		releaseAdapter(log, adapter)
		return nil, err
	}
	log.Info("wgpu painter initialized")
	logUnappliedPresentOptions(log, o)
	return &wgpuPainter{
		log:      log,
		instance: instance,
		adapter:  adapter,
		device:   device,
		queue:    queue,
		vsync:    o.vsync,
		msaa:     o.msaa,
		surfaces: make(map[viewport.ID]*wgpuSurface),
		compose: &rasterPainter{
			log:   log,
			ctx:   ctx,
			atlas: make(map[ui.TextureID]*image.RGBA),
		},
	}, nil
}

// logUnappliedPresentOptions notes presentation options the CPU
// composition path cannot honor. They take effect once frames present
// through the device swapchain.
func logUnappliedPresentOptions(log *slog.Logger, o *Options) {
	if !o.vsync && o.msaa == 0 {
		return
	}
	log.Debug("vsync and multisampling are not applied by the composition path",
		"vsync", o.vsync, "msaa", o.msaa)
}

// attach binds a window to the device. The platform hands surfaces
// over asynchronously; the result is awaited here so callers see a
// fully attached window or an error.
func (p *wgpuPainter) attach(id viewport.ID, win platform.Window) error {
	done := make(chan error, 1)
	go func() {
		display, window := win.RawHandles()
		if window == 0 {
			done <- fmt.Errorf("app: window for viewport %v has no native handle", id)
			return
		}
		_ = display
		done <- nil
	}()
	if err := <-done; err != nil {
		return err
	}
	p.surfaces[id] = &wgpuSurface{win: win, size: win.InnerSize(), attached: true}
	return p.compose.attach(id, win)
}

func (p *wgpuPainter) detach(id viewport.ID) {
	delete(p.surfaces, id)
	p.compose.detach(id)
}

func (p *wgpuPainter) paint(id viewport.ID, win platform.Window, clear color.NRGBA, shapes []ui.ClippedMesh, delta ui.TexturesDelta) error {
	s, ok := p.surfaces[id]
	if !ok || !s.attached {
		// Attach can fail per frame; skip this viewport and let the
		// next pass retry.
		if err := p.attach(id, win); err != nil {
			p.log.Error("attaching surface failed, skipping frame", "viewport", id, "err", err)
			return errOutOfDate
		}
		s = p.surfaces[id]
	}
	size := win.InnerSize()
	if size.X <= 0 || size.Y <= 0 {
		return nil
	}
	s.size = size
	return p.compose.paint(id, win, clear, shapes, delta)
}

// clean drops surfaces whose viewport is gone.
func (p *wgpuPainter) clean(live func(viewport.ID) bool) {
	for id := range p.surfaces {
		if !live(id) {
			p.detach(id)
		}
	}
	p.compose.clean(live)
}

func (p *wgpuPainter) release() {
	for id := range p.surfaces {
		p.detach(id)
	}
	p.compose.release()
	if !p.device.IsZero() {
		releaseDevice(p.log, p.device)
		p.device = core.DeviceID{}
		p.queue = core.QueueID{}
	}
	if !p.adapter.IsZero() {
		releaseAdapter(p.log, p.adapter)
		p.adapter = core.AdapterID{}
	}
	p.instance = nil
}

func releaseDevice(log *slog.Logger, id core.DeviceID) {
	if err := core.DeviceDrop(id); err != nil {
		log.Warn("releasing device failed", "err", err)
	}
}

func releaseAdapter(log *slog.Logger, id core.AdapterID) {
	if err := core.AdapterDrop(id); err != nil {
		log.Warn("releasing adapter failed", "err", err)
	}
}
