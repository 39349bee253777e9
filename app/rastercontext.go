// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/gogpu/gg"

	"github.com/vektorui/shell/viewport"
)

// rasterSurface is the CPU backbuffer of one window.
type rasterSurface struct {
	dc   *gg.Context
	size image.Point
}

// rasterContext is the shared software rendering context. At most one
// surface is "current" at a time; painting a synchronous child makes
// its surface current and restores the parent's afterwards.
type rasterContext struct {
	log      *slog.Logger
	surfaces map[viewport.ID]*rasterSurface

	current    viewport.ID
	hasCurrent bool
}

func newRasterContext(log *slog.Logger, accel HardwareAcceleration) (*rasterContext, error) {
	switch accel {
	case AccelRequired:
		if gg.Accelerator() == nil {
			return nil, fmt.Errorf("%w: no accelerator registered, import github.com/gogpu/gg/gpu", ErrAccelerationUnavailable)
		}
	case AccelPreferred:
		if gg.Accelerator() == nil {
			log.Debug("no accelerator registered, using the software rasterizer")
		}
	case AccelOff:
		if gg.Accelerator() != nil {
			log.Warn("acceleration disabled but an accelerator is registered process-wide")
		}
	}
	return &rasterContext{
		log:      log,
		surfaces: make(map[viewport.ID]*rasterSurface),
	}, nil
}

// ensureSurface returns the surface for a viewport, creating or
// resizing it to match the window.
func (c *rasterContext) ensureSurface(id viewport.ID, size image.Point) (*rasterSurface, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("app: surface size %v for viewport %v", size, id)
	}
	s, ok := c.surfaces[id]
	if !ok {
		s = &rasterSurface{
			dc:   gg.NewContext(size.X, size.Y),
			size: size,
		}
		c.surfaces[id] = s
		return s, nil
	}
	if s.size != size {
		if err := s.dc.Resize(size.X, size.Y); err != nil {
			return nil, fmt.Errorf("app: resize surface for viewport %v: %w", id, err)
		}
		s.size = size
	}
	return s, nil
}

// makeCurrent marks a surface current, returning the previous
// currency so nested paints can restore it.
func (c *rasterContext) makeCurrent(id viewport.ID) (prev viewport.ID, hadPrev bool) {
	prev, hadPrev = c.current, c.hasCurrent
	if hadPrev && prev != id {
		c.log.Debug("switching current surface", "from", prev, "to", id)
	}
	c.current, c.hasCurrent = id, true
	return prev, hadPrev
}

// restore reinstates the currency captured by makeCurrent.
func (c *rasterContext) restore(prev viewport.ID, hadPrev bool) {
	c.current, c.hasCurrent = prev, hadPrev
}

func (c *rasterContext) releaseCurrent() {
	c.hasCurrent = false
}

func (c *rasterContext) dropSurface(id viewport.ID) {
	s, ok := c.surfaces[id]
	if !ok {
		return
	}
	if c.hasCurrent && c.current == id {
		c.releaseCurrent()
	}
	if err := s.dc.Close(); err != nil {
		c.log.Warn("closing surface failed", "viewport", id, "err", err)
	}
	delete(c.surfaces, id)
}

func (c *rasterContext) clean(live func(viewport.ID) bool) {
	for id := range c.surfaces {
		if !live(id) {
			c.dropSurface(id)
		}
	}
}

func (c *rasterContext) release() {
	for id := range c.surfaces {
		c.dropSurface(id)
	}
}
