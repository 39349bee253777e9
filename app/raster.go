// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"image"
	"image/color"
	"image/draw"
	"log/slog"

	"github.com/gogpu/gg"

	"github.com/vektorui/shell/platform"
	"github.com/vektorui/shell/ui"
	"github.com/vektorui/shell/viewport"
)

// newRasterShell builds the CPU backend: frames are rasterized with gg
// into a per-window backbuffer and blitted to the window.
func newRasterShell(o *Options, engine ui.Engine, creator ui.AppCreator) (Shell, error) {
	ctx, err := newRasterContext(Logger(), o.accel)
	if err != nil {
		return nil, err
	}
	p := &rasterPainter{
		log:   Logger(),
		ctx:   ctx,
		atlas: make(map[ui.TextureID]*image.RGBA),
	}
	return newBackendShell(o, engine, creator, p), nil
}

type rasterPainter struct {
	log   *slog.Logger
	ctx   *rasterContext
	atlas map[ui.TextureID]*image.RGBA
}

func (p *rasterPainter) attach(id viewport.ID, win platform.Window) error {
	size := win.InnerSize()
	if size.X <= 0 || size.Y <= 0 {
		// Minimized at creation; the surface is built on first paint.
		return nil
	}
	_, err := p.ctx.ensureSurface(id, size)
	return err
}

func (p *rasterPainter) detach(id viewport.ID) {
	p.ctx.dropSurface(id)
}

func (p *rasterPainter) paint(id viewport.ID, win platform.Window, clear color.NRGBA, shapes []ui.ClippedMesh, delta ui.TexturesDelta) error {
	size := win.InnerSize()
	if size.X <= 0 || size.Y <= 0 {
		return nil
	}
	prev, hadPrev := p.ctx.makeCurrent(id)
	defer p.ctx.restore(prev, hadPrev)

	surf, err := p.ctx.ensureSurface(id, size)
	if err != nil {
		return err
	}
	p.applyTextures(delta)
	if err := rasterize(surf.dc, clear, shapes, p.atlas); err != nil {
		return err
	}
	p.freeTextures(delta)

	img := surf.dc.Image()
	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(img.Bounds())
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	}
	return win.Present(rgba)
}

func (p *rasterPainter) clean(live func(viewport.ID) bool) {
	p.ctx.clean(live)
}

func (p *rasterPainter) release() {
	p.ctx.release()
	p.atlas = make(map[ui.TextureID]*image.RGBA)
}

// applyTextures folds the frame's texture changes into the atlas.
func (p *rasterPainter) applyTextures(delta ui.TexturesDelta) {
	for id, d := range delta.Set {
		if d.Image == nil {
			continue
		}
		if d.Pos == nil {
			dst := image.NewRGBA(d.Image.Bounds())
			draw.Draw(dst, dst.Bounds(), d.Image, d.Image.Bounds().Min, draw.Src)
			p.atlas[id] = dst
			continue
		}
		tex, ok := p.atlas[id]
		if !ok {
			p.log.Warn("partial update for unknown texture", "texture", id)
			continue
		}
		r := image.Rectangle{Min: *d.Pos, Max: d.Pos.Add(d.Image.Bounds().Size())}
		draw.Draw(tex, r, d.Image, d.Image.Bounds().Min, draw.Src)
	}
}

// freeTextures runs after painting so a frame can still use textures
// it frees.
func (p *rasterPainter) freeTextures(delta ui.TexturesDelta) {
	for _, id := range delta.Free {
		delete(p.atlas, id)
	}
}

// rasterize draws the frame's meshes. Triangles are flat shaded from
// their vertex colors, modulated by the texel at the UV centroid for
// textured meshes; per-pixel sampling is the GPU backend's job.
func rasterize(dc *gg.Context, clear color.NRGBA, shapes []ui.ClippedMesh, atlas map[ui.TextureID]*image.RGBA) error {
	dc.ClearWithColor(gg.FromColor(clear))
	for _, cm := range shapes {
		clip := cm.Clip
		if clip.Empty() {
			continue
		}
		dc.Push()
		dc.ClipRect(float64(clip.Min.X), float64(clip.Min.Y),
			float64(clip.Dx()), float64(clip.Dy()))
		tex := atlas[cm.Mesh.Texture]
		verts := cm.Mesh.Vertices
		idx := cm.Mesh.Indices
		for i := 0; i+2 < len(idx); i += 3 {
			v0, v1, v2 := verts[idx[i]], verts[idx[i+1]], verts[idx[i+2]]
			dc.ClearPath()
			dc.MoveTo(float64(v0.Pos[0]), float64(v0.Pos[1]))
			dc.LineTo(float64(v1.Pos[0]), float64(v1.Pos[1]))
			dc.LineTo(float64(v2.Pos[0]), float64(v2.Pos[1]))
			dc.ClosePath()
			dc.SetColor(triangleColor(v0, v1, v2, tex))
			if err := dc.Fill(); err != nil {
				dc.Pop()
				return err
			}
		}
		dc.Pop()
	}
	return nil
}

func triangleColor(v0, v1, v2 ui.Vertex, tex *image.RGBA) color.Color {
	col := color.NRGBA{
		R: avg3(v0.Color.R, v1.Color.R, v2.Color.R),
		G: avg3(v0.Color.G, v1.Color.G, v2.Color.G),
		B: avg3(v0.Color.B, v1.Color.B, v2.Color.B),
		A: avg3(v0.Color.A, v1.Color.A, v2.Color.A),
	}
	if tex == nil {
		return col
	}
	b := tex.Bounds()
	u := (v0.UV[0] + v1.UV[0] + v2.UV[0]) / 3
	v := (v0.UV[1] + v1.UV[1] + v2.UV[1]) / 3
	x := b.Min.X + int(u*float32(b.Dx()))
	y := b.Min.Y + int(v*float32(b.Dy()))
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return col
	}
	texel := tex.RGBAAt(x, y)
	return color.NRGBA{
		R: mul8(col.R, texel.R),
		G: mul8(col.G, texel.G),
		B: mul8(col.B, texel.B),
		A: mul8(col.A, texel.A),
	}
}

func avg3(a, b, c uint8) uint8 {
	return uint8((uint16(a) + uint16(b) + uint16(c)) / 3)
}

func mul8(a, b uint8) uint8 {
	return uint8(uint16(a) * uint16(b) / 255)
}
