package mapengine

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// fogBlurPasses is the number of soft-edge expansion passes over edge cells.
const fogBlurPasses = 8

// BlurStrategy composites the accumulated fog mask onto the destination.
// The strategy is chosen at renderer construction: direct-context blur
// filters are unstable on some platforms, so the softening indirection is a
// configuration decision, not a per-frame one.
type BlurStrategy interface {
	// Composite draws mask onto dst with the given tint and opacity.
	Composite(dst, mask *ebiten.Image, tint color.RGBA, opacity, blurFactor float64)
}

// OffscreenTapBlur softens the mask by compositing it several times at small
// ring offsets, the offscreen-surface analogue of an element-level blur
// filter. Radius is the base offset in pixels, scaled by the fog blur factor.
type OffscreenTapBlur struct {
	Radius float64
}

// Composite draws the mask at the centre and at eight ring offsets. Per-tap
// alpha is derived so the fully overlapped interior still reaches the target
// opacity while partially covered edges fade.
func (b OffscreenTapBlur) Composite(dst, mask *ebiten.Image, tint color.RGBA, opacity, blurFactor float64) {
	radius := b.Radius
	if radius <= 0 {
		radius = 2
	}
	if blurFactor > 0 {
		radius *= blurFactor
	}
	const taps = 9
	alpha := tapAlpha(opacity, taps)
	for i := 0; i < taps; i++ {
		opts := &ebiten.DrawImageOptions{}
		if i > 0 {
			a := float64(i-1) * 2 * math.Pi / (taps - 1)
			opts.GeoM.Translate(radius*math.Cos(a), radius*math.Sin(a))
		}
		opts.ColorScale.ScaleWithColor(tint)
		opts.ColorScale.ScaleAlpha(float32(alpha))
		dst.DrawImage(mask, opts)
	}
}

// tapAlpha returns the per-draw alpha so that n overlapping alpha-blended
// draws accumulate to the target coverage.
func tapAlpha(target float64, n int) float64 {
	if n <= 1 || target >= 1 {
		return target
	}
	return 1 - math.Pow(1-target, 1/float64(n))
}

// DirectComposite blits the mask once with no softening beyond the expansion
// passes themselves. The fallback tier when offscreen softening is
// unavailable.
type DirectComposite struct{}

// Composite draws the mask once at the target opacity.
func (DirectComposite) Composite(dst, mask *ebiten.Image, tint color.RGBA, opacity, _ float64) {
	opts := &ebiten.DrawImageOptions{}
	opts.ColorScale.ScaleWithColor(tint)
	opts.ColorScale.ScaleAlpha(float32(opacity))
	dst.DrawImage(mask, opts)
}

// fogPass describes one expansion pass: an outward vertex scale and the
// mask alpha to draw at.
type fogPass struct {
	expand float64
	alpha  float64
}

// fogPassSchedule builds the blur pass ramp: the first pass reaches furthest
// out at the lowest alpha, later passes shrink toward the true cell outline
// while the alpha climbs from 0.50 to 0.80 of base. The gradient is built
// entirely from repeated solid fills; no per-pixel blur is computed here.
func fogPassSchedule(passes int, blurFactor float64) []fogPass {
	if passes <= 0 {
		return nil
	}
	if blurFactor <= 0 {
		blurFactor = 1
	}
	maxExpand := 0.30 * blurFactor
	out := make([]fogPass, passes)
	for i := 0; i < passes; i++ {
		t := 0.0
		if passes > 1 {
			t = float64(i) / float64(passes-1)
		}
		out[i] = fogPass{
			expand: 1 + maxExpand*(1-t),
			alpha:  0.50 + 0.30*t,
		}
	}
	return out
}

// resolveFogFill picks the mask fill tier: the loaded tiling pattern when
// configured and ready, the flat colour otherwise. Opacity is never baked in
// here; pattern and solid paths share the single composite alpha.
func resolveFogFill(style FogStyle, images *ImageCache) (pattern *ebiten.Image, tint color.RGBA) {
	if style.ImagePath != "" {
		if img := images.Get(style.ImagePath); img != nil {
			return img, color.RGBA{R: 255, G: 255, B: 255, A: 255}
		}
	}
	c := style.Color
	if c.A == 0 {
		c = color.RGBA{R: 16, G: 16, B: 20, A: 255}
	}
	return nil, c
}

// fogCompositor renders the occlusion overlay for one layer.
type fogCompositor struct {
	strategy BlurStrategy
	mask     *ebiten.Image
}

func newFogCompositor(strategy BlurStrategy) *fogCompositor {
	if strategy == nil {
		strategy = DirectComposite{}
	}
	return &fogCompositor{strategy: strategy}
}

// resize re-allocates the mask to match the canvas.
func (f *fogCompositor) resize(w, h int) {
	if w <= 0 || h <= 0 {
		w, h = 1, 1
	}
	f.mask = ebiten.NewImage(w, h)
}

// render runs the fog algorithm: visible-range partition, optional soft-edge
// passes over edge cells, a guaranteed solid final pass over every visible
// fogged cell, pattern resolution, composite, and interior separators.
func (f *fogCompositor) render(fc *frameContext, cells FogSet, style FogStyle, images *ImageCache, th *Theme) {
	if len(cells) == 0 || f.mask == nil {
		return
	}
	visible := VisibleFogOffsets(fc.geom, fc.view, fc.w, fc.h, cells)
	all, edge := cells.Partition(fc.geom, visible)
	if len(all) == 0 {
		return
	}

	// The mask is fully overwritten every frame it is used; a stale blurred
	// mask must never survive into a later composite.
	f.mask.Clear()

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	if style.Blur {
		for _, pass := range fogPassSchedule(fogBlurPasses, style.BlurFactor) {
			var path vector.Path
			for _, o := range edge {
				c := fc.geom.FromOffset(o)
				poly := expandPolygon(fc.geom.CellPolygon(c), fc.geom.CellCenter(c), pass.expand)
				fc.appendPolygon(&path, poly)
			}
			fillPath(f.mask, &path, white, pass.alpha)
		}
	}

	// Final solid pass: cell interiors are fully and uniformly occluded no
	// matter what the expansion passes approximated.
	var solid vector.Path
	for _, o := range all {
		c := fc.geom.FromOffset(o)
		fc.appendPolygon(&solid, fc.geom.CellPolygon(c))
	}
	fillPath(f.mask, &solid, white, 1)

	pattern, tint := resolveFogFill(style, images)
	if pattern != nil {
		f.applyPattern(pattern)
	}

	f.strategy.Composite(fc.dst, f.mask, tint, style.EffectiveOpacity(), style.BlurFactor)

	f.drawSeparators(fc, cells, all, style, th)
}

// applyPattern replaces the mask's colour with the tiling pattern while
// keeping the mask's alpha, via a source-in blend of tiled pattern draws.
func (f *fogCompositor) applyPattern(pattern *ebiten.Image) {
	pw := pattern.Bounds().Dx()
	ph := pattern.Bounds().Dy()
	if pw <= 0 || ph <= 0 {
		return
	}
	mw := f.mask.Bounds().Dx()
	mh := f.mask.Bounds().Dy()
	for y := 0; y < mh; y += ph {
		for x := 0; x < mw; x += pw {
			opts := &ebiten.DrawImageOptions{}
			opts.GeoM.Translate(float64(x), float64(y))
			opts.Blend = ebiten.BlendSourceIn
			f.mask.DrawImage(pattern, opts)
		}
	}
}

// drawSeparators strokes subtle lines along boundaries between adjacent
// fogged cells so a contiguous region reads as individual cells. Each shared
// boundary is drawn once via canonical pair ordering.
func (f *fogCompositor) drawSeparators(fc *frameContext, cells FogSet, visible []Offset, style FogStyle, th *Theme) {
	var path vector.Path
	for _, o := range visible {
		c := fc.geom.FromOffset(o)
		for _, n := range fc.geom.Neighbors(c) {
			no := fc.geom.ToOffset(n)
			if !cells.Contains(no) {
				continue
			}
			if no.Col < o.Col || (no.Col == o.Col && no.Row <= o.Row) {
				continue // drawn from the other cell
			}
			a, b := sharedEdge(fc.geom, c, n)
			sa := fc.toScreen(a)
			sb := fc.toScreen(b)
			path.MoveTo(float32(sa.X), float32(sa.Y))
			path.LineTo(float32(sb.X), float32(sb.Y))
		}
	}
	sep := th.FogSeparator
	strokePath(fc.dst, &path, sep, separatorWidth(fc.zoom), style.EffectiveOpacity())
}

// separatorWidth scales the separator stroke with zoom so the lines keep
// their proportion to cell size, with a one-pixel floor when zoomed out.
func separatorWidth(zoom float64) float64 {
	if zoom < 1 {
		return 1
	}
	return zoom
}

// expandPolygon scales polygon vertices outward from the centre.
func expandPolygon(poly []Point, center Point, factor float64) []Point {
	out := make([]Point, len(poly))
	for i, p := range poly {
		out[i] = Point{
			X: center.X + (p.X-center.X)*factor,
			Y: center.Y + (p.Y-center.Y)*factor,
		}
	}
	return out
}
