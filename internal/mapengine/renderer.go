package mapengine

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Frame is one immutable render input snapshot.
type Frame struct {
	Map             *Map
	Geometry        Geometry
	View            Viewport
	ActiveLayer     int
	Selected        []Selection
	ResizeMode      bool
	ShowCoordinates bool
	Visibility      StageVisibility
}

// Config collects the renderer collaborators. Zero-value fields get working
// defaults; the blur strategy is fixed at construction time, not per frame.
type Config struct {
	Theme  *Theme
	Images *ImageCache
	Fonts  *FontLibrary
	Blur   BlurStrategy
}

// Renderer runs the full layered pipeline for one map against an ebiten
// surface. It is synchronous and re-entrant-safe: one call runs to
// completion, holds exclusive use of its buffers for the duration, and
// mutates nothing in the frame input.
type Renderer struct {
	theme  *Theme
	images *ImageCache
	fonts  *FontLibrary
	fog    *fogCompositor

	// Offscreen world buffer; the whole pass renders here and is blitted to
	// the screen through the viewport rotation. Re-allocated on resize.
	worldBuf *ebiten.Image
	// Ghost-layer buffer, composited at reduced opacity.
	ghostBuf *ebiten.Image
}

// NewRenderer creates a renderer with the given collaborators.
func NewRenderer(cfg Config) *Renderer {
	theme := cfg.Theme
	if theme == nil {
		theme = DefaultTheme()
	}
	images := cfg.Images
	if images == nil {
		images = NewImageCache()
	}
	return &Renderer{
		theme:  theme,
		images: images,
		fonts:  cfg.Fonts,
		fog:    newFogCompositor(cfg.Blur),
	}
}

// Render executes the pipeline: clear, background, grid, ghost layer, active
// layer content, objects, labels, fog, selection overlays, rotation blit.
// Missing surface, geometry, or map data makes the call a no-op.
func (r *Renderer) Render(screen *ebiten.Image, f Frame) {
	if screen == nil || f.Map == nil || f.Geometry == nil || f.View.Zoom <= 0 {
		return
	}
	layer := f.Map.LayerAt(f.ActiveLayer)
	if layer == nil {
		return
	}

	b := screen.Bounds()
	w := float64(b.Dx())
	h := float64(b.Dy())
	r.ensureBuffers(b.Dx(), b.Dy())

	// Known-good state every frame: the buffers are fully cleared, and each
	// stage below builds its own draw options from scratch. Long-lived
	// contexts have silently retained corrupted state on some platforms, so
	// this reset stays even where it looks redundant.
	r.worldBuf.Clear()
	r.worldBuf.Fill(r.theme.Background)

	fc := &frameContext{
		dst:    r.worldBuf,
		frame:  f,
		geom:   f.Geometry,
		view:   f.View,
		offset: f.View.Offset(f.Geometry, w, h),
		zoom:   f.View.Zoom,
		w:      w,
		h:      h,
	}

	if f.Visibility.Background {
		r.drawBackground(fc)
	}
	if f.Visibility.GridLines {
		r.drawGridLines(fc, fc.dst)
	}

	// Ghost layer: the layer below the active one, drawn with the same
	// content, object, and label stages as the active layer, composited at
	// reduced opacity. Never interactive, never fogged.
	if below := ghostSource(f.Map, f.ActiveLayer); below != nil {
		r.ghostBuf.Clear()
		ghost := fc.withDst(r.ghostBuf)
		r.drawLayerStages(ghost, below)
		opts := &ebiten.DrawImageOptions{}
		opts.ColorScale.ScaleAlpha(float32(layer.GhostOpacity()))
		r.worldBuf.DrawImage(r.ghostBuf, opts)
	}

	r.drawLayerStages(fc, layer)

	if f.ShowCoordinates {
		r.drawCoordinates(fc)
	}

	// Fog: the compositor clears its own buffers on every frame it runs and
	// is skipped entirely when inactive, so a stale blurred pass can never
	// leak into a fog-disabled frame.
	if f.Visibility.Fog && layer.Fog.Enabled {
		r.fog.render(fc, layer.Fog.Cells, f.Map.FogStyle, r.images, r.theme)
	}

	r.drawSelections(fc, layer)

	// Rotation is applied around the canvas centre across the whole pass,
	// never baked into the offset math. The screen is filled first so the
	// corners a rotated blit cannot cover stay in the background colour.
	screen.Fill(r.theme.Background)
	blit := &ebiten.DrawImageOptions{}
	if f.View.Rotation != 0 {
		blit.GeoM.Translate(-w/2, -h/2)
		blit.GeoM.Rotate(f.View.Rotation * math.Pi / 180)
		blit.GeoM.Translate(w/2, h/2)
	}
	screen.DrawImage(r.worldBuf, blit)
}

// ghostSource returns the layer to composite beneath the active one at
// reduced opacity, or nil when the active layer does not show it or none
// exists below.
func ghostSource(m *Map, active int) *Layer {
	layer := m.LayerAt(active)
	if layer == nil || !layer.ShowLayerBelow {
		return nil
	}
	return m.LayerAt(active - 1)
}

// drawLayerStages renders one layer's content, object, and label stages.
// The active layer and the ghost layer go through the same path so the
// two can never disagree on which stages a layer contributes.
func (r *Renderer) drawLayerStages(fc *frameContext, layer *Layer) {
	r.drawLayerContent(fc, layer)
	if fc.frame.Visibility.Objects {
		r.drawObjects(fc, layer)
	}
	if fc.frame.Visibility.Labels {
		r.drawLabels(fc, layer)
	}
}

// drawLayerContent renders one layer's cell/curve/edge stages in z-order.
func (r *Renderer) drawLayerContent(fc *frameContext, layer *Layer) {
	if fc.frame.Visibility.Cells {
		r.drawSimpleCells(fc, layer)
		r.drawSegmentCells(fc, layer)
		r.drawInteriorGridLines(fc, layer)
		r.drawCellBorders(fc, layer)
	}
	if fc.frame.Visibility.Curves {
		r.drawCurves(fc, layer)
	}
	if fc.frame.Visibility.Edges {
		r.drawPaintedEdges(fc, layer)
	}
}

// ensureBuffers re-allocates the offscreen buffers when the canvas size
// changes.
func (r *Renderer) ensureBuffers(w, h int) {
	if w <= 0 || h <= 0 {
		w, h = 1, 1
	}
	if r.worldBuf == nil || r.worldBuf.Bounds().Dx() != w || r.worldBuf.Bounds().Dy() != h {
		r.worldBuf = ebiten.NewImage(w, h)
		r.ghostBuf = ebiten.NewImage(w, h)
		r.fog.resize(w, h)
	}
}

// frameContext carries the per-frame derived values every stage needs.
// The offset is recomputed each frame; nothing here survives a frame.
type frameContext struct {
	dst    *ebiten.Image
	frame  Frame
	geom   Geometry
	view   Viewport
	offset Point
	zoom   float64
	w, h   float64
}

// withDst returns a copy of the context aimed at another surface.
func (fc *frameContext) withDst(dst *ebiten.Image) *frameContext {
	out := *fc
	out.dst = dst
	return &out
}

// toScreen converts a world point into the context's screen space.
func (fc *frameContext) toScreen(p Point) Point {
	return WorldToScreen(p, fc.offset, fc.zoom)
}

// visibleCells enumerates the cells the current viewport can see: the culled
// cell range for grids, the configured bounds for bounded hex maps, and a
// viewport-rectangle sweep for unbounded hex maps.
func (fc *frameContext) visibleCells() []Coord {
	min, max, ok := fc.geom.VisibleOffsetRange(fc.view, fc.w, fc.h)
	if ok {
		out := make([]Coord, 0, (max.Col-min.Col+1)*(max.Row-min.Row+1))
		for row := min.Row; row <= max.Row; row++ {
			for col := min.Col; col <= max.Col; col++ {
				c := fc.geom.FromOffset(Offset{Col: col, Row: row})
				if fc.geom.InBounds(c) {
					out = append(out, c)
				}
			}
		}
		return out
	}
	// No finite range: sweep the world-space bounding box of the (possibly
	// rotated) viewport.
	corners := [4]Point{{}, {X: fc.w}, {Y: fc.h}, {X: fc.w, Y: fc.h}}
	minPt := fc.view.ScreenToWorld(fc.geom, corners[0], fc.w, fc.h)
	maxPt := minPt
	for _, sc := range corners[1:] {
		p := fc.view.ScreenToWorld(fc.geom, sc, fc.w, fc.h)
		minPt.X = math.Min(minPt.X, p.X)
		minPt.Y = math.Min(minPt.Y, p.Y)
		maxPt.X = math.Max(maxPt.X, p.X)
		maxPt.Y = math.Max(maxPt.Y, p.Y)
	}
	return fc.geom.CellsInRect(minPt, maxPt)
}
