package mapengine

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// screenRect is an axis-aligned rectangle in screen pixels.
type screenRect struct {
	X, Y, W, H float64
}

func (r screenRect) center() Point { return Point{X: r.X + r.W/2, Y: r.Y + r.H/2} }

// countCellOccupants counts objects per coordinate, needed for hex slot
// layout. Computed once per frame.
func countCellOccupants(objects []MapObject) map[Coord]int {
	counts := make(map[Coord]int, len(objects))
	for _, o := range objects {
		counts[o.Pos]++
	}
	return counts
}

// alignmentOffset shifts an edge-snapped grid object within its covered area.
// The offset is a fraction of the uncovered span along the aligned axis.
func alignmentOffset(align Alignment, spanW, spanH, objW, objH float64) Point {
	freeW := spanW - objW
	freeH := spanH - objH
	switch align {
	case AlignNorth:
		return Point{X: freeW / 2, Y: 0}
	case AlignSouth:
		return Point{X: freeW / 2, Y: freeH}
	case AlignEast:
		return Point{X: freeW, Y: freeH / 2}
	case AlignWest:
		return Point{X: 0, Y: freeH / 2}
	default:
		return Point{X: freeW / 2, Y: freeH / 2}
	}
}

// objectScreenRect resolves an object's on-screen rectangle. Hex objects are
// centre-anchored with a slot offset when co-occupying; grid objects are
// top-left anchored with an alignment offset inside their covered cells.
func objectScreenRect(fc *frameContext, o MapObject, occupants int) screenRect {
	extent := fc.geom.CellExtent() * fc.zoom
	scale := o.EffectiveScale() * fc.geom.MultiObjectScale(occupants)
	w := o.Width * extent * scale
	h := o.Height * extent * scale
	if w <= 0 {
		w = extent * scale
	}
	if h <= 0 {
		h = extent * scale
	}

	if fc.geom.Kind() == KindHex {
		center := fc.geom.CellCenter(o.Pos).Add(fc.geom.SlotOffset(o.Slot, occupants))
		s := fc.toScreen(center)
		return screenRect{X: s.X - w/2, Y: s.Y - h/2, W: w, H: h}
	}

	tl := fc.toScreen(fc.geom.GridToWorld(o.Pos))
	spanW := math.Ceil(math.Max(o.Width, 1)) * extent
	spanH := math.Ceil(math.Max(o.Height, 1)) * extent
	off := alignmentOffset(o.Align, spanW, spanH, w, h)
	return screenRect{X: tl.X + off.X, Y: tl.Y + off.Y, W: w, H: h}
}

// objectCoveredCells returns the coordinates an object occupies: the cells
// under its footprint for grids, its own hex otherwise.
func objectCoveredCells(g Geometry, o MapObject) []Coord {
	if g.Kind() == KindHex {
		return []Coord{o.Pos}
	}
	cols := int(math.Ceil(math.Max(o.Width, 1)))
	rows := int(math.Ceil(math.Max(o.Height, 1)))
	out := make([]Coord, 0, cols*rows)
	for dy := 0; dy < rows; dy++ {
		for dx := 0; dx < cols; dx++ {
			out = append(out, Coord{X: o.Pos.X + dx, Y: o.Pos.Y + dy})
		}
	}
	return out
}

// objectHiddenByFog reports whether any covered cell is fogged; such objects
// are skipped entirely rather than peeking through the overlay.
func objectHiddenByFog(g Geometry, layer *Layer, o MapObject) bool {
	if !layer.Fog.Enabled {
		return false
	}
	for _, c := range objectCoveredCells(g, o) {
		if layer.Fog.Cells.ContainsCoord(g, c) {
			return true
		}
	}
	return false
}

// drawObjects renders placed objects: icon (or placeholder glyph) with an
// outline, at the slot/alignment-resolved position, then the corner badges.
func (r *Renderer) drawObjects(fc *frameContext, layer *Layer) {
	occupants := countCellOccupants(layer.Objects)
	margin := fc.geom.CellExtent() * fc.zoom * 2

	for _, o := range layer.Objects {
		if !fc.geom.InBounds(o.Pos) {
			continue
		}
		if objectHiddenByFog(fc.geom, layer, o) {
			continue
		}
		rect := objectScreenRect(fc, o, occupants[o.Pos])
		if !fc.onScreen(rect.center(), margin) {
			continue
		}

		if img := r.images.Get(o.Icon); img != nil {
			r.drawObjectImage(fc, img, o, rect)
		} else {
			r.drawObjectGlyph(fc, o, rect)
		}
		r.drawObjectBadges(fc, o, rect)
	}
}

// drawObjectImage blits an icon into its rect, honouring object rotation
// about the rect centre.
func (r *Renderer) drawObjectImage(fc *frameContext, img *ebiten.Image, o MapObject, rect screenRect) {
	iw := float64(img.Bounds().Dx())
	ih := float64(img.Bounds().Dy())
	if iw <= 0 || ih <= 0 {
		return
	}
	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(rect.W/iw, rect.H/ih)
	opts.GeoM.Translate(-rect.W/2, -rect.H/2)
	if o.Rotation != 0 {
		opts.GeoM.Rotate(o.Rotation * math.Pi / 180)
	}
	c := rect.center()
	opts.GeoM.Translate(c.X, c.Y)
	opts.Filter = ebiten.FilterLinear
	fc.dst.DrawImage(img, opts)
}

// drawObjectGlyph draws the placeholder token: outline stroke first, then
// fill, so the glyph stays readable on any cell colour.
func (r *Renderer) drawObjectGlyph(fc *frameContext, o MapObject, rect screenRect) {
	c := rect.center()
	radius := float32(math.Min(rect.W, rect.H) / 2 * 0.85)
	if radius < 1 {
		return
	}
	fill := o.Color
	if fill.A == 0 {
		fill = color.RGBA{R: 196, G: 178, B: 140, A: 255}
	}
	vector.StrokeCircle(fc.dst, float32(c.X), float32(c.Y), radius,
		radius*0.22, r.theme.TextOutline, true)
	vector.FillCircle(fc.dst, float32(c.X), float32(c.Y), radius*0.9, fill, true)
}

// drawObjectBadges draws the small corner indicators: note (top-left),
// tooltip (top-right), linked object (bottom-right).
func (r *Renderer) drawObjectBadges(fc *frameContext, o MapObject, rect screenRect) {
	size := math.Max(3, math.Min(rect.W, rect.H)*0.16)
	badge := func(x, y float64, col color.RGBA) {
		vector.StrokeCircle(fc.dst, float32(x), float32(y), float32(size),
			1, r.theme.TextOutline, true)
		vector.FillCircle(fc.dst, float32(x), float32(y), float32(size*0.8), col, true)
	}
	if o.HasNote {
		badge(rect.X, rect.Y, color.RGBA{R: 240, G: 200, B: 60, A: 255})
	}
	if o.HasTooltip {
		badge(rect.X+rect.W, rect.Y, color.RGBA{R: 90, G: 170, B: 240, A: 255})
	}
	if o.LinkedTo != "" {
		badge(rect.X+rect.W, rect.Y+rect.H, color.RGBA{R: 140, G: 220, B: 120, A: 255})
	}
}

// drawSelections draws dashed bounding boxes and corner handles around the
// selected objects and labels. Handles grow when a single object is being
// resized.
func (r *Renderer) drawSelections(fc *frameContext, layer *Layer) {
	if len(fc.frame.Selected) == 0 {
		return
	}
	th := r.theme
	occupants := countCellOccupants(layer.Objects)

	selected := make(map[Selection]struct{}, len(fc.frame.Selected))
	for _, s := range fc.frame.Selected {
		selected[s] = struct{}{}
	}

	handle := th.HandleSize
	if fc.frame.ResizeMode && len(fc.frame.Selected) == 1 {
		handle *= th.ResizeHandleMul
	}

	for _, o := range layer.Objects {
		if _, ok := selected[Selection{Kind: SelectObject, ID: o.ID}]; !ok {
			continue
		}
		rect := objectScreenRect(fc, o, occupants[o.Pos])
		r.drawSelectionBox(fc, rect, handle)
	}
	for _, l := range layer.Labels {
		if _, ok := selected[Selection{Kind: SelectLabel, ID: l.ID}]; !ok {
			continue
		}
		rect := r.labelScreenRect(fc, l)
		r.drawSelectionBox(fc, rect, handle)
	}
}

// drawSelectionBox strokes a dashed rectangle with filled corner handles.
func (r *Renderer) drawSelectionBox(fc *frameContext, rect screenRect, handle float64) {
	th := r.theme
	pad := 3.0
	x0 := rect.X - pad
	y0 := rect.Y - pad
	x1 := rect.X + rect.W + pad
	y1 := rect.Y + rect.H + pad

	dashedLine(fc.dst, x0, y0, x1, y0, th.SelectionWidth, th.Selection)
	dashedLine(fc.dst, x1, y0, x1, y1, th.SelectionWidth, th.Selection)
	dashedLine(fc.dst, x1, y1, x0, y1, th.SelectionWidth, th.Selection)
	dashedLine(fc.dst, x0, y1, x0, y0, th.SelectionWidth, th.Selection)

	half := float32(handle / 2)
	for _, corner := range [4]Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}} {
		vector.FillRect(fc.dst, float32(corner.X)-half, float32(corner.Y)-half,
			half*2, half*2, th.Handle, false)
		vector.StrokeRect(fc.dst, float32(corner.X)-half, float32(corner.Y)-half,
			half*2, half*2, 1, th.TextOutline, false)
	}
}

// dashedLine strokes a dashed segment from (x0,y0) to (x1,y1).
func dashedLine(dst *ebiten.Image, x0, y0, x1, y1, width float64, col color.RGBA) {
	dx := x1 - x0
	dy := y1 - y0
	total := math.Hypot(dx, dy)
	if total < 1 {
		return
	}
	const dashLen = 6.0
	const gapLen = 4.0
	nx := dx / total
	ny := dy / total
	for drawn := 0.0; drawn < total; drawn += dashLen + gapLen {
		end := math.Min(drawn+dashLen, total)
		vector.StrokeLine(dst,
			float32(x0+nx*drawn), float32(y0+ny*drawn),
			float32(x0+nx*end), float32(y0+ny*end),
			float32(width), col, false)
	}
}
