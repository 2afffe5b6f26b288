package mapengine

import (
	"fmt"
	"image/color"
	"math"

	text "github.com/hajimehoshi/ebiten/v2/text/v2"
)

// drawLabels renders world-space text labels with their own rotation.
// Each label is stroked (offset outline draws) then filled, so text stays
// legible over any cell colour.
func (r *Renderer) drawLabels(fc *frameContext, layer *Layer) {
	if r.fonts == nil {
		return
	}
	for _, l := range layer.Labels {
		if l.Content == "" {
			continue
		}
		pos := fc.toScreen(l.Pos)
		if !fc.onScreen(pos, 400) {
			continue
		}
		face := r.fonts.Face(l.FontFace, l.FontSize*fc.zoom)

		draw := func(dx, dy float64, col color.RGBA) {
			opts := &text.DrawOptions{}
			if l.Rotation != 0 {
				opts.GeoM.Rotate(l.Rotation * math.Pi / 180)
			}
			opts.GeoM.Translate(pos.X+dx, pos.Y+dy)
			opts.ColorScale.ScaleWithColor(col)
			text.Draw(fc.dst, l.Content, face, opts)
		}

		// Outline: four cardinal one-pixel offsets, then the fill on top.
		for _, d := range [4]Point{{X: -1}, {X: 1}, {Y: -1}, {Y: 1}} {
			draw(d.X, d.Y, r.theme.TextOutline)
		}
		draw(0, 0, l.Color)
	}
}

// labelScreenRect measures a label's on-screen bounding box, ignoring
// rotation (selection boxes stay axis-aligned).
func (r *Renderer) labelScreenRect(fc *frameContext, l TextLabel) screenRect {
	pos := fc.toScreen(l.Pos)
	if r.fonts == nil {
		return screenRect{X: pos.X, Y: pos.Y, W: 10, H: 10}
	}
	face := r.fonts.Face(l.FontFace, l.FontSize*fc.zoom)
	w, h := text.Measure(l.Content, face, face.Size*1.2)
	return screenRect{X: pos.X, Y: pos.Y, W: w, H: h}
}

// drawCoordinates overlays each visible cell with its offset coordinate,
// small and unobtrusive, for the show-coordinates toggle.
func (r *Renderer) drawCoordinates(fc *frameContext) {
	if r.fonts == nil {
		return
	}
	size := 9 * fc.zoom
	if size < 5 {
		return // unreadable below this, skip instead of smearing
	}
	face := r.fonts.Face("mono", size)
	for _, c := range fc.visibleCells() {
		center := fc.toScreen(fc.geom.CellCenter(c))
		if !fc.onScreen(center, 40) {
			continue
		}
		o := fc.geom.ToOffset(c)
		s := fmt.Sprintf("%d,%d", o.Col, o.Row)
		w, h := text.Measure(s, face, face.Size)
		opts := &text.DrawOptions{}
		opts.GeoM.Translate(center.X-w/2, center.Y-h/2)
		opts.ColorScale.ScaleWithColor(r.theme.Coordinate)
		text.Draw(fc.dst, s, face, opts)
	}
}
