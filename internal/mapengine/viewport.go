package mapengine

import "math"

// Viewport is the camera state for one render pass. Center is interpreted in
// grid-cell units for square grids and in world pixels for hex maps; see
// Geometry.CenterOffset.
type Viewport struct {
	Zoom     float64 // > 0; 1 = native scale
	Center   Point
	Rotation float64 // northDirection, degrees clockwise
}

// Offset returns the screen-space translation that places the viewport centre
// at the middle of a canvasW x canvasH surface.
func (v Viewport) Offset(g Geometry, canvasW, canvasH float64) Point {
	c := g.CenterOffset(v.Center, v.Zoom)
	return Point{X: canvasW/2 - c.X, Y: canvasH/2 - c.Y}
}

// WorldToScreen converts a world point to screen space, including the canvas
// rotation about the canvas centre that the render pass applies on blit.
func (v Viewport) WorldToScreen(g Geometry, p Point, canvasW, canvasH float64) Point {
	off := v.Offset(g, canvasW, canvasH)
	s := WorldToScreen(p, off, v.Zoom)
	return rotateAbout(s, canvasW/2, canvasH/2, v.Rotation*math.Pi/180)
}

// ScreenToWorld inverts WorldToScreen: the inverse rotation is applied about
// the canvas centre before the offset math, matching the render pass.
func (v Viewport) ScreenToWorld(g Geometry, p Point, canvasW, canvasH float64) Point {
	p = rotateAbout(p, canvasW/2, canvasH/2, -v.Rotation*math.Pi/180)
	off := v.Offset(g, canvasW, canvasH)
	return ScreenToWorldPoint(p, off, v.Zoom)
}

// ScreenToCell converts a screen point straight to the cell under it.
func (v Viewport) ScreenToCell(g Geometry, p Point, canvasW, canvasH float64) Coord {
	return g.WorldToGrid(v.ScreenToWorld(g, p, canvasW, canvasH))
}

// rotateAbout rotates p by angle radians around (cx, cy).
func rotateAbout(p Point, cx, cy, angle float64) Point {
	if angle == 0 {
		return p
	}
	sin, cos := math.Sincos(angle)
	dx := p.X - cx
	dy := p.Y - cy
	return Point{
		X: cx + dx*cos - dy*sin,
		Y: cy + dx*sin + dy*cos,
	}
}

// VisibleCellRange computes the grid-cell range covered by the canvas for a
// square grid, padded by one cell. Used for per-frame culling; recomputed
// every frame so zoom and centre changes never leave a stale range.
func VisibleCellRange(g *GridGeometry, v Viewport, canvasW, canvasH float64) (min, max Coord) {
	corners := [4]Point{
		{X: 0, Y: 0},
		{X: canvasW, Y: 0},
		{X: 0, Y: canvasH},
		{X: canvasW, Y: canvasH},
	}
	first := true
	for _, sc := range corners {
		c := g.WorldToGrid(v.ScreenToWorld(g, sc, canvasW, canvasH))
		if first {
			min, max = c, c
			first = false
			continue
		}
		if c.X < min.X {
			min.X = c.X
		}
		if c.Y < min.Y {
			min.Y = c.Y
		}
		if c.X > max.X {
			max.X = c.X
		}
		if c.Y > max.Y {
			max.Y = c.Y
		}
	}
	min.X--
	min.Y--
	max.X++
	max.Y++
	return min, max
}
