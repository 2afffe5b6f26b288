package mapengine

import (
	"math"
	"testing"
)

func almostEqualPoint(a, b Point) bool {
	return almostEqual(a.X, b.X) && almostEqual(a.Y, b.Y)
}

func TestViewport_OffsetSymmetry(t *testing.T) {
	v := Viewport{Zoom: 1, Center: Point{}}
	for _, g := range []Geometry{
		NewGridGeometry(32),
		NewHexGeometry(24, OrientationFlat, nil),
	} {
		got := v.Offset(g, 800, 600)
		if !almostEqualPoint(got, Point{X: 400, Y: 300}) {
			t.Fatalf("%v: offset %+v, want (400, 300)", g.Kind(), got)
		}
	}
}

func TestViewport_CenterLandsMidCanvas(t *testing.T) {
	// The viewport centre must map to the middle of the canvas for both
	// geometries, at every zoom, despite the centre-unit asymmetry.
	zooms := []float64{0.25, 1, 4}

	grid := NewGridGeometry(32)
	for _, z := range zooms {
		v := Viewport{Zoom: z, Center: Point{X: 7, Y: 12}}
		world := grid.CenterOffset(v.Center, 1) // centre in world pixels
		got := v.WorldToScreen(grid, world, 800, 600)
		if !almostEqualPoint(got, Point{X: 400, Y: 300}) {
			t.Fatalf("grid zoom %v: centre landed at %+v", z, got)
		}
	}

	hex := NewHexGeometry(24, OrientationFlat, nil)
	for _, z := range zooms {
		v := Viewport{Zoom: z, Center: Point{X: 152.5, Y: -80}}
		got := v.WorldToScreen(hex, v.Center, 800, 600)
		if !almostEqualPoint(got, Point{X: 400, Y: 300}) {
			t.Fatalf("hex zoom %v: centre landed at %+v", z, got)
		}
	}
}

func TestViewport_RoundTrip(t *testing.T) {
	grid := NewGridGeometry(32)
	hex := NewHexGeometry(24, OrientationPointy, nil)
	points := []Point{{X: 0, Y: 0}, {X: 123.5, Y: -67.25}, {X: -400, Y: 900}}

	for _, rot := range []float64{0, 90, 137} {
		for _, z := range []float64{0.25, 1, 4} {
			v := Viewport{Zoom: z, Center: Point{X: 3, Y: -2}, Rotation: rot}
			for _, g := range []Geometry{grid, hex} {
				for _, p := range points {
					s := v.WorldToScreen(g, p, 800, 600)
					back := v.ScreenToWorld(g, s, 800, 600)
					if !almostEqualPoint(back, p) {
						t.Fatalf("%v rot=%v zoom=%v: %+v -> %+v -> %+v",
							g.Kind(), rot, z, p, s, back)
					}
				}
			}
		}
	}
}

func TestViewport_RotationMovesScreenPoint(t *testing.T) {
	g := NewGridGeometry(32)
	p := Point{X: 500, Y: 500}
	plain := Viewport{Zoom: 1}
	rotated := Viewport{Zoom: 1, Rotation: 90}
	a := plain.WorldToScreen(g, p, 800, 600)
	b := rotated.WorldToScreen(g, p, 800, 600)
	if almostEqualPoint(a, b) {
		t.Fatal("90 degree rotation should move an off-centre point")
	}
	// The canvas centre is the rotation pivot and must stay fixed.
	centerWorld := plain.ScreenToWorld(g, Point{X: 400, Y: 300}, 800, 600)
	if got := rotated.WorldToScreen(g, centerWorld, 800, 600); !almostEqualPoint(got, Point{X: 400, Y: 300}) {
		t.Fatalf("pivot moved to %+v", got)
	}
}

func TestViewport_ScreenToCell(t *testing.T) {
	g := NewGridGeometry(32)
	v := Viewport{Zoom: 1, Center: Point{X: 5, Y: 5}}
	// Cell (5,5)'s centre sits under the canvas centre... almost: the viewport
	// centre (5,5) in cell units is the cell's top-left corner, so the canvas
	// centre falls inside cell (5,5).
	if got := v.ScreenToCell(g, Point{X: 401, Y: 301}, 800, 600); got != (Coord{X: 5, Y: 5}) {
		t.Fatalf("got %+v", got)
	}
}

func TestVisibleCellRange(t *testing.T) {
	g := NewGridGeometry(32)
	v := Viewport{Zoom: 1, Center: Point{X: 0, Y: 0}}
	lo, hi := VisibleCellRange(g, v, 800, 600)

	// 800x600 at zoom 1 spans 25x18.75 cells centred on the origin, plus one
	// cell of padding each way.
	if lo.X > -13 || lo.Y > -10 || hi.X < 13 || hi.Y < 10 {
		t.Fatalf("range [%+v, %+v] does not cover the canvas", lo, hi)
	}

	// Zooming in shrinks the range.
	zoomed := Viewport{Zoom: 4, Center: Point{X: 0, Y: 0}}
	zlo, zhi := VisibleCellRange(g, zoomed, 800, 600)
	if (zhi.X - zlo.X) >= (hi.X - lo.X) {
		t.Fatalf("zoom 4 range [%+v, %+v] not smaller than zoom 1 [%+v, %+v]", zlo, zhi, lo, hi)
	}
}

func TestVisibleCellRange_Rotated(t *testing.T) {
	g := NewGridGeometry(32)
	v := Viewport{Zoom: 1, Center: Point{X: 0, Y: 0}, Rotation: 137}

	lo, hi := VisibleCellRange(g, v, 800, 600)
	// Every canvas corner must fall inside the reported range.
	for _, sc := range []Point{{X: 0, Y: 0}, {X: 800, Y: 0}, {X: 0, Y: 600}, {X: 800, Y: 600}} {
		c := g.WorldToGrid(v.ScreenToWorld(g, sc, 800, 600))
		if c.X < lo.X || c.X > hi.X || c.Y < lo.Y || c.Y > hi.Y {
			t.Fatalf("corner %+v maps to %+v outside [%+v, %+v]", sc, c, lo, hi)
		}
	}
}

func TestViewport_ZoomScalesDistance(t *testing.T) {
	g := NewGridGeometry(32)
	a := Point{X: 0, Y: 0}
	b := Point{X: 10, Y: 0}
	for _, z := range []float64{0.5, 2} {
		v := Viewport{Zoom: z}
		sa := v.WorldToScreen(g, a, 800, 600)
		sb := v.WorldToScreen(g, b, 800, 600)
		if d := math.Hypot(sb.X-sa.X, sb.Y-sa.Y); !almostEqual(d, 10*z) {
			t.Fatalf("zoom %v: screen distance %f, want %f", z, d, 10*z)
		}
	}
}
