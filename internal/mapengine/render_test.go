package mapengine

import (
	"image/color"
	"math"
	"testing"
)

// testFrameContext builds a context without a destination surface; the pure
// layout helpers never touch fc.dst.
func testFrameContext(g Geometry, v Viewport, w, h float64) *frameContext {
	return &frameContext{
		geom:   g,
		view:   v,
		offset: v.Offset(g, w, h),
		zoom:   v.Zoom,
		w:      w,
		h:      h,
	}
}

func TestBuildOccupancy(t *testing.T) {
	layer := &Layer{
		Cells: []Cell{
			{Pos: Coord{X: 1, Y: 1}},
			{Pos: Coord{X: 2, Y: 1}, Segments: []Segment{SegmentNorth, SegmentEast}},
		},
	}
	occ := buildOccupancy(layer)
	if !occ[Coord{X: 1, Y: 1}].occupied() || occ[Coord{X: 1, Y: 1}].segments != 0 {
		t.Fatalf("simple cell presence wrong: %+v", occ[Coord{X: 1, Y: 1}])
	}
	p := occ[Coord{X: 2, Y: 1}]
	if !p.occupied() || p.simple {
		t.Fatalf("segment cell presence wrong: %+v", p)
	}
	want := uint8(1<<uint8(SegmentNorth) | 1<<uint8(SegmentEast))
	if p.segments != want {
		t.Fatalf("segment mask = %08b, want %08b", p.segments, want)
	}
	if occ[Coord{X: 9, Y: 9}].occupied() {
		t.Fatal("empty coordinate reported occupied")
	}
}

func TestBorderSides_SuppressedBetweenNeighbours(t *testing.T) {
	g := NewGridGeometry(16)
	layer := &Layer{
		Cells: []Cell{
			{Pos: Coord{X: 5, Y: 5}},
			{Pos: Coord{X: 6, Y: 5}}, // east neighbour
			// north neighbour is a segment cell: still presence
			{Pos: Coord{X: 5, Y: 4}, Segments: []Segment{SegmentSouth}},
		},
	}
	occ := buildOccupancy(layer)

	sides := borderSides(g, occ, Coord{X: 5, Y: 5})
	if len(sides) != 2 {
		t.Fatalf("expected borders on 2 open sides, got %v", sides)
	}
	for _, s := range sides {
		if s == SideEast || s == SideNorth {
			t.Fatalf("border drawn against occupied neighbour on side %v", s)
		}
	}

	// A lone cell gets all four borders.
	lone := buildOccupancy(&Layer{Cells: []Cell{{Pos: Coord{X: 0, Y: 0}}}})
	if sides := borderSides(g, lone, Coord{X: 0, Y: 0}); len(sides) != 4 {
		t.Fatalf("lone cell should border all sides, got %v", sides)
	}
}

func TestGroupSimpleCells(t *testing.T) {
	red := color.RGBA{R: 200, A: 255}
	blue := color.RGBA{B: 200, A: 255}
	layer := &Layer{
		Cells: []Cell{
			{Pos: Coord{X: 0, Y: 0}, Color: red, Opacity: 1},
			{Pos: Coord{X: 1, Y: 0}, Color: red, Opacity: 1},
			{Pos: Coord{X: 2, Y: 0}, Color: red, Opacity: 0.5},
			{Pos: Coord{X: 3, Y: 0}, Color: blue, Opacity: 1},
			{Pos: Coord{X: 4, Y: 0}, Color: red, Opacity: 1, Segments: []Segment{SegmentWest}},
		},
	}
	groups := groupSimpleCells(layer)
	if len(groups) != 3 {
		t.Fatalf("expected 3 fill groups, got %d", len(groups))
	}
	if n := len(groups[fillKey{col: red, opacity: 1}]); n != 2 {
		t.Fatalf("opaque red group has %d cells, want 2", n)
	}
}

func TestCountCellOccupants(t *testing.T) {
	objects := []MapObject{
		{ID: "a", Pos: Coord{X: 1, Y: 1}},
		{ID: "b", Pos: Coord{X: 1, Y: 1}},
		{ID: "c", Pos: Coord{X: 2, Y: 2}},
	}
	counts := countCellOccupants(objects)
	if counts[Coord{X: 1, Y: 1}] != 2 || counts[Coord{X: 2, Y: 2}] != 1 {
		t.Fatalf("bad counts: %v", counts)
	}
}

func TestAlignmentOffset(t *testing.T) {
	// 20x20 free span around a 10x10 object.
	cases := []struct {
		align Alignment
		want  Point
	}{
		{AlignCenter, Point{X: 10, Y: 10}},
		{AlignNorth, Point{X: 10, Y: 0}},
		{AlignSouth, Point{X: 10, Y: 20}},
		{AlignEast, Point{X: 20, Y: 10}},
		{AlignWest, Point{X: 0, Y: 10}},
	}
	for _, tc := range cases {
		got := alignmentOffset(tc.align, 30, 30, 10, 10)
		if !almostEqualPoint(got, tc.want) {
			t.Fatalf("%v: got %+v want %+v", tc.align, got, tc.want)
		}
	}
}

func TestObjectScreenRect_GridAlignment(t *testing.T) {
	g := NewGridGeometry(32)
	fc := testFrameContext(g, Viewport{Zoom: 1}, 800, 600)

	o := MapObject{Pos: Coord{X: 2, Y: 2}, Width: 0.5, Height: 0.5, Align: AlignNorth}
	rect := objectScreenRect(fc, o, 1)

	tl := fc.toScreen(g.GridToWorld(o.Pos))
	if !almostEqual(rect.W, 16) || !almostEqual(rect.H, 16) {
		t.Fatalf("half-cell object is %fx%f", rect.W, rect.H)
	}
	if !almostEqual(rect.Y, tl.Y) {
		t.Fatalf("north-aligned object not flush with the top edge: %f vs %f", rect.Y, tl.Y)
	}
	if !almostEqual(rect.X, tl.X+8) {
		t.Fatalf("north-aligned object not centred horizontally: %f", rect.X)
	}
}

func TestObjectScreenRect_HexSlots(t *testing.T) {
	h := NewHexGeometry(24, OrientationFlat, nil)
	fc := testFrameContext(h, Viewport{Zoom: 1}, 800, 600)
	pos := Coord{X: 2, Y: 1}

	// Four co-occupying tokens: distinct slots, shrunken, centred around the
	// hex centre.
	base := objectScreenRect(fc, MapObject{Pos: pos, Width: 1, Height: 1}, 1)
	var sumX, sumY float64
	seen := make(map[Point]bool)
	for slot := 0; slot < 4; slot++ {
		o := MapObject{Pos: pos, Width: 1, Height: 1, Slot: slot}
		rect := objectScreenRect(fc, o, 4)

		wantSize := base.W * h.MultiObjectScale(4)
		if !almostEqual(rect.W, wantSize) {
			t.Fatalf("slot %d width %f, want %f", slot, rect.W, wantSize)
		}
		c := rect.center()
		if seen[c] {
			t.Fatalf("slot %d shares a centre with another slot", slot)
		}
		seen[c] = true
		sumX += c.X
		sumY += c.Y
	}
	hexCenter := fc.toScreen(h.CellCenter(pos))
	if !almostEqual(sumX/4, hexCenter.X) || !almostEqual(sumY/4, hexCenter.Y) {
		t.Fatalf("slot centres average to (%f, %f), want %+v", sumX/4, sumY/4, hexCenter)
	}
}

func TestObjectCoveredCells(t *testing.T) {
	g := NewGridGeometry(32)
	o := MapObject{Pos: Coord{X: 3, Y: 3}, Width: 2.3, Height: 1}
	cells := objectCoveredCells(g, o)
	if len(cells) != 3 {
		t.Fatalf("2.3x1 object should cover 3 cells, got %v", cells)
	}

	h := NewHexGeometry(24, OrientationFlat, nil)
	if cells := objectCoveredCells(h, o); len(cells) != 1 || cells[0] != o.Pos {
		t.Fatalf("hex object should cover its own hex, got %v", cells)
	}
}

func TestObjectHiddenByFog(t *testing.T) {
	g := NewGridGeometry(32)
	layer := &Layer{
		Fog: FogOfWar{
			Enabled: true,
			Cells:   NewFogSet(Offset{Col: 4, Row: 3}),
		},
	}
	wide := MapObject{Pos: Coord{X: 3, Y: 3}, Width: 2, Height: 1}
	if !objectHiddenByFog(g, layer, wide) {
		t.Fatal("object reaching into fog should be hidden")
	}
	clear := MapObject{Pos: Coord{X: 0, Y: 0}, Width: 1, Height: 1}
	if objectHiddenByFog(g, layer, clear) {
		t.Fatal("object outside fog should be visible")
	}

	layer.Fog.Enabled = false
	if objectHiddenByFog(g, layer, wide) {
		t.Fatal("disabled fog must never hide objects")
	}
}

func TestGhostSource(t *testing.T) {
	below := &Layer{Name: "ground"}
	active := &Layer{Name: "detail", ShowLayerBelow: true}
	m := &Map{Layers: []*Layer{below, active}}

	if got := ghostSource(m, 1); got != below {
		t.Fatalf("expected the layer below, got %+v", got)
	}

	// The bottom layer has nothing beneath it.
	below.ShowLayerBelow = true
	if got := ghostSource(m, 0); got != nil {
		t.Fatalf("bottom layer should have no ghost, got %+v", got)
	}

	active.ShowLayerBelow = false
	if got := ghostSource(m, 1); got != nil {
		t.Fatalf("disabled ghost should yield nil, got %+v", got)
	}

	if got := ghostSource(m, 5); got != nil {
		t.Fatalf("out-of-range layer should yield nil, got %+v", got)
	}
}

func TestSeparatorWidth(t *testing.T) {
	if w := separatorWidth(0.25); w != 1 {
		t.Fatalf("zoomed-out width %f, want the 1px floor", w)
	}
	if w := separatorWidth(1); w != 1 {
		t.Fatalf("unit zoom width %f, want 1", w)
	}
	if w := separatorWidth(4); w != 4 {
		t.Fatalf("zoomed-in width %f, want 4", w)
	}
}

func TestFogPassSchedule(t *testing.T) {
	passes := fogPassSchedule(fogBlurPasses, 1)
	if len(passes) != fogBlurPasses {
		t.Fatalf("expected %d passes, got %d", fogBlurPasses, len(passes))
	}
	if !almostEqual(passes[0].alpha, 0.50) {
		t.Fatalf("first pass alpha %f, want 0.50", passes[0].alpha)
	}
	last := passes[len(passes)-1]
	if !almostEqual(last.alpha, 0.80) {
		t.Fatalf("last pass alpha %f, want 0.80", last.alpha)
	}
	if !almostEqual(last.expand, 1) {
		t.Fatalf("last pass expand %f, want 1", last.expand)
	}
	for i := 1; i < len(passes); i++ {
		if passes[i].expand >= passes[i-1].expand {
			t.Fatalf("pass %d expand %f not shrinking from %f", i, passes[i].expand, passes[i-1].expand)
		}
		if passes[i].alpha <= passes[i-1].alpha {
			t.Fatalf("pass %d alpha %f not climbing from %f", i, passes[i].alpha, passes[i-1].alpha)
		}
	}

	// A larger blur factor pushes the first pass further out.
	wide := fogPassSchedule(fogBlurPasses, 2)
	if wide[0].expand <= passes[0].expand {
		t.Fatalf("blur factor 2 first expand %f not wider than %f", wide[0].expand, passes[0].expand)
	}

	if fogPassSchedule(0, 1) != nil {
		t.Fatal("zero passes should yield nil")
	}
}

func TestTapAlpha(t *testing.T) {
	// n tap draws at alpha a accumulate to 1-(1-a)^n; tapAlpha inverts that
	// so the stack lands on the target.
	for _, target := range []float64{0.3, 0.65, 0.9} {
		for _, n := range []int{1, 4, 9} {
			a := tapAlpha(target, n)
			accumulated := 1 - math.Pow(1-a, float64(n))
			if !almostEqual(accumulated, target) {
				t.Fatalf("target %f over %d taps: alpha %f accumulates to %f", target, n, a, accumulated)
			}
		}
	}
	if a := tapAlpha(1, 9); a != 1 {
		t.Fatalf("full coverage should stay full, got %f", a)
	}
}

func TestResolveFogFill(t *testing.T) {
	images := NewImageCache()

	// No styling at all: the default dark fill.
	pattern, tint := resolveFogFill(FogStyle{}, images)
	if pattern != nil {
		t.Fatal("unstyled fog should have no pattern")
	}
	if tint.A == 0 {
		t.Fatal("unstyled fog tint must be opaque")
	}

	// Explicit colour wins over the default.
	want := color.RGBA{R: 40, G: 10, B: 60, A: 255}
	if _, tint := resolveFogFill(FogStyle{Color: want}, images); tint != want {
		t.Fatalf("got tint %+v", tint)
	}

	// A configured image that has not loaded falls back to the colour.
	pattern, tint = resolveFogFill(FogStyle{ImagePath: "missing.png", Color: want}, images)
	if pattern != nil {
		t.Fatal("unloaded pattern should not be used")
	}
	if tint != want {
		t.Fatalf("fallback tint %+v, want %+v", tint, want)
	}
}

func TestExpandPolygon(t *testing.T) {
	center := Point{X: 10, Y: 10}
	poly := []Point{{X: 12, Y: 10}, {X: 10, Y: 12}, {X: 8, Y: 10}, {X: 10, Y: 8}}
	out := expandPolygon(poly, center, 1.5)
	for i, p := range out {
		want := math.Hypot(poly[i].X-center.X, poly[i].Y-center.Y) * 1.5
		got := math.Hypot(p.X-center.X, p.Y-center.Y)
		if !almostEqual(got, want) {
			t.Fatalf("vertex %d at distance %f, want %f", i, got, want)
		}
	}

	if out := expandPolygon(poly, center, 1); len(out) != len(poly) {
		t.Fatal("identity expansion changed vertex count")
	}
}

func TestSharedEdge(t *testing.T) {
	h := NewHexGeometry(24, OrientationFlat, nil)
	a := Coord{X: 0, Y: 0}
	b := h.Neighbors(a)[0]

	p0, p1 := sharedEdge(h, a, b)
	if almostEqualPoint(p0, p1) {
		t.Fatal("shared edge is degenerate")
	}
	// Both endpoints are vertices of a, equidistant from both cell centres.
	ca := h.CellCenter(a)
	cb := h.CellCenter(b)
	for _, p := range []Point{p0, p1} {
		if !almostEqual(distSq(p, ca), distSq(p, cb)) {
			t.Fatalf("edge point %+v not equidistant from the two centres", p)
		}
	}
}

func TestBackgroundBox(t *testing.T) {
	// Grid maps with configured dimensions report a finite box.
	g := NewGridGeometry(32)
	m := &Map{Cols: 10, Rows: 5}
	min, max, ok := backgroundBox(g, m)
	if !ok {
		t.Fatal("sized grid map should have a background box")
	}
	if !almostEqual(max.X-min.X, 320) || !almostEqual(max.Y-min.Y, 160) {
		t.Fatalf("grid box [%+v, %+v]", min, max)
	}

	// Unsized maps have no box to anchor a background to.
	if _, _, ok := backgroundBox(g, &Map{}); ok {
		t.Fatal("unsized map should not report a box")
	}

	// Bounded hex maps cover every configured hex including the outer rims.
	h := NewHexGeometry(24, OrientationFlat, &HexBounds{Cols: 6, Rows: 4})
	min, max, ok = backgroundBox(h, &Map{})
	if !ok {
		t.Fatal("bounded hex map should have a background box")
	}
	for _, o := range []Offset{{Col: 0, Row: 0}, {Col: 5, Row: 3}} {
		c := h.CellCenter(h.FromOffset(o))
		if c.X < min.X || c.X > max.X || c.Y < min.Y || c.Y > max.Y {
			t.Fatalf("corner hex centre %+v outside box [%+v, %+v]", c, min, max)
		}
	}
}

func TestFrameContext_VisibleCells(t *testing.T) {
	// Grid: the culled range always includes the cell under the viewport
	// centre.
	g := NewGridGeometry(32)
	fcg := testFrameContext(g, Viewport{Zoom: 1, Center: Point{X: 50, Y: 50}}, 800, 600)
	found := false
	for _, c := range fcg.visibleCells() {
		if c == (Coord{X: 50, Y: 50}) {
			found = true
			break
		}
	}
	if !found {
		t.Fatal("centre cell missing from the visible grid range")
	}

	// Bounded hex: exactly the configured cells.
	h := NewHexGeometry(24, OrientationFlat, &HexBounds{Cols: 4, Rows: 3})
	fch := testFrameContext(h, Viewport{Zoom: 1}, 800, 600)
	if got := len(fch.visibleCells()); got != 12 {
		t.Fatalf("bounded hex map should yield 12 cells, got %d", got)
	}
}
