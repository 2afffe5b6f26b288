package mapengine

import "math"

// Segment identifies one triangular quadrant of a partially painted grid cell.
// The four triangles share the cell centre as apex.
type Segment uint8

const (
	SegmentNorth Segment = iota
	SegmentEast
	SegmentSouth
	SegmentWest
	segmentCount // sentinel
)

// String returns the compass name of the segment.
func (s Segment) String() string {
	switch s {
	case SegmentNorth:
		return "N"
	case SegmentEast:
		return "E"
	case SegmentSouth:
		return "S"
	case SegmentWest:
		return "W"
	}
	return "?"
}

// GridGeometry implements Geometry for an unbounded square grid. Cell anchors
// are top-left corners; world units are pixels at zoom 1.
type GridGeometry struct {
	CellSize float64
}

// NewGridGeometry creates a square-grid geometry with the given cell size.
func NewGridGeometry(cellSize float64) *GridGeometry {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &GridGeometry{CellSize: cellSize}
}

func (g *GridGeometry) Kind() GeometryKind { return KindGrid }

// CellExtent returns the cell size.
func (g *GridGeometry) CellExtent() float64 { return g.CellSize }

// GridToWorld returns the top-left corner of cell c in world pixels.
func (g *GridGeometry) GridToWorld(c Coord) Point {
	return Point{X: float64(c.X) * g.CellSize, Y: float64(c.Y) * g.CellSize}
}

// WorldToGrid returns the cell containing the world point.
func (g *GridGeometry) WorldToGrid(p Point) Coord {
	return Coord{
		X: int(math.Floor(p.X / g.CellSize)),
		Y: int(math.Floor(p.Y / g.CellSize)),
	}
}

// CellCenter returns the world-space centre of cell c.
func (g *GridGeometry) CellCenter(c Coord) Point {
	tl := g.GridToWorld(c)
	return Point{X: tl.X + g.CellSize/2, Y: tl.Y + g.CellSize/2}
}

// CellPolygon returns the four corners of the cell, clockwise from top-left.
func (g *GridGeometry) CellPolygon(c Coord) []Point {
	tl := g.GridToWorld(c)
	s := g.CellSize
	return []Point{
		{X: tl.X, Y: tl.Y},
		{X: tl.X + s, Y: tl.Y},
		{X: tl.X + s, Y: tl.Y + s},
		{X: tl.X, Y: tl.Y + s},
	}
}

// SegmentTriangle returns the three world-space vertices of one named quadrant
// triangle of cell c: the two cell corners on that side plus the cell centre.
func (g *GridGeometry) SegmentTriangle(c Coord, seg Segment) [3]Point {
	corners := g.CellPolygon(c)
	center := g.CellCenter(c)
	switch seg {
	case SegmentNorth:
		return [3]Point{corners[0], corners[1], center}
	case SegmentEast:
		return [3]Point{corners[1], corners[2], center}
	case SegmentSouth:
		return [3]Point{corners[2], corners[3], center}
	default: // SegmentWest
		return [3]Point{corners[3], corners[0], center}
	}
}

// gridDirections are the 4-neighbour offsets, N/E/S/W order to match Side.
var gridDirections = [4]Coord{
	{X: 0, Y: -1},
	{X: 1, Y: 0},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
}

// Neighbors returns the four cardinal neighbours of c.
func (g *GridGeometry) Neighbors(c Coord) []Coord {
	out := make([]Coord, 4)
	for i, d := range gridDirections {
		out[i] = Coord{X: c.X + d.X, Y: c.Y + d.Y}
	}
	return out
}

// NeighborOnSide returns the cell across the given side of c.
func (g *GridGeometry) NeighborOnSide(c Coord, side Side) Coord {
	d := gridDirections[side]
	return Coord{X: c.X + d.X, Y: c.Y + d.Y}
}

// ToOffset is the identity for square grids.
func (g *GridGeometry) ToOffset(c Coord) Offset { return Offset{Col: c.X, Row: c.Y} }

// FromOffset is the identity for square grids.
func (g *GridGeometry) FromOffset(o Offset) Coord { return Coord{X: o.Col, Y: o.Row} }

// InBounds always reports true: the square grid is unbounded.
func (g *GridGeometry) InBounds(Coord) bool { return true }

// CellsInRect returns every cell whose area intersects the rectangle.
func (g *GridGeometry) CellsInRect(min, max Point) []Coord {
	if max.X < min.X {
		min.X, max.X = max.X, min.X
	}
	if max.Y < min.Y {
		min.Y, max.Y = max.Y, min.Y
	}
	lo := g.WorldToGrid(min)
	hi := g.WorldToGrid(max)
	out := make([]Coord, 0, (hi.X-lo.X+1)*(hi.Y-lo.Y+1))
	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			out = append(out, Coord{X: x, Y: y})
		}
	}
	return out
}

// CellsInCircle returns every cell whose centre lies within radius of center.
func (g *GridGeometry) CellsInCircle(center Point, radius float64) []Coord {
	if radius < 0 {
		return nil
	}
	lo := g.WorldToGrid(Point{X: center.X - radius, Y: center.Y - radius})
	hi := g.WorldToGrid(Point{X: center.X + radius, Y: center.Y + radius})
	var out []Coord
	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			c := Coord{X: x, Y: y}
			cc := g.CellCenter(c)
			dx := cc.X - center.X
			dy := cc.Y - center.Y
			if dx*dx+dy*dy <= radius*radius {
				out = append(out, c)
			}
		}
	}
	return out
}

// CenterOffset scales a cell-unit viewport centre into world pixels at zoom.
func (g *GridGeometry) CenterOffset(center Point, zoom float64) Point {
	return center.Scale(g.CellSize * zoom)
}

// SlotOffset is always zero: grid cells hold one object at their anchor.
func (g *GridGeometry) SlotOffset(int, int) Point { return Point{} }

// MultiObjectScale is always 1 for grids.
func (g *GridGeometry) MultiObjectScale(int) float64 { return 1 }

// VisibleOffsetRange culls to the cell range covered by the canvas.
func (g *GridGeometry) VisibleOffsetRange(v Viewport, canvasW, canvasH float64) (Offset, Offset, bool) {
	lo, hi := VisibleCellRange(g, v, canvasW, canvasH)
	return Offset{Col: lo.X, Row: lo.Y}, Offset{Col: hi.X, Row: hi.Y}, true
}

// EdgeAt hit-tests proximity to a cell boundary. tolerance is the fraction of
// a cell within which a boundary counts as hit. Returns false when the point
// sits in the cell interior away from every boundary.
func (g *GridGeometry) EdgeAt(p Point, tolerance float64) (Coord, Side, bool) {
	c := g.WorldToGrid(p)
	tl := g.GridToWorld(c)
	fx := (p.X - tl.X) / g.CellSize
	fy := (p.Y - tl.Y) / g.CellSize

	// Pick the nearest boundary; ties resolve N,E,S,W.
	type cand struct {
		side Side
		dist float64
	}
	cands := [4]cand{
		{SideNorth, fy},
		{SideEast, 1 - fx},
		{SideSouth, 1 - fy},
		{SideWest, fx},
	}
	best := cands[0]
	for _, cd := range cands[1:] {
		if cd.dist < best.dist {
			best = cd
		}
	}
	if best.dist > tolerance {
		return Coord{}, SideNorth, false
	}
	return c, best.side, true
}
