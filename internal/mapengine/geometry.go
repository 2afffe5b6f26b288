package mapengine

// Point is a position in world pixels (or screen pixels after conversion).
type Point struct {
	X float64
	Y float64
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Scale returns p with both components multiplied by f.
func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Coord addresses a cell in the geometry's native indexing: column/row for a
// square grid, axial q/r for a hex grid.
type Coord struct {
	X int
	Y int
}

// Offset is (col,row) grid-style indexing used for hex bounds and fog storage.
// For square grids it is identical to Coord.
type Offset struct {
	Col int
	Row int
}

// Side identifies one boundary of a square grid cell.
type Side uint8

const (
	SideNorth Side = iota
	SideEast
	SideSouth
	SideWest
)

// String returns the single-letter compass name of the side.
func (s Side) String() string {
	switch s {
	case SideNorth:
		return "N"
	case SideEast:
		return "E"
	case SideSouth:
		return "S"
	case SideWest:
		return "W"
	}
	return "?"
}

// GeometryKind discriminates the two coordinate systems.
type GeometryKind uint8

const (
	KindGrid GeometryKind = iota
	KindHex
)

func (k GeometryKind) String() string {
	if k == KindHex {
		return "hex"
	}
	return "grid"
}

// Geometry is the shared contract both coordinate systems satisfy. Stored map
// coordinates are only meaningful through the same Geometry instance that wrote
// them; a map never mixes geometries within one layer.
type Geometry interface {
	Kind() GeometryKind

	// GridToWorld and WorldToGrid are exact inverses over cell anchors.
	// Grid anchors cells at their top-left corner; hex anchors at the centre.
	GridToWorld(c Coord) Point
	WorldToGrid(p Point) Coord

	// CellCenter returns the world-space centre of a cell.
	CellCenter(c Coord) Point
	// CellPolygon returns the cell outline in world space: 4 corners for a
	// grid cell, 6 orientation-dependent vertices for a hex.
	CellPolygon(c Coord) []Point
	// CellExtent is the world-space width of one cell, used for object sizing.
	CellExtent() float64

	// Neighbors is the single source of adjacency truth: 4 cardinal
	// neighbours for grid, 6 axial directions for hex. Fog edge detection
	// and flood tools must use this, never their own offsets.
	Neighbors(c Coord) []Coord

	// ToOffset / FromOffset convert between native and offset (col,row)
	// indexing. Identity for grid; orientation-parameterised for hex.
	ToOffset(c Coord) Offset
	FromOffset(o Offset) Coord

	// InBounds reports whether the cell exists on this map. Unbounded
	// geometries always return true.
	InBounds(c Coord) bool

	// CellsInRect enumerates cells whose area intersects the world-space
	// rectangle spanned by min and max.
	CellsInRect(min, max Point) []Coord
	// CellsInCircle enumerates cells whose centre lies within radius of the
	// world-space centre point.
	CellsInCircle(center Point, radius float64) []Coord

	// CenterOffset converts a viewport centre into world pixels at the given
	// zoom. Grid centres are stored in cell units and scale by
	// cellSize*zoom; hex centres are stored in world pixels and scale by
	// zoom alone. Stored maps depend on this asymmetry.
	CenterOffset(center Point, zoom float64) Point

	// SlotOffset returns the world-space offset for an object sharing a cell
	// with count-1 others, and MultiObjectScale the size-down factor. Grid
	// cells never co-occupy: zero offset, scale 1.
	SlotOffset(slot, count int) Point
	MultiObjectScale(count int) float64

	// VisibleOffsetRange returns the inclusive offset-coordinate range the
	// fog compositor should consider for the given viewport, or ok=false
	// when no finite range exists. Grids cull to the viewport; bounded hex
	// maps report their full configured bounds.
	VisibleOffsetRange(v Viewport, canvasW, canvasH float64) (min, max Offset, ok bool)
}

// WorldToScreen converts a world-space point to screen space. Both geometries
// share this: screen = world*zoom + offset.
func WorldToScreen(p Point, offset Point, zoom float64) Point {
	return p.Scale(zoom).Add(offset)
}

// ScreenToWorldPoint inverts WorldToScreen. Callers that also use viewport
// rotation must un-rotate the screen point first (see Viewport.ScreenToWorld).
func ScreenToWorldPoint(p Point, offset Point, zoom float64) Point {
	return Point{X: (p.X - offset.X) / zoom, Y: (p.Y - offset.Y) / zoom}
}

// GridToScreen converts a cell anchor straight to screen space.
func GridToScreen(g Geometry, c Coord, offset Point, zoom float64) Point {
	return WorldToScreen(g.GridToWorld(c), offset, zoom)
}
