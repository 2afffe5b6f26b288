package mapengine

import "math"

// HexOrientation selects flat-top or pointy-top hexes.
type HexOrientation uint8

const (
	OrientationFlat HexOrientation = iota
	OrientationPointy
)

// String returns the orientation name used in map files.
func (o HexOrientation) String() string {
	if o == OrientationPointy {
		return "pointy"
	}
	return "flat"
}

// HexBounds limits a hex map to a Cols x Rows region in offset coordinates.
type HexBounds struct {
	Cols int
	Rows int
}

// HexGeometry implements Geometry for an offset hex map. Native coordinates
// are axial (q,r) with Coord.X = q and Coord.Y = r; bounds and fog storage use
// offset (col,row) indexing. HexSize is the circumradius in world pixels.
type HexGeometry struct {
	HexSize     float64
	Orientation HexOrientation
	Bounds      *HexBounds // nil = unbounded
}

// NewHexGeometry creates a hex geometry. bounds may be nil for an unbounded map.
func NewHexGeometry(hexSize float64, orientation HexOrientation, bounds *HexBounds) *HexGeometry {
	if hexSize <= 0 {
		hexSize = 1
	}
	return &HexGeometry{HexSize: hexSize, Orientation: orientation, Bounds: bounds}
}

func (h *HexGeometry) Kind() GeometryKind { return KindHex }

// CellExtent returns the inscribed-circle diameter, the size an object must
// fit within regardless of orientation.
func (h *HexGeometry) CellExtent() float64 { return math.Sqrt(3) * h.HexSize }

// GridToWorld returns the world-space centre of the hex at axial c.
func (h *HexGeometry) GridToWorld(c Coord) Point {
	q := float64(c.X)
	r := float64(c.Y)
	if h.Orientation == OrientationFlat {
		return Point{
			X: h.HexSize * 1.5 * q,
			Y: h.HexSize * math.Sqrt(3) * (r + q/2),
		}
	}
	return Point{
		X: h.HexSize * math.Sqrt(3) * (q + r/2),
		Y: h.HexSize * 1.5 * r,
	}
}

// CellCenter is the same as GridToWorld: hexes anchor at their centre.
func (h *HexGeometry) CellCenter(c Coord) Point { return h.GridToWorld(c) }

// WorldToGrid returns the hex containing the world point, via fractional
// axial coordinates and cube rounding.
func (h *HexGeometry) WorldToGrid(p Point) Coord {
	var q, r float64
	if h.Orientation == OrientationFlat {
		q = (2.0 / 3.0) * p.X / h.HexSize
		r = (-1.0/3.0*p.X + math.Sqrt(3)/3.0*p.Y) / h.HexSize
	} else {
		q = (math.Sqrt(3)/3.0*p.X - 1.0/3.0*p.Y) / h.HexSize
		r = (2.0 / 3.0) * p.Y / h.HexSize
	}
	return roundAxial(q, r)
}

// roundAxial rounds fractional axial coordinates to the nearest hex using the
// cube constraint q+r+s=0.
func roundAxial(q, r float64) Coord {
	s := -q - r
	rq := math.Round(q)
	rr := math.Round(r)
	rs := math.Round(s)

	dq := math.Abs(rq - q)
	dr := math.Abs(rr - r)
	ds := math.Abs(rs - s)

	if dq > dr && dq > ds {
		rq = -rr - rs
	} else if dr > ds {
		rr = -rq - rs
	}
	return Coord{X: int(rq), Y: int(rr)}
}

// CellPolygon returns the six vertices of the hex. Flat-top corners start at
// angle 0; pointy-top corners are rotated by 30 degrees.
func (h *HexGeometry) CellPolygon(c Coord) []Point {
	center := h.CellCenter(c)
	out := make([]Point, 6)
	phase := 0.0
	if h.Orientation == OrientationPointy {
		phase = math.Pi / 6
	}
	for i := 0; i < 6; i++ {
		a := phase + float64(i)*math.Pi/3
		out[i] = Point{
			X: center.X + h.HexSize*math.Cos(a),
			Y: center.Y + h.HexSize*math.Sin(a),
		}
	}
	return out
}

// hexDirections are the six axial neighbour offsets.
var hexDirections = [6]Coord{
	{X: 1, Y: 0},
	{X: 1, Y: -1},
	{X: 0, Y: -1},
	{X: -1, Y: 0},
	{X: -1, Y: 1},
	{X: 0, Y: 1},
}

// Neighbors returns the six axial neighbours of c.
func (h *HexGeometry) Neighbors(c Coord) []Coord {
	out := make([]Coord, 6)
	for i, d := range hexDirections {
		out[i] = Coord{X: c.X + d.X, Y: c.Y + d.Y}
	}
	return out
}

// ToOffset converts axial to offset coordinates: odd-q layout for flat-top,
// odd-r for pointy-top.
func (h *HexGeometry) ToOffset(c Coord) Offset {
	if h.Orientation == OrientationFlat {
		return Offset{Col: c.X, Row: c.Y + (c.X-(c.X&1))/2}
	}
	return Offset{Col: c.X + (c.Y-(c.Y&1))/2, Row: c.Y}
}

// FromOffset inverts ToOffset.
func (h *HexGeometry) FromOffset(o Offset) Coord {
	if h.Orientation == OrientationFlat {
		return Coord{X: o.Col, Y: o.Row - (o.Col-(o.Col&1))/2}
	}
	return Coord{X: o.Col - (o.Row-(o.Row&1))/2, Y: o.Row}
}

// InBounds reports whether the hex lies inside the configured bounds.
// Unbounded maps always report true.
func (h *HexGeometry) InBounds(c Coord) bool {
	if h.Bounds == nil {
		return true
	}
	o := h.ToOffset(c)
	return o.Col >= 0 && o.Col < h.Bounds.Cols && o.Row >= 0 && o.Row < h.Bounds.Rows
}

// CellsInRect returns every in-bounds hex whose centre-anchored area
// intersects the rectangle. The candidate range is padded by one hex so
// boundary hexes with centres just outside are still tested.
func (h *HexGeometry) CellsInRect(min, max Point) []Coord {
	if max.X < min.X {
		min.X, max.X = max.X, min.X
	}
	if max.Y < min.Y {
		min.Y, max.Y = max.Y, min.Y
	}
	pad := h.HexSize
	var out []Coord
	seen := make(map[Coord]struct{})
	step := h.HexSize // dense enough to hit every hex at least once
	for y := min.Y - pad; y <= max.Y+pad; y += step {
		for x := min.X - pad; x <= max.X+pad; x += step {
			c := h.WorldToGrid(Point{X: x, Y: y})
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			if !h.InBounds(c) {
				continue
			}
			cc := h.CellCenter(c)
			if cc.X >= min.X-pad && cc.X <= max.X+pad && cc.Y >= min.Y-pad && cc.Y <= max.Y+pad {
				out = append(out, c)
			}
		}
	}
	return out
}

// CellsInCircle returns every in-bounds hex whose centre lies within radius.
func (h *HexGeometry) CellsInCircle(center Point, radius float64) []Coord {
	if radius < 0 {
		return nil
	}
	cands := h.CellsInRect(
		Point{X: center.X - radius, Y: center.Y - radius},
		Point{X: center.X + radius, Y: center.Y + radius},
	)
	var out []Coord
	for _, c := range cands {
		cc := h.CellCenter(c)
		dx := cc.X - center.X
		dy := cc.Y - center.Y
		if dx*dx+dy*dy <= radius*radius {
			out = append(out, c)
		}
	}
	return out
}

// CenterOffset passes the viewport centre through at zoom: hex centres are
// already stored in world pixels, unlike grid cell units.
func (h *HexGeometry) CenterOffset(center Point, zoom float64) Point {
	return center.Scale(zoom)
}

// VisibleOffsetRange reports the full configured bounds rather than a true
// viewport cull. Hex maps are bounded in practice, so the full sweep is an
// accepted cost; see DESIGN.md before tightening this.
func (h *HexGeometry) VisibleOffsetRange(Viewport, float64, float64) (Offset, Offset, bool) {
	if h.Bounds == nil {
		return Offset{}, Offset{}, false
	}
	return Offset{}, Offset{Col: h.Bounds.Cols - 1, Row: h.Bounds.Rows - 1}, true
}

// slotRingFraction is the ring radius for co-occupying objects as a fraction
// of the cell extent.
const slotRingFraction = 0.27

// SlotOffset returns the world-space offset for slot of count objects sharing
// one hex. One object sits at the centre; 2-4 objects occupy a symmetric ring
// whose offsets sum to zero.
func (h *HexGeometry) SlotOffset(slot, count int) Point {
	if count <= 1 || slot < 0 || slot >= count {
		return Point{}
	}
	radius := slotRingFraction * h.CellExtent()
	a := -math.Pi/2 + float64(slot)*2*math.Pi/float64(count)
	return Point{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
}

// MultiObjectScale shrinks objects as hex occupancy grows so up to four tile
// without overlap.
func (h *HexGeometry) MultiObjectScale(count int) float64 {
	switch {
	case count <= 1:
		return 1.0
	case count == 2:
		return 0.58
	case count == 3:
		return 0.50
	default:
		return 0.45
	}
}
