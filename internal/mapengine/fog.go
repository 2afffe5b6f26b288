package mapengine

// FogSet is a set of fogged cells in offset coordinates.
type FogSet map[Offset]struct{}

// NewFogSet creates a fog set from the given offsets.
func NewFogSet(cells ...Offset) FogSet {
	s := make(FogSet, len(cells))
	for _, c := range cells {
		s[c] = struct{}{}
	}
	return s
}

// Contains reports whether the offset is fogged.
func (s FogSet) Contains(o Offset) bool {
	_, ok := s[o]
	return ok
}

// Add marks an offset as fogged and returns a new set; the receiver is left
// untouched so snapshots stay immutable.
func (s FogSet) Add(cells ...Offset) FogSet {
	out := s.Clone()
	for _, c := range cells {
		out[c] = struct{}{}
	}
	return out
}

// Remove clears offsets from the fog and returns a new set.
func (s FogSet) Remove(cells ...Offset) FogSet {
	out := s.Clone()
	for _, c := range cells {
		delete(out, c)
	}
	return out
}

// Clone returns an independent copy.
func (s FogSet) Clone() FogSet {
	out := make(FogSet, len(s))
	for c := range s {
		out[c] = struct{}{}
	}
	return out
}

// ContainsCoord reports whether the native coordinate is fogged under the
// given geometry.
func (s FogSet) ContainsCoord(g Geometry, c Coord) bool {
	return s.Contains(g.ToOffset(c))
}

// IsEdgeCell reports whether a fogged cell has at least one non-fogged
// neighbour. Adjacency comes from the geometry, never from offset arithmetic:
// 4 neighbours on grids, 6 on hex maps.
func (s FogSet) IsEdgeCell(g Geometry, o Offset) bool {
	if !s.Contains(o) {
		return false
	}
	for _, n := range g.Neighbors(g.FromOffset(o)) {
		if !s.Contains(g.ToOffset(n)) {
			return true
		}
	}
	return false
}

// Partition splits the fogged cells among the given visible offsets into the
// full set and the edge subset. A nil visible slice means "all fogged cells".
func (s FogSet) Partition(g Geometry, visible []Offset) (all, edge []Offset) {
	consider := visible
	if consider == nil {
		consider = make([]Offset, 0, len(s))
		for o := range s {
			consider = append(consider, o)
		}
	}
	for _, o := range consider {
		if !s.Contains(o) {
			continue
		}
		all = append(all, o)
		if s.IsEdgeCell(g, o) {
			edge = append(edge, o)
		}
	}
	return all, edge
}

// VisibleFogOffsets computes the fogged offsets worth considering this frame
// by filtering the stored set against the geometry's visible range. When the
// geometry has no finite range (an unbounded hex map) the whole set is used.
func VisibleFogOffsets(g Geometry, v Viewport, canvasW, canvasH float64, fog FogSet) []Offset {
	min, max, ok := g.VisibleOffsetRange(v, canvasW, canvasH)
	out := make([]Offset, 0, len(fog))
	for o := range fog {
		if ok && (o.Col < min.Col || o.Col > max.Col || o.Row < min.Row || o.Row > max.Row) {
			continue
		}
		out = append(out, o)
	}
	return out
}
