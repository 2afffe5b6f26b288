package mapengine

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// cellPresence records what occupies one coordinate: a simple fill, painted
// segments, or both never at once (the data model forbids mixing).
type cellPresence struct {
	simple   bool
	segments uint8 // bitmask by Segment
}

// occupied is true when either a simple cell or any segment exists here.
// Border logic must treat both as presence so full and partial neighbours
// share correct borders without double-drawing.
func (p cellPresence) occupied() bool { return p.simple || p.segments != 0 }

// buildOccupancy indexes a layer's cells by coordinate. Built once per frame
// and thrown away; it never outlives the pass.
func buildOccupancy(layer *Layer) map[Coord]cellPresence {
	occ := make(map[Coord]cellPresence, len(layer.Cells))
	for _, c := range layer.Cells {
		p := occ[c.Pos]
		if c.IsSegment() {
			for _, s := range c.Segments {
				p.segments |= 1 << uint8(s)
			}
		} else {
			p.simple = true
		}
		occ[c.Pos] = p
	}
	return occ
}

// borderSides returns, for a grid cell, the sides that need a border: those
// whose neighbour differs in presence. A cell never draws a border against
// its own segments.
func borderSides(g *GridGeometry, occ map[Coord]cellPresence, c Coord) []Side {
	var out []Side
	for side := SideNorth; side <= SideWest; side++ {
		if !occ[g.NeighborOnSide(c, side)].occupied() {
			out = append(out, side)
		}
	}
	return out
}

// fillKey batches simple cells that share colour and opacity into one path.
type fillKey struct {
	col     color.RGBA
	opacity float64
}

// groupSimpleCells buckets the layer's simple cells for batched filling.
func groupSimpleCells(layer *Layer) map[fillKey][]Coord {
	groups := make(map[fillKey][]Coord)
	for _, c := range layer.Cells {
		if c.IsSegment() {
			continue
		}
		k := fillKey{col: c.Color, opacity: c.EffectiveOpacity()}
		groups[k] = append(groups[k], c.Pos)
	}
	return groups
}

// onScreen reports whether a screen point is within the canvas plus margin.
func (fc *frameContext) onScreen(p Point, margin float64) bool {
	return p.X >= -margin && p.X <= fc.w+margin && p.Y >= -margin && p.Y <= fc.h+margin
}

// appendPolygon adds a closed world-space polygon to a path in screen space.
func (fc *frameContext) appendPolygon(path *vector.Path, poly []Point) {
	for i, p := range poly {
		s := fc.toScreen(p)
		if i == 0 {
			path.MoveTo(float32(s.X), float32(s.Y))
		} else {
			path.LineTo(float32(s.X), float32(s.Y))
		}
	}
	path.Close()
}

// fillPath fills a path with a colour at an alpha, anti-aliased.
func fillPath(dst *ebiten.Image, path *vector.Path, col color.RGBA, alpha float64) {
	opts := &vector.DrawPathOptions{AntiAlias: true}
	opts.ColorScale.ScaleWithColor(col)
	opts.ColorScale.ScaleAlpha(float32(alpha))
	vector.FillPath(dst, path, &vector.FillOptions{}, opts)
}

// strokePath strokes a path with a colour and width, anti-aliased.
func strokePath(dst *ebiten.Image, path *vector.Path, col color.RGBA, width, alpha float64) {
	opts := &vector.DrawPathOptions{AntiAlias: true}
	opts.ColorScale.ScaleWithColor(col)
	opts.ColorScale.ScaleAlpha(float32(alpha))
	vector.StrokePath(dst, path, &vector.StrokeOptions{Width: float32(width)}, opts)
}

// drawBackground draws the optional backdrop image. Grid maps size it from
// map dimensions x cell size; hex maps from the world-space bounding box of
// the hex parallelogram, expanded by one hex extent, then the user offset.
// A not-yet-loaded image skips the stage this frame.
func (r *Renderer) drawBackground(fc *frameContext) {
	bg := fc.frame.Map.Background
	if bg == nil {
		return
	}
	img := r.images.Get(bg.Path)
	if img == nil {
		return
	}

	min, max, ok := backgroundBox(fc.geom, fc.frame.Map)
	if !ok {
		return
	}
	min = min.Add(Point{X: bg.OffsetX, Y: bg.OffsetY})
	max = max.Add(Point{X: bg.OffsetX, Y: bg.OffsetY})

	tl := fc.toScreen(min)
	br := fc.toScreen(max)
	iw := float64(img.Bounds().Dx())
	ih := float64(img.Bounds().Dy())
	if iw <= 0 || ih <= 0 || br.X <= tl.X || br.Y <= tl.Y {
		return
	}

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale((br.X-tl.X)/iw, (br.Y-tl.Y)/ih)
	opts.GeoM.Translate(tl.X, tl.Y)
	opacity := bg.Opacity
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}
	opts.ColorScale.ScaleAlpha(float32(opacity))
	opts.Filter = ebiten.FilterLinear
	fc.dst.DrawImage(img, opts)
}

// backgroundBox computes the world-space rectangle the backdrop should cover.
func backgroundBox(g Geometry, m *Map) (min, max Point, ok bool) {
	switch gg := g.(type) {
	case *GridGeometry:
		if m.Cols <= 0 || m.Rows <= 0 {
			return Point{}, Point{}, false
		}
		return Point{}, Point{
			X: float64(m.Cols) * gg.CellSize,
			Y: float64(m.Rows) * gg.CellSize,
		}, true
	case *HexGeometry:
		if gg.Bounds == nil {
			return Point{}, Point{}, false
		}
		// The four offset corners of the bounded region, through axial
		// conversion to world centres.
		corners := [4]Offset{
			{Col: 0, Row: 0},
			{Col: gg.Bounds.Cols - 1, Row: 0},
			{Col: 0, Row: gg.Bounds.Rows - 1},
			{Col: gg.Bounds.Cols - 1, Row: gg.Bounds.Rows - 1},
		}
		first := true
		for _, o := range corners {
			p := gg.CellCenter(gg.FromOffset(o))
			if first {
				min, max = p, p
				first = false
				continue
			}
			if p.X < min.X {
				min.X = p.X
			}
			if p.Y < min.Y {
				min.Y = p.Y
			}
			if p.X > max.X {
				max.X = p.X
			}
			if p.Y > max.Y {
				max.Y = p.Y
			}
		}
		// Expand by one hex so edge cells are fully covered.
		ext := gg.HexSize
		min.X -= ext
		min.Y -= ext
		max.X += ext
		max.Y += ext
		return min, max, true
	}
	return Point{}, Point{}, false
}

// drawGridLines draws the base grid over the visible range. Square grids use
// long line strokes; hex grids stroke each visible cell outline.
func (r *Renderer) drawGridLines(fc *frameContext, dst *ebiten.Image) {
	th := r.theme
	if gg, isGrid := fc.geom.(*GridGeometry); isGrid {
		lo, hi := VisibleCellRange(gg, fc.view, fc.w, fc.h)
		step := gg.CellSize * fc.zoom
		if step < 2 {
			return // lines would collapse into solid noise
		}
		for x := lo.X; x <= hi.X+1; x++ {
			s := fc.toScreen(Point{X: float64(x) * gg.CellSize, Y: float64(lo.Y) * gg.CellSize})
			e := fc.toScreen(Point{X: float64(x) * gg.CellSize, Y: float64(hi.Y+1) * gg.CellSize})
			vector.StrokeLine(dst, float32(s.X), float32(s.Y), float32(e.X), float32(e.Y),
				float32(th.GridLineWidth), th.GridLine, false)
		}
		for y := lo.Y; y <= hi.Y+1; y++ {
			s := fc.toScreen(Point{X: float64(lo.X) * gg.CellSize, Y: float64(y) * gg.CellSize})
			e := fc.toScreen(Point{X: float64(hi.X+1) * gg.CellSize, Y: float64(y) * gg.CellSize})
			vector.StrokeLine(dst, float32(s.X), float32(s.Y), float32(e.X), float32(e.Y),
				float32(th.GridLineWidth), th.GridLine, false)
		}
		return
	}

	margin := fc.geom.CellExtent() * fc.zoom
	var path vector.Path
	for _, c := range fc.visibleCells() {
		if !fc.onScreen(fc.toScreen(fc.geom.CellCenter(c)), margin) {
			continue
		}
		fc.appendPolygon(&path, fc.geom.CellPolygon(c))
	}
	strokePath(dst, &path, th.GridLine, th.GridLineWidth, 1)
}

// drawSimpleCells fills fully painted cells, batched by colour so each
// colour group is one fill call.
func (r *Renderer) drawSimpleCells(fc *frameContext, layer *Layer) {
	margin := fc.geom.CellExtent() * fc.zoom
	for key, coords := range groupSimpleCells(layer) {
		var path vector.Path
		any := false
		for _, c := range coords {
			if !fc.geom.InBounds(c) {
				continue
			}
			if !fc.onScreen(fc.toScreen(fc.geom.CellCenter(c)), margin) {
				continue
			}
			fc.appendPolygon(&path, fc.geom.CellPolygon(c))
			any = true
		}
		if any {
			fillPath(fc.dst, &path, key.col, key.opacity)
		}
	}
}

// drawSegmentCells fills the painted quadrant triangles of partial cells.
// Segment painting is grid-only; hex layers carry none.
func (r *Renderer) drawSegmentCells(fc *frameContext, layer *Layer) {
	gg, isGrid := fc.geom.(*GridGeometry)
	if !isGrid {
		return
	}
	margin := gg.CellSize * fc.zoom
	for _, cell := range layer.Cells {
		if !cell.IsSegment() {
			continue
		}
		if !fc.onScreen(fc.toScreen(gg.CellCenter(cell.Pos)), margin) {
			continue
		}
		var path vector.Path
		for _, seg := range cell.Segments {
			tri := gg.SegmentTriangle(cell.Pos, seg)
			fc.appendPolygon(&path, tri[:])
		}
		fillPath(fc.dst, &path, cell.Color, cell.EffectiveOpacity())
	}
}

// drawInteriorGridLines restores the grid texture over painted cells, which
// the fills just covered.
func (r *Renderer) drawInteriorGridLines(fc *frameContext, layer *Layer) {
	th := r.theme
	margin := fc.geom.CellExtent() * fc.zoom
	var path vector.Path
	any := false
	for _, cell := range layer.Cells {
		if !fc.onScreen(fc.toScreen(fc.geom.CellCenter(cell.Pos)), margin) {
			continue
		}
		fc.appendPolygon(&path, fc.geom.CellPolygon(cell.Pos))
		any = true
	}
	if any {
		strokePath(fc.dst, &path, th.GridLine, th.GridLineWidth, 0.6)
	}
}

// drawCellBorders draws smart borders: an edge appears only where the
// neighbouring coordinate differs in presence, using the occupancy map built
// once for this frame. Segment cells additionally get their internal
// triangle borders.
func (r *Renderer) drawCellBorders(fc *frameContext, layer *Layer) {
	th := r.theme
	occ := buildOccupancy(layer)
	margin := fc.geom.CellExtent() * fc.zoom

	if gg, isGrid := fc.geom.(*GridGeometry); isGrid {
		var path vector.Path
		for pos, pres := range occ {
			if !pres.occupied() {
				continue
			}
			if !fc.onScreen(fc.toScreen(gg.CellCenter(pos)), margin) {
				continue
			}
			corners := gg.CellPolygon(pos)
			for _, side := range borderSides(gg, occ, pos) {
				a := fc.toScreen(corners[side])
				b := fc.toScreen(corners[(int(side)+1)%4])
				path.MoveTo(float32(a.X), float32(a.Y))
				path.LineTo(float32(b.X), float32(b.Y))
			}
		}
		strokePath(fc.dst, &path, th.CellBorder, th.BorderWidth, 1)
		r.drawSegmentBorders(fc, gg, layer, occ)
		return
	}

	// Hex: border on every polygon edge facing a non-occupied neighbour.
	var path vector.Path
	for pos, pres := range occ {
		if !pres.occupied() {
			continue
		}
		if !fc.onScreen(fc.toScreen(fc.geom.CellCenter(pos)), margin) {
			continue
		}
		for _, n := range fc.geom.Neighbors(pos) {
			if occ[n].occupied() {
				continue
			}
			a, b := sharedEdge(fc.geom, pos, n)
			sa := fc.toScreen(a)
			sb := fc.toScreen(b)
			path.MoveTo(float32(sa.X), float32(sa.Y))
			path.LineTo(float32(sb.X), float32(sb.Y))
		}
	}
	strokePath(fc.dst, &path, th.CellBorder, th.BorderWidth, 1)
}

// drawSegmentBorders outlines painted segments: the external cell sides they
// touch (suppressed against occupied neighbours) and the internal diagonals
// between painted and unpainted quadrants.
func (r *Renderer) drawSegmentBorders(fc *frameContext, gg *GridGeometry, layer *Layer, occ map[Coord]cellPresence) {
	th := r.theme
	margin := gg.CellSize * fc.zoom
	var path vector.Path
	for _, cell := range layer.Cells {
		if !cell.IsSegment() {
			continue
		}
		if !fc.onScreen(fc.toScreen(gg.CellCenter(cell.Pos)), margin) {
			continue
		}
		pres := occ[cell.Pos]
		corners := gg.CellPolygon(cell.Pos)
		center := fc.toScreen(gg.CellCenter(cell.Pos))
		for seg := SegmentNorth; seg < segmentCount; seg++ {
			if pres.segments&(1<<uint8(seg)) == 0 {
				continue
			}
			// External side, unless the neighbour across it is occupied.
			side := Side(seg) // segment order matches side order
			if !occ[gg.NeighborOnSide(cell.Pos, side)].occupied() {
				a := fc.toScreen(corners[side])
				b := fc.toScreen(corners[(int(side)+1)%4])
				path.MoveTo(float32(a.X), float32(a.Y))
				path.LineTo(float32(b.X), float32(b.Y))
			}
			// Internal diagonals against unpainted quadrants.
			prev := Segment((int(seg) + 3) % 4)
			next := Segment((int(seg) + 1) % 4)
			if pres.segments&(1<<uint8(prev)) == 0 {
				a := fc.toScreen(corners[seg])
				path.MoveTo(float32(a.X), float32(a.Y))
				path.LineTo(float32(center.X), float32(center.Y))
			}
			if pres.segments&(1<<uint8(next)) == 0 {
				a := fc.toScreen(corners[(int(seg)+1)%4])
				path.MoveTo(float32(a.X), float32(a.Y))
				path.LineTo(float32(center.X), float32(center.Y))
			}
		}
	}
	strokePath(fc.dst, &path, th.SegmentBorder, th.BorderWidth*0.75, 1)
}

// sharedEdge returns the two polygon vertices of cell c on its boundary with
// neighbour n: the two vertices closest to n's centre.
func sharedEdge(g Geometry, c, n Coord) (Point, Point) {
	poly := g.CellPolygon(c)
	nc := g.CellCenter(n)
	best, second := 0, 1
	bestD, secondD := distSq(poly[0], nc), distSq(poly[1], nc)
	if secondD < bestD {
		best, second = second, best
		bestD, secondD = secondD, bestD
	}
	for i := 2; i < len(poly); i++ {
		d := distSq(poly[i], nc)
		if d < bestD {
			second, secondD = best, bestD
			best, bestD = i, d
		} else if d < secondD {
			second, secondD = i, d
		}
	}
	return poly[best], poly[second]
}

func distSq(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// drawCurves strokes the freehand world-space polylines.
func (r *Renderer) drawCurves(fc *frameContext, layer *Layer) {
	for _, curve := range layer.Curves {
		if len(curve.Points) < 2 {
			continue
		}
		var path vector.Path
		for i, p := range curve.Points {
			s := fc.toScreen(p)
			if i == 0 {
				path.MoveTo(float32(s.X), float32(s.Y))
			} else {
				path.LineTo(float32(s.X), float32(s.Y))
			}
		}
		width := curve.Width
		if width <= 0 {
			width = 2
		}
		strokePath(fc.dst, &path, curve.Color, width*fc.zoom, 1)
	}
}

// drawPaintedEdges draws the user-painted boundary overlays. Grid maps only;
// edges on other geometries are ignored rather than guessed at.
func (r *Renderer) drawPaintedEdges(fc *frameContext, layer *Layer) {
	gg, isGrid := fc.geom.(*GridGeometry)
	if !isGrid {
		return
	}
	th := r.theme
	margin := gg.CellSize * fc.zoom
	for _, e := range layer.Edges {
		corners := gg.CellPolygon(e.Pos)
		a := fc.toScreen(corners[e.Side])
		b := fc.toScreen(corners[(int(e.Side)+1)%4])
		if !fc.onScreen(a, margin) && !fc.onScreen(b, margin) {
			continue
		}
		vector.StrokeLine(fc.dst, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y),
			float32(th.BorderWidth*1.5), e.Color, true)
	}
}
