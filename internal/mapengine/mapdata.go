package mapengine

import "image/color"

// Cell is one painted grid or hex cell. A cell with Segments is "partial":
// only the listed quadrant triangles are filled. A cell without Segments is
// "simple": fully filled. The two forms are mutually exclusive per coordinate.
type Cell struct {
	Pos      Coord
	Color    color.RGBA
	Opacity  float64 // 0..1, 0 treated as 1 for legacy maps
	Segments []Segment
}

// IsSegment reports whether the cell is a partial (segment) cell.
func (c Cell) IsSegment() bool { return len(c.Segments) > 0 }

// EffectiveOpacity returns the cell opacity, defaulting to fully opaque.
func (c Cell) EffectiveOpacity() float64 {
	if c.Opacity <= 0 || c.Opacity > 1 {
		return 1
	}
	return c.Opacity
}

// Edge is a painted cell boundary overlay, distinct from automatic cell
// borders. Grid maps only.
type Edge struct {
	Pos   Coord
	Side  Side
	Color color.RGBA
}

// Curve is a freehand world-space polyline. Geometry-independent.
type Curve struct {
	Points []Point
	Color  color.RGBA
	Width  float64
}

// Alignment positions a grid object within its cell.
type Alignment uint8

const (
	AlignCenter Alignment = iota
	AlignNorth
	AlignSouth
	AlignEast
	AlignWest
)

// MapObject is a placed token/icon. Pos is a native geometry coordinate
// (grid cell or hex axial). Slot only applies under hex geometry when several
// objects share one hex; at most four may co-occupy.
type MapObject struct {
	ID       string
	Pos      Coord
	Width    float64 // in cells
	Height   float64 // in cells
	Rotation float64 // degrees
	Scale    float64 // user scale, 0 treated as 1
	Align    Alignment
	Slot     int
	Icon     string // image cache path; empty = placeholder glyph
	Color    color.RGBA

	// Badge flags rendered as small corner indicators.
	HasNote    bool
	HasTooltip bool
	LinkedTo   string // other object id, empty = none
}

// EffectiveScale returns the user scale, defaulting to 1.
func (o MapObject) EffectiveScale() float64 {
	if o.Scale <= 0 {
		return 1
	}
	return o.Scale
}

// TextLabel is free text anchored in world pixels, independent of the grid.
type TextLabel struct {
	ID       string
	Pos      Point
	Content  string
	FontSize float64
	FontFace string
	Color    color.RGBA
	Rotation float64 // degrees
}

// FogOfWar is the per-layer occlusion state: binary per cell, stored in
// offset coordinates. Gradients are a rendering effect only.
type FogOfWar struct {
	Enabled bool
	Cells   FogSet
}

// Layer aggregates one stratum of map content.
type Layer struct {
	Name              string
	Cells             []Cell
	Edges             []Edge
	Curves            []Curve
	Objects           []MapObject
	Labels            []TextLabel
	Fog               FogOfWar
	ShowLayerBelow    bool
	LayerBelowOpacity float64 // 0..1, 0 treated as a sensible default
}

// GhostOpacity returns the opacity for the layer-below ghost render.
func (l *Layer) GhostOpacity() float64 {
	if l.LayerBelowOpacity <= 0 || l.LayerBelowOpacity > 1 {
		return 0.3
	}
	return l.LayerBelowOpacity
}

// BackgroundImage positions an optional backdrop under the grid.
type BackgroundImage struct {
	Path    string
	OffsetX float64
	OffsetY float64
	Opacity float64 // 0..1, 0 treated as 1
}

// FogStyle is the map-wide fog rendering configuration. The fog data itself
// is per layer; these settings only affect how it is drawn.
type FogStyle struct {
	Color      color.RGBA
	Opacity    float64 // base fog opacity, 0 treated as 1
	ImagePath  string  // optional tiling pattern; falls back to Color
	Blur       bool
	BlurFactor float64 // softness scale, 0 treated as 1
}

// EffectiveOpacity returns the base fog opacity, defaulting to fully opaque.
func (s FogStyle) EffectiveOpacity() float64 {
	if s.Opacity <= 0 || s.Opacity > 1 {
		return 1
	}
	return s.Opacity
}

// Map is the complete immutable map snapshot handed to the renderer. Each
// edit produces a fresh snapshot; the renderer never mutates one.
type Map struct {
	Layers []*Layer

	// Cols/Rows size the background for grid maps (hex maps derive the
	// backdrop box from their bounds).
	Cols int
	Rows int

	Background *BackgroundImage
	FogStyle   FogStyle
}

// LayerAt returns the layer at index, or nil when out of range.
func (m *Map) LayerAt(i int) *Layer {
	if m == nil || i < 0 || i >= len(m.Layers) {
		return nil
	}
	return m.Layers[i]
}

// SelectionKind discriminates selectable item types.
type SelectionKind uint8

const (
	SelectObject SelectionKind = iota
	SelectLabel
)

// Selection references one selected object or label by id.
type Selection struct {
	Kind SelectionKind
	ID   string
}

// StageVisibility toggles individual pipeline stages.
type StageVisibility struct {
	Background bool
	GridLines  bool
	Cells      bool
	Edges      bool
	Curves     bool
	Objects    bool
	Labels     bool
	Fog        bool
}

// AllVisible returns a StageVisibility with every stage enabled.
func AllVisible() StageVisibility {
	return StageVisibility{
		Background: true,
		GridLines:  true,
		Cells:      true,
		Edges:      true,
		Curves:     true,
		Objects:    true,
		Labels:     true,
		Fog:        true,
	}
}
