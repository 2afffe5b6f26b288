// Package mapfile reads and writes map documents in their on-disk JSON form
// and converts them to engine snapshots. The engine itself never sees this
// format; everything crossing the boundary is validated here.
package mapfile

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/veldrane/gridwarden/internal/mapengine"
)

// Document is the on-disk map format.
type Document struct {
	Name     string          `json:"name"`
	Geometry GeometryConfig  `json:"geometry"`
	Layers   []LayerDoc      `json:"layers"`
	Fog      *FogStyleDoc    `json:"fog_style,omitempty"`
	Backdrop *BackgroundDoc  `json:"background,omitempty"`
}

// GeometryConfig selects and sizes the map geometry.
type GeometryConfig struct {
	Kind        string  `json:"kind"`                  // "grid" or "hex"
	CellSize    float64 `json:"cell_size,omitempty"`   // grid
	HexSize     float64 `json:"hex_size,omitempty"`    // hex
	Orientation string  `json:"orientation,omitempty"` // "flat" or "pointy"
	Cols        int     `json:"cols,omitempty"`
	Rows        int     `json:"rows,omitempty"`
}

// LayerDoc is one content layer.
type LayerDoc struct {
	Name              string      `json:"name"`
	Cells             []CellDoc   `json:"cells,omitempty"`
	Edges             []EdgeDoc   `json:"edges,omitempty"`
	Curves            []CurveDoc  `json:"curves,omitempty"`
	Objects           []ObjectDoc `json:"objects,omitempty"`
	Labels            []LabelDoc  `json:"labels,omitempty"`
	FogEnabled        bool        `json:"fog_enabled,omitempty"`
	FogCells          [][2]int    `json:"fog_cells,omitempty"` // [col, row]
	ShowLayerBelow    bool        `json:"show_layer_below,omitempty"`
	LayerBelowOpacity float64     `json:"layer_below_opacity,omitempty"`
}

// CellDoc is a painted cell. Segments, when present, make it a partial cell.
type CellDoc struct {
	Col      int      `json:"col"`
	Row      int      `json:"row"`
	Color    string   `json:"color"`
	Opacity  float64  `json:"opacity,omitempty"`
	Segments []string `json:"segments,omitempty"` // "n", "e", "s", "w"
}

// EdgeDoc is a painted cell boundary.
type EdgeDoc struct {
	Col   int    `json:"col"`
	Row   int    `json:"row"`
	Side  string `json:"side"` // "n", "e", "s", "w"
	Color string `json:"color"`
}

// CurveDoc is a freehand polyline in world pixels.
type CurveDoc struct {
	Points [][2]float64 `json:"points"`
	Color  string       `json:"color"`
	Width  float64      `json:"width,omitempty"`
}

// ObjectDoc is a placed token.
type ObjectDoc struct {
	ID         string  `json:"id"`
	Col        int     `json:"col"`
	Row        int     `json:"row"`
	Width      float64 `json:"width,omitempty"`
	Height     float64 `json:"height,omitempty"`
	Rotation   float64 `json:"rotation,omitempty"`
	Scale      float64 `json:"scale,omitempty"`
	Align      string  `json:"align,omitempty"` // "center", "n", "s", "e", "w"
	Slot       int     `json:"slot,omitempty"`
	Icon       string  `json:"icon,omitempty"`
	Color      string  `json:"color,omitempty"`
	HasNote    bool    `json:"has_note,omitempty"`
	HasTooltip bool    `json:"has_tooltip,omitempty"`
	LinkedTo   string  `json:"linked_to,omitempty"`
}

// LabelDoc is a free text label in world pixels.
type LabelDoc struct {
	ID       string  `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Content  string  `json:"content"`
	FontSize float64 `json:"font_size,omitempty"`
	FontFace string  `json:"font_face,omitempty"`
	Color    string  `json:"color,omitempty"`
	Rotation float64 `json:"rotation,omitempty"`
}

// FogStyleDoc configures how fog is drawn, map-wide.
type FogStyleDoc struct {
	Color      string  `json:"color,omitempty"`
	Opacity    float64 `json:"opacity,omitempty"`
	Image      string  `json:"image,omitempty"`
	Blur       bool    `json:"blur,omitempty"`
	BlurFactor float64 `json:"blur_factor,omitempty"`
}

// BackgroundDoc positions the optional backdrop image.
type BackgroundDoc struct {
	Path    string  `json:"path"`
	OffsetX float64 `json:"offset_x,omitempty"`
	OffsetY float64 `json:"offset_y,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
}

// Load reads and parses a map document from disk.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a map document and validates it.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse map JSON: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Save writes the document as indented JSON.
func Save(path string, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode map JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write map file: %w", err)
	}
	return nil
}

// Validate checks structural invariants the engine relies on. It never
// rejects unknown colours or missing icons; those degrade at render time.
func (d *Document) Validate() error {
	hex := false
	switch d.Geometry.Kind {
	case "grid":
	case "hex":
		hex = true
		switch d.Geometry.Orientation {
		case "", "flat", "pointy":
		default:
			return fmt.Errorf("geometry: unknown orientation %q", d.Geometry.Orientation)
		}
	default:
		return fmt.Errorf("geometry: unknown kind %q", d.Geometry.Kind)
	}

	for li, layer := range d.Layers {
		painted := make(map[[2]int]bool, len(layer.Cells))
		for ci, c := range layer.Cells {
			key := [2]int{c.Col, c.Row}
			if painted[key] {
				return fmt.Errorf("layer %d cell %d: duplicate cell at (%d, %d)", li, ci, c.Col, c.Row)
			}
			painted[key] = true
			if hex && len(c.Segments) > 0 {
				return fmt.Errorf("layer %d cell %d: segments are grid-only", li, ci)
			}
			for _, s := range c.Segments {
				if _, err := parseSegment(s); err != nil {
					return fmt.Errorf("layer %d cell %d: %w", li, ci, err)
				}
			}
		}
		for ei, e := range layer.Edges {
			if hex {
				return fmt.Errorf("layer %d edge %d: painted edges are grid-only", li, ei)
			}
			if _, err := parseSide(e.Side); err != nil {
				return fmt.Errorf("layer %d edge %d: %w", li, ei, err)
			}
		}
		ids := make(map[string]bool, len(layer.Objects))
		occupants := make(map[[2]int]int, len(layer.Objects))
		for oi, o := range layer.Objects {
			if o.ID == "" {
				return fmt.Errorf("layer %d object %d: missing id", li, oi)
			}
			if ids[o.ID] {
				return fmt.Errorf("layer %d object %d: duplicate id %q", li, oi, o.ID)
			}
			ids[o.ID] = true
			if _, err := parseAlignment(o.Align); err != nil {
				return fmt.Errorf("layer %d object %q: %w", li, o.ID, err)
			}
			occupants[[2]int{o.Col, o.Row}]++
		}
		if hex {
			for pos, n := range occupants {
				if n > 4 {
					return fmt.Errorf("layer %d: %d objects at hex (%d, %d), at most 4 may share one hex", li, n, pos[0], pos[1])
				}
			}
		}
		for pi, c := range layer.Curves {
			if len(c.Points) < 2 {
				return fmt.Errorf("layer %d curve %d: needs at least 2 points", li, pi)
			}
		}
	}
	return nil
}

// Build converts a validated document into an engine geometry and snapshot.
func Build(doc *Document) (mapengine.Geometry, *mapengine.Map, error) {
	g, err := buildGeometry(doc.Geometry)
	if err != nil {
		return nil, nil, err
	}

	m := &mapengine.Map{
		Cols: doc.Geometry.Cols,
		Rows: doc.Geometry.Rows,
	}
	if doc.Backdrop != nil {
		m.Background = &mapengine.BackgroundImage{
			Path:    doc.Backdrop.Path,
			OffsetX: doc.Backdrop.OffsetX,
			OffsetY: doc.Backdrop.OffsetY,
			Opacity: doc.Backdrop.Opacity,
		}
	}
	if doc.Fog != nil {
		m.FogStyle = mapengine.FogStyle{
			Color:      parseColorOrZero(doc.Fog.Color),
			Opacity:    doc.Fog.Opacity,
			ImagePath:  doc.Fog.Image,
			Blur:       doc.Fog.Blur,
			BlurFactor: doc.Fog.BlurFactor,
		}
	}

	for li := range doc.Layers {
		layer, err := buildLayer(g, &doc.Layers[li])
		if err != nil {
			return nil, nil, fmt.Errorf("layer %d: %w", li, err)
		}
		m.Layers = append(m.Layers, layer)
	}
	return g, m, nil
}

func buildGeometry(cfg GeometryConfig) (mapengine.Geometry, error) {
	switch cfg.Kind {
	case "grid":
		size := cfg.CellSize
		if size <= 0 {
			size = 32
		}
		return mapengine.NewGridGeometry(size), nil
	case "hex":
		size := cfg.HexSize
		if size <= 0 {
			size = 24
		}
		orient := mapengine.OrientationFlat
		if cfg.Orientation == "pointy" {
			orient = mapengine.OrientationPointy
		}
		var bounds *mapengine.HexBounds
		if cfg.Cols > 0 && cfg.Rows > 0 {
			bounds = &mapengine.HexBounds{Cols: cfg.Cols, Rows: cfg.Rows}
		}
		return mapengine.NewHexGeometry(size, orient, bounds), nil
	}
	return nil, fmt.Errorf("geometry: unknown kind %q", cfg.Kind)
}

func buildLayer(g mapengine.Geometry, doc *LayerDoc) (*mapengine.Layer, error) {
	layer := &mapengine.Layer{
		Name:              doc.Name,
		ShowLayerBelow:    doc.ShowLayerBelow,
		LayerBelowOpacity: doc.LayerBelowOpacity,
	}

	for _, c := range doc.Cells {
		cell := mapengine.Cell{
			Pos:     g.FromOffset(mapengine.Offset{Col: c.Col, Row: c.Row}),
			Color:   parseColorOrZero(c.Color),
			Opacity: c.Opacity,
		}
		for _, s := range c.Segments {
			seg, err := parseSegment(s)
			if err != nil {
				return nil, err
			}
			cell.Segments = append(cell.Segments, seg)
		}
		layer.Cells = append(layer.Cells, cell)
	}

	for _, e := range doc.Edges {
		side, err := parseSide(e.Side)
		if err != nil {
			return nil, err
		}
		layer.Edges = append(layer.Edges, mapengine.Edge{
			Pos:   g.FromOffset(mapengine.Offset{Col: e.Col, Row: e.Row}),
			Side:  side,
			Color: parseColorOrZero(e.Color),
		})
	}

	for _, c := range doc.Curves {
		curve := mapengine.Curve{
			Color: parseColorOrZero(c.Color),
			Width: c.Width,
		}
		for _, p := range c.Points {
			curve.Points = append(curve.Points, mapengine.Point{X: p[0], Y: p[1]})
		}
		layer.Curves = append(layer.Curves, curve)
	}

	for _, o := range doc.Objects {
		align, err := parseAlignment(o.Align)
		if err != nil {
			return nil, err
		}
		layer.Objects = append(layer.Objects, mapengine.MapObject{
			ID:         o.ID,
			Pos:        g.FromOffset(mapengine.Offset{Col: o.Col, Row: o.Row}),
			Width:      o.Width,
			Height:     o.Height,
			Rotation:   o.Rotation,
			Scale:      o.Scale,
			Align:      align,
			Slot:       o.Slot,
			Icon:       o.Icon,
			Color:      parseColorOrZero(o.Color),
			HasNote:    o.HasNote,
			HasTooltip: o.HasTooltip,
			LinkedTo:   o.LinkedTo,
		})
	}

	for _, l := range doc.Labels {
		layer.Labels = append(layer.Labels, mapengine.TextLabel{
			ID:       l.ID,
			Pos:      mapengine.Point{X: l.X, Y: l.Y},
			Content:  l.Content,
			FontSize: l.FontSize,
			FontFace: l.FontFace,
			Color:    parseColorOrZero(l.Color),
			Rotation: l.Rotation,
		})
	}

	fog := mapengine.NewFogSet()
	for _, fc := range doc.FogCells {
		fog[mapengine.Offset{Col: fc[0], Row: fc[1]}] = struct{}{}
	}
	layer.Fog = mapengine.FogOfWar{Enabled: doc.FogEnabled, Cells: fog}

	return layer, nil
}

// ParseHexColor parses "#rrggbb" or "#rrggbbaa" (leading '#' optional).
func ParseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	var c color.RGBA
	c.A = 255
	switch len(s) {
	case 6:
		if _, err := fmt.Sscanf(s, "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
			return color.RGBA{}, fmt.Errorf("parse colour %q: %w", s, err)
		}
	case 8:
		if _, err := fmt.Sscanf(s, "%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A); err != nil {
			return color.RGBA{}, fmt.Errorf("parse colour %q: %w", s, err)
		}
	default:
		return color.RGBA{}, fmt.Errorf("parse colour %q: want rrggbb or rrggbbaa", s)
	}
	return c, nil
}

// FormatHexColor renders a colour as "#rrggbb" or "#rrggbbaa".
func FormatHexColor(c color.RGBA) string {
	if c.A != 255 {
		return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// parseColorOrZero is the lenient path used during building: bad or missing
// colours become the zero colour and the renderer applies its defaults.
func parseColorOrZero(s string) color.RGBA {
	if s == "" {
		return color.RGBA{}
	}
	c, err := ParseHexColor(s)
	if err != nil {
		return color.RGBA{}
	}
	return c
}

func parseSegment(s string) (mapengine.Segment, error) {
	switch strings.ToLower(s) {
	case "n":
		return mapengine.SegmentNorth, nil
	case "e":
		return mapengine.SegmentEast, nil
	case "s":
		return mapengine.SegmentSouth, nil
	case "w":
		return mapengine.SegmentWest, nil
	}
	return 0, fmt.Errorf("unknown segment %q", s)
}

func parseSide(s string) (mapengine.Side, error) {
	switch strings.ToLower(s) {
	case "n":
		return mapengine.SideNorth, nil
	case "e":
		return mapengine.SideEast, nil
	case "s":
		return mapengine.SideSouth, nil
	case "w":
		return mapengine.SideWest, nil
	}
	return 0, fmt.Errorf("unknown side %q", s)
}

func parseAlignment(s string) (mapengine.Alignment, error) {
	switch strings.ToLower(s) {
	case "", "center":
		return mapengine.AlignCenter, nil
	case "n":
		return mapengine.AlignNorth, nil
	case "s":
		return mapengine.AlignSouth, nil
	case "e":
		return mapengine.AlignEast, nil
	case "w":
		return mapengine.AlignWest, nil
	}
	return 0, fmt.Errorf("unknown alignment %q", s)
}

// segmentName is the inverse of parseSegment, used when writing documents.
func segmentName(s mapengine.Segment) string {
	switch s {
	case mapengine.SegmentNorth:
		return "n"
	case mapengine.SegmentEast:
		return "e"
	case mapengine.SegmentSouth:
		return "s"
	default:
		return "w"
	}
}
