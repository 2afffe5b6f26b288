package mapfile

import (
	"sort"

	"github.com/veldrane/gridwarden/internal/mapengine"
)

// FromMap converts an engine snapshot back into its on-disk form. The
// round trip through Build is lossless for everything the document format
// carries.
func FromMap(name string, g mapengine.Geometry, m *mapengine.Map) *Document {
	doc := &Document{
		Name:     name,
		Geometry: geometryConfig(g, m),
	}
	if m.Background != nil {
		doc.Backdrop = &BackgroundDoc{
			Path:    m.Background.Path,
			OffsetX: m.Background.OffsetX,
			OffsetY: m.Background.OffsetY,
			Opacity: m.Background.Opacity,
		}
	}
	if m.FogStyle != (mapengine.FogStyle{}) {
		doc.Fog = &FogStyleDoc{
			Color:      FormatHexColor(m.FogStyle.Color),
			Opacity:    m.FogStyle.Opacity,
			Image:      m.FogStyle.ImagePath,
			Blur:       m.FogStyle.Blur,
			BlurFactor: m.FogStyle.BlurFactor,
		}
	}
	for _, layer := range m.Layers {
		doc.Layers = append(doc.Layers, layerDoc(g, layer))
	}
	return doc
}

func geometryConfig(g mapengine.Geometry, m *mapengine.Map) GeometryConfig {
	switch gg := g.(type) {
	case *mapengine.GridGeometry:
		return GeometryConfig{
			Kind:     "grid",
			CellSize: gg.CellSize,
			Cols:     m.Cols,
			Rows:     m.Rows,
		}
	case *mapengine.HexGeometry:
		cfg := GeometryConfig{
			Kind:        "hex",
			HexSize:     gg.HexSize,
			Orientation: "flat",
		}
		if gg.Orientation == mapengine.OrientationPointy {
			cfg.Orientation = "pointy"
		}
		if gg.Bounds != nil {
			cfg.Cols = gg.Bounds.Cols
			cfg.Rows = gg.Bounds.Rows
		}
		return cfg
	}
	return GeometryConfig{}
}

func layerDoc(g mapengine.Geometry, layer *mapengine.Layer) LayerDoc {
	doc := LayerDoc{
		Name:              layer.Name,
		FogEnabled:        layer.Fog.Enabled,
		ShowLayerBelow:    layer.ShowLayerBelow,
		LayerBelowOpacity: layer.LayerBelowOpacity,
	}

	for _, c := range layer.Cells {
		o := g.ToOffset(c.Pos)
		cd := CellDoc{
			Col:     o.Col,
			Row:     o.Row,
			Color:   FormatHexColor(c.Color),
			Opacity: c.Opacity,
		}
		for _, s := range c.Segments {
			cd.Segments = append(cd.Segments, segmentName(s))
		}
		doc.Cells = append(doc.Cells, cd)
	}

	for _, e := range layer.Edges {
		o := g.ToOffset(e.Pos)
		doc.Edges = append(doc.Edges, EdgeDoc{
			Col:   o.Col,
			Row:   o.Row,
			Side:  sideName(e.Side),
			Color: FormatHexColor(e.Color),
		})
	}

	for _, c := range layer.Curves {
		cd := CurveDoc{Color: FormatHexColor(c.Color), Width: c.Width}
		for _, p := range c.Points {
			cd.Points = append(cd.Points, [2]float64{p.X, p.Y})
		}
		doc.Curves = append(doc.Curves, cd)
	}

	for _, o := range layer.Objects {
		off := g.ToOffset(o.Pos)
		doc.Objects = append(doc.Objects, ObjectDoc{
			ID:         o.ID,
			Col:        off.Col,
			Row:        off.Row,
			Width:      o.Width,
			Height:     o.Height,
			Rotation:   o.Rotation,
			Scale:      o.Scale,
			Align:      alignName(o.Align),
			Slot:       o.Slot,
			Icon:       o.Icon,
			Color:      FormatHexColor(o.Color),
			HasNote:    o.HasNote,
			HasTooltip: o.HasTooltip,
			LinkedTo:   o.LinkedTo,
		})
	}

	for _, l := range layer.Labels {
		doc.Labels = append(doc.Labels, LabelDoc{
			ID:       l.ID,
			X:        l.Pos.X,
			Y:        l.Pos.Y,
			Content:  l.Content,
			FontSize: l.FontSize,
			FontFace: l.FontFace,
			Color:    FormatHexColor(l.Color),
			Rotation: l.Rotation,
		})
	}

	// Fog cells in a stable order so saved files diff cleanly.
	for o := range layer.Fog.Cells {
		doc.FogCells = append(doc.FogCells, [2]int{o.Col, o.Row})
	}
	sort.Slice(doc.FogCells, func(i, j int) bool {
		a, b := doc.FogCells[i], doc.FogCells[j]
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		return a[1] < b[1]
	})

	return doc
}

func sideName(s mapengine.Side) string {
	switch s {
	case mapengine.SideNorth:
		return "n"
	case mapengine.SideEast:
		return "e"
	case mapengine.SideSouth:
		return "s"
	default:
		return "w"
	}
}

func alignName(a mapengine.Alignment) string {
	switch a {
	case mapengine.AlignNorth:
		return "n"
	case mapengine.AlignSouth:
		return "s"
	case mapengine.AlignEast:
		return "e"
	case mapengine.AlignWest:
		return "w"
	default:
		return "center"
	}
}
