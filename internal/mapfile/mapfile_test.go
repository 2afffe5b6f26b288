package mapfile

import (
	"image/color"
	"strings"
	"testing"

	"github.com/veldrane/gridwarden/internal/mapengine"
)

const sampleGrid = `{
	"name": "crypt",
	"geometry": {"kind": "grid", "cell_size": 32, "cols": 20, "rows": 15},
	"fog_style": {"color": "#101014", "blur": true, "blur_factor": 1.5},
	"layers": [
		{
			"name": "ground",
			"cells": [
				{"col": 2, "row": 3, "color": "#aa3355"},
				{"col": 3, "row": 3, "color": "#aa3355", "opacity": 0.5},
				{"col": 4, "row": 3, "color": "#aa3355", "segments": ["n", "e"]}
			],
			"edges": [{"col": 2, "row": 3, "side": "s", "color": "#ffffff"}],
			"curves": [{"points": [[10, 10], [50, 40], [90, 10]], "color": "#00ff00", "width": 2}],
			"objects": [{"id": "door-1", "col": 5, "row": 5, "width": 0.5, "height": 1, "align": "w", "color": "#888888"}],
			"labels": [{"id": "t1", "x": 100, "y": 80, "content": "Entrance", "font_size": 14}],
			"fog_enabled": true,
			"fog_cells": [[7, 7], [8, 7]]
		}
	]
}`

func TestParse_GridDocument(t *testing.T) {
	doc, err := Parse([]byte(sampleGrid))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Name != "crypt" || doc.Geometry.Kind != "grid" {
		t.Fatalf("header wrong: %+v", doc)
	}

	g, m, err := Build(doc)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if g.Kind() != mapengine.KindGrid {
		t.Fatalf("geometry kind %v", g.Kind())
	}
	if len(m.Layers) != 1 {
		t.Fatalf("expected 1 layer, got %d", len(m.Layers))
	}

	layer := m.Layers[0]
	if len(layer.Cells) != 3 || len(layer.Edges) != 1 || len(layer.Curves) != 1 {
		t.Fatalf("layer content: %d cells %d edges %d curves", len(layer.Cells), len(layer.Edges), len(layer.Curves))
	}
	if !layer.Cells[2].IsSegment() || len(layer.Cells[2].Segments) != 2 {
		t.Fatalf("segment cell not built: %+v", layer.Cells[2])
	}
	if layer.Cells[0].Color != (color.RGBA{R: 0xaa, G: 0x33, B: 0x55, A: 255}) {
		t.Fatalf("cell colour %+v", layer.Cells[0].Color)
	}

	o := layer.Objects[0]
	if o.Align != mapengine.AlignWest || o.Width != 0.5 {
		t.Fatalf("object built wrong: %+v", o)
	}

	if !layer.Fog.Enabled || len(layer.Fog.Cells) != 2 {
		t.Fatalf("fog built wrong: %+v", layer.Fog)
	}
	if !layer.Fog.Cells.Contains(mapengine.Offset{Col: 7, Row: 7}) {
		t.Fatal("fog cell (7,7) missing")
	}

	if !m.FogStyle.Blur || m.FogStyle.BlurFactor != 1.5 {
		t.Fatalf("fog style %+v", m.FogStyle)
	}
}

func TestParse_HexDocument(t *testing.T) {
	src := `{
		"geometry": {"kind": "hex", "hex_size": 24, "orientation": "pointy", "cols": 12, "rows": 9},
		"layers": [{"name": "terrain", "cells": [{"col": 0, "row": 0, "color": "#224422"}]}]
	}`
	doc, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	g, m, err := Build(doc)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	h, ok := g.(*mapengine.HexGeometry)
	if !ok {
		t.Fatalf("expected hex geometry, got %T", g)
	}
	if h.Orientation != mapengine.OrientationPointy {
		t.Fatal("orientation not applied")
	}
	if h.Bounds == nil || h.Bounds.Cols != 12 || h.Bounds.Rows != 9 {
		t.Fatalf("bounds %+v", h.Bounds)
	}
	// Offset (0,0) must come back out as offset (0,0) regardless of the
	// axial coordinate it maps to internally.
	if got := h.ToOffset(m.Layers[0].Cells[0].Pos); got != (mapengine.Offset{}) {
		t.Fatalf("cell offset round trip gave %+v", got)
	}
}

func TestParse_Invalid(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			"unknown kind",
			`{"geometry": {"kind": "triangle"}}`,
			"unknown kind",
		},
		{
			"unknown orientation",
			`{"geometry": {"kind": "hex", "orientation": "sideways"}}`,
			"unknown orientation",
		},
		{
			"segments on hex",
			`{"geometry": {"kind": "hex"}, "layers": [{"cells": [{"col": 0, "row": 0, "segments": ["n"]}]}]}`,
			"grid-only",
		},
		{
			"edges on hex",
			`{"geometry": {"kind": "hex"}, "layers": [{"edges": [{"col": 0, "row": 0, "side": "n"}]}]}`,
			"grid-only",
		},
		{
			"bad segment",
			`{"geometry": {"kind": "grid"}, "layers": [{"cells": [{"col": 0, "row": 0, "segments": ["x"]}]}]}`,
			"unknown segment",
		},
		{
			"duplicate cell",
			`{"geometry": {"kind": "grid"}, "layers": [{"cells": [{"col": 1, "row": 1}, {"col": 1, "row": 1}]}]}`,
			"duplicate cell",
		},
		{
			"duplicate object id",
			`{"geometry": {"kind": "grid"}, "layers": [{"objects": [{"id": "a", "col": 0, "row": 0}, {"id": "a", "col": 1, "row": 0}]}]}`,
			"duplicate id",
		},
		{
			"missing object id",
			`{"geometry": {"kind": "grid"}, "layers": [{"objects": [{"col": 0, "row": 0}]}]}`,
			"missing id",
		},
		{
			"hex overcrowding",
			`{"geometry": {"kind": "hex"}, "layers": [{"objects": [
				{"id": "a", "col": 0, "row": 0}, {"id": "b", "col": 0, "row": 0},
				{"id": "c", "col": 0, "row": 0}, {"id": "d", "col": 0, "row": 0},
				{"id": "e", "col": 0, "row": 0}
			]}]}`,
			"at most 4",
		},
		{
			"short curve",
			`{"geometry": {"kind": "grid"}, "layers": [{"curves": [{"points": [[1, 1]]}]}]}`,
			"at least 2",
		},
		{
			"not json",
			`{broken`,
			"parse map JSON",
		},
	}
	for _, tc := range cases {
		_, err := Parse([]byte(tc.src))
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: error %q does not mention %q", tc.name, err, tc.want)
		}
	}
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#aabbcc")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c != (color.RGBA{R: 0xaa, G: 0xbb, B: 0xcc, A: 255}) {
		t.Fatalf("got %+v", c)
	}

	c, err = ParseHexColor("11223344")
	if err != nil {
		t.Fatalf("parse without #: %v", err)
	}
	if c.A != 0x44 {
		t.Fatalf("alpha %x", c.A)
	}

	for _, bad := range []string{"", "#12345", "#gggggg", "#1122334455"} {
		if _, err := ParseHexColor(bad); err == nil {
			t.Fatalf("%q should not parse", bad)
		}
	}
}

func TestFormatHexColor_RoundTrip(t *testing.T) {
	for _, c := range []color.RGBA{
		{R: 0xaa, G: 0x33, B: 0x55, A: 255},
		{R: 1, G: 2, B: 3, A: 0x80},
		{},
	} {
		got, err := ParseHexColor(FormatHexColor(c))
		if err != nil {
			t.Fatalf("%+v: %v", c, err)
		}
		if got != c {
			t.Fatalf("round trip %+v -> %+v", c, got)
		}
	}
}

func TestFromMap_RoundTrip(t *testing.T) {
	doc, err := Parse([]byte(sampleGrid))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	g, m, err := Build(doc)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	out := FromMap(doc.Name, g, m)
	if err := out.Validate(); err != nil {
		t.Fatalf("exported document invalid: %v", err)
	}

	g2, m2, err := Build(out)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if g2.Kind() != g.Kind() {
		t.Fatal("geometry kind changed across round trip")
	}
	if len(m2.Layers) != len(m.Layers) {
		t.Fatal("layer count changed across round trip")
	}
	a, b := m.Layers[0], m2.Layers[0]
	if len(a.Cells) != len(b.Cells) || len(a.Objects) != len(b.Objects) || len(a.Labels) != len(b.Labels) {
		t.Fatal("layer content changed across round trip")
	}
	if a.Cells[2].Pos != b.Cells[2].Pos || len(a.Cells[2].Segments) != len(b.Cells[2].Segments) {
		t.Fatal("segment cell changed across round trip")
	}
	if !b.Fog.Cells.Contains(mapengine.Offset{Col: 8, Row: 7}) {
		t.Fatal("fog cells lost across round trip")
	}
}

func TestSaveLoad(t *testing.T) {
	doc, err := Parse([]byte(sampleGrid))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	path := t.TempDir() + "/map.json"
	if err := Save(path, doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Name != doc.Name || len(loaded.Layers) != len(doc.Layers) {
		t.Fatal("document changed across save/load")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(t.TempDir() + "/nope.json"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
