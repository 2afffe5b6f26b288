package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/veldrane/gridwarden/internal/mapengine"
	"github.com/veldrane/gridwarden/internal/mapfile"
)

type layerStats struct {
	index int
	name  string

	simpleCells  int
	segmentCells int
	edges        int
	curves       int
	objects      int
	labels       int

	fogEnabled bool
	fogCells   int
	fogEdge    int
	fogIsland  int // fogged cells with no fogged neighbour at all

	hiddenObjects  int
	outOfBounds    int
	crowdedCells   int
	maxOccupants   int
	slotCollisions int
}

func main() {
	var mapPath string
	var layerIndex int
	var verbose bool

	flag.StringVar(&mapPath, "map", "", "path to the map JSON file")
	flag.IntVar(&layerIndex, "layer", -1, "check a single layer index (-1 = all)")
	flag.BoolVar(&verbose, "verbose", false, "print per-cell findings")
	flag.Parse()

	if mapPath == "" {
		fmt.Println("error: -map is required")
		os.Exit(2)
	}

	doc, err := mapfile.Load(mapPath)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
	g, m, err := mapfile.Build(doc)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Map Check Report ===\n")
	fmt.Printf("map=%s name=%q geometry=%s layers=%d\n\n", mapPath, doc.Name, g.Kind(), len(m.Layers))

	all := make([]layerStats, 0, len(m.Layers))
	for i, layer := range m.Layers {
		if layerIndex >= 0 && i != layerIndex {
			continue
		}
		stats := checkLayer(g, layer, i, verbose)
		all = append(all, stats)
		printLayer(stats)
	}

	if layerIndex >= 0 && len(all) == 0 {
		fmt.Printf("error: layer %d out of range (map has %d layers)\n", layerIndex, len(m.Layers))
		os.Exit(1)
	}

	printAggregate(g, m, all)
}

func checkLayer(g mapengine.Geometry, layer *mapengine.Layer, index int, verbose bool) layerStats {
	stats := layerStats{
		index:      index,
		name:       layer.Name,
		edges:      len(layer.Edges),
		curves:     len(layer.Curves),
		objects:    len(layer.Objects),
		labels:     len(layer.Labels),
		fogEnabled: layer.Fog.Enabled,
		fogCells:   len(layer.Fog.Cells),
	}

	for _, c := range layer.Cells {
		if c.IsSegment() {
			stats.segmentCells++
		} else {
			stats.simpleCells++
		}
		if !g.InBounds(c.Pos) {
			stats.outOfBounds++
			if verbose {
				fmt.Printf("  out_of_bounds: cell offset=%v\n", g.ToOffset(c.Pos))
			}
		}
	}

	_, edge := layer.Fog.Cells.Partition(g, nil)
	stats.fogEdge = len(edge)
	for o := range layer.Fog.Cells {
		fogged := false
		for _, n := range g.Neighbors(g.FromOffset(o)) {
			if layer.Fog.Cells.ContainsCoord(g, n) {
				fogged = true
				break
			}
		}
		if !fogged {
			stats.fogIsland++
			if verbose {
				fmt.Printf("  fog_island: offset=%v\n", o)
			}
		}
	}

	occupants := make(map[mapengine.Coord][]mapengine.MapObject)
	for _, o := range layer.Objects {
		occupants[o.Pos] = append(occupants[o.Pos], o)
		if !g.InBounds(o.Pos) {
			stats.outOfBounds++
			if verbose {
				fmt.Printf("  out_of_bounds: object id=%s offset=%v\n", o.ID, g.ToOffset(o.Pos))
			}
		}
		if layer.Fog.Enabled {
			for _, c := range coveredCells(g, o) {
				if layer.Fog.Cells.ContainsCoord(g, c) {
					stats.hiddenObjects++
					if verbose {
						fmt.Printf("  hidden_by_fog: object id=%s\n", o.ID)
					}
					break
				}
			}
		}
	}
	for pos, objs := range occupants {
		if n := len(objs); n > stats.maxOccupants {
			stats.maxOccupants = n
		}
		if len(objs) > 1 {
			stats.crowdedCells++
			slots := make(map[int]bool, len(objs))
			for _, o := range objs {
				if slots[o.Slot] {
					stats.slotCollisions++
					if verbose {
						fmt.Printf("  slot_collision: offset=%v slot=%d\n", g.ToOffset(pos), o.Slot)
					}
				}
				slots[o.Slot] = true
			}
		}
	}

	return stats
}

// coveredCells mirrors the renderer's footprint rules: hex objects occupy one
// hex, grid objects their ceil-span of cells.
func coveredCells(g mapengine.Geometry, o mapengine.MapObject) []mapengine.Coord {
	if g.Kind() == mapengine.KindHex {
		return []mapengine.Coord{o.Pos}
	}
	cols := spanCells(o.Width)
	rows := spanCells(o.Height)
	out := make([]mapengine.Coord, 0, cols*rows)
	for dy := 0; dy < rows; dy++ {
		for dx := 0; dx < cols; dx++ {
			out = append(out, mapengine.Coord{X: o.Pos.X + dx, Y: o.Pos.Y + dy})
		}
	}
	return out
}

func spanCells(f float64) int {
	if f <= 1 {
		return 1
	}
	n := int(f)
	if float64(n) < f {
		n++
	}
	return n
}

func printLayer(s layerStats) {
	fmt.Printf("--- Layer %d %q ---\n", s.index, s.name)
	fmt.Printf("content: simple_cells=%d segment_cells=%d edges=%d curves=%d objects=%d labels=%d\n",
		s.simpleCells, s.segmentCells, s.edges, s.curves, s.objects, s.labels)
	fmt.Printf("fog: enabled=%t cells=%d edge_cells=%d islands=%d\n",
		s.fogEnabled, s.fogCells, s.fogEdge, s.fogIsland)
	fmt.Printf("findings: hidden_objects=%d out_of_bounds=%d crowded_cells=%d max_occupants=%d slot_collisions=%d\n\n",
		s.hiddenObjects, s.outOfBounds, s.crowdedCells, s.maxOccupants, s.slotCollisions)
}

func printAggregate(g mapengine.Geometry, m *mapengine.Map, all []layerStats) {
	fmt.Printf("=== Aggregate ===\n")
	fmt.Printf("layers_checked=%d\n", len(all))

	var cells, objects, fog, problems int
	var names []string
	for _, s := range all {
		cells += s.simpleCells + s.segmentCells
		objects += s.objects
		fog += s.fogCells
		if n := s.outOfBounds + s.slotCollisions + s.fogIsland; n > 0 {
			problems += n
			names = append(names, fmt.Sprintf("%d:%s", s.index, s.name))
		}
	}
	fmt.Printf("totals: cells=%d objects=%d fog_cells=%d\n", cells, objects, fog)

	if m.Background != nil {
		fmt.Printf("background: path=%s opacity=%.2f\n", m.Background.Path, m.Background.Opacity)
	}
	if m.FogStyle.Blur {
		factor := m.FogStyle.BlurFactor
		if factor <= 0 {
			factor = 1
		}
		fmt.Printf("fog_style: blur=true blur_factor=%.2f opacity=%.2f\n", factor, m.FogStyle.EffectiveOpacity())
	}

	if problems == 0 {
		fmt.Printf("result: ok\n")
		return
	}
	sort.Strings(names)
	fmt.Printf("result: %d findings in layers [%s]\n", problems, strings.Join(names, " "))
	os.Exit(1)
}
