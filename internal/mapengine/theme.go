package mapengine

import "image/color"

// Theme holds the per-frame read-only palette and line weights the renderer
// draws with.
type Theme struct {
	Background    color.RGBA
	GridLine      color.RGBA
	CellBorder    color.RGBA
	SegmentBorder color.RGBA
	FogSeparator  color.RGBA
	Selection     color.RGBA
	Handle        color.RGBA
	TextOutline   color.RGBA
	Coordinate    color.RGBA

	GridLineWidth   float64
	BorderWidth     float64
	SelectionWidth  float64
	HandleSize      float64
	ResizeHandleMul float64 // handle enlargement in resize mode
}

// DefaultTheme is the parchment-on-slate palette used when callers supply none.
func DefaultTheme() *Theme {
	return &Theme{
		Background:    color.RGBA{R: 24, G: 22, B: 20, A: 255},
		GridLine:      color.RGBA{R: 62, G: 58, B: 52, A: 255},
		CellBorder:    color.RGBA{R: 18, G: 16, B: 14, A: 255},
		SegmentBorder: color.RGBA{R: 18, G: 16, B: 14, A: 200},
		FogSeparator:  color.RGBA{R: 0, G: 0, B: 0, A: 46},
		Selection:     color.RGBA{R: 255, G: 214, B: 64, A: 230},
		Handle:        color.RGBA{R: 255, G: 244, B: 200, A: 255},
		TextOutline:   color.RGBA{R: 10, G: 10, B: 10, A: 255},
		Coordinate:    color.RGBA{R: 150, G: 144, B: 132, A: 180},

		GridLineWidth:   1,
		BorderWidth:     2,
		SelectionWidth:  1.5,
		HandleSize:      6,
		ResizeHandleMul: 1.8,
	}
}
