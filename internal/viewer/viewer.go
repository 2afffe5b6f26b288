// Package viewer is the interactive map window: camera controls, layer
// switching, and stage toggles on top of the render pipeline.
package viewer

import (
	"fmt"
	"math"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/veldrane/gridwarden/internal/mapengine"
)

const (
	zoomMin = 0.1
	zoomMax = 8.0

	rotationStep = 15.0 // degrees per keypress
)

// Viewer drives one map window. It owns the viewport, the UI state, and the
// loaded map; the renderer only ever reads the snapshot it is handed.
type Viewer struct {
	geom mapengine.Geometry
	m    *mapengine.Map

	renderer   *mapengine.Renderer
	view       mapengine.Viewport
	active     int
	visibility mapengine.StageVisibility
	showCoords bool
	showHUD    bool

	width, height int

	dragging    bool
	dragX, dragY int

	status string // transient HUD line, replaced on the next action
}

// Config carries the construction options for a Viewer.
type Config struct {
	Geometry mapengine.Geometry
	Map      *mapengine.Map
	Renderer *mapengine.Renderer
	Width    int
	Height   int
}

// New builds a viewer centred on the map origin at native zoom.
func New(cfg Config) *Viewer {
	w, h := cfg.Width, cfg.Height
	if w <= 0 {
		w = 1280
	}
	if h <= 0 {
		h = 800
	}
	return &Viewer{
		geom:       cfg.Geometry,
		m:          cfg.Map,
		renderer:   cfg.Renderer,
		view:       mapengine.Viewport{Zoom: 1},
		visibility: mapengine.AllVisible(),
		showHUD:    true,
		width:      w,
		height:     h,
	}
}

// Update handles input. Camera movement is held-key or drag, everything else
// is edge-triggered.
func (v *Viewer) Update() error {
	v.handlePan()
	v.handleDrag()
	v.handleZoom()

	// Q/E: rotate the whole canvas in steps. R resets.
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		v.view.Rotation = math.Mod(v.view.Rotation-rotationStep+360, 360)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		v.view.Rotation = math.Mod(v.view.Rotation+rotationStep, 360)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		v.view.Rotation = 0
	}

	// Tab / Shift+Tab: cycle the active layer.
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) && len(v.m.Layers) > 0 {
		step := 1
		if ebiten.IsKeyPressed(ebiten.KeyShift) {
			step = len(v.m.Layers) - 1
		}
		v.active = (v.active + step) % len(v.m.Layers)
		v.status = fmt.Sprintf("layer: %s", v.activeLayerName())
	}

	// F: fog on the active layer.
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		if layer := v.m.LayerAt(v.active); layer != nil {
			layer.Fog.Enabled = !layer.Fog.Enabled
			v.status = fmt.Sprintf("fog: %t", layer.Fog.Enabled)
		}
	}

	// Stage toggles.
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		v.visibility.GridLines = !v.visibility.GridLines
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		v.visibility.Objects = !v.visibility.Objects
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		v.visibility.Labels = !v.visibility.Labels
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		v.visibility.Background = !v.visibility.Background
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		v.showCoords = !v.showCoords
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		v.showHUD = !v.showHUD
	}

	// C: copy the hovered cell's offset coordinate.
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		v.copyHoveredCell()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyHome) {
		v.view = mapengine.Viewport{Zoom: 1}
		v.status = "view reset"
	}

	return nil
}

// handlePan moves the viewport centre with WASD or the arrow keys.
func (v *Viewer) handlePan() {
	var dx, dy float64
	speed := 8.0
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		speed = 24.0
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		dy -= speed
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		dy += speed
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		dx -= speed
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		dx += speed
	}
	v.panByScreenDelta(dx, dy)
}

// handleDrag pans with a held right mouse button.
func (v *Viewer) handleDrag() {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		v.dragging = true
		v.dragX, v.dragY = ebiten.CursorPosition()
		return
	}
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
		v.dragging = false
		return
	}
	if !v.dragging {
		return
	}
	mx, my := ebiten.CursorPosition()
	v.panByScreenDelta(float64(v.dragX-mx), float64(v.dragY-my))
	v.dragX, v.dragY = mx, my
}

// panByScreenDelta moves the centre by a screen-space pan vector. The vector
// follows the screen axes, so it is counter-rotated into world space, then
// divided down into centre units (cells for grids, pixels for hex maps).
func (v *Viewer) panByScreenDelta(dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	angle := -v.view.Rotation * math.Pi / 180
	sin, cos := math.Sincos(angle)
	wx := dx*cos - dy*sin
	wy := dx*sin + dy*cos

	// CenterOffset of a unit centre gives the pixels-per-centre-unit factor
	// for this geometry.
	unit := v.geom.CenterOffset(mapengine.Point{X: 1, Y: 1}, 1)
	v.view.Center.X += wx / v.view.Zoom / unit.X
	v.view.Center.Y += wy / v.view.Zoom / unit.Y
}

func (v *Viewer) handleZoom() {
	_, wy := ebiten.Wheel()
	factor := 1.0
	if wy != 0 {
		factor = math.Pow(1.12, wy)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		factor = 1.25
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		factor = 1 / 1.25
	}
	if factor == 1 {
		return
	}
	v.view.Zoom *= factor
	if v.view.Zoom < zoomMin {
		v.view.Zoom = zoomMin
	}
	if v.view.Zoom > zoomMax {
		v.view.Zoom = zoomMax
	}
}

func (v *Viewer) copyHoveredCell() {
	o := v.hoveredOffset()
	s := fmt.Sprintf("%d,%d", o.Col, o.Row)
	if err := clipboard.WriteAll(s); err != nil {
		v.status = fmt.Sprintf("clipboard: %v", err)
		return
	}
	v.status = fmt.Sprintf("copied %s", s)
}

func (v *Viewer) hoveredOffset() mapengine.Offset {
	mx, my := ebiten.CursorPosition()
	c := v.view.ScreenToCell(v.geom, mapengine.Point{X: float64(mx), Y: float64(my)},
		float64(v.width), float64(v.height))
	return v.geom.ToOffset(c)
}

func (v *Viewer) activeLayerName() string {
	layer := v.m.LayerAt(v.active)
	if layer == nil {
		return "?"
	}
	if layer.Name == "" {
		return fmt.Sprintf("#%d", v.active)
	}
	return layer.Name
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	v.renderer.Render(screen, mapengine.Frame{
		Map:             v.m,
		Geometry:        v.geom,
		View:            v.view,
		ActiveLayer:     v.active,
		ShowCoordinates: v.showCoords,
		Visibility:      v.visibility,
	})

	if v.showHUD {
		v.drawHUD(screen)
	}
}

func (v *Viewer) drawHUD(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen,
		fmt.Sprintf("zoom: %.2fx  rot: %.0f  layer: %s", v.view.Zoom, v.view.Rotation, v.activeLayerName()),
		6, 6)

	o := v.hoveredOffset()
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("cell: %d,%d", o.Col, o.Row), 6, 22)

	if v.status != "" {
		ebitenutil.DebugPrintAt(screen, v.status, 6, 38)
	}

	ebitenutil.DebugPrintAt(screen,
		"wasd pan  rmb drag  wheel zoom  q/e rotate  tab layer  f fog  g grid  o objects  t text  c copy cell  h hud",
		6, v.height-18)
}

func (v *Viewer) Layout(_, _ int) (int, int) {
	return v.width, v.height
}
