package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/veldrane/gridwarden/internal/mapengine"
	"github.com/veldrane/gridwarden/internal/mapfile"
	"github.com/veldrane/gridwarden/internal/viewer"
)

func main() {
	var mapPath string
	var width, height int
	var noBlur bool

	flag.StringVar(&mapPath, "map", "", "path to the map JSON file")
	flag.IntVar(&width, "width", 1280, "window width")
	flag.IntVar(&height, "height", 800, "window height")
	flag.BoolVar(&noBlur, "no-blur", false, "disable fog edge softening")
	flag.Parse()

	if mapPath == "" {
		log.Fatal("-map is required")
	}

	doc, err := mapfile.Load(mapPath)
	if err != nil {
		log.Fatal(err)
	}
	g, m, err := mapfile.Build(doc)
	if err != nil {
		log.Fatal(err)
	}

	fonts, err := mapengine.NewFontLibrary()
	if err != nil {
		log.Fatal(err)
	}

	var blur mapengine.BlurStrategy = mapengine.OffscreenTapBlur{Radius: 2}
	if noBlur {
		blur = mapengine.DirectComposite{}
	}

	r := mapengine.NewRenderer(mapengine.Config{
		Theme:  mapengine.DefaultTheme(),
		Images: mapengine.NewImageCache(),
		Fonts:  fonts,
		Blur:   blur,
	})

	title := doc.Name
	if title == "" {
		title = mapPath
	}
	ebiten.SetWindowTitle("Gridwarden - " + title)
	ebiten.SetWindowSize(width, height)
	if err := ebiten.RunGame(viewer.New(viewer.Config{
		Geometry: g,
		Map:      m,
		Renderer: r,
		Width:    width,
		Height:   height,
	})); err != nil {
		log.Fatal(err)
	}
}
