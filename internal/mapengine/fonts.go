package mapengine

import (
	"bytes"
	"fmt"
	"strings"

	text "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// FontLibrary resolves map font-face names to text faces. Unknown names fall
// back to the regular face so a label never fails to render.
type FontLibrary struct {
	sources  map[string]*text.GoTextFaceSource
	fallback *text.GoTextFaceSource
}

// NewFontLibrary builds the library with the built-in Go faces registered
// under their conventional map-file names.
func NewFontLibrary() (*FontLibrary, error) {
	regular, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("load regular face: %w", err)
	}
	bold, err := text.NewGoTextFaceSource(bytes.NewReader(gobold.TTF))
	if err != nil {
		return nil, fmt.Errorf("load bold face: %w", err)
	}
	mono, err := text.NewGoTextFaceSource(bytes.NewReader(gomono.TTF))
	if err != nil {
		return nil, fmt.Errorf("load mono face: %w", err)
	}
	return &FontLibrary{
		sources: map[string]*text.GoTextFaceSource{
			"regular": regular,
			"serif":   regular,
			"bold":    bold,
			"heading": bold,
			"mono":    mono,
			"runes":   mono,
		},
		fallback: regular,
	}, nil
}

// Register adds or replaces a named face source.
func (f *FontLibrary) Register(name string, src *text.GoTextFaceSource) {
	if f == nil || src == nil {
		return
	}
	f.sources[strings.ToLower(name)] = src
}

// Face resolves a face name and size to a drawable text face.
func (f *FontLibrary) Face(name string, size float64) *text.GoTextFace {
	if size <= 0 {
		size = 12
	}
	src := f.fallback
	if s, ok := f.sources[strings.ToLower(name)]; ok {
		src = s
	}
	return &text.GoTextFace{Source: src, Size: size}
}
