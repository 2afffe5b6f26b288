package mapengine

import (
	_ "image/jpeg" // register decoders for ebitenutil.NewImageFromFile
	_ "image/png"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// ImageCache resolves image paths to loaded textures. A nil result means
// "not ready, skip this frame"; the renderer retries automatically on the
// next render once the load has completed. Load failures are remembered so a
// broken path is not re-read every frame.
type ImageCache struct {
	loaded map[string]*ebiten.Image
	failed map[string]struct{}
}

// NewImageCache creates an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		loaded: make(map[string]*ebiten.Image),
		failed: make(map[string]struct{}),
	}
}

// Get returns the cached image for path, loading it on first use. Returns
// nil for empty paths, pending loads that failed, or unknown formats - the
// caller skips the visual element rather than erroring.
func (c *ImageCache) Get(path string) *ebiten.Image {
	if c == nil || path == "" {
		return nil
	}
	if img, ok := c.loaded[path]; ok {
		return img
	}
	if _, ok := c.failed[path]; ok {
		return nil
	}
	img, _, err := ebitenutil.NewImageFromFile(path)
	if err != nil {
		c.failed[path] = struct{}{}
		return nil
	}
	c.loaded[path] = img
	return img
}

// Put inserts a pre-decoded image, used by tests and embedded assets.
func (c *ImageCache) Put(path string, img *ebiten.Image) {
	if c == nil || path == "" || img == nil {
		return
	}
	c.loaded[path] = img
	delete(c.failed, path)
}

// Forget drops a cache entry so the next Get retries the load.
func (c *ImageCache) Forget(path string) {
	if c == nil {
		return
	}
	delete(c.loaded, path)
	delete(c.failed, path)
}
