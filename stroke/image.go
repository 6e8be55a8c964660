package stroke

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	// Decoders for the bitmap formats an image stroke may embed.
	_ "image/jpeg"
	_ "image/png"
)

// imageCache decodes the embedded bitmap once. It lives behind a pointer so
// that derived stroke versions share the decode, and render workers can
// trigger it concurrently.
type imageCache struct {
	once sync.Once
	img  image.Image
	err  error
}

// Decoded returns the decoded pixels of the embedded bitmap. Decoding
// happens once; subsequent calls return the cached result. Safe for
// concurrent use.
func (im *Image) Decoded() (image.Image, error) {
	if im.dec == nil {
		// Strokes built by NewImage or Rebuild always carry a cache;
		// a hand-assembled payload decodes on the spot.
		img, _, err := image.Decode(bytes.NewReader(im.Data))
		return img, err
	}
	im.dec.once.Do(func() {
		im.dec.img, _, im.dec.err = image.Decode(bytes.NewReader(im.Data))
	})
	return im.dec.img, im.dec.err
}

// DecodeInfo validates encoded bitmap data and returns its format name and
// natural pixel size without decoding the pixels.
func DecodeInfo(data []byte) (format string, w, h int, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", 0, 0, fmt.Errorf("stroke: decoding image: %w", err)
	}
	return format, cfg.Width, cfg.Height, nil
}
