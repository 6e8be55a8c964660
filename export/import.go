package export

import (
	"fmt"

	"github.com/gogpu/ink/geom"
	"github.com/gogpu/ink/stroke"
)

// ImportBitmap validates encoded PNG or JPEG bytes and wraps them in an
// image stroke at natural size, anchored at pos. The caller inserts the
// result into a document.
func ImportBitmap(data []byte, pos geom.Point) (*stroke.Stroke, error) {
	format, w, h, err := stroke.DecodeInfo(data)
	if err != nil {
		return nil, fmt.Errorf("export: importing bitmap: %w", err)
	}
	return stroke.NewImage(data, format, w, h, pos), nil
}
