package geo

import (
	"agroscan/internal/models"

	"github.com/golang/geo/r2"
)

// PaddingRatio is the share of each axis span added on both sides of the box
const PaddingRatio = 0.1

// BoundingBoxOf returns the padded bounding box of a polygon. Each axis is
// padded by PaddingRatio of its own span, so a polygon whose points are all
// identical yields a zero-size box.
func BoundingBoxOf(polygon models.Polygon) models.BoundingBox {
	if len(polygon) == 0 {
		return models.BoundingBox{}
	}

	pts := make([]r2.Point, 0, len(polygon))
	for _, p := range polygon {
		if len(p) < 2 {
			continue
		}
		pts = append(pts, r2.Point{X: p[0], Y: p[1]})
	}

	raw := r2.RectFromPoints(pts...)
	size := raw.Size()
	padded := raw.Expanded(r2.Point{X: size.X * PaddingRatio, Y: size.Y * PaddingRatio})

	return models.BoundingBox{
		MinLng: padded.X.Lo,
		MinLat: padded.Y.Lo,
		MaxLng: padded.X.Hi,
		MaxLat: padded.Y.Hi,
	}
}

// HasExtent reports whether the box spans a non-zero range on both axes
func HasExtent(b models.BoundingBox) bool {
	return b.MaxLng > b.MinLng && b.MaxLat > b.MinLat
}
