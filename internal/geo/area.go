package geo

import (
	"agroscan/internal/models"
	"math"

	"github.com/golang/geo/s2"
)

// earthRadiusMeters is the mean Earth radius used to scale steradians
const earthRadiusMeters = 6371008.8

// collinearTolerance is the share of the box area below which a ring is a line
const collinearTolerance = 1e-9

// AreaHectares returns the spherical area enclosed by the polygon ring.
// A closing vertex equal to the first one is ignored, and rings with fewer
// than three distinct vertices have no area.
func AreaHectares(polygon models.Polygon) float64 {
	pts := make([]s2.Point, 0, len(polygon))
	for i, p := range polygon {
		if len(p) < 2 {
			continue
		}
		if i == len(polygon)-1 && len(polygon) > 1 && samePosition(p, polygon[0]) {
			continue
		}
		pt := s2.PointFromLatLng(s2.LatLngFromDegrees(p[1], p[0]))
		if len(pts) > 0 && pts[len(pts)-1] == pt {
			continue
		}
		pts = append(pts, pt)
	}
	if len(pts) < 3 {
		return 0
	}
	box := BoundingBoxOf(polygon)
	if !HasExtent(box) {
		return 0
	}
	// a straight lng/lat line is not a great circle, so s2 would enclose a sliver
	span := (box.MaxLng - box.MinLng) * (box.MaxLat - box.MinLat)
	if math.Abs(planarArea(polygon)) <= collinearTolerance*span {
		return 0
	}

	loop := s2.LoopFromPoints(pts)
	loop.Normalize()

	return loop.Area() * earthRadiusMeters * earthRadiusMeters / 10000
}

// planarArea is the shoelace area of the ring in square degrees
func planarArea(polygon models.Polygon) float64 {
	pts := make([][]float64, 0, len(polygon))
	for _, p := range polygon {
		if len(p) >= 2 {
			pts = append(pts, p)
		}
	}
	sum := 0.0
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i][0]*pts[j][1] - pts[j][0]*pts[i][1]
	}
	return sum / 2
}

func samePosition(a, b []float64) bool {
	return len(a) >= 2 && len(b) >= 2 && a[0] == b[0] && a[1] == b[1]
}
