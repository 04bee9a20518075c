package ndvi

import "agroscan/internal/models"

// BuildGrid tiles the bounding box into GridSize x GridSize cells, attaching
// matrix[j][i] to the cell in longitude column i and latitude row j. Each
// ring is counter-clockwise and closed. The returned average is the mean of
// the cell values, which can differ from the whole-raster mean.
func BuildGrid(bbox models.BoundingBox, matrix models.GridMatrix) ([]models.Feature, float64) {
	const n = models.GridSize
	stepX := (bbox.MaxLng - bbox.MinLng) / n
	stepY := (bbox.MaxLat - bbox.MinLat) / n

	features := make([]models.Feature, 0, n*n)
	values := make([]float64, 0, n*n)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x0 := bbox.MinLng + float64(i)*stepX
			y0 := bbox.MinLat + float64(j)*stepY
			x1 := x0 + stepX
			y1 := y0 + stepY

			value := matrix[j][i]
			label, color := ClassifyCell(value)

			features = append(features, models.Feature{
				Type: "Feature",
				Geometry: models.Geometry{
					Type: "Polygon",
					Coordinates: [][][2]float64{{
						{x0, y0},
						{x1, y0},
						{x1, y1},
						{x0, y1},
						{x0, y0},
					}},
				},
				Properties: models.CellProperties{
					NDVI:   value,
					Health: label,
					Color:  color,
				},
			})
			values = append(values, value)
		}
	}

	return features, calculateMean(values)
}
