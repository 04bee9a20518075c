package ndvi

import "agroscan/internal/models"

// Aggregate reduces a raster to a GridSize x GridSize matrix of block means.
// Block (r, c) covers rows floor(r*H/N) up to floor((r+1)*H/N) and columns
// floor(c*W/N) up to floor((c+1)*W/N), upper bounds exclusive. No-data
// pixels are skipped; a block without a single valid pixel is 0.
func Aggregate(raster *models.Raster) models.GridMatrix {
	var grid models.GridMatrix
	if !raster.WellFormed() {
		return grid
	}

	const n = models.GridSize
	for r := 0; r < n; r++ {
		rowLo := r * raster.Height / n
		rowHi := (r + 1) * raster.Height / n
		for c := 0; c < n; c++ {
			colLo := c * raster.Width / n
			colHi := (c + 1) * raster.Width / n

			sum := 0.0
			count := 0
			for y := rowLo; y < rowHi; y++ {
				for x := colLo; x < colHi; x++ {
					v := raster.At(x, y)
					if !models.IsValidNDVI(v) {
						continue
					}
					sum += v
					count++
				}
			}

			if count > 0 {
				grid[r][c] = sum / float64(count)
			}
		}
	}

	return grid
}
