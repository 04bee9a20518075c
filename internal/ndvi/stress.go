package ndvi

import "agroscan/internal/models"

// StressThreshold is the NDVI below which a cell counts as a stress zone
const StressThreshold = 0.30

// DetectStressZones returns the cells strictly below StressThreshold and the
// share of the grid they cover, in percent.
func DetectStressZones(grid []models.Feature) ([]models.Feature, float64) {
	zones := make([]models.Feature, 0)
	if len(grid) == 0 {
		return zones, 0
	}

	for _, cell := range grid {
		if cell.Properties.NDVI < StressThreshold {
			zones = append(zones, cell)
		}
	}

	return zones, 100 * float64(len(zones)) / float64(len(grid))
}
