package ndvi

import (
	"fmt"
	"math"
)

// Recommendation cut points on the field average
const (
	healthyAverage   = 0.60
	cautionAverage   = 0.40
	stressPercentCap = 20.0
)

// Recommend turns the field average and stressed share into guidance text
func Recommend(avgNDVI, stressPercent float64) string {
	var text string
	switch {
	case avgNDVI > healthyAverage:
		text = fmt.Sprintf("Vegetation is healthy (NDVI %.2f). Keep the current care routine and plan the next fertilization.", avgNDVI)
	case avgNDVI > cautionAverage:
		text = fmt.Sprintf("Vegetation vigor is moderate (NDVI %.2f). Inspect the field for signs of water deficit.", avgNDVI)
	default:
		text = fmt.Sprintf("Vegetation is in critical condition (NDVI %.2f). Urgent irrigation and crop protection are required.", avgNDVI)
	}

	if stressPercent > stressPercentCap {
		text += fmt.Sprintf("\nStress zones cover %d%% of the field. Apply targeted treatment to the affected areas.", int(math.Round(stressPercent)))
	}

	return text
}
