package ndvi

// Health buckets, lower bounds inclusive
const (
	ExcellentThreshold = 0.70
	GoodThreshold      = 0.55
	ModerateThreshold  = 0.40
	PoorThreshold      = 0.25
)

// Per-cell labels
const (
	CellExcellent = "excellent"
	CellGood      = "good"
	CellModerate  = "moderate"
	CellPoor      = "poor"
	CellCritical  = "critical"
)

// Labels used for the overall summary of a field
const (
	OverallExcellent = "excellent condition"
	OverallGood      = "good condition"
	OverallModerate  = "moderate condition"
	OverallPoor      = "poor condition"
	OverallCritical  = "critical condition"
)

// Display colors
const (
	ColorExcellent = "#2e7d32"
	ColorGood      = "#7cb342"
	ColorModerate  = "#fbc02d"
	ColorPoor      = "#f57c00"
	ColorCritical  = "#d32f2f"
)

// HealthLevel is one of the five ordered NDVI buckets
type HealthLevel int

const (
	LevelCritical HealthLevel = iota
	LevelPoor
	LevelModerate
	LevelGood
	LevelExcellent
)

// LevelFor places an NDVI value in its bucket
func LevelFor(ndvi float64) HealthLevel {
	switch {
	case ndvi >= ExcellentThreshold:
		return LevelExcellent
	case ndvi >= GoodThreshold:
		return LevelGood
	case ndvi >= ModerateThreshold:
		return LevelModerate
	case ndvi >= PoorThreshold:
		return LevelPoor
	default:
		return LevelCritical
	}
}

// CellLabel returns the per-cell wording of the level
func (l HealthLevel) CellLabel() string {
	switch l {
	case LevelExcellent:
		return CellExcellent
	case LevelGood:
		return CellGood
	case LevelModerate:
		return CellModerate
	case LevelPoor:
		return CellPoor
	default:
		return CellCritical
	}
}

// OverallLabel returns the summary wording of the level
func (l HealthLevel) OverallLabel() string {
	switch l {
	case LevelExcellent:
		return OverallExcellent
	case LevelGood:
		return OverallGood
	case LevelModerate:
		return OverallModerate
	case LevelPoor:
		return OverallPoor
	default:
		return OverallCritical
	}
}

// Color returns the display color of the level
func (l HealthLevel) Color() string {
	switch l {
	case LevelExcellent:
		return ColorExcellent
	case LevelGood:
		return ColorGood
	case LevelModerate:
		return ColorModerate
	case LevelPoor:
		return ColorPoor
	default:
		return ColorCritical
	}
}

// ClassifyCell returns the label and color of a single grid cell
func ClassifyCell(ndvi float64) (label, color string) {
	level := LevelFor(ndvi)
	return level.CellLabel(), level.Color()
}

// ClassifyOverall returns the summary label for a field average
func ClassifyOverall(ndvi float64) string {
	return LevelFor(ndvi).OverallLabel()
}
