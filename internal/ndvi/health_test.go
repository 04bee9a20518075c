package ndvi

import "testing"

func TestClassifyCell(t *testing.T) {
	tests := []struct {
		ndvi      float64
		wantLabel string
		wantColor string
	}{
		{0.95, CellExcellent, ColorExcellent},
		{0.70, CellExcellent, ColorExcellent},
		{0.6999, CellGood, ColorGood},
		{0.55, CellGood, ColorGood},
		{0.5499, CellModerate, ColorModerate},
		{0.40, CellModerate, ColorModerate},
		{0.3999, CellPoor, ColorPoor},
		{0.25, CellPoor, ColorPoor},
		{0.2499, CellCritical, ColorCritical},
		{0, CellCritical, ColorCritical},
		{-0.8, CellCritical, ColorCritical},
	}

	for _, tt := range tests {
		label, color := ClassifyCell(tt.ndvi)
		if label != tt.wantLabel {
			t.Errorf("ClassifyCell(%v) label = %v, want %v", tt.ndvi, label, tt.wantLabel)
		}
		if color != tt.wantColor {
			t.Errorf("ClassifyCell(%v) color = %v, want %v", tt.ndvi, color, tt.wantColor)
		}
	}
}

func TestClassifyOverall(t *testing.T) {
	tests := []struct {
		ndvi float64
		want string
	}{
		{0.81, OverallExcellent},
		{0.70, OverallExcellent},
		{0.55, OverallGood},
		{0.40, OverallModerate},
		{0.25, OverallPoor},
		{0.1, OverallCritical},
	}

	for _, tt := range tests {
		if got := ClassifyOverall(tt.ndvi); got != tt.want {
			t.Errorf("ClassifyOverall(%v) = %v, want %v", tt.ndvi, got, tt.want)
		}
	}
}

func TestLevelFor_OrderedBuckets(t *testing.T) {
	prev := LevelFor(-1)
	seen := map[HealthLevel]bool{prev: true}
	for v := -1.0; v <= 1.0; v += 0.001 {
		level := LevelFor(v)
		if level < prev {
			t.Fatalf("LevelFor(%v) = %v, lower than previous %v", v, level, prev)
		}
		prev = level
		seen[level] = true
	}

	if len(seen) != 5 {
		t.Errorf("Expected 5 distinct buckets, got %d", len(seen))
	}
}

func TestHealthLevel_WordingsDiffer(t *testing.T) {
	levels := []HealthLevel{LevelCritical, LevelPoor, LevelModerate, LevelGood, LevelExcellent}
	for _, l := range levels {
		if l.CellLabel() == l.OverallLabel() {
			t.Errorf("level %d uses the same wording %q for cell and summary", l, l.CellLabel())
		}
	}
}
