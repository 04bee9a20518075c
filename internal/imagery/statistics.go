package imagery

import (
	"agroscan/internal/models"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

const seriesEvalscript = `//VERSION=3
function setup() {
  return {
    input: [{ bands: ["B04", "B08", "dataMask"] }],
    output: [
      { id: "ndvi", bands: 1, sampleType: "FLOAT32" },
      { id: "dataMask", bands: 1 }
    ]
  };
}
function evaluatePixel(s) {
  let ndvi = (s.B08 - s.B04) / (s.B08 + s.B04);
  return { ndvi: [ndvi], dataMask: [s.dataMask] };
}`

type statisticsRequest struct {
	Input       input                  `json:"input"`
	Aggregation aggregation            `json:"aggregation"`
	Calculation map[string]interface{} `json:"calculations"`
}

type aggregation struct {
	TimeRange           timeRange `json:"timeRange"`
	AggregationInterval struct {
		Of string `json:"of"`
	} `json:"aggregationInterval"`
	Evalscript string `json:"evalscript"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

type statisticsResponse struct {
	Data []struct {
		Interval struct {
			From string `json:"from"`
		} `json:"interval"`
		Outputs struct {
			NDVI struct {
				Bands struct {
					B0 struct {
						Stats struct {
							Mean statValue `json:"mean"`
						} `json:"stats"`
					} `json:"B0"`
				} `json:"bands"`
			} `json:"ndvi"`
		} `json:"outputs"`
	} `json:"data"`
}

// statValue accepts a JSON number or the string "NaN" the provider sends
// for intervals without valid pixels.
type statValue float64

func (v *statValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = statValue(math.NaN())
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*v = statValue(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("stat value %s: %w", string(data), err)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("stat value %q: %w", s, err)
	}
	*v = statValue(f)
	return nil
}

// FetchSeries returns daily mean NDVI over the box. Days without valid
// pixels are dropped.
func (c *Client) FetchSeries(ctx context.Context, bbox models.BoundingBox, from, to time.Time) ([]models.Observation, error) {
	req := statisticsRequest{
		Input:       c.input(bbox, nil),
		Calculation: map[string]interface{}{"default": struct{}{}},
	}
	req.Aggregation.TimeRange = newTimeRange(from, to)
	req.Aggregation.AggregationInterval.Of = "P1D"
	req.Aggregation.Evalscript = seriesEvalscript
	req.Aggregation.Width = c.width
	req.Aggregation.Height = c.height

	body, err := c.post(ctx, CapabilitySeries, statisticsPath, "application/json", req)
	if err != nil {
		return nil, err
	}

	return decodeStatistics(body)
}

func decodeStatistics(body []byte) ([]models.Observation, error) {
	var resp statisticsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode statistics: %w", err)
	}

	observations := make([]models.Observation, 0, len(resp.Data))
	for _, d := range resp.Data {
		mean := float64(d.Outputs.NDVI.Bands.B0.Stats.Mean)
		if !models.IsValidNDVI(mean) {
			continue
		}

		date, err := time.Parse(time.RFC3339, d.Interval.From)
		if err != nil {
			return nil, fmt.Errorf("failed to parse interval %q: %w", d.Interval.From, err)
		}

		observations = append(observations, models.Observation{Date: date, NDVI: mean})
	}

	return observations, nil
}
