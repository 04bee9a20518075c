package imagery

import (
	"agroscan/internal/models"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"time"
)

// noData is the PNG sample reserved for pixels without a reading
const noData = 255

const rasterEvalscript = `//VERSION=3
function setup() {
  return {
    input: [{ bands: ["B04", "B08", "dataMask"] }],
    output: { bands: 1, sampleType: "UINT8" },
    mosaicking: "ORBIT"
  };
}
function evaluatePixel(samples) {
  for (let i = 0; i < samples.length; i++) {
    let s = samples[i];
    if (s.dataMask === 1) {
      let ndvi = (s.B08 - s.B04) / (s.B08 + s.B04);
      return [Math.round((ndvi + 1) * 127)];
    }
  }
  return [255];
}`

type processRequest struct {
	Input      input         `json:"input"`
	Output     processOutput `json:"output"`
	Evalscript string        `json:"evalscript"`
}

type processOutput struct {
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Responses []processResponse `json:"responses"`
}

type processResponse struct {
	Identifier string `json:"identifier"`
	Format     struct {
		Type string `json:"type"`
	} `json:"format"`
}

// FetchRaster returns the most recent cloud-filtered NDVI raster of the box
func (c *Client) FetchRaster(ctx context.Context, bbox models.BoundingBox, from, to time.Time) (*models.Raster, error) {
	tr := newTimeRange(from, to)

	var resp processResponse
	resp.Identifier = "default"
	resp.Format.Type = "image/png"

	req := processRequest{
		Input: c.input(bbox, &tr),
		Output: processOutput{
			Width:     c.width,
			Height:    c.height,
			Responses: []processResponse{resp},
		},
		Evalscript: rasterEvalscript,
	}

	body, err := c.post(ctx, CapabilityRaster, processPath, "image/png", req)
	if err != nil {
		return nil, err
	}

	return decodeRaster(body)
}

// decodeRaster turns an encoded single-band PNG into a south-first raster
func decodeRaster(body []byte) (*models.Raster, error) {
	img, err := png.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to decode raster: %w", err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	raster := &models.Raster{
		Width:  w,
		Height: h,
		Values: make([]float64, w*h),
	}

	for y := 0; y < h; y++ {
		// image rows run north to south
		row := h - 1 - y
		for x := 0; x < w; x++ {
			raster.Values[row*w+x] = decodeSample(sampleAt(img, b.Min.X+x, b.Min.Y+y))
		}
	}

	return raster, nil
}

func sampleAt(img image.Image, x, y int) uint8 {
	if gray, ok := img.(*image.Gray); ok {
		return gray.GrayAt(x, y).Y
	}
	return color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
}

func decodeSample(v uint8) float64 {
	if v == noData {
		return math.NaN()
	}
	return float64(v)/127 - 1
}
