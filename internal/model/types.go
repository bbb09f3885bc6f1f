package model

import (
	"github.com/Brownie44l1/soil-api/internal/soil"
)

type Layout string

const (
	LayoutNHWC Layout = "nhwc"
	LayoutNCHW Layout = "nchw"
)

// Metadata describes the tensors the model expects. For the local strategy it
// is read from the structure file; for the remote strategy it comes from config.
type Metadata struct {
	InputName   string   `json:"input_name"`
	OutputName  string   `json:"output_name"`
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	Classes     []string `json:"classes"`
	ImageSize   int      `json:"image_size"`
	Layout      Layout   `json:"layout"`
}

// Tensor is a flat float32 buffer with its shape.
type Tensor struct {
	Shape []int64
	Data  []float32
}

// Model is a loaded classifier. Predict returns one score per soil class.
type Model interface {
	Predict(input Tensor) ([]float32, error)
}

type PredictionRequest struct {
	Image []float32 `json:"image"`
}

type PredictionResponse struct {
	ID              string                `json:"id,omitempty"`
	Soil            soil.Class            `json:"soil"`
	Confidence      float32               `json:"confidence"`
	Predictions     map[string]float32    `json:"predictions"`
	Recommendations []soil.Recommendation `json:"recommendations"`
	Description     string                `json:"description"`
}
