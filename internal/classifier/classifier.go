// Package classifier turns a decoded soil photo into one of the soil classes.
package classifier

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/Brownie44l1/soil-api/internal/model"
	"github.com/Brownie44l1/soil-api/internal/soil"
)

type Result struct {
	Soil        soil.Class
	Confidence  float32
	Predictions map[string]float32
}

type Classifier struct {
	model    model.Model
	metadata model.Metadata
}

func New(m model.Model, metadata model.Metadata) *Classifier {
	return &Classifier{model: m, metadata: metadata}
}

func (c *Classifier) Metadata() model.Metadata {
	return c.metadata
}

// Classify returns the soil class predicted for img.
func (c *Classifier) Classify(img image.Image) (soil.Class, error) {
	res, err := c.Predict(img)
	if err != nil {
		return "", err
	}
	return res.Soil, nil
}

// Predict classifies img and also reports the per-class scores.
func (c *Classifier) Predict(img image.Image) (*Result, error) {
	if img == nil {
		return nil, model.Errorf(model.KindPreprocess, "preprocess", "no image")
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, model.Errorf(model.KindPreprocess, "preprocess", "empty image %dx%d", b.Dx(), b.Dy())
	}
	return c.PredictTensor(Preprocess(img, c.metadata.ImageSize, c.metadata.Layout))
}

// PredictTensor runs inference on an already preprocessed tensor.
func (c *Classifier) PredictTensor(input model.Tensor) (*Result, error) {
	scores, err := c.model.Predict(input)
	if err != nil {
		return nil, model.Wrap(model.KindInference, "predict", err)
	}

	idx, err := argmax(scores)
	if err != nil {
		return nil, model.Wrap(model.KindInference, "argmax", err)
	}
	class, err := soil.ClassAt(idx)
	if err != nil {
		return nil, model.Wrap(model.KindInference, "label", err)
	}

	predictions := make(map[string]float32)
	for i, val := range scores {
		if label, err := soil.ClassAt(i); err == nil {
			predictions[string(label)] = val
		}
	}

	return &Result{
		Soil:        class,
		Confidence:  scores[idx],
		Predictions: predictions,
	}, nil
}

// argmax returns the index of the largest score. Ties go to the lowest index.
func argmax(scores []float32) (int, error) {
	if len(scores) == 0 {
		return 0, errors.New("model returned no scores")
	}
	maxIdx := 0
	maxVal := scores[0]
	for i, val := range scores {
		if math.IsNaN(float64(val)) {
			return 0, fmt.Errorf("model returned NaN score at index %d", i)
		}
		if val > maxVal {
			maxVal = val
			maxIdx = i
		}
	}
	return maxIdx, nil
}
