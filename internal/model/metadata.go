package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Brownie44l1/soil-api/internal/soil"
)

const (
	DefaultImageSize  = 224
	DefaultInputName  = "input"
	DefaultOutputName = "output"
)

// NewMetadata builds metadata for a square RGB image classifier over the soil classes.
func NewMetadata(inputName, outputName string, imageSize int, layout Layout) Metadata {
	m := Metadata{
		InputName:  inputName,
		OutputName: outputName,
		ImageSize:  imageSize,
		Layout:     layout,
	}
	return m.withDefaults()
}

func (m Metadata) withDefaults() Metadata {
	if m.InputName == "" {
		m.InputName = DefaultInputName
	}
	if m.OutputName == "" {
		m.OutputName = DefaultOutputName
	}
	if m.ImageSize == 0 {
		m.ImageSize = DefaultImageSize
	}
	if m.Layout == "" {
		m.Layout = LayoutNHWC
	}
	size := int64(m.ImageSize)
	if len(m.InputShape) == 0 {
		if m.Layout == LayoutNCHW {
			m.InputShape = []int64{1, 3, size, size}
		} else {
			m.InputShape = []int64{1, size, size, 3}
		}
	}
	if len(m.OutputShape) == 0 {
		m.OutputShape = []int64{1, int64(len(soil.Classes()))}
	}
	if len(m.Classes) == 0 {
		for _, c := range soil.Classes() {
			m.Classes = append(m.Classes, string(c))
		}
	}
	return m
}

// InputSize is the number of float32 values one input tensor holds.
func (m Metadata) InputSize() int {
	return shapeSize(m.InputShape)
}

// Validate checks the metadata against the image size and the soil class order.
func (m Metadata) Validate() error {
	if m.Layout != LayoutNHWC && m.Layout != LayoutNCHW {
		return fmt.Errorf("unknown layout %q", m.Layout)
	}
	if m.ImageSize <= 0 {
		return fmt.Errorf("image size must be positive, got %d", m.ImageSize)
	}
	if got, want := m.InputSize(), 3*m.ImageSize*m.ImageSize; got != want {
		return fmt.Errorf("input shape %v holds %d values, expected %d for a %dx%d RGB image",
			m.InputShape, got, want, m.ImageSize, m.ImageSize)
	}
	known := soil.Classes()
	if len(m.Classes) != len(known) {
		return fmt.Errorf("expected %d classes, got %d", len(known), len(m.Classes))
	}
	for i, c := range m.Classes {
		if c != string(known[i]) {
			return fmt.Errorf("class %d is %q, expected %q", i, c, known[i])
		}
	}
	if got := shapeSize(m.OutputShape); got != len(known) {
		return fmt.Errorf("output shape %v holds %d values, expected %d", m.OutputShape, got, len(known))
	}
	return nil
}

// ReadMetadata parses a model structure file. Missing fields fall back to defaults.
func ReadMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Metadata{}, Wrap(KindMissingFile, "read structure", err)
		}
		return Metadata{}, Wrap(KindLoad, "read structure", err)
	}

	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return Metadata{}, Wrap(KindLoad, "parse structure", fmt.Errorf("%s: %w", path, err))
	}
	m = m.withDefaults()
	if err := m.Validate(); err != nil {
		return Metadata{}, Wrap(KindLoad, "validate structure", err)
	}
	return m, nil
}

func shapeSize(shape []int64) int {
	if len(shape) == 0 {
		return 0
	}
	n := 1
	for _, d := range shape {
		n *= int(d)
	}
	return n
}
