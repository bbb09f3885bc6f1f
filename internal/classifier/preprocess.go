package classifier

import (
	"image"
	"image/color"

	"github.com/nfnt/resize"

	"github.com/Brownie44l1/soil-api/internal/model"
)

// Preprocess resizes img to size x size, scales every channel to [0,1] and
// adds a batch axis of 1.
func Preprocess(img image.Image, size int, layout model.Layout) model.Tensor {
	resized := resize.Resize(uint(size), uint(size), img, resize.Bilinear)

	bounds := resized.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	plane := width * height

	data := make([]float32, 3*plane)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(resized.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			r := float32(c.R) / 255.0
			g := float32(c.G) / 255.0
			b := float32(c.B) / 255.0

			pixelIndex := y*width + x
			if layout == model.LayoutNCHW {
				data[pixelIndex] = r
				data[plane+pixelIndex] = g
				data[2*plane+pixelIndex] = b
			} else {
				data[3*pixelIndex] = r
				data[3*pixelIndex+1] = g
				data[3*pixelIndex+2] = b
			}
		}
	}

	shape := []int64{1, int64(height), int64(width), 3}
	if layout == model.LayoutNCHW {
		shape = []int64{1, 3, int64(height), int64(width)}
	}
	return model.Tensor{Shape: shape, Data: data}
}
