package classifier

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/Brownie44l1/soil-api/internal/model"
	"github.com/Brownie44l1/soil-api/internal/soil"
)

type fixedModel struct {
	scores []float32
	err    error
	inputs []model.Tensor
}

func (f *fixedModel) Predict(input model.Tensor) ([]float32, error) {
	f.inputs = append(f.inputs, input)
	return f.scores, f.err
}

func whiteImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func defaultMetadata() model.Metadata {
	return model.NewMetadata("", "", model.DefaultImageSize, model.LayoutNHWC)
}

func TestClassifyOneHot(t *testing.T) {
	cases := []struct {
		scores []float32
		want   soil.Class
	}{
		{[]float32{1, 0, 0, 0}, "Tanah Aluvial"},
		{[]float32{0, 1, 0, 0}, "Tanah Hitam"},
		{[]float32{0, 0, 1, 0}, "Tanah Liat"},
		{[]float32{0, 0, 0, 1}, "Tanah Merah"},
	}
	for _, tc := range cases {
		m := &fixedModel{scores: tc.scores}
		got, err := New(m, defaultMetadata()).Classify(whiteImage(10, 10))
		if err != nil {
			t.Fatalf("%v: unexpected error %v", tc.scores, err)
		}
		if got != tc.want {
			t.Fatalf("%v: expected %s, got %s", tc.scores, tc.want, got)
		}
		if len(m.inputs) != 1 || len(m.inputs[0].Data) != 224*224*3 {
			t.Fatalf("model received unexpected input")
		}
	}
}

func TestClassifyTieGoesToLowestIndex(t *testing.T) {
	m := &fixedModel{scores: []float32{0.1, 0.4, 0.1, 0.4}}
	got, err := New(m, defaultMetadata()).Classify(whiteImage(4, 4))
	if err != nil {
		t.Fatal(err)
	}
	if got != soil.Hitam {
		t.Fatalf("expected Tanah Hitam, got %s", got)
	}
}

func TestPredictReportsScores(t *testing.T) {
	m := &fixedModel{scores: []float32{0.1, 0.2, 0.6, 0.1}}
	res, err := New(m, defaultMetadata()).Predict(whiteImage(8, 8))
	if err != nil {
		t.Fatal(err)
	}
	if res.Soil != soil.Liat || res.Confidence != 0.6 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(res.Predictions) != 4 || res.Predictions["Tanah Aluvial"] != 0.1 {
		t.Fatalf("unexpected predictions %v", res.Predictions)
	}
}

func TestClassifyErrors(t *testing.T) {
	cases := []struct {
		name  string
		model model.Model
		img   image.Image
		kind  model.Kind
	}{
		{"nil image", &fixedModel{scores: []float32{1, 0, 0, 0}}, nil, model.KindPreprocess},
		{"empty image", &fixedModel{scores: []float32{1, 0, 0, 0}}, image.NewRGBA(image.Rect(0, 0, 0, 0)), model.KindPreprocess},
		{"model error", &fixedModel{err: errors.New("session closed")}, whiteImage(2, 2), model.KindInference},
		{"no scores", &fixedModel{scores: nil}, whiteImage(2, 2), model.KindInference},
		{"index out of range", &fixedModel{scores: []float32{0, 0, 0, 0, 1}}, whiteImage(2, 2), model.KindInference},
		{"closed session", &fixedModel{err: model.ErrSessionClosed}, whiteImage(2, 2), model.KindInference},
		{"NaN score", &fixedModel{scores: []float32{0.1, float32(math.NaN()), 0.9, 0}}, whiteImage(2, 2), model.KindInference},
		{"NaN first", &fixedModel{scores: []float32{float32(math.NaN()), 0, 0, 1}}, whiteImage(2, 2), model.KindInference},
	}
	for _, tc := range cases {
		got, err := New(tc.model, defaultMetadata()).Classify(tc.img)
		if err == nil {
			t.Fatalf("%s: expected error, got %s", tc.name, got)
		}
		if !model.IsKind(err, tc.kind) {
			t.Fatalf("%s: expected %s error, got %v", tc.name, tc.kind, err)
		}
		if got != "" {
			t.Fatalf("%s: expected empty class on error, got %s", tc.name, got)
		}
	}
}

func TestClassifyClosedSessionKeepsCause(t *testing.T) {
	_, err := New(&fixedModel{err: model.ErrSessionClosed}, defaultMetadata()).Classify(whiteImage(2, 2))
	if !errors.Is(err, model.ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed in chain, got %v", err)
	}
}
