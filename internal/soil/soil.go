// Package soil holds the fixed soil classes the model predicts and the
// crop recommendations attached to each of them.
package soil

import "fmt"

type Class string

const (
	Aluvial Class = "Tanah Aluvial"
	Hitam   Class = "Tanah Hitam"
	Liat    Class = "Tanah Liat"
	Merah   Class = "Tanah Merah"
)

// classes must follow the label order the model was trained with.
var classes = [...]Class{Aluvial, Hitam, Liat, Merah}

// Classes returns the soil classes in model output order.
func Classes() []Class {
	out := make([]Class, len(classes))
	copy(out, classes[:])
	return out
}

// ClassAt maps a model output index to its class.
func ClassAt(i int) (Class, error) {
	if i < 0 || i >= len(classes) {
		return "", fmt.Errorf("class index %d out of range [0, %d)", i, len(classes))
	}
	return classes[i], nil
}

// ParseClass returns the class whose label equals s.
func ParseClass(s string) (Class, bool) {
	for _, c := range classes {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

func (c Class) String() string {
	return string(c)
}
