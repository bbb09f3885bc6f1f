package soil

import "fmt"

type Recommendation struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

var recommendations = map[Class][]Recommendation{
	Aluvial: {
		{Name: "Padi", Image: "https://example.com/padi.jpg"},
		{Name: "Gandum", Image: "https://example.com/gandum.jpg"},
		{Name: "Tebu", Image: "https://example.com/tebu.jpg"},
		{Name: "Kapas", Image: "https://example.com/kapas.jpg"},
	},
	Hitam: {
		{Name: "Kapas", Image: "https://example.com/kapas.jpg"},
		{Name: "Kacang Tanah", Image: "https://example.com/kacang.jpg"},
		{Name: "Bunga Matahari", Image: "https://example.com/sunflower.jpg"},
		{Name: "Millet", Image: "https://example.com/millet.jpg"},
	},
	Liat: {
		{Name: "Padi", Image: "https://example.com/padi.jpg"},
		{Name: "Jute", Image: "https://example.com/jute.jpg"},
		{Name: "Tebu", Image: "https://example.com/tebu.jpg"},
	},
	Merah: {
		{Name: "Millet", Image: "https://example.com/millet.jpg"},
		{Name: "Kacang-kacangan", Image: "https://example.com/beans.jpg"},
		{Name: "Kacang Tanah", Image: "https://example.com/kacang.jpg"},
		{Name: "Kentang", Image: "https://example.com/potato.jpg"},
	},
}

// Recommend returns the crops suggested for a soil label. Unknown labels get
// an empty list. The returned slice is a copy and safe to modify.
func Recommend(label string) []Recommendation {
	entries := recommendations[Class(label)]
	out := make([]Recommendation, len(entries))
	copy(out, entries)
	return out
}

// Describe returns the short note displayed under a classification result.
func Describe(c Class) string {
	if _, ok := recommendations[c]; !ok {
		return ""
	}
	return fmt.Sprintf("%s dikenal dengan ciri khas tertentu yang cocok untuk tanaman-tanaman tersebut.", c)
}
