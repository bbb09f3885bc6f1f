// Package render formats classification results for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Brownie44l1/soil-api/internal/soil"
)

const columnWidth = 36

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	cardStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1).Width(columnWidth)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

// Result renders the soil class, its score and a two-column crop gallery.
func Result(class soil.Class, confidence float32, recs []soil.Recommendation) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Jenis Tanah: ") + labelStyle.Render(string(class)))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  (%.1f%%)", confidence*100)))
	b.WriteString("\n\n")
	b.WriteString(titleStyle.Render("Rekomendasi Tanaman:"))
	b.WriteString("\n")
	b.WriteString(Gallery(recs))
	if desc := soil.Describe(class); desc != "" {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(desc))
	}
	b.WriteString("\n")
	return b.String()
}

// Gallery lays recommendations out in two columns, alternating left and right.
func Gallery(recs []soil.Recommendation) string {
	if len(recs) == 0 {
		return mutedStyle.Render("(tidak ada rekomendasi)")
	}
	var left, right []string
	for i, r := range recs {
		card := cardStyle.Render(r.Name + "\n" + mutedStyle.Render(r.Image))
		if i%2 == 0 {
			left = append(left, card)
		} else {
			right = append(right, card)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.JoinVertical(lipgloss.Left, left...),
		lipgloss.JoinVertical(lipgloss.Left, right...),
	)
}

// Classes renders the ordered soil class list.
func Classes(classes []soil.Class) string {
	lines := make([]string, len(classes))
	for i, c := range classes {
		lines[i] = fmt.Sprintf("%d. %s", i, c)
	}
	return strings.Join(lines, "\n") + "\n"
}

func Error(err error) string {
	return errorStyle.Render("Error: "+err.Error()) + "\n"
}
