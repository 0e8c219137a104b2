package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"staygrip/internal/domain"
)

// PropertyRenderer handles rendering of result rows
type PropertyRenderer struct {
	styles *Styles
}

// NewPropertyRenderer creates a new property renderer
func NewPropertyRenderer(styles *Styles) *PropertyRenderer {
	return &PropertyRenderer{styles: styles}
}

// RenderProperty renders one listing as a single line
func (r *PropertyRenderer) RenderProperty(p domain.Property, isSelected bool, width int) string {
	bgColor := ""
	if isSelected {
		bgColor = "238"
	}
	withBg := func(s lipgloss.Style) lipgloss.Style {
		if bgColor != "" {
			return s.Background(lipgloss.Color(bgColor))
		}
		return s
	}

	cursor := "  "
	if isSelected {
		cursor = "▸ "
	}

	place := p.City
	if p.State != "" {
		place = fmt.Sprintf("%s, %s", p.City, p.State)
	}
	specs := fmt.Sprintf("%dbd %sba sleeps %d", p.Bedrooms, formatBaths(p.Bathrooms), p.Sleeps)

	parts := []string{
		withBg(lipgloss.NewStyle()).Render(cursor),
		withBg(r.styles.Price).Render(fmt.Sprintf("$%-5.0f", p.PricePerNight)),
		withBg(lipgloss.NewStyle()).Render(" "),
		withBg(lipgloss.NewStyle().Bold(isSelected)).Render(fmt.Sprintf("%-26s", truncate(place, 26))),
		withBg(r.styles.Dim).Render(fmt.Sprintf(" %-22s", specs)),
		withBg(lipgloss.NewStyle().Foreground(lipgloss.Color(ProviderColor(p.Provider)))).Render(fmt.Sprintf(" %-8s", p.Provider)),
	}
	if p.PetFriendly {
		parts = append(parts, withBg(r.styles.Filter).Render(" pets"))
	}

	line := strings.Join(parts, "")
	if width > 0 {
		headlineRoom := width - 4 - lipgloss.Width(line) - 1
		if headlineRoom > 8 && p.Headline != "" {
			line += withBg(r.styles.Dim).Render(" " + truncate(p.Headline, headlineRoom))
		}
	}
	return line
}

// RenderPlaceholder renders a grey row shown while a later page loads
func (r *PropertyRenderer) RenderPlaceholder(width int) string {
	w := width - 8
	if w < 20 {
		w = 20
	}
	if w > 72 {
		w = 72
	}
	return r.styles.Placeholder.Render("  " + strings.Repeat("░", w))
}

func formatBaths(b float64) string {
	if b == float64(int(b)) {
		return fmt.Sprintf("%d", int(b))
	}
	return fmt.Sprintf("%.1f", b)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}
