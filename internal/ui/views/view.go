package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"staygrip/internal/domain"
	"staygrip/internal/searchstate"
)

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width  int
	Height int

	Address       string
	FilterSummary []string
	ActiveFilters int
	SortLabel     string

	Properties     []domain.Property
	Pagination     domain.PageInfo
	Searched       bool
	SelectedIndex  int
	ViewportOffset int
	ViewportHeight int

	Loading     domain.LoadingKind
	SpinnerView string

	StatusMessage string
	StatusIsError bool

	InputMode       string
	Prompt          string
	TextInput       string
	SortOptionIndex int
	ConfirmReset    bool

	ShowHelp         bool
	HelpContent      string
	HelpScrollOffset int
	HelpLine         string
}

// Renderer handles all view rendering
type Renderer struct {
	styles         *Styles
	propertyRender *PropertyRenderer
	popupRender    *PopupRenderer
}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	styles := NewStyles()
	return &Renderer{
		styles:         styles,
		propertyRender: NewPropertyRenderer(styles),
		popupRender:    NewPopupRenderer(styles),
	}
}

// Styles exposes the style set so popups built elsewhere match
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Render produces the complete view
func (r *Renderer) Render(state ViewState) string {
	content := &strings.Builder{}

	content.WriteString(r.renderTitleLine(state))
	content.WriteString("\n")
	content.WriteString(r.styles.Address.Render(state.Address))
	content.WriteString("\n")
	if len(state.FilterSummary) > 0 {
		content.WriteString(r.styles.Filter.Render(strings.Join(state.FilterSummary, " · ")))
		content.WriteString("\n")
	}
	content.WriteString("\n")

	switch {
	case state.ConfirmReset:
		content.WriteString(r.styles.Confirm.Render("Clear the whole search? (y/n): "))
		content.WriteString("\n\n")
	case state.InputMode == "sort":
		content.WriteString(r.renderSortOptions(state))
		content.WriteString("\n\n")
	case state.Prompt != "":
		content.WriteString(r.styles.Highlight.Render(state.Prompt))
		content.WriteString(state.TextInput)
		content.WriteString("\n\n")
	}

	content.WriteString(r.renderResults(state))

	if status := r.renderStatus(state); status != "" {
		content.WriteString("\n\n")
		content.WriteString(status)
	}

	helpText := ""
	if !state.ShowHelp {
		helpText = state.HelpLine
		if helpText == "" {
			helpText = "Press ? for help"
		}
		helpText = r.styles.Help.Render(helpText)
	}
	if helpText != "" {
		currentLines := strings.Count(content.String(), "\n") + 1
		availableLines := state.Height - 2
		if availableLines <= 0 {
			availableLines = 22
		}
		if pad := availableLines - currentLines - 1; pad > 0 {
			content.WriteString(strings.Repeat("\n", pad))
		}
		content.WriteString("\n")
		content.WriteString(helpText)
	}

	mainStyle := r.styles.Main
	if state.Height > 0 {
		mainStyle = mainStyle.MaxHeight(state.Height)
	}
	finalContent := mainStyle.Render(content.String())

	if state.ShowHelp {
		help := scrollWindow(state.HelpContent, state.Height-4, state.HelpScrollOffset, r.styles.Scroll)
		return r.popupRender.RenderPopupOverlay(finalContent, help, state.Height, state.Width, r.styles.InfoBox)
	}
	return finalContent
}

func (r *Renderer) renderTitleLine(state ViewState) string {
	logo := r.styles.Title.Render("staygrip")

	var right []string
	if state.Loading != domain.LoadingNone && state.SpinnerView != "" {
		right = append(right, r.styles.Dim.Render(state.SpinnerView+" Searching"))
	}
	if state.SortLabel != "" {
		right = append(right, r.styles.Dim.Render("Sort: "+state.SortLabel))
	}
	if state.ActiveFilters > 0 {
		right = append(right, r.styles.Badge.Render(fmt.Sprintf("Filters %d", state.ActiveFilters)))
	}
	if len(right) == 0 {
		return logo
	}

	rightContent := strings.Join(right, "  ")
	termWidth := state.Width
	if termWidth <= 0 {
		termWidth = 80
	}
	padding := termWidth - 4 - lipgloss.Width(logo) - lipgloss.Width(rightContent)
	if padding < 2 {
		padding = 2
	}
	return logo + strings.Repeat(" ", padding) + rightContent
}

// renderResults draws the blocking indicator, placeholder rows or the list
func (r *Renderer) renderResults(state ViewState) string {
	switch {
	case state.Loading == domain.LoadingBlocking:
		return r.styles.StatusLoading.Render(state.SpinnerView + " Loading properties...")
	case state.Loading == domain.LoadingPlaceholder:
		rows := len(state.Properties)
		if rows == 0 || rows > state.ViewportHeight {
			rows = min(max(state.ViewportHeight, 3), 12)
		}
		lines := make([]string, rows)
		for i := range lines {
			lines[i] = r.propertyRender.RenderPlaceholder(state.Width)
		}
		return strings.Join(lines, "\n")
	case len(state.Properties) == 0:
		if !state.Searched {
			return r.styles.Dim.Render("Press / to choose a location.")
		}
		return r.styles.Dim.Render("No properties match this search.")
	}

	return r.renderPropertyList(state) + "\n" + r.renderPagination(state.Pagination)
}

func (r *Renderer) renderPropertyList(state ViewState) string {
	height := state.ViewportHeight
	if height <= 0 {
		height = len(state.Properties)
	}
	offset := state.ViewportOffset
	if offset < 0 {
		offset = 0
	}

	var lines []string
	if offset > 0 {
		lines = append(lines, r.styles.Scroll.Render(fmt.Sprintf("↑ %d more above ↑", offset)))
		height--
	}
	end := offset + height
	below := 0
	if end < len(state.Properties) {
		end--
		below = len(state.Properties) - end
	}
	if end > len(state.Properties) {
		end = len(state.Properties)
	}
	for i := offset; i < end; i++ {
		lines = append(lines, r.propertyRender.RenderProperty(state.Properties[i], i == state.SelectedIndex, state.Width))
	}
	if below > 0 {
		lines = append(lines, r.styles.Scroll.Render(fmt.Sprintf("↓ %d more below ↓", below)))
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) renderPagination(p domain.PageInfo) string {
	prev, next := "‹ p", "n ›"
	if !p.HasPrev() {
		prev = "   "
	}
	if !p.HasNext() {
		next = "   "
	}
	return r.styles.Dim.Render(fmt.Sprintf("%s  page %d/%d  ·  %d properties  ·  %d per page  %s",
		prev, p.Page, max(p.TotalPages, 1), p.Total, p.PageSize, next))
}

func (r *Renderer) renderStatus(state ViewState) string {
	if state.StatusMessage == "" {
		return ""
	}
	if state.StatusIsError {
		return r.styles.StatusError.Render(state.StatusMessage)
	}
	return r.styles.StatusSuccess.Render(state.StatusMessage)
}

// renderSortOptions renders the sort mode selection interface
func (r *Renderer) renderSortOptions(state ViewState) string {
	if state.SortOptionIndex < 0 || state.SortOptionIndex >= len(searchstate.SortOptions) {
		return ""
	}
	option := searchstate.SortOptions[state.SortOptionIndex]
	sortLine := fmt.Sprintf("Sort by: %s", r.styles.Highlight.Render(option.Label))
	helpLine := r.styles.Dim.Render("↑/↓ or j/k to change • Enter to accept • Esc to cancel")
	return sortLine + "\n" + helpLine
}

// scrollWindow cuts content to height lines starting at offset and marks
// the cut edges
func scrollWindow(content string, height, offset int, marker lipgloss.Style) string {
	lines := strings.Split(content, "\n")
	total := len(lines)
	if height < 5 {
		height = 5
	}
	if total <= height {
		return content
	}

	maxOffset := total - height
	offset = min(max(offset, 0), maxOffset)
	end := offset + height
	visible := append([]string(nil), lines[offset:end]...)
	if offset > 0 {
		visible[0] = marker.Render("↑ (more above)")
	}
	if end < total {
		visible[len(visible)-1] = marker.Render("↓ (more below)")
	}
	return strings.Join(visible, "\n")
}
