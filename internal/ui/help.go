package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"

	"staygrip/internal/domain"
)

// keyMap feeds the one-line help at the bottom of the screen
type keyMap struct {
	Location key.Binding
	Price    key.Binding
	Dates    key.Binding
	Page     key.Binding
	Sort     key.Binding
	Open     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Location: key.NewBinding(key.WithKeys("/", "l"), key.WithHelp("/", "where")),
		Price:    key.NewBinding(key.WithKeys("$"), key.WithHelp("$", "price")),
		Dates:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dates")),
		Page:     key.NewBinding(key.WithKeys("n", "p"), key.WithHelp("n/p", "page")),
		Sort:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Open:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open url")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Location, k.Price, k.Dates, k.Page, k.Sort, k.Open, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type helpEntry struct {
	keys string
	desc string
}

type helpSection struct {
	title   string
	entries []helpEntry
}

var helpSections = []helpSection{
	{"Navigation", []helpEntry{
		{"↑/↓, j/k", "Move through results"},
		{"PgUp/PgDn", "Scroll a screen"},
		{"gg/G", "Go to top/bottom"},
		{"Enter", "Show listing details"},
		{"n/p, ]/[", "Next/previous page"},
		{"z", "Cycle page size"},
		{"H/L, ←/→", "Back/forward in history"},
	}},
	{"Search", []helpEntry{
		{"/, l", "Set location (empty clears)"},
		{"d", "Set check-in and check-out dates"},
		{"$", "Set price range"},
		{"s", "Sort options"},
		{"o", "Open a search URL"},
		{"#", "Look up a listing number"},
	}},
	{"Filters", []helpEntry{
		{"b/B", "More/fewer bedrooms"},
		{"a/A", "More/fewer bathrooms"},
		{"u/U", "More/fewer guests"},
		{"t", "Cycle property type"},
		{"v", "Cycle view type"},
		{"x", "Toggle pet friendly"},
		{"e", "Toggle exact location match"},
		{"r", "Reset filters"},
		{"R", "Reset everything"},
	}},
	{"Other", []helpEntry{
		{"?", "Toggle this help (Enter opens it in the pager)"},
		{"q", "Quit"},
	}},
}

// HelpRenderer handles help content rendering
type HelpRenderer struct{}

// NewHelpRenderer creates a new help renderer
func NewHelpRenderer() *HelpRenderer {
	return &HelpRenderer{}
}

// RenderHelpContent renders the help information for the popup and the pager
func (r *HelpRenderer) RenderHelpContent() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220")).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	var help strings.Builder
	help.WriteString(titleStyle.Render("staygrip Help"))
	help.WriteString("\n")

	for i, section := range helpSections {
		help.WriteString(sectionStyle.Render(section.title))
		help.WriteString("\n")
		for _, e := range section.entries {
			help.WriteString(fmt.Sprintf("  %s %s\n", keyStyle.Render(e.keys), descStyle.Render(e.desc)))
		}
		if i < len(helpSections)-1 {
			help.WriteString("\n")
		}
	}

	help.WriteString(lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241")).
		Render("  URL example: /properties/Destin, FL?minBedrooms=2&sortBy=price_low"))

	return help.String()
}

// DetailsContent renders one listing for the details pager
func DetailsContent(p domain.Property) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	label := lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Width(14)

	var b strings.Builder
	headline := p.Headline
	if headline == "" {
		headline = fmt.Sprintf("Listing #%d", p.ListID)
	}
	b.WriteString(title.Render(headline))
	b.WriteString("\n\n")

	row := func(name, value string) {
		if value == "" {
			return
		}
		b.WriteString(label.Render(name))
		b.WriteString(value)
		b.WriteString("\n")
	}
	row("Listing", fmt.Sprintf("#%d", p.ListID))
	row("Price", fmt.Sprintf("$%.0f / night", p.PricePerNight))
	row("Where", strings.Join(nonEmpty(p.Address, p.City, p.State, p.Country), ", "))
	row("Rooms", fmt.Sprintf("%d bedrooms, %g bathrooms, sleeps %d", p.Bedrooms, p.Bathrooms, p.Sleeps))
	row("Type", p.PropertyType)
	row("View", p.ViewType)
	row("Provider", p.Provider)
	if p.Rating > 0 {
		row("Rating", fmt.Sprintf("%.1f", p.Rating))
	}
	if p.PetFriendly {
		row("Pets", "allowed")
	}
	row("Amenities", strings.Join(p.Amenities, ", "))
	row("Link", p.URL)

	if p.Description != "" {
		b.WriteString("\n")
		b.WriteString(p.Description)
		b.WriteString("\n")
	}
	return b.String()
}

func nonEmpty(values ...string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// PagerOps shows long text in the ov pager
type PagerOps struct {
	program *tea.Program // reference to Bubble Tea program for terminal management
}

// NewPagerOps creates a new pager operations instance
func NewPagerOps(program *tea.Program) *PagerOps {
	return &PagerOps{
		program: program,
	}
}

// ShowInPager hands the terminal to ov until the user quits it
func (h *PagerOps) ShowInPager(content string) error {
	if h == nil || h.program == nil {
		return errors.New("program not set")
	}

	// Release terminal control to run ov
	if err := h.program.ReleaseTerminal(); err != nil {
		return err
	}

	defer func() {
		// Small delay to ensure ov has fully exited before restoring terminal
		time.Sleep(100 * time.Millisecond)
		_ = h.program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(strings.NewReader(content))
	if err != nil {
		return err
	}

	// Configure ov to not write on exit (to avoid messing with our screen)
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}
