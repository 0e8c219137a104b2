package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"staygrip/internal/domain"
	"staygrip/internal/gateway"
	"staygrip/internal/logging"
	"staygrip/internal/router"
	"staygrip/internal/searchstate"
	"staygrip/internal/ui/input"
	inputtypes "staygrip/internal/ui/input/types"
	"staygrip/internal/ui/views"
)

// Navigator is the part of the router the UI drives directly
type Navigator interface {
	CurrentURL() string
	Navigate(ctx context.Context, href string, opts router.NavigateOptions) (router.Navigation, error)
	Back(ctx context.Context) (router.Navigation, error)
	Forward(ctx context.Context) (router.Navigation, error)
	CanGoBack() bool
	CanGoForward() bool
}

// ListingLookup shows a single listing outside the search state
type ListingLookup interface {
	LookupListID(ctx context.Context, listID int)
}

// Deps are the collaborators a Model works with. FilterOptions and Logger
// may be nil.
type Deps struct {
	Context       context.Context
	Store         *searchstate.Store
	Navigator     Navigator
	Lookup        ListingLookup
	FilterOptions gateway.FilterOptionsSource
	Logger        logging.Logger
}

// Model represents the UI state
type Model struct {
	ctx     context.Context
	store   *searchstate.Store
	nav     Navigator
	lookup  ListingLookup
	options gateway.FilterOptionsSource
	logger  logging.Logger

	width  int
	height int

	address       string
	properties    []domain.Property
	pagination    domain.PageInfo
	searched      bool
	loading       domain.LoadingKind
	filterOptions *domain.FilterOptions

	selectedIndex  int
	viewportOffset int
	viewportHeight int

	statusMessage string
	statusIsError bool

	showPopup   bool
	popup       string
	popupScroll int
	sortIndex   int

	spinner      spinner.Model
	help         help.Model
	keys         keyMap
	inputHandler *input.Handler
	renderer     *views.Renderer
	helpRenderer *HelpRenderer
	pager        *PagerOps

	// Program reference for terminal management
	program *tea.Program
}

// NewModel creates a new UI model
func NewModel(d Deps) *Model {
	ctx := d.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := d.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		ctx:            ctx,
		store:          d.Store,
		nav:            d.Navigator,
		lookup:         d.Lookup,
		options:        d.FilterOptions,
		logger:         logger.WithFields(logging.Fields{"component": "ui"}),
		viewportHeight: 20, // Will be updated on first WindowSizeMsg
		spinner:        sp,
		help:           help.New(),
		keys:           newKeyMap(),
		inputHandler:   input.New(),
		renderer:       views.NewRenderer(),
		helpRenderer:   NewHelpRenderer(),
	}
	if m.nav != nil {
		m.address = m.nav.CurrentURL()
	}
	return m
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	m.pager = NewPagerOps(p)
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchFilterOptions())
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.updateViewportHeight()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadingMsg:
		m.loading = msg.kind
		return m, nil

	case resultsMsg:
		m.loading = domain.LoadingNone
		m.searched = true
		m.properties = msg.page.Properties
		m.pagination = msg.page.Pagination
		m.selectedIndex = 0
		m.viewportOffset = 0
		return m, nil

	case clearResultsMsg:
		m.loading = domain.LoadingNone
		m.searched = true
		m.properties = nil
		m.pagination = domain.PageInfo{}
		m.selectedIndex = 0
		m.viewportOffset = 0
		return m, nil

	case notifyMsg:
		m.setStatus(msg.message, msg.err != nil)
		return m, nil

	case EventMsg:
		switch e := msg.Event.(type) {
		case domain.NavigatedEvent:
			m.address = e.Href
		case domain.URLSyncedEvent:
			m.address = e.Href
		}
		return m, nil

	case navigatedMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("Cannot open that address: %v", msg.err), true)
			return m, nil
		}
		m.address = msg.nav.Href
		return m, nil

	case lookupStartedMsg:
		m.setStatus(fmt.Sprintf("Looking up listing #%d...", msg.listID), false)
		return m, nil

	case filterOptionsMsg:
		if msg.err != nil {
			m.logger.Warn("filter options unavailable", logging.Fields{"error": msg.err.Error()})
			m.setStatus("Filter options are unavailable", true)
			return m, nil
		}
		opts := msg.options
		m.filterOptions = &opts
		return m, nil

	case pagerMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("Pager error: %v", msg.err), true)
		}
		return m, nil
	}

	return m, m.inputHandler.Update(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showPopup {
		switch msg.String() {
		case "esc", "?", "q":
			m.showPopup = false
			m.popup = ""
			m.popupScroll = 0
		case "j", "down":
			m.popupScroll++
		case "k", "up":
			if m.popupScroll > 0 {
				m.popupScroll--
			}
		case "enter":
			if m.pager == nil {
				return m, nil
			}
			content := m.popup
			m.showPopup = false
			m.popup = ""
			return m, m.showInPager(content)
		case "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	}

	actions, cmd := m.inputHandler.HandleKey(msg, m.buildContext())
	cmds := []tea.Cmd{cmd}
	for _, action := range actions {
		cmds = append(cmds, m.executeAction(action))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) buildContext() *input.ModelContext {
	ids := make([]int, len(m.properties))
	for i, p := range m.properties {
		ids[i] = p.ListID
	}
	st := m.store.Current()
	ctx := &input.ModelContext{
		Index:         m.selectedIndex,
		ListIDs:       ids,
		Sort:          string(st.SortBy),
		ActiveFilters: st.HasActiveFilters(),
	}
	if m.nav != nil {
		ctx.Back = m.nav.CanGoBack()
		ctx.Forward = m.nav.CanGoForward()
	}
	return ctx
}

func (m *Model) executeAction(action inputtypes.Action) tea.Cmd {
	switch a := action.(type) {
	case inputtypes.NavigateAction:
		m.moveCursor(a.Direction)

	case inputtypes.PageAction:
		return m.changePage(a.Delta)

	case inputtypes.CyclePageSizeAction:
		st := m.store.Current()
		sizes := m.store.Options().PageSizes
		next := sizes[(slices.Index(sizes, st.PageSize)+1)%len(sizes)]
		m.store.UpdatePagination(1, &next)

	case inputtypes.StepFilterAction:
		field := searchstate.NumericField(a.Field)
		n := a.Delta
		if cur := m.store.Current().Numeric(field); cur != nil {
			n += *cur
		}
		if n <= 0 {
			m.store.UpdateNumericFilter(field, nil)
		} else {
			m.store.UpdateNumericFilter(field, &n)
		}

	case inputtypes.ToggleFilterAction:
		m.store.ToggleBooleanFilter(searchstate.BoolField(a.Field), nil)

	case inputtypes.CycleOptionAction:
		return m.cycleOption(searchstate.ArrayField(a.Field))

	case inputtypes.ResetFiltersAction:
		m.store.ResetFilters()
		m.setStatus("Filters cleared", false)

	case inputtypes.ResetAllAction:
		m.store.ResetAll()
		m.setStatus("Search cleared", false)

	case inputtypes.HistoryAction:
		return m.traverse(a.Direction)

	case inputtypes.ShowDetailsAction:
		if m.selectedIndex >= 0 && m.selectedIndex < len(m.properties) {
			return m.showContent(DetailsContent(m.properties[m.selectedIndex]))
		}

	case inputtypes.ToggleHelpAction:
		m.showPopup = true
		m.popup = m.helpRenderer.RenderHelpContent()
		m.popupScroll = 0

	case inputtypes.QuitAction:
		return tea.Quit

	case inputtypes.SortByAction:
		if _, ok := m.store.UpdateSorting(searchstate.SortKey(a.Criteria)); !ok {
			m.setStatus(fmt.Sprintf("Unknown sort %q", a.Criteria), true)
		}

	case inputtypes.UpdateSortIndexAction:
		m.sortIndex = a.Index

	case inputtypes.SubmitTextAction:
		return m.submitText(a)

	case inputtypes.CancelTextAction, inputtypes.UpdateTextAction:
		// the text field holds the draft
	}
	return nil
}

func (m *Model) submitText(a inputtypes.SubmitTextAction) tea.Cmd {
	text := strings.TrimSpace(a.Text)

	switch a.Mode {
	case inputtypes.ModeLocation:
		if text == "" {
			m.store.UpdateLocation(nil)
			return nil
		}
		m.store.UpdateLocation(searchstate.LocationFromText(text))

	case inputtypes.ModePrice:
		patch, err := ParsePriceRange(text)
		if err != nil {
			m.setStatus(err.Error(), true)
			return nil
		}
		m.store.UpdatePriceRange(patch)

	case inputtypes.ModeDates:
		in, out, err := ParseDates(text)
		if err != nil {
			m.setStatus(err.Error(), true)
			return nil
		}
		m.store.UpdateDates(in, out)

	case inputtypes.ModeOpenURL:
		if text == "" {
			return nil
		}
		if !strings.HasPrefix(text, "/") {
			text = "/" + text
		}
		return m.navigate(text)

	case inputtypes.ModeListID:
		id, err := ParseListID(text)
		if err != nil {
			m.setStatus(err.Error(), true)
			return nil
		}
		return m.lookupListing(id)
	}
	return nil
}

func (m *Model) changePage(delta int) tea.Cmd {
	st := m.store.Current()
	if delta > 0 && m.searched && !m.pagination.HasNext() {
		m.setStatus("Already on the last page", false)
		return nil
	}
	if delta < 0 && st.Page <= 1 {
		return nil
	}
	m.store.UpdatePagination(st.Page+delta, nil)
	return nil
}

func (m *Model) cycleOption(field searchstate.ArrayField) tea.Cmd {
	if m.filterOptions == nil {
		m.setStatus("Loading filter options...", false)
		return m.fetchFilterOptions()
	}

	var options []domain.FilterOption
	switch field {
	case searchstate.PropertyTypes:
		options = m.filterOptions.PropertyTypes
	case searchstate.ViewTypes:
		options = m.filterOptions.ViewTypes
	}
	m.store.UpdateArrayFilter(field, nextOption(m.store.Current().Array(field), options))
	return nil
}

func (m *Model) moveCursor(direction string) {
	total := len(m.properties)
	if total == 0 {
		return
	}
	switch direction {
	case "up":
		m.selectedIndex--
	case "down":
		m.selectedIndex++
	case "pageup":
		m.selectedIndex -= m.viewportHeight
	case "pagedown":
		m.selectedIndex += m.viewportHeight
	case "home":
		m.selectedIndex = 0
	case "end":
		m.selectedIndex = total - 1
	}
	m.selectedIndex = min(max(m.selectedIndex, 0), total-1)
	m.ensureSelectedVisible()
}

// ensureSelectedVisible scrolls the viewport so the cursor row is drawn,
// leaving room for the scroll indicators
func (m *Model) ensureSelectedVisible() {
	if m.selectedIndex < m.viewportOffset+1 {
		m.viewportOffset = max(m.selectedIndex-1, 0)
	}
	if m.selectedIndex >= m.viewportOffset+m.viewportHeight-2 {
		m.viewportOffset = m.selectedIndex - m.viewportHeight + 3
	}
	if m.viewportOffset < 0 || m.selectedIndex == 0 {
		m.viewportOffset = 0
	}
}

func (m *Model) updateViewportHeight() {
	// title, address, filters, blank, prompt, pagination, status, help
	m.viewportHeight = max(m.height-12, 3)
}

func (m *Model) setStatus(msg string, isError bool) {
	m.statusMessage = msg
	m.statusIsError = isError
}

func (m *Model) navigate(href string) tea.Cmd {
	if m.nav == nil {
		return nil
	}
	ctx, nav := m.ctx, m.nav
	return func() tea.Msg {
		n, err := nav.Navigate(ctx, href, router.NavigateOptions{})
		return navigatedMsg{nav: n, err: err}
	}
}

func (m *Model) traverse(direction string) tea.Cmd {
	if m.nav == nil {
		return nil
	}
	ctx, nav := m.ctx, m.nav
	return func() tea.Msg {
		var (
			n   router.Navigation
			err error
		)
		if direction == "forward" {
			n, err = nav.Forward(ctx)
		} else {
			n, err = nav.Back(ctx)
		}
		return navigatedMsg{nav: n, err: err}
	}
}

func (m *Model) lookupListing(id int) tea.Cmd {
	if m.lookup == nil {
		m.setStatus("Listing lookup is not available", true)
		return nil
	}
	ctx, lookup := m.ctx, m.lookup
	return func() tea.Msg {
		lookup.LookupListID(ctx, id)
		return lookupStartedMsg{listID: id}
	}
}

func (m *Model) fetchFilterOptions() tea.Cmd {
	if m.options == nil {
		return nil
	}
	ctx, src := m.ctx, m.options
	return func() tea.Msg {
		opts, err := src.FilterOptions(ctx)
		return filterOptionsMsg{options: opts, err: err}
	}
}

// showContent opens long text in the pager, or in the popup when there is
// no program to release the terminal from
func (m *Model) showContent(content string) tea.Cmd {
	if m.program == nil {
		m.showPopup = true
		m.popup = content
		m.popupScroll = 0
		return nil
	}
	return m.showInPager(content)
}

func (m *Model) showInPager(content string) tea.Cmd {
	pager := m.pager
	return func() tea.Msg {
		return pagerMsg{err: pager.ShowInPager(content)}
	}
}

// View renders the UI
func (m *Model) View() string {
	st := m.store.Current()
	options := domain.FilterOptions{}
	if m.filterOptions != nil {
		options = *m.filterOptions
	}

	state := views.ViewState{
		Width:            m.width,
		Height:           m.height,
		Address:          m.address,
		FilterSummary:    FilterSummary(st, options),
		ActiveFilters:    st.ActiveFiltersCount(),
		SortLabel:        st.SortBy.Label(),
		Properties:       m.properties,
		Pagination:       m.pagination,
		Searched:         m.searched,
		SelectedIndex:    m.selectedIndex,
		ViewportOffset:   m.viewportOffset,
		ViewportHeight:   m.viewportHeight,
		Loading:          m.loading,
		SpinnerView:      m.spinner.View(),
		StatusMessage:    m.statusMessage,
		StatusIsError:    m.statusIsError,
		InputMode:        m.inputHandler.ModeName(),
		Prompt:           m.inputHandler.Prompt(),
		ConfirmReset:     m.inputHandler.CurrentMode() == inputtypes.ModeResetConfirm,
		ShowHelp:         m.showPopup,
		HelpContent:      m.popup,
		HelpScrollOffset: m.popupScroll,
		HelpLine:         m.help.View(m.keys),
	}
	if m.inputHandler.CurrentMode() == inputtypes.ModeSort {
		state.SortOptionIndex = m.sortIndex
	}
	if ti := m.inputHandler.TextInput(); ti != nil {
		state.TextInput = ti.View()
	}

	return m.renderer.Render(state)
}
