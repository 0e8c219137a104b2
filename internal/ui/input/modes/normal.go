package modes

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"staygrip/internal/searchstate"
	"staygrip/internal/ui/input/types"
)

type NormalMode struct {
	lastKeyWasG bool
	lastGTime   time.Time
}

func NewNormalMode() *NormalMode {
	return &NormalMode{}
}

func (m *NormalMode) Name() string {
	return "normal"
}

func (m *NormalMode) Enter(ctx types.Context) []types.Action {
	return nil
}

func (m *NormalMode) Exit(ctx types.Context) []types.Action {
	return nil
}

func (m *NormalMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return []types.Action{types.QuitAction{Force: true}}, true

	case tea.KeyUp:
		return []types.Action{types.NavigateAction{Direction: "up"}}, true

	case tea.KeyDown:
		return []types.Action{types.NavigateAction{Direction: "down"}}, true

	case tea.KeyLeft:
		if ctx.CanGoBack() {
			return []types.Action{types.HistoryAction{Direction: "back"}}, true
		}
		return nil, true

	case tea.KeyRight:
		if ctx.CanGoForward() {
			return []types.Action{types.HistoryAction{Direction: "forward"}}, true
		}
		return nil, true

	case tea.KeyPgUp:
		return []types.Action{types.NavigateAction{Direction: "pageup"}}, true

	case tea.KeyPgDown:
		return []types.Action{types.NavigateAction{Direction: "pagedown"}}, true

	case tea.KeyHome:
		return []types.Action{types.NavigateAction{Direction: "home"}}, true

	case tea.KeyEnd:
		return []types.Action{types.NavigateAction{Direction: "end"}}, true

	case tea.KeyEnter:
		if ctx.CurrentListID() != 0 {
			return []types.Action{types.ShowDetailsAction{}}, true
		}
		return nil, false
	}

	switch msg.String() {
	case "j":
		return []types.Action{types.NavigateAction{Direction: "down"}}, true

	case "k":
		return []types.Action{types.NavigateAction{Direction: "up"}}, true

	case "n", "]":
		return []types.Action{types.PageAction{Delta: 1}}, true

	case "p", "[":
		return []types.Action{types.PageAction{Delta: -1}}, true

	case "z":
		return []types.Action{types.CyclePageSizeAction{}}, true

	case "/", "l":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeLocation}}, true

	case "$":
		return []types.Action{types.ChangeModeAction{Mode: types.ModePrice}}, true

	case "d":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeDates}}, true

	case "o":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeOpenURL}}, true

	case "#":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeListID}}, true

	case "s":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeSort}}, true

	case "b":
		return []types.Action{types.StepFilterAction{Field: string(searchstate.MinBedrooms), Delta: 1}}, true

	case "B":
		return []types.Action{types.StepFilterAction{Field: string(searchstate.MinBedrooms), Delta: -1}}, true

	case "a":
		return []types.Action{types.StepFilterAction{Field: string(searchstate.MinBathrooms), Delta: 1}}, true

	case "A":
		return []types.Action{types.StepFilterAction{Field: string(searchstate.MinBathrooms), Delta: -1}}, true

	case "u":
		return []types.Action{types.StepFilterAction{Field: string(searchstate.MinGuests), Delta: 1}}, true

	case "U":
		return []types.Action{types.StepFilterAction{Field: string(searchstate.MinGuests), Delta: -1}}, true

	case "x":
		return []types.Action{types.ToggleFilterAction{Field: string(searchstate.PetFriendly)}}, true

	case "e":
		return []types.Action{types.ToggleFilterAction{Field: string(searchstate.SearchExact)}}, true

	case "t":
		return []types.Action{types.CycleOptionAction{Field: string(searchstate.PropertyTypes)}}, true

	case "v":
		return []types.Action{types.CycleOptionAction{Field: string(searchstate.ViewTypes)}}, true

	case "r":
		if ctx.HasActiveFilters() {
			return []types.Action{types.ResetFiltersAction{}}, true
		}
		return nil, true

	case "R":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeResetConfirm}}, true

	case "H":
		if ctx.CanGoBack() {
			return []types.Action{types.HistoryAction{Direction: "back"}}, true
		}
		return nil, true

	case "L":
		if ctx.CanGoForward() {
			return []types.Action{types.HistoryAction{Direction: "forward"}}, true
		}
		return nil, true

	case "?":
		return []types.Action{types.ToggleHelpAction{}}, true

	case "q":
		return []types.Action{types.QuitAction{Force: false}}, true

	case "g":
		if m.lastKeyWasG && time.Since(m.lastGTime) < 500*time.Millisecond {
			// gg - go to top
			m.lastKeyWasG = false
			return []types.Action{types.NavigateAction{Direction: "home"}}, true
		}
		m.lastKeyWasG = true
		m.lastGTime = time.Now()
		return nil, true

	case "G":
		m.lastKeyWasG = false
		return []types.Action{types.NavigateAction{Direction: "end"}}, true

	default:
		// Any other key cancels the 'g' prefix
		m.lastKeyWasG = false
	}

	return nil, false
}
