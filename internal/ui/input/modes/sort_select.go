package modes

import (
	tea "github.com/charmbracelet/bubbletea"

	"staygrip/internal/searchstate"
	"staygrip/internal/ui/input/types"
)

type SortSelectMode struct {
	sortIndex     int
	originalIndex int // the sort in effect when the mode was entered
}

func NewSortSelectMode() *SortSelectMode {
	return &SortSelectMode{}
}

func (m *SortSelectMode) Name() string {
	return "sort"
}

func (m *SortSelectMode) Enter(ctx types.Context) []types.Action {
	m.sortIndex = 0
	m.originalIndex = 0
	for i, option := range searchstate.SortOptions {
		if string(option.Key) == ctx.CurrentSort() {
			m.sortIndex = i
			m.originalIndex = i
			break
		}
	}
	return []types.Action{types.UpdateSortIndexAction{Index: m.sortIndex}}
}

func (m *SortSelectMode) Exit(ctx types.Context) []types.Action {
	return nil
}

// HandleKey moves through the options. The choice is applied on enter only,
// so browsing does not start a search per option.
func (m *SortSelectMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.String() {
	case "ctrl+c":
		return []types.Action{types.QuitAction{Force: true}}, true

	case "esc", "q":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeNormal}}, true

	case "enter":
		actions := []types.Action{types.ChangeModeAction{Mode: types.ModeNormal}}
		if m.sortIndex != m.originalIndex {
			actions = append([]types.Action{
				types.SortByAction{Criteria: string(searchstate.SortOptions[m.sortIndex].Key)},
			}, actions...)
		}
		return actions, true

	case "up", "k":
		m.sortIndex--
		if m.sortIndex < 0 {
			m.sortIndex = len(searchstate.SortOptions) - 1
		}
		return []types.Action{types.UpdateSortIndexAction{Index: m.sortIndex}}, true

	case "down", "j":
		m.sortIndex++
		if m.sortIndex >= len(searchstate.SortOptions) {
			m.sortIndex = 0
		}
		return []types.Action{types.UpdateSortIndexAction{Index: m.sortIndex}}, true
	}

	return nil, true
}

// GetCurrentIndex returns the highlighted option
func (m *SortSelectMode) GetCurrentIndex() int {
	return m.sortIndex
}
