package tui

import (
	"context"
	"fmt"
	"slices"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/thenoetrevino/dealboard/internal/models"
)

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyPressMsg:
		switch m.mode {
		case SearchMode:
			return m.updateSearch(msg)
		case GrabMode:
			return m.updateGrab(msg)
		default:
			return m.updateNormal(msg)
		}
	}

	// cursor blink and other textinput messages
	if m.mode == SearchMode {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

// ============================================================================
// NORMAL MODE
// ============================================================================

func (m Model) updateNormal(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Left):
		m.selectColumn(m.col - 1)
	case key.Matches(msg, m.keys.Right):
		m.selectColumn(m.col + 1)
	case key.Matches(msg, m.keys.Up):
		m.row = clamp(m.row-1, 0, len(m.columnDeals(m.col))-1)
	case key.Matches(msg, m.keys.Down):
		m.row = clamp(m.row+1, 0, len(m.columnDeals(m.col))-1)
	case key.Matches(msg, m.keys.NextStage):
		m.shortcut(m.pipeline.MoveToNextStage)
	case key.Matches(msg, m.keys.PrevStage):
		m.shortcut(m.pipeline.MoveToPrevStage)
	case key.Matches(msg, m.keys.MoveUp):
		m.shortcut(m.pipeline.MoveUp)
	case key.Matches(msg, m.keys.MoveDown):
		m.shortcut(m.pipeline.MoveDown)
	case key.Matches(msg, m.keys.Favorite):
		m.toggleFavorite()
	case key.Matches(msg, m.keys.Grab):
		m.startGrab()
	case key.Matches(msg, m.keys.Search):
		m.mode = SearchMode
		return m, m.search.Focus()
	}
	return m, nil
}

func (m *Model) selectColumn(col int) {
	m.col = clamp(col, 0, len(m.projection.Columns)-1)
	m.row = clamp(m.row, 0, len(m.columnDeals(m.col))-1)
}

func (m *Model) shortcut(move func(context.Context, string) (models.MoveResult, error)) {
	d := m.Selected()
	if d == nil {
		return
	}
	result, err := move(m.ctx, d.ID)
	m.afterMove(d.ID, result, err)
}

func (m *Model) toggleFavorite() {
	d := m.Selected()
	if d == nil {
		return
	}
	updated, err := m.deals.ToggleFavorite(m.ctx, d.ID)
	m.reload()
	if err != nil {
		m.setError(err)
		return
	}
	m.focusDeal(d.ID)
	if updated.Favorite {
		m.setStatus("★ " + updated.Title)
	} else {
		m.setStatus("Unfavorited " + updated.Title)
	}
}

// afterMove re-projects the board and reports the outcome. A failed move
// leaves the board as it was, so the reload snaps the card back.
func (m *Model) afterMove(dealID string, result models.MoveResult, err error) {
	m.reload()
	if err != nil {
		m.setError(err)
		return
	}
	m.focusDeal(dealID)
	switch result.Kind {
	case models.MoveTransitioned:
		m.setStatus(fmt.Sprintf("Moved %s to %s", result.Deal.Title, m.stageTitle(result.Deal.Stage)))
	case models.MoveReordered:
		m.setStatus(fmt.Sprintf("Moved %s to position %d", result.Deal.Title, result.Index+1))
	case models.MoveCancelled:
		m.setStatus("Move cancelled")
	default:
		m.setStatus("")
	}
}

func (m Model) stageTitle(id models.StageID) string {
	for _, col := range m.projection.Columns {
		if col.Stage == id {
			return col.Title
		}
	}
	return string(id)
}

// ============================================================================
// GRAB MODE
// ============================================================================

func (m *Model) startGrab() {
	d := m.Selected()
	if d == nil {
		return
	}
	m.grab = grabState{dealID: d.ID, targetCol: m.col, targetPos: m.row}
	m.mode = GrabMode
	m.setStatus("Moving " + d.Title)
}

func (m Model) updateGrab(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.drop(true)
	case key.Matches(msg, m.keys.Drop):
		m.drop(false)
	case key.Matches(msg, m.keys.Left):
		m.retarget(m.grab.targetCol - 1)
	case key.Matches(msg, m.keys.Right):
		m.retarget(m.grab.targetCol + 1)
	case key.Matches(msg, m.keys.Up):
		m.grab.targetPos = clamp(m.grab.targetPos-1, 0, len(m.landingIDs(m.grab.targetCol)))
	case key.Matches(msg, m.keys.Down):
		m.grab.targetPos = clamp(m.grab.targetPos+1, 0, len(m.landingIDs(m.grab.targetCol)))
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) retarget(col int) {
	m.grab.targetCol = clamp(col, 0, len(m.projection.Columns)-1)
	m.grab.targetPos = clamp(m.grab.targetPos, 0, len(m.landingIDs(m.grab.targetCol)))
}

// landingIDs returns the visible ids of a column without the grabbed card
func (m Model) landingIDs(col int) []string {
	if col < 0 || col >= len(m.projection.Columns) {
		return nil
	}
	ids := m.projection.Columns[col].DealIDs
	return slices.DeleteFunc(slices.Clone(ids), func(id string) bool { return id == m.grab.dealID })
}

// drop ends the gesture. A cancelled gesture is sent with no destination so
// the engine reports it and nothing changes.
func (m *Model) drop(cancel bool) {
	g := m.grab
	m.grab = grabState{}
	m.mode = NormalMode

	src, srcIdx, err := m.pipeline.Locate(m.ctx, g.dealID)
	if err != nil {
		m.reload()
		m.setError(err)
		return
	}
	move := models.Move{DealID: g.dealID, SourceStage: src, SourceIndex: srcIdx}
	if !cancel {
		dest := m.projection.Columns[g.targetCol]
		full, err := m.pipeline.Column(m.ctx, dest.Stage)
		if err != nil {
			m.reload()
			m.setError(err)
			return
		}
		move.DestStage = dest.Stage
		move.DestIndex = dropIndex(full.DealIDs, dest.DealIDs, g.dealID, g.targetPos)
	}
	result, err := m.pipeline.Move(m.ctx, move)
	m.afterMove(g.dealID, result, err)
}

// dropIndex maps a position among the visible cards of a filtered column to
// an index in the full column. Both lists are taken without the dragged deal,
// which is how the engine counts destination indices. Dropping after the
// last visible card lands directly after it, not at the end of the column.
func dropIndex(full, visible []string, dealID string, pos int) int {
	without := func(ids []string) []string {
		return slices.DeleteFunc(slices.Clone(ids), func(id string) bool { return id == dealID })
	}
	full, visible = without(full), without(visible)

	if pos >= 0 && pos < len(visible) {
		if idx := slices.Index(full, visible[pos]); idx >= 0 {
			return idx
		}
	}
	if len(visible) == 0 {
		return len(full)
	}
	if idx := slices.Index(full, visible[len(visible)-1]); idx >= 0 {
		return idx + 1
	}
	return len(full)
}

// ============================================================================
// SEARCH MODE
// ============================================================================

// updateSearch re-projects the board on every keystroke. Enter keeps the
// filter, esc clears it.
func (m Model) updateSearch(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.search.Blur()
		m.mode = NormalMode
		return m, nil
	case "esc":
		m.search.SetValue("")
		m.search.Blur()
		m.mode = NormalMode
		m.term = ""
		m.reload()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if v := m.search.Value(); v != m.term {
		m.term = v
		m.reload()
	}
	return m, cmd
}
