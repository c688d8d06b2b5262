// Package tui is the interactive pipeline board: cursor navigation, pick-up and
// drop of deal cards, stage shortcuts and live search.
//
// The model never touches the board directly. Every change goes through the
// pipeline and deal services, and the view is re-projected afterwards.
package tui

import (
	"context"
	"slices"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/thenoetrevino/dealboard/internal/board"
	"github.com/thenoetrevino/dealboard/internal/models"
	dealservice "github.com/thenoetrevino/dealboard/internal/services/deal"
	pipelineservice "github.com/thenoetrevino/dealboard/internal/services/pipeline"
)

// Mode is the current input mode of the board
type Mode int

const (
	NormalMode Mode = iota
	SearchMode
	GrabMode // a card is picked up and follows the cursor
)

// grabState tracks a picked-up card. Target positions count the visible cards
// of the target column without the grabbed one.
type grabState struct {
	dealID    string
	targetCol int
	targetPos int
}

// Model is the bubbletea model of the board
type Model struct {
	ctx      context.Context
	pipeline pipelineservice.Service
	deals    dealservice.Service

	keys   KeyMap
	help   help.Model
	search textinput.Model

	mode       Mode
	term       string
	projection *board.Projection
	summary    *board.Summary

	col  int // selected column
	row  int // selected card within the visible column
	grab grabState

	status    string
	statusErr bool

	width  int
	height int
}

// New creates a board model over the given services
func New(ctx context.Context, pipeline pipelineservice.Service, deals dealservice.Service) Model {
	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "title, company or contact"

	m := Model{
		ctx:      ctx,
		pipeline: pipeline,
		deals:    deals,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		search:   search,
	}
	m.reload()
	return m
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Mode returns the current input mode
func (m Model) Mode() Mode {
	return m.mode
}

// Term returns the active search term
func (m Model) Term() string {
	return m.term
}

// Status returns the last status line and whether it reports an error
func (m Model) Status() (string, bool) {
	return m.status, m.statusErr
}

// Projection returns the projection currently rendered
func (m Model) Projection() *board.Projection {
	return m.projection
}

// Selected returns the deal under the cursor, or nil
func (m Model) Selected() *models.Deal {
	deals := m.columnDeals(m.col)
	if m.row < 0 || m.row >= len(deals) {
		return nil
	}
	return deals[m.row]
}

// reload re-projects the board with the current search term and keeps the
// cursor inside the visible cards
func (m *Model) reload() {
	m.projection = m.pipeline.Project(m.ctx, m.term)
	m.summary = m.pipeline.Summary(m.ctx, m.term)
	m.col = clamp(m.col, 0, len(m.projection.Columns)-1)
	m.row = clamp(m.row, 0, len(m.columnDeals(m.col))-1)
}

// focusDeal moves the cursor onto dealID if it is visible
func (m *Model) focusDeal(dealID string) {
	for i, col := range m.projection.Columns {
		if idx := slices.Index(col.DealIDs, dealID); idx >= 0 {
			m.col, m.row = i, idx
			return
		}
	}
}

func (m Model) columnDeals(col int) []*models.Deal {
	if m.projection == nil || col < 0 || col >= len(m.projection.Columns) {
		return nil
	}
	return m.projection.DealsByStage(m.projection.Columns[col].Stage)
}

func (m *Model) setStatus(msg string) {
	m.status, m.statusErr = msg, false
}

func (m *Model) setError(err error) {
	m.status, m.statusErr = err.Error(), true
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}
