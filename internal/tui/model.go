// Package tui is a terminal rendering shell for one matching question. It
// turns key presses into drags against a matching.Controller and lays out
// the category and slot columns with rows kept level by a
// matching.RowSynchronizer.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/mind-engage/quizboard/internal/exam"
	"github.com/mind-engage/quizboard/internal/matching"
)

type area int

const (
	areaPool area = iota
	areaSlots
)

const (
	defaultWidth = 80
	maxLogLines  = 6
)

// changeLog collects engine notifications for the on-screen log.
type changeLog struct {
	state  func() matching.State
	lines  []string
	logger zerolog.Logger
}

func (c *changeLog) OnAssignmentChange(questionID, optionID, categoryID int) {
	st := c.state()
	label := fmt.Sprintf("#%d", optionID)
	if o, ok := st.Option(optionID); ok {
		label = o.Label
	}
	dest := "pool"
	if categoryID != matching.Unassigned {
		dest = fmt.Sprintf("#%d", categoryID)
		for _, cat := range st.Categories() {
			if cat.ID == categoryID {
				dest = cat.Label
			}
		}
	}
	c.lines = append(c.lines, fmt.Sprintf("%s -> %s", label, dest))
	c.logger.Info().
		Int("question_id", questionID).
		Int("option_id", optionID).
		Int("category_id", categoryID).
		Msg("assignment changed")
}

type Model struct {
	question exam.Question
	ctrl     *matching.Controller
	rows     *matching.RowSynchronizer
	changes  *changeLog
	keys     keyMap
	log      zerolog.Logger

	focus    area
	poolIdx  int
	slotIdx  int
	width    int
	status   string
	quitting bool
}

// New builds a model for q, starting from the given draft assignment.
// Pairs the engine refuses are reported in the status line.
func New(q exam.Question, draft []matching.Pair, logger zerolog.Logger) (*Model, error) {
	st, err := matching.New(q.Options, q.Categories, draft)
	if err != nil {
		return nil, err
	}
	m := &Model{
		question: q,
		rows:     matching.NewRowSynchronizer(),
		keys:     defaultKeys(),
		log:      logger,
		width:    defaultWidth,
	}
	m.changes = &changeLog{logger: logger}
	m.ctrl = matching.NewController(q.ID, st,
		matching.WithNotifier(m.changes),
		matching.WithLogger(logger))
	m.changes.state = m.ctrl.State
	if n := len(st.Rejected()); n > 0 {
		m.status = fmt.Sprintf("%d saved pair(s) ignored", n)
		logger.Warn().Int("rejected", n).Msg("draft pairs rejected")
	}
	m.measure()
	return m, nil
}

// Assignments is the current assignment, for saving on exit.
func (m *Model) Assignments() []matching.Pair { return m.ctrl.State().Assignments() }

// Changes returns the notification lines seen so far.
func (m *Model) Changes() []string { return append([]string(nil), m.changes.lines...) }

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width != m.width {
			m.width = msg.Width
			m.rows.Reset()
			m.measure()
		}
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.log.Info().Int("pairs", len(m.Assignments())).Msg("quit")
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.step(-1)
	case key.Matches(msg, m.keys.Down):
		m.step(1)
	case key.Matches(msg, m.keys.Left):
		m.focus = areaPool
	case key.Matches(msg, m.keys.Right):
		m.focus = areaSlots
	case key.Matches(msg, m.keys.Cancel):
		if m.ctrl.Phase() == matching.Dragging {
			m.ctrl.Cancel()
			m.status = "drag cancelled"
		}
	case key.Matches(msg, m.keys.Pick):
		if m.ctrl.Phase() == matching.Dragging {
			m.drop()
		} else {
			m.pick()
		}
	case key.Matches(msg, m.keys.Return):
		m.returnFocused()
	}
	return nil
}

func (m *Model) step(delta int) {
	st := m.ctrl.State()
	if m.focus == areaPool {
		m.poolIdx = clamp(m.poolIdx+delta, len(st.Unassigned()))
		return
	}
	m.slotIdx = clamp(m.slotIdx+delta, len(st.Categories()))
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// focusedSource is the identifier of the item under the cursor, if any.
func (m *Model) focusedSource() (string, bool) {
	st := m.ctrl.State()
	if m.focus == areaPool {
		pool := st.Unassigned()
		if m.poolIdx >= len(pool) {
			return "", false
		}
		return matching.Encode(matching.PoolItem(pool[m.poolIdx].ID)), true
	}
	cats := st.Categories()
	if m.slotIdx >= len(cats) {
		return "", false
	}
	o, ok := st.Occupant(cats[m.slotIdx].ID)
	if !ok {
		return "", false
	}
	return matching.Encode(matching.SlotItem(o.ID, cats[m.slotIdx].ID)), true
}

// focusedTarget is the drop target under the cursor.
func (m *Model) focusedTarget() string {
	if m.focus == areaPool {
		return matching.Encode(matching.PoolTarget())
	}
	cats := m.ctrl.State().Categories()
	if m.slotIdx >= len(cats) {
		return ""
	}
	return matching.Encode(matching.SlotTarget(cats[m.slotIdx].ID))
}

func (m *Model) pick() {
	src, ok := m.focusedSource()
	if !ok {
		m.status = "nothing to pick up here"
		return
	}
	if err := m.ctrl.DragStart(src); err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
}

func (m *Model) drop() {
	m.apply(m.ctrl.DragEnd(m.focusedTarget()))
}

func (m *Model) returnFocused() {
	if m.focus != areaSlots || m.ctrl.Phase() == matching.Dragging {
		return
	}
	src, ok := m.focusedSource()
	if !ok {
		return
	}
	res, err := m.ctrl.Drag(src, matching.Encode(matching.PoolTarget()))
	if err != nil {
		m.status = err.Error()
		return
	}
	m.apply(res)
}

func (m *Model) apply(res matching.Result) {
	if res.Transition == matching.TransitionNone {
		m.status = "nothing changed"
		return
	}
	m.status = string(res.Transition)
	st := m.ctrl.State()
	m.poolIdx = clamp(m.poolIdx, len(st.Unassigned()))
	m.measure()
}

func (m *Model) columnWidths() (label, slot int) {
	label = m.width * 2 / 5
	if label < 10 {
		label = 10
	}
	slot = m.width - label - 1
	if slot < 10 {
		slot = 10
	}
	return label, slot
}

func (m *Model) labelCell(c matching.Category) string {
	w, _ := m.columnWidths()
	return labelStyle.Width(w).Render(c.Label)
}

func (m *Model) slotCell(c matching.Category) string {
	_, w := m.columnWidths()
	if o, ok := m.ctrl.State().Occupant(c.ID); ok {
		return cellStyle.Width(w).Render(o.Label)
	}
	return emptyStyle.Width(w).Render("(empty)")
}

// measure feeds both columns' natural cell heights to the synchronizer.
func (m *Model) measure() {
	cats := m.ctrl.State().Categories()
	m.rows.Truncate(len(cats))
	ready := m.width > 0
	for i, c := range cats {
		m.rows.Measure(i, matching.CategoryColumn, func() (int, bool) {
			return lipgloss.Height(m.labelCell(c)), ready
		})
		m.rows.Measure(i, matching.SlotColumn, func() (int, bool) {
			return lipgloss.Height(m.slotCell(c)), ready
		})
	}
}

// RowHeights exposes the synchronized row heights.
func (m *Model) RowHeights() map[int]int { return m.rows.Heights() }

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	st := m.ctrl.State()
	var b strings.Builder

	title := fmt.Sprintf("Question %d", m.question.ID)
	b.WriteString(titleStyle.Render(title) + "\n")
	if m.question.PromptHTML != "" {
		b.WriteString(m.question.PromptHTML + "\n")
	}
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Pool") + "\n")
	pool := st.Unassigned()
	if len(pool) == 0 {
		line := emptyStyle.Render("(drop here to unassign)")
		if m.focus == areaPool {
			line = focusStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	for i, o := range pool {
		line := cellStyle.Render(o.Label)
		if m.focus == areaPool && i == m.poolIdx {
			line = focusStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")

	labelW, slotW := m.columnWidths()
	labels := []string{headerStyle.Width(labelW).Render("Category")}
	slots := []string{headerStyle.Width(slotW).Render("Answer")}
	for i, c := range st.Categories() {
		h, _ := m.rows.Height(i)
		labels = append(labels, lipgloss.NewStyle().Height(h).Render(m.labelCell(c)))
		cell := lipgloss.NewStyle().Height(h).Render(m.slotCell(c))
		if m.focus == areaSlots && i == m.slotIdx {
			cell = focusStyle.Render(cell)
		}
		slots = append(slots, cell)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.JoinVertical(lipgloss.Left, labels...),
		" ",
		lipgloss.JoinVertical(lipgloss.Left, slots...),
	))
	b.WriteString("\n\n")

	if o, ok := m.ctrl.Dragged(); ok {
		b.WriteString(previewStyle.Render("dragging: "+o.Label) + "\n")
	}
	if m.status != "" {
		b.WriteString(m.status + "\n")
	}

	lines := m.changes.lines
	if len(lines) > maxLogLines {
		lines = lines[len(lines)-maxLogLines:]
	}
	for _, l := range lines {
		b.WriteString(logStyle.Render(l) + "\n")
	}

	var help []string
	for _, k := range m.keys.help() {
		h := k.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString(helpStyle.Render(strings.Join(help, " • ")))
	return b.String()
}
