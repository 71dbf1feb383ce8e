package matching

// Column identifies one of the two independently laid out columns.
type Column int

const (
	CategoryColumn Column = iota
	SlotColumn
)

// MeasureFunc reports a cell's natural content height. ok is false when the
// cell cannot be measured yet (not mounted, zero width).
type MeasureFunc func() (height int, ok bool)

type rowCells struct {
	height   [2]int
	measured [2]bool
}

func (r rowCells) max() int {
	m := 0
	for i := range r.height {
		if r.measured[i] && r.height[i] > m {
			m = r.height[i]
		}
	}
	return m
}

// RowSynchronizer keeps row i of both columns at the same height: the larger
// natural height of its two cells. It is fed by content-change signals and
// owned by a single matching question.
type RowSynchronizer struct {
	rows     map[int]rowCells
	tracked  map[int]int
	onChange func(row, height int)
}

func NewRowSynchronizer() *RowSynchronizer {
	return &RowSynchronizer{
		rows:    map[int]rowCells{},
		tracked: map[int]int{},
	}
}

// OnChange registers a callback fired whenever a row's shared height moves.
func (s *RowSynchronizer) OnChange(fn func(row, height int)) { s.onChange = fn }

// Measure re-measures one cell after its content changed. The row's shared
// height is updated only when the new value differs from the tracked one, so
// once both cells are measured repeated signals settle. A failed measurement
// is skipped. It reports whether the shared height changed.
func (s *RowSynchronizer) Measure(row int, col Column, measure MeasureFunc) bool {
	h, ok := measure()
	if !ok || h < 0 {
		return false
	}
	return s.Observe(row, col, h)
}

// Observe records an already measured natural height.
func (s *RowSynchronizer) Observe(row int, col Column, height int) bool {
	if height < 0 || (col != CategoryColumn && col != SlotColumn) {
		return false
	}
	cells := s.rows[row]
	cells.height[col] = height
	cells.measured[col] = true
	s.rows[row] = cells

	next := cells.max()
	if cur, ok := s.tracked[row]; ok && cur == next {
		return false
	}
	s.tracked[row] = next
	if s.onChange != nil {
		s.onChange(row, next)
	}
	return true
}

// Height returns the shared height constraint for a row.
func (s *RowSynchronizer) Height(row int) (int, bool) {
	h, ok := s.tracked[row]
	return h, ok
}

// Heights returns a copy of the row -> height map.
func (s *RowSynchronizer) Heights() map[int]int {
	out := make(map[int]int, len(s.tracked))
	for k, v := range s.tracked {
		out[k] = v
	}
	return out
}

// Truncate drops rows at index n and beyond, used when the row count shrinks.
func (s *RowSynchronizer) Truncate(n int) {
	for row := range s.rows {
		if row >= n {
			delete(s.rows, row)
			delete(s.tracked, row)
		}
	}
}

// Reset forgets every measurement, e.g. after a width change.
func (s *RowSynchronizer) Reset() {
	s.rows = map[int]rowCells{}
	s.tracked = map[int]int{}
}
