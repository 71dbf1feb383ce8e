package matching

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// Unassigned is the category id reported for an option that went back to the pool.
const Unassigned = 0

// ErrInvalidInput is returned by New for option or category lists that cannot
// form a session (duplicate ids, or a category using the reserved id 0).
var ErrInvalidInput = errors.New("invalid matching input")

type Category struct {
	ID           int    `json:"id"`
	Label        string `json:"label"`
	DisplayOrder int    `json:"display_order"`
}

// Option is an answer item. AuthoritativeCategoryID is the known correct
// category and is only read by the review view.
type Option struct {
	ID                      int    `json:"id"`
	Label                   string `json:"label"`
	AuthoritativeCategoryID *int   `json:"authoritative_category_id,omitempty"`
}

// Pair places an option in a category. CategoryID == Unassigned means the pool.
// It is both the construction input for drafts and the unit of change
// reported by every transition.
type Pair struct {
	OptionID   int `json:"option_id"`
	CategoryID int `json:"category_id"`
}

type slot struct {
	optionID int
	occupied bool
}

// State is an immutable assignment snapshot. Transitions return a new State
// and leave the receiver untouched.
type State struct {
	categories  []Category // display order
	optionOrder []int
	options     map[int]Option
	unassigned  []int
	placement   map[int]slot
	rejected    []Pair
}

// BuildOption adjusts how New lays out the initial state.
type BuildOption func(*buildConfig)

type buildConfig struct {
	poolOrder []int
}

// WithPoolOrder restores a saved pool order. Unassigned options listed in
// order go last, in that order; unlisted ones keep input order ahead of them.
// Ids that are unknown or placed are ignored.
func WithPoolOrder(order []int) BuildOption {
	return func(c *buildConfig) { c.poolOrder = order }
}

// New builds the initial state. Categories are ordered by DisplayOrder, ties
// keeping input order. Existing pairs that would put an option in two places,
// fill a slot twice or reference unknown ids are skipped; see Rejected.
func New(options []Option, categories []Category, existing []Pair, opts ...BuildOption) (State, error) {
	var cfg buildConfig
	for _, o := range opts {
		o(&cfg)
	}

	s := State{
		categories:  slices.Clone(categories),
		optionOrder: make([]int, 0, len(options)),
		options:     make(map[int]Option, len(options)),
		placement:   make(map[int]slot, len(categories)),
	}
	slices.SortStableFunc(s.categories, func(a, b Category) int {
		return cmp.Compare(a.DisplayOrder, b.DisplayOrder)
	})
	for _, c := range s.categories {
		if c.ID == Unassigned {
			return State{}, fmt.Errorf("%w: category id %d is reserved", ErrInvalidInput, Unassigned)
		}
		if _, dup := s.placement[c.ID]; dup {
			return State{}, fmt.Errorf("%w: duplicate category %d", ErrInvalidInput, c.ID)
		}
		s.placement[c.ID] = slot{}
	}
	for _, o := range options {
		if _, dup := s.options[o.ID]; dup {
			return State{}, fmt.Errorf("%w: duplicate option %d", ErrInvalidInput, o.ID)
		}
		s.options[o.ID] = o
		s.optionOrder = append(s.optionOrder, o.ID)
	}

	placed := make(map[int]bool, len(existing))
	for _, p := range existing {
		cur, knownCat := s.placement[p.CategoryID]
		_, knownOpt := s.options[p.OptionID]
		if !knownOpt || !knownCat || cur.occupied || placed[p.OptionID] {
			s.rejected = append(s.rejected, p)
			continue
		}
		s.placement[p.CategoryID] = slot{optionID: p.OptionID, occupied: true}
		placed[p.OptionID] = true
	}
	tail := make(map[int]bool, len(cfg.poolOrder))
	for _, id := range cfg.poolOrder {
		if _, known := s.options[id]; known && !placed[id] {
			tail[id] = true
		}
	}
	for _, id := range s.optionOrder {
		if !placed[id] && !tail[id] {
			s.unassigned = append(s.unassigned, id)
		}
	}
	for _, id := range cfg.poolOrder {
		if tail[id] {
			s.unassigned = append(s.unassigned, id)
			delete(tail, id)
		}
	}
	return s, nil
}

// Rejected lists the existing pairs New could not apply.
func (s State) Rejected() []Pair { return slices.Clone(s.rejected) }

func (s State) Categories() []Category { return slices.Clone(s.categories) }

// Options returns every option in input order.
func (s State) Options() []Option {
	out := make([]Option, 0, len(s.optionOrder))
	for _, id := range s.optionOrder {
		out = append(out, s.options[id])
	}
	return out
}

func (s State) Option(id int) (Option, bool) {
	o, ok := s.options[id]
	return o, ok
}

// Unassigned returns the pool in order.
func (s State) Unassigned() []Option {
	out := make([]Option, 0, len(s.unassigned))
	for _, id := range s.unassigned {
		out = append(out, s.options[id])
	}
	return out
}

// Occupant returns the option in a category's slot.
func (s State) Occupant(categoryID int) (Option, bool) {
	sl, ok := s.placement[categoryID]
	if !ok || !sl.occupied {
		return Option{}, false
	}
	return s.options[sl.optionID], true
}

// CategoryOf returns the category currently holding optionID, or Unassigned
// for a pooled option. ok is false for an unknown option.
func (s State) CategoryOf(optionID int) (categoryID int, ok bool) {
	if _, known := s.options[optionID]; !known {
		return 0, false
	}
	for cat, sl := range s.placement {
		if sl.occupied && sl.optionID == optionID {
			return cat, true
		}
	}
	return Unassigned, true
}

// Assignments lists the filled slots in display order.
func (s State) Assignments() []Pair {
	out := make([]Pair, 0, len(s.categories))
	for _, c := range s.categories {
		if sl := s.placement[c.ID]; sl.occupied {
			out = append(out, Pair{OptionID: sl.optionID, CategoryID: c.ID})
		}
	}
	return out
}

// Validate checks that every option sits in exactly one place and that each
// category has exactly one slot.
func (s State) Validate() error {
	if len(s.placement) != len(s.categories) {
		return fmt.Errorf("slot count %d does not match %d categories", len(s.placement), len(s.categories))
	}
	seen := make(map[int]int, len(s.options))
	for _, id := range s.unassigned {
		seen[id]++
	}
	for _, c := range s.categories {
		sl, ok := s.placement[c.ID]
		if !ok {
			return fmt.Errorf("category %d has no slot", c.ID)
		}
		if sl.occupied {
			seen[sl.optionID]++
		}
	}
	for _, id := range s.optionOrder {
		if seen[id] != 1 {
			return fmt.Errorf("option %d appears %d times", id, seen[id])
		}
		delete(seen, id)
	}
	for id := range seen {
		return fmt.Errorf("unknown option %d in state", id)
	}
	return nil
}

func (s State) clone() State {
	n := s
	n.unassigned = slices.Clone(s.unassigned)
	n.placement = make(map[int]slot, len(s.placement))
	for k, v := range s.placement {
		n.placement[k] = v
	}
	return n
}

func (s State) poolIndex(optionID int) int {
	return slices.Index(s.unassigned, optionID)
}

func (s State) occupies(optionID, categoryID int) bool {
	sl, ok := s.placement[categoryID]
	return ok && sl.occupied && sl.optionID == optionID
}

// PlaceFromPool moves a pooled option into a category. A current occupant is
// displaced to the end of the pool. Changes are reported displaced first.
func (s State) PlaceFromPool(optionID, categoryID int) (State, []Pair, error) {
	idx := s.poolIndex(optionID)
	if idx < 0 {
		return s, nil, fmt.Errorf("%w: option %d is not in the pool", ErrPreconditionFailed, optionID)
	}
	cur, ok := s.placement[categoryID]
	if !ok {
		return s, nil, fmt.Errorf("%w: unknown category %d", ErrPreconditionFailed, categoryID)
	}

	n := s.clone()
	n.unassigned = slices.Delete(n.unassigned, idx, idx+1)
	var changes []Pair
	if cur.occupied {
		n.unassigned = append(n.unassigned, cur.optionID)
		changes = append(changes, Pair{OptionID: cur.optionID, CategoryID: Unassigned})
	}
	n.placement[categoryID] = slot{optionID: optionID, occupied: true}
	changes = append(changes, Pair{OptionID: optionID, CategoryID: categoryID})
	return n, changes, nil
}

// MoveBetweenSlots moves a placed option to another category. When the
// destination is occupied the two options swap; the pool never grows.
// Moving onto the same category is a no-op.
func (s State) MoveBetweenSlots(optionID, fromCategoryID, toCategoryID int) (State, []Pair, error) {
	if !s.occupies(optionID, fromCategoryID) {
		return s, nil, fmt.Errorf("%w: option %d does not occupy category %d", ErrPreconditionFailed, optionID, fromCategoryID)
	}
	dest, ok := s.placement[toCategoryID]
	if !ok {
		return s, nil, fmt.Errorf("%w: unknown category %d", ErrPreconditionFailed, toCategoryID)
	}
	if fromCategoryID == toCategoryID {
		return s, nil, nil
	}

	n := s.clone()
	n.placement[toCategoryID] = slot{optionID: optionID, occupied: true}
	changes := []Pair{{OptionID: optionID, CategoryID: toCategoryID}}
	if dest.occupied {
		n.placement[fromCategoryID] = slot{optionID: dest.optionID, occupied: true}
		changes = append(changes, Pair{OptionID: dest.optionID, CategoryID: fromCategoryID})
	} else {
		n.placement[fromCategoryID] = slot{}
	}
	return n, changes, nil
}

// ReturnToPool empties a slot and appends its option to the end of the pool.
func (s State) ReturnToPool(optionID, fromCategoryID int) (State, []Pair, error) {
	if !s.occupies(optionID, fromCategoryID) {
		return s, nil, fmt.Errorf("%w: option %d does not occupy category %d", ErrPreconditionFailed, optionID, fromCategoryID)
	}
	n := s.clone()
	n.placement[fromCategoryID] = slot{}
	n.unassigned = append(n.unassigned, optionID)
	return n, []Pair{{OptionID: optionID, CategoryID: Unassigned}}, nil
}

// NoOp returns the state unchanged.
func (s State) NoOp() (State, []Pair, error) { return s, nil, nil }
