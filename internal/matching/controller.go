package matching

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Phase is the drag session state.
type Phase int

const (
	Idle Phase = iota
	Dragging
)

func (p Phase) String() string {
	if p == Dragging {
		return "dragging"
	}
	return "idle"
}

// Transition names the store operation a drag resolved to.
type Transition string

const (
	TransitionNone   Transition = "noop"
	TransitionPlace  Transition = "place_from_pool"
	TransitionMove   Transition = "move_between_slots"
	TransitionReturn Transition = "return_to_pool"
)

// Notifier receives one call per option whose category changed.
// categoryID == Unassigned means the option went back to the pool.
type Notifier interface {
	OnAssignmentChange(questionID, optionID, categoryID int)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(questionID, optionID, categoryID int)

func (f NotifierFunc) OnAssignmentChange(questionID, optionID, categoryID int) {
	f(questionID, optionID, categoryID)
}

// Result describes what a finished drag did.
type Result struct {
	Transition Transition `json:"transition"`
	Changes    []Pair     `json:"changes"`
}

// Controller drives drags against one question's State. It is owned by a
// single question instance and is not safe for concurrent use.
type Controller struct {
	questionID int
	state      State
	phase      Phase
	source     Identifier
	notifier   Notifier
	log        zerolog.Logger
}

type ControllerOption func(*Controller)

func WithNotifier(n Notifier) ControllerOption {
	return func(c *Controller) { c.notifier = n }
}

func WithLogger(l zerolog.Logger) ControllerOption {
	return func(c *Controller) { c.log = l }
}

func NewController(questionID int, state State, opts ...ControllerOption) *Controller {
	c := &Controller{
		questionID: questionID,
		state:      state,
		log:        zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.With().Int("question_id", questionID).Logger()
	return c
}

func (c *Controller) QuestionID() int { return c.questionID }
func (c *Controller) State() State    { return c.state }
func (c *Controller) Phase() Phase    { return c.phase }

// Dragged returns the option being dragged, for the floating preview.
func (c *Controller) Dragged() (Option, bool) {
	if c.phase != Dragging {
		return Option{}, false
	}
	return c.state.Option(c.source.OptionID)
}

// DragStart captures the source of a drag. A drag already in progress is
// replaced. Only pool and slot items can be picked up.
func (c *Controller) DragStart(sourceID string) error {
	src, err := Decode(sourceID)
	if err != nil {
		c.log.Warn().Err(err).Str("source", sourceID).Msg("drag start with undecodable source")
		c.reset()
		return err
	}
	if !src.Draggable() {
		c.reset()
		return fmt.Errorf("%w: %s is a drop target", ErrPreconditionFailed, sourceID)
	}
	if _, ok := c.state.Option(src.OptionID); !ok {
		c.reset()
		return fmt.Errorf("%w: unknown option %d", ErrPreconditionFailed, src.OptionID)
	}
	c.source = src
	c.phase = Dragging
	return nil
}

// Cancel ends a drag without touching the state.
func (c *Controller) Cancel() { c.reset() }

// DragEnd resolves the drag against destinationID and returns to Idle. An
// empty destination, an undecodable one, or any transition whose
// preconditions no longer hold leaves the state unchanged and notifies no one.
func (c *Controller) DragEnd(destinationID string) Result {
	if c.phase != Dragging {
		return Result{Transition: TransitionNone}
	}
	src := c.source
	c.reset()

	if destinationID == "" {
		return Result{Transition: TransitionNone}
	}
	dst, err := Decode(destinationID)
	if err != nil {
		c.log.Warn().Err(err).Str("destination", destinationID).Msg("drag end with undecodable destination")
		return Result{Transition: TransitionNone}
	}

	next, changes, kind, err := c.resolve(src, dst)
	if err != nil {
		c.log.Debug().Err(err).
			Str("source", Encode(src)).
			Str("destination", destinationID).
			Msg("drag degraded to no-op")
		return Result{Transition: TransitionNone}
	}
	if len(changes) == 0 {
		return Result{Transition: TransitionNone}
	}

	c.state = next
	for _, ch := range changes {
		if c.notifier != nil {
			c.notifier.OnAssignmentChange(c.questionID, ch.OptionID, ch.CategoryID)
		}
	}
	c.log.Debug().Str("transition", string(kind)).Int("changes", len(changes)).Msg("drag applied")
	return Result{Transition: kind, Changes: changes}
}

// Drag runs a full start/end cycle, the way a keyboard drop does.
func (c *Controller) Drag(sourceID, destinationID string) (Result, error) {
	if err := c.DragStart(sourceID); err != nil {
		return Result{Transition: TransitionNone}, err
	}
	return c.DragEnd(destinationID), nil
}

func (c *Controller) resolve(src, dst Identifier) (State, []Pair, Transition, error) {
	switch dst.Kind {
	case KindSlotTarget:
		switch src.Kind {
		case KindPoolItem:
			s, ch, err := c.state.PlaceFromPool(src.OptionID, dst.CategoryID)
			return s, ch, TransitionPlace, err
		case KindSlotItem:
			if src.CategoryID == dst.CategoryID {
				s, ch, err := c.state.NoOp()
				return s, ch, TransitionNone, err
			}
			s, ch, err := c.state.MoveBetweenSlots(src.OptionID, src.CategoryID, dst.CategoryID)
			return s, ch, TransitionMove, err
		}
	case KindPoolTarget:
		if src.Kind == KindSlotItem {
			s, ch, err := c.state.ReturnToPool(src.OptionID, src.CategoryID)
			return s, ch, TransitionReturn, err
		}
	}
	s, ch, err := c.state.NoOp()
	return s, ch, TransitionNone, err
}

func (c *Controller) reset() {
	c.phase = Idle
	c.source = Identifier{}
}
