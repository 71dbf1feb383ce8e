package http

import (
	"github.com/mind-engage/quizboard/internal/exam"
	"github.com/mind-engage/quizboard/internal/matching"
)

// BoardItem is a draggable option with the identifier a client sends back
// as a drag source.
type BoardItem struct {
	ID       string `json:"id"`
	OptionID int    `json:"option_id"`
	Label    string `json:"label"`
}

// BoardSlot is one category row: its drop target and current occupant.
type BoardSlot struct {
	Target     string     `json:"target"`
	CategoryID int        `json:"category_id"`
	Label      string     `json:"label"`
	Item       *BoardItem `json:"item,omitempty"`
}

// Board is everything a client needs to draw one matching question.
type Board struct {
	QuestionID int             `json:"question_id"`
	PromptHTML string          `json:"prompt_html,omitempty"`
	PoolTarget string          `json:"pool_target"`
	Pool       []BoardItem     `json:"pool"`
	Slots      []BoardSlot     `json:"slots"`
	Rejected   []matching.Pair `json:"rejected,omitempty"`
	Readonly   bool            `json:"readonly"`
}

func buildBoard(q exam.Question, st matching.State, readonly bool) Board {
	b := Board{
		QuestionID: q.ID,
		PromptHTML: q.PromptHTML,
		PoolTarget: matching.Encode(matching.PoolTarget()),
		Pool:       []BoardItem{},
		Slots:      []BoardSlot{},
		Rejected:   st.Rejected(),
		Readonly:   readonly,
	}
	for _, o := range st.Unassigned() {
		b.Pool = append(b.Pool, BoardItem{
			ID:       matching.Encode(matching.PoolItem(o.ID)),
			OptionID: o.ID,
			Label:    o.Label,
		})
	}
	for _, c := range st.Categories() {
		slot := BoardSlot{
			Target:     matching.Encode(matching.SlotTarget(c.ID)),
			CategoryID: c.ID,
			Label:      c.Label,
		}
		if o, ok := st.Occupant(c.ID); ok {
			slot.Item = &BoardItem{
				ID:       matching.Encode(matching.SlotItem(o.ID, c.ID)),
				OptionID: o.ID,
				Label:    o.Label,
			}
		}
		b.Slots = append(b.Slots, slot)
	}
	return b
}
