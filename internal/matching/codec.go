package matching

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind classifies a drag identifier.
type Kind string

const (
	KindPoolItem   Kind = "pool-item"   // option sitting in the unassigned pool
	KindSlotItem   Kind = "slot-item"   // option occupying a category slot
	KindSlotTarget Kind = "slot-target" // drop target of a category slot
	KindPoolTarget Kind = "pool-target" // drop target of the pool area
)

// PoolContainerID is the literal identifier of the pool drop area.
const PoolContainerID = "pool-container"

const (
	prefixPool   = "pool:"
	prefixSlot   = "slot:"
	prefixTarget = "target:"
)

// Identifier is the decoded form of a drag/drop element id.
// OptionID is set for pool and slot items; CategoryID for slot items and slot targets.
type Identifier struct {
	Kind       Kind
	OptionID   int
	CategoryID int
}

func PoolItem(optionID int) Identifier {
	return Identifier{Kind: KindPoolItem, OptionID: optionID}
}

func SlotItem(optionID, categoryID int) Identifier {
	return Identifier{Kind: KindSlotItem, OptionID: optionID, CategoryID: categoryID}
}

func SlotTarget(categoryID int) Identifier {
	return Identifier{Kind: KindSlotTarget, CategoryID: categoryID}
}

func PoolTarget() Identifier { return Identifier{Kind: KindPoolTarget} }

// Draggable reports whether the identifier names something a user can pick up.
func (id Identifier) Draggable() bool {
	return id.Kind == KindPoolItem || id.Kind == KindSlotItem
}

func (id Identifier) String() string { return Encode(id) }

// Encode renders id in its wire form. It panics on an unknown Kind, which
// can only come from a hand-built Identifier.
func Encode(id Identifier) string {
	switch id.Kind {
	case KindPoolItem:
		return prefixPool + strconv.Itoa(id.OptionID)
	case KindSlotItem:
		return prefixSlot + strconv.Itoa(id.OptionID) + ":" + strconv.Itoa(id.CategoryID)
	case KindSlotTarget:
		return prefixTarget + strconv.Itoa(id.CategoryID)
	case KindPoolTarget:
		return PoolContainerID
	default:
		panic(fmt.Sprintf("matching: encode unknown identifier kind %q", id.Kind))
	}
}

// Decode parses s into an Identifier. Numbers must be in canonical decimal
// form so that Encode(Decode(s)) == s.
func Decode(s string) (Identifier, error) {
	switch {
	case s == PoolContainerID:
		return PoolTarget(), nil
	case strings.HasPrefix(s, prefixPool):
		opt, ok := parseID(strings.TrimPrefix(s, prefixPool))
		if !ok {
			return Identifier{}, invalid(s)
		}
		return PoolItem(opt), nil
	case strings.HasPrefix(s, prefixSlot):
		optPart, catPart, found := strings.Cut(strings.TrimPrefix(s, prefixSlot), ":")
		if !found {
			return Identifier{}, invalid(s)
		}
		opt, ok1 := parseID(optPart)
		cat, ok2 := parseID(catPart)
		if !ok1 || !ok2 {
			return Identifier{}, invalid(s)
		}
		return SlotItem(opt, cat), nil
	case strings.HasPrefix(s, prefixTarget):
		cat, ok := parseID(strings.TrimPrefix(s, prefixTarget))
		if !ok {
			return Identifier{}, invalid(s)
		}
		return SlotTarget(cat), nil
	}
	return Identifier{}, invalid(s)
}

func parseID(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || strconv.Itoa(n) != s {
		return 0, false
	}
	return n, true
}

func invalid(s string) error {
	return fmt.Errorf("%w: %q", ErrInvalidIdentifier, s)
}
