package thing

import (
	"fmt"
	"strconv"
	"strings"
)

// Identity addresses a single thing inside an archive. It is a comparable
// value and serves as the deduplication key for selections.
type Identity struct {
	Category Category
	ID       uint32
}

// New returns the identity for category/id.
func New(category Category, id uint32) Identity {
	return Identity{Category: category, ID: id}
}

func (i Identity) String() string {
	return fmt.Sprintf("%s %d", i.Category, i.ID)
}

// ParseIdentity parses the "category:id" form used on the command line.
func ParseIdentity(value string) (Identity, error) {
	sel, err := ParseSelector(value)
	if err != nil {
		return Identity{}, err
	}
	if sel.All || sel.From != sel.To {
		return Identity{}, fmt.Errorf("identity %q: expected a single id", value)
	}
	return New(sel.Category, sel.From), nil
}

// Selector describes a group of identities within one category: a single id,
// an inclusive range, or the whole category.
type Selector struct {
	Category Category
	From     uint32
	To       uint32
	All      bool
}

// ParseSelector parses "item:100", "item:100-110" or "missile:all".
func ParseSelector(value string) (Selector, error) {
	raw := strings.TrimSpace(value)
	name, rest, ok := strings.Cut(raw, ":")
	if !ok {
		return Selector{}, fmt.Errorf("selector %q: expected category:id", value)
	}
	category, err := ParseCategory(name)
	if err != nil {
		return Selector{}, fmt.Errorf("selector %q: %w", value, err)
	}
	rest = strings.TrimSpace(rest)
	if strings.EqualFold(rest, "all") {
		return Selector{Category: category, All: true}, nil
	}
	fromText, toText, isRange := strings.Cut(rest, "-")
	from, err := parseID(fromText)
	if err != nil {
		return Selector{}, fmt.Errorf("selector %q: %w", value, err)
	}
	to := from
	if isRange {
		if to, err = parseID(toText); err != nil {
			return Selector{}, fmt.Errorf("selector %q: %w", value, err)
		}
		if to < from {
			return Selector{}, fmt.Errorf("selector %q: range end %d before start %d", value, to, from)
		}
	}
	return Selector{Category: category, From: from, To: to}, nil
}

// Matches reports whether id falls inside the selector.
func (s Selector) Matches(id Identity) bool {
	if id.Category != s.Category {
		return false
	}
	return s.All || (id.ID >= s.From && id.ID <= s.To)
}

// Expand filters the available identities of the selector's category down to
// those the selector matches, preserving order. Identities outside the
// available set are dropped.
func (s Selector) Expand(available []Identity) []Identity {
	out := make([]Identity, 0)
	for _, id := range available {
		if s.Matches(id) {
			out = append(out, id)
		}
	}
	return out
}

func parseID(text string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(text), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", strings.TrimSpace(text))
	}
	return uint32(n), nil
}
