package thing

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Category is the closed set of thing kinds stored in a client archive.
type Category uint8

const (
	Item Category = iota + 1
	Outfit
	Effect
	Missile
)

var allCategories = []Category{Item, Outfit, Effect, Missile}

// Categories returns every category in archive order.
func Categories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// String returns the canonical name, which is also the artifact file prefix.
func (c Category) String() string {
	switch c {
	case Item:
		return "Item"
	case Outfit:
		return "Outfit"
	case Effect:
		return "Effect"
	case Missile:
		return "Missile"
	default:
		return fmt.Sprintf("Category(%d)", uint8(c))
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c >= Item && c <= Missile
}

var folder = cases.Fold()

// ParseCategory resolves a category name case-insensitively. Plural forms
// ("items", "Outfits") are accepted.
func ParseCategory(value string) (Category, error) {
	key := folder.String(strings.TrimSpace(value))
	if key == "" {
		return 0, fmt.Errorf("category: empty value")
	}
	for _, c := range allCategories {
		name := folder.String(c.String())
		if key == name || key == name+"s" {
			return c, nil
		}
	}
	return 0, fmt.Errorf("category: unknown value %q", value)
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("category: invalid value %d", uint8(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
