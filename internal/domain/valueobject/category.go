package valueobject

import (
	"fmt"
	"strings"
)

// Category is a regulatory risk bucket. It holds the storage form of the code
// ("A1"); Display renders the hyphenated form ("A-1").
type Category struct {
	value string
}

var (
	CategoryA1 = Category{value: "A1"}
	CategoryA2 = Category{value: "A2"}
	CategoryA3 = Category{value: "A3"}
	CategoryB1 = Category{value: "B1"}
	CategoryB2 = Category{value: "B2"}
	CategoryC1 = Category{value: "C1"}
	CategoryC2 = Category{value: "C2"}
	CategoryD  = Category{value: "D"}
	CategoryE  = Category{value: "E"}
)

// ordered from best to worst
var allCategories = []Category{
	CategoryA1, CategoryA2, CategoryA3,
	CategoryB1, CategoryB2,
	CategoryC1, CategoryC2,
	CategoryD, CategoryE,
}

// AllCategories returns every category ordered from best to worst.
func AllCategories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// ToStorage converts a display code to its storage form by dropping the
// hyphen. Any string is accepted; codes without a hyphen pass through.
func ToStorage(display string) string {
	return strings.ReplaceAll(display, "-", "")
}

// ToDisplay converts a storage code to its display form. Two-character codes
// get a hyphen between letter and digit; single letters pass through.
func ToDisplay(storage string) string {
	if len(storage) == 2 {
		return storage[:1] + "-" + storage[1:]
	}
	return storage
}

// CategoryFromStorage reconstructs a Category from its storage form ("B2").
func CategoryFromStorage(s string) (Category, error) {
	for _, c := range allCategories {
		if c.value == s {
			return c, nil
		}
	}
	return Category{}, fmt.Errorf("invalid category: %s", s)
}

// CategoryFromDisplay reconstructs a Category from its display form ("B-2").
func CategoryFromDisplay(s string) (Category, error) {
	for _, c := range allCategories {
		if c.Display() == s {
			return c, nil
		}
	}
	return Category{}, fmt.Errorf("invalid category: %s", s)
}

// Storage returns the code without hyphen.
func (c Category) Storage() string {
	return c.value
}

// Display returns the hyphenated code.
func (c Category) Display() string {
	return ToDisplay(c.value)
}

// String returns the display form.
func (c Category) String() string {
	return c.Display()
}

// Rank is the position of c from best (0) to worst (8), or -1 when unset.
func (c Category) Rank() int {
	for i, cat := range allCategories {
		if cat.value == c.value {
			return i
		}
	}
	return -1
}

// Worse reports whether c is a worse bucket than other.
func (c Category) Worse(other Category) bool {
	return c.Rank() > other.Rank()
}

// IsHighRisk is true for C-1 and every worse bucket.
func (c Category) IsHighRisk() bool {
	return c.Rank() >= CategoryC1.Rank()
}

// Level returns the regulatory level label of the bucket.
func (c Category) Level() RiskLevel {
	switch c.value {
	case "A1", "A2", "A3":
		return LevelNormal
	case "B1", "B2":
		return LevelPotential
	case "C1", "C2":
		return LevelDeficient
	case "D":
		return LevelDoubtful
	case "E":
		return LevelLoss
	default:
		return RiskLevel{}
	}
}

// IsZero returns true if the category has not been set.
func (c Category) IsZero() bool {
	return c.value == ""
}

// Equal checks equality with another Category.
func (c Category) Equal(other Category) bool {
	return c.value == other.value
}
