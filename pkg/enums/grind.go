package enums

import "fmt"

// Grind is the optional grind variant chosen when a coffee is added to the
// cart. The zero value means no preference (whole bags ship as-is).
type Grind string

const (
	GrindNone      Grind = ""
	GrindWholeBean Grind = "whole-bean"
	GrindFilter    Grind = "filter"
	GrindEspresso  Grind = "espresso"
)

var validGrinds = []Grind{
	GrindNone,
	GrindWholeBean,
	GrindFilter,
	GrindEspresso,
}

// String implements fmt.Stringer.
func (g Grind) String() string {
	return string(g)
}

// IsValid reports whether the value is a known Grind. The empty grind is
// valid: it means the customer left the selector untouched.
func (g Grind) IsValid() bool {
	for _, candidate := range validGrinds {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseGrind converts raw input into a Grind.
func ParseGrind(value string) (Grind, error) {
	for _, candidate := range validGrinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid grind %q", value)
}
