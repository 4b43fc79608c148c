package organizer

import (
	"strings"

	"shelf/internal/config"
)

// Layout selects the destination folder shape.
type Layout string

const (
	// LayoutTypeThenDate nests root/category/YYYY/Mon.
	LayoutTypeThenDate Layout = config.MethodTypeDate
	// LayoutDateThenType nests root/YYYY/Mon/category.
	LayoutDateThenType Layout = config.MethodDateType
	// LayoutTypeOnly places files in root/category.
	LayoutTypeOnly Layout = config.MethodType
)

// ParseLayout maps a configured method to a Layout. Anything unrecognized
// falls through to LayoutTypeOnly.
func ParseLayout(method string) Layout {
	switch Layout(strings.ToLower(strings.TrimSpace(method))) {
	case LayoutTypeThenDate:
		return LayoutTypeThenDate
	case LayoutDateThenType:
		return LayoutDateThenType
	default:
		return LayoutTypeOnly
	}
}

func (l Layout) String() string {
	return string(l)
}

// Describe returns a short human label for the layout.
func (l Layout) Describe() string {
	switch l {
	case LayoutTypeThenDate:
		return "category / year / month"
	case LayoutDateThenType:
		return "year / month / category"
	default:
		return "category"
	}
}
