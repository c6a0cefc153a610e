package domain

import (
	"strings"
	"unicode/utf8"
)

// MaxUnitTypeLength bounds unit type names.
const MaxUnitTypeLength = 100

// Unit is a medicine unit type (tablet, bottle, ...).
type Unit struct {
	ID       int64  `json:"unit_id"`
	UnitType string `json:"unit_type"`
}

// NormalizeUnitType trims and validates a unit type name.
func NormalizeUnitType(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrMissingArgument.WithDetails("unit_type is required")
	}
	if utf8.RuneCountInString(s) > MaxUnitTypeLength {
		return "", ErrInvalidArgument.WithDetails("unit_type is too long")
	}
	return s, nil
}
