package service

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseNumber reads an optional non-negative numeric form field. ok is false
// when the field is blank.
func parseNumber(field, raw string) (d decimal.Decimal, ok bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false, nil
	}
	d, err = decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, invalid(field, "Enter a valid "+field)
	}
	if d.IsNegative() {
		return decimal.Zero, false, invalid(field, capitalize(field)+" cannot be negative")
	}
	return d, true, nil
}

// requirePositive reads a numeric form field that must be present and > 0.
func requirePositive(field, raw string) (decimal.Decimal, error) {
	d, ok, err := parseNumber(field, raw)
	if err != nil {
		return decimal.Zero, err
	}
	if !ok || !d.IsPositive() {
		return decimal.Zero, invalid(field, capitalize(field)+" must be greater than zero")
	}
	return d, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
