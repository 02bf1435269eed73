// Package value models slicer property values that carry an optional unit
// suffix, and the relative-adjustment expressions accepted by the editor.
package value

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Unit is the closed set of suffixes a numeric property value may carry.
type Unit int

const (
	UnitNone Unit = iota
	UnitPercent
	UnitMillimeter
)

func (u Unit) Suffix() string {
	switch u {
	case UnitPercent:
		return "%"
	case UnitMillimeter:
		return "mm"
	default:
		return ""
	}
}

func parseUnit(raw string) Unit {
	switch raw {
	case "%":
		return UnitPercent
	case "mm":
		return UnitMillimeter
	default:
		return UnitNone
	}
}

// Value is a parsed numeric property value.
type Value struct {
	Magnitude decimal.Decimal
	Unit      Unit
}

var (
	valueRe      = regexp.MustCompile(`^([+-]?\d+(?:\.\d+)?)\s*(%|mm)?$`)
	adjustmentRe = regexp.MustCompile(`^=\s*([+-])\s*(\d+(?:\.\d+)?)\s*(%|mm)?$`)
)

// fractionPlaces bounds how many decimal places a fractional result keeps.
const fractionPlaces = 3

// Parse reads a raw property string such as "0.4", "20%" or "0.25mm".
func Parse(raw string) (Value, error) {
	match := valueRe.FindStringSubmatch(strings.TrimSpace(raw))
	if match == nil {
		return Value{}, fmt.Errorf("not a numeric value: %q", raw)
	}
	magnitude, err := decimal.NewFromString(match[1])
	if err != nil {
		return Value{}, fmt.Errorf("bad magnitude in %q: %w", raw, err)
	}
	return Value{Magnitude: magnitude, Unit: parseUnit(match[2])}, nil
}

// String formats the value the way profiles store it: integers stay integral,
// fractional magnitudes round to a fixed number of places.
func (v Value) String() string {
	magnitude := v.Magnitude
	if !magnitude.IsInteger() {
		magnitude = magnitude.Round(fractionPlaces)
	}
	return magnitude.String() + v.Unit.Suffix()
}

// Float returns the magnitude as a float64, for filter comparisons only.
func (v Value) Float() float64 {
	f, _ := v.Magnitude.Float64()
	return f
}

// Adjustment is a relative edit of the form "=+0.05", "=-10%" or "=+1mm".
type Adjustment struct {
	Delta decimal.Decimal
	Unit  Unit
}

// ParseAdjustment reads a relative-edit expression. A missing unit means the
// delta applies in whatever unit the current value carries.
func ParseAdjustment(raw string) (Adjustment, error) {
	match := adjustmentRe.FindStringSubmatch(strings.TrimSpace(raw))
	if match == nil {
		return Adjustment{}, fmt.Errorf("not a relative adjustment: %q", raw)
	}
	delta, err := decimal.NewFromString(match[2])
	if err != nil {
		return Adjustment{}, fmt.Errorf("bad delta in %q: %w", raw, err)
	}
	if match[1] == "-" {
		delta = delta.Neg()
	}
	return Adjustment{Delta: delta, Unit: parseUnit(match[3])}, nil
}

// IsAdjustment reports whether raw looks like a relative-edit expression.
func IsAdjustment(raw string) bool {
	return strings.HasPrefix(strings.TrimSpace(raw), "=")
}

// Apply adds the adjustment to a current raw value, preserving its unit.
// A unit carried by the adjustment must match the current value's unit.
func Apply(current string, adj Adjustment) (string, error) {
	cur, err := Parse(current)
	if err != nil {
		return "", err
	}
	if adj.Unit != UnitNone && adj.Unit != cur.Unit {
		return "", fmt.Errorf("unit mismatch: cannot apply %s%s to %q",
			adj.Delta.String(), adj.Unit.Suffix(), current)
	}
	result := Value{Magnitude: cur.Magnitude.Add(adj.Delta), Unit: cur.Unit}
	return result.String(), nil
}
