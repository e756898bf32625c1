package core

import (
	"fmt"
	"strconv"
	"strings"
)

// UnitKind tags a parameter with its physical unit. A single tagged record
// plus this table replaces a subclass-per-unit hierarchy.
type UnitKind string

const (
	UnitNone        UnitKind = "none"
	UnitTemperature UnitKind = "temperature"
	UnitPressure    UnitKind = "pressure"
	UnitPercent     UnitKind = "percent"
	UnitHours       UnitKind = "hours"
	UnitRPM         UnitKind = "rpm"
	UnitEnergy      UnitKind = "energy"
	UnitList        UnitKind = "list"
)

type unitSpec struct {
	Suffix   string
	Validate func(v float64) error
}

var unitTable = map[UnitKind]unitSpec{
	UnitNone:        {},
	UnitTemperature: {Suffix: "°C"},
	UnitPressure:    {Suffix: "bar", Validate: nonNegative},
	UnitPercent:     {Suffix: "%", Validate: percentRange},
	UnitHours:       {Suffix: "h", Validate: nonNegative},
	UnitRPM:         {Suffix: "rpm", Validate: nonNegative},
	UnitEnergy:      {Suffix: "kWh", Validate: nonNegative},
	UnitList:        {},
}

func nonNegative(v float64) error {
	if v < 0 {
		return fmt.Errorf("value %v must not be negative", v)
	}
	return nil
}

func percentRange(v float64) error {
	if v < 0 || v > 100 {
		return fmt.Errorf("value %v outside 0..100", v)
	}
	return nil
}

// UnitKindFromDescriptor maps the portal's unit string (and the presence of
// list items) to a UnitKind.
func UnitKindFromDescriptor(unit string, hasListItems bool) UnitKind {
	if hasListItems {
		return UnitList
	}
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "°c", "c", "k":
		return UnitTemperature
	case "bar":
		return UnitPressure
	case "%":
		return UnitPercent
	case "h", "std":
		return UnitHours
	case "u/min", "rpm":
		return UnitRPM
	case "kwh", "wh", "mwh":
		return UnitEnergy
	case "":
		return UnitNone
	default:
		return UnitNone
	}
}

// FormatValue renders a raw portal value for display. List parameters are
// resolved through their item table; numeric parameters get the unit suffix.
func (p Parameter) FormatValue(raw string) string {
	if p.Unit == UnitList {
		if name, ok := p.ListItems[raw]; ok {
			return name
		}
		return raw
	}
	spec := unitTable[p.Unit]
	if spec.Suffix == "" {
		return raw
	}
	return raw + " " + spec.Suffix
}

// ValidateValue checks a candidate value before it is written upstream.
func (p Parameter) ValidateValue(raw string) error {
	if p.ReadOnly {
		return fmt.Errorf("parameter %q is read-only", p.Name)
	}
	if p.Unit == UnitList {
		if _, ok := p.ListItems[raw]; !ok {
			return fmt.Errorf("value %q is not a valid item for %q", raw, p.Name)
		}
		return nil
	}
	spec := unitTable[p.Unit]
	if spec.Validate == nil {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("value %q is not numeric: %w", raw, err)
	}
	return spec.Validate(v)
}
