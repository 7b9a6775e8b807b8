package valueobjects

import (
	"fmt"
	"time"
)

// DurationUnit is the unit of a billing period.
type DurationUnit string

const (
	DurationUnitDay   DurationUnit = "day"
	DurationUnitWeek  DurationUnit = "week"
	DurationUnitMonth DurationUnit = "month"
	DurationUnitYear  DurationUnit = "year"
)

var validDurationUnits = map[DurationUnit]bool{
	DurationUnitDay:   true,
	DurationUnitWeek:  true,
	DurationUnitMonth: true,
	DurationUnitYear:  true,
}

func (u DurationUnit) String() string {
	return string(u)
}

func (u DurationUnit) IsValid() bool {
	return validDurationUnits[u]
}

// ParseDurationUnit parses a unit name. An empty value defaults to month.
func ParseDurationUnit(s string) (DurationUnit, error) {
	if s == "" {
		return DurationUnitMonth, nil
	}
	u := DurationUnit(s)
	if !u.IsValid() {
		return "", fmt.Errorf("invalid duration unit: %s", s)
	}
	return u, nil
}

// Period is a billing interval such as "3 months".
type Period struct {
	Duration int          `json:"duration"`
	Unit     DurationUnit `json:"duration_unit"`
}

func NewPeriod(duration int, unit DurationUnit) (Period, error) {
	p := Period{Duration: duration, Unit: unit}
	if !p.IsValid() {
		return Period{}, fmt.Errorf("invalid period: %d %s", duration, unit)
	}
	return p, nil
}

func (p Period) IsValid() bool {
	return p.Duration >= 1 && p.Unit.IsValid()
}

func (p Period) IsZero() bool {
	return p.Duration == 0 && p.Unit == ""
}

func (p Period) Equal(other Period) bool {
	return p.Duration == other.Duration && p.Unit == other.Unit
}

// AddTo advances t by the period. Month and year arithmetic follows time.AddDate.
func (p Period) AddTo(t time.Time) time.Time {
	switch p.Unit {
	case DurationUnitDay:
		return t.AddDate(0, 0, p.Duration)
	case DurationUnitWeek:
		return t.AddDate(0, 0, 7*p.Duration)
	case DurationUnitMonth:
		return t.AddDate(0, p.Duration, 0)
	case DurationUnitYear:
		return t.AddDate(p.Duration, 0, 0)
	}
	return t
}

// Label renders the period for humans, e.g. "1 month" or "3 months".
func (p Period) Label() string {
	if p.Duration == 1 {
		return fmt.Sprintf("1 %s", p.Unit)
	}
	return fmt.Sprintf("%d %ss", p.Duration, p.Unit)
}
