package setting

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/siteforge/siteforge/internal/shared/id"
)

// ValueType defines how a stored value is parsed.
type ValueType string

const (
	ValueTypeString ValueType = "string"
	ValueTypeInt    ValueType = "int"
	ValueTypeBool   ValueType = "bool"
	ValueTypeJSON   ValueType = "json"
)

// Setting is a persisted key/value option grouped by category.
type Setting struct {
	id        uint
	sid       string
	category  string
	key       string
	value     string
	valueType ValueType
	version   int
	createdAt time.Time
	updatedAt time.Time
}

func NewSetting(category, key string, valueType ValueType, now time.Time) (*Setting, error) {
	if category == "" {
		return nil, fmt.Errorf("category is required")
	}
	if key == "" {
		return nil, ErrInvalidSettingKey
	}
	if !isValidValueType(valueType) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidValueType, valueType)
	}

	sid, err := id.NewSettingID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate SID: %w", err)
	}

	return &Setting{
		sid:       sid,
		category:  category,
		key:       key,
		valueType: valueType,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructSetting rebuilds a setting from the persistence layer.
func ReconstructSetting(id uint, sid, category, key, value string, valueType ValueType, version int, createdAt, updatedAt time.Time) *Setting {
	return &Setting{
		id:        id,
		sid:       sid,
		category:  category,
		key:       key,
		value:     value,
		valueType: valueType,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (s *Setting) ID() uint             { return s.id }
func (s *Setting) SID() string          { return s.sid }
func (s *Setting) Category() string     { return s.category }
func (s *Setting) Key() string          { return s.key }
func (s *Setting) Value() string        { return s.value }
func (s *Setting) ValueType() ValueType { return s.valueType }
func (s *Setting) Version() int         { return s.version }
func (s *Setting) CreatedAt() time.Time { return s.createdAt }
func (s *Setting) UpdatedAt() time.Time { return s.updatedAt }

// SetID sets the setting ID (only for persistence layer use)
func (s *Setting) SetID(id uint) {
	s.id = id
}

func (s *Setting) HasValue() bool {
	return s.value != ""
}

func (s *Setting) IntValue() (int, error) {
	if s.value == "" {
		return 0, nil
	}
	return strconv.Atoi(strings.TrimSpace(s.value))
}

func (s *Setting) BoolValue() (bool, error) {
	if s.value == "" {
		return false, nil
	}
	return strconv.ParseBool(strings.TrimSpace(s.value))
}

func (s *Setting) JSONValue(target any) error {
	if s.value == "" {
		return nil
	}
	return json.Unmarshal([]byte(s.value), target)
}

func (s *Setting) SetString(value string, now time.Time) error {
	return s.set(ValueTypeString, value, now)
}

func (s *Setting) SetInt(value int, now time.Time) error {
	return s.set(ValueTypeInt, strconv.Itoa(value), now)
}

func (s *Setting) SetBool(value bool, now time.Time) error {
	return s.set(ValueTypeBool, strconv.FormatBool(value), now)
}

func (s *Setting) SetJSON(value any, now time.Time) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON value: %w", err)
	}
	return s.set(ValueTypeJSON, string(data), now)
}

func (s *Setting) set(vt ValueType, value string, now time.Time) error {
	if s.valueType != vt {
		return fmt.Errorf("%w: expected %s, got %s", ErrInvalidValueType, s.valueType, vt)
	}
	s.value = value
	s.version++
	s.updatedAt = now
	return nil
}

func isValidValueType(vt ValueType) bool {
	switch vt {
	case ValueTypeString, ValueTypeInt, ValueTypeBool, ValueTypeJSON:
		return true
	default:
		return false
	}
}
