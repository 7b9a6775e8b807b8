package setting

import "errors"

var (
	ErrSettingNotFound = errors.New("setting not found")

	// ErrInvalidSettingKey is returned for keys outside the billing key set.
	ErrInvalidSettingKey = errors.New("unknown billing setting")

	// ErrInvalidValueType is returned when a value does not match the key's type.
	ErrInvalidValueType = errors.New("setting value has the wrong type")
)
