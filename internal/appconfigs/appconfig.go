// Package appconfigs manages typed application settings stored as
// key/value pairs. Values carry an explicit type tag and sensitive
// values are encrypted at rest.
package appconfigs

import (
	"encoding/json"
	"time"
)

// AppConfig is a single application setting with its decoded value.
type AppConfig struct {
	ID          int64     `json:"id"`
	Key         string    `json:"config_key"`
	Value       Value     `json:"config_value"`
	Type        ValueType `json:"config_type"`
	Description string    `json:"description,omitempty"`
	IsSensitive bool      `json:"is_sensitive"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Record is the stored form of a setting, with the value in its encoded
// (and possibly encrypted) string representation.
type Record struct {
	ID          int64
	Key         string
	Value       string
	Type        ValueType
	Description string
	IsSensitive bool
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SetCommand describes a request to create or replace a setting.
type SetCommand struct {
	Key         string          `json:"key"`
	Value       json.RawMessage `json:"value"`
	Type        ValueType       `json:"type"`
	Description string          `json:"description"`
	IsSensitive bool            `json:"is_sensitive"`
}
