package appconfigs

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ValueType tags the variant stored in a Value.
type ValueType string

// Supported value types.
const (
	TypeString  ValueType = "string"
	TypeNumber  ValueType = "number"
	TypeBoolean ValueType = "boolean"
	TypeJSON    ValueType = "json"
)

// Validate checks if the type is a supported value type.
func (t ValueType) Validate() error {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeJSON:
		return nil
	default:
		return fmt.Errorf("%w: unknown value type %q", ErrValidation, string(t))
	}
}

// Value is a tagged union over the supported setting types. Exactly one
// variant field is meaningful, selected by Type. It replaces ad hoc
// string parsing at read sites with explicit per-variant conversion.
type Value struct {
	Type ValueType
	Str  string
	Num  float64
	Bool bool
	JSON json.RawMessage
}

// StringValue creates a string-typed Value.
func StringValue(s string) Value { return Value{Type: TypeString, Str: s} }

// NumberValue creates a number-typed Value.
func NumberValue(f float64) Value { return Value{Type: TypeNumber, Num: f} }

// BooleanValue creates a boolean-typed Value.
func BooleanValue(b bool) Value { return Value{Type: TypeBoolean, Bool: b} }

// JSONValue creates a json-typed Value.
func JSONValue(raw json.RawMessage) Value { return Value{Type: TypeJSON, JSON: raw} }

// Encode converts the value to its stored string form: numbers in
// minimal decimal notation, booleans as literal "true"/"false", json as
// its serialized document.
func (v Value) Encode() (string, error) {
	switch v.Type {
	case TypeString:
		return v.Str, nil
	case TypeNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64), nil
	case TypeBoolean:
		return strconv.FormatBool(v.Bool), nil
	case TypeJSON:
		if !json.Valid(v.JSON) {
			return "", fmt.Errorf("%w: invalid json value", ErrValidation)
		}
		return string(v.JSON), nil
	default:
		return "", fmt.Errorf("%w: unknown value type %q", ErrValidation, string(v.Type))
	}
}

// DecodeValue parses a stored string back into a typed Value. A stored
// form that no longer round-trips to its declared type reports
// ErrCorrupt.
func DecodeValue(t ValueType, stored string) (Value, error) {
	switch t {
	case TypeString:
		return StringValue(stored), nil
	case TypeNumber:
		f, err := strconv.ParseFloat(stored, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a number", ErrCorrupt, stored)
		}
		return NumberValue(f), nil
	case TypeBoolean:
		switch stored {
		case "true":
			return BooleanValue(true), nil
		case "false":
			return BooleanValue(false), nil
		default:
			return Value{}, fmt.Errorf("%w: %q is not a boolean", ErrCorrupt, stored)
		}
	case TypeJSON:
		if !json.Valid([]byte(stored)) {
			return Value{}, fmt.Errorf("%w: stored value is not valid json", ErrCorrupt)
		}
		return JSONValue(json.RawMessage(stored)), nil
	default:
		return Value{}, fmt.Errorf("%w: unknown value type %q", ErrCorrupt, string(t))
	}
}

// ValueFromJSON converts a raw JSON request value into a typed Value
// according to the declared type.
func ValueFromJSON(t ValueType, raw json.RawMessage) (Value, error) {
	switch t {
	case TypeString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, fmt.Errorf("%w: value is not a string", ErrValidation)
		}
		return StringValue(s), nil
	case TypeNumber:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return Value{}, fmt.Errorf("%w: value is not a number", ErrValidation)
		}
		return NumberValue(f), nil
	case TypeBoolean:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return Value{}, fmt.Errorf("%w: value is not a boolean", ErrValidation)
		}
		return BooleanValue(b), nil
	case TypeJSON:
		if !json.Valid(raw) {
			return Value{}, fmt.Errorf("%w: value is not valid json", ErrValidation)
		}
		return JSONValue(raw), nil
	default:
		return Value{}, fmt.Errorf("%w: unknown value type %q", ErrValidation, string(t))
	}
}

// MarshalJSON emits the native representation of the variant, so clients
// receive a number for number-typed settings rather than its string
// form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Type {
	case TypeString:
		return json.Marshal(v.Str)
	case TypeNumber:
		return json.Marshal(v.Num)
	case TypeBoolean:
		return json.Marshal(v.Bool)
	case TypeJSON:
		return v.JSON, nil
	default:
		return nil, fmt.Errorf("unknown value type %q", string(v.Type))
	}
}
