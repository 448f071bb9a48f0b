package appconfigs_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/xenai/xenai-server/internal/appconfigs"
)

func TestValueEncode(t *testing.T) {
	tests := []struct {
		name  string
		value appconfigs.Value
		want  string
	}{
		{"string", appconfigs.StringValue("Xen AI"), "Xen AI"},
		{"integer number", appconfigs.NumberValue(50), "50"},
		{"decimal number", appconfigs.NumberValue(0.7), "0.7"},
		{"true", appconfigs.BooleanValue(true), "true"},
		{"false", appconfigs.BooleanValue(false), "false"},
		{"json", appconfigs.JSONValue(json.RawMessage(`{"a":1}`)), `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.value.Encode()
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeValue_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value appconfigs.Value
	}{
		{"string", appconfigs.StringValue("hello")},
		{"number", appconfigs.NumberValue(50)},
		{"boolean", appconfigs.BooleanValue(true)},
		{"json", appconfigs.JSONValue(json.RawMessage(`[1,2,3]`))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored, err := tt.value.Encode()
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}

			got, err := appconfigs.DecodeValue(tt.value.Type, stored)
			if err != nil {
				t.Fatalf("DecodeValue() error = %v", err)
			}

			if got.Type != tt.value.Type {
				t.Errorf("DecodeValue() type = %q, want %q", got.Type, tt.value.Type)
			}
			switch tt.value.Type {
			case appconfigs.TypeString:
				if got.Str != tt.value.Str {
					t.Errorf("Str = %q, want %q", got.Str, tt.value.Str)
				}
			case appconfigs.TypeNumber:
				if got.Num != tt.value.Num {
					t.Errorf("Num = %v, want %v", got.Num, tt.value.Num)
				}
			case appconfigs.TypeBoolean:
				if got.Bool != tt.value.Bool {
					t.Errorf("Bool = %v, want %v", got.Bool, tt.value.Bool)
				}
			case appconfigs.TypeJSON:
				if string(got.JSON) != string(tt.value.JSON) {
					t.Errorf("JSON = %s, want %s", got.JSON, tt.value.JSON)
				}
			}
		})
	}
}

func TestDecodeValue_Corrupt(t *testing.T) {
	tests := []struct {
		name   string
		typ    appconfigs.ValueType
		stored string
	}{
		{"non-numeric number", appconfigs.TypeNumber, "fifty"},
		{"non-boolean", appconfigs.TypeBoolean, "yes"},
		{"invalid json", appconfigs.TypeJSON, "{broken"},
		{"unknown type", appconfigs.ValueType("duration"), "5s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := appconfigs.DecodeValue(tt.typ, tt.stored); !errors.Is(err, appconfigs.ErrCorrupt) {
				t.Errorf("DecodeValue(%q, %q) error = %v, want ErrCorrupt", tt.typ, tt.stored, err)
			}
		})
	}
}

func TestValueFromJSON(t *testing.T) {
	tests := []struct {
		name    string
		typ     appconfigs.ValueType
		raw     string
		wantErr bool
	}{
		{"number", appconfigs.TypeNumber, `50`, false},
		{"string", appconfigs.TypeString, `"Xen AI"`, false},
		{"boolean", appconfigs.TypeBoolean, `true`, false},
		{"json object", appconfigs.TypeJSON, `{"nested":true}`, false},
		{"number given string", appconfigs.TypeNumber, `"fifty"`, true},
		{"boolean given number", appconfigs.TypeBoolean, `1`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := appconfigs.ValueFromJSON(tt.typ, json.RawMessage(tt.raw))
			if tt.wantErr && !errors.Is(err, appconfigs.ErrValidation) {
				t.Errorf("ValueFromJSON() error = %v, want ErrValidation", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValueFromJSON() error = %v", err)
			}
		})
	}
}

func TestValueMarshalJSON_NativeRepresentation(t *testing.T) {
	payload, err := json.Marshal(map[string]appconfigs.Value{
		"max_chat_history":      appconfigs.NumberValue(50),
		"enable_voice_features": appconfigs.BooleanValue(true),
		"app_name":              appconfigs.StringValue("Xen AI"),
	})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if got, ok := decoded["max_chat_history"].(float64); !ok || got != 50 {
		t.Errorf("max_chat_history = %v, want number 50", decoded["max_chat_history"])
	}
	if got, ok := decoded["enable_voice_features"].(bool); !ok || !got {
		t.Errorf("enable_voice_features = %v, want true", decoded["enable_voice_features"])
	}
	if got, ok := decoded["app_name"].(string); !ok || got != "Xen AI" {
		t.Errorf("app_name = %v, want %q", decoded["app_name"], "Xen AI")
	}
}
