package schema

import (
	"reflect"
	"testing"
)

func TestSanitize_StructurePreserving(t *testing.T) {
	// Without composition keywords the tree must come back deep-equal, with
	// only properties/items recursively processed.
	in := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":    map[string]any{"type": "string", "required": true},
			"priority": map[string]any{"type": "string", "enum": []any{"low", "medium", "high"}},
			"tags": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
	}

	out := Sanitize(in)
	if !reflect.DeepEqual(out, in) {
		t.Errorf("Sanitize changed a composition-free schema:\n got %#v\nwant %#v", out, in)
	}
}

func TestSanitize_DoesNotMutateInput(t *testing.T) {
	in := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"due": map[string]any{
				"anyOf": []any{
					map[string]any{"type": "string"},
					map[string]any{"type": "null"},
				},
			},
		},
	}
	Sanitize(in)

	prop := in["properties"].(map[string]any)["due"].(map[string]any)
	if _, ok := prop["anyOf"]; !ok {
		t.Error("Sanitize mutated its input")
	}
}

func TestSanitize_FlattensComposition(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected any
	}{
		{
			name: "anyOf picks first non-null variant",
			input: map[string]any{
				"anyOf": []any{
					map[string]any{"type": "null"},
					map[string]any{"type": "string"},
				},
			},
			expected: map[string]any{"type": "string"},
		},
		{
			name: "oneOf picks first variant",
			input: map[string]any{
				"oneOf": []any{
					map[string]any{"type": "integer"},
					map[string]any{"type": "string"},
				},
			},
			expected: map[string]any{"type": "integer"},
		},
		{
			name: "nested composition under properties",
			input: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"description": map[string]any{
						"anyOf": []any{
							map[string]any{"type": "string"},
							map[string]any{"type": "null"},
						},
					},
				},
			},
			expected: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"description": map[string]any{"type": "string"},
				},
			},
		},
		{
			name: "composition under items",
			input: map[string]any{
				"type": "array",
				"items": map[string]any{
					"allOf": []any{
						map[string]any{"type": "object"},
					},
				},
			},
			expected: map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "object"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Sanitize() = %#v, want %#v", got, tt.expected)
			}
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	in := map[string]any{
		"anyOf": []any{
			map[string]any{"type": "null"},
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{"oneOf": []any{map[string]any{"type": "integer"}}},
				},
			},
		},
	}

	once := Sanitize(in)
	twice := Sanitize(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Sanitize not idempotent:\nonce  %#v\ntwice %#v", once, twice)
	}
}

func TestSanitizeParams(t *testing.T) {
	params := map[string]any{
		"id": map[string]any{"type": "integer", "required": true},
		"due_date": map[string]any{
			"anyOf": []any{
				map[string]any{"type": "null"},
				map[string]any{"type": "string", "format": "date-time"},
			},
		},
	}

	out := SanitizeParams(params)

	want := map[string]any{
		"id":       map[string]any{"type": "integer", "required": true},
		"due_date": map[string]any{"type": "string", "format": "date-time"},
	}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("SanitizeParams() = %#v, want %#v", out, want)
	}

	if SanitizeParams(nil) != nil {
		t.Error("SanitizeParams(nil) should be nil")
	}
}
