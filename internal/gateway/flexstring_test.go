package gateway

import (
	"encoding/json"
	"testing"
)

func TestFlexStringUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json string",
			input:    `{"v": "884426"}`,
			expected: "884426",
		},
		{
			name:     "json number",
			input:    `{"v": 884426}`,
			expected: "884426",
		},
		{
			name:     "json null",
			input:    `{"v": null}`,
			expected: "",
		},
		{
			name:     "field absent",
			input:    `{}`,
			expected: "",
		},
		{
			name:     "empty string",
			input:    `{"v": ""}`,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc struct {
				V FlexString `json:"v"`
			}
			if err := json.Unmarshal([]byte(tt.input), &doc); err != nil {
				t.Fatalf("Unmarshal(%s) returned error: %v", tt.input, err)
			}
			if doc.V.String() != tt.expected {
				t.Errorf("Unmarshal(%s) = %q; want %q", tt.input, doc.V, tt.expected)
			}
		})
	}
}

func TestFlexStringInt64(t *testing.T) {
	tests := []struct {
		name     string
		value    FlexString
		expected int64
	}{
		{name: "numeric", value: "150000", expected: 150000},
		{name: "empty", value: "", expected: 0},
		{name: "non-numeric", value: "abc", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.Int64(); got != tt.expected {
				t.Errorf("Int64() = %d; want %d", got, tt.expected)
			}
		})
	}
}

func TestFlexStringEmpty(t *testing.T) {
	tests := []struct {
		name     string
		value    FlexString
		expected bool
	}{
		{name: "blank", value: "", expected: true},
		{name: "zero", value: "0", expected: true},
		{name: "numeric", value: "10", expected: false},
		{name: "text", value: "x", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.Empty(); got != tt.expected {
				t.Errorf("Empty() = %v; want %v", got, tt.expected)
			}
		})
	}
}
