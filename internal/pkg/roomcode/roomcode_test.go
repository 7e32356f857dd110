package roomcode

import (
	"testing"
)

func TestGenerate_Format(t *testing.T) {
	code, err := Generate()
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if len(code) != Length {
		t.Errorf("Expected code length %d, got %d", Length, len(code))
	}

	if !Validate(code) {
		t.Errorf("Generated code %q does not validate", code)
	}
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code, err := Generate()
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		if seen[code] {
			t.Fatalf("Duplicate code generated: %s", code)
		}
		seen[code] = true
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		valid bool
	}{
		{"valid mixed case", "Ab3dEf6hIj9lMn0p", true},
		{"valid all digits", "1234567890123456", true},
		{"valid all letters", "abcdefghijklmnop", true},
		{"too short", "Ab3dEf6hIj9lMn0", false},
		{"too long", "Ab3dEf6hIj9lMn0pQ", false},
		{"empty", "", false},
		{"contains dash", "Ab3dEf6h-j9lMn0p", false},
		{"contains space", "Ab3dEf6h j9lMn0p", false},
		{"contains unicode", "Ab3dEf6hIj9lMn0é", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Validate(tt.code); got != tt.valid {
				t.Errorf("Validate(%q) = %v, want %v", tt.code, got, tt.valid)
			}
		})
	}
}
