package errors

import (
	"strings"
	"testing"
)

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "rust", false},
		{"valid with spaces", "Machine Learning", false},
		{"valid unicode", "機械学習", false},
		{"valid with slash", "a/b", false},

		{"empty", "", true},
		{"too long", strings.Repeat("x", 300), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
		{"control char", "foo\x01bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateTitle(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", false},
		{"valid", "Tech Ecosystem 2025", false},
		{"too long", strings.Repeat("t", 201), true},
		{"tab", "a\tb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTitle(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTitle(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDiagramKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "tech-ecosystem-0123456789abcdef", false},
		{"valid unicode", "技術-0123", false},

		{"empty", "", true},
		{"too long", strings.Repeat("k", 129), true},
		{"traversal", "..", true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"colon", "overrides:a", true},
		{"control", "a\x7fb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDiagramKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDiagramKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidKey) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidKey)
			}
		})
	}
}

func TestValidateStoreURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", false},
		{"memory", "memory:", false},
		{"file", "file:///tmp/overrides", false},
		{"sqlite", "sqlite:///tmp/o.db", false},
		{"redis", "redis://localhost:6379/0", false},
		{"mongo", "mongodb://localhost/alluvial", false},

		{"unknown scheme", "ftp://example.com", true},
		{"no scheme", "just-a-path", true},
		{"malformed", "redis://[::1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStoreURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStoreURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidStore) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidStore)
			}
		})
	}
}
