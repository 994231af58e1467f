package errors

import (
	"testing"
)

func TestValidateSourceID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "tiann/KernelSU", false},
		{"valid with dash", "termux/termux-app", false},
		{"valid with dot", "owner/name.js", false},
		{"valid owner dash", "WSTxda/ViperFX-RE-Releases", false},

		{"empty", "", true},
		{"no slash", "KernelSU", true},
		{"too many segments", "a/b/c", true},
		{"traversal name", "owner/..", true},
		{"dot name", "owner/.", true},
		{"space", "owner/my repo", true},
		{"leading dash owner", "-owner/repo", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSourceID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSourceID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidConfig) {
				t.Errorf("ValidateSourceID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidConfig)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "MaterialFiles", false},
		{"valid with dash", "termux-app", false},
		{"valid with dot", "name.js", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"dotdot", "..", true},
		{"slash", "foo/bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePattern(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", false},
		{"wildcard", "*apk", false},
		{"regex metachars", "app(1).zip", false},
		{"control char", "a\x01b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePattern(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePattern(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://github.com", false},
		{"http", "http://127.0.0.1:8080", false},
		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
