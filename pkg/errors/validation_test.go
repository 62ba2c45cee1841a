package errors

import (
	"testing"
)

func TestValidateModuleID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid card", "s4th_16_di", false},
		{"valid extension", "isma_mix38", false},
		{"valid with dash", "s4-ctrl", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 200)), true},
		{"slash", "cards/s4th", true},
		{"backslash", "cards\\s4th", true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateModuleID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateModuleID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateUploadName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		ext     string
		wantErr bool
	}{
		{"valid drawio", "modele_http.drawio", ".drawio", false},
		{"valid upper ext", "MODELE.DRAWIO", ".drawio", false},
		{"valid sqlite", "database.sqlite3", ".sqlite3", false},

		{"empty", "", ".drawio", true},
		{"wrong ext", "modele.xml", ".drawio", true},
		{"with path", "../modele.drawio", ".drawio", true},
		{"with backslash", "dir\\modele.drawio", ".drawio", true},
		{"hidden", ".modele.drawio", ".drawio", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUploadName(tt.input, tt.ext)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUploadName(%q, %q) error = %v, wantErr %v", tt.input, tt.ext, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}
