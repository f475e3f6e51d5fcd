package errors

import (
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "nop", false},
		{"with dash", "hue-chroma", false},
		{"with digits", "subchain1", false},
		{"with underscore", "idref_2", false},
		{"namespaced", "gimp:layer-mode", false},

		{"empty", "", true},
		{"too long", "a" + string(make([]byte, 200)), true},
		{"upper case", "HueChroma", true},
		{"space", "hue chroma", true},
		{"newline", "hue\nchroma", true},
		{"leading digit", "1blur", true},
		{"double namespace", "a:b:c", true},
		{"control char", "foo\x01bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeConfiguration) {
				t.Errorf("ValidateID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeConfiguration)
			}
		})
	}
}

func TestValidateParamName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"snake", "in_low", false},
		{"kebab", "std-dev-x", false},
		{"digits", "radius1", false},
		{"mixed case", "nIterations", false},

		{"empty", "", true},
		{"space", "in low", true},
		{"tab", "in\tlow", true},
		{"leading dash", "-x", true},
		{"dot", "a.b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParamName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateParamName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
