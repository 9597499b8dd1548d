package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"only spaces", "    ", ""},
		{"leading and trailing", "  chest pain  ", "chest pain"},
		{"interior runs", "follow   up\t\tvisit", "follow up visit"},
		{"already clean", "annual checkup", "annual checkup"},
		{"newlines collapse", "line one\nline two", "line one line two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeFreeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"strips control chars", "pain\x00 in left\x07 arm", "pain in left arm"},
		{"keeps words", "  recurring   migraine ", "recurring migraine"},
		{"empty", "\x00\x01", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeFreeText(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeFreeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIdempotence(t *testing.T) {
	inputs := []string{"  chest   pain ", "note\x00 text", "plain"}
	for _, in := range inputs {
		once := NormalizeFreeText(in)
		twice := NormalizeFreeText(once)
		if once != twice {
			t.Errorf("NormalizeFreeText not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
