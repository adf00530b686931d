package utils

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Demo", "Demo"},
		{`a<b>c:d"e/f\g|h?i*j`, "abcdefghij"},
		{"  padded  ", "padded"},
		{"tab\there", "tabhere"},
		{"???", "_"},
		{"", "_"},
	}

	for _, tt := range tests {
		if got := Sanitize(tt.input); got != tt.expected {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.expected)
		}
		if twice := Sanitize(Sanitize(tt.input)); twice != tt.expected {
			t.Errorf("Sanitize is not idempotent for %q: got %q", tt.input, twice)
		}
	}
}

func TestTransliterate(t *testing.T) {
	if got := Transliterate("Привет мир"); got != "Privet mir" {
		t.Errorf("expected 'Privet mir', got '%s'", got)
	}
	if got := Transliterate("plain ascii"); got != "plain ascii" {
		t.Errorf("expected 'plain ascii', got '%s'", got)
	}
}

func TestSafeName(t *testing.T) {
	if got := SafeName("Урок 1: Введение"); got != "Urok 1 Vvedenie" {
		t.Errorf("expected 'Urok 1 Vvedenie', got '%s'", got)
	}
}
