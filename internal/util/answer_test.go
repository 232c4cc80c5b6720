package util

import "testing"

func TestNormalizeAnswer(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello", "hello"},
		{"  hello  ", "hello"},
		{"how   are\tyou", "how are you"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := NormalizeAnswer(tt.in); got != tt.want {
			t.Errorf("NormalizeAnswer(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatchTextAnswer(t *testing.T) {
	tests := []struct {
		submitted string
		correct   string
		want      bool
	}{
		{"hello", "Hello", true},
		{"  how   are you? ", "How are you?", true},
		{"HOLA", "hola", true},
		// 重音显著
		{"como estas", "cómo estás", false},
		{"adios", "hola", false},
	}
	for _, tt := range tests {
		if got := MatchTextAnswer(tt.submitted, tt.correct); got != tt.want {
			t.Errorf("MatchTextAnswer(%q, %q) = %v, want %v", tt.submitted, tt.correct, got, tt.want)
		}
	}
}

func TestMatchChoiceAnswer(t *testing.T) {
	tests := []struct {
		submitted string
		correct   string
		want      bool
	}{
		{"Hola", "Hola", true},
		{" Hola ", "Hola", true},
		{"hola", "Hola", false},
		{"Ho la", "Hola", false},
	}
	for _, tt := range tests {
		if got := MatchChoiceAnswer(tt.submitted, tt.correct); got != tt.want {
			t.Errorf("MatchChoiceAnswer(%q, %q) = %v, want %v", tt.submitted, tt.correct, got, tt.want)
		}
	}
}
