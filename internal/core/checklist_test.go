package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseChecklist(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"semicolon form", "Passport; IELTS ; APS", []string{"Passport", "IELTS", "APS"}},
		{"json-like single quotes", "['Passport','IELTS']", []string{"Passport", "IELTS"}},
		{"json array", `["Passport", "Transcript"]`, []string{"Passport", "Transcript"}},
		{"malformed bracket", "[Passport, IELTS", []string{"Passport", "IELTS"}},
		{"malformed bracket ignores semicolons", "[Passport; Visa, IELTS", []string{"Passport; Visa", "IELTS"}},
		{"braces", "{Passport, IELTS}", []string{"Passport", "IELTS"}},
		{"quoted malformed", `["Passport", "IELTS"`, []string{"Passport", "IELTS"}},
		{"empty", "", []string{}},
		{"whitespace", "   ", []string{}},
		{"empty array", "[]", []string{}},
		{"drops empty items", "Passport;;  ; APS;", []string{"Passport", "APS"}},
		{"single item", "Passport", []string{"Passport"}},
		{"non-string elements", "[1, true, \"x\"]", []string{"1", "true", "x"}},
		{"object falls through", `{"a":1}`, []string{`{"a":1}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseChecklist(tt.raw)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChecklistParser_CustomDelimiter(t *testing.T) {
	p := NewChecklistParser("|")

	assert.Equal(t, []string{"Passport", "IELTS; APS"}, p.Parse("Passport | IELTS; APS"))
	assert.Equal(t, []string{"a", "b"}, p.Parse("['a','b']"))
}

func TestNewChecklistParser_DefaultDelimiter(t *testing.T) {
	assert.Equal(t, DefaultChecklistDelimiter, NewChecklistParser("").Delimiter)
	assert.Equal(t, []string{"a", "b"}, ChecklistParser{}.Parse("a;b"))
}
