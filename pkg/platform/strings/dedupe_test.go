package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil slice", input: nil, expected: []string{}},
		{name: "trims whitespace", input: []string{" assigned ", "completed"}, expected: []string{"assigned", "completed"}},
		{name: "keeps first occurrence", input: []string{"completed", "assigned", "completed"}, expected: []string{"completed", "assigned"}},
		{name: "drops blanks", input: []string{"", "  ", "in_progress"}, expected: []string{"in_progress"}},
		{name: "case sensitive", input: []string{"Assigned", "assigned"}, expected: []string{"Assigned", "assigned"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}
