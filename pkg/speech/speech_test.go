package speech

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinNames(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  string
	}{
		{
			name:  "empty list",
			input: nil,
			want:  "",
		},
		{
			name:  "single name stays bare",
			input: []string{"Cola"},
			want:  "Cola",
		},
		{
			name:  "two names joined with and",
			input: []string{"Cola", "Water"},
			want:  "Cola and Water",
		},
		{
			name:  "many names use commas and a final and",
			input: []string{"Cola", "Water", "Iced Tea"},
			want:  "Cola, Water and Iced Tea",
		},
		{
			name:  "ampersand is spoken as and",
			input: []string{"Cola", "Chips & Salsa"},
			want:  "Cola and Chips and Salsa",
		},
		{
			name:  "unspaced ampersand gets spacing",
			input: []string{"M&Ms"},
			want:  "M and Ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinNames(tt.input))
		})
	}
}
