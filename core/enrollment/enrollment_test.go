package enrollment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{StatusActive, StatusActive, true},
		{StatusActive, StatusTransferred, true},
		{StatusActive, StatusAbandoned, true},
		{StatusActive, StatusConcluded, true},
		{StatusTransferred, StatusActive, false},
		{StatusAbandoned, StatusConcluded, false},
		{StatusConcluded, StatusActive, false},
		{StatusConcluded, StatusConcluded, true},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}
