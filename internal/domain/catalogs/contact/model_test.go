package contact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"salesdesk/internal/core/apperror"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		first, last string
		want        string
	}{
		{"Jane", "Doe", "Jane Doe"},
		{"", "Doe", "Doe"},
		{"Jane", "", "Jane"},
		{"  Jane ", " Doe  ", "Jane Doe"},
		{"", "", ""},
	}

	for _, tt := range tests {
		c := NewContact("C-1", tt.first, tt.last)
		assert.Equal(t, tt.want, c.DisplayName())
	}
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, NewContact("C-1", "Jane", "").Validate(ctx))

	err := NewContact("C-1", " ", "").Validate(ctx)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	err = NewContact("", "Jane", "Doe").Validate(ctx)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}
