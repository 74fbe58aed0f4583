package magic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeCode_SizeLimit(t *testing.T) {
	t.Setenv(EnvMaxCodeSize, "16")

	tests := []struct {
		name     string
		codeSize int
		wantErr  bool
	}{
		{"Under Limit", 15, false},
		{"Exact Limit", 16, false},
		{"Over Limit", 17, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SanitizeCode(strings.Repeat("a", tt.codeSize))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrCodeTooLarge)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitizeCode_ControlChars(t *testing.T) {
	clean, err := SanitizeCode("print(1)\n\tx = 2\r\n")
	assert.NoError(t, err)
	assert.Equal(t, "print(1)\n\tx = 2\r\n", clean)

	clean, err = SanitizeCode("print(\x1b[31m1)\x00")
	assert.NoError(t, err)
	assert.Equal(t, "print([31m1)", clean)
}

func TestSanitizeCode_InvalidUTF8(t *testing.T) {
	_, err := SanitizeCode("select \xff")
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}
