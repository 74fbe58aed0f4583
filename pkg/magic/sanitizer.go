package magic

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxCodeSize is 1MB.
	DefaultMaxCodeSize = 1 << 20
	// EnvMaxCodeSize is the environment variable to override the default
	EnvMaxCodeSize = "SPARKBRIDGE_MAX_CODE_SIZE"
)

var (
	ErrCodeTooLarge = errors.New("code exceeds maximum allowed size")
	ErrInvalidUTF8  = errors.New("code contains invalid UTF-8 sequences")
)

// SanitizeCode validates cell code received over a network surface (HTTP, MCP).
// It enforces the size limit, validates UTF-8 and strips control characters
// other than newline, tab and carriage return.
func SanitizeCode(code string) (string, error) {
	limit := maxCodeSize()
	if len(code) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrCodeTooLarge, len(code), limit)
	}

	if !utf8.ValidString(code) {
		return "", ErrInvalidUTF8
	}

	clean := true
	for _, r := range code {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return code, nil
	}

	var b strings.Builder
	b.Grow(len(code))
	for _, r := range code {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

func maxCodeSize() int {
	if val := os.Getenv(EnvMaxCodeSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxCodeSize
}
