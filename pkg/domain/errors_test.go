package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/sparkbridge/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestFatalMessage(t *testing.T) {
	assert.Equal(t, "L\nException details:\n\t\"bad syntax\"", domain.FatalMessage("L", "bad syntax"))
	// Both slots may carry the same text.
	assert.Equal(t, "Error.\nException details:\n\t\"Error.\"", domain.FatalMessage("Error.", "Error."))
}

func TestTypedErrors_MatchSentinels(t *testing.T) {
	missing := fmt.Errorf("resolve: %w", &domain.MissingConfigurationError{Keys: []string{"USER", "URL"}})
	assert.ErrorIs(t, missing, domain.ErrMissingConfiguration)
	assert.Contains(t, missing.Error(), "USER, URL")

	var directive error = &domain.DirectiveError{Label: "L", Value: "v", Message: domain.FatalMessage("L", "v")}
	assert.ErrorIs(t, directive, domain.ErrDirectiveFailed)
	assert.False(t, errors.Is(directive, domain.ErrSessionFaulted))

	faulted := &domain.FaultedError{Message: "m"}
	assert.ErrorIs(t, faulted, domain.ErrSessionFaulted)
	assert.Equal(t, "session faulted: m", faulted.Error())
}
