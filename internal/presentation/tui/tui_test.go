package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/sparkbridge/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_PlainWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	n := NewNotifier(&buf)

	n.Notify(context.Background(), domain.Stderr("The code failed because of a fatal error:\n\tboom.\n"))

	assert.Equal(t, "The code failed because of a fatal error:\n\tboom.\n", buf.String())
}

func TestBanner_NoColorWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)

	out := buf.String()
	assert.NotContains(t, out, "\x1b[")
	assert.Equal(t, 8, strings.Count(out, "\n"))
}

func TestRenderer_RendersMarkdown(t *testing.T) {
	render := NewRenderer()

	out, err := render("# Result\n\n| a |\n|---|\n| 1 |\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Result")
	assert.Contains(t, out, "1")
}
