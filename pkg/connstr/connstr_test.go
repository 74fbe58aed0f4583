package connstr_test

import (
	"testing"

	"github.com/aretw0/sparkbridge/pkg/connstr"
	"github.com/aretw0/sparkbridge/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	assert.Equal(t, "url=url;username=u;password=p", connstr.Build("url", "u", "p"))
}

func TestBuild_Deterministic(t *testing.T) {
	inputs := [][3]string{
		{"http://livy:8998", "admin", "s3cret"},
		{"", "", ""},
		{"https://cluster.example.net/livy", "user@example", "p=w"},
	}
	for _, in := range inputs {
		a := connstr.Build(in[0], in[1], in[2])
		b := connstr.Build(in[0], in[1], in[2])
		assert.Equal(t, a, b)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	cfg := domain.Configuration{Identity: "admin", Secret: "p=w", Endpoint: "http://livy:8998"}

	parsed, err := connstr.Parse(connstr.FromConfiguration(cfg))
	require.NoError(t, err)
	assert.Equal(t, cfg, parsed)
}

func TestParse_Malformed(t *testing.T) {
	for _, s := range []string{
		"",
		"url=x;username=u",
		"url=x;username=u;password=p;extra=1",
		"url=x;url=y;password=p",
		"url;username=u;password=p",
	} {
		_, err := connstr.Parse(s)
		assert.ErrorIs(t, err, connstr.ErrMalformed, "input %q", s)
	}
}
