// Package connstr builds and parses the connection string handed to the
// session registration directive.
package connstr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/sparkbridge/pkg/domain"
)

const (
	keyURL      = "url"
	keyUsername = "username"
	keyPassword = "password"

	pairSep  = ";"
	valueSep = "="
)

// ErrMalformed is returned by Parse when the input is not a connection string.
var ErrMalformed = errors.New("malformed connection string")

// Build serializes endpoint, identity and secret into a single token.
// Equal inputs always yield an identical string.
func Build(endpoint, identity, secret string) string {
	return keyURL + valueSep + endpoint + pairSep +
		keyUsername + valueSep + identity + pairSep +
		keyPassword + valueSep + secret
}

// FromConfiguration is Build applied to a resolved Configuration.
func FromConfiguration(cfg domain.Configuration) string {
	return Build(cfg.Endpoint, cfg.Identity, cfg.Secret)
}

// Parse is the inverse of Build.
// Values must not contain ';' since the format has no escaping.
func Parse(s string) (domain.Configuration, error) {
	var cfg domain.Configuration
	seen := make(map[string]bool, 3)

	for _, pair := range strings.Split(s, pairSep) {
		key, value, ok := strings.Cut(pair, valueSep)
		if !ok {
			return domain.Configuration{}, fmt.Errorf("%w: %q has no '='", ErrMalformed, pair)
		}
		if seen[key] {
			return domain.Configuration{}, fmt.Errorf("%w: duplicate key %q", ErrMalformed, key)
		}
		seen[key] = true

		switch key {
		case keyURL:
			cfg.Endpoint = value
		case keyUsername:
			cfg.Identity = value
		case keyPassword:
			cfg.Secret = value
		default:
			return domain.Configuration{}, fmt.Errorf("%w: unknown key %q", ErrMalformed, key)
		}
	}

	for _, key := range []string{keyURL, keyUsername, keyPassword} {
		if !seen[key] {
			return domain.Configuration{}, fmt.Errorf("%w: missing %q", ErrMalformed, key)
		}
	}
	return cfg, nil
}
