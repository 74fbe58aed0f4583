package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/sparkbridge/pkg/domain"
	"github.com/aretw0/sparkbridge/pkg/ports"
)

// DefaultRedactionPatterns match credentials a remote error may echo back,
// such as the password of a connection string.
var DefaultRedactionPatterns = []string{
	`(password=)[^;\s"]*`,
	`(?i)(token[=:]\s*)[^;\s"]*`,
}

// Redacted replaces every redacted value.
const Redacted = "***"

type redactionMiddleware struct {
	next     ports.StateStore
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware creates a middleware that masks matches of the patterns
// in the fault message before it is persisted. The first capture group, if any,
// is kept so the message still shows which value was hidden.
func NewRedactionMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		patterns[i] = re
	}
	return func(next ports.StateStore) ports.StateStore {
		return &redactionMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *redactionMiddleware) Save(ctx context.Context, sessionID string, snapshot *domain.Snapshot) error {
	if snapshot.State.Fault == "" {
		return m.next.Save(ctx, sessionID, snapshot)
	}

	// Copy so the caller's snapshot keeps the full message.
	cloned := *snapshot
	cloned.State.Fault = m.redact(snapshot.State.Fault)
	return m.next.Save(ctx, sessionID, &cloned)
}

func (m *redactionMiddleware) Load(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *redactionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *redactionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *redactionMiddleware) redact(s string) string {
	for _, p := range m.patterns {
		if p.NumSubexp() > 0 {
			s = p.ReplaceAllString(s, "${1}"+Redacted)
		} else {
			s = p.ReplaceAllString(s, Redacted)
		}
	}
	return s
}
