package magic

import (
	"sort"
	"strings"
)

const (
	// Marker prefixes a line magic; doubled it prefixes a cell magic.
	Marker = "%"

	// DefaultExtension is the extension loaded by the second bootstrap directive.
	DefaultExtension = "remotespark"

	sparkCell = Marker + Marker + "spark"
	sparkLine = Marker + "spark"
)

// DefaultSubLanguages are the tags routed to an alternate interpreter.
var DefaultSubLanguages = []string{"sql", "hive"}

// Translator maps cell code to directive bodies.
// It is immutable after construction and safe for concurrent use.
type Translator struct {
	tags map[string]struct{}
}

// Option configures a Translator.
type Option func(*Translator)

// WithSubLanguages registers additional sub-language tags.
// Empty tags and tags containing whitespace are ignored.
func WithSubLanguages(tags ...string) Option {
	return func(t *Translator) {
		for _, tag := range tags {
			if tag == "" || strings.ContainsAny(tag, " \t\r\n") || strings.HasPrefix(tag, Marker) {
				continue
			}
			t.tags[tag] = struct{}{}
		}
	}
}

// NewTranslator creates a Translator that recognizes DefaultSubLanguages plus any extra tags.
func NewTranslator(opts ...Option) *Translator {
	t := &Translator{tags: make(map[string]struct{})}
	WithSubLanguages(DefaultSubLanguages...)(t)
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SubLanguages returns the recognized tags, sorted.
func (t *Translator) SubLanguages() []string {
	tags := make([]string, 0, len(t.tags))
	for tag := range t.tags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Translate returns the directive body for code.
func (t *Translator) Translate(code string) string {
	if tag, rest, ok := t.match(code); ok {
		return SubLanguageCell(tag, rest)
	}
	return DefaultCell(code)
}

// Route reports the sub-language code would be sent to, or "" for the default language.
func (t *Translator) Route(code string) string {
	tag, _, _ := t.match(code)
	return tag
}

// match strips one or two markers, then looks for a known tag followed by
// exactly one space or line break ("\n" or "\r\n"). Only that separator is consumed.
func (t *Translator) match(code string) (tag, rest string, ok bool) {
	body, found := strings.CutPrefix(code, Marker)
	if !found {
		return "", "", false
	}
	body, _ = strings.CutPrefix(body, Marker)

	end := strings.IndexAny(body, " \r\n")
	if end <= 0 {
		return "", "", false
	}
	sep := 1
	if body[end] == '\r' {
		if !strings.HasPrefix(body[end:], "\r\n") {
			return "", "", false
		}
		sep = 2
	}
	tag = body[:end]
	if _, known := t.tags[tag]; !known {
		return "", "", false
	}
	return tag, body[end+sep:], true
}

// DefaultCell wraps code for the default session language.
func DefaultCell(code string) string {
	return sparkCell + "\n" + code
}

// SubLanguageCell wraps code for the given sub-language.
func SubLanguageCell(tag, code string) string {
	return sparkCell + " -c " + tag + "\n" + code
}

// Register builds the session registration directive.
func Register(clientName, language, connectionString string) string {
	return strings.Join([]string{sparkLine, "add", clientName, language, connectionString, "skip"}, " ")
}

// LoadExtension builds the directive loading the session magics extension.
func LoadExtension(name string) string {
	if name == "" {
		name = DefaultExtension
	}
	return Marker + "load_ext " + name
}

// Cleanup builds the directive that tears the remote session down.
func Cleanup() string {
	return sparkLine + " cleanup"
}
