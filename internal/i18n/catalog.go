// Package i18n loads the embedded locale catalogs and hands out printers that
// translate message keys for the configured locale.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/guardian/internal/constants"
)

// BaseLocale is the locale every other catalog falls back to
const BaseLocale = constants.DefaultLocale

//go:embed locales/*.yaml
var embeddedLocales embed.FS

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Bundle holds the parsed catalogs and the x/text catalog built from them
type Bundle struct {
	builder   *catalog.Builder
	supported []language.Tag
	matcher   language.Matcher
	messages  map[string]map[string]string
}

// LoadEmbedded loads the catalogs compiled into the binary
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embeddedLocales)
}

// LoadFromFS loads every locales/*.yaml file from fsys
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	b := &Bundle{
		builder:  catalog.NewBuilder(catalog.Fallback(language.MustParse(BaseLocale))),
		messages: map[string]map[string]string{},
	}

	// The base locale goes first so the matcher prefers it on ties
	var baseTag language.Tag
	var others []language.Tag
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
		tag, err := b.add(path, file)
		if err != nil {
			return nil, err
		}
		if file.Locale == BaseLocale {
			baseTag = tag
		} else {
			others = append(others, tag)
		}
	}

	if _, ok := b.messages[BaseLocale]; !ok {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}

	b.supported = append([]language.Tag{baseTag}, others...)
	b.matcher = language.NewMatcher(b.supported)
	return b, nil
}

func (b *Bundle) add(path string, file catalogFile) (language.Tag, error) {
	locale := strings.TrimSpace(file.Locale)
	if locale == "" {
		return language.Und, fmt.Errorf("catalog %s: locale is required", path)
	}
	if want := strings.TrimSuffix(strings.TrimPrefix(path, "locales/"), ".yaml"); want != locale {
		return language.Und, fmt.Errorf("catalog %s: locale %q must match file name", path, locale)
	}
	if len(file.Messages) == 0 {
		return language.Und, fmt.Errorf("catalog %s: messages map is required", path)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.Und, fmt.Errorf("catalog %s: parse locale: %w", path, err)
	}

	msgs := make(map[string]string, len(file.Messages))
	for key, value := range file.Messages {
		key = strings.TrimSpace(key)
		if key == "" {
			return language.Und, fmt.Errorf("catalog %s: message key cannot be blank", path)
		}
		if err := b.builder.SetString(tag, key, value); err != nil {
			return language.Und, fmt.Errorf("catalog %s: set %q: %w", path, key, err)
		}
		msgs[key] = value
	}
	b.messages[locale] = msgs
	return tag, nil
}

// Locales returns the available locale identifiers
func (b *Bundle) Locales() []string {
	out := make([]string, 0, len(b.messages))
	for locale := range b.messages {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// Keys returns the message keys of one locale, sorted
func (b *Bundle) Keys(locale string) []string {
	msgs := b.messages[locale]
	out := make([]string, 0, len(msgs))
	for key := range msgs {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// Printer returns a printer for the closest supported locale
func (b *Bundle) Printer(locale string) *message.Printer {
	_, idx, _ := b.matcher.Match(language.Make(locale))
	return message.NewPrinter(b.supported[idx], message.Catalog(b.builder))
}

// Translator translates message keys for one locale
type Translator struct {
	printer *message.Printer
}

// NewTranslator builds a Translator for locale from the embedded catalogs
func NewTranslator(locale string) (*Translator, error) {
	b, err := LoadEmbedded()
	if err != nil {
		return nil, err
	}
	return &Translator{printer: b.Printer(locale)}, nil
}

// MustTranslator is NewTranslator for callers that ship the embedded catalogs
func MustTranslator(locale string) *Translator {
	tr, err := NewTranslator(locale)
	if err != nil {
		panic(err)
	}
	return tr
}

// T formats the message registered under key. Unknown keys are returned as-is.
func (t *Translator) T(key string, args ...any) string {
	if t == nil {
		return fmt.Sprintf(key, args...)
	}
	return t.printer.Sprintf(key, args...)
}

// Frequency returns the localized label of a habit frequency
func (t *Translator) Frequency(f constants.HabitFrequency) string {
	return t.T("frequency." + string(f))
}

// ChallengeStatus returns the localized label of a challenge status
func (t *Translator) ChallengeStatus(s constants.ChallengeStatus) string {
	return t.T("challenge.status." + string(s))
}
