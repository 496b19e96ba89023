package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/julianstephens/guardian/internal/constants"
)

func TestLoadEmbedded(t *testing.T) {
	b, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded() failed: %v", err)
	}

	locales := b.Locales()
	if len(locales) != 2 || locales[0] != "en-US" || locales[1] != "pt-BR" {
		t.Errorf("Locales() = %v, want [en-US pt-BR]", locales)
	}
}

func TestCatalogsDefineSameKeys(t *testing.T) {
	b, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded() failed: %v", err)
	}

	base := map[string]bool{}
	for _, key := range b.Keys(BaseLocale) {
		base[key] = true
	}
	for _, locale := range b.Locales() {
		keys := b.Keys(locale)
		if len(keys) != len(base) {
			t.Errorf("locale %s defines %d keys, base defines %d", locale, len(keys), len(base))
		}
		for _, key := range keys {
			if !base[key] {
				t.Errorf("locale %s defines key %q missing from %s", locale, key, BaseLocale)
			}
		}
	}
}

func TestTranslatorLocalizes(t *testing.T) {
	tests := []struct {
		locale string
		key    string
		args   []any
		want   string
	}{
		{locale: "en-US", key: "habit.create_failed", want: "Failed to create habit."},
		{locale: "pt-BR", key: "habit.create_failed", want: "Erro ao criar hábito."},
		{locale: "pt", key: "profile.updated", want: "Perfil atualizado com sucesso!"},
		{locale: "pt-BR", key: "mana.level", args: []any{3}, want: "Nível 3"},
		{locale: "fr-FR", key: "mana.level", args: []any{2}, want: "Level 2"},
		{locale: "en-US", key: "validation.min_length", args: []any{"Name", 3}, want: "Name must be at least 3 characters."},
	}

	for _, tt := range tests {
		t.Run(tt.locale+"/"+tt.key, func(t *testing.T) {
			tr, err := NewTranslator(tt.locale)
			if err != nil {
				t.Fatalf("NewTranslator() failed: %v", err)
			}
			if got := tr.T(tt.key, tt.args...); got != tt.want {
				t.Errorf("T(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestTranslatorLabels(t *testing.T) {
	tr := MustTranslator("pt-BR")

	if got := tr.Frequency(constants.FrequencyWeekly); got != "Semanal" {
		t.Errorf("Frequency(weekly) = %q, want Semanal", got)
	}
	if got := tr.ChallengeStatus(constants.ChallengeExpired); got != "Expirado" {
		t.Errorf("ChallengeStatus(expired) = %q, want Expirado", got)
	}
}

func TestNilTranslator(t *testing.T) {
	var tr *Translator
	if got := tr.T("plain"); got != "plain" {
		t.Errorf("nil Translator T() = %q, want key", got)
	}
}

func TestLoadFromFSRequiresBaseLocale(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/pt-BR.yaml": {Data: []byte("locale: pt-BR\nmessages:\n  a: \"b\"\n")},
	}
	if _, err := LoadFromFS(fsys); err == nil {
		t.Error("LoadFromFS() without base locale should fail")
	}
}

func TestLoadFromFSRejectsMismatchedLocale(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/en-US.yaml": {Data: []byte("locale: pt-BR\nmessages:\n  a: \"b\"\n")},
	}
	if _, err := LoadFromFS(fsys); err == nil {
		t.Error("LoadFromFS() with mismatched locale should fail")
	}
}
