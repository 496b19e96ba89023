package screens

import (
	"testing"
	"time"

	"github.com/julianstephens/guardian/internal/api"
	"github.com/julianstephens/guardian/internal/api/apitest"
	"github.com/julianstephens/guardian/internal/i18n"
	"github.com/julianstephens/guardian/internal/session"
)

type recordingNav struct {
	paths []string
}

func (n *recordingNav) Navigate(path string) error {
	n.paths = append(n.paths, path)
	return nil
}

func (n *recordingNav) last() string {
	if len(n.paths) == 0 {
		return ""
	}
	return n.paths[len(n.paths)-1]
}

type memTokens struct {
	token string
}

func (m *memTokens) SetToken(token string) error {
	m.token = token
	return nil
}

func (m *memTokens) DeleteToken() error {
	m.token = ""
	return nil
}

type fixture struct {
	srv     *apitest.Server
	client  *api.Client
	nav     *recordingNav
	session *session.Session
	en      *i18n.Translator
	pt      *i18n.Translator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := apitest.New(t)
	return &fixture{
		srv:     srv,
		client:  api.New(api.Options{BaseURL: srv.URL, Timeout: 5 * time.Second}),
		nav:     &recordingNav{},
		session: session.New(nil),
		en:      i18n.MustTranslator("en-US"),
		pt:      i18n.MustTranslator("pt-BR"),
	}
}

// trackLoading records every loading transition of a screen
func trackLoading(l *LoadState) *[]bool {
	var transitions []bool
	l.Observe(func(loading bool) {
		transitions = append(transitions, loading)
	})
	return &transitions
}

func assertOneLoadCycle(t *testing.T, transitions []bool) {
	t.Helper()
	if len(transitions) != 2 || !transitions[0] || transitions[1] {
		t.Errorf("loading transitions = %v, want [true false]", transitions)
	}
}
