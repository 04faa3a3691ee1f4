package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/syedkumailraza2/buildboard/internal/database"
	"github.com/syedkumailraza2/buildboard/internal/popup"
	"github.com/syedkumailraza2/buildboard/internal/relay"
)

type stubSource struct {
	text string
	err  error
}

func (s stubSource) Fetch(_ context.Context, _ string) (relay.Payload, error) {
	return relay.Payload{Text: s.text}, s.err
}

type stubProvider struct{ text string }

func (p stubProvider) Generate(_ context.Context, _ string) (string, error) { return p.text, nil }
func (p stubProvider) IsConfigured() bool                                    { return true }

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestServer(t *testing.T, deps Deps) *Server {
	t.Helper()
	srv, err := New(deps)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv
}

func postIdea(srv *Server, difficulty string) *httptest.ResponseRecorder {
	form := url.Values{"difficulty": {difficulty}}
	req := httptest.NewRequest("POST", "/idea", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestIndexRoute(t *testing.T) {
	srv := newTestServer(t, Deps{Controller: popup.NewController(stubSource{}, nil)})

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `value="easy"`) {
		t.Error("expected default difficulty in form")
	}
	if !strings.Contains(body, `id="loader" class="loader" hidden`) {
		t.Error("expected hidden loading indicator")
	}
	if !strings.Contains(body, "getElementById('loader').hidden = false") {
		t.Error("expected form submit to reveal the loading indicator")
	}
	if strings.Contains(body, `id="result"`) {
		t.Error("expected no result region before generating")
	}
	if strings.Contains(body, `href="/history"`) {
		t.Error("expected no history link without a history store")
	}
}

func TestUnknownRoute404(t *testing.T) {
	srv := newTestServer(t, Deps{Controller: popup.NewController(stubSource{}, nil)})

	req := httptest.NewRequest("GET", "/nope", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestIdeaRoute(t *testing.T) {
	src := stubSource{text: "```json\n{\"idea\":{\"title\":\"<b>Chess</b> Bot\",\"description\":\"Plays **chess**.\",\"tags\":[\"AI\"]}}\n```"}
	srv := newTestServer(t, Deps{Controller: popup.NewController(src, nil)})

	rec := postIdea(srv, "hard")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, expected := range []string{
		"&lt;b&gt;Chess&lt;/b&gt; Bot",
		"<strong>chess</strong>",
		`<span class="result-tag">AI</span>`,
		`value="hard"`,
	} {
		if !strings.Contains(body, expected) {
			t.Errorf("expected %q in response body", expected)
		}
	}
	if strings.Contains(body, "<b>Chess</b>") {
		t.Error("expected title markup to be escaped")
	}
}

func TestIdeaRouteDropsRawHTMLInDescription(t *testing.T) {
	src := stubSource{text: `{"title":"T","description":"<script>alert(1)</script>"}`}
	srv := newTestServer(t, Deps{Controller: popup.NewController(src, nil)})

	body := postIdea(srv, "easy").Body.String()
	if strings.Contains(body, "<script>alert(1)</script>") {
		t.Error("expected raw HTML in description to be dropped")
	}
}

func TestIdeaRouteInvalid(t *testing.T) {
	src := stubSource{text: "Sorry, no <JSON> today"}
	srv := newTestServer(t, Deps{Controller: popup.NewController(src, nil)})

	body := postIdea(srv, "easy").Body.String()
	if !strings.Contains(body, "AI returned invalid JSON") {
		t.Error("expected invalid heading")
	}
	if !strings.Contains(body, "Sorry, no &lt;JSON&gt; today") {
		t.Error("expected escaped raw text")
	}
}

func TestIdeaRouteError(t *testing.T) {
	src := stubSource{err: &relay.ServerError{StatusCode: 400, Body: `{"message":"Gemini API Missing"}`}}
	srv := newTestServer(t, Deps{Controller: popup.NewController(src, nil)})

	body := postIdea(srv, "easy").Body.String()
	if !strings.Contains(body, "server error:") || !strings.Contains(body, "Gemini API Missing") {
		t.Errorf("expected server error in body, got:\n%s", body)
	}
}

func TestIdeaRouteGetRedirects(t *testing.T) {
	srv := newTestServer(t, Deps{Controller: popup.NewController(stubSource{}, nil)})

	req := httptest.NewRequest("GET", "/idea", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Errorf("expected 302, got %d", rec.Code)
	}
}

func TestHistoryRoute(t *testing.T) {
	db := openTestDB(t)
	src := stubSource{text: `{"idea":{"title":"Stored Idea","tags":["Go"]}}`}
	srv := newTestServer(t, Deps{Controller: popup.NewController(src, db), History: db})

	postIdea(srv, "medium")

	req := httptest.NewRequest("GET", "/history", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, expected := range []string{"Stored Idea", "medium", `href="/history"`} {
		if !strings.Contains(body, expected) {
			t.Errorf("expected %q in response body", expected)
		}
	}
}

func TestHistoryRouteEmpty(t *testing.T) {
	db := openTestDB(t)
	srv := newTestServer(t, Deps{Controller: popup.NewController(stubSource{}, db), History: db})

	req := httptest.NewRequest("GET", "/history", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "No ideas yet") {
		t.Error("expected empty state")
	}
}

func TestRelayRoute(t *testing.T) {
	srv := newTestServer(t, Deps{
		Controller: popup.NewController(stubSource{}, nil),
		Relay:      relay.NewHandler(stubProvider{text: "hi"}, "*"),
	})

	req := httptest.NewRequest("POST", "/generate", strings.NewReader(`{"prompt":"p"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"text":"hi"}` {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestMCPRouteStripsPrefix(t *testing.T) {
	var gotPath string
	mcpHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	})
	srv := newTestServer(t, Deps{Controller: popup.NewController(stubSource{}, nil), MCP: mcpHandler})

	req := httptest.NewRequest("POST", "/mcp/", nil)
	srv.Handler().ServeHTTP(httptest.NewRecorder(), req)

	if gotPath != "/" {
		t.Errorf("expected prefix to be stripped, got %q", gotPath)
	}
}

func TestStaticRoute(t *testing.T) {
	srv := newTestServer(t, Deps{Controller: popup.NewController(stubSource{}, nil)})

	req := httptest.NewRequest("GET", "/static/style.css", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRenderMarkdown(t *testing.T) {
	got := string(renderMarkdown("**bold** <i>raw</i>"))
	if !strings.Contains(got, "<strong>bold</strong>") {
		t.Errorf("expected bold markup, got %q", got)
	}
	if strings.Contains(got, "<i>raw</i>") {
		t.Errorf("expected raw HTML to be dropped, got %q", got)
	}
}
