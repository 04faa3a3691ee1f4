package server

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/syedkumailraza2/buildboard/internal/database"
	"github.com/syedkumailraza2/buildboard/internal/popup"
	"github.com/syedkumailraza2/buildboard/internal/prompt"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

// History lists stored ideas.
type History interface {
	GetRecentIdeas(limit int) ([]database.Record, error)
}

// Deps are the collaborators the server routes to. Relay, History and MCP
// are optional; their routes are not registered when nil.
type Deps struct {
	Controller *popup.Controller
	Relay      http.Handler
	History    History
	MCP        http.Handler
}

// Server is the HTTP server for the idea page, the relay and MCP.
type Server struct {
	deps  Deps
	pages map[string]*template.Template
	mux   *http.ServeMux
}

// New creates a new Server.
func New(deps Deps) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
		"join":     strings.Join,
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// Each page gets its own clone of base so {{define "content"}} does not clash.
	pageNames := []string{"index.html", "history.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{deps: deps, pages: pages, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/idea", s.handleIdea)
	if s.deps.History != nil {
		s.mux.HandleFunc("/history", s.handleHistory)
	}
	if s.deps.Relay != nil {
		s.mux.Handle("/generate", s.deps.Relay)
	}
	if s.deps.MCP != nil {
		s.mux.Handle("/mcp/", http.StripPrefix("/mcp", s.deps.MCP))
	}
}

// ideaView is the data behind the result region of the idea page.
type ideaView struct {
	Difficulty     string
	HasHistory     bool
	Result         *popup.Capture
	InvalidHeading string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.render(w, "index.html", ideaView{
		Difficulty: prompt.DefaultDifficulty,
		HasHistory: s.deps.History != nil,
	})
}

func (s *Server) handleIdea(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	difficulty := strings.TrimSpace(r.FormValue("difficulty"))

	capture := &popup.Capture{}
	out := s.deps.Controller.Generate(r.Context(), difficulty, capture)

	s.render(w, "index.html", ideaView{
		Difficulty:     out.Difficulty,
		HasHistory:     s.deps.History != nil,
		Result:         capture,
		InvalidHeading: popup.InvalidHeading,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.deps.History.GetRecentIdeas(50)
	if err != nil {
		log.Printf("Error loading history: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "history.html", map[string]any{
		"Records":    records,
		"HasHistory": true,
	})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// renderMarkdown converts model-written markdown to HTML. goldmark drops raw
// HTML unless configured otherwise, so the output is safe to embed.
func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve runs handler on addr until ctx is cancelled, then shuts down.
func Serve(ctx context.Context, handler http.Handler, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Println("Shutting down server...")
		return srv.Shutdown(shutdownCtx)
	}
}
