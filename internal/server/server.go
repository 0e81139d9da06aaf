package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/TobiSchelling/scholarfetch/internal/database"
	"github.com/TobiSchelling/scholarfetch/internal/scholar"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

// Server previews the latest successful fetch.
type Server struct {
	db    *database.DB
	pages map[string]*template.Template
	mux   *http.ServeMux
}

// New creates a new Server.
func New(db *database.DB) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown":   renderMarkdown,
		"formatTime": database.FormatDisplay,
	}

	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// Each page gets its own clone of base so {{define "content"}} does not collide.
	pageNames := []string{"index.html"}
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

	s := &Server{db: db, pages: pages, mux: http.NewServeMux()}
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
	s.mux.HandleFunc("/scholar.json", s.handleJSON)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	run, result, err := s.latest()
	if err != nil {
		log.Printf("Loading latest run: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data := map[string]any{"Run": run, "Result": result}
	if result != nil {
		data["Metrics"] = result.Metrics.Rows()
		data["Publications"] = publicationsMarkdown(result.Publications)
	}
	s.render(w, "index.html", data)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	run, err := s.db.GetLatestSuccessfulRun()
	if err != nil {
		log.Printf("Loading latest run: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if run == nil || run.ResultJSON == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write([]byte(*run.ResultJSON))
}

// latest returns the newest successful run and its decoded result, or
// nils when there is none.
func (s *Server) latest() (*database.Run, *scholar.FetchResult, error) {
	run, err := s.db.GetLatestSuccessfulRun()
	if err != nil {
		return nil, nil, err
	}
	if run == nil || run.ResultJSON == nil {
		return nil, nil, nil
	}

	var result scholar.FetchResult
	if err := json.Unmarshal([]byte(*run.ResultJSON), &result); err != nil {
		return nil, nil, fmt.Errorf("decoding run %s: %w", run.ID, err)
	}
	return run, &result, nil
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

// publicationsMarkdown renders the publication list as an ordered
// Markdown list: linked title, year, then authors and venue.
func publicationsMarkdown(pubs []scholar.Publication) string {
	if len(pubs) == 0 {
		return "_No publications listed._\n"
	}

	var b strings.Builder
	for i, p := range pubs {
		title := escapeMarkdown(p.Title)
		if title == "" {
			title = "(untitled)"
		}
		if p.Link != "" {
			title = fmt.Sprintf("[%s](<%s>)", title, p.Link)
		}
		fmt.Fprintf(&b, "%d. **%s**", i+1, title)
		if p.Year != "" {
			fmt.Fprintf(&b, " (%s)", escapeMarkdown(p.Year))
		}
		b.WriteString("\n")

		var details []string
		if p.Authors != "" {
			details = append(details, escapeMarkdown(p.Authors))
		}
		if p.Publication != "" {
			details = append(details, "*"+escapeMarkdown(p.Publication)+"*")
		}
		if len(details) > 0 {
			fmt.Fprintf(&b, "   %s\n", strings.Join(details, " · "))
		}
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", `*`, `\*`, `_`, `\_`,
	`[`, `\[`, `]`, `\]`, `<`, `\<`, `>`, `\>`, `#`, `\#`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port.
func Serve(db *database.DB, port int) error {
	srv, err := New(db)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
