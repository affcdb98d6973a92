package main

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/margies-travel/docsearch/internal/azsearch"
	"github.com/margies-travel/docsearch/internal/version"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// pageData feeds the HTML templates. Results is nil on the home and
// error pages.
type pageData struct {
	Title       string
	SearchTerms string
	Facet       string
	Sort        string
	Results     *azsearch.Results
	Error       string
	Version     string
}

type server struct {
	log    *zap.Logger
	search searcher
	tmpl   *template.Template
}

func newServer(log *zap.Logger, search searcher) (*server, error) {
	tmpl, err := template.New("pages").Funcs(templateFuncs()).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &server{log: log, search: search, tmpl: tmpl}, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatSize": func(size float64) string {
			if size <= 0 {
				return ""
			}
			return humanize.Bytes(uint64(size))
		},
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
		"join": strings.Join,
		"excerpt": func(s string, max int) string {
			s = strings.Join(strings.Fields(s), " ")
			if utf8.RuneCountInString(s) <= max {
				return s
			}
			runes := []rune(s)
			return strings.TrimSpace(string(runes[:max])) + "..."
		},
		// highlight trusts only the <em> markers the search service wraps
		// around matched terms; everything else stays escaped.
		"highlight": func(fragment string) template.HTML {
			escaped := template.HTMLEscapeString(fragment)
			escaped = strings.ReplaceAll(escaped, "&lt;em&gt;", "<em>")
			escaped = strings.ReplaceAll(escaped, "&lt;/em&gt;", "</em>")
			return template.HTML(escaped)
		},
	}
}

// renderPage renders one of the page templates. Output is buffered; a
// failed execution sends a plain 500, never a partial page.
func (s *server) renderPage(w http.ResponseWriter, name string, data pageData) {
	data.Version = version.Version

	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.log.Error("render template", zap.String("template", name), zap.Error(err))
		http.Error(w, "something went wrong", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *server) renderError(w http.ResponseWriter, message string) {
	s.renderPage(w, "error.html", pageData{Title: "Search error", Error: message})
}

func (s *server) handleStatic(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/static/")
	content, err := staticFS.ReadFile("static/" + name)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	switch {
	case strings.HasSuffix(name, ".css"):
		w.Header().Set("Content-Type", "text/css")
	case strings.HasSuffix(name, ".js"):
		w.Header().Set("Content-Type", "application/javascript")
	case strings.HasSuffix(name, ".svg"):
		w.Header().Set("Content-Type", "image/svg+xml")
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(content)
}
