package pages

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
	"sync"

	"tangled.org/repobrowser/appview/models"
	"tangled.org/repobrowser/appview/pages/markup"
)

//go:embed templates/* static
var Files embed.FS

type Pages struct {
	mu          sync.RWMutex
	t           map[string]*template.Template
	dev         bool
	fs          fs.FS
	templateDir string // Path to templates on disk for dev mode
	logger      *slog.Logger
	sanitizer   markup.Sanitizer
}

func NewPages(dev bool, logger *slog.Logger) (*Pages, error) {
	p := &Pages{
		t:           make(map[string]*template.Template),
		dev:         dev,
		fs:          Files,
		templateDir: "appview/pages",
		logger:      logger,
		sanitizer:   markup.NewSanitizer(),
	}

	if err := p.loadAllTemplates(); err != nil {
		return nil, err
	}
	return p, nil
}

// loadAllTemplates parses every page under templates/ together with the
// shared layouts. Pages are keyed by path without the .html suffix.
func (p *Pages) loadAllTemplates() error {
	templates := make(map[string]*template.Template)

	err := fs.WalkDir(p.fs, "templates", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(name, ".html") {
			return nil
		}
		// Skip layouts
		if strings.Contains(name, "layouts/") {
			return nil
		}

		tmpl, key, err := p.parse(p.fs, name)
		if err != nil {
			return err
		}
		templates[key] = tmpl
		p.logger.Debug("loaded template", "name", key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}

	p.mu.Lock()
	p.t = templates
	p.mu.Unlock()
	return nil
}

func (p *Pages) parse(fsys fs.FS, name string) (*template.Template, string, error) {
	key := strings.TrimSuffix(strings.TrimPrefix(name, "templates/"), ".html")
	tmpl, err := template.New(path.Base(name)).
		Funcs(p.funcMap()).
		ParseFS(fsys, "templates/layouts/*.html", name)
	if err != nil {
		return nil, "", fmt.Errorf("parsing %s: %w", name, err)
	}
	return tmpl, key, nil
}

func (p *Pages) executeOrReload(templateName string, w io.Writer, base string, params any) error {
	// In dev mode, reload the template from disk before executing
	if p.dev {
		tmpl, _, err := p.parse(os.DirFS(p.templateDir), "templates/"+templateName+".html")
		if err != nil {
			p.logger.Warn("failed to reload template from disk", "name", templateName, "err", err)
		} else {
			p.mu.Lock()
			p.t[templateName] = tmpl
			p.mu.Unlock()
		}
	}

	p.mu.RLock()
	tmpl, exists := p.t[templateName]
	p.mu.RUnlock()
	if !exists {
		return fmt.Errorf("template not found: %s", templateName)
	}

	// render fully before writing so a failure never leaves half a page
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, base, params); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func (p *Pages) execute(name string, w io.Writer, params any) error {
	return p.executeOrReload(name, w, "layouts/base", params)
}

type IndexParams struct {
	Examples []models.RepoIdentifier
}

func (p *Pages) Index(w io.Writer, params IndexParams) error {
	return p.execute("index", w, params)
}

type RepoIssuesParams struct {
	State models.BrowsingState
}

// Loading is true until there is a repository to show.
func (p RepoIssuesParams) Loading() bool {
	return p.State.IsLoading || p.State.Metadata == nil
}

func (p *Pages) RepoIssues(w io.Writer, params RepoIssuesParams) error {
	return p.execute("repo/issues", w, params)
}

func (p *Pages) Static() http.Handler {
	if p.dev {
		return http.StripPrefix("/static/", http.FileServer(http.Dir(path.Join(p.templateDir, "static"))))
	}

	sub, err := fs.Sub(Files, "static")
	if err != nil {
		// static is embedded above, so this cannot happen at runtime
		panic(err)
	}
	return Cache(http.StripPrefix("/static/", http.FileServer(http.FS(sub))))
}

func Cache(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		h.ServeHTTP(w, r)
	})
}

type ErrorParams struct {
	Status  int
	Title   string
	Message string
}

func (p *Pages) Error(w http.ResponseWriter, params ErrorParams) error {
	if params.Title == "" {
		params.Title = http.StatusText(params.Status)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(params.Status)
	return p.execute("errors/error", w, params)
}

func (p *Pages) Error400(w http.ResponseWriter, message string) error {
	return p.Error(w, ErrorParams{Status: http.StatusBadRequest, Message: message})
}

func (p *Pages) Error404(w http.ResponseWriter) error {
	return p.Error(w, ErrorParams{
		Status:  http.StatusNotFound,
		Message: "We couldn't find that repository.",
	})
}

func (p *Pages) Error503(w http.ResponseWriter) error {
	return p.Error(w, ErrorParams{
		Status:  http.StatusServiceUnavailable,
		Message: "Something went wrong on our side. Try again in a moment.",
	})
}
