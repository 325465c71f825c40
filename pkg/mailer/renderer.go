package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"sync"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/dmitrymomot/folio/pkg/sanitizer"
)

// markdownPunct is the ASCII punctuation CommonMark allows to be backslash-escaped.
const markdownPunct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// EscapeMarkdown backslash-escapes every markdown punctuation character in s,
// so goldmark renders it as literal text: no headings, links, emphasis or HTML.
func EscapeMarkdown(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/4)
	for _, r := range s {
		if strings.ContainsRune(markdownPunct, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Templates mark untrusted values with md: {{md .Message}}. The plain-text
// body prints them unchanged; the markdown source behind the HTML body gets
// them escaped.
func textFuncs() texttemplate.FuncMap {
	return texttemplate.FuncMap{"md": func(v any) string { return fmt.Sprint(v) }}
}

func markdownFuncs() texttemplate.FuncMap {
	return texttemplate.FuncMap{"md": func(v any) string { return EscapeMarkdown(fmt.Sprint(v)) }}
}

// RendererConfig configures where the renderer looks for files.
type RendererConfig struct {
	TemplateDir string // Default: "."
	LayoutDir   string // Default: "layouts"
}

// RenderResult holds the rendered bodies and the template metadata.
type RenderResult struct {
	Metadata map[string]any
	HTML     string
	Text     string
}

type parsedTemplate struct {
	metadata map[string]any
	text     *texttemplate.Template
	markdown *texttemplate.Template
}

// Renderer renders markdown templates into HTML wrapped in a layout.
// Parsed templates and layouts are cached; rendered output never is.
type Renderer struct {
	fs      fs.FS
	md      goldmark.Markdown
	cfg     RendererConfig
	mu      sync.RWMutex
	bodies  map[string]*parsedTemplate
	layouts map[string]*template.Template
}

// NewRenderer creates a renderer with the default directory layout.
func NewRenderer(fsys fs.FS) *Renderer {
	return NewRendererWithConfig(fsys, RendererConfig{})
}

// NewRendererWithConfig creates a renderer with custom directories.
func NewRendererWithConfig(fsys fs.FS, cfg RendererConfig) *Renderer {
	if cfg.TemplateDir == "" {
		cfg.TemplateDir = "."
	}
	if cfg.LayoutDir == "" {
		cfg.LayoutDir = "layouts"
	}
	return &Renderer{
		fs:  fsys,
		cfg: cfg,
		// Hard wraps keep line-oriented plain-text templates readable as HTML.
		md:      goldmark.New(goldmark.WithRendererOptions(html.WithHardWraps())),
		bodies:  make(map[string]*parsedTemplate),
		layouts: make(map[string]*template.Template),
	}
}

// Render executes the named template with data and wraps the HTML in layout.
// An empty layout returns the bare markdown HTML.
func (r *Renderer) Render(layout, name string, data any) (*RenderResult, error) {
	tmpl, err := r.template(name)
	if err != nil {
		return nil, err
	}

	var text bytes.Buffer
	if err := tmpl.text.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("%w: execute %s: %v", ErrRenderFailed, name, err)
	}

	var source bytes.Buffer
	if err := tmpl.markdown.Execute(&source, data); err != nil {
		return nil, fmt.Errorf("%w: execute %s: %v", ErrRenderFailed, name, err)
	}

	var converted bytes.Buffer
	if err := r.md.Convert(source.Bytes(), &converted); err != nil {
		return nil, fmt.Errorf("%w: convert markdown: %v", ErrRenderFailed, err)
	}
	content := sanitizer.HTML(converted.String())

	result := &RenderResult{Metadata: tmpl.metadata, Text: text.String(), HTML: content}
	if layout == "" {
		return result, nil
	}

	lt, err := r.layout(layout)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := lt.Execute(&out, map[string]any{
		"Content":  template.HTML(content), //nolint:gosec // goldmark output passed through sanitizer.HTML
		"Metadata": tmpl.metadata,
	}); err != nil {
		return nil, fmt.Errorf("%w: execute layout %s: %v", ErrRenderFailed, layout, err)
	}
	result.HTML = out.String()

	return result, nil
}

func (r *Renderer) template(name string) (*parsedTemplate, error) {
	r.mu.RLock()
	t, ok := r.bodies[name]
	r.mu.RUnlock()
	if ok {
		return t, nil
	}

	raw, err := fs.ReadFile(r.fs, path.Join(r.cfg.TemplateDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, name, err)
	}
	parsed, err := ParseTemplate(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRenderFailed, name, err)
	}
	text, err := texttemplate.New(name).Funcs(textFuncs()).Parse(parsed.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrRenderFailed, name, err)
	}
	markdown, err := texttemplate.New(name).Funcs(markdownFuncs()).Parse(parsed.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrRenderFailed, name, err)
	}

	t = &parsedTemplate{metadata: parsed.Metadata, text: text, markdown: markdown}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.bodies[name]; ok {
		return cached, nil
	}
	r.bodies[name] = t
	return t, nil
}

func (r *Renderer) layout(name string) (*template.Template, error) {
	r.mu.RLock()
	lt, ok := r.layouts[name]
	r.mu.RUnlock()
	if ok {
		return lt, nil
	}

	raw, err := fs.ReadFile(r.fs, path.Join(r.cfg.LayoutDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLayoutNotFound, name, err)
	}
	lt, err = template.New(name).Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: parse layout %s: %v", ErrRenderFailed, name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.layouts[name]; ok {
		return cached, nil
	}
	r.layouts[name] = lt
	return lt, nil
}
