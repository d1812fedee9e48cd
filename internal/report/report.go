// Package report renders dashboards as markdown and, for terminals, through
// glamour.
package report

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/charmbracelet/glamour"

	"finpanel/internal/analytics"
	"finpanel/internal/core"
)

//go:embed templates/*.md
var templates embed.FS

// Renderer formats amounts in one display currency.
type Renderer struct {
	currency string
	tmpl     *template.Template
}

// New parses the embedded templates. An empty currency means BRL.
func New(currency string) (*Renderer, error) {
	if currency == "" {
		currency = "BRL"
	}
	r := &Renderer{currency: strings.ToUpper(currency)}

	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"money": r.money,
		"pct":   pct,
		"date":  date,
		"cell":  cell,
		"inc":   func(i int) int { return i + 1 },
	}).ParseFS(templates, "templates/*.md")
	if err != nil {
		return nil, fmt.Errorf("parse report templates: %w", err)
	}
	r.tmpl = tmpl
	return r, nil
}

func (r *Renderer) money(m core.Money) string { return m.Display(r.currency) }

func pct(f float64) string { return fmt.Sprintf("%.2f%%", f) }

func date(d core.Date) string {
	if d.IsEmpty() {
		return "-"
	}
	return d.String()
}

// cell keeps table rows intact when a value contains a pipe or newline.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\n", " ")
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func (r *Renderer) execute(name string, data any) (string, error) {
	var b strings.Builder
	if err := r.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return b.String(), nil
}

// Dashboard renders the full dashboard.
func (r *Renderer) Dashboard(d analytics.Dashboard) (string, error) {
	return r.execute("dashboard.md", d)
}

// Installments renders detected installment series.
func (r *Renderer) Installments(groups []analytics.InstallmentGroup) (string, error) {
	return r.execute("installments.md", groups)
}

// Portfolio renders the investment rollup with every holding.
func (r *Renderer) Portfolio(p analytics.Portfolio) (string, error) {
	return r.execute("portfolio.md", p)
}

// Terminal renders markdown for a terminal of the given width.
func Terminal(md string, width int) (string, error) {
	if width <= 0 {
		width = 100
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(md)
}
