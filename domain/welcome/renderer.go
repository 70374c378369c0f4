package welcome

import (
	"embed"
	"html/template"
	"strings"
)

//go:embed templates/welcome.html templates/index.html
var templatesFS embed.FS

var welcomeTemplate = template.Must(template.ParseFS(templatesFS, "templates/welcome.html"))

// htmlEscaper covers the five HTML-significant characters and nothing else.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Escape makes s safe for HTML body text and attribute values. Invalid
// UTF-8 sequences become U+FFFD since the page declares UTF-8.
func Escape(s string) string {
	return htmlEscaper.Replace(strings.ToValidUTF8(s, "\uFFFD"))
}

//go:generate mockgen -source=renderer.go -destination=mock_renderer.go -package=welcome

type Renderer interface {
	// Render returns the complete welcome document. Nil fields render empty.
	Render(name, email *string) string
}

type htmlRenderer struct {
	tmpl *template.Template
}

func NewRenderer() Renderer {
	return &htmlRenderer{tmpl: welcomeTemplate}
}

type welcomePage struct {
	Name  template.HTML
	Email template.HTML
}

func (r *htmlRenderer) Render(name, email *string) string {
	// Values are escaped here once; template.HTML stops the template from escaping again.
	page := welcomePage{
		Name:  template.HTML(Escape(valueOrEmpty(name))),
		Email: template.HTML(Escape(valueOrEmpty(email))),
	}

	var b strings.Builder
	if err := r.tmpl.Execute(&b, page); err != nil {
		// Only reachable if the embedded template is broken.
		panic("welcome: executing embedded template: " + err.Error())
	}

	return b.String()
}

// RenderSubmission renders s, treating a nil submission as all fields absent.
func RenderSubmission(r Renderer, s *Submission) string {
	if s == nil {
		return r.Render(nil, nil)
	}
	return r.Render(s.Name, s.Email)
}

// IndexPage returns the static form that posts to the welcome page.
func IndexPage() ([]byte, error) {
	return templatesFS.ReadFile("templates/index.html")
}
