package relay

import (
	"bytes"
	"html/template"
	"time"
)

const noticeFragment = `<div class="notice" id="notice-{{.ID}}">` +
	`<p class="notice-sender">{{.Sender}}</p>` +
	`<p class="notice-body">{{.Body}}</p>` +
	`<time datetime="{{.CreatedAt.UTC.Format "2006-01-02T15:04:05Z07:00"}}">{{.CreatedAt.UTC.Format "Jan 2, 15:04"}}</time>` +
	`</div>`

// noticeView is what the fragment template sees.
type noticeView struct {
	ID        int64
	Sender    string
	Body      string
	CreatedAt time.Time
}

// Renderer turns notices into escaped HTML fragments.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the notice fragment template.
func NewRenderer() *Renderer {
	return &Renderer{tmpl: template.Must(template.New("notice").Parse(noticeFragment))}
}

func (r *Renderer) render(v noticeView) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}
