// Package views renders taskly's pages as HTML.
//
// Pages are built with gomponents. Form pages render the form as a
// self-contained fragment (FormID) so the live channel can re-render it
// without the rest of the document.
package views

import (
	"io"
	"strings"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/taskly-dev/taskly/pkg/toast"
)

// FormID is the DOM id of the form fragment on form pages.
const FormID = "taskly-form"

// ToastsID is the DOM id of the toast region.
const ToastsID = "taskly-toasts"

// Page carries what every document needs besides its body.
type Page struct {
	Title   string
	Toasts  []toast.Toast
	Scripts []string
}

// Layout wraps body in the HTML document.
func Layout(p Page, body ...g.Node) g.Node {
	title := "Todo App"
	if p.Title != "" {
		title = p.Title + " | Todo App"
	}

	return Doctype(
		HTML(Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
				TitleEl(g.Text(title)),
				StyleEl(g.Raw(stylesheet)),
			),
			Body(
				g.Group(body),
				Toasts(p.Toasts),
				g.Map(p.Scripts, func(src string) g.Node {
					return Script(Src(src), Defer())
				}),
			),
		),
	)
}

// Toasts renders the notification region.
func Toasts(toasts []toast.Toast) g.Node {
	return Div(ID(ToastsID), Class("toasts"), Role("status"), Aria("live", "polite"),
		g.Map(toasts, toastItem),
	)
}

func toastItem(t toast.Toast) g.Node {
	return Div(Class("toast toast-"+string(t.Level)), Data("level", string(t.Level)),
		g.Text(t.Message),
	)
}

// RenderString renders n to a string.
func RenderString(n g.Node) (string, error) {
	var b strings.Builder
	if err := n.Render(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Render writes n to w.
func Render(w io.Writer, n g.Node) error {
	return n.Render(w)
}

const stylesheet = `
*{box-sizing:border-box}
body{margin:0;font-family:system-ui,sans-serif;color:#111;background:#fff}
.auth{min-height:100vh;display:flex;align-items:center;justify-content:center;padding:2rem}
.auth-card{width:100%;max-width:32rem;display:flex;flex-direction:column;gap:2.25rem}
.auth-head h2{font-size:1.875rem;text-align:center;margin:0 0 .5rem}
.auth-head p,.form-footer{color:#6b7280;text-align:center}
form{display:flex;flex-direction:column;gap:1rem}
.field{display:flex;flex-direction:column;gap:.25rem}
.field-row{display:grid;grid-template-columns:1fr 1fr;gap:1rem}
.field input{width:100%;padding:.75rem 1rem;border:1px solid #d1d5db;border-radius:.5rem}
.field input[aria-invalid=true]{border-color:#dc2626}
.field-error{color:#dc2626;font-size:.75rem;margin:0}
.password-input{position:relative}
.password-toggle{position:absolute;inset:0 0 0 auto;padding:0 .75rem;border:0;background:none;cursor:pointer;color:#6b7280}
.form-options{display:flex;justify-content:space-between;font-size:.875rem}
.submit{width:100%;padding:.75rem;border:0;border-radius:.5rem;font-weight:600;background:#2563eb;color:#fff;cursor:pointer;display:flex;justify-content:center}
.submit[disabled]{background:#60a5fa;cursor:not-allowed}
.spinner{height:1.25rem;width:1.25rem;animation:spin 1s linear infinite}
@keyframes spin{to{transform:rotate(360deg)}}
.toasts{position:fixed;top:1rem;right:1rem;display:flex;flex-direction:column;gap:.5rem}
.toast{padding:.75rem 1rem;border-radius:.5rem;background:#111;color:#fff}
.toast-success{background:#15803d}.toast-error{background:#b91c1c}
.toast-warning{background:#b45309}.toast-info{background:#1d4ed8}
.app{min-height:100vh;display:flex;background:#f9fafb}
.sidebar{width:16rem;background:#1e293b;color:#fff;padding:1.5rem;position:relative}
.sidebar a{display:block;padding:.75rem 1rem;border-radius:.5rem;color:#d1d5db;text-decoration:none}
.sidebar a.active{background:#334155;color:#fff}
.content{flex:1;padding:2rem}
.todo{display:flex;align-items:center;gap:.75rem;padding:1rem;background:#fff;border-radius:.5rem;margin-bottom:.5rem}
.todo-done{text-decoration:line-through;color:#9ca3af}
`
