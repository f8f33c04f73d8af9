package layouts

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Base is the admin shell. content is rendered inside <main>; nil renders an
// empty page that loads its panels over HTMX.
func Base(title string, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if title == "" {
			title = "Runway"
		}
		head := `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">` +
			`<meta name="viewport" content="width=device-width, initial-scale=1">` +
			`<title>` + templ.EscapeString(title) + `</title>` +
			`<link rel="stylesheet" href="/static/css/main.css">` +
			`<script src="/static/js/htmx.min.js" defer></script>` +
			`</head><body><main id="content">`
		if _, err := io.WriteString(w, head); err != nil {
			return err
		}
		if content != nil {
			if err := content.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}
