package web

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// EventsView lists the audit log one page at a time.
func EventsView(data EventsData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <title>BravePulse events</title>
    <style>` + pageStyle + `
    </style>
  </head>
  <body>
    <main>
      <h1>Events</h1>
`)
		if data.Error != "" {
			b.WriteString(`      <p class="muted">` + esc(data.Error) + `</p>
`)
		}
		b.WriteString(`      <table>
        <thead><tr><th>#</th><th>Type</th><th>Round</th><th>Player</th><th>Payload</th><th>At</th></tr></thead>
        <tbody>
`)
		for _, event := range data.Events {
			player := event.PlayerID
			if player == "" {
				player = "-"
			}
			b.WriteString(`          <tr><td>` + utoa(event.ID) + `</td><td>` + esc(event.Type) + `</td><td>` +
				itoa(event.Round) + `</td><td>` + esc(player) + `</td><td><code>` + esc(event.Payload) +
				`</code></td><td>` + formatTime(event.CreatedAt) + `</td></tr>
`)
		}
		b.WriteString(`        </tbody>
      </table>
`)
		writePagination(&b, data.Pagination)
		b.WriteString(`    </main>
  </body>
</html>
`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writePagination(b *strings.Builder, page PaginationData) {
	if page.TotalPages <= 1 {
		return
	}
	b.WriteString(`      <nav>`)
	if page.HasPrev {
		b.WriteString(`<a href="` + esc(pageURL(page.BasePath, page.PrevPage, page.PerPage)) + `">Previous</a> `)
	}
	b.WriteString(`<span>Page ` + itoa(page.Page) + ` of ` + itoa(page.TotalPages) + `</span>`)
	if page.HasNext {
		b.WriteString(` <a href="` + esc(pageURL(page.BasePath, page.NextPage, page.PerPage)) + `">Next</a>`)
	}
	b.WriteString(`</nav>
`)
}
