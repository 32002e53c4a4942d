// Package templates holds the HTML components rendered by the web server.
package templates

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/JonMunkholm/csvrecords/internal/csvparse"
	"github.com/a-h/templ"
)

const pageStyle = `body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2933}
table{border-collapse:collapse;margin-top:1rem}
th,td{border:1px solid #cbd2d9;padding:.35rem .6rem;text-align:left}
th{background:#f5f7fa}
td.num{text-align:right;font-variant-numeric:tabular-nums}
.alert{border:1px solid #e12d39;background:#ffe3e3;padding:.75rem 1rem;margin:1rem 0}
.alert code{font-size:.85em;color:#8a041a}
.meta{color:#616e7c;font-size:.9em}`

// Page wraps body in the HTML document shell.
func Page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			"<!DOCTYPE html><html lang=\"en\"><head><meta charset=\"utf-8\"><title>%s</title><style>%s</style></head><body><h1>%s</h1>",
			templ.EscapeString(title), pageStyle, templ.EscapeString(title)); err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</body></html>")
		return err
	})
}

// UploadForm is the index page form. It posts a file to /parse.
func UploadForm(defaultCoercion csvparse.Coercion, encodings []string, persistEnabled bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		sw := &stickyWriter{w: w}
		sw.printf(`<form method="post" action="/parse" enctype="multipart/form-data">`)
		sw.printf(`<p><label>CSV file <input type="file" name="file" accept=".csv,text/csv" required></label></p>`)

		sw.printf(`<p><label>Values <select name="coercion">`)
		for _, c := range []csvparse.Coercion{csvparse.CoercionRaw, csvparse.CoercionTyped} {
			sw.printf(`<option value="%s"%s>%s</option>`, c, selected(c == defaultCoercion), c)
		}
		sw.printf(`</select></label></p>`)

		sw.printf(`<p><label>Encoding <select name="encoding">`)
		for _, e := range encodings {
			sw.printf(`<option value="%s">%s</option>`, templ.EscapeString(e), templ.EscapeString(e))
		}
		sw.printf(`</select></label></p>`)

		if persistEnabled {
			sw.printf(`<p><label><input type="checkbox" name="persist" value="true"> Save this run</label></p>`)
		}
		sw.printf(`<p><button type="submit">Parse</button></p></form>`)
		return sw.err
	})
}

// RunSummary shows the facts about one parse above its records.
func RunSummary(runID, name string, recordCount int, coercion csvparse.Coercion, persisted bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		sw := &stickyWriter{w: w}
		label := name
		if label == "" {
			label = "input"
		}
		sw.printf(`<p class="meta">%s: %d records, %s values`,
			templ.EscapeString(label), recordCount, coercion)
		if persisted {
			sw.printf(`, saved as <code>%s</code>`, templ.EscapeString(runID))
		}
		sw.printf(`</p>`)
		return sw.err
	})
}

// RecordsTable renders records as a table with one column per header.
// Numeric values are right-aligned.
func RecordsTable(headers []string, records []csvparse.Record) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		sw := &stickyWriter{w: w}
		if len(records) == 0 {
			sw.printf(`<p class="meta">No records.</p>`)
			return sw.err
		}

		sw.printf(`<table><thead><tr><th>#</th>`)
		for _, h := range headers {
			sw.printf(`<th>%s</th>`, templ.EscapeString(h))
		}
		sw.printf(`</tr></thead><tbody>`)

		for i, rec := range records {
			sw.printf(`<tr><td class="num">%s</td>`, strconv.Itoa(i+1))
			for _, h := range headers {
				v, _ := rec.Get(h)
				if v.IsNumber() {
					sw.printf(`<td class="num">%s</td>`, templ.EscapeString(v.String()))
				} else {
					sw.printf(`<td>%s</td>`, templ.EscapeString(v.String()))
				}
			}
			sw.printf(`</tr>`)
		}
		sw.printf(`</tbody></table>`)
		return sw.err
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		sw := &stickyWriter{w: w}
		sw.printf(`<div class="alert" role="alert"><strong>%s</strong>`, templ.EscapeString(message))
		if action != "" {
			sw.printf(` %s`, templ.EscapeString(action))
		}
		if code != "" {
			sw.printf(` <code>%s</code>`, templ.EscapeString(code))
		}
		sw.printf(`</div>`)
		return sw.err
	})
}

// Join renders components one after another.
func Join(components ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, c := range components {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}

func selected(b bool) string {
	if b {
		return " selected"
	}
	return ""
}

// stickyWriter keeps the first write error so components can emit markup
// without checking every call.
type stickyWriter struct {
	w   io.Writer
	err error
}

func (s *stickyWriter) printf(format string, args ...any) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, format, args...)
}
