package export

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

const sheetCSS = `body{background:#e8e8e4;margin:0;padding:24px 0;font-family:serif}
.page{background:#fafaf7;width:210mm;min-height:297mm;margin:0 auto 24px;padding:20mm;box-sizing:border-box;box-shadow:0 1px 4px rgba(0,0,0,.25)}
@media print{body{background:none;padding:0}.page{box-shadow:none;margin:0;page-break-after:always}}`

// Print is the print view: the whole content in one body, printed on load.
func Print(content string) templ.Component {
	return document(PrintTitle, "", templ.Join(
		templ.Raw(content),
		templ.Raw(`<script>window.onload=function(){window.print()}</script>`),
	))
}

// Preview lays the pages out as separate sheets.
func Preview(title string, pages []string) templ.Component {
	if title == "" {
		title = DefaultName
	}
	sheets := make([]templ.Component, 0, len(pages))
	for i, page := range pages {
		sheets = append(sheets, sheet(i+1, page))
	}
	return document(title, sheetCSS, templ.Join(sheets...))
}

func sheet(n int, page string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<section class="page" data-page="`+strconv.Itoa(n)+`">`); err != nil {
			return err
		}
		if err := templ.Raw(page).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</section>`)
		return err
	})
}

func document(title, css string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		head := `<!DOCTYPE html><html><head><meta charset="utf-8"><title>` + templ.EscapeString(title) + `</title>`
		if css != "" {
			head += `<style>` + css + `</style>`
		}
		if _, err := io.WriteString(w, head+`</head><body>`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}
