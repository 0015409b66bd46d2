package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/DawidMiftadinow/datatables-bundle/core"
	"github.com/DawidMiftadinow/datatables-bundle/internal/textutil"

	"github.com/a-h/templ"
)

// TableRows renders rows as <tr> elements in column order. Cell values are
// written as-is: columns escape their display values unless marked raw.
// A non-empty nextURL adds a row that fetches the next page with htmx.
func TableRows(table *core.Table, rows []core.Row, nextURL string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		columns := table.Columns()

		for _, row := range rows {
			if _, err := io.WriteString(w, "<tr>"); err != nil {
				return err
			}
			for _, column := range columns {
				if _, err := fmt.Fprintf(w, `<td data-column="%s">%s</td>`,
					templ.EscapeString(column.Name), textutil.ToText(row[column.Name])); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "</tr>"); err != nil {
				return err
			}
		}

		if nextURL != "" {
			_, err := fmt.Fprintf(w,
				`<tr class="load-more"><td colspan="%d"><a href="%s" hx-get="%s" hx-target="closest tr" hx-swap="outerHTML">Load more</a></td></tr>`,
				len(columns), templ.EscapeString(nextURL), templ.EscapeString(nextURL))
			return err
		}
		return nil
	})
}

// TableHead renders the header row with the column labels
func TableHead(table *core.Table) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<tr>"); err != nil {
			return err
		}
		for _, column := range table.Columns() {
			if _, err := fmt.Fprintf(w, "<th>%s</th>", templ.EscapeString(column.Label)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</tr>")
		return err
	})
}

// Table renders a complete table with a header and body holding rows
func Table(table *core.Table, rows templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<table id="%s"><thead>`, templ.EscapeString(table.Name)); err != nil {
			return err
		}
		if err := TableHead(table).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "</thead><tbody>"); err != nil {
			return err
		}
		if err := rows.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</tbody></table>")
		return err
	})
}
