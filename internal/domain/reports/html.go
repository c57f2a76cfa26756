package reports

import (
	"bytes"
	"fmt"
	"html/template"
)

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Meta.ReportTitle}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 11px; color: #222; margin: 24px; }
header { border-bottom: 2px solid #2c3e50; margin-bottom: 16px; padding-bottom: 8px; }
h1 { font-size: 20px; margin: 0; }
h2 { font-size: 14px; margin: 18px 0 4px; color: #2c3e50; }
.meta { color: #555; }
.note { color: #666; font-style: italic; margin: 0 0 4px; }
table { border-collapse: collapse; width: 100%; page-break-inside: auto; }
th, td { border: 1px solid #ccc; padding: 3px 6px; text-align: left; }
th { background: #ecf0f1; }
tr { page-break-inside: avoid; }
.warnings { color: #a94442; }
</style>
</head>
<body>
<header>
<h1>{{.Meta.Name}}</h1>
{{with .Meta.Address}}<div class="meta">{{.}}</div>{{end}}
<div class="meta">{{.Meta.ReportTitle}} &middot; generated {{.GeneratedAt.Format "2006-01-02 15:04 MST"}}{{with .Meta.PreparedBy}} &middot; prepared by {{.}}{{end}}</div>
</header>
{{if .Warnings}}<p class="warnings">Unavailable sections: {{range $i, $w := .Warnings}}{{if $i}}, {{end}}{{$w}}{{end}}</p>{{end}}
{{range .Sections}}
<section>
<h2>{{.Title}}</h2>
{{with .Note}}<p class="note">{{.}}</p>{{end}}
{{if .Empty}}<p class="note">No data.</p>{{else}}
<table>
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
{{end}}
</section>
{{end}}
</body>
</html>
`))

// RenderHTML produces the escaped HTML form of doc.
func RenderHTML(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, doc); err != nil {
		return nil, fmt.Errorf("render report html: %w", err)
	}
	return buf.Bytes(), nil
}
