// Package export renders an experiment's findings for publication and sharing.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// Formats understood by Render.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatLaTeX    = "latex"
)

// Document is everything known about one experiment at export time. Rows are
// the field-name mappings produced by the query layer.
type Document struct {
	Experiment   map[string]any   `json:"experiment"`
	Sessions     []map[string]any `json:"sessions"`
	Signals      []map[string]any `json:"signals,omitempty"`
	Analyses     []map[string]any `json:"analyses"`
	Publications []map[string]any `json:"publications"`
}

// Render formats doc. Per-signal rows are included only when includeRaw is
// set. It returns the body and its content type.
func Render(doc Document, format string, includeRaw bool) (string, string, error) {
	if !includeRaw {
		doc.Signals = nil
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatMarkdown, "md":
		out, err := execute(markdownTmpl, doc)
		return out, "text/markdown; charset=utf-8", err
	case FormatLaTeX, "tex":
		out, err := execute(latexTmpl, doc)
		return out, "application/x-latex; charset=utf-8", err
	case FormatJSON:
		b, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return "", "", err
		}
		return string(b), "application/json; charset=utf-8", nil
	default:
		return "", "", fmt.Errorf("unsupported export format %q", format)
	}
}

func execute(t *template.Template, doc Document) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var funcs = template.FuncMap{
	"v": func(m map[string]any, key string) string {
		if m == nil || m[key] == nil {
			return "n/a"
		}
		switch x := m[key].(type) {
		case float64:
			return fmt.Sprintf("%.2f", x)
		default:
			return fmt.Sprint(x)
		}
	},
	"tex": func(s string) string {
		r := strings.NewReplacer(`\`, `\textbackslash{}`, "&", `\&`, "%", `\%`, "$", `\$`, "#", `\#`, "_", `\_`, "{", `\{`, "}", `\}`)
		return r.Replace(s)
	},
}

var markdownTmpl = template.Must(template.New("markdown").Funcs(funcs).Parse(`# {{v .Experiment "name"}}

- **Status:** {{v .Experiment "status"}}
- **Principal investigator:** {{v .Experiment "principal_investigator"}}
- **Start date:** {{v .Experiment "start_date"}}
- **End date:** {{v .Experiment "end_date"}}

## Hypothesis

{{v .Experiment "hypothesis"}}

## Protocol

{{v .Experiment "protocol"}}

## Sessions ({{len .Sessions}})
{{range .Sessions}}
- {{v . "session_date"}}: {{v . "duration_minutes"}} min with {{v . "researcher_name"}}{{end}}

## Findings ({{len .Analyses}})
{{range .Analyses}}
### {{v . "analysis_type"}} analysis by {{v . "analyst_name"}}

{{v . "findings"}}

Confidence: {{v . "confidence_score"}}
{{end}}{{if .Signals}}
## Raw signal data

| Signal | Type | Device | Quality | Status | File |
|---|---|---|---|---|---|
{{range .Signals}}| {{v . "signal_id"}} | {{v . "signal_type"}} | {{v . "device_name"}} | {{v . "quality_score"}} | {{v . "processing_status"}} | {{v . "file_path"}} |
{{end}}{{end}}{{if .Publications}}
## Publications
{{range .Publications}}
- {{v . "title"}}, {{v . "journal"}} (doi:{{v . "doi"}}){{end}}
{{end}}`))

var latexTmpl = template.Must(template.New("latex").Funcs(funcs).Parse(`\section{ {{- tex (v .Experiment "name") -}} }
\textbf{Principal investigator:} {{tex (v .Experiment "principal_investigator")}}\\
\textbf{Status:} {{tex (v .Experiment "status")}}

\subsection{Hypothesis}
{{tex (v .Experiment "hypothesis")}}

\subsection{Protocol}
{{tex (v .Experiment "protocol")}}

\subsection{Findings}
\begin{itemize}
{{range .Analyses}}\item \textbf{ {{- tex (v . "analysis_type") -}} } ({{v . "confidence_score"}}): {{tex (v . "findings")}}
{{else}}\item No analyses recorded.
{{end}}\end{itemize}
{{if .Signals}}
\subsection{Raw signal data}
\begin{tabular}{llll}
Signal & Type & Quality & Status \\
\hline
{{range .Signals}}{{tex (v . "signal_id")}} & {{tex (v . "signal_type")}} & {{v . "quality_score"}} & {{tex (v . "processing_status")}} \\
{{end}}\end{tabular}
{{end}}`))
