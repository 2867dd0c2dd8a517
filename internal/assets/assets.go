// Package assets provides the prompt templates used by the styling workflow.
//
// Prompts are stored as text files under prompts/ and embedded at compile
// time. Static prompts are exposed as strings; prompts with request data are
// pre-parsed text/template values rendered through the Render* functions.
package assets

import (
	"bytes"
	"text/template"
)

// templateFuncs are available to every prompt template.
var templateFuncs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
}

// mustParse parses an embedded template. template.Must panics on malformed
// templates, catching errors at program startup rather than at call time.
func mustParse(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(templateFuncs).Parse(text))
}

// render executes a pre-parsed template. Execution errors are not expected
// with these templates; whatever was rendered is returned.
func render(tmpl *template.Template, data any) string {
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}
