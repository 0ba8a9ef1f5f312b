// Package template renders stage prompt templates.
package template

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"
)

// Context holds the values a stage template can reference.
type Context struct {
	// Subject is the requirement text or prior artifact the stage works on.
	Subject string
	// Framework is the automation framework, for stages that generate code.
	Framework string
	// Role is the persona the prompt is addressed to.
	Role string

	// Vars carries any additional named values.
	Vars map[string]string
}

var (
	parsedMu sync.Mutex
	parsed   = map[string]*template.Template{}
)

// Render resolves template expressions in tmpl.
// Uses Go's text/template syntax: {{.Subject}}, {{.Vars.name}}.
// Values are inserted verbatim; template syntax inside ctx values is not
// evaluated. Returns tmpl unchanged if it contains no template delimiters.
func Render(tmpl string, ctx *Context) (string, error) {
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	t, err := parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("template: render: %w", err)
	}

	return buf.String(), nil
}

// parse compiles tmpl once; stage templates are a small fixed set.
func parse(tmpl string) (*template.Template, error) {
	parsedMu.Lock()
	defer parsedMu.Unlock()

	if t, ok := parsed[tmpl]; ok {
		return t, nil
	}

	t, err := template.New("").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("template: parse: %w", err)
	}
	parsed[tmpl] = t
	return t, nil
}
