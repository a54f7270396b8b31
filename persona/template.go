package persona

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Vars are the values available to instruction templates.
type Vars struct {
	PersonaID    string
	DisplayName  string
	LogPath      string
	Marker       string
	Participants []string
	Actions      []string
	Extra        map[string]string
}

var funcs = template.FuncMap{
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
	"join":  strings.Join,
}

func parseTemplate(p Persona) (*template.Template, error) {
	return template.New(p.ID).Funcs(funcs).Option("missingkey=error").Parse(p.Instructions)
}

// Render executes the persona's instruction template. PersonaID and
// DisplayName are filled from the persona when empty.
func Render(p Persona, vars Vars) (string, error) {
	if vars.PersonaID == "" {
		vars.PersonaID = p.ID
	}
	if vars.DisplayName == "" {
		vars.DisplayName = p.DisplayName
	}

	tmpl, err := parseTemplate(p)
	if err != nil {
		return "", fmt.Errorf("parse instructions for %s: %w", p.ID, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("render instructions for %s: %w", p.ID, err)
	}
	return strings.TrimSpace(buf.String()), nil
}
