package persona_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tailored-agentic-units/groupchat/persona"
)

func analyst() persona.Persona {
	return persona.Persona{
		ID:           "ANALYST",
		Description:  "Reads things",
		Instructions: "You are {{.PersonaID}}. Read {{.LogPath}} and say {{.Marker}} when done.",
		Role:         persona.RoleDiagnostic,
		Observe:      []string{"read_log"},
	}
}

func operator() persona.Persona {
	return persona.Persona{
		ID:           "OPERATOR",
		DisplayName:  "Operator",
		Instructions: "You are {{.DisplayName}}.",
		Role:         persona.RoleExecution,
		ContextFrom:  "ANALYST",
	}
}

func Test_NewCatalog_Keeps_Definition_Order(t *testing.T) {
	req := require.New(t)

	c, err := persona.NewCatalog(operator(), analyst())
	req.NoError(err)
	req.Equal([]string{"OPERATOR", "ANALYST"}, c.IDs())
	req.Equal(2, c.Len())

	list := c.List()
	req.Len(list, 2)
	req.Equal("OPERATOR", list[0].ID)
}

func Test_NewCatalog_Rejects_Invalid_Rosters(t *testing.T) {
	tests := []struct {
		name     string
		personas []persona.Persona
		wantErr  error
	}{
		{name: "empty", personas: nil, wantErr: persona.ErrEmptyCatalog},
		{name: "duplicate id", personas: []persona.Persona{analyst(), analyst()}, wantErr: persona.ErrPersonaExists},
		{name: "blank id", personas: []persona.Persona{{ID: "  "}}, wantErr: persona.ErrEmptyPersonaID},
		{name: "unknown role", personas: []persona.Persona{{ID: "X", Role: "wizard"}}, wantErr: persona.ErrInvalidPersona},
		{name: "broken template", personas: []persona.Persona{{ID: "X", Instructions: "{{.Oops"}}, wantErr: persona.ErrInvalidPersona},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := persona.NewCatalog(tt.personas...)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func Test_Catalog_Get(t *testing.T) {
	req := require.New(t)
	c := persona.MustCatalog(analyst(), operator())

	p, err := c.Get("ANALYST")
	req.NoError(err)
	req.Equal("ANALYST", p.DisplayName, "display name defaults to id")
	req.Equal(persona.RoleDiagnostic, p.Role)

	_, err = c.Get("NOBODY")
	req.ErrorIs(err, persona.ErrPersonaNotFound)
}

func Test_Catalog_Get_Returns_Copies(t *testing.T) {
	req := require.New(t)
	c := persona.MustCatalog(analyst())

	p, err := c.Get("ANALYST")
	req.NoError(err)
	p.Observe[0] = "tampered"

	again, err := c.Get("ANALYST")
	req.NoError(err)
	req.Equal([]string{"read_log"}, again.Observe)
}

func Test_Catalog_Resolve(t *testing.T) {
	req := require.New(t)
	c := persona.MustCatalog(analyst(), operator())

	req.NoError(c.Resolve([]string{"ANALYST", "OPERATOR", "ANALYST"}))

	err := c.Resolve([]string{"ANALYST", "GHOST", "GHOST"})
	req.ErrorIs(err, persona.ErrPersonaNotFound)
	req.Contains(err.Error(), "GHOST")
}

func Test_Render(t *testing.T) {
	req := require.New(t)

	out, err := persona.Render(analyst(), persona.Vars{LogPath: "app.log", Marker: "no action needed"})
	req.NoError(err)
	req.Equal("You are ANALYST. Read app.log and say no action needed when done.", out)

	out, err = persona.Render(operator().Normalized(), persona.Vars{})
	req.NoError(err)
	req.Equal("You are Operator.", out)
}

func Test_Render_Missing_Extra_Key_Fails(t *testing.T) {
	p := persona.Persona{ID: "X", Instructions: "{{.Extra.ticket}}"}

	_, err := persona.Render(p, persona.Vars{Extra: map[string]string{}})
	require.Error(t, err)

	out, err := persona.Render(p, persona.Vars{Extra: map[string]string{"ticket": "INC-1"}})
	require.NoError(t, err)
	require.Equal(t, "INC-1", out)
}

const catalogYAML = `
personas:
  - id: ANALYST
    display_name: Analyst
    description: Reads logs
    role: diagnostic
    observe: [read_log]
    tools: [read_log]
    instructions: |
      You are {{.PersonaID}}.
  - id: OPERATOR
    role: execution
    context_from: ANALYST
    tools: [restart_service]
    instructions: Execute what {{upper "analyst"}} says.
`

func Test_ParseCatalogYAML(t *testing.T) {
	req := require.New(t)

	c, err := persona.ParseCatalogYAML([]byte(catalogYAML))
	req.NoError(err)
	req.Equal([]string{"ANALYST", "OPERATOR"}, c.IDs())

	op, err := c.Get("OPERATOR")
	req.NoError(err)
	req.Equal("ANALYST", op.ContextFrom)
	req.Equal([]string{"restart_service"}, op.Tools)

	out, err := persona.Render(op, persona.Vars{})
	req.NoError(err)
	req.Equal("Execute what ANALYST says.", out)
}

func Test_ParseCatalogYAML_Errors(t *testing.T) {
	_, err := persona.ParseCatalogYAML([]byte("   "))
	require.Error(t, err)

	_, err = persona.ParseCatalogYAML([]byte("personas: [unclosed"))
	require.Error(t, err)

	_, err = persona.ParseCatalogYAML([]byte("personas: []"))
	require.ErrorIs(t, err, persona.ErrEmptyCatalog)
}

func Test_LoadCatalogFile(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "personas.yaml")
	req.NoError(os.WriteFile(path, []byte(catalogYAML), 0644))

	c, err := persona.LoadCatalogFile(path)
	req.NoError(err)
	req.Equal(2, c.Len())

	_, err = persona.LoadCatalogFile(dir)
	req.Error(err)

	_, err = persona.LoadCatalogFile(filepath.Join(dir, "missing.yaml"))
	req.Error(err)
}
