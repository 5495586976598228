package generator

import (
	"testing"

	"github.com/mcncl/jsonexport/internal/analyzer"
	"github.com/mcncl/jsonexport/internal/models"
	"github.com/mcncl/jsonexport/internal/parser"
	"github.com/mcncl/jsonexport/internal/profile"
	"github.com/mcncl/jsonexport/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_ParserAnalyzerGenerator(t *testing.T) {
	// Parser -> Analyzer -> Generator for every built-in language
	jsonInput := `{
		"user_id": 123,
		"username": "johndoe",
		"is_active": true,
		"scores": [1.5, 2],
		"profile": {
			"full_name": "John Doe",
			"email": "john.doe@example.com"
		},
		"roles": [{"name": "admin"}, {"name": "dev", "level": 2}]
	}`

	ir, err := parser.ParseString(jsonInput)
	require.NoError(t, err)

	store, err := profile.LoadBuiltin()
	require.NoError(t, err)

	for _, name := range store.Names() {
		t.Run(name, func(t *testing.T) {
			p, err := store.Get(name)
			require.NoError(t, err)

			reg := registry.New(p)
			_, err = analyzer.NewAnalyzer(reg, models.DefaultGenerationOptions()).Analyze(ir, "User")
			require.NoError(t, err)
			require.Equal(t, 3, reg.Len())

			gen := NewGenerator()
			for _, c := range reg.All() {
				out, err := gen.Render(c, p, reg)
				require.NoError(t, err)
				assert.Contains(t, out.Body+out.Header, c.Name)
				assert.NotContains(t, out.Body+out.Header, "<!", "unexpanded token in %s", c.Name)
				assert.Equal(t, p.RenderMode() == profile.DualFile, out.Header != "")
			}
		})
	}
}

func TestIntegration_SwiftScalarTypes(t *testing.T) {
	ir, err := parser.ParseString(`{"id": 1, "name": "x"}`)
	require.NoError(t, err)

	store, err := profile.LoadBuiltin()
	require.NoError(t, err)
	swift, err := store.Get("Swift - Struct")
	require.NoError(t, err)

	reg := registry.New(swift)
	root, err := analyzer.NewAnalyzer(reg, models.DefaultGenerationOptions()).Analyze(ir, "User")
	require.NoError(t, err)

	out, err := NewGenerator().Render(root, swift, reg)
	require.NoError(t, err)

	assert.Contains(t, out.Body, "struct User {\n\n\tvar id: Int?\n\tvar name: String?\n")
	assert.Contains(t, out.Body, "\t\tid = dictionary[\"id\"] as? Int\n")
	assert.Contains(t, out.Body, "\tfunc toDictionary() -> [String: Any] {\n")
}
