package generator

import (
	"bytes"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/iancoleman/strcase"
	"github.com/mcncl/jsonexport/internal/errors"
	"github.com/mcncl/jsonexport/internal/models"
	"github.com/mcncl/jsonexport/internal/profile"
)

// ClassLookup resolves a class reference to the live class.
type ClassLookup interface {
	Lookup(name string) (*models.ClassSchema, bool)
}

// Generator renders class schemas as source text for a language profile.
type Generator struct{}

// NewGenerator creates a new Generator instance
func NewGenerator() *Generator {
	return &Generator{}
}

type propertyCategory int

const (
	basicProperty propertyCategory = iota
	customProperty
	arrayOfCustomProperty
	arrayOfBasicProperty
)

type resolvedProperty struct {
	category propertyCategory
	vars     map[string]interface{}
}

// Render produces the text for c. Header is set only for dual-file
// profiles. Class references are resolved through lookup so a renamed class
// shows its current name.
func (g *Generator) Render(c *models.ClassSchema, p *profile.Profile, lookup ClassLookup) (models.RenderedText, error) {
	classVars := classVariables(c, p)

	props := make([]resolvedProperty, 0, len(c.Properties))
	var customTypes []string
	seen := make(map[string]bool)
	for _, prop := range c.Properties {
		rp, err := resolveProperty(prop, p, lookup, classVars)
		if err != nil {
			return models.RenderedText{}, errors.NewShapeError(
				fmt.Sprintf("cannot render class '%s'", c.Name), err,
			)
		}
		props = append(props, rp)
		if custom, ok := rp.vars[profile.TokenCustomType].(string); ok && custom != "" && !seen[custom] {
			seen[custom] = true
			customTypes = append(customTypes, custom)
		}
	}

	out := models.RenderedText{
		Body: g.renderBody(c, p, classVars, props, customTypes),
	}
	if p.RenderMode() == profile.DualFile {
		out.Header = g.renderHeader(c, p, classVars, props, customTypes)
	}
	return out, nil
}

func (g *Generator) renderBody(c *models.ClassSchema, p *profile.Profile, classVars map[string]interface{}, props []resolvedProperty, customTypes []string) string {
	var buf bytes.Buffer

	buf.WriteString(p.FirstLine(c.Options.FirstLineStatement))
	buf.WriteString(profile.Expand(p.StaticImports, classVars))
	writeImports(&buf, p.ImportForEachCustomType, classVars, customTypes)
	buf.WriteString(profile.Expand(definition(p.ModelDefinition, p.ModelDefinitionWithParent, classVars), classVars))

	for _, prop := range props {
		buf.WriteString(profile.Expand(p.InstanceVarDefinition, prop.vars))
	}

	if c.IncludeConstructors {
		for _, m := range p.Constructors {
			writeMethod(&buf, m, classVars, props)
		}
	}
	if c.IncludeUtilities {
		for _, m := range p.UtilityMethods {
			writeMethod(&buf, m, classVars, props)
		}
	}

	buf.WriteString(profile.Expand(p.ModelEnd, classVars))
	return buf.String()
}

func (g *Generator) renderHeader(c *models.ClassSchema, p *profile.Profile, classVars map[string]interface{}, props []resolvedProperty, customTypes []string) string {
	h := p.HeaderFileData
	var buf bytes.Buffer

	buf.WriteString(p.FirstLine(c.Options.FirstLineStatement))
	buf.WriteString(profile.Expand(h.StaticImports, classVars))
	writeImports(&buf, h.ImportForEachCustomType, classVars, customTypes)
	buf.WriteString(profile.Expand(definition(h.ModelDefinition, h.ModelDefinitionWithParent, classVars), classVars))

	for _, prop := range props {
		buf.WriteString(profile.Expand(h.InstanceVarDefinition, prop.vars))
	}

	if c.IncludeConstructors {
		for _, sig := range h.ConstructorSignatures {
			buf.WriteString(profile.Expand(sig, classVars))
		}
	}
	if c.IncludeUtilities {
		for _, sig := range h.UtilityMethodSignatures {
			buf.WriteString(profile.Expand(sig, classVars))
		}
	}

	buf.WriteString(profile.Expand(h.ModelEnd, classVars))
	return buf.String()
}

func writeImports(buf *bytes.Buffer, tmpl string, classVars map[string]interface{}, customTypes []string) {
	if tmpl == "" {
		return
	}
	for _, name := range customTypes {
		vars := withVars(classVars, map[string]interface{}{profile.TokenCustomType: name})
		buf.WriteString(profile.Expand(tmpl, vars))
	}
}

func writeMethod(buf *bytes.Buffer, m profile.MethodTemplate, classVars map[string]interface{}, props []resolvedProperty) {
	buf.WriteString(profile.Expand(m.Comment, classVars))
	buf.WriteString(profile.Expand(m.Signature, classVars))
	buf.WriteString(profile.Expand(m.BodyStart, classVars))

	for _, prop := range props {
		buf.WriteString(profile.Expand(methodLine(m, prop.category), prop.vars))
	}

	buf.WriteString(profile.Expand(m.ReturnStatement, classVars))
	buf.WriteString(profile.Expand(m.BodyEnd, classVars))
}

// methodLine picks the per-property template, falling back to
// ForEachProperty when no specialised template is given.
func methodLine(m profile.MethodTemplate, category propertyCategory) string {
	var tmpl string
	switch category {
	case customProperty:
		tmpl = m.ForEachCustomTypeProperty
	case arrayOfCustomProperty:
		tmpl = m.ForEachArrayOfCustomTypeProperty
	case arrayOfBasicProperty:
		tmpl = m.ForEachArrayOfBasicTypeProperty
	}
	if tmpl == "" {
		return m.ForEachProperty
	}
	return tmpl
}

func definition(plain, withParent string, classVars map[string]interface{}) string {
	if parent, _ := classVars[profile.TokenParentClassName].(string); parent != "" && withParent != "" {
		return withParent
	}
	return plain
}

func classVariables(c *models.ClassSchema, p *profile.Profile) map[string]interface{} {
	parent := ""
	if p.SupportsParentClass() {
		parent = c.Options.ParentClassName
	}
	return map[string]interface{}{
		profile.TokenClassName:       c.Name,
		profile.TokenParentClassName: parent,
		profile.TokenClassPrefix:     c.Options.ClassPrefix,
	}
}

func resolveProperty(prop models.PropertySchema, p *profile.Profile, lookup ClassLookup, classVars map[string]interface{}) (resolvedProperty, error) {
	rp := resolvedProperty{category: basicProperty}
	var varType, elementType, customType string

	switch prop.Kind {
	case models.JSONObject, models.JSONArrayOfObject:
		ref, ok := lookup.Lookup(prop.ClassRef)
		if !ok {
			return rp, errors.Wrapf(errors.ErrClassNotFound, "property '%s' references unknown class '%s'", prop.Name, prop.ClassRef)
		}
		customType = ref.Name
		elementType = ref.Name
		if prop.Kind == models.JSONObject {
			rp.category = customProperty
			varType = classType(p, ref.Name)
		} else {
			rp.category = arrayOfCustomProperty
			varType = arrayType(p, classType(p, ref.Name))
		}
	case models.JSONArrayOfScalar:
		rp.category = arrayOfBasicProperty
		elementType = scalarType(p, prop.ElementKind)
		varType = arrayType(p, elementType)
	case models.JSONUnknown:
		// an empty array: element type unknown
		rp.category = arrayOfBasicProperty
		elementType = p.DataTypes.GenericType
		varType = arrayType(p, elementType)
	default:
		varType = scalarType(p, prop.Kind)
	}

	rp.vars = withVars(classVars, map[string]interface{}{
		profile.TokenVarName:            prop.Name,
		profile.TokenJSONKeyName:        prop.Name,
		profile.TokenVarType:            varType,
		profile.TokenElementType:        elementType,
		profile.TokenCustomType:         customType,
		profile.TokenCapitalizedVarName: capitalizeFirst(prop.Name),
		profile.TokenCamelVarName:       orDefault(strcase.ToLowerCamel(prop.Name), "field"),
		profile.TokenPascalVarName:      orDefault(strcase.ToCamel(prop.Name), "Field"),
		profile.TokenSnakeVarName:       orDefault(strcase.ToSnake(prop.Name), "field"),
	})
	return rp, nil
}

func scalarType(p *profile.Profile, kind models.JSONKind) string {
	dt := p.DataTypes
	var t string
	switch kind {
	case models.JSONNull:
		t = dt.NullType
	case models.JSONBool:
		t = dt.BoolType
	case models.JSONInteger:
		t = dt.IntType
	case models.JSONFloat:
		t = dt.FloatType
	case models.JSONString:
		t = dt.StringType
	}
	return orDefault(t, dt.GenericType)
}

func classType(p *profile.Profile, name string) string {
	if p.DataTypes.ClassType == "" {
		return name
	}
	return profile.Expand(p.DataTypes.ClassType, map[string]interface{}{profile.TokenClassName: name})
}

func arrayType(p *profile.Profile, element string) string {
	return profile.Expand(p.DataTypes.ArrayType, map[string]interface{}{profile.TokenElementType: element})
}

func withVars(base, extra map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
