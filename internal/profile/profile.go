// Package profile describes target languages as data and expands their
// templates.
package profile

import (
	"fmt"
	"strings"

	"github.com/mcncl/jsonexport/internal/errors"
	"github.com/valyala/fasttemplate"
)

// Template delimiters used by every profile.
const (
	StartTag = "<!"
	EndTag   = "!>"
)

// Template tokens.
const (
	TokenClassName          = "ClassName"
	TokenParentClassName    = "ParentClassName"
	TokenClassPrefix        = "ClassPrefix"
	TokenVarName            = "VarName"
	TokenJSONKeyName        = "JsonKeyName"
	TokenVarType            = "VarType"
	TokenElementType        = "ElementType"
	TokenCustomType         = "CustomType"
	TokenCapitalizedVarName = "CapitalizedVarName"
	TokenCamelVarName       = "CamelVarName"
	TokenPascalVarName      = "PascalVarName"
	TokenSnakeVarName       = "SnakeVarName"
)

// FormatterGo runs rendered text through gofmt.
const FormatterGo = "gofmt"

// RenderMode selects how a class is written out.
type RenderMode int

const (
	// SingleFile renders one body artifact per class.
	SingleFile RenderMode = iota
	// DualFile renders a header and a body artifact per class.
	DualFile
)

// DataTypes maps inferred kinds to type tokens.
type DataTypes struct {
	NullType    string `json:"nullType"`
	BoolType    string `json:"boolType"`
	IntType     string `json:"intType"`
	FloatType   string `json:"floatType"`
	StringType  string `json:"stringType"`
	GenericType string `json:"genericType"`
	ArrayType   string `json:"arrayType"`
	ClassType   string `json:"classType,omitempty"`
}

// MethodTemplate renders a constructor or utility method.
type MethodTemplate struct {
	Comment                          string `json:"comment,omitempty"`
	Signature                        string `json:"signature"`
	BodyStart                        string `json:"bodyStart,omitempty"`
	ForEachProperty                  string `json:"forEachProperty,omitempty"`
	ForEachCustomTypeProperty        string `json:"forEachCustomTypeProperty,omitempty"`
	ForEachArrayOfCustomTypeProperty string `json:"forEachArrayOfCustomTypeProperty,omitempty"`
	ForEachArrayOfBasicTypeProperty  string `json:"forEachArrayOfBasicTypeProperty,omitempty"`
	ReturnStatement                  string `json:"returnStatement,omitempty"`
	BodyEnd                          string `json:"bodyEnd,omitempty"`
}

// HeaderFileData describes the declaration file of dual-file languages.
type HeaderFileData struct {
	HeaderFileExtension       string   `json:"headerFileExtension"`
	StaticImports             string   `json:"staticImports,omitempty"`
	ImportForEachCustomType   string   `json:"importForEachCustomType,omitempty"`
	ModelDefinition           string   `json:"modelDefinition"`
	ModelDefinitionWithParent string   `json:"modelDefinitionWithParent,omitempty"`
	InstanceVarDefinition     string   `json:"instanceVarDefinition"`
	ConstructorSignatures     []string `json:"constructorSignatures,omitempty"`
	UtilityMethodSignatures   []string `json:"utilityMethodSignatures,omitempty"`
	ModelEnd                  string   `json:"modelEnd"`
}

// Profile is an immutable description of one target language.
type Profile struct {
	LangName                   string `json:"langName"`
	DisplayLangName            string `json:"displayLangName"`
	FileExtension              string `json:"fileExtension"`
	Formatter                  string `json:"formatter,omitempty"`
	SupportsFirstLineStatement bool   `json:"supportsFirstLineStatement"`
	FirstLineHint              string `json:"firstLineHint,omitempty"`
	FirstLinePrefix            string `json:"firstLinePrefix,omitempty"`
	FirstLineSuffix            string `json:"firstLineSuffix,omitempty"`
	SupportsClassTypeRenaming  bool   `json:"supportsClassTypeRename"`

	DataTypes DataTypes `json:"dataTypes"`

	StaticImports             string `json:"staticImports,omitempty"`
	ImportForEachCustomType   string `json:"importForEachCustomType,omitempty"`
	ModelDefinition           string `json:"modelDefinition"`
	ModelDefinitionWithParent string `json:"modelDefinitionWithParent,omitempty"`
	InstanceVarDefinition     string `json:"instanceVarDefinition"`
	ModelEnd                  string `json:"modelEnd"`

	Constructors   []MethodTemplate `json:"constructors,omitempty"`
	UtilityMethods []MethodTemplate `json:"utilityMethods,omitempty"`

	HeaderFileData *HeaderFileData `json:"headerFileData,omitempty"`
}

// Name returns the name the profile is selected by.
func (p *Profile) Name() string {
	return p.DisplayLangName
}

// SupportsClassTypeRename reports whether properties can reference classes
// by name, which is what makes renaming a class meaningful.
func (p *Profile) SupportsClassTypeRename() bool {
	return p.SupportsClassTypeRenaming
}

// SupportsParentClass reports whether a parent class can be declared.
func (p *Profile) SupportsParentClass() bool {
	if p.ModelDefinitionWithParent != "" {
		return true
	}
	return p.HeaderFileData != nil && p.HeaderFileData.ModelDefinitionWithParent != ""
}

// RenderMode returns DualFile when the profile has header file data.
func (p *Profile) RenderMode() RenderMode {
	if p.HeaderFileData != nil {
		return DualFile
	}
	return SingleFile
}

// FirstLine assembles the first line for statement, or "" when the profile
// has no first line or statement is blank.
func (p *Profile) FirstLine(statement string) string {
	statement = strings.TrimSpace(statement)
	if !p.SupportsFirstLineStatement || statement == "" {
		return ""
	}
	return p.FirstLinePrefix + statement + p.FirstLineSuffix
}

// Validate checks that the profile can render a class.
func (p *Profile) Validate() error {
	var missing []string
	check := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}

	check("langName", p.LangName)
	check("displayLangName", p.DisplayLangName)
	check("fileExtension", p.FileExtension)
	check("modelDefinition", p.ModelDefinition)
	check("dataTypes.arrayType", p.DataTypes.ArrayType)
	check("dataTypes.genericType", p.DataTypes.GenericType)
	if h := p.HeaderFileData; h != nil {
		// properties are declared in the header
		check("headerFileData.headerFileExtension", h.HeaderFileExtension)
		check("headerFileData.modelDefinition", h.ModelDefinition)
		check("headerFileData.instanceVarDefinition", h.InstanceVarDefinition)
	} else {
		check("instanceVarDefinition", p.InstanceVarDefinition)
	}

	if len(missing) > 0 {
		return errors.NewProfileError(
			fmt.Sprintf("profile %q is missing %s", p.DisplayLangName, strings.Join(missing, ", ")),
			errors.ErrInvalidProfile,
		)
	}
	for _, tmpl := range p.templates() {
		if _, err := fasttemplate.NewTemplate(tmpl, StartTag, EndTag); err != nil {
			return errors.NewProfileError(
				fmt.Sprintf("profile %q has a malformed template", p.DisplayLangName),
				errors.Mark(err, errors.ErrInvalidProfile),
			)
		}
	}
	if p.Formatter != "" && p.Formatter != FormatterGo {
		return errors.NewProfileError(
			fmt.Sprintf("profile %q has unknown formatter %q", p.DisplayLangName, p.Formatter),
			errors.ErrInvalidProfile,
		)
	}
	return nil
}

// templates lists every template string of the profile.
func (p *Profile) templates() []string {
	out := []string{
		p.FirstLinePrefix, p.FirstLineSuffix,
		p.DataTypes.ArrayType, p.DataTypes.ClassType,
		p.StaticImports, p.ImportForEachCustomType,
		p.ModelDefinition, p.ModelDefinitionWithParent,
		p.InstanceVarDefinition, p.ModelEnd,
	}
	for _, methods := range [][]MethodTemplate{p.Constructors, p.UtilityMethods} {
		for _, m := range methods {
			out = append(out, m.Comment, m.Signature, m.BodyStart, m.ForEachProperty,
				m.ForEachCustomTypeProperty, m.ForEachArrayOfCustomTypeProperty,
				m.ForEachArrayOfBasicTypeProperty, m.ReturnStatement, m.BodyEnd)
		}
	}
	if h := p.HeaderFileData; h != nil {
		out = append(out, h.StaticImports, h.ImportForEachCustomType, h.ModelDefinition,
			h.ModelDefinitionWithParent, h.InstanceVarDefinition, h.ModelEnd)
		out = append(out, h.ConstructorSignatures...)
		out = append(out, h.UtilityMethodSignatures...)
	}
	return out
}

// Expand substitutes <!Token!> placeholders in tmpl. Unknown tokens are left
// in place.
func Expand(tmpl string, vars map[string]interface{}) string {
	if !strings.Contains(tmpl, StartTag) {
		return tmpl
	}
	return fasttemplate.ExecuteStringStd(tmpl, StartTag, EndTag, vars)
}
