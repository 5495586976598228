package models

import (
	"fmt"
	"strings"
)

// JSONKind is the inferred kind of a property.
type JSONKind int

const (
	JSONNull JSONKind = iota
	JSONBool
	JSONInteger
	JSONFloat
	JSONString
	JSONObject
	JSONArrayOfScalar
	JSONArrayOfObject
	JSONUnknown
)

var jsonKindNames = map[JSONKind]string{
	JSONNull:          "null",
	JSONBool:          "bool",
	JSONInteger:       "integer",
	JSONFloat:         "float",
	JSONString:        "string",
	JSONObject:        "object",
	JSONArrayOfScalar: "arrayOfScalar",
	JSONArrayOfObject: "arrayOfObject",
	JSONUnknown:       "unknown",
}

func (k JSONKind) String() string {
	if s, ok := jsonKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("JSONKind(%d)", int(k))
}

// IsScalar reports whether the kind maps straight to a profile type.
func (k JSONKind) IsScalar() bool {
	switch k {
	case JSONNull, JSONBool, JSONInteger, JSONFloat, JSONString, JSONUnknown:
		return true
	}
	return false
}

// PropertySchema is one field of a class. ClassRef is set only for object
// and arrayOfObject kinds and names a class in the registry.
type PropertySchema struct {
	Name        string
	Kind        JSONKind
	ElementKind JSONKind // element kind for arrayOfScalar
	ClassRef    string
}

// IsClassTyped reports whether the property refers to another class.
func (p PropertySchema) IsClassTyped() bool {
	return p.Kind == JSONObject || p.Kind == JSONArrayOfObject
}

// Signature returns the (name, kind) pair used for structural comparison.
func (p PropertySchema) Signature() string {
	switch p.Kind {
	case JSONArrayOfScalar:
		return p.Name + ":" + p.Kind.String() + "(" + p.ElementKind.String() + ")"
	case JSONObject, JSONArrayOfObject:
		return p.Name + ":" + p.Kind.String() + "(" + p.ClassRef + ")"
	}
	return p.Name + ":" + p.Kind.String()
}

// ClassOptions are the per-run options threaded into every class.
type ClassOptions struct {
	ClassPrefix        string
	ParentClassName    string
	FirstLineStatement string
}

// GenerationOptions configure one generation pass.
type GenerationOptions struct {
	IncludeConstructors     bool
	IncludeUtilities        bool
	ClassPrefix             string
	ParentClassName         string
	FirstLineStatement      string
	SingularizeArrayClasses bool
}

// DefaultGenerationOptions returns options with both render toggles on.
func DefaultGenerationOptions() GenerationOptions {
	return GenerationOptions{
		IncludeConstructors: true,
		IncludeUtilities:    true,
	}
}

// ClassOptions extracts the options shared by every class of a run.
func (o GenerationOptions) ClassOptions() ClassOptions {
	return ClassOptions{
		ClassPrefix:        o.ClassPrefix,
		ParentClassName:    o.ParentClassName,
		FirstLineStatement: o.FirstLineStatement,
	}
}

// RenderedText holds a class's rendered output. Header is empty for
// single-file languages.
type RenderedText struct {
	Body   string
	Header string
}

// ClassSchema is one generated class.
type ClassSchema struct {
	Name                string
	Properties          []PropertySchema
	IncludeConstructors bool
	IncludeUtilities    bool
	Options             ClassOptions

	rendered     RenderedText
	stale        bool
	customBody   *string
	customHeader *string
}

// NewClassSchema returns a stale class with both toggles on.
func NewClassSchema(name string, opts ClassOptions) *ClassSchema {
	return &ClassSchema{
		Name:                name,
		IncludeConstructors: true,
		IncludeUtilities:    true,
		Options:             opts,
		stale:               true,
	}
}

// Signature identifies the class's shape independent of its name.
func (c *ClassSchema) Signature() string {
	parts := make([]string, len(c.Properties))
	for i, p := range c.Properties {
		parts[i] = p.Signature()
	}
	return strings.Join(parts, ",")
}

// References returns the distinct class names this class refers to, in
// property order.
func (c *ClassSchema) References() []string {
	seen := make(map[string]bool)
	var refs []string
	for _, p := range c.Properties {
		if p.ClassRef == "" || seen[p.ClassRef] {
			continue
		}
		seen[p.ClassRef] = true
		refs = append(refs, p.ClassRef)
	}
	return refs
}

// Invalidate marks the cached text stale and drops any custom override.
func (c *ClassSchema) Invalidate() {
	c.stale = true
	c.customBody = nil
	c.customHeader = nil
}

// Stale reports whether the class needs rendering.
func (c *ClassSchema) Stale() bool { return c.stale }

// SetRendered caches freshly rendered text.
func (c *ClassSchema) SetRendered(text RenderedText) {
	c.rendered = text
	c.stale = false
}

// Rendered returns the cached text with any custom overrides applied.
func (c *ClassSchema) Rendered() RenderedText {
	out := c.rendered
	if c.customBody != nil {
		out.Body = *c.customBody
	}
	if c.customHeader != nil {
		out.Header = *c.customHeader
	}
	return out
}

// SetCustomText overrides the rendered body until the next Invalidate.
func (c *ClassSchema) SetCustomText(text string) {
	c.customBody = &text
}

// SetCustomHeader overrides the rendered header until the next Invalidate.
func (c *ClassSchema) SetCustomHeader(text string) {
	c.customHeader = &text
}

// HasCustomText reports whether a custom body or header is active.
func (c *ClassSchema) HasCustomText() bool {
	return c.customBody != nil || c.customHeader != nil
}

// Artifact is one output file.
type Artifact struct {
	ClassName     string
	FileExtension string
	Header        bool
	Text          string
}

// FileName returns "<ClassName>.<ext>".
func (a Artifact) FileName() string {
	return a.ClassName + "." + strings.TrimPrefix(a.FileExtension, ".")
}
