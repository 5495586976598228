package analyzer

import (
	"fmt"
	"strings"

	"github.com/mcncl/jsonexport/internal/errors"
	"github.com/mcncl/jsonexport/internal/models"
	"github.com/mcncl/jsonexport/internal/registry"
)

// DefaultRootName is the default name for the root class if not specified.
const DefaultRootName = "RootClass"

// Analyzer derives class schemas from a parsed JSON document and records
// them in a registry.
type Analyzer struct {
	registry *registry.Registry
	options  models.GenerationOptions
}

// NewAnalyzer creates an Analyzer that registers classes into reg.
func NewAnalyzer(reg *registry.Registry, opts models.GenerationOptions) *Analyzer {
	return &Analyzer{
		registry: reg,
		options:  opts,
	}
}

// Analyze infers the class forest for ir and returns the root class. Every
// nested class is registered before the root.
func (a *Analyzer) Analyze(ir models.IntermediateRepresentation, rootClassName string) (*models.ClassSchema, error) {
	root := ir.Root
	if root == nil {
		return nil, errors.NewShapeError("document has no root value", errors.ErrInvalidRootShape)
	}

	if root.Kind == models.KindArray {
		objects := objectElements(root.Array)
		if len(objects) == 0 {
			return nil, errors.NewShapeError("root array contains no objects", errors.ErrInvalidRootShape)
		}
		root = Union(objects)
	}

	if root.Kind != models.KindObject {
		return nil, errors.NewShapeError(
			fmt.Sprintf("root value must be an object or an array of objects, got %s", kindName(root.Kind)),
			errors.ErrInvalidRootShape,
		)
	}

	name := strings.TrimSpace(rootClassName)
	if name == "" {
		name = DefaultRootName
	}
	name = a.withPrefix(name)
	a.registry.Reserve(name)

	class, err := a.buildClass(root, name)
	if err != nil {
		return nil, err
	}
	return a.registry.RegisterRoot(class), nil
}

// buildClass creates an unregistered class for obj, registering any nested
// classes it discovers.
func (a *Analyzer) buildClass(obj *models.Value, name string) (*models.ClassSchema, error) {
	class := models.NewClassSchema(name, a.options.ClassOptions())
	class.IncludeConstructors = a.options.IncludeConstructors
	class.IncludeUtilities = a.options.IncludeUtilities
	class.Properties = make([]models.PropertySchema, 0, obj.Len())

	for pair := obj.Object.Oldest(); pair != nil; pair = pair.Next() {
		prop, err := a.analyzeNode(pair.Key, pair.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to analyze field '%s' in class '%s'", pair.Key, name)
		}
		class.Properties = append(class.Properties, prop)
	}
	return class, nil
}

// analyzeObject builds and registers the class for a nested object. The
// returned class may be an existing class with the same shape.
func (a *Analyzer) analyzeObject(obj *models.Value, suggestedName string) (*models.ClassSchema, error) {
	class, err := a.buildClass(obj, suggestedName)
	if err != nil {
		return nil, err
	}
	registered, _ := a.registry.Register(class)
	return registered, nil
}

// analyzeNode determines the property schema for one key/value pair.
func (a *Analyzer) analyzeNode(key string, node *models.Value) (models.PropertySchema, error) {
	prop := models.PropertySchema{Name: key}

	switch node.Kind {
	case models.KindObject:
		child, err := a.analyzeObject(node, a.childClassName(key, false))
		if err != nil {
			return prop, err
		}
		prop.Kind = models.JSONObject
		prop.ClassRef = child.Name
	case models.KindArray:
		return a.analyzeArray(key, node.Array)
	default:
		prop.Kind = scalarKind(node)
	}
	return prop, nil
}

func (a *Analyzer) analyzeArray(key string, arr []*models.Value) (models.PropertySchema, error) {
	prop := models.PropertySchema{Name: key}

	if len(arr) == 0 {
		prop.Kind = models.JSONUnknown
		return prop, nil
	}

	if objects := objectElements(arr); len(objects) > 0 {
		child, err := a.analyzeObject(Union(objects), a.childClassName(key, a.options.SingularizeArrayClasses))
		if err != nil {
			return prop, err
		}
		prop.Kind = models.JSONArrayOfObject
		prop.ClassRef = child.Name
		return prop, nil
	}

	prop.Kind = models.JSONArrayOfScalar
	prop.ElementKind = elementKind(arr)
	return prop, nil
}

// Union merges the object elements of an array into one synthetic object.
// Keys keep the position of their first appearance; a repeated key takes
// the value from the last element that has it. The inputs are not modified.
func Union(objects []*models.Value) *models.Value {
	merged := models.NewObject()
	for _, obj := range objects {
		for pair := obj.Object.Oldest(); pair != nil; pair = pair.Next() {
			merged.Set(pair.Key, pair.Value)
		}
	}
	return merged
}

func objectElements(arr []*models.Value) []*models.Value {
	var objects []*models.Value
	for _, v := range arr {
		if v != nil && v.Kind == models.KindObject {
			objects = append(objects, v)
		}
	}
	return objects
}

func scalarKind(v *models.Value) models.JSONKind {
	switch v.Kind {
	case models.KindNull:
		return models.JSONNull
	case models.KindBool:
		return models.JSONBool
	case models.KindNumber:
		if v.IsInteger() {
			return models.JSONInteger
		}
		return models.JSONFloat
	case models.KindString:
		return models.JSONString
	}
	return models.JSONUnknown
}

// elementKind unifies the kinds of a scalar-only array. Nulls are ignored
// unless every element is null; integers widen to floats; any other mix,
// or a nested array, is unknown.
func elementKind(arr []*models.Value) models.JSONKind {
	kind := models.JSONNull
	for _, v := range arr {
		if v.Kind == models.KindArray {
			return models.JSONUnknown
		}
		k := scalarKind(v)
		switch {
		case k == models.JSONNull || k == kind:
		case kind == models.JSONNull:
			kind = k
		case isNumeric(k) && isNumeric(kind):
			kind = models.JSONFloat
		default:
			return models.JSONUnknown
		}
	}
	return kind
}

func isNumeric(k models.JSONKind) bool {
	return k == models.JSONInteger || k == models.JSONFloat
}

func kindName(k models.ValueKind) string {
	switch k {
	case models.KindNull:
		return "null"
	case models.KindBool:
		return "boolean"
	case models.KindNumber:
		return "number"
	case models.KindString:
		return "string"
	case models.KindArray:
		return "array"
	}
	return "object"
}
