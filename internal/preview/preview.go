// Package preview draws the generated class forest for the terminal.
package preview

import (
	"fmt"

	"github.com/mcncl/jsonexport/internal/models"
	"github.com/xlab/treeprint"
)

// ClassSource is the part of the registry the preview reads.
type ClassSource interface {
	Root() *models.ClassSchema
	Lookup(name string) (*models.ClassSchema, bool)
}

// Tree renders the classes reachable from the root. A class shared by
// several properties is expanded at its first occurrence only.
func Tree(src ClassSource) string {
	root := src.Root()
	if root == nil {
		return ""
	}

	tree := treeprint.NewWithRoot(root.Name)
	expanded := map[string]bool{root.Name: true}
	walk(src, root, tree, expanded)
	return tree.String()
}

func walk(src ClassSource, c *models.ClassSchema, tree treeprint.Tree, expanded map[string]bool) {
	for _, p := range c.Properties {
		label := fmt.Sprintf("%s: %s", p.Name, typeLabel(p))
		if !p.IsClassTyped() {
			tree.AddNode(label)
			continue
		}

		ref, ok := src.Lookup(p.ClassRef)
		if !ok || expanded[ref.Name] || len(ref.Properties) == 0 {
			tree.AddNode(label)
			continue
		}
		expanded[ref.Name] = true
		walk(src, ref, tree.AddBranch(label), expanded)
	}
}

func typeLabel(p models.PropertySchema) string {
	switch p.Kind {
	case models.JSONObject:
		return p.ClassRef
	case models.JSONArrayOfObject:
		return "[" + p.ClassRef + "]"
	case models.JSONArrayOfScalar:
		return "[" + p.ElementKind.String() + "]"
	case models.JSONUnknown:
		return "[]"
	}
	return p.Kind.String()
}
