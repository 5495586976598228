package registry

import (
	"testing"

	"github.com/mcncl/jsonexport/internal/errors"
	"github.com/mcncl/jsonexport/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type langCaps bool

func (c langCaps) SupportsClassTypeRename() bool { return bool(c) }

func class(name string, props ...models.PropertySchema) *models.ClassSchema {
	c := models.NewClassSchema(name, models.ClassOptions{})
	c.Properties = props
	return c
}

// buildForest registers Root{owner: Owner, items: [Item]} with Owner{id}
// and Item{sku}, the way the analyzer does: children first.
func buildForest(t *testing.T, r *Registry) {
	t.Helper()
	r.Reserve("Root")
	owner, added := r.Register(class("Owner", models.PropertySchema{Name: "id", Kind: models.JSONInteger}))
	require.True(t, added)
	item, added := r.Register(class("Item", models.PropertySchema{Name: "sku", Kind: models.JSONString}))
	require.True(t, added)
	r.RegisterRoot(class("Root",
		models.PropertySchema{Name: "owner", Kind: models.JSONObject, ClassRef: owner.Name},
		models.PropertySchema{Name: "items", Kind: models.JSONArrayOfObject, ClassRef: item.Name},
		models.PropertySchema{Name: "title", Kind: models.JSONString},
	))
}

func names(classes []*models.ClassSchema) []string {
	out := make([]string, len(classes))
	for i, c := range classes {
		out[i] = c.Name
	}
	return out
}

func TestUniqueName(t *testing.T) {
	r := New(nil)
	r.Reserve("Root")

	assert.Equal(t, "User", r.UniqueName("User"))
	assert.Equal(t, "Root1", r.UniqueName("Root"))

	r.Register(class("User", models.PropertySchema{Name: "a", Kind: models.JSONBool}))
	r.Register(class("User", models.PropertySchema{Name: "b", Kind: models.JSONBool}))
	c, added := r.Register(class("User", models.PropertySchema{Name: "c", Kind: models.JSONBool}))

	assert.True(t, added)
	assert.Equal(t, "User2", c.Name)
}

func TestRegisterDeduplicatesByShape(t *testing.T) {
	r := New(nil)
	first, added := r.Register(class("Billing", models.PropertySchema{Name: "street", Kind: models.JSONString}))
	require.True(t, added)

	second, added := r.Register(class("Shipping", models.PropertySchema{Name: "street", Kind: models.JSONString}))
	assert.False(t, added)
	assert.Same(t, first, second)
	assert.Equal(t, 1, r.Len())
}

func TestAllOrdersRootFirst(t *testing.T) {
	r := New(nil)
	buildForest(t, r)

	assert.Equal(t, []string{"Root", "Item", "Owner"}, names(r.All()))
	assert.Equal(t, "Root", r.Root().Name)
	assert.Equal(t, []string{"Root"}, names(r.Dependents("Owner")))
}

func TestRenameRepairsReferences(t *testing.T) {
	r := New(langCaps(true))
	buildForest(t, r)
	for _, c := range r.All() {
		c.SetRendered(models.RenderedText{Body: c.Name})
	}

	result, err := r.Rename("Owner", "Account")
	require.NoError(t, err)
	assert.Equal(t, RenameSucceeded, result)

	_, ok := r.Lookup("Owner")
	assert.False(t, ok)
	account, ok := r.Lookup("Account")
	require.True(t, ok)
	assert.True(t, account.Stale())

	root := r.Root()
	assert.Equal(t, "Account", root.Properties[0].ClassRef)
	assert.True(t, root.Stale())

	item, _ := r.Lookup("Item")
	assert.False(t, item.Stale())
}

func TestRenameRoot(t *testing.T) {
	r := New(langCaps(true))
	buildForest(t, r)

	result, err := r.Rename("Root", "Envelope")
	require.NoError(t, err)
	assert.Equal(t, RenameSucceeded, result)
	assert.Equal(t, "Envelope", r.Root().Name)
	assert.Equal(t, []string{"Envelope", "Item", "Owner"}, names(r.All()))
}

func TestRenameFailures(t *testing.T) {
	tests := []struct {
		name     string
		caps     Capabilities
		oldName  string
		newName  string
		expected RenameResult
		sentinel error
	}{
		{name: "unsupported language", caps: langCaps(false), oldName: "Owner", newName: "Account", expected: RenameUnsupported, sentinel: errors.ErrRenameUnsupported},
		{name: "duplicate name", caps: langCaps(true), oldName: "Owner", newName: "Item", expected: RenameDuplicated, sentinel: errors.ErrRenameDuplicated},
		{name: "unknown class", caps: langCaps(true), oldName: "Nope", newName: "Account", expected: RenameRejected, sentinel: errors.ErrClassNotFound},
		{name: "empty name", caps: langCaps(true), oldName: "Owner", newName: "   ", expected: RenameRejected, sentinel: errors.ErrInvalidClassName},
		{name: "lowercase start", caps: langCaps(true), oldName: "Owner", newName: "account", expected: RenameRejected, sentinel: errors.ErrInvalidClassName},
		{name: "illegal character", caps: langCaps(true), oldName: "Owner", newName: "Acc-ount", expected: RenameRejected, sentinel: errors.ErrInvalidClassName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.caps)
			buildForest(t, r)
			before := names(r.All())

			result, err := r.Rename(tt.oldName, tt.newName)
			assert.Equal(t, tt.expected, result)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)

			assert.Equal(t, before, names(r.All()))
			assert.Equal(t, "Owner", r.Root().Properties[0].ClassRef)
		})
	}
}

func TestRenameSameNameAndTrim(t *testing.T) {
	r := New(langCaps(true))
	buildForest(t, r)
	owner, _ := r.Lookup("Owner")
	owner.SetRendered(models.RenderedText{Body: "cached"})

	result, err := r.Rename("Owner", "Owner")
	require.NoError(t, err)
	assert.Equal(t, RenameSucceeded, result)
	assert.False(t, owner.Stale())

	result, err = r.Rename("Owner", "  Account_2 ")
	require.NoError(t, err)
	assert.Equal(t, RenameSucceeded, result)
	assert.Equal(t, "Account_2", owner.Name)
}

func TestRepairClearsCustomText(t *testing.T) {
	r := New(nil)
	buildForest(t, r)
	root := r.Root()
	root.SetRendered(models.RenderedText{Body: "generated"})
	root.SetCustomText("hand edited")

	touched := Repair(r, "Item", "Product")

	assert.Equal(t, []string{"Root"}, names(touched))
	assert.False(t, root.HasCustomText())
	assert.Equal(t, "Product", root.Properties[1].ClassRef)
	assert.Empty(t, r.Dependents("Item"))
	assert.Equal(t, []string{"Root"}, names(r.Dependents("Product")))
}

func TestRenameResultString(t *testing.T) {
	assert.Equal(t, "succeeded", RenameSucceeded.String())
	assert.Equal(t, "duplicated", RenameDuplicated.String())
	assert.Equal(t, "unsupported", RenameUnsupported.String())
	assert.Equal(t, "rejected", RenameRejected.String())
}
