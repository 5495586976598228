package generator

import (
	"testing"

	"github.com/mcncl/jsonexport/internal/errors"
	"github.com/mcncl/jsonexport/internal/models"
	"github.com/mcncl/jsonexport/internal/profile"
	"github.com/mcncl/jsonexport/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toyProfile() *profile.Profile {
	return &profile.Profile{
		LangName:                   "Toy",
		DisplayLangName:            "Toy",
		FileExtension:              "toy",
		SupportsFirstLineStatement: true,
		FirstLinePrefix:            "module ",
		FirstLineSuffix:            "\n",
		SupportsClassTypeRenaming:  true,
		DataTypes: profile.DataTypes{
			NullType:    "Nil",
			BoolType:    "Bool",
			IntType:     "Int",
			FloatType:   "Float",
			StringType:  "String",
			GenericType: "Any",
			ArrayType:   "[<!ElementType!>]",
		},
		ImportForEachCustomType:   "use <!CustomType!>\n",
		ModelDefinition:           "class <!ClassName!>\n",
		ModelDefinitionWithParent: "class <!ClassName!> < <!ParentClassName!>\n",
		InstanceVarDefinition:     "  <!VarName!>: <!VarType!>\n",
		Constructors: []profile.MethodTemplate{{
			Signature:                 "  init(\n",
			ForEachProperty:           "    <!VarName!>\n",
			ForEachCustomTypeProperty: "    <!VarName!> as <!CustomType!>\n",
			BodyEnd:                   "  )\n",
		}},
		UtilityMethods: []profile.MethodTemplate{{
			Signature:                        "  dump {\n",
			ForEachProperty:                  "    <!SnakeVarName!>\n",
			ForEachArrayOfCustomTypeProperty: "    each <!ElementType!>\n",
			ForEachArrayOfBasicTypeProperty:  "    list <!ElementType!>\n",
			BodyEnd:                          "  }\n",
		}},
		ModelEnd: "end\n",
	}
}

// forest registers Root{owner, tags, items, empty, nick, userName} with
// nested Owner and Item classes.
func forest(opts models.ClassOptions) *registry.Registry {
	reg := registry.New(nil)
	reg.Reserve("Root")

	owner := models.NewClassSchema("Owner", opts)
	owner.Properties = []models.PropertySchema{{Name: "id", Kind: models.JSONInteger}}
	reg.Register(owner)

	item := models.NewClassSchema("Item", opts)
	item.Properties = []models.PropertySchema{{Name: "sku", Kind: models.JSONString}}
	reg.Register(item)

	root := models.NewClassSchema("Root", opts)
	root.Properties = []models.PropertySchema{
		{Name: "owner", Kind: models.JSONObject, ClassRef: "Owner"},
		{Name: "tags", Kind: models.JSONArrayOfScalar, ElementKind: models.JSONString},
		{Name: "items", Kind: models.JSONArrayOfObject, ClassRef: "Item"},
		{Name: "empty", Kind: models.JSONUnknown},
		{Name: "nick", Kind: models.JSONNull},
		{Name: "userName", Kind: models.JSONString},
	}
	reg.RegisterRoot(root)
	return reg
}

func TestRender_ScalarMapping(t *testing.T) {
	c := models.NewClassSchema("User", models.ClassOptions{})
	c.Properties = []models.PropertySchema{
		{Name: "id", Kind: models.JSONInteger},
		{Name: "name", Kind: models.JSONString},
	}
	c.IncludeConstructors = false
	c.IncludeUtilities = false

	out, err := NewGenerator().Render(c, toyProfile(), registry.New(nil))
	require.NoError(t, err)

	assert.Equal(t, "class User\n  id: Int\n  name: String\nend\n", out.Body)
	assert.Empty(t, out.Header)
}

func TestRender_FullClass(t *testing.T) {
	reg := forest(models.ClassOptions{ParentClassName: "Base", FirstLineStatement: "app"})

	out, err := NewGenerator().Render(reg.Root(), toyProfile(), reg)
	require.NoError(t, err)

	expected := "module app\n" +
		"use Owner\n" +
		"use Item\n" +
		"class Root < Base\n" +
		"  owner: Owner\n" +
		"  tags: [String]\n" +
		"  items: [Item]\n" +
		"  empty: [Any]\n" +
		"  nick: Nil\n" +
		"  userName: String\n" +
		"  init(\n" +
		"    owner as Owner\n" +
		"    tags\n" +
		"    items\n" +
		"    empty\n" +
		"    nick\n" +
		"    userName\n" +
		"  )\n" +
		"  dump {\n" +
		"    owner\n" +
		"    list String\n" +
		"    each Item\n" +
		"    list Any\n" +
		"    nick\n" +
		"    user_name\n" +
		"  }\n" +
		"end\n"
	assert.Equal(t, expected, out.Body)
}

func TestRender_Toggles(t *testing.T) {
	reg := forest(models.ClassOptions{})
	root := reg.Root()
	gen := NewGenerator()

	root.IncludeConstructors = false
	out, err := gen.Render(root, toyProfile(), reg)
	require.NoError(t, err)
	assert.NotContains(t, out.Body, "init(")
	assert.Contains(t, out.Body, "dump {")

	root.IncludeConstructors = true
	root.IncludeUtilities = false
	out, err = gen.Render(root, toyProfile(), reg)
	require.NoError(t, err)
	assert.Contains(t, out.Body, "init(")
	assert.NotContains(t, out.Body, "dump {")
}

func TestRender_ParentAndFirstLineRequireSupport(t *testing.T) {
	reg := forest(models.ClassOptions{ParentClassName: "Base", FirstLineStatement: "app"})
	p := toyProfile()
	p.ModelDefinitionWithParent = ""
	p.SupportsFirstLineStatement = false

	out, err := NewGenerator().Render(reg.Root(), p, reg)
	require.NoError(t, err)
	assert.NotContains(t, out.Body, "Base")
	assert.NotContains(t, out.Body, "module")
}

func TestRender_UsesCurrentNameAfterRename(t *testing.T) {
	reg := forest(models.ClassOptions{})
	gen := NewGenerator()

	result, err := reg.Rename("Owner", "Account")
	require.NoError(t, err)
	require.Equal(t, registry.RenameSucceeded, result)

	out, err := gen.Render(reg.Root(), toyProfile(), reg)
	require.NoError(t, err)
	assert.Contains(t, out.Body, "  owner: Account\n")
	assert.Contains(t, out.Body, "use Account\n")
	assert.NotContains(t, out.Body, "Owner")
}

func TestRender_DanglingReference(t *testing.T) {
	c := models.NewClassSchema("Root", models.ClassOptions{})
	c.Properties = []models.PropertySchema{{Name: "ghost", Kind: models.JSONObject, ClassRef: "Ghost"}}

	_, err := NewGenerator().Render(c, toyProfile(), registry.New(nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrClassNotFound))
}

func TestRender_BuiltinGo(t *testing.T) {
	store, err := profile.LoadBuiltin()
	require.NoError(t, err)
	goProfile, err := store.Get("Go - Struct")
	require.NoError(t, err)

	reg := forest(models.ClassOptions{FirstLineStatement: "models"})
	out, err := NewGenerator().Render(reg.Root(), goProfile, reg)
	require.NoError(t, err)

	assert.Contains(t, out.Body, "package models\n\ntype Root struct {\n")
	assert.Contains(t, out.Body, "\tOwner *Owner `json:\"owner\"`\n")
	assert.Contains(t, out.Body, "\tItems []*Item `json:\"items\"`\n")
	assert.Contains(t, out.Body, "\tEmpty []interface{} `json:\"empty\"`\n")
	assert.Contains(t, out.Body, "\tUserName string `json:\"userName\"`\n")
}

func TestRender_DualFile(t *testing.T) {
	store, err := profile.LoadBuiltin()
	require.NoError(t, err)
	objc, err := store.Get("Objective-C - iOS")
	require.NoError(t, err)

	reg := forest(models.ClassOptions{ParentClassName: "BaseModel"})
	out, err := NewGenerator().Render(reg.Root(), objc, reg)
	require.NoError(t, err)

	assert.Contains(t, out.Header, "#import <Foundation/Foundation.h>\n")
	assert.Contains(t, out.Header, "#import \"Owner.h\"\n#import \"Item.h\"\n")
	assert.Contains(t, out.Header, "@interface Root : BaseModel\n")
	assert.Contains(t, out.Header, "@property (nonatomic, strong) Owner * owner;\n")
	assert.Contains(t, out.Header, "-(instancetype)initWithDictionary:(NSDictionary *)dictionary;\n")

	assert.Contains(t, out.Body, "#import \"Root.h\"\n")
	assert.Contains(t, out.Body, "@implementation Root\n")
	assert.Contains(t, out.Body, "self.owner = [[Owner alloc] initWithDictionary:dictionary[@\"owner\"]];")
	assert.NotContains(t, out.Body, "@property")
}
