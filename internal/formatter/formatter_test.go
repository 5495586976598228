package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_SimpleStruct(t *testing.T) {
	input := `package main

type Person struct {
Name string ` + "`json:\"name\"`" + `
Age int64 ` + "`json:\"age\"`" + `
IsActive bool ` + "`json:\"is_active\"`" + `
}
`

	formatted, err := NewFormatter().Format(input, StyleGo)
	require.NoError(t, err)

	expectedOutput := `package main

type Person struct {
	Name     string ` + "`json:\"name\"`" + `
	Age      int64  ` + "`json:\"age\"`" + `
	IsActive bool   ` + "`json:\"is_active\"`" + `
}
`

	assert.Equal(t, expectedOutput, formatted)
}

func TestFormat_DeclarationsWithoutPackage(t *testing.T) {
	input := "type Item struct {\n\tSku string `json:\"sku\"`\n\tPriceInCents int64 `json:\"priceInCents\"`\n}\n"

	formatted, err := NewFormatter().Format(input, StyleGo)
	require.NoError(t, err)

	expectedOutput := "type Item struct {\n\tSku          string `json:\"sku\"`\n\tPriceInCents int64  `json:\"priceInCents\"`\n}\n"
	assert.Equal(t, expectedOutput, formatted)
}

func TestFormat_InvalidGoKeepsNormalizedText(t *testing.T) {
	input := "type 1Bad struct {   \n}\n\n\n"

	formatted, err := NewFormatter().Format(input, StyleGo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
	assert.Equal(t, "type 1Bad struct {\n}\n", formatted)
}

func TestFormat_OtherStylesOnlyNormalize(t *testing.T) {
	input := "\n\nstruct User {   \n\n\n\n\tvar id: Int?\t\n}"

	formatted, err := NewFormatter().Format(input, "")
	require.NoError(t, err)
	assert.Equal(t, "struct User {\n\n\tvar id: Int?\n}\n", formatted)
}

func TestFormat_EmptyInput(t *testing.T) {
	for _, style := range []string{"", StyleGo} {
		formatted, err := NewFormatter().Format(" \n\t\n", style)
		require.NoError(t, err)
		assert.Equal(t, "", formatted)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	input := "class A\r\n\n\n\n  x: Int  \nend"
	once := Normalize(input)
	assert.Equal(t, once, Normalize(once))
	assert.Equal(t, "class A\n\n  x: Int\nend\n", once)
}
