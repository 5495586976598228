package export

import (
	"syscall"
	"testing"

	"github.com/mcncl/jsonexport/internal/errors"
	"github.com/mcncl/jsonexport/internal/models"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport(t *testing.T) {
	fs := afero.NewMemMapFs()
	arts := []models.Artifact{
		{ClassName: "User", FileExtension: "h", Header: true, Text: "@interface User\n"},
		{ClassName: "User", FileExtension: "m", Text: "@implementation User\n"},
		{ClassName: "Address", FileExtension: ".m", Text: "@implementation Address\n"},
	}

	paths, err := New(fs).Export(arts, "/out/models")
	require.NoError(t, err)
	assert.Equal(t, []string{"/out/models/User.h", "/out/models/User.m", "/out/models/Address.m"}, paths)

	data, err := afero.ReadFile(fs, "/out/models/User.h")
	require.NoError(t, err)
	assert.Equal(t, "@interface User\n", string(data))

	data, err = afero.ReadFile(fs, "/out/models/Address.m")
	require.NoError(t, err)
	assert.Equal(t, "@implementation Address\n", string(data))
}

func TestExport_Overwrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/out/User.swift", []byte("old contents that are longer"), 0o644))

	_, err := New(fs).Export([]models.Artifact{{ClassName: "User", FileExtension: "swift", Text: "new"}}, "/out")
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, "/out/User.swift")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestExport_NoArtifacts(t *testing.T) {
	_, err := New(afero.NewMemMapFs()).Export(nil, "/out")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoArtifacts))
}

func TestExport_WriteFailure(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, base.MkdirAll("/out", 0o755))
	fs := afero.NewReadOnlyFs(base)

	_, err := New(fs).Export([]models.Artifact{{ClassName: "User", FileExtension: "kt", Text: "x"}}, "/out")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrWriteFailure))
	assert.ErrorIs(t, err, syscall.EPERM)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, errors.ErrorTypeOutput, appErr.Type)
}

func TestExport_RejectsEscapingFileNames(t *testing.T) {
	tests := []struct {
		name      string
		className string
	}{
		{name: "parent directory", className: "../../escaped"},
		{name: "nested path", className: "sub/Class"},
		{name: "absolute path", className: "/etc/Class"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			arts := []models.Artifact{
				{ClassName: "Root", FileExtension: "swift", Text: "root"},
				{ClassName: tt.className, FileExtension: "swift", Text: "x"},
			}

			paths, err := New(fs).Export(arts, "/out/models")
			require.Error(t, err)
			assert.Empty(t, paths)
			assert.True(t, errors.Is(err, errors.ErrWriteFailure))

			var appErr *errors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, errors.ErrorTypeOutput, appErr.Type)

			// nothing is written, inside or outside the directory
			for _, path := range []string{"/out/models/Root.swift", "/escaped.swift", "/out/models/sub/Class.swift"} {
				exists, _ := afero.Exists(fs, path)
				assert.False(t, exists, path)
			}
		})
	}
}
