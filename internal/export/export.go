// Package export writes generated artifacts to disk.
package export

import (
	"fmt"
	"path/filepath"

	"github.com/mcncl/jsonexport/internal/errors"
	"github.com/mcncl/jsonexport/internal/logger"
	"github.com/mcncl/jsonexport/internal/models"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Exporter writes artifacts into a directory.
type Exporter struct {
	fs  afero.Fs
	log *zap.SugaredLogger
}

// New creates an Exporter backed by fs.
func New(fs afero.Fs) *Exporter {
	return &Exporter{fs: fs, log: logger.Named("export")}
}

// Export writes each artifact to dir as <ClassName>.<ext> and returns the
// written paths. Existing files are overwritten. A failed write stops the
// export; files already written are left in place.
func (e *Exporter) Export(artifacts []models.Artifact, dir string) ([]string, error) {
	if len(artifacts) == 0 {
		return nil, errors.NewOutputError("nothing to export", errors.ErrNoArtifacts)
	}

	for _, a := range artifacts {
		if err := checkFileName(a.FileName()); err != nil {
			return nil, err
		}
	}

	if err := e.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, writeError(fmt.Sprintf("failed to create directory '%s'", dir), err)
	}

	written := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		path := filepath.Join(dir, a.FileName())
		if err := afero.WriteFile(e.fs, path, []byte(a.Text), 0o644); err != nil {
			return written, writeError(fmt.Sprintf("failed to write file '%s'", path), err)
		}
		written = append(written, path)
	}

	e.log.Debugw("Exported artifacts", "dir", dir, "files", len(written))
	return written, nil
}

// checkFileName rejects names that would leave the export directory.
func checkFileName(name string) error {
	if !filepath.IsLocal(name) || filepath.Base(name) != name {
		return writeError(fmt.Sprintf("refusing to write '%s' outside the output directory", name),
			errors.Newf("%q is not a plain file name", name))
	}
	return nil
}

// writeError keeps the OS cause in the chain and marks it as a write failure.
func writeError(msg string, cause error) error {
	return errors.NewOutputError(msg, errors.Mark(cause, errors.ErrWriteFailure))
}
