// Package settings persists user choices between runs.
package settings

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/mcncl/jsonexport/internal/errors"
	"github.com/mcncl/jsonexport/internal/logger"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// relativePath is the settings file location under the XDG config home.
const relativePath = "jsonexport/settings.toml"

// Settings is the persisted document.
type Settings struct {
	SelectedLanguage string `toml:"selectedLanguage"`
}

// Store reads and writes the settings file.
type Store struct {
	fs   afero.Fs
	path string
	log  *zap.SugaredLogger
}

// DefaultPath returns the settings file under the XDG config directory,
// creating parent directories as needed.
func DefaultPath() (string, error) {
	path, err := xdg.ConfigFile(relativePath)
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve settings path")
	}
	return path, nil
}

// NewStore creates a Store for the file at path.
func NewStore(fs afero.Fs, path string) *Store {
	return &Store{fs: fs, path: path, log: logger.Named("settings")}
}

// Path returns the settings file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the settings file. A missing file yields empty settings.
func (s *Store) Load() (Settings, error) {
	var out Settings
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return out, errors.NewConfigError("failed to read settings", err)
	}
	if err := toml.Unmarshal(data, &out); err != nil {
		return out, errors.NewConfigError("failed to parse settings", err)
	}
	return out, nil
}

// Save writes settings, replacing the file.
func (s *Store) Save(settings Settings) error {
	data, err := toml.Marshal(settings)
	if err != nil {
		return errors.Wrap(err, "failed to marshal settings")
	}
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return errors.NewConfigError("failed to create settings directory", err)
	}
	if err := afero.WriteFile(s.fs, s.path, data, 0o644); err != nil {
		return errors.NewConfigError("failed to write settings", err)
	}
	s.log.Debugw("Saved settings", "path", s.path, "selectedLanguage", settings.SelectedLanguage)
	return nil
}

// SelectedLanguage returns the stored language name, or "" when none is
// stored or the file cannot be read.
func (s *Store) SelectedLanguage() string {
	settings, err := s.Load()
	if err != nil {
		s.log.Warnw("Ignoring unreadable settings", "path", s.path, "error", err)
		return ""
	}
	return settings.SelectedLanguage
}

// SetSelectedLanguage records name as the selected language.
func (s *Store) SetSelectedLanguage(name string) error {
	settings, err := s.Load()
	if err != nil {
		settings = Settings{}
	}
	settings.SelectedLanguage = name
	return s.Save(settings)
}

// ChooseLanguage picks the language to use when none was requested: the
// stored one if it is still available, otherwise the first of names.
func ChooseLanguage(stored string, names []string) string {
	for _, n := range names {
		if n == stored {
			return stored
		}
	}
	if len(names) == 0 {
		return ""
	}
	return names[0]
}
