package profile

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mcncl/jsonexport/internal/errors"
	"github.com/mcncl/jsonexport/internal/logger"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

//go:embed profiles/*.json
var builtinFS embed.FS

// Store holds loaded profiles keyed by display name.
type Store struct {
	profiles map[string]*Profile
	log      *zap.SugaredLogger
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		profiles: make(map[string]*Profile),
		log:      logger.Named("profile"),
	}
}

// LoadBuiltin returns a store holding the profiles shipped with the binary.
func LoadBuiltin() (*Store, error) {
	s := NewStore()
	entries, err := builtinFS.ReadDir("profiles")
	if err != nil {
		return nil, errors.Wrap(err, "reading built-in profiles")
	}
	for _, entry := range entries {
		name := path.Join("profiles", entry.Name())
		data, err := builtinFS.ReadFile(name)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", name)
		}
		p, err := Decode(data)
		if err != nil {
			return nil, errors.Wrapf(err, "built-in profile %s", entry.Name())
		}
		s.Add(p)
	}
	return s, nil
}

// LoadDir adds every *.json profile in dir. Files that fail to decode or
// validate are skipped with a warning. It returns the number of profiles
// added.
func (s *Store) LoadDir(fs afero.Fs, dir string) (int, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return 0, errors.NewProfileError(fmt.Sprintf("failed to read profiles directory '%s'", dir), err)
	}

	added := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		file := filepath.Join(dir, entry.Name())
		data, err := afero.ReadFile(fs, file)
		if err != nil {
			s.log.Warnw("Skipping unreadable profile", "file", file, "error", err)
			continue
		}
		p, err := Decode(data)
		if err != nil {
			s.log.Warnw("Skipping invalid profile", "file", file, "error", err)
			continue
		}
		if s.Add(p) {
			added++
		} else {
			s.log.Debugw("Ignoring duplicate profile", "file", file, "name", p.Name())
		}
	}
	return added, nil
}

// Add stores p unless a profile with the same name is already loaded.
func (s *Store) Add(p *Profile) bool {
	if _, exists := s.profiles[p.Name()]; exists {
		return false
	}
	s.profiles[p.Name()] = p
	return true
}

// Names returns the loaded profile names, sorted.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of loaded profiles.
func (s *Store) Len() int {
	return len(s.profiles)
}

// Get returns the profile with the given display name. The language name
// and case-insensitive matches are accepted when they are unambiguous.
func (s *Store) Get(name string) (*Profile, error) {
	if p, ok := s.profiles[name]; ok {
		return p, nil
	}

	var match *Profile
	for _, n := range s.Names() {
		p := s.profiles[n]
		if strings.EqualFold(p.DisplayLangName, name) || strings.EqualFold(p.LangName, name) {
			if match != nil {
				match = nil
				break
			}
			match = p
		}
	}
	if match != nil {
		return match, nil
	}

	return nil, errors.WithHint(
		errors.NewProfileError(fmt.Sprintf("unknown language %q", name), errors.ErrProfileNotFound),
		"available languages: "+strings.Join(s.Names(), ", "),
	)
}

// Decode parses and validates a profile document.
func Decode(data []byte) (*Profile, error) {
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.NewProfileError("failed to decode profile", errors.Mark(err, errors.ErrInvalidProfile))
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}
