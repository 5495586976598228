package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mcncl/jsonexport/internal/analyzer"
	"github.com/mcncl/jsonexport/internal/errors"
	"github.com/mcncl/jsonexport/internal/models"
	"github.com/mcncl/jsonexport/internal/registry"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvProfilesDir = "JSONEXPORT_PROFILES_DIR"
	EnvLanguage    = "JSONEXPORT_LANGUAGE"
)

// configNames are the file names FindConfigFile looks for, in order.
var configNames = []string{".jsonexport.yml", ".jsonexport.yaml", "jsonexport.yml", "jsonexport.yaml"}

// Config represents the complete configuration for jsonexport
type Config struct {
	Language    string           `yaml:"language"`
	RootName    string           `yaml:"root_name"`
	ProfilesDir string           `yaml:"profiles_dir"`
	Generation  GenerationConfig `yaml:"generation"`
	Naming      NamingConfig     `yaml:"naming"`
	Output      OutputConfig     `yaml:"output"`
	Dev         DevConfig        `yaml:"dev"`
}

// GenerationConfig controls what each class contains
type GenerationConfig struct {
	IncludeConstructors bool   `yaml:"include_constructors"`
	IncludeUtilities    bool   `yaml:"include_utilities"`
	ClassPrefix         string `yaml:"class_prefix"`
	ParentClassName     string `yaml:"parent_class_name"`
	FirstLineStatement  string `yaml:"first_line_statement"`
}

// NamingConfig controls class naming
type NamingConfig struct {
	SingularizeArrayClasses bool `yaml:"singularize_array_classes"`
	// ClassRenames are applied after generation, old name to new name.
	ClassRenames map[string]string `yaml:"class_renames"`
}

// OutputConfig controls where and how artifacts are written
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Format    bool   `yaml:"format"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug    bool `yaml:"debug"`
	JSONLogs bool `yaml:"json_logs"`
}

// Rename is one configured class rename.
type Rename struct {
	From string
	To   string
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		RootName: analyzer.DefaultRootName,
		Generation: GenerationConfig{
			IncludeConstructors: true,
			IncludeUtilities:    true,
		},
		Naming: NamingConfig{
			ClassRenames: make(map[string]string),
		},
		Output: OutputConfig{
			Format: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file on fs. Missing keys keep
// their defaults.
func LoadConfig(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to read config file '%s'", path), err)
	}

	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to parse config file '%s'", path), err)
	}
	if cfg.Naming.ClassRenames == nil {
		cfg.Naming.ClassRenames = make(map[string]string)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if name := strings.TrimSpace(c.RootName); name != "" && !registry.ValidClassName(name) {
		return errors.NewConfigError(fmt.Sprintf("root_name %q is not a valid class name", c.RootName), errors.ErrInvalidClassName)
	}
	for from, to := range c.Naming.ClassRenames {
		if !registry.ValidClassName(strings.TrimSpace(to)) {
			return errors.NewConfigError(fmt.Sprintf("class_renames: %q -> %q is not a valid class name", from, to), errors.ErrInvalidClassName)
		}
	}
	return nil
}

// FindConfigFile searches for a config file in startDir and its parents
func FindConfigFile(fs afero.Fs, startDir string) string {
	currentDir := filepath.Clean(startDir)

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := fs.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

// LoadEnvFiles loads .env files into the process environment. Variables that
// are already set win, and missing files are ignored.
func LoadEnvFiles(fs afero.Fs, paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		f, err := fs.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return errors.NewConfigError(fmt.Sprintf("failed to open %s", path), err)
		}
		env, err := godotenv.Parse(f)
		f.Close()
		if err != nil {
			return errors.NewConfigError(fmt.Sprintf("failed to parse %s", path), err)
		}
		for k, v := range env {
			if _, set := os.LookupEnv(k); !set {
				os.Setenv(k, v)
			}
		}
	}
	return nil
}

// ApplyEnv overrides file values with the JSONEXPORT_* environment
// variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvProfilesDir); ok && v != "" {
		c.ProfilesDir = v
	}
	if v, ok := lookup(EnvLanguage); ok && v != "" {
		c.Language = v
	}
}

// GenerationOptions returns the options for a generation run.
func (c *Config) GenerationOptions() models.GenerationOptions {
	return models.GenerationOptions{
		IncludeConstructors:     c.Generation.IncludeConstructors,
		IncludeUtilities:        c.Generation.IncludeUtilities,
		ClassPrefix:             c.Generation.ClassPrefix,
		ParentClassName:         c.Generation.ParentClassName,
		FirstLineStatement:      c.Generation.FirstLineStatement,
		SingularizeArrayClasses: c.Naming.SingularizeArrayClasses,
	}
}

// Renames returns the configured class renames sorted by source name.
func (c *Config) Renames() []Rename {
	out := make([]Rename, 0, len(c.Naming.ClassRenames))
	for from, to := range c.Naming.ClassRenames {
		out = append(out, Rename{From: from, To: to})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].From < out[j].From })
	return out
}

// ParseRename parses an "Old=New" rename argument.
func ParseRename(arg string) (Rename, error) {
	from, to, ok := strings.Cut(arg, "=")
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if !ok || from == "" || to == "" {
		return Rename{}, errors.WithHint(
			errors.NewConfigError(fmt.Sprintf("invalid rename %q", arg), errors.ErrInvalidClassName),
			"renames are written as Old=New",
		)
	}
	return Rename{From: from, To: to}, nil
}
