// Package pipeline turns JSON text into rendered class artifacts and keeps
// them current across renames, toggle changes and custom edits.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mcncl/jsonexport/internal/analyzer"
	"github.com/mcncl/jsonexport/internal/errors"
	"github.com/mcncl/jsonexport/internal/formatter"
	"github.com/mcncl/jsonexport/internal/generator"
	"github.com/mcncl/jsonexport/internal/logger"
	"github.com/mcncl/jsonexport/internal/models"
	"github.com/mcncl/jsonexport/internal/parser"
	"github.com/mcncl/jsonexport/internal/profile"
	"github.com/mcncl/jsonexport/internal/registry"
	"go.uber.org/zap"
)

// DefaultCacheSize is the number of parsed documents kept for reuse.
const DefaultCacheSize = 16

// Pipeline owns the registry of the last successful generation. It is not
// safe for concurrent use; callers serialize requests.
type Pipeline struct {
	log       *zap.SugaredLogger
	generator *generator.Generator
	formatter *formatter.Formatter
	cacheSize int
	noGofmt   bool
	cache     *lru.Cache[uint64, models.IntermediateRepresentation]

	registry *registry.Registry
	profile  *profile.Profile
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for debug output.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithCacheSize sets how many parsed documents are cached. Zero disables
// the cache.
func WithCacheSize(n int) Option {
	return func(p *Pipeline) { p.cacheSize = n }
}

// WithoutGofmt skips the gofmt pass for Go-style profiles. Whitespace is
// still normalized.
func WithoutGofmt() Option {
	return func(p *Pipeline) { p.noGofmt = true }
}

// New creates a Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		log:       logger.Named("pipeline"),
		generator: generator.NewGenerator(),
		formatter: formatter.NewFormatter(),
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.cacheSize > 0 {
		// only fails for a non-positive size
		p.cache, _ = lru.New[uint64, models.IntermediateRepresentation](p.cacheSize)
	}
	return p
}

// Generate runs a full generation pass. On success the new classes replace
// the previous ones; on failure the previous classes stay in place, except
// for empty input, which clears them.
func (p *Pipeline) Generate(jsonText, rootClassName string, prof *profile.Profile, opts models.GenerationOptions) ([]models.Artifact, error) {
	if prof == nil {
		return nil, errors.NewProfileError("no language selected", errors.ErrProfileNotFound)
	}

	cleaned := parser.StripControlCharacters(jsonText)
	if strings.TrimSpace(cleaned) == "" {
		p.reset()
		return nil, errors.NewInputError("input is empty", errors.ErrEmptyInput)
	}

	ir, err := p.parse(cleaned)
	if err != nil {
		return nil, err
	}

	reg := registry.New(prof)
	if _, err := analyzer.NewAnalyzer(reg, opts).Analyze(ir, rootClassName); err != nil {
		return nil, err
	}

	for _, c := range reg.All() {
		if err := p.render(c, prof, reg); err != nil {
			return nil, err
		}
	}

	p.registry = reg
	p.profile = prof
	p.log.Debugw("Generated classes", "classes", reg.Len(), "language", prof.Name(), "root", reg.Root().Name)

	return p.Artifacts(), nil
}

func (p *Pipeline) parse(cleaned string) (models.IntermediateRepresentation, error) {
	key := xxhash.Sum64String(cleaned)
	if p.cache != nil {
		if ir, ok := p.cache.Get(key); ok {
			p.log.Debugw("Reusing parsed document", "key", key)
			return ir, nil
		}
	}

	ir, err := parser.ParseString(cleaned)
	if err != nil {
		return models.IntermediateRepresentation{}, err
	}
	if p.cache != nil {
		p.cache.Add(key, ir)
	}
	return ir, nil
}

func (p *Pipeline) reset() {
	p.registry = nil
	p.profile = nil
}

// render refreshes the cached text of c.
func (p *Pipeline) render(c *models.ClassSchema, prof *profile.Profile, reg *registry.Registry) error {
	text, err := p.generator.Render(c, prof, reg)
	if err != nil {
		return err
	}
	text.Body = p.format(c.Name, text.Body, prof.Formatter)
	if text.Header != "" {
		text.Header = p.format(c.Name, text.Header, prof.Formatter)
	}
	c.SetRendered(text)
	return nil
}

func (p *Pipeline) format(className, text, style string) string {
	if p.noGofmt && style == formatter.StyleGo {
		style = ""
	}
	formatted, err := p.formatter.Format(text, style)
	if err != nil {
		p.log.Warnw("Formatting failed, keeping unformatted text", "class", className, "error", err)
	}
	return formatted
}

// ApplyRename renames a class and re-renders every class the rename made
// stale. Failures leave all classes and texts unchanged.
func (p *Pipeline) ApplyRename(oldName, newName string) (registry.RenameResult, error) {
	if p.registry == nil {
		return registry.RenameRejected, errors.NewRenameError("nothing has been generated yet", errors.ErrClassNotFound)
	}

	result, err := p.registry.Rename(oldName, newName)
	if err != nil {
		return result, err
	}

	rerendered := 0
	for _, c := range p.registry.All() {
		if !c.Stale() {
			continue
		}
		if err := p.render(c, p.profile, p.registry); err != nil {
			return result, err
		}
		rerendered++
	}
	p.log.Debugw("Renamed class", "from", oldName, "to", strings.TrimSpace(newName), "rerendered", rerendered)
	return result, nil
}

// SetToggles changes a class's constructor and utility toggles and
// re-renders it. Any custom text for the class is discarded.
func (p *Pipeline) SetToggles(className string, includeConstructors, includeUtilities bool) error {
	c, err := p.lookup(className)
	if err != nil {
		return err
	}
	c.IncludeConstructors = includeConstructors
	c.IncludeUtilities = includeUtilities
	c.Invalidate()
	return p.render(c, p.profile, p.registry)
}

// SetCustomText replaces the text of a class's body artifact until the
// class is next regenerated.
func (p *Pipeline) SetCustomText(className, text string) error {
	c, err := p.lookup(className)
	if err != nil {
		return err
	}
	c.SetCustomText(text)
	return nil
}

// SetCustomHeader replaces the text of a class's header artifact until the
// class is next regenerated. It fails for single-file languages.
func (p *Pipeline) SetCustomHeader(className, text string) error {
	c, err := p.lookup(className)
	if err != nil {
		return err
	}
	if p.profile.RenderMode() != profile.DualFile {
		return errors.NewProfileError(fmt.Sprintf("%s has no header files", p.profile.Name()), errors.ErrInvalidProfile)
	}
	c.SetCustomHeader(text)
	return nil
}

func (p *Pipeline) lookup(className string) (*models.ClassSchema, error) {
	if p.registry == nil {
		return nil, errors.NewInputError("nothing has been generated yet", errors.ErrClassNotFound)
	}
	c, ok := p.registry.Lookup(className)
	if !ok {
		return nil, errors.NewInputError(fmt.Sprintf("no class named %q", className), errors.ErrClassNotFound)
	}
	return c, nil
}

// Artifacts returns the current artifacts in display order. Dual-file
// languages yield each class's header before its body.
func (p *Pipeline) Artifacts() []models.Artifact {
	if p.registry == nil {
		return nil
	}

	var out []models.Artifact
	for _, c := range p.registry.All() {
		text := c.Rendered()
		if p.profile.RenderMode() == profile.DualFile {
			out = append(out, models.Artifact{
				ClassName:     c.Name,
				FileExtension: p.profile.HeaderFileData.HeaderFileExtension,
				Header:        true,
				Text:          text.Header,
			})
		}
		out = append(out, models.Artifact{
			ClassName:     c.Name,
			FileExtension: p.profile.FileExtension,
			Text:          text.Body,
		})
	}
	return out
}

// Registry returns the registry of the last successful generation, or nil.
func (p *Pipeline) Registry() *registry.Registry {
	return p.registry
}
