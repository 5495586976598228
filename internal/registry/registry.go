// Package registry holds the classes discovered in one generation pass and
// keeps class-typed properties consistent when a class is renamed.
package registry

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/mcncl/jsonexport/internal/errors"
	"github.com/mcncl/jsonexport/internal/models"
)

var classNameRegex = regexp.MustCompile(`^[A-Z][A-Za-z0-9_]*$`)

// Capabilities reports what the active language can express.
type Capabilities interface {
	SupportsClassTypeRename() bool
}

// RenameResult is the outcome of a rename request.
type RenameResult int

const (
	RenameSucceeded RenameResult = iota
	RenameDuplicated
	RenameUnsupported
	RenameRejected
)

func (r RenameResult) String() string {
	switch r {
	case RenameSucceeded:
		return "succeeded"
	case RenameDuplicated:
		return "duplicated"
	case RenameUnsupported:
		return "unsupported"
	case RenameRejected:
		return "rejected"
	}
	return fmt.Sprintf("RenameResult(%d)", int(r))
}

// Registry owns the classes of one generation pass. It is not safe for
// concurrent use.
type Registry struct {
	caps        Capabilities
	order       []*models.ClassSchema
	byName      map[string]*models.ClassSchema
	bySignature map[string]*models.ClassSchema
	reserved    map[string]bool
	root        *models.ClassSchema
}

// New creates an empty registry. A nil caps allows renames.
func New(caps Capabilities) *Registry {
	return &Registry{
		caps:        caps,
		byName:      make(map[string]*models.ClassSchema),
		bySignature: make(map[string]*models.ClassSchema),
		reserved:    make(map[string]bool),
	}
}

// Reserve claims name so nested classes cannot take it. Used for the root
// class, which is registered after its children.
func (r *Registry) Reserve(name string) {
	r.reserved[name] = true
}

func (r *Registry) taken(name string) bool {
	_, ok := r.byName[name]
	return ok || r.reserved[name]
}

// UniqueName returns base, or base followed by the first free counter.
func (r *Registry) UniqueName(base string) string {
	if !r.taken(base) {
		return base
	}
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s%d", base, i)
		if !r.taken(name) {
			return name
		}
	}
}

// Register adds c unless a class with the same shape already exists, in
// which case the existing class is returned and added is false. A new class
// gets a unique name derived from c.Name.
func (r *Registry) Register(c *models.ClassSchema) (registered *models.ClassSchema, added bool) {
	sig := c.Signature()
	if existing, ok := r.bySignature[sig]; ok {
		return existing, false
	}
	c.Name = r.UniqueName(c.Name)
	r.add(c, sig)
	return c, true
}

// RegisterRoot adds the root class under its reserved name. The root is
// never merged into an existing class.
func (r *Registry) RegisterRoot(c *models.ClassSchema) *models.ClassSchema {
	delete(r.reserved, c.Name)
	c.Name = r.UniqueName(c.Name)
	sig := c.Signature()
	r.add(c, sig)
	r.root = c
	return c
}

func (r *Registry) add(c *models.ClassSchema, sig string) {
	r.order = append(r.order, c)
	r.byName[c.Name] = c
	if _, ok := r.bySignature[sig]; !ok {
		r.bySignature[sig] = c
	}
}

// Lookup returns the live class with the given name.
func (r *Registry) Lookup(name string) (*models.ClassSchema, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// All returns the classes in display order: the reverse of registration
// order, so the root comes first and a class is listed before the nested
// classes first discovered beneath it.
func (r *Registry) All() []*models.ClassSchema {
	out := make([]*models.ClassSchema, len(r.order))
	for i, c := range r.order {
		out[len(r.order)-1-i] = c
	}
	return out
}

// Root returns the root class, or nil before RegisterRoot.
func (r *Registry) Root() *models.ClassSchema {
	return r.root
}

// Len returns the number of registered classes.
func (r *Registry) Len() int {
	return len(r.order)
}

// Dependents returns the classes with at least one property typed as name.
func (r *Registry) Dependents(name string) []*models.ClassSchema {
	var out []*models.ClassSchema
	for _, c := range r.All() {
		if slices.Contains(c.References(), name) {
			out = append(out, c)
		}
	}
	return out
}

// ValidClassName reports whether name can be used as a class name.
func ValidClassName(name string) bool {
	return classNameRegex.MatchString(name)
}

// Rename renames oldName to newName in place and repairs every reference to
// it. On any failure the registry is unchanged.
func (r *Registry) Rename(oldName, newName string) (RenameResult, error) {
	if r.caps != nil && !r.caps.SupportsClassTypeRename() {
		return RenameUnsupported, errors.NewRenameError("the active language cannot rename class types", errors.ErrRenameUnsupported)
	}

	c, ok := r.byName[oldName]
	if !ok {
		return RenameRejected, errors.NewRenameError(fmt.Sprintf("no class named %q", oldName), errors.ErrClassNotFound)
	}

	newName = strings.TrimSpace(newName)
	if !ValidClassName(newName) {
		return RenameRejected, errors.WithHint(
			errors.NewRenameError(fmt.Sprintf("%q is not a valid class name", newName), errors.ErrInvalidClassName),
			"class names start with an uppercase letter followed by letters, digits or underscores",
		)
	}

	if newName == oldName {
		return RenameSucceeded, nil
	}

	if _, exists := r.byName[newName]; exists {
		return RenameDuplicated, errors.NewRenameError(fmt.Sprintf("name %q is already in use", newName), errors.ErrRenameDuplicated)
	}

	delete(r.byName, oldName)
	c.Name = newName
	r.byName[newName] = c
	c.Invalidate()

	Repair(r, oldName, newName)
	r.reindex()

	return RenameSucceeded, nil
}

// reindex rebuilds the signature index after class references change.
func (r *Registry) reindex() {
	r.bySignature = make(map[string]*models.ClassSchema, len(r.order))
	for _, c := range r.order {
		sig := c.Signature()
		if _, ok := r.bySignature[sig]; !ok {
			r.bySignature[sig] = c
		}
	}
}
