// Package navigation keeps the entries the admin area links to.
// Entries are registered once at startup and read by the navigation endpoint.
package navigation

import (
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// SectionAdmin is the section of admin area entries.
const SectionAdmin = "admin"

var (
	// ErrDuplicatePath is returned when an entry for the same path is already registered.
	ErrDuplicatePath = errors.New("navigation path already registered")
	// ErrInvalidEntry is returned for entries without title or absolute path.
	ErrInvalidEntry = errors.New("navigation entry needs a title and an absolute path")
)

// Entry is a single navigation link.
type Entry struct {
	Section string `json:"section"`
	Title   string `json:"title"`
	Path    string `json:"path"`
	Icon    string `json:"icon,omitempty"`
	Order   int    `json:"order"`
}

// Registry holds the registered entries. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds e. A path can only be registered once.
func (r *Registry) Register(e Entry) error {
	if strings.TrimSpace(e.Title) == "" || !strings.HasPrefix(e.Path, "/") {
		return errors.Wrapf(ErrInvalidEntry, "title %q, path %q", e.Title, e.Path)
	}

	if e.Section == "" {
		e.Section = SectionAdmin
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[e.Path]; ok {
		return errors.Wrap(ErrDuplicatePath, e.Path)
	}

	r.entries[e.Path] = e

	return nil
}

// Entries returns the entries of section, all entries when section is empty,
// ordered by Order and then by Title.
func (r *Registry) Entries(section string) []Entry {
	r.mu.RLock()

	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if section == "" || e.Section == section {
			out = append(out, e)
		}
	}

	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}

		return out[i].Title < out[j].Title
	})

	return out
}

// IsActive reports whether path belongs to the registered entry at entryPath.
func (r *Registry) IsActive(entryPath, path string) bool {
	r.mu.RLock()
	_, ok := r.entries[entryPath]
	r.mu.RUnlock()

	if !ok {
		return false
	}

	return path == entryPath || strings.HasPrefix(path, strings.TrimSuffix(entryPath, "/")+"/")
}
