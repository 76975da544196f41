package prompt

import (
	"fmt"
	"sort"
	"strings"
)

// Registry provides read-only access to prompt entries.
type Registry interface {
	Get(slug string) (*Entry, error)
	List() []*Entry
	Group(name string) []*Entry
}

// InMemoryRegistry stores entries by slug. It is never mutated after
// NewRegistry returns.
type InMemoryRegistry struct {
	entries map[string]*Entry
	groups  map[string][]*Entry
	ordered []*Entry
}

// NewRegistry builds a registry from entries. Slugs must be unique, and
// within a group that uses positions they must run 1..N without gaps.
func NewRegistry(entries []*Entry) (*InMemoryRegistry, error) {
	reg := &InMemoryRegistry{
		entries: make(map[string]*Entry),
		groups:  make(map[string][]*Entry),
	}
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		slug := strings.TrimSpace(entry.Slug)
		if slug == "" {
			return nil, fmt.Errorf("prompt missing slug")
		}
		if _, ok := reg.entries[slug]; ok {
			return nil, fmt.Errorf("duplicate prompt slug: %s", slug)
		}
		reg.entries[slug] = entry
		reg.groups[entry.Group] = append(reg.groups[entry.Group], entry)
	}

	groupNames := make([]string, 0, len(reg.groups))
	for name, members := range reg.groups {
		sortEntries(members)
		if err := checkPositions(name, members); err != nil {
			return nil, err
		}
		groupNames = append(groupNames, name)
	}
	sort.Strings(groupNames)
	for _, name := range groupNames {
		reg.ordered = append(reg.ordered, reg.groups[name]...)
	}
	return reg, nil
}

// Get returns the entry for the slug.
func (r *InMemoryRegistry) Get(slug string) (*Entry, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry not configured")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, fmt.Errorf("prompt slug is required")
	}
	entry, ok := r.entries[slug]
	if !ok {
		return nil, fmt.Errorf("prompt %q not found", slug)
	}
	return entry, nil
}

// List returns every entry, grouped by group name and ordered within a
// group by position, then slug.
func (r *InMemoryRegistry) List() []*Entry {
	if r == nil {
		return nil
	}
	return append([]*Entry(nil), r.ordered...)
}

// Group returns the entries of one group in position order.
func (r *InMemoryRegistry) Group(name string) []*Entry {
	if r == nil {
		return nil
	}
	return append([]*Entry(nil), r.groups[name]...)
}

func sortEntries(entries []*Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Position != entries[j].Position {
			return entries[i].Position < entries[j].Position
		}
		return entries[i].Slug < entries[j].Slug
	})
}

func checkPositions(group string, sorted []*Entry) error {
	positioned := 0
	for _, entry := range sorted {
		if entry.Position > 0 {
			positioned++
		}
	}
	if positioned == 0 {
		return nil
	}
	if positioned != len(sorted) {
		return fmt.Errorf("group %q mixes positioned and unpositioned prompts", group)
	}
	for i, entry := range sorted {
		if entry.Position != i+1 {
			return fmt.Errorf("group %q: prompt %s has position %d, want %d", group, entry.Slug, entry.Position, i+1)
		}
	}
	return nil
}
