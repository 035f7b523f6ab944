package profile

import (
	"fmt"
	"sort"
	"strings"
)

type entry struct {
	identifier string
	index      int
}

// Registry resolves channels to profiles. It is immutable; Register returns a
// new registry.
type Registry struct {
	fallback Profile
	profiles []Profile
	entries  []entry
}

// NewRegistry validates every profile and indexes their identifiers.
func NewRegistry(fallback Profile, profiles ...Profile) (*Registry, error) {
	if err := fallback.Validate(); err != nil {
		return nil, fmt.Errorf("fallback profile: %w", err)
	}

	r := &Registry{fallback: fallback, profiles: make([]Profile, 0, len(profiles))}
	seen := make(map[string]string)
	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		for _, id := range p.Identifiers {
			norm := NormalizeIdentifier(id)
			if norm == "" {
				return nil, fmt.Errorf("profile %q: blank identifier", p.Name)
			}
			if owner, dup := seen[norm]; dup {
				return nil, fmt.Errorf("identifier %q claimed by %q and %q", norm, owner, p.Name)
			}
			seen[norm] = p.Name
			r.entries = append(r.entries, entry{identifier: norm, index: len(r.profiles)})
		}
		r.profiles = append(r.profiles, p)
	}

	// Longest identifier first so "shop118" never shadows "nobelshop118".
	sort.SliceStable(r.entries, func(i, j int) bool {
		return len(r.entries[i].identifier) > len(r.entries[j].identifier)
	})
	return r, nil
}

// Get returns the profile whose identifier occurs in channel, or the fallback.
func (r *Registry) Get(channel string) Profile {
	norm := NormalizeIdentifier(channel)
	if norm == "" {
		return r.fallback
	}
	for _, e := range r.entries {
		if strings.Contains(norm, e.identifier) {
			return r.profiles[e.index]
		}
	}
	return r.fallback
}

// IsStructured reports whether channel resolves to a structured profile.
func (r *Registry) IsStructured(channel string) bool {
	return r.Get(channel).Structured()
}

// Register returns a registry with p added. A profile with the same name is
// replaced.
func (r *Registry) Register(p Profile) (*Registry, error) {
	next := make([]Profile, 0, len(r.profiles)+1)
	for _, existing := range r.profiles {
		if existing.Name != p.Name {
			next = append(next, existing)
		}
	}
	next = append(next, p)
	return NewRegistry(r.fallback, next...)
}

// Profiles lists registered profiles followed by the fallback.
func (r *Registry) Profiles() []Profile {
	out := append([]Profile(nil), r.profiles...)
	return append(out, r.fallback)
}

// Fallback returns the generic profile.
func (r *Registry) Fallback() Profile {
	return r.fallback
}
