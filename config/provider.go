package config

import "fmt"

// Provider defines the interface for retrieving template profiles.
type Provider interface {
	GetProfile(name string) (*TemplateProfile, error)
}

// MemoryProfileRegistry implements Provider using an in-memory map.
type MemoryProfileRegistry struct {
	profiles map[string]*TemplateProfile
}

// NewMemoryProfileRegistry creates a new registry with the given profiles.
// The built-in default profile is always available under "default" unless the
// map overrides it.
func NewMemoryProfileRegistry(profiles map[string]*TemplateProfile) *MemoryProfileRegistry {
	merged := map[string]*TemplateProfile{"default": DefaultProfile()}
	for k, v := range profiles {
		merged[k] = v
	}
	return &MemoryProfileRegistry{profiles: merged}
}

// GetProfile retrieves a TemplateProfile by name.
func (r *MemoryProfileRegistry) GetProfile(name string) (*TemplateProfile, error) {
	if p, ok := r.profiles[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("template profile not found: %s", name)
}
