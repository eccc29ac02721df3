package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadProfile loads a template profile from a YAML file. Fields left empty in
// the file inherit the built-in defaults, so a profile only needs to state what
// differs from the shipped template.
func LoadProfile(path string) (*TemplateProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	cfg := DefaultProfile()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	return cfg, nil
}

// LoadProfileDir loads every *.yaml / *.yml profile in a directory, keyed by
// profile id (falling back to the file name without extension).
func LoadProfileDir(dir string) (map[string]*TemplateProfile, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return map[string]*TemplateProfile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile directory: %w", err)
	}

	profiles := make(map[string]*TemplateProfile)
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		ext := filepath.Ext(ent.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(dir, ent.Name())
		p, err := LoadProfile(path)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", ent.Name(), err)
		}
		key := p.Id
		if key == "" {
			key = ent.Name()[:len(ent.Name())-len(ext)]
		}
		profiles[key] = p
	}
	return profiles, nil
}
