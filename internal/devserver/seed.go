package devserver

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"metagrip/internal/domain"
	"metagrip/internal/metadata"
)

//go:embed seed.yaml
var defaultSeed []byte

// Seed is the fixture file format
type Seed struct {
	Entities    []SeedEntity   `yaml:"entities"`
	Adapters    []Adapter      `yaml:"adapters"`
	Preferences map[string]any `yaml:"preferences"`
}

// SeedEntity describes one entity in fixture form
type SeedEntity struct {
	Kind        string            `yaml:"kind"`
	Namespace   string            `yaml:"namespace"`
	Name        string            `yaml:"name"`
	Application string            `yaml:"application"`
	Type        string            `yaml:"type"`
	Version     string            `yaml:"version"`
	Description string            `yaml:"description"`
	Created     int64             `yaml:"created"`
	SystemTags  []string          `yaml:"systemTags"`
	Tags        []string          `yaml:"tags"`
	Properties  map[string]string `yaml:"properties"`
	Status      string            `yaml:"status"`
}

// ParseSeed decodes a YAML fixture
func ParseSeed(r io.Reader) (*Seed, error) {
	var seed Seed
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}
	return &seed, nil
}

// LoadSeedFile reads a fixture from path; an empty path gives the built-in one
func LoadSeedFile(path string) (*Seed, error) {
	if path == "" {
		return DefaultSeed()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed: %w", err)
	}
	defer f.Close()
	return ParseSeed(f)
}

// DefaultSeed returns the built-in fixture
func DefaultSeed() (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(defaultSeed, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse built-in seed: %w", err)
	}
	return &seed, nil
}

// Raw converts the fixture entry into the wire form
func (e SeedEntity) Raw() metadata.RawEntity {
	ns := e.Namespace
	if ns == "" {
		ns = "default"
	}
	id := metadata.EntityID{Entity: e.Kind, Namespace: ns, Version: e.Version}
	switch e.Kind {
	case "APPLICATION":
		id.Application = e.Name
	case "ARTIFACT":
		id.Artifact = e.Name
	case "DATASET":
		id.Dataset = e.Name
	case "STREAM":
		id.Stream = e.Name
	case "PROGRAM":
		id.Program = e.Name
		id.Application = e.Application
		id.Type = e.Type
	}

	system := metadata.ScopedMetadata{
		Properties: map[string]string{},
		Tags:       e.SystemTags,
	}
	if e.Description != "" {
		system.Properties["description"] = e.Description
	}
	if e.Created != 0 {
		system.Properties["creation-time"] = strconv.FormatInt(e.Created, 10)
	}

	raw := metadata.RawEntity{
		EntityID: id,
		Metadata: map[string]metadata.ScopedMetadata{metadata.ScopeSystem: system},
	}
	if len(e.Tags) > 0 || len(e.Properties) > 0 {
		raw.Metadata[metadata.ScopeUser] = metadata.ScopedMetadata{Properties: e.Properties, Tags: e.Tags}
	}
	return raw
}

// Import loads a fixture into the store
func (s *Store) Import(ctx context.Context, seed *Seed) error {
	for _, e := range seed.Entities {
		raw := e.Raw()
		if err := s.PutEntity(ctx, raw); err != nil {
			return fmt.Errorf("seed entity %s: %w", e.Name, err)
		}
		if e.Kind == "PROGRAM" && e.Status != "" {
			ref := domain.ProgramRef{
				Namespace:   raw.EntityID.Namespace,
				AppID:       e.Application,
				ProgramType: domain.ProgramTypeToAPI(e.Type),
				ProgramID:   e.Name,
			}
			if err := s.setStatus(ctx, ref, domain.ProgramStatus(e.Status)); err != nil {
				return fmt.Errorf("seed status %s: %w", e.Name, err)
			}
		}
	}
	for _, a := range seed.Adapters {
		if a.Namespace == "" {
			a.Namespace = "default"
		}
		if err := s.PutAdapter(ctx, a); err != nil {
			return fmt.Errorf("seed adapter %s: %w", a.Name, err)
		}
	}
	if len(seed.Preferences) > 0 {
		if err := s.ReplacePreferences(ctx, seed.Preferences); err != nil {
			return fmt.Errorf("seed preferences: %w", err)
		}
	}
	return nil
}
