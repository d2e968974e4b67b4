// Package metadata converts raw search records into domain entities.
package metadata

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"metagrip/internal/domain"
)

// Scope names used in the metadata map
const (
	ScopeSystem = "SYSTEM"
	ScopeUser   = "USER"
)

// EntityID is the wire form of a platform entity identifier
type EntityID struct {
	Entity      string `json:"entity"`
	Namespace   string `json:"namespace,omitempty"`
	Application string `json:"application,omitempty"`
	Artifact    string `json:"artifact,omitempty"`
	Dataset     string `json:"dataset,omitempty"`
	Stream      string `json:"stream,omitempty"`
	Program     string `json:"program,omitempty"`
	Type        string `json:"type,omitempty"`
	Version     string `json:"version,omitempty"`
}

// ScopedMetadata holds the properties and tags of one scope
type ScopedMetadata struct {
	Properties map[string]string `json:"properties,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
}

// RawEntity is one search result record as returned by the API
type RawEntity struct {
	EntityID EntityID                  `json:"entityId"`
	Metadata map[string]ScopedMetadata `json:"metadata,omitempty"`
}

// Category maps the wire entity kind to a filter category
func Category(entity string) (domain.CategoryID, error) {
	switch strings.ToUpper(entity) {
	case "APPLICATION":
		return domain.CategoryApp, nil
	case "ARTIFACT":
		return domain.CategoryArtifact, nil
	case "DATASET", "DATASET_INSTANCE":
		return domain.CategoryDataset, nil
	case "PROGRAM":
		return domain.CategoryProgram, nil
	case "STREAM":
		return domain.CategoryStream, nil
	default:
		return "", fmt.Errorf("unknown entity type %q", entity)
	}
}

// EntityKind maps a filter category to the wire entity kind
func EntityKind(c domain.CategoryID) string {
	switch c {
	case domain.CategoryApp:
		return "APPLICATION"
	case domain.CategoryArtifact:
		return "ARTIFACT"
	case domain.CategoryDataset:
		return "DATASET"
	case domain.CategoryProgram:
		return "PROGRAM"
	case domain.CategoryStream:
		return "STREAM"
	default:
		return strings.ToUpper(string(c))
	}
}

// Parse converts a raw record into an entity. The render key is left empty.
func Parse(raw RawEntity) (domain.Entity, error) {
	category, err := Category(raw.EntityID.Entity)
	if err != nil {
		return domain.Entity{}, err
	}

	id := raw.EntityID
	e := domain.Entity{
		Type:       category,
		Namespace:  id.Namespace,
		Version:    id.Version,
		Properties: map[string]string{},
	}

	switch category {
	case domain.CategoryApp:
		e.ID = id.Application
	case domain.CategoryArtifact:
		e.ID = id.Artifact
	case domain.CategoryDataset:
		e.ID = id.Dataset
	case domain.CategoryStream:
		e.ID = id.Stream
	case domain.CategoryProgram:
		e.ID = id.Program
		e.Application = id.Application
		e.ProgramType = id.Type
	}
	if e.ID == "" {
		return domain.Entity{}, fmt.Errorf("%s entity without id", raw.EntityID.Entity)
	}

	// user scope wins over system scope for duplicated keys
	for _, scope := range []string{ScopeSystem, ScopeUser} {
		md, ok := raw.Metadata[scope]
		if !ok {
			continue
		}
		for k, v := range md.Properties {
			e.Properties[k] = v
		}
		for _, tag := range md.Tags {
			if !slices.Contains(e.Tags, tag) {
				e.Tags = append(e.Tags, tag)
			}
		}
	}

	e.Description = e.Properties["description"]
	if ts, ok := e.Properties["creation-time"]; ok {
		e.CreationTime = parseCreationTime(ts)
	}

	return e, nil
}

// ParseAll converts records, skipping the ones that cannot be parsed.
// The number of skipped records is returned for logging.
func ParseAll(raws []RawEntity) ([]domain.Entity, int) {
	out := make([]domain.Entity, 0, len(raws))
	skipped := 0
	for _, raw := range raws {
		e, err := Parse(raw)
		if err != nil {
			skipped++
			continue
		}
		out = append(out, e)
	}
	return out, skipped
}

// parseCreationTime accepts epoch milliseconds or RFC 3339
func parseCreationTime(s string) time.Time {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC()
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

// FormatCreationTime renders t in the epoch-millisecond form used on the wire
func FormatCreationTime(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// MarshalIndent renders an entity's raw record for the detail pager
func MarshalIndent(raw RawEntity) (string, error) {
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
