package metadata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metagrip/internal/domain"
)

func TestParseProgram(t *testing.T) {
	raw := RawEntity{
		EntityID: EntityID{
			Entity:      "PROGRAM",
			Namespace:   "default",
			Application: "PurchaseHistory",
			Program:     "PurchaseFlow",
			Type:        "Flow",
		},
		Metadata: map[string]ScopedMetadata{
			ScopeSystem: {
				Properties: map[string]string{
					"description":   "system description",
					"creation-time": "1480000000000",
				},
				Tags: []string{"flow", "realtime"},
			},
			ScopeUser: {
				Properties: map[string]string{"description": "user description"},
				Tags:       []string{"realtime", "team-a"},
			},
		},
	}

	e, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryProgram, e.Type)
	assert.Equal(t, "PurchaseFlow", e.ID)
	assert.Equal(t, "PurchaseHistory", e.Application)
	assert.Equal(t, "Flow", e.ProgramType)
	assert.Equal(t, "user description", e.Description)
	assert.Equal(t, []string{"flow", "realtime", "team-a"}, e.Tags)
	assert.Equal(t, time.UnixMilli(1480000000000).UTC(), e.CreationTime)
	assert.True(t, e.IsProgram())
	assert.Empty(t, e.Key)
}

func TestParseEntityKinds(t *testing.T) {
	tests := []struct {
		name string
		id   EntityID
		want domain.CategoryID
		wid  string
	}{
		{"app", EntityID{Entity: "APPLICATION", Application: "a"}, domain.CategoryApp, "a"},
		{"artifact", EntityID{Entity: "ARTIFACT", Artifact: "art", Version: "1.0"}, domain.CategoryArtifact, "art"},
		{"dataset", EntityID{Entity: "DATASET", Dataset: "d"}, domain.CategoryDataset, "d"},
		{"stream", EntityID{Entity: "STREAM", Stream: "s"}, domain.CategoryStream, "s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Parse(RawEntity{EntityID: tt.id})
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.Type)
			assert.Equal(t, tt.wid, e.ID)
			assert.Equal(t, tt.id.Entity, EntityKind(e.Type))
		})
	}
}

func TestParseRejectsUnknownAndEmpty(t *testing.T) {
	_, err := Parse(RawEntity{EntityID: EntityID{Entity: "VIEW", Stream: "s"}})
	require.Error(t, err)

	_, err = Parse(RawEntity{EntityID: EntityID{Entity: "DATASET"}})
	require.Error(t, err)
}

func TestParseAllSkipsBadRecords(t *testing.T) {
	entities, skipped := ParseAll([]RawEntity{
		{EntityID: EntityID{Entity: "DATASET", Dataset: "ok"}},
		{EntityID: EntityID{Entity: "NOPE"}},
	})
	assert.Len(t, entities, 1)
	assert.Equal(t, 1, skipped)
}

func TestCreationTimeFormats(t *testing.T) {
	ts := time.Date(2016, 11, 24, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, ts, parseCreationTime(FormatCreationTime(ts)))
	assert.Equal(t, ts, parseCreationTime("2016-11-24T15:00:00Z"))
	assert.True(t, parseCreationTime("yesterday").IsZero())
}
