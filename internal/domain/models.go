package domain

import (
	"slices"
	"strings"
	"time"
)

// CategoryID identifies an entity kind usable as a search filter
type CategoryID string

const (
	CategoryApp      CategoryID = "app"
	CategoryArtifact CategoryID = "artifact"
	CategoryDataset  CategoryID = "dataset"
	CategoryProgram  CategoryID = "program"
	CategoryStream   CategoryID = "stream"
)

// Categories lists every accepted filter id in display order
var Categories = []CategoryID{
	CategoryApp,
	CategoryArtifact,
	CategoryDataset,
	CategoryProgram,
	CategoryStream,
}

// DefaultFilters is the category set used when no valid filter is supplied
var DefaultFilters = []CategoryID{CategoryApp, CategoryDataset, CategoryStream}

// ParseCategory validates a raw filter id
func ParseCategory(s string) (CategoryID, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// DisplayName returns the plural label shown in the filter menu
func (c CategoryID) DisplayName() string {
	switch c {
	case CategoryApp:
		return "Applications"
	case CategoryArtifact:
		return "Artifacts"
	case CategoryDataset:
		return "Datasets"
	case CategoryProgram:
		return "Programs"
	case CategoryStream:
		return "Streams"
	default:
		return string(c)
	}
}

// SortField is the attribute results are ordered by
type SortField string

const (
	SortByName         SortField = "name"
	SortByCreationTime SortField = "creation-time"
)

// SortDirection is ascending or descending
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortSpec is a (field, direction) pair
type SortSpec struct {
	Field     SortField
	Direction SortDirection
}

// SortOptions are the only supported sort combinations, in menu order
var SortOptions = []SortSpec{
	{Field: SortByName, Direction: SortAsc},
	{Field: SortByName, Direction: SortDesc},
	{Field: SortByCreationTime, Direction: SortAsc},
	{Field: SortByCreationTime, Direction: SortDesc},
}

// DefaultSort is newest first
var DefaultSort = SortOptions[3]

// LookupSort returns the supported spec matching field and direction
func LookupSort(field, direction string) (SortSpec, bool) {
	for _, opt := range SortOptions {
		if string(opt.Field) == field && string(opt.Direction) == direction {
			return opt, true
		}
	}
	return SortSpec{}, false
}

// ServerForm returns the sort expression understood by the search API
func (s SortSpec) ServerForm() string {
	if s.Field == "" {
		return ""
	}
	field := string(s.Field)
	if s.Field == SortByName {
		field = "entity-name"
	}
	return field + " " + string(s.Direction)
}

// DisplayName returns the label shown in the sort picker
func (s SortSpec) DisplayName() string {
	switch s {
	case SortOptions[0]:
		return "A - Z"
	case SortOptions[1]:
		return "Z - A"
	case SortOptions[2]:
		return "Oldest"
	case SortOptions[3]:
		return "Newest"
	default:
		return s.ServerForm()
	}
}

// QueryState is the browse state mirrored into the location string
type QueryState struct {
	Query   string
	Filters []CategoryID // kept in Categories order, no duplicates
	Sort    SortSpec
	Page    int
}

// DefaultQueryState returns the state used before any location is parsed
func DefaultQueryState() QueryState {
	return QueryState{
		Filters: slices.Clone(DefaultFilters),
		Sort:    DefaultSort,
		Page:    1,
	}
}

// HasFilter reports whether id is active
func (q QueryState) HasFilter(id CategoryID) bool {
	return slices.Contains(q.Filters, id)
}

// NormalizeFilters deduplicates ids and orders them like Categories
func NormalizeFilters(ids []CategoryID) []CategoryID {
	out := make([]CategoryID, 0, len(ids))
	for _, c := range Categories {
		if slices.Contains(ids, c) {
			out = append(out, c)
		}
	}
	return out
}

// Entity is a metadata entity returned by search
type Entity struct {
	Key          string // render key, regenerated for every result set
	ID           string
	Type         CategoryID
	Namespace    string
	Application  string
	Version      string
	ProgramType  string
	Description  string
	CreationTime time.Time
	Tags         []string
	Properties   map[string]string
}

// IsProgram reports whether the entity supports start/stop
func (e Entity) IsProgram() bool {
	return e.Type == CategoryProgram && e.Application != "" && e.ProgramType != ""
}

// Title returns the card heading
func (e Entity) Title() string {
	if e.Version != "" && e.Type == CategoryArtifact {
		return e.ID + " " + e.Version
	}
	return e.ID
}

// SearchResult is one page of entities plus the total match count
type SearchResult struct {
	Items []Entity
	Total int
}

// ProgramRef addresses a program for status and lifecycle calls
type ProgramRef struct {
	Namespace   string
	AppID       string
	ProgramType string // API path segment, e.g. "workflows"
	ProgramID   string
}

// ProgramStatus is the lifecycle state reported by the platform
type ProgramStatus string

const (
	StatusLoading  ProgramStatus = "loading"
	StatusRunning  ProgramStatus = "RUNNING"
	StatusStarting ProgramStatus = "STARTING"
	StatusStopped  ProgramStatus = "STOPPED"
	StatusUnknown  ProgramStatus = ""
)

// IsActive reports whether the next action on the program is stop
func (s ProgramStatus) IsActive() bool {
	return s == StatusRunning || s == StatusStarting
}

// ProgramAction is start or stop
type ProgramAction string

const (
	ActionStart ProgramAction = "start"
	ActionStop  ProgramAction = "stop"
)

// ProgramTypeToAPI converts an entity program type to its API path segment
func ProgramTypeToAPI(programType string) string {
	switch strings.ToLower(programType) {
	case "flow", "flows":
		return "flows"
	case "mapreduce":
		return "mapreduce"
	case "service", "services":
		return "services"
	case "spark":
		return "spark"
	case "worker", "workers":
		return "workers"
	case "workflow", "workflows":
		return "workflows"
	default:
		return strings.ToLower(programType)
	}
}

// ETLApp is a row in the ETL listing, either published or a draft
type ETLApp struct {
	Name        string
	Template    string
	Status      string
	Description string
	IsDraft     bool
}

// InputSchema is an upstream stage's output schema as handed to a widget
type InputSchema struct {
	Name   string `json:"name"`
	Schema string `json:"schema"`
}
