package devserver

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"metagrip/internal/domain"
	"metagrip/internal/metadata"
)

// SearchQuery is a parsed metadata search request
type SearchQuery struct {
	Namespace string
	Query     string
	Targets   []string // wire kinds, empty means all
	Limit     int
	Offset    int
	Sort      string
}

// sortSpec is a parsed sort parameter. An empty field is the weighted order.
type sortSpec struct {
	field string
	desc  bool
}

func parseSort(s string) (sortSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return sortSpec{}, nil
	}
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return sortSpec{}, fmt.Errorf("'sort' must be '<field> asc|desc', got %q", s)
	}
	field, order := parts[0], strings.ToLower(parts[1])
	if field != "entity-name" && field != "creation-time" {
		return sortSpec{}, fmt.Errorf("sort field %q is not supported", field)
	}
	if order != "asc" && order != "desc" {
		return sortSpec{}, fmt.Errorf("sort order %q is not supported", order)
	}
	return sortSpec{field: field, desc: order == "desc"}, nil
}

// TargetKind maps a target parameter to the stored wire kind
func TargetKind(target string) (string, error) {
	if c, ok := domain.ParseCategory(strings.ToLower(target)); ok {
		return metadata.EntityKind(c), nil
	}
	if _, err := metadata.Category(target); err == nil {
		return strings.ToUpper(target), nil
	}
	return "", fmt.Errorf("invalid target %q", target)
}

type scored struct {
	entity storedEntity
	score  int
}

// Search returns one page of matching entities and the pre-pagination total
func (s *Store) Search(ctx context.Context, q SearchQuery) ([]metadata.RawEntity, int, error) {
	spec, err := parseSort(q.Sort)
	if err != nil {
		return nil, 0, err
	}

	all, err := s.entities(ctx, q.Namespace, q.Targets)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load entities: %w", err)
	}

	var matches []scored
	for _, e := range all {
		if score := matchScore(e, q.Query); score > 0 {
			matches = append(matches, scored{entity: e, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		switch spec.field {
		case "entity-name":
			an, bn := strings.ToLower(a.entity.Name), strings.ToLower(b.entity.Name)
			if spec.desc {
				return an > bn
			}
			return an < bn
		case "creation-time":
			if spec.desc {
				return a.entity.CreationTime > b.entity.CreationTime
			}
			return a.entity.CreationTime < b.entity.CreationTime
		default:
			if a.score != b.score {
				return a.score > b.score
			}
			return strings.ToLower(a.entity.Name) < strings.ToLower(b.entity.Name)
		}
	})

	total := len(matches)
	start := min(max(q.Offset, 0), total)
	end := total
	if q.Limit > 0 {
		end = min(start+q.Limit, total)
	}

	page := make([]metadata.RawEntity, 0, end-start)
	for _, m := range matches[start:end] {
		page = append(page, m.entity.Raw)
	}
	return page, total, nil
}

// matchScore counts the searchable terms an entity matches. "*" and the
// empty query match everything; a trailing "*" makes a prefix match.
func matchScore(e storedEntity, query string) int {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || query == "*" {
		return 1
	}

	prefix := strings.HasSuffix(query, "*")
	needle := strings.TrimSuffix(query, "*")

	terms := []string{strings.ToLower(e.Name)}
	for _, t := range e.Tags {
		terms = append(terms, strings.ToLower(t))
	}
	terms = append(terms, strings.Fields(strings.ToLower(e.Description))...)

	score := 0
	for _, term := range terms {
		if prefix && strings.HasPrefix(term, needle) || !prefix && term == needle {
			score++
		}
	}
	if !prefix && score == 0 && strings.Contains(strings.ToLower(e.Name), needle) {
		score = 1
	}
	return score
}
