// Package fields offers the field names of an upstream schema as choices.
package fields

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"metagrip/internal/domain"
)

// ErrUnknownField is returned when selecting a name the schema lacks
var ErrUnknownField = errors.New("unknown field")

type schema struct {
	Fields []struct {
		Name string `json:"name"`
	} `json:"fields"`
}

// Selector holds the options and the chosen value
type Selector struct {
	options []string
	value   string
}

// New builds a selector from the first input schema. Malformed schemas are
// logged and leave no options.
func New(inputSchemas []domain.InputSchema, logger *zap.Logger) *Selector {
	s := &Selector{}
	if len(inputSchemas) == 0 {
		return s
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts, err := ParseFieldNames(inputSchemas[0].Schema)
	if err != nil {
		logger.Named("fields").Warn("invalid input schema",
			zap.String("stage", inputSchemas[0].Name),
			zap.Error(err))
		return s
	}
	s.options = opts
	return s
}

// ParseFieldNames returns the field names of a JSON record schema in order
func ParseFieldNames(raw string) ([]string, error) {
	var sc schema
	if err := json.Unmarshal([]byte(raw), &sc); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	names := make([]string, 0, len(sc.Fields))
	for _, f := range sc.Fields {
		names = append(names, f.Name)
	}
	return names, nil
}

// Options returns the selectable field names
func (s *Selector) Options() []string {
	return s.options
}

// Value returns the selected field, empty when none
func (s *Selector) Value() string {
	return s.value
}

// Select sets the value to a known field
func (s *Selector) Select(name string) error {
	if !slices.Contains(s.options, name) {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	s.value = name
	return nil
}
