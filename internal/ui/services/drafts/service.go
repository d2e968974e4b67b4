// Package drafts lists published ETL applications together with the
// unpublished drafts kept in the user configuration bag.
package drafts

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"metagrip/internal/client"
	"metagrip/internal/domain"
)

const (
	// BatchTemplate is the adapter template of batch pipelines
	BatchTemplate = "etl.batch"
	// DraftsKey is the configuration bag entry holding drafts by name
	DraftsKey = "etldrafts"

	StatusDraft   = "Draft"
	StatusStopped = "Stopped"
)

// Source is the REST collaborator
type Source interface {
	ListAdapters(ctx context.Context, namespace, template string) ([]client.Adapter, error)
	GetPreferences(ctx context.Context) (map[string]any, error)
}

type draft struct {
	Description string `json:"description"`
	Config      struct {
		Description string `json:"description"`
		Metadata    struct {
			Type string `json:"type"`
		} `json:"metadata"`
	} `json:"config"`
}

// Service loads the ETL listing
type Service struct {
	source Source
	logger *zap.Logger
}

// NewService creates the listing service
func NewService(source Source, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, logger: logger.Named("drafts")}
}

// Load fetches published apps and drafts concurrently. A failed adapter
// listing leaves only drafts; a failed bag read is returned.
func (s *Service) Load(ctx context.Context, namespace string) ([]domain.ETLApp, error) {
	var (
		apps   []domain.ETLApp
		drafts []domain.ETLApp
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		adapters, err := s.source.ListAdapters(gctx, namespace, BatchTemplate)
		if err != nil {
			s.logger.Warn("failed to list adapters", zap.String("namespace", namespace), zap.Error(err))
			return nil
		}
		apps = fromAdapters(adapters)
		return nil
	})
	g.Go(func() error {
		props, err := s.source.GetPreferences(gctx)
		if err != nil {
			return fmt.Errorf("failed to load drafts: %w", err)
		}
		drafts = fromBag(props[DraftsKey], s.logger)
		return nil
	})
	if err := g.Wait(); err != nil {
		return apps, err
	}

	return append(apps, drafts...), nil
}

func fromAdapters(adapters []client.Adapter) []domain.ETLApp {
	apps := make([]domain.ETLApp, 0, len(adapters))
	for _, a := range adapters {
		status := a.Status
		if status == "" {
			status = StatusStopped
		}
		apps = append(apps, domain.ETLApp{
			Name:        a.Name,
			Template:    a.Template,
			Status:      status,
			Description: a.Description,
		})
	}
	return apps
}

// fromBag decodes the drafts entry, a JSON object keyed by draft name
func fromBag(entry any, logger *zap.Logger) []domain.ETLApp {
	if entry == nil {
		return nil
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		logger.Warn("unreadable drafts entry", zap.Error(err))
		return nil
	}
	var byName map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byName); err != nil {
		logger.Warn("unreadable drafts entry", zap.Error(err))
		return nil
	}

	out := make([]domain.ETLApp, 0, len(byName))
	for name, body := range byName {
		var d draft
		if err := json.Unmarshal(body, &d); err != nil {
			logger.Debug("skipping malformed draft", zap.String("draft", name), zap.Error(err))
			continue
		}
		desc := d.Description
		if desc == "" {
			desc = d.Config.Description
		}
		out = append(out, domain.ETLApp{
			Name:        name,
			Template:    d.Config.Metadata.Type,
			Status:      StatusDraft,
			Description: desc,
			IsDraft:     true,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
