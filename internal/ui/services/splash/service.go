package splash

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"metagrip/internal/eventbus"
)

// HideWelcomeKey is the preference recording "don't show again"
const HideWelcomeKey = "user-choice-hide-welcome-message"

// Preferences is the user configuration bag collaborator
type Preferences interface {
	GetPreferences(ctx context.Context) (map[string]any, error)
	SetPreferences(ctx context.Context, props map[string]any) error
}

// Settings are the product flags deciding whether the splash applies at all
type Settings struct {
	StandaloneSDK bool
	Enterprise    bool
}

// Service is the welcome screen state
type Service struct {
	prefs    Preferences
	settings Settings
	bus      eventbus.EventBus
	logger   *zap.Logger

	visible   bool
	dontShow  bool
	showIntro bool
	err       error
}

// NewService creates the splash service, hidden until Init decides
func NewService(prefs Preferences, settings Settings, bus eventbus.EventBus, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		prefs:    prefs,
		settings: settings,
		bus:      bus,
		logger:   logger.Named("splash"),
	}
}

// Check reads the preference bag and reports whether the splash should be
// shown. A failed read shows the splash when the product flags allow it.
// It reads no mutable state and may run on any goroutine.
func (s *Service) Check(ctx context.Context) bool {
	if !s.settings.StandaloneSDK || s.settings.Enterprise {
		return false
	}

	props, err := s.prefs.GetPreferences(ctx)
	if err != nil {
		s.logger.Warn("failed to read preferences", zap.Error(err))
		props = nil
	}
	return !truthy(props[HideWelcomeKey])
}

// Show records the result of Check
func (s *Service) Show(visible bool) {
	s.visible = visible
}

// Init checks and records visibility in one step
func (s *Service) Init(ctx context.Context) bool {
	s.Show(s.Check(ctx))
	return s.visible
}

// Visible reports whether the splash is showing
func (s *Service) Visible() bool { return s.visible }

// DontShow is the checkbox value
func (s *Service) DontShow() bool { return s.dontShow }

// ShowIntro reports whether the intro panel is expanded
func (s *Service) ShowIntro() bool { return s.showIntro }

// Err is the last preference write failure
func (s *Service) Err() error { return s.err }

// ToggleDontShow flips the checkbox
func (s *Service) ToggleDontShow() {
	s.dontShow = !s.dontShow
}

// ToggleIntro expands or collapses the intro panel
func (s *Service) ToggleIntro() {
	s.showIntro = !s.showIntro
}

// Hide closes the splash and returns the checkbox value to persist
func (s *Service) Hide() bool {
	s.visible = false
	s.showIntro = false
	return s.dontShow
}

// Persist stores dontShow in the preference bag. The bag is re-read first
// so other keys survive the write. It reads no mutable state and may run on
// any goroutine.
func (s *Service) Persist(ctx context.Context, dontShow bool) error {
	props, err := s.prefs.GetPreferences(ctx)
	if err != nil {
		return s.logFailure(fmt.Errorf("failed to read preferences: %w", err))
	}
	if props == nil {
		props = map[string]any{}
	}
	props[HideWelcomeKey] = dontShow

	if err := s.prefs.SetPreferences(ctx, props); err != nil {
		return s.logFailure(fmt.Errorf("failed to save preferences: %w", err))
	}

	if s.bus != nil {
		s.bus.Publish(eventbus.PreferencesSavedEvent{Key: HideWelcomeKey, Value: dontShow})
	}
	return nil
}

// Saved records the result of Persist
func (s *Service) Saved(err error) {
	s.err = err
}

// Close hides the splash and persists the checkbox in one step
func (s *Service) Close(ctx context.Context) error {
	err := s.Persist(ctx, s.Hide())
	s.Saved(err)
	return err
}

func (s *Service) logFailure(err error) error {
	s.logger.Warn("splash preference not stored", zap.Error(err))
	return err
}

// truthy accepts the bag's loose typing: a bool or the string "true"
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true"
	default:
		return false
	}
}
