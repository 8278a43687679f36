package services

import (
	"context"
	"errors"
	"sync"
	"time"

	domain "github.com/warungkita/api/internal/domain"
)

var (
	errSettingsAPIRequired   = errors.New("settings service: commerce api is required")
	errSettingsClockRequired = errors.New("settings service: clock is required")
)

const defaultSettingsMaxAge = 5 * time.Minute

// SettingsServiceDeps wires the collaborator and caching knobs for settings lookups.
type SettingsServiceDeps struct {
	API    settingsFetcher
	Clock  func() time.Time
	MaxAge time.Duration
	Logger func(context.Context, string, map[string]any)
}

type settingsFetcher interface {
	FetchSettings(ctx context.Context) (domain.StoreSettings, error)
}

type settingsService struct {
	api    settingsFetcher
	now    func() time.Time
	maxAge time.Duration
	logger func(context.Context, string, map[string]any)

	mu        sync.Mutex
	cached    domain.StoreSettings
	fetchedAt time.Time
}

// NewSettingsService constructs a SettingsService enforcing dependency validation.
func NewSettingsService(deps SettingsServiceDeps) (SettingsService, error) {
	if deps.API == nil {
		return nil, errSettingsAPIRequired
	}
	if deps.Clock == nil {
		return nil, errSettingsClockRequired
	}

	maxAge := deps.MaxAge
	if maxAge <= 0 {
		maxAge = defaultSettingsMaxAge
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &settingsService{
		api:    deps.API,
		now:    func() time.Time { return deps.Clock().UTC() },
		maxAge: maxAge,
		logger: logger,
	}, nil
}

// Settings returns the storefront settings with defaults applied. The fetch
// is non-critical: failures degrade to the last cached value, or to pure
// defaults when nothing has been fetched yet.
func (s *settingsService) Settings(ctx context.Context) StoreSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if !s.fetchedAt.IsZero() && now.Sub(s.fetchedAt) < s.maxAge {
		return s.cached
	}

	fetched, err := s.api.FetchSettings(ctx)
	if err != nil {
		s.logger(ctx, "settings.fetch_failed", map[string]any{
			"error": err.Error(),
		})
		if !s.fetchedAt.IsZero() {
			return s.cached
		}
		return domain.WithDefaults(domain.StoreSettings{})
	}

	s.cached = domain.WithDefaults(fetched)
	s.fetchedAt = now
	return s.cached
}
