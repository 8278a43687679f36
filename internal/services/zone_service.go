package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/warungkita/api/internal/clients"
	domain "github.com/warungkita/api/internal/domain"
)

var (
	errZoneAPIRequired      = errors.New("zone service: commerce api is required")
	errZoneSessionsRequired = errors.New("zone service: session store is required")
)

// ErrZoneOutOfCoverage indicates the coordinates fall outside every delivery
// zone. The session's selected zone is left untouched.
var ErrZoneOutOfCoverage = errors.New("zone service: out of coverage")

// ErrZoneUnavailable indicates the zone lookup collaborator could not be reached.
var ErrZoneUnavailable = errors.New("zone service: unavailable")

// ErrZoneSuperseded indicates a newer detection for the same session finished
// first; the stale result was discarded.
var ErrZoneSuperseded = errors.New("zone service: superseded by a newer request")

// ErrZoneInvalidInput indicates the caller supplied invalid input.
var ErrZoneInvalidInput = errors.New("zone service: invalid input")

type zoneLookup interface {
	ListZones(ctx context.Context) ([]domain.DeliveryZone, error)
	LookupZone(ctx context.Context, lat, lng float64) (clients.ZoneLookup, error)
}

// ZoneServiceDeps wires the zone lookup collaborator and session persistence.
type ZoneServiceDeps struct {
	API      zoneLookup
	Sessions SessionStore
	Logger   func(context.Context, string, map[string]any)
}

type zoneService struct {
	api      zoneLookup
	sessions SessionStore
	logger   func(context.Context, string, map[string]any)

	mu  sync.Mutex
	seq map[string]uint64
}

// NewZoneService constructs a ZoneService enforcing dependency validation.
func NewZoneService(deps ZoneServiceDeps) (ZoneService, error) {
	if deps.API == nil {
		return nil, errZoneAPIRequired
	}
	if deps.Sessions == nil {
		return nil, errZoneSessionsRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &zoneService{
		api:      deps.API,
		sessions: deps.Sessions,
		logger:   logger,
		seq:      make(map[string]uint64),
	}, nil
}

// ListZones returns the delivery zone catalog. The fetch is non-critical and
// degrades to an empty catalog so checkout is never blocked on it.
func (s *zoneService) ListZones(ctx context.Context) []DeliveryZone {
	zones, err := s.api.ListZones(ctx)
	if err != nil {
		s.logger(ctx, "zones.catalog_failed", map[string]any{
			"error": err.Error(),
		})
		return nil
	}
	return zones
}

// DetectFromGeolocation matches the coordinates against zone coverage and, on
// a hit, stores the zone on the session. Out-of-coverage is an explicit
// signal, not a transport failure, and leaves the session unchanged.
//
// Detections carry the same per-session sequence guard as voucher
// validation, so only the most recent lookup may update the session.
func (s *zoneService) DetectFromGeolocation(ctx context.Context, cmd DetectZoneCommand) (DeliveryZone, error) {
	sessionID := strings.TrimSpace(cmd.SessionID)
	if sessionID == "" {
		return DeliveryZone{}, ErrZoneInvalidInput
	}

	seq := s.nextSeq(sessionID)

	lookup, err := s.api.LookupZone(ctx, cmd.Lat, cmd.Lng)
	if err != nil {
		s.logger(ctx, "zones.lookup_failed", map[string]any{
			"error": err.Error(),
		})
		return DeliveryZone{}, ErrZoneUnavailable
	}
	if !lookup.InDeliveryZone || lookup.Zone == nil {
		return DeliveryZone{}, ErrZoneOutOfCoverage
	}

	if !s.isLatestSeq(sessionID, seq) {
		return DeliveryZone{}, ErrZoneSuperseded
	}

	if err := s.sessions.SaveZone(ctx, sessionID, *lookup.Zone); err != nil {
		s.logger(ctx, "zones.save_failed", map[string]any{
			"error": err.Error(),
		})
		return DeliveryZone{}, ErrZoneUnavailable
	}

	return *lookup.Zone, nil
}

// SelectManually overrides any previously detected or selected zone.
func (s *zoneService) SelectManually(ctx context.Context, sessionID string, zone DeliveryZone) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" || strings.TrimSpace(zone.ID) == "" {
		return ErrZoneInvalidInput
	}

	// Manual selection wins over a detection still in flight.
	s.nextSeq(sessionID)

	if err := s.sessions.SaveZone(ctx, sessionID, zone); err != nil {
		s.logger(ctx, "zones.save_failed", map[string]any{
			"error": err.Error(),
		})
		return ErrZoneUnavailable
	}
	return nil
}

// ClearZone removes the session's selected zone.
func (s *zoneService) ClearZone(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return ErrZoneInvalidInput
	}
	if err := s.sessions.DeleteZone(ctx, sessionID); err != nil {
		s.logger(ctx, "zones.clear_failed", map[string]any{
			"error": err.Error(),
		})
		return ErrZoneUnavailable
	}
	return nil
}

func (s *zoneService) nextSeq(sessionID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq[sessionID]++
	return s.seq[sessionID]
}

func (s *zoneService) isLatestSeq(sessionID string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq[sessionID] == seq
}
