// Package sessionstore persists per-session checkout state (the cart and the
// prefilled checkout form) as JSON blobs in redis, keyed by the opaque
// session id supplied by the caller.
package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/warungkita/api/internal/domain"
)

// ErrNotFound is returned when no blob exists for the session.
var ErrNotFound = errors.New("sessionstore: not found")

const defaultTTL = 24 * time.Hour

// Option customises the store.
type Option func(*Store)

// WithTTL overrides the base retention for session blobs.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.baseTTL = ttl
		}
	}
}

// NewStore builds a redis-backed session store.
func NewStore(client *redis.Client, opts ...Option) *Store {
	s := &Store{
		client:  client,
		baseTTL: defaultTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

type Store struct {
	client  *redis.Client
	baseTTL time.Duration
}

// GetCart loads the session cart. Returns ErrNotFound when the session has
// no cart blob.
func (s *Store) GetCart(ctx context.Context, sessionID string) ([]domain.CartLine, error) {
	data, err := s.get(ctx, cartKey(sessionID))
	if err != nil {
		return nil, err
	}

	var lines []domain.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return lines, nil
}

// SaveCart replaces the session cart.
func (s *Store) SaveCart(ctx context.Context, sessionID string, lines []domain.CartLine) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	return s.set(ctx, cartKey(sessionID), data)
}

// DeleteCart removes the session cart. Deleting a missing cart is not an error.
func (s *Store) DeleteCart(ctx context.Context, sessionID string) error {
	return s.delete(ctx, cartKey(sessionID))
}

// GetCheckoutData loads the prefilled checkout form blob for the session.
func (s *Store) GetCheckoutData(ctx context.Context, sessionID string) (json.RawMessage, error) {
	data, err := s.get(ctx, checkoutDataKey(sessionID))
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("checkout data for session %s is not valid JSON", sessionID)
	}
	return json.RawMessage(data), nil
}

// SaveCheckoutData replaces the prefilled checkout form blob.
func (s *Store) SaveCheckoutData(ctx context.Context, sessionID string, blob json.RawMessage) error {
	if !json.Valid(blob) {
		return errors.New("sessionstore: checkout data must be valid JSON")
	}
	return s.set(ctx, checkoutDataKey(sessionID), blob)
}

// DeleteCheckoutData removes the checkout form blob.
func (s *Store) DeleteCheckoutData(ctx context.Context, sessionID string) error {
	return s.delete(ctx, checkoutDataKey(sessionID))
}

// GetVoucher loads the voucher currently applied to the session.
func (s *Store) GetVoucher(ctx context.Context, sessionID string) (domain.Voucher, error) {
	data, err := s.get(ctx, voucherKey(sessionID))
	if err != nil {
		return domain.Voucher{}, err
	}

	var voucher domain.Voucher
	if err := json.Unmarshal(data, &voucher); err != nil {
		return domain.Voucher{}, fmt.Errorf("unmarshal voucher failed: %w", err)
	}
	return voucher, nil
}

// SaveVoucher replaces the applied voucher for the session. A session holds
// at most one voucher; saving always overwrites.
func (s *Store) SaveVoucher(ctx context.Context, sessionID string, voucher domain.Voucher) error {
	data, err := json.Marshal(voucher)
	if err != nil {
		return fmt.Errorf("marshal voucher failed: %w", err)
	}
	return s.set(ctx, voucherKey(sessionID), data)
}

// DeleteVoucher clears the applied voucher unconditionally.
func (s *Store) DeleteVoucher(ctx context.Context, sessionID string) error {
	return s.delete(ctx, voucherKey(sessionID))
}

// GetZone loads the delivery zone selected for the session.
func (s *Store) GetZone(ctx context.Context, sessionID string) (domain.DeliveryZone, error) {
	data, err := s.get(ctx, zoneKey(sessionID))
	if err != nil {
		return domain.DeliveryZone{}, err
	}

	var zone domain.DeliveryZone
	if err := json.Unmarshal(data, &zone); err != nil {
		return domain.DeliveryZone{}, fmt.Errorf("unmarshal zone failed: %w", err)
	}
	return zone, nil
}

// SaveZone replaces the selected delivery zone for the session.
func (s *Store) SaveZone(ctx context.Context, sessionID string, zone domain.DeliveryZone) error {
	data, err := json.Marshal(zone)
	if err != nil {
		return fmt.Errorf("marshal zone failed: %w", err)
	}
	return s.set(ctx, zoneKey(sessionID), data)
}

// DeleteZone clears the selected delivery zone.
func (s *Store) DeleteZone(ctx context.Context, sessionID string) error {
	return s.delete(ctx, zoneKey(sessionID))
}

func (s *Store) get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (s *Store) set(ctx context.Context, key string, data []byte) error {
	jitter := time.Duration(rand.Intn(5)) * time.Minute
	ttl := s.baseTTL + jitter
	if err := s.client.Set(ctx, key, string(data), ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *Store) delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

func checkoutDataKey(sessionID string) string {
	return fmt.Sprintf("checkout-data:%s", sessionID)
}

func voucherKey(sessionID string) string {
	return fmt.Sprintf("voucher:%s", sessionID)
}

func zoneKey(sessionID string) string {
	return fmt.Sprintf("delivery-zone:%s", sessionID)
}
