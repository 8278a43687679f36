package clients

import (
	"context"
	"net/url"
	"strconv"

	domain "github.com/warungkita/api/internal/domain"
)

type zonePayload struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	DeliveryFee          int64  `json:"deliveryFee"`
	EstimatedTimeMinutes int    `json:"estimatedTimeMinutes"`
}

func (p zonePayload) toDomain() domain.DeliveryZone {
	return domain.DeliveryZone{
		ID:                   p.ID,
		Name:                 p.Name,
		DeliveryFee:          p.DeliveryFee,
		EstimatedTimeMinutes: p.EstimatedTimeMinutes,
	}
}

// ZoneLookup is the collaborator's answer to a point-in-zone query.
type ZoneLookup struct {
	InDeliveryZone bool
	Zone           *domain.DeliveryZone
}

// ListZones fetches the full delivery-zone catalog.
func (c *Client) ListZones(ctx context.Context) ([]domain.DeliveryZone, error) {
	var payload []zonePayload
	if err := c.get(ctx, "/delivery-zones", nil, &payload); err != nil {
		return nil, err
	}

	zones := make([]domain.DeliveryZone, 0, len(payload))
	for _, zone := range payload {
		zones = append(zones, zone.toDomain())
	}
	return zones, nil
}

// LookupZone resolves a coordinate to the covering delivery zone, if any.
func (c *Client) LookupZone(ctx context.Context, lat, lng float64) (ZoneLookup, error) {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))

	var payload struct {
		InDeliveryZone bool         `json:"inDeliveryZone"`
		Zone           *zonePayload `json:"zone"`
	}
	if err := c.get(ctx, "/delivery-zones", query, &payload); err != nil {
		return ZoneLookup{}, err
	}

	lookup := ZoneLookup{InDeliveryZone: payload.InDeliveryZone}
	if payload.Zone != nil {
		zone := payload.Zone.toDomain()
		lookup.Zone = &zone
	}
	return lookup, nil
}
