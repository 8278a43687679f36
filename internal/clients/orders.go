package clients

import (
	"context"
	"time"
)

// OrderItemPayload is one submitted cart line.
type OrderItemPayload struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderRequest is the draft-derived payload accepted by POST /orders.
type CreateOrderRequest struct {
	Items         []OrderItemPayload `json:"items"`
	CustomerName  string             `json:"customerName"`
	CustomerPhone string             `json:"customerPhone"`
	CustomerEmail string             `json:"customerEmail,omitempty"`
	Address       string             `json:"address,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	DeliveryType  string             `json:"deliveryType"`
	DeliveryZone  string             `json:"deliveryZoneId,omitempty"`
	DeliveryFee   int64              `json:"deliveryFee"`
	Subtotal      int64              `json:"subtotal"`
	Tax           int64              `json:"tax"`
	Discount      int64              `json:"discount"`
	Total         int64              `json:"total"`
	VoucherCode   string             `json:"voucherCode,omitempty"`
	IsPreOrder    bool               `json:"isPreOrder"`
	ScheduledTime string             `json:"scheduledTime,omitempty"`
}

// CreatedOrder is the record returned once the collaborator persists an order.
type CreatedOrder struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateOrder submits the finalised draft to the order collaborator.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (CreatedOrder, error) {
	var created CreatedOrder
	if err := c.post(ctx, "/orders", req, &created); err != nil {
		return CreatedOrder{}, err
	}
	return created, nil
}
