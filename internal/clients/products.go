package clients

import (
	"context"
	"errors"
	"fmt"
)

// ErrProductNotFound indicates the product no longer exists in the catalog.
var ErrProductNotFound = errors.New("clients: product not found")

// Product is the slice of the catalog record the checkout flow needs.
type Product struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Available bool   `json:"available"`
}

// GetProduct fetches a single catalog record, mapping a collaborator 404 to
// ErrProductNotFound so the pre-submit existence check can tell a removed
// product apart from an outage.
func (c *Client) GetProduct(ctx context.Context, productID string) (Product, error) {
	var product Product
	err := c.get(ctx, "/products/"+productID, nil, &product)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.NotFound() {
			return Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return Product{}, err
	}
	return product, nil
}
