package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	domain "github.com/warungkita/api/internal/domain"
	"github.com/warungkita/api/internal/services"
)

func TestCheckoutQuote(t *testing.T) {
	var got services.QuoteCommand
	checkout := &stubCheckout{
		quoteFn: func(_ context.Context, cmd services.QuoteCommand) (domain.PricingResult, error) {
			got = cmd
			return domain.PricingResult{Subtotal: 50000, Shipping: 15000, Tax: 5500, Total: 70500}, nil
		},
	}
	h := mountRoutes("/checkout", NewCheckoutHandlers(checkout).Routes)

	rec := doRequest(t, h, http.MethodPost, "/checkout/quote", "sess-1", `{"deliveryType":"DELIVERY"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %q)", rec.Code, rec.Body.String())
	}
	if got.SessionID != "sess-1" || got.DeliveryType != domain.DeliveryTypeDelivery {
		t.Fatalf("command = %+v", got)
	}
	payload := decodeEnvelope(t, rec)
	if payload["total"] != float64(70500) || payload["tax"] != float64(5500) {
		t.Fatalf("pricing payload = %v", payload)
	}
	if payload["totalLabel"] != "Rp70.500" {
		t.Fatalf("totalLabel = %v", payload["totalLabel"])
	}
}

func TestCheckoutQuoteParsesSlot(t *testing.T) {
	var got services.QuoteCommand
	checkout := &stubCheckout{
		quoteFn: func(_ context.Context, cmd services.QuoteCommand) (domain.PricingResult, error) {
			got = cmd
			return domain.PricingResult{}, nil
		},
	}
	h := mountRoutes("/checkout", NewCheckoutHandlers(checkout).Routes)

	body := `{"deliveryType":"PICKUP","isPreOrder":true,"scheduledDate":"2025-06-03","scheduledTime":"12:30"}`
	rec := doRequest(t, h, http.MethodPost, "/checkout/quote", "sess-1", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %q)", rec.Code, rec.Body.String())
	}
	if !got.PreOrder || got.Slot.Date == nil || got.Slot.Time != "12:30" {
		t.Fatalf("command = %+v", got)
	}
	if got.Slot.Date.Format("2006-01-02") != "2025-06-03" {
		t.Fatalf("slot date = %v", got.Slot.Date)
	}
}

func TestCheckoutQuoteRejectsBadDate(t *testing.T) {
	h := mountRoutes("/checkout", NewCheckoutHandlers(&stubCheckout{}).Routes)

	rec := doRequest(t, h, http.MethodPost, "/checkout/quote", "sess-1", `{"scheduledDate":"03/06/2025"}`)
	wantErrorCode(t, rec, http.StatusBadRequest, "invalid_request")
}

func TestCheckoutSubmit(t *testing.T) {
	created := time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC)
	var got services.SubmitOrderCommand
	checkout := &stubCheckout{
		submitFn: func(_ context.Context, cmd services.SubmitOrderCommand) (services.SubmittedOrder, error) {
			got = cmd
			return services.SubmittedOrder{
				ID:        "order-1",
				Status:    "PENDING",
				Pricing:   domain.PricingResult{Subtotal: 50000, Total: 70500},
				CreatedAt: created,
			}, nil
		},
	}
	h := mountRoutes("/checkout", NewCheckoutHandlers(checkout).Routes)

	body := `{"deliveryType":"DELIVERY","customer":{"name":"Budi","phone":"08123456789","address":"Jl. Melati 5"}}`
	rec := doRequest(t, h, http.MethodPost, "/checkout/submit", "sess-1", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d (body %q)", rec.Code, rec.Body.String())
	}
	if got.Customer.Name != "Budi" || got.Customer.Phone != "08123456789" {
		t.Fatalf("customer = %+v", got.Customer)
	}

	payload := decodeEnvelope(t, rec)
	if payload["orderId"] != "order-1" || payload["status"] != "PENDING" {
		t.Fatalf("payload = %v", payload)
	}
	if payload["createdAt"] != "2025-06-02T11:00:00Z" {
		t.Fatalf("createdAt = %v", payload["createdAt"])
	}
}

func TestCheckoutSubmitValidationFailure(t *testing.T) {
	checkout := &stubCheckout{
		submitFn: func(context.Context, services.SubmitOrderCommand) (services.SubmittedOrder, error) {
			return services.SubmittedOrder{}, &services.ValidationError{Fields: map[string]string{
				"name": "nama wajib diisi",
			}}
		},
	}
	h := mountRoutes("/checkout", NewCheckoutHandlers(checkout).Routes)

	rec := doRequest(t, h, http.MethodPost, "/checkout/submit", "sess-1", `{"deliveryType":"DELIVERY"}`)
	wantErrorCode(t, rec, http.StatusUnprocessableEntity, "checkout_validation_failed")

	payload := decodeEnvelope(t, rec)
	fields, ok := payload["fields"].(map[string]any)
	if !ok || fields["name"] != "nama wajib diisi" {
		t.Fatalf("fields = %v", payload["fields"])
	}
}

func TestCheckoutSubmitProductsUnavailable(t *testing.T) {
	checkout := &stubCheckout{
		submitFn: func(context.Context, services.SubmitOrderCommand) (services.SubmittedOrder, error) {
			return services.SubmittedOrder{}, &services.InvalidProductsError{Names: []string{"Menu Lama"}}
		},
	}
	h := mountRoutes("/checkout", NewCheckoutHandlers(checkout).Routes)

	rec := doRequest(t, h, http.MethodPost, "/checkout/submit", "sess-1", `{"deliveryType":"DELIVERY"}`)
	wantErrorCode(t, rec, http.StatusConflict, "products_unavailable")

	payload := decodeEnvelope(t, rec)
	products, ok := payload["products"].([]any)
	if !ok || len(products) != 1 || products[0] != "Menu Lama" {
		t.Fatalf("products = %v", payload["products"])
	}
}

func TestCheckoutSubmitRejected(t *testing.T) {
	checkout := &stubCheckout{
		submitFn: func(context.Context, services.SubmitOrderCommand) (services.SubmittedOrder, error) {
			return services.SubmittedOrder{}, &services.SubmissionRejectedError{Message: "Toko sedang tutup"}
		},
	}
	h := mountRoutes("/checkout", NewCheckoutHandlers(checkout).Routes)

	rec := doRequest(t, h, http.MethodPost, "/checkout/submit", "sess-1", `{"deliveryType":"DELIVERY"}`)
	wantErrorCode(t, rec, http.StatusUnprocessableEntity, "order_rejected")

	payload := decodeEnvelope(t, rec)
	if payload["message"] != "Toko sedang tutup" {
		t.Fatalf("message = %v", payload["message"])
	}
}

func TestCheckoutSubmitUnavailable(t *testing.T) {
	checkout := &stubCheckout{
		submitFn: func(context.Context, services.SubmitOrderCommand) (services.SubmittedOrder, error) {
			return services.SubmittedOrder{}, services.ErrCheckoutUnavailable
		},
	}
	h := mountRoutes("/checkout", NewCheckoutHandlers(checkout).Routes)

	rec := doRequest(t, h, http.MethodPost, "/checkout/submit", "sess-1", `{"deliveryType":"DELIVERY"}`)
	wantErrorCode(t, rec, http.StatusServiceUnavailable, "checkout_unavailable")
}

func TestCheckoutRequiresSession(t *testing.T) {
	h := mountRoutes("/checkout", NewCheckoutHandlers(&stubCheckout{}).Routes)

	rec := doRequest(t, h, http.MethodPost, "/checkout/quote", "", `{}`)
	wantErrorCode(t, rec, http.StatusBadRequest, "session_required")
}

func TestCheckoutSubmitMiddlewareWrapsOnlySubmit(t *testing.T) {
	var wrapped []string
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped = append(wrapped, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
	checkout := &stubCheckout{
		quoteFn: func(context.Context, services.QuoteCommand) (domain.PricingResult, error) {
			return domain.PricingResult{}, nil
		},
		submitFn: func(context.Context, services.SubmitOrderCommand) (services.SubmittedOrder, error) {
			return services.SubmittedOrder{}, nil
		},
	}
	h := mountRoutes("/checkout", NewCheckoutHandlers(checkout, WithSubmitMiddleware(mw)).Routes)

	doRequest(t, h, http.MethodPost, "/checkout/quote", "sess-1", `{}`)
	doRequest(t, h, http.MethodPost, "/checkout/submit", "sess-1", `{"deliveryType":"DELIVERY"}`)

	if len(wrapped) != 1 || wrapped[0] != "/checkout/submit" {
		t.Fatalf("middleware saw %v, want only /checkout/submit", wrapped)
	}
}
