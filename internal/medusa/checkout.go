package medusa

import (
	"context"
	"net/http"
	"net/url"

	"storefront/internal/domain"
)

type paymentCollectionEnvelope struct {
	PaymentCollection domain.PaymentCollection `json:"payment_collection"`
}

func (c *Client) CreatePaymentCollection(ctx context.Context, cartID string) (*domain.PaymentCollection, error) {
	var env paymentCollectionEnvelope
	body := map[string]interface{}{"cart_id": cartID}
	if err := c.t.do(ctx, http.MethodPost, "/store/payment-collections", nil, body, &env); err != nil {
		return nil, err
	}
	return &env.PaymentCollection, nil
}

// InitPaymentSession creates (or refreshes) the provider session on a
// payment collection. For Stripe the session data carries the client secret.
func (c *Client) InitPaymentSession(ctx context.Context, collectionID, providerID string) (*domain.PaymentCollection, error) {
	var env paymentCollectionEnvelope
	body := map[string]interface{}{"provider_id": providerID}
	path := "/store/payment-collections/" + url.PathEscape(collectionID) + "/payment-sessions"
	if err := c.t.do(ctx, http.MethodPost, path, nil, body, &env); err != nil {
		return nil, err
	}
	return &env.PaymentCollection, nil
}

// CompletionError is returned when the backend refuses to turn the cart into an order.
type CompletionError struct {
	Message string
	Cart    *domain.Cart
}

func (e *CompletionError) Error() string {
	return "cart completion failed: " + e.Message
}

type completeEnvelope struct {
	Type  string        `json:"type"`
	Order *domain.Order `json:"order"`
	Cart  *domain.Cart  `json:"cart"`
	Error *struct {
		Message string `json:"message"`
		Name    string `json:"name"`
		Type    string `json:"type"`
	} `json:"error"`
}

// CompleteCart places the order. A "cart" result is returned as *CompletionError.
func (c *Client) CompleteCart(ctx context.Context, cartID string) (*domain.Order, error) {
	var env completeEnvelope
	path := "/store/carts/" + url.PathEscape(cartID) + "/complete"
	if err := c.t.do(ctx, http.MethodPost, path, nil, nil, &env); err != nil {
		return nil, err
	}
	if env.Type == "order" && env.Order != nil {
		return env.Order, nil
	}
	msg := "payment could not be completed"
	if env.Error != nil && env.Error.Message != "" {
		msg = env.Error.Message
	}
	return nil, &CompletionError{Message: msg, Cart: env.Cart}
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var env struct {
		Order domain.Order `json:"order"`
	}
	q := url.Values{"fields": {"*items"}}
	if err := c.t.do(ctx, http.MethodGet, "/store/orders/"+url.PathEscape(orderID), q, nil, &env); err != nil {
		return nil, err
	}
	return &env.Order, nil
}
