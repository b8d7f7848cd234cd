package medusa

import (
	"context"
	"net/http"
	"net/url"

	"storefront/internal/domain"
)

const cartFields = "*items,*promotions,*shipping_methods,*shipping_address,*payment_collection,*payment_collection.payment_sessions"

type cartEnvelope struct {
	Cart domain.Cart `json:"cart"`
}

type deleteEnvelope struct {
	ID      string      `json:"id"`
	Deleted bool        `json:"deleted"`
	Parent  domain.Cart `json:"parent"`
}

func cartQuery() url.Values {
	return url.Values{"fields": {cartFields}}
}

// CreateCartInput is the payload for a new cart.
type CreateCartInput struct {
	RegionID string `json:"region_id,omitempty"`
	Email    string `json:"email,omitempty"`
}

// UpdateCartInput carries the mutable cart attributes. Empty fields are left untouched.
type UpdateCartInput struct {
	RegionID        string          `json:"region_id,omitempty"`
	Email           string          `json:"email,omitempty"`
	ShippingAddress *domain.Address `json:"shipping_address,omitempty"`
	BillingAddress  *domain.Address `json:"billing_address,omitempty"`
}

func (c *Client) CreateCart(ctx context.Context, in CreateCartInput) (*domain.Cart, error) {
	var env cartEnvelope
	if err := c.t.do(ctx, http.MethodPost, "/store/carts", cartQuery(), in, &env); err != nil {
		return nil, err
	}
	return &env.Cart, nil
}

func (c *Client) GetCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	var env cartEnvelope
	if err := c.t.do(ctx, http.MethodGet, "/store/carts/"+url.PathEscape(cartID), cartQuery(), nil, &env); err != nil {
		return nil, err
	}
	return &env.Cart, nil
}

func (c *Client) UpdateCart(ctx context.Context, cartID string, in UpdateCartInput) (*domain.Cart, error) {
	var env cartEnvelope
	if err := c.t.do(ctx, http.MethodPost, "/store/carts/"+url.PathEscape(cartID), cartQuery(), in, &env); err != nil {
		return nil, err
	}
	return &env.Cart, nil
}

func (c *Client) AddLineItem(ctx context.Context, cartID, variantID string, quantity int) (*domain.Cart, error) {
	body := map[string]interface{}{"variant_id": variantID, "quantity": quantity}
	var env cartEnvelope
	if err := c.t.do(ctx, http.MethodPost, "/store/carts/"+url.PathEscape(cartID)+"/line-items", cartQuery(), body, &env); err != nil {
		return nil, err
	}
	return &env.Cart, nil
}

func (c *Client) UpdateLineItem(ctx context.Context, cartID, lineID string, quantity int) (*domain.Cart, error) {
	body := map[string]interface{}{"quantity": quantity}
	var env cartEnvelope
	path := "/store/carts/" + url.PathEscape(cartID) + "/line-items/" + url.PathEscape(lineID)
	if err := c.t.do(ctx, http.MethodPost, path, cartQuery(), body, &env); err != nil {
		return nil, err
	}
	return &env.Cart, nil
}

func (c *Client) DeleteLineItem(ctx context.Context, cartID, lineID string) (*domain.Cart, error) {
	var env deleteEnvelope
	path := "/store/carts/" + url.PathEscape(cartID) + "/line-items/" + url.PathEscape(lineID)
	if err := c.t.do(ctx, http.MethodDelete, path, cartQuery(), nil, &env); err != nil {
		return nil, err
	}
	return &env.Parent, nil
}

type promoCodesBody struct {
	PromoCodes []string `json:"promo_codes"`
}

// ApplyPromotions adds codes to the cart. The backend rejects the whole call
// when any code is invalid.
func (c *Client) ApplyPromotions(ctx context.Context, cartID string, codes ...string) (*domain.Cart, error) {
	var env cartEnvelope
	path := "/store/carts/" + url.PathEscape(cartID) + "/promotions"
	if err := c.t.do(ctx, http.MethodPost, path, cartQuery(), promoCodesBody{PromoCodes: codes}, &env); err != nil {
		return nil, err
	}
	return &env.Cart, nil
}

func (c *Client) RemovePromotions(ctx context.Context, cartID string, codes ...string) (*domain.Cart, error) {
	var env cartEnvelope
	path := "/store/carts/" + url.PathEscape(cartID) + "/promotions"
	if err := c.t.do(ctx, http.MethodDelete, path, cartQuery(), promoCodesBody{PromoCodes: codes}, &env); err != nil {
		return nil, err
	}
	return &env.Cart, nil
}

// TransferCart assigns a guest cart to the customer identified by the token in ctx.
func (c *Client) TransferCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	var env cartEnvelope
	path := "/store/carts/" + url.PathEscape(cartID) + "/customer"
	if err := c.t.do(ctx, http.MethodPost, path, cartQuery(), nil, &env); err != nil {
		return nil, err
	}
	return &env.Cart, nil
}

func (c *Client) ListShippingOptions(ctx context.Context, cartID string) ([]domain.ShippingOption, error) {
	var env struct {
		ShippingOptions []domain.ShippingOption `json:"shipping_options"`
	}
	q := url.Values{"cart_id": {cartID}}
	if err := c.t.do(ctx, http.MethodGet, "/store/shipping-options", q, nil, &env); err != nil {
		return nil, err
	}
	return env.ShippingOptions, nil
}

func (c *Client) AddShippingMethod(ctx context.Context, cartID, optionID string) (*domain.Cart, error) {
	body := map[string]interface{}{"option_id": optionID}
	var env cartEnvelope
	path := "/store/carts/" + url.PathEscape(cartID) + "/shipping-methods"
	if err := c.t.do(ctx, http.MethodPost, path, cartQuery(), body, &env); err != nil {
		return nil, err
	}
	return &env.Cart, nil
}
