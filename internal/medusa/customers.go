package medusa

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"storefront/internal/domain"
)

type customerEnvelope struct {
	Customer domain.Customer `json:"customer"`
}

// Login exchanges email/password for a customer bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var env struct {
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.t.do(ctx, http.MethodPost, "/auth/customer/emailpass", nil, body, &env); err != nil {
		return "", err
	}
	if env.Token == "" {
		return "", errors.New("login response missing token")
	}
	return env.Token, nil
}

// GetCustomer returns the customer identified by the token in ctx.
func (c *Client) GetCustomer(ctx context.Context) (*domain.Customer, error) {
	if tokenFrom(ctx) == "" {
		return nil, domain.ErrUnauthorized
	}
	var env customerEnvelope
	if err := c.t.do(ctx, http.MethodGet, "/store/customers/me", nil, nil, &env); err != nil {
		return nil, err
	}
	return &env.Customer, nil
}

// UpdateCustomerMetadata replaces the signed-in customer's metadata bag.
func (c *Client) UpdateCustomerMetadata(ctx context.Context, metadata map[string]interface{}) (*domain.Customer, error) {
	if tokenFrom(ctx) == "" {
		return nil, domain.ErrUnauthorized
	}
	var env customerEnvelope
	body := map[string]interface{}{"metadata": metadata}
	if err := c.t.do(ctx, http.MethodPost, "/store/customers/me", nil, body, &env); err != nil {
		return nil, err
	}
	return &env.Customer, nil
}

func (a *Admin) GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error) {
	var env customerEnvelope
	if err := a.t.do(ctx, http.MethodGet, "/admin/customers/"+url.PathEscape(customerID), nil, nil, &env); err != nil {
		return nil, err
	}
	return &env.Customer, nil
}

func (a *Admin) UpdateCustomerMetadata(ctx context.Context, customerID string, metadata map[string]interface{}) (*domain.Customer, error) {
	var env customerEnvelope
	body := map[string]interface{}{"metadata": metadata}
	if err := a.t.do(ctx, http.MethodPost, "/admin/customers/"+url.PathEscape(customerID), nil, body, &env); err != nil {
		return nil, err
	}
	return &env.Customer, nil
}
