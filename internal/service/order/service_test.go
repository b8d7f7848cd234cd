package order

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/medusa"
)

type stubBackend struct {
	order     *domain.Order
	err       error
	lastOrder string
}

func (s *stubBackend) GetOrder(_ context.Context, orderID string) (*domain.Order, error) {
	s.lastOrder = orderID
	return s.order, s.err
}

func TestLookupMatchesEmail(t *testing.T) {
	backend := &stubBackend{order: &domain.Order{ID: "order_1", Email: "Jane@Example.com"}}
	svc := New(backend, nil)

	got, err := svc.Lookup(context.Background(), " order_1 ", " jane@example.COM ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "order_1" || backend.lastOrder != "order_1" {
		t.Fatalf("unexpected order %+v", got)
	}
}

func TestLookupHidesFailureReason(t *testing.T) {
	cases := map[string]*stubBackend{
		"wrong email": {order: &domain.Order{ID: "order_1", Email: "other@example.com"}},
		"missing":     {err: &medusa.APIError{Status: 404, Message: "Order not found"}},
		"forbidden":   {err: &medusa.APIError{Status: 401, Message: "Unauthorized"}},
		"backend":     {err: errors.New("connection reset")},
	}
	for name, backend := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(backend, nil).Lookup(context.Background(), "order_1", "jane@example.com")
			if !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("expected not found, got %v", err)
			}
		})
	}
}

func TestLookupValidation(t *testing.T) {
	backend := &stubBackend{}
	_, err := New(backend, nil).Lookup(context.Background(), "order_1", " ")
	if err == nil || err.Error() != "order id and email required" {
		t.Fatalf("expected validation error, got %v", err)
	}
	if backend.lastOrder != "" {
		t.Fatalf("backend should not be called")
	}
}
