// Package order implements the guest order lookup.
package order

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logging"
)

type Backend interface {
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
}

type Service struct {
	backend Backend
	logger  *zap.Logger
}

func New(backend Backend, logger *zap.Logger) *Service {
	return &Service{backend: backend, logger: logging.OrNop(logger)}
}

// Lookup returns the order only when it exists and was placed with email.
// A missing order, a mismatched email and a backend refusal all surface as
// domain.ErrNotFound so callers cannot enumerate order ids.
func (s *Service) Lookup(ctx context.Context, orderID, email string) (*domain.Order, error) {
	orderID = strings.TrimSpace(orderID)
	email = strings.TrimSpace(email)
	if orderID == "" || email == "" {
		return nil, domain.Invalid("order id and email required")
	}
	order, err := s.backend.GetOrder(ctx, orderID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrUnauthorized) {
			s.logger.Warn("order lookup failed", zap.String("order_id", orderID), zap.Error(err))
		}
		return nil, domain.ErrNotFound
	}
	if order == nil || !strings.EqualFold(strings.TrimSpace(order.Email), email) {
		return nil, domain.ErrNotFound
	}
	return order, nil
}
