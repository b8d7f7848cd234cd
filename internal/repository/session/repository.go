package session

import (
	"context"
	"time"

	"storefront/internal/domain"
)

// Repository persists storefront sessions and per-cart shipping selections.
type Repository interface {
	Create(ctx context.Context) (*domain.Session, error)
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, s *domain.Session) error
	// ClaimCouponResolution marks cartID as resolved for the session and
	// reports whether this call made the transition.
	ClaimCouponResolution(ctx context.Context, sessionID, cartID string) (bool, error)
	DeleteIdleBefore(ctx context.Context, cutoff time.Time) (int64, error)

	GetShipping(ctx context.Context, sessionID, cartID string) (*domain.ShippingSelection, error)
	SaveShipping(ctx context.Context, sel domain.ShippingSelection) error
	DeleteShipping(ctx context.Context, sessionID, cartID string) error
}
