package cache

import (
	"context"

	"storefront/internal/domain"
)

// ImageCache stores resolved line-item images keyed by product ID.
type ImageCache interface {
	// GetMany returns the cached entries among ids. Missing IDs are simply absent.
	GetMany(ctx context.Context, ids []string) (map[string]domain.ProductImages, error)
	SetMany(ctx context.Context, entries []domain.ProductImages) error
}
