package imagery

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/logging"
)

// ProductLookup bulk-fetches products by ID.
type ProductLookup interface {
	ListProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
}

// ImageMap resolves line item images from per-product entries.
type ImageMap struct {
	entries map[string]domain.ProductImages
}

// For picks the image for a line item: the variant's own image, then the
// item's stored thumbnail, then the product fallback. Empty means none.
func (m ImageMap) For(item domain.LineItem) string {
	entry, ok := m.entries[item.ProductID]
	if ok {
		if u := entry.Variants[item.VariantID]; u != "" {
			return u
		}
	}
	if u := strings.TrimSpace(item.Thumbnail); u != "" {
		return u
	}
	if ok {
		return entry.Fallback
	}
	return ""
}

// Has reports whether productID has been resolved.
func (m ImageMap) Has(productID string) bool {
	_, ok := m.entries[productID]
	return ok
}

// EntryFor builds the cache entry for one product.
func EntryFor(p domain.Product) domain.ProductImages {
	entry := domain.ProductImages{ProductID: p.ID, Fallback: ProductFallback(p)}
	for _, v := range p.Variants {
		if u := VariantImage(v); u != "" {
			if entry.Variants == nil {
				entry.Variants = make(map[string]string)
			}
			entry.Variants[v.ID] = u
		}
	}
	return entry
}

// fetchTimeout bounds a shared product lookup, which no longer follows the
// cancellation of the request that started it.
const fetchTimeout = 10 * time.Second

// Mapper builds ImageMaps, fetching only products missing from the cache.
type Mapper struct {
	lookup       ProductLookup
	cache        cache.ImageCache
	group        singleflight.Group
	fetchTimeout time.Duration
	logger       *zap.Logger
}

func NewMapper(lookup ProductLookup, c cache.ImageCache, logger *zap.Logger) *Mapper {
	if c == nil {
		c = cache.NewMemoryImageCache()
	}
	return &Mapper{lookup: lookup, cache: c, fetchTimeout: fetchTimeout, logger: logging.OrNop(logger)}
}

// Map resolves images for items. Failures are logged and leave the affected
// products unresolved; line items then fall back to their own thumbnails.
func (m *Mapper) Map(ctx context.Context, items []domain.LineItem) ImageMap {
	ids := distinctProductIDs(items)
	out := ImageMap{entries: make(map[string]domain.ProductImages, len(ids))}
	if len(ids) == 0 {
		return out
	}

	cached, err := m.cache.GetMany(ctx, ids)
	if err != nil {
		m.logger.Warn("image map: cache read failed", zap.Error(err))
	}
	for id, entry := range cached {
		out.entries[id] = entry
	}

	var missing []string
	for _, id := range ids {
		if !out.Has(id) {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return out
	}

	sort.Strings(missing)
	// Callers collapsed onto this key share the result, so one cancelled
	// request must not fail the others.
	v, err, _ := m.group.Do(strings.Join(missing, ","), func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.fetchTimeout)
		defer cancel()
		return m.fetch(fetchCtx, missing)
	})
	if err != nil {
		m.logger.Warn("image map: product lookup failed", zap.Strings("product_ids", missing), zap.Error(err))
		return out
	}
	for _, entry := range v.([]domain.ProductImages) {
		out.entries[entry.ProductID] = entry
	}
	return out
}

func (m *Mapper) fetch(ctx context.Context, ids []string) ([]domain.ProductImages, error) {
	products, err := m.lookup.ListProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.ProductImages, 0, len(products))
	for _, p := range products {
		entries = append(entries, EntryFor(p))
	}
	if err := m.cache.SetMany(ctx, entries); err != nil {
		m.logger.Warn("image map: cache write failed", zap.Error(err))
	}
	return entries, nil
}

func distinctProductIDs(items []domain.LineItem) []string {
	cart := domain.Cart{Items: items}
	return cart.ProductIDs()
}
