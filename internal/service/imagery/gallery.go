package imagery

import "storefront/internal/domain"

// Gallery is the image carousel state for a product detail view. The
// image list is never empty: Resolve falls back to the placeholder.
type Gallery struct {
	product     *domain.Product
	placeholder string
	variantID   string
	images      []string
	index       int
}

// NewGallery starts a gallery on the given variant (nil for none).
func NewGallery(product *domain.Product, variant *domain.Variant, placeholder string) *Gallery {
	g := &Gallery{product: product, placeholder: placeholder}
	g.Select(variant)
	return g
}

// Select switches to variant, re-resolving the images and resetting the
// displayed index to the first image.
func (g *Gallery) Select(variant *domain.Variant) {
	g.variantID = ""
	if variant != nil {
		g.variantID = variant.ID
	}
	g.images = Resolve(g.product, variant, g.placeholder)
	g.index = 0
}

func (g *Gallery) Images() []string {
	out := make([]string, len(g.images))
	copy(out, g.images)
	return out
}

func (g *Gallery) Index() int { return g.index }

func (g *Gallery) VariantID() string { return g.variantID }

func (g *Gallery) Current() string {
	return g.images[g.index]
}

// Show jumps to index i, clamped to the image range.
func (g *Gallery) Show(i int) {
	switch {
	case i < 0:
		g.index = 0
	case i >= len(g.images):
		g.index = len(g.images) - 1
	default:
		g.index = i
	}
}
