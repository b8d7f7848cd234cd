// Package imagery decides which images to show for a product, a selected
// variant, and cart or order line items.
package imagery

import (
	"strings"

	"storefront/internal/domain"
)

// Resolve returns the ordered, de-duplicated image URLs for product with
// variant selected. Priority: variant thumbnail, variant images, product
// images, then the product thumbnail only if nothing else matched. An empty
// result falls back to placeholder.
func Resolve(product *domain.Product, variant *domain.Variant, placeholder string) []string {
	var list urlList
	if variant != nil {
		list.add(variant.Thumbnail)
		for _, img := range variant.Images {
			list.add(img.URL)
		}
	}
	if product != nil {
		for _, img := range product.Images {
			list.add(img.URL)
		}
		if list.empty() {
			list.add(product.Thumbnail)
		}
	}
	if list.empty() {
		return []string{placeholder}
	}
	return list.urls
}

// VariantImage is the variant's own image, if it has one.
func VariantImage(v domain.Variant) string {
	if u := strings.TrimSpace(v.Thumbnail); u != "" {
		return u
	}
	for _, img := range v.Images {
		if u := strings.TrimSpace(img.URL); u != "" {
			return u
		}
	}
	return ""
}

// ProductFallback is the product-level image used when a variant has none.
func ProductFallback(p domain.Product) string {
	if u := strings.TrimSpace(p.Thumbnail); u != "" {
		return u
	}
	for _, img := range p.Images {
		if u := strings.TrimSpace(img.URL); u != "" {
			return u
		}
	}
	return ""
}

type urlList struct {
	urls []string
	seen map[string]struct{}
}

func (l *urlList) add(u string) {
	u = strings.TrimSpace(u)
	if u == "" {
		return
	}
	if l.seen == nil {
		l.seen = make(map[string]struct{})
	}
	if _, dup := l.seen[u]; dup {
		return
	}
	l.seen[u] = struct{}{}
	l.urls = append(l.urls, u)
}

func (l *urlList) empty() bool {
	return len(l.urls) == 0
}
