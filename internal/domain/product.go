package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Image struct {
	ID  string `json:"id,omitempty"`
	URL string `json:"url"`
}

type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Handle      string    `json:"handle"`
	Subtitle    string    `json:"subtitle,omitempty"`
	Description string    `json:"description,omitempty"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	Images      []Image   `json:"images"`
	Variants    []Variant `json:"variants"`
	CreatedAt   time.Time `json:"created_at"`
}

// Variant is a purchasable SKU. Images and Thumbnail are variant-specific and
// usually empty.
type Variant struct {
	ID                string                 `json:"id"`
	Title             string                 `json:"title"`
	SKU               string                 `json:"sku,omitempty"`
	ProductID         string                 `json:"product_id,omitempty"`
	Thumbnail         string                 `json:"thumbnail,omitempty"`
	Images            []Image                `json:"images,omitempty"`
	InventoryQuantity *int                   `json:"inventory_quantity,omitempty"`
	CalculatedPrice   *CalculatedPrice       `json:"calculated_price,omitempty"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
}

type CalculatedPrice struct {
	CalculatedAmount decimal.Decimal `json:"calculated_amount"`
	OriginalAmount   decimal.Decimal `json:"original_amount"`
	CurrencyCode     string          `json:"currency_code"`
}

// Variant looks up a variant by ID.
func (p *Product) Variant(id string) *Variant {
	if p == nil || id == "" {
		return nil
	}
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i]
		}
	}
	return nil
}

// ImageURLs flattens a list of images to their URLs.
func ImageURLs(images []Image) []string {
	urls := make([]string, 0, len(images))
	for _, img := range images {
		urls = append(urls, img.URL)
	}
	return urls
}

// ProductImages is the per-product entry used to decorate cart and order
// line items: the variant-specific image for each variant that has one, plus
// a product-level fallback.
type ProductImages struct {
	ProductID string            `json:"product_id"`
	Fallback  string            `json:"fallback,omitempty"`
	Variants  map[string]string `json:"variants,omitempty"`
}
