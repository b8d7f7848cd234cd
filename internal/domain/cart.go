package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the storefront's cached copy of a backend-owned cart. Totals are
// computed by the backend and must be re-fetched after every mutation.
type Cart struct {
	ID                string             `json:"id"`
	RegionID          string             `json:"region_id,omitempty"`
	CustomerID        string             `json:"customer_id,omitempty"`
	Email             string             `json:"email,omitempty"`
	CurrencyCode      string             `json:"currency_code"`
	Items             []LineItem         `json:"items"`
	Promotions        []Promotion        `json:"promotions"`
	ShippingMethods   []ShippingMethod   `json:"shipping_methods"`
	ShippingAddress   *Address           `json:"shipping_address,omitempty"`
	PaymentCollection *PaymentCollection `json:"payment_collection,omitempty"`
	Subtotal          decimal.Decimal    `json:"subtotal"`
	DiscountTotal     decimal.Decimal    `json:"discount_total"`
	ShippingTotal     decimal.Decimal    `json:"shipping_total"`
	TaxTotal          decimal.Decimal    `json:"tax_total"`
	Total             decimal.Decimal    `json:"total"`
	CompletedAt       *time.Time         `json:"completed_at,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
}

type LineItem struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Subtitle  string          `json:"subtitle,omitempty"`
	Thumbnail string          `json:"thumbnail,omitempty"`
	VariantID string          `json:"variant_id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

// Promotion is an applied promotion code as reported by the backend.
type Promotion struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

type ShippingMethod struct {
	ID               string          `json:"id"`
	ShippingOptionID string          `json:"shipping_option_id"`
	Name             string          `json:"name,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
}

type Address struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Address1    string `json:"address_1,omitempty"`
	Address2    string `json:"address_2,omitempty"`
	City        string `json:"city,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	Province    string `json:"province,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// ItemCount sums line item quantities.
func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

func (c *Cart) HasPromotions() bool {
	return c != nil && len(c.Promotions) > 0
}

// PromotionCodes lists applied codes in backend order, skipping automatic
// promotions that carry no code.
func (c *Cart) PromotionCodes() []string {
	if c == nil {
		return nil
	}
	codes := make([]string, 0, len(c.Promotions))
	for _, p := range c.Promotions {
		if p.Code != "" {
			codes = append(codes, p.Code)
		}
	}
	return codes
}

func (c *Cart) Completed() bool {
	return c != nil && c.CompletedAt != nil
}

// ProductIDs returns the distinct product IDs referenced by the cart's line items.
func (c *Cart) ProductIDs() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(c.Items))
	ids := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		if item.ProductID == "" {
			continue
		}
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}
