package domain

import (
	"strings"
	"time"
)

// CouponsMetadataKey is the customer metadata key holding collected coupon codes.
const CouponsMetadataKey = "collected_coupons"

// Customer mirrors the backend customer profile. Metadata is an open
// key/value bag the storefront uses for collected coupon codes.
type Customer struct {
	ID        string                 `json:"id"`
	Email     string                 `json:"email"`
	FirstName string                 `json:"first_name,omitempty"`
	LastName  string                 `json:"last_name,omitempty"`
	Phone     string                 `json:"phone,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// CollectedCoupons returns the customer's stored coupon codes in list order.
// Blank entries and exact repeats are dropped since uniqueness is only
// enforced here.
func (c *Customer) CollectedCoupons() []string {
	if c == nil || c.Metadata == nil {
		return nil
	}
	var raw []string
	switch v := c.Metadata[CouponsMetadataKey].(type) {
	case []string:
		raw = v
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	case string:
		// Older profiles stored a comma separated string.
		raw = strings.Split(v, ",")
	}
	seen := make(map[string]struct{}, len(raw))
	codes := make([]string, 0, len(raw))
	for _, code := range raw {
		code = TrimCode(code)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes
}

// WithCoupon returns a copy of the metadata with code appended to the
// collected list. The boolean is false when the code was already present.
func (c *Customer) WithCoupon(code string) (map[string]interface{}, bool) {
	code = TrimCode(code)
	existing := c.CollectedCoupons()
	out := make(map[string]interface{}, len(c.Metadata)+1)
	for k, v := range c.Metadata {
		out[k] = v
	}
	for _, have := range existing {
		if have == code {
			out[CouponsMetadataKey] = existing
			return out, false
		}
	}
	out[CouponsMetadataKey] = append(existing, code)
	return out, true
}

// TrimCode strips surrounding whitespace from a promotion code. Codes are
// otherwise opaque: case and content are the backend's to judge.
func TrimCode(code string) string {
	return strings.TrimSpace(code)
}
