package domain

import "time"

// Session is the server-side replacement for the browser's local storage:
// one row per storefront visitor, addressed by the session cookie.
type Session struct {
	ID                   string    `json:"id"`
	CartID               string    `json:"cart_id,omitempty"`
	RegionID             string    `json:"region_id,omitempty"`
	CustomerToken        string    `json:"-"`
	AgeVerified          bool      `json:"age_verified"`
	ExitIntentDismissed  bool      `json:"exit_intent_dismissed"`
	CouponResolvedCartID string    `json:"-"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (s *Session) Authenticated() bool {
	return s != nil && s.CustomerToken != ""
}

type SelectionState string

const (
	SelectionProvisional SelectionState = "provisional"
	SelectionConfirmed   SelectionState = "confirmed"
)

// ShippingSelection records the shipping option a visitor picked for a cart.
// A provisional selection is shown immediately and becomes confirmed once the
// backend accepts the shipping method.
type ShippingSelection struct {
	SessionID string         `json:"-"`
	CartID    string         `json:"cart_id"`
	OptionID  string         `json:"option_id"`
	State     SelectionState `json:"state"`
	UpdatedAt time.Time      `json:"updated_at"`
}
