package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID            string          `json:"id"`
	DisplayID     int             `json:"display_id"`
	Email         string          `json:"email"`
	Status        string          `json:"status"`
	CurrencyCode  string          `json:"currency_code"`
	Items         []LineItem      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
	ShippingTotal decimal.Decimal `json:"shipping_total"`
	TaxTotal      decimal.Decimal `json:"tax_total"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     time.Time       `json:"created_at"`
}

type Region struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CurrencyCode string    `json:"currency_code"`
	Countries    []Country `json:"countries"`
}

type Country struct {
	ISO2        string `json:"iso_2"`
	DisplayName string `json:"display_name"`
}

// HasCountry reports whether the region serves the given ISO-2 country code.
func (r Region) HasCountry(code string) bool {
	for _, c := range r.Countries {
		if strings.EqualFold(c.ISO2, code) {
			return true
		}
	}
	return false
}

type ShippingOption struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type PaymentCollection struct {
	ID              string           `json:"id"`
	Amount          decimal.Decimal  `json:"amount"`
	CurrencyCode    string           `json:"currency_code"`
	Status          string           `json:"status,omitempty"`
	PaymentSessions []PaymentSession `json:"payment_sessions"`
}

type PaymentSession struct {
	ID         string                 `json:"id"`
	ProviderID string                 `json:"provider_id"`
	Status     string                 `json:"status,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// ClientSecret returns the payment processor client secret, if present.
func (s PaymentSession) ClientSecret() string {
	if s.Data == nil {
		return ""
	}
	v, _ := s.Data["client_secret"].(string)
	return v
}
