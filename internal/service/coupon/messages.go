package coupon

import "strings"

const (
	MsgExpired     = "This code has expired."
	MsgNotFound    = "This code does not exist."
	MsgInvalid     = "This code is not valid."
	MsgTotalTooLow = "Your cart total is too low for this code."
	MsgApplied     = "Code applied."
	msgUnknown     = "We couldn't apply this code."
)

var messageRules = []struct {
	needles []string
	message string
}{
	{[]string{"expired"}, MsgExpired},
	{[]string{"does not exist", "not found", "doesn't exist"}, MsgNotFound},
	{[]string{"minimum", "subtotal", "too low", "threshold"}, MsgTotalTooLow},
	{[]string{"invalid", "not valid"}, MsgInvalid},
}

// FriendlyPromotionError maps a backend rejection message onto a short
// customer-facing phrase. Unrecognised messages are returned unchanged.
func FriendlyPromotionError(raw string) string {
	lower := strings.ToLower(raw)
	for _, rule := range messageRules {
		for _, needle := range rule.needles {
			if strings.Contains(lower, needle) {
				return rule.message
			}
		}
	}
	if strings.TrimSpace(raw) == "" {
		return msgUnknown
	}
	return raw
}
