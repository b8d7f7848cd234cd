package coupon

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/medusa"
)

// fakeBackend keeps one cart and computes discounts the way the backend
// would: as a side effect of which codes are applied.
type fakeBackend struct {
	mu        sync.Mutex
	cart      domain.Cart
	discounts map[string]int64
	rejects   map[string]string
	removeErr error
	// removeFails counts remaining failed removals per code; -1 fails forever.
	removeFails map[string]int
	calls       []string
}

func newFakeBackend(discounts map[string]int64) *fakeBackend {
	return &fakeBackend{
		cart: domain.Cart{
			ID:           "cart_1",
			CurrencyCode: "usd",
			Items: []domain.LineItem{
				{ID: "li_1", VariantID: "var_1", ProductID: "prod_1", Quantity: 2, UnitPrice: decimal.NewFromInt(300)},
				{ID: "li_2", VariantID: "var_2", ProductID: "prod_2", Quantity: 1, UnitPrice: decimal.NewFromInt(400)},
			},
			Subtotal: decimal.NewFromInt(1000),
			Total:    decimal.NewFromInt(1000),
		},
		discounts: discounts,
		rejects:   map[string]string{},
	}
}

func (f *fakeBackend) snapshot() *domain.Cart {
	c := f.cart
	c.Items = append([]domain.LineItem(nil), f.cart.Items...)
	c.Promotions = append([]domain.Promotion(nil), f.cart.Promotions...)
	return &c
}

func (f *fakeBackend) recompute() {
	total := decimal.Zero
	for _, p := range f.cart.Promotions {
		total = total.Add(decimal.NewFromInt(f.discounts[p.Code]))
	}
	f.cart.DiscountTotal = total
	f.cart.Total = f.cart.Subtotal.Sub(total)
}

func (f *fakeBackend) ApplyPromotions(_ context.Context, cartID string, codes ...string) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "apply:"+strings.Join(codes, ","))
	for _, code := range codes {
		if msg, ok := f.rejects[code]; ok {
			return nil, &medusa.APIError{Status: 400, Type: "invalid_data", Message: msg}
		}
		if _, ok := f.discounts[code]; !ok {
			return nil, &medusa.APIError{Status: 400, Type: "invalid_data", Message: "The promotion code " + code + " is invalid"}
		}
	}
	for _, code := range codes {
		already := false
		for _, p := range f.cart.Promotions {
			if p.Code == code {
				already = true
			}
		}
		if !already {
			f.cart.Promotions = append(f.cart.Promotions, domain.Promotion{ID: "promo_" + code, Code: code})
		}
	}
	f.recompute()
	return f.snapshot(), nil
}

func (f *fakeBackend) RemovePromotions(_ context.Context, cartID string, codes ...string) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "remove:"+strings.Join(codes, ","))
	if f.removeErr != nil {
		return nil, f.removeErr
	}
	for _, code := range codes {
		if n := f.removeFails[code]; n != 0 {
			if n > 0 {
				f.removeFails[code] = n - 1
			}
			return nil, errors.New("remove " + code + ": connection reset")
		}
	}
	kept := f.cart.Promotions[:0]
	for _, p := range f.cart.Promotions {
		drop := false
		for _, code := range codes {
			if p.Code == code {
				drop = true
			}
		}
		if !drop {
			kept = append(kept, p)
		}
	}
	f.cart.Promotions = kept
	f.recompute()
	return f.snapshot(), nil
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type stubCustomers struct {
	customer  *domain.Customer
	getErr    error
	updateErr error
	gets      int
	updates   int
	lastMeta  map[string]interface{}
}

func (s *stubCustomers) GetCustomer(_ context.Context) (*domain.Customer, error) {
	s.gets++
	return s.customer, s.getErr
}

func (s *stubCustomers) UpdateCustomerMetadata(_ context.Context, metadata map[string]interface{}) (*domain.Customer, error) {
	s.updates++
	s.lastMeta = metadata
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	updated := *s.customer
	updated.Metadata = metadata
	s.customer = &updated
	return &updated, nil
}

type stubClaims struct {
	claimed map[string]bool
	err     error
	calls   int
}

func (s *stubClaims) ClaimCouponResolution(_ context.Context, sessionID, cartID string) (bool, error) {
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	if s.claimed == nil {
		s.claimed = map[string]bool{}
	}
	key := sessionID + "/" + cartID
	if s.claimed[key] {
		return false, nil
	}
	s.claimed[key] = true
	return true, nil
}

type noopLocker struct{ locked []string }

func (n *noopLocker) Lock(key string) func() {
	n.locked = append(n.locked, key)
	return func() {}
}

func customerWith(codes ...interface{}) *domain.Customer {
	return &domain.Customer{ID: "cus_1", Metadata: map[string]interface{}{domain.CouponsMetadataKey: codes}}
}
