// Package coupon applies promotion codes to carts: the interactive
// apply/remove flow and the automatic best-coupon pick for signed-in
// customers.
package coupon

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/medusa"
)

// Customers reads and writes the signed-in customer's profile.
type Customers interface {
	GetCustomer(ctx context.Context) (*domain.Customer, error)
	UpdateCustomerMetadata(ctx context.Context, metadata map[string]interface{}) (*domain.Customer, error)
}

type sessionClaims interface {
	ClaimCouponResolution(ctx context.Context, sessionID, cartID string) (bool, error)
}

type cartLocker interface {
	Lock(key string) func()
}

// Service wires the coupon flows to the backend and the session store.
type Service struct {
	carts     CartPromotions
	customers Customers
	sessions  sessionClaims
	locks     cartLocker
	resolver  *Resolver
	logger    *zap.Logger
}

func New(carts CartPromotions, customers Customers, sessions sessionClaims, locks cartLocker, logger *zap.Logger) *Service {
	logger = logging.OrNop(logger)
	return &Service{
		carts:     carts,
		customers: customers,
		sessions:  sessions,
		locks:     locks,
		resolver:  NewResolver(carts, logger),
		logger:    logger,
	}
}

// Outcome is what the interactive apply flow shows the customer.
type Outcome struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Cart    *domain.Cart `json:"cart,omitempty"`
}

// Apply adds code to the cart. Backend rejections are not errors: they come
// back as an unsuccessful Outcome with a friendly message.
func (s *Service) Apply(ctx context.Context, cartID, code string) Outcome {
	code = domain.TrimCode(code)
	if code == "" {
		return Outcome{Message: "Please enter a code."}
	}
	unlock := s.locks.Lock(cartID)
	defer unlock()

	cart, err := s.carts.ApplyPromotions(ctx, cartID, code)
	if err != nil {
		s.logger.Info("coupon rejected", zap.String("cart_id", cartID), zap.String("code", code), zap.Error(err))
		return Outcome{Message: FriendlyPromotionError(medusa.Message(err))}
	}
	if !hasCode(cart, code) {
		return Outcome{Message: MsgInvalid, Cart: cart}
	}
	return Outcome{Success: true, Message: MsgApplied, Cart: cart}
}

// Remove takes code off the cart. Failures propagate to the caller.
func (s *Service) Remove(ctx context.Context, cartID, code string) (*domain.Cart, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.Invalid("code required")
	}
	unlock := s.locks.Lock(cartID)
	defer unlock()
	return s.carts.RemovePromotions(ctx, cartID, code)
}

// AutoApply runs the best-coupon resolver at most once per cart per session,
// and only for a signed-in customer with collected codes and a cart without
// promotions. It never fails: problems are logged and the input cart returned.
func (s *Service) AutoApply(ctx context.Context, sess *domain.Session, cart *domain.Cart) Result {
	skip := Result{Cart: cart}
	if cart == nil || cart.ID == "" || !sess.Authenticated() || cart.HasPromotions() {
		return skip
	}
	if sess.CouponResolvedCartID == cart.ID {
		return skip
	}

	ctx = medusa.WithToken(ctx, sess.CustomerToken)
	customer, err := s.customers.GetCustomer(ctx)
	if err != nil {
		s.logger.Warn("auto coupon: load customer failed", zap.Error(err))
		return skip
	}
	codes := customer.CollectedCoupons()
	if len(codes) == 0 {
		return skip
	}

	claimed, err := s.sessions.ClaimCouponResolution(ctx, sess.ID, cart.ID)
	if err != nil {
		s.logger.Warn("auto coupon: claim failed", zap.String("session_id", sess.ID), zap.Error(err))
		return skip
	}
	if !claimed {
		return skip
	}
	sess.CouponResolvedCartID = cart.ID

	unlock := s.locks.Lock(cart.ID)
	defer unlock()
	return s.resolver.Resolve(ctx, cart, codes)
}

// Collected lists the signed-in customer's stored codes.
func (s *Service) Collected(ctx context.Context) ([]string, error) {
	customer, err := s.customers.GetCustomer(ctx)
	if err != nil {
		return nil, err
	}
	return customer.CollectedCoupons(), nil
}

// Collect stores code on the signed-in customer's profile. Saving a code the
// customer already holds is a no-op.
func (s *Service) Collect(ctx context.Context, code string) ([]string, error) {
	if domain.TrimCode(code) == "" {
		return nil, domain.ErrInvalidInput
	}
	customer, err := s.customers.GetCustomer(ctx)
	if err != nil {
		return nil, err
	}
	metadata, added := customer.WithCoupon(code)
	if !added {
		return customer.CollectedCoupons(), nil
	}
	updated, err := s.customers.UpdateCustomerMetadata(ctx, metadata)
	if err != nil {
		return nil, err
	}
	return updated.CollectedCoupons(), nil
}

func hasCode(cart *domain.Cart, code string) bool {
	for _, c := range cart.PromotionCodes() {
		if strings.EqualFold(c, code) {
			return true
		}
	}
	return false
}
