package coupon

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logging"
)

// CartPromotions is the subset of the commerce backend the coupon flows need.
type CartPromotions interface {
	ApplyPromotions(ctx context.Context, cartID string, codes ...string) (*domain.Cart, error)
	RemovePromotions(ctx context.Context, cartID string, codes ...string) (*domain.Cart, error)
}

// Attempt records the outcome of one trial application.
type Attempt struct {
	Code     string
	Discount decimal.Decimal
	Err      error
}

// Result is the outcome of a best-coupon resolution.
type Result struct {
	// Cart is the latest cart state known after resolution.
	Cart     *domain.Cart
	Code     string
	Discount decimal.Decimal
	Attempts []Attempt
	// Ran is false when a precondition failed and nothing was called.
	Ran bool
}

// Applied reports whether a code ended up on the cart.
func (r Result) Applied() bool {
	return r.Code != ""
}

// Resolver picks the collected code with the largest discount and leaves
// only that code applied.
type Resolver struct {
	carts  CartPromotions
	logger *zap.Logger
}

func NewResolver(carts CartPromotions, logger *zap.Logger) *Resolver {
	return &Resolver{carts: carts, logger: logging.OrNop(logger)}
}

// Resolve tries each candidate in order, one at a time: apply, read the
// discount, remove. Codes must never be tried concurrently because each
// discount is computed from the cart state left by the previous trial.
// Individual failures are logged and skipped. When a precondition fails the
// cart is returned untouched and no backend call is made.
//
// A trial code whose removal fails stays pending. It is retried before the
// next trial, and no further code is scored while it is on the cart, so at
// most one code is applied at any time.
func (r *Resolver) Resolve(ctx context.Context, cart *domain.Cart, candidates []string) Result {
	res := Result{Cart: cart}
	if cart == nil || cart.ID == "" || len(candidates) == 0 || cart.HasPromotions() {
		return res
	}
	res.Ran = true

	log := r.logger.With(zap.String("cart_id", cart.ID))
	var (
		bestCode     string
		bestDiscount = decimal.Zero
		pending      string
	)

	for _, code := range candidates {
		if pending != "" {
			if !r.remove(ctx, log, &res, pending) {
				log.Warn("stopping coupon trials, previous code still applied", zap.String("code", pending))
				break
			}
			pending = ""
		}

		applied, err := r.carts.ApplyPromotions(ctx, cart.ID, code)
		if err != nil {
			log.Info("coupon trial rejected", zap.String("code", code), zap.Error(err))
			res.Attempts = append(res.Attempts, Attempt{Code: code, Err: err})
			continue
		}
		res.Cart = applied
		discount := applied.DiscountTotal
		res.Attempts = append(res.Attempts, Attempt{Code: code, Discount: discount})
		if discount.GreaterThan(bestDiscount) {
			bestDiscount = discount
			bestCode = code
		}

		if !r.remove(ctx, log, &res, code) {
			pending = code
		}
	}

	switch {
	case pending != "" && pending == bestCode:
		// The winner never left the cart.
		res.Code = bestCode
		res.Discount = res.Cart.DiscountTotal
		log.Info("best coupon applied", zap.String("code", bestCode), zap.String("discount", res.Discount.String()))
		return res
	case pending != "":
		if !r.remove(ctx, log, &res, pending) {
			// Applying the winner on top would stack two codes; report what
			// the cart actually carries.
			res.Code = pending
			res.Discount = res.Cart.DiscountTotal
			return res
		}
	}

	if bestCode == "" {
		log.Debug("no collected coupon produced a discount", zap.Int("candidates", len(candidates)))
		return res
	}

	final, err := r.carts.ApplyPromotions(ctx, cart.ID, bestCode)
	if err != nil {
		log.Warn("applying best coupon failed", zap.String("code", bestCode), zap.Error(err))
		return res
	}
	res.Cart = final
	res.Code = bestCode
	res.Discount = final.DiscountTotal
	log.Info("best coupon applied", zap.String("code", bestCode), zap.String("discount", final.DiscountTotal.String()))
	return res
}

func (r *Resolver) remove(ctx context.Context, log *zap.Logger, res *Result, code string) bool {
	removed, err := r.carts.RemovePromotions(ctx, res.Cart.ID, code)
	if err != nil {
		log.Warn("coupon trial cleanup failed", zap.String("code", code), zap.Error(err))
		return false
	}
	res.Cart = removed
	return true
}
