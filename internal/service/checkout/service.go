// Package checkout turns a cart into an order: payment session setup
// through the commerce backend, then completion.
package checkout

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/medusa"
)

// DefaultProvider is the backend's Stripe payment provider id.
const DefaultProvider = "pp_stripe_stripe"

// ErrNoClientSecret is returned when the provider session carries no secret
// the browser could confirm the payment with.
var ErrNoClientSecret = errors.New("payment session has no client secret")

type Backend interface {
	GetCart(ctx context.Context, cartID string) (*domain.Cart, error)
	CreatePaymentCollection(ctx context.Context, cartID string) (*domain.PaymentCollection, error)
	InitPaymentSession(ctx context.Context, collectionID, providerID string) (*domain.PaymentCollection, error)
	CompleteCart(ctx context.Context, cartID string) (*domain.Order, error)
}

type cartForgetter interface {
	Forget(ctx context.Context, sess *domain.Session) error
}

type cartLocker interface {
	Lock(key string) func()
}

type Service struct {
	backend  Backend
	carts    cartForgetter
	locks    cartLocker
	provider string
	logger   *zap.Logger
}

func New(backend Backend, carts cartForgetter, locks cartLocker, provider string, logger *zap.Logger) *Service {
	if provider == "" {
		provider = DefaultProvider
	}
	return &Service{backend: backend, carts: carts, locks: locks, provider: provider, logger: logging.OrNop(logger)}
}

// Payment is what the browser needs to confirm the payment with Stripe.
type Payment struct {
	ClientSecret string `json:"client_secret"`
	CollectionID string `json:"payment_collection_id"`
	SessionID    string `json:"payment_session_id"`
	ProviderID   string `json:"provider_id"`
}

// StartPayment makes sure the cart has a payment collection and a provider
// session, and returns the client secret for it.
func (s *Service) StartPayment(ctx context.Context, sess *domain.Session) (*Payment, error) {
	if sess.CartID == "" {
		return nil, domain.ErrNotFound
	}
	unlock := s.locks.Lock(sess.CartID)
	defer unlock()

	cart, err := s.backend.GetCart(ctx, sess.CartID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, domain.Invalid("cart is empty")
	}
	if cart.Email == "" {
		return nil, domain.Invalid("contact details required")
	}

	collectionID := ""
	if cart.PaymentCollection != nil {
		collectionID = cart.PaymentCollection.ID
	}
	if collectionID == "" {
		pc, err := s.backend.CreatePaymentCollection(ctx, cart.ID)
		if err != nil {
			return nil, err
		}
		collectionID = pc.ID
	}

	pc, err := s.backend.InitPaymentSession(ctx, collectionID, s.provider)
	if err != nil {
		return nil, err
	}
	for _, ps := range pc.PaymentSessions {
		if ps.ProviderID != s.provider {
			continue
		}
		secret := ps.ClientSecret()
		if secret == "" {
			return nil, ErrNoClientSecret
		}
		return &Payment{ClientSecret: secret, CollectionID: pc.ID, SessionID: ps.ID, ProviderID: ps.ProviderID}, nil
	}
	return nil, ErrNoClientSecret
}

// Complete places the order for the session's cart. On success the cart is
// dropped from the session so the next visit starts a new one. A refusal is
// returned as *medusa.CompletionError carrying the backend's message.
func (s *Service) Complete(ctx context.Context, sess *domain.Session) (*domain.Order, error) {
	if sess.CartID == "" {
		return nil, domain.ErrNotFound
	}
	unlock := s.locks.Lock(sess.CartID)
	order, err := s.backend.CompleteCart(ctx, sess.CartID)
	unlock()
	if err != nil {
		var ce *medusa.CompletionError
		if errors.As(err, &ce) {
			s.logger.Info("cart completion refused", zap.String("cart_id", sess.CartID), zap.String("reason", ce.Message))
		}
		return nil, err
	}

	s.logger.Info("order placed", zap.String("order_id", order.ID), zap.String("cart_id", sess.CartID))
	if err := s.carts.Forget(ctx, sess); err != nil {
		s.logger.Warn("clear cart from session failed", zap.String("session_id", sess.ID), zap.Error(err))
	}
	return order, nil
}
