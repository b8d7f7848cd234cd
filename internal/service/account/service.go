// Package account handles customer sign-in state on the storefront session.
package account

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/medusa"
)

type Backend interface {
	Login(ctx context.Context, email, password string) (string, error)
	GetCustomer(ctx context.Context) (*domain.Customer, error)
}

type sessionSaver interface {
	Save(ctx context.Context, s *domain.Session) error
}

type cartTransferer interface {
	Transfer(ctx context.Context, sess *domain.Session) (*domain.Cart, error)
}

type Service struct {
	backend  Backend
	sessions sessionSaver
	carts    cartTransferer
	logger   *zap.Logger
}

func New(backend Backend, sessions sessionSaver, carts cartTransferer, logger *zap.Logger) *Service {
	return &Service{backend: backend, sessions: sessions, carts: carts, logger: logging.OrNop(logger)}
}

// Login signs the customer in, stores the bearer token on the session and
// moves the guest cart, if any, to the customer. A failed transfer is logged
// and does not fail the login.
func (s *Service) Login(ctx context.Context, sess *domain.Session, email, password string) (*domain.Customer, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.Invalid("email and password required")
	}
	token, err := s.backend.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	ctx = medusa.WithToken(ctx, token)
	customer, err := s.backend.GetCustomer(ctx)
	if err != nil {
		return nil, err
	}

	sess.CustomerToken = token
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	if _, err := s.carts.Transfer(ctx, sess); err != nil {
		s.logger.Warn("cart transfer after login failed", zap.String("cart_id", sess.CartID), zap.Error(err))
	}
	return customer, nil
}

// Logout forgets the token and the cart, so the next visitor on a shared
// device starts clean.
func (s *Service) Logout(ctx context.Context, sess *domain.Session) error {
	sess.CustomerToken = ""
	sess.CartID = ""
	sess.CouponResolvedCartID = ""
	return s.sessions.Save(ctx, sess)
}

func (s *Service) Me(ctx context.Context, sess *domain.Session) (*domain.Customer, error) {
	if !sess.Authenticated() {
		return nil, domain.ErrUnauthorized
	}
	return s.backend.GetCustomer(medusa.WithToken(ctx, sess.CustomerToken))
}
