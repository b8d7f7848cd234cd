package cart

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/medusa"
)

// Backend is the commerce backend surface the cart lifecycle uses.
type Backend interface {
	CreateCart(ctx context.Context, in medusa.CreateCartInput) (*domain.Cart, error)
	GetCart(ctx context.Context, cartID string) (*domain.Cart, error)
	UpdateCart(ctx context.Context, cartID string, in medusa.UpdateCartInput) (*domain.Cart, error)
	AddLineItem(ctx context.Context, cartID, variantID string, quantity int) (*domain.Cart, error)
	UpdateLineItem(ctx context.Context, cartID, lineID string, quantity int) (*domain.Cart, error)
	DeleteLineItem(ctx context.Context, cartID, lineID string) (*domain.Cart, error)
	TransferCart(ctx context.Context, cartID string) (*domain.Cart, error)
	ListShippingOptions(ctx context.Context, cartID string) ([]domain.ShippingOption, error)
	AddShippingMethod(ctx context.Context, cartID, optionID string) (*domain.Cart, error)
}

type sessionRepo interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, s *domain.Session) error
	GetShipping(ctx context.Context, sessionID, cartID string) (*domain.ShippingSelection, error)
	SaveShipping(ctx context.Context, sel domain.ShippingSelection) error
	DeleteShipping(ctx context.Context, sessionID, cartID string) error
}

type cartLocker interface {
	Lock(key string) func()
}

type Service struct {
	backend  Backend
	sessions sessionRepo
	locks    cartLocker
	logger   *zap.Logger
}

func New(backend Backend, sessions sessionRepo, locks cartLocker, logger *zap.Logger) *Service {
	return &Service{backend: backend, sessions: sessions, locks: locks, logger: logging.OrNop(logger)}
}

// ContactInput is the checkout contact step.
type ContactInput struct {
	Email           string          `json:"email"`
	ShippingAddress *domain.Address `json:"shipping_address"`
	BillingAddress  *domain.Address `json:"billing_address,omitempty"`
}

// Current returns the session's cart, creating one on first use. A stored
// cart that the backend no longer knows, or that was already completed, is
// replaced by a fresh one. The cart region follows the session region.
func (s *Service) Current(ctx context.Context, sess *domain.Session) (*domain.Cart, error) {
	unlock := s.locks.Lock("session:" + sess.ID)
	defer unlock()

	if sess.CartID == "" {
		// Another request may have created the cart since sess was loaded.
		if stored, err := s.sessions.Get(ctx, sess.ID); err == nil && stored.CartID != "" {
			sess.CartID = stored.CartID
			if sess.RegionID == "" {
				sess.RegionID = stored.RegionID
			}
		}
	}

	if sess.CartID != "" {
		cart, err := s.backend.GetCart(ctx, sess.CartID)
		switch {
		case err == nil && !cart.Completed():
			return s.syncRegion(ctx, sess, cart)
		case err == nil:
			s.logger.Info("stored cart already completed, starting a new one", zap.String("cart_id", sess.CartID))
		case errors.Is(err, domain.ErrNotFound):
			s.logger.Info("stored cart missing, starting a new one", zap.String("cart_id", sess.CartID))
		default:
			return nil, err
		}
	}
	return s.create(ctx, sess)
}

func (s *Service) create(ctx context.Context, sess *domain.Session) (*domain.Cart, error) {
	cart, err := s.backend.CreateCart(ctx, medusa.CreateCartInput{RegionID: sess.RegionID})
	if err != nil {
		return nil, err
	}
	sess.CartID = cart.ID
	if sess.RegionID == "" {
		sess.RegionID = cart.RegionID
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *Service) syncRegion(ctx context.Context, sess *domain.Session, cart *domain.Cart) (*domain.Cart, error) {
	if sess.RegionID == "" || cart.RegionID == sess.RegionID {
		return cart, nil
	}
	if _, err := s.backend.UpdateCart(ctx, cart.ID, medusa.UpdateCartInput{RegionID: sess.RegionID}); err != nil {
		return nil, err
	}
	return s.backend.GetCart(ctx, cart.ID)
}

func (s *Service) AddItem(ctx context.Context, sess *domain.Session, variantID string, quantity int) (*domain.Cart, error) {
	variantID = strings.TrimSpace(variantID)
	if variantID == "" {
		return nil, domain.Invalid("variant_id required")
	}
	if quantity <= 0 {
		return nil, domain.Invalid("quantity must be positive")
	}
	cart, err := s.Current(ctx, sess)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, cart.ID, func(ctx context.Context) error {
		_, err := s.backend.AddLineItem(ctx, cart.ID, variantID, quantity)
		return err
	})
}

// UpdateItem sets a line quantity. Zero removes the line.
func (s *Service) UpdateItem(ctx context.Context, sess *domain.Session, lineID string, quantity int) (*domain.Cart, error) {
	lineID = strings.TrimSpace(lineID)
	if lineID == "" {
		return nil, domain.Invalid("line item id required")
	}
	if quantity < 0 {
		return nil, domain.Invalid("quantity must not be negative")
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, sess, lineID)
	}
	cartID, err := requireCart(sess)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, cartID, func(ctx context.Context) error {
		_, err := s.backend.UpdateLineItem(ctx, cartID, lineID, quantity)
		return err
	})
}

func (s *Service) RemoveItem(ctx context.Context, sess *domain.Session, lineID string) (*domain.Cart, error) {
	lineID = strings.TrimSpace(lineID)
	if lineID == "" {
		return nil, domain.Invalid("line item id required")
	}
	cartID, err := requireCart(sess)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, cartID, func(ctx context.Context) error {
		_, err := s.backend.DeleteLineItem(ctx, cartID, lineID)
		return err
	})
}

// SetRegion stores the visitor's region and moves the cart, if any, to it.
func (s *Service) SetRegion(ctx context.Context, sess *domain.Session, regionID string) (*domain.Cart, error) {
	regionID = strings.TrimSpace(regionID)
	if regionID == "" {
		return nil, domain.Invalid("region_id required")
	}
	sess.RegionID = regionID
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	if sess.CartID == "" {
		return nil, nil
	}
	return s.mutate(ctx, sess.CartID, func(ctx context.Context) error {
		_, err := s.backend.UpdateCart(ctx, sess.CartID, medusa.UpdateCartInput{RegionID: regionID})
		return err
	})
}

func (s *Service) UpdateContact(ctx context.Context, sess *domain.Session, in ContactInput) (*domain.Cart, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.Invalid("valid email required")
	}
	cartID, err := requireCart(sess)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, cartID, func(ctx context.Context) error {
		_, err := s.backend.UpdateCart(ctx, cartID, medusa.UpdateCartInput{
			Email:           email,
			ShippingAddress: in.ShippingAddress,
			BillingAddress:  in.BillingAddress,
		})
		return err
	})
}

func (s *Service) ShippingOptions(ctx context.Context, sess *domain.Session) ([]domain.ShippingOption, error) {
	cartID, err := requireCart(sess)
	if err != nil {
		return nil, err
	}
	return s.backend.ListShippingOptions(ctx, cartID)
}

// SelectShipping records optionID as a provisional selection, asks the
// backend to attach it, then confirms it. When the backend refuses, the
// previously confirmed selection (or none) is restored.
func (s *Service) SelectShipping(ctx context.Context, sess *domain.Session, optionID string) (*domain.Cart, *domain.ShippingSelection, error) {
	optionID = strings.TrimSpace(optionID)
	if optionID == "" {
		return nil, nil, domain.Invalid("option_id required")
	}
	cartID, err := requireCart(sess)
	if err != nil {
		return nil, nil, err
	}
	unlock := s.locks.Lock(cartID)
	defer unlock()

	previous, err := s.sessions.GetShipping(ctx, sess.ID, cartID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, err
	}
	sel := domain.ShippingSelection{SessionID: sess.ID, CartID: cartID, OptionID: optionID, State: domain.SelectionProvisional}
	if err := s.sessions.SaveShipping(ctx, sel); err != nil {
		return nil, nil, err
	}

	if _, err := s.backend.AddShippingMethod(ctx, cartID, optionID); err != nil {
		s.revertShipping(ctx, sess.ID, cartID, previous)
		return nil, nil, err
	}

	sel.State = domain.SelectionConfirmed
	if err := s.sessions.SaveShipping(ctx, sel); err != nil {
		return nil, nil, err
	}
	cart, err := s.backend.GetCart(ctx, cartID)
	if err != nil {
		return nil, nil, err
	}
	return cart, &sel, nil
}

func (s *Service) revertShipping(ctx context.Context, sessionID, cartID string, previous *domain.ShippingSelection) {
	var err error
	if previous != nil && previous.State == domain.SelectionConfirmed {
		err = s.sessions.SaveShipping(ctx, *previous)
	} else {
		err = s.sessions.DeleteShipping(ctx, sessionID, cartID)
	}
	if err != nil {
		s.logger.Warn("restore shipping selection failed", zap.String("cart_id", cartID), zap.Error(err))
	}
}

// Selection reports the shipping choice to show for cart. The cart's own
// shipping method wins over anything stored; a stored provisional choice
// without a matching method is still shown as provisional.
func (s *Service) Selection(ctx context.Context, sess *domain.Session, cart *domain.Cart) (*domain.ShippingSelection, error) {
	if cart == nil {
		return nil, nil
	}
	stored, err := s.sessions.GetShipping(ctx, sess.ID, cart.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	var onCart string
	if n := len(cart.ShippingMethods); n > 0 {
		onCart = cart.ShippingMethods[n-1].ShippingOptionID
	}

	switch {
	case stored != nil && stored.OptionID == onCart:
		stored.State = domain.SelectionConfirmed
		return stored, nil
	case stored != nil && stored.State == domain.SelectionProvisional:
		return stored, nil
	case onCart != "":
		return &domain.ShippingSelection{SessionID: sess.ID, CartID: cart.ID, OptionID: onCart, State: domain.SelectionConfirmed}, nil
	default:
		return nil, nil
	}
}

// Transfer hands the session's guest cart to the signed-in customer whose
// token is carried by ctx.
func (s *Service) Transfer(ctx context.Context, sess *domain.Session) (*domain.Cart, error) {
	if sess.CartID == "" {
		return nil, nil
	}
	return s.mutate(ctx, sess.CartID, func(ctx context.Context) error {
		_, err := s.backend.TransferCart(ctx, sess.CartID)
		return err
	})
}

// Forget drops the cart from the session, e.g. once it became an order.
func (s *Service) Forget(ctx context.Context, sess *domain.Session) error {
	if sess.CartID == "" {
		return nil
	}
	if err := s.sessions.DeleteShipping(ctx, sess.ID, sess.CartID); err != nil {
		s.logger.Warn("drop shipping selection failed", zap.String("cart_id", sess.CartID), zap.Error(err))
	}
	sess.CartID = ""
	return s.sessions.Save(ctx, sess)
}

// mutate runs fn under the cart lock and returns the cart as the backend
// reports it afterwards. Mutation responses are never trusted for totals.
func (s *Service) mutate(ctx context.Context, cartID string, fn func(context.Context) error) (*domain.Cart, error) {
	unlock := s.locks.Lock(cartID)
	defer unlock()
	if err := fn(ctx); err != nil {
		return nil, err
	}
	return s.backend.GetCart(ctx, cartID)
}

func requireCart(sess *domain.Session) (string, error) {
	if sess == nil || sess.CartID == "" {
		return "", domain.ErrNotFound
	}
	return sess.CartID, nil
}
