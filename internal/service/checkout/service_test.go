package checkout

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/keylock"
	"storefront/internal/medusa"
)

type stubBackend struct {
	cart             *domain.Cart
	getErr           error
	created          *domain.PaymentCollection
	createCalls      int
	initResult       *domain.PaymentCollection
	initErr          error
	lastCollectionID string
	lastProvider     string
	order            *domain.Order
	completeErr      error
}

func (s *stubBackend) GetCart(_ context.Context, _ string) (*domain.Cart, error) {
	return s.cart, s.getErr
}

func (s *stubBackend) CreatePaymentCollection(_ context.Context, _ string) (*domain.PaymentCollection, error) {
	s.createCalls++
	return s.created, nil
}

func (s *stubBackend) InitPaymentSession(_ context.Context, collectionID, providerID string) (*domain.PaymentCollection, error) {
	s.lastCollectionID = collectionID
	s.lastProvider = providerID
	return s.initResult, s.initErr
}

func (s *stubBackend) CompleteCart(_ context.Context, _ string) (*domain.Order, error) {
	return s.order, s.completeErr
}

type stubCarts struct {
	forgotten int
	err       error
}

func (s *stubCarts) Forget(_ context.Context, sess *domain.Session) error {
	s.forgotten++
	sess.CartID = ""
	return s.err
}

func readyCart() *domain.Cart {
	return &domain.Cart{ID: "cart_1", Email: "a@b.co", Items: []domain.LineItem{{ID: "li_1", Quantity: 1}}}
}

func stripeCollection(id, secret string) *domain.PaymentCollection {
	return &domain.PaymentCollection{ID: id, PaymentSessions: []domain.PaymentSession{{
		ID:         "ps_1",
		ProviderID: DefaultProvider,
		Data:       map[string]interface{}{"client_secret": secret},
	}}}
}

func TestStartPaymentCreatesCollection(t *testing.T) {
	backend := &stubBackend{
		cart:       readyCart(),
		created:    &domain.PaymentCollection{ID: "pc_new"},
		initResult: stripeCollection("pc_new", "pi_secret"),
	}
	svc := New(backend, &stubCarts{}, keylock.New(), "", nil)

	got, err := svc.StartPayment(context.Background(), &domain.Session{CartID: "cart_1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ClientSecret != "pi_secret" || got.CollectionID != "pc_new" || got.SessionID != "ps_1" {
		t.Fatalf("unexpected payment %+v", got)
	}
	if backend.createCalls != 1 || backend.lastCollectionID != "pc_new" || backend.lastProvider != DefaultProvider {
		t.Fatalf("unexpected backend calls: create=%d collection=%s provider=%s", backend.createCalls, backend.lastCollectionID, backend.lastProvider)
	}
}

func TestStartPaymentReusesCollection(t *testing.T) {
	cart := readyCart()
	cart.PaymentCollection = &domain.PaymentCollection{ID: "pc_existing"}
	backend := &stubBackend{cart: cart, initResult: stripeCollection("pc_existing", "pi_secret")}
	svc := New(backend, &stubCarts{}, keylock.New(), "", nil)

	if _, err := svc.StartPayment(context.Background(), &domain.Session{CartID: "cart_1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if backend.createCalls != 0 || backend.lastCollectionID != "pc_existing" {
		t.Fatalf("expected existing collection reuse")
	}
}

func TestStartPaymentValidation(t *testing.T) {
	svc := New(&stubBackend{cart: &domain.Cart{ID: "cart_1", Email: "a@b.co"}}, &stubCarts{}, keylock.New(), "", nil)
	if _, err := svc.StartPayment(context.Background(), &domain.Session{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found without cart, got %v", err)
	}
	if _, err := svc.StartPayment(context.Background(), &domain.Session{CartID: "cart_1"}); err == nil || err.Error() != "cart is empty" {
		t.Fatalf("expected empty cart error, got %v", err)
	}

	noEmail := readyCart()
	noEmail.Email = ""
	svc = New(&stubBackend{cart: noEmail}, &stubCarts{}, keylock.New(), "", nil)
	if _, err := svc.StartPayment(context.Background(), &domain.Session{CartID: "cart_1"}); err == nil || err.Error() != "contact details required" {
		t.Fatalf("expected contact error, got %v", err)
	}
}

func TestStartPaymentMissingSecret(t *testing.T) {
	cart := readyCart()
	cart.PaymentCollection = &domain.PaymentCollection{ID: "pc_1"}
	backend := &stubBackend{cart: cart, initResult: stripeCollection("pc_1", "")}
	svc := New(backend, &stubCarts{}, keylock.New(), "", nil)
	if _, err := svc.StartPayment(context.Background(), &domain.Session{CartID: "cart_1"}); !errors.Is(err, ErrNoClientSecret) {
		t.Fatalf("expected missing secret error, got %v", err)
	}
}

func TestCompleteClearsCart(t *testing.T) {
	backend := &stubBackend{order: &domain.Order{ID: "order_1"}}
	carts := &stubCarts{}
	svc := New(backend, carts, keylock.New(), "", nil)
	sess := &domain.Session{ID: "s", CartID: "cart_1"}

	order, err := svc.Complete(context.Background(), sess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != "order_1" || carts.forgotten != 1 || sess.CartID != "" {
		t.Fatalf("expected cart to be cleared, got order=%+v forgotten=%d", order, carts.forgotten)
	}
}

func TestCompleteRefusalKeepsCart(t *testing.T) {
	refusal := &medusa.CompletionError{Message: "Your card was declined."}
	carts := &stubCarts{}
	svc := New(&stubBackend{completeErr: refusal}, carts, keylock.New(), "", nil)
	sess := &domain.Session{ID: "s", CartID: "cart_1"}

	_, err := svc.Complete(context.Background(), sess)
	var ce *medusa.CompletionError
	if !errors.As(err, &ce) || ce.Message != "Your card was declined." {
		t.Fatalf("expected completion error, got %v", err)
	}
	if carts.forgotten != 0 || sess.CartID != "cart_1" {
		t.Fatalf("cart must stay on the session after a refusal")
	}
}
