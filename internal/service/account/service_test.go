package account

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/medusa"
)

type stubBackend struct {
	token     string
	loginErr  error
	customer  *domain.Customer
	getErr    error
	lastEmail string
	getCalls  int
}

func (s *stubBackend) Login(_ context.Context, email, _ string) (string, error) {
	s.lastEmail = email
	return s.token, s.loginErr
}

func (s *stubBackend) GetCustomer(_ context.Context) (*domain.Customer, error) {
	s.getCalls++
	return s.customer, s.getErr
}

type stubSessions struct {
	saved *domain.Session
	err   error
}

func (s *stubSessions) Save(_ context.Context, sess *domain.Session) error {
	copied := *sess
	s.saved = &copied
	return s.err
}

type stubCarts struct {
	calls int
	err   error
}

func (s *stubCarts) Transfer(_ context.Context, sess *domain.Session) (*domain.Cart, error) {
	s.calls++
	return &domain.Cart{ID: sess.CartID}, s.err
}

func TestLoginStoresTokenAndTransfers(t *testing.T) {
	backend := &stubBackend{token: "tok", customer: &domain.Customer{ID: "cus_1", Email: "a@b.co"}}
	sessions := &stubSessions{}
	carts := &stubCarts{err: errors.New("transfer failed")}
	svc := New(backend, sessions, carts, nil)
	sess := &domain.Session{ID: "s", CartID: "cart_1"}

	customer, err := svc.Login(context.Background(), sess, " a@b.co ", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if customer.ID != "cus_1" || backend.lastEmail != "a@b.co" {
		t.Fatalf("unexpected customer %+v", customer)
	}
	if sessions.saved == nil || sessions.saved.CustomerToken != "tok" {
		t.Fatalf("token not stored: %+v", sessions.saved)
	}
	if carts.calls != 1 {
		t.Fatalf("expected one transfer, got %d", carts.calls)
	}
}

func TestLoginRejected(t *testing.T) {
	backend := &stubBackend{loginErr: &medusa.APIError{Status: 401, Message: "Invalid email or password"}}
	sessions := &stubSessions{}
	svc := New(backend, sessions, &stubCarts{}, nil)

	_, err := svc.Login(context.Background(), &domain.Session{ID: "s"}, "a@b.co", "bad")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if sessions.saved != nil {
		t.Fatalf("session must not be saved on failed login")
	}

	if _, err := svc.Login(context.Background(), &domain.Session{ID: "s"}, "", "x"); err == nil || err.Error() != "email and password required" {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	sessions := &stubSessions{}
	svc := New(&stubBackend{}, sessions, &stubCarts{}, nil)
	sess := &domain.Session{ID: "s", CartID: "cart_1", CustomerToken: "tok", CouponResolvedCartID: "cart_1"}

	if err := svc.Logout(context.Background(), sess); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sessions.saved.CustomerToken != "" || sessions.saved.CartID != "" || sessions.saved.CouponResolvedCartID != "" {
		t.Fatalf("session not cleared: %+v", sessions.saved)
	}
}

func TestMeRequiresLogin(t *testing.T) {
	backend := &stubBackend{customer: &domain.Customer{ID: "cus_1"}}
	svc := New(backend, &stubSessions{}, &stubCarts{}, nil)

	if _, err := svc.Me(context.Background(), &domain.Session{ID: "s"}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if backend.getCalls != 0 {
		t.Fatalf("backend should not be called for anonymous session")
	}
	got, err := svc.Me(context.Background(), &domain.Session{ID: "s", CustomerToken: "tok"})
	if err != nil || got.ID != "cus_1" {
		t.Fatalf("unexpected result %+v %v", got, err)
	}
}
