package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain"
)

type memoryRepo struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	shipping map[[2]string]domain.ShippingSelection
	now      func() time.Time
}

// NewMemory returns a process-local Repository for tests and DB-less development.
func NewMemory() Repository {
	return &memoryRepo{
		sessions: make(map[string]domain.Session),
		shipping: make(map[[2]string]domain.ShippingSelection),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (r *memoryRepo) Create(_ context.Context) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	s := domain.Session{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	r.sessions[s.ID] = s
	return &s, nil
}

func (r *memoryRepo) Get(_ context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (r *memoryRepo) Save(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.ID]; !ok {
		return domain.ErrNotFound
	}
	s.UpdatedAt = r.now()
	r.sessions[s.ID] = *s
	return nil
}

func (r *memoryRepo) ClaimCouponResolution(_ context.Context, sessionID, cartID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if s.CouponResolvedCartID == cartID {
		return false, nil
	}
	s.CouponResolvedCartID = cartID
	s.UpdatedAt = r.now()
	r.sessions[sessionID] = s
	return true, nil
}

func (r *memoryRepo) DeleteIdleBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.sessions {
		if s.UpdatedAt.Before(cutoff) {
			delete(r.sessions, id)
			for key := range r.shipping {
				if key[0] == id {
					delete(r.shipping, key)
				}
			}
			n++
		}
	}
	return n, nil
}

func (r *memoryRepo) GetShipping(_ context.Context, sessionID, cartID string) (*domain.ShippingSelection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sel, ok := r.shipping[[2]string{sessionID, cartID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &sel, nil
}

func (r *memoryRepo) SaveShipping(_ context.Context, sel domain.ShippingSelection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sel.UpdatedAt = r.now()
	r.shipping[[2]string{sel.SessionID, sel.CartID}] = sel
	return nil
}

func (r *memoryRepo) DeleteShipping(_ context.Context, sessionID, cartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.shipping, [2]string{sessionID, cartID})
	return nil
}
