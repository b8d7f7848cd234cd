package region

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain"
)

type stubBackend struct {
	regions []domain.Region
	err     error
	calls   int
}

func (s *stubBackend) ListRegions(_ context.Context) ([]domain.Region, error) {
	s.calls++
	return s.regions, s.err
}

func sampleRegions() []domain.Region {
	return []domain.Region{
		{ID: "reg_us", Name: "North America", CurrencyCode: "usd", Countries: []domain.Country{{ISO2: "us"}, {ISO2: "ca"}}},
		{ID: "reg_eu", Name: "Europe", CurrencyCode: "eur", Countries: []domain.Country{{ISO2: "de"}, {ISO2: "fr"}}},
	}
}

func TestListCachesUntilTTL(t *testing.T) {
	backend := &stubBackend{regions: sampleRegions()}
	svc := New(backend, "us", time.Minute, nil)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if _, err := svc.List(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if backend.calls != 1 {
		t.Fatalf("expected one backend call, got %d", backend.calls)
	}

	now = now.Add(2 * time.Minute)
	backend.err = errors.New("unavailable")
	regions, err := svc.List(context.Background())
	if err != nil || len(regions) != 2 || backend.calls != 2 {
		t.Fatalf("expected stale list after failed refresh, got %v %v calls=%d", regions, err, backend.calls)
	}
}

func TestListFailsWithoutCache(t *testing.T) {
	svc := New(&stubBackend{err: errors.New("unavailable")}, "us", time.Minute, nil)
	if _, err := svc.List(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestForCountryAndDefault(t *testing.T) {
	svc := New(&stubBackend{regions: sampleRegions()}, "DE", time.Minute, nil)
	ctx := context.Background()

	r, err := svc.ForCountry(ctx, "FR")
	if err != nil || r.ID != "reg_eu" {
		t.Fatalf("unexpected region %+v %v", r, err)
	}
	if _, err := svc.ForCountry(ctx, "jp"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if r, _ := svc.Default(ctx); r.ID != "reg_eu" {
		t.Fatalf("expected default eu, got %s", r.ID)
	}

	svc = New(&stubBackend{regions: sampleRegions()}, "jp", time.Minute, nil)
	if r, _ := svc.Default(ctx); r.ID != "reg_us" {
		t.Fatalf("expected first region fallback, got %s", r.ID)
	}
}

func TestResolveOrder(t *testing.T) {
	svc := New(&stubBackend{regions: sampleRegions()}, "us", time.Minute, nil)
	ctx := context.Background()

	if r, _ := svc.Resolve(ctx, "reg_eu", "us"); r.ID != "reg_eu" {
		t.Fatalf("region id should win, got %s", r.ID)
	}
	if r, _ := svc.Resolve(ctx, "reg_gone", "de"); r.ID != "reg_eu" {
		t.Fatalf("country should be used for unknown id, got %s", r.ID)
	}
	if r, _ := svc.Resolve(ctx, "", ""); r.ID != "reg_us" {
		t.Fatalf("expected default, got %s", r.ID)
	}
}
