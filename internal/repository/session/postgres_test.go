package session

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
	"storefront/internal/migrate"
)

func TestPostgres_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if _, err := migrate.Apply(ctx, pool, nil); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	created, err := repo.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	created.CartID = "cart_01"
	created.RegionID = "reg_01"
	created.CustomerToken = "tok"
	if err := repo.Save(ctx, created); err != nil {
		t.Fatalf("Save: %v", err)
	}

	fetched, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if fetched.CartID != "cart_01" || fetched.RegionID != "reg_01" || !fetched.Authenticated() {
		t.Fatalf("fetched mismatch %+v", fetched)
	}

	claimed, err := repo.ClaimCouponResolution(ctx, created.ID, "cart_01")
	if err != nil || !claimed {
		t.Fatalf("expected claim, got %v %v", claimed, err)
	}
	claimed, err = repo.ClaimCouponResolution(ctx, created.ID, "cart_01")
	if err != nil || claimed {
		t.Fatalf("expected second claim to fail, got %v %v", claimed, err)
	}

	if _, err := repo.Get(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for malformed id, got %v", err)
	}
}

func TestPostgres_ShippingSelectionUpsert(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if _, err := migrate.Apply(ctx, pool, nil); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	s, err := repo.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	sel := domain.ShippingSelection{SessionID: s.ID, CartID: "cart_01", OptionID: "so_1", State: domain.SelectionProvisional}
	if err := repo.SaveShipping(ctx, sel); err != nil {
		t.Fatalf("SaveShipping: %v", err)
	}
	sel.State = domain.SelectionConfirmed
	if err := repo.SaveShipping(ctx, sel); err != nil {
		t.Fatalf("SaveShipping upsert: %v", err)
	}
	got, err := repo.GetShipping(ctx, s.ID, "cart_01")
	if err != nil {
		t.Fatalf("GetShipping: %v", err)
	}
	if got.State != domain.SelectionConfirmed || got.OptionID != "so_1" {
		t.Fatalf("unexpected selection %+v", got)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE shipping_selections, storefront_sessions CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
