package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logging"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger)}
}

const sessionColumns = `id::text, cart_id, region_id, customer_token, age_verified, exit_intent_dismissed, coupon_resolved_cart_id, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context) (*domain.Session, error) {
	q := `
INSERT INTO storefront_sessions (id)
VALUES ($1)
RETURNING ` + sessionColumns
	s, err := scanSession(r.pool.QueryRow(ctx, q, uuid.NewString()))
	if err != nil {
		r.logger.Error("session repo: create", zap.Error(err))
		return nil, err
	}
	return s, nil
}

func (r *postgresRepo) Get(ctx context.Context, id string) (*domain.Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	q := `SELECT ` + sessionColumns + ` FROM storefront_sessions WHERE id = $1`
	s, err := scanSession(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("session repo: get", zap.String("session_id", id), zap.Error(err))
		return nil, err
	}
	return s, nil
}

func (r *postgresRepo) Save(ctx context.Context, s *domain.Session) error {
	const q = `
UPDATE storefront_sessions
SET cart_id = $2,
    region_id = $3,
    customer_token = $4,
    age_verified = $5,
    exit_intent_dismissed = $6,
    coupon_resolved_cart_id = $7,
    updated_at = now()
WHERE id = $1
RETURNING updated_at
`
	err := r.pool.QueryRow(ctx, q,
		s.ID,
		s.CartID,
		s.RegionID,
		s.CustomerToken,
		s.AgeVerified,
		s.ExitIntentDismissed,
		s.CouponResolvedCartID,
	).Scan(&s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		r.logger.Error("session repo: save", zap.String("session_id", s.ID), zap.Error(err))
		return err
	}
	return nil
}

func (r *postgresRepo) ClaimCouponResolution(ctx context.Context, sessionID, cartID string) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `
UPDATE storefront_sessions
SET coupon_resolved_cart_id = $2, updated_at = now()
WHERE id = $1 AND coupon_resolved_cart_id <> $2
`, sessionID, cartID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *postgresRepo) DeleteIdleBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM storefront_sessions WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	r.logger.Info("session repo: pruned idle sessions", zap.Int64("count", cmd.RowsAffected()))
	return cmd.RowsAffected(), nil
}

func (r *postgresRepo) GetShipping(ctx context.Context, sessionID, cartID string) (*domain.ShippingSelection, error) {
	const q = `
SELECT session_id::text, cart_id, option_id, state, updated_at
FROM shipping_selections
WHERE session_id = $1 AND cart_id = $2
`
	var sel domain.ShippingSelection
	var state string
	err := r.pool.QueryRow(ctx, q, sessionID, cartID).Scan(&sel.SessionID, &sel.CartID, &sel.OptionID, &state, &sel.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	sel.State = domain.SelectionState(state)
	return &sel, nil
}

func (r *postgresRepo) SaveShipping(ctx context.Context, sel domain.ShippingSelection) error {
	const q = `
INSERT INTO shipping_selections (session_id, cart_id, option_id, state)
VALUES ($1, $2, $3, $4)
ON CONFLICT (session_id, cart_id) DO UPDATE
SET option_id = EXCLUDED.option_id,
    state = EXCLUDED.state,
    updated_at = now()
`
	_, err := r.pool.Exec(ctx, q, sel.SessionID, sel.CartID, sel.OptionID, string(sel.State))
	return err
}

func (r *postgresRepo) DeleteShipping(ctx context.Context, sessionID, cartID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM shipping_selections WHERE session_id = $1 AND cart_id = $2`, sessionID, cartID)
	return err
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	if err := row.Scan(
		&s.ID,
		&s.CartID,
		&s.RegionID,
		&s.CustomerToken,
		&s.AgeVerified,
		&s.ExitIntentDismissed,
		&s.CouponResolvedCartID,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}
