package subscription

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/joaorhodenntc/encontra-mais/internal/db"
)

var ErrNotFound = errors.New("subscription not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(database *sqlx.DB) Repository {
	return &repository{db: database}
}

func (r *repository) Create(ctx context.Context, professionalID string, start, end time.Time) (*Subscription, error) {
	query := `
		INSERT INTO subscriptions (professional_id, status, start_date, end_date)
		VALUES ($1, 'pending', $2, $3)
		RETURNING id, professional_id, status, start_date, end_date, created_at, updated_at
	`

	var sub Subscription
	if err := r.db.GetContext(ctx, &sub, query, professionalID, start, end); err != nil {
		return nil, err
	}

	return &sub, nil
}

func (r *repository) GetActiveByProfessional(ctx context.Context, professionalID string) (*Subscription, error) {
	query := `
		SELECT id, professional_id, status, start_date, end_date, created_at, updated_at
		FROM subscriptions
		WHERE professional_id = $1
		  AND status = 'active'
		ORDER BY created_at DESC
		LIMIT 1
	`

	var sub Subscription
	err := r.db.GetContext(ctx, &sub, query, professionalID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &sub, nil
}

func (r *repository) LatestPendingByProfessional(ctx context.Context, professionalID string) (*Subscription, error) {
	query := `
		SELECT id, professional_id, status, start_date, end_date, created_at, updated_at
		FROM subscriptions
		WHERE professional_id = $1
		  AND status = 'pending'
		ORDER BY created_at DESC
		LIMIT 1
	`

	var sub Subscription
	err := r.db.GetContext(ctx, &sub, query, professionalID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &sub, nil
}

// Renew resets an existing row to pending with a fresh validity window.
// Re-subscription reuses the active row instead of inserting a sibling.
func (r *repository) Renew(ctx context.Context, id int, start, end time.Time) error {
	query := `
		UPDATE subscriptions
		SET status = 'pending',
		    start_date = $2,
		    end_date = $3,
		    updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, start, end)
	return err
}

// Activate flips a pending row to active. The status filter makes the
// update a no-op for a duplicate paid delivery, so the caller can tell
// activation from a replay by the returned bool.
func (r *repository) Activate(ctx context.Context, id int) (bool, error) {
	query := `
		UPDATE subscriptions
		SET status = 'active',
		    updated_at = NOW()
		WHERE id = $1
		  AND status = 'pending'
	`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *repository) MarkPendingByProfessional(ctx context.Context, professionalID string) error {
	query := `
		UPDATE subscriptions
		SET status = 'pending',
		    updated_at = NOW()
		WHERE professional_id = $1
		  AND status IN ('pending', 'active')
	`

	_, err := r.db.ExecContext(ctx, query, professionalID)
	return err
}

func (r *repository) DeactivateOtherActive(ctx context.Context, professionalID string, keepID int) (int64, error) {
	query := `
		UPDATE subscriptions
		SET status = 'inactive',
		    updated_at = NOW()
		WHERE professional_id = $1
		  AND status = 'active'
		  AND id <> $2
	`

	res, err := r.db.ExecContext(ctx, query, professionalID, keepID)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (r *repository) CancelAllByProfessional(ctx context.Context, professionalID string) error {
	query := `
		UPDATE subscriptions
		SET status = 'cancelled',
		    updated_at = NOW()
		WHERE professional_id = $1
		  AND status <> 'cancelled'
	`

	_, err := r.db.ExecContext(ctx, query, professionalID)
	return err
}

func (r *repository) ListExpired(ctx context.Context, now time.Time) ([]Subscription, error) {
	query := `
		SELECT id, professional_id, status, start_date, end_date, created_at, updated_at
		FROM subscriptions
		WHERE status = 'active'
		  AND end_date < $1
		ORDER BY end_date ASC
	`

	subs := []Subscription{}
	if err := r.db.SelectContext(ctx, &subs, query, now); err != nil {
		return nil, err
	}

	return subs, nil
}

func (r *repository) MarkInactive(ctx context.Context, id int) error {
	query := `
		UPDATE subscriptions
		SET status = 'inactive',
		    updated_at = NOW()
		WHERE id = $1
		  AND status = 'active'
	`

	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *repository) HasActive(ctx context.Context, professionalID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM subscriptions
			WHERE professional_id = $1
			  AND status = 'active'
		)
	`

	return db.Exists(ctx, r.db, query, professionalID)
}

func (r *repository) ListByProfessional(ctx context.Context, professionalID string) ([]Subscription, error) {
	query := `
		SELECT id, professional_id, status, start_date, end_date, created_at, updated_at
		FROM subscriptions
		WHERE professional_id = $1
		ORDER BY created_at DESC
	`

	subs := []Subscription{}
	if err := r.db.SelectContext(ctx, &subs, query, professionalID); err != nil {
		return nil, err
	}

	return subs, nil
}
