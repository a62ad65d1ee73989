package subscription

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

const proID = "3c2b1a0e-5d4f-4a6b-9c8d-7e6f5a4b3c2d"

func setupSubscriptionMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func subscriptionColumns() []string {
	return []string{"id", "professional_id", "status", "start_date", "end_date", "created_at", "updated_at"}
}

func TestCreate(t *testing.T) {
	repo, mock, close := setupSubscriptionMock(t)
	defer close()

	ctx := context.Background()
	now := time.Now()
	end := now.Add(BillingPeriod)

	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO subscriptions (professional_id, status, start_date, end_date)
		VALUES ($1, 'pending', $2, $3)
		RETURNING id, professional_id, status, start_date, end_date, created_at, updated_at
	`)).
		WithArgs(proID, now, end).
		WillReturnRows(sqlmock.NewRows(subscriptionColumns()).
			AddRow(1, proID, "pending", now, end, now, now))

	sub, err := repo.Create(ctx, proID, now, end)
	require.NoError(t, err)
	require.NotNil(t, sub)
	require.Equal(t, proID, sub.ProfessionalID)
	require.Equal(t, StatusPending, sub.Status)
}

func TestGetActiveByProfessional(t *testing.T) {
	repo, mock, close := setupSubscriptionMock(t)
	defer close()

	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, professional_id, status, start_date, end_date, created_at, updated_at
		FROM subscriptions
		WHERE professional_id = $1
		  AND status = 'active'
		ORDER BY created_at DESC
		LIMIT 1
	`)).
		WithArgs(proID).
		WillReturnRows(sqlmock.NewRows(subscriptionColumns()).
			AddRow(7, proID, "active", now, now.Add(BillingPeriod), now, now))

	sub, err := repo.GetActiveByProfessional(ctx, proID)
	require.NoError(t, err)
	require.Equal(t, 7, sub.ID)
	require.Equal(t, StatusActive, sub.Status)
}

func TestGetActiveByProfessional_NotFound(t *testing.T) {
	repo, mock, close := setupSubscriptionMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, professional_id, status, start_date, end_date, created_at, updated_at
		FROM subscriptions
		WHERE professional_id = $1
		  AND status = 'active'
		ORDER BY created_at DESC
		LIMIT 1
	`)).
		WithArgs(proID).
		WillReturnRows(sqlmock.NewRows(subscriptionColumns()))

	sub, err := repo.GetActiveByProfessional(context.Background(), proID)
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, sub)
}

func TestLatestPendingByProfessional(t *testing.T) {
	repo, mock, close := setupSubscriptionMock(t)
	defer close()

	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, professional_id, status, start_date, end_date, created_at, updated_at
		FROM subscriptions
		WHERE professional_id = $1
		  AND status = 'pending'
		ORDER BY created_at DESC
		LIMIT 1
	`)).
		WithArgs(proID).
		WillReturnRows(sqlmock.NewRows(subscriptionColumns()).
			AddRow(12, proID, "pending", now, now.Add(BillingPeriod), now, now))

	sub, err := repo.LatestPendingByProfessional(context.Background(), proID)
	require.NoError(t, err)
	require.Equal(t, 12, sub.ID)
}

func TestLatestPendingByProfessional_NotFound(t *testing.T) {
	repo, mock, close := setupSubscriptionMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, professional_id, status, start_date, end_date, created_at, updated_at
		FROM subscriptions
		WHERE professional_id = $1
		  AND status = 'pending'
		ORDER BY created_at DESC
		LIMIT 1
	`)).
		WithArgs(proID).
		WillReturnRows(sqlmock.NewRows(subscriptionColumns()))

	_, err := repo.LatestPendingByProfessional(context.Background(), proID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRenew(t *testing.T) {
	repo, mock, close := setupSubscriptionMock(t)
	defer close()

	now := time.Now()
	end := now.Add(BillingPeriod)

	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE subscriptions
		SET status = 'pending',
		    start_date = $2,
		    end_date = $3,
		    updated_at = NOW()
		WHERE id = $1
	`)).
		WithArgs(7, now, end).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Renew(context.Background(), 7, now, end)
	require.NoError(t, err)
}

func TestActivate(t *testing.T) {
	repo, mock, close := setupSubscriptionMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE subscriptions
		SET status = 'active',
		    updated_at = NOW()
		WHERE id = $1
		  AND status = 'pending'
	`)).
		WithArgs(12).
		WillReturnResult(sqlmock.NewResult(0, 1))

	activated, err := repo.Activate(context.Background(), 12)
	require.NoError(t, err)
	require.True(t, activated)
}

func TestActivate_AlreadyConsumed(t *testing.T) {
	repo, mock, close := setupSubscriptionMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE subscriptions
		SET status = 'active',
		    updated_at = NOW()
		WHERE id = $1
		  AND status = 'pending'
	`)).
		WithArgs(12).
		WillReturnResult(sqlmock.NewResult(0, 0))

	activated, err := repo.Activate(context.Background(), 12)
	require.NoError(t, err)
	require.False(t, activated)
}

func TestDeactivateOtherActive(t *testing.T) {
	repo, mock, close := setupSubscriptionMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE subscriptions
		SET status = 'inactive',
		    updated_at = NOW()
		WHERE professional_id = $1
		  AND status = 'active'
		  AND id <> $2
	`)).
		WithArgs(proID, 12).
		WillReturnResult(sqlmock.NewResult(0, 2))

	affected, err := repo.DeactivateOtherActive(context.Background(), proID, 12)
	require.NoError(t, err)
	require.Equal(t, int64(2), affected)
}

func TestCancelAllByProfessional(t *testing.T) {
	repo, mock, close := setupSubscriptionMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE subscriptions
		SET status = 'cancelled',
		    updated_at = NOW()
		WHERE professional_id = $1
		  AND status <> 'cancelled'
	`)).
		WithArgs(proID).
		WillReturnResult(sqlmock.NewResult(0, 3))

	err := repo.CancelAllByProfessional(context.Background(), proID)
	require.NoError(t, err)
}

func TestListExpired(t *testing.T) {
	repo, mock, close := setupSubscriptionMock(t)
	defer close()

	now := time.Now()
	yesterday := now.Add(-24 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, professional_id, status, start_date, end_date, created_at, updated_at
		FROM subscriptions
		WHERE status = 'active'
		  AND end_date < $1
		ORDER BY end_date ASC
	`)).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows(subscriptionColumns()).
			AddRow(3, proID, "active", yesterday.Add(-BillingPeriod), yesterday, yesterday, yesterday))

	subs, err := repo.ListExpired(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.Equal(t, 3, subs[0].ID)
}

func TestMarkInactive(t *testing.T) {
	repo, mock, close := setupSubscriptionMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE subscriptions
		SET status = 'inactive',
		    updated_at = NOW()
		WHERE id = $1
		  AND status = 'active'
	`)).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkInactive(context.Background(), 3)
	require.NoError(t, err)
}

func TestHasActive(t *testing.T) {
	repo, mock, close := setupSubscriptionMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT EXISTS (
			SELECT 1 FROM subscriptions
			WHERE professional_id = $1
			  AND status = 'active'
		)
	`)).
		WithArgs(proID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	has, err := repo.HasActive(context.Background(), proID)
	require.NoError(t, err)
	require.True(t, has)
}
