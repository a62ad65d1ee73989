package professional

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/joaorhodenntc/encontra-mais/internal/db"
)

var (
	ErrNotFound            = errors.New("professional not found")
	ErrVerificationMissing = errors.New("verification request not found")
)

const professionalColumns = `id, email, password_hash, full_name, phone, category, city, description,
	avatar_url, subscription_status, payment_customer_id, verified, role, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(database *sqlx.DB) Repository {
	return &repository{db: database}
}

func (r *repository) Create(ctx context.Context, email, passwordHash, fullName, phone, category, city string) (*Professional, error) {
	query := fmt.Sprintf(`
		INSERT INTO professionals (id, email, password_hash, full_name, phone, category, city)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s
	`, professionalColumns)

	var pro Professional
	err := r.db.GetContext(ctx, &pro, query, uuid.NewString(), email, passwordHash, fullName, phone, category, city)
	if err != nil {
		return nil, err
	}

	return &pro, nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*Professional, error) {
	query := fmt.Sprintf(`SELECT %s FROM professionals WHERE id = $1`, professionalColumns)

	var pro Professional
	err := r.db.GetContext(ctx, &pro, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &pro, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*Professional, error) {
	query := fmt.Sprintf(`SELECT %s FROM professionals WHERE email = $1`, professionalColumns)

	var pro Professional
	err := r.db.GetContext(ctx, &pro, query, email)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &pro, nil
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM professionals WHERE email = $1)`
	return db.Exists(ctx, r.db, query, email)
}

func (r *repository) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*Professional, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id}

	appendSet := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	appendSet("full_name", req.FullName)
	appendSet("phone", req.Phone)
	appendSet("category", req.Category)
	appendSet("city", req.City)
	appendSet("description", req.Description)
	appendSet("avatar_url", req.AvatarURL)

	query := fmt.Sprintf(`
		UPDATE professionals
		SET %s
		WHERE id = $1
		RETURNING %s
	`, strings.Join(sets, ", "), professionalColumns)

	var pro Professional
	err := r.db.GetContext(ctx, &pro, query, args...)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &pro, nil
}

func (r *repository) SetPaymentCustomerID(ctx context.Context, id, customerID string) error {
	query := `
		UPDATE professionals
		SET payment_customer_id = $2,
		    updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, customerID)
	return err
}

func (r *repository) SetSubscriptionStatus(ctx context.Context, id string, tier SubscriptionTier) error {
	query := `
		UPDATE professionals
		SET subscription_status = $2,
		    updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, tier)
	return err
}

func (r *repository) SetVerified(ctx context.Context, id string, verified bool) error {
	query := `
		UPDATE professionals
		SET verified = $2,
		    updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, verified)
	return err
}

// Search lists public profiles, premium first, then verified, then newest.
func (r *repository) Search(ctx context.Context, filters SearchFilters) ([]Professional, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if filters.Category != "" {
		args = append(args, filters.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if filters.City != "" {
		args = append(args, filters.City)
		where = append(where, fmt.Sprintf("city = $%d", len(args)))
	}
	if filters.Query != "" {
		args = append(args, "%"+filters.Query+"%")
		where = append(where, fmt.Sprintf("(full_name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM professionals
		WHERE %s
		ORDER BY
		  subscription_status = 'premium' DESC,
		  verified DESC,
		  created_at DESC
	`, professionalColumns, strings.Join(where, " AND "))

	pros := []Professional{}
	if err := r.db.SelectContext(ctx, &pros, query, args...); err != nil {
		return nil, err
	}

	return pros, nil
}

func (r *repository) CreateVerificationRequest(ctx context.Context, professionalID, documentURL string) (*VerificationRequest, error) {
	query := `
		INSERT INTO verification_requests (id, professional_id, document_url, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING id, professional_id, document_url, status, reviewer_note, created_at, reviewed_at
	`

	var req VerificationRequest
	err := r.db.GetContext(ctx, &req, query, uuid.NewString(), professionalID, documentURL)
	if err != nil {
		return nil, err
	}

	return &req, nil
}

func (r *repository) ListPendingVerifications(ctx context.Context) ([]VerificationRequest, error) {
	query := `
		SELECT id, professional_id, document_url, status, reviewer_note, created_at, reviewed_at
		FROM verification_requests
		WHERE status = 'pending'
		ORDER BY created_at ASC
	`

	reqs := []VerificationRequest{}
	if err := r.db.SelectContext(ctx, &reqs, query); err != nil {
		return nil, err
	}

	return reqs, nil
}

func (r *repository) GetVerificationRequest(ctx context.Context, id string) (*VerificationRequest, error) {
	query := `
		SELECT id, professional_id, document_url, status, reviewer_note, created_at, reviewed_at
		FROM verification_requests
		WHERE id = $1
	`

	var req VerificationRequest
	err := r.db.GetContext(ctx, &req, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrVerificationMissing
	}
	if err != nil {
		return nil, err
	}

	return &req, nil
}

func (r *repository) ReviewVerificationRequest(ctx context.Context, id string, status VerificationStatus, note string) error {
	query := `
		UPDATE verification_requests
		SET status = $2,
		    reviewer_note = $3,
		    reviewed_at = NOW()
		WHERE id = $1
		  AND status = 'pending'
	`

	res, err := r.db.ExecContext(ctx, query, id, status, note)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrVerificationMissing
	}

	return nil
}

func (r *repository) HasPendingVerification(ctx context.Context, professionalID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM verification_requests
			WHERE professional_id = $1
			  AND status = 'pending'
		)
	`

	return db.Exists(ctx, r.db, query, professionalID)
}
