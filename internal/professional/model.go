package professional

import "time"

type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierPremium SubscriptionTier = "premium"
)

type Professional struct {
	ID                 string           `db:"id" json:"id"`
	Email              string           `db:"email" json:"email"`
	PasswordHash       string           `db:"password_hash" json:"-"`
	FullName           string           `db:"full_name" json:"full_name"`
	Phone              string           `db:"phone" json:"phone"`
	Category           string           `db:"category" json:"category"`
	City               string           `db:"city" json:"city"`
	Description        string           `db:"description" json:"description"`
	AvatarURL          *string          `db:"avatar_url" json:"avatar_url,omitempty"`
	SubscriptionStatus SubscriptionTier `db:"subscription_status" json:"subscription_status"`
	// PaymentCustomerID is the payment provider's customer record,
	// created once and reused for every future billing.
	PaymentCustomerID *string   `db:"payment_customer_id" json:"-"`
	Verified          bool      `db:"verified" json:"verified"`
	Role              string    `db:"role" json:"-"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

type VerificationRequest struct {
	ID             string             `db:"id" json:"id"`
	ProfessionalID string             `db:"professional_id" json:"professional_id"`
	DocumentURL    string             `db:"document_url" json:"document_url"`
	Status         VerificationStatus `db:"status" json:"status"`
	ReviewerNote   *string            `db:"reviewer_note" json:"reviewer_note,omitempty"`
	CreatedAt      time.Time          `db:"created_at" json:"created_at"`
	ReviewedAt     *time.Time         `db:"reviewed_at" json:"reviewed_at,omitempty"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Category string `json:"category" binding:"required"`
	City     string `json:"city" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	Professional Professional `json:"professional"`
}

type UpdateProfileRequest struct {
	FullName    *string `json:"full_name,omitempty" validate:"omitempty,min=2,max=120"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,min=8,max=20"`
	Category    *string `json:"category,omitempty" validate:"omitempty,min=2,max=60"`
	City        *string `json:"city,omitempty" validate:"omitempty,min=2,max=80"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	AvatarURL   *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}

// SearchFilters narrows the public listing. Premium profiles always
// order first regardless of filters.
type SearchFilters struct {
	Category string
	City     string
	Query    string
}
