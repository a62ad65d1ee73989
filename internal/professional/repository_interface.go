package professional

import "context"

type Repository interface {
	Create(ctx context.Context, email, passwordHash, fullName, phone, category, city string) (*Professional, error)
	FindByID(ctx context.Context, id string) (*Professional, error)
	FindByEmail(ctx context.Context, email string) (*Professional, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*Professional, error)
	SetPaymentCustomerID(ctx context.Context, id, customerID string) error
	SetSubscriptionStatus(ctx context.Context, id string, tier SubscriptionTier) error
	SetVerified(ctx context.Context, id string, verified bool) error
	Search(ctx context.Context, filters SearchFilters) ([]Professional, error)

	CreateVerificationRequest(ctx context.Context, professionalID, documentURL string) (*VerificationRequest, error)
	ListPendingVerifications(ctx context.Context) ([]VerificationRequest, error)
	GetVerificationRequest(ctx context.Context, id string) (*VerificationRequest, error)
	ReviewVerificationRequest(ctx context.Context, id string, status VerificationStatus, note string) error
	HasPendingVerification(ctx context.Context, professionalID string) (bool, error)
}
