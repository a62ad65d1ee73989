package professional

import (
	"context"
	"errors"

	"github.com/joaorhodenntc/encontra-mais/internal/auth"
	"github.com/joaorhodenntc/encontra-mais/internal/logger"
	"github.com/joaorhodenntc/encontra-mais/internal/metrics"
)

var (
	ErrEmailExists         = errors.New("email already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrVerificationPending = errors.New("a verification request is already pending")
	ErrAlreadyVerified     = errors.New("professional is already verified")
	ErrAlreadyReviewed     = errors.New("verification request already reviewed")
)

// Notifier posts to the moderation side-channel. Delivery is best-effort:
// failures are logged and never surfaced to the caller.
type Notifier interface {
	VerificationSubmitted(ctx context.Context, fullName, email, documentURL string) error
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Professional, string, string, error)
	Login(ctx context.Context, req LoginRequest) (*Professional, string, string, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, *Professional, error)
	GetByID(ctx context.Context, id string) (*Professional, error)
	UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*Professional, error)
	Search(ctx context.Context, filters SearchFilters) ([]Professional, error)

	SubmitVerification(ctx context.Context, professionalID, documentURL string) (*VerificationRequest, error)
	ListPendingVerifications(ctx context.Context) ([]VerificationRequest, error)
	ReviewVerification(ctx context.Context, requestID string, approve bool, note string) (*VerificationRequest, error)
}

type service struct {
	repo      Repository
	notifier  Notifier
	jwtSecret string
}

func NewService(repo Repository, notifier Notifier, jwtSecret string) Service {
	return &service{
		repo:      repo,
		notifier:  notifier,
		jwtSecret: jwtSecret,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*Professional, string, string, error) {
	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, "", "", err
	}
	if exists {
		return nil, "", "", ErrEmailExists
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", "", err
	}

	pro, err := s.repo.Create(ctx, req.Email, passwordHash, req.FullName, req.Phone, req.Category, req.City)
	if err != nil {
		return nil, "", "", err
	}

	accessToken, refreshToken, err := auth.GenerateTokens(pro.ID, pro.Email, pro.Role, s.jwtSecret)
	if err != nil {
		return nil, "", "", err
	}

	return pro, accessToken, refreshToken, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*Professional, string, string, error) {
	pro, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if !auth.CheckPassword(pro.PasswordHash, req.Password) {
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := auth.GenerateTokens(pro.ID, pro.Email, pro.Role, s.jwtSecret)
	if err != nil {
		return nil, "", "", err
	}

	return pro, accessToken, refreshToken, nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, *Professional, error) {
	newAccess, claims, err := auth.RefreshAccessToken(refreshToken, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	pro, err := s.repo.FindByID(ctx, claims.ProfessionalID)
	if err != nil {
		return "", nil, err
	}

	return newAccess, pro, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Professional, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*Professional, error) {
	return s.repo.UpdateProfile(ctx, id, req)
}

func (s *service) Search(ctx context.Context, filters SearchFilters) ([]Professional, error) {
	return s.repo.Search(ctx, filters)
}

func (s *service) SubmitVerification(ctx context.Context, professionalID, documentURL string) (*VerificationRequest, error) {
	pro, err := s.repo.FindByID(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	if pro.Verified {
		return nil, ErrAlreadyVerified
	}

	pending, err := s.repo.HasPendingVerification(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrVerificationPending
	}

	req, err := s.repo.CreateVerificationRequest(ctx, professionalID, documentURL)
	if err != nil {
		return nil, err
	}
	metrics.RecordVerificationRequest(string(VerificationPending))

	if s.notifier != nil {
		if err := s.notifier.VerificationSubmitted(ctx, pro.FullName, pro.Email, documentURL); err != nil {
			logger.Errorf("Failed to queue verification notification for %s: %v", professionalID, err)
		}
	}

	return req, nil
}

func (s *service) ListPendingVerifications(ctx context.Context) ([]VerificationRequest, error) {
	return s.repo.ListPendingVerifications(ctx)
}

func (s *service) ReviewVerification(ctx context.Context, requestID string, approve bool, note string) (*VerificationRequest, error) {
	req, err := s.repo.GetVerificationRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != VerificationPending {
		return nil, ErrAlreadyReviewed
	}

	status := VerificationRejected
	if approve {
		status = VerificationApproved
	}

	if err := s.repo.ReviewVerificationRequest(ctx, requestID, status, note); err != nil {
		return nil, err
	}
	metrics.RecordVerificationRequest(string(status))

	if approve {
		if err := s.repo.SetVerified(ctx, req.ProfessionalID, true); err != nil {
			return nil, err
		}
	}

	req.Status = status
	logger.Infof("Verification request %s reviewed: %s", requestID, status)
	return req, nil
}
