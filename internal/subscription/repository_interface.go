package subscription

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, professionalID string, start, end time.Time) (*Subscription, error)
	GetActiveByProfessional(ctx context.Context, professionalID string) (*Subscription, error)
	LatestPendingByProfessional(ctx context.Context, professionalID string) (*Subscription, error)
	Renew(ctx context.Context, id int, start, end time.Time) error
	Activate(ctx context.Context, id int) (bool, error)
	MarkPendingByProfessional(ctx context.Context, professionalID string) error
	DeactivateOtherActive(ctx context.Context, professionalID string, keepID int) (int64, error)
	CancelAllByProfessional(ctx context.Context, professionalID string) error
	ListExpired(ctx context.Context, now time.Time) ([]Subscription, error)
	MarkInactive(ctx context.Context, id int) error
	HasActive(ctx context.Context, professionalID string) (bool, error)
	ListByProfessional(ctx context.Context, professionalID string) ([]Subscription, error)
}
