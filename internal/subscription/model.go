package subscription

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusCancelled Status = "cancelled"
)

// BillingPeriod is the provisional validity window set at creation time.
// It becomes authoritative once the paid webhook confirms the payment.
const BillingPeriod = 30 * 24 * time.Hour

type Subscription struct {
	ID             int       `db:"id" json:"id"`
	ProfessionalID string    `db:"professional_id" json:"professional_id"`
	Status         Status    `db:"status" json:"status"`
	StartDate      time.Time `db:"start_date" json:"start_date"`
	EndDate        time.Time `db:"end_date" json:"end_date"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

var transitions = map[Status][]Status{
	StatusPending:  {StatusActive, StatusCancelled},
	StatusActive:   {StatusPending, StatusInactive, StatusCancelled},
	StatusInactive: {StatusCancelled},
	// cancelled is terminal
	StatusCancelled: {},
}

// CanTransition reports whether a status change is legal.
// active -> pending covers re-subscription, which reuses the active row.
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns an error for illegal status changes,
// e.g. resurrecting a cancelled subscription.
func ValidateTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("illegal subscription transition %s -> %s", from, to)
	}
	return nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusInactive, StatusCancelled:
		return true
	}
	return false
}

func (s *Subscription) Expired(now time.Time) bool {
	return s.Status == StatusActive && s.EndDate.Before(now)
}
