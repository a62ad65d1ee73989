package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joaorhodenntc/encontra-mais/internal/billing/abacatepay"
	"github.com/joaorhodenntc/encontra-mais/internal/logger"
	"github.com/joaorhodenntc/encontra-mais/internal/metrics"
	"github.com/joaorhodenntc/encontra-mais/internal/professional"
	"github.com/joaorhodenntc/encontra-mais/internal/subscription"
)

var (
	ErrProfessionalNotFound  = errors.New("professional not found")
	ErrMissingProfessionalID = errors.New("professional id not found in event payload")
	// ErrNoPendingSubscription fires when a paid event arrives with no
	// pending row to consume: either create-subscription never ran, or
	// this is a duplicate delivery of an already-applied payment.
	ErrNoPendingSubscription = errors.New("no pending subscription for paid event")
)

// Gateway is the payment provider surface the creation flow needs.
type Gateway interface {
	CreateCustomer(ctx context.Context, customer abacatepay.Customer) (string, error)
	CreateBilling(ctx context.Context, req abacatepay.CreateBillingRequest) (string, error)
}

// Notifier posts payment confirmations to the moderation side-channel.
// Delivery is best-effort and never affects the committed transition.
type Notifier interface {
	PaymentConfirmed(ctx context.Context, fullName, email string, amountCents int64) error
}

type Service interface {
	// CreateSubscription ensures a provider customer exists, upserts a
	// pending subscription row, and returns the hosted payment URL.
	CreateSubscription(ctx context.Context, professionalID, email string) (string, error)

	// ProcessEvent applies one webhook delivery. Hard errors mean the
	// caller should answer non-2xx so the provider redelivers.
	ProcessEvent(ctx context.Context, env Envelope) error

	// ExpireSubscriptions demotes active subscriptions whose validity
	// window elapsed and returns how many rows were examined.
	ExpireSubscriptions(ctx context.Context) (int, error)
}

type service struct {
	pros       professional.Repository
	subs       subscription.Repository
	gateway    Gateway
	notifier   Notifier
	appURL     string
	priceCents int64
}

func NewService(
	pros professional.Repository,
	subs subscription.Repository,
	gateway Gateway,
	notifier Notifier,
	appURL string,
	priceCents int64,
) Service {
	return &service{
		pros:       pros,
		subs:       subs,
		gateway:    gateway,
		notifier:   notifier,
		appURL:     appURL,
		priceCents: priceCents,
	}
}

func (s *service) CreateSubscription(ctx context.Context, professionalID, email string) (string, error) {
	pro, err := s.pros.FindByID(ctx, professionalID)
	if err != nil {
		if errors.Is(err, professional.ErrNotFound) {
			return "", ErrProfessionalNotFound
		}
		return "", fmt.Errorf("load professional: %w", err)
	}

	customer := abacatepay.Customer{
		Name:      pro.FullName,
		Cellphone: pro.Phone,
		Email:     email,
		Metadata:  abacatepay.CustomerMetadata{ExternalID: pro.ID},
	}

	customerID, err := s.resolveCustomerID(ctx, pro, &customer)
	if err != nil {
		return "", err
	}

	paymentURL, err := s.gateway.CreateBilling(ctx, abacatepay.CreateBillingRequest{
		Frequency: abacatepay.FrequencyOneTime,
		Methods:   []string{abacatepay.MethodPix},
		Products: []abacatepay.Product{{
			ExternalID:  productIDPrefix + pro.ID,
			Name:        "Plano Premium",
			Description: "Acesso ao plano premium por 1 mês",
			Quantity:    1,
			Price:       s.priceCents,
		}},
		ReturnURL:     s.appURL + "/area-profissional?success=true",
		CompletionURL: s.appURL + "/area-profissional?success=true",
		CustomerID:    customerID,
		Customer:      customer,
	})
	if err != nil {
		return "", fmt.Errorf("create billing: %w", err)
	}

	if err := s.upsertPendingSubscription(ctx, pro.ID); err != nil {
		return "", err
	}

	metrics.RecordPaymentLink()
	logger.Infof("Payment link created for professional %s", pro.ID)
	return paymentURL, nil
}

// resolveCustomerID reuses the cached provider customer id when present.
// Creating a second customer for the same professional would split the
// billing history across identities, so the cached id always wins.
func (s *service) resolveCustomerID(ctx context.Context, pro *professional.Professional, customer *abacatepay.Customer) (string, error) {
	if pro.PaymentCustomerID != nil && *pro.PaymentCustomerID != "" {
		return *pro.PaymentCustomerID, nil
	}

	customer.TaxID = abacatepay.GenerateTestCPF()

	customerID, err := s.gateway.CreateCustomer(ctx, *customer)
	if err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}

	if err := s.pros.SetPaymentCustomerID(ctx, pro.ID, customerID); err != nil {
		return "", fmt.Errorf("persist customer id: %w", err)
	}

	return customerID, nil
}

// upsertPendingSubscription reuses the currently-active row on
// re-subscription instead of inserting a sibling, so a professional
// never accumulates multiple concurrently-active-looking rows.
func (s *service) upsertPendingSubscription(ctx context.Context, professionalID string) error {
	now := time.Now()
	end := now.Add(subscription.BillingPeriod)

	existing, err := s.subs.GetActiveByProfessional(ctx, professionalID)
	if err != nil && !errors.Is(err, subscription.ErrNotFound) {
		return fmt.Errorf("check active subscription: %w", err)
	}

	if existing != nil {
		if err := s.subs.Renew(ctx, existing.ID, now, end); err != nil {
			return fmt.Errorf("renew subscription: %w", err)
		}
		return nil
	}

	if _, err := s.subs.Create(ctx, professionalID, now, end); err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}

	return nil
}

func (s *service) ProcessEvent(ctx context.Context, env Envelope) error {
	kind := env.Kind()

	var err error
	switch kind {
	case EventBillingCreated:
		err = s.handleBillingCreated(ctx, env.Data.Billing)
	case EventBillingPaid:
		err = s.handleBillingPaid(ctx, env.Data.Billing)
	case EventBillingCanceled:
		err = s.handleBillingCanceled(ctx, env.Data.Billing)
	case EventBillingFailed:
		err = s.handleBillingFailed(ctx, env.Data.Billing)
	case EventUnknown:
		logger.Infof("Ignoring unknown webhook event: %s", env.Event)
		metrics.RecordBillingEvent(env.Event, "ignored")
		return nil
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.RecordBillingEvent(string(kind), outcome)
	return err
}

// handleBillingCreated is a best-effort status refresh: the pending row
// already exists from create-subscription, this just reasserts it.
func (s *service) handleBillingCreated(ctx context.Context, b Billing) error {
	professionalID, ok := b.ProfessionalIDFromMetadata()
	if !ok {
		// Nothing to refresh and a retry cannot fix the payload, so do not
		// make the provider redeliver.
		logger.Warnf("Billing created event without professional id, skipping")
		return nil
	}

	if err := s.subs.MarkPendingByProfessional(ctx, professionalID); err != nil {
		return fmt.Errorf("mark subscriptions pending: %w", err)
	}

	logger.Infof("Billing created for professional %s", professionalID)
	return nil
}

func (s *service) handleBillingPaid(ctx context.Context, b Billing) error {
	professionalID, ok := b.ProfessionalID()
	if !ok {
		return ErrMissingProfessionalID
	}

	pro, err := s.pros.FindByID(ctx, professionalID)
	if err != nil {
		if errors.Is(err, professional.ErrNotFound) {
			return ErrProfessionalNotFound
		}
		return fmt.Errorf("load professional: %w", err)
	}

	pending, err := s.subs.LatestPendingByProfessional(ctx, professionalID)
	if err != nil {
		if errors.Is(err, subscription.ErrNotFound) {
			// Either create-subscription never ran or this delivery is a
			// replay whose pending row was already consumed. Fail loudly
			// so the provider's redelivery surfaces the gap.
			return ErrNoPendingSubscription
		}
		return fmt.Errorf("find pending subscription: %w", err)
	}

	if err := subscription.ValidateTransition(pending.Status, subscription.StatusActive); err != nil {
		return err
	}

	// Critical path: promote the professional, then activate the row.
	if err := s.pros.SetSubscriptionStatus(ctx, professionalID, professional.TierPremium); err != nil {
		return fmt.Errorf("promote professional: %w", err)
	}

	// Best-effort cleanup. The primary activation matters more than
	// sibling hygiene, so a failure here is logged and skipped.
	if n, err := s.subs.DeactivateOtherActive(ctx, professionalID, pending.ID); err != nil {
		logger.Errorf("Failed to deactivate sibling subscriptions for %s: %v", professionalID, err)
	} else if n > 0 {
		logger.Warnf("Deactivated %d stale active subscriptions for %s", n, professionalID)
	}

	activated, err := s.subs.Activate(ctx, pending.ID)
	if err != nil {
		return fmt.Errorf("activate subscription: %w", err)
	}
	if !activated {
		// A concurrent duplicate delivery won the race between our
		// pending lookup and this update.
		return ErrNoPendingSubscription
	}

	metrics.RecordActivation()
	logger.Infof("Subscription %d activated for professional %s", pending.ID, professionalID)

	if s.notifier != nil {
		name := b.Customer.Metadata.Name
		if name == "" {
			name = pro.FullName
		}
		email := b.Customer.Metadata.Email
		if email == "" {
			email = pro.Email
		}
		if err := s.notifier.PaymentConfirmed(ctx, name, email, b.Amount); err != nil {
			logger.Errorf("Failed to queue payment notification for %s: %v", professionalID, err)
		}
	}

	return nil
}

func (s *service) handleBillingCanceled(ctx context.Context, b Billing) error {
	professionalID, ok := b.ProfessionalIDFromMetadata()
	if !ok {
		return ErrMissingProfessionalID
	}

	if err := s.subs.CancelAllByProfessional(ctx, professionalID); err != nil {
		return fmt.Errorf("cancel subscriptions: %w", err)
	}

	if err := s.pros.SetSubscriptionStatus(ctx, professionalID, professional.TierFree); err != nil {
		return fmt.Errorf("demote professional: %w", err)
	}

	logger.Infof("Subscriptions cancelled for professional %s", professionalID)
	return nil
}

// handleBillingFailed cancels subscriptions but leaves the tier alone:
// a failed renewal must not demote an already-premium account, only an
// explicit cancellation does that.
func (s *service) handleBillingFailed(ctx context.Context, b Billing) error {
	professionalID, ok := b.ProfessionalIDFromMetadata()
	if !ok {
		return ErrMissingProfessionalID
	}

	if err := s.subs.CancelAllByProfessional(ctx, professionalID); err != nil {
		return fmt.Errorf("cancel subscriptions: %w", err)
	}

	logger.Infof("Subscriptions cancelled after failed payment for professional %s", professionalID)
	return nil
}

func (s *service) ExpireSubscriptions(ctx context.Context) (int, error) {
	expired, err := s.subs.ListExpired(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("list expired subscriptions: %w", err)
	}

	demoted := 0
	for _, sub := range expired {
		if err := s.subs.MarkInactive(ctx, sub.ID); err != nil {
			logger.Errorf("Failed to expire subscription %d: %v", sub.ID, err)
			continue
		}
		demoted++

		hasActive, err := s.subs.HasActive(ctx, sub.ProfessionalID)
		if err != nil {
			logger.Errorf("Failed to check remaining subscriptions for %s: %v", sub.ProfessionalID, err)
			continue
		}

		if !hasActive {
			if err := s.pros.SetSubscriptionStatus(ctx, sub.ProfessionalID, professional.TierFree); err != nil {
				logger.Errorf("Failed to demote professional %s: %v", sub.ProfessionalID, err)
			}
		}
	}

	if demoted > 0 {
		metrics.RecordExpired(demoted)
		logger.Infof("Expiration sweep demoted %d of %d subscriptions", demoted, len(expired))
	}

	return len(expired), nil
}
