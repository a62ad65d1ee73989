// Package notify queues Discord-webhook notifications through Redis and
// drains the queue from a background worker. Delivery is best-effort:
// the billing and verification flows never block on it.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joaorhodenntc/encontra-mais/internal/logger"
	"github.com/joaorhodenntc/encontra-mais/internal/metrics"
)

const (
	queueKey       = "notifications"
	failedQueueKey = "notifications:failed"

	TypePayment      = "payment"
	TypeVerification = "verification"

	embedColor = 0xf87115
)

type EmbedField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Embed struct {
	Title  string       `json:"title"`
	Color  int          `json:"color"`
	Fields []EmbedField `json:"fields"`
}

type webhookPayload struct {
	Username string  `json:"username"`
	Embeds   []Embed `json:"embeds"`
}

type Job struct {
	Type       string    `json:"type"`
	WebhookURL string    `json:"webhook_url"`
	Embed      Embed     `json:"embed"`
	Tries      int       `json:"tries"`
	Created    time.Time `json:"created"`
}

type Service struct {
	redis            *redis.Client
	paymentsURL      string
	verificationsURL string
	httpClient       *http.Client
}

func New(redisAddr, paymentsURL, verificationsURL string) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		paymentsURL:      paymentsURL,
		verificationsURL: verificationsURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewWithClient wires an existing redis client, used by tests.
func NewWithClient(client *redis.Client, paymentsURL, verificationsURL string) *Service {
	return &Service{
		redis:            client,
		paymentsURL:      paymentsURL,
		verificationsURL: verificationsURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *Service) PaymentConfirmed(ctx context.Context, fullName, email string, amountCents int64) error {
	return s.enqueue(ctx, Job{
		Type:       TypePayment,
		WebhookURL: s.paymentsURL,
		Embed: Embed{
			Title: "💰 Nova Assinatura",
			Color: embedColor,
			Fields: []EmbedField{
				{Name: "Profissional", Value: fullName},
				{Name: "Email", Value: email},
				{Name: "Valor", Value: fmt.Sprintf("R$ %.2f", float64(amountCents)/100)},
				{Name: "Status", Value: "Pago ✅"},
			},
		},
	})
}

func (s *Service) VerificationSubmitted(ctx context.Context, fullName, email, documentURL string) error {
	return s.enqueue(ctx, Job{
		Type:       TypeVerification,
		WebhookURL: s.verificationsURL,
		Embed: Embed{
			Title: "🪪 Nova Solicitação de Verificação",
			Color: embedColor,
			Fields: []EmbedField{
				{Name: "Profissional", Value: fullName},
				{Name: "Email", Value: email},
				{Name: "Documento", Value: documentURL},
			},
		},
	})
}

func (s *Service) enqueue(ctx context.Context, job Job) error {
	if job.WebhookURL == "" {
		// Channel not configured; drop silently so local setups work
		// without Discord credentials.
		return nil
	}

	job.Created = time.Now()

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal notification job: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		logger.Errorf("Failed to queue %s notification: %v", job.Type, err)
		return err
	}

	metrics.NotificationQueueLength.Set(float64(s.QueueLength(ctx)))
	logger.Infof("Notification queued: %s", job.Type)
	return nil
}

func (s *Service) Start(ctx context.Context) {
	logger.Info("Notification service started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification service stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad notification data: %v", err)
		return
	}

	job.Tries++
	if err := s.deliver(ctx, job); err != nil {
		logger.Errorf("Failed to deliver %s notification: %v", job.Type, err)

		if job.Tries < 3 {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
			return
		}

		metrics.RecordNotification(job.Type, "failed")
		s.saveFailed(job, err)
		return
	}

	metrics.RecordNotification(job.Type, "success")
	logger.Infof("Notification delivered: %s", job.Type)
}

func (s *Service) deliver(ctx context.Context, job Job) error {
	payload := webhookPayload{
		Username: "Notificador",
		Embeds:   []Embed{job.Embed},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, job.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("discord webhook returned status %d", resp.StatusCode)
	}

	return nil
}

func (s *Service) saveFailed(job Job, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedQueueKey, data)
	logger.Errorf("Notification moved to failed queue: %s", job.Type)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}
