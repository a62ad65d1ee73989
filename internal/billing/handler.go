package billing

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joaorhodenntc/encontra-mais/internal/api"
	"github.com/joaorhodenntc/encontra-mais/internal/logger"
)

type Handler struct {
	service       Service
	webhookSecret string
}

func NewHandler(service Service, webhookSecret string) *Handler {
	return &Handler{
		service:       service,
		webhookSecret: webhookSecret,
	}
}

type CreateSubscriptionRequest struct {
	UserID string `json:"userId" binding:"required"`
	Email  string `json:"email" binding:"required,email"`
}

// CreateSubscription godoc
// @Summary      Start a premium subscription checkout
// @Description  Creates the payment provider customer if needed, upserts a pending subscription and returns the hosted payment URL.
// @Tags         billing
// @Accept       json
// @Produce      json
// @Param        request  body      CreateSubscriptionRequest  true  "Professional id and billing email"
// @Success      200      {object}  api.PaymentLinkResponse
// @Failure      400      {object}  api.MessageResponse
// @Failure      500      {object}  api.MessageResponse
// @Router       /api/subscriptions [post]
func (h *Handler) CreateSubscription(c *gin.Context) {
	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Dados incompletos"})
		return
	}

	paymentURL, err := h.service.CreateSubscription(c.Request.Context(), req.UserID, req.Email)
	if err != nil {
		logger.Errorf("Failed to create subscription for %s: %v", req.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Erro ao processar cobrança",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, api.PaymentLinkResponse{PaymentURL: paymentURL})
}

// Webhook godoc
// @Summary      AbacatePay webhook receiver
// @Description  Applies payment lifecycle events. Hard reconciliation failures answer 500 so the provider redelivers.
// @Tags         billing
// @Accept       json
// @Produce      json
// @Param        webhookSecret  query     string    true  "Shared webhook secret"
// @Param        event          body      Envelope  true  "Event envelope"
// @Success      200            {object}  api.WebhookAckResponse
// @Failure      401            {object}  api.MessageResponse
// @Failure      500            {object}  api.MessageResponse
// @Router       /api/webhooks/abacatepay [post]
func (h *Handler) Webhook(c *gin.Context) {
	secret := c.Query("webhookSecret")
	if secret == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Secret não encontrado"})
		return
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(h.webhookSecret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Secret inválido"})
		return
	}

	var env Envelope
	if err := c.ShouldBindJSON(&env); err != nil {
		logger.Errorf("Failed to parse webhook payload: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Erro ao processar webhook"})
		return
	}

	if err := h.service.ProcessEvent(c.Request.Context(), env); err != nil {
		// Non-2xx so the provider's retry policy redelivers; see
		// ErrNoPendingSubscription for why this must not be swallowed.
		logger.Errorf("Failed to process %s event: %v", env.Event, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Erro ao processar webhook"})
		return
	}

	c.JSON(http.StatusOK, api.WebhookAckResponse{Received: true})
}

// ExpireSubscriptions godoc
// @Summary      Expiration sweep
// @Description  Demotes active subscriptions past their end date. Intended to be hit by an external scheduler.
// @Tags         billing
// @Produce      json
// @Param        secret  query     string  true  "Shared webhook secret"
// @Success      200     {object}  api.ExpireResponse
// @Failure      401     {object}  api.MessageResponse
// @Failure      500     {object}  api.MessageResponse
// @Router       /api/subscriptions/expire [get]
func (h *Handler) ExpireSubscriptions(c *gin.Context) {
	secret := c.Query("secret")
	if secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(h.webhookSecret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Secret inválido"})
		return
	}

	count, err := h.service.ExpireSubscriptions(c.Request.Context())
	if err != nil {
		logger.Errorf("Expiration sweep failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Erro ao verificar assinaturas expiradas",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, api.ExpireResponse{
		Message:      "Verificação de assinaturas expiradas concluída",
		ExpiredCount: count,
	})
}
