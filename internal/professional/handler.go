package professional

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joaorhodenntc/encontra-mais/internal/api"
	"github.com/joaorhodenntc/encontra-mais/internal/auth"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register godoc
// @Summary      Register a professional
// @Description  Creates a professional account and returns access & refresh tokens.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      RegisterRequest  true  "Registration data"
// @Success      201      {object}  LoginResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pro, accessToken, refreshToken, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	c.JSON(http.StatusCreated, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Professional: *pro,
	})
}

// Login godoc
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      LoginRequest  true  "Credentials"
// @Success      200      {object}  LoginResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      401      {object}  api.ErrorResponse
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pro, accessToken, refreshToken, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Professional: *pro,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh godoc
// @Summary      Refresh access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      refreshRequest  true  "Refresh token"
// @Success      200      {object}  LoginResponse
// @Failure      401      {object}  api.ErrorResponse
// @Router       /auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newAccess, pro, err := h.service.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken:  newAccess,
		RefreshToken: req.RefreshToken,
		Professional: *pro,
	})
}

// GetMe godoc
// @Summary      Current professional profile
// @Tags         professionals
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Professional
// @Failure      401  {object}  api.ErrorResponse
// @Router       /me [get]
func (h *Handler) GetMe(c *gin.Context) {
	id, ok := auth.GetProfessionalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	pro, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	c.JSON(http.StatusOK, pro)
}

// UpdateMe godoc
// @Summary      Update current profile
// @Tags         professionals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      UpdateProfileRequest  true  "Fields to update"
// @Success      200      {object}  Professional
// @Failure      401      {object}  api.ErrorResponse
// @Router       /me [put]
func (h *Handler) UpdateMe(c *gin.Context) {
	id, ok := auth.GetProfessionalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if errs := api.ValidateStruct(req); len(errs) > 0 {
		api.RespondWithValidationErrors(c, errs)
		return
	}

	pro, err := h.service.UpdateProfile(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, pro)
}

// Search godoc
// @Summary      Search professionals
// @Description  Public listing; premium profiles rank first, then verified, then newest.
// @Tags         professionals
// @Produce      json
// @Param        category  query  string  false  "Category filter"
// @Param        city      query  string  false  "City filter"
// @Param        q         query  string  false  "Free-text filter on name and description"
// @Success      200  {array}   Professional
// @Failure      500  {object}  api.ErrorResponse
// @Router       /professionals [get]
func (h *Handler) Search(c *gin.Context) {
	filters := SearchFilters{
		Category: c.Query("category"),
		City:     c.Query("city"),
		Query:    c.Query("q"),
	}

	pros, err := h.service.Search(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search professionals"})
		return
	}

	c.JSON(http.StatusOK, pros)
}

// GetByID godoc
// @Summary      Public professional profile
// @Tags         professionals
// @Produce      json
// @Param        id  path  string  true  "Professional ID"
// @Success      200  {object}  Professional
// @Failure      404  {object}  api.ErrorResponse
// @Router       /professionals/{id} [get]
func (h *Handler) GetByID(c *gin.Context) {
	pro, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Professional not found"})
		return
	}

	c.JSON(http.StatusOK, pro)
}

type submitVerificationRequest struct {
	DocumentURL string `json:"document_url" binding:"required,url"`
}

// SubmitVerification godoc
// @Summary      Submit an identity verification request
// @Tags         verification
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      submitVerificationRequest  true  "Document URL"
// @Success      201      {object}  VerificationRequest
// @Failure      400      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /me/verification [post]
func (h *Handler) SubmitVerification(c *gin.Context) {
	id, ok := auth.GetProfessionalID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req submitVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.service.SubmitVerification(c.Request.Context(), id, req.DocumentURL)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyVerified):
			c.JSON(http.StatusConflict, gin.H{"error": "Account already verified"})
		case errors.Is(err, ErrVerificationPending):
			c.JSON(http.StatusConflict, gin.H{"error": "A verification request is already being reviewed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit verification request"})
		}
		return
	}

	c.JSON(http.StatusCreated, request)
}

// ListVerifications godoc
// @Summary      List pending verification requests
// @Tags         verification
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   VerificationRequest
// @Failure      500  {object}  api.ErrorResponse
// @Router       /admin/verifications [get]
func (h *Handler) ListVerifications(c *gin.Context) {
	reqs, err := h.service.ListPendingVerifications(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list verification requests"})
		return
	}

	c.JSON(http.StatusOK, reqs)
}

type reviewVerificationRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}

// ReviewVerification godoc
// @Summary      Approve or reject a verification request
// @Tags         verification
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Verification request ID"
// @Param        request  body      reviewVerificationRequest  true  "Review decision"
// @Success      200      {object}  VerificationRequest
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /admin/verifications/{id}/review [post]
func (h *Handler) ReviewVerification(c *gin.Context) {
	var req reviewVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.service.ReviewVerification(c.Request.Context(), c.Param("id"), req.Approve, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, ErrVerificationMissing):
			c.JSON(http.StatusNotFound, gin.H{"error": "Verification request not found"})
		case errors.Is(err, ErrAlreadyReviewed):
			c.JSON(http.StatusConflict, gin.H{"error": "Verification request already reviewed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to review verification request"})
		}
		return
	}

	c.JSON(http.StatusOK, request)
}
