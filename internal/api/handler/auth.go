package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/memelab/memeqa/internal/api/middleware"
	"github.com/memelab/memeqa/internal/service"
)

// AuthHandler handles registration, login-link, and profile endpoints.
type AuthHandler struct {
	auth     *service.AuthService
	identity *service.IdentityService
	stats    *service.StatsService
}

// NewAuthHandler creates a new auth handler.
// Parameters:
//   - auth: auth service.
//   - identity: identity resolver, used for logout.
//   - stats: stats service, used for the profile view.
// Returns:
//   - *AuthHandler: initialized handler.
func NewAuthHandler(auth *service.AuthService, identity *service.IdentityService, stats *service.StatsService) *AuthHandler {
	return &AuthHandler{auth: auth, identity: identity, stats: stats}
}

// Register handles POST /api/v1/auth/register.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *AuthHandler) Register(c *gin.Context) {
	actor := middleware.GetActor(c)

	var sub service.RegistrationSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration payload"})
		return
	}

	account, err := h.auth.Register(c.Request.Context(), actor, &sub)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"account": account})
}

// RequestLogin handles POST /api/v1/auth/login/request.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *AuthHandler) RequestLogin(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	}

	if err := h.auth.RequestLogin(c.Request.Context(), req.Email); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Login link sent"})
}

// Login handles GET /api/v1/auth/login?token=...
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *AuthHandler) Login(c *gin.Context) {
	actor := middleware.GetActor(c)

	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Login token is required"})
		return
	}

	account, err := h.auth.LoginWithToken(c.Request.Context(), actor.SessionID, token)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": account})
}

// Logout handles POST /api/v1/auth/logout.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *AuthHandler) Logout(c *gin.Context) {
	actor := middleware.GetActor(c)

	if err := h.identity.Logout(c.Request.Context(), actor.SessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log out"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Profile handles GET /api/v1/auth/profile.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *AuthHandler) Profile(c *gin.Context) {
	actor := middleware.GetActor(c)
	if !actor.IsRegistered() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
		return
	}

	profile, err := h.stats.ProfileFor(c.Request.Context(), actor.Account)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}
