package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"elretiro/console/internal/backend"
	"elretiro/console/internal/guard"
	"elretiro/console/internal/middleware"
	"elretiro/console/internal/models"
	"elretiro/console/internal/service"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	ExpiresAt int64  `json:"expiresAt"`
}

type decisionResponse struct {
	Outcome string `json:"outcome"`
	Target  string `json:"target,omitempty"`
}

func toDecisionResponse(d guard.Decision) decisionResponse {
	return decisionResponse{Outcome: d.Outcome.String(), Target: d.Target}
}

func (h HandlerSet) APILogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}

	result, err := h.authService.SignIn(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		f := classify(err)
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			f.status = http.StatusUnauthorized
		}
		writeFailure(c, f)
		return
	}

	h.sessions.SetCookie(c, result.Session)
	c.JSON(http.StatusOK, gin.H{
		"session":  toSessionResponse(result.Session),
		"decision": toDecisionResponse(result.Decision),
	})
}

func (h HandlerSet) APILogout(c *gin.Context) {
	sess, _ := middleware.CurrentSession(c)

	decision, err := h.authService.SignOut(c.Request.Context(), sess)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", sess.UserID).Msg("sign out failed")
	}

	h.sessions.ClearCookie(c)
	c.JSON(http.StatusOK, gin.H{
		"decision": toDecisionResponse(decision),
	})
}

// APIGuard answers the navigation rule for a client that renders its own
// screens.
func (h HandlerSet) APIGuard(c *gin.Context) {
	_, present := middleware.CurrentSession(c)
	decision := guard.Decide(present, guard.ParseSegment(c.Query("segment")))

	c.JSON(http.StatusOK, gin.H{
		"authenticated": present,
		"decision":      toDecisionResponse(decision),
	})
}

type createUserRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	Phone       string `json:"phone"`
	Role        string `json:"role"`
}

func (h HandlerSet) APICreateUser(c *gin.Context) {
	actor, _ := middleware.CurrentSession(c)

	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}

	profile, err := h.userService.Create(c.Request.Context(), actor, service.CreateUserInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		Role:        req.Role,
	})
	if err != nil {
		writeFailure(c, classify(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": profile,
	})
}

func (h HandlerSet) APIDashboard(c *gin.Context) {
	stats, err := h.dashboardService.Stats(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("dashboard stats failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "stats_unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func writeFailure(c *gin.Context, f failure) {
	if len(f.fields) > 0 {
		c.JSON(f.status, gin.H{"fields": f.fields})
		return
	}
	c.JSON(f.status, gin.H{"error": f.message})
}

func toSessionResponse(s models.Session) sessionResponse {
	return sessionResponse{
		UserID:    s.UserID,
		Email:     s.Email,
		ExpiresAt: s.ExpiresAt.Unix(),
	}
}
