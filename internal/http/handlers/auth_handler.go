package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/lostfound-backend/internal/http/handlers/common"
	"github.com/ignatzorin/lostfound-backend/internal/service"
)

// AuthHandler предоставляет HTTP слой для регистрации, входа и сессий.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler создаёт хэндлер.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type emailRequest struct {
	Email string `json:"email" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RequestSignupCode обрабатывает POST /auth/signup/code.
func (h *AuthHandler) RequestSignupCode(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "email обязателен")
		return
	}

	if err := h.auth.RequestSignupCode(c.Request.Context(), req.Email); err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "код отправлен на почту"})
}

// Register обрабатывает POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email        string `json:"email" binding:"required"`
		Password     string `json:"password" binding:"required"`
		Code         string `json:"code" binding:"required"`
		DisplayName  string `json:"display_name" binding:"required"`
		IsPartner    bool   `json:"is_partner"`
		BusinessName string `json:"business_name"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "email, пароль, код и имя обязательны")
		return
	}

	result, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Email:        req.Email,
		Password:     req.Password,
		Code:         req.Code,
		DisplayName:  req.DisplayName,
		IsPartner:    req.IsPartner,
		BusinessName: req.BusinessName,
	}, sessionMeta(c))
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":   result.User,
		"tokens": result.TokenPair,
	})
}

// Login обрабатывает POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "email и пароль обязательны")
		return
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, sessionMeta(c))
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":   result.User,
		"tokens": result.TokenPair,
	})
}

// Refresh обрабатывает POST /auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "refresh_token обязателен")
		return
	}

	tokens, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken, sessionMeta(c))
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// Logout обрабатывает POST /auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "refresh_token обязателен")
		return
	}

	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListSessions обрабатывает GET /auth/sessions.
func (h *AuthHandler) ListSessions(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c)
		return
	}

	sessions, err := h.auth.ListSessions(c.Request.Context(), userID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// DeleteSession обрабатывает DELETE /auth/sessions/:id.
func (h *AuthHandler) DeleteSession(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c)
		return
	}

	sessionID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный идентификатор сессии")
		return
	}

	if err := h.auth.DeleteSession(c.Request.Context(), sessionID, userID); err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RequestPasswordReset обрабатывает POST /auth/password/code. Ответ не зависит
// от того, зарегистрирован ли email.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "email обязателен")
		return
	}

	if err := h.auth.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "если аккаунт существует, код отправлен на почту"})
}

// ResetPassword обрабатывает POST /auth/password/reset.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required"`
		Code        string `json:"code" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "email, код и новый пароль обязательны")
		return
	}

	err := h.auth.ResetPassword(c.Request.Context(), service.ResetPasswordInput{
		Email:       req.Email,
		Code:        req.Code,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "пароль обновлён, войдите заново"})
}

// Me обрабатывает GET /me.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c)
		return
	}

	user, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func sessionMeta(c *gin.Context) service.SessionMeta {
	return service.SessionMeta{
		UserAgent: c.GetHeader("User-Agent"),
		IP:        c.ClientIP(),
	}
}
