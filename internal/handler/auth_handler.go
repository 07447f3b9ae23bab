package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_market/internal/middleware"
	"github.com/GTDGit/gtd_market/internal/models"
	"github.com/GTDGit/gtd_market/internal/service"
	"github.com/GTDGit/gtd_market/internal/utils"
	"github.com/GTDGit/gtd_market/pkg/account"
)

type AuthHandler struct {
	authService *service.AuthService
	limiter     *middleware.LoginRateLimiter
}

func NewAuthHandler(authService *service.AuthService, limiter *middleware.LoginRateLimiter) *AuthHandler {
	return &AuthHandler{authService: authService, limiter: limiter}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	ip := c.ClientIP()
	if h.limiter.Blocked(ip) {
		utils.Error(c, 429, "TOO_MANY_REQUESTS", "Too many failed login attempts")
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrInvalidCredentials), errors.Is(err, utils.ErrAccountInactive):
			if !h.limiter.Fail(ip) {
				utils.Error(c, 429, "TOO_MANY_REQUESTS", "Too many failed login attempts")
				return
			}
			utils.Error(c, 401, err.Error(), "Invalid email or password")
		default:
			respondError(c, err)
		}
		return
	}
	h.limiter.Reset(ip)

	utils.Success(c, 200, "Login successful", gin.H{
		"token": token,
		"user":  models.NewUserResponse(user),
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.authService.Logout(middleware.GetActor(c))
	utils.Success(c, 200, "Logout successful", nil)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Name     string `json:"name" binding:"required"`
		Role     string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	role, err := account.ParseRole(req.Role)
	if err != nil {
		utils.ValidationError(c, "Invalid role", map[string]string{"role": "must be client or master"})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Email, req.Password, req.Name, role)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 201, "Registration successful", models.NewUserResponse(user))
}
