package api

import (
	"errors"
	"net/http"
	"time"

	reqdto "travleap-core/internal/handler/dto/request"
	resdto "travleap-core/internal/handler/dto/response"
	"travleap-core/internal/handler/middleware"
	"travleap-core/internal/pkg/config"
	"travleap-core/internal/pkg/cookie"
	"travleap-core/internal/usecase"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUseCase usecase.AuthUseCase
	cookieCfg   config.CookieConfig
	jwtCfg      config.JWTConfig
}

func NewAuthHandler(authUseCase usecase.AuthUseCase, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
		cookieCfg:   cfg.Cookie,
		jwtCfg:      cfg.JWT,
	}
}

// @Summary Account login
// @Description Login with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body reqdto.LoginRequest true "Login request"
// @Success 200 {object} resdto.LoginResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req reqdto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	credentials, err := req.ToDomain()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request data",
		})
		return
	}

	token, acc, err := h.authUseCase.Login(c.Request.Context(), credentials)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid email or password",
			})
		case errors.Is(err, usecase.ErrAccountInactive):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Account is inactive",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	if expiry, parseErr := time.ParseDuration(h.jwtCfg.Duration); parseErr == nil {
		cookie.SetAccessTokenCookie(c, h.cookieCfg, token, expiry)
	}

	c.JSON(http.StatusOK, resdto.LoginResponse{
		AccessToken: token,
		Account:     resdto.FromAccount(acc),
	})
}

// @Summary Account logout
// @Description Logout current session
// @Tags auth
// @Security BearerAuth
// @Success 204 "No Content"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	cookie.ClearAccessTokenCookie(c, h.cookieCfg)
	c.Status(http.StatusNoContent)
}

// @Summary Get current account
// @Description Get current authenticated account information
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} resdto.AccountResponse
// @Failure 401 {object} map[string]string
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Not authenticated",
		})
		return
	}

	acc, err := h.authUseCase.GetCurrentAccount(c.Request.Context(), accountID)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrAccountInactive):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Account is inactive",
			})
		default:
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Account not found",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromAccount(acc))
}
