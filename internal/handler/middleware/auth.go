package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"travleap-core/internal/domain/account"
	"travleap-core/internal/pkg/cookie"
	"travleap-core/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthMiddleware struct {
	tokenValidator usecase.TokenValidator
}

const (
	ctxAccountIDKey   = "account_id"
	ctxAccountRoleKey = "account_role"
)

var roleHierarchy = map[account.Role]int{
	account.RoleTraveler: 1,
	account.RoleStaff:    2,
	account.RoleAdmin:    3,
}

func NewAuthMiddleware(tokenValidator usecase.TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: tokenValidator,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string

		token = cookie.GetAccessToken(c)

		if token == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				token = strings.TrimSpace(authHeader[len("Bearer "):])
			}
		}

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Access token required",
			})
			c.Abort()
			return
		}

		accountID, role, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(ctxAccountIDKey, accountID)
		c.Set(ctxAccountRoleKey, role)
		c.Next()
	}
}

func hasMinimumRole(accountRole, minRole account.Role) bool {
	accountLevel, accountExists := roleHierarchy[accountRole]
	minLevel, minExists := roleHierarchy[minRole]
	return accountExists && minExists && accountLevel >= minLevel
}

func (m *AuthMiddleware) RequireRoleAtLeast(minRole account.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetAccountRole(c)
		if !ok {
			// Unexpected error: should be used after RequireAuth()
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
			c.Abort()
			return
		}

		if !hasMinimumRole(role, minRole) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Insufficient permissions",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func GetAccountID(c *gin.Context) (uuid.UUID, bool) {
	accountID, exists := c.Get(ctxAccountIDKey)
	if !exists {
		return uuid.Nil, false
	}

	id, ok := accountID.(uuid.UUID)
	return id, ok
}

func GetAccountRole(c *gin.Context) (account.Role, bool) {
	accountRole, exists := c.Get(ctxAccountRoleKey)
	if !exists {
		return "", false
	}

	role, ok := accountRole.(account.Role)
	return role, ok
}

// GetActor assembles the usecase actor from the authenticated context.
func GetActor(c *gin.Context) (usecase.Actor, bool) {
	id, ok := GetAccountID(c)
	if !ok {
		return usecase.Actor{}, false
	}
	role, ok := GetAccountRole(c)
	if !ok {
		return usecase.Actor{}, false
	}
	return usecase.Actor{ID: id, Role: role}, true
}
