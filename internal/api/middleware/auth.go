package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/kedr891/metal-rates-service/pkg/logger"
)

// AuthMiddleware - middleware для JWT аутентификации
type AuthMiddleware struct {
	jwtSecret string
	log       *logger.Logger
}

// NewAuthMiddleware - создать middleware аутентификации
func NewAuthMiddleware(jwtSecret string, log *logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		log:       log,
	}
}

// RequireAuth - проверка JWT токена из заголовка Authorization
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return m.requireAuth(false)
}

// RequireStreamAuth - проверка JWT для SSE-потока. Браузерный EventSource
// не умеет ставить заголовки, поэтому только здесь допускается
// query-параметр token; на остальных маршрутах токен в query не принимается,
// чтобы не оседать в логах доступа.
func (m *AuthMiddleware) RequireStreamAuth() gin.HandlerFunc {
	return m.requireAuth(true)
}

func (m *AuthMiddleware) requireAuth(allowQueryToken bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := m.extractToken(c, allowQueryToken)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization is required"})
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(m.jwtSecret), nil
		})

		if err != nil {
			m.log.Debug("Failed to parse JWT", "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		if !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is not valid"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		if userID, ok := claims["user_id"].(string); ok {
			c.Set("user_id", userID)
		}
		if role, ok := claims["role"].(string); ok {
			c.Set("role", role)
		}

		c.Next()
	}
}

// RequireAdmin - проверка, что вызывающий администратор
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) extractToken(c *gin.Context, allowQueryToken bool) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	if allowQueryToken {
		return c.Query("token")
	}
	return ""
}
