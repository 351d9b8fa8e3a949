package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mbaisi200/passaporte-sistema/internal/apperr"
	"github.com/mbaisi200/passaporte-sistema/internal/config"
	"github.com/mbaisi200/passaporte-sistema/internal/metrics"
	"github.com/mbaisi200/passaporte-sistema/internal/models"
	"github.com/mbaisi200/passaporte-sistema/internal/utils"
)

// AuthMiddleware valida o JWT e injeta a identidade no contexto da requisição
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>" format
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(parts[1], cfg)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("cpf", claims.CPF)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// RequireRole exige que o token autenticado carregue o papel informado
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		got, ok := c.Get("role")
		if !ok || got.(models.Role) != role {
			c.JSON(http.StatusForbidden, gin.H{"error": "acesso negado"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// BlockedChecker resolve a flag de bloqueio do CPF autenticado.
type BlockedChecker interface {
	IsBlocked(ctx context.Context, rawCPF string) (bool, error)
}

// BlockedGate barra clientes cujo CPF foi bloqueado. Admin nunca é barrado
// (o CPF sentinela não tem entrada na lista). A checagem acontece a cada
// requisição para que o bloqueio valha mesmo com token ainda vigente.
func BlockedGate(checker BlockedChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if role, ok := c.Get("role"); ok && role.(models.Role) == models.RoleAdmin {
			c.Next()
			return
		}

		cpfValue, ok := c.Get("cpf")
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		blocked, err := checker.IsBlocked(c.Request.Context(), cpfValue.(string))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": apperr.UserMessage(err)})
			c.Abort()
			return
		}
		if blocked {
			metrics.BlockedDenials.Inc()
			c.JSON(http.StatusForbidden, gin.H{
				"code":  string(apperr.KindBlocked),
				"error": apperr.ErrBlocked.Message,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
