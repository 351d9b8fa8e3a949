package admin

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mbaisi200/passaporte-sistema/internal/config"
	"github.com/mbaisi200/passaporte-sistema/internal/services"
)

// SetupHandler cuida do bootstrap único da conta administrativa.
type SetupHandler struct {
	accounts *services.AccountService
	cfg      *config.Config
	logger   *zap.Logger
}

func NewSetupHandler(accounts *services.AccountService, cfg *config.Config, logger *zap.Logger) *SetupHandler {
	return &SetupHandler{accounts: accounts, cfg: cfg, logger: logger}
}

// InitAdmin cria (ou confirma) a conta administrativa. Protegido pela chave de
// setup; idempotente, então pode ser chamado de novo sem efeito colateral.
func (h *SetupHandler) InitAdmin(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		key = c.GetHeader("X-Setup-Key")
	}
	if subtle.ConstantTimeCompare([]byte(key), []byte(h.cfg.Admin.SetupKey)) != 1 {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "chave de setup inválida"})
		return
	}

	admin, created, err := h.accounts.ProvisionAdmin(c.Request.Context())
	if err != nil {
		h.logger.Error("admin bootstrap failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	message := "Usuário admin já existia. Perfil verificado."
	if created {
		message = "Usuário admin criado com sucesso!"
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"uid":     admin.ID,
		"email":   admin.Email,
	})
}
