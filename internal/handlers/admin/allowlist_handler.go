package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mbaisi200/passaporte-sistema/internal/handlers"
	"github.com/mbaisi200/passaporte-sistema/internal/models"
	"github.com/mbaisi200/passaporte-sistema/internal/services"
)

// AllowlistHandler expõe a gestão da lista de CPFs autorizados.
type AllowlistHandler struct {
	accounts *services.AccountService
}

func NewAllowlistHandler(accounts *services.AccountService) *AllowlistHandler {
	return &AllowlistHandler{accounts: accounts}
}

// List devolve todas as entradas da lista
func (h *AllowlistHandler) List(c *gin.Context) {
	entries, err := h.accounts.ListAllowlist(c.Request.Context())
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	if entries == nil {
		entries = []models.AuthorizedCPF{}
	}
	c.JSON(http.StatusOK, gin.H{"cpfs": entries})
}

// Add cadastra o CPF e provisiona a conta do cliente com a senha temporária.
// A senha aparece uma única vez, nesta resposta.
func (h *AllowlistHandler) Add(c *gin.Context) {
	var req models.AddCPFRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adminID := c.MustGet("user_id").(uuid.UUID)

	resp, err := h.accounts.ProvisionClientByAdmin(c.Request.Context(), adminID, req.CPF)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Delete remove a entrada da lista. A conta e os formulários do CPF não são
// removidos.
func (h *AllowlistHandler) Delete(c *gin.Context) {
	if err := h.accounts.DeleteAllowlistEntry(c.Request.Context(), c.Param("cpf")); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "CPF removido com sucesso."})
}

// SetBlocked liga ou desliga o bloqueio de acesso do CPF
func (h *AllowlistHandler) SetBlocked(c *gin.Context) {
	var req models.SetBlockedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.accounts.SetBlocked(c.Request.Context(), c.Param("cpf"), req.Blocked); err != nil {
		handlers.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"blocked": req.Blocked})
}
