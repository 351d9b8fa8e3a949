package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mbaisi200/passaporte-sistema/internal/models"
	"github.com/mbaisi200/passaporte-sistema/internal/services"
)

// SubmissionHandler é a face do cliente: envio do formulário. Listagem e
// transição de status ficam na API administrativa.
type SubmissionHandler struct {
	submissions *services.SubmissionService
}

func NewSubmissionHandler(submissions *services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions}
}

// Submit grava o formulário do cliente autenticado com status "pendente"
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var req models.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.MustGet("user_id").(uuid.UUID)
	cpfValue := c.MustGet("cpf").(string)

	sub, err := h.submissions.Submit(c.Request.Context(), userID, cpfValue, req.Dados)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         sub.ID,
		"status":     sub.Status,
		"created_at": sub.CreatedAt,
		"message":    "Formulário enviado com sucesso!",
	})
}
