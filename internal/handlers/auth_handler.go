package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mbaisi200/passaporte-sistema/internal/config"
	"github.com/mbaisi200/passaporte-sistema/internal/metrics"
	"github.com/mbaisi200/passaporte-sistema/internal/models"
	"github.com/mbaisi200/passaporte-sistema/internal/services"
	"github.com/mbaisi200/passaporte-sistema/internal/utils"
)

type AuthHandler struct {
	accounts *services.AccountService
	cfg      *config.Config
}

func NewAuthHandler(accounts *services.AccountService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{accounts: accounts, cfg: cfg}
}

// Register é o auto-cadastro do cliente: CPF precisa passar no dígito
// verificador e estar na lista de autorização.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Password != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "As senhas não coincidem."})
		return
	}
	if len(req.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A senha deve ter pelo menos 6 caracteres."})
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), req.CPF, req.Email, req.Password)
	if err != nil {
		RespondError(c, err)
		return
	}

	token, err := utils.GenerateJWT(user, h.cfg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	response := models.LoginResponse{Token: token}
	response.User.ID = user.ID
	response.User.Email = user.Email
	response.User.CPF = user.CPF
	response.User.Role = user.Role

	c.JSON(http.StatusCreated, response)
}

// Login autentica por CPF (clientes) ou email (admin)
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.accounts.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		RespondError(c, err)
		return
	}

	token, err := utils.GenerateJWT(user, h.cfg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()

	response := models.LoginResponse{Token: token}
	response.User.ID = user.ID
	response.User.Email = user.Email
	response.User.CPF = user.CPF
	response.User.Role = user.Role

	c.JSON(http.StatusOK, response)
}

// GetMe devolve a conta do token autenticado
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	user, err := h.accounts.GetUser(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":    user.ID,
		"email": user.Email,
		"cpf":   user.CPF,
		"role":  user.Role,
	})
}

// ResetPassword enfileira o pedido de redefinição. A resposta é a mesma para
// email conhecido ou não.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.accounts.RequestPasswordReset(c.Request.Context(), req.Email)

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Se o email estiver cadastrado, você receberá as instruções de redefinição.",
	})
}
