package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/mbaisi200/passaporte-sistema/internal/apperr"
)

// RespondError converte o erro de domínio em status e corpo de resposta. O
// campo "code" permite que a interface trate casos específicos sem depender
// do texto da mensagem.
func RespondError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{
		"code":  string(apperr.KindOf(err)),
		"error": apperr.UserMessage(err),
	})
}
