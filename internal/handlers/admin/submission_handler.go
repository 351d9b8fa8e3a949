package admin

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mbaisi200/passaporte-sistema/internal/apperr"
	"github.com/mbaisi200/passaporte-sistema/internal/handlers"
	"github.com/mbaisi200/passaporte-sistema/internal/models"
	"github.com/mbaisi200/passaporte-sistema/internal/services"
)

// EventSubscriber entrega os eventos de formulário publicados no Redis.
type EventSubscriber interface {
	SubscribeSubmissionEvents(ctx context.Context) (<-chan models.SubmissionEvent, func(), error)
}

// SubmissionHandler é a face administrativa dos formulários: listagem com
// filtro, transição de status, exportação e stream de eventos.
type SubmissionHandler struct {
	submissions *services.SubmissionService
	subscriber  EventSubscriber
	logger      *zap.Logger
	upgrader    websocket.Upgrader
}

func NewSubmissionHandler(submissions *services.SubmissionService, subscriber EventSubscriber, logger *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissions: submissions,
		subscriber:  subscriber,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// O token já foi validado pelo middleware; origem fica a cargo do CORS.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// List devolve os formulários filtrados no banco. Aceita ?q= (nome, email ou
// CPF) e ?status= (pendente, processado ou todos).
func (h *SubmissionHandler) List(c *gin.Context) {
	filter := models.SubmissionFilter{
		Search: c.Query("q"),
		Status: models.SubmissionStatus(c.Query("status")),
	}

	subs, err := h.submissions.List(c.Request.Context(), filter)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	if subs == nil {
		subs = []models.Submission{}
	}

	c.JSON(http.StatusOK, gin.H{"formularios": subs})
}

// Get devolve um formulário pelo id
func (h *SubmissionHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handlers.RespondError(c, apperr.ErrSubmissionNotFound)
		return
	}

	sub, err := h.submissions.Get(c.Request.Context(), id)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

// SetStatus aplica a transição de status. "processado" encerra o acesso do
// cliente; "pendente" devolve.
func (h *SubmissionHandler) SetStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handlers.RespondError(c, apperr.ErrSubmissionNotFound)
		return
	}

	var req models.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.submissions.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

// Export baixa o dossiê em texto do formulário
func (h *SubmissionHandler) Export(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handlers.RespondError(c, apperr.ErrSubmissionNotFound)
		return
	}

	sub, err := h.submissions.Get(c.Request.Context(), id)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	body := services.ExportText(sub, time.Now())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", services.ExportFileName(sub)))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
}

// Stream abre um WebSocket e repassa os eventos de criação e mudança de
// status conforme chegam pelo pub/sub.
func (h *SubmissionHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	events, unsubscribe, err := h.subscriber.SubscribeSubmissionEvents(ctx)
	if err != nil {
		h.logger.Error("failed to subscribe to submission events", zap.Error(err))
		return
	}
	defer unsubscribe()

	// Leitura só para detectar o fechamento pelo cliente.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}
