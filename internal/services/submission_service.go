package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mbaisi200/passaporte-sistema/internal/apperr"
	"github.com/mbaisi200/passaporte-sistema/internal/cpf"
	"github.com/mbaisi200/passaporte-sistema/internal/metrics"
	"github.com/mbaisi200/passaporte-sistema/internal/models"
)

// SubmissionService cuida do ciclo de vida dos formulários: envio pelo
// cliente, listagem/filtragem e transição de status pelo administrador.
type SubmissionService struct {
	store   SubmissionStore
	blocked BlockedCache
	events  EventBus
	logger  *zap.Logger
}

func NewSubmissionService(store SubmissionStore, blocked BlockedCache, events EventBus, logger *zap.Logger) *SubmissionService {
	return &SubmissionService{
		store:   store,
		blocked: blocked,
		events:  events,
		logger:  logger,
	}
}

// Submit grava um formulário com status "pendente". Campos numéricos chegam
// possivelmente mascarados da camada de apresentação e são limpos antes de
// persistir. Não há restrição de um formulário por CPF.
func (s *SubmissionService) Submit(ctx context.Context, userID uuid.UUID, cpfKey string, payload models.FormPayload) (*models.Submission, error) {
	payload.CPF = cpf.Clean(payload.CPF)
	payload.ResponsibleCPF = cpf.Clean(payload.ResponsibleCPF)
	payload.ZipCode = cpf.Clean(payload.ZipCode)
	payload.Phone = cpf.Clean(payload.Phone)

	sub := &models.Submission{
		ID:     uuid.New(),
		UserID: userID,
		CPF:    cpf.Clean(cpfKey),
		Dados:  payload,
		Status: models.StatusPendente,
	}

	if err := s.store.Create(ctx, sub); err != nil {
		return nil, err
	}

	metrics.SubmissionsCreated.Inc()

	// Eventos são melhor esforço: falha aqui não desfaz o envio.
	event := models.SubmissionEvent{
		Type:         "created",
		SubmissionID: sub.ID,
		CPF:          sub.CPF,
		Status:       sub.Status,
		Timestamp:    time.Now(),
	}
	if err := s.events.PublishSubmissionEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish submission event", zap.Error(err))
	}

	notify := models.NotifyEvent{
		Type:      "submission_received",
		Email:     payload.Email,
		CPF:       sub.CPF,
		Timestamp: time.Now(),
	}
	if err := s.events.EnqueueNotify(ctx, notify); err != nil {
		s.logger.Warn("failed to enqueue submission receipt", zap.Error(err))
	}

	return sub, nil
}

// SetStatus aplica a transição de status e o efeito colateral no acesso:
// "processado" bloqueia o CPF, "pendente" desbloqueia. As duas escritas
// acontecem na mesma transação do repositório; repetir a mesma transição é
// idempotente.
func (s *SubmissionService) SetStatus(ctx context.Context, id uuid.UUID, status models.SubmissionStatus) (*models.Submission, error) {
	if status != models.StatusPendente && status != models.StatusProcessado {
		return nil, apperr.New(apperr.KindValidation, fmt.Sprintf("Status inválido: %s", status))
	}

	sub, err := s.store.UpdateStatusAndGate(ctx, id, status)
	if err != nil {
		return nil, err
	}

	if err := s.blocked.InvalidateBlocked(ctx, sub.CPF); err != nil {
		s.logger.Warn("failed to invalidate blocked cache", zap.String("cpf", sub.CPF), zap.Error(err))
	}

	metrics.StatusTransitions.WithLabelValues(string(status)).Inc()

	event := models.SubmissionEvent{
		Type:         "status",
		SubmissionID: sub.ID,
		CPF:          sub.CPF,
		Status:       sub.Status,
		Timestamp:    time.Now(),
	}
	if err := s.events.PublishSubmissionEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish status event", zap.Error(err))
	}

	return sub, nil
}

// List devolve os formulários filtrados no banco, mais recentes primeiro.
// "todos" (valor da tela original) equivale a sem filtro de status.
func (s *SubmissionService) List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, error) {
	if filter.Status == "todos" {
		filter.Status = ""
	}
	return s.store.List(ctx, filter)
}

// Get busca um formulário pelo identificador.
func (s *SubmissionService) Get(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	return s.store.GetByID(ctx, id)
}
