package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/mbaisi200/passaporte-sistema/internal/models"
)

// Interfaces de armazenamento pertencem ao serviço; os repositórios pgx as
// implementam e os testes usam fakes em memória.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, cpfValue string, role models.Role) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

type AllowlistStore interface {
	Get(ctx context.Context, cpfKey string) (*models.AuthorizedCPF, error)
	Upsert(ctx context.Context, entry *models.AuthorizedCPF) error
	MarkHasAccount(ctx context.Context, cpfKey, email string, userID uuid.UUID) error
	SetBlocked(ctx context.Context, cpfKey string, blocked bool) error
	List(ctx context.Context) ([]models.AuthorizedCPF, error)
	Delete(ctx context.Context, cpfKey string) error
}

type SubmissionStore interface {
	Create(ctx context.Context, sub *models.Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, error)
	UpdateStatusAndGate(ctx context.Context, id uuid.UUID, status models.SubmissionStatus) (*models.Submission, error)
}

// BlockedCache é o cache da flag de bloqueio (Redis em produção).
type BlockedCache interface {
	GetBlocked(ctx context.Context, cpfKey string) (blocked, found bool, err error)
	SetBlocked(ctx context.Context, cpfKey string, blocked bool) error
	InvalidateBlocked(ctx context.Context, cpfKey string) error
}

// EventBus publica eventos do stream administrativo e enfileira notificações
// para o worker.
type EventBus interface {
	PublishSubmissionEvent(ctx context.Context, event models.SubmissionEvent) error
	EnqueueNotify(ctx context.Context, event models.NotifyEvent) error
}
