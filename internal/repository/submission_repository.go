package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mbaisi200/passaporte-sistema/internal/apperr"
	"github.com/mbaisi200/passaporte-sistema/internal/models"
)

type SubmissionRepository struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// Create insere um formulário. O payload vai como JSONB.
func (r *SubmissionRepository) Create(ctx context.Context, sub *models.Submission) error {
	dados, err := json.Marshal(sub.Dados)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO submissions (id, user_id, cpf, dados, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err = r.pool.QueryRow(ctx, query, sub.ID, sub.UserID, sub.CPF, dados, sub.Status).Scan(&sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}

	return nil
}

// GetByID busca um formulário pelo identificador
func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	sub := &models.Submission{}
	var dados []byte

	query := `
		SELECT id, user_id, cpf, dados, status, created_at
		FROM submissions
		WHERE id = $1
	`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&sub.ID,
		&sub.UserID,
		&sub.CPF,
		&dados,
		&sub.Status,
		&sub.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Wrap(apperr.KindNotFound, apperr.ErrSubmissionNotFound.Message, err)
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	if err := json.Unmarshal(dados, &sub.Dados); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return sub, nil
}

// List devolve os formulários mais recentes primeiro, com o filtro aplicado
// no banco: busca livre sobre nome, CPF e email, e status exato.
func (r *SubmissionRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, error) {
	query := `
		SELECT id, user_id, cpf, dados, status, created_at
		FROM submissions
		WHERE ($1 = ''
			OR ($2 <> '' AND cpf LIKE '%' || $2 || '%')
			OR dados->>'fullName' ILIKE '%' || $1 || '%'
			OR dados->>'email' ILIKE '%' || $1 || '%')
		AND ($3 = '' OR status = $3)
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, filter.Search, digitsOf(filter.Search), string(filter.Status))
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var subs []models.Submission
	for rows.Next() {
		var sub models.Submission
		var dados []byte
		if err := rows.Scan(
			&sub.ID,
			&sub.UserID,
			&sub.CPF,
			&dados,
			&sub.Status,
			&sub.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		if err := json.Unmarshal(dados, &sub.Dados); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
		}
		subs = append(subs, sub)
	}

	return subs, rows.Err()
}

// UpdateStatusAndGate atualiza o status do formulário e a flag de bloqueio da
// entrada de autorização na mesma transação: "processado" bloqueia o CPF,
// "pendente" desbloqueia. A entrada pode não existir mais (exclusão sem
// cascata); nesse caso só o status muda.
func (r *SubmissionRepository) UpdateStatusAndGate(ctx context.Context, id uuid.UUID, status models.SubmissionStatus) (*models.Submission, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	sub := &models.Submission{}
	var dados []byte

	query := `
		UPDATE submissions
		SET status = $2
		WHERE id = $1
		RETURNING id, user_id, cpf, dados, status, created_at
	`

	err = tx.QueryRow(ctx, query, id, status).Scan(
		&sub.ID,
		&sub.UserID,
		&sub.CPF,
		&dados,
		&sub.Status,
		&sub.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Wrap(apperr.KindNotFound, apperr.ErrSubmissionNotFound.Message, err)
		}
		return nil, fmt.Errorf("failed to update submission status: %w", err)
	}

	if err := json.Unmarshal(dados, &sub.Dados); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	blocked := status == models.StatusProcessado
	if _, err := tx.Exec(ctx,
		`UPDATE authorized_cpfs SET blocked = $2 WHERE cpf = $1`,
		sub.CPF, blocked,
	); err != nil {
		return nil, fmt.Errorf("failed to update gate flag: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}

	return sub, nil
}

// digitsOf extrai apenas os dígitos do termo de busca, para casar com a
// forma canônica do CPF armazenado.
func digitsOf(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
