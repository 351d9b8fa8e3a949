package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mbaisi200/passaporte-sistema/internal/apperr"
	"github.com/mbaisi200/passaporte-sistema/internal/models"
)

type AllowlistRepository struct {
	pool *pgxpool.Pool
}

func NewAllowlistRepository(pool *pgxpool.Pool) *AllowlistRepository {
	return &AllowlistRepository{pool: pool}
}

// Get busca a entrada da lista de autorização pelo CPF limpo
func (r *AllowlistRepository) Get(ctx context.Context, cpfKey string) (*models.AuthorizedCPF, error) {
	entry := &models.AuthorizedCPF{}

	query := `
		SELECT cpf, added_by, added_at, has_account, email, user_id, blocked
		FROM authorized_cpfs
		WHERE cpf = $1
	`

	err := r.pool.QueryRow(ctx, query, cpfKey).Scan(
		&entry.CPF,
		&entry.AddedBy,
		&entry.AddedAt,
		&entry.HasAccount,
		&entry.Email,
		&entry.UserID,
		&entry.Blocked,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Wrap(apperr.KindNotFound, apperr.ErrCPFNotListed.Message, err)
		}
		return nil, fmt.Errorf("failed to get authorized cpf: %w", err)
	}

	return entry, nil
}

// Upsert grava a entrada por chave (no máximo uma por CPF)
func (r *AllowlistRepository) Upsert(ctx context.Context, entry *models.AuthorizedCPF) error {
	query := `
		INSERT INTO authorized_cpfs (cpf, added_by, has_account, email, user_id, blocked)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (cpf) DO UPDATE
		SET has_account = EXCLUDED.has_account,
		    email = EXCLUDED.email,
		    user_id = EXCLUDED.user_id,
		    blocked = EXCLUDED.blocked
		RETURNING added_at
	`

	err := r.pool.QueryRow(ctx, query,
		entry.CPF,
		entry.AddedBy,
		entry.HasAccount,
		entry.Email,
		entry.UserID,
		entry.Blocked,
	).Scan(&entry.AddedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert authorized cpf: %w", err)
	}

	return nil
}

// MarkHasAccount faz o merge dos dados de conta na entrada existente, sem
// tocar nos demais campos (vínculo bidirecional por CPF).
func (r *AllowlistRepository) MarkHasAccount(ctx context.Context, cpfKey, email string, userID uuid.UUID) error {
	query := `
		UPDATE authorized_cpfs
		SET has_account = true, email = $2, user_id = $3
		WHERE cpf = $1
	`

	tag, err := r.pool.Exec(ctx, query, cpfKey, email, userID)
	if err != nil {
		return fmt.Errorf("failed to mark has_account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrCPFNotListed
	}

	return nil
}

// SetBlocked grava a flag de bloqueio. Última escrita vence em edições
// concorrentes de administradores.
func (r *AllowlistRepository) SetBlocked(ctx context.Context, cpfKey string, blocked bool) error {
	query := `
		UPDATE authorized_cpfs
		SET blocked = $2
		WHERE cpf = $1
	`

	tag, err := r.pool.Exec(ctx, query, cpfKey, blocked)
	if err != nil {
		return fmt.Errorf("failed to set blocked: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrCPFNotListed
	}

	return nil
}

// List devolve todas as entradas, mais recentes primeiro
func (r *AllowlistRepository) List(ctx context.Context) ([]models.AuthorizedCPF, error) {
	query := `
		SELECT cpf, added_by, added_at, has_account, email, user_id, blocked
		FROM authorized_cpfs
		ORDER BY added_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list authorized cpfs: %w", err)
	}
	defer rows.Close()

	var entries []models.AuthorizedCPF
	for rows.Next() {
		var entry models.AuthorizedCPF
		if err := rows.Scan(
			&entry.CPF,
			&entry.AddedBy,
			&entry.AddedAt,
			&entry.HasAccount,
			&entry.Email,
			&entry.UserID,
			&entry.Blocked,
		); err != nil {
			return nil, fmt.Errorf("failed to scan authorized cpf: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Delete remove a entrada. Ação irreversível do administrador; não cascateia
// para a conta nem para os formulários.
func (r *AllowlistRepository) Delete(ctx context.Context, cpfKey string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM authorized_cpfs WHERE cpf = $1`, cpfKey)
	if err != nil {
		return fmt.Errorf("failed to delete authorized cpf: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrCPFNotListed
	}
	return nil
}
