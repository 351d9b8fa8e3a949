package database

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mbaisi200/passaporte-sistema/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Manager struct {
	pool *pgxpool.Pool
	cfg  *config.Config
	mu   sync.RWMutex
}

var (
	instance *Manager
	once     sync.Once
)

// GetManager returns the singleton database manager instance
func GetManager(cfg *config.Config) *Manager {
	once.Do(func() {
		instance = &Manager{
			cfg: cfg,
		}
	})
	return instance
}

// InitPool initializes the connection pool to the database
func (m *Manager) InitPool(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pool != nil {
		return nil
	}

	poolConfig, err := pgxpool.ParseConfig(m.cfg.DB.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to parse db config: %w", err)
	}

	// Configure pool settings
	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping db: %w", err)
	}

	m.pool = pool
	return nil
}

// GetPool returns the database pool
func (m *Manager) GetPool() *pgxpool.Pool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pool
}

// Migrate aplica as migrações embutidas em ordem. Statements idempotentes:
// erros de "already exists" são ignorados para permitir reexecução.
func (m *Manager) Migrate(ctx context.Context) error {
	migrationFiles := []string{
		"migrations/000001_init_schema.sql",
	}

	for _, migrationFile := range migrationFiles {
		content, err := migrationsFS.ReadFile(migrationFile)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", migrationFile, err)
		}

		for _, stmt := range splitStatements(string(content)) {
			if _, err := m.GetPool().Exec(ctx, stmt); err != nil {
				if strings.Contains(err.Error(), "already exists") {
					continue
				}
				return fmt.Errorf("migration %s failed: %w", migrationFile, err)
			}
		}
	}

	return nil
}

// splitStatements remove comentários e divide o arquivo em statements
// terminados por ponto e vírgula.
func splitStatements(content string) []string {
	var statements []string
	var current strings.Builder

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "--") || line == "" {
			continue
		}

		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(line, ";") {
			stmt := strings.TrimSpace(current.String())
			if stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
		}
	}

	return statements
}

// Close closes the database connection
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pool != nil {
		m.pool.Close()
	}
}
