package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mbaisi200/passaporte-sistema/internal/apperr"
	"github.com/mbaisi200/passaporte-sistema/internal/config"
	"github.com/mbaisi200/passaporte-sistema/internal/cpf"
	"github.com/mbaisi200/passaporte-sistema/internal/metrics"
	"github.com/mbaisi200/passaporte-sistema/internal/models"
	"github.com/mbaisi200/passaporte-sistema/internal/utils"
)

// AccountService cuida do ciclo de vida de contas: bootstrap do admin,
// auto-cadastro de clientes e cadastro feito pelo administrador.
type AccountService struct {
	users     UserStore
	allowlist AllowlistStore
	blocked   BlockedCache
	events    EventBus
	cfg       *config.Config
	logger    *zap.Logger
}

func NewAccountService(
	users UserStore,
	allowlist AllowlistStore,
	blocked BlockedCache,
	events EventBus,
	cfg *config.Config,
	logger *zap.Logger,
) *AccountService {
	return &AccountService{
		users:     users,
		allowlist: allowlist,
		blocked:   blocked,
		events:    events,
		cfg:       cfg,
		logger:    logger,
	}
}

// ProvisionAdmin garante que a conta administrativa exista. Idempotente: se o
// login reservado já tem conta, autentica nela com a senha de bootstrap e só
// então faz merge do perfil e devolve a conta existente. Sem essa conferência,
// qualquer conta criada com o email reservado viraria admin no bootstrap.
// Chamadas concorrentes podem competir; aceitável por ser operação de
// bootstrap única.
func (s *AccountService) ProvisionAdmin(ctx context.Context) (*models.User, bool, error) {
	email := utils.NormalizeEmail(s.cfg.Admin.Email)

	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		if !utils.CheckPasswordHash(s.cfg.Admin.BootstrapPass, existing.PasswordHash) {
			return nil, false, apperr.New(apperr.KindInvalidCredential,
				"Já existe uma conta no login reservado que não autentica com a senha de bootstrap.")
		}
		if err := s.users.UpdateProfile(ctx, existing.ID, cpf.SentinelAdmin, models.RoleAdmin); err != nil {
			return nil, false, fmt.Errorf("merging admin profile: %w", err)
		}
		existing.CPF = cpf.SentinelAdmin
		existing.Role = models.RoleAdmin
		return existing, false, nil
	}
	if apperr.KindOf(err) != apperr.KindCredentialNotFound {
		return nil, false, fmt.Errorf("looking up admin account: %w", err)
	}

	hash, err := utils.HashPassword(s.cfg.Admin.BootstrapPass)
	if err != nil {
		return nil, false, fmt.Errorf("hashing admin password: %w", err)
	}

	admin := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		CPF:          cpf.SentinelAdmin,
		Role:         models.RoleAdmin,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return nil, false, fmt.Errorf("creating admin account: %w", err)
	}

	metrics.AccountsProvisioned.WithLabelValues("bootstrap").Inc()
	s.logger.Info("admin account created", zap.String("email", email))
	return admin, true, nil
}

// Register é o auto-cadastro do cliente. Valida o dígito verificador do CPF
// (diferente do cadastro via admin, que só confere o tamanho) e exige entrada
// na lista de autorização. Nenhuma conta é criada quando a autorização falha.
func (s *AccountService) Register(ctx context.Context, rawCPF, email, password string) (*models.User, error) {
	if !cpf.IsValid(rawCPF) {
		return nil, apperr.ErrInvalidCPF
	}
	cpfKey := cpf.Clean(rawCPF)

	if _, err := s.allowlist.Get(ctx, cpfKey); err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.ErrNotAuthorized
		}
		return nil, fmt.Errorf("checking authorization: %w", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        utils.NormalizeEmail(email),
		PasswordHash: hash,
		CPF:          cpfKey,
		Role:         models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	// Segunda etapa do provisionamento: merge na entrada de autorização. Se
	// falhar, desfaz a conta recém-criada para não deixar conta órfã.
	if err := s.allowlist.MarkHasAccount(ctx, cpfKey, user.Email, user.ID); err != nil {
		s.logger.Error("registration second step failed, compensating",
			zap.String("cpf", cpfKey), zap.Error(err))
		if delErr := s.users.Delete(ctx, user.ID); delErr != nil {
			s.logger.Error("compensation failed, orphaned account left behind",
				zap.String("user_id", user.ID.String()), zap.Error(delErr))
		}
		return nil, fmt.Errorf("linking account to authorization entry: %w", err)
	}

	metrics.AccountsProvisioned.WithLabelValues("self").Inc()
	return user, nil
}

// ProvisionClientByAdmin cadastra um cliente a partir do CPF: deriva o login,
// usa a senha padrão temporária e cria conta + entrada de autorização. Só o
// tamanho do CPF é conferido aqui, mantendo o comportamento histórico do
// fluxo administrativo.
func (s *AccountService) ProvisionClientByAdmin(ctx context.Context, adminID uuid.UUID, rawCPF string) (*models.AddCPFResponse, error) {
	if !cpf.IsWellFormed(rawCPF) {
		return nil, apperr.New(apperr.KindInvalidCPF, "CPF deve ter 11 dígitos.")
	}
	cpfKey := cpf.Clean(rawCPF)

	if _, err := s.allowlist.Get(ctx, cpfKey); err == nil {
		return nil, apperr.ErrCPFAlreadyListed
	} else if apperr.KindOf(err) != apperr.KindNotFound {
		return nil, fmt.Errorf("checking existing entry: %w", err)
	}

	email := cpf.LoginEmail(cpfKey)
	hash, err := utils.HashPassword(s.cfg.Admin.DefaultPassword)
	if err != nil {
		return nil, fmt.Errorf("hashing default password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		CPF:          cpfKey,
		Role:         models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Login derivado já em uso: o CPF já tem conta associada.
		return nil, err
	}

	entry := &models.AuthorizedCPF{
		CPF:        cpfKey,
		AddedBy:    adminID,
		HasAccount: true,
		Email:      email,
		UserID:     &user.ID,
		Blocked:    false,
	}
	if err := s.allowlist.Upsert(ctx, entry); err != nil {
		s.logger.Error("admin provisioning second step failed, compensating",
			zap.String("cpf", cpfKey), zap.Error(err))
		if delErr := s.users.Delete(ctx, user.ID); delErr != nil {
			s.logger.Error("compensation failed, orphaned account left behind",
				zap.String("user_id", user.ID.String()), zap.Error(delErr))
		}
		return nil, fmt.Errorf("writing authorization entry: %w", err)
	}

	if err := s.blocked.InvalidateBlocked(ctx, cpfKey); err != nil {
		s.logger.Warn("failed to invalidate blocked cache", zap.String("cpf", cpfKey), zap.Error(err))
	}

	metrics.AccountsProvisioned.WithLabelValues("admin").Inc()
	return &models.AddCPFResponse{
		CPF:               cpfKey,
		Email:             email,
		TemporaryPassword: s.cfg.Admin.DefaultPassword,
	}, nil
}

// Login resolve o credencial (CPF ou email do admin) e confere a senha.
func (s *AccountService) Login(ctx context.Context, login, password string) (*models.User, error) {
	var email string
	if strings.Contains(login, "@") {
		email = utils.NormalizeEmail(login)
	} else {
		if !cpf.IsWellFormed(login) {
			return nil, apperr.ErrInvalidCPF
		}
		email = cpf.LoginEmail(login)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindCredentialNotFound {
			return nil, apperr.ErrInvalidCredential
		}
		return nil, fmt.Errorf("looking up account: %w", err)
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperr.ErrInvalidCredential
	}

	return user, nil
}

// RequestPasswordReset enfileira o pedido para o worker de notificações.
// Sempre responde como aceito para não revelar quais emails têm conta.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) {
	event := models.NotifyEvent{
		Type:      "password_reset",
		Email:     utils.NormalizeEmail(email),
		Timestamp: time.Now(),
	}
	if err := s.events.EnqueueNotify(ctx, event); err != nil {
		s.logger.Error("failed to enqueue password reset", zap.Error(err))
	}
}

// IsBlocked consulta a flag de bloqueio, com cache. CPF sem entrada na lista
// conta como não bloqueado.
func (s *AccountService) IsBlocked(ctx context.Context, rawCPF string) (bool, error) {
	cpfKey := cpf.Clean(rawCPF)

	if blocked, found, err := s.blocked.GetBlocked(ctx, cpfKey); err == nil && found {
		return blocked, nil
	} else if err != nil {
		s.logger.Warn("blocked cache read failed", zap.Error(err))
	}

	entry, err := s.allowlist.Get(ctx, cpfKey)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return false, nil
		}
		return false, fmt.Errorf("reading authorization entry: %w", err)
	}

	if err := s.blocked.SetBlocked(ctx, cpfKey, entry.Blocked); err != nil {
		s.logger.Warn("blocked cache write failed", zap.Error(err))
	}

	return entry.Blocked, nil
}

// SetBlocked é a ação direta do administrador sobre a flag. Última escrita
// vence.
func (s *AccountService) SetBlocked(ctx context.Context, rawCPF string, blocked bool) error {
	cpfKey := cpf.Clean(rawCPF)
	if err := s.allowlist.SetBlocked(ctx, cpfKey, blocked); err != nil {
		return err
	}
	if err := s.blocked.InvalidateBlocked(ctx, cpfKey); err != nil {
		s.logger.Warn("failed to invalidate blocked cache", zap.String("cpf", cpfKey), zap.Error(err))
	}
	return nil
}

// ListAllowlist devolve as entradas da lista de autorização.
func (s *AccountService) ListAllowlist(ctx context.Context) ([]models.AuthorizedCPF, error) {
	return s.allowlist.List(ctx)
}

// DeleteAllowlistEntry remove a entrada. Não remove a conta nem os
// formulários associados (sem cascata).
func (s *AccountService) DeleteAllowlistEntry(ctx context.Context, rawCPF string) error {
	cpfKey := cpf.Clean(rawCPF)
	if err := s.allowlist.Delete(ctx, cpfKey); err != nil {
		return err
	}
	if err := s.blocked.InvalidateBlocked(ctx, cpfKey); err != nil {
		s.logger.Warn("failed to invalidate blocked cache", zap.String("cpf", cpfKey), zap.Error(err))
	}
	return nil
}

// GetUser busca a conta do principal autenticado.
func (s *AccountService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindCredentialNotFound {
			return nil, apperr.Wrap(apperr.KindNotFound, "Conta não encontrada.", errors.Unwrap(err))
		}
		return nil, err
	}
	return user, nil
}
