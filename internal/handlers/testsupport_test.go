package handlers

import (
	"context"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mbaisi200/passaporte-sistema/internal/apperr"
	"github.com/mbaisi200/passaporte-sistema/internal/config"
	"github.com/mbaisi200/passaporte-sistema/internal/models"
	"github.com/mbaisi200/passaporte-sistema/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Fakes em memória sobre as interfaces de store dos serviços.

type memUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newMemUsers() *memUsers { return &memUsers{users: make(map[uuid.UUID]*models.User)} }

func (m *memUsers) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return apperr.ErrCredentialExists
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.KindCredentialNotFound, apperr.ErrInvalidCredential.Message)
}

func (m *memUsers) GetByID(_ context.Context, userID uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, apperr.New(apperr.KindCredentialNotFound, apperr.ErrInvalidCredential.Message)
}

func (m *memUsers) UpdateProfile(_ context.Context, userID uuid.UUID, cpfValue string, role models.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.CPF = cpfValue
		u.Role = role
	}
	return nil
}

func (m *memUsers) Delete(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, userID)
	return nil
}

type memAllowlist struct {
	mu      sync.Mutex
	entries map[string]*models.AuthorizedCPF
}

func newMemAllowlist() *memAllowlist {
	return &memAllowlist{entries: make(map[string]*models.AuthorizedCPF)}
}

func (m *memAllowlist) Get(_ context.Context, cpfKey string) (*models.AuthorizedCPF, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[cpfKey]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, apperr.ErrCPFNotListed
}

func (m *memAllowlist) Upsert(_ context.Context, entry *models.AuthorizedCPF) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *entry
	m.entries[entry.CPF] = &cp
	return nil
}

func (m *memAllowlist) MarkHasAccount(_ context.Context, cpfKey, email string, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[cpfKey]
	if !ok {
		return apperr.ErrCPFNotListed
	}
	e.HasAccount = true
	e.Email = email
	e.UserID = &userID
	return nil
}

func (m *memAllowlist) SetBlocked(_ context.Context, cpfKey string, blocked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[cpfKey]
	if !ok {
		return apperr.ErrCPFNotListed
	}
	e.Blocked = blocked
	return nil
}

func (m *memAllowlist) List(_ context.Context) ([]models.AuthorizedCPF, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.AuthorizedCPF, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, *e)
	}
	return out, nil
}

func (m *memAllowlist) Delete(_ context.Context, cpfKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[cpfKey]; !ok {
		return apperr.ErrCPFNotListed
	}
	delete(m.entries, cpfKey)
	return nil
}

type memSubs struct {
	mu        sync.Mutex
	subs      map[uuid.UUID]*models.Submission
	allowlist *memAllowlist
}

func newMemSubs(allowlist *memAllowlist) *memSubs {
	return &memSubs{subs: make(map[uuid.UUID]*models.Submission), allowlist: allowlist}
}

func (m *memSubs) Create(_ context.Context, sub *models.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sub
	m.subs[sub.ID] = &cp
	return nil
}

func (m *memSubs) GetByID(_ context.Context, id uuid.UUID) (*models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.subs[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, apperr.ErrSubmissionNotFound
}

func (m *memSubs) List(_ context.Context, _ models.SubmissionFilter) ([]models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Submission, 0, len(m.subs))
	for _, s := range m.subs {
		out = append(out, *s)
	}
	return out, nil
}

func (m *memSubs) UpdateStatusAndGate(ctx context.Context, id uuid.UUID, status models.SubmissionStatus) (*models.Submission, error) {
	m.mu.Lock()
	s, ok := m.subs[id]
	if !ok {
		m.mu.Unlock()
		return nil, apperr.ErrSubmissionNotFound
	}
	s.Status = status
	cp := *s
	m.mu.Unlock()
	_ = m.allowlist.SetBlocked(ctx, cp.CPF, status == models.StatusProcessado)
	return &cp, nil
}

type memCache struct {
	mu     sync.Mutex
	values map[string]bool
}

func newMemCache() *memCache { return &memCache{values: make(map[string]bool)} }

func (m *memCache) GetBlocked(_ context.Context, cpfKey string) (bool, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[cpfKey]
	return v, ok, nil
}

func (m *memCache) SetBlocked(_ context.Context, cpfKey string, blocked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[cpfKey] = blocked
	return nil
}

func (m *memCache) InvalidateBlocked(_ context.Context, cpfKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, cpfKey)
	return nil
}

type memBus struct {
	mu        sync.Mutex
	published []models.SubmissionEvent
	notified  []models.NotifyEvent
}

func (m *memBus) PublishSubmissionEvent(_ context.Context, event models.SubmissionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, event)
	return nil
}

func (m *memBus) EnqueueNotify(_ context.Context, event models.NotifyEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notified = append(m.notified, event)
	return nil
}

type testEnv struct {
	cfg       *config.Config
	users     *memUsers
	allowlist *memAllowlist
	subs      *memSubs
	accounts  *services.AccountService
	subSvc    *services.SubmissionService
}

func newTestEnv() *testEnv {
	cfg := config.Load()
	users := newMemUsers()
	allowlist := newMemAllowlist()
	subs := newMemSubs(allowlist)
	cache := newMemCache()
	bus := &memBus{}
	logger := zap.NewNop()
	return &testEnv{
		cfg:       cfg,
		users:     users,
		allowlist: allowlist,
		subs:      subs,
		accounts:  services.NewAccountService(users, allowlist, cache, bus, cfg, logger),
		subSvc:    services.NewSubmissionService(subs, cache, bus, logger),
	}
}
