package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mbaisi200/passaporte-sistema/internal/apperr"
	"github.com/mbaisi200/passaporte-sistema/internal/models"
)

// Fakes em memória para os stores dos serviços.

type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeUserStore) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperr.ErrCredentialExists
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.KindCredentialNotFound, apperr.ErrInvalidCredential.Message)
}

func (f *fakeUserStore) GetByID(_ context.Context, userID uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, apperr.New(apperr.KindCredentialNotFound, apperr.ErrInvalidCredential.Message)
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, userID uuid.UUID, cpfValue string, role models.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		u.CPF = cpfValue
		u.Role = role
	}
	return nil
}

func (f *fakeUserStore) Delete(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, userID)
	return nil
}

func (f *fakeUserStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

type fakeAllowlistStore struct {
	mu      sync.Mutex
	entries map[string]*models.AuthorizedCPF

	failMarkHasAccount error
	failUpsert         error
}

func newFakeAllowlistStore() *fakeAllowlistStore {
	return &fakeAllowlistStore{entries: make(map[string]*models.AuthorizedCPF)}
}

func (f *fakeAllowlistStore) Get(_ context.Context, cpfKey string) (*models.AuthorizedCPF, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.entries[cpfKey]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, apperr.ErrCPFNotListed
}

func (f *fakeAllowlistStore) Upsert(_ context.Context, entry *models.AuthorizedCPF) error {
	if f.failUpsert != nil {
		return f.failUpsert
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	entry.AddedAt = time.Now()
	cp := *entry
	f.entries[entry.CPF] = &cp
	return nil
}

func (f *fakeAllowlistStore) MarkHasAccount(_ context.Context, cpfKey, email string, userID uuid.UUID) error {
	if f.failMarkHasAccount != nil {
		return f.failMarkHasAccount
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[cpfKey]
	if !ok {
		return apperr.ErrCPFNotListed
	}
	e.HasAccount = true
	e.Email = email
	e.UserID = &userID
	return nil
}

func (f *fakeAllowlistStore) SetBlocked(_ context.Context, cpfKey string, blocked bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[cpfKey]
	if !ok {
		return apperr.ErrCPFNotListed
	}
	e.Blocked = blocked
	return nil
}

func (f *fakeAllowlistStore) List(_ context.Context) ([]models.AuthorizedCPF, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.AuthorizedCPF, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeAllowlistStore) Delete(_ context.Context, cpfKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[cpfKey]; !ok {
		return apperr.ErrCPFNotListed
	}
	delete(f.entries, cpfKey)
	return nil
}

// fakeSubmissionStore replica o contrato transacional de
// UpdateStatusAndGate escrevendo também na lista de autorização.
type fakeSubmissionStore struct {
	mu        sync.Mutex
	subs      map[uuid.UUID]*models.Submission
	allowlist *fakeAllowlistStore

	lastFilter models.SubmissionFilter
}

func newFakeSubmissionStore(allowlist *fakeAllowlistStore) *fakeSubmissionStore {
	return &fakeSubmissionStore{
		subs:      make(map[uuid.UUID]*models.Submission),
		allowlist: allowlist,
	}
}

func (f *fakeSubmissionStore) Create(_ context.Context, sub *models.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub.CreatedAt = time.Now()
	cp := *sub
	f.subs[sub.ID] = &cp
	return nil
}

func (f *fakeSubmissionStore) GetByID(_ context.Context, id uuid.UUID) (*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.subs[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, apperr.ErrSubmissionNotFound
}

func (f *fakeSubmissionStore) List(_ context.Context, filter models.SubmissionFilter) ([]models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	out := make([]models.Submission, 0, len(f.subs))
	for _, s := range f.subs {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeSubmissionStore) UpdateStatusAndGate(ctx context.Context, id uuid.UUID, status models.SubmissionStatus) (*models.Submission, error) {
	f.mu.Lock()
	s, ok := f.subs[id]
	if !ok {
		f.mu.Unlock()
		return nil, apperr.ErrSubmissionNotFound
	}
	s.Status = status
	cp := *s
	f.mu.Unlock()

	// Mesma semântica da transação real: entrada ausente não é erro.
	blocked := status == models.StatusProcessado
	_ = f.allowlist.SetBlocked(ctx, cp.CPF, blocked)

	return &cp, nil
}

type fakeBlockedCache struct {
	mu     sync.Mutex
	values map[string]bool
}

func newFakeBlockedCache() *fakeBlockedCache {
	return &fakeBlockedCache{values: make(map[string]bool)}
}

func (f *fakeBlockedCache) GetBlocked(_ context.Context, cpfKey string) (bool, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[cpfKey]
	return v, ok, nil
}

func (f *fakeBlockedCache) SetBlocked(_ context.Context, cpfKey string, blocked bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[cpfKey] = blocked
	return nil
}

func (f *fakeBlockedCache) InvalidateBlocked(_ context.Context, cpfKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, cpfKey)
	return nil
}

type fakeEventBus struct {
	mu         sync.Mutex
	published  []models.SubmissionEvent
	notified   []models.NotifyEvent
	failNotify error
}

func newFakeEventBus() *fakeEventBus {
	return &fakeEventBus{}
}

func (f *fakeEventBus) PublishSubmissionEvent(_ context.Context, event models.SubmissionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, event)
	return nil
}

func (f *fakeEventBus) EnqueueNotify(_ context.Context, event models.NotifyEvent) error {
	if f.failNotify != nil {
		return f.failNotify
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notified = append(f.notified, event)
	return nil
}
