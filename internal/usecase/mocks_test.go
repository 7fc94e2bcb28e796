package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/avelir/registration-service/internal/core/domain"
	"github.com/avelir/registration-service/internal/core/port"
	"github.com/avelir/registration-service/internal/repository"
	"github.com/avelir/registration-service/internal/validate"
)

type mockAccountRepository struct {
	mu       sync.Mutex
	accounts map[string]domain.Account
}

func newMockAccountRepository() *mockAccountRepository {
	return &mockAccountRepository{accounts: make(map[string]domain.Account)}
}

func (m *mockAccountRepository) Create(ctx context.Context, account domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *mockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &account, nil
}

func (m *mockAccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.accounts {
		if account.Username == username {
			cp := account
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockAccountRepository) GetInactiveByUsername(ctx context.Context, username string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.accounts {
		if account.Username == username && !account.IsActive {
			cp := account
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockAccountRepository) Activate(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok || account.IsActive {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	account.IsActive = true
	account.Status = domain.AccountStatusActive
	account.ActivatedAt = &now
	m.accounts[id] = account
	return nil
}

func (m *mockAccountRepository) UsernameTaken(ctx context.Context, folded string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.accounts {
		if validate.Fold(account.Username) == folded {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAccountRepository) EmailTaken(ctx context.Context, folded string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.accounts {
		if validate.Fold(account.Email) == folded {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAccountRepository) DeleteExpiredPending(ctx context.Context, registeredBefore time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, account := range m.accounts {
		if !account.IsActive && account.RegisteredAt.Before(registeredBefore) {
			delete(m.accounts, id)
			removed++
		}
	}
	return removed, nil
}

func (m *mockAccountRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.accounts)
}

type mockActivationRepository struct {
	mu      sync.Mutex
	records map[string]domain.ActivationRecord
}

func newMockActivationRepository() *mockActivationRepository {
	return &mockActivationRepository{records: make(map[string]domain.ActivationRecord)}
}

func (m *mockActivationRepository) Create(ctx context.Context, record domain.ActivationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.ID] = record
	return nil
}

func (m *mockActivationRepository) GetByKeyHash(ctx context.Context, hash string) (*domain.ActivationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range m.records {
		if record.KeyHash == hash {
			cp := record
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockActivationRepository) Consume(ctx context.Context, id string, usedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	if !ok || record.Status != domain.ActivationStatusPending {
		return repository.ErrNotFound
	}
	record.Status = domain.ActivationStatusActivated
	record.UsedAt = &usedAt
	m.records[id] = record
	return nil
}

func (m *mockActivationRepository) DeleteExpired(ctx context.Context, expiredBefore time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, record := range m.records {
		if record.Status == domain.ActivationStatusPending && record.ExpiresAt.Before(expiredBefore) {
			delete(m.records, id)
			removed++
		}
	}
	return removed, nil
}

type sentMail struct {
	to     string
	key    string
	window time.Duration
}

type stubNotifier struct {
	mu       sync.Mutex
	sent     []sentMail
	welcomed []string
}

func (n *stubNotifier) SendActivationEmail(ctx context.Context, account domain.Account, key string, window time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{to: account.Email, key: key, window: window})
	return nil
}

func (n *stubNotifier) SendWelcomeEmail(ctx context.Context, account domain.Account) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.welcomed = append(n.welcomed, account.Email)
	return nil
}

func (n *stubNotifier) lastKey() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return ""
	}
	return n.sent[len(n.sent)-1].key
}

type stubPublisher struct {
	mu         sync.Mutex
	registered []domain.AccountRegisteredEvent
	activated  []domain.AccountActivatedEvent
}

func (p *stubPublisher) PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registered = append(p.registered, event)
	return nil
}

func (p *stubPublisher) PublishAccountActivated(ctx context.Context, event domain.AccountActivatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.activated = append(p.activated, event)
	return nil
}

var (
	_ port.AccountRepository    = (*mockAccountRepository)(nil)
	_ port.ActivationRepository = (*mockActivationRepository)(nil)
	_ port.Notifier             = (*stubNotifier)(nil)
	_ port.EventPublisher       = (*stubPublisher)(nil)
)
