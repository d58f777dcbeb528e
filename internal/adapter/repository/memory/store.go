package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/api-sage/ledger-account-service/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/ledger-account-service/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store is an in-memory implementation of the account repository, the
// transaction repository and the unit of work. Balance mutations are staged
// per unit of work and applied only on commit, so a failed unit leaves no
// trace. Used by the test suite and by the server when no database is
// configured.
type Store struct {
	mu          sync.Mutex
	accounts    map[string]domain.Account
	credentials map[string]string
	entries     []domain.Transaction
	references  map[string]int

	mapMu sync.Mutex
	muMap map[string]*sync.Mutex
}

func NewStore() *Store {
	return &Store{
		accounts:    make(map[string]domain.Account),
		credentials: make(map[string]string),
		references:  make(map[string]int),
		muMap:       make(map[string]*sync.Mutex),
	}
}

func (s *Store) Create(_ context.Context, account domain.Account, passwordHash string) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.Username]; exists {
		return domain.Account{}, domain.ErrAccountAlreadyExists
	}

	now := time.Now().UTC()
	account.ID = uuid.NewString()
	account.CreatedAt = now
	account.UpdatedAt = now

	s.accounts[account.Username] = account
	s.credentials[account.Username] = passwordHash
	return account, nil
}

func (s *Store) GetByUsername(_ context.Context, username string) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[username]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return account, nil
}

func (s *Store) GetCredentials(_ context.Context, username string) (domain.Account, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[username]
	if !ok {
		return domain.Account{}, "", domain.ErrAccountNotFound
	}
	return account, s.credentials[username], nil
}

func (s *Store) ListByUsername(_ context.Context, username string) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []domain.Transaction
	for _, entry := range s.entries {
		if entry.Username == username {
			records = append(records, entry)
		}
	}
	return records, nil
}

func (s *Store) ListByReference(_ context.Context, reference string) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []domain.Transaction
	for _, entry := range s.entries {
		if entry.Reference == reference {
			records = append(records, entry)
		}
	}
	return records, nil
}

// Execute locks the named accounts in lexical order, hands a staged view to
// fn and applies the staged balances and records atomically when fn returns
// nil.
func (s *Store) Execute(ctx context.Context, usernames []string, fn func(tx repo_interfaces.AccountTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	names := sortedUnique(usernames)
	for _, name := range names {
		lock := s.accountLock(name)
		lock.Lock()
		defer lock.Unlock()
	}

	tx := &memAccountTx{store: s, staged: make(map[string]domain.Account)}
	for _, name := range names {
		account, err := s.GetByUsername(ctx, name)
		if err != nil {
			return fmt.Errorf("user %s: %w", name, domain.ErrAccountNotFound)
		}
		tx.staged[name] = account
	}

	if err := fn(tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for name, account := range tx.staged {
		s.accounts[name] = account
	}
	s.entries = append(s.entries, tx.pending...)
	for _, record := range tx.pending {
		s.references[record.Reference]++
	}
	return nil
}

func (s *Store) accountLock(username string) *sync.Mutex {
	s.mapMu.Lock()
	defer s.mapMu.Unlock()

	if _, exists := s.muMap[username]; !exists {
		s.muMap[username] = &sync.Mutex{}
	}
	return s.muMap[username]
}

type memAccountTx struct {
	store   *Store
	staged  map[string]domain.Account
	pending []domain.Transaction
}

func (t *memAccountTx) Get(username string) (domain.Account, error) {
	account, ok := t.staged[username]
	if !ok {
		return domain.Account{}, fmt.Errorf("user %s not enlisted in unit of work: %w", username, domain.ErrAccountNotFound)
	}
	return account, nil
}

func (t *memAccountTx) Adjust(username string, delta decimal.Decimal) (domain.Account, error) {
	account, err := t.Get(username)
	if err != nil {
		return domain.Account{}, err
	}

	updated := account.Balance.Add(delta)
	if updated.IsNegative() {
		return domain.Account{}, &domain.InsufficientBalanceError{
			Username:  username,
			Required:  delta.Neg(),
			Available: account.Balance,
		}
	}

	account.Balance = updated
	account.UpdatedAt = time.Now().UTC()
	t.staged[username] = account
	return account, nil
}

func (t *memAccountTx) Append(records ...domain.Transaction) error {
	t.pending = append(t.pending, records...)
	return nil
}

func (t *memAccountTx) ReferenceInUse(reference string) (bool, error) {
	for _, record := range t.pending {
		if record.Reference == reference {
			return true, nil
		}
	}

	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	return t.store.references[reference] > 0, nil
}

func sortedUnique(usernames []string) []string {
	seen := make(map[string]struct{}, len(usernames))
	out := make([]string, 0, len(usernames))
	for _, name := range usernames {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

var _ repo_interfaces.AccountRepository = (*Store)(nil)
var _ repo_interfaces.TransactionRepository = (*Store)(nil)
var _ repo_interfaces.UnitOfWork = (*Store)(nil)
