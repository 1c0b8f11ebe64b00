package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/lexora/lexora_backend/models"
)

// MemoryStore keeps everything in process. Used by the dev server and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[string]models.User
	emails    map[string]string
	customers map[string]models.Customer
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[string]models.User),
		emails:    make(map[string]string),
		customers: make(map[string]models.Customer),
	}
}

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

func (s *MemoryStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[emailKey(email)]
	if !ok {
		return nil, ErrNotFound
	}
	user := s.users[id]
	return &user, nil
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.ID]; exists {
		return fmt.Errorf("user %s: %w", user.ID, ErrDuplicate)
	}
	key := emailKey(user.Email)
	if key != "" {
		if _, taken := s.emails[key]; taken {
			return fmt.Errorf("user %s: %w", key, ErrEmailInUse)
		}
		s.emails[key] = user.ID
	}
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) IncrementIncome(ctx context.Context, id string, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	user.TotalIncome += amount
	s.users[id] = user
	return nil
}

func (s *MemoryStore) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	customer, ok := s.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &customer, nil
}

func (s *MemoryStore) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	customers := make([]models.Customer, 0, len(s.customers))
	for _, customer := range s.customers {
		customers = append(customers, customer)
	}
	sort.Slice(customers, func(i, j int) bool { return customers[i].SaleDate.Before(customers[j].SaleDate) })
	return customers, nil
}

func (s *MemoryStore) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.customers[customer.ID]; exists {
		return fmt.Errorf("customer %s: %w", customer.ID, ErrDuplicate)
	}
	s.customers[customer.ID] = *customer
	return nil
}

func (s *MemoryStore) NewBatch() Batch {
	return &memoryBatch{store: s}
}

type memoryBatch struct {
	store      *MemoryStore
	customers  []models.Customer
	increments []incrementWrite
}

func (b *memoryBatch) CreateCustomer(customer *models.Customer) {
	b.customers = append(b.customers, *customer)
}

func (b *memoryBatch) IncrementIncome(userID string, amount int64) {
	b.increments = append(b.increments, incrementWrite{userID: userID, amount: amount})
}

// Commit validates every staged write before applying any of them
func (b *memoryBatch) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := b.store
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(b.customers))
	for _, customer := range b.customers {
		if _, exists := s.customers[customer.ID]; exists || seen[customer.ID] {
			return fmt.Errorf("customer %s: %w", customer.ID, ErrDuplicate)
		}
		seen[customer.ID] = true
	}
	for _, inc := range b.increments {
		if _, ok := s.users[inc.userID]; !ok {
			return fmt.Errorf("increment user %s: %w", inc.userID, ErrNotFound)
		}
	}

	for _, customer := range b.customers {
		s.customers[customer.ID] = customer
	}
	for _, inc := range b.increments {
		user := s.users[inc.userID]
		user.TotalIncome += inc.amount
		s.users[inc.userID] = user
	}
	return nil
}
