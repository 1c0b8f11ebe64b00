package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/lexora/lexora_backend/models"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("record already exists")
	// ErrEmailInUse wraps ErrDuplicate when another account already holds the email
	ErrEmailInUse = fmt.Errorf("email in use: %w", ErrDuplicate)
)

// Store is the persistence contract shared by the Firestore, Mongo and in-memory backends
type Store interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	// CreateUser fails with ErrEmailInUse when the email is already registered
	CreateUser(ctx context.Context, user *models.User) error
	// IncrementIncome adds amount to the user's totalIncome without reading it first
	IncrementIncome(ctx context.Context, id string, amount int64) error

	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	CreateCustomer(ctx context.Context, customer *models.Customer) error

	NewBatch() Batch
	Ping(ctx context.Context) error
	Name() string
}

// Batch groups one customer creation with income increments.
// Commit applies every write or none of them.
type Batch interface {
	CreateCustomer(customer *models.Customer)
	IncrementIncome(userID string, amount int64)
	Commit(ctx context.Context) error
}

type incrementWrite struct {
	userID string
	amount int64
}
