package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/lexora/lexora_backend/models"
)

const (
	usersCollection      = "users"
	userEmailsCollection = "userEmails"
	customersCollection  = "customers"
)

// FirestoreStore persists users and customers as Firestore documents keyed by their ids
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) Name() string { return "firestore" }

func (s *FirestoreStore) Ping(ctx context.Context) error {
	_, err := s.client.Collection(usersCollection).Limit(1).Documents(ctx).GetAll()
	return err
}

func (s *FirestoreStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	snap, err := s.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return decodeUser(snap)
}

func (s *FirestoreStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	snaps, err := s.client.Collection(usersCollection).
		Where("email", "==", strings.ToLower(email)).
		Limit(1).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if len(snaps) == 0 {
		return nil, ErrNotFound
	}
	return decodeUser(snaps[0])
}

func (s *FirestoreStore) ListUsers(ctx context.Context) ([]models.User, error) {
	snaps, err := s.client.Collection(usersCollection).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]models.User, 0, len(snaps))
	for _, snap := range snaps {
		user, err := decodeUser(snap)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// CreateUser claims userEmails/{email} and writes the user in one transaction,
// so two accounts can never share an email
func (s *FirestoreStore) CreateUser(ctx context.Context, user *models.User) error {
	userRef := s.client.Collection(usersCollection).Doc(user.ID)
	email := strings.ToLower(strings.TrimSpace(user.Email))

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if email != "" {
			emailRef := s.client.Collection(userEmailsCollection).Doc(email)
			_, err := tx.Get(emailRef)
			if err == nil {
				return fmt.Errorf("user %s: %w", email, ErrEmailInUse)
			}
			if status.Code(err) != codes.NotFound {
				return err
			}
			if err := tx.Create(emailRef, map[string]interface{}{"userId": user.ID}); err != nil {
				return err
			}
		}
		return tx.Create(userRef, user)
	})
	if errors.Is(err, ErrEmailInUse) {
		return err
	}
	if status.Code(err) == codes.AlreadyExists {
		if email != "" {
			return fmt.Errorf("user %s: %w", email, ErrEmailInUse)
		}
		return fmt.Errorf("user %s: %w", user.ID, ErrDuplicate)
	}
	return err
}

func (s *FirestoreStore) IncrementIncome(ctx context.Context, id string, amount int64) error {
	_, err := s.client.Collection(usersCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "totalIncome", Value: firestore.Increment(amount)},
	})
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return err
}

func (s *FirestoreStore) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	snap, err := s.client.Collection(customersCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get customer %s: %w", id, err)
	}
	return decodeCustomer(snap)
}

func (s *FirestoreStore) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	snaps, err := s.client.Collection(customersCollection).OrderBy("saleDate", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	customers := make([]models.Customer, 0, len(snaps))
	for _, snap := range snaps {
		customer, err := decodeCustomer(snap)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *customer)
	}
	return customers, nil
}

func (s *FirestoreStore) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	_, err := s.client.Collection(customersCollection).Doc(customer.ID).Create(ctx, customer)
	if status.Code(err) == codes.AlreadyExists {
		return fmt.Errorf("customer %s: %w", customer.ID, ErrDuplicate)
	}
	return err
}

func (s *FirestoreStore) NewBatch() Batch {
	return &firestoreBatch{client: s.client}
}

type firestoreBatch struct {
	client     *firestore.Client
	customers  []models.Customer
	increments []incrementWrite
}

func (b *firestoreBatch) CreateCustomer(customer *models.Customer) {
	b.customers = append(b.customers, *customer)
}

func (b *firestoreBatch) IncrementIncome(userID string, amount int64) {
	b.increments = append(b.increments, incrementWrite{userID: userID, amount: amount})
}

// Commit runs the writes in one transaction. Update fails on a missing user document,
// which aborts the customer creation as well.
func (b *firestoreBatch) Commit(ctx context.Context) error {
	return b.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for i := range b.customers {
			ref := b.client.Collection(customersCollection).Doc(b.customers[i].ID)
			if err := tx.Create(ref, &b.customers[i]); err != nil {
				return err
			}
		}
		for _, inc := range b.increments {
			ref := b.client.Collection(usersCollection).Doc(inc.userID)
			if err := tx.Update(ref, []firestore.Update{
				{Path: "totalIncome", Value: firestore.Increment(inc.amount)},
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

func decodeUser(snap *firestore.DocumentSnapshot) (*models.User, error) {
	var user models.User
	if err := snap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", snap.Ref.ID, err)
	}
	user.ID = snap.Ref.ID
	return &user, nil
}

func decodeCustomer(snap *firestore.DocumentSnapshot) (*models.Customer, error) {
	var customer models.Customer
	if err := snap.DataTo(&customer); err != nil {
		return nil, fmt.Errorf("decode customer %s: %w", snap.Ref.ID, err)
	}
	customer.ID = snap.Ref.ID
	return &customer, nil
}
