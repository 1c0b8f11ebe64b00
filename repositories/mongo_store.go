package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lexora/lexora_backend/models"
)

// MongoStore keeps users and customers in MongoDB. Batches need a replica set
// because they run inside a multi-document transaction.
type MongoStore struct {
	client    *mongo.Client
	users     *mongo.Collection
	customers *mongo.Collection
}

func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	db := client.Database(dbName)
	return &MongoStore{
		client:    client,
		users:     db.Collection(usersCollection),
		customers: db.Collection(customersCollection),
	}
}

const emailIndexName = "uniq_email"

// EnsureIndexes creates the unique email index. Empty emails are left out of it.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName(emailIndexName).
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"email": bson.M{"$gt": ""}}),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

func (s *MongoStore) Name() string { return "mongo" }

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &user, nil
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := s.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		if strings.Contains(err.Error(), emailIndexName) {
			return fmt.Errorf("user %s: %w", user.Email, ErrEmailInUse)
		}
		return fmt.Errorf("user %s: %w", user.ID, ErrDuplicate)
	}
	return err
}

func (s *MongoStore) IncrementIncome(ctx context.Context, id string, amount int64) error {
	result, err := s.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"totalIncome": amount},
	})
	if err != nil {
		return fmt.Errorf("increment income for %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *MongoStore) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	var customer models.Customer
	err := s.customers.FindOne(ctx, bson.M{"_id": id}).Decode(&customer)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get customer %s: %w", id, err)
	}
	return &customer, nil
}

func (s *MongoStore) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	cursor, err := s.customers.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "saleDate", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer cursor.Close(ctx)

	customers := []models.Customer{}
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, fmt.Errorf("decode customers: %w", err)
	}
	return customers, nil
}

func (s *MongoStore) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	_, err := s.customers.InsertOne(ctx, customer)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("customer %s: %w", customer.ID, ErrDuplicate)
	}
	return err
}

func (s *MongoStore) NewBatch() Batch {
	return &mongoBatch{store: s}
}

type mongoBatch struct {
	store      *MongoStore
	customers  []models.Customer
	increments []incrementWrite
}

func (b *mongoBatch) CreateCustomer(customer *models.Customer) {
	b.customers = append(b.customers, *customer)
}

func (b *mongoBatch) IncrementIncome(userID string, amount int64) {
	b.increments = append(b.increments, incrementWrite{userID: userID, amount: amount})
}

func (b *mongoBatch) Commit(ctx context.Context) error {
	session, err := b.store.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for i := range b.customers {
			if err := b.store.CreateCustomer(sc, &b.customers[i]); err != nil {
				return nil, err
			}
		}
		for _, inc := range b.increments {
			if err := b.store.IncrementIncome(sc, inc.userID, inc.amount); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}
