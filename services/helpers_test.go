package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lexora/lexora_backend/models"
	"github.com/lexora/lexora_backend/repositories"
)

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func testUser(id string, role models.Role, referrer string, minute int) models.User {
	u := models.User{
		ID:        id,
		FullName:  "User " + id,
		Email:     id + "@lexora.test",
		Role:      role,
		CreatedAt: baseTime.Add(time.Duration(minute) * time.Minute),
	}
	if referrer != "" {
		u.ReferrerID = strPtr(referrer)
	}
	return u
}

// fullChain is admin <- rd <- hgm <- gom <- tom <- sm
func fullChain() []models.User {
	return []models.User{
		testUser("admin", models.RoleAdmin, "", 0),
		testUser("rd", models.RoleRegionalDirector, "admin", 1),
		testUser("hgm", models.RoleHeadGroupManager, "rd", 2),
		testUser("gom", models.RoleGroupOperationManager, "hgm", 3),
		testUser("tom", models.RoleTeamOperationManager, "gom", 4),
		testUser("sm", models.RoleSalesman, "tom", 5),
	}
}

func seedStore(t *testing.T, users []models.User) *repositories.MemoryStore {
	t.Helper()
	store := repositories.NewMemoryStore()
	for i := range users {
		require.NoError(t, store.CreateUser(context.Background(), &users[i]))
	}
	return store
}

func incomeOf(t *testing.T, store repositories.Store, id string) int64 {
	t.Helper()
	u, err := store.GetUser(context.Background(), id)
	require.NoError(t, err)
	return u.TotalIncome
}

var errInjected = errors.New("injected commit failure")

// failingStore stages writes like the real store but never applies them
type failingStore struct {
	repositories.Store
}

func (f failingStore) NewBatch() repositories.Batch { return failingBatch{} }

type failingBatch struct{}

func (failingBatch) CreateCustomer(*models.Customer) {}
func (failingBatch) IncrementIncome(string, int64)   {}
func (failingBatch) Commit(context.Context) error    { return errInjected }

func validCustomer() models.CustomerInput {
	return models.CustomerInput{
		Name:        "Anita Sharma",
		Phone:       "+919876543210",
		Address:     "12 MG Road, Pune",
		TokenSerial: "lx-000123",
	}
}
