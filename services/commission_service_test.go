package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexora/lexora_backend/models"
)

func TestCreateCustomer_CascadeSum(t *testing.T) {
	users := fullChain()
	store := seedStore(t, users)
	svc := NewCommissionService(store, nil, CascadeOptions{})

	result, err := svc.CreateCustomer(context.Background(), validCustomer(), &users[5], users)
	require.NoError(t, err)

	assert.Equal(t, int64(1500), result.TotalCredit)
	assert.Len(t, result.Credits, 5)
	assert.False(t, result.Truncated)
	assert.True(t, result.Customer.CommissionDistributed)
	assert.Equal(t, "sm", result.Customer.SalesmanID)
	assert.Equal(t, "LX-000123", result.Customer.TokenSerial)

	want := map[string]int64{"sm": 600, "tom": 400, "gom": 250, "hgm": 150, "rd": 100, "admin": 0}
	for id, amount := range want {
		assert.Equal(t, amount, incomeOf(t, store, id), id)
	}

	stored, err := store.GetCustomer(context.Background(), result.Customer.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Customer.Name, stored.Name)
}

func TestCreateCustomer_StartsFromManagerActingAsSalesman(t *testing.T) {
	users := fullChain()
	store := seedStore(t, users)
	svc := NewCommissionService(store, nil, CascadeOptions{})

	result, err := svc.CreateCustomer(context.Background(), validCustomer(), &users[3], users)
	require.NoError(t, err)

	assert.Equal(t, int64(250+150+100), result.TotalCredit)
	assert.Equal(t, int64(0), incomeOf(t, store, "sm"))
	assert.Equal(t, int64(0), incomeOf(t, store, "tom"))
}

func TestCreateCustomer_CommitFailureLeavesNoTrace(t *testing.T) {
	users := fullChain()
	store := seedStore(t, users)
	svc := NewCommissionService(failingStore{Store: store}, nil, CascadeOptions{})

	result, err := svc.CreateCustomer(context.Background(), validCustomer(), &users[5], users)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrCommitFailed)

	customers, err := store.ListCustomers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, customers)
	for _, u := range users {
		assert.Equal(t, int64(0), incomeOf(t, store, u.ID), u.ID)
	}
}

func TestCreateCustomer_StoreRejectsBatch(t *testing.T) {
	users := fullChain()
	// gom is in the chain passed in but missing from the store, so the increment fails
	store := seedStore(t, append(append([]models.User{}, users[:3]...), users[4:]...))
	svc := NewCommissionService(store, nil, CascadeOptions{})

	_, err := svc.CreateCustomer(context.Background(), validCustomer(), &users[5], users)
	assert.ErrorIs(t, err, ErrCommitFailed)

	customers, _ := store.ListCustomers(context.Background())
	assert.Empty(t, customers)
	assert.Equal(t, int64(0), incomeOf(t, store, "sm"))
	assert.Equal(t, int64(0), incomeOf(t, store, "tom"))
}

func TestCreateCustomer_BrokenChainTruncates(t *testing.T) {
	users := fullChain()
	// hgm is missing from the user set: rd and admin are beyond the break
	partial := append(append([]models.User{}, users[:2]...), users[3:]...)
	store := seedStore(t, users)
	svc := NewCommissionService(store, nil, CascadeOptions{})

	result, err := svc.CreateCustomer(context.Background(), validCustomer(), &users[5], partial)
	require.NoError(t, err)

	assert.True(t, result.Truncated)
	assert.Equal(t, int64(600+400+250), result.TotalCredit)
	assert.Equal(t, int64(250), incomeOf(t, store, "gom"))
	assert.Equal(t, int64(0), incomeOf(t, store, "hgm"))
	assert.Equal(t, int64(0), incomeOf(t, store, "rd"))
}

func TestCreateCustomer_StrictMode(t *testing.T) {
	t.Run("broken chain", func(t *testing.T) {
		users := fullChain()
		partial := append(append([]models.User{}, users[:2]...), users[3:]...)
		store := seedStore(t, users)
		svc := NewCommissionService(store, nil, CascadeOptions{Strict: true})

		_, err := svc.CreateCustomer(context.Background(), validCustomer(), &users[5], partial)
		assert.ErrorIs(t, err, ErrBrokenChain)
		assert.Equal(t, int64(0), incomeOf(t, store, "sm"))
	})

	t.Run("cycle", func(t *testing.T) {
		users := []models.User{
			testUser("a", models.RoleTeamOperationManager, "b", 0),
			testUser("b", models.RoleGroupOperationManager, "a", 1),
			testUser("s", models.RoleSalesman, "a", 2),
		}
		store := seedStore(t, users)

		strict := NewCommissionService(store, nil, CascadeOptions{Strict: true})
		_, err := strict.CreateCustomer(context.Background(), validCustomer(), &users[2], users)
		assert.ErrorIs(t, err, ErrReferralCycle)

		lenient := NewCommissionService(store, nil, CascadeOptions{})
		result, err := lenient.CreateCustomer(context.Background(), validCustomer(), &users[2], users)
		require.NoError(t, err)
		assert.True(t, result.Truncated)
		assert.Equal(t, int64(600+400+250), result.TotalCredit)
	})
}

func TestCreateCustomer_InvalidInput(t *testing.T) {
	users := fullChain()
	store := seedStore(t, users)
	svc := NewCommissionService(store, nil, CascadeOptions{})

	tests := []struct {
		name  string
		input func() models.CustomerInput
	}{
		{"missing name", func() models.CustomerInput { in := validCustomer(); in.Name = ""; return in }},
		{"blank address", func() models.CustomerInput { in := validCustomer(); in.Address = "   "; return in }},
		{"missing token", func() models.CustomerInput { in := validCustomer(); in.TokenSerial = ""; return in }},
		{"missing phone", func() models.CustomerInput { in := validCustomer(); in.Phone = ""; return in }},
		{"bad email", func() models.CustomerInput { in := validCustomer(); in.Email = "nope"; return in }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateCustomer(context.Background(), tt.input(), &users[5], users)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	customers, _ := store.ListCustomers(context.Background())
	assert.Empty(t, customers)
}

func TestCreateCustomer_StoresTextAsTyped(t *testing.T) {
	users := fullChain()
	store := seedStore(t, users)
	svc := NewCommissionService(store, nil, CascadeOptions{})

	in := validCustomer()
	in.Name = "  Ravi O'Brien & Sons\t"
	in.Address = "12 <Main> Rd, \"Block A\""
	result, err := svc.CreateCustomer(context.Background(), in, &users[5], users)
	require.NoError(t, err)

	stored, err := store.GetCustomer(context.Background(), result.Customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ravi O'Brien & Sons", stored.Name)
	assert.Equal(t, `12 <Main> Rd, "Block A"`, stored.Address)

	msg := TokenRegisteredMessage(*stored, &users[5])
	assert.Contains(t, msg, "Dear Ravi O'Brien & Sons,")
	assert.NotContains(t, msg, "&amp;")
}

func TestCreateCustomer_ConcurrentSharedAncestor(t *testing.T) {
	users := append(fullChain(), testUser("sm2", models.RoleSalesman, "tom", 6))
	store := seedStore(t, users)
	svc := NewCommissionService(store, nil, CascadeOptions{})

	const perSalesman = 20
	var wg sync.WaitGroup
	for i := 0; i < perSalesman; i++ {
		for _, idx := range []int{5, 6} {
			wg.Add(1)
			go func(salesman models.User) {
				defer wg.Done()
				_, err := svc.CreateCustomer(context.Background(), validCustomer(), &salesman, users)
				assert.NoError(t, err)
			}(users[idx])
		}
	}
	wg.Wait()

	assert.Equal(t, int64(2*perSalesman*400), incomeOf(t, store, "tom"))
	assert.Equal(t, int64(perSalesman*600), incomeOf(t, store, "sm"))
	assert.Equal(t, int64(perSalesman*600), incomeOf(t, store, "sm2"))

	customers, _ := store.ListCustomers(context.Background())
	assert.Len(t, customers, 2*perSalesman)
}

type recordingListener struct {
	mu      sync.Mutex
	results []*CascadeResult
}

func (r *recordingListener) OnCustomerRegistered(ctx context.Context, result *CascadeResult, salesman *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
	return nil
}

func TestRegisterCustomer(t *testing.T) {
	users := fullChain()
	staff := testUser("ops", "", "", 9)
	staff.StaffRole = models.StaffCallCentre
	users = append(users, staff)
	store := seedStore(t, users)
	listener := &recordingListener{}
	svc := NewCommissionService(store, nil, CascadeOptions{}, listener)

	result, err := svc.RegisterCustomer(context.Background(), validCustomer(), "sm")
	require.NoError(t, err)
	assert.Equal(t, int64(1500), result.TotalCredit)
	require.Len(t, listener.results, 1)
	assert.Equal(t, result.Customer.ID, listener.results[0].Customer.ID)

	_, err = svc.RegisterCustomer(context.Background(), validCustomer(), "ops")
	assert.ErrorIs(t, err, ErrNotSalesman)

	_, err = svc.RegisterCustomer(context.Background(), validCustomer(), "ghost")
	assert.Error(t, err)
	assert.Len(t, listener.results, 1)
}
