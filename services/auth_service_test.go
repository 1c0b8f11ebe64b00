package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lexora/lexora_backend/models"
	"github.com/lexora/lexora_backend/repositories"
)

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) VerifyEmail(ctx context.Context, idToken string) (string, error) {
	args := m.Called(ctx, idToken)
	return args.String(0), args.Error(1)
}

type mockSignupListener struct {
	mock.Mock
}

func (m *mockSignupListener) OnSignup(ctx context.Context, user *models.User, referrer *models.User) error {
	args := m.Called(ctx, user, referrer)
	return args.Error(0)
}

func signup(email, referrer string) models.SignupRequest {
	return models.SignupRequest{
		FullName:   "Test " + email,
		Email:      email,
		Password:   "secret-pass",
		ReferrerID: referrer,
	}
}

func TestAuthService_SignupBuildsHierarchy(t *testing.T) {
	store := repositories.NewMemoryStore()
	listener := &mockSignupListener{}
	listener.On("OnSignup", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	svc := NewAuthService(store, nil, "secret", time.Hour, nil, listener)
	ctx := context.Background()

	root, err := svc.Signup(ctx, signup("admin@lexora.test", ""))
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, root.User.Role)
	assert.Nil(t, root.User.ReferrerID)
	assert.NotEmpty(t, root.Token)

	parent := root.User
	want := []models.Role{
		models.RoleRegionalDirector,
		models.RoleHeadGroupManager,
		models.RoleGroupOperationManager,
		models.RoleTeamOperationManager,
		models.RoleSalesman,
		models.RoleSalesman,
	}
	for i, role := range want {
		resp, err := svc.Signup(ctx, signup(string(rune('a'+i))+"@lexora.test", parent.ID))
		require.NoError(t, err)
		assert.Equal(t, role, resp.User.Role)
		require.NotNil(t, resp.User.ReferrerID)
		assert.Equal(t, parent.ID, *resp.User.ReferrerID)
		parent = resp.User
	}
	listener.AssertNumberOfCalls(t, "OnSignup", len(want))
}

func TestAuthService_SignupRejections(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc := NewAuthService(store, nil, "secret", time.Hour, nil)
	ctx := context.Background()

	root, err := svc.Signup(ctx, signup("admin@lexora.test", ""))
	require.NoError(t, err)

	_, err = svc.Signup(ctx, signup("orphan@lexora.test", ""))
	assert.ErrorIs(t, err, ErrReferrerRequired)

	_, err = svc.Signup(ctx, signup("ghost@lexora.test", "no-such-user"))
	assert.ErrorIs(t, err, ErrReferrerRequired)

	_, err = svc.Signup(ctx, signup("ADMIN@lexora.test", root.User.ID))
	assert.ErrorIs(t, err, ErrEmailTaken)

	short := signup("short@lexora.test", root.User.ID)
	short.Password = "123"
	_, err = svc.Signup(ctx, short)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAuthService_ConcurrentSignupsShareNoEmail(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc := NewAuthService(store, nil, "secret", time.Hour, nil)
	ctx := context.Background()

	root, err := svc.Signup(ctx, signup("admin@lexora.test", ""))
	require.NoError(t, err)

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Signup(ctx, signup("dup@lexora.test", root.User.ID))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrEmailTaken)
	}
	assert.Equal(t, 1, succeeded)

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	count := 0
	for _, u := range users {
		if u.Email == "dup@lexora.test" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestAuthService_ConcurrentBootstrapCreatesOneAdmin(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc := NewAuthService(store, nil, "secret", time.Hour, nil)
	ctx := context.Background()

	const workers = 6
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Signup(ctx, signup(string(rune('a'+i))+"-root@lexora.test", ""))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrReferrerRequired)
	}
	assert.Equal(t, 1, succeeded)

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, models.RoleAdmin, users[0].Role)
}

func TestAuthService_Login(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc := NewAuthService(store, nil, "secret", time.Hour, nil)
	ctx := context.Background()

	_, err := svc.Signup(ctx, signup("admin@lexora.test", ""))
	require.NoError(t, err)

	resp, err := svc.Login(ctx, models.LoginRequest{Email: "Admin@Lexora.test", Password: "secret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "admin@lexora.test", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "nobody@lexora.test", Password: "secret-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_FirebaseLogin(t *testing.T) {
	store := repositories.NewMemoryStore()
	verifier := &mockVerifier{}
	svc := NewAuthService(store, nil, "secret", time.Hour, verifier)
	ctx := context.Background()

	_, err := svc.Signup(ctx, signup("admin@lexora.test", ""))
	require.NoError(t, err)

	verifier.On("VerifyEmail", mock.Anything, "good-token").Return("ADMIN@lexora.test", nil)
	verifier.On("VerifyEmail", mock.Anything, "bad-token").Return("", errors.New("expired"))

	resp, err := svc.FirebaseLogin(ctx, "good-token")
	require.NoError(t, err)
	assert.Equal(t, "admin@lexora.test", resp.User.Email)

	_, err = svc.FirebaseLogin(ctx, "bad-token")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	verifier.AssertExpectations(t)
}

func TestAuthService_CreateStaff(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc := NewAuthService(store, nil, "secret", time.Hour, nil)
	ctx := context.Background()

	staff, err := svc.CreateStaff(ctx, models.StaffRequest{
		FullName:  "Priya HR",
		Email:     "hr@lexora.test",
		Password:  "secret-pass",
		StaffRole: models.StaffHR,
	})
	require.NoError(t, err)
	assert.True(t, staff.IsStaff())
	assert.Equal(t, "hr", staff.AccessRole())

	_, err = svc.CreateStaff(ctx, models.StaffRequest{
		FullName:  "Bad Role",
		Email:     "bad@lexora.test",
		Password:  "secret-pass",
		StaffRole: "janitor",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	// staff cannot refer sales accounts
	_, err = svc.Signup(ctx, signup("x@lexora.test", staff.ID))
	assert.ErrorIs(t, err, ErrReferrerRequired)
}
