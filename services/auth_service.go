package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/lexora/lexora_backend/middleware"
	"github.com/lexora/lexora_backend/models"
	"github.com/lexora/lexora_backend/repositories"
	"github.com/lexora/lexora_backend/utils"
)

// IDTokenVerifier checks a Firebase Auth ID token and returns the verified email
type IDTokenVerifier interface {
	VerifyEmail(ctx context.Context, idToken string) (string, error)
}

// SignupListener is told about every new account inside someone's downline
type SignupListener interface {
	OnSignup(ctx context.Context, user *models.User, referrer *models.User) error
}

type AuthService struct {
	store       repositories.Store
	validate    *validator.Validate
	log         *zap.Logger
	jwtSecret   string
	jwtLifetime time.Duration
	verifier    IDTokenVerifier
	listeners   []SignupListener
	attempts    *utils.LoginAttempts
	now         func() time.Time

	// held from the empty-store check until the Admin root is written
	bootstrapMu sync.Mutex
}

func NewAuthService(store repositories.Store, log *zap.Logger, jwtSecret string, jwtLifetime time.Duration, verifier IDTokenVerifier, listeners ...SignupListener) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		store:       store,
		validate:    utils.NewValidator(),
		log:         log,
		jwtSecret:   jwtSecret,
		jwtLifetime: jwtLifetime,
		verifier:    verifier,
		listeners:   listeners,
		now:         time.Now,
	}
}

// Signup creates a sales account one rank below its referrer. The very first
// account needs no referrer and becomes the Admin root.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, utils.ValidationMessage(err))
	}
	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	phone, err := utils.SanitizePhone(req.Phone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	var referrer *models.User
	role := models.RoleAdmin
	if refID := strings.TrimSpace(req.ReferrerID); refID != "" {
		referrer, err = s.store.GetUser(ctx, refID)
		if errors.Is(err, repositories.ErrNotFound) || (err == nil && referrer.IsStaff()) {
			return nil, ErrReferrerRequired
		}
		if err != nil {
			return nil, fmt.Errorf("load referrer: %w", err)
		}
		role = models.NextRoleDown(referrer.Role)
	} else {
		s.bootstrapMu.Lock()
		defer s.bootstrapMu.Unlock()
		users, err := s.store.ListUsers(ctx)
		if err != nil {
			return nil, fmt.Errorf("load users: %w", err)
		}
		if len(users) > 0 {
			return nil, ErrReferrerRequired
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := &models.User{
		ID:        uuid.NewString(),
		FullName:  utils.SanitizeInput(req.FullName),
		Email:     email,
		Phone:     phone,
		Password:  string(hash),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if referrer != nil {
		user.ReferrerID = &referrer.ID
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrEmailInUse) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Info("user signed up", zap.String("userId", user.ID), zap.String("role", string(role)))

	if referrer != nil {
		for _, l := range s.listeners {
			if err := l.OnSignup(ctx, user, referrer); err != nil {
				s.log.Warn("signup listener failed", zap.String("userId", user.ID), zap.Error(err))
			}
		}
	}
	return s.issue(user)
}

// CreateStaff adds a back-office account outside the referral forest
func (s *AuthService) CreateStaff(ctx context.Context, req models.StaffRequest) (*models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, utils.ValidationMessage(err))
	}
	if !req.StaffRole.Valid() {
		return nil, fmt.Errorf("%w: unknown staff role %q", ErrInvalidInput, req.StaffRole)
	}
	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := &models.User{
		ID:        uuid.NewString(),
		FullName:  utils.SanitizeInput(req.FullName),
		Email:     email,
		Phone:     strings.TrimSpace(req.Phone),
		Password:  string(hash),
		StaffRole: req.StaffRole,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrEmailInUse) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create staff: %w", err)
	}
	s.log.Info("staff account created", zap.String("userId", user.ID), zap.String("staffRole", string(req.StaffRole)))
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, utils.ValidationMessage(err))
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.attempts.Check(ctx, email); err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		s.attempts.Fail(ctx, email)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		s.attempts.Fail(ctx, email)
		return nil, ErrInvalidCredentials
	}
	s.attempts.Reset(ctx, email)
	return s.issue(user)
}

// FirebaseLogin exchanges a Firebase Auth ID token for an API token
func (s *AuthService) FirebaseLogin(ctx context.Context, idToken string) (*models.AuthResponse, error) {
	if s.verifier == nil {
		return nil, errors.New("firebase login is not configured")
	}
	email, err := s.verifier.VerifyEmail(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(email))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return s.issue(user)
}

// WithLoginAttempts enables failed-login lockout
func (s *AuthService) WithLoginAttempts(attempts *utils.LoginAttempts) *AuthService {
	s.attempts = attempts
	return s
}

func (s *AuthService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.store.GetUserByEmail(ctx, email)
	if err == nil {
		return ErrEmailTaken
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("check email: %w", err)
	}
	return nil
}

func (s *AuthService) issue(user *models.User) (*models.AuthResponse, error) {
	token, err := middleware.GenerateJWT(s.jwtSecret, s.jwtLifetime, user)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &models.AuthResponse{Token: token, User: *user}, nil
}
