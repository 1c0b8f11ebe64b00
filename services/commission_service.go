package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lexora/lexora_backend/models"
	"github.com/lexora/lexora_backend/repositories"
	"github.com/lexora/lexora_backend/utils"
)

// CascadeOptions tunes how the cascade treats corrupt referral data.
// The default truncates silently; Strict refuses to write anything.
type CascadeOptions struct {
	Strict bool
}

// CascadeResult is what one customer registration produced
type CascadeResult struct {
	Customer    models.Customer `json:"customer"`
	Credits     []models.Credit `json:"credits"`
	TotalCredit int64           `json:"totalCredit"`
	Truncated   bool            `json:"truncated"`
}

// RegistrationListener runs after a registration committed. Errors are logged only.
type RegistrationListener interface {
	OnCustomerRegistered(ctx context.Context, result *CascadeResult, salesman *models.User) error
}

type CommissionService struct {
	store     repositories.Store
	validate  *validator.Validate
	log       *zap.Logger
	options   CascadeOptions
	listeners []RegistrationListener
	now       func() time.Time
	newID     func() string
}

func NewCommissionService(store repositories.Store, log *zap.Logger, options CascadeOptions, listeners ...RegistrationListener) *CommissionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CommissionService{
		store:     store,
		validate:  utils.NewValidator(),
		log:       log,
		options:   options,
		listeners: listeners,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// CreateCustomer registers a customer sold by salesman and credits every user from the
// salesman up to the root with the commission of their rank. The customer and all
// increments are committed together.
func (s *CommissionService) CreateCustomer(ctx context.Context, input models.CustomerInput, salesman *models.User, allUsers []models.User) (*CascadeResult, error) {
	if salesman == nil {
		return nil, fmt.Errorf("%w: salesman is required", ErrInvalidInput)
	}
	input = normalizeCustomerInput(input)
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, utils.ValidationMessage(err))
	}

	customer := models.Customer{
		ID:                    s.newID(),
		Name:                  input.Name,
		Phone:                 input.Phone,
		Email:                 input.Email,
		Address:               input.Address,
		TokenSerial:           input.TokenSerial,
		SalesmanID:            salesman.ID,
		SaleDate:              s.now().UTC(),
		CommissionDistributed: true,
	}

	idx := BuildReferralIndex(allUsers)
	chain, broken, cycle := idx.UplineChain(*salesman)
	if s.options.Strict {
		if broken {
			return nil, fmt.Errorf("%w: after user %s", ErrBrokenChain, chain[len(chain)-1].ID)
		}
		if cycle {
			return nil, fmt.Errorf("%w: starting at user %s", ErrReferralCycle, salesman.ID)
		}
	}
	if broken || cycle {
		s.log.Warn("commission cascade truncated",
			zap.String("salesmanId", salesman.ID),
			zap.Int("creditedLevels", len(chain)),
			zap.Bool("brokenChain", broken),
			zap.Bool("cycle", cycle),
		)
	}

	result := &CascadeResult{Customer: customer, Truncated: broken || cycle}
	batch := s.store.NewBatch()
	batch.CreateCustomer(&customer)
	for _, user := range chain {
		amount := models.CommissionFor(user.Role)
		if amount <= 0 {
			continue
		}
		batch.IncrementIncome(user.ID, amount)
		result.Credits = append(result.Credits, models.Credit{UserID: user.ID, Role: user.Role, Amount: amount})
		result.TotalCredit += amount
	}

	if err := batch.Commit(ctx); err != nil {
		s.log.Error("registration commit failed",
			zap.String("customerId", customer.ID),
			zap.String("salesmanId", salesman.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}

	s.log.Info("customer registered",
		zap.String("customerId", customer.ID),
		zap.String("salesmanId", salesman.ID),
		zap.Int("credits", len(result.Credits)),
		zap.Int64("totalCredit", result.TotalCredit),
	)
	return result, nil
}

// RegisterCustomer loads the salesman and the user set, runs the cascade and
// notifies listeners once the commit succeeded
func (s *CommissionService) RegisterCustomer(ctx context.Context, input models.CustomerInput, salesmanID string) (*CascadeResult, error) {
	salesman, err := s.store.GetUser(ctx, salesmanID)
	if err != nil {
		return nil, fmt.Errorf("load salesman: %w", err)
	}
	if salesman.IsStaff() || !salesman.Role.Valid() {
		return nil, ErrNotSalesman
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	result, err := s.CreateCustomer(ctx, input, salesman, users)
	if err != nil {
		return nil, err
	}

	for _, listener := range s.listeners {
		if err := listener.OnCustomerRegistered(ctx, result, salesman); err != nil {
			s.log.Warn("registration listener failed",
				zap.String("customerId", result.Customer.ID),
				zap.Error(err),
			)
		}
	}
	return result, nil
}

func normalizeCustomerInput(in models.CustomerInput) models.CustomerInput {
	return models.CustomerInput{
		Name:        utils.SanitizeInput(in.Name),
		Phone:       strings.TrimSpace(in.Phone),
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		Address:     utils.SanitizeInput(in.Address),
		TokenSerial: strings.ToUpper(strings.TrimSpace(in.TokenSerial)),
	}
}
