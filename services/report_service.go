package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lexora/lexora_backend/models"
	"github.com/lexora/lexora_backend/repositories"
)

const (
	recentSignupsLimit   = 10
	recentCustomersLimit = 20
)

type ReportService struct {
	store repositories.Store
	cache ReportCache
	log   *zap.Logger
	now   func() time.Time
}

// NewReportService builds the report service. cache may be nil.
func NewReportService(store repositories.Store, cache ReportCache, log *zap.Logger) *ReportService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReportService{store: store, cache: cache, log: log, now: time.Now}
}

func (s *ReportService) loadAll(ctx context.Context) ([]models.User, []models.Customer, error) {
	var (
		users     []models.User
		customers []models.Customer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.store.ListUsers(gctx)
		if err != nil {
			return fmt.Errorf("load users: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		customers, err = s.store.ListCustomers(gctx)
		if err != nil {
			return fmt.Errorf("load customers: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return users, customers, nil
}

// Downline summarises everyone below userID
func (s *ReportService) Downline(ctx context.Context, userID string) (*models.DownlineReport, error) {
	key := "downline:" + userID
	if s.cache != nil {
		var cached models.DownlineReport
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.log.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
		}
		if hit {
			return &cached, nil
		}
	}

	users, customers, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	idx := BuildReferralIndex(users)
	subject, ok := idx.User(userID)
	if !ok {
		return nil, repositories.ErrNotFound
	}

	sold := make(map[string]int)
	for _, c := range customers {
		sold[c.SalesmanID]++
	}

	report := &models.DownlineReport{
		UserID:       subject.ID,
		Role:         subject.Role,
		TotalIncome:  subject.TotalIncome,
		OwnCustomers: sold[subject.ID],
		RoleCounts:   make(map[models.Role]int),
		Members:      []models.DownlineMember{},
		GeneratedAt:  s.now().UTC(),
	}

	levels := map[string]int{subject.ID: 0}
	_, downline := idx.Downline(userID)
	for _, u := range downline {
		level := 1
		if u.ReferrerID != nil {
			level = levels[*u.ReferrerID] + 1
		}
		levels[u.ID] = level

		report.TeamSize++
		report.TeamIncome += u.TotalIncome
		report.TeamCustomers += sold[u.ID]
		report.RoleCounts[u.Role]++
		report.Members = append(report.Members, models.DownlineMember{
			ID:          u.ID,
			FullName:    u.FullName,
			Role:        u.Role,
			ReferrerID:  u.ReferrerID,
			TotalIncome: u.TotalIncome,
			Level:       level,
			Customers:   sold[u.ID],
		})
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, report); err != nil {
			s.log.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return report, nil
}

// Dashboard renders the organisation summary scoped to viewerRole. Admin sees
// every section, each staff role sees its own.
func (s *ReportService) Dashboard(ctx context.Context, viewerRole string) (*models.Dashboard, error) {
	hr, recovery, callCentre, technical := dashboardSections(viewerRole)
	if !hr && !recovery && !callCentre && !technical {
		return nil, fmt.Errorf("%w: role %q has no dashboard", ErrInvalidInput, viewerRole)
	}

	dash := &models.Dashboard{ViewerRole: viewerRole, GeneratedAt: s.now().UTC()}
	users, customers, err := s.loadAll(ctx)
	if err != nil {
		if !technical {
			return nil, err
		}
		// technical officers still get the health section when the store is down
		dash.Technical = &models.TechnicalSection{Backend: s.store.Name(), Error: err.Error()}
		return dash, nil
	}

	if hr {
		dash.HR = hrSection(users)
	}
	if recovery {
		dash.Recovery = recoverySection(users, customers)
	}
	if callCentre {
		dash.CallCentre = callCentreSection(customers)
	}
	if technical {
		section := &models.TechnicalSection{
			Backend:   s.store.Name(),
			Healthy:   true,
			Users:     len(users),
			Customers: len(customers),
		}
		if err := s.store.Ping(ctx); err != nil {
			section.Healthy = false
			section.Error = err.Error()
		}
		dash.Technical = section
	}
	return dash, nil
}

func dashboardSections(role string) (hr, recovery, callCentre, technical bool) {
	switch role {
	case string(models.RoleAdmin):
		return true, true, true, true
	case string(models.StaffHR):
		return true, false, false, false
	case string(models.StaffRecoveryAdmin):
		return false, true, false, false
	case string(models.StaffCallCentre):
		return false, false, true, false
	case string(models.StaffTechnicalOfficer):
		return false, false, false, true
	}
	return false, false, false, false
}

func hrSection(users []models.User) *models.HRSection {
	section := &models.HRSection{Headcount: make(map[models.Role]int)}
	sales := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.IsStaff() {
			section.StaffCount++
			continue
		}
		section.Headcount[u.Role]++
		sales = append(sales, u)
	}
	sort.Slice(sales, func(i, j int) bool {
		return sales[i].CreatedAt.After(sales[j].CreatedAt)
	})
	if len(sales) > recentSignupsLimit {
		sales = sales[:recentSignupsLimit]
	}
	section.RecentSignups = sales
	return section
}

func recoverySection(users []models.User, customers []models.Customer) *models.RecoverySection {
	section := &models.RecoverySection{}
	for _, c := range customers {
		if c.CommissionDistributed {
			section.CustomersDistributed++
		} else {
			section.CustomersPending++
		}
	}
	for _, u := range users {
		section.TotalCommissionsPaid += u.TotalIncome
	}
	return section
}

func callCentreSection(customers []models.Customer) *models.CallCentreSection {
	recent := make([]models.Customer, len(customers))
	copy(recent, customers)
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].SaleDate.After(recent[j].SaleDate)
	})
	if len(recent) > recentCustomersLimit {
		recent = recent[:recentCustomersLimit]
	}
	return &models.CallCentreSection{RecentCustomers: recent}
}
