package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lexora/lexora_backend/models"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func TestBuildInsightPrompt(t *testing.T) {
	report := &models.DownlineReport{
		Role:          models.RoleTeamOperationManager,
		TotalIncome:   1600,
		OwnCustomers:  1,
		TeamSize:      2,
		TeamIncome:    1800,
		TeamCustomers: 3,
		RoleCounts:    map[models.Role]int{models.RoleSalesman: 2},
		Members: []models.DownlineMember{
			{ID: "sm", FullName: "Secret Name", Customers: 3},
			{ID: "sm2", FullName: "Other Name"},
		},
	}

	prompt := BuildInsightPrompt(report)
	assert.Contains(t, prompt, "Rank: Team Operation Manager")
	assert.Contains(t, prompt, "Team income: 1800")
	assert.Contains(t, prompt, "- Salesman: 2")
	assert.Contains(t, prompt, "Team members with no customers yet: 1")
	assert.NotContains(t, prompt, "Secret Name")
}

func TestInsightService(t *testing.T) {
	store := reportFixture(t)
	reports := NewReportService(store, nil, nil)
	ctx := context.Background()

	_, err := NewInsightService(reports, nil, nil).Insights(ctx, "tom")
	assert.ErrorIs(t, err, ErrInsightsDisabled)

	gen := &mockGenerator{}
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Team size: 2") && strings.Contains(p, "Own income: 1600")
	})).Return("- Coach sm2", nil).Once()

	insight, err := NewInsightService(reports, gen, nil).Insights(ctx, "tom")
	require.NoError(t, err)
	assert.Equal(t, "tom", insight.UserID)
	assert.Equal(t, "- Coach sm2", insight.Text)
	gen.AssertExpectations(t)

	failing := &mockGenerator{}
	failing.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("quota"))
	_, err = NewInsightService(reports, failing, nil).Insights(ctx, "tom")
	assert.EqualError(t, err, "quota")

	_, err = NewGenAIGenerator(ctx, "", "")
	assert.ErrorIs(t, err, ErrInsightsDisabled)
}
