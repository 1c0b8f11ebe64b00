package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/lexora/lexora_backend/models"
)

const insightSystemPrompt = "You are a sales coach for LEXORA, a company selling tokens through a referral hierarchy. " +
	"Give at most five short, concrete suggestions as a bulleted list. Do not invent numbers."

// InsightGenerator turns a prompt into free text
type InsightGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenAIGenerator calls a Gemini model through google.golang.org/genai
type GenAIGenerator struct {
	client *genai.Client
	model  string
}

func NewGenAIGenerator(ctx context.Context, apiKey, model string) (*GenAIGenerator, error) {
	if apiKey == "" {
		return nil, ErrInsightsDisabled
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAIGenerator{client: client, model: model}, nil
}

func (g *GenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(insightSystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.4),
		MaxOutputTokens:   512,
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

type Insight struct {
	UserID      string    `json:"userId"`
	Text        string    `json:"text"`
	GeneratedAt time.Time `json:"generatedAt"`
}

type InsightService struct {
	reports   *ReportService
	generator InsightGenerator
	log       *zap.Logger
	now       func() time.Time
}

// NewInsightService builds the service. A nil generator disables it.
func NewInsightService(reports *ReportService, generator InsightGenerator, log *zap.Logger) *InsightService {
	if log == nil {
		log = zap.NewNop()
	}
	return &InsightService{reports: reports, generator: generator, log: log, now: time.Now}
}

func (s *InsightService) Enabled() bool {
	return s.generator != nil
}

// Insights asks the model for suggestions based on userID's downline report
func (s *InsightService) Insights(ctx context.Context, userID string) (*Insight, error) {
	if !s.Enabled() {
		return nil, ErrInsightsDisabled
	}
	report, err := s.reports.Downline(ctx, userID)
	if err != nil {
		return nil, err
	}
	text, err := s.generator.Generate(ctx, BuildInsightPrompt(report))
	if err != nil {
		s.log.Error("insight generation failed", zap.String("userId", userID), zap.Error(err))
		return nil, err
	}
	return &Insight{UserID: userID, Text: text, GeneratedAt: s.now().UTC()}, nil
}

// BuildInsightPrompt renders aggregated report numbers only; no names or contact details
func BuildInsightPrompt(report *models.DownlineReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rank: %s\n", report.Role.Label())
	fmt.Fprintf(&b, "Own income: %d\n", report.TotalIncome)
	fmt.Fprintf(&b, "Customers registered personally: %d\n", report.OwnCustomers)
	fmt.Fprintf(&b, "Team size: %d\n", report.TeamSize)
	fmt.Fprintf(&b, "Team income: %d\n", report.TeamIncome)
	fmt.Fprintf(&b, "Customers registered by the team: %d\n", report.TeamCustomers)

	if len(report.RoleCounts) > 0 {
		roles := make([]models.Role, 0, len(report.RoleCounts))
		for role := range report.RoleCounts {
			roles = append(roles, role)
		}
		sort.Slice(roles, func(i, j int) bool { return roles[i].Rank() > roles[j].Rank() })
		b.WriteString("Team by rank:\n")
		for _, role := range roles {
			fmt.Fprintf(&b, "- %s: %d\n", role.Label(), report.RoleCounts[role])
		}
	}

	idle := 0
	for _, m := range report.Members {
		if m.Customers == 0 {
			idle++
		}
	}
	fmt.Fprintf(&b, "Team members with no customers yet: %d\n", idle)
	b.WriteString("How can this person grow their team's sales next month?")
	return b.String()
}
