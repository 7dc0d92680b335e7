package tickets

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/elchin/deskhelp/internal/infra/llm/chatgpt"
	apperrors "github.com/elchin/deskhelp/pkg/errors"
)

type stubRuleRepo struct {
	rules      []RoutingRule
	listErr    error
	accuracies map[uuid.UUID]int
}

func (s *stubRuleRepo) ListActive(context.Context) ([]RoutingRule, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.rules, nil
}

func (s *stubRuleRepo) Get(_ context.Context, id uuid.UUID) (RoutingRule, bool, error) {
	for _, rule := range s.rules {
		if rule.ID == id {
			return rule, true, nil
		}
	}
	return RoutingRule{}, false, nil
}

func (s *stubRuleRepo) UpdateAccuracy(_ context.Context, id uuid.UUID, accuracy int) error {
	if s.accuracies == nil {
		s.accuracies = make(map[uuid.UUID]int)
	}
	s.accuracies[id] = accuracy
	return nil
}

type stubChatClient struct {
	content string
	err     error
}

func (s *stubChatClient) CreateChatCompletion(context.Context, chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
	if s.err != nil {
		return chatgpt.ChatCompletionResponse{}, s.err
	}
	return chatgpt.ChatCompletionResponse{
		Choices: []chatgpt.Choice{{Message: chatgpt.Message{Role: "assistant", Content: s.content}}},
	}, nil
}

func routerTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(rules RuleRepository, client chatClient, aiEnabled bool) *Router {
	return NewRouter(RouterConfig{AIEnabled: aiEnabled, DefaultDepartment: DepartmentIT}, rules, client, routerTestLogger())
}

func TestRouteRuleMatchWins(t *testing.T) {
	rule := RoutingRule{ID: uuid.New(), Name: "account access", Keywords: "password,login,vpn", Department: DepartmentIT, Priority: 100, IsActive: true}
	repo := &stubRuleRepo{rules: []RoutingRule{rule}}
	router := newTestRouter(repo, nil, false)

	result := router.Route(context.Background(), "Cannot login", "My password expired yesterday")
	require.Equal(t, DepartmentIT, result.Department)
	// two keyword hits: 60 + 15*2
	require.Equal(t, 90, result.Confidence)
	require.NotNil(t, result.MatchedRule)
	require.Equal(t, rule.ID, *result.MatchedRule)
	require.Contains(t, result.Reasoning, "password")
	require.Contains(t, result.Reasoning, "login")
}

func TestRouteRuleConfidenceIsCapped(t *testing.T) {
	rule := RoutingRule{ID: uuid.New(), Name: "network", Keywords: "vpn,network,internet,connection", Department: DepartmentIT, Priority: 50, IsActive: true}
	repo := &stubRuleRepo{rules: []RoutingRule{rule}}
	router := newTestRouter(repo, nil, false)

	result := router.Route(context.Background(), "vpn network internet connection all down", "")
	require.Equal(t, 95, result.Confidence)
}

func TestRouteHigherPriorityRuleWins(t *testing.T) {
	low := RoutingRule{ID: uuid.New(), Name: "general it", Keywords: "computer", Department: DepartmentGeneral, Priority: 10, IsActive: true}
	high := RoutingRule{ID: uuid.New(), Name: "hardware", Keywords: "computer", Department: DepartmentIT, Priority: 100, IsActive: true}
	repo := &stubRuleRepo{rules: []RoutingRule{low, high}}
	router := newTestRouter(repo, nil, false)

	result := router.Route(context.Background(), "computer will not start", "")
	require.Equal(t, DepartmentIT, result.Department)
	require.Equal(t, high.ID, *result.MatchedRule)
}

func TestRouteInactiveRulesAreSkipped(t *testing.T) {
	inactive := RoutingRule{ID: uuid.New(), Name: "disabled", Keywords: "printer", Department: DepartmentFinance, Priority: 100, IsActive: false}
	repo := &stubRuleRepo{rules: []RoutingRule{inactive}}
	router := newTestRouter(repo, nil, false)

	result := router.Route(context.Background(), "printer jammed", "")
	// falls through to the keyword heuristic
	require.Equal(t, DepartmentIT, result.Department)
	require.Equal(t, 65, result.Confidence)
	require.Nil(t, result.MatchedRule)
}

func TestRouteStorageFailureDefaultsToIT(t *testing.T) {
	repo := &stubRuleRepo{listErr: errors.New("db down")}
	router := newTestRouter(repo, nil, false)

	result := router.Route(context.Background(), "anything", "at all")
	require.Equal(t, DepartmentIT, result.Department)
	require.Equal(t, 20, result.Confidence)
	require.Contains(t, result.Reasoning, "routing failed")
}

func TestRouteAIClassification(t *testing.T) {
	repo := &stubRuleRepo{}
	client := &stubChatClient{content: `{"department":"Finance","confidence":85,"reasoning":"mentions an unpaid invoice"}`}
	router := newTestRouter(repo, client, true)

	result := router.Route(context.Background(), "Unpaid invoice", "Vendor invoice 4411 is overdue")
	require.Equal(t, DepartmentFinance, result.Department)
	require.Equal(t, 85, result.Confidence)
	require.Equal(t, "mentions an unpaid invoice", result.Reasoning)
}

func TestRouteAIStripsCodeFences(t *testing.T) {
	repo := &stubRuleRepo{}
	client := &stubChatClient{content: "```json\n{\"department\":\"HR\",\"confidence\":70,\"reasoning\":\"hiring\"}\n```"}
	router := newTestRouter(repo, client, true)

	result := router.Route(context.Background(), "New hire onboarding", "")
	require.Equal(t, DepartmentHR, result.Department)
	require.Equal(t, 70, result.Confidence)
}

func TestRouteAIFailureFallsToHeuristic(t *testing.T) {
	repo := &stubRuleRepo{}
	client := &stubChatClient{err: errors.New("provider down")}
	router := newTestRouter(repo, client, true)

	result := router.Route(context.Background(), "VPN not connecting", "")
	require.Equal(t, DepartmentIT, result.Department)
	require.Equal(t, 65, result.Confidence)
}

func TestRouteAIUnknownDepartmentFallsToHeuristic(t *testing.T) {
	repo := &stubRuleRepo{}
	client := &stubChatClient{content: `{"department":"Legal","confidence":90,"reasoning":"contract"}`}
	router := newTestRouter(repo, client, true)

	result := router.Route(context.Background(), "Vacation request", "")
	require.Equal(t, DepartmentHR, result.Department)
}

func TestRouteHeuristicDefaultsToGeneral(t *testing.T) {
	repo := &stubRuleRepo{}
	router := newTestRouter(repo, nil, false)

	result := router.Route(context.Background(), "xyzzy", "plugh")
	require.Equal(t, DepartmentGeneral, result.Department)
	require.Equal(t, 40, result.Confidence)
}

func TestMarkOutcomeNudgesAccuracy(t *testing.T) {
	rule := RoutingRule{ID: uuid.New(), Name: "payroll", Keywords: "salary", Department: DepartmentFinance, Priority: 10, IsActive: true, Accuracy: 80}
	repo := &stubRuleRepo{rules: []RoutingRule{rule}}
	router := newTestRouter(repo, nil, false)

	require.NoError(t, router.MarkOutcome(context.Background(), rule.ID, true))
	require.Equal(t, 85, repo.accuracies[rule.ID])

	require.NoError(t, router.MarkOutcome(context.Background(), rule.ID, false))
	// the stub does not persist back into rules, so the nudge applies to the original 80
	require.Equal(t, 77, repo.accuracies[rule.ID])
}

func TestMarkOutcomeClampsAccuracy(t *testing.T) {
	high := RoutingRule{ID: uuid.New(), Accuracy: 98, IsActive: true}
	low := RoutingRule{ID: uuid.New(), Accuracy: 1, IsActive: true}
	repo := &stubRuleRepo{rules: []RoutingRule{high, low}}
	router := newTestRouter(repo, nil, false)

	require.NoError(t, router.MarkOutcome(context.Background(), high.ID, true))
	require.Equal(t, 100, repo.accuracies[high.ID])

	require.NoError(t, router.MarkOutcome(context.Background(), low.ID, false))
	require.Equal(t, 0, repo.accuracies[low.ID])
}

func TestMarkOutcomeUnknownRule(t *testing.T) {
	repo := &stubRuleRepo{}
	router := newTestRouter(repo, nil, false)

	err := router.MarkOutcome(context.Background(), uuid.New(), true)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}
