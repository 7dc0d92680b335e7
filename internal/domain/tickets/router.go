package tickets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/elchin/deskhelp/internal/infra/llm/chatgpt"
	apperrors "github.com/elchin/deskhelp/pkg/errors"
)

// RouterConfig tunes the routing ladder.
type RouterConfig struct {
	AIEnabled         bool
	Model             string
	Temperature       float32
	DefaultDepartment string
}

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// Router assigns tickets to departments: keyword rules first, then AI
// classification, then a fixed keyword heuristic. It always returns a
// well-formed RoutingResult, never an error.
type Router struct {
	cfg    RouterConfig
	rules  RuleRepository
	client chatClient
	logger *slog.Logger
}

// NewRouter constructs a Router. A nil chat client disables the AI stage.
func NewRouter(cfg RouterConfig, rules RuleRepository, client chatClient, logger *slog.Logger) *Router {
	if cfg.DefaultDepartment == "" {
		cfg.DefaultDepartment = DepartmentIT
	}
	return &Router{
		cfg:    cfg,
		rules:  rules,
		client: client,
		logger: logger.With("component", "tickets.router"),
	}
}

// Route walks the routing ladder for the given ticket text.
func (r *Router) Route(ctx context.Context, subject, body string) RoutingResult {
	rules, err := r.rules.ListActive(ctx)
	if err != nil {
		// Storage failure is the one condition that aborts the whole
		// ladder: tickets must never be dropped, so they land in the
		// default department at low confidence.
		r.logger.Error("loading routing rules failed", "error", err)
		return RoutingResult{
			Department: r.cfg.DefaultDepartment,
			Confidence: 20,
			Reasoning:  "routing failed, defaulted to " + r.cfg.DefaultDepartment,
		}
	}
	if result, matched := r.matchRules(rules, subject, body); matched {
		return result
	}
	if r.cfg.AIEnabled && r.client != nil {
		if result, err := r.classifyWithAI(ctx, subject, body); err == nil {
			return result
		} else {
			r.logger.Warn("ai classification failed, using keyword heuristic", "error", err)
		}
	}
	return heuristicRoute(subject, body)
}

// matchRules checks each active rule's comma-separated keywords as substrings
// of the lowered subject+body. The first rule with any match wins; rules are
// ordered by priority, not ranked against each other.
func (r *Router) matchRules(rules []RoutingRule, subject, body string) (RoutingResult, bool) {
	haystack := strings.ToLower(subject + " " + body)
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Priority > rules[j].Priority })
	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		var matched []string
		for _, keyword := range strings.Split(rule.Keywords, ",") {
			keyword = strings.ToLower(strings.TrimSpace(keyword))
			if keyword == "" {
				continue
			}
			if strings.Contains(haystack, keyword) {
				matched = append(matched, keyword)
			}
		}
		if len(matched) == 0 {
			continue
		}
		confidence := 60 + 15*len(matched)
		if confidence > 95 {
			confidence = 95
		}
		ruleID := rule.ID
		return RoutingResult{
			Department:  rule.Department,
			Confidence:  confidence,
			MatchedRule: &ruleID,
			Reasoning:   fmt.Sprintf("rule %q matched keywords: %s", rule.Name, strings.Join(matched, ", ")),
		}, true
	}
	return RoutingResult{}, false
}

const classifyPrompt = "You are a ticket routing assistant. Classify the support ticket into exactly one department: " +
	"HR, IT, Finance, or General. Respond as JSON: {\"department\": string, \"confidence\": number 0-100, \"reasoning\": string}."

type classification struct {
	Department string  `json:"department"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

func (r *Router) classifyWithAI(ctx context.Context, subject, body string) (RoutingResult, error) {
	resp, err := r.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:       r.cfg.Model,
		Temperature: r.cfg.Temperature,
		Messages: []chatgpt.Message{
			{Role: "system", Content: classifyPrompt},
			{Role: "user", Content: "Subject: " + subject + "\n\n" + body},
		},
		ResponseFormat: &chatgpt.ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return RoutingResult{}, err
	}
	if len(resp.Choices) == 0 {
		return RoutingResult{}, fmt.Errorf("empty completion response")
	}
	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var parsed classification
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return RoutingResult{}, fmt.Errorf("decode classification: %w", err)
	}
	department, ok := canonicalDepartment(parsed.Department)
	if !ok {
		return RoutingResult{}, fmt.Errorf("unknown department %q", parsed.Department)
	}
	confidence := int(parsed.Confidence)
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}
	reasoning := strings.TrimSpace(parsed.Reasoning)
	if reasoning == "" {
		reasoning = "classified by AI"
	}
	return RoutingResult{
		Department: department,
		Confidence: confidence,
		Reasoning:  reasoning,
	}, nil
}

// Department heuristics, checked in fixed priority order. IT first: it is the
// designed default dumping ground for ambiguous technical tickets.
var heuristicKeywords = []struct {
	department string
	keywords   []string
}{
	{DepartmentIT, []string{"vpn", "password", "parol", "login", "computer", "komputer", "laptop", "printer", "network", "internet", "email", "software", "server", "monitor", "ekran"}},
	{DepartmentHR, []string{"vacation", "leave", "mezuniyyet", "recruit", "contract", "employment", "onboarding", "training"}},
	{DepartmentFinance, []string{"invoice", "faktura", "payment", "salary", "maas", "expense", "reimburs", "budget", "tax"}},
}

func heuristicRoute(subject, body string) RoutingResult {
	haystack := strings.ToLower(subject + " " + body)
	for _, entry := range heuristicKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(haystack, keyword) {
				return RoutingResult{
					Department: entry.department,
					Confidence: 65,
					Reasoning:  fmt.Sprintf("keyword heuristic matched %q", keyword),
				}
			}
		}
	}
	return RoutingResult{
		Department: DepartmentGeneral,
		Confidence: 40,
		Reasoning:  "no keywords matched, assigned to General",
	}
}

func canonicalDepartment(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "hr":
		return DepartmentHR, true
	case "it":
		return DepartmentIT, true
	case "finance":
		return DepartmentFinance, true
	case "general":
		return DepartmentGeneral, true
	default:
		return "", false
	}
}

// accuracy nudges per confirmed outcome.
const (
	accuracyRewardCorrect   = 5
	accuracyPenaltyMistaken = 3
)

// MarkOutcome nudges a rule's stored accuracy after a human confirms or
// corrects a routing decision: +5 when correct, -3 when not, clamped [0,100].
func (r *Router) MarkOutcome(ctx context.Context, ruleID uuid.UUID, wasCorrect bool) error {
	rule, found, err := r.rules.Get(ctx, ruleID)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorageError, "failed to load routing rule", err)
	}
	if !found {
		return apperrors.Wrap(apperrors.CodeNotFound, "routing rule not found", nil)
	}
	accuracy := rule.Accuracy
	if wasCorrect {
		accuracy += accuracyRewardCorrect
	} else {
		accuracy -= accuracyPenaltyMistaken
	}
	if accuracy < 0 {
		accuracy = 0
	}
	if accuracy > 100 {
		accuracy = 100
	}
	if err := r.rules.UpdateAccuracy(ctx, ruleID, accuracy); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageError, "failed to update rule accuracy", err)
	}
	return nil
}
