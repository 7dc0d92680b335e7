package tickets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/elchin/deskhelp/internal/infra/llm/chatgpt"
	apperrors "github.com/elchin/deskhelp/pkg/errors"
)

// Config drives ticket creation and reply generation.
type Config struct {
	Model       string
	Temperature float32
}

// Service owns ticket creation, routing, and reply suggestions.
type Service struct {
	cfg     Config
	tickets TicketRepository
	router  *Router
	client  chatClient
	logger  *slog.Logger
}

// NewService constructs a Service. A nil chat client forces template replies.
func NewService(cfg Config, repo TicketRepository, router *Router, client chatClient, logger *slog.Logger) *Service {
	return &Service{
		cfg:     cfg,
		tickets: repo,
		router:  router,
		client:  client,
		logger:  logger.With("component", "tickets.service"),
	}
}

// CreateRequest captures a new ticket submission.
type CreateRequest struct {
	Subject   string
	Body      string
	CreatedBy string
}

// CreateResponse returns the persisted ticket and its routing decision.
type CreateResponse struct {
	Ticket  Ticket        `json:"ticket"`
	Routing RoutingResult `json:"routing"`
}

// Create validates, routes, and persists a ticket. Routing never fails; a
// persistence failure is surfaced because a ticket must not be lost silently.
func (s *Service) Create(ctx context.Context, req CreateRequest) (CreateResponse, error) {
	subject := strings.TrimSpace(req.Subject)
	body := strings.TrimSpace(req.Body)
	if subject == "" {
		return CreateResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "subject cannot be empty", nil)
	}
	if body == "" {
		return CreateResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "body cannot be empty", nil)
	}

	routing := s.router.Route(ctx, subject, body)
	now := time.Now()
	ticket := Ticket{
		ID:         uuid.New(),
		Subject:    subject,
		Body:       body,
		Department: routing.Department,
		Status:     TicketStatusOpen,
		CreatedBy:  strings.TrimSpace(req.CreatedBy),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return CreateResponse{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to persist ticket", err)
	}
	s.logger.Info("ticket routed", "ticket_id", ticket.ID, "department", routing.Department, "confidence", routing.Confidence)
	return CreateResponse{Ticket: ticket, Routing: routing}, nil
}

// Get fetches a single ticket.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Ticket, error) {
	ticket, found, err := s.tickets.Get(ctx, id)
	if err != nil {
		return Ticket{}, apperrors.Wrap(apperrors.CodeStorageError, "failed to fetch ticket", err)
	}
	if !found {
		return Ticket{}, apperrors.Wrap(apperrors.CodeNotFound, "ticket not found", nil)
	}
	return ticket, nil
}

// List returns recent tickets.
func (s *Service) List(ctx context.Context, limit int) ([]Ticket, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.tickets.List(ctx, limit)
}

// MarkRoutingOutcome records whether a rule routed a ticket correctly.
func (s *Service) MarkRoutingOutcome(ctx context.Context, ruleID uuid.UUID, wasCorrect bool) error {
	return s.router.MarkOutcome(ctx, ruleID, wasCorrect)
}

var replyTones = []struct {
	tone        string
	instruction string
}{
	{"professional", "Write a concise, professional support reply."},
	{"empathetic", "Write a warm, empathetic support reply acknowledging the user's frustration."},
	{"technical", "Write a precise, technical support reply with concrete next steps."},
}

const templateReplyConfidence = 0.8

var templateReplies = map[string]string{
	"professional": "Thank you for contacting support. We have received your request and assigned it to the responsible team. We will update you as soon as possible.",
	"empathetic":   "We are sorry you ran into this issue, and we understand how disruptive it can be. Your request is now with the right team and we will keep you posted.",
	"technical":    "Your ticket has been logged and triaged. Please reply with any error messages, your device name, and the time the issue occurred so we can investigate faster.",
}

// SuggestReplies generates tone-varied reply drafts for a ticket. On any LLM
// failure it returns the three hardcoded templates at fixed confidence.
func (s *Service) SuggestReplies(ctx context.Context, ticketID uuid.UUID) ([]ReplySuggestion, error) {
	ticket, err := s.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if s.client == nil {
		return templateSuggestions(), nil
	}
	suggestions := make([]ReplySuggestion, 0, len(replyTones))
	for _, entry := range replyTones {
		resp, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
			Model:       s.cfg.Model,
			Temperature: s.cfg.Temperature,
			Messages: []chatgpt.Message{
				{Role: "system", Content: fmt.Sprintf("You draft replies for a %s helpdesk agent. %s Keep it under 120 words.", ticket.Department, entry.instruction)},
				{Role: "user", Content: "Subject: " + ticket.Subject + "\n\n" + ticket.Body},
			},
		})
		if err != nil || len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
			s.logger.Warn("reply generation failed, using templates", "tone", entry.tone, "error", err)
			return templateSuggestions(), nil
		}
		suggestions = append(suggestions, ReplySuggestion{
			Tone:       entry.tone,
			Text:       strings.TrimSpace(resp.Choices[0].Message.Content),
			Confidence: 0.9,
		})
	}
	return suggestions, nil
}

func templateSuggestions() []ReplySuggestion {
	out := make([]ReplySuggestion, 0, len(replyTones))
	for _, entry := range replyTones {
		out = append(out, ReplySuggestion{
			Tone:       entry.tone,
			Text:       templateReplies[entry.tone],
			Confidence: templateReplyConfidence,
		})
	}
	return out
}
