package tickets

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	apperrors "github.com/elchin/deskhelp/pkg/errors"
)

type stubTicketRepo struct {
	created   []Ticket
	createErr error
}

func (s *stubTicketRepo) Create(_ context.Context, ticket Ticket) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, ticket)
	return nil
}

func (s *stubTicketRepo) Get(_ context.Context, id uuid.UUID) (Ticket, bool, error) {
	for _, ticket := range s.created {
		if ticket.ID == id {
			return ticket, true, nil
		}
	}
	return Ticket{}, false, nil
}

func (s *stubTicketRepo) List(_ context.Context, limit int) ([]Ticket, error) {
	if len(s.created) > limit {
		return s.created[:limit], nil
	}
	return s.created, nil
}

func newTestTicketService(repo TicketRepository, client chatClient) *Service {
	rules := &stubRuleRepo{rules: []RoutingRule{
		{ID: uuid.New(), Name: "account access", Keywords: "password,login", Department: DepartmentIT, Priority: 100, IsActive: true},
	}}
	router := NewRouter(RouterConfig{DefaultDepartment: DepartmentIT}, rules, nil, routerTestLogger())
	return NewService(Config{Model: "gpt-4o-mini"}, repo, router, client, routerTestLogger())
}

func TestCreateValidatesInput(t *testing.T) {
	svc := newTestTicketService(&stubTicketRepo{}, nil)

	_, err := svc.Create(context.Background(), CreateRequest{Subject: " ", Body: "body"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = svc.Create(context.Background(), CreateRequest{Subject: "subject", Body: ""})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestCreateRoutesAndPersists(t *testing.T) {
	repo := &stubTicketRepo{}
	svc := newTestTicketService(repo, nil)

	resp, err := svc.Create(context.Background(), CreateRequest{Subject: "Password locked", Body: "I cannot login since this morning", CreatedBy: "alice"})
	require.NoError(t, err)
	require.Equal(t, DepartmentIT, resp.Ticket.Department)
	require.Equal(t, TicketStatusOpen, resp.Ticket.Status)
	require.Equal(t, "alice", resp.Ticket.CreatedBy)
	require.NotNil(t, resp.Routing.MatchedRule)
	require.Len(t, repo.created, 1)
	require.Equal(t, resp.Ticket.ID, repo.created[0].ID)
}

func TestCreateSurfacesPersistenceFailure(t *testing.T) {
	repo := &stubTicketRepo{createErr: errors.New("db down")}
	svc := newTestTicketService(repo, nil)

	_, err := svc.Create(context.Background(), CreateRequest{Subject: "Printer", Body: "Out of toner"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeStorageError))
}

func TestGetUnknownTicket(t *testing.T) {
	svc := newTestTicketService(&stubTicketRepo{}, nil)

	_, err := svc.Get(context.Background(), uuid.New())
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestSuggestRepliesUsesTemplatesWithoutClient(t *testing.T) {
	repo := &stubTicketRepo{}
	svc := newTestTicketService(repo, nil)
	resp, err := svc.Create(context.Background(), CreateRequest{Subject: "Password locked", Body: "help"})
	require.NoError(t, err)

	suggestions, err := svc.SuggestReplies(context.Background(), resp.Ticket.ID)
	require.NoError(t, err)
	require.Len(t, suggestions, 3)
	tones := []string{suggestions[0].Tone, suggestions[1].Tone, suggestions[2].Tone}
	require.ElementsMatch(t, []string{"professional", "empathetic", "technical"}, tones)
	for _, s := range suggestions {
		require.NotEmpty(t, s.Text)
		require.InDelta(t, 0.8, s.Confidence, 1e-9)
	}
}

func TestSuggestRepliesFallsBackOnClientError(t *testing.T) {
	repo := &stubTicketRepo{}
	client := &stubChatClient{err: errors.New("provider down")}
	svc := newTestTicketService(repo, client)
	resp, err := svc.Create(context.Background(), CreateRequest{Subject: "Password locked", Body: "help"})
	require.NoError(t, err)

	suggestions, err := svc.SuggestReplies(context.Background(), resp.Ticket.ID)
	require.NoError(t, err)
	require.Len(t, suggestions, 3)
	require.InDelta(t, 0.8, suggestions[0].Confidence, 1e-9)
}

func TestSuggestRepliesFromLLM(t *testing.T) {
	repo := &stubTicketRepo{}
	client := &stubChatClient{content: "Thanks for reaching out, we are on it."}
	svc := newTestTicketService(repo, client)
	resp, err := svc.Create(context.Background(), CreateRequest{Subject: "Password locked", Body: "help"})
	require.NoError(t, err)

	suggestions, err := svc.SuggestReplies(context.Background(), resp.Ticket.ID)
	require.NoError(t, err)
	require.Len(t, suggestions, 3)
	for _, s := range suggestions {
		require.Equal(t, "Thanks for reaching out, we are on it.", s.Text)
		require.InDelta(t, 0.9, s.Confidence, 1e-9)
	}
}
