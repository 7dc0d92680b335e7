package http

import (
	"log/slog"

	"github.com/elchin/deskhelp/internal/domain/knowledge"
	"github.com/elchin/deskhelp/internal/domain/qa"
	"github.com/elchin/deskhelp/internal/domain/tickets"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	qaSvc        *qa.Service
	ticketSvc    *tickets.Service
	knowledgeSvc *knowledge.Service
	logger       *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(qaSvc *qa.Service, ticketSvc *tickets.Service, knowledgeSvc *knowledge.Service, logger *slog.Logger) *Handler {
	return &Handler{
		qaSvc:        qaSvc,
		ticketSvc:    ticketSvc,
		knowledgeSvc: knowledgeSvc,
		logger:       logger.With("component", "http.handler"),
	}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
