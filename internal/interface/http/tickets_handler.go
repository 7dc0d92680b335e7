package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/elchin/deskhelp/internal/domain/tickets"
)

type createTicketPayload struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// CreateTicket routes and persists a new support ticket.
func (h *Handler) CreateTicket(c *gin.Context) {
	var req createTicketPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.ticketSvc.Create(c.Request.Context(), tickets.CreateRequest{
		Subject:   req.Subject,
		Body:      req.Body,
		CreatedBy: currentUserID(c),
	})
	if err != nil {
		abortWithError(c, fromDomainError(err, "ticket_failed"))
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetTicket returns a single ticket.
func (h *Handler) GetTicket(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid ticket id", err))
		return
	}
	ticket, err := h.ticketSvc.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, fromDomainError(err, "fetch_failed"))
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// ListTickets returns recent tickets.
func (h *Handler) ListTickets(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must be a positive integer", err))
			return
		}
		limit = parsed
	}
	items, err := h.ticketSvc.List(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, fromDomainError(err, "fetch_failed"))
		return
	}
	if items == nil {
		items = []tickets.Ticket{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// SuggestReplies returns tone-varied reply drafts for a ticket.
func (h *Handler) SuggestReplies(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid ticket id", err))
		return
	}
	suggestions, err := h.ticketSvc.SuggestReplies(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, fromDomainError(err, "reply_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

type routingFeedbackPayload struct {
	RuleID     string `json:"ruleId"`
	WasCorrect *bool  `json:"wasCorrect"`
}

// RoutingFeedback records whether a rule-based routing decision was correct so
// rule accuracy estimates drift toward observed quality.
func (h *Handler) RoutingFeedback(c *gin.Context) {
	var req routingFeedbackPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	ruleID, err := uuid.Parse(req.RuleID)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid ruleId", err))
		return
	}
	if req.WasCorrect == nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "wasCorrect is required", nil))
		return
	}
	if err := h.ticketSvc.MarkRoutingOutcome(c.Request.Context(), ruleID, *req.WasCorrect); err != nil {
		abortWithError(c, fromDomainError(err, "feedback_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "recorded"})
}
