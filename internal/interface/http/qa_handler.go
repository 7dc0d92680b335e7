package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/elchin/deskhelp/internal/domain/qa"
)

type askPayload struct {
	Question   string `json:"question"`
	Department string `json:"department"`
}

// AskQuestion answers a question from the knowledge base. Every non-blank
// question produces a well-formed answer; only blank input is a client error.
func (h *Handler) AskQuestion(c *gin.Context) {
	var req askPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	result, err := h.qaSvc.Ask(c.Request.Context(), qa.AskRequest{
		Question:   req.Question,
		Department: req.Department,
		UserID:     currentUserID(c),
	})
	if err != nil {
		abortWithError(c, fromDomainError(err, "ask_failed"))
		return
	}

	c.JSON(http.StatusOK, result)
}

// QAHistory lists the caller's recent exchanges.
func (h *Handler) QAHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must be a positive integer", err))
			return
		}
		limit = parsed
	}
	records, err := h.qaSvc.History(c.Request.Context(), currentUserID(c), limit)
	if err != nil {
		abortWithError(c, fromDomainError(err, "fetch_failed"))
		return
	}
	if records == nil {
		records = []qa.HistoryRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"items": records})
}
