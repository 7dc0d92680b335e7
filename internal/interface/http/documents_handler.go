package http

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/elchin/deskhelp/internal/domain/knowledge"
)

// UploadDocument handles multipart upload and runs the ingestion pipeline.
func (h *Handler) UploadDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "file is required", err))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "failed to read upload", err))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "upload_failed", "failed to read file", err))
		return
	}
	req := knowledge.UploadRequest{
		Filename:   fileHeader.Filename,
		Title:      c.PostForm("title"),
		Department: c.PostForm("department"),
		AccessRole: c.PostForm("accessRole"),
		MimeType:   fileHeader.Header.Get("Content-Type"),
		Content:    data,
	}
	resp, err := h.knowledgeSvc.Upload(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "upload_failed"))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListDocuments returns documents matching optional status/department filters.
func (h *Handler) ListDocuments(c *gin.Context) {
	filter := knowledge.DocumentFilter{Statuses: parseStatuses(c.Query("status"))}
	if dept := strings.TrimSpace(c.Query("department")); dept != "" {
		filter.Departments = []string{strings.ToLower(dept)}
	}
	docs, err := h.knowledgeSvc.ListDocuments(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, fromDomainError(err, "fetch_failed"))
		return
	}
	if docs == nil {
		docs = []knowledge.Document{}
	}
	c.JSON(http.StatusOK, gin.H{"items": docs})
}

// GetDocument returns a single document's metadata.
func (h *Handler) GetDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid document id", err))
		return
	}
	doc, err := h.knowledgeSvc.GetDocument(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, fromDomainError(err, "fetch_failed"))
		return
	}
	c.JSON(http.StatusOK, doc)
}

// ReprocessDocument enqueues a background re-run of chunking and embedding.
func (h *Handler) ReprocessDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid document id", err))
		return
	}
	if err := h.knowledgeSvc.RequestReprocess(c.Request.Context(), id); err != nil {
		abortWithError(c, fromDomainError(err, "reprocess_failed"))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

func parseStatuses(raw string) []knowledge.DocumentStatus {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]knowledge.DocumentStatus, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		switch strings.ToLower(part) {
		case "pending":
			out = append(out, knowledge.DocumentStatusPending)
		case "processing":
			out = append(out, knowledge.DocumentStatusProcessing)
		case "processed":
			out = append(out, knowledge.DocumentStatusProcessed)
		case "failed":
			out = append(out, knowledge.DocumentStatusFailed)
		}
	}
	return out
}
