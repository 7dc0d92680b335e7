package qa

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/elchin/deskhelp/internal/domain/knowledge"
	apperrors "github.com/elchin/deskhelp/pkg/errors"
)

// Config tunes the fallback ladder.
type Config struct {
	SimilarityThreshold float64
	MaxSources          int
	AllowScopeWidening  bool
}

// wideningTitleHints mark documents that are searched when a department scope
// comes back empty. Kept deliberately small; see AllowScopeWidening.
var wideningTitleHints = []string{"it", "policy", "procedure", "general", "qayda"}

// itSeedChunkText is a hand-authored fallback so common IT questions are
// never answer-less even with an empty corpus.
const itSeedChunkText = "IT hardware request policy: employees request new hardware such as monitors, laptops, or peripherals " +
	"through an IT support ticket. Standard equipment is approved by the IT department within three business days; " +
	"non-standard items additionally require manager approval. Replacement of faulty hardware is prioritized over upgrades."

const apologeticAnswer = "Sorry, the knowledge base is temporarily unavailable. Please try again in a moment or contact support directly."

// Service coordinates chunk retrieval, the semantic/keyword/canned fallback
// ladder, answer composition, confidence accounting, and history persistence.
type Service struct {
	cfg      Config
	docs     knowledge.DocumentRepository
	chunks   knowledge.ChunkRepository
	embedder knowledge.Embedder
	matcher  *KeywordMatcher
	composer *Composer
	history  HistoryRepository
	logger   *slog.Logger
}

// NewService constructs the QA orchestrator.
func NewService(cfg Config, docs knowledge.DocumentRepository, chunks knowledge.ChunkRepository, embedder knowledge.Embedder, matcher *KeywordMatcher, composer *Composer, history HistoryRepository, logger *slog.Logger) *Service {
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = 0.7
	}
	if cfg.MaxSources <= 0 {
		cfg.MaxSources = 5
	}
	return &Service{
		cfg:      cfg,
		docs:     docs,
		chunks:   chunks,
		embedder: embedder,
		matcher:  matcher,
		composer: composer,
		history:  history,
		logger:   logger.With("component", "qa.service"),
	}
}

// Ask walks the fallback ladder and always returns a well-formed Result for a
// non-blank question. Only a blank question produces an error.
func (s *Service) Ask(ctx context.Context, req AskRequest) (Result, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return Result{}, apperrors.Wrap(apperrors.CodeInvalidInput, "question cannot be empty", nil)
	}
	department := strings.ToLower(strings.TrimSpace(req.Department))
	start := time.Now()

	scope, titles, err := s.scopeChunks(ctx, department)
	if err != nil {
		s.logger.Error("chunk scoping failed", "department", department, "error", err)
		result := Result{
			Answer:         apologeticAnswer,
			Confidence:     0,
			Sources:        []Source{},
			ResponseTimeMs: elapsedMs(start),
		}
		s.recordHistory(ctx, req, question, department, result)
		return result, nil
	}

	ranked, confidence := s.retrieve(ctx, question, scope, titles)

	var answer string
	if len(ranked) > 0 {
		answer = s.composer.Compose(ctx, question, ranked)
	} else {
		answer, confidence = cannedAnswer(question)
	}

	result := Result{
		Answer:         answer,
		Confidence:     clampConfidence(confidence),
		Sources:        buildSources(ranked),
		ResponseTimeMs: elapsedMs(start),
	}
	s.recordHistory(ctx, req, question, department, result)
	return result, nil
}

// retrieve runs the semantic stage and falls back to keyword matching. Both
// an error and an empty result advance the ladder.
func (s *Service) retrieve(ctx context.Context, question string, scope []knowledge.Chunk, titles map[string]string) ([]ScoredChunk, int) {
	if len(scope) == 0 {
		return nil, 0
	}
	embeddings, err := s.embedder.Embed(ctx, []string{question})
	if err != nil || len(embeddings) == 0 {
		s.logger.Warn("question embedding failed, skipping semantic search", "error", err)
	} else {
		ranked := Rank(embeddings[0], scope, titles, s.cfg.MaxSources, s.cfg.SimilarityThreshold)
		if len(ranked) > 0 {
			return ranked, confidenceFromSimilarity(ranked)
		}
	}
	ranked := s.matcher.Match(question, scope, titles)
	if len(ranked) > 0 {
		return ranked, confidenceFromSimilarity(ranked)
	}
	return nil, 0
}

// scopeChunks resolves the department to its documents' chunks, widening to
// general/IT/policy documents when the exact scope is empty and widening is
// allowed, and finally seeding a hand-authored IT chunk for the IT department.
func (s *Service) scopeChunks(ctx context.Context, department string) ([]knowledge.Chunk, map[string]string, error) {
	filter := knowledge.DocumentFilter{Statuses: []knowledge.DocumentStatus{knowledge.DocumentStatusProcessed}}
	if department != "" {
		filter.Departments = []string{department}
	}
	docs, err := s.docs.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	chunks, titles, err := s.chunksFor(ctx, docs)
	if err != nil {
		return nil, nil, err
	}
	if len(chunks) > 0 || department == "" {
		return chunks, titles, nil
	}

	if s.cfg.AllowScopeWidening {
		all, err := s.docs.List(ctx, knowledge.DocumentFilter{Statuses: []knowledge.DocumentStatus{knowledge.DocumentStatusProcessed}})
		if err != nil {
			return nil, nil, err
		}
		widened := make([]knowledge.Document, 0, len(all))
		for _, doc := range all {
			if titleSuggestsGeneralContent(doc.Title) {
				widened = append(widened, doc)
			}
		}
		chunks, titles, err = s.chunksFor(ctx, widened)
		if err != nil {
			return nil, nil, err
		}
		if len(chunks) > 0 {
			s.logger.Info("scope widened to general documents", "department", department, "documents", len(widened))
			return chunks, titles, nil
		}
	}

	if department == "it" {
		seed := knowledge.Chunk{
			ID:         uuid.Nil,
			DocumentID: uuid.Nil,
			Content:    itSeedChunkText,
		}
		return []knowledge.Chunk{seed}, map[string]string{uuid.Nil.String(): "IT Hardware Request Policy"}, nil
	}
	return nil, map[string]string{}, nil
}

func (s *Service) chunksFor(ctx context.Context, docs []knowledge.Document) ([]knowledge.Chunk, map[string]string, error) {
	if len(docs) == 0 {
		return nil, map[string]string{}, nil
	}
	ids := make([]uuid.UUID, 0, len(docs))
	titles := make(map[string]string, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID)
		titles[doc.ID.String()] = doc.Title
	}
	chunks, err := s.chunks.ListByDocuments(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return chunks, titles, nil
}

func titleSuggestsGeneralContent(title string) bool {
	folded := FoldText(title)
	for _, hint := range wideningTitleHints {
		for _, word := range strings.Fields(folded) {
			if word == hint || strings.HasPrefix(word, hint) {
				return true
			}
		}
	}
	return false
}

// recordHistory persists the exchange best-effort: a failed write is logged
// and swallowed, never surfaced to the caller.
func (s *Service) recordHistory(ctx context.Context, req AskRequest, question, department string, result Result) {
	if s.history == nil {
		return
	}
	sourceIDs := make([]uuid.UUID, 0, len(result.Sources))
	for _, src := range result.Sources {
		sourceIDs = append(sourceIDs, src.DocumentID)
	}
	rec := HistoryRecord{
		ID:             uuid.New(),
		UserID:         req.UserID,
		Question:       question,
		Answer:         result.Answer,
		ResponseTimeMs: clampResponseTime(result.ResponseTimeMs),
		Confidence:     clampConfidence(result.Confidence),
		Department:     department,
		SourceIDs:      sourceIDs,
		CreatedAt:      time.Now(),
	}
	if err := s.history.Append(ctx, rec); err != nil {
		s.logger.Warn("history write failed", "error", err)
	}
}

// History returns recent exchanges for a user.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]HistoryRecord, error) {
	if s.history == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	return s.history.ListByUser(ctx, userID, limit)
}

func buildSources(ranked []ScoredChunk) []Source {
	sources := make([]Source, 0, len(ranked))
	for _, sc := range ranked {
		sources = append(sources, Source{
			DocumentID:    sc.Chunk.DocumentID,
			DocumentTitle: sc.DocumentTitle,
			ChunkExcerpt:  excerpt(sc.Chunk.Content, 160),
			Similarity:    sc.Similarity,
		})
	}
	return sources
}

func confidenceFromSimilarity(ranked []ScoredChunk) int {
	if len(ranked) == 0 {
		return 0
	}
	var total float64
	for _, sc := range ranked {
		total += sc.Similarity
	}
	avg := total / float64(len(ranked))
	if math.IsNaN(avg) || math.IsInf(avg, 0) {
		return 0
	}
	return clampConfidence(int(math.Round(avg * 100)))
}

func clampConfidence(confidence int) int {
	if confidence < 0 {
		return 0
	}
	if confidence > 100 {
		return 100
	}
	return confidence
}

func clampResponseTime(ms int64) int64 {
	if ms < 1 {
		return 1
	}
	return ms
}

func elapsedMs(start time.Time) int64 {
	return clampResponseTime(time.Since(start).Milliseconds())
}

func excerpt(body string, max int) string {
	if max <= 0 || len(body) <= max {
		return body
	}
	return strings.TrimSpace(cutAtRune(body, max)) + "..."
}
