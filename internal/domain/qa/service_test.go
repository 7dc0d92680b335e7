package qa

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/elchin/deskhelp/internal/domain/knowledge"
	apperrors "github.com/elchin/deskhelp/pkg/errors"
)

type stubDocRepo struct {
	docs    []knowledge.Document
	listErr error
}

func (s *stubDocRepo) Create(context.Context, knowledge.Document) error { return nil }
func (s *stubDocRepo) UpdateStatus(context.Context, uuid.UUID, knowledge.DocumentStatus, *string) error {
	return nil
}
func (s *stubDocRepo) Get(_ context.Context, id uuid.UUID) (knowledge.Document, bool, error) {
	for _, doc := range s.docs {
		if doc.ID == id {
			return doc, true, nil
		}
	}
	return knowledge.Document{}, false, nil
}
func (s *stubDocRepo) List(_ context.Context, filter knowledge.DocumentFilter) ([]knowledge.Document, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []knowledge.Document
	for _, doc := range s.docs {
		if len(filter.Departments) > 0 && doc.Department != filter.Departments[0] {
			continue
		}
		out = append(out, doc)
	}
	return out, nil
}

type stubChunkRepo struct {
	chunks []knowledge.Chunk
}

func (s *stubChunkRepo) InsertBatch(context.Context, []knowledge.Chunk) error { return nil }
func (s *stubChunkRepo) ListByDocuments(_ context.Context, docIDs []uuid.UUID) ([]knowledge.Chunk, error) {
	wanted := make(map[uuid.UUID]struct{}, len(docIDs))
	for _, id := range docIDs {
		wanted[id] = struct{}{}
	}
	var out []knowledge.Chunk
	for _, chunk := range s.chunks {
		if _, ok := wanted[chunk.DocumentID]; ok {
			out = append(out, chunk)
		}
	}
	return out, nil
}
func (s *stubChunkRepo) DeleteByDocument(context.Context, uuid.UUID) error { return nil }

type stubEmbedder struct {
	vector []float32
	err    error
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vector
	}
	return out, nil
}

type recordingHistory struct {
	records []HistoryRecord
	err     error
}

func (r *recordingHistory) Append(_ context.Context, rec HistoryRecord) error {
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, rec)
	return nil
}
func (r *recordingHistory) ListByUser(_ context.Context, userID string, limit int) ([]HistoryRecord, error) {
	var out []HistoryRecord
	for _, rec := range r.records {
		if userID != "" && rec.UserID != userID {
			continue
		}
		out = append(out, rec)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestService(docs *stubDocRepo, chunks *stubChunkRepo, embedder *stubEmbedder, history *recordingHistory) *Service {
	matcher := NewKeywordMatcher(KeywordMatcherOptions{})
	composer := NewComposer(nil, testLogger())
	return NewService(Config{SimilarityThreshold: 0.7, MaxSources: 5, AllowScopeWidening: true}, docs, chunks, embedder, matcher, composer, history, testLogger())
}

func processedDoc(title, department string) knowledge.Document {
	return knowledge.Document{ID: uuid.New(), Title: title, Department: department, Status: knowledge.DocumentStatusProcessed}
}

func TestAskRejectsBlankQuestion(t *testing.T) {
	svc := newTestService(&stubDocRepo{}, &stubChunkRepo{}, &stubEmbedder{vector: []float32{1, 0}}, &recordingHistory{})
	_, err := svc.Ask(context.Background(), AskRequest{Question: "   "})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestAskSemanticHit(t *testing.T) {
	doc := processedDoc("IT Handbook", "it")
	docs := &stubDocRepo{docs: []knowledge.Document{doc}}
	chunks := &stubChunkRepo{chunks: []knowledge.Chunk{
		{ID: uuid.New(), DocumentID: doc.ID, Content: "Monitors are requested via IT support tickets.", Embedding: []float32{1, 0}},
	}}
	history := &recordingHistory{}
	svc := newTestService(docs, chunks, &stubEmbedder{vector: []float32{1, 0}}, history)

	result, err := svc.Ask(context.Background(), AskRequest{Question: "How do I request a monitor?", Department: "IT", UserID: "u1"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Answer)
	require.Equal(t, 100, result.Confidence)
	require.Len(t, result.Sources, 1)
	require.Equal(t, "IT Handbook", result.Sources[0].DocumentTitle)
	require.GreaterOrEqual(t, result.ResponseTimeMs, int64(1))
	require.Len(t, history.records, 1)
	require.Equal(t, "u1", history.records[0].UserID)
}

func TestAskKeywordFallbackWhenSimilarityLow(t *testing.T) {
	doc := processedDoc("IT Handbook", "it")
	docs := &stubDocRepo{docs: []knowledge.Document{doc}}
	chunks := &stubChunkRepo{chunks: []knowledge.Chunk{
		{ID: uuid.New(), DocumentID: doc.ID, Content: "Password reset is self-service on the login page.", Embedding: []float32{0, 1}},
	}}
	svc := newTestService(docs, chunks, &stubEmbedder{vector: []float32{1, 0}}, &recordingHistory{})

	result, err := svc.Ask(context.Background(), AskRequest{Question: "How do I reset my password?", Department: "it"})
	require.NoError(t, err)
	require.Len(t, result.Sources, 1)
	// keyword scores are floored at 0.6, so confidence lands at 60+
	require.GreaterOrEqual(t, result.Confidence, 60)
	require.NotEmpty(t, result.Answer)
}

func TestAskKeywordFallbackWhenEmbeddingFails(t *testing.T) {
	doc := processedDoc("IT Handbook", "it")
	docs := &stubDocRepo{docs: []knowledge.Document{doc}}
	chunks := &stubChunkRepo{chunks: []knowledge.Chunk{
		{ID: uuid.New(), DocumentID: doc.ID, Content: "VPN şəbəkə qoşulması üçün təlimat.", Embedding: []float32{1, 0}},
	}}
	svc := newTestService(docs, chunks, &stubEmbedder{err: errors.New("provider down")}, &recordingHistory{})

	result, err := svc.Ask(context.Background(), AskRequest{Question: "VPN bağlantım kəsilir", Department: "it"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Sources)
	require.NotEmpty(t, result.Answer)
}

func TestAskCannedFallbackWhenNothingMatches(t *testing.T) {
	docs := &stubDocRepo{}
	svc := newTestService(docs, &stubChunkRepo{}, &stubEmbedder{vector: []float32{1, 0}}, &recordingHistory{})

	result, err := svc.Ask(context.Background(), AskRequest{Question: "How do I request vacation?"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Answer)
	require.Empty(t, result.Sources)
	require.GreaterOrEqual(t, result.Confidence, 20)
	require.LessOrEqual(t, result.Confidence, 65)
}

func TestAskStorageFailureYieldsApology(t *testing.T) {
	docs := &stubDocRepo{listErr: errors.New("db down")}
	history := &recordingHistory{}
	svc := newTestService(docs, &stubChunkRepo{}, &stubEmbedder{vector: []float32{1, 0}}, history)

	result, err := svc.Ask(context.Background(), AskRequest{Question: "anything at all", UserID: "u2"})
	require.NoError(t, err)
	require.Equal(t, 0, result.Confidence)
	require.Contains(t, result.Answer, "temporarily unavailable")
	require.Empty(t, result.Sources)
	// the failed exchange is still recorded
	require.Len(t, history.records, 1)
}

func TestAskITSeedChunkWhenDepartmentEmpty(t *testing.T) {
	svc := newTestService(&stubDocRepo{}, &stubChunkRepo{}, &stubEmbedder{vector: []float32{0, 1}}, &recordingHistory{})

	result, err := svc.Ask(context.Background(), AskRequest{Question: "How do I request new hardware?", Department: "IT"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Answer)
	require.Len(t, result.Sources, 1)
	require.Equal(t, "IT Hardware Request Policy", result.Sources[0].DocumentTitle)
}

func TestAskScopeWideningFindsGeneralDocs(t *testing.T) {
	policyDoc := processedDoc("General Policy Handbook", "hr")
	docs := &stubDocRepo{docs: []knowledge.Document{policyDoc}}
	chunks := &stubChunkRepo{chunks: []knowledge.Chunk{
		{ID: uuid.New(), DocumentID: policyDoc.ID, Content: "Travel expense policy applies to all departments.", Embedding: []float32{0, 1}},
	}}
	svc := newTestService(docs, chunks, &stubEmbedder{vector: []float32{1, 0}}, &recordingHistory{})

	// finance has no documents; the general policy handbook is searched instead
	result, err := svc.Ask(context.Background(), AskRequest{Question: "What is the travel expense policy?", Department: "finance"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Sources)
	require.Equal(t, "General Policy Handbook", result.Sources[0].DocumentTitle)
}

func TestAskHistoryFailureIsSwallowed(t *testing.T) {
	history := &recordingHistory{err: errors.New("history down")}
	svc := newTestService(&stubDocRepo{}, &stubChunkRepo{}, &stubEmbedder{vector: []float32{1, 0}}, history)

	result, err := svc.Ask(context.Background(), AskRequest{Question: "vacation policy?"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Answer)
}

func TestHistoryScopesToUser(t *testing.T) {
	history := &recordingHistory{}
	svc := newTestService(&stubDocRepo{}, &stubChunkRepo{}, &stubEmbedder{vector: []float32{1, 0}}, history)

	_, err := svc.Ask(context.Background(), AskRequest{Question: "vacation?", UserID: "alice"})
	require.NoError(t, err)
	_, err = svc.Ask(context.Background(), AskRequest{Question: "password?", UserID: "bob"})
	require.NoError(t, err)

	records, err := svc.History(context.Background(), "alice", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "vacation?", records[0].Question)
}
