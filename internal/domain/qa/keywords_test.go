package qa

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/elchin/deskhelp/internal/domain/knowledge"
)

func TestFoldText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"azerbaijani diacritics", "Niyə şəbəkə bağlantım kəsilir", "niye sebeke baglantim kesilir"},
		{"punctuation to spaces", "password: reset, now!", "password reset now"},
		{"mixed case", "VPN Bağlantısı", "vpn baglantisi"},
		{"empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, FoldText(tc.in))
		})
	}
}

func TestExtractKeywordsDropsStopWordsAndShortTokens(t *testing.T) {
	m := NewKeywordMatcher(KeywordMatcherOptions{})
	keywords := m.ExtractKeywords("How can I reset my password for the VPN?")
	require.Equal(t, []string{"reset", "password", "vpn"}, keywords)
}

func TestExtractKeywordsDeduplicatesAndCaps(t *testing.T) {
	m := NewKeywordMatcher(KeywordMatcherOptions{})
	keywords := m.ExtractKeywords("printer printer printer alpha bravo charlie delta echo foxtrot golf hotel india juliett")
	require.Len(t, keywords, 10)
	require.Equal(t, "printer", keywords[0])
	require.Equal(t, "alpha", keywords[1])
}

func TestScoreDirectAndSynonymMatches(t *testing.T) {
	m := NewKeywordMatcher(KeywordMatcherOptions{})

	// all keywords present verbatim
	require.InDelta(t, 1.0, m.Score([]string{"password", "reset"}, "Password reset instructions for staff."), 1e-9)

	// "ekran" is a synonym of "monitor": 1.5 of a possible 2.0
	require.InDelta(t, 0.75, m.Score([]string{"monitor"}, "Yeni ekran sifarişi qaydaları."), 1e-9)

	// miss
	require.InDelta(t, 0, m.Score([]string{"vacation"}, "Printer toner replacement guide."), 1e-9)
}

func TestScoreIsDeterministic(t *testing.T) {
	m := NewKeywordMatcher(KeywordMatcherOptions{})
	keywords := m.ExtractKeywords("Niyə VPN bağlantım kəsilir?")
	first := m.Score(keywords, "VPN şəbəkə qoşulması üçün təlimat.")
	second := m.Score(keywords, "VPN şəbəkə qoşulması üçün təlimat.")
	require.Equal(t, first, second)
	require.Greater(t, first, 0.0)
}

func TestMatchFloorsSurvivorsAndSkipsMisses(t *testing.T) {
	m := NewKeywordMatcher(KeywordMatcherOptions{Threshold: 0.05, Floor: 0.6, Limit: 5})
	docID := uuid.New()
	chunks := []knowledge.Chunk{
		{ID: uuid.New(), DocumentID: docID, Content: "Password reset is self-service on the login page."},
		{ID: uuid.New(), DocumentID: docID, Content: "Quarterly revenue report for the finance team."},
	}
	titles := map[string]string{docID.String(): "IT Handbook"}

	ranked := m.Match("How do I reset my password?", chunks, titles)
	require.Len(t, ranked, 1)
	require.GreaterOrEqual(t, ranked[0].Similarity, 0.6)
	require.Equal(t, "IT Handbook", ranked[0].DocumentTitle)
}

func TestMatchCrossLanguageRecall(t *testing.T) {
	m := NewKeywordMatcher(KeywordMatcherOptions{})
	docID := uuid.New()
	chunks := []knowledge.Chunk{
		{ID: uuid.New(), DocumentID: docID, Content: "Şəbəkə bağlantısı problemləri üçün əvvəlcə routeri yenidən başladın."},
	}

	// English question, Azerbaijani document: "network" is a synonym of "sebeke".
	ranked := m.Match("My network connection keeps dropping", chunks, nil)
	require.Len(t, ranked, 1)
	require.GreaterOrEqual(t, ranked[0].Similarity, 0.6)
}

func TestMatchHonorsExtraSynonyms(t *testing.T) {
	m := NewKeywordMatcher(KeywordMatcherOptions{
		ExtraSynonyms: map[string][]string{"badge": {"kecid", "vesiqe"}},
	})
	docID := uuid.New()
	chunks := []knowledge.Chunk{
		{ID: uuid.New(), DocumentID: docID, Content: "İtirilmiş vəsiqə üçün təhlükəsizlik şöbəsinə müraciət edin."},
	}
	ranked := m.Match("I lost my badge", chunks, nil)
	require.Len(t, ranked, 1)
}

func TestMatchOrdersBySubFloorRawScore(t *testing.T) {
	m := NewKeywordMatcher(KeywordMatcherOptions{})
	strongID := uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff")
	weakID := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	chunks := []knowledge.Chunk{
		// 1 of 4 keywords, raw 0.25; the small ID would win a tie-break.
		{ID: weakID, DocumentID: uuid.Nil, Content: "Salary payments are processed monthly."},
		// 2 of 4 keywords, raw 0.5.
		{ID: strongID, DocumentID: uuid.Nil, Content: "The vpn client and the monitor are configured by IT."},
	}

	ranked := m.Match("vpn monitor salary invoice", chunks, nil)
	require.Len(t, ranked, 2)
	require.Equal(t, strongID, ranked[0].Chunk.ID)
	require.Equal(t, weakID, ranked[1].Chunk.ID)
	// Both raw scores sit under the floor, so both are reported at it.
	require.InDelta(t, 0.6, ranked[0].Similarity, 1e-9)
	require.InDelta(t, 0.6, ranked[1].Similarity, 1e-9)
}

func TestMatchNoKeywordsReturnsNil(t *testing.T) {
	m := NewKeywordMatcher(KeywordMatcherOptions{})
	require.Nil(t, m.Match("how is it?", []knowledge.Chunk{{ID: uuid.New(), Content: "anything"}}, nil))
}
