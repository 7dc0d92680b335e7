package qa

import (
	"sort"
	"strings"
	"unicode"

	"github.com/elchin/deskhelp/internal/domain/knowledge"
)

const (
	maxKeywords         = 10
	directMatchWeight   = 2.0
	synonymMatchWeight  = 1.5
	defaultKeywordFloor = 0.6
)

// azeriFold maps Azerbaijani diacritics to base Latin letters so that mixed
// script questions ("Niyə VPN bağlantım kəsilir?") match transliterated
// document text and vice versa.
var azeriFold = map[rune]rune{
	'ə': 'e',
	'ö': 'o',
	'ü': 'u',
	'ı': 'i',
	'ç': 'c',
	'ş': 's',
	'ğ': 'g',
}

// defaultStopWords holds folded stop words in English and Azerbaijani:
// articles, conjunctions, interrogatives, and common filler.
var defaultStopWords = []string{
	// English
	"the", "and", "for", "are", "was", "were", "but", "not", "you", "your",
	"can", "could", "will", "would", "should", "what", "when", "where",
	"which", "who", "why", "how", "does", "did", "with", "this", "that",
	"these", "those", "from", "have", "has", "had", "about", "there", "into",
	"please", "need", "want", "get", "our", "out", "all", "any", "its",
	// Azerbaijani (folded)
	"bir", "bu", "ki", "ucun", "nece", "niye", "hansi", "men", "biz", "siz",
	"mene", "bize", "olar", "edir", "etmek", "ile", "amma", "lakin", "yoxsa",
	"haqqinda", "gerek", "lazim", "isteyirem", "bilerem", "zaman", "sonra",
}

// defaultSynonyms groups interchangeable workplace vocabulary across English,
// Azerbaijani, and transliterated forms. Every member of a group matches
// every other member at synonym weight.
var defaultSynonyms = [][]string{
	{"monitor", "screen", "ekran", "display"},
	{"request", "teleb", "sorgu", "muraciet"},
	{"vacation", "leave", "mezuniyyet", "holiday", "tetil"},
	{"password", "parol", "sifre", "login", "giris"},
	{"computer", "komputer", "laptop", "noutbuk", "pc"},
	{"vpn", "network", "sebeke", "internet", "connection", "baglanti"},
	{"printer", "print", "cap", "printeri"},
	{"salary", "maas", "emek", "haqqi", "payment", "odenis"},
	{"invoice", "faktura", "hesab", "bill"},
	{"email", "poct", "mail", "mektub"},
	{"document", "sened", "senedler", "file", "fayl"},
	{"policy", "qayda", "siyaset", "prosedur", "procedure"},
	{"ticket", "bilet", "muraciet", "issue", "problem"},
	{"hardware", "avadanliq", "equipment", "texnika"},
	{"software", "proqram", "application", "tetbiq"},
	{"repair", "temir", "fix", "duzelis"},
	{"approve", "tesdiq", "approval", "razilasma"},
}

// KeywordMatcher recovers recall when semantic search is empty or the
// embedding provider is down. Scoring is deterministic: the same question and
// chunk text always produce the same score.
type KeywordMatcher struct {
	stopWords map[string]struct{}
	synonyms  map[string][]string
	threshold float64
	floor     float64
	limit     int
}

// KeywordMatcherOptions extends the built-in tables without touching the
// scoring algorithm.
type KeywordMatcherOptions struct {
	Threshold      float64
	Floor          float64
	Limit          int
	ExtraStopWords []string
	ExtraSynonyms  map[string][]string
}

// NewKeywordMatcher builds a matcher from the default multilingual tables
// plus any configured extensions.
func NewKeywordMatcher(opts KeywordMatcherOptions) *KeywordMatcher {
	if opts.Threshold <= 0 {
		opts.Threshold = 0.05
	}
	if opts.Floor <= 0 {
		opts.Floor = defaultKeywordFloor
	}
	if opts.Limit <= 0 {
		opts.Limit = 5
	}
	stop := make(map[string]struct{}, len(defaultStopWords)+len(opts.ExtraStopWords))
	for _, w := range defaultStopWords {
		stop[w] = struct{}{}
	}
	for _, w := range opts.ExtraStopWords {
		stop[FoldText(w)] = struct{}{}
	}

	groups := make([][]string, 0, len(defaultSynonyms)+len(opts.ExtraSynonyms))
	groups = append(groups, defaultSynonyms...)
	for base, syns := range opts.ExtraSynonyms {
		group := append([]string{FoldText(base)}, foldAll(syns)...)
		groups = append(groups, group)
	}
	index := make(map[string][]string)
	for _, group := range groups {
		for _, member := range group {
			member = FoldText(member)
			for _, other := range group {
				other = FoldText(other)
				if other == member {
					continue
				}
				index[member] = append(index[member], other)
			}
		}
	}
	return &KeywordMatcher{
		stopWords: stop,
		synonyms:  index,
		threshold: opts.Threshold,
		floor:     opts.Floor,
		limit:     opts.Limit,
	}
}

// FoldText lowercases, folds Azerbaijani diacritics to base Latin letters,
// and replaces punctuation with spaces.
func FoldText(text string) string {
	var builder strings.Builder
	builder.Grow(len(text))
	lastSpace := true
	for _, r := range strings.ToLower(text) {
		if folded, ok := azeriFold[r]; ok {
			r = folded
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			builder.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(builder.String())
}

// ExtractKeywords tokenizes the folded question, drops short tokens and stop
// words, and keeps the first maxKeywords survivors in input order.
func (m *KeywordMatcher) ExtractKeywords(question string) []string {
	tokens := strings.Fields(FoldText(question))
	keywords := make([]string, 0, maxKeywords)
	seen := make(map[string]struct{}, maxKeywords)
	for _, token := range tokens {
		if len([]rune(token)) <= 2 {
			continue
		}
		if _, stop := m.stopWords[token]; stop {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

// Score computes the weighted recall fraction of keywords found in the text.
// A direct substring match scores 2, a synonym match 1.5, a miss 0; the sum
// is divided by the maximum attainable weight, so the result is in [0,1].
func (m *KeywordMatcher) Score(keywords []string, text string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	folded := FoldText(text)
	var matched float64
	for _, keyword := range keywords {
		if strings.Contains(folded, keyword) {
			matched += directMatchWeight
			continue
		}
		for _, synonym := range m.synonyms[keyword] {
			if strings.Contains(folded, synonym) {
				matched += synonymMatchWeight
				break
			}
		}
	}
	return matched / (directMatchWeight * float64(len(keywords)))
}

// Match ranks chunks by raw keyword score, caps the result, and floors the
// similarity of the survivors at the configured keyword floor. Ordering and
// the cap use the raw score: the floor is presentation ("keyword match
// found" confidence), and flooring first would collapse every sub-floor
// score into one tie.
func (m *KeywordMatcher) Match(question string, chunks []knowledge.Chunk, titles map[string]string) []ScoredChunk {
	keywords := m.ExtractKeywords(question)
	if len(keywords) == 0 {
		return nil
	}
	type candidate struct {
		chunk knowledge.Chunk
		raw   float64
	}
	candidates := make([]candidate, 0, len(chunks))
	for _, chunk := range chunks {
		raw := m.Score(keywords, chunk.Content)
		if raw <= m.threshold {
			continue
		}
		candidates = append(candidates, candidate{chunk: chunk, raw: raw})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].raw != candidates[j].raw {
			return candidates[i].raw > candidates[j].raw
		}
		return candidates[i].chunk.ID.String() < candidates[j].chunk.ID.String()
	})
	if len(candidates) > m.limit {
		candidates = candidates[:m.limit]
	}
	scored := make([]ScoredChunk, 0, len(candidates))
	for _, c := range candidates {
		similarity := c.raw
		if similarity < m.floor {
			similarity = m.floor
		}
		scored = append(scored, ScoredChunk{
			Chunk:         c.chunk,
			DocumentTitle: titles[c.chunk.DocumentID.String()],
			Similarity:    similarity,
		})
	}
	return scored
}

func foldAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, FoldText(w))
	}
	return out
}
