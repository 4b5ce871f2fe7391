package match

import (
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/petnologia/petface/internal/domain"
)

// DefaultTopK is how many candidates a search returns when the caller does
// not say otherwise.
const DefaultTopK = 5

// Candidate is one completed template in the searchable corpus.
type Candidate struct {
	PetID      uuid.UUID
	TemplateID uuid.UUID
	Embedding  []float32
}

// RankedMatch is one scored corpus entry. Rank is 1-based.
type RankedMatch struct {
	PetID      uuid.UUID             `json:"pet_id"`
	TemplateID uuid.UUID             `json:"-"`
	Similarity float64               `json:"similarity"`
	Tier       domain.ConfidenceTier `json:"confidence_tier"`
	Rank       int                   `json:"rank"`
}

// Engine ranks a query embedding against the template corpus with a plain
// linear scan. Corpus sizes here stay well below the point where an ANN
// index would pay for itself.
type Engine struct {
	logger *slog.Logger
}

func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: logger}
}

// Rank scores every candidate against the query, orders by similarity
// descending and returns at most topK entries. Ties keep corpus order.
// Candidates whose embedding cannot be scored against the query are
// skipped, they never surface as zero-similarity matches.
func (e *Engine) Rank(query []float32, corpus []Candidate, topK int) []RankedMatch {
	if topK <= 0 {
		topK = DefaultTopK
	}

	matches := make([]RankedMatch, 0, len(corpus))
	for _, c := range corpus {
		if len(c.Embedding) == 0 || len(c.Embedding) != len(query) {
			e.logger.Warn("skipping template with unusable embedding",
				slog.String("template_id", c.TemplateID.String()),
				slog.Int("dimension", len(c.Embedding)),
			)
			continue
		}

		similarity := CosineSimilarity(query, c.Embedding)
		matches = append(matches, RankedMatch{
			PetID:      c.PetID,
			TemplateID: c.TemplateID,
			Similarity: similarity,
			Tier:       domain.TierForSimilarity(similarity),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	for i := range matches {
		matches[i].Rank = i + 1
	}

	return matches
}
