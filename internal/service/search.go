package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/petnologia/petface/internal/domain"
	"github.com/petnologia/petface/internal/match"
	"github.com/petnologia/petface/internal/observability"
	"github.com/petnologia/petface/internal/vision"
)

// SearchService runs authenticated one-shot searches against the template
// corpus, outside of any QR flow.
type SearchService struct {
	templates TemplateRepository
	matches   MatchRepository
	store     ImageStore
	pipeline  *Pipeline
	engine    *match.Engine
	logger    *slog.Logger
}

func NewSearchService(
	templates TemplateRepository,
	matches MatchRepository,
	store ImageStore,
	pipeline *Pipeline,
	engine *match.Engine,
	logger *slog.Logger,
) *SearchService {
	return &SearchService{
		templates: templates,
		matches:   matches,
		store:     store,
		pipeline:  pipeline,
		engine:    engine,
		logger:    logger,
	}
}

// SearchOutcome is the ranked result set of a direct search.
type SearchOutcome struct {
	Result  *domain.MatchResult `json:"result"`
	Matches []match.RankedMatch `json:"matches"`
}

// Search embeds the query photo and ranks it against the latest completed
// template of every pet. The best candidate is persisted for audit.
func (s *SearchService) Search(ctx context.Context, ownerID uuid.UUID, imageData []byte) (*SearchOutcome, error) {
	img, err := vision.DecodeImage(imageData)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	started := time.Now()

	key := fmt.Sprintf("searches/direct/%s/%d.jpg", ownerID, started.UnixNano())
	if err := s.store.PutObject(ctx, key, imageData, "image/jpeg"); err != nil {
		return nil, domain.ErrInternal.WithError(err)
	}
	observability.ImagesProcessed.WithLabelValues("direct_search").Inc()

	embedding, _ := s.pipeline.EmbedQuery(img)
	if embedding == nil {
		return nil, domain.ErrNoFaceDetected
	}

	templates, err := s.templates.ListCorpus(ctx)
	if err != nil {
		return nil, err
	}

	corpus := make([]match.Candidate, 0, len(templates))
	for _, tmpl := range templates {
		corpus = append(corpus, match.Candidate{
			PetID:      tmpl.PetID,
			TemplateID: tmpl.ID,
			Embedding:  tmpl.Embedding,
		})
	}

	ranked := s.engine.Rank(embedding, corpus, match.DefaultTopK)

	result := buildMatchResult(ranked, domain.ResultTypeDirectSearch, &ownerID, time.Since(started).Seconds())
	if err := s.matches.Create(ctx, result); err != nil {
		return nil, err
	}

	observability.SearchesPerformed.WithLabelValues("direct_search", string(result.Tier)).Inc()
	observability.SearchDuration.Observe(time.Since(started).Seconds())

	s.logger.Info("direct search performed",
		slog.String("owner_id", ownerID.String()),
		slog.String("tier", string(result.Tier)),
		slog.Float64("similarity", result.Similarity),
	)

	return &SearchOutcome{Result: result, Matches: ranked}, nil
}

// searchHistoryLimit caps how many past results History returns.
const searchHistoryLimit = 20

// History lists the caller's most recent persisted search results.
func (s *SearchService) History(ctx context.Context, ownerID uuid.UUID) ([]domain.MatchResult, error) {
	return s.matches.ListBySearcher(ctx, ownerID, searchHistoryLimit)
}
