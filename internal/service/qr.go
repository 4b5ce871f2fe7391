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

const qrImageSize = 256

// QRService manages printable search codes and the anonymous scan-to-match
// flow they open.
type QRService struct {
	codes     QRRepository
	sessions  QRSessionRepository
	templates TemplateRepository
	matches   MatchRepository
	store     ImageStore
	pipeline  *Pipeline
	engine    *match.Engine
	renderer  QRRenderer
	scanBase  string
	logger    *slog.Logger
}

func NewQRService(
	codes QRRepository,
	sessions QRSessionRepository,
	templates TemplateRepository,
	matches MatchRepository,
	store ImageStore,
	pipeline *Pipeline,
	engine *match.Engine,
	renderer QRRenderer,
	scanBaseURL string,
	logger *slog.Logger,
) *QRService {
	return &QRService{
		codes:     codes,
		sessions:  sessions,
		templates: templates,
		matches:   matches,
		store:     store,
		pipeline:  pipeline,
		engine:    engine,
		renderer:  renderer,
		scanBase:  scanBaseURL,
		logger:    logger,
	}
}

// CreateCodeInput carries the optional attributes of a new code.
type CreateCodeInput struct {
	Type       domain.QRType
	ClinicName *string
	Location   *string
	MaxUsage   int
	ExpiresAt  *time.Time
}

// CreatedCode pairs the persisted code with its rendered PNG.
type CreatedCode struct {
	Code *domain.QRCode
	PNG  []byte
}

// CreateCode mints a new random code for the owner and renders its scan
// URL as a PNG.
func (s *QRService) CreateCode(ctx context.Context, ownerID uuid.UUID, input CreateCodeInput) (*CreatedCode, error) {
	if input.Type == "" {
		input.Type = domain.QRTypePetSearch
	}
	if input.MaxUsage <= 0 {
		input.MaxUsage = domain.DefaultMaxUsage
	}

	code := &domain.QRCode{
		Code:       domain.NewQRCodeValue(),
		Type:       input.Type,
		Status:     domain.QRActive,
		CreatedBy:  ownerID,
		ClinicName: input.ClinicName,
		Location:   input.Location,
		MaxUsage:   input.MaxUsage,
		ExpiresAt:  input.ExpiresAt,
	}
	if err := s.codes.Create(ctx, code); err != nil {
		return nil, err
	}

	png, err := s.renderer.RenderPNG(s.ScanURL(code.Code), qrImageSize)
	if err != nil {
		return nil, domain.ErrInternal.WithError(err)
	}

	return &CreatedCode{Code: code, PNG: png}, nil
}

// ScanURL is the address encoded in the printed QR image.
func (s *QRService) ScanURL(code string) string {
	return fmt.Sprintf("%s/scan/%s", s.scanBase, code)
}

// ListCodes returns every code the owner created.
func (s *QRService) ListCodes(ctx context.Context, ownerID uuid.UUID) ([]domain.QRCode, error) {
	return s.codes.ListByCreator(ctx, ownerID)
}

// Disable takes a code out of circulation; only its creator may do so.
func (s *QRService) Disable(ctx context.Context, ownerID uuid.UUID, code string) error {
	qr, err := s.codes.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if qr.CreatedBy != ownerID {
		return domain.ErrForbidden
	}
	return s.codes.Disable(ctx, qr.ID)
}

// Scan validates a code and opens an anonymous search session. Scanning
// does not consume the code; only a processed search does.
func (s *QRService) Scan(ctx context.Context, code string, searcherIP, userAgent *string) (*domain.QRSearchSession, error) {
	qr, err := s.codes.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if qr.IsExpiredAt(now) {
		if qr.Status == domain.QRActive {
			if err := s.codes.MarkExpired(ctx, qr.ID); err != nil {
				return nil, err
			}
		}
		return nil, domain.ErrQRExpired
	}
	if qr.UsageCount >= qr.MaxUsage {
		return nil, domain.ErrQRExhausted
	}
	if !qr.IsUsableAt(now) {
		return nil, domain.ErrQRNotUsable
	}

	session := &domain.QRSearchSession{
		QRCodeID:   qr.ID,
		Token:      domain.NewSessionToken(),
		Status:     domain.QRSessionInitiated,
		SearcherIP: searcherIP,
		UserAgent:  userAgent,
		ExpiresAt:  now.Add(domain.QRSessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("qr code scanned",
		slog.String("code", qr.Code),
		slog.String("session_id", session.ID.String()),
	)

	return session, nil
}

// QRSearchOutcome is the result of one search upload.
type QRSearchOutcome struct {
	Session *domain.QRSearchSession `json:"session"`
	Result  *domain.MatchResult     `json:"result"`
	Matches []match.RankedMatch     `json:"matches"`
}

// Search runs the uploaded photo against the template corpus. A photo with
// no detectable face fails the session without consuming the code; a
// processed search consumes one usage whatever the tier.
func (s *QRService) Search(ctx context.Context, token string, imageData []byte) (*QRSearchOutcome, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if session.IsTerminal() {
		return nil, domain.ErrQRSessionClosed
	}
	if session.IsExpiredAt(time.Now()) {
		if err := s.sessions.UpdateStatus(ctx, session.ID, domain.QRSessionExpiredState); err != nil {
			return nil, err
		}
		return nil, domain.ErrQRSessionExpired
	}

	img, err := vision.DecodeImage(imageData)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	if err := s.sessions.UpdateStatus(ctx, session.ID, domain.QRSessionImageUploaded); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("searches/%s/%s.jpg", session.QRCodeID, session.ID)
	if err := s.store.PutObject(ctx, key, imageData, "image/jpeg"); err != nil {
		return nil, domain.ErrInternal.WithError(err)
	}
	observability.ImagesProcessed.WithLabelValues("qr_search").Inc()

	if err := s.sessions.UpdateStatus(ctx, session.ID, domain.QRSessionProcessing); err != nil {
		return nil, err
	}

	started := time.Now()
	embedding, _ := s.pipeline.EmbedQuery(img)
	if embedding == nil {
		if err := s.sessions.MarkFailed(ctx, session.ID, domain.ErrNoFaceDetected.Message); err != nil {
			return nil, err
		}
		return nil, domain.ErrNoFaceDetected
	}

	ranked, err := s.rank(ctx, embedding)
	if err != nil {
		return nil, err
	}

	result := buildMatchResult(ranked, domain.ResultTypeQRSearch, nil, time.Since(started).Seconds())
	if err := s.matches.Create(ctx, result); err != nil {
		return nil, err
	}

	if _, err := s.codes.MarkUsed(ctx, session.QRCodeID); err != nil {
		return nil, err
	}
	if err := s.sessions.Complete(ctx, session.ID, &result.ID); err != nil {
		return nil, err
	}
	session.Status = domain.QRSessionCompleted
	session.ResultID = &result.ID

	observability.SearchesPerformed.WithLabelValues("qr_search", string(result.Tier)).Inc()
	observability.SearchDuration.Observe(time.Since(started).Seconds())

	return &QRSearchOutcome{Session: session, Result: result, Matches: ranked}, nil
}

// SessionStatus returns the current state of a scan session, applying lazy
// expiry on read.
func (s *QRService) SessionStatus(ctx context.Context, token string) (*domain.QRSearchSession, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if !session.IsTerminal() && session.IsExpiredAt(time.Now()) {
		if err := s.sessions.UpdateStatus(ctx, session.ID, domain.QRSessionExpiredState); err != nil {
			return nil, err
		}
		session.Status = domain.QRSessionExpiredState
	}

	return session, nil
}

func (s *QRService) rank(ctx context.Context, embedding []float32) ([]match.RankedMatch, error) {
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

	return s.engine.Rank(embedding, corpus, match.DefaultTopK), nil
}

// buildMatchResult persists the top-ranked candidate, or an explicit
// no_match row when the corpus yielded nothing.
func buildMatchResult(ranked []match.RankedMatch, resultType string, searcherID *uuid.UUID, seconds float64) *domain.MatchResult {
	result := &domain.MatchResult{
		Tier:              domain.TierNoMatch,
		Rank:              1,
		ResultType:        resultType,
		SearcherID:        searcherID,
		ProcessingSeconds: seconds,
	}

	if len(ranked) > 0 {
		best := ranked[0]
		result.Similarity = best.Similarity
		result.Tier = best.Tier
		if best.Tier != domain.TierNoMatch {
			petID := best.PetID
			templateID := best.TemplateID
			result.MatchedPetID = &petID
			result.MatchedTemplateID = &templateID
		}
	}

	return result
}
