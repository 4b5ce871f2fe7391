package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConfidenceTier classifies a similarity score into a user-facing band.
type ConfidenceTier string

const (
	TierEagleTrail ConfidenceTier = "eagle_trail"
	TierLoboTrail  ConfidenceTier = "lobo_trail"
	TierNoMatch    ConfidenceTier = "no_match"
)

// Fixed tier thresholds. These are part of the matching contract and are
// not configurable.
const (
	EagleTrailThreshold = 0.90
	LoboTrailThreshold  = 0.80
)

// TierForSimilarity maps a clamped cosine similarity to its tier.
func TierForSimilarity(similarity float64) ConfidenceTier {
	switch {
	case similarity >= EagleTrailThreshold:
		return TierEagleTrail
	case similarity >= LoboTrailThreshold:
		return TierLoboTrail
	default:
		return TierNoMatch
	}
}

// Result types recorded on MatchResult.
const (
	ResultTypeQRSearch     = "qr_search"
	ResultTypeDirectSearch = "direct_search"
)

// MatchResult representa um resultado de busca persistido (audit)
type MatchResult struct {
	ID                uuid.UUID      `json:"id"`
	MatchedPetID      *uuid.UUID     `json:"matched_pet_id,omitempty"`
	MatchedTemplateID *uuid.UUID     `json:"-"`
	Similarity        float64        `json:"similarity"`
	Tier              ConfidenceTier `json:"confidence_tier"`
	Rank              int            `json:"rank"`
	ResultType        string         `json:"result_type"`
	SearcherID        *uuid.UUID     `json:"-"`
	ProcessingSeconds float64        `json:"processing_seconds"`
	CreatedAt         time.Time      `json:"created_at"`
}

// SimilarityPercentage returns the similarity as a 0-100 figure for display.
func (r *MatchResult) SimilarityPercentage() float64 {
	return r.Similarity * 100
}
