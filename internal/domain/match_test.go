package domain

import "testing"

func TestTierForSimilarity(t *testing.T) {
	tests := []struct {
		name       string
		similarity float64
		tier       ConfidenceTier
	}{
		{"well above eagle", 0.97, TierEagleTrail},
		{"exactly eagle threshold", 0.90, TierEagleTrail},
		{"just below eagle", 0.8999, TierLoboTrail},
		{"exactly lobo threshold", 0.80, TierLoboTrail},
		{"just below lobo", 0.7999, TierNoMatch},
		{"zero", 0, TierNoMatch},
		{"perfect", 1.0, TierEagleTrail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TierForSimilarity(tt.similarity); got != tt.tier {
				t.Errorf("TierForSimilarity(%v) = %v, want %v", tt.similarity, got, tt.tier)
			}
		})
	}
}

func TestMatchResult_SimilarityPercentage(t *testing.T) {
	r := &MatchResult{Similarity: 0.75}
	if got := r.SimilarityPercentage(); got != 75 {
		t.Errorf("SimilarityPercentage() = %v, want 75", got)
	}
}
