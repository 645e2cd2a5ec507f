// Package threat scores and shares fraud intelligence.
package threat

import "payshield/internal/threat/models"

// reasonWeights maps each fraud reason code to its severity.
var reasonWeights = map[string]float64{
	models.ReasonSuspiciousWalletChange:      0.9,
	models.ReasonTemplateSimilarityKnownScam: 0.85,
	models.ReasonNoPOMatch:                   0.7,
	models.ReasonHoursExceedLogs:             0.6,
	models.ReasonAccountNumberMismatch:       0.8,
	models.ReasonDuplicateInvoice:            0.75,
	models.ReasonVendorNotRecognized:         0.5,
	models.ReasonUnusualAmount:               0.4,
	models.ReasonSuspiciousTiming:            0.3,
}

// unknownReasonWeight applies to reason codes not in the table, so new codes
// from other network participants still contribute.
const unknownReasonWeight = 0.5

// ScoreFromReasons estimates a fraud score from reason codes: the most
// severe reason sets the base, and each additional reason adds a 10% boost,
// capped at 1.0.
func ScoreFromReasons(reasons []string) float64 {
	if len(reasons) == 0 {
		return 0
	}
	maxWeight := 0.0
	for _, reason := range reasons {
		w, ok := reasonWeights[reason]
		if !ok {
			w = unknownReasonWeight
		}
		if w > maxWeight {
			maxWeight = w
		}
	}
	score := maxWeight * (1.0 + float64(len(reasons)-1)*0.1)
	if score > 1.0 {
		return 1.0
	}
	return score
}
