package jsonbackend

import (
	"context"
	"sort"

	"payshield/internal/contract/models"
	"payshield/pkg/fingerprint"
)

// DedupStrategy selects the identity used to match a resubmitted threat to a
// stored record.
//
// DedupByThreatID is the live behavior: reporters generate a fresh random
// threatId per submission, so two independent reports of the same real-world
// vendor/payment/template combination normally land as two records. Matching
// on the semantic fingerprint triple would deduplicate those; it is defined
// here so the keying scheme can be switched without touching ledger
// internals, but it is not the default.
type DedupStrategy string

const (
	DedupByThreatID    DedupStrategy = "threatId"
	DedupByFingerprint DedupStrategy = "fingerprint"
)

func (s DedupStrategy) matches(stored, submitted models.Threat) bool {
	if s == DedupByFingerprint {
		return stored.VendorHash == submitted.VendorHash &&
			stored.PaymentTargetHash == submitted.PaymentTargetHash &&
			stored.InvoiceTemplateHash == submitted.InvoiceTemplateHash
	}
	return stored.ThreatID == submitted.ThreatID
}

// AppendThreat records a threat fingerprint. A submission matching a stored
// record (per the configured dedup strategy) increments that record's
// timesSeen and refreshes its lastSeenAt; the submission's other fields are
// discarded. Statistics are recomputed in full from the resulting list.
func (b *Backend) AppendThreat(_ context.Context, threat models.Threat) (string, error) {
	if err := threat.Validate(); err != nil {
		return "", err
	}

	now := b.timestamp()
	resultID := threat.ThreatID
	err := b.threats.Update(func(doc *models.ThreatDocument) (bool, error) {
		matched := false
		for i := range doc.Threats {
			if b.dedup.matches(doc.Threats[i], threat) {
				doc.Threats[i].TimesSeen++
				doc.Threats[i].LastSeenAt = now
				resultID = doc.Threats[i].ThreatID
				matched = true
				break
			}
		}
		if !matched {
			doc.Threats = append(doc.Threats, threat)
		}

		doc.Statistics = computeThreatStatistics(doc.Threats, now)
		doc.LastUpdated = now
		return true, nil
	})
	if err != nil {
		return "", err
	}

	b.metrics.IncContractWrites(threatContract)
	b.metrics.IncThreatsReported()
	b.logger.Info("threat recorded", "threat_id", resultID, "vendor_hash", threat.VendorHash)
	return resultID, nil
}

// computeThreatStatistics derives the aggregate view from the full threat
// list. O(n) per write, but never out of sync with the list.
func computeThreatStatistics(threats []models.Threat, now string) models.ThreatStatistics {
	vendors := make(map[string]struct{}, len(threats))
	reporters := make(map[string]struct{})
	blocked := 0.0
	for _, t := range threats {
		vendors[t.VendorHash] = struct{}{}
		if t.Verified {
			reporters[t.ReporterHash] = struct{}{}
		}
		blocked += fingerprint.BucketMidpoint(t.AmountBucket)
	}
	return models.ThreatStatistics{
		TotalThreats:       len(threats),
		TotalBlockedAmount: blocked,
		VerifiedReporters:  len(reporters),
		HighRiskVendors:    len(vendors),
		LastThreatReported: now,
	}
}

// ListThreats returns threats sorted by lastSeenAt descending, optionally
// filtered by vendor hash and truncated to limit.
func (b *Backend) ListThreats(_ context.Context, vendorHash string, limit int) ([]models.Threat, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	var out []models.Threat
	err := b.threats.View(func(doc *models.ThreatDocument) error {
		for _, t := range doc.Threats {
			if vendorHash == "" || t.VendorHash == vendorHash {
				out = append(out, t)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// RFC 3339 UTC timestamps order lexicographically.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastSeenAt > out[j].LastSeenAt
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetThreat returns the threat with the given id, or nil.
func (b *Backend) GetThreat(_ context.Context, threatID string) (*models.Threat, error) {
	var found *models.Threat
	err := b.threats.View(func(doc *models.ThreatDocument) error {
		for i := range doc.Threats {
			t := doc.Threats[i]
			if t.ThreatID == threatID {
				found = &t
				return nil
			}
		}
		return nil
	})
	return found, err
}

// ThreatStatistics returns the stored aggregate without recomputation.
func (b *Backend) ThreatStatistics(_ context.Context) (models.ThreatStatistics, error) {
	var stats models.ThreatStatistics
	err := b.threats.View(func(doc *models.ThreatDocument) error {
		stats = doc.Statistics
		return nil
	})
	return stats, err
}
