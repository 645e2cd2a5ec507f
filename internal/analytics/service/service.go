// Package service assembles the dashboard view over the contract ledgers
// and the vendor directory.
package service

import (
	"context"
	"log/slog"
	"sort"

	"payshield/internal/audit"
	"payshield/internal/contract"
	contractModel "payshield/internal/contract/models"
	vendorModel "payshield/internal/vendors/models"
)

const topVendorCount = 10

// RiskyVendor is one entry in the dashboard risk ranking.
type RiskyVendor struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	RiskScore float64 `json:"riskScore"`
	IsTrusted bool    `json:"isTrusted"`
}

// Dashboard combines threat, treasury, and vendor views for one screen.
type Dashboard struct {
	Threats         contractModel.ThreatStatistics    `json:"threats"`
	Treasury        contractModel.GlobalTreasuryStats `json:"treasury"`
	TopRiskyVendors []RiskyVendor                     `json:"topRiskyVendors"`
	RecentThreats   []contractModel.Threat            `json:"recentThreats"`
}

// VendorLister is the slice of the vendor service the dashboard needs.
type VendorLister interface {
	List(ctx context.Context, trustedOnly bool, limit, offset int) ([]*vendorModel.Vendor, error)
}

// Service serves analytics views.
type Service struct {
	backend contract.Backend
	vendors VendorLister
	trail   audit.Store
	logger  *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithAuditStore enables the audit feed.
func WithAuditStore(store audit.Store) Option {
	return func(s *Service) { s.trail = store }
}

func New(backend contract.Backend, vendors VendorLister, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{backend: backend, vendors: vendors, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dashboard builds the combined analytics view.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	threatStats, err := s.backend.ThreatStatistics(ctx)
	if err != nil {
		return nil, err
	}
	treasuryStats, err := s.backend.GlobalTreasuryStats(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.backend.ListThreats(ctx, "", topVendorCount)
	if err != nil {
		return nil, err
	}

	vendors, err := s.vendors.List(ctx, false, 0, 0)
	if err != nil {
		return nil, err
	}
	ranked := make([]RiskyVendor, 0, len(vendors))
	for _, v := range vendors {
		if v.RiskScore <= 0 {
			continue
		}
		ranked = append(ranked, RiskyVendor{
			ID:        v.ID.String(),
			Name:      v.Name,
			RiskScore: v.RiskScore,
			IsTrusted: v.IsTrusted,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].RiskScore > ranked[j].RiskScore })
	if len(ranked) > topVendorCount {
		ranked = ranked[:topVendorCount]
	}

	return &Dashboard{
		Threats:         threatStats,
		Treasury:        treasuryStats,
		TopRiskyVendors: ranked,
		RecentThreats:   recent,
	}, nil
}

// AuditTrail returns the company's recent audit events, newest first. An
// empty slice comes back when no trail is configured.
func (s *Service) AuditTrail(ctx context.Context, companyID string, limit int) ([]audit.Event, error) {
	if s.trail == nil {
		return []audit.Event{}, nil
	}
	return s.trail.List(ctx, companyID, limit)
}
