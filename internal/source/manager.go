package source

import (
	"context"

	"github.com/ppiankov/knowledgeweb/internal/model"
)

// Manager is a thin façade offering pre-packaged multi-source queries
// built from Registry primitives.
type Manager struct {
	registry *Registry
}

// NewManager creates a manager over an existing registry
func NewManager(r *Registry) *Manager {
	return &Manager{registry: r}
}

// Registry exposes the underlying registry
func (m *Manager) Registry() *Registry {
	return m.registry
}

// ResearchCompany queries every source category relevant to company
// research in parallel.
func (m *Manager) ResearchCompany(ctx context.Context, company string) *model.QueryResult {
	return m.registry.Search(ctx, company, SearchOptions{
		SourceTypes: []model.SourceType{
			model.SourceCompanyRegistry,
			model.SourceNews,
			model.SourceWebScrape,
			model.SourceFinancial,
		},
	})
}

// MonitorMarket queries news and financial sources for a topic
func (m *Manager) MonitorMarket(ctx context.Context, topic string) *model.QueryResult {
	return m.registry.Search(ctx, topic, SearchOptions{
		SourceTypes: []model.SourceType{
			model.SourceNews,
			model.SourceFinancial,
		},
	})
}

// VerifyClaim re-queries all sources for a claim. Dispatch is
// sequential so higher-priority sources are consulted first.
func (m *Manager) VerifyClaim(ctx context.Context, claim string) *model.QueryResult {
	return m.registry.Search(ctx, claim, SearchOptions{
		Sequential: true,
	})
}
