package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FactType categorizes the nature of a claim
type FactType string

const (
	FactCompanyInfo    FactType = "company_info"    // Registration, status, basic profile
	FactFunding        FactType = "funding"         // Fundraising rounds, investments
	FactExecutive      FactType = "executive"       // Leadership appointments/departures
	FactProduct        FactType = "product"         // Product launches and changes
	FactPartnership    FactType = "partnership"     // Alliances, joint ventures
	FactExpansion      FactType = "expansion"       // New markets, offices
	FactHiring         FactType = "hiring"          // Headcount, open roles
	FactTechnology     FactType = "technology"      // Stack, patents, R&D
	FactFinancial      FactType = "financial"       // Revenue, valuation, market data
	FactMarketTrend    FactType = "market_trend"    // Sector-level movements
	FactCompetitorMove FactType = "competitor_move" // Competitor activity
	FactRegulation     FactType = "regulation"      // Regulatory filings, compliance
	FactAcquisition    FactType = "acquisition"     // M&A activity
	FactSentiment      FactType = "sentiment"       // Press/social tone
)

// SourceType identifies the category of data source an adapter wraps
type SourceType string

const (
	SourceCompanyRegistry SourceType = "company_registry" // Official registries (e.g., ACRA)
	SourceNews            SourceType = "news"             // News feeds
	SourceWebScrape       SourceType = "web_scrape"       // Direct page scraping
	SourceFinancial       SourceType = "financial"        // Market/financial data APIs
)

// EvidencedFact is an atomic claim that always carries its provenance.
// Facts are immutable after construction; corroboration during merge
// produces a new value rather than mutating in place.
type EvidencedFact struct {
	ID         string     `json:"id"`
	Claim      string     `json:"claim"`
	FactType   FactType   `json:"fact_type"`
	SourceType SourceType `json:"source_type"`
	SourceName string     `json:"source_name"`
	SourceURL  string     `json:"source_url,omitempty"`
	RawExcerpt string     `json:"raw_excerpt,omitempty"` // Original text the claim was derived from

	PublishedAt *time.Time `json:"published_at,omitempty"`
	CapturedAt  time.Time  `json:"captured_at"`
	ValidFrom   *time.Time `json:"valid_from,omitempty"`
	ValidUntil  *time.Time `json:"valid_until,omitempty"`

	Confidence        float64 `json:"confidence"`         // Always within [0,1]
	VerificationCount int     `json:"verification_count"` // Independent sources, >= 1

	ExtractedData   map[string]any `json:"extracted_data,omitempty"` // Adapter-specific structured payload
	RelatedEntities []string       `json:"related_entities,omitempty"`
	SourceAdapter   string         `json:"source_adapter,omitempty"` // Which adapter produced it
}

// NewFact builds a fact and enforces the provenance invariant:
// no claim without a source name and source type.
func NewFact(claim string, factType FactType, sourceType SourceType, sourceName string, confidence float64) (*EvidencedFact, error) {
	if claim == "" {
		return nil, fmt.Errorf("fact claim is empty")
	}
	if sourceType == "" || sourceName == "" {
		return nil, fmt.Errorf("fact %q has no source (type=%q name=%q)", claim, sourceType, sourceName)
	}

	return &EvidencedFact{
		ID:                uuid.NewString(),
		Claim:             claim,
		FactType:          factType,
		SourceType:        sourceType,
		SourceName:        sourceName,
		CapturedAt:        time.Now().UTC(),
		Confidence:        ClampConfidence(confidence),
		VerificationCount: 1,
	}, nil
}

// ClampConfidence bounds a confidence score to the closed interval [0,1]
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// EntityReference is a named real-world entity discovered while querying
type EntityReference struct {
	EntityType    string            `json:"entity_type"` // company, person
	Name          string            `json:"name"`
	CanonicalName string            `json:"canonical_name,omitempty"`
	ExternalIDs   map[string]string `json:"external_ids,omitempty"` // e.g., registry number, ticker
}
