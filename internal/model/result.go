package model

import "time"

// QueryResult is the unit of exchange between an adapter (or the registry)
// and its caller. Source-level failures are collected in Errors, never
// surfaced as Go errors above the adapter boundary.
type QueryResult struct {
	Facts    []EvidencedFact   `json:"facts"`
	Entities []EntityReference `json:"entities,omitempty"`

	Query        string `json:"query"`
	ProducerName string `json:"producer_name"` // Adapter name, or "registry:<names>"
	QueryTimeMs  int64  `json:"query_time_ms"`
	TotalResults int    `json:"total_results"`
	HasMore      bool   `json:"has_more"`

	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// HealthStatus is a point-in-time snapshot of a single adapter
type HealthStatus struct {
	ServerName string     `json:"server_name"`
	SourceType SourceType `json:"source_type"`
	IsHealthy  bool       `json:"is_healthy"`
	LastCheck  time.Time  `json:"last_check"`
	LastError  string     `json:"last_error,omitempty"`

	TotalQueriesToday  int     `json:"total_queries_today"`
	TotalFactsProduced int     `json:"total_facts_produced"`
	AvgConfidence      float64 `json:"avg_confidence"`

	RateLimitRemaining *int       `json:"rate_limit_remaining,omitempty"` // nil when uncapped
	RateLimitResetAt   *time.Time `json:"rate_limit_reset_at,omitempty"`
}
