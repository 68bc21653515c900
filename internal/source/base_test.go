package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/knowledgeweb/internal/model"
)

// stubServer is a minimal adapter for exercising the ExecuteQuery and
// HealthCheck boundaries.
type stubServer struct {
	*BaseServer
	configured bool
	healthErr  error
	searchFn   func(ctx context.Context, query string, opts QueryOptions) (*model.QueryResult, error)
	searches   int
}

func newStub(name string, sourceType model.SourceType, cfgMod func(*model.ServerConfig)) *stubServer {
	cfg := model.ServerConfig{
		Name:       name,
		SourceType: sourceType,
	}
	if cfgMod != nil {
		cfgMod(&cfg)
	}
	return &stubServer{
		BaseServer: NewBaseServer(cfg),
		configured: true,
	}
}

func (s *stubServer) IsConfigured() bool { return s.configured }

func (s *stubServer) HealthCheckImpl(ctx context.Context) error { return s.healthErr }

func (s *stubServer) Search(ctx context.Context, query string, opts QueryOptions) (*model.QueryResult, error) {
	s.searches++
	if s.searchFn != nil {
		return s.searchFn(ctx, query, opts)
	}
	return &model.QueryResult{Query: query}, nil
}

// stubFacts builds facts through the shared helper, the way real
// adapters do.
func stubFacts(s *stubServer, claims map[string]float64) func(context.Context, string, QueryOptions) (*model.QueryResult, error) {
	return func(ctx context.Context, query string, opts QueryOptions) (*model.QueryResult, error) {
		result := &model.QueryResult{Query: query}
		for claim, confidence := range claims {
			f, err := s.NewFact(claim, model.FactCompanyInfo, confidence)
			if err != nil {
				return nil, err
			}
			result.Facts = append(result.Facts, *f)
		}
		return result, nil
	}
}

func TestExecuteQuery_NotConfigured(t *testing.T) {
	s := newStub("acra", model.SourceCompanyRegistry, nil)
	s.configured = false

	_, err := ExecuteQuery(context.Background(), s, "acme", QueryOptions{})
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if s.searches != 0 {
		t.Error("search must not run for an unconfigured adapter")
	}

	// No counter increment either
	status := HealthCheck(context.Background(), s)
	if status.TotalQueriesToday != 0 {
		t.Errorf("expected 0 queries recorded, got %d", status.TotalQueriesToday)
	}
}

func TestExecuteQuery_RateLimited(t *testing.T) {
	s := newStub("acra", model.SourceCompanyRegistry, func(cfg *model.ServerConfig) {
		cfg.RateLimitPerHour = 1
	})
	s.searchFn = stubFacts(s, map[string]float64{"Acme exists": 0.8})

	if _, err := ExecuteQuery(context.Background(), s, "acme", QueryOptions{}); err != nil {
		t.Fatalf("first query should pass: %v", err)
	}

	_, err := ExecuteQuery(context.Background(), s, "acme", QueryOptions{})
	var rle *RateLimitError
	if !errors.As(err, &rle) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	if rle.ResetAt.IsZero() {
		t.Error("rate-limit error must carry the reset timestamp")
	}
	if s.searches != 1 {
		t.Errorf("expected exactly 1 search, got %d", s.searches)
	}
}

func TestExecuteQuery_SearchFailureIsolated(t *testing.T) {
	s := newStub("news", model.SourceNews, nil)
	s.searchFn = func(ctx context.Context, query string, opts QueryOptions) (*model.QueryResult, error) {
		return nil, fmt.Errorf("connection refused")
	}

	result, err := ExecuteQuery(context.Background(), s, "acme", QueryOptions{})
	if err != nil {
		t.Fatalf("search failures must not propagate: %v", err)
	}
	if len(result.Facts) != 0 {
		t.Errorf("expected empty facts, got %d", len(result.Facts))
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "news") {
		t.Errorf("expected one error attributable to the adapter, got %v", result.Errors)
	}
	if result.ProducerName != "news" || result.Query != "acme" {
		t.Errorf("error result must still echo producer and query: %+v", result)
	}
}

func TestExecuteQuery_Stats(t *testing.T) {
	s := newStub("news", model.SourceNews, nil)
	s.searchFn = stubFacts(s, map[string]float64{
		"Acme raised $5M":  0.8,
		"Acme hired a CTO": 0.6,
	})

	result, err := ExecuteQuery(context.Background(), s, "acme", QueryOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalResults != 2 {
		t.Errorf("expected 2 total results, got %d", result.TotalResults)
	}
	if result.QueryTimeMs < 0 {
		t.Errorf("negative query time: %d", result.QueryTimeMs)
	}

	status := HealthCheck(context.Background(), s)
	if status.TotalQueriesToday != 1 {
		t.Errorf("expected 1 query recorded, got %d", status.TotalQueriesToday)
	}
	if status.TotalFactsProduced != 2 {
		t.Errorf("expected 2 facts recorded, got %d", status.TotalFactsProduced)
	}
	if status.AvgConfidence < 0.69 || status.AvgConfidence > 0.71 {
		t.Errorf("expected avg confidence ~0.7, got %f", status.AvgConfidence)
	}
}

func TestExecuteQuery_ProvenanceInvariant(t *testing.T) {
	s := newStub("news", model.SourceNews, nil)
	s.searchFn = stubFacts(s, map[string]float64{"Acme raised $5M": 0.8})

	result, err := ExecuteQuery(context.Background(), s, "acme", QueryOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, f := range result.Facts {
		if f.SourceName == "" || f.SourceType == "" {
			t.Errorf("fact without provenance: %+v", f)
		}
		if f.Confidence < 0 || f.Confidence > 1 {
			t.Errorf("confidence out of range: %f", f.Confidence)
		}
		if f.SourceAdapter != "news" {
			t.Errorf("expected adapter stamp, got %q", f.SourceAdapter)
		}
	}
}

func TestBaseServer_CacheRoundTrip(t *testing.T) {
	s := newStub("news", model.SourceNews, func(cfg *model.ServerConfig) {
		cfg.CacheTTL = time.Minute
	})

	opts := QueryOptions{Limit: 5}
	if _, ok := s.Cached("acme", opts); ok {
		t.Error("expected cache miss before store")
	}

	s.StoreCache("acme", opts, &model.QueryResult{Query: "acme"})
	if cached, ok := s.Cached("acme", opts); !ok || cached.Query != "acme" {
		t.Errorf("expected cache hit, got ok=%v", ok)
	}

	// Different options key separately
	if _, ok := s.Cached("acme", QueryOptions{Limit: 10}); ok {
		t.Error("expected miss for different limit")
	}
}

func TestBaseServer_NoCacheWhenTTLZero(t *testing.T) {
	s := newStub("news", model.SourceNews, nil)
	s.StoreCache("acme", QueryOptions{}, &model.QueryResult{Query: "acme"})
	if _, ok := s.Cached("acme", QueryOptions{}); ok {
		t.Error("expected caching disabled with zero TTL")
	}
}

func TestHealthCheck_NeverFails(t *testing.T) {
	s := newStub("news", model.SourceNews, nil)
	s.healthErr = fmt.Errorf("feed timeout")

	status := HealthCheck(context.Background(), s)
	if status.IsHealthy {
		t.Error("expected unhealthy status")
	}
	if !strings.Contains(status.LastError, "feed timeout") {
		t.Errorf("expected probe error in status, got %q", status.LastError)
	}
	if status.LastCheck.IsZero() {
		t.Error("expected LastCheck to be stamped")
	}

	s.healthErr = nil
	status = HealthCheck(context.Background(), s)
	if !status.IsHealthy || status.LastError != "" {
		t.Errorf("expected recovery, got %+v", status)
	}
}

func TestHealthCheck_Unconfigured(t *testing.T) {
	s := newStub("acra", model.SourceCompanyRegistry, nil)
	s.configured = false

	status := HealthCheck(context.Background(), s)
	if status.IsHealthy {
		t.Error("unconfigured adapter cannot be healthy")
	}
	if !strings.Contains(status.LastError, "not configured") {
		t.Errorf("expected configuration error in status, got %q", status.LastError)
	}
}
