package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/knowledgeweb/internal/model"
	"github.com/ppiankov/knowledgeweb/internal/source"
)

func testHTTPConfig() model.HTTPConfig {
	return model.HTTPConfig{
		Timeout:   5 * time.Second,
		UserAgent: "knowledgeweb-test",
		MaxBody:   1 << 20,
	}
}

func registryConfig(baseURL string) model.ServerConfig {
	return model.ServerConfig{
		Name:           "company-registry",
		SourceType:     model.SourceCompanyRegistry,
		BaseURL:        baseURL,
		APIKey:         "test-key",
		RequiresAPIKey: true,
		Timeout:        5 * time.Second,
	}
}

const registryPayload = `{
	"results": [
		{
			"name": "Acme Pte Ltd",
			"registration_no": "201912345A",
			"status": "live",
			"incorporated_on": "2019-03-14",
			"industry": "software",
			"employees": 42
		}
	],
	"total": 1,
	"has_more": false
}`

func TestCompanyRegistry_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/companies" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("X-Api-Key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if got := r.URL.Query().Get("query"); got != "acme" {
			t.Errorf("unexpected query param: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, registryPayload)
	}))
	defer server.Close()

	adapter := NewCompanyRegistry(registryConfig(server.URL), testHTTPConfig())

	result, err := adapter.Search(context.Background(), "acme", source.QueryOptions{})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if len(result.Facts) != 3 {
		t.Fatalf("expected 3 facts (registration, incorporation, employees), got %d", len(result.Facts))
	}
	for _, f := range result.Facts {
		if f.SourceType != model.SourceCompanyRegistry || f.SourceName != "company-registry" {
			t.Errorf("fact missing provenance: %+v", f)
		}
		if f.Confidence <= 0.8 {
			t.Errorf("registry facts should be high confidence, got %f", f.Confidence)
		}
	}

	if result.Facts[2].Claim != "Acme Pte Ltd has 42 employees" {
		t.Errorf("unexpected employees claim: %q", result.Facts[2].Claim)
	}

	if len(result.Entities) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(result.Entities))
	}
	if result.Entities[0].ExternalIDs["registration_no"] != "201912345A" {
		t.Errorf("expected registration number on entity, got %v", result.Entities[0].ExternalIDs)
	}
}

func TestCompanyRegistry_CacheServesSecondQuery(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, registryPayload)
	}))
	defer server.Close()

	cfg := registryConfig(server.URL)
	cfg.CacheTTL = time.Minute
	adapter := NewCompanyRegistry(cfg, testHTTPConfig())

	for i := 0; i < 2; i++ {
		if _, err := adapter.Search(context.Background(), "acme", source.QueryOptions{}); err != nil {
			t.Fatalf("search %d failed: %v", i+1, err)
		}
	}

	if calls.Load() != 1 {
		t.Errorf("expected 1 upstream call thanks to cache, got %d", calls.Load())
	}
}

func TestCompanyRegistry_IsConfigured(t *testing.T) {
	cfg := registryConfig("")
	if NewCompanyRegistry(cfg, testHTTPConfig()).IsConfigured() {
		t.Error("missing base URL must mean unconfigured")
	}

	cfg = registryConfig("http://example.com")
	cfg.APIKey = ""
	if NewCompanyRegistry(cfg, testHTTPConfig()).IsConfigured() {
		t.Error("missing API key must mean unconfigured")
	}

	cfg = registryConfig("http://example.com")
	if !NewCompanyRegistry(cfg, testHTTPConfig()).IsConfigured() {
		t.Error("expected configured adapter")
	}
}

func TestCompanyRegistry_UpstreamErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	adapter := NewCompanyRegistry(registryConfig(server.URL), testHTTPConfig())
	if _, err := adapter.Search(context.Background(), "acme", source.QueryOptions{}); err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestCompanyRegistry_HealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	adapter := NewCompanyRegistry(registryConfig(server.URL), testHTTPConfig())
	status := source.HealthCheck(context.Background(), adapter)
	if !status.IsHealthy {
		t.Errorf("expected healthy status, got %+v", status)
	}
}
