package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ppiankov/knowledgeweb/internal/model"
	"github.com/ppiankov/knowledgeweb/internal/source"
)

// CompanyRegistry queries an official company-registry REST API
// (business profiles, registration numbers, incorporation data).
type CompanyRegistry struct {
	*source.BaseServer
	client *http.Client
}

type registryCompany struct {
	Name           string `json:"name"`
	RegistrationNo string `json:"registration_no"`
	Status         string `json:"status"`
	IncorporatedOn string `json:"incorporated_on"`
	Industry       string `json:"industry"`
	Employees      int    `json:"employees"`
}

type registrySearchResponse struct {
	Results []registryCompany `json:"results"`
	Total   int               `json:"total"`
	HasMore bool              `json:"has_more"`
}

// NewCompanyRegistry creates the company-registry adapter
func NewCompanyRegistry(cfg model.ServerConfig, httpCfg model.HTTPConfig) *CompanyRegistry {
	return &CompanyRegistry{
		BaseServer: source.NewBaseServer(cfg),
		client:     newHTTPClient(cfg.Timeout, httpCfg),
	}
}

// IsConfigured requires a base URL and, when the registry demands one,
// an API key.
func (c *CompanyRegistry) IsConfigured() bool {
	cfg := c.Config()
	if cfg.BaseURL == "" {
		return false
	}
	return !cfg.RequiresAPIKey || cfg.APIKey != ""
}

// HealthCheckImpl probes the API root without consuming query quota
func (c *CompanyRegistry) HealthCheckImpl(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.Config().BaseURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("probe: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("registry unavailable: status %d", resp.StatusCode)
	}
	return nil
}

// Search looks companies up by name and converts registry records into
// evidenced facts.
func (c *CompanyRegistry) Search(ctx context.Context, query string, opts source.QueryOptions) (*model.QueryResult, error) {
	if cached, ok := c.Cached(query, opts); ok {
		return cached, nil
	}

	cfg := c.Config()
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	u := fmt.Sprintf("%s/companies?%s", cfg.BaseURL, url.Values{
		"query": {query},
		"limit": {strconv.Itoa(limit)},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if cfg.APIKey != "" {
		req.Header.Set("X-Api-Key", cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry search: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry search: unexpected status %d", resp.StatusCode)
	}

	var parsed registrySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	result := &model.QueryResult{
		Query:        query,
		TotalResults: parsed.Total,
		HasMore:      parsed.HasMore,
	}

	for _, company := range parsed.Results {
		if facts, entity, err := c.companyFacts(company); err == nil {
			result.Facts = append(result.Facts, facts...)
			result.Entities = append(result.Entities, entity)
		} else {
			result.Errors = append(result.Errors, err.Error())
		}
	}

	c.StoreCache(query, opts, result)
	return result, nil
}

// companyFacts converts one registry record into facts and an entity
// reference. Registry data is authoritative, so confidence is high.
func (c *CompanyRegistry) companyFacts(company registryCompany) ([]model.EvidencedFact, model.EntityReference, error) {
	var facts []model.EvidencedFact

	claim := fmt.Sprintf("%s is registered under number %s with status %s",
		company.Name, company.RegistrationNo, company.Status)
	f, err := c.NewFact(claim, model.FactCompanyInfo, 0.9)
	if err != nil {
		return nil, model.EntityReference{}, err
	}
	f.ExtractedData = map[string]any{
		"registration_no": company.RegistrationNo,
		"status":          company.Status,
		"industry":        company.Industry,
	}
	f.RelatedEntities = []string{company.Name}
	facts = append(facts, *f)

	if company.IncorporatedOn != "" {
		claim := fmt.Sprintf("%s was incorporated on %s", company.Name, company.IncorporatedOn)
		if f, err := c.NewFact(claim, model.FactCompanyInfo, 0.9); err == nil {
			if t, perr := time.Parse("2006-01-02", company.IncorporatedOn); perr == nil {
				f.ValidFrom = &t
			}
			f.RelatedEntities = []string{company.Name}
			facts = append(facts, *f)
		}
	}

	if company.Employees > 0 {
		claim := fmt.Sprintf("%s has %d employees", company.Name, company.Employees)
		if f, err := c.NewFact(claim, model.FactCompanyInfo, 0.85); err == nil {
			f.ExtractedData = map[string]any{"employees": company.Employees}
			f.RelatedEntities = []string{company.Name}
			facts = append(facts, *f)
		}
	}

	entity := model.EntityReference{
		EntityType: "company",
		Name:       company.Name,
		ExternalIDs: map[string]string{
			"registration_no": company.RegistrationNo,
		},
	}
	return facts, entity, nil
}
