package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ppiankov/knowledgeweb/internal/model"
	"github.com/ppiankov/knowledgeweb/internal/source"
)

// Financial queries a market-data REST API for quotes and fundamentals
type Financial struct {
	*source.BaseServer
	client *http.Client
}

type financialQuote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency"`
	ChangePercent float64 `json:"change_percent"`
	MarketCap     float64 `json:"market_cap"`
	AsOf          string  `json:"as_of"`
}

type financialResponse struct {
	Quotes []financialQuote `json:"quotes"`
}

// NewFinancial creates the financial-data adapter
func NewFinancial(cfg model.ServerConfig, httpCfg model.HTTPConfig) *Financial {
	return &Financial{
		BaseServer: source.NewBaseServer(cfg),
		client:     newHTTPClient(cfg.Timeout, httpCfg),
	}
}

// IsConfigured requires a base URL and an API key; market-data
// providers never serve anonymous traffic.
func (f *Financial) IsConfigured() bool {
	cfg := f.Config()
	return cfg.BaseURL != "" && cfg.APIKey != ""
}

// HealthCheckImpl probes the API root
func (f *Financial) HealthCheckImpl(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, f.Config().BaseURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("probe: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("market data unavailable: status %d", resp.StatusCode)
	}
	return nil
}

// Search fetches quotes matching the query (ticker or company name)
func (f *Financial) Search(ctx context.Context, query string, opts source.QueryOptions) (*model.QueryResult, error) {
	if cached, ok := f.Cached(query, opts); ok {
		return cached, nil
	}

	cfg := f.Config()
	u := fmt.Sprintf("%s/quotes?%s", cfg.BaseURL, url.Values{
		"search": {query},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote lookup: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote lookup: unexpected status %d", resp.StatusCode)
	}

	var parsed financialResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	result := &model.QueryResult{Query: query}

	for _, quote := range parsed.Quotes {
		if opts.Limit > 0 && len(result.Facts) >= opts.Limit {
			break
		}
		if err := f.quoteFacts(quote, result); err != nil {
			result.Errors = append(result.Errors, err.Error())
		}
	}
	result.TotalResults = len(result.Facts)
	if opts.Limit > 0 && len(result.Facts) > opts.Limit {
		result.Facts = result.Facts[:opts.Limit]
		result.HasMore = true
	}

	f.StoreCache(query, opts, result)
	return result, nil
}

func (f *Financial) quoteFacts(quote financialQuote, result *model.QueryResult) error {
	claim := fmt.Sprintf("%s (%s) trades at %.2f %s (%+.2f%%)",
		quote.Name, quote.Symbol, quote.Price, quote.Currency, quote.ChangePercent)

	fact, err := f.NewFact(claim, model.FactFinancial, 0.85)
	if err != nil {
		return err
	}
	fact.ExtractedData = map[string]any{
		"symbol":         quote.Symbol,
		"price":          quote.Price,
		"currency":       quote.Currency,
		"change_percent": quote.ChangePercent,
		"market_cap":     quote.MarketCap,
	}
	fact.RelatedEntities = []string{quote.Name}
	if t, perr := time.Parse(time.RFC3339, quote.AsOf); perr == nil {
		fact.PublishedAt = &t
	}
	result.Facts = append(result.Facts, *fact)

	if quote.MarketCap > 0 {
		claim := fmt.Sprintf("%s has a market capitalization of %.0f %s",
			quote.Name, quote.MarketCap, quote.Currency)
		if capFact, err := f.NewFact(claim, model.FactFinancial, 0.8); err == nil {
			capFact.RelatedEntities = []string{quote.Name}
			result.Facts = append(result.Facts, *capFact)
		}
	}

	result.Entities = append(result.Entities, model.EntityReference{
		EntityType:  "company",
		Name:        quote.Name,
		ExternalIDs: map[string]string{"ticker": quote.Symbol},
	})
	return nil
}
