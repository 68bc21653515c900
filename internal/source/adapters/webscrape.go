package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/knowledgeweb/internal/model"
	"github.com/ppiankov/knowledgeweb/internal/source"
	"github.com/ppiankov/knowledgeweb/internal/util"
	"github.com/ppiankov/knowledgeweb/internal/worker"
)

// skipElements never contribute visible prose
var skipElements = map[string]bool{
	"script": true, "style": true, "noscript": true,
	"nav": true, "footer": true, "header": true,
}

// WebScrape extracts claims from configured company/press pages. It
// honors robots.txt and smooths per-host request rates on top of the
// adapter's hour/day quotas.
type WebScrape struct {
	*source.BaseServer
	client    *http.Client
	robots    *util.RobotsChecker
	limiter   *worker.HostLimiter
	pageURLs  []string
	userAgent string
	maxBody   int64
}

// NewWebScrape creates the scraping adapter
func NewWebScrape(cfg model.ServerConfig, httpCfg model.HTTPConfig, pageURLs []string) *WebScrape {
	return &WebScrape{
		BaseServer: source.NewBaseServer(cfg),
		client:     newHTTPClient(cfg.Timeout, httpCfg),
		robots:     util.NewRobotsChecker(httpCfg.UserAgent, cfg.Timeout),
		limiter:    worker.NewHostLimiter(1, 2),
		pageURLs:   pageURLs,
		userAgent:  httpCfg.UserAgent,
		maxBody:    httpCfg.MaxBody,
	}
}

// IsConfigured requires at least one page to scrape
func (w *WebScrape) IsConfigured() bool {
	return len(w.pageURLs) > 0
}

// HealthCheckImpl probes the first configured page
func (w *WebScrape) HealthCheckImpl(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, w.pageURLs[0], nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", w.userAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("probe page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("page unavailable: status %d", resp.StatusCode)
	}
	return nil
}

// Search scrapes each configured page and turns sentences mentioning
// the query into low-confidence facts with the sentence as raw excerpt.
// Per-page failures are collected; scraping is best effort.
func (w *WebScrape) Search(ctx context.Context, query string, opts source.QueryOptions) (*model.QueryResult, error) {
	if cached, ok := w.Cached(query, opts); ok {
		return cached, nil
	}

	result := &model.QueryResult{Query: query}

	for _, pageURL := range w.pageURLs {
		if opts.Limit > 0 && len(result.Facts) >= opts.Limit {
			result.HasMore = true
			break
		}
		if err := w.scrapePage(ctx, pageURL, query, opts, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", pageURL, err))
		}
	}

	result.TotalResults = len(result.Facts)
	w.StoreCache(query, opts, result)
	return result, nil
}

func (w *WebScrape) scrapePage(ctx context.Context, pageURL, query string, opts source.QueryOptions, result *model.QueryResult) error {
	allowed, crawlDelay, err := w.robots.CanFetch(ctx, pageURL)
	if err != nil {
		return fmt.Errorf("robots check: %w", err)
	}
	if !allowed {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s: disallowed by robots.txt", pageURL))
		return nil
	}

	if err := w.limiter.WaitWithDelay(ctx, pageURL, crawlDelay); err != nil {
		return fmt.Errorf("rate wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", w.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, w.maxBody))
	if err != nil {
		return fmt.Errorf("parse HTML: %w", err)
	}

	for _, sentence := range splitSentences(extractText(doc)) {
		if opts.Limit > 0 && len(result.Facts) >= opts.Limit {
			result.HasMore = true
			break
		}
		if !matchesQuery(sentence, query) {
			continue
		}

		fact, err := w.NewFact(truncate(sentence, 200), classifyFactType(sentence), 0.45)
		if err != nil {
			continue
		}
		fact.SourceURL = pageURL
		fact.RawExcerpt = truncate(sentence, 400)
		result.Facts = append(result.Facts, *fact)
	}
	return nil
}

// extractText walks the node tree collecting visible prose
func extractText(n *html.Node) string {
	if n.Type == html.ElementNode && skipElements[n.Data] {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}

	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if text := extractText(c); text != "" {
			buf.WriteString(text)
			buf.WriteString(" ")
		}
	}
	return buf.String()
}

// splitSentences breaks prose on terminal punctuation. Crude, but the
// scraper only needs query-bearing fragments, not grammar.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := normalizeSpace(current.String()); len(s) > 20 {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := normalizeSpace(current.String()); len(s) > 20 {
		sentences = append(sentences, s)
	}
	return sentences
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
