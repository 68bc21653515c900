package adapters

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ppiankov/knowledgeweb/internal/model"
	"github.com/ppiankov/knowledgeweb/internal/source"
)

// News aggregates evidence from configured RSS feeds. Feeds are fetched
// on every uncached search; the TTL cache in BaseServer keeps feed
// traffic bounded.
type News struct {
	*source.BaseServer
	client   *http.Client
	feedURLs []string
	maxBody  int64
}

type rssFeed struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

// pubDateLayouts covers the date formats seen in the wild in RSS feeds
var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
}

// NewNews creates the news-feed adapter
func NewNews(cfg model.ServerConfig, httpCfg model.HTTPConfig, feedURLs []string) *News {
	return &News{
		BaseServer: source.NewBaseServer(cfg),
		client:     newHTTPClient(cfg.Timeout, httpCfg),
		feedURLs:   feedURLs,
		maxBody:    httpCfg.MaxBody,
	}
}

// IsConfigured requires at least one feed URL; feeds need no credentials
func (n *News) IsConfigured() bool {
	return len(n.feedURLs) > 0
}

// HealthCheckImpl probes the first configured feed
func (n *News) HealthCheckImpl(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, n.feedURLs[0], nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("probe feed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("feed unavailable: status %d", resp.StatusCode)
	}
	return nil
}

// Search fetches all configured feeds and keeps items mentioning the
// query. Per-feed failures are collected; one dead feed never hides the
// others' items.
func (n *News) Search(ctx context.Context, query string, opts source.QueryOptions) (*model.QueryResult, error) {
	if cached, ok := n.Cached(query, opts); ok {
		return cached, nil
	}

	result := &model.QueryResult{Query: query}

	for _, feedURL := range n.feedURLs {
		feed, err := n.fetchFeed(ctx, feedURL)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", feedURL, err))
			continue
		}

		for _, item := range feed.Channel.Items {
			if opts.Limit > 0 && len(result.Facts) >= opts.Limit {
				result.HasMore = true
				break
			}
			if !matchesQuery(item.Title+" "+item.Description, query) {
				continue
			}

			published := parsePubDate(item.PubDate)
			if !withinAge(published, opts.MaxAgeDays) {
				continue
			}

			fact, err := n.NewFact(item.Title, classifyFactType(item.Title+" "+item.Description), 0.65)
			if err != nil {
				continue
			}
			fact.SourceURL = item.Link
			fact.RawExcerpt = truncate(item.Description, 280)
			fact.PublishedAt = published
			fact.ExtractedData = map[string]any{"feed": feed.Channel.Title}
			result.Facts = append(result.Facts, *fact)
		}
	}

	result.TotalResults = len(result.Facts)
	n.StoreCache(query, opts, result)
	return result, nil
}

func (n *News) fetchFeed(ctx context.Context, feedURL string) (*rssFeed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, n.maxBody))
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return &feed, nil
}

func parsePubDate(s string) *time.Time {
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
