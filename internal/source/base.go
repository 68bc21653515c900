package source

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ppiankov/knowledgeweb/internal/cache"
	"github.com/ppiankov/knowledgeweb/internal/model"
)

// QueryOptions tunes a single query against one or more adapters
type QueryOptions struct {
	Limit      int // Max facts to return, 0 = adapter default
	MaxAgeDays int // Ignore items older than this, 0 = no age filter
}

// Server is the uniform contract every data-source adapter implements.
// Concrete adapters embed *BaseServer and provide IsConfigured,
// HealthCheckImpl and Search. External callers must never call Search
// directly; all queries go through ExecuteQuery, which enforces
// configuration checks, rate limits and error isolation.
type Server interface {
	Name() string
	SourceType() model.SourceType

	// IsConfigured reports whether required credentials/settings are present
	IsConfigured() bool

	// HealthCheckImpl performs a cheap probe against the source
	HealthCheckImpl(ctx context.Context) error

	// Search runs the adapter-specific query logic. It may fail; the
	// ExecuteQuery boundary converts failures into collected errors.
	Search(ctx context.Context, query string, opts QueryOptions) (*model.QueryResult, error)

	base() *BaseServer
}

// BaseServer carries the runtime state shared by all adapters: the
// quota limiter, the TTL result cache and usage statistics. Each
// adapter instance owns its state exclusively; no cross-adapter
// synchronization is needed.
type BaseServer struct {
	cfg     model.ServerConfig
	limiter *quotaLimiter
	results cache.Cache

	mu            sync.Mutex
	totalQueries  int
	totalFacts    int
	confidenceSum float64
	healthy       bool
	lastCheck     time.Time
	lastError     string

	now func() time.Time
}

// NewBaseServer creates the shared adapter core from immutable config
func NewBaseServer(cfg model.ServerConfig) *BaseServer {
	var results cache.Cache
	if cfg.CacheTTL > 0 {
		results = cache.NewMemoryCache(cfg.CacheTTL, 2*cfg.CacheTTL)
	}

	return &BaseServer{
		cfg:     cfg,
		limiter: newQuotaLimiter(cfg.Name, cfg.RateLimitPerHour, cfg.RateLimitPerDay),
		results: results,
		healthy: true,
		now:     time.Now,
	}
}

func (b *BaseServer) base() *BaseServer { return b }

// Name returns the adapter name
func (b *BaseServer) Name() string { return b.cfg.Name }

// SourceType returns the adapter's source category
func (b *BaseServer) SourceType() model.SourceType { return b.cfg.SourceType }

// Config returns the adapter's immutable configuration
func (b *BaseServer) Config() model.ServerConfig { return b.cfg }

// NewFact builds a fact stamped with this adapter's source type, source
// name and adapter name, so the provenance invariant cannot be bypassed
// by adapter authors forgetting a field.
func (b *BaseServer) NewFact(claim string, factType model.FactType, confidence float64) (*model.EvidencedFact, error) {
	f, err := model.NewFact(claim, factType, b.cfg.SourceType, b.cfg.Name, confidence)
	if err != nil {
		return nil, err
	}
	f.SourceAdapter = b.cfg.Name
	return f, nil
}

// Cached returns a previously stored result for the query, or false if
// absent or expired. Adapters call this at the top of Search.
func (b *BaseServer) Cached(query string, opts QueryOptions) (*model.QueryResult, bool) {
	if b.results == nil {
		return nil, false
	}
	return b.results.Get(cache.Key(b.cfg.Name, query, opts.Limit, opts.MaxAgeDays))
}

// StoreCache stores a query result for the configured TTL
func (b *BaseServer) StoreCache(query string, opts QueryOptions, result *model.QueryResult) {
	if b.results == nil {
		return
	}
	b.results.Set(cache.Key(b.cfg.Name, query, opts.Limit, opts.MaxAgeDays), result, b.cfg.CacheTTL)
}

// ExecuteQuery is the only externally-callable query entry point for an
// adapter. The returned error is always a *ConfigurationError or a
// *RateLimitError; any failure inside Search is isolated and reported
// through the result's Errors list instead.
func ExecuteQuery(ctx context.Context, s Server, query string, opts QueryOptions) (*model.QueryResult, error) {
	b := s.base()
	start := b.now()

	if !s.IsConfigured() {
		return nil, &ConfigurationError{Server: b.cfg.Name, Reason: "missing credentials"}
	}
	if err := b.limiter.Acquire(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.totalQueries++
	b.mu.Unlock()

	result, err := s.Search(ctx, query, opts)
	if err == nil && result == nil {
		err = errors.New("search returned no result")
	}
	if err != nil {
		srcErr := &SourceError{Server: b.cfg.Name, Err: err}
		result = &model.QueryResult{
			Query:        query,
			ProducerName: b.cfg.Name,
			Errors:       []string{srcErr.Error()},
		}
	}

	result.Query = query
	result.ProducerName = b.cfg.Name
	if result.TotalResults == 0 {
		result.TotalResults = len(result.Facts)
	}

	b.mu.Lock()
	for _, f := range result.Facts {
		b.totalFacts++
		b.confidenceSum += f.Confidence
	}
	b.mu.Unlock()

	result.QueryTimeMs = b.now().Sub(start).Milliseconds()
	return result, nil
}

// HealthCheck probes the adapter and returns a status snapshot. It
// never returns an error; failures are recorded in the snapshot.
func HealthCheck(ctx context.Context, s Server) model.HealthStatus {
	b := s.base()

	healthy := false
	lastError := ""
	if !s.IsConfigured() {
		lastError = (&ConfigurationError{Server: b.cfg.Name, Reason: "missing credentials"}).Error()
	} else if err := s.HealthCheckImpl(ctx); err != nil {
		lastError = err.Error()
	} else {
		healthy = true
	}

	b.mu.Lock()
	b.healthy = healthy
	b.lastError = lastError
	b.lastCheck = b.now()

	status := model.HealthStatus{
		ServerName:         b.cfg.Name,
		SourceType:         b.cfg.SourceType,
		IsHealthy:          b.healthy,
		LastCheck:          b.lastCheck,
		LastError:          b.lastError,
		TotalQueriesToday:  b.totalQueries,
		TotalFactsProduced: b.totalFacts,
	}
	if b.totalFacts > 0 {
		status.AvgConfidence = b.confidenceSum / float64(b.totalFacts)
	}
	b.mu.Unlock()

	status.RateLimitRemaining, status.RateLimitResetAt = b.limiter.Remaining()
	return status
}
