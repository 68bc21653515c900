package source

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ppiankov/knowledgeweb/internal/model"
)

// Registry holds all registered adapters, fans queries out to a
// selected subset and aggregates the combined results. Construct one
// at startup and pass it to consumers explicitly; there is no global
// instance.
type Registry struct {
	mu      sync.RWMutex
	servers map[string]Server
	order   []string // Registration order, drives sequential dispatch
}

// SearchOptions selects which adapters a registry search runs against
type SearchOptions struct {
	SourceTypes []model.SourceType // Match adapters by category
	ServerNames []string           // Explicit adapter names, wins over SourceTypes

	// Sequential disables the default parallel fan-out. Used when source
	// ordering/priority matters or for resource-constrained environments.
	Sequential bool

	Limit      int // Cap on merged facts, 0 = unlimited
	MaxAgeDays int // Passed through to adapters
}

// NewRegistry creates an empty adapter registry
func NewRegistry() *Registry {
	return &Registry{
		servers: make(map[string]Server),
	}
}

// Register adds an adapter. Names must be unique.
func (r *Registry) Register(s Server) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := s.Name()
	if name == "" {
		return fmt.Errorf("adapter has no name")
	}
	if _, exists := r.servers[name]; exists {
		return fmt.Errorf("adapter %q already registered", name)
	}

	r.servers[name] = s
	r.order = append(r.order, name)
	return nil
}

// Unregister removes an adapter by name. Exists for tests; under
// normal operation the set of adapters is fixed for the process
// lifetime.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.servers[name]; !exists {
		return
	}
	delete(r.servers, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get returns a registered adapter by name
func (r *Registry) Get(name string) (Server, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.servers[name]
	return s, ok
}

// Names returns all registered adapter names in registration order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Search fans the query out to the selected adapters, merges their
// results and deduplicates overlapping claims. Source-level failures
// are collected in the result's Errors; Search itself never fails.
func (r *Registry) Search(ctx context.Context, query string, opts SearchOptions) *model.QueryResult {
	selected := r.selectServers(opts)

	if len(selected) == 0 {
		return &model.QueryResult{
			Query:        query,
			ProducerName: "registry:",
			Warnings:     []string{"no configured adapters matched the request"},
		}
	}

	qopts := QueryOptions{Limit: opts.Limit, MaxAgeDays: opts.MaxAgeDays}
	results := make([]*model.QueryResult, len(selected))
	errs := make([]error, len(selected))

	if opts.Sequential {
		for i, s := range selected {
			results[i], errs[i] = ExecuteQuery(ctx, s, query, qopts)
		}
	} else {
		var wg sync.WaitGroup
		for i, s := range selected {
			wg.Add(1)
			go func(idx int, srv Server) {
				defer wg.Done()
				results[idx], errs[idx] = ExecuteQuery(ctx, srv, query, qopts)
			}(i, s)
		}
		wg.Wait()
	}

	return r.merge(query, selected, results, errs, opts.Limit)
}

// selectServers resolves the adapter subset for a search. Explicit
// names win over source types; the default is every configured adapter.
// Unconfigured adapters are silently skipped.
func (r *Registry) selectServers(opts SearchOptions) []Server {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var selected []Server

	if len(opts.ServerNames) > 0 {
		for _, name := range opts.ServerNames {
			if s, ok := r.servers[name]; ok && s.IsConfigured() {
				selected = append(selected, s)
			}
		}
		return selected
	}

	for _, name := range r.order {
		s := r.servers[name]
		if !s.IsConfigured() {
			continue
		}
		if len(opts.SourceTypes) > 0 && !matchesType(s.SourceType(), opts.SourceTypes) {
			continue
		}
		selected = append(selected, s)
	}
	return selected
}

func matchesType(t model.SourceType, types []model.SourceType) bool {
	for _, want := range types {
		if t == want {
			return true
		}
	}
	return false
}

// merge concatenates per-adapter results, deduplicates facts and
// entities, and sorts facts by confidence descending.
func (r *Registry) merge(query string, selected []Server, results []*model.QueryResult, errs []error, limit int) *model.QueryResult {
	names := make([]string, len(selected))
	for i, s := range selected {
		names[i] = s.Name()
	}

	merged := &model.QueryResult{
		Query:        query,
		ProducerName: "registry:" + strings.Join(names, ","),
	}

	var facts []model.EvidencedFact
	var entities []model.EntityReference
	for i, res := range results {
		if errs[i] != nil {
			merged.Errors = append(merged.Errors, errs[i].Error())
			continue
		}
		facts = append(facts, res.Facts...)
		entities = append(entities, res.Entities...)
		merged.Errors = append(merged.Errors, res.Errors...)
		merged.Warnings = append(merged.Warnings, res.Warnings...)
		merged.QueryTimeMs += res.QueryTimeMs
		if res.HasMore {
			merged.HasMore = true
		}
	}

	merged.Facts = dedupFacts(facts)
	merged.Entities = mergeEntities(entities)
	merged.TotalResults = len(merged.Facts)
	if limit > 0 && len(merged.Facts) > limit {
		merged.Facts = merged.Facts[:limit]
		merged.HasMore = true
	}
	return merged
}

// dedupFacts groups facts by normalized claim text and corroborates
// groups surfaced by multiple adapters: the highest-confidence fact
// represents the group, its verification count becomes the group size,
// and its confidence is boosted by min(0.15, 0.05*size), capped at 1.0.
// The final list is sorted by confidence descending; the sort is stable
// so ties keep their pre-sort order.
func dedupFacts(facts []model.EvidencedFact) []model.EvidencedFact {
	if len(facts) == 0 {
		return nil
	}

	groups := make(map[string][]model.EvidencedFact)
	var keys []string
	for _, f := range facts {
		key := strings.ToLower(strings.TrimSpace(f.Claim))
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], f)
	}

	deduped := make([]model.EvidencedFact, 0, len(keys))
	for _, key := range keys {
		group := groups[key]
		if len(group) == 1 {
			deduped = append(deduped, group[0])
			continue
		}

		best := group[0]
		for _, f := range group[1:] {
			if f.Confidence > best.Confidence {
				best = f
			}
		}

		boost := 0.05 * float64(len(group))
		if boost > 0.15 {
			boost = 0.15
		}
		best.VerificationCount = len(group)
		best.Confidence = model.ClampConfidence(best.Confidence + boost)
		deduped = append(deduped, best)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].Confidence > deduped[j].Confidence
	})
	return deduped
}

// mergeEntities deduplicates entity references by (type, lowercased
// name), unioning external identifiers.
func mergeEntities(entities []model.EntityReference) []model.EntityReference {
	if len(entities) == 0 {
		return nil
	}

	index := make(map[string]int)
	var merged []model.EntityReference
	for _, e := range entities {
		key := e.EntityType + "|" + strings.ToLower(strings.TrimSpace(e.Name))
		i, seen := index[key]
		if !seen {
			index[key] = len(merged)
			merged = append(merged, e)
			continue
		}

		if merged[i].CanonicalName == "" {
			merged[i].CanonicalName = e.CanonicalName
		}
		for k, v := range e.ExternalIDs {
			if merged[i].ExternalIDs == nil {
				merged[i].ExternalIDs = make(map[string]string)
			}
			if _, ok := merged[i].ExternalIDs[k]; !ok {
				merged[i].ExternalIDs[k] = v
			}
		}
	}
	return merged
}

// HealthCheckAll probes every registered adapter concurrently
func (r *Registry) HealthCheckAll(ctx context.Context) []model.HealthStatus {
	r.mu.RLock()
	servers := make([]Server, 0, len(r.order))
	for _, name := range r.order {
		servers = append(servers, r.servers[name])
	}
	r.mu.RUnlock()

	statuses := make([]model.HealthStatus, len(servers))
	var wg sync.WaitGroup
	for i, s := range servers {
		wg.Add(1)
		go func(idx int, srv Server) {
			defer wg.Done()
			statuses[idx] = HealthCheck(ctx, srv)
		}(i, s)
	}
	wg.Wait()
	return statuses
}
