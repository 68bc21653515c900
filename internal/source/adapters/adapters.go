// Package adapters contains the concrete data-source integrations.
// Every adapter embeds source.BaseServer and is only ever queried
// through source.ExecuteQuery.
package adapters

import (
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/knowledgeweb/internal/model"
	"github.com/ppiankov/knowledgeweb/internal/util"
)

// newHTTPClient builds the outbound client for one adapter. Timeouts
// are per-adapter; proxy settings are shared process config.
func newHTTPClient(timeout time.Duration, httpCfg model.HTTPConfig) *http.Client {
	if timeout <= 0 {
		timeout = httpCfg.Timeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
		},
	}
}

// classifyFactType maps free text onto a fact category by keyword.
// Deliberately coarse: adapters producing structured data set the type
// directly and never go through here.
func classifyFactType(text string) model.FactType {
	s := strings.ToLower(text)

	switch {
	case containsAny(s, "raised", "raises", "funding", "series a", "series b", "seed round", "investment round"):
		return model.FactFunding
	case containsAny(s, "acquires", "acquired", "acquisition", "merger", "merges with"):
		return model.FactAcquisition
	case containsAny(s, "appoints", "appointed", "joins as", "new ceo", "new cto", "new cfo", "steps down"):
		return model.FactExecutive
	case containsAny(s, "hires", "hired", "hiring", "headcount", "open roles"):
		return model.FactHiring
	case containsAny(s, "launches", "launched", "unveils", "releases", "new product"):
		return model.FactProduct
	case containsAny(s, "partners with", "partnership", "joint venture", "teams up"):
		return model.FactPartnership
	case containsAny(s, "expands", "expansion", "opens office", "enters market"):
		return model.FactExpansion
	case containsAny(s, "patent", "technology", "platform", "infrastructure"):
		return model.FactTechnology
	case containsAny(s, "regulator", "regulation", "compliance", "filing", "fined"):
		return model.FactRegulation
	case containsAny(s, "revenue", "profit", "valuation", "ipo", "earnings"):
		return model.FactFinancial
	default:
		return model.FactMarketTrend
	}
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// matchesQuery reports whether text mentions the query, ignoring case
func matchesQuery(text, query string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(strings.TrimSpace(query)))
}

// truncate shortens text to at most n runes for raw excerpts
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}

// withinAge reports whether t satisfies a max-age filter. A nil
// timestamp passes: absence of a publication date is not grounds to
// drop an item.
func withinAge(t *time.Time, maxAgeDays int) bool {
	if maxAgeDays <= 0 || t == nil {
		return true
	}
	return time.Since(*t) <= time.Duration(maxAgeDays)*24*time.Hour
}
