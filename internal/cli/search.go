package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/knowledgeweb/internal/model"
	"github.com/ppiankov/knowledgeweb/internal/source"
)

var (
	searchSources    []string
	searchServers    []string
	searchSequential bool
	searchLimit      int
	searchMaxAge     int
	searchTimeout    time.Duration
	searchJSON       bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Query configured sources and aggregate evidenced facts",
	Long: `Search fans a query out to the configured source adapters, merges
their facts, deduplicates overlapping claims and boosts confidence for
cross-source corroboration.

Example:
  knowledgeweb search "Acme Pte Ltd"
  knowledgeweb search "Acme" --sources news,financial --limit 20
  knowledgeweb search "Acme" --servers company-registry --sequential`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringSliceVar(&searchSources, "sources", nil, "source types to query (company_registry, news, web_scrape, financial)")
	searchCmd.Flags().StringSliceVar(&searchServers, "servers", nil, "explicit adapter names to query")
	searchCmd.Flags().BoolVar(&searchSequential, "sequential", false, "query adapters one at a time in registration order")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "cap on merged facts (0 = unlimited)")
	searchCmd.Flags().IntVar(&searchMaxAge, "max-age-days", 0, "ignore items older than this many days")
	searchCmd.Flags().DurationVar(&searchTimeout, "timeout", 60*time.Second, "overall search timeout")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print the full result as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
	defer cancel()

	manager, _, err := buildManager()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Searching: %s\n", query)
		fmt.Fprintf(os.Stderr, "Adapters:  %v\n\n", manager.Registry().Names())
	}

	sourceTypes := make([]model.SourceType, 0, len(searchSources))
	for _, s := range searchSources {
		sourceTypes = append(sourceTypes, model.SourceType(s))
	}

	result := manager.Registry().Search(ctx, query, source.SearchOptions{
		SourceTypes: sourceTypes,
		ServerNames: searchServers,
		Sequential:  searchSequential,
		Limit:       searchLimit,
		MaxAgeDays:  searchMaxAge,
	})

	return renderResult(result, searchJSON)
}
