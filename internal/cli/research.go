package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/knowledgeweb/internal/worker"
)

var (
	researchFile    string
	researchWorkers int
	researchTimeout time.Duration
	researchJSON    bool
)

// researchCmd represents the research command
var researchCmd = &cobra.Command{
	Use:   "research [company ...]",
	Short: "Run the pre-packaged company research query",
	Long: `Research runs the multi-source company research query (registry,
news, web and financial sources) for one or more companies. Multiple
companies are processed concurrently through a worker pool.

Example:
  knowledgeweb research "Acme Pte Ltd"
  knowledgeweb research "Acme" "Globex" --workers 2
  knowledgeweb research --file companies.txt`,
	RunE: runResearch,
}

func init() {
	rootCmd.AddCommand(researchCmd)

	researchCmd.Flags().StringVar(&researchFile, "file", "", "file with one company per line")
	researchCmd.Flags().IntVar(&researchWorkers, "workers", 0, "concurrent research jobs (default from config)")
	researchCmd.Flags().DurationVar(&researchTimeout, "timeout", 5*time.Minute, "overall batch timeout")
	researchCmd.Flags().BoolVar(&researchJSON, "json", false, "print full results as JSON")
}

func runResearch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && researchFile == "" {
		return fmt.Errorf("provide at least one company or --file")
	}

	ctx, cancel := context.WithTimeout(context.Background(), researchTimeout)
	defer cancel()

	manager, cfg, err := buildManager()
	if err != nil {
		return err
	}

	workers := researchWorkers
	if workers <= 0 {
		workers = cfg.Concurrency.ResearchWorkers
	}

	subjects := args
	if researchFile != "" {
		fromFile, err := worker.ReadSubjectsFromFile(researchFile)
		if err != nil {
			return err
		}
		subjects = append(subjects, fromFile...)
	}

	if len(subjects) == 1 {
		return renderResult(manager.ResearchCompany(ctx, subjects[0]), researchJSON)
	}

	processor := worker.NewBatchProcessor(manager, workers)
	results := processor.ProcessSubjects(ctx, subjects)

	failed := 0
	for _, r := range results {
		fmt.Printf("=== %s ===\n", r.Subject)
		if err := renderResult(r.Result, researchJSON); err != nil {
			return err
		}
		if len(r.Result.Facts) == 0 {
			failed++
		}
		fmt.Println()
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d subjects produced no facts\n", failed, len(results))
	}
	return nil
}
