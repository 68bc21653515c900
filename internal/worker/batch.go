package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/knowledgeweb/internal/model"
)

// Researcher runs one pre-packaged research query for a subject
type Researcher interface {
	ResearchCompany(ctx context.Context, company string) *model.QueryResult
}

// ResearchJob aggregates evidence for a single subject
type ResearchJob struct {
	Subject    string
	Researcher Researcher
}

// Execute executes the research job
func (j *ResearchJob) Execute(ctx context.Context) Result {
	return &ResearchResult{
		Subject: j.Subject,
		Result:  j.Researcher.ResearchCompany(ctx, j.Subject),
	}
}

// ResearchResult is the outcome of one research job. Source-level
// failures live inside Result.Errors; Err is reserved for batch-level
// problems.
type ResearchResult struct {
	Subject string
	Result  *model.QueryResult
	Err     error
}

// GetError returns the batch-level error, if any
func (r *ResearchResult) GetError() error {
	return r.Err
}

// BatchProcessor researches multiple subjects concurrently
type BatchProcessor struct {
	researcher  Researcher
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(researcher Researcher, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		researcher:  researcher,
		concurrency: concurrency,
	}
}

// ProcessSubjects researches multiple subjects concurrently
func (b *BatchProcessor) ProcessSubjects(ctx context.Context, subjects []string) []*ResearchResult {
	if len(subjects) == 0 {
		return []*ResearchResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, subject := range subjects {
		pool.Submit(&ResearchJob{
			Subject:    subject,
			Researcher: b.researcher,
		})
	}

	results := pool.Wait()

	out := make([]*ResearchResult, len(results))
	for i, result := range results {
		out[i] = result.(*ResearchResult)
	}

	return out
}

// ProcessFile reads subjects from a file and researches them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ResearchResult, error) {
	subjects, err := ReadSubjectsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read subjects: %w", err)
	}

	return b.ProcessSubjects(ctx, subjects), nil
}

// ReadSubjectsFromFile reads subjects from a file (one per line).
// Empty lines and #-comments are skipped, duplicates removed.
func ReadSubjectsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var subjects []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			subjects = append(subjects, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return subjects, nil
}
