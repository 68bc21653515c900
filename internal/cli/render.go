package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/knowledgeweb/internal/model"
)

// renderResult prints a query result as JSON or a text summary
func renderResult(result *model.QueryResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("Query:    %s\n", result.Query)
	fmt.Printf("Producer: %s\n", result.ProducerName)
	fmt.Printf("Facts:    %d (%d ms)\n", len(result.Facts), result.QueryTimeMs)
	fmt.Println(strings.Repeat("-", 60))

	for _, f := range result.Facts {
		marker := " "
		if f.VerificationCount > 1 {
			marker = "*"
		}
		fmt.Printf("%s [%.2f] (%s/%s) %s\n", marker, f.Confidence, f.SourceType, f.FactType, f.Claim)
		if f.VerificationCount > 1 {
			fmt.Printf("          corroborated by %d sources\n", f.VerificationCount)
		}
		if f.SourceURL != "" {
			fmt.Printf("          %s\n", f.SourceURL)
		}
	}

	if len(result.Entities) > 0 {
		fmt.Println(strings.Repeat("-", 60))
		fmt.Printf("Entities: ")
		names := make([]string, len(result.Entities))
		for i, e := range result.Entities {
			names[i] = e.Name
		}
		fmt.Println(strings.Join(names, ", "))
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "Error: %s\n", e)
	}

	return nil
}
