package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	healthTimeout time.Duration
	healthJSON    bool
)

// healthCmd represents the health command
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe every configured adapter and report status",
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)

	healthCmd.Flags().DurationVar(&healthTimeout, "timeout", 30*time.Second, "overall probe timeout")
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "print statuses as JSON")
}

func runHealth(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
	defer cancel()

	manager, _, err := buildManager()
	if err != nil {
		return err
	}

	statuses := manager.Registry().HealthCheckAll(ctx)

	if healthJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(statuses)
	}

	unhealthy := 0
	for _, s := range statuses {
		state := "healthy"
		if !s.IsHealthy {
			state = "UNHEALTHY"
			unhealthy++
		}
		fmt.Printf("%-20s %-16s %s", s.ServerName, s.SourceType, state)
		if s.RateLimitRemaining != nil {
			fmt.Printf("  (quota remaining: %d)", *s.RateLimitRemaining)
		}
		fmt.Println()
		if s.LastError != "" {
			fmt.Printf("%-20s   %s\n", "", s.LastError)
		}
	}

	if unhealthy > 0 {
		return fmt.Errorf("%d of %d adapters unhealthy", unhealthy, len(statuses))
	}
	return nil
}
