package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notiva/notiva/internal/output"
	"github.com/notiva/notiva/internal/server/handlers"
)

var (
	rateLimitStatsOutput string
	rateLimitStatsServer string
	rateLimitStatsToken  string
)

var rateLimitCmd = &cobra.Command{
	Use:   "ratelimit",
	Short: "Inspect live rate limiter state",
}

var rateLimitStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show limiter classes and active windows from a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(rateLimitStatsOutput)
		if err != nil {
			return err
		}

		base := rateLimitStatsServer
		if base == "" {
			base = fmt.Sprintf("http://%s:%d", viper.GetString("server.host"), viper.GetInt("server.port"))
		}

		token := rateLimitStatsToken
		if token == "" {
			token = viper.GetString("debug.admin_token")
		}

		report, err := fetchRateLimitStats(cmd.Context(), base, token)
		if err != nil {
			return err
		}

		rendered, err := output.NewFormatter(format).FormatReport(report)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), rendered)
		return nil
	},
}

func fetchRateLimitStats(ctx context.Context, baseURL, token string) (*output.RateLimitReport, error) {
	client := &http.Client{Timeout: 5 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/ratelimit/stats", nil)
	if err != nil {
		return nil, fmt.Errorf("build stats request: %w", err)
	}
	if token != "" {
		req.Header.Set(handlers.AdminTokenHeader, token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch limiter stats: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats endpoint returned %d (is debug mode or an admin token configured?)", resp.StatusCode)
	}

	var report output.RateLimitReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("decode limiter stats: %w", err)
	}
	return &report, nil
}

func init() {
	rateLimitStatsCmd.Flags().StringVar(&rateLimitStatsOutput, "output-format", string(output.FormatTable), "Output format: table|json|markdown")
	rateLimitStatsCmd.Flags().StringVar(&rateLimitStatsServer, "server", "", "Base URL of the running server (default from config)")
	rateLimitStatsCmd.Flags().StringVar(&rateLimitStatsToken, "token", "", "Admin token (default from config)")

	rateLimitCmd.AddCommand(rateLimitStatsCmd)
	rootCmd.AddCommand(rateLimitCmd)
}
