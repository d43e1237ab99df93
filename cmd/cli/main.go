package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/guildledger/internal/adapter/http/dto"
	"github.com/iho/guildledger/internal/infrastructure/postgres"
)

var (
	baseURL string
	timeout time.Duration
	guildID string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "guildledger-cli",
		Short: "Guild ledger CLI tool",
		Long:  `A command line interface for the guild distribution ledger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&guildID, "guild", "", "Guild ID")

	rootCmd.AddCommand(balanceCmd(), batchesCmd(), migrateCmd())
	return rootCmd
}

func balanceCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the available balance of a source",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.BalanceResponse
			if err := getJSON(guildPath("/balance"), url.Values{"source": {source}}, &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: pool=%s disbursed=%s available=%s\n",
				resp.GuildID, resp.Source, resp.Pool, resp.Disbursed, resp.Available)
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "TRANSACTION", "TRANSACTION or LOOT")
	return cmd
}

func batchesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batches",
		Short: "Distribution batch operations",
	}

	var (
		source    string
		recipient string
		limit     int
		offset    int
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List distribution batches, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if source != "" {
				q.Set("source", source)
			}
			if recipient != "" {
				q.Set("recipient_id", recipient)
			}
			q.Set("limit", strconv.Itoa(limit))
			q.Set("offset", strconv.Itoa(offset))

			var resp dto.BatchListResponse
			if err := getJSON(guildPath("/distributions"), q, &resp); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-22s %-12s %-10s %12s  %s\n", "REFERENCE", "SOURCE", "MODE", "AMOUNT", "NOTES")
			for _, b := range resp.Batches {
				fmt.Fprintf(out, "%-22s %-12s %-10s %12s  %s\n", b.ReferenceCode, b.Source, b.Mode, b.TotalAmount, truncate(b.Notes, 40))
			}
			fmt.Fprintf(out, "%d of %d\n", len(resp.Batches), resp.Total)
			return nil
		},
	}
	listCmd.Flags().StringVar(&source, "source", "", "Filter by source")
	listCmd.Flags().StringVar(&recipient, "recipient", "", "Filter by recipient member ID")
	listCmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Page offset")

	getCmd := &cobra.Command{
		Use:   "get [batch-id]",
		Short: "Show one batch with its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.BatchDetailResponse
			if err := getJSON(guildPath("/distributions/"+url.PathEscape(args[0])), nil, &resp); err != nil {
				return err
			}
			printJSON(resp)
			return nil
		},
	}

	cmd.AddCommand(listCmd, getCmd)
	return cmd
}

func migrateCmd() *cobra.Command {
	var (
		databaseURL    string
		migrationsPath string
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema migrations",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	cmd.PersistentFlags().StringVar(&migrationsPath, "path", "internal/infrastructure/postgres/migrations", "Migrations directory")

	migrator := func() *postgres.Migrator {
		log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		return postgres.NewMigrator(databaseURL, migrationsPath, log)
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrator().Up()
		},
	}

	var steps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrator().Down(steps)
		},
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			version, dirty, err := migrator().Version()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%v\n", version, dirty)
			return nil
		},
	}

	cmd.AddCommand(upCmd, downCmd, versionCmd)
	return cmd
}

func guildPath(suffix string) string {
	return "/api/v1/guilds/" + url.PathEscape(guildID) + suffix
}

func getJSON(path string, query url.Values, dst any) error {
	if guildID == "" {
		return fmt.Errorf("--guild is required")
	}

	target := baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(target)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr dto.ErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Code != "" {
			return fmt.Errorf("%s (%s): %s", apiErr.Error, apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	return json.Unmarshal(body, dst)
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to format output: %v\n", err)
		return
	}
	fmt.Println(string(out))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
