// edgar-mcp serves SEC Form 4 insider transactions to MCP clients and
// answers the same queries from the command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	edgar "github.com/joeychilson/edgar-mcp"
	"github.com/joeychilson/edgar-mcp/internal/config"
	"github.com/joeychilson/edgar-mcp/internal/logging"
	"github.com/joeychilson/edgar-mcp/internal/mcp"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "edgar-mcp",
	Short:         "SEC EDGAR Form 4 insider transactions over MCP",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		// stdout carries MCP traffic, logs go to stderr
		logger = logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/edgar-mcp.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	form4Cmd.Flags().Int("limit", -1, "maximum number of filings (default from config, 0 for all)")
	urlsCmd.Flags().Int("limit", -1, "maximum number of filings (default from config, 0 for all)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(form4Cmd)
	rootCmd.AddCommand(urlsCmd)
	rootCmd.AddCommand(cikCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("edgar-mcp %s (%s)\n", version, commit)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the Form 4 tools over MCP on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger.Info("edgar-mcp starting", "version", version)
		server := mcp.NewServer(newService(), cfg.Fetch.DefaultLimit, version, logger)
		if err := server.Run(ctx, os.Stdin, os.Stdout); err != nil && err != context.Canceled {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	},
}

var form4Cmd = &cobra.Command{
	Use:   "form4 [ticker]",
	Short: "Print the latest Form 4 transactions for a ticker as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := newService().Form4(cmd.Context(), args[0], limitFlag(cmd))
		if err != nil {
			return err
		}
		return printJSON(records)
	},
}

var urlsCmd = &cobra.Command{
	Use:   "urls [ticker]",
	Short: "Print the document URLs of the latest Form 4 filings for a ticker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		urls, err := newService().Form4URLs(cmd.Context(), args[0], limitFlag(cmd))
		if err != nil {
			return err
		}
		for _, u := range urls {
			fmt.Println(u)
		}
		return nil
	},
}

var cikCmd = &cobra.Command{
	Use:   "cik [ticker]",
	Short: "Resolve a ticker to its CIK",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cik, err := newClient().ResolveCIK(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(edgar.PaddedCIK(cik))
		return nil
	},
}

func newClient() *edgar.Client {
	return edgar.NewClient(
		edgar.WithHTTPClient(&http.Client{Timeout: cfg.HTTP.Timeout}),
		edgar.WithIdentity(edgar.Identity{Name: cfg.Identity.Name, Email: cfg.Identity.Email}),
		edgar.WithRateLimit(cfg.HTTP.RateLimit),
		edgar.WithLogger(logger),
	)
}

func newService() *mcp.EdgarService {
	policy := edgar.FailFast
	if cfg.Fetch.SkipFailed {
		policy = edgar.SkipFailed
	}
	return &mcp.EdgarService{
		Client:      newClient(),
		Policy:      policy,
		Concurrency: cfg.Fetch.Concurrency,
	}
}

func limitFlag(cmd *cobra.Command) int {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		return cfg.Fetch.DefaultLimit
	}
	return limit
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
