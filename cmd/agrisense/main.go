// AgriSense — multi-agent crop assessment for Indian mandis
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/agrisense-ai/agrisense/api"
	"github.com/agrisense-ai/agrisense/internal/catalog"
	"github.com/agrisense-ai/agrisense/internal/config"
	"github.com/agrisense-ai/agrisense/internal/pipeline"
	"github.com/agrisense-ai/agrisense/internal/source"
	"github.com/agrisense-ai/agrisense/pkg/models"
	"github.com/agrisense-ai/agrisense/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "agrisense",
	Short: "AgriSense — multi-agent crop assessment for Indian mandis",
	Long: `AgriSense
A Go-based multi-agent pipeline that scores harvested produce:
freshness grading, mandi pricing, transport matching, and weather
risk, synthesized into one dispatch decision per consignment.`,
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
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("AgriSense %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Assess Command ---

var assessCmd = &cobra.Command{
	Use:   "assess [crop]",
	Short: "Run a full assessment for one consignment",
	Long: `Run the four-stage assessment pipeline for a consignment and print
the synthesized decision.

Examples:
  agrisense assess tomato --temp 22 --humidity 65 --age 2 --location Mumbai
  agrisense assess pyaaz --temp 30 --humidity 55 --quantity 250 --location Nashik --urgency HIGH
  agrisense assess mango --temp 18 --humidity 80 --age 12 --location Pune --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &models.AssessmentRequest{Crop: args[0]}
		req.TemperatureC, _ = cmd.Flags().GetFloat64("temp")
		req.HumidityPct, _ = cmd.Flags().GetFloat64("humidity")
		req.AgeHours, _ = cmd.Flags().GetFloat64("age")
		req.QuantityKG, _ = cmd.Flags().GetFloat64("quantity")
		req.Location, _ = cmd.Flags().GetString("location")
		urgency, _ := cmd.Flags().GetString("urgency")
		req.Urgency = models.Urgency(strings.ToUpper(urgency))

		asJSON, _ := cmd.Flags().GetBool("json")
		verbose, _ := cmd.Flags().GetBool("verbose")

		cat, err := catalog.Load(cfg.Catalog.ProfilesFile)
		if err != nil {
			return fmt.Errorf("load crop profiles: %w", err)
		}

		agg, cleanup, err := buildAggregator(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		var obs pipeline.Observer
		if verbose {
			obs = func(ev pipeline.StageEvent) {
				fmt.Fprintf(os.Stderr, "  [%s] %s attempt=%d elapsed=%s %s\n",
					ev.Stage, ev.Type, ev.Attempt, ev.Elapsed.Round(time.Millisecond), ev.Error)
			}
		}

		orch := pipeline.New(pipeline.Config{
			TotalTimeout:       cfg.Pipeline.TotalTimeout(),
			StageTimeout:       cfg.Pipeline.StageTimeout(),
			FallbackConfidence: cfg.Pipeline.FallbackConfidence,
		}, cat, agg, obs)

		final, run, err := orch.Assess(cmd.Context(), req)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(final)
		}

		printAssessment(final, run)
		return nil
	},
}

func init() {
	assessCmd.Flags().Float64("temp", 0, "storage temperature in °C (required)")
	assessCmd.Flags().Float64("humidity", 0, "storage humidity in % (required)")
	assessCmd.Flags().Float64("age", 0, "hours since harvest")
	assessCmd.Flags().Float64("quantity", 0, "consignment size in kg (default 10)")
	assessCmd.Flags().String("location", "", "market city (required)")
	assessCmd.Flags().String("urgency", "MEDIUM", "sale urgency: LOW, MEDIUM, HIGH")
	assessCmd.Flags().Bool("json", false, "print the raw assessment as JSON")
	assessCmd.Flags().Bool("verbose", false, "stream stage progress to stderr")
	_ = assessCmd.MarkFlagRequired("temp")
	_ = assessCmd.MarkFlagRequired("humidity")
	_ = assessCmd.MarkFlagRequired("location")
}

// buildAggregator wires the configured collaborators for CLI runs.
// The cleanup func closes backends that hold connections.
func buildAggregator(ctx context.Context) (*source.Aggregator, func(), error) {
	cleanup := func() {}

	var market source.MarketSource
	if cfg.Sources.Mandi.BaseURL != "" {
		market = source.NewMandiBoard(cfg.Sources.Mandi.BaseURL)
	}

	var forecast source.ForecastProvider
	if cfg.Sources.Advisory.FeedURL != "" {
		forecast = source.NewAdvisoryFeed(cfg.Sources.Advisory.FeedURL)
	}

	var registry source.DriverRegistry
	switch cfg.Sources.Registry.Backend {
	case "http":
		registry = source.NewHTTPRegistry(cfg.Sources.Registry.BaseURL)
	case "mongo":
		mr, err := source.NewMongoRegistry(ctx, cfg.Sources.Registry.MongoURI, cfg.Sources.Registry.MongoDB)
		if err != nil {
			return nil, nil, fmt.Errorf("connect driver registry: %w", err)
		}
		registry = mr
		cleanup = func() {
			cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mr.Close(cctx)
		}
	default:
		registry = source.NewStaticRegistry(nil)
	}

	return source.NewAggregator(market, forecast, registry), cleanup, nil
}

func printAssessment(final *models.FinalAssessment, run *models.WorkflowRun) {
	fmt.Println("═══════════════════════════════════════")
	fmt.Printf("  AgriSense Assessment — %s @ %s\n", final.Crop, final.Location)
	fmt.Println("═══════════════════════════════════════")
	fmt.Printf("  Run:          %s (%s)\n", final.RunID, final.Status)
	fmt.Printf("  Generated:    %s IST\n", utils.ToIST(final.GeneratedAt).Format("2006-01-02 15:04:05"))
	fmt.Printf("  Freshness:    %.1f / 100 (%s)\n", final.Freshness.Score, final.Freshness.Level)
	fmt.Printf("  Weather risk: %s (−%.1f pts)\n", final.Weather.Risk, final.Weather.DegradationDelta)
	fmt.Printf("  Final score:  %.1f / 100\n", final.AdjustedScore)
	fmt.Printf("  Confidence:   %s\n", utils.FormatPct(final.Confidence*100))
	fmt.Println()
	fmt.Printf("  Price:        %s/kg (%s, ×%.2f on %s/kg base)\n",
		utils.FormatINR(final.Market.FinalPriceINR), final.Market.Strategy,
		final.Market.Multiplier, utils.FormatINR(final.Market.BasePriceINR))
	fmt.Printf("  Transport:    %s (cost ×%.1f)\n", final.Logistics.Mode, final.Logistics.CostMultiplier)
	if len(final.Logistics.Drivers) > 0 {
		fmt.Println("  Drivers:")
		for i, d := range final.Logistics.Drivers {
			fmt.Printf("    %d. %-18s %s  %.0f kg  ★%.1f  score %.2f\n",
				i+1, d.Driver.Name, d.Driver.Vehicle, d.Driver.CapacityKG, d.Driver.Rating, d.Score)
		}
	} else {
		fmt.Println("  Drivers:      none matched")
	}
	fmt.Println()
	if len(final.Recommendations) > 0 {
		fmt.Println("  Recommendations:")
		for _, r := range final.Recommendations {
			fmt.Printf("    [%s] %s\n", r.Severity, r.Message)
		}
	}
	if degraded := run.DegradedStages(); len(degraded) > 0 {
		names := make([]string, len(degraded))
		for i, n := range degraded {
			names[i] = string(n)
		}
		fmt.Printf("\n  ⚠️  Degraded stages: %s\n", strings.Join(names, ", "))
	}
	fmt.Println("═══════════════════════════════════════")
}

// --- Profiles Command ---

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the crop profile catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Load(cfg.Catalog.ProfilesFile)
		if err != nil {
			return fmt.Errorf("load crop profiles: %w", err)
		}

		fmt.Printf("%-14s %-12s %-12s %-10s %s\n", "CROP", "TEMP °C", "HUMIDITY %", "DEG %/H", "REF PRICE")
		for _, name := range cat.Names() {
			p, _ := cat.Lookup(name)
			fmt.Printf("%-14s %4.0f – %-5.0f %4.0f – %-6.0f %-10.2f %s/kg\n",
				p.Name, p.TempMinC, p.TempMaxC, p.HumidityMinPct, p.HumidityMaxPct,
				p.DegradationPerHour, utils.FormatINR(p.ReferencePriceINR))
		}
		return nil
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := api.NewServer(cfg, version)
		if err != nil {
			return err
		}
		addr := cfg.API.Addr()
		fmt.Printf("🌐 Starting AgriSense API server on %s\n", addr)
		return srv.ListenAndServe(addr)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat := catalog.NewBuiltin()

		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  AgriSense — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Printf("  Time (IST):    %s\n", utils.NowIST().Format("2006-01-02 15:04:05"))
		fmt.Printf("  Mandi session: opens %s IST\n", utils.MandiOpenTime(utils.NowIST()).Format("15:04"))
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    Run deadline:  %s\n", cfg.Pipeline.TotalTimeout())
		fmt.Printf("    Crop profiles: %d built-in\n", cat.Count())
		fmt.Printf("    Registry:      %s\n", cfg.Sources.Registry.Backend)
		fmt.Printf("    API Server:    %s\n", cfg.API.Addr())
		fmt.Println()

		fmt.Println("  Collaborators:")
		printSource("Mandi price board", cfg.Sources.Mandi.BaseURL)
		printSource("Weather advisories", cfg.Sources.Advisory.FeedURL)
		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

func printSource(name, url string) {
	if url == "" {
		fmt.Printf("    %-20s ❌ not configured (fallback data)\n", name+":")
		return
	}
	fmt.Printf("    %-20s ✅ %s\n", name+":", url)
}
