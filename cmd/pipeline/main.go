package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lucamachado49/finance-pipeline/internal/config"
	"github.com/lucamachado49/finance-pipeline/internal/models"
	"github.com/lucamachado49/finance-pipeline/pkg/ingest"
)

func main() {
	// Define command-line flags
	var (
		// Commands
		runCmd   = flag.Bool("run", false, "Run the ingest pipeline once")
		setupCmd = flag.Bool("setup", false, "Create the database schema if it does not exist")
		resetCmd = flag.Bool("reset", false, "Drop and recreate the database schema")
		listCmd  = flag.Bool("list", false, "List the latest stored records")

		// Run options
		tickersFlag = flag.String("tickers", "", "Comma-separated tickers to ingest (default from config)")
		startFlag   = flag.String("start", "", "Window start date (YYYY-MM-DD)")
		endFlag     = flag.String("end", "", "Window end date (YYYY-MM-DD, default today)")
		daysFlag    = flag.Int("days", 0, "Window length in days when no start date is given")
		replaceFlag = flag.Bool("replace", false, "Overwrite rows that already exist")

		// Config options
		configPath = flag.String("config", "config.yaml", "Path to the YAML configuration file")

		// Database options
		dbHost = flag.String("db-host", "", "Database hostname")
		dbPort = flag.Int("db-port", 0, "Database port")
		dbName = flag.String("db-name", "", "Database name")
		dbUser = flag.String("db-user", "", "Database username")
		dbPass = flag.String("db-pass", "", "Database password")

		// Reset options
		yesFlag = flag.Bool("yes", false, "Confirm destructive commands")

		// List options
		limitFlag = flag.Int("limit", 10, "Number of records to list")
	)

	// Parse command-line flags
	flag.Parse()

	if !(*runCmd || *setupCmd || *resetCmd || *listCmd) {
		flag.Usage()
		return
	}

	// Load environment from .env if present
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Override with command-line options if provided
	if *tickersFlag != "" {
		cfg.Tickers = parseCommaList(*tickersFlag)
	}
	if *daysFlag > 0 {
		cfg.WindowDays = *daysFlag
	}
	if *replaceFlag {
		cfg.Pipeline.Replace = true
	}
	if *dbHost != "" {
		cfg.Database.Host = *dbHost
	}
	if *dbPort != 0 {
		cfg.Database.Port = *dbPort
	}
	if *dbName != "" {
		cfg.Database.Name = *dbName
	}
	if *dbUser != "" {
		cfg.Database.User = *dbUser
	}
	if *dbPass != "" {
		cfg.Database.Password = *dbPass
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger, err := ingest.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Create the ingest service
	svc, err := ingest.NewService(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to start service: %v", err)
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Handle commands
	if *setupCmd {
		if err := svc.Setup(ctx); err != nil {
			log.Fatalf("Failed to set up schema: %v", err)
		}
		fmt.Println("Database schema is ready")
	}

	if *resetCmd {
		if !*yesFlag {
			log.Fatal("-reset drops the stock_data table; pass -yes to confirm")
		}
		if err := svc.Reset(ctx); err != nil {
			log.Fatalf("Failed to reset schema: %v", err)
		}
		fmt.Println("Database schema was reset")
	}

	if *runCmd {
		start := parseDate("start", *startFlag)
		end := parseDate("end", *endFlag)
		if !start.IsZero() && !end.IsZero() && start.After(end) {
			log.Fatalf("Window start %s is after end %s", *startFlag, *endFlag)
		}

		// A run must not proceed against missing or partial schema.
		if err := svc.Setup(ctx); err != nil {
			log.Fatalf("Failed to ensure schema: %v", err)
		}

		summary, err := svc.RunOnce(ctx, nil, start, end)
		if err != nil {
			log.Printf("Warning: run interrupted: %v", err)
		}
		printSummary(summary)

		if len(summary.Results) > 0 && summary.Done == 0 {
			os.Exit(1)
		}
	}

	if *listCmd {
		var tickers []string
		if *tickersFlag != "" {
			tickers = parseCommaList(*tickersFlag)
		}
		records, err := svc.Latest(ctx, tickers, *limitFlag)
		if err != nil {
			log.Fatalf("Failed to list records: %v", err)
		}
		count, err := svc.Count(ctx)
		if err != nil {
			log.Fatalf("Failed to count records: %v", err)
		}

		fmt.Printf("Latest %d of %d stored records:\n", len(records), count)
		for _, rec := range records {
			fmt.Printf("  %s %-8s open=%s high=%s low=%s close=%s volume=%d\n",
				rec.StockDate, rec.Ticker,
				rec.Open, rec.High, rec.Low, rec.Close, rec.Volume)
		}
	}
}

// Print the outcome of one pipeline run
func printSummary(summary models.RunSummary) {
	fmt.Printf("Run %s finished in %s: %d done, %d failed, %d records stored\n",
		summary.RunID, summary.Duration().Round(time.Millisecond),
		summary.Done, summary.Failed, summary.RecordsStored)

	for _, res := range summary.Results {
		if res.State == models.TickerFailed {
			fmt.Printf("  %-8s failed  stage=%s error=%v\n", res.Ticker, res.FailedStage, res.Err)
			continue
		}
		fmt.Printf("  %-8s done    stored=%d dropped=%d\n", res.Ticker, res.RecordsStored, res.DroppedRows)
	}
}

// Parse a YYYY-MM-DD flag value, empty means unset
func parseDate(name, value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(models.DateLayout, value)
	if err != nil {
		log.Fatalf("Invalid -%s date %q: expected YYYY-MM-DD", name, value)
	}
	return t
}

// Parse a comma-separated list into a slice of strings
func parseCommaList(list string) []string {
	parts := strings.Split(list, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
