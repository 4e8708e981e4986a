package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"pattas/internal/config"
	"pattas/internal/news"
	"pattas/internal/pipeline"
	"pattas/internal/provider"
	"pattas/internal/scheduler"
	"pattas/internal/store"
	"pattas/pkg/model"
)

var (
	cfgFile  string
	daemon   bool
	schedule string
	format   string
	verbose  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pattas",
		Short: "Daily signal batch for the pattas watch-list",
		Long: `Pattas computes one daily signal row per watch-list ticker: price
history is fetched from NSE with a Yahoo Finance fallback, RSI and MACD are
derived from the closes, news headlines are scored for sentiment, and the
results are upserted into the pattas_list SQLite database alongside a
news-link sidecar file.

Examples:
  pattas                        run one batch now
  pattas --format json          run once, print records as JSON
  pattas --daemon               keep running, batch on the cron schedule`,
		RunE: run,
	}

	rootCmd.Flags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.Flags().BoolVar(&daemon, "daemon", false, "run on the configured cron schedule until interrupted")
	rootCmd.Flags().StringVar(&schedule, "schedule", "", "cron expression overriding the configured schedule")
	rootCmd.Flags().StringVar(&format, "format", "table", "output format: table, json")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "show per-ticker log output")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("schedule") {
		cfg.Batch.Schedule = schedule
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if !verbose && !daemon {
		log.SetOutput(io.Discard)
	}

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	sidecar := store.NewSidecar(cfg.Sidecar.Path)
	if cfg.Sidecar.LoadLegacy {
		prior, err := sidecar.Load()
		if err != nil {
			log.Printf("[MAIN] could not read prior sidecar: %v", err)
		} else {
			log.Printf("[MAIN] prior sidecar covers %d tickers (will be replaced)", len(prior))
		}
	}

	// NSE first, Yahoo as the fallback history source
	nse := provider.NewNSEProvider(cfg.Providers.NSE.RateLimit)
	yahoo := provider.NewYahooProvider(cfg.Providers.Yahoo.RateLimit)
	chain := provider.NewHistoryChain(cfg.Batch.MinPoints, nse, yahoo)

	scorer := news.NewScorer(yahoo, news.NewVaderAnalyzer(), cfg.Batch.MaxNewsItems)
	processor := pipeline.NewProcessor(chain, yahoo, scorer, cfg.Batch.HistoryDays)
	runner := pipeline.NewRunner(db, sidecar, processor, cfg.Batch.Pause)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted. Stopping...")
		cancel()
	}()

	if daemon {
		return runDaemon(ctx, runner, cfg.Batch.Schedule)
	}
	return runOnce(ctx, runner)
}

func runDaemon(ctx context.Context, runner *pipeline.Runner, spec string) error {
	sched := scheduler.New()
	err := sched.Schedule(spec, func(jobCtx context.Context) {
		if _, err := runner.Run(jobCtx); err != nil {
			log.Printf("[MAIN] scheduled batch failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	sched.Start()
	defer sched.Stop()

	fmt.Printf("Daemon running, batch scheduled at %q. Ctrl-C to stop.\n", spec)
	<-ctx.Done()
	return nil
}

func runOnce(ctx context.Context, runner *pipeline.Runner) error {
	var bar *progressbar.ProgressBar
	runner.SetProgressCallback(func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("Processing"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]█[reset]",
					SaucerHead:    "[green]█[reset]",
					SaucerPadding: "░",
					BarStart:      "[",
					BarEnd:        "]",
				}),
			)
		}
		bar.Set(done)
	})

	result, err := runner.Run(ctx)
	if bar != nil {
		bar.Finish()
		fmt.Println()
	}
	if err != nil {
		return fmt.Errorf("running batch: %w", err)
	}

	if format == "json" {
		return outputJSON(result)
	}
	return outputTable(result)
}

func outputJSON(result *model.RunResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func outputTable(result *model.RunResult) error {
	if len(result.Records) > 0 {
		table := tablewriter.NewTable(os.Stdout,
			tablewriter.WithHeader([]string{"Ticker", "Price", "RSI", "MACD", "Sentiment", "Status"}),
		)
		for _, rec := range result.Records {
			sentiment := "N/A"
			if rec.SentimentScore != nil {
				sentiment = fmt.Sprintf("%.2f", *rec.SentimentScore)
			}
			table.Append([]string{
				rec.TickerSymbol,
				fmt.Sprintf("%.2f", rec.Price),
				fmt.Sprintf("%.2f", rec.RSI),
				rec.MACDSignal,
				sentiment,
				rec.Status,
			})
		}
		table.Render()
	}

	if len(result.Insufficient) > 0 {
		fmt.Printf("\nInsufficient data: %d\n", len(result.Insufficient))
		for _, ticker := range result.Insufficient {
			fmt.Printf("  %s\n", ticker)
		}
	}
	if len(result.Errors) > 0 {
		fmt.Printf("\nErrors: %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("  %s: %s\n", e.Ticker, e.Reason)
		}
	}

	fmt.Printf("\nRun %s (%s): %d processed, %d insufficient, %d errored in %s\n",
		result.RunID, result.Date,
		len(result.Records), len(result.Insufficient), len(result.Errors),
		result.Elapsed.Round(time.Second))
	return nil
}
