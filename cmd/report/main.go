package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/spf13/pflag"

	"energy_report/internal/config"
	"energy_report/internal/runner"
)

type options struct {
	configFile string
	dataDir    string
	outputDir  string
	selection  string
	timezone   string
	noDaily    bool
	noCorrect  bool
	jsonOut    bool
	yes        bool
	verbose    bool
}

func main() {
	var o options
	pflag.StringVarP(&o.configFile, "config", "c", "", "YAML config file (overrides REPORT_CONFIG)")
	pflag.StringVarP(&o.dataDir, "data", "d", "", "directory containing CSV data files (overrides DATA_PATH)")
	pflag.StringVarP(&o.outputDir, "output", "o", "", "directory for generated reports (overrides OUTPUT_PATH)")
	pflag.StringVarP(&o.selection, "selection", "s", "", "JSON file listing device entity ids to report on")
	pflag.StringVar(&o.timezone, "timezone", "", "timezone for calendar fields (overrides REPORT_TIMEZONE)")
	pflag.BoolVar(&o.noDaily, "no-daily", false, "skip per-day reports")
	pflag.BoolVar(&o.noCorrect, "no-correct-timestamps", false, "keep timestamps as recorded")
	pflag.BoolVar(&o.jsonOut, "json", false, "print the run summary as JSON")
	pflag.BoolVarP(&o.yes, "yes", "y", false, "create a missing data directory without asking")
	pflag.BoolVarP(&o.verbose, "verbose", "v", false, "debug logging")
	pflag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("Loading .env: %v", err)
	}
	cfg, err := config.Load(lookupWith(o.configFile))
	if err != nil {
		log.Fatalf("Configuration: %v", err)
	}
	o.apply(&cfg)

	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if _, err := os.Stat(cfg.DataPath); errors.Is(err, os.ErrNotExist) {
		created, err := ensureDataDir(cfg.DataPath, o.yes)
		if err != nil {
			log.Fatalf("Data directory: %v", err)
		}
		if created {
			fmt.Printf("Created %s. Put CSV files there and run again.\n", cfg.DataPath)
		}
		return
	}

	r, layout, err := runner.FromConfig(cfg, logger, nil)
	if err != nil {
		log.Fatalf("Setting up pipeline: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, runErr := r.Run(ctx)
	if o.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			log.Fatalf("Encoding summary: %v", err)
		}
	} else {
		printSummary(os.Stdout, summary, layout.GeneralPDF())
	}
	if runErr != nil {
		os.Exit(1)
	}
}

// lookupWith lets --config take the place of REPORT_CONFIG.
func lookupWith(configFile string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		if key == "REPORT_CONFIG" && configFile != "" {
			return configFile, true
		}
		return os.LookupEnv(key)
	}
}

// apply overrides cfg with the flags that were set.
func (o options) apply(cfg *config.Config) {
	if o.dataDir != "" {
		cfg.DataPath = o.dataDir
	}
	if o.outputDir != "" {
		cfg.OutputPath = o.outputDir
	}
	if o.selection != "" {
		cfg.SelectionFile = o.selection
	}
	if o.timezone != "" {
		cfg.Timezone = o.timezone
	}
	if o.noDaily {
		cfg.DailyReports = false
	}
	if o.noCorrect {
		cfg.CorrectTimestamps = false
	}
}

// ensureDataDir creates dir when yes is set or the user agrees at the
// prompt. Without a terminal it only reports the missing directory.
func ensureDataDir(dir string, yes bool) (bool, error) {
	if !yes {
		if !readline.IsTerminal(int(os.Stdin.Fd())) {
			return false, fmt.Errorf("%s not found", dir)
		}
		rl, err := readline.NewEx(&readline.Config{
			Prompt: fmt.Sprintf("Data folder %q not found. Create it? (y/n): ", dir),
		})
		if err != nil {
			return false, err
		}
		defer rl.Close()
		ok, err := ask(rl)
		if err != nil || !ok {
			return false, err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, err
	}
	return true, nil
}

type lineReader interface {
	Readline() (string, error)
}

func ask(r lineReader) (bool, error) {
	line, err := r.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return isYes(line), nil
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func printSummary(w io.Writer, s *runner.RunSummary, pdf string) {
	fmt.Fprintln(w, strings.Repeat("=", 60))
	if s.Success {
		fmt.Fprintln(w, "Analysis complete")
	} else {
		fmt.Fprintf(w, "Analysis failed: %s\n", s.Message)
	}
	fmt.Fprintf(w, "  State:             %s\n", s.State)
	fmt.Fprintf(w, "  Files processed:   %d of %d\n", s.FilesProcessed, s.FilesFound)
	for _, f := range s.FilesFailed {
		fmt.Fprintf(w, "    skipped %s\n", f)
	}
	fmt.Fprintf(w, "  Rows analyzed:     %d\n", s.RowsAnalyzed)
	fmt.Fprintf(w, "  Days analyzed:     %d\n", s.DaysAnalyzed)
	fmt.Fprintf(w, "  Total energy:      %.2f kWh\n", s.TotalEnergyKWh)
	fmt.Fprintf(w, "  Reports generated: %d\n", s.ReportsGenerated)
	if s.ReportsFailed > 0 {
		fmt.Fprintf(w, "  Reports failed:    %d\n", s.ReportsFailed)
		for _, item := range s.Items {
			if !item.Success {
				fmt.Fprintf(w, "    %s %s: %s\n", item.Kind, item.Key, item.Error)
			}
		}
	}
	if s.PDFPath != "" {
		fmt.Fprintf(w, "  General report:    %s (%.2f KB)\n", pdf, s.PDFSizeKB)
	}
	fmt.Fprintln(w, strings.Repeat("=", 60))
}
