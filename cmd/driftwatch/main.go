// Package main is the entry point for the driftwatch monitor.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dshills/driftwatch/internal/config"
	"github.com/dshills/driftwatch/internal/session"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, cfg, ok := parseFlags()
	if !ok {
		return 1
	}

	sess, err := session.New(session.Options{
		Config: cfg,
		Policy: opts.policy,
		JSON:   opts.jsonOutput,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	if err := sess.Start(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer sess.Shutdown()

	// Run until interrupted.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals

	return 0
}

type options struct {
	policy     session.ResolvePolicy
	jsonOutput bool
}

func parseFlags() (options, config.Config, bool) {
	var (
		configPath  string
		root        string
		resolve     string
		jsonOutput  bool
		margin      int
		minSize     int
		debounce    time.Duration
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "driftwatch.toml", "Path to configuration file")
	flag.StringVar(&configPath, "c", "driftwatch.toml", "Path to configuration file (shorthand)")
	flag.StringVar(&root, "root", "", "Directory tree to monitor (overrides config)")
	flag.StringVar(&resolve, "resolve", "none", "Resolve policy for reported changes (none, accept, reject)")
	flag.BoolVar(&jsonOutput, "json", false, "Emit reports as JSON lines")
	flag.IntVar(&margin, "margin", -1, "Context lines kept visible around each change (overrides config)")
	flag.IntVar(&minSize, "min-size", -1, "Smallest unchanged region to fold (overrides config)")
	flag.DurationVar(&debounce, "debounce", 0, "Internal-edit marker lifetime (overrides config)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "driftwatch - external change detection for document trees\n\n")
		fmt.Fprintf(os.Stderr, "Usage: driftwatch [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  driftwatch -root ./docs              Report external edits under ./docs\n")
		fmt.Fprintf(os.Stderr, "  driftwatch -resolve reject           Restore the baseline on every external edit\n")
		fmt.Fprintf(os.Stderr, "  driftwatch -json | jq .path          Stream reports as JSON\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("driftwatch %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return options{}, cfg, false
	}

	// Flag overrides beat both file and environment.
	if root != "" {
		cfg.Root = root
	}
	if margin >= 0 {
		cfg.Fold.Margin = margin
	}
	if minSize >= 0 {
		cfg.Fold.MinSize = minSize
	}
	if debounce > 0 {
		cfg.Classifier.Debounce = config.Duration(debounce)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return options{}, cfg, false
	}

	policy, err := session.ParseResolvePolicy(resolve)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return options{}, cfg, false
	}

	return options{policy: policy, jsonOutput: jsonOutput}, cfg, true
}
