// Package main provides the browserkit command, which runs a YAML browser
// script against a real browser and writes a JSON run summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/entrhq/browserkit/pkg/browser"
	"github.com/entrhq/browserkit/pkg/config"
	"github.com/entrhq/browserkit/pkg/logging"
	"github.com/entrhq/browserkit/pkg/script"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ScriptFile  string
	ConfigFile  string
	Mode        string
	Timeout     time.Duration
	OutputFile  string
	ShowVersion bool
}

func main() {
	cfg := parseFlags()

	if cfg.ShowVersion {
		fmt.Printf("browserkit v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	// The handler only cancels; the run loop stops the session and the
	// summary is still written.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nShutting down gracefully...")
		cancel()
	}()

	if err := run(ctx, cfg); err != nil {
		cancel()
		log.Printf("Execution failed: %v", err)
		os.Exit(1)
	}
	cancel()
}

// parseFlags parses command line flags
func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.ScriptFile, "script", "", "Path to the browser script (YAML, required)")
	flag.StringVar(&cfg.ConfigFile, "config", "", "Path to the settings file (default ~/.browserkit/config.json)")
	flag.StringVar(&cfg.Mode, "mode", "", "Browser mode: headless or headed (overrides settings and environment)")
	flag.DurationVar(&cfg.Timeout, "timeout", 0, "Explicit wait timeout (overrides settings)")
	flag.StringVar(&cfg.OutputFile, "output", "browserkit-summary.json", "Output file for the run summary")
	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "browserkit - scripted browser sessions\n\n")
		fmt.Fprintf(os.Stderr, "Usage: browserkit -script <file> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
		fmt.Fprintf(os.Stderr, "  %s=headless|headed   window mode when -mode is not given\n", config.EnvMode)
		fmt.Fprintf(os.Stderr, "  %s=%s      headless when neither of the above is set\n\n", config.EnvLegacy, config.LegacyProductionValue)
		fmt.Fprintf(os.Stderr, "Examples:\n")
		fmt.Fprintf(os.Stderr, "  browserkit -script login-check.yaml\n")
		fmt.Fprintf(os.Stderr, "  browserkit -script login-check.yaml -mode headless -timeout 30s\n\n")
	}

	flag.Parse()
	return cfg
}

// sessionOptions builds the session options: stored settings first, then
// command line overrides.
func sessionOptions(cfg *CLIConfig, logger *logging.Logger) ([]browser.Option, error) {
	opts := []browser.Option{
		browser.WithSettings(config.GetBrowser()),
		browser.WithLogger(logger.With("session")),
	}

	if cfg.Mode != "" {
		mode, err := config.ParseMode(cfg.Mode)
		if err != nil {
			return nil, err
		}
		opts = append(opts, browser.WithMode(mode))
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout cannot be negative")
	}
	if cfg.Timeout > 0 {
		opts = append(opts, browser.WithTimeout(cfg.Timeout))
	}

	return opts, nil
}

func run(ctx context.Context, cfg *CLIConfig) error {
	if cfg.ScriptFile == "" {
		flag.Usage()
		return fmt.Errorf("-script is required")
	}

	s, err := script.Load(cfg.ScriptFile)
	if err != nil {
		return err
	}

	if initErr := config.Initialize(cfg.ConfigFile); initErr != nil {
		return fmt.Errorf("failed to initialize configuration: %w", initErr)
	}

	logger, logErr := logging.NewLogger("browserkit")
	if logErr != nil {
		log.Printf("Warning: %v", logErr)
	}
	defer logger.Close()

	opts, err := sessionOptions(cfg, logger)
	if err != nil {
		return err
	}

	launcher := browser.NewPlaywrightLauncher(browser.WithInstall(true))
	session, err := browser.NewSession(launcher, opts...)
	if err != nil {
		return err
	}

	log.Printf("Running script %q (%d steps, %s mode)", s.Name, len(s.Steps), session.Mode())
	if logPath := logger.LogPath(); logPath != "" {
		log.Printf("Log: %s", logPath)
	}

	return execute(ctx, s, session, logger, cfg.OutputFile)
}

// execute runs the script and writes its summary to output, also when the
// run failed or was cancelled.
func execute(ctx context.Context, s *script.Script, session *browser.Session, logger *logging.Logger, output string) error {
	summary, runErr := s.Run(ctx, session, script.WithLogger(logger.With("script")))

	if writeErr := summary.WriteJSON(output); writeErr != nil {
		logger.Errorf("failed to write summary: %v", writeErr)
		if runErr == nil {
			return writeErr
		}
	} else {
		log.Printf("Summary written to %s", output)
	}

	if runErr != nil {
		return runErr
	}

	log.Printf("Script completed successfully in %v", summary.Duration)
	return nil
}
