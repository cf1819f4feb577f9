package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aschepis/backscratcher/docblock/config"
	"github.com/aschepis/backscratcher/docblock/llm"
	docblocklogger "github.com/aschepis/backscratcher/docblock/logger"
	"github.com/aschepis/backscratcher/docblock/phpdoc"
	"github.com/aschepis/backscratcher/docblock/pipeline"
	"github.com/aschepis/backscratcher/docblock/report"
	"github.com/aschepis/backscratcher/docblock/synth"
)

func run(cmd *cobra.Command, path string) error {
	logger, err := docblocklogger.InitWithOptions(opts.logFile, opts.pretty)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	format, err := report.ParseFormat(opts.reportFormat)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := applyFlags(cfg, opts, cmd.Flags().Changed); err != nil {
		return err
	}

	data, err := os.ReadFile(path) //#nosec G304 -- the file to document is user input
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, key, err := config.NewLLMClient(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}

	res, err := document(ctx, cfg, client, key.Model, path, string(data), logger)
	if err != nil {
		return err
	}

	if err := emit(path, res, opts, format, os.Stdout); err != nil {
		return err
	}

	logger.Info().
		Str("file", path).
		Bool("changed", res.Changed).
		Int("inserted", res.Count(pipeline.OutcomeInserted)).
		Int("updated", res.Count(pipeline.OutcomeUpdated)).
		Int("failed", res.Count(pipeline.OutcomeFailed)).
		Msg("docblock finished")

	if opts.notify {
		sendNotification(path, res, logger)
	}
	return nil
}

// applyFlags overrides configuration with the flags the user actually set.
func applyFlags(cfg *config.Config, o options, changed func(string) bool) error {
	if changed("provider") || changed("model") {
		provider := o.provider
		if provider == "" {
			prefs := cfg.Preferences()
			if len(prefs) == 0 {
				return fmt.Errorf("--model needs --provider when no providers are configured")
			}
			provider = prefs[0].Provider
		}
		cfg.UseProvider(provider, o.model)
	}
	if changed("concurrency") {
		cfg.Concurrency = o.concurrency
	}
	if changed("timeout") {
		cfg.Timeout = o.timeout
	}
	if changed("max-attempts") {
		cfg.Retry.MaxAttempts = o.maxAttempts
	}
	if changed("locator") {
		cfg.Locator = o.locator
	}
	if changed("protected") {
		cfg.Visibility.Protected = o.protected
	}
	return cfg.Validate()
}

func newLocator(name string) (phpdoc.Locator, error) {
	switch name {
	case "", "scanner":
		return phpdoc.NewScanner(), nil
	case "treesitter":
		return phpdoc.NewTreeSitterLocator()
	default:
		return nil, fmt.Errorf("unknown locator %q", name)
	}
}

// document runs the pipeline over src with a synthesizer built on client.
func document(ctx context.Context, cfg *config.Config, client llm.Client, model, path, src string, logger zerolog.Logger) (*pipeline.Result, error) {
	locator, err := newLocator(cfg.Locator)
	if err != nil {
		return nil, err
	}

	synthesizer := synth.NewClient(client, synth.Config{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
		MaxDelay:    cfg.Retry.MaxDelay,
		Model:       model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}, logger)

	p := pipeline.New(locator, synthesizer, pipeline.Options{
		Concurrency: cfg.Concurrency,
		Timeout:     cfg.Timeout,
		Protected:   pipeline.VisibilityPolicy(cfg.Visibility.Protected),
		Private:     pipeline.VisibilityPolicy(cfg.Visibility.Private),
	}, logger)

	return p.Run(ctx, path, src), nil
}

// emit writes the rewritten source and the report. The source file is
// written only when the text changed and neither --dry-run nor --stdout is set.
func emit(path string, res *pipeline.Result, o options, format report.Format, stdout io.Writer) error {
	reportOut := stdout
	if o.stdout {
		if _, err := io.WriteString(stdout, res.Text); err != nil {
			return fmt.Errorf("failed to write source: %w", err)
		}
		reportOut = os.Stderr
	} else if res.Changed && !o.dryRun {
		if err := writeSource(path, res.Text); err != nil {
			return err
		}
	}

	if o.reportPath != "" {
		f, err := os.Create(o.reportPath) //#nosec G304 -- report path is user input
		if err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		defer f.Close() //nolint:errcheck // close error after a successful write has no remedy
		reportOut = f
	}

	if err := report.Write(reportOut, res, format); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// writeSource replaces the file contents, keeping its permissions.
func writeSource(path, text string) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(text), mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func sendNotification(path string, res *pipeline.Result, logger zerolog.Logger) {
	msg := fmt.Sprintf("%d inserted, %d updated, %d failed",
		res.Count(pipeline.OutcomeInserted),
		res.Count(pipeline.OutcomeUpdated),
		res.Count(pipeline.OutcomeFailed))
	if err := beeep.Notify("docblock: "+path, msg, ""); err != nil {
		logger.Warn().Err(err).Msg("Failed to send desktop notification")
	}
}
