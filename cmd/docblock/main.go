package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// options holds the command-line flags.
type options struct {
	configPath   string
	provider     string
	model        string
	concurrency  int
	timeout      time.Duration
	maxAttempts  int
	dryRun       bool
	stdout       bool
	reportPath   string
	reportFormat string
	locator      string
	protected    string
	logFile      string
	pretty       bool
	notify       bool
}

var opts options

var rootCmd = &cobra.Command{
	Use:   "docblock [flags] <file.php>",
	Short: "Generate PHPDoc blocks for the methods of a PHP file",
	Long: `Generate PHPDoc blocks for the methods of a PHP file.

Every public method without a docblock gets one. Methods whose existing
docblock the model judges vague or incomplete have it replaced. Everything
else in the file is left untouched, and the file is written at most once.

Examples:
  docblock src/Service/Mailer.php
  docblock --dry-run --report-format=yaml src/Service/Mailer.php
  docblock --provider=ollama --model=qwen2.5-coder --stdout src/Foo.php`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, args[0])
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "Path to config file (default: $DOCBLOCK_CONFIG or ~/.docblock/config.yaml)")
	f.StringVar(&opts.provider, "provider", "", "LLM provider to use (anthropic, openai, gemini, ollama)")
	f.StringVar(&opts.model, "model", "", "Model name for the chosen provider")
	f.IntVar(&opts.concurrency, "concurrency", 0, "Maximum in-flight generation requests")
	f.DurationVar(&opts.timeout, "timeout", 0, "Overall deadline for generation (0 keeps the configured value)")
	f.IntVar(&opts.maxAttempts, "max-attempts", 0, "Attempts per method before giving up")
	f.BoolVar(&opts.dryRun, "dry-run", false, "Do not write the file; print the report")
	f.BoolVar(&opts.stdout, "stdout", false, "Print the rewritten source to stdout instead of writing the file")
	f.StringVar(&opts.reportPath, "report", "", "Write the report to this path instead of the terminal")
	f.StringVar(&opts.reportFormat, "report-format", "markdown", "Report format (markdown, yaml, json)")
	f.StringVar(&opts.locator, "locator", "", "Method locator backend (scanner, treesitter)")
	f.StringVar(&opts.protected, "protected", "", "What to do with protected methods (hide, report, document)")
	f.StringVar(&opts.logFile, "logfile", "", "Path to log file. If not set, logs to stderr")
	f.BoolVar(&opts.pretty, "pretty", false, "Use pretty console output (only valid when logfile is not set)")
	f.BoolVar(&opts.notify, "notify", false, "Send a desktop notification when done")
	rootCmd.MarkFlagsMutuallyExclusive("logfile", "pretty")
}

func main() {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
