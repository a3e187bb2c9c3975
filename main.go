package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"espiwatch/internal/analyst"
	"espiwatch/internal/browser"
	"espiwatch/internal/config"
	"espiwatch/internal/finance"
	"espiwatch/internal/formatter"
	"espiwatch/internal/monitor"
	"espiwatch/internal/notify"
	"espiwatch/internal/report"
	"espiwatch/internal/scraper"
	"espiwatch/internal/sites/espi"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	outputFormat string
	outputFile   string
	logLevel     string
	waitFor      string
	waitTarget   string
	timeout      time.Duration
	site         string
	page         int
	keywords     []string
	showUI       bool
	proxyURL     string

	section bool
	debug   bool
	prompt  bool

	configPath string
	envPath    string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:     "espiwatch [TARGET]",
		Short:   "ESPI/EBI disclosure watcher and financial data extractor",
		Version: version,
		Long: `espiwatch reads disclosures published through the Polish ESPI/EBI system.
It renders pages in a headless browser, extracts the selected financial data
of periodic reports, compares both periods and computes financial ratios. The
watch command polls the disclosure list and sends Telegram alerts with an AI
assessment for watched companies.`,
		Example: `  # List the newest disclosures
  espiwatch

  # Third page of the list as CSV
  espiwatch --page 2 -o list.csv

  # Extract financial data from a periodic report
  espiwatch --site espi.report https://espiebi.pap.pl/node/123456

  # Current report as Markdown
  espiwatch --site espi.communique -f markdown https://espiebi.pap.pl/node/123457

  # Run the extractor on a saved text dump
  espiwatch extract --section report.txt

  # Watch the list and send Telegram alerts
  espiwatch watch --config espiwatch.yaml`,
		Args:              cobra.MaximumNArgs(1),
		RunE:              run,
		SilenceUsage:      true,
		PersistentPreRunE: setupLogger,
	}

	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "text", "Output format (html, text, markdown, json, csv)")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "Output file path (format inferred from extension if -f not specified)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.Flags().StringVarP(&waitFor, "wait-for", "w", "load", "Wait strategy (load, element, time)")
	rootCmd.Flags().StringVarP(&waitTarget, "wait-target", "T", "", "Wait target (selector for 'element' strategy, milliseconds for 'time' strategy)")
	rootCmd.Flags().DurationVarP(&timeout, "timeout", "t", 30*time.Second, "Page load timeout")
	rootCmd.Flags().StringVar(&site, "site", "espi", "Scraper to use (espi, espi.report, espi.communique)")
	rootCmd.Flags().IntVar(&page, "page", 0, "Disclosure list page when no target is given")
	rootCmd.Flags().StringSliceVar(&keywords, "keyword", espi.DefaultKeywords, "Title keywords marking a periodic report")
	rootCmd.Flags().BoolVar(&showUI, "showui", false, "Show browser UI (disable headless mode)")
	rootCmd.Flags().StringVarP(&proxyURL, "proxy", "p", os.Getenv("ESPIWATCH_PROXY"), "Proxy URL (e.g. http://127.0.0.1:7890), defaults to ESPIWATCH_PROXY env var")

	extractCmd := &cobra.Command{
		Use:   "extract [FILE|-]",
		Short: "Extract financial data from a disclosure text dump",
		Long: `Runs the line-item extractor on plain text, one table cell per line, as
produced by copying a disclosure page. Reads stdin when FILE is "-" or omitted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExtract,
	}
	extractCmd.Flags().BoolVar(&section, "section", false, "Cut the selected financial data section before extracting")
	extractCmd.Flags().BoolVar(&debug, "debug", false, "Log the extraction trace")
	extractCmd.Flags().BoolVar(&prompt, "prompt", false, "Print the long-form analysis prompt instead of the report")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the disclosure list and send Telegram alerts",
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}
	watchCmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file (yaml, toml, json); environment variables override it")
	watchCmd.Flags().StringVar(&envPath, "env-file", config.DefaultEnvFile, "Env file loaded before the environment is read")

	rootCmd.AddCommand(extractCmd, watchCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// setupLogger attaches a zerolog logger to the command context
func setupLogger(cmd *cobra.Command, _ []string) error {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %s", logLevel)
	}
	if debug {
		level = zerolog.DebugLevel
	}

	var out io.Writer = os.Stderr
	if isatty.IsTerminal(os.Stderr.Fd()) {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}
	}
	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	cmd.SetContext(logger.WithContext(cmd.Context()))
	return nil
}

func run(cmd *cobra.Command, args []string) error {
	target := ""
	if len(args) > 0 {
		target = args[0]
	}

	if err := resolveFormat(); err != nil {
		return err
	}
	if err := validateFlags(); err != nil {
		return err
	}

	opts := scraper.Options{
		WaitFor:    waitFor,
		WaitTarget: waitTarget,
		Timeout:    timeout,
		ShowUI:     showUI,
		ProxyURL:   proxyURL,
		Keywords:   keywords,
		Extra: map[string]string{
			"page": strconv.Itoa(page),
		},
	}

	s, ok := scraper.Get(site)
	if !ok {
		return fmt.Errorf("unknown site: %s (available: %s)", site, strings.Join(scraper.Names(), ", "))
	}
	if target == "" && site != "espi" {
		return fmt.Errorf("site %s requires a target URL", site)
	}

	content, err := s.Scrape(cmd.Context(), target, opts)
	if err != nil {
		return fmt.Errorf("failed to scrape: %w", err)
	}
	return writeContent(content)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if err := resolveFormat(); err != nil {
		return err
	}

	name := "-"
	if len(args) > 0 {
		name = args[0]
	}
	raw, err := readInput(name)
	if err != nil {
		return err
	}

	text := string(raw)
	if section {
		text = finance.SelectedDataSection(text)
		if text == "" {
			zerolog.Ctx(cmd.Context()).Warn().Str("heading", finance.SelectedDataHeading).Msg("section heading not found")
		}
	}

	res := finance.Extract(text)
	ratios := finance.ComputeRatios(res.Current, res.Prior)

	logger := zerolog.Ctx(cmd.Context())
	for _, line := range res.Trace {
		logger.Debug().Msg(line)
	}
	logger.Info().Int("metrics", len(res.Current)).Int("ratios", len(ratios)).Msg("extraction finished")

	if prompt {
		d := &espi.Disclosure{
			Title:      name,
			Body:       strings.TrimSpace(string(raw)),
			Financials: res,
			Ratios:     ratios,
		}
		return writeString(analyst.FullAnalysisPrompt(d))
	}

	title := "Raport finansowy"
	if name != "-" {
		title = name
	}
	return writeContent(report.NewFinancialReport(report.Header{Title: title}, res, ratios, ""))
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(configPath, envPath)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("log-level") && cfg.Log.Level != "" {
		level, err := zerolog.ParseLevel(cfg.Log.Level)
		if err != nil {
			return fmt.Errorf("invalid log level: %s", cfg.Log.Level)
		}
		ctx = zerolog.Ctx(ctx).Level(level).WithContext(ctx)
	}
	logger := zerolog.Ctx(ctx)

	b, err := browser.New(browser.Config{
		ProxyURL: cfg.Browser.Proxy,
		Headless: !cfg.Browser.ShowUI,
	})
	if err != nil {
		return fmt.Errorf("failed to create browser: %w", err)
	}
	defer b.Close()

	client := espi.NewClient(b, scraper.Options{Timeout: cfg.HTTP.Timeout})
	tg := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)

	var assessor monitor.Analyst
	if cfg.LLM.APIKey != "" {
		g, err := analyst.NewGemini(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
		if err != nil {
			return err
		}
		assessor = g
	} else {
		logger.Warn().Msg("GEMINI_API_KEY not set, alerts will carry no assessment")
	}

	if err := tg.Send(ctx, notify.StartupMessage); err != nil {
		logger.Warn().Err(err).Msg("failed to send startup message")
	}

	m := monitor.New(monitor.Config{
		ListURL:   cfg.Watch.ListURL,
		Companies: cfg.Watch.Companies,
		Keywords:  cfg.Watch.Keywords,
		Interval:  cfg.Watch.Interval,
		Tuning: analyst.Tuning{
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
		},
	}, client, assessor, tg)

	logger.Info().Strs("companies", cfg.Watch.Companies).Msg("watching ESPI")
	return m.Run(ctx)
}

// resolveFormat infers the output format from the output file extension when
// -f was left at its default
func resolveFormat() error {
	if outputFile != "" && outputFormat == "text" {
		if inferred := formatter.InferFromExtension(outputFile); inferred != "" {
			outputFormat = inferred
		}
	}
	if !formatter.Valid(outputFormat) {
		return fmt.Errorf("invalid output format: %s", outputFormat)
	}
	return nil
}

func validateFlags() error {
	validStrategies := map[string]bool{
		"load":    true,
		"element": true,
		"time":    true,
	}
	if !validStrategies[waitFor] {
		return fmt.Errorf("invalid wait strategy: %s", waitFor)
	}

	if waitFor == "element" && waitTarget == "" {
		return fmt.Errorf("--wait-target is required when using 'element' wait strategy")
	}

	if waitFor == "time" && waitTarget == "" {
		return fmt.Errorf("--wait-target is required when using 'time' wait strategy")
	}

	if page < 0 {
		return fmt.Errorf("invalid page: %d", page)
	}
	return nil
}

func readInput(name string) ([]byte, error) {
	if name == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return b, nil
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return b, nil
}

func writeContent(content scraper.Content) error {
	out, err := formatter.Format(content, outputFormat)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return writeString(out)
}

func writeString(out string) error {
	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(out), 0644); err != nil {
			return fmt.Errorf("failed to write to file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Output written to: %s\n", outputFile)
		return nil
	}
	fmt.Println(out)
	return nil
}
