package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/JasonZhangjc/stock-query/internal/config"
	"github.com/JasonZhangjc/stock-query/internal/domain"
	"github.com/JasonZhangjc/stock-query/internal/quote"
	"github.com/JasonZhangjc/stock-query/internal/store"
	"github.com/JasonZhangjc/stock-query/internal/tui"
	"github.com/JasonZhangjc/stock-query/internal/util"
	"github.com/JasonZhangjc/stock-query/internal/watch"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stock-query",
	Short: "Terminal dashboard for a watch list of stock quotes",
	Long: `stock-query tracks a list of stock codes and refreshes their quotes
from a remote feed in a terminal dashboard.

Keys:
  n  add a code        d  delete selected
  u  move selected up  j  move selected down
  r  refresh now       q  quit
  up/down or mouse click to select`,
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

var quoteCmd = &cobra.Command{
	Use:   "quote [codes...]",
	Short: "Fetch quotes once and print them as a table",
	Long: `Fetch quotes once for the given codes, or for the watch list when no
codes are given, and print them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuote(cmd.Context(), cmd.OutOrStdout(), args)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <out.parquet>",
	Short: "Export the quote log to a Parquet file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

var (
	flagConfig string
	flagLatest bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Config file (default ~/.config/stock-query/config.yaml)")
	exportCmd.Flags().BoolVar(&flagLatest, "latest", false, "Export only the most recent quote per code")

	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(exportCmd)
}

// loadConfig reads --config, or the default location if it exists.
func loadConfig() (*config.Config, error) {
	if flagConfig != "" {
		return config.Load(flagConfig)
	}
	return config.LoadOptional(config.DefaultPath())
}

func runTUI(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logFile, err := util.OpenLogFile(config.ExpandHome(cfg.Logging.File))
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()
	logger := util.NewLogger(logFile, cfg.Logging.Level)
	util.SetDefault(logger)

	provider, err := quote.New(cfg)
	if err != nil {
		return err
	}
	logger.Info("quote provider", "provider", cfg.Feed.Provider, "batch_size", cfg.Feed.BatchSize)

	opts := watch.Options{
		Provider:   provider,
		Codes:      store.NewCodeFile(config.ExpandHome(cfg.Watchlist.Path)),
		Logger:     logger,
		EveryTicks: cfg.Refresh.EveryTicks,
	}
	if cfg.QuoteLog.Path != "" {
		ql, err := store.OpenQuoteLog(config.ExpandHome(cfg.QuoteLog.Path))
		if err != nil {
			logger.Warn("quote log disabled", "path", cfg.QuoteLog.Path, "error", err)
		} else {
			defer ql.Close()
			opts.Recorder = ql
		}
	}

	state := watch.New(opts)
	if err := state.Load(); err != nil {
		logger.Warn("starting with an empty watch list", "error", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(
		tui.New(ctx, tui.Options{
			State:   state,
			Logger:  logger,
			Tick:    cfg.Refresh.Tick,
			Version: "v" + version,
		}),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return err
	}
	logger.Info("exited")
	return nil
}

func runQuote(ctx context.Context, w io.Writer, codes []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	util.SetDefault(util.NewLogger(os.Stderr, cfg.Logging.Level))

	if len(codes) == 0 {
		codes, err = store.NewCodeFile(config.ExpandHome(cfg.Watchlist.Path)).Load()
		if err != nil {
			return fmt.Errorf("reading watch list: %w", err)
		}
	}
	if len(codes) == 0 {
		return errors.New("no codes given and the watch list is empty")
	}

	provider, err := quote.New(cfg)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Feed.Timeout+5*time.Second)
	defer cancel()

	quotes, err := provider.Fetch(ctx, codes)
	if err != nil {
		return fmt.Errorf("fetching quotes: %w", err)
	}

	stocks := make([]domain.Stock, len(codes))
	for i, c := range codes {
		stocks[i] = domain.NewStock(c)
		if q, ok := quotes[c]; ok {
			stocks[i].Apply(q)
		}
	}
	fmt.Fprintln(w, quoteTable(stocks))
	return nil
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	riseStyle   = cellStyle.Foreground(lipgloss.Color("9"))
	fallStyle   = cellStyle.Foreground(lipgloss.Color("10"))
)

// quoteTable renders stocks with the change column coloured rising red,
// falling green.
func quoteTable(stocks []domain.Stock) string {
	rows := make([][]string, len(stocks))
	for i, s := range stocks {
		rows[i] = []string{
			s.Code, s.Title,
			tui.FormatPrice(s.Price), tui.FormatPercent(s.Percent),
			tui.FormatPrice(s.Open), tui.FormatPrice(s.PrevClose),
			tui.FormatPrice(s.High), tui.FormatPrice(s.Low),
		}
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("CODE", "NAME", "CURRENT", "UP_DOWN", "OPEN", "YESTERDAY_CLOSE", "HIGH", "LOW").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 3 && row >= 0 && row < len(stocks) {
				switch p := stocks[row].Percent; {
				case p > 0:
					return riseStyle
				case p < 0:
					return fallStyle
				}
			}
			return cellStyle
		}).
		String()
}

func runExport(ctx context.Context, w io.Writer, out string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	util.SetDefault(util.NewLogger(os.Stderr, cfg.Logging.Level))
	if cfg.QuoteLog.Path == "" {
		return errors.New("quote_log.path is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ql, err := store.OpenQuoteLog(config.ExpandHome(cfg.QuoteLog.Path))
	if err != nil {
		return fmt.Errorf("opening quote log: %w", err)
	}
	defer ql.Close()

	var rows []store.QuoteRow
	if flagLatest {
		rows, err = ql.Latest(ctx)
	} else {
		rows, err = ql.All(ctx)
	}
	if err != nil {
		return fmt.Errorf("reading quote log: %w", err)
	}

	start := time.Now()
	if err := store.ExportParquet(out, rows); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	slog.Info("exported quote log", "rows", len(rows), "path", out, "took", time.Since(start))
	fmt.Fprintf(w, "wrote %d rows to %s\n", len(rows), out)
	return nil
}
