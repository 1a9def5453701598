package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/moznion/go-optional"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/plantrade/internal/backtest/engine"
	engine_v1 "github.com/rxtech-lab/plantrade/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/plantrade/internal/storage"
	"github.com/rxtech-lab/plantrade/internal/types"
	"github.com/rxtech-lab/plantrade/pkg/marketdata"
)

// filePlanSource serves one plan loaded from disk. The plan applies to its own
// date, or to every requested day when it carries no date.
type filePlanSource struct {
	plan types.Plan
	bar  *progressbar.ProgressBar
}

func (s *filePlanSource) ProducePlan(ctx context.Context, symbol string, date time.Time) (optional.Option[types.Plan], error) {
	if s.bar != nil {
		_ = s.bar.Add(1)
	}

	day := date.Format("2006-01-02")
	if s.plan.Date != "" && s.plan.Date != day {
		return optional.None[types.Plan](), nil
	}

	plan := s.plan
	plan.Date = day
	plan.Symbol = symbol

	return optional.Some(plan), nil
}

func loadPlan(path string) (types.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Plan{}, fmt.Errorf("failed to read plan file: %w", err)
	}

	var plan types.Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return types.Plan{}, fmt.Errorf("failed to parse plan file: %w", err)
	}

	return plan, nil
}

func businessDays(start, end time.Time) int {
	count := 0
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if day.Weekday() != time.Saturday && day.Weekday() != time.Sunday {
			count++
		}
	}

	return count
}

func backtestAction(ctx context.Context, cmd *cli.Command) error {
	symbol := cmd.String("symbol")
	start := cmd.Timestamp("start")
	end := cmd.Timestamp("end")
	planPath := cmd.String("plan")
	configPath := cmd.String("config")
	resultsFolder := cmd.String("results")

	configYAML := ""
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		configYAML = string(data)
	}

	backtester := engine_v1.NewBacktestEngineV1()
	if err := backtester.Initialize(configYAML); err != nil {
		return fmt.Errorf("failed to initialize backtest engine: %w", err)
	}

	providerType := marketdata.ProviderType(cmd.String("provider"))
	if providerType != marketdata.ProviderPolygon {
		return fmt.Errorf("provider %q cannot be configured from the command line, use %q",
			providerType, marketdata.ProviderPolygon)
	}

	provider, err := marketdata.NewProvider(providerType, os.Getenv("POLYGON_API_KEY"))
	if err != nil {
		return fmt.Errorf("failed to create data provider: %w", err)
	}

	if err := backtester.SetDataProvider(provider); err != nil {
		return err
	}

	plan, err := loadPlan(planPath)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(businessDays(start, end),
		progressbar.OptionSetDescription(fmt.Sprintf("Backtesting %s", symbol)),
		progressbar.OptionShowCount(),
	)

	var source engine.PlanSource = &filePlanSource{plan: plan, bar: bar}

	results, err := backtester.RunRange(ctx, symbol, start, end, source)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	store := storage.NewJSONStorage(resultsFolder)

	for _, result := range results {
		path := filepath.Join(resultsFolder, fmt.Sprintf("%s_%s.yaml", symbol, result.Date))
		if err := os.MkdirAll(resultsFolder, 0755); err != nil {
			return fmt.Errorf("failed to create results folder: %w", err)
		}

		if err := types.WriteBacktestResult(path, result); err != nil {
			return err
		}

		if _, err := store.Save("backtest", symbol, result.Date, result); err != nil {
			return err
		}
	}

	if v1, ok := backtester.(*engine_v1.BacktestEngineV1); ok {
		if err := v1.State().Write(filepath.Join(resultsFolder, "ledger")); err != nil {
			return err
		}
	}

	log.Printf("Completed %d day(s) for %s, results in %s", len(results), symbol, resultsFolder)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Replay a trading plan against historical market data",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "symbol",
				Aliases:  []string{"t"},
				Usage:    "Stock ticker symbol",
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
				Value:   time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.StringFlag{
				Name:     "plan",
				Aliases:  []string{"p"},
				Usage:    "Path to the plan YAML file",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the engine config YAML file",
			},
			&cli.StringFlag{
				Name:  "provider",
				Usage: "Market data provider (polygon)",
				Value: string(marketdata.ProviderPolygon),
			},
			&cli.StringFlag{
				Name:    "results",
				Aliases: []string{"r"},
				Usage:   "Folder for per-day result files and ledger export",
				Value:   "./results",
			},
		},
		Action: backtestAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
