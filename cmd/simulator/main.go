package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/aristath/quantsim/internal/config"
	"github.com/aristath/quantsim/internal/domain"
	"github.com/aristath/quantsim/internal/modules/allocation"
	"github.com/aristath/quantsim/internal/modules/forecast"
	"github.com/aristath/quantsim/internal/modules/ranking"
	"github.com/aristath/quantsim/internal/modules/regime"
	"github.com/aristath/quantsim/internal/modules/risk"
	"github.com/aristath/quantsim/internal/modules/scoring"
	"github.com/aristath/quantsim/internal/modules/simulation"
	"github.com/aristath/quantsim/internal/modules/universe"
	"github.com/aristath/quantsim/pkg/logger"
)

// historyDays is the length of the synthetic seed history each symbol
// gets before the Monte Carlo extension.
const historyDays = 120

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	log.Info().Uint64("seed", cfg.RandomSeed).Msg("Starting simulation")

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Simulation failed")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	src := rand.NewSource(cfg.RandomSeed)

	// Seed histories are synthetic random walks; the Monte Carlo median
	// forecast extends each one forward for the forward-test window.
	symbols := makeSymbols(18)
	histories := seedHistories(symbols, src)

	forecaster := forecast.New(forecast.Config{
		Days:        cfg.ForecastDays,
		Simulations: cfg.MCSimulations,
	}, src, log)

	extended := make(map[string][]float64, len(symbols))
	for _, symbol := range symbols {
		median, err := forecaster.Median(histories[symbol])
		if err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("Dropping symbol from forecast")
			continue
		}
		extended[symbol] = append(histories[symbol], median...)
	}
	if len(extended) == 0 {
		return fmt.Errorf("no symbol has enough history to forecast")
	}

	prices, snapshot, err := buildInputs(extended, src)
	if err != nil {
		return err
	}

	log.Info().
		Int("symbols", len(extended)).
		Int("days", prices.Len()).
		Msg("Price matrix materialized")

	riskMgr := risk.NewManager(risk.Config{
		TargetVolatility: cfg.TargetVolatility,
		MaxDrawdown:      cfg.MaxDrawdown,
	}, log)

	universeMgr := universe.NewManager(universe.Config{
		MinPrice:             cfg.MinPrice,
		MaxPrice:             cfg.MaxPrice,
		MinADV:               cfg.MinADV,
		MaxADV:               cfg.MaxADV,
		RefreshDays:          cfg.UniverseRefreshDays,
		RecentlyHeldCapacity: cfg.RecentlyHeldCapacity,
		RecentlySoldCapacity: cfg.RecentlySoldCapacity,
	}, log)

	scoringCfg := scoring.DefaultConfig()
	scoringCfg.Lookback = cfg.Lookback

	loop := simulation.NewLoop(
		simulation.Config{
			InitialCapital:     cfg.InitialCapital,
			TransactionCost:    cfg.TransactionCost,
			Lookback:           cfg.Lookback,
			UniverseSampleSize: cfg.UniverseSampleSize,
		},
		universeMgr,
		regime.DefaultConfig(),
		scoring.NewEngine(scoringCfg, log),
		ranking.Config{TopN: cfg.TopN, BottomN: cfg.BottomN},
		allocation.NewEngine(allocation.Config{
			MaxPositions:  cfg.MaxPositions,
			TargetWeight:  cfg.TargetWeight,
			MinTradeValue: cfg.MinTradeValue,
			Rebalance:     true,
		}, riskMgr, log),
		riskMgr,
		src,
		log,
	)

	result, err := loop.Run(prices, snapshot)
	if err != nil {
		return err
	}

	report(result, prices, log)
	return nil
}

// seedHistories builds one log-normal random-walk price history per
// symbol, with drift and volatility drawn once per symbol.
func seedHistories(symbols []string, src rand.Source) map[string][]float64 {
	rng := rand.New(src)
	histories := make(map[string][]float64, len(symbols))

	for _, symbol := range symbols {
		start := 2 + rng.Float64()*118 // some symbols land below the price filter
		drift := (rng.Float64() - 0.45) * 0.004
		vol := 0.01 + rng.Float64()*0.04

		step := distuv.Normal{Mu: drift, Sigma: vol, Src: src}
		series := make([]float64, historyDays)
		price := start
		for i := range series {
			price *= math.Exp(step.Rand())
			series[i] = price
		}
		histories[symbol] = series
	}

	return histories
}

// buildInputs converts extended per-symbol series into the immutable
// price matrix and universe snapshot the core consumes.
func buildInputs(extended map[string][]float64, src rand.Source) (*domain.PriceMatrix, universe.Snapshot, error) {
	days := 0
	for _, series := range extended {
		if len(series) > days {
			days = len(series)
		}
	}

	start := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, days)
	rows := make([]map[string]float64, days)
	for day := range rows {
		dates[day] = start.AddDate(0, 0, day)
		row := make(map[string]float64)
		for symbol, series := range extended {
			if day < len(series) {
				row[symbol] = series[day]
			}
		}
		rows[day] = row
	}

	prices, err := domain.NewPriceMatrix(dates, rows)
	if err != nil {
		return nil, nil, err
	}

	rng := rand.New(src)
	snapshot := make(universe.Snapshot, 0, len(extended))
	for _, symbol := range prices.Symbols() {
		series := extended[symbol]
		snapshot = append(snapshot, universe.Listing{
			Ticker: symbol,
			Price:  series[len(series)-1],
			ADV:    500_000 + rng.Float64()*9_500_000,
		})
	}

	return prices, snapshot, nil
}

func makeSymbols(n int) []string {
	symbols := make([]string, n)
	for i := range symbols {
		symbols[i] = fmt.Sprintf("SYM%02d", i+1)
	}
	return symbols
}

// report prints the final portfolio, trade log and metrics.
func report(result *simulation.Result, prices *domain.PriceMatrix, log zerolog.Logger) {
	lastRow := prices.Row(prices.Len() - 1)

	fmt.Println("\n--- FINAL PORTFOLIO ---")
	positions := tablewriter.NewWriter(os.Stdout)
	positions.Header("Symbol", "Shares", "Last Price", "Value")
	held := result.Portfolio.Positions()
	symbols := make([]string, 0, len(held))
	for symbol := range held {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	for _, symbol := range symbols {
		shares := held[symbol]
		price := lastRow[symbol]
		positions.Append(
			symbol,
			fmt.Sprintf("%d", shares),
			fmt.Sprintf("%.2f", price),
			fmt.Sprintf("%.2f", float64(shares)*price),
		)
	}
	positions.Render()

	fmt.Println("\n--- TRADE LOG ---")
	trades := tablewriter.NewWriter(os.Stdout)
	trades.Header("Date", "Symbol", "Side", "Quantity", "Price")
	for _, trade := range result.Trades {
		trades.Append(
			trade.Date.Format("2006-01-02"),
			trade.Symbol,
			string(trade.Side),
			fmt.Sprintf("%d", trade.Quantity),
			fmt.Sprintf("%.2f", trade.Price),
		)
	}
	trades.Render()

	log.Info().
		Float64("cash", result.Portfolio.Cash()).
		Float64("final_equity", result.EquityCurve[len(result.EquityCurve)-1]).
		Float64("sharpe", result.Metrics.Sharpe).
		Float64("max_drawdown", result.Metrics.MaxDrawdown).
		Int("trades", len(result.Trades)).
		Msg("Simulation complete")
}
