package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"stock-analyst/internal/analysis"
	"stock-analyst/pkg/utils"
)

// addAnalysisCommands adds indicator, pattern, and level commands.
func addAnalysisCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newAnalyzeCmd(app))
	rootCmd.AddCommand(newPatternsCmd(app))
	rootCmd.AddCommand(newLevelsCmd(app))
}

func newAnalyzeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <symbol>",
		Short: "Compute technical indicators and an aggregate recommendation",
		Long: `Compute technical indicators over a daily series and derive an
aggregate recommendation from their signals.

Supported indicators: rsi, macd, bollinger, sma, ema, stochastic, adx,
atr, obv, vwap. With no --indicators flag the full set is computed.`,
		Example: `  analyst analyze AAPL
  analyst analyze NVDA --period 6mo
  analyst analyze MSFT --indicators rsi,macd,bollinger`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()

			period, _ := cmd.Flags().GetString("period")
			names, _ := cmd.Flags().GetStringSlice("indicators")

			report, err := app.Service.ComputeIndicators(ctx, args[0], names, period)
			if err != nil {
				output.Error("Analysis failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(report)
			}

			output.Bold("%s  technical analysis (%s)", report.Symbol, period)
			output.Println()

			table := NewTable(output, "INDICATOR", "VALUE", "SIGNAL")
			for _, r := range report.Results {
				value := fmt.Sprintf("%.2f", r.Value)
				if len(r.Components) > 0 {
					value = formatComponents(r.Components)
				}
				table.AddRow(strings.ToUpper(r.Name), value, output.Signal(string(r.Signal)))
			}
			table.Render()
			output.Println()

			agg := report.Aggregate
			output.Printf("  Signals: %d buy / %d sell / %d neutral\n",
				agg.BuyCount, agg.SellCount, agg.NeutralCount)
			output.Printf("  Recommendation: %s\n", output.Recommendation(string(agg.Recommendation)))
			return nil
		},
	}

	cmd.Flags().String("period", "3mo", "lookback period")
	cmd.Flags().StringSlice("indicators", nil, "comma-separated indicator names (default: all)")
	return cmd
}

// formatComponents renders component values in a stable name order.
func formatComponents(components map[string]float64) string {
	names := make([]string, 0, len(components))
	for name := range components {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%.2f", name, components[name]))
	}
	return strings.Join(parts, " ")
}

func newPatternsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns <symbol>",
		Short: "Detect chart patterns",
		Long: `Scan a daily series for chart patterns: head and shoulders (and
inverse), double top/bottom, and ascending/descending triangles. Only
patterns at or above the confidence threshold are reported.`,
		Example: `  analyst patterns AAPL
  analyst patterns TSLA --period 6mo --patterns double_top,double_bottom`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()

			period, _ := cmd.Flags().GetString("period")
			names, _ := cmd.Flags().GetStringSlice("patterns")

			var types []analysis.PatternType
			for _, n := range names {
				types = append(types, analysis.PatternType(n))
			}

			found, err := app.Service.DetectPatterns(ctx, args[0], types, period)
			if err != nil {
				output.Error("Pattern detection failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(found)
			}

			if len(found) == 0 {
				output.Info("No patterns detected above the confidence threshold.")
				return nil
			}

			table := NewTable(output, "PATTERN", "CONFIDENCE", "TARGET", "WINDOW")
			for _, p := range found {
				table.AddRow(
					string(p.Type),
					fmt.Sprintf("%.0f%%", p.Confidence*100),
					utils.FormatUSD(p.PriceTarget),
					fmt.Sprintf("%s – %s", p.Start.Format("2006-01-02"), p.End.Format("2006-01-02")),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().String("period", "6mo", "lookback period")
	cmd.Flags().StringSlice("patterns", nil, "comma-separated pattern names (default: all)")
	return cmd
}

func newLevelsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "levels <symbol>",
		Short: "Find support and resistance levels",
		Long: `Cluster the series highs and lows into price levels. Sensitivity is
the minimum number of touches (1-10) required to report a level.`,
		Example: `  analyst levels AAPL
  analyst levels SPY --period 1y --sensitivity 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()

			period, _ := cmd.Flags().GetString("period")
			sensitivity, _ := cmd.Flags().GetInt("sensitivity")

			res, err := app.Service.FindLevels(ctx, args[0], period, sensitivity)
			if err != nil {
				output.Error("Level detection failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(res)
			}

			table := NewTable(output, "PRICE", "KIND", "STRENGTH", "TOUCHES", "LAST TESTED")
			for _, lvl := range res.Levels {
				kind := output.Green(string(lvl.Kind))
				if lvl.Kind == analysis.LevelResistance {
					kind = output.Red(string(lvl.Kind))
				}
				table.AddRow(
					utils.FormatUSD(lvl.Price),
					kind,
					fmt.Sprintf("%.1f", lvl.Strength),
					fmt.Sprintf("%d", lvl.TouchCount),
					lvl.LastTested.Format("2006-01-02"),
				)
			}
			table.Render()
			output.Println()

			if res.NearestSupport != nil {
				output.Printf("  Nearest support:    %s\n", utils.FormatUSD(res.NearestSupport.Price))
			}
			if res.NearestResistance != nil {
				output.Printf("  Nearest resistance: %s\n", utils.FormatUSD(res.NearestResistance.Price))
			}
			if res.HasRiskReward {
				output.Printf("  Risk/Reward:        %.2f\n", res.RiskReward)
			}
			return nil
		},
	}

	cmd.Flags().String("period", "6mo", "lookback period")
	cmd.Flags().Int("sensitivity", 3, "minimum touches for a level (1-10)")
	return cmd
}
