package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"stock-analyst/pkg/utils"
)

// addMarketDataCommands adds quote and history commands.
func addMarketDataCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newQuoteCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
}

func newQuoteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "quote <symbol>",
		Short: "Get the current quote for a symbol",
		Example: `  analyst quote AAPL
  analyst quote NVDA --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()

			quote, err := app.Service.GetQuote(ctx, args[0])
			if err != nil {
				output.Error("Failed to get quote: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(quote)
			}

			output.Bold("%s  %s", quote.Symbol, utils.FormatUSD(quote.Price))
			output.Printf("  Change:     %s (%s)\n", output.FormatChange(quote.Change), output.FormatPercent(quote.ChangePercent))
			if quote.Bid > 0 || quote.Ask > 0 {
				output.Printf("  Bid/Ask:    %s x %d / %s x %d\n",
					utils.FormatUSD(quote.Bid), quote.BidSize,
					utils.FormatUSD(quote.Ask), quote.AskSize)
			}
			output.Printf("  Day Range:  %s - %s\n", utils.FormatUSD(quote.Low), utils.FormatUSD(quote.High))
			output.Printf("  Prev Close: %s\n", utils.FormatUSD(quote.PrevClose))
			output.Printf("  Volume:     %s\n", utils.FormatVolume(quote.Volume))
			output.Dim("  As of %s", quote.Timestamp.Format(time.RFC1123))
			return nil
		},
	}
}

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <symbol>",
		Short: "Get historical OHLCV bars for a symbol",
		Example: `  analyst history AAPL
  analyst history MSFT --period 6mo --interval 1d
  analyst history TSLA --period 5d --interval 15m --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()

			period, _ := cmd.Flags().GetString("period")
			interval, _ := cmd.Flags().GetString("interval")

			history, err := app.Service.GetHistory(ctx, args[0], period, interval)
			if err != nil {
				output.Error("Failed to get history: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(history)
			}

			s := history.Summary
			output.Bold("%s  %d bars  %s to %s", s.Symbol, s.BarCount,
				s.Start.Format("2006-01-02"), s.End.Format("2006-01-02"))
			output.Printf("  Highest close: %s\n", utils.FormatUSD(s.HighestClose))
			output.Printf("  Lowest close:  %s\n", utils.FormatUSD(s.LowestClose))
			output.Printf("  Total volume:  %s\n", utils.FormatVolume(s.TotalVolume))
			output.Println()

			table := NewTable(output, "DATE", "OPEN", "HIGH", "LOW", "CLOSE", "VOLUME")
			bars := history.Bars
			// Show only the tail for long series.
			const maxRows = 20
			if len(bars) > maxRows {
				output.Dim("  (last %d of %d bars)", maxRows, len(bars))
				bars = bars[len(bars)-maxRows:]
			}
			for _, b := range bars {
				table.AddRow(
					b.Timestamp.Format("2006-01-02 15:04"),
					fmt.Sprintf("%.2f", b.Open),
					fmt.Sprintf("%.2f", b.High),
					fmt.Sprintf("%.2f", b.Low),
					fmt.Sprintf("%.2f", b.Close),
					utils.FormatVolume(b.Volume),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().String("period", "1mo", "lookback period (1d 5d 1mo 3mo 6mo 1y 2y 5y max)")
	cmd.Flags().String("interval", "1d", "bar interval (1m 5m 15m 30m 1h 1d 1wk)")
	return cmd
}
