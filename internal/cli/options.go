package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stock-analyst/internal/models"
	"stock-analyst/pkg/utils"
)

// addOptionsCommands adds the option pricing, chain, and scan commands.
func addOptionsCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Options pricing and flow analysis",
	}
	cmd.AddCommand(newOptionPriceCmd(app))
	cmd.AddCommand(newOptionChainCmd(app))
	cmd.AddCommand(newOptionUnusualCmd(app))
	rootCmd.AddCommand(cmd)
}

func parseOptionType(s string) (models.OptionType, error) {
	switch strings.ToUpper(s) {
	case "CALL", "C":
		return models.OptionCall, nil
	case "PUT", "P":
		return models.OptionPut, nil
	case "":
		return "", nil
	default:
		return "", fmt.Errorf("unknown option type %q (expected CALL or PUT)", s)
	}
}

func newOptionPriceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price <symbol>",
		Short: "Price a single option contract with Greeks",
		Example: `  analyst options price AAPL --strike 190 --expiry 2026-09-18 --type call
  analyst options price SPY --strike 550 --expiry 2026-10-16 --type put --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()

			strike, _ := cmd.Flags().GetFloat64("strike")
			expiry, _ := cmd.Flags().GetString("expiry")
			typeStr, _ := cmd.Flags().GetString("type")

			optType, err := parseOptionType(typeStr)
			if err != nil {
				output.Error("%v", err)
				return err
			}

			quote, err := app.Service.PriceOption(ctx, args[0], strike, expiry, optType)
			if err != nil {
				output.Error("Pricing failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(quote)
			}

			output.Bold("%s %s $%.2f %s", quote.Underlying, quote.Expiry.Format("2006-01-02"), quote.Strike, quote.Type)
			output.Printf("  Spot:        %s\n", utils.FormatUSD(quote.SpotPrice))
			output.Printf("  Theoretical: %s  (IV %.0f%%)\n", utils.FormatUSD(quote.TheoreticalPrice), quote.IV*100)
			output.Println()
			output.Bold("Greeks")
			output.Printf("  Delta: %8.4f\n", quote.Greeks.Delta)
			output.Printf("  Gamma: %8.4f\n", quote.Greeks.Gamma)
			output.Printf("  Theta: %8.4f /day\n", quote.Greeks.Theta)
			output.Printf("  Vega:  %8.4f\n", quote.Greeks.Vega)
			output.Printf("  Rho:   %8.4f\n", quote.Greeks.Rho)
			output.Println()
			output.Dim("  %s", quote.Interpretation)
			return nil
		},
	}

	cmd.Flags().Float64("strike", 0, "strike price")
	cmd.Flags().String("expiry", "", "expiration date (YYYY-MM-DD)")
	cmd.Flags().String("type", "call", "option type (call or put)")
	cmd.MarkFlagRequired("strike")
	cmd.MarkFlagRequired("expiry")
	return cmd
}

func newOptionChainCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chain <symbol>",
		Short: "Show a synthesized options chain",
		Example: `  analyst options chain AAPL
  analyst options chain NVDA --expiry 2026-09-18 --type call --moneyness otm`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()

			expiry, _ := cmd.Flags().GetString("expiry")
			typeStr, _ := cmd.Flags().GetString("type")
			moneyness, _ := cmd.Flags().GetString("moneyness")

			optType, err := parseOptionType(typeStr)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			m := models.Moneyness(strings.ToUpper(moneyness))

			chain, err := app.Service.GetOptionsChain(ctx, args[0], expiry, optType, m)
			if err != nil {
				output.Error("Chain synthesis failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(chain)
			}

			output.Bold("%s options chain  spot %s", chain.Symbol, utils.FormatUSD(chain.SpotPrice))
			output.Println()

			table := NewTable(output, "CONTRACT", "TYPE", "STRIKE", "BID", "ASK", "LAST", "VOL", "OI", "DELTA")
			for _, c := range chain.Contracts {
				table.AddRow(
					c.Symbol,
					string(c.Type),
					fmt.Sprintf("%.1f", c.Strike),
					fmt.Sprintf("%.2f", c.Bid),
					fmt.Sprintf("%.2f", c.Ask),
					fmt.Sprintf("%.2f", c.Last),
					utils.FormatQuantity(c.Volume),
					utils.FormatQuantity(c.OpenInterest),
					fmt.Sprintf("%.3f", c.Greeks.Delta),
				)
			}
			table.Render()
			output.Println()

			s := chain.Summary
			output.Printf("  Put/Call ratio: %.2f\n", s.PutCallRatio)
			output.Printf("  Max pain:       %s\n", utils.FormatUSD(s.MaxPainStrike))
			output.Printf("  Unusual:        %d contracts\n", s.UnusualCount)
			return nil
		},
	}

	cmd.Flags().String("expiry", "", "expiration date (YYYY-MM-DD, default: standard ladder)")
	cmd.Flags().String("type", "", "restrict to call or put (default: both)")
	cmd.Flags().String("moneyness", "all", "moneyness filter (itm, atm, otm, all)")
	return cmd
}

func newOptionUnusualCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unusual [symbol...]",
		Short: "Scan for unusual options activity",
		Long: `Scan option flow for contracts whose volume runs well ahead of open
interest. With no symbols the default watchlist is scanned.`,
		Example: `  analyst options unusual
  analyst options unusual AAPL TSLA --min-ratio 3 --min-premium 100000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()

			minRatio, _ := cmd.Flags().GetFloat64("min-ratio")
			minPremium, _ := cmd.Flags().GetFloat64("min-premium")

			flagged, err := app.Service.ScanUnusualOptions(ctx, args, minRatio, minPremium)
			if err != nil {
				output.Error("Scan failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(flagged)
			}

			if len(flagged) == 0 {
				output.Info("No unusual activity above the thresholds.")
				return nil
			}

			table := NewTable(output, "CONTRACT", "TYPE", "VOL/OI", "PREMIUM", "SENTIMENT", "CLASS")
			for _, u := range flagged {
				table.AddRow(
					u.Symbol,
					string(u.Type),
					fmt.Sprintf("%.1fx", u.VolumeOIRatio),
					utils.FormatUSD(u.Premium),
					output.Sentiment(string(u.Sentiment)),
					string(u.Classification),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().Float64("min-ratio", 2.0, "minimum volume/open-interest ratio")
	cmd.Flags().Float64("min-premium", 50000, "minimum total premium in dollars")
	return cmd
}
