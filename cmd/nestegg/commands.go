package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"nestegg-client/internal/di"
	"nestegg-client/internal/domain"
)

// app carries the container across cobra's run hooks. The container is built
// once in PersistentPreRunE and torn down in PersistentPostRunE.
type app struct {
	configPath string
	asJSON     bool
	container  *di.Container
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "nestegg",
		Short:         "NestEgg investing client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			c, err := di.InitializeContainer(a.configPath)
			if err != nil {
				return err
			}
			a.container = c
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.container == nil {
				return nil
			}
			return a.container.Close()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config file (YAML)")
	root.PersistentFlags().BoolVar(&a.asJSON, "json", false, "print raw JSON instead of tables")

	root.AddCommand(
		newPortfoliosCommand(a),
		newGoalsCommand(a),
		newQuoteCommand(a),
		newWatchlistCommand(a),
		newInsightsCommand(a),
		newCacheCommand(a),
	)
	return root
}

func newPortfoliosCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portfolios",
		Short: "List portfolios",
		RunE: func(cmd *cobra.Command, _ []string) error {
			portfolios, err := a.container.Portfolios.FetchPortfolios(cmd.Context())
			if err != nil {
				return err
			}
			if a.asJSON {
				return printJSON(portfolios)
			}
			return printTable([]string{"ID", "NAME", "CASH", "VALUE", "GAIN%"}, len(portfolios), func(i int) []string {
				p := portfolios[i]
				name := p.Name
				if p.IsDefault {
					name += " (default)"
				}
				return []string{p.ID, name, p.CashBalance.StringFixed(2), p.TotalValue.StringFixed(2), p.GainPercent.StringFixed(2)}
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "holdings <portfolio-id>",
		Short: "List the holdings of one portfolio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			holdings, err := a.container.Portfolios.FetchHoldings(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if a.asJSON {
				return printJSON(holdings)
			}
			return printTable([]string{"SYMBOL", "SHARES", "AVG COST", "VALUE"}, len(holdings), func(i int) []string {
				h := holdings[i]
				return []string{h.Symbol, h.Quantity.String(), h.CostBasis.StringFixed(2), h.MarketValue.StringFixed(2)}
			})
		},
	})
	return cmd
}

func newGoalsCommand(a *app) *cobra.Command {
	var includeArchived bool
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "List savings goals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				goals []domain.Goal
				err   error
			)
			if includeArchived {
				goals, err = a.container.Goals.FetchGoals(cmd.Context())
			} else {
				goals, err = a.container.Goals.ActiveGoals(cmd.Context())
			}
			if err != nil {
				return err
			}
			if a.asJSON {
				return printJSON(goals)
			}
			return printTable([]string{"ID", "NAME", "CATEGORY", "SAVED", "TARGET", "PROGRESS"}, len(goals), func(i int) []string {
				g := goals[i]
				progress := g.Progress().Shift(2).StringFixed(1) + "%"
				return []string{g.ID, g.Name, string(g.Category), g.CurrentAmount.StringFixed(2), g.TargetAmount.StringFixed(2), progress}
			})
		},
	}
	cmd.Flags().BoolVar(&includeArchived, "all", false, "include archived goals")
	return cmd
}

func newQuoteCommand(a *app) *cobra.Command {
	var withDetails bool
	cmd := &cobra.Command{
		Use:   "quote <symbol>...",
		Short: "Show quotes for one or more symbols",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, symbol := range args {
				quote, err := a.container.Stocks.FetchQuote(cmd.Context(), symbol)
				if err != nil {
					return err
				}
				if a.asJSON {
					if err := printJSON(quote); err != nil {
						return err
					}
				} else {
					fmt.Printf("%s\t%s\t%s (%s%%)\n", quote.Symbol, quote.Price.StringFixed(2), quote.Change.StringFixed(2), quote.ChangePercent.StringFixed(2))
				}
				if !withDetails {
					continue
				}
				details, err := a.container.Stocks.FetchDetails(cmd.Context(), symbol)
				if err != nil {
					return err
				}
				if a.asJSON {
					if err := printJSON(details); err != nil {
						return err
					}
				} else {
					fmt.Printf("  %s · %s · %s\n", details.Name, details.Exchange, details.Sector)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withDetails, "details", false, "also show company details")
	return cmd
}

func newWatchlistCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watchlist",
		Short: "Show the watchlist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := a.container.Stocks.FetchWatchlist(cmd.Context())
			if err != nil {
				return err
			}
			if a.asJSON {
				return printJSON(items)
			}
			return printTable([]string{"SYMBOL", "NAME", "PRICE", "CHANGE%"}, len(items), func(i int) []string {
				w := items[i]
				return []string{w.Symbol, w.Name, w.Quote.Price.StringFixed(2), w.Quote.ChangePercent.StringFixed(2)}
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <symbol>",
		Short: "Add a symbol to the watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := a.container.Stocks.AddToWatchlist(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Watching %s\n", item.Symbol)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <symbol>",
		Short: "Remove a symbol from the watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.container.Stocks.RemoveFromWatchlist(cmd.Context(), args[0])
		},
	})
	return cmd
}

func newInsightsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Show personalized insights",
		RunE: func(cmd *cobra.Command, _ []string) error {
			insights, err := a.container.Insights.FetchInsights(cmd.Context())
			if err != nil {
				return err
			}
			if a.asJSON {
				return printJSON(insights)
			}
			for _, in := range insights {
				fmt.Printf("[%s] %s\n%s\n\n", in.Category, in.Title, in.Body)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "explain <symbol>",
		Short: "Explain a stock in plain language",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := a.container.Insights.FetchStockExplanation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if a.asJSON {
				return printJSON(exp)
			}
			fmt.Printf("%s\n\n%s\n", exp.Symbol, exp.Explanation)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "tips",
		Short: "Show general investing tips",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tips, err := a.container.Insights.FetchInvestingTips(cmd.Context())
			if err != nil {
				return err
			}
			if a.asJSON {
				return printJSON(tips)
			}
			for _, tip := range tips {
				fmt.Printf("%s\n%s\n\n", tip.Title, tip.Body)
			}
			return nil
		},
	})
	return cmd
}

func newCacheCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the in-memory caches",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show per-cache hit/miss counters",
		RunE: func(*cobra.Command, []string) error {
			stats := a.container.CacheStats()
			if a.asJSON {
				return printJSON(stats)
			}
			names := make([]string, 0, len(stats))
			for name := range stats {
				names = append(names, name)
			}
			sort.Strings(names)
			return printTable([]string{"CACHE", "ENTRIES", "HITS", "MISSES"}, len(names), func(i int) []string {
				s := stats[names[i]]
				return []string{names[i], fmt.Sprint(s.Entries), fmt.Sprint(s.Hits), fmt.Sprint(s.Misses)}
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop every cached entry",
		RunE: func(*cobra.Command, []string) error {
			a.container.ClearAllCaches()
			return nil
		},
	})
	return cmd
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTable(header []string, rows int, row func(int) []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for i, col := range header {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, col)
	}
	fmt.Fprintln(w)
	for i := 0; i < rows; i++ {
		for j, col := range row(i) {
			if j > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprint(w, col)
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}
