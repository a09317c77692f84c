package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/llm"
	"github.com/abhisek/examprep/internal/store"
	"github.com/abhisek/examprep/internal/ui/theme"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM request/response events",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		before, _ := cmd.Flags().GetInt("before")
		session, _ := cmd.Flags().GetString("session")

		return withEventRepo(cmd, func(repo store.EventRepo) error {
			events, err := repo.QueryLLMEvents(cmd.Context(), store.QueryOpts{
				Limit:     limit,
				Before:    before,
				Purpose:   purpose,
				SessionID: session,
			})
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}
			if len(events) == 0 {
				fmt.Println("No LLM events found.")
				return nil
			}

			fmt.Println(theme.Header.Render(fmt.Sprintf("%-5s  %-19s  %-10s  %-14s  %-28s  %-6s  %-6s  %-7s  %s",
				"ID", "Timestamp", "Purpose", "Batch", "Model", "In", "Out", "Ms", "OK")))
			fmt.Println(theme.Separator(112))
			for _, e := range events {
				fmt.Printf("%-5d  %-19s  %-10s  %-14s  %-28s  %-6d  %-6d  %-7d  %s\n",
					e.ID,
					e.Timestamp.Local().Format("2006-01-02 15:04:05"),
					e.Purpose,
					truncate(batchLabel(e), 14),
					truncate(e.Model, 28),
					e.InputTokens,
					e.OutputTokens,
					e.LatencyMs,
					theme.Mark(e.Success),
				)
			}
			return nil
		})
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View full request/response for an LLM event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		return withEventRepo(cmd, func(repo store.EventRepo) error {
			e, err := repo.GetLLMEvent(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("get event: %w", err)
			}
			if e == nil {
				return fmt.Errorf("event %d not found", id)
			}

			fmt.Printf("ID:        %d\n", e.ID)
			fmt.Printf("Time:      %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
			fmt.Printf("Provider:  %s\n", e.Provider)
			fmt.Printf("Model:     %s\n", e.Model)
			fmt.Printf("Purpose:   %s\n", e.Purpose)
			if e.SessionID != "" {
				fmt.Printf("Batch:     %s\n", batchLabel(*e))
			}
			fmt.Printf("Tokens:    %d in / %d out\n", e.InputTokens, e.OutputTokens)
			fmt.Printf("Latency:   %dms\n", e.LatencyMs)
			fmt.Printf("Success:   %s\n", theme.Mark(e.Success))
			if e.ErrorMessage != "" {
				fmt.Printf("Error:     %s\n", theme.Incorrect.Render(e.ErrorMessage))
			}

			printSection("REQUEST", e.RequestBody)
			printSection("RESPONSE", e.ResponseBody)
			return nil
		})
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEventRepo(cmd, func(repo store.EventRepo) error {
			ctx := cmd.Context()
			stats, err := repo.LLMUsageByPurpose(ctx)
			if err != nil {
				return fmt.Errorf("query usage: %w", err)
			}
			if len(stats) == 0 {
				fmt.Println("No LLM usage recorded yet.")
				return nil
			}

			fmt.Println(theme.Title.Render("Usage by Purpose"))
			fmt.Println(theme.Header.Render(fmt.Sprintf("%-16s  %6s  %10s  %10s  %10s  %8s",
				"Purpose", "Calls", "Input", "Output", "Total", "Avg Ms")))
			fmt.Println(theme.Separator(72))

			var totalCalls, totalIn, totalOut int
			for _, st := range stats {
				fmt.Printf("%-16s  %6d  %10d  %10d  %10d  %8d\n",
					st.Purpose, st.Calls, st.InputTokens, st.OutputTokens, st.InputTokens+st.OutputTokens, st.AvgLatencyMs)
				totalCalls += st.Calls
				totalIn += st.InputTokens
				totalOut += st.OutputTokens
			}
			fmt.Println(theme.Separator(72))
			fmt.Printf("%-16s  %6d  %10d  %10d  %10d\n", "TOTAL", totalCalls, totalIn, totalOut, totalIn+totalOut)

			modelUsage, err := repo.LLMUsageByModel(ctx)
			if err != nil {
				return fmt.Errorf("query model usage: %w", err)
			}
			if len(modelUsage) == 0 {
				return nil
			}

			fmt.Println()
			fmt.Println(theme.Title.Render("Estimated Cost (USD)"))
			fmt.Println(theme.Header.Render(fmt.Sprintf("%-32s  %6s  %10s  %10s  %10s",
				"Model", "Calls", "Input", "Output", "Cost")))
			fmt.Println(theme.Separator(72))

			var totalCost float64
			var unknownModels []string
			for _, mu := range modelUsage {
				cost := llm.LookupCost(mu.Model)
				costCol := "?"
				if cost == nil {
					unknownModels = append(unknownModels, mu.Model)
				} else {
					c := cost.Cost(mu.InputTokens, mu.OutputTokens)
					totalCost += c
					costCol = formatCost(c)
				}
				fmt.Printf("%-32s  %6d  %10d  %10d  %10s\n",
					truncate(mu.Model, 32), mu.Calls, mu.InputTokens, mu.OutputTokens, costCol)
			}

			fmt.Println(theme.Separator(72))
			label := "TOTAL"
			if len(unknownModels) > 0 {
				label = "TOTAL (partial)"
			}
			fmt.Printf("%-32s  %6s  %10s  %10s  %10s\n", label, "", "", "", formatCost(totalCost))
			if len(unknownModels) > 0 {
				fmt.Println(theme.Hint.Render("Pricing unavailable for: " + strings.Join(unknownModels, ", ")))
			}
			return nil
		})
	},
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. item-gen)")
	llmListCmd.Flags().Int("before", 0, "Only show events with an ID below this one")
	llmListCmd.Flags().StringP("session", "s", "", "Only show calls made for this session")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}

func withEventRepo(cmd *cobra.Command, fn func(store.EventRepo) error) error {
	s, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s.EventRepo())
}

func printSection(title, body string) {
	fmt.Println(theme.Separator(60))
	fmt.Println(theme.Header.Render(title))
	fmt.Println(theme.Separator(60))
	if body == "" {
		fmt.Println(theme.Hint.Render("(not captured)"))
		return
	}
	fmt.Println(body)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

// batchLabel renders "session#batch", or "-" for untagged calls.
func batchLabel(e store.LLMEvent) string {
	switch {
	case e.SessionID == "":
		return "-"
	case e.BatchIndex == nil:
		return e.SessionID
	default:
		return fmt.Sprintf("%s#%d", e.SessionID, *e.BatchIndex)
	}
}
