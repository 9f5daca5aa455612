package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/prototypeforge/aicxo/internal/types"
)

var (
	billingDays int
	billingJSON bool
)

var billingCmd = &cobra.Command{
	Use:   "billing",
	Short: "Token usage and cost reporting",
}

var billingSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize usage and cost over a recent window",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		until := time.Now().UTC()
		since := until.AddDate(0, 0, -billingDays)

		summary, err := a.usage.Summary(ctx, actingUser, since, until)
		if err != nil {
			return err
		}

		if billingJSON {
			out, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(out))
			return nil
		}

		cmd.Printf("Usage for user %d, %s to %s\n\n",
			summary.UserID, since.Format("2006-01-02"), until.Format("2006-01-02"))
		cmd.Printf("Meetings: %d  Calls: %d\n", summary.Meetings, summary.Totals.Calls)
		cmd.Printf("Tokens:   %d prompt + %d completion = %d total\n",
			summary.Totals.PromptTokens, summary.Totals.CompletionTokens, summary.Totals.TotalTokens)
		cmd.Printf("Cost:     $%.4f\n", summary.Totals.CostUSD)

		if len(summary.ByAgent) > 0 {
			cmd.Println("\nBy agent:")
			for _, au := range summary.ByAgent {
				cmd.Printf("  %-20s %-24s %8d tokens  $%.4f\n",
					au.AgentName, au.AgentRole, au.Totals.TotalTokens, au.Totals.CostUSD)
			}
		}

		if len(summary.ByModel) > 0 {
			cmd.Println("\nBy model:")
			for _, mu := range summary.ByModel {
				cmd.Printf("  %-24s %8d tokens  $%.4f\n",
					mu.Model, mu.Totals.TotalTokens, mu.Totals.CostUSD)
			}
		}
		return nil
	},
}

var billingMeetingCmd = &cobra.Command{
	Use:   "meeting <meeting-id>",
	Short: "Show usage records for one meeting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		id, err := types.ParseID(args[0])
		if err != nil {
			return err
		}
		// Get enforces ownership before we expose usage rows
		if _, err := a.orch.Get(ctx, id, actingUser); err != nil {
			return err
		}

		records, err := a.usage.ListByMeeting(ctx, id)
		if err != nil {
			return err
		}
		totals, err := a.usage.MeetingTotals(ctx, id)
		if err != nil {
			return err
		}

		for _, r := range records {
			cmd.Printf("%s  %-20s %-24s %6d tokens  $%.4f\n",
				r.CreatedAt.Format("2006-01-02 15:04:05"), r.AgentName, r.Model, r.TotalTokens, r.CostUSD)
		}
		cmd.Printf("\nTotal: %d tokens  $%.4f over %d calls\n",
			totals.TotalTokens, totals.CostUSD, totals.Calls)
		return nil
	},
}

func init() {
	billingSummaryCmd.Flags().IntVar(&billingDays, "days", 30, "window size in days")
	billingSummaryCmd.Flags().BoolVar(&billingJSON, "json", false, "emit the summary as JSON")

	billingCmd.AddCommand(billingSummaryCmd)
	billingCmd.AddCommand(billingMeetingCmd)
}
