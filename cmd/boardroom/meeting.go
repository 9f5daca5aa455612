package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/prototypeforge/aicxo/internal/database"
	"github.com/prototypeforge/aicxo/internal/meeting"
	"github.com/prototypeforge/aicxo/internal/report"
	"github.com/prototypeforge/aicxo/internal/types"
)

var (
	holdContext  string
	holdFileIDs  []string
	listLimit    int
	listOffset   int
	reportFormat string
)

var meetingCmd = &cobra.Command{
	Use:   "meeting",
	Short: "Hold and manage board meetings",
}

var meetingHoldCmd = &cobra.Command{
	Use:   "hold <question>",
	Short: "Convene the board on a question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		var fileIDs []types.ID
		for _, raw := range holdFileIDs {
			id, err := types.ParseID(raw)
			if err != nil {
				return err
			}
			fileIDs = append(fileIDs, id)
		}

		m, err := a.orch.Create(ctx, meeting.CreateRequest{
			UserID:   actingUser,
			Question: args[0],
			Context:  holdContext,
			FileIDs:  fileIDs,
		})
		if err != nil {
			return err
		}

		printMeeting(cmd, m)
		return nil
	},
}

var meetingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your meetings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		meetings, err := a.orch.List(ctx, actingUser, listLimit, listOffset)
		if err != nil {
			return err
		}

		for _, m := range meetings {
			cmd.Printf("%s  v%-3d %-12s %s\n", m.ID, m.CurrentVersion, m.Status, m.Question)
		}
		return nil
	},
}

var meetingShowCmd = &cobra.Command{
	Use:   "show <meeting-id>",
	Short: "Show a meeting's current deliberation",
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

		m, err := a.orch.Get(ctx, id, actingUser)
		if err != nil {
			return err
		}

		printMeeting(cmd, m)
		return nil
	},
}

var meetingRegenerateCmd = &cobra.Command{
	Use:   "regenerate <meeting-id>",
	Short: "Rerun the deliberation as a new version",
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

		m, err := a.orch.Regenerate(ctx, id, actingUser)
		if err != nil {
			return err
		}

		printMeeting(cmd, m)
		return nil
	},
}

var meetingRestoreCmd = &cobra.Command{
	Use:   "restore <meeting-id> <version>",
	Short: "Make a historical version current again",
	Args:  cobra.ExactArgs(2),
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
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}

		m, err := a.orch.Restore(ctx, id, version, actingUser)
		if err != nil {
			return err
		}

		printMeeting(cmd, m)
		return nil
	},
}

var meetingHistoryCmd = &cobra.Command{
	Use:   "history <meeting-id>",
	Short: "List all versions of a meeting",
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

		snapshots, err := a.orch.History(ctx, id, actingUser)
		if err != nil {
			return err
		}

		for _, s := range snapshots {
			cmd.Printf("v%-3d %s  opinions=%d follow-ups=%d\n",
				s.Version, s.CreatedAt.Format("2006-01-02 15:04:05"), len(s.Opinions), len(s.FollowUps))
		}
		return nil
	},
}

var meetingFollowUpCmd = &cobra.Command{
	Use:   "followup <meeting-id> <question>",
	Short: "Ask the chair a follow-up question",
	Args:  cobra.ExactArgs(2),
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

		fu, err := a.orch.AddFollowUp(ctx, id, actingUser, args[1])
		if err != nil {
			return err
		}

		cmd.Printf("Q: %s\n\n%s\n", fu.Question, fu.Answer)
		return nil
	},
}

var meetingReportCmd = &cobra.Command{
	Use:   "report <meeting-id>",
	Short: "Render a meeting report",
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

		m, err := a.orch.Get(ctx, id, actingUser)
		if err != nil {
			return err
		}

		out, err := report.Render(m, report.Format(reportFormat))
		if err != nil {
			return err
		}

		cmd.Print(out)
		return nil
	},
}

var meetingAttachCmd = &cobra.Command{
	Use:   "attach <meeting-id> <file-id>",
	Short: "Attach a company file to a meeting",
	Args:  cobra.ExactArgs(2),
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
		fileID, err := types.ParseID(args[1])
		if err != nil {
			return err
		}

		m, err := a.orch.AttachFile(ctx, id, actingUser, fileID)
		if err != nil {
			return err
		}

		cmd.Printf("Meeting %s now has %d attached file(s)\n", m.ID, len(m.AttachedFiles))
		return nil
	},
}

var meetingDetachCmd = &cobra.Command{
	Use:   "detach <meeting-id> <file-id>",
	Short: "Remove an attached file from a meeting",
	Args:  cobra.ExactArgs(2),
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
		fileID, err := types.ParseID(args[1])
		if err != nil {
			return err
		}

		m, err := a.orch.RemoveFile(ctx, id, actingUser, fileID)
		if err != nil {
			return err
		}

		cmd.Printf("Meeting %s now has %d attached file(s)\n", m.ID, len(m.AttachedFiles))
		return nil
	},
}

var meetingDeleteCmd = &cobra.Command{
	Use:   "delete <meeting-id>",
	Short: "Delete a meeting and its history",
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

		if err := a.orch.Delete(ctx, id, actingUser); err != nil {
			return err
		}

		cmd.Printf("Deleted meeting %s\n", id)
		return nil
	},
}

func init() {
	meetingHoldCmd.Flags().StringVar(&holdContext, "context", "", "additional context for the board")
	meetingHoldCmd.Flags().StringSliceVar(&holdFileIDs, "file", nil, "company file ID to include (repeatable)")
	meetingListCmd.Flags().IntVar(&listLimit, "limit", 20, "maximum meetings to list")
	meetingListCmd.Flags().IntVar(&listOffset, "offset", 0, "offset into the meeting list")
	meetingReportCmd.Flags().StringVar(&reportFormat, "format", string(report.FormatMarkdown), "report format (markdown or text)")

	meetingCmd.AddCommand(meetingHoldCmd)
	meetingCmd.AddCommand(meetingListCmd)
	meetingCmd.AddCommand(meetingShowCmd)
	meetingCmd.AddCommand(meetingRegenerateCmd)
	meetingCmd.AddCommand(meetingRestoreCmd)
	meetingCmd.AddCommand(meetingHistoryCmd)
	meetingCmd.AddCommand(meetingFollowUpCmd)
	meetingCmd.AddCommand(meetingAttachCmd)
	meetingCmd.AddCommand(meetingDetachCmd)
	meetingCmd.AddCommand(meetingReportCmd)
	meetingCmd.AddCommand(meetingDeleteCmd)
}

// printMeeting writes a compact deliberation summary to the command output
func printMeeting(cmd *cobra.Command, m *database.Meeting) {
	cmd.Printf("Meeting %s (v%d, %s)\n", m.ID, m.CurrentVersion, m.Status)
	cmd.Printf("Question: %s\n\n", m.Question)

	for _, op := range m.Opinions {
		if op.Error {
			cmd.Printf("  %s (%s): [error: %s]\n", op.AgentName, op.AgentRole, op.ErrorDetail)
			continue
		}
		cmd.Printf("  %s (%s) [%.0f%%]: %s\n", op.AgentName, op.AgentRole, op.Confidence*100, op.Opinion)
	}

	if m.ChairSummary != "" {
		cmd.Printf("\nSummary: %s\n", m.ChairSummary)
		cmd.Printf("Recommendation: %s\n", m.ChairRecommendation)
	}

	cmd.Printf("\nTokens: %d  Cost: $%.4f\n", m.TotalTokensUsed, m.TotalCostUSD)
}
