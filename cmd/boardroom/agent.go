package main

import (
	"github.com/spf13/cobra"

	"github.com/prototypeforge/aicxo/internal/database"
	"github.com/prototypeforge/aicxo/internal/types"
)

var (
	agentRole       string
	agentPrompt     string
	agentModel      string
	agentColor      string
	agentIsChair    bool
	agentAll        bool
	agentWeightVals []float64
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Manage board members",
}

var agentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List board members",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		agents, err := a.agents.List(ctx, !agentAll)
		if err != nil {
			return err
		}

		user, err := a.users.GetByID(ctx, actingUser)
		if err != nil {
			return err
		}
		hired := make(map[types.ID]bool, len(user.HiredAgents))
		for _, id := range user.HiredAgents {
			hired[id] = true
		}

		for _, ag := range agents {
			mark := " "
			if hired[ag.ID] {
				mark = "*"
			}
			status := "active"
			if !ag.IsActive {
				status = "inactive"
			}
			chair := ""
			if ag.IsChair {
				chair = " (chair)"
			}
			cmd.Printf("%s %s  %-20s %-24s %-12s %s%s\n", mark, ag.ID, ag.Name, ag.Role, ag.Model, status, chair)
		}
		return nil
	},
}

var agentCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new board member",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		model := agentModel
		if model == "" {
			model = a.cfg.Board.DefaultModel
			if _, err := a.settings.Get(ctx, "board.default_model", &model); err != nil {
				return err
			}
		}

		agent := &database.Agent{
			Name:         args[0],
			Role:         agentRole,
			SystemPrompt: agentPrompt,
			Model:        model,
			AvatarColor:  agentColor,
			IsActive:     true,
			IsChair:      agentIsChair,
			CreatedBy:    actingUser,
		}
		if len(agentWeightVals) == 5 {
			agent.Weights = database.Weights{
				Finance:    agentWeightVals[0],
				Technology: agentWeightVals[1],
				Operations: agentWeightVals[2],
				PeopleHR:   agentWeightVals[3],
				Logistics:  agentWeightVals[4],
			}
		}

		if err := a.agents.Create(ctx, agent); err != nil {
			return err
		}

		cmd.Printf("Created agent %s (%s)\n", agent.Name, agent.ID)
		return nil
	},
}

var agentHireCmd = &cobra.Command{
	Use:   "hire <agent-id>",
	Short: "Add a board member to your roster",
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

		if _, err := a.agents.GetByID(ctx, id); err != nil {
			return err
		}
		if err := a.users.Hire(ctx, actingUser, id); err != nil {
			return err
		}

		cmd.Printf("Hired agent %s\n", id)
		return nil
	},
}

var agentFireCmd = &cobra.Command{
	Use:   "fire <agent-id>",
	Short: "Remove a board member from your roster",
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

		if err := a.users.Fire(ctx, actingUser, id); err != nil {
			return err
		}

		cmd.Printf("Fired agent %s\n", id)
		return nil
	},
}

var agentActivateCmd = &cobra.Command{
	Use:   "activate <agent-id>",
	Short: "Mark a board member as active",
	Args:  cobra.ExactArgs(1),
	RunE:  setAgentActive(true),
}

var agentDeactivateCmd = &cobra.Command{
	Use:   "deactivate <agent-id>",
	Short: "Mark a board member as inactive",
	Args:  cobra.ExactArgs(1),
	RunE:  setAgentActive(false),
}

func setAgentActive(active bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
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

		if err := a.agents.SetActive(ctx, id, active); err != nil {
			return err
		}

		cmd.Printf("Updated agent %s\n", id)
		return nil
	}
}

var agentDeleteCmd = &cobra.Command{
	Use:   "delete <agent-id>",
	Short: "Delete a board member",
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

		if err := a.agents.Delete(ctx, id); err != nil {
			return err
		}

		cmd.Printf("Deleted agent %s\n", id)
		return nil
	},
}

func init() {
	agentListCmd.Flags().BoolVar(&agentAll, "all", false, "include inactive board members")
	agentCreateCmd.Flags().StringVar(&agentRole, "role", "Board Member", "agent's role on the board")
	agentCreateCmd.Flags().StringVar(&agentPrompt, "prompt", "", "agent persona system prompt")
	agentCreateCmd.Flags().StringVar(&agentModel, "model", "", "model the agent deliberates with")
	agentCreateCmd.Flags().StringVar(&agentColor, "color", "", "avatar color hex code")
	agentCreateCmd.Flags().BoolVar(&agentIsChair, "chair", false, "designate this agent as the chair")
	agentCreateCmd.Flags().Float64SliceVar(&agentWeightVals, "weights", nil,
		"expertise weights as finance,technology,operations,people_hr,logistics")

	agentCmd.AddCommand(agentListCmd)
	agentCmd.AddCommand(agentCreateCmd)
	agentCmd.AddCommand(agentHireCmd)
	agentCmd.AddCommand(agentFireCmd)
	agentCmd.AddCommand(agentActivateCmd)
	agentCmd.AddCommand(agentDeactivateCmd)
	agentCmd.AddCommand(agentDeleteCmd)
}
