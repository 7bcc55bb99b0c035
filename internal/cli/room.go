package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/brettonwoods/internal/model"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room management commands",
	}

	cmd.AddCommand(newRoomListCmd())
	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomGetCmd())
	cmd.AddCommand(newRoomActionCmd("join <id>", "Join a room as a member", "join"))
	cmd.AddCommand(newRoomActionCmd("leave <id>", "Leave a room", "leave"))
	cmd.AddCommand(newRoomDeleteCmd())

	return cmd
}

func roomPath(id string) string {
	return "/api/v1/rooms/" + id
}

func newRoomListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result RoomList

			if err := client.Get("/api/v1/rooms", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newRoomCreateCmd() *cobra.Command {
	var (
		name       string
		maxPlayers int
		voteMode   string
		startYear  int
		maxYears   int
		adminStart bool
		allReady   bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new room",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"name": name}

			// Only the rule flags given are sent; the server fills the
			// rest from its defaults
			var overrides model.RoomConfigOverrides
			changed := false
			flags := cmd.Flags()
			if flags.Changed("max-players") {
				overrides.MaxPlayers, changed = &maxPlayers, true
			}
			if flags.Changed("vote-mode") {
				mode := model.VoteMode(voteMode)
				overrides.VoteMode, changed = &mode, true
			}
			if flags.Changed("start-year") {
				overrides.StartYear, changed = &startYear, true
			}
			if flags.Changed("max-years") {
				overrides.MaxYears, changed = &maxYears, true
			}
			if flags.Changed("admin-start") {
				overrides.RequireAdminToStart, changed = &adminStart, true
			}
			if flags.Changed("all-ready") {
				overrides.RequireAllReady, changed = &allReady, true
			}
			if changed {
				req["config"] = overrides
			}

			var result model.Room
			if err := client.Post("/api/v1/rooms", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	defaults := model.DefaultRoomConfig()
	cmd.Flags().StringVar(&name, "name", "", "Room name (required)")
	cmd.Flags().IntVar(&maxPlayers, "max-players", defaults.MaxPlayers, "Maximum seated players")
	cmd.Flags().StringVar(&voteMode, "vote-mode", string(defaults.VoteMode), "Vote mode: options, motion")
	cmd.Flags().IntVar(&startYear, "start-year", defaults.StartYear, "First Phase 2 year")
	cmd.Flags().IntVar(&maxYears, "max-years", defaults.MaxYears, "Number of Phase 2 years")
	cmd.Flags().BoolVar(&adminStart, "admin-start", false, "Only a superadmin may start the game")
	cmd.Flags().BoolVar(&allReady, "all-ready", false, "Every seated player must be ready to start")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newRoomGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get room details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result model.Room

			if err := client.Get(roomPath(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

// newRoomActionCmd builds a command that posts a body-less room action
func newRoomActionCmd(use, short, action string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postRoomAction(cmd, args[0], action, nil)
		},
	}
}

func postRoomAction(cmd *cobra.Command, id, action string, body any) error {
	var result RoomUpdate
	if err := client.Post(roomPath(id)+"/"+action, body, &result); err != nil {
		return err
	}

	out := NewOutput(cfg.Output, cmd.OutOrStdout())
	out.Print(result)
	return nil
}

func newRoomDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a room (host or superadmin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(roomPath(args[0])); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.PrintMessage("Room deleted")
			return nil
		},
	}
}
