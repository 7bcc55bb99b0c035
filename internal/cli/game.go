package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game action commands",
	}

	cmd.AddCommand(newGameSeatCmd())
	cmd.AddCommand(newRoomActionCmd("unseat <id>", "Give up your country", "unseat"))
	cmd.AddCommand(newGameReadyCmd())
	cmd.AddCommand(newRoomActionCmd("start <id>", "Start the game", "start"))
	cmd.AddCommand(newGameVoteCmd())
	cmd.AddCommand(newRoomActionCmd("next-round <id>", "Open the next voting round", "next-round"))
	cmd.AddCommand(newRoomActionCmd("reset <id>", "Reset the game to the lobby (superadmin)", "reset"))
	cmd.AddCommand(newGamePolicyCmd())
	cmd.AddCommand(newRoomActionCmd("advance-year <id>", "Advance the Phase 2 economy one year", "advance-year"))

	return cmd
}

func newGameSeatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seat <id> <country>",
		Short: "Take a country in the game",
		Long:  "Take a country in the game. Countries: USA, UK, USSR, France, China, India, Argentina.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postRoomAction(cmd, args[0], "seat", map[string]string{"country": args[1]})
		},
	}
}

func newGameReadyCmd() *cobra.Command {
	var notReady bool

	cmd := &cobra.Command{
		Use:   "ready <id>",
		Short: "Mark yourself ready",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postRoomAction(cmd, args[0], "ready", map[string]bool{"ready": !notReady})
		},
	}

	cmd.Flags().BoolVar(&notReady, "not", false, "Clear readiness instead")

	return cmd
}

func newGameVoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vote <id> <choice>",
		Short: "Vote on the current issue",
		Long:  "Vote on the current issue. In options mode the choice is an option id; in motion mode it is yes or no.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postRoomAction(cmd, args[0], "vote", map[string]string{"choice": strings.TrimSpace(args[1])})
		},
	}
}

func newGamePolicyCmd() *cobra.Command {
	var cbRate, exchangeRate, tariffRate float64

	cmd := &cobra.Command{
		Use:   "policy <id>",
		Short: "Set this year's policy levers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, flag := range []string{"cb-rate", "exchange-rate", "tariff-rate"} {
				if !cmd.Flags().Changed(flag) {
					return fmt.Errorf("--cb-rate, --exchange-rate and --tariff-rate are required")
				}
			}
			req := map[string]float64{
				"cb_rate":       cbRate,
				"exchange_rate": exchangeRate,
				"tariff_rate":   tariffRate,
			}
			return postRoomAction(cmd, args[0], "policies", req)
		},
	}

	cmd.Flags().Float64Var(&cbRate, "cb-rate", 0, "Central bank rate, 0-20 (required)")
	cmd.Flags().Float64Var(&exchangeRate, "exchange-rate", 0, "Exchange rate, 0.1-5 (required)")
	cmd.Flags().Float64Var(&tariffRate, "tariff-rate", 0, "Tariff rate, 0-100 (required)")

	return cmd
}
