package cli

import (
	"github.com/spf13/cobra"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Superadmin commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every room and every non-admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ClearResult

			if err := client.Post("/api/v1/admin/clear", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	})

	return cmd
}
