package auth

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/supermal/mallpass/cmd/mallctl/cmd/cmdutil"
	"github.com/supermal/mallpass/pkg/sdk"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and continue as a guest",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := cmdutil.SDKClient(cmd.Context())
		if err != nil {
			return err
		}

		if !sdk.IsMember(client.Principal()) {
			pterm.Info.Println("Not logged in")
			return nil
		}

		if err := client.Logout(); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}

		fmt.Println("Logged out successfully")
		return nil
	},
}
