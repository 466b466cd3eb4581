package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/supermal/mallpass/cmd/mallctl/cmd/cmdutil"
	"github.com/supermal/mallpass/pkg/sdk"
)

var noTeaser bool

var accessCmd = &cobra.Command{
	Use:   "access <capability>",
	Short: "Show whether the current session may use a feature",
	Long: `Prints the gate decision for a capability: allow, teaser or deny.

Capabilities: scan-receipt, redeem-reward, view-profile, view-notifications.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		capability, err := sdk.ParseCapability(args[0])
		if err != nil {
			return err
		}

		client, err := cmdutil.SDKClient(cmd.Context())
		if err != nil {
			return err
		}

		decision := client.CanAccess(capability, !noTeaser)
		switch decision {
		case sdk.Allow:
			pterm.Success.Printf("%s: %s\n", cmdutil.CapabilityLabel(capability), decision)
		case sdk.Teaser:
			pterm.Warning.Printf("%s: %s (log in to unlock)\n", cmdutil.CapabilityLabel(capability), decision)
		default:
			pterm.Error.Printf("%s: %s\n", cmdutil.CapabilityLabel(capability), decision)
		}
		return nil
	},
}

func init() {
	accessCmd.Flags().BoolVar(&noTeaser, "no-teaser", false, "Evaluate as if the caller cannot show a teaser")
}
