package auth

import (
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/supermal/mallpass/cmd/mallctl/cmd/cmdutil"
	"github.com/supermal/mallpass/pkg/sdk"
)

var statusRefresh bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := cmdutil.SDKClient(cmd.Context())
		if err != nil {
			return err
		}

		if statusRefresh {
			if err := client.Session().RefreshProfile(cmd.Context()); err != nil {
				if errors.Is(err, sdk.ErrAuthInvalid) {
					pterm.Warning.Println("Your session was rejected by the member service; you are now browsing as a guest.")
				} else {
					pterm.Warning.Printf("Could not refresh profile: %v\n", err)
				}
			}
		}

		p := client.Principal()
		pterm.DefaultSection.Println("Session")
		pterm.Info.Printf("State: %s\n", client.Session().State())
		pterm.Info.Printf("Device: %s\n", p.GuestID())

		if member, ok := sdk.AsMember(p); ok {
			profile := member.Profile
			pterm.Info.Printf("Member: %s (CIF %s)\n", profile.Name, profile.CIF)
			pterm.Info.Printf("Tier: %s\n", profile.Tier)
			if tp := profile.TierProgress; tp != nil && tp.NextTier != "" {
				pterm.Info.Printf("Progress: %d / %d points toward %s\n", tp.Current, tp.Target, tp.NextTier)
			}
		}

		pterm.DefaultSection.Println("Features")
		w := cmdutil.NewTable(nil)
		fmt.Fprintln(w, "CAPABILITY\tFEATURE\tACCESS")
		for _, c := range sdk.Capabilities() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", c, cmdutil.CapabilityLabel(c), client.CanAccess(c, sdk.DefaultTeaser(c)))
		}
		w.Flush()

		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusRefresh, "refresh", false, "Re-validate the session and refresh the member profile")
}
