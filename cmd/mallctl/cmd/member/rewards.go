package member

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/supermal/mallpass/cmd/mallctl/cmd/cmdutil"
)

// RewardsCmd is the parent command for the rewards catalog
var RewardsCmd = &cobra.Command{
	Use:   "rewards",
	Short: "Browse redeemable rewards (members only)",
}

var recommendedOnly bool

var rewardsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rewards",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := cmdutil.SDKClient(cmd.Context())
		if err != nil {
			return err
		}

		read := client.Rewards
		if recommendedOnly {
			read = client.RecommendedRewards
		}
		entry, err := read(cmd.Context())
		if err != nil {
			return cmdutil.ExplainGate(err)
		}
		if len(entry.Value) == 0 {
			pterm.Info.Println("No rewards available")
			cmdutil.PrintFreshness(entry)
			return nil
		}

		w := cmdutil.NewTable(nil)
		fmt.Fprintln(w, "ID\tNAME\tPARTNER\tPOINTS\tSTOCK")
		for _, r := range entry.Value {
			stock := fmt.Sprintf("%d", r.StockAvailable)
			if r.IsLimited {
				stock += " (limited)"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", r.ID, r.Name, r.PartnerName, r.PointsCost, stock)
		}
		w.Flush()

		cmdutil.PrintFreshness(entry)
		return nil
	},
}

func init() {
	rewardsListCmd.Flags().BoolVar(&recommendedOnly, "recommended", false, "Only list rewards recommended for you")
	RewardsCmd.AddCommand(rewardsListCmd)
}
