package member

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/supermal/mallpass/cmd/mallctl/cmd/cmdutil"
)

// PointsCmd is the parent command for the member's points
var PointsCmd = &cobra.Command{
	Use:   "points",
	Short: "Show your loyalty points (members only)",
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show your points balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := cmdutil.SDKClient(cmd.Context())
		if err != nil {
			return err
		}

		entry, err := client.PointsBalance(cmd.Context())
		if err != nil {
			return cmdutil.ExplainGate(err)
		}

		b := entry.Value
		pterm.DefaultSection.Println("Points")
		w := cmdutil.NewTable(nil)
		fmt.Fprintf(w, "Balance:\t%d\n", b.CurrentBalance)
		fmt.Fprintf(w, "Earned:\t%d\n", b.TotalEarned)
		fmt.Fprintf(w, "Redeemed:\t%d\n", b.TotalRedeemed)
		if b.StreakDays > 0 {
			fmt.Fprintf(w, "Streak:\t%d days\n", b.StreakDays)
		}
		w.Flush()

		if exp := b.ExpiringPoints; exp != nil && exp.Amount > 0 {
			pterm.Warning.Printf("%d points expire on %s\n", exp.Amount, exp.ExpiryDate)
		}
		cmdutil.PrintFreshness(entry)
		return nil
	},
}

var transactionsCmd = &cobra.Command{
	Use:   "transactions",
	Short: "Show your recent points transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := cmdutil.SDKClient(cmd.Context())
		if err != nil {
			return err
		}

		entry, err := client.RecentTransactions(cmd.Context())
		if err != nil {
			return cmdutil.ExplainGate(err)
		}
		if len(entry.Value) == 0 {
			pterm.Info.Println("No transactions yet")
			cmdutil.PrintFreshness(entry)
			return nil
		}

		w := cmdutil.NewTable(nil)
		fmt.Fprintln(w, "DATE\tTYPE\tAMOUNT\tDESCRIPTION\tBALANCE")
		for _, t := range entry.Value {
			fmt.Fprintf(w, "%s\t%s\t%+d\t%s\t%d\n", t.Date, t.Type, t.Amount, t.Description, t.BalanceAfter)
		}
		w.Flush()

		cmdutil.PrintFreshness(entry)
		return nil
	},
}

func init() {
	PointsCmd.AddCommand(balanceCmd)
	PointsCmd.AddCommand(transactionsCmd)
}
