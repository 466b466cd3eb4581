package browse

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/supermal/mallpass/cmd/mallctl/cmd/cmdutil"
)

// PromotionsCmd lists the public promotions.
var PromotionsCmd = &cobra.Command{
	Use:   "promotions",
	Short: "List current mall promotions",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := cmdutil.SDKClient(cmd.Context())
		if err != nil {
			return err
		}

		entry, err := client.PublicPromotions(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list promotions: %w", err)
		}
		if len(entry.Value) == 0 {
			pterm.Info.Println("No promotions running")
			cmdutil.PrintFreshness(entry)
			return nil
		}

		w := cmdutil.NewTable(nil)
		fmt.Fprintln(w, "ID\tTITLE\tDISCOUNT\tUNTIL\tVIP")
		for _, p := range entry.Value {
			discount := fmt.Sprintf("%g %s", p.DiscountValue, strings.ToLower(p.DiscountType))
			if strings.EqualFold(p.DiscountType, "percentage") {
				discount = fmt.Sprintf("%g%%", p.DiscountValue)
			}
			vip := "-"
			if p.IsVIPExclusive {
				vip = "members"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Title, discount, p.EndDate, vip)
		}
		w.Flush()

		cmdutil.PrintFreshness(entry)
		return nil
	},
}
