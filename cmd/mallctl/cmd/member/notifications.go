package member

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/supermal/mallpass/cmd/mallctl/cmd/cmdutil"
)

var unreadOnly bool

// NotificationsCmd lists the member's notifications.
var NotificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "List your notifications (members only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := cmdutil.SDKClient(cmd.Context())
		if err != nil {
			return err
		}

		entry, err := client.Notifications(cmd.Context())
		if err != nil {
			return cmdutil.ExplainGate(err)
		}

		w := cmdutil.NewTable(nil)
		fmt.Fprintln(w, "\tWHEN\tTYPE\tTITLE")
		shown := 0
		for _, n := range entry.Value {
			if unreadOnly && n.IsRead {
				continue
			}
			marker := " "
			if !n.IsRead {
				marker = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", marker, n.Timestamp, n.Type, n.Title)
			shown++
		}
		if shown == 0 {
			pterm.Info.Println("No notifications")
		} else {
			w.Flush()
		}

		cmdutil.PrintFreshness(entry)
		return nil
	},
}

func init() {
	NotificationsCmd.Flags().BoolVar(&unreadOnly, "unread", false, "Only show unread notifications")
}
