package browse

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/supermal/mallpass/cmd/mallctl/cmd/cmdutil"
)

// EventsCmd lists upcoming mall events.
var EventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List upcoming mall events",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := cmdutil.SDKClient(cmd.Context())
		if err != nil {
			return err
		}

		entry, err := client.UpcomingEvents(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list events: %w", err)
		}
		if len(entry.Value) == 0 {
			pterm.Info.Println("No upcoming events")
			cmdutil.PrintFreshness(entry)
			return nil
		}

		w := cmdutil.NewTable(nil)
		fmt.Fprintln(w, "ID\tTITLE\tSTARTS\tLOCATION\tREGISTRATION")
		for _, e := range entry.Value {
			reg := "-"
			if e.RegistrationRequired {
				reg = fmt.Sprintf("%d/%d", e.RegisteredCount, e.Capacity)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Title, e.StartDate, e.Location, reg)
		}
		w.Flush()

		cmdutil.PrintFreshness(entry)
		return nil
	},
}
