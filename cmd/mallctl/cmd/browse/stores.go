package browse

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/supermal/mallpass/cmd/mallctl/cmd/cmdutil"
	"github.com/supermal/mallpass/pkg/sdk"
)

// StoresCmd is the parent command for the store directory
var StoresCmd = &cobra.Command{
	Use:   "stores",
	Short: "Browse the mall store directory",
}

var listFeatured bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stores",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := cmdutil.SDKClient(cmd.Context())
		if err != nil {
			return err
		}

		read := client.Stores
		if listFeatured {
			read = client.FeaturedStores
		}
		entry, err := read(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list stores: %w", err)
		}

		printStores(entry.Value)
		cmdutil.PrintFreshness(entry)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := cmdutil.SDKClient(cmd.Context())
		if err != nil {
			return err
		}

		entry, err := client.Store(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if entry.Value == nil {
			return fmt.Errorf("store %q not found", args[0])
		}

		printStore(*entry.Value)
		cmdutil.PrintFreshness(entry)
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listFeatured, "featured", false, "Only list featured stores")
	StoresCmd.AddCommand(listCmd)
	StoresCmd.AddCommand(getCmd)
}

func printStores(stores []sdk.Store) {
	if len(stores) == 0 {
		pterm.Info.Println("No stores found")
		return
	}

	w := cmdutil.NewTable(nil)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tFLOOR\tUNIT\tVIP")
	for _, s := range stores {
		vip := "-"
		if s.IsVIPPartner {
			vip = fmt.Sprintf("x%.1f points", s.PointsMultiplier)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Category, s.Floor, s.UnitNumber, vip)
	}
	w.Flush()
}

func printStore(s sdk.Store) {
	pterm.DefaultSection.Println(s.Name)
	if s.Description != "" {
		pterm.Println(s.Description)
	}

	w := cmdutil.NewTable(nil)
	fmt.Fprintf(w, "Category:\t%s / %s\n", s.Category, s.Subcategory)
	fmt.Fprintf(w, "Location:\tFloor %s, unit %s\n", s.Floor, s.UnitNumber)
	fmt.Fprintf(w, "Weekdays:\t%s - %s\n", s.OperatingHours.Weekdays.Open, s.OperatingHours.Weekdays.Close)
	fmt.Fprintf(w, "Weekends:\t%s - %s\n", s.OperatingHours.Weekends.Open, s.OperatingHours.Weekends.Close)
	if s.ContactInfo.Phone != "" {
		fmt.Fprintf(w, "Phone:\t%s\n", s.ContactInfo.Phone)
	}
	if s.Rating > 0 {
		fmt.Fprintf(w, "Rating:\t%.1f\n", s.Rating)
	}
	if len(s.Amenities) > 0 {
		fmt.Fprintf(w, "Amenities:\t%s\n", strings.Join(s.Amenities, ", "))
	}
	if len(s.Location.Landmarks) > 0 {
		fmt.Fprintf(w, "Near:\t%s\n", strings.Join(s.Location.Landmarks, ", "))
	}
	w.Flush()

	if s.IsVIPPartner {
		pterm.Info.Printf("VIP partner: members earn x%.1f points here\n", s.PointsMultiplier)
	}
}
