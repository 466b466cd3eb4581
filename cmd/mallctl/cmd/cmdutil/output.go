package cmdutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/pterm/pterm"

	"github.com/supermal/mallpass/cmd/mallctl/internal/config"
	"github.com/supermal/mallpass/pkg/sdk"
)

// SDKClient returns the shared, initialized client for the running command.
func SDKClient(ctx context.Context) (*sdk.Client, error) {
	cfg := config.MustFromContext(ctx)
	return cfg.ClientProvider.SDKClient(ctx)
}

// NewTable returns the tabwriter every list command prints through.
func NewTable(out io.Writer) *tabwriter.Writer {
	if out == nil {
		out = os.Stdout
	}
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

// Freshness describes where an entry came from, or "" for a fresh network read.
func Freshness(source sdk.Source, fetchedAt, now time.Time) string {
	age := now.Sub(fetchedAt).Truncate(time.Second)
	if source == sdk.SourceFallback {
		if age <= 0 {
			return "Backend unavailable, showing offline data"
		}
		return fmt.Sprintf("Backend unavailable, showing data saved %s ago", age)
	}
	if age >= time.Minute {
		return fmt.Sprintf("Cached %s ago", age)
	}
	return ""
}

// PrintFreshness prints the freshness tag for entry, if any.
func PrintFreshness[T any](entry sdk.CacheEntry[T]) {
	msg := Freshness(entry.Source, entry.FetchedAt, time.Now())
	switch {
	case msg == "":
	case entry.IsFallback():
		pterm.Warning.Println(msg)
	default:
		pterm.Info.Println(msg)
	}
}

var capabilityLabels = map[sdk.Capability]string{
	sdk.CapScanReceipt:       "Receipt scanning",
	sdk.CapRedeemReward:      "Reward redemption",
	sdk.CapViewProfile:       "Points and profile",
	sdk.CapViewNotifications: "Notifications",
}

// CapabilityLabel is the human name of a gated feature.
func CapabilityLabel(c sdk.Capability) string {
	if label, ok := capabilityLabels[c]; ok {
		return label
	}
	return string(c)
}

// ExplainGate renders an access refusal. A teaser is informational and yields nil;
// a hard deny and any other error are returned unchanged.
func ExplainGate(err error) error {
	var accessErr *sdk.AccessError
	if !errors.As(err, &accessErr) {
		return err
	}
	if accessErr.Decision == sdk.Teaser {
		pterm.Warning.Printf("Members only: %s. Run 'mallctl auth login' to unlock.\n", CapabilityLabel(accessErr.Capability))
		return nil
	}
	return err
}
