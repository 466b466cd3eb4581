package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/supermal/mallpass/cmd/mallctl/cmd/auth"
	"github.com/supermal/mallpass/cmd/mallctl/cmd/browse"
	"github.com/supermal/mallpass/cmd/mallctl/cmd/member"
	"github.com/supermal/mallpass/cmd/mallctl/internal/client"
	"github.com/supermal/mallpass/cmd/mallctl/internal/config"
	"github.com/supermal/mallpass/internal/logging"
)

var (
	cfgFile        string
	nonInteractive bool
)

var rootCmd = &cobra.Command{
	Use:   "mallctl",
	Short: "mallctl - Supermal loyalty client",
	Long: `mallctl browses the Supermal mall directory as a guest and, once logged in
with a CIF, shows points, rewards and notifications for the member.

Public data is served from a local cache when the backend is slow or offline.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("MALLPASS_NON_INTERACTIVE") == "1" {
			nonInteractive = true
		}

		v := config.NewViper()
		flags := cmd.Root().PersistentFlags()
		for key, flag := range map[string]string{
			config.KeyPublicURL: "public-url",
			config.KeyMemberURL: "member-url",
			config.KeyStateFile: "state-file",
			config.KeyLogLevel:  "log-level",
		} {
			if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
				return fmt.Errorf("failed to bind --%s: %w", flag, err)
			}
		}

		settings, err := config.Load(v, cfgFile)
		if err != nil {
			return err
		}

		logger := logging.New(settings.LogLevel)
		gc := &config.GlobalConfig{
			Settings:       settings,
			NonInteractive: nonInteractive,
			Logger:         logger,
			ClientProvider: client.NewProvider(settings.SDKConfig(), settings.StateFile, logger),
		}
		cmd.SetContext(config.InjectConfig(cmd.Context(), gc))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if gc, ok := config.FromContext(cmd.Context()); ok {
			gc.ClientProvider.Close()
		}
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.mallpass/config.yaml)")
	rootCmd.PersistentFlags().String("public-url", "", "Public backend URL (also MALLPASS_PUBLIC_URL)")
	rootCmd.PersistentFlags().String("member-url", "", "Member backend URL (also MALLPASS_MEMBER_URL)")
	rootCmd.PersistentFlags().String("state-file", "", "Local state file (default ~/.mallpass/state.json)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Disable interactive prompts (also set via MALLPASS_NON_INTERACTIVE=1)")

	rootCmd.AddCommand(auth.AuthCmd)
	rootCmd.AddCommand(browse.StoresCmd)
	rootCmd.AddCommand(browse.PromotionsCmd)
	rootCmd.AddCommand(browse.EventsCmd)
	rootCmd.AddCommand(member.PointsCmd)
	rootCmd.AddCommand(member.RewardsCmd)
	rootCmd.AddCommand(member.NotificationsCmd)
	rootCmd.AddCommand(accessCmd)
}
