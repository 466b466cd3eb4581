package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var v = newViper()

var rootCmd = &cobra.Command{
	Use:   "malltwin",
	Short: "Local twin of the Supermal public and member backends",
	Long: `malltwin serves the public directory API and the member CRM API from one
process, with seeded data, a demo member and fault injection under /admin.
Point mallctl at it with --public-url and --member-url.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("MALLTWIN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}
