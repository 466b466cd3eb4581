package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/supermal/mallpass/cmd/mallctl/cmd/cmdutil"
	"github.com/supermal/mallpass/cmd/mallctl/internal/config"
	"github.com/supermal/mallpass/pkg/sdk"
)

var (
	loginCIF      string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in as a Supermal member",
	Long: `Logs in with a CIF (customer information file number) and password.

Credentials are taken from, in order:
1. The --cif and --password flags.
2. The MALLPASS_CIF and MALLPASS_PASSWORD environment variables.
3. An interactive prompt, unless --non-interactive is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		creds, err := resolveCredentials(cfg.NonInteractive)
		if err != nil {
			return err
		}

		client, err := cmdutil.SDKClient(cmd.Context())
		if err != nil {
			return err
		}

		p, err := client.Login(cmd.Context(), creds)
		if err != nil {
			return explainLoginError(err)
		}

		member, _ := sdk.AsMember(p)
		fmt.Println("------------------------------------------------------------")
		pterm.Success.Printf("Logged in as %s (%s member)\n", member.Profile.Name, member.Profile.Tier)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginCIF, "cif", "", "Member CIF number")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Member password")
}

func resolveCredentials(nonInteractive bool) (sdk.LoginCredentials, error) {
	creds := sdk.LoginCredentials{CIF: strings.TrimSpace(loginCIF), Password: loginPassword}
	if creds.CIF == "" && creds.Password == "" {
		if ok, env := sdk.CheckEnvCreds(); ok {
			pterm.Info.Println("Using member credentials from environment variables.")
			return sdk.LoginCredentials{CIF: strings.TrimSpace(env.CIF), Password: env.Password}, nil
		}
	}
	if creds.CIF != "" && creds.Password != "" {
		return creds, nil
	}
	if nonInteractive {
		return creds, fmt.Errorf("--cif and --password (or MALLPASS_CIF and MALLPASS_PASSWORD) are required in non-interactive mode")
	}

	var err error
	if creds.CIF == "" {
		if creds.CIF, err = pterm.DefaultInteractiveTextInput.Show("CIF"); err != nil {
			return creds, fmt.Errorf("failed to read CIF: %w", err)
		}
		creds.CIF = strings.TrimSpace(creds.CIF)
	}
	if creds.Password == "" {
		if creds.Password, err = pterm.DefaultInteractiveTextInput.WithMask("*").Show("Password"); err != nil {
			return creds, fmt.Errorf("failed to read password: %w", err)
		}
	}
	return creds, nil
}

func explainLoginError(err error) error {
	switch {
	case errors.Is(err, sdk.ErrValidation):
		return err
	case errors.Is(err, sdk.ErrAuthInvalid):
		return fmt.Errorf("login rejected: check your CIF and password")
	case errors.Is(err, sdk.ErrAuthTransient):
		return fmt.Errorf("the member service is unavailable, try again shortly: %w", err)
	case errors.Is(err, sdk.ErrDataUnavailable):
		return fmt.Errorf("the member service returned an unexpected response: %w", err)
	}
	return err
}
