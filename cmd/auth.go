package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/driveguard/driveguard/internal/config"
	"github.com/driveguard/driveguard/internal/google"
	"github.com/driveguard/driveguard/internal/logging"
)

func newAuthCmd() *cobra.Command {
	var (
		configFile string
		code       string
	)

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize Drive access from the terminal",
		Long: `Run the OAuth consent flow without starting the server.

Prints the Google consent URL, waits for the authorization code to be
pasted on stdin, exchanges it and caches the resulting token. The serve
command picks the token up on its next Drive operation.

With --code the prompt is skipped and the given code is exchanged
directly, which is useful in scripts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.Google.ClientID == "" || cfg.Google.ClientSecret == "" {
				return fmt.Errorf("google OAuth credentials are required (GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET)")
			}

			logger := logging.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format)

			auth, err := google.NewAuthenticator(google.Config{
				ClientID:     cfg.Google.ClientID,
				ClientSecret: cfg.Google.ClientSecret,
				RedirectURL:  cfg.Google.RedirectURL,
				TokenFile:    cfg.Google.TokenFile,
			}, logger)
			if err != nil {
				return fmt.Errorf("failed to create authenticator: %w", err)
			}

			if code == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Open the following URL in a browser and approve access:\n\n%s\n\n", auth.AuthURL("state-token"))
				fmt.Fprint(cmd.OutOrStdout(), "Paste the authorization code: ")

				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil {
					return fmt.Errorf("failed to read authorization code: %w", err)
				}
				code = strings.TrimSpace(line)
			}
			if code == "" {
				return fmt.Errorf("authorization code is required")
			}

			if _, err := auth.Exchange(cmd.Context(), code); err != nil {
				return fmt.Errorf("code exchange failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Authorization complete. Token stored.")
			return nil
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "Path to the TOML configuration file")
	cmd.Flags().StringVar(&code, "code", "", "Authorization code to exchange (skips the interactive prompt)")

	return cmd
}
