package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the driveguard application
var rootCmd = &cobra.Command{
	Use:   "driveguard",
	Short: "Scoped HTTP facade for Google Drive",
	Long: `driveguard exposes a small HTTP API for uploading files and managing
folders in Google Drive, with every operation confined to a configured
root folder and its descendants.

Commands:
  - serve: start the HTTP API and metrics servers
  - auth:  run the OAuth consent flow from the terminal`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "driveguard version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
}
