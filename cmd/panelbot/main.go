package main

import (
	"context"
	"os"

	_ "github.com/jimmicro/version"
	"github.com/spf13/cobra"
)

func main() {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "panelbot",
		Short: "panelbot - chat bot backend for self-service Pterodactyl servers",
		Long: `panelbot links chat accounts to Pterodactyl panel accounts and lets users
create, list and delete servers from presets within a per-user quota.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configFile)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default: $PANELBOT_CONFIG)")

	rootCmd.AddCommand(
		newServeCommand(&configFile),
		newTemplatesCommand(&configFile),
		newPanelInfoCommand(&configFile),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
