package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jimyag/panelbot/internal/panelbot"
	"github.com/jimyag/panelbot/internal/panelbot/config"
	"github.com/jimyag/panelbot/internal/panelbot/entity"
)

// loadConfig 命令行指定的配置文件优先于 PANELBOT_CONFIG
func loadConfig(file string) (*config.Config, error) {
	if file != "" {
		return config.Load(file)
	}
	return config.New()
}

func newServeCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot API and OAuth web server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), *configFile)
		},
	}
}

func runServe(ctx context.Context, configFile string) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create config")
		return err
	}
	server, err := panelbot.New(cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create server")
		return err
	}
	if err := server.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to run server")
		return err
	}
	return nil
}

func newTemplatesCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "Print the template catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			templates, err := config.LoadTemplates(cfg.TemplatesFile)
			if err != nil {
				return err
			}
			return printTemplates(cmd.OutOrStdout(), templates)
		},
	}
}

func printTemplates(out io.Writer, templates []entity.Template) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDISPLAY NAME\tMEMORY\tDISK\tCPU\tNEST/EGG")
	for _, t := range templates {
		fmt.Fprintf(w, "%s\t%s\t%d MB\t%d MB\t%d%%\t%d/%d\n",
			t.Name, t.DisplayName, t.MemoryMB, t.DiskMB, t.CPUHundredths, t.NestID, t.EggID)
	}
	return w.Flush()
}

func newPanelInfoCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "panel-info",
		Short: "Print nests, eggs and node allocation usage of the panel",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
			ctx := logger.WithContext(cmd.Context())

			services, err := panelbot.NewServices(ctx, cfg)
			if err != nil {
				return err
			}
			defer services.Close()

			overview, err := services.Diagnostics.DescribePanel(ctx)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(overview)
		},
	}
}
