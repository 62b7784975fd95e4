package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"sdsscraper/pkg/config"
	"sdsscraper/pkg/ui"
)

var forceInit bool

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage sdsscraper configuration files.

Configuration is loaded from, highest priority first:
  - Command line flags
  - Environment variables (SDSSCRAPER_*, also read from .env)
  - Configuration file
  - Default values`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default values",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate the configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = ".sdsscraper.yaml"
	}

	if _, err := os.Stat(configPath); err == nil && !forceInit {
		return fmt.Errorf("configuration file %s already exists (use --force to overwrite)", configPath)
	}

	if err := config.DefaultConfig().Save(configPath); err != nil {
		return err
	}

	console := ui.NewConsole(cmd.OutOrStdout(), noColor)
	console.PrintSuccess("Configuration file created: " + configPath)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	console := ui.NewConsole(cmd.OutOrStdout(), noColor)
	console.PrintSuccess("Configuration is valid")
	console.PrintInfo("Pages", fmt.Sprintf("%d..%d", cfg.Site.StartPage, cfg.Site.EndPage-1))
	console.PrintInfo("Engine", cfg.Browser.Engine)
	console.PrintInfo("Extract mode", cfg.Extract.Mode)
	console.PrintInfo("Output", cfg.Output.PDFDirectory)
	console.PrintInfo("Workers", fmt.Sprintf("%d", cfg.Download.ConcurrentDownloads))
	return nil
}
