package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"sdsscraper/pkg/config"
	"sdsscraper/pkg/logger"
	"sdsscraper/pkg/ui"
)

var (
	// Version information, set via -ldflags
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	logFile    string
	noColor    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sdsscraper",
	Short: "Bulk downloader for the Bio-Rad literature library safety data sheets",
	Long: `sdsscraper renders the Bio-Rad literature library listing pages with a
headless browser, collects every safety data sheet download link and saves
the documents concurrently into a local directory.

Runs are resumable: the rendered pages are kept in an HTML file and documents
already on disk are never downloaded again.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command, cancelling on SIGINT/SIGTERM
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.NewConsole(os.Stderr, noColor).PrintError("Error", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.sdsscraper.yaml or ~/.config/sdsscraper/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write JSON logs to this file")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.SetVersionTemplate(`sdsscraper {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig merges the global flags with the command's own flag map and
// loads the configuration from every source
func loadConfig(flags map[string]interface{}) (*config.Config, error) {
	if flags == nil {
		flags = make(map[string]interface{})
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	if logFile != "" {
		flags["log-file"] = logFile
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging initialises the global logger on stderr
func setupLogging(cfg *config.Config) error {
	return logger.Initialize(&cfg.Logging, logger.Options{
		Console: os.Stderr,
		NoColor: !ui.ColorEnabled(os.Stderr, noColor),
	})
}

// setup loads configuration and logging for commands that need both
func setup(flags map[string]interface{}) (*config.Config, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	if err := setupLogging(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// changedFlags collects the values of flags the user set explicitly, keyed
// by the names config.MergeCommandLineFlags understands
func changedFlags(cmd *cobra.Command, names map[string]string) map[string]interface{} {
	out := make(map[string]interface{})
	fs := cmd.Flags()

	for flagName, key := range names {
		f := fs.Lookup(flagName)
		if f == nil || !f.Changed {
			continue
		}
		switch f.Value.Type() {
		case "int":
			if v, err := fs.GetInt(flagName); err == nil {
				out[key] = v
			}
		case "bool":
			if v, err := fs.GetBool(flagName); err == nil {
				out[key] = v
			}
		default:
			out[key] = f.Value.String()
		}
	}
	return out
}
