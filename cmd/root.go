package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	configcmd "github.com/designcoil/catalog-import/cmd/config"
	"github.com/designcoil/catalog-import/cmd/productimport"
	"github.com/designcoil/catalog-import/cmd/version"
	"github.com/designcoil/catalog-import/internal/cmdutil"
	"github.com/designcoil/catalog-import/internal/config"
	"github.com/designcoil/catalog-import/internal/logging"
)

// logManager is the global logging manager, created in init() and upgraded after config loads
var logManager *logging.Manager

// configFile is the value of the persistent --config flag.
var configFile string

var rootCmd = &cobra.Command{
	Use:   "catalog-import",
	Short: "Drive the platform's native bulk import pipeline from the command line",
	Long: "catalog-import stages catalog data files where the platform's import engine expects them, " +
		"runs the platform's own validation and import pipeline, and reports progress, " +
		"grouped row errors and a final summary.\n\n" +
		"Configuration is read from config.yaml and CATALOG_IMPORT_* environment variables.",
	PersistentPreRunE: runInitialize,
}

func init() {
	logManager = logging.NewManager()
	slog.SetDefault(logManager.Logger())

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Path to a config file (default searches $CATALOG_IMPORT_CONFIG_DIR, ~/.config/catalog-import, .)")

	rootCmd.AddCommand(productimport.RunCmd)
	rootCmd.AddCommand(productimport.ValidateCmd)
	rootCmd.AddCommand(configcmd.ConfigCmd)
	rootCmd.AddCommand(version.VersionCmd)
}

func runInitialize(cmd *cobra.Command, args []string) error {
	logger := logManager.Logger()

	if err := config.Init(configFile); err != nil {
		return err
	}

	levelStr := config.GetString("log_level")
	level, ok := logging.ParseLevel(levelStr)
	if !ok && levelStr != "" {
		logger.Warn("invalid log level configured, using default", "configured", levelStr, "default", level.String())
	}

	err := logManager.Upgrade(logging.FileOptions{
		Path:       config.GetPath("log_file"),
		MaxSizeMB:  config.GetInt("log_max_size_mb"),
		MaxBackups: config.GetInt("log_max_backups"),
		MaxAgeDays: config.GetInt("log_max_age_days"),
	}, level)
	if err != nil {
		logger.Warn("failed to enable file logging, continuing with stderr only", "error", err)
		logManager.SetLevel(level)
	}

	return nil
}

// Execute runs the root command. Errors the command already printed are not
// printed again.
func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	defer func() { _ = logManager.Close() }()

	err := rootCmd.Execute()
	if err == nil {
		return nil
	}

	if cmdutil.IsReported(err) {
		return err
	}

	cmd, _, _ := rootCmd.Find(os.Args[1:])
	if cmd == nil {
		cmd = rootCmd
	}

	fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
	if !cmd.SilenceUsage {
		fmt.Fprintln(rootCmd.ErrOrStderr())
		cmd.SetOut(rootCmd.ErrOrStderr())
		_ = cmd.Usage()
	}

	return err
}
