package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/DawidMiftadinow/datatables-bundle/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const Version = "0.1.0"

var (
	v = config.New()

	rootCmd = &cobra.Command{
		Use:   "datatables",
		Short: "server-side processing for data tables",
		Long: fmt.Sprintf(`datatables (v%s)

Filters, sorts and paginates tabular data for DataTables clients.
Configuration can be set via command line flags or environment variables
in the format DATATABLES_<flag> (e.g. DATATABLES_PAGE_SIZE=25).`, Version),
		SilenceUsage: true,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of datatables",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "datatables v%s\n", Version)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().String(config.KeyTables, "tables.yaml", "Table definition file")
	rootCmd.PersistentFlags().String(config.KeyLogLevel, "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool(config.KeyDebug, false, "Enable SQL debug logging")

	rootCmd.AddCommand(versionCmd, serveCmd, queryCmd)
}

// bindFlags binds the command's flags to viper and loads the configuration
func bindFlags(cmd *cobra.Command, v *viper.Viper) (*config.Config, error) {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	return config.LoadConfig(v)
}

// newLogger builds the command logger and installs it as the slog default
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	logger := cfg.Logger(w)
	slog.SetDefault(logger)
	return logger
}
