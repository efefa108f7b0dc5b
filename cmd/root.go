package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/agentic-research/switch/internal/appconfig"
	"github.com/agentic-research/switch/internal/logging"
	"github.com/agentic-research/switch/internal/settings"
)

var (
	schemaPath    string
	appConfigPath string
	logLevel      string

	appCfg *appconfig.Config
	logger *logrus.Logger
	store  *settings.Store
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&schemaPath, "schema", "s", "", "Path or name of the folder schema config (default: last opened)")
	rootCmd.PersistentFlags().StringVar(&appConfigPath, "app-config", "", "Application config file (default is $HOME/.config/switch/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

var rootCmd = &cobra.Command{
	Use:           "switch",
	Short:         "Switch: folder schemas for 3D production projects",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		appCfg, err = appconfig.Load(appConfigPath)
		if err != nil {
			return err
		}
		level := appCfg.LogLevel
		if logLevel != "" {
			level = logLevel
		}
		logger, err = logging.New(level, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		if appCfg.File != "" {
			logger.Debugf("using app config %s", appCfg.File)
		}

		if err := os.MkdirAll(filepath.Dir(appCfg.SettingsDB), 0o755); err != nil {
			return fmt.Errorf("settings dir: %w", err)
		}
		store, err = settings.Open(appCfg.SettingsDB)
		if err != nil {
			return fmt.Errorf("open settings: %w", err)
		}
		return nil
	},
}

func closeStore() {
	if store != nil {
		store.Close()
		store = nil
	}
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	closeStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
