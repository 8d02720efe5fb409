package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/config"
	logger "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/logging"
)

// global flags
var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "qpde",
	Short: "Risk-aware permission decision engine",
	Long: `qpde decides whether an actor may perform an action on a protected
panel. It combines a declarative permission matrix, a weighted risk model
and conditional policies, and keeps a forensic audit trail of every decision.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.InitConfig(cfgFile); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger.InitLogger(config.GetConfig().Log.Dir)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Configuration file (default is ./config/config.yaml)")

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}
