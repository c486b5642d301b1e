package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "fitness-tracker",
	Short: "Workout tracking API server",
	Long: `fitness-tracker serves the workout tracking API: users plan workout
sessions, add catalog exercises to them, log sets and drive each session
from planned to completed. Running without a subcommand starts the server.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// @title Fitness Tracker API
// @version 1.0
// @description API for planning and recording workout sessions.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().String("config", ".", "directory containing config.yaml")
	rootCmd.PersistentFlags().String("addr", "", "listen address, overrides server.address")
	rootCmd.PersistentFlags().String("log-level", "", "log level, overrides log.level")
	_ = viper.BindPFlag("config_dir", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("server.address", rootCmd.PersistentFlags().Lookup("addr"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func registerCommands() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(repairCmd())
	rootCmd.AddCommand(ensureIndexesCmd())
}
