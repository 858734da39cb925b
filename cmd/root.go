// Package cmd is for command line interactions with the sxn application
package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use: "sxn",
	Short: `Collect silk-protein sequences from NCBI and analyze their serine [SX]_n motifs.
Records are stored in a taxonomy-shaped directory tree shared by all subcommands`,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}

func init() {
	cobra.OnInitialize(initSettings)

	RootCmd.PersistentFlags().StringP("settings", "s", "", "path to a settings.yaml overriding defaults")
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "log additional progress information")

	viper.BindPFlag("settings", RootCmd.PersistentFlags().Lookup("settings"))
	viper.BindPFlag("verbose", RootCmd.PersistentFlags().Lookup("verbose"))
}

// initSettings reads the optional settings file into viper before any
// command runs.
func initSettings() {
	settings := viper.GetString("settings")
	if settings == "" {
		return
	}
	viper.SetConfigFile(settings)
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("failed to read settings file %s: %v", settings, err)
	}
}
