package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fivetwenty-io/linkwalk/cmd/linkwalk/commands"
	"github.com/fivetwenty-io/linkwalk/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "linkwalk",
	Short: "Hypermedia API walker",
	Long: `A command-line interface for walking hypermedia APIs.

Starting at a root URI, linkwalk follows the named link relations one by one
(expanding URI templates where needed) and performs a final GET, POST, PUT,
PATCH or DELETE against the resource it arrives at.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.linkwalk/config.yml)")
	rootCmd.PersistentFlags().StringP("root", "r", "", "root URI every walk starts from")
	rootCmd.PersistentFlags().StringP("media-type", "m", "", "media type to request and parse (default application/json)")
	rootCmd.PersistentFlags().StringArrayP("header", "H", nil, "header sent with every request, as 'Name: value' (repeatable)")
	rootCmd.PersistentFlags().StringP("output", "o", constants.FormatTable, "output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("events-url", "", "NATS server that receives walk transitions")

	// Bind flags to viper
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))
	_ = viper.BindPFlag("media_type", rootCmd.PersistentFlags().Lookup("media-type"))
	_ = viper.BindPFlag("header", rootCmd.PersistentFlags().Lookup("header"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("events_url", rootCmd.PersistentFlags().Lookup("events-url"))

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewConfigCommand())

	for _, cmd := range commands.NewWalkCommands() {
		rootCmd.AddCommand(cmd)
	}
}

func initConfig() {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".linkwalk")

		// Search config in ~/.linkwalk/config.yml
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match
	viper.SetEnvPrefix("LINKWALK")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
