/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "edutune",
	Short: "Educational chat assistant for Messenger and Telegram",
	Long: `EduTune answers chat commands with AI explanations, memes, jokes,
motivational quotes and music links.

Run "edutune gateway" to serve the Messenger webhook, or "edutune chat" to try
the commands locally.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
