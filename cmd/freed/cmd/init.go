/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ssargent/freed/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file with a generated API key",
	Long: `Create the freed configuration file and data directory. A random API key
is generated for the HTTP server and saved with the configuration.

Examples:
  freed init
  freed init --config ./freed.toml --data-dir ./data
  freed init --force --print-key`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		force, _ := cmd.Flags().GetBool("force")
		printKey, _ := cmd.Flags().GetBool("print-key")
		rt := fromContext(cmd)

		if config.ConfigExists(rt.configPath) && !force {
			cmd.Printf("Configuration already exists at %s. Use --force to overwrite.\n", rt.configPath)
			return nil
		}

		cfg, err := config.BootstrapConfig(rt.configPath, dataDir)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
		rt.log.Info().Str("config", rt.configPath).Str("data_dir", cfg.DataDir).Msg("configuration created")

		cmd.Printf("Configuration created at %s\n", rt.configPath)
		if printKey {
			cmd.Printf("API key: %s\n", cfg.Security.APIKey)
		}
		cmd.Printf("\nYou can now start the server with:\n")
		cmd.Printf("  freed serve --config %s\n", rt.configPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("data-dir", "", "Data directory (default ./data)")
	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration")
	initCmd.Flags().Bool("print-key", false, "Print the generated API key")
}
