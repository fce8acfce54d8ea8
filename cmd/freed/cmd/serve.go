/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ssargent/freed/pkg/api"
	"github.com/ssargent/freed/pkg/capture"
	"github.com/ssargent/freed/pkg/di"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the freed REST API server. Requests must carry the X-API-Key
header from the configuration file; run 'freed init' to create one.

With --captures (or capture.enabled in the config) posted frames can be
kept in a capture log under <data_dir>/captures.

Examples:
  freed serve
  freed serve --port 9000 --bind 0.0.0.0
  freed serve --captures --strict`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt := fromContext(cmd)
		cfg := rt.cfg

		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("bind") {
			cfg.Bind, _ = cmd.Flags().GetString("bind")
		}
		if cmd.Flags().Changed("strict") {
			cfg.Codec.Strict, _ = cmd.Flags().GetBool("strict")
		}
		if cmd.Flags().Changed("captures") {
			cfg.Capture.Enabled, _ = cmd.Flags().GetBool("captures")
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		var store api.CaptureStore
		if cfg.Capture.Enabled {
			s, err := capture.Open(cfg.CaptureDir())
			if err != nil {
				return err
			}
			defer s.Close()
			store = s
		}

		if container == nil {
			container = di.NewContainer()
		}
		starter := container.GetServerFactory().CreateServerStarter()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		config := api.ServerConfig{
			Bind:   cfg.Bind,
			Port:   cfg.Port,
			APIKey: cfg.Security.APIKey,
			Strict: cfg.Codec.Strict,
		}
		return starter.StartServer(ctx, config, store, rt.log)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind to")
	serveCmd.Flags().Bool("strict", false, "Reject overflowing values on encode")
	serveCmd.Flags().Bool("captures", false, "Enable the capture log endpoints")
}
