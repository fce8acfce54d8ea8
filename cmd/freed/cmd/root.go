/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/ssargent/freed/pkg/config"
	"github.com/ssargent/freed/pkg/di"
	"github.com/ssargent/freed/pkg/logging"
)

var container *di.Container

// SetContainer injects the dependency container used by the commands
func SetContainer(c *di.Container) {
	container = c
}

type runtimeKey struct{}

// runtime is the per-invocation state resolved by the root command
type runtime struct {
	cfg        *config.Config
	configPath string
	log        zerolog.Logger
}

func fromContext(cmd *cobra.Command) *runtime {
	if rt, ok := cmd.Context().Value(runtimeKey{}).(*runtime); ok {
		return rt
	}
	return &runtime{cfg: config.DefaultConfig(), log: logging.Nop()}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "freed",
	Short: "FreeD camera tracking codec",
	Long: `freed decodes, encodes and checks FreeD camera tracking messages.

Frames are given as hex strings; spaces and the separators ": - _ |" are
ignored, as is a leading 0x. The serve command exposes the same operations
over HTTP and can keep a capture log of frames.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		logLevel, _ := cmd.Flags().GetString("log-level")

		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		// A missing config file means defaults; serve refuses to start
		// without an initialized API key.
		cfg := config.DefaultConfig()
		if config.ConfigExists(configPath) {
			loaded, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg = loaded
		}

		if logLevel != "" {
			if _, ok := logging.ParseLevel(logLevel); !ok {
				return fmt.Errorf("invalid log level %q", logLevel)
			}
			cfg.Logging.Level = logLevel
		}

		log := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Output: cmd.ErrOrStderr(),
		})
		log.Debug().Str("config", configPath).Msg("configuration resolved")

		cmd.SetContext(context.WithValue(cmd.Context(), runtimeKey{}, &runtime{
			cfg:        cfg,
			configPath: configPath,
			log:        log,
		}))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file (default ~/.config/freed/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (trace, debug, info, warn, error, disabled)")
}
