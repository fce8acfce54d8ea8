package cmd

import (
	"github.com/spf13/cobra"
	"github.com/ssargent/freed/pkg/api"
)

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode <hex>...",
	Short: "Decode a FreeD frame",
	Long: `Decode a FreeD frame and print its fields. The message kind is taken
from the first byte. The checksum is only checked with --verify.

Examples:
  freed decode D1 01 004000 000000 000000 000000 000000 000000 000000 000000 0000 2E
  freed decode --raw --verify D101004000...
  freed decode --json DA01...`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		verify, _ := cmd.Flags().GetBool("verify")
		raw, _ := cmd.Flags().GetBool("raw")
		asJSON, _ := cmd.Flags().GetBool("json")
		rt := fromContext(cmd)

		frame, err := frameArg(args)
		if err != nil {
			return err
		}
		resp, err := api.DecodeFrame(frame, verify, raw)
		if err != nil {
			return err
		}
		rt.log.Debug().Str("kind", resp.Kind).Int("length", resp.Length).Msg("frame decoded")

		if asJSON {
			return outputJSON(cmd.OutOrStdout(), resp)
		}
		return outputDecoded(cmd.OutOrStdout(), resp)
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().Bool("verify", false, "Check the trailing checksum")
	decodeCmd.Flags().Bool("raw", false, "Also print unscaled field integers")
	decodeCmd.Flags().Bool("json", false, "Print JSON instead of a table")
}
