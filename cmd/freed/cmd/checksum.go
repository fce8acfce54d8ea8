package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/freed/pkg/codec"
	"github.com/ssargent/freed/pkg/freed"
)

// checksumCmd represents the checksum command
var checksumCmd = &cobra.Command{
	Use:   "checksum <hex>...",
	Short: "Compute the FreeD checksum of some bytes",
	Long: `Compute the FreeD checksum, 0x40 minus the byte sum modulo 256, over
all given bytes. Pass a frame without its final byte to get the value that
byte should hold.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := frameArg(args)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "0x%02X\n", codec.Checksum(data))
		return nil
	},
}

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <hex>...",
	Short: "Check the checksum of a FreeD frame",
	Long: `Check that a frame sums to 0x40 modulo 256. For known message kinds only
the schema length is checked, so trailing bytes are ignored. Exits non-zero
on a mismatch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		frame, err := frameArg(args)
		if err != nil {
			return err
		}

		if kind, ok := freed.Lookup(frame[0]); ok && len(frame) > kind.Schema.Length() {
			frame = frame[:kind.Schema.Length()]
		}
		if err := codec.Verify(frame); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "valid")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checksumCmd)
	rootCmd.AddCommand(verifyCmd)
}
