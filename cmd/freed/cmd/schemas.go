package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/ssargent/freed/pkg/freed"
)

// schemasCmd represents the schemas command
var schemasCmd = &cobra.Command{
	Use:   "schemas",
	Short: "List the FreeD message layouts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		defer w.Flush()

		for i, k := range freed.Kinds() {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "%s (0x%02X, %d bytes)\n", k.Name, k.Tag(), k.Schema.Length())
			fmt.Fprintln(w, "FIELD\tOFFSET\tSIZE\tSIGNED\tSCALE")
			for _, f := range k.Schema.Fields() {
				scale := "-"
				if f.Scaled() {
					scale = fmt.Sprintf("1/%d", f.Scale)
				}
				fmt.Fprintf(w, "%s\t%d\t%d\t%t\t%s\n", f.Name, f.Begin, f.Size, f.Signed, scale)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemasCmd)
}
