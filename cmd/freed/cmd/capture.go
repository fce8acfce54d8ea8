package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
	"github.com/ssargent/freed/pkg/api"
	"github.com/ssargent/freed/pkg/capture"
	"github.com/ssargent/freed/pkg/freed"
)

// captureCmd groups the capture log commands
var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Manage the frame capture log",
	Long: `Manage the frame capture log stored under <data_dir>/captures. The log
is the same one the server writes to when captures are enabled, so stop the
server before using these commands.`,
}

func openCaptures(cmd *cobra.Command) (*capture.Store, error) {
	rt := fromContext(cmd)
	store, err := capture.Open(rt.cfg.CaptureDir())
	if err != nil {
		return nil, err
	}
	rt.log.Debug().Str("dir", rt.cfg.CaptureDir()).Msg("capture log opened")
	return store, nil
}

var captureAddCmd = &cobra.Command{
	Use:   "add <hex>...",
	Short: "Add a frame to the capture log",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		frame, err := frameArg(args)
		if err != nil {
			return err
		}

		store, err := openCaptures(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := store.Put(frame)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id.String())
		return nil
	},
}

var captureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List captured frames, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		if limit < 0 {
			return fmt.Errorf("invalid limit %d", limit)
		}

		store, err := openCaptures(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.List(limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No captures found")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		defer w.Flush()

		fmt.Fprintln(w, "ID\tCAPTURED\tKIND\tFRAME")
		for _, e := range entries {
			kind := "unknown"
			if k, ok := freed.Lookup(e.Frame[0]); ok {
				kind = k.Name
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ID, e.Captured.Format(time.RFC3339), kind, freed.FormatHex(e.Frame))
		}
		return nil
	},
}

var captureShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show and decode a captured frame",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := ksuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid capture id %q: %w", args[0], err)
		}

		store, err := openCaptures(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		entry, err := store.Get(id)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ID:       %s\n", entry.ID)
		fmt.Fprintf(out, "Captured: %s\n", entry.Captured.Format(time.RFC3339))
		fmt.Fprintf(out, "Frame:    %s\n\n", freed.FormatHex(entry.Frame))

		resp, err := api.DecodeFrame(entry.Frame, true, false)
		if err != nil {
			fmt.Fprintf(out, "Not decodable: %v\n", err)
			return nil
		}
		return outputDecoded(out, resp)
	},
}

var captureDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a captured frame",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := ksuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid capture id %q: %w", args[0], err)
		}

		store, err := openCaptures(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(captureCmd)
	captureCmd.AddCommand(captureAddCmd, captureListCmd, captureShowCmd, captureDeleteCmd)
	captureListCmd.Flags().Int("limit", 100, "Maximum number of frames to list (0 for all)")
}
