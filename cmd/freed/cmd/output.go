package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ssargent/freed/pkg/api"
	"github.com/ssargent/freed/pkg/freed"
)

// frameArg joins the positional arguments so a frame may be passed as one
// hex string or as separate byte groups.
func frameArg(args []string) ([]byte, error) {
	frame, err := freed.ParseHex(strings.Join(args, ""))
	if err != nil {
		return nil, fmt.Errorf("invalid frame: %w", err)
	}
	return frame, nil
}

func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputDecoded prints a decoded frame field by field in wire order
func outputDecoded(w io.Writer, resp *api.DecodeResponse) error {
	kind, ok := freed.LookupName(resp.Kind)
	if !ok {
		return fmt.Errorf("%w: %s", freed.ErrUnknownType, resp.Kind)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "Kind:\t%s (%s)\n", resp.Kind, resp.Type)
	fmt.Fprintf(tw, "Length:\t%d\n", resp.Length)
	for _, f := range kind.Schema.Fields() {
		if resp.Raw != nil {
			fmt.Fprintf(tw, "%s:\t%s\t(raw %d)\n", f.Name, resp.Fields[f.Name], resp.Raw[f.Name])
			continue
		}
		fmt.Fprintf(tw, "%s:\t%s\n", f.Name, resp.Fields[f.Name])
	}
	if resp.ChecksumValid != nil {
		status := "valid"
		if !*resp.ChecksumValid {
			status = "INVALID"
		}
		fmt.Fprintf(tw, "Checksum:\t%s\n", status)
	}
	return nil
}
