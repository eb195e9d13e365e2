package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anurag-upadhay/oofem/internal/rve"
)

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract the inclusions touching a sub-box",
		Long: "Read a packing (generate output or a JSON array of inclusions) from --input or stdin and " +
			"print the inclusions whose sphere intersects the cube [corner, corner+size].",
		Args: cobra.NoArgs,
		RunE: runExtract,
	}

	cmd.Flags().StringP("input", "i", "-", "Packing JSON file, - for stdin")
	cmd.Flags().String("corner", "", "Lower corner of the cube, comma separated (e.g. 0,0,0)")
	cmd.Flags().Float64("size", 0, "Edge length of the cube")
	_ = cmd.MarkFlagRequired("corner")
	_ = cmd.MarkFlagRequired("size")

	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	cornerFlag, _ := cmd.Flags().GetString("corner")
	size, _ := cmd.Flags().GetFloat64("size")
	input, _ := cmd.Flags().GetString("input")

	corner, err := parsePoint(cornerFlag)
	if err != nil {
		return err
	}

	var data []byte
	if input == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return fmt.Errorf("read packing: %w", err)
	}
	inclusions, err := decodePacking(data)
	if err != nil {
		return err
	}

	found, err := rve.Extract(corner, size, inclusions)
	if err != nil {
		return err
	}
	if found == nil {
		found = []rve.Inclusion{}
	}
	return writeJSON(cmd.OutOrStdout(), found)
}

func parsePoint(s string) (rve.Point, error) {
	fields := strings.Split(s, ",")
	p := make(rve.Point, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid corner %q: %w", s, err)
		}
		p = append(p, v)
	}
	return p, nil
}

// decodePacking accepts either a bare inclusion array or an object with an
// "inclusions" field, such as the output of generate.
func decodePacking(data []byte) ([]rve.Inclusion, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty packing input")
	}
	if data[0] == '[' {
		var incs []rve.Inclusion
		if err := json.Unmarshal(data, &incs); err != nil {
			return nil, fmt.Errorf("failed to parse packing JSON: %w", err)
		}
		return incs, nil
	}
	var wrapped struct {
		Inclusions []rve.Inclusion `json:"inclusions"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse packing JSON: %w", err)
	}
	return wrapped.Inclusions, nil
}
