package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/anurag-upadhay/oofem/internal/version"
)

// configEnv names the config file when --config is not given.
const configEnv = "RVEGEN_CONFIG"

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "rvegen",
		Short:         "Periodic spherical inclusion packings for RVE models",
		Long:          "Generate non-overlapping spherical inclusions in a periodic box until a target volume fraction is reached, and extract the inclusions touching a sub-box.",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	// stdout carries JSON only.
	root.SetOut(out)
	root.SetErr(errOut)

	root.AddCommand(newGenerateCmd(), newExtractCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd.OutOrStdout(), map[string]string{
				"version":    version.Version,
				"git_sha":    version.GitSHA,
				"build_time": version.BuildTime,
			})
		},
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
