package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/convene/internal/ir"
)

// VersionInfo is the output of the version command.
type VersionInfo struct {
	Engine string `json:"engine"`
	IR     string `json:"ir"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print engine and IR versions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			info := VersionInfo{Engine: ir.EngineVersion, IR: ir.IRVersion}
			if formatter.IsJSON() {
				return formatter.Success(info)
			}
			fmt.Fprintf(formatter.Writer, "convene %s (ir %s)\n", info.Engine, info.IR)
			return nil
		},
	}
}
