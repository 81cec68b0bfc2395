package cli

import (
	"github.com/spf13/cobra"

	"github.com/turtacn/LandArea-Intelligence/internal/application/analysis"
)

// versionInfo is the JSON shape of the version subcommand output.
type versionInfo struct {
	Binary    string `json:"binary"`
	Engine    string `json:"engine"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
}

// newVersionCommand builds the version subcommand.  Unlike --version it also
// reports the engine lineage stamped on analysis results.
func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print binary and engine version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd, versionInfo{
				Binary:    Version,
				Engine:    analysis.EngineVersion,
				GitCommit: GitCommit,
				BuildDate: BuildDate,
			})
		},
	}
}
