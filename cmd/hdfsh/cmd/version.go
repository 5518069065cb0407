package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set at build time with
// -ldflags "-X github.com/opensandbox/hdfsh/cmd/hdfsh/cmd.version=<v>".
var version = "dev"

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the hdfsh version",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipSetup: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "hdfsh version %s\n", version)
		return err
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
