package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sir_venger/multipart_lite/pkg/multipart"
)

func newBoundaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "boundary",
		Short: "Print a freshly generated boundary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), multipart.GenerateBoundary())
			return err
		},
	}
}
