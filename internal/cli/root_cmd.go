package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd собирает дерево команд mpctl. Каждый вызов даёт независимые флаги.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mpctl",
		Short:         "mpctl inspects, builds and transfers MIME multipart messages.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(
		newInspectCmd(),
		newPackCmd(),
		newBoundaryCmd(),
		newUploadCmd(),
		newFetchCmd(),
	)
	return rootCmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
