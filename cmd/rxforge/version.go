package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/rxforge/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of rxforge",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "rxforge version %s\n", info.Full())
			return err
		},
	}
}
