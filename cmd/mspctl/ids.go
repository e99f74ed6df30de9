package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tasifacuj/mission-control/internal/msp"
)

func newIDsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ids",
		Short: "List message identifiers with a decoder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tVERSION")
			for _, id := range msp.Supported() {
				version := "v1"
				if id.IsV2() {
					version = "v2"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\n", uint16(id), id, version)
			}
			return w.Flush()
		},
	}
}
