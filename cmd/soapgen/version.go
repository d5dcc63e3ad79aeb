package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"pkt.systems/soapgen"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "pkt.systems/soapgen %s\n", soapgen.Version())
			return err
		},
	}
}
