package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KOMKZ/go-yogan-binding/flagx"
	"github.com/KOMKZ/go-yogan-binding/graph"
)

type graphRequest struct {
	Target string `flag:"target,t" usage:"settings, repository, service or handler" default:"service"`
	Flat   bool   `flag:"flat-only" usage:"print only the flattened graph"`
}

func newGraphCmd() *cobra.Command {
	var req graphRequest

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print a declared graph and its flattened form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flagx.ParseFlags(cmd, &req); err != nil {
				return err
			}
			return runGraph(cmd, req)
		},
	}
	cobra.CheckErr(flagx.BindFlags(cmd, &req))
	return cmd
}

func runGraph(cmd *cobra.Command, req graphRequest) error {
	d, err := newDemo()
	if err != nil {
		return err
	}
	desc, err := d.description(req.Target)
	if err != nil {
		return err
	}

	flat, err := graph.Flatten(desc)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !req.Flat {
		fmt.Fprintf(out, "declared (%d dependencies):\n%s\n", desc.Len(), desc)
	}
	fmt.Fprintf(out, "flattened (%d dependencies):\n%s", flat.Len(), flat)
	return nil
}
