package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/lawgiver/internal/loader"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the rule and precondition kinds available to pillar definitions",
	RunE:  runKinds,
}

func runKinds(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Rules:")
	for _, kind := range loader.RuleKinds() {
		fmt.Fprintln(out, "  "+kind)
	}
	fmt.Fprintln(out, "Preconditions:")
	for _, kind := range loader.PreconditionKinds() {
		fmt.Fprintln(out, "  "+kind)
	}
	return nil
}
