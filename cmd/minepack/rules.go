package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List registered rules in evaluation order",
	Args:  cobra.NoArgs,
	RunE:  runRules,
}

var rulesPacks []string

func init() {
	rulesCmd.Flags().StringSliceVar(&rulesPacks, "rules-pack", nil, "YAML custom rules pack (repeatable)")
}

func runRules(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	reg, err := buildRegistry(cfg, rulesPacks, log)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RULE\tSEVERITY\tDESCRIPTION")
	for _, r := range reg.Rules() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Key, r.Severity, r.Description)
	}
	return tw.Flush()
}
