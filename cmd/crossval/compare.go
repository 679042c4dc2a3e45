package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/crossval/config"
	"github.com/hupe1980/crossval/distance"
	"github.com/hupe1980/crossval/record"
)

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare PROBE GALLERY",
		Short: "Apply the configured gates to two JSON records",
		Long: `Apply the configured gates to two records given as JSON objects of the
form {"metadata":{...},"vector":[...]}, and print the score.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gate, err := config.Global().Gates()
			if err != nil {
				return err
			}

			ds, err := record.ReadJSONL(strings.NewReader(args[0]+"\n"+args[1]), nil, record.Schema)
			if err != nil {
				return err
			}
			if len(ds) != 2 {
				return fmt.Errorf("expected two records, got %d", len(ds))
			}

			score := gate.Compare(ds[0], ds[1])
			verdict := "accept"
			if score == distance.Reject {
				verdict = "reject"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %g\n", verdict, score)
			return nil
		},
	}
	return cmd
}
