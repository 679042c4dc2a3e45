package main

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/crossval/config"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "crossval",
		Short:         "Train and inspect k-fold cross-validated model ensembles",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			config.SetGlobal(cfg)
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML or JSON config file")

	root.AddCommand(newTrainCmd(), newInspectCmd(), newCompareCmd())
	return root
}
