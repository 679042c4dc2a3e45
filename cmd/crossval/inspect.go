package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/crossval"
	"github.com/hupe1980/crossval/blobstore"
	"github.com/hupe1980/crossval/config"
	"github.com/hupe1980/crossval/persistence"
)

func newInspectCmd() *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "inspect NAME",
		Short: "Print the envelope header of a saved ensemble",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.Global()

			store, err := cfg.Store(ctx)
			if err != nil {
				return err
			}

			blob, err := store.Open(ctx, args[0])
			if err != nil {
				return err
			}
			defer blob.Close()

			rc, err := blobstore.NewReader(ctx, blob)
			if err != nil {
				return err
			}
			defer rc.Close()

			h, err := persistence.ReadHeader(rc)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "name:        %s\n", args[0])
			fmt.Fprintf(out, "size:        %d\n", blob.Size())
			fmt.Fprintf(out, "version:     %d\n", h.Version)
			fmt.Fprintf(out, "description: %s\n", h.Description)
			fmt.Fprintf(out, "compression: %s\n", h.Compression)
			fmt.Fprintf(out, "raw:         %d\n", h.RawSize)
			fmt.Fprintf(out, "stored:      %d\n", h.StoredSize)
			fmt.Fprintf(out, "checksum:    %08x\n", h.Checksum)

			if !verify {
				return nil
			}
			tr := crossval.New()
			if err := tr.Open(ctx, store, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(out, "models:      %d\n", tr.Len())
			return nil
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", false, "verify the checksum and decode every model")

	return cmd
}
