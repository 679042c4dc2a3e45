package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/hupe1980/crossval"
	"github.com/hupe1980/crossval/codec"
	"github.com/hupe1980/crossval/config"
	"github.com/hupe1980/crossval/metadata"
	"github.com/hupe1980/crossval/persistence"
	"github.com/hupe1980/crossval/promcollector"
	"github.com/hupe1980/crossval/record"
)

type trainFlags struct {
	data        string
	out         string
	codec       string
	description string
	workers     int
	leaveOneOut bool
	compression string
	metricsAddr string
	where       []string
}

func newTrainCmd() *cobra.Command {
	var f trainFlags

	cmd := &cobra.Command{
		Use:   "train --data dataset.jsonl --out name",
		Short: "Train one model per partition and save the ensemble",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTrain(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.data, "data", "d", "", "JSONL dataset, one {\"metadata\":{},\"vector\":[]} per line")
	fl.StringVarP(&f.out, "out", "o", "", "blob name the ensemble is saved under")
	fl.StringVar(&f.codec, "codec", "go-json", "dataset codec (json, go-json)")
	fl.StringVar(&f.description, "description", "", "transform description (overrides config)")
	fl.IntVar(&f.workers, "workers", 0, "concurrent partition jobs (overrides config)")
	fl.BoolVar(&f.leaveOneOut, "leave-one-out", false, "hold out records by subject (overrides config)")
	fl.StringVar(&f.compression, "compression", "", "envelope compression: none, lz4, zstd (overrides config)")
	fl.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while training")
	fl.StringArrayVar(&f.where, "where", nil, "train only on records matching \"key op operand\" (repeatable, added to config select)")
	_ = cmd.MarkFlagRequired("data")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runTrain(cmd *cobra.Command, f trainFlags) error {
	ctx := cmd.Context()

	cfg := *config.Global()
	fl := cmd.Flags()
	if fl.Changed("description") {
		cfg.Description = f.description
	}
	if fl.Changed("workers") {
		cfg.Workers = f.workers
	}
	if fl.Changed("leave-one-out") {
		cfg.LeaveOneOut = f.leaveOneOut
	}
	if fl.Changed("compression") {
		if _, err := persistence.ParseCompression(f.compression); err != nil {
			return err
		}
		cfg.Compression = f.compression
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	selection, err := selectionOf(&cfg, f.where)
	if err != nil {
		return err
	}

	c, ok := codec.ByName(f.codec)
	if !ok {
		return fmt.Errorf("unknown codec %q", f.codec)
	}
	ds, err := readDataset(f.data, c)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if selection != nil {
		total := len(ds)
		ds = ds.Select(selection)
		fmt.Fprintf(out, "selected %d of %d record(s)\n", len(ds), total)
	}

	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	opts = append(opts, crossval.WithMetricsCollector(promcollector.New(reg)))
	if f.metricsAddr != "" {
		stop, err := serveMetrics(f.metricsAddr, reg)
		if err != nil {
			return err
		}
		defer stop()
	}

	store, err := cfg.Store(ctx)
	if err != nil {
		return err
	}

	tr := crossval.New(opts...)
	start := time.Now()
	trainErr := tr.Train(ctx, ds)

	var te *crossval.TrainingError
	if trainErr != nil && !errors.As(trainErr, &te) {
		return trainErr
	}
	if tr.State() != crossval.StateTrained {
		return trainErr
	}

	if err := tr.Save(ctx, store, f.out); err != nil {
		return err
	}

	fmt.Fprintf(out, "trained %d partition model(s) on %d record(s) in %s\n", tr.Len(), len(ds), time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(out, "saved %s (%s)\n", f.out, tr.Description())
	if te != nil {
		fmt.Fprintf(out, "failed partitions: %v\n", te.Partitions())
		return trainErr
	}
	return nil
}

// selectionOf combines the config selectors with --where expressions.
func selectionOf(cfg *config.Config, where []string) (*metadata.FilterSet, error) {
	fs, err := cfg.Selection()
	if err != nil {
		return nil, err
	}
	for _, expr := range where {
		f, err := metadata.ParseFilter(expr)
		if err != nil {
			return nil, err
		}
		if fs == nil {
			fs = metadata.NewFilterSet()
		}
		fs.Filters = append(fs.Filters, f)
	}
	return fs, nil
}

func readDataset(path string, c codec.Codec) (record.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return record.ReadJSONL(f, c, record.Schema)
}

func serveMetrics(addr string, reg *prometheus.Registry) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.Serve(ln) }()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
