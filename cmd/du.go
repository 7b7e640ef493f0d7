package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vietdv277/s3du/internal/du"
	"github.com/vietdv277/s3du/internal/metrics"
	"github.com/vietdv277/s3du/internal/ui"
	"github.com/vietdv277/s3du/pkg/types"
)

// duOptions are the resolved settings of a sizing run
type duOptions struct {
	bucket         string
	backend        types.Backend
	objectVersions types.ObjectVersions
	unit           ui.Unit
	output         ui.Format
	concurrency    int
	timeout        time.Duration
	interactive    bool
	textfile       string
}

func addDuFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("object-versions", "o", "current", "object versions to count with the s3 backend: current, all or non-current")
	cmd.Flags().StringP("unit", "u", "binary", "size unit: binary, decimal or bytes")
	cmd.Flags().String("output", "table", "output format: table, json or yaml")
	cmd.Flags().Int("concurrency", du.DefaultConcurrency, "number of buckets sized in parallel")
	cmd.Flags().Duration("timeout", 0, "abort the run after this long (0 means no limit)")
	cmd.Flags().Bool("select", false, "pick the bucket to size interactively")
	cmd.Flags().String("textfile", "", "also write Prometheus metrics to this file")

	_ = viper.BindPFlag("object_versions", cmd.Flags().Lookup("object-versions"))
	_ = viper.BindPFlag("unit", cmd.Flags().Lookup("unit"))
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("concurrency", cmd.Flags().Lookup("concurrency"))
	_ = viper.BindPFlag("timeout", cmd.Flags().Lookup("timeout"))
	_ = viper.BindPFlag("select", cmd.Flags().Lookup("select"))
	_ = viper.BindPFlag("textfile", cmd.Flags().Lookup("textfile"))
}

// loadDuOptions resolves the run settings from viper and the positional args
func loadDuOptions(args []string) (*duOptions, error) {
	opts := &duOptions{
		concurrency: viper.GetInt("concurrency"),
		timeout:     viper.GetDuration("timeout"),
		interactive: viper.GetBool("select"),
		textfile:    viper.GetString("textfile"),
	}

	if len(args) > 0 {
		opts.bucket = args[0]
	}
	if opts.bucket != "" && opts.interactive {
		return nil, fmt.Errorf("--select cannot be combined with a bucket argument")
	}

	var err error
	if opts.backend, err = types.ParseBackend(viper.GetString("backend")); err != nil {
		return nil, err
	}
	if opts.objectVersions, err = types.ParseObjectVersions(viper.GetString("object_versions")); err != nil {
		return nil, err
	}
	if opts.unit, err = ui.ParseUnit(viper.GetString("unit")); err != nil {
		return nil, err
	}
	if opts.output, err = ui.ParseFormat(viper.GetString("output")); err != nil {
		return nil, err
	}

	if opts.backend == types.BackendCloudWatch && opts.objectVersions != types.ObjectVersionsCurrent {
		return nil, fmt.Errorf("--object-versions %s requires the s3 backend", opts.objectVersions)
	}
	if opts.concurrency <= 0 {
		return nil, fmt.Errorf("--concurrency must be positive, got %d", opts.concurrency)
	}

	return opts, nil
}

func runDu(cmd *cobra.Command, args []string) error {
	opts, err := loadDuOptions(args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	client, err := newClient(ctx)
	if err != nil {
		return err
	}

	sizer, err := client.NewBucketSizer(opts.backend, types.SizerConfig{
		Region:         client.Region(),
		ObjectVersions: opts.objectVersions,
		BucketName:     opts.bucket,
		Concurrency:    opts.concurrency,
	})
	if err != nil {
		return err
	}

	logger.Debug("discovering buckets",
		"backend", string(opts.backend),
		"region", client.Region(),
		"bucket", opts.bucket)

	buckets, err := sizer.Buckets(ctx)
	if err != nil {
		return err
	}

	if len(buckets) == 0 {
		if opts.bucket != "" {
			return fmt.Errorf("bucket %q not found in region %s", opts.bucket, client.Region())
		}
		logger.Warn("no buckets found", "region", client.Region(), "backend", string(opts.backend))
	}

	if opts.interactive {
		picked, err := ui.SelectBucket(buckets)
		if err != nil {
			if errors.Is(err, ui.ErrSelectionCancelled) {
				return nil
			}
			return err
		}
		buckets = types.Buckets{*picked}
	}

	report, err := du.Run(ctx, sizer, buckets, du.Options{
		Concurrency: opts.concurrency,
		Backend:     opts.backend,
		Region:      client.Region(),
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	report.SortByName()

	if err := ui.WriteReport(cmd.OutOrStdout(), report, opts.output, opts.unit); err != nil {
		return err
	}

	if opts.textfile != "" {
		m := metrics.NewReportMetrics()
		m.Observe(report)
		if err := m.WriteTextfile(opts.textfile); err != nil {
			return err
		}
		logger.Debug("wrote metrics textfile", "path", opts.textfile)
	}

	if len(report.Results) > 0 && report.Failed == len(report.Results) {
		return fmt.Errorf("failed to size any of the %d buckets", report.Failed)
	}

	return nil
}
