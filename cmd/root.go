package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vietdv277/s3du/internal/aws"
	"github.com/vietdv277/s3du/internal/config"
)

var (
	// Global flags
	profile string
	region  string
	debug   bool

	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "s3du [bucket]",
	Short: "s3du - disk usage for S3 buckets",
	Long: `s3du reports how much space your S3 buckets use, without waiting for
the billing console.

Two backends are available:
  cloudwatch   read the daily BucketSizeBytes metric (fast, about a day behind)
  s3           list every object and sum the sizes (exact, slow on big buckets)

Only buckets in the selected region are sized.

Examples:
  s3du --region eu-west-1                  # Size every bucket in eu-west-1
  s3du my-bucket -b s3 -o all              # Size every object version of one bucket
  s3du -b s3 --endpoint http://localhost:9000 --region us-east-1
  s3du --output json --unit bytes          # Machine-readable output
  s3du --select                            # Pick a bucket interactively`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDu,
}

// Execute runs the root command. SIGINT and SIGTERM cancel the run.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "AWS profile to use")
	rootCmd.PersistentFlags().StringVarP(&region, "region", "r", "", "AWS region to use")
	rootCmd.PersistentFlags().StringP("backend", "b", "cloudwatch", "sizing backend: cloudwatch or s3")
	rootCmd.PersistentFlags().String("endpoint", "", "S3-compatible endpoint URL (s3 backend only)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Bind flags to viper
	_ = viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))
	_ = viper.BindPFlag("region", rootCmd.PersistentFlags().Lookup("region"))
	_ = viper.BindPFlag("backend", rootCmd.PersistentFlags().Lookup("backend"))
	_ = viper.BindPFlag("endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	addDuFlags(rootCmd)
}

func initConfig() {
	// Read from environment variables
	viper.SetEnvPrefix("S3DU")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	logger = newLogger(viper.GetBool("debug"))
	slog.SetDefault(logger)

	// The config file sits under flags and environment variables
	if cfg, err := config.LoadConfig(); err != nil {
		logger.Warn("ignoring config file", "path", config.GetConfigPath(), "error", err)
	} else {
		settings := make(map[string]any)
		for k, v := range cfg.Settings() {
			settings[k] = v
		}
		if err := viper.MergeConfigMap(settings); err != nil {
			logger.Warn("ignoring config file", "path", config.GetConfigPath(), "error", err)
		}
	}

	profile = viper.GetString("profile")
	region = viper.GetString("region")

	// Priority for profile: --profile flag > S3DU_PROFILE > config file > AWS_PROFILE env
	if profile == "" {
		profile = os.Getenv("AWS_PROFILE")
	}

	// Use AWS_REGION if --region not specified
	if region == "" {
		region = os.Getenv("AWS_REGION")
		if region == "" {
			region = os.Getenv("AWS_DEFAULT_REGION")
		}
	}
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newClient builds an AWS client from the global flags
func newClient(ctx context.Context) (*aws.Client, error) {
	opts := []aws.ClientOption{
		aws.WithLogger(logger),
	}
	if profile != "" {
		if _, ok := aws.FindProfile(profile); !ok {
			return nil, fmt.Errorf("profile %q not found in the shared config or credentials file", profile)
		}
		opts = append(opts, aws.WithProfile(profile))
	}
	if region != "" {
		opts = append(opts, aws.WithRegion(region))
	}
	if endpoint := viper.GetString("endpoint"); endpoint != "" {
		opts = append(opts, aws.WithEndpoint(endpoint))
	}

	return aws.NewClient(ctx, opts...)
}

// GetProfile returns the AWS profile
func GetProfile() string {
	return profile
}

// GetRegion returns the AWS region
func GetRegion() string {
	return region
}
