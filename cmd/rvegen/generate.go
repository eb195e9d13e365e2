package main

import (
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/anurag-upadhay/oofem/internal/config"
	"github.com/anurag-upadhay/oofem/internal/rve"
)

type generateOutput struct {
	*rve.Result
	Summary    rve.Summary        `json:"summary"`
	Violations []rve.Violation    `json:"violations,omitempty"`
	Missing    []rve.MissingImage `json:"missing_images,omitempty"`
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a periodic inclusion packing",
		Long: "Generate non-overlapping inclusions by rejection sampling until the target volume fraction is reached. " +
			"Values come from the config file ($" + configEnv + " or --config), then flags.",
		Args: cobra.NoArgs,
		RunE: runGenerate,
	}

	f := cmd.Flags()
	f.StringP("config", "c", "", "Config file (default: $"+configEnv+")")
	f.Float64("min-density", config.DefaultMinDensity, "Target volume fraction")
	f.Float64("box-size", config.DefaultBoxSize, "Edge length of the periodic box")
	f.Float64("min-radius", config.DefaultMinRadius, "Smallest inclusion radius")
	f.Float64("max-radius", config.DefaultMaxRadius, "Largest inclusion radius")
	f.Float64("forced-dist", config.DefaultForcedDist, "Minimum surface-to-surface clearance")
	f.Int("ndim", config.DefaultNDim, "Dimensionality (2 or 3)")
	f.Int64("seed", 0, "Random seed")
	f.Int("max-misses", config.DefaultMaxMisses, "Give up after this many consecutive rejections (0 = never)")
	f.Int("max-attempts", 0, "Give up after this many draws (0 = never)")
	f.String("index", string(rve.IndexGrid), "Spatial index: grid or kdtree")
	f.Bool("strict-images", false, "Also reject candidates whose periodic images violate the clearance")
	f.Duration("progress-interval", config.DefaultProgressInterval, "Minimum time between progress lines (0 = every acceptance)")
	f.Bool("verify", false, "Check clearance and periodic images of the result")
	f.Bool("summary-only", false, "Print the summary without the inclusion list")
	f.String("metrics-file", "", "Write prometheus metrics for the run to this file")

	return cmd
}

// loadConfig reads the config file, if any, then applies changed flags.
func loadConfig(cmd *cobra.Command) (*config.GeneratorConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv(configEnv)
	}

	cfg := config.EmptyGeneratorConfig()
	if path != "" {
		var err error
		if cfg, err = config.LoadGeneratorConfig(path); err != nil {
			return nil, err
		}
	}

	f := cmd.Flags()
	floatFlags := map[string]**float64{
		"min-density": &cfg.MinDensity,
		"box-size":    &cfg.BoxSize,
		"min-radius":  &cfg.MinRadius,
		"max-radius":  &cfg.MaxRadius,
		"forced-dist": &cfg.ForcedDist,
	}
	for name, dst := range floatFlags {
		if f.Changed(name) {
			v, _ := f.GetFloat64(name)
			*dst = &v
		}
	}
	intFlags := map[string]**int{
		"ndim":         &cfg.NDim,
		"max-misses":   &cfg.MaxMisses,
		"max-attempts": &cfg.MaxAttempts,
	}
	for name, dst := range intFlags {
		if f.Changed(name) {
			v, _ := f.GetInt(name)
			*dst = &v
		}
	}
	if f.Changed("seed") {
		v, _ := f.GetInt64("seed")
		cfg.Seed = &v
	}
	if f.Changed("index") {
		v, _ := f.GetString("index")
		cfg.Index = &v
	}
	if f.Changed("strict-images") {
		v, _ := f.GetBool("strict-images")
		cfg.StrictImages = &v
	}
	if f.Changed("progress-interval") {
		v, _ := f.GetDuration("progress-interval")
		s := v.String()
		cfg.ProgressInterval = &s
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	params := cfg.Params()

	reg := prometheus.NewRegistry()
	metrics, err := rve.NewMetricsObserver(reg)
	if err != nil {
		return err
	}

	started := time.Now()
	res, err := rve.Generate(cmd.Context(), params,
		rve.WithObserver(rve.NewLogObserver(cfg.GetProgressInterval())),
		rve.WithObserver(metrics),
	)
	if metricsFile, _ := cmd.Flags().GetString("metrics-file"); metricsFile != "" {
		if werr := prometheus.WriteToTextfile(metricsFile, reg); werr != nil {
			return fmt.Errorf("write metrics: %w", werr)
		}
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "generated %d inclusions in %s\n", res.OriginalCount(), time.Since(started).Round(time.Millisecond))

	out := generateOutput{Result: res, Summary: rve.Summarize(res)}
	if verify, _ := cmd.Flags().GetBool("verify"); verify {
		out.Violations = rve.Verify(res, params.StrictImages)
		out.Missing = rve.CheckPeriodicImages(res)
	}
	var payload interface{} = out
	if summaryOnly, _ := cmd.Flags().GetBool("summary-only"); summaryOnly {
		payload = out.Summary
	}
	if err := writeJSON(cmd.OutOrStdout(), payload); err != nil {
		return err
	}
	if len(out.Violations) > 0 || len(out.Missing) > 0 {
		return fmt.Errorf("verification failed: %d clearance violations, %d missing images", len(out.Violations), len(out.Missing))
	}
	return nil
}
