// Command gpr-clusters clusters the above-threshold samples of a stored
// survey, records the run in the database and writes the features out.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/gpr.report/internal/config"
	"github.com/banshee-data/gpr.report/internal/db"
	"github.com/banshee-data/gpr.report/internal/fsutil"
	"github.com/banshee-data/gpr.report/internal/gpr/export"
	"github.com/banshee-data/gpr.report/internal/gpr/survey"
	"github.com/banshee-data/gpr.report/internal/monitoring"
	"github.com/banshee-data/gpr.report/internal/version"
)

var (
	dbPath       = flag.String("db", "gpr_survey.db", "Path to the survey database")
	surveyID     = flag.String("survey", "", "Survey to cluster (required)")
	configPath   = flag.String("config", "", "Optional JSON run config")
	output       = flag.String("output", "features.csv", "Features CSV to create; an existing file is never overwritten")
	positionsOut = flag.String("positions", "", "Optional positions CSV")
	paramsOut    = flag.String("params-out", "", "Optional params JSON dump")
	plotOut      = flag.String("plot", "", "Optional footprint PNG")
	showVersion  = flag.Bool("version", false, "Print version and exit")

	// Overrides for values in the config file. Only flags set on the
	// command line take effect.
	amplitudeThreshold = flag.Int("amplitude-threshold", config.DefaultAmplitudeThreshold, "Cluster samples strictly above this amplitude")
	sizeThreshold      = flag.Int("size-threshold", config.DefaultSizeThreshold, "Minimum cluster volume in voxels")
	maxGap             = flag.Int("max-gap", config.DefaultMaxGap, "Adjacency tolerance on every axis")
	bucketSize         = flag.Int("bucket-size", 0, "Bucket edge length; 0 derives it from the gaps")
	footprintName      = flag.String("footprint", config.DefaultFootprint, "Footprint strategy: convex or concave")
	concavity          = flag.Float64("concavity", config.DefaultConcavity, "Concave hull concavity")
	workers            = flag.Int("workers", 0, "Feature extraction workers; 0 uses GOMAXPROCS")
)

// options are the resolved inputs of one invocation.
type options struct {
	SurveyID  string
	Config    *config.RunConfig
	Output    string
	Positions string
	ParamsOut string
	Plot      string
}

// applyOverrides copies every flag set on the command line into cfg.
func applyOverrides(cfg *config.RunConfig, visit func(func(*flag.Flag))) {
	visit(func(f *flag.Flag) {
		switch f.Name {
		case "amplitude-threshold":
			cfg.AmplitudeThreshold = amplitudeThreshold
		case "size-threshold":
			cfg.SizeThreshold = sizeThreshold
		case "max-gap":
			cfg.MaxGap = maxGap
		case "bucket-size":
			cfg.BucketSize = bucketSize
		case "footprint":
			cfg.Footprint = footprintName
		case "concavity":
			cfg.Concavity = concavity
		case "workers":
			cfg.Workers = workers
		}
	})
}

// run clusters one survey from database and writes the requested outputs
// to fsys.
func run(ctx context.Context, database *db.DB, fsys fsutil.FileSystem, opts options) error {
	if err := opts.Config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	params := survey.ParamsFromConfig(opts.Config)
	if err := params.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if fsys.Exists(opts.Output) {
		return fmt.Errorf("output %s already exists", opts.Output)
	}

	store := database.Surveys(opts.SurveyID)
	n, err := store.Count(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("survey %q has no traces", opts.SurveyID)
	}

	runs := database.Runs()
	rec, err := runs.CreateRun(ctx, opts.SurveyID, params)
	if err != nil {
		return err
	}
	log.Printf("run %s: clustering %d traces of survey %q", rec.RunID, n, opts.SurveyID)

	res, err := clusterAndRecord(ctx, runs, rec.RunID, store, params)
	if err != nil {
		// The run row must not look in progress; ctx may already be cancelled.
		if ferr := runs.FailRun(context.WithoutCancel(ctx), rec.RunID, err); ferr != nil {
			log.Printf("run %s: failed to record failure: %v", rec.RunID, ferr)
		}
		return fmt.Errorf("run %s: %w", rec.RunID, err)
	}
	log.Printf("run %s: %d clusters (%d kept), %d features, median volume %.0f",
		rec.RunID, res.Summary.Clusters, res.Summary.KeptClusters, len(res.Features), res.Summary.MedianVolume)

	if err := export.WriteFeaturesCSV(fsys, opts.Output, res.Features); err != nil {
		return err
	}
	if opts.Positions != "" {
		if err := export.WritePositionsCSV(fsys, opts.Positions, res.Positions); err != nil {
			return err
		}
	}
	if opts.ParamsOut != "" {
		dump := export.NewParamsDump(opts.SurveyID, rec.RunID, params)
		if err := export.WriteParamsJSON(fsys, opts.ParamsOut, dump); err != nil {
			return err
		}
	}
	if opts.Plot != "" && len(res.Features) > 0 {
		if err := export.PlotFootprints(fsys, opts.Plot, opts.SurveyID, res.Features); err != nil {
			return err
		}
	}
	return nil
}

// clusterAndRecord runs the pipeline and stores its features and summary
// under runID.
func clusterAndRecord(ctx context.Context, runs *db.RunStore, runID string, src survey.RowSource, params survey.Params) (*survey.Result, error) {
	res, err := survey.Run(ctx, src, params)
	if err != nil {
		return nil, err
	}
	if err := runs.InsertFeatures(ctx, runID, res.Features); err != nil {
		return nil, err
	}
	if err := runs.FinishRun(ctx, runID, res.Summary, len(res.Features)); err != nil {
		return nil, err
	}
	return res, nil
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println("gpr-clusters", version.String())
		return
	}
	if *surveyID == "" {
		log.Fatal("-survey is required")
	}
	monitoring.SetLogger(log.Printf)

	cfg := config.EmptyRunConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadRunConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	applyOverrides(cfg, flag.Visit)

	database, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = run(ctx, database, fsutil.OSFileSystem{}, options{
		SurveyID:  *surveyID,
		Config:    cfg,
		Output:    *output,
		Positions: *positionsOut,
		ParamsOut: *paramsOut,
		Plot:      *plotOut,
	})
	if err != nil {
		log.Printf("gpr-clusters: %v", err)
		database.Close()
		os.Exit(1)
	}
}
