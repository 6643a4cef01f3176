package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/FenixInShadows/motionlearn/internal/config"
	"github.com/FenixInShadows/motionlearn/internal/dataset"
	"github.com/FenixInShadows/motionlearn/internal/trainer"
)

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	trainSet := flag.String("train-set", "", "Training table file or shard directory")
	testSet := flag.String("test-set", "", "Test table file or shard directory")
	trainLabels := flag.String("train-labels", "", "Separate training label file")
	testLabels := flag.String("test-labels", "", "Separate test label file")
	hidden := flag.String("hidden", "", `Hidden layer widths, e.g. "256,128", or "none"`)
	classes := flag.Int("classes", 0, "Number of output classes")
	batchSize := flag.Int("batch-size", 0, "Batch size")
	learningRate := flag.Float64("learning-rate", 0, "Gradient descent step size")
	epochs := flag.Int("epochs", 0, "Number of training epochs; 0 only previews")
	seed := flag.Int64("seed", 0, "PRNG seed")
	initScale := flag.Float64("init-scale", 0, "Initial weights are drawn from [-s, s)")
	featureScale := flag.Float64("feature-scale", 0, "Multiply every feature by this factor")
	delimiter := flag.String("delimiter", "", `Column delimiter: one character, "space" or "tab"`)
	skip := flag.Int("skip", 0, "Header lines to skip in every table file")
	logEvery := flag.Int("log-every", 0, "Log every N batches in verbose mode")
	preview := flag.Int("preview", 0, "Number of samples whose probabilities are logged")
	verbose := flag.Bool("v", false, "Log per-batch progress")
	forwardOnly := flag.Bool("forward-only", false, "Run one forward pass with random weights and exit")

	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	overrides := config.Overrides{
		TrainSet:     *trainSet,
		TestSet:      *testSet,
		TrainLabels:  *trainLabels,
		TestLabels:   *testLabels,
		Skip:         *skip,
		Delimiter:    *delimiter,
		FeatureScale: *featureScale,
		Classes:      *classes,
		BatchSize:    *batchSize,
		LearningRate: *learningRate,
		Seed:         *seed,
		InitScale:    *initScale,
		LogEvery:     *logEvery,
		Preview:      *preview,
		Verbose:      *verbose,
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "epochs" {
			overrides.Epochs = epochs
		}
	})
	if *hidden != "" {
		widths, err := config.ParseWidths(*hidden)
		if err != nil {
			log.Fatalf("invalid -hidden: %v", err)
		}
		overrides.Hidden = widths
	}
	cfg.ApplyOverrides(overrides)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	delim, _ := cfg.DelimiterRune()
	opts := dataset.LoadOptions{
		Delimiter:    delim,
		Skip:         cfg.Skip,
		FeatureScale: cfg.FeatureScale,
		LabelHeader:  cfg.LabelHeader,
	}

	opts.LabelFile = cfg.TrainLabels
	train, err := dataset.Load(cfg.TrainSet, opts)
	if err != nil {
		log.Fatalf("load training set %s: %v", cfg.TrainSet, err)
	}
	log.Printf("Read in data with %d samples, %d dims from %s", train.Len(), train.Dim(), cfg.TrainSet)

	var test *dataset.Set
	if cfg.TestSet != "" {
		opts.LabelFile = cfg.TestLabels
		test, err = dataset.Load(cfg.TestSet, opts)
		if err != nil {
			log.Fatalf("load test set %s: %v", cfg.TestSet, err)
		}
		log.Printf("Read in data with %d samples, %d dims from %s", test.Len(), test.Dim(), cfg.TestSet)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runCfg := trainer.RunConfig{
		Train:        train,
		Test:         test,
		Hidden:       cfg.Hidden,
		Classes:      cfg.Classes,
		BatchSize:    cfg.BatchSize,
		LearningRate: cfg.LearningRate,
		Epochs:       cfg.Epochs,
		Seed:         cfg.Seed,
		InitScale:    cfg.InitScale,
		LogEvery:     cfg.LogEvery,
		Verbose:      cfg.Verbose,
		Preview:      cfg.Preview,
		Logger:       log.Default(),
	}

	if *forwardOnly {
		runCfg.Epochs = 0
		runCfg.Preview = max(cfg.Preview, 1)
	}

	tr, err := trainer.New(runCfg)
	if err != nil {
		log.Fatalf("training setup failed: %v", err)
	}

	if *forwardOnly {
		log.Printf("run=%s forward-only host %s", tr.RunID(), tr.Host())
		rows, err := tr.PreviewRows()
		if err != nil {
			log.Fatalf("forward pass failed: %v", err)
		}
		for i, row := range rows {
			log.Printf("run=%s sample=%d %s", tr.RunID(), i, row)
		}
		return
	}

	res, err := tr.Run(ctx)
	if err != nil {
		log.Fatalf("training failed: %v", err)
	}
	for i, row := range res.Preview {
		log.Printf("run=%s sample=%d %s", res.RunID, i, row)
	}
}
