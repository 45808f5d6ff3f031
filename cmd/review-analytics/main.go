package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/pkg/profile"

	"github.com/cognicore/revtopics/internal/reviews"
	"github.com/cognicore/revtopics/pkg/revtopics"
	"github.com/cognicore/revtopics/pkg/revtopics/config"
	"github.com/cognicore/revtopics/pkg/revtopics/store"
	"github.com/cognicore/revtopics/pkg/revtopics/store/sqlite"
)

type options struct {
	input      string
	runConfig  string
	dbPath     string
	top        int
	topics     int
	iterations int
	seed       int64
	list       int
	profileDir string
}

func main() {
	var opts options
	flag.StringVar(&opts.input, "input", "", "Path to JSONL reviews file (required unless -list)")
	flag.StringVar(&opts.runConfig, "config", "", "Run configuration YAML (optional)")
	flag.StringVar(&opts.dbPath, "db", "", "Optional: SQLite file to persist the report")
	flag.IntVar(&opts.top, "top", 25, "Number of terms in the frequency ranking (0 keeps all)")
	flag.IntVar(&opts.topics, "topics", 0, "Override the number of topics")
	flag.IntVar(&opts.iterations, "iterations", -1, "Override the number of Gibbs sweeps")
	flag.Int64Var(&opts.seed, "seed", -1, "Override the sampler seed (negative keeps the configured seed)")
	flag.IntVar(&opts.list, "list", 0, "List the N newest reports stored in -db and exit")
	flag.StringVar(&opts.profileDir, "profile", "", "Optional: write a CPU profile into this directory")
	flag.Parse()

	// run owns every deferred cleanup, so the profile is flushed even when
	// the run fails.
	if err := run(opts); err != nil {
		log.Fatal(err)
	}
}

func run(opts options) error {
	if opts.profileDir != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(opts.profileDir), profile.Quiet).Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var st store.Store
	if opts.dbPath != "" {
		var err error
		st, err = sqlite.OpenSQLite(ctx, opts.dbPath)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer st.Close()
	}

	if opts.list > 0 {
		if st == nil {
			return errors.New("--list requires --db")
		}
		summaries, err := st.ListReports(ctx, opts.list)
		if err != nil {
			return fmt.Errorf("list reports: %w", err)
		}
		return printJSON(summaries)
	}

	if opts.input == "" {
		return errors.New("--input required")
	}

	runCfg, err := loadRun(opts)
	if err != nil {
		return err
	}

	components, err := runCfg.Loader().Load()
	if err != nil {
		return fmt.Errorf("load configs: %w", err)
	}

	items, err := reviews.LoadFromJSONL(opts.input)
	if err != nil {
		return fmt.Errorf("load reviews: %w", err)
	}
	log.Printf("loaded %d reviews from %s (%d stopwords, %d lexicon words)",
		len(items), opts.input, components.Stoplist.Len(), components.Lexicon.Len())

	engine := revtopics.New(revtopics.Options{
		Normalizer: components.Normalizer,
		Scorer:     components.Scorer,
		Topics:     runCfg.LDA(),
		Workers:    runCfg.Workers,
		RankSize:   opts.top,
	})

	report, err := engine.Analyze(ctx, reviews.Inputs(items))
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	if st != nil {
		if err := st.SaveReport(ctx, report); err != nil {
			return fmt.Errorf("save report: %w", err)
		}
		log.Printf("saved report %s to %s", report.ID, opts.dbPath)
	}

	return printJSON(report)
}

// loadRun reads the run file (or the defaults) and applies flag overrides.
func loadRun(opts options) (config.Run, error) {
	runCfg := config.DefaultRun()
	if opts.runConfig != "" {
		loaded, err := config.LoadRun(opts.runConfig)
		if err != nil {
			return config.Run{}, fmt.Errorf("load config: %w", err)
		}
		runCfg = *loaded
	}
	if opts.topics > 0 {
		runCfg.Topics.K = opts.topics
	}
	if opts.iterations >= 0 {
		runCfg.Topics.Iterations = opts.iterations
	}
	if opts.seed >= 0 {
		runCfg.Topics.Seed = uint64(opts.seed)
	}
	if err := runCfg.Validate(); err != nil {
		return config.Run{}, fmt.Errorf("config: %w", err)
	}
	return runCfg, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
