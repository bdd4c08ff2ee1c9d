package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recipedex/internal/analysis"
	"github.com/kailas-cloud/recipedex/internal/corpus"
	"github.com/kailas-cloud/recipedex/internal/domain/search/request"
	"github.com/kailas-cloud/recipedex/internal/domain/search/result"
	"github.com/kailas-cloud/recipedex/internal/index"
	logpkg "github.com/kailas-cloud/recipedex/internal/logger"
	"github.com/kailas-cloud/recipedex/internal/ranking"
	searchuc "github.com/kailas-cloud/recipedex/internal/usecase/search"
	"github.com/kailas-cloud/recipedex/internal/version"
)

// CorpusFlags are shared by every command that builds or loads a corpus.
type CorpusFlags struct {
	Analyzer            string  `help:"Token reduction mode" default:"lemma" enum:"lemma,stem" env:"RECIPEDEX_ANALYZER"`
	IncludeInstructions bool    `help:"Index instruction steps in addition to title and ingredients"`
	K1                  float64 `help:"BM25 term frequency saturation" default:"1.5"`
	B                   float64 `help:"BM25 length normalization" default:"0.75"`
}

func (f CorpusFlags) options() corpus.Options {
	return corpus.Options{
		Params:              index.Params{K1: f.K1, B: f.B},
		IncludeInstructions: f.IncludeInstructions,
	}
}

// IndexCmd builds a snapshot from pipeline output.
type IndexCmd struct {
	CorpusFlags

	Input      string `help:"Pipeline output (JSON Lines or JSON array)" required:"" type:"existingfile"`
	Output     string `help:"Snapshot file to write" required:""`
	NoProgress bool   `help:"Disable progress bar"`
}

func (c *IndexCmd) Run(cli *CLI) error {
	n, err := analysis.New(analysis.Mode(c.Analyzer))
	if err != nil {
		return fmt.Errorf("create analyzer: %w", err)
	}

	in, err := os.Open(filepath.Clean(c.Input))
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = in.Close() }()

	recipes, stats, err := corpus.ReadRecords(in, cli.logger)
	if err != nil {
		return fmt.Errorf("read records: %w", err)
	}

	opts := c.options()
	var bar *barProgress
	if !c.NoProgress {
		bar = newBarProgress(len(recipes), os.Stderr)
		opts.Progress = bar
	}
	built, err := corpus.Build(recipes, n, opts)
	if bar != nil {
		bar.Close()
	}
	if err != nil {
		return fmt.Errorf("build corpus: %w", err)
	}

	if err := writeSnapshotFile(c.Output, built); err != nil {
		return err
	}

	s := built.Stats()
	_, _ = fmt.Fprintf(cli.out, "Indexed %d recipes (%d lines, %d skipped, %d malformed) into %s\n",
		s.Recipes, stats.Lines, stats.Skipped, stats.Malformed, c.Output)
	_, _ = fmt.Fprintf(cli.out, "Vocabulary %d, avg length %.1f, fingerprint %s\n",
		s.Vocabulary, s.AvgDocLength, s.Fingerprint)
	return nil
}

// writeSnapshotFile writes to a temp file first so a failed run never leaves a partial snapshot.
func writeSnapshotFile(path string, c *corpus.Corpus) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".recipedex-snapshot-*")
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := corpus.WriteSnapshot(tmp, c); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("move snapshot into place: %w", err)
	}
	return nil
}

// SearchCmd runs one query against a corpus file.
type SearchCmd struct {
	CorpusFlags

	Corpus      string   `help:"Snapshot or pipeline output" required:"" type:"existingfile" env:"CORPUS_PATH"`
	Query       string   `help:"Free-text query" short:"q"`
	Ingredients []string `help:"Ingredients the recipe should contain" short:"i" sep:","`
	Exclude     []string `help:"Ingredients the recipe must not contain" short:"x" sep:","`
	TopK        *int     `help:"Number of results" short:"k"`
	Alpha       *float64 `help:"Weight of the lexical score"`
	Beta        *float64 `help:"Weight of the ingredient score"`
	NoAliases   bool     `help:"Disable ingredient synonym matching"`
	JSON        bool     `help:"Print results as JSON"`
}

func (c *SearchCmd) Run(cli *CLI) error {
	n, err := analysis.New(analysis.Mode(c.Analyzer))
	if err != nil {
		return fmt.Errorf("create analyzer: %w", err)
	}
	loaded, err := corpus.LoadFile(c.Corpus, n, c.options(), cli.logger)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}

	opts := ranking.DefaultOptions()
	opts.Aliases = !c.NoAliases
	engine, err := ranking.New(loaded, n, opts, cli.logger)
	if err != nil {
		return fmt.Errorf("create ranking engine: %w", err)
	}

	svc := searchuc.New(engine, nil, request.StandardDefaults())
	results, err := svc.Search(cli.ctx, request.Params{
		Text:    c.Query,
		Include: c.Ingredients,
		Exclude: c.Exclude,
		TopK:    c.TopK,
		Alpha:   c.Alpha,
		Beta:    c.Beta,
	})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if c.JSON {
		return printJSON(cli.out, results)
	}
	printResults(cli.out, results)
	return nil
}

type jsonResult struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Source          string   `json:"source,omitempty"`
	Ingredients     []string `json:"ingredients"`
	Score           float64  `json:"score"`
	LexicalScore    float64  `json:"lexical_score"`
	IngredientScore float64  `json:"ingredient_score"`
}

func printJSON(w io.Writer, results []result.Result) error {
	out := make([]jsonResult, len(results))
	for i := range results {
		r := &results[i]
		out[i] = jsonResult{
			ID:              r.Recipe().ID(),
			Title:           r.Recipe().Title(),
			Source:          r.Recipe().Source(),
			Ingredients:     r.Recipe().Ingredients(),
			Score:           r.DisplayScore(),
			LexicalScore:    result.Round3(r.Lexical()),
			IngredientScore: result.Round3(r.Ingredient()),
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return nil
}

func printResults(w io.Writer, results []result.Result) {
	if len(results) == 0 {
		_, _ = fmt.Fprintln(w, "No matching recipes.")
		return
	}
	for i := range results {
		r := &results[i]
		_, _ = fmt.Fprintf(w, "  [%.4f] %s (id %s, lexical %.3f, ingredients %.3f)\n",
			r.Combined(), r.Recipe().Title(), r.Recipe().ID(), r.Lexical(), r.Ingredient())
	}
}

// StatsCmd prints corpus statistics.
type StatsCmd struct {
	CorpusFlags

	Corpus string `help:"Snapshot or pipeline output" required:"" type:"existingfile" env:"CORPUS_PATH"`
}

func (c *StatsCmd) Run(cli *CLI) error {
	n, err := analysis.New(analysis.Mode(c.Analyzer))
	if err != nil {
		return fmt.Errorf("create analyzer: %w", err)
	}
	loaded, err := corpus.LoadFile(c.Corpus, n, c.options(), cli.logger)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}

	s := loaded.Stats()
	_, _ = fmt.Fprintf(cli.out, "Recipes:         %d\n", s.Recipes)
	_, _ = fmt.Fprintf(cli.out, "Vocabulary:      %d\n", s.Vocabulary)
	_, _ = fmt.Fprintf(cli.out, "Avg doc length:  %.2f\n", s.AvgDocLength)
	_, _ = fmt.Fprintf(cli.out, "Empty documents: %d\n", s.EmptyDocuments)
	_, _ = fmt.Fprintf(cli.out, "Renamed ids:     %d\n", s.RenamedIDs)
	_, _ = fmt.Fprintf(cli.out, "Analyzer:        %s\n", s.Analyzer)
	_, _ = fmt.Fprintf(cli.out, "BM25:            k1=%g b=%g\n", s.Params.K1, s.Params.B)
	_, _ = fmt.Fprintf(cli.out, "Fingerprint:     %s\n", s.Fingerprint)

	names := make([]string, 0, len(s.Sources))
	for k := range s.Sources {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, name := range names {
		label := name
		if label == "" {
			label = "(none)"
		}
		_, _ = fmt.Fprintf(cli.out, "  source %-12s %d\n", label, s.Sources[name])
	}
	return nil
}

// VersionCmd prints build metadata.
type VersionCmd struct{}

func (c *VersionCmd) Run(cli *CLI) error {
	_, _ = fmt.Fprintln(cli.out, version.String())
	return nil
}

// CLI is the root command.
type CLI struct {
	LogLevel string `help:"Log level (debug, info, warn, error)" default:"warn" env:"LOG_LEVEL"`

	Index   IndexCmd   `cmd:"" help:"Build a corpus snapshot from pipeline output"`
	Search  SearchCmd  `cmd:"" help:"Search recipes by text and ingredients"`
	Stats   StatsCmd   `cmd:"" help:"Print corpus statistics"`
	Version VersionCmd `cmd:"" help:"Print version"`

	ctx    context.Context
	logger *zap.Logger
	out    io.Writer
}

func main() {
	_ = godotenv.Load()

	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("recipedex-cli"),
		kong.Description("Build and query recipe corpora"),
		kong.UsageOnError(),
	)

	logger, err := logpkg.NewLogger("cli", cli.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.ctx = ctx
	cli.logger = logger
	cli.out = os.Stdout

	if err := kctx.Run(cli); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
