package corpus

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recipedex/internal/analysis"
	"github.com/kailas-cloud/recipedex/internal/domain"
	"github.com/kailas-cloud/recipedex/internal/domain/recipe"
)

// Record is one recipe as emitted by the cleaning pipeline.
// Ingredients and instructions may be JSON lists, stringified lists or free text.
type Record struct {
	ID           json.RawMessage `json:"id,omitempty"`
	Title        string          `json:"title"`
	Ingredients  json.RawMessage `json:"ingredients"`
	Instructions json.RawMessage `json:"instructions"`
	Source       string          `json:"source"`
}

// LoadStats counts what happened while reading pipeline records.
type LoadStats struct {
	Lines                int
	Recipes              int
	Skipped              int
	Malformed            int
	FallbackIngredients  int
	FallbackInstructions int
}

// ReadRecords reads pipeline output: JSON Lines, or a single JSON array of records.
// Malformed lines and records without a title are skipped and counted, never fatal.
func ReadRecords(r io.Reader, logger *zap.Logger) ([]recipe.Recipe, LoadStats, error) {
	br := bufio.NewReaderSize(r, 1<<20)

	first, err := peekNonSpace(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []recipe.Recipe{}, LoadStats{}, nil
		}
		return nil, LoadStats{}, fmt.Errorf("read records: %w", err)
	}
	if first == '[' {
		return readArray(br, logger)
	}
	return readLines(br, logger)
}

func readLines(br *bufio.Reader, logger *zap.Logger) ([]recipe.Recipe, LoadStats, error) {
	var (
		stats   LoadStats
		recipes []recipe.Recipe
	)
	for {
		line, err := br.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			stats.Lines++
			var rec Record
			if uerr := json.Unmarshal(line, &rec); uerr != nil {
				stats.Malformed++
				logger.Warn("Skipping malformed record", zap.Int("line", stats.Lines), zap.Error(uerr))
			} else {
				recipes = appendRecord(recipes, rec, &stats, logger)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, stats, fmt.Errorf("read line %d: %w", stats.Lines+1, err)
		}
	}
	if recipes == nil {
		recipes = []recipe.Recipe{}
	}
	return recipes, stats, nil
}

func readArray(br *bufio.Reader, logger *zap.Logger) ([]recipe.Recipe, LoadStats, error) {
	dec := json.NewDecoder(br)
	if _, err := dec.Token(); err != nil {
		return nil, LoadStats{}, fmt.Errorf("read array start: %w", err)
	}

	var stats LoadStats
	recipes := []recipe.Recipe{}
	for dec.More() {
		stats.Lines++
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			// the decoder cannot resynchronize inside an array
			return nil, stats, fmt.Errorf("decode record %d: %w", stats.Lines, err)
		}
		recipes = appendRecord(recipes, rec, &stats, logger)
	}
	return recipes, stats, nil
}

func appendRecord(recipes []recipe.Recipe, rec Record, stats *LoadStats, logger *zap.Logger) []recipe.Recipe {
	ings := recipe.ParseSequenceJSON(rec.Ingredients)
	if !ings.Parsed() {
		stats.FallbackIngredients++
	}
	steps := recipe.ParseSequenceJSON(rec.Instructions)
	if !steps.Parsed() {
		stats.FallbackInstructions++
	}

	r, err := recipe.New(recordID(rec.ID), len(recipes), rec.Title, rec.Source, ings.Items, steps.Items)
	if err != nil {
		stats.Skipped++
		logger.Debug("Skipping record", zap.Int("line", stats.Lines), zap.Error(err))
		return recipes
	}
	stats.Recipes++
	return append(recipes, r)
}

// recordID accepts string or numeric ids.
func recordID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	}
	return ""
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if b == ' ' || b == '\t' || b == '\r' || b == '\n' {
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}

// LoadFile builds a corpus from path, which is either a snapshot written by
// WriteSnapshot or raw pipeline output. A snapshot must have been produced by
// the same analyzer mode as n.
func LoadFile(path string, n *analysis.Normalizer, opts Options, logger *zap.Logger) (*Corpus, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open corpus %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	br := bufio.NewReaderSize(f, 1<<20)
	hdr, isSnapshot, err := peekHeader(br)
	if err != nil {
		return nil, err
	}

	if isSnapshot {
		if hdr.Analyzer != n.Mode() {
			return nil, fmt.Errorf("%w: snapshot built with %q, running %q",
				domain.ErrAnalyzerMismatch, hdr.Analyzer, n.Mode())
		}
		if hdr.IncludeInstructions != opts.IncludeInstructions {
			logger.Warn("Snapshot searchable text differs from config, using snapshot setting",
				zap.Bool("snapshot_include_instructions", hdr.IncludeInstructions),
				zap.Bool("config_include_instructions", opts.IncludeInstructions),
			)
			opts.IncludeInstructions = hdr.IncludeInstructions
		}
		recipes, err := readSnapshotBody(br, hdr)
		if err != nil {
			return nil, err
		}
		logger.Info("Loaded corpus snapshot",
			zap.String("path", path),
			zap.Int("recipes", len(recipes)),
			zap.String("analyzer", string(hdr.Analyzer)),
		)
		return FromTokenized(recipes, hdr.Analyzer, opts)
	}

	recipes, stats, err := ReadRecords(br, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded pipeline records",
		zap.String("path", path),
		zap.Int("recipes", stats.Recipes),
		zap.Int("skipped", stats.Skipped),
		zap.Int("malformed", stats.Malformed),
		zap.Int("fallback_ingredients", stats.FallbackIngredients),
		zap.Int("fallback_instructions", stats.FallbackInstructions),
	)
	return Build(recipes, n, opts)
}
