package corpus

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/kailas-cloud/recipedex/internal/analysis"
	"github.com/kailas-cloud/recipedex/internal/domain/recipe"
)

// Snapshot format identifiers.
const (
	SnapshotFormat  = "recipedex-corpus"
	SnapshotVersion = 1
)

// snapshotHeader is the first line of a snapshot file.
type snapshotHeader struct {
	Format              string        `json:"format"`
	Version             int           `json:"version"`
	Analyzer            analysis.Mode `json:"analyzer"`
	IncludeInstructions bool          `json:"include_instructions"`
	Recipes             int           `json:"recipes"`
}

// snapshotRecord is one recipe line of a snapshot file.
type snapshotRecord struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Source       string   `json:"source"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	Tokens       []string `json:"tokens"`
}

// WriteSnapshot writes c as JSON Lines: a header line followed by one recipe per line.
func WriteSnapshot(w io.Writer, c *Corpus) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)

	hdr := snapshotHeader{
		Format:              SnapshotFormat,
		Version:             SnapshotVersion,
		Analyzer:            c.analyzer,
		IncludeInstructions: c.stats.IncludeInstructions,
		Recipes:             c.Len(),
	}
	if err := enc.Encode(hdr); err != nil {
		return fmt.Errorf("write snapshot header: %w", err)
	}

	for i := range c.recipes {
		r := &c.recipes[i]
		rec := snapshotRecord{
			ID:           r.ID(),
			Title:        r.Title(),
			Source:       r.Source(),
			Ingredients:  r.Ingredients(),
			Instructions: r.Instructions(),
			Tokens:       r.Tokens(),
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("write snapshot record %d: %w", i, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot reads a snapshot and rebuilds the corpus index with opts.Params.
func ReadSnapshot(r io.Reader, opts Options) (*Corpus, error) {
	br := bufio.NewReaderSize(r, 1<<20)
	hdr, ok, err := peekHeader(br)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("not a %s snapshot", SnapshotFormat)
	}
	recipes, err := readSnapshotBody(br, hdr)
	if err != nil {
		return nil, err
	}
	opts.IncludeInstructions = hdr.IncludeInstructions
	return FromTokenized(recipes, hdr.Analyzer, opts)
}

// peekHeader consumes the first line when it is a snapshot header. Otherwise
// the reader is left untouched.
func peekHeader(br *bufio.Reader) (snapshotHeader, bool, error) {
	var hdr snapshotHeader

	peek, err := br.Peek(256)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return hdr, false, fmt.Errorf("peek corpus header: %w", err)
	}
	if !bytes.HasPrefix(bytes.TrimLeft(peek, " \t\r\n"), []byte(`{"format":`)) {
		return hdr, false, nil
	}

	line, err := br.ReadBytes('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return hdr, false, fmt.Errorf("read snapshot header: %w", err)
	}
	if err := json.Unmarshal(line, &hdr); err != nil {
		return hdr, false, fmt.Errorf("parse snapshot header: %w", err)
	}
	if hdr.Format != SnapshotFormat {
		return hdr, false, fmt.Errorf("unexpected snapshot format %q", hdr.Format)
	}
	if hdr.Version != SnapshotVersion {
		return hdr, false, fmt.Errorf("unsupported snapshot version %d", hdr.Version)
	}
	if !hdr.Analyzer.IsValid() {
		return hdr, false, fmt.Errorf("snapshot has unknown analyzer %q", hdr.Analyzer)
	}
	return hdr, true, nil
}

func readSnapshotBody(br *bufio.Reader, hdr snapshotHeader) ([]recipe.Recipe, error) {
	recipes := make([]recipe.Recipe, 0, hdr.Recipes)
	dec := json.NewDecoder(br)
	for {
		var rec snapshotRecord
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode snapshot record %d: %w", len(recipes), err)
		}
		recipes = append(recipes, recipe.Reconstruct(
			rec.ID, len(recipes), rec.Title, rec.Source,
			nonNil(rec.Ingredients), nonNil(rec.Instructions), nonNil(rec.Tokens),
		))
	}
	if hdr.Recipes > 0 && len(recipes) != hdr.Recipes {
		return nil, fmt.Errorf("snapshot truncated: header says %d recipes, read %d", hdr.Recipes, len(recipes))
	}
	return recipes, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
