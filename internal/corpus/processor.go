package corpus

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

var errNilTranslator = errors.New("corpus: processor has no translator")

// Translator is the part of translate.Translator a Processor needs.
type Translator interface {
	Translate(q string) (string, error)
}

// Item is the outcome for one query. Seq is the query's 1-based position in
// the input.
type Item struct {
	Seq      int
	Input    string
	Output   string
	Category Category
	Err      error
}

// Report collects the items of one batch in input order.
type Report struct {
	Items  []Item
	Counts map[Category]int
}

// Failed returns the number of items whose category is a failure.
func (r *Report) Failed() int {
	n := 0
	for c, count := range r.Counts {
		if c.IsFailure() {
			n += count
		}
	}
	return n
}

// Processor translates batches of queries concurrently.
type Processor struct {
	Translator Translator

	// Workers bounds concurrent translations. Zero means GOMAXPROCS.
	Workers int

	// Check, when set, validates every non-empty output. A failing check
	// puts the item in InvalidOutput.
	Check func(q string) error
}

// Process translates queries and returns the report. Items keep input
// order regardless of which worker finished first. Cancelling ctx stops
// the batch between items and returns ctx's error.
func (p *Processor) Process(ctx context.Context, queries []string) (*Report, error) {
	if p.Translator == nil {
		return nil, errNilTranslator
	}
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	items := make([]Item, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, q := range queries {
		if gctx.Err() != nil {
			break
		}
		i, q := i, q
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			items[i] = p.processOne(i+1, q)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("process batch: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("process batch: %w", err)
	}

	report := &Report{Items: items, Counts: make(map[Category]int, len(Categories))}
	for _, c := range Categories {
		report.Counts[c] = 0
	}
	for _, item := range items {
		report.Counts[item.Category]++
	}
	return report, nil
}

func (p *Processor) processOne(seq int, q string) Item {
	out, err := p.Translator.Translate(q)
	if err == nil && out != "" && p.Check != nil {
		err = p.Check(out)
	}
	return Item{
		Seq:      seq,
		Input:    q,
		Output:   out,
		Category: Classify(out, err),
		Err:      err,
	}
}
