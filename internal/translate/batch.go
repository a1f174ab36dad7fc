package translate

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/henry234/texttrack/internal/logging"
)

// completer sends one prompt to a model and returns its text reply.
type completer interface {
	complete(ctx context.Context, prompt string) (string, error)
}

// batcher splits items into batches, runs them through a completer with
// bounded concurrency and checks every reply against its batch.
type batcher struct {
	name    string
	c       completer
	options Options
	logger  *logging.Logger
}

func newBatcher(name string, c completer, opts Options) *batcher {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &batcher{name: name, c: c, options: opts, logger: logger.Named("translate")}
}

func (b *batcher) batchSize() int {
	if b.options.BatchSize > 0 {
		return b.options.BatchSize
	}
	return DefaultBatchSize
}

func (b *batcher) concurrency() int {
	if b.options.Concurrency > 0 {
		return b.options.Concurrency
	}
	return DefaultConcurrency
}

// Translate returns one result per item, sorted by index. The first failing
// batch cancels the rest.
func (b *batcher) Translate(ctx context.Context, items []Item) ([]Result, error) {
	if len(items) == 0 {
		return []Result{}, nil
	}

	batches := slices.Collect(slices.Chunk(items, b.batchSize()))
	out := make([][]Result, len(batches))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency())
	for i, batch := range batches {
		g.Go(func() error {
			results, err := b.translateBatch(ctx, batch)
			if err != nil {
				return fmt.Errorf("batch %d failed: %w", i, err)
			}
			out[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := make([]Result, 0, len(items))
	for _, results := range out {
		all = append(all, results...)
	}
	slices.SortFunc(all, func(a, b Result) int { return a.Index - b.Index })
	return all, nil
}

func (b *batcher) translateBatch(ctx context.Context, items []Item) ([]Result, error) {
	b.logger.Debugw("sending batch", "provider", b.name, "items", len(items), "first", items[0].Index)

	text, err := b.c.complete(ctx, BuildPrompt(b.options, items))
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}
	if text == "" {
		return nil, fmt.Errorf("no text in %s response", b.name)
	}
	return parseResponse(text, items)
}

// parseResponse extracts the results from a model reply and checks that
// they answer exactly the indices of items.
func parseResponse(text string, items []Item) ([]Result, error) {
	text = cleanJSONResponse(text)

	results, err := extractResults(text)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to parse JSON response: %w (response: %s)",
			err,
			truncateString(text, 200),
		)
	}

	if len(results) != len(items) {
		return nil, fmt.Errorf("expected %d results, got %d", len(items), len(results))
	}

	want := make(map[int]bool, len(items))
	for _, it := range items {
		want[it.Index] = true
	}
	for _, r := range results {
		if !want[r.Index] {
			return nil, fmt.Errorf("unexpected result index %d", r.Index)
		}
		delete(want, r.Index)
	}
	return results, nil
}
