package quester

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BatchItem names one code artifact for a batch run.
type BatchItem struct {
	Name string
	Code string
}

// BatchResult pairs an item with its run outcome. Err is non-nil only for
// failed runs; Result still carries the partial trajectory in that case.
type BatchResult struct {
	Name   string
	Result *QuestResult
	Err    error
}

// RunBatch runs independent quests over the items with at most concurrency
// in flight. Runs share no mutable state; one failed run does not cancel the
// others. Results are returned in item order.
func (q *Quester) RunBatch(ctx context.Context, items []BatchItem, concurrency int) []BatchResult {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]BatchResult, len(items))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)

	for i, item := range items {
		i, item := i, item
		group.Go(func() error {
			result, err := q.Run(ctx, item.Code)
			results[i] = BatchResult{Name: item.Name, Result: result, Err: err}
			// Failures are reported per item, never propagated to the group.
			return nil
		})
	}
	_ = group.Wait()
	return results
}
