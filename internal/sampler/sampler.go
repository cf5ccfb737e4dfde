// Package sampler reduces each category to a bounded subset of unique
// context/question pairs, deterministically so a study can be reproduced.
package sampler

import (
	"fmt"
	"math/rand"

	"github.com/WesselBraakman/NoBBQ/internal/store"
)

// Result reports what one Apply call did for a category.
type Result struct {
	Category string
	Already  int // unique pairs sampled before this call
	Picked   int // newly marked items
	Unique   int // unique pairs available in total
}

func pairKey(context, question string) string {
	return context + "\x00" + question
}

// Apply marks up to limit unique context/question pairs of a category as
// sampled. Items already sampled count against the limit and stay sampled,
// so re-running tops up rather than reshuffles. Selection order is a
// seeded shuffle of the not-yet-sampled pairs.
func Apply(s *store.Store, category string, limit int, seed int64) (*Result, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("sample limit must be positive, got %d", limit)
	}
	items, err := s.CategoryItems(category)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	sampledPairs := 0
	for _, it := range items {
		key := pairKey(it.Context, it.Question)
		if it.Sampled && !seen[key] {
			seen[key] = true
			sampledPairs++
		}
	}

	// One candidate item per unsampled unique pair, in insertion order.
	candidateSeen := make(map[string]bool)
	var candidates []store.Item
	for _, it := range items {
		key := pairKey(it.Context, it.Question)
		if it.Sampled || seen[key] || candidateSeen[key] {
			continue
		}
		candidateSeen[key] = true
		candidates = append(candidates, it)
	}

	res := &Result{
		Category: category,
		Already:  sampledPairs,
		Unique:   sampledPairs + len(candidates),
	}

	want := limit - sampledPairs
	if want <= 0 || len(candidates) == 0 {
		return res, nil
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if want > len(candidates) {
		want = len(candidates)
	}

	ids := make([]int64, 0, want)
	for _, it := range candidates[:want] {
		ids = append(ids, it.ID)
	}
	if err := s.MarkSampled(ids); err != nil {
		return nil, err
	}
	res.Picked = len(ids)
	return res, nil
}
