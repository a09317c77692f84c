package plan

import (
	"sort"

	"github.com/abhisek/examprep/internal/exam"
)

// Weight is one allocation key with its relative weight.
type Weight struct {
	Key    string
	Weight int
}

// Allocation is the integer count assigned to a key.
type Allocation struct {
	Key   string
	Count int
}

// Allocate apportions total across weights with the largest-remainder method.
// Each key receives floor(exact) or floor(exact)+1 where
// exact = total*weight/sum(weights); the shortfall goes to the largest
// fractional remainders, ties broken by input order. Counts always sum to total.
func Allocate(total int, weights []Weight) ([]Allocation, error) {
	if total < 0 {
		return nil, &exam.AllocationError{Reason: "total must be >= 0"}
	}
	if len(weights) == 0 {
		return nil, &exam.AllocationError{Reason: "no keys to allocate"}
	}
	sum := 0
	for _, w := range weights {
		if w.Weight < 0 {
			return nil, &exam.AllocationError{Reason: "weight for " + w.Key + " is negative"}
		}
		sum += w.Weight
	}
	if sum == 0 {
		return nil, &exam.AllocationError{Reason: "weights sum to zero"}
	}

	// Integer arithmetic keeps the remainders exact: the fractional part of
	// total*w/sum is (total*w mod sum)/sum, so remainders compare as integers.
	out := make([]Allocation, len(weights))
	rem := make([]int, len(weights))
	assigned := 0
	for i, w := range weights {
		scaled := total * w.Weight
		out[i] = Allocation{Key: w.Key, Count: scaled / sum}
		rem[i] = scaled % sum
		assigned += out[i].Count
	}

	order := make([]int, len(weights))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return rem[order[a]] > rem[order[b]]
	})
	for i := 0; i < total-assigned; i++ {
		out[order[i]].Count++
	}
	return out, nil
}
