package indexer

import "fmt"

// Batch is a half-open index range [From, To) into a slice.
type Batch struct {
	From int
	To   int
}

// SplitBatches splits n items into consecutive batches of at most size items.
func SplitBatches(n, size int) ([]Batch, error) {
	if size <= 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if n < 0 {
		return nil, fmt.Errorf("item count must not be negative")
	}

	batches := make([]Batch, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		batches = append(batches, Batch{From: start, To: min(start+size, n)})
	}
	return batches, nil
}
