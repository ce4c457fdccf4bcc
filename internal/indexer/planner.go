package indexer

// ConfirmedTip returns head - depth, or false while the chain is not deeper than depth.
func ConfirmedTip(head, depth int64) (int64, bool) {
	if head <= depth {
		return 0, false
	}
	return head - depth, true
}

// PlanBatches splits (cursor, tip] into consecutive batches of at most size blocks.
func PlanBatches(cursor, tip, size int64) []Batch {
	if size <= 0 || cursor >= tip {
		return nil
	}

	batches := make([]Batch, 0, (tip-cursor+size-1)/size)
	for from := cursor; from < tip; from += size {
		batches = append(batches, Batch{From: from, To: min(from+size, tip)})
	}
	return batches
}
