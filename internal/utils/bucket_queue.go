package utils

import "slices"

// BucketQueue is a MergeQueue for dense rank ranges: one bucket per rank,
// each bucket sorted by position with its consumed prefix tracked by an
// offset. Pop resumes from the lowest rank that may still hold candidates.
type BucketQueue struct {
	buckets [][]MergeCand
	heads   []int
	lowest  int
	size    int
}

func NewBucketQueue(maxRank int) *BucketQueue {
	return &BucketQueue{
		buckets: make([][]MergeCand, maxRank+1),
		heads:   make([]int, maxRank+1),
	}
}

func (bq *BucketQueue) Len() int { return bq.size }

func (bq *BucketQueue) Push(c MergeCand) {
	if c.Rank >= len(bq.buckets) {
		bq.buckets = append(bq.buckets, make([][]MergeCand, c.Rank+1-len(bq.buckets))...)
		bq.heads = append(bq.heads, make([]int, c.Rank+1-len(bq.heads))...)
	}
	bq.lowest = min(bq.lowest, c.Rank)

	live := bq.buckets[c.Rank][bq.heads[c.Rank]:]
	at, _ := slices.BinarySearchFunc(live, c.Pos, func(e MergeCand, pos int) int { return e.Pos - pos })
	bq.buckets[c.Rank] = slices.Insert(bq.buckets[c.Rank], bq.heads[c.Rank]+at, c)
	bq.size++
}

func (bq *BucketQueue) Pop() (MergeCand, bool) {
	for ; bq.lowest < len(bq.buckets); bq.lowest++ {
		r := bq.lowest
		if bq.heads[r] < len(bq.buckets[r]) {
			c := bq.buckets[r][bq.heads[r]]
			bq.heads[r]++
			bq.size--
			return c, true
		}
	}
	return MergeCand{}, false
}

func (bq *BucketQueue) Reset() {
	for i := range bq.buckets {
		bq.buckets[i] = bq.buckets[i][:0]
		bq.heads[i] = 0
	}
	bq.lowest = 0
	bq.size = 0
}
