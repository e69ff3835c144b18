// Package match finds duplicate pairs among hashed image records by
// Hamming distance over their perceptual hashes.
package match

import (
	"sort"

	"github.com/corona10/goimagehash"

	"dupicheck/internal/cache"
)

// Pair is one duplicate candidate: two distinct files in canonical
// (lexicographic) path order plus the Hamming distance between their
// hashes. Pairs are produced per run and never persisted.
type Pair struct {
	P1       string
	P2       string
	Distance int
}

// Key returns the pair's canonical ledger key.
func (p Pair) Key() cache.PairKey {
	return cache.CanonicalPair(p.P1, p.P2)
}

// Distance returns the Hamming distance between two 64-bit perceptual
// hashes.
func Distance(a, b uint64) int {
	left := goimagehash.NewImageHash(a, goimagehash.PHash)
	right := goimagehash.NewImageHash(b, goimagehash.PHash)
	d, err := left.Distance(right)
	if err != nil {
		// Both operands are 64-bit pHashes, so the kind/size mismatch
		// path cannot trigger.
		return 64
	}
	return d
}

// FindDuplicates compares every record against every other and returns
// the pairs whose distance is within threshold (inclusive), excluding any
// pair present in the ignored set. The result is sorted by ascending
// distance, then by canonical path order, so repeated runs over the same
// inputs produce identical output.
func FindDuplicates(records []cache.ImageRecord, threshold int, ignored map[cache.PairKey]struct{}) []Pair {
	var pairs []Pair
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			key := cache.CanonicalPair(records[i].Path, records[j].Path)
			if key.P1 == key.P2 {
				continue
			}
			if _, skip := ignored[key]; skip {
				continue
			}
			d := Distance(records[i].Hash, records[j].Hash)
			if d > threshold {
				continue
			}
			pairs = append(pairs, Pair{P1: key.P1, P2: key.P2, Distance: d})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Distance != pairs[j].Distance {
			return pairs[i].Distance < pairs[j].Distance
		}
		if pairs[i].P1 != pairs[j].P1 {
			return pairs[i].P1 < pairs[j].P1
		}
		return pairs[i].P2 < pairs[j].P2
	})
	return pairs
}
