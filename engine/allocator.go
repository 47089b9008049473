package engine

import (
	"fmt"
	"math"

	"github.com/neumathe/kousuan/catalog"
)

// Allocate 按权重把 n 道题分配到各题型，各项之和恰为 n。
//
// 除最后一个题型外，每项取 max(1, round(w/总权重×n))，并保证剩余量不为负；
// n 不少于题型数时还为后面的题型各预留 1 道，使每个题型至少分到 1 道。
// 最后一个题型取走全部剩余；若仍有未分配的题量，随机逐道补给各题型。
func Allocate(cats []catalog.Category, n int, src Source) ([]AllocationEntry, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative count %d", ErrInvalidAllocationRequest, n)
	}
	if len(cats) == 0 {
		return nil, fmt.Errorf("%w: no categories", ErrInvalidAllocationRequest)
	}
	k := len(cats)
	totalWeight := 0
	for _, c := range cats {
		totalWeight += c.EffectiveWeight()
	}

	out := make([]AllocationEntry, k)
	remaining := n
	for i, c := range cats {
		w := c.EffectiveWeight()
		out[i] = AllocationEntry{CategoryID: c.ID, CategoryName: c.Name, Weight: w}
		var cnt int
		if i == k-1 {
			cnt = remaining
		} else {
			cnt = maxInt(1, int(math.Round(float64(w)/float64(totalWeight)*float64(n))))
			reserve := 0
			if n >= k {
				reserve = k - 1 - i
			}
			cnt = minInt(cnt, remaining-reserve)
			if cnt < 0 {
				cnt = 0
			}
		}
		out[i].Count = cnt
		remaining -= cnt
	}
	for remaining > 0 {
		out[src.Intn(k)].Count++
		remaining--
	}
	return out, nil
}
