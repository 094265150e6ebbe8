package hierarchy

import "sort"

// centroidBisection implements the deterministic fallback split (spec
// §4.7, "Fallback: centroid bisection") used when no threshold candidate
// satisfies every valid-split rule.
func (b *builder) centroidBisection(members []string, memberSet map[string]bool, depth int) (splitResult, bool) {
	if len(members) < 2 {
		return splitResult{}, false
	}

	// 1. Choose p* maximizing the sum of weights to other members in G,
	// tie-broken by smallest id.
	var pStar string
	bestSum := -1.0
	for _, p := range members {
		sum := 0.0
		for _, q := range members {
			if p == q {
				continue
			}
			if w, ok := b.idx.weight(p, q); ok {
				sum += w
			}
		}
		if sum > bestSum || (sum == bestSum && (pStar == "" || p < pStar)) {
			bestSum = sum
			pStar = p
		}
	}

	// 2. Sort all q in G by descending similarity to p* (tie-break id asc).
	rest := make([]string, 0, len(members)-1)
	for _, m := range members {
		if m != pStar {
			rest = append(rest, m)
		}
	}
	sort.Slice(rest, func(i, j int) bool {
		wi, _ := b.idx.weight(pStar, rest[i])
		wj, _ := b.idx.weight(pStar, rest[j])
		if wi != wj {
			return wi > wj
		}
		return rest[i] < rest[j]
	})

	ordered := append([]string{pStar}, rest...)

	// 3. Split at the midpoint; ensure both halves meet MinSize(d+1).
	mid := len(ordered) / 2
	left := append([]string(nil), ordered[:mid]...)
	right := append([]string(nil), ordered[mid:]...)
	sort.Strings(left)
	sort.Strings(right)

	minChild := MinSize(depth + 1)
	if len(left) < minChild || len(right) < minChild {
		return splitResult{}, false
	}

	return splitResult{
		fallback:   true,
		components: [][]string{left, right},
		bridges:    map[string][]int{},
	}, true
}
