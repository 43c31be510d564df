package astar

import "sort"

// frontier is the ordered-slice priority queue of §4.6: ascending f,
// tail = best. insert is the bisect.insort equivalent — O(log n) to find
// the position, O(n) to shift. trim enforces queue_limit by keeping only
// the best-scoring suffix.
type frontier struct {
	items []*searchNode
}

func (fr *frontier) insert(s *searchNode) {
	i := sort.Search(len(fr.items), func(i int) bool { return fr.items[i].f >= s.f })
	fr.items = append(fr.items, nil)
	copy(fr.items[i+1:], fr.items[i:])
	fr.items[i] = s
}

// removeIdentity drops the given node from the frontier by pointer
// identity. Unlike the reference implementation's list.remove (which
// matches on the first element comparing equal by f alone, and so can
// remove the wrong tied node), identity is unambiguous and strictly more
// correct — it never discards the wrong state on an f tie.
func (fr *frontier) removeIdentity(target *searchNode) {
	for i, s := range fr.items {
		if s == target {
			fr.items = append(fr.items[:i], fr.items[i+1:]...)
			return
		}
	}
}

func (fr *frontier) tail() *searchNode {
	return fr.items[len(fr.items)-1]
}

func (fr *frontier) trim(queueLimit int) {
	if queueLimit > 0 && len(fr.items) > queueLimit {
		fr.items = fr.items[len(fr.items)-queueLimit:]
	}
}
