package astar

import "testing"

func TestFrontierInsertKeepsAscendingOrderWithTailBest(t *testing.T) {
	fr := &frontier{}
	fr.insert(&searchNode{f: 0.5})
	fr.insert(&searchNode{f: 0.2})
	fr.insert(&searchNode{f: 0.9})
	fr.insert(&searchNode{f: 0.1})

	want := []float64{0.1, 0.2, 0.5, 0.9}
	for i, w := range want {
		if fr.items[i].f != w {
			t.Errorf("items[%d].f = %v, want %v", i, fr.items[i].f, w)
		}
	}
	if fr.tail().f != 0.9 {
		t.Errorf("tail().f = %v, want 0.9 (best)", fr.tail().f)
	}
}

func TestFrontierRemoveIdentityMatchesByPointer(t *testing.T) {
	a := &searchNode{f: 0.5}
	b := &searchNode{f: 0.5}
	fr := &frontier{items: []*searchNode{a, b}}

	fr.removeIdentity(a)

	if len(fr.items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(fr.items))
	}
	if fr.items[0] != b {
		t.Errorf("removeIdentity removed the wrong tied node")
	}
}

func TestFrontierTrimKeepsBestSuffix(t *testing.T) {
	fr := &frontier{}
	for _, f := range []float64{0.1, 0.2, 0.3, 0.4, 0.5} {
		fr.insert(&searchNode{f: f})
	}
	fr.trim(2)

	if len(fr.items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(fr.items))
	}
	if fr.items[0].f != 0.4 || fr.items[1].f != 0.5 {
		t.Errorf("trim kept wrong suffix: %v, %v", fr.items[0].f, fr.items[1].f)
	}
}

func TestFrontierTrimZeroIsUnbounded(t *testing.T) {
	fr := &frontier{}
	for i := 0; i < 100; i++ {
		fr.insert(&searchNode{f: float64(i)})
	}
	fr.trim(0)
	if len(fr.items) != 100 {
		t.Errorf("trim(0) shrank the frontier to %d, want 100", len(fr.items))
	}
}
