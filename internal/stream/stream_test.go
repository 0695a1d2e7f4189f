package stream

import (
	"testing"
)

type enemy struct {
	name string
	dist float64
}

func (e *enemy) kind() string { return "enemy" }

type kinded interface{ kind() string }

type tower struct{}

func (tower) kind() string { return "tower" }

func TestMinEmpty(t *testing.T) {
	if _, ok := Empty[*enemy]().Min(func(e *enemy) float64 { return e.dist }); ok {
		t.Error("Min() on empty stream should report none")
	}
}

func TestMinStableOnTies(t *testing.T) {
	a := &enemy{"A", 3}
	b := &enemy{"B", 1}
	c := &enemy{"C", 1}

	got, ok := FromSlice([]*enemy{a, b, c}).Min(func(e *enemy) float64 { return e.dist })
	if !ok {
		t.Fatal("Min() reported none for non-empty stream")
	}
	if got != b {
		t.Errorf("Min() = %s, expected B (first of tied minimum)", got.name)
	}
}

func TestMaxStableOnTies(t *testing.T) {
	a := &enemy{"A", 5}
	b := &enemy{"B", 5}
	got, _ := FromSlice([]*enemy{a, b}).Max(func(e *enemy) float64 { return e.dist })
	if got != a {
		t.Errorf("Max() = %s, expected A", got.name)
	}
}

func TestFilterIsLazy(t *testing.T) {
	pulled := 0
	src := []int{1, 2, 3, 4, 5, 6}
	i := 0
	s := FromFunc(func() (int, bool) {
		if i >= len(src) {
			return 0, false
		}
		pulled++
		v := src[i]
		i++
		return v, true
	}, nil)

	even := s.Filter(func(v int) bool { return v%2 == 0 })
	if pulled != 0 {
		t.Fatalf("Filter() pulled %d elements before first use", pulled)
	}

	if !even.HasNext() {
		t.Fatal("HasNext() = false, expected an even element")
	}
	if pulled != 2 {
		t.Errorf("HasNext() pulled %d source elements, expected 2", pulled)
	}
	if v := even.Next(); v != 2 {
		t.Errorf("Next() = %d, expected 2", v)
	}
	if pulled != 2 {
		t.Errorf("Next() pulled extra elements: %d", pulled)
	}

	rest := even.ToSlice()
	if len(rest) != 2 || rest[0] != 4 || rest[1] != 6 {
		t.Errorf("ToSlice() = %v, expected [4 6]", rest)
	}
}

func TestCastAfterFilter(t *testing.T) {
	items := []kinded{tower{}, &enemy{"A", 2}, tower{}, &enemy{"B", 1}}

	enemies := Cast[kinded, *enemy](
		FromSlice(items).Filter(func(k kinded) bool { return k.kind() == "enemy" }),
	)
	got, ok := enemies.Min(func(e *enemy) float64 { return e.dist })
	if !ok || got.name != "B" {
		t.Errorf("Min() after Cast = %v, %v; expected B", got, ok)
	}
}

func TestCastMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Cast of a non-matching element should panic")
		}
	}()
	s := Cast[kinded, *enemy](FromSlice([]kinded{tower{}}))
	s.Next()
}

func TestNextAfterExhaustionPanics(t *testing.T) {
	s := FromSlice([]int{1})
	s.Next()

	defer func() {
		if recover() == nil {
			t.Error("Next() after exhaustion should panic")
		}
	}()
	s.Next()
}

func TestCloseIsIdempotentAndPropagates(t *testing.T) {
	released := 0
	src := FromFunc(func() (int, bool) { return 1, true }, func() { released++ })

	filtered := src.Filter(func(int) bool { return true })
	mapped := Map(filtered, func(v int) int { return v * 2 })

	mapped.Close()
	mapped.Close()
	src.Close()

	if released != 1 {
		t.Errorf("release called %d times, expected 1", released)
	}
	if mapped.HasNext() {
		t.Error("HasNext() on closed stream should be false")
	}
}

func TestTerminalOperationsClose(t *testing.T) {
	released := 0
	newSrc := func() *Stream[int] {
		i := 0
		return FromFunc(func() (int, bool) {
			i++
			return i, i <= 3
		}, func() { released++ })
	}

	if n := newSrc().Count(); n != 3 {
		t.Errorf("Count() = %d, expected 3", n)
	}
	if v, ok := newSrc().First(); !ok || v != 1 {
		t.Errorf("First() = %d, %v; expected 1", v, ok)
	}
	newSrc().Min(func(v int) float64 { return float64(v) })

	if released != 3 {
		t.Errorf("release called %d times, expected 3", released)
	}
}

func TestAllBreakCloses(t *testing.T) {
	released := false
	s := FromFunc(func() (int, bool) { return 7, true }, func() { released = true })

	for v := range s.All() {
		if v != 7 {
			t.Errorf("All() yielded %d, expected 7", v)
		}
		break
	}
	if !released {
		t.Error("breaking out of All() should close the stream")
	}
}
