package collections

import "testing"

func TestOrderedMap_InsertGetOrder(t *testing.T) {
	m := NewOrderedMap[string, int]()
	m.Insert("a", 1)
	m.Insert("b", 2)
	m.Insert("c", 3)

	if m.Len() != 3 {
		t.Fatalf("expected length 3, got %d", m.Len())
	}
	if v, ok := m.Get("b"); !ok || v != 2 {
		t.Fatalf("expected b=2, got %v, %v", v, ok)
	}
	want := []string{"a", "b", "c"}
	got := m.Keys()
	for i, k := range want {
		if got[i] != k {
			t.Fatalf("expected key order %v, got %v", want, got)
		}
	}
}

func TestOrderedMap_ReinsertKeepsPosition(t *testing.T) {
	m := NewOrderedMap[string, int]()
	m.Insert("a", 1)
	m.Insert("b", 2)
	m.Insert("a", 99)

	if m.Len() != 2 {
		t.Fatalf("expected length 2 after reinsert, got %d", m.Len())
	}
	if got := m.Keys(); got[0] != "a" || got[1] != "b" {
		t.Fatalf("expected order [a b], got %v", got)
	}
	if v, _ := m.Get("a"); v != 99 {
		t.Fatalf("expected updated value 99, got %d", v)
	}
}

func TestOrderedMap_Truncate(t *testing.T) {
	m := NewOrderedMap[int, string]()
	for i := 0; i < 5; i++ {
		m.Insert(i, "x")
	}
	m.Truncate(2)
	if m.Len() != 2 {
		t.Fatalf("expected length 2, got %d", m.Len())
	}
	if m.ContainsKey(2) || m.ContainsKey(4) {
		t.Fatalf("expected keys 2..4 to be gone after truncate")
	}
	if !m.ContainsKey(0) || !m.ContainsKey(1) {
		t.Fatalf("expected keys 0,1 to survive truncate")
	}

	// Growing again after truncation should work normally.
	m.Insert(2, "y")
	if m.Len() != 3 {
		t.Fatalf("expected length 3 after re-growing, got %d", m.Len())
	}
}

func TestOrderedMap_TruncatePanicsOutOfRange(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for out-of-range truncate")
		}
	}()
	m := NewOrderedMap[int, int]()
	m.Insert(1, 1)
	m.Truncate(5)
}

func TestOrderedMap_Clone(t *testing.T) {
	m := NewOrderedMap[string, int]()
	m.Insert("a", 1)
	clone := m.Clone()
	clone.Insert("b", 2)

	if m.Len() != 1 {
		t.Fatalf("expected original map untouched, got length %d", m.Len())
	}
	if clone.Len() != 2 {
		t.Fatalf("expected clone to have 2 entries, got %d", clone.Len())
	}
}

func TestOrderedMap_Iter(t *testing.T) {
	m := NewOrderedMap[int, int]()
	for i := 0; i < 5; i++ {
		m.Insert(i, i*i)
	}
	var seen []int
	m.Iter(func(k, v int) bool {
		seen = append(seen, k)
		return k < 2
	})
	if len(seen) != 3 {
		t.Fatalf("expected early stop after 3 entries, got %v", seen)
	}
}
