package book

import (
	"reflect"
	"testing"
)

func TestLadderInsertEraseContains(t *testing.T) {
	t.Parallel()

	l := New()
	l.Insert(1, 100)
	l.Insert(2, 100)
	l.Insert(3, 101)

	if !l.Contains(1) || !l.Contains(2) || !l.Contains(3) {
		t.Fatalf("expected all ids to be present")
	}
	if l.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", l.Len())
	}

	if !l.Erase(2) {
		t.Fatalf("Erase(2) = false, want true")
	}
	if l.Contains(2) {
		t.Fatalf("id 2 still present after erase")
	}
	if l.Erase(2) {
		t.Fatalf("second Erase(2) = true, want false (already gone)")
	}
	if l.Erase(999) {
		t.Fatalf("Erase of unknown id = true, want false")
	}
	if l.Len() != 2 {
		t.Fatalf("Len() after erase = %d, want 2", l.Len())
	}
}

func TestLadderEraseDropsEmptyLevel(t *testing.T) {
	t.Parallel()

	l := New()
	l.Insert(1, 100)
	l.Erase(1)

	if got := l.IDsGE(0); got != nil {
		t.Fatalf("IDsGE after emptying level = %v, want nil", got)
	}
	if _, ok := l.levels[100]; ok {
		t.Fatalf("empty price level 100 was not dropped")
	}
}

func TestLadderFIFOWithinLevel(t *testing.T) {
	t.Parallel()

	l := New()
	l.Insert(10, 101)
	l.Insert(11, 101)
	l.Insert(12, 101)

	got := l.IDsGE(101)
	want := []uint64{10, 11, 12}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("IDsGE(101) = %v, want %v (insertion order within a level)", got, want)
	}
}

func TestLadderIDsGE(t *testing.T) {
	t.Parallel()

	l := New()
	l.Insert(1, 100)
	l.Insert(2, 101)
	l.Insert(3, 102)

	tests := []struct {
		price float64
		want  []uint64
	}{
		{99, []uint64{1, 2, 3}},
		{100, []uint64{1, 2, 3}},
		{100.5, []uint64{2, 3}},
		{102, []uint64{3}},
		{103, nil},
	}

	for _, tt := range tests {
		got := l.IDsGE(tt.price)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("IDsGE(%v) = %v, want %v", tt.price, got, tt.want)
		}
	}
}

func TestLadderIDsLE(t *testing.T) {
	t.Parallel()

	l := New()
	l.Insert(1, 100)
	l.Insert(2, 101)
	l.Insert(3, 102)

	tests := []struct {
		price float64
		want  []uint64
	}{
		{103, []uint64{1, 2, 3}},
		{102, []uint64{1, 2, 3}},
		{101.5, []uint64{1, 2}},
		{100, []uint64{1}},
		{99, nil},
	}

	for _, tt := range tests {
		got := l.IDsLE(tt.price)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("IDsLE(%v) = %v, want %v", tt.price, got, tt.want)
		}
	}
}

func TestLadderPrice(t *testing.T) {
	t.Parallel()

	l := New()
	l.Insert(1, 55.5)

	p, ok := l.Price(1)
	if !ok || p != 55.5 {
		t.Fatalf("Price(1) = (%v, %v), want (55.5, true)", p, ok)
	}

	if _, ok := l.Price(2); ok {
		t.Fatalf("Price(2) ok = true, want false")
	}
}
