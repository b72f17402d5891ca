package alphabet

import "testing"

func TestTrivial(t *testing.T) {
	a := Trivial(4)
	if a.Size() != 4 {
		t.Fatalf("Size() = %d, want 4", a.Size())
	}
	for i := 0; i < 4; i++ {
		if !a.Contains(i) {
			t.Errorf("Contains(%d) = false, want true", i)
		}
		if a.IndexOf(i) != i {
			t.Errorf("IndexOf(%d) = %d, want %d", i, a.IndexOf(i), i)
		}
	}
	if a.Contains(4) {
		t.Errorf("Contains(4) = true, want false")
	}
	if got := a.IndexOf(9); got != NotFound {
		t.Errorf("IndexOf(9) = %d, want NotFound", got)
	}
}

func TestNewDedupesAndSorts(t *testing.T) {
	a := New([]Symbol{3, 1, 1, 0, 3, 2})
	want := []Symbol{0, 1, 2, 3}
	got := a.Symbols()
	if len(got) != len(want) {
		t.Fatalf("Symbols() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Symbols() = %v, want %v", got, want)
		}
	}
}

func TestUnionPreservesAscendingOrder(t *testing.T) {
	a := New([]Symbol{0, 2})
	b := New([]Symbol{0, 1, 3})
	u := Union(a, b)
	want := []Symbol{0, 1, 2, 3}
	got := u.Symbols()
	if len(got) != len(want) {
		t.Fatalf("Union Symbols() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Union Symbols() = %v, want %v", got, want)
		}
	}
}

func TestDuplicateIsIndependent(t *testing.T) {
	a := Trivial(3)
	b := a.Duplicate()
	if !a.Equal(b) {
		t.Fatalf("Duplicate() not equal to source")
	}
	b.symbols[0] = 99
	if a.At(0) != 0 {
		t.Fatalf("mutating the duplicate changed the source: At(0) = %d, want 0", a.At(0))
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Alphabet
		want bool
	}{
		{"same trivial", Trivial(3), Trivial(3), true},
		{"different size", Trivial(2), Trivial(3), false},
		{"same symbols different construction", New([]Symbol{0, 1, 2}), Trivial(3), true},
		{"disjoint", New([]Symbol{0, 1}), New([]Symbol{2, 3}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMustIndexOfPanicsOnMiss(t *testing.T) {
	a := Trivial(2)
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic for missing symbol")
		}
	}()
	a.MustIndexOf(5)
}
