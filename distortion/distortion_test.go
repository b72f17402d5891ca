package distortion

import "testing"

func TestTableSymmetricZeroDiagonal(t *testing.T) {
	for _, m := range []Measure{MSE, Manhattan, Lorentz} {
		t.Run(m.String(), func(t *testing.T) {
			table, err := NewTable(m, 8)
			if err != nil {
				t.Fatalf("NewTable: %v", err)
			}
			for i := 0; i < 8; i++ {
				if d := table.At(i, i); d != 0 {
					t.Errorf("At(%d,%d) = %v, want 0 (zero diagonal)", i, i, d)
				}
				for j := 0; j < 8; j++ {
					if table.At(i, j) != table.At(j, i) {
						t.Errorf("At(%d,%d)=%v != At(%d,%d)=%v (not symmetric)", i, j, table.At(i, j), j, i, table.At(j, i))
					}
					if table.At(i, j) < 0 {
						t.Errorf("At(%d,%d) = %v, want nonnegative", i, j, table.At(i, j))
					}
				}
			}
		})
	}
}

func TestMSEValues(t *testing.T) {
	table, err := NewTable(MSE, 4)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	if got, want := table.At(0, 3), 9.0; got != want {
		t.Errorf("At(0,3) = %v, want %v", got, want)
	}
	if got, want := table.At(1, 2), 1.0; got != want {
		t.Errorf("At(1,2) = %v, want %v", got, want)
	}
}

func TestManhattanValues(t *testing.T) {
	table, _ := NewTable(Manhattan, 4)
	if got, want := table.At(0, 3), 3.0; got != want {
		t.Errorf("At(0,3) = %v, want %v", got, want)
	}
}

func TestLorentzValues(t *testing.T) {
	table, _ := NewTable(Lorentz, 4)
	if got := table.At(0, 0); got != 0 {
		t.Errorf("At(0,0) = %v, want 0", got)
	}
	if got, want := table.At(0, 1), 1.0; got != want {
		t.Errorf("At(0,1) = %v, want %v (log2(1+1))", got, want)
	}
}

func TestNewTableRejectsNonPositive(t *testing.T) {
	if _, err := NewTable(MSE, 0); err == nil {
		t.Fatalf("NewTable(MSE, 0) succeeded, want error")
	}
}

func TestParseMeasure(t *testing.T) {
	for _, name := range []string{"MSE", "Manhattan", "Lorentz"} {
		m, err := ParseMeasure(name)
		if err != nil {
			t.Fatalf("ParseMeasure(%q): %v", name, err)
		}
		if m.String() != name {
			t.Errorf("ParseMeasure(%q).String() = %q", name, m.String())
		}
	}
	if _, err := ParseMeasure("bogus"); err == nil {
		t.Fatalf("ParseMeasure(bogus) succeeded, want error")
	}
}
