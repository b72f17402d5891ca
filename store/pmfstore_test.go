package store

import (
	"math"
	"testing"

	"github.com/qvgen/qvcodec/corpus"
)

func specCorpus(t *testing.T) *corpus.Slice {
	t.Helper()
	lines := [][]uint8{
		{0, 0, 0},
		{0, 1, 0},
		{1, 1, 2},
		{3, 2, 1},
	}
	c, err := corpus.NewSlice(lines)
	if err != nil {
		t.Fatalf("NewSlice: %v", err)
	}
	return c
}

func TestNewPMFStoreColumn0Entropy(t *testing.T) {
	s, err := NewPMFStore(specCorpus(t), 4)
	if err != nil {
		t.Fatalf("NewPMFStore: %v", err)
	}
	// Column 0 symbols: 0,0,1,3 -> P(0)=0.5, P(1)=0.25, P(3)=0.25.
	u := s.Unconditional()
	if math.Abs(u.Probability(0)-0.5) > 1e-12 {
		t.Errorf("P(X0=0) = %v, want 0.5", u.Probability(0))
	}
	if math.Abs(u.Probability(1)-0.25) > 1e-12 {
		t.Errorf("P(X0=1) = %v, want 0.25", u.Probability(1))
	}
	if math.Abs(u.Probability(2)) > 1e-12 {
		t.Errorf("P(X0=2) = %v, want 0", u.Probability(2))
	}
	wantEntropy := 1.5 // -0.5log2(0.5) - 0.25log2(0.25) - 0.25log2(0.25)
	if got := u.Entropy(); math.Abs(got-wantEntropy) > 1e-9 {
		t.Errorf("Entropy() = %v, want %v", got, wantEntropy)
	}
}

func TestConditionalMissingContextReportsAbsent(t *testing.T) {
	s, err := NewPMFStore(specCorpus(t), 4)
	if err != nil {
		t.Fatalf("NewPMFStore: %v", err)
	}
	// Column 1 conditioned on previous=2 is never observed in the corpus.
	if _, ok := s.Conditional(1, 2); ok {
		t.Fatalf("Conditional(1, 2) reported present, want absent")
	}
	// Column 1 conditioned on previous=0 is observed (lines 1 and 2).
	p, ok := s.Conditional(1, 0)
	if !ok {
		t.Fatalf("Conditional(1, 0) reported absent, want present")
	}
	if math.Abs(p.Probability(0)-0.5) > 1e-12 || math.Abs(p.Probability(1)-0.5) > 1e-12 {
		t.Errorf("Conditional(1,0) = [%v,%v,...], want [0.5,0.5,...]", p.Probability(0), p.Probability(1))
	}
}

func TestMarginalsReadyInvariant(t *testing.T) {
	s, err := NewPMFStore(specCorpus(t), 4)
	if err != nil {
		t.Fatalf("NewPMFStore: %v", err)
	}
	for c := 0; c < s.Columns(); c++ {
		m := s.Marginal(c)
		if err := m.CheckReadyInvariant(); err != nil {
			t.Errorf("column %d marginal: %v", c, err)
		}
	}
}

func TestNewPMFStoreRejectsEmptyCorpus(t *testing.T) {
	if _, err := corpus.NewSlice(nil); err == nil {
		t.Fatalf("corpus.NewSlice(nil) succeeded, want error")
	}
	if _, err := NewPMFStore(&corpus.Slice{}, 4); err == nil {
		t.Fatalf("NewPMFStore on a zero-line corpus succeeded, want error")
	}
}
