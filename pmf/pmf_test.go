package pmf

import (
	"errors"
	"math"
	"testing"

	"github.com/qvgen/qvcodec/alphabet"
)

func TestIncrementAndNormalize(t *testing.T) {
	a := alphabet.Trivial(4)
	p := New(a)
	for _, s := range []int{0, 0, 0, 1, 2} {
		if err := p.Increment(s); err != nil {
			t.Fatalf("Increment(%d): %v", s, err)
		}
	}
	if err := p.Normalize(); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !p.Ready() {
		t.Fatalf("Ready() = false after Normalize")
	}
	want := map[int]float64{0: 0.6, 1: 0.2, 2: 0.2, 3: 0}
	for s, w := range want {
		if got := p.Probability(s); math.Abs(got-w) > 1e-12 {
			t.Errorf("Probability(%d) = %v, want %v", s, got, w)
		}
	}
	if err := p.CheckReadyInvariant(); err != nil {
		t.Errorf("CheckReadyInvariant: %v", err)
	}
}

func TestNormalizeEmptyFails(t *testing.T) {
	p := New(alphabet.Trivial(3))
	if err := p.Normalize(); !errors.Is(err, ErrEmptyDistribution) {
		t.Fatalf("Normalize on empty = %v, want ErrEmptyDistribution", err)
	}
}

func TestIncrementAfterNormalizeFails(t *testing.T) {
	p := New(alphabet.Trivial(2))
	_ = p.Increment(0)
	_ = p.Normalize()
	if err := p.Increment(0); !errors.Is(err, ErrAlreadyNormalized) {
		t.Fatalf("Increment after Normalize = %v, want ErrAlreadyNormalized", err)
	}
}

func TestIncrementOutOfSupport(t *testing.T) {
	p := New(alphabet.New([]int{0, 2}))
	if err := p.Increment(1); !errors.Is(err, ErrLookupMiss) {
		t.Fatalf("Increment(1) = %v, want ErrLookupMiss", err)
	}
}

func TestEntropyUniformIsMaximal(t *testing.T) {
	a := alphabet.Trivial(4)
	p := New(a)
	for _, s := range []int{0, 1, 2, 3} {
		_ = p.Increment(s)
	}
	_ = p.Normalize()
	if got, want := p.Entropy(), 2.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("Entropy() = %v, want %v", got, want)
	}
}

func TestEntropyPointMassIsZero(t *testing.T) {
	a := alphabet.Trivial(3)
	p := New(a)
	_ = p.Increment(1)
	_ = p.Increment(1)
	_ = p.Normalize()
	if got := p.Entropy(); math.Abs(got) > 1e-12 {
		t.Errorf("Entropy() = %v, want 0", got)
	}
}

func TestCombine(t *testing.T) {
	a := alphabet.Trivial(2)
	p := New(a)
	q := New(a)
	_ = p.Increment(0)
	_ = p.Increment(0)
	_ = p.Normalize() // p = [1, 0]
	_ = q.Increment(1)
	_ = q.Normalize() // q = [0, 1]

	out := New(a)
	if err := Combine(out, p, q, 0.25, 0.75); err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if math.Abs(out.ProbabilityAt(0)-0.25) > 1e-12 || math.Abs(out.ProbabilityAt(1)-0.75) > 1e-12 {
		t.Fatalf("Combine result = [%v, %v], want [0.25, 0.75]", out.ProbabilityAt(0), out.ProbabilityAt(1))
	}
}

func TestCombineAliasedOutput(t *testing.T) {
	a := alphabet.Trivial(2)
	p := New(a)
	_ = p.Increment(0)
	_ = p.Normalize() // p = [1, 0]
	q := New(a)
	_ = q.Increment(1)
	_ = q.Normalize() // q = [0, 1]

	if err := Combine(p, p, q, 0.5, 0.5); err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if math.Abs(p.ProbabilityAt(0)-0.5) > 1e-12 || math.Abs(p.ProbabilityAt(1)-0.5) > 1e-12 {
		t.Fatalf("aliased Combine result = [%v, %v], want [0.5, 0.5]", p.ProbabilityAt(0), p.ProbabilityAt(1))
	}
}
