package quantizer

import (
	"errors"
	"math"

	"github.com/qvgen/qvcodec/alphabet"
	"github.com/qvgen/qvcodec/distortion"
	"github.com/qvgen/qvcodec/pmf"
)

// ErrEmptyDistribution is returned by Design when the source PMF has no
// mass anywhere; there is no meaningful quantizer to build.
var ErrEmptyDistribution = errors.New("quantizer: empty distribution")

// ErrInvalidStateCount is returned by Design when the requested state
// count is not positive.
var ErrInvalidStateCount = errors.New("quantizer: state count must be >= 1")

// Design builds the optimal fixed-rate scalar quantizer for source PMF p
// under distortion table d, targeting at most m reproduction states, and
// records ratio on the result for later bookkeeping by the bit allocator
// and store. Uses dynamic-programming contiguous-cell partitioning, which
// is optimal for the three distortion measures this package's sibling
// distortion package supports (all increasing in |i-j|, so each
// reproduction point's nearest-neighbour cell is contiguous).
//
// Time complexity: O(k^2 * n + M*k^2) where k = |support(p)| and n is the
// domain size, dominated by the cell-cost precompute. For the small
// alphabets (A <= 64) this core targets, that is always cheap.
func Design(p *pmf.PMF, d *distortion.Table, m int, ratio float64) (*Quantizer, error) {
	if m < 1 {
		return nil, ErrInvalidStateCount
	}
	domain := p.Domain()
	support := p.NonzeroSupport()
	k := support.Size()
	if k == 0 {
		return nil, ErrEmptyDistribution
	}

	var mapping []alphabet.Symbol
	var output alphabet.Alphabet
	var expDist float64

	if m >= k {
		mapping, output, expDist = identityOn(domain, support, d)
	} else {
		mapping, output, expDist = designPartition(domain, support, p, d, m)
	}

	return &Quantizer{
		domain:  domain,
		mapping: mapping,
		output:  output,
		ratio:   ratio,
		distExp: expDist,
	}, nil
}

// identityOn builds q[x] = x for x in support (zero distortion on the
// support), and maps every domain symbol outside support to the nearest
// support symbol under d (ties broken toward the smaller symbol).
func identityOn(domain, support alphabet.Alphabet, d *distortion.Table) ([]alphabet.Symbol, alphabet.Alphabet, float64) {
	mapping := make([]alphabet.Symbol, domain.Size())
	for i := 0; i < domain.Size(); i++ {
		x := domain.At(i)
		if support.Contains(x) {
			mapping[i] = x
			continue
		}
		mapping[i] = nearestUnder(x, support, d)
	}
	return mapping, support, 0
}

// nearestUnder returns the symbol in candidates minimizing d(x, r), with
// ties broken toward the smallest r.
func nearestUnder(x alphabet.Symbol, candidates alphabet.Alphabet, d *distortion.Table) alphabet.Symbol {
	best := candidates.At(0)
	bestCost := d.At(x, best)
	for i := 1; i < candidates.Size(); i++ {
		r := candidates.At(i)
		cost := d.At(x, r)
		if cost < bestCost {
			bestCost = cost
			best = r
		}
	}
	return best
}

// designPartition runs the O(M*k^2) dynamic program that partitions the
// k support symbols (in ascending order) into exactly m contiguous cells,
// each assigned the reproduction symbol (drawn from the full domain) that
// minimizes the cell's weighted distortion.
func designPartition(domain, support alphabet.Alphabet, p *pmf.PMF, d *distortion.Table, m int) ([]alphabet.Symbol, alphabet.Alphabet, float64) {
	k := support.Size()
	n := domain.Size()

	// mass[t] = P(support symbol at ascending position t).
	mass := make([]float64, k)
	for t := 0; t < k; t++ {
		mass[t] = p.Probability(support.At(t))
	}

	// prefix[r][t] = sum_{u=0}^{t-1} mass[u] * d(support[u], r), for every
	// candidate reproduction symbol r in the full domain. prefix[r][0] = 0.
	prefix := make([][]float64, n)
	for r := 0; r < n; r++ {
		row := make([]float64, k+1)
		rSym := domain.At(r)
		for t := 0; t < k; t++ {
			row[t+1] = row[t] + mass[t]*d.At(support.At(t), rSym)
		}
		prefix[r] = row
	}

	// cellCost[i][j], cellRep[i][j]: optimal weighted distortion and
	// reproduction symbol for the contiguous cell of support positions
	// [i, j) (half-open), minimizing over every candidate r in the domain,
	// ties toward the smallest r.
	cellCost := make([][]float64, k+1)
	cellRep := make([][]alphabet.Symbol, k+1)
	for i := 0; i <= k; i++ {
		cellCost[i] = make([]float64, k+1)
		cellRep[i] = make([]alphabet.Symbol, k+1)
		for j := i + 1; j <= k; j++ {
			bestCost := math.Inf(1)
			bestRep := domain.At(0)
			for r := 0; r < n; r++ {
				c := prefix[r][j] - prefix[r][i]
				if c < bestCost {
					bestCost = c
					bestRep = domain.At(r)
				}
			}
			cellCost[i][j] = bestCost
			cellRep[i][j] = bestRep
		}
	}

	// dp[t][j] = minimal total distortion partitioning support[0:j) into
	// exactly t cells. split[t][j] = the boundary i achieving that minimum,
	// so the last cell is [i, j).
	dp := make([][]float64, m+1)
	split := make([][]int, m+1)
	for t := 0; t <= m; t++ {
		dp[t] = make([]float64, k+1)
		split[t] = make([]int, k+1)
		for j := 0; j <= k; j++ {
			dp[t][j] = math.Inf(1)
		}
	}
	dp[0][0] = 0
	for t := 1; t <= m; t++ {
		for j := t; j <= k; j++ {
			for i := t - 1; i < j; i++ {
				if math.IsInf(dp[t-1][i], 1) {
					continue
				}
				cand := dp[t-1][i] + cellCost[i][j]
				if cand < dp[t][j] {
					dp[t][j] = cand
					split[t][j] = i
				}
			}
		}
	}

	// Reconstruct cell boundaries for the full k-support partition into m
	// cells, then walk forward to assign each support position's rep.
	boundaries := make([]int, m+1)
	boundaries[m] = k
	j := k
	for t := m; t >= 1; t-- {
		i := split[t][j]
		boundaries[t-1] = i
		j = i
	}

	repAtSupportPos := make([]alphabet.Symbol, k)
	for t := 0; t < m; t++ {
		i, j := boundaries[t], boundaries[t+1]
		if i == j {
			continue // empty cell, only possible if m > remaining support; harmless
		}
		rep := cellRep[i][j]
		for pos := i; pos < j; pos++ {
			repAtSupportPos[pos] = rep
		}
	}

	mapping := make([]alphabet.Symbol, domain.Size())
	outputSet := make([]alphabet.Symbol, 0, m)
	for t := 0; t < k; t++ {
		x := support.At(t)
		r := repAtSupportPos[t]
		mapping[domain.MustIndexOf(x)] = r
		outputSet = append(outputSet, r)
	}
	output := alphabet.New(outputSet)

	// Domain symbols with zero mass: map to nearest reproduction symbol.
	for i := 0; i < domain.Size(); i++ {
		x := domain.At(i)
		if support.Contains(x) {
			continue
		}
		mapping[i] = nearestUnder(x, output, d)
	}

	return mapping, output, dp[m][k]
}
